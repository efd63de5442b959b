package main

import (
	"github.com/leventyarali/vocanizer-sub000/internal/config"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
}

// NewRootCommand creates the root command for the vocanizer CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "vocanizer",
		Short: "Vocanizer tasks service",
		Long:  "Tasks API for the Vocanizer backend, with recurring task expansion.",
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to a config file (default ./config.yaml if present)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewExpandCommand(opts))

	return cmd
}

// loadConfig reads configuration from the file named by --config, or from
// the environment and an optional ./config.yaml.
func (o *RootOptions) loadConfig() (*config.Config, error) {
	if o.ConfigPath != "" {
		return config.LoadFile(o.ConfigPath)
	}
	return config.Load()
}
