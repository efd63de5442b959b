package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/leventyarali/vocanizer-sub000/internal/platform/logger"
	"github.com/leventyarali/vocanizer-sub000/internal/platform/postgres/migrations"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
)

// MigrationTableName is the table goose records applied versions in.
const MigrationTableName = "schema_migrations"

// migrationCommands lists the goose commands the migrate command accepts.
var migrationCommands = []string{"up", "down", "status", "version", "reset"}

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate [up|down|status|version|reset]",
		Short: "Apply or inspect database migrations",
		Long: `Run goose against the embedded SQL migrations.

Without an argument the command applies all pending migrations.`,
		Args:          cobra.MaximumNArgs(1),
		ValidArgs:     migrationCommands,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			command := "up"
			if len(args) == 1 {
				command = args[0]
			}
			return runMigrate(cmd.Context(), rootOpts, command)
		},
	}

	return cmd
}

func runMigrate(ctx context.Context, opts *RootOptions, command string) error {
	if err := validateMigrationCommand(command); err != nil {
		return err
	}

	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	log = log.With(
		"correlation_id", uuid.New().String(),
		"component", "migrations",
		"command", command,
	)

	db, err := openDatabase(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database connection", "error", err)
		}
	}()

	return executeMigration(ctx, db, command, log)
}

func validateMigrationCommand(command string) error {
	for _, c := range migrationCommands {
		if c == command {
			return nil
		}
	}
	return fmt.Errorf("unknown migration command: %s (expected %s)",
		command, strings.Join(migrationCommands, ", "))
}

// executeMigration runs one goose command against db using the embedded
// migration files.
func executeMigration(ctx context.Context, db *sql.DB, command string, log *slog.Logger) error {
	goose.SetLogger(&slogGooseLogger{logger: log})
	goose.SetBaseFS(migrations.FS)
	goose.SetTableName(MigrationTableName)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	start := time.Now()
	log.Info("Starting migration operation", "operation", "goose "+command)

	var err error
	switch command {
	case "up":
		err = goose.UpContext(ctx, db, migrations.Dir)
	case "down":
		err = goose.DownContext(ctx, db, migrations.Dir)
	case "reset":
		err = goose.ResetContext(ctx, db, migrations.Dir)
	case "status":
		err = goose.StatusContext(ctx, db, migrations.Dir)
	case "version":
		err = goose.VersionContext(ctx, db, migrations.Dir)
	default:
		return validateMigrationCommand(command)
	}

	if err != nil {
		log.Error("Migration failed",
			"error", err,
			"duration_ms", time.Since(start).Milliseconds())
		return fmt.Errorf("migration %s failed: %w", command, err)
	}

	log.Info("Migration completed", "duration_ms", time.Since(start).Milliseconds())
	return nil
}

// slogGooseLogger adapts goose.Logger to slog. Fatalf logs at error level
// and does not exit; the failure comes back as the goose error.
type slogGooseLogger struct {
	logger *slog.Logger
}

func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
