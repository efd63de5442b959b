package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g.
// VOCANIZER_SERVER_PORT for server.port.
const EnvPrefix = "VOCANIZER"

var defaults = map[string]any{
	"server.port":                    8080,
	"server.log_level":               "info",
	"server.read_timeout":            "15s",
	"server.write_timeout":           "15s",
	"server.idle_timeout":            "60s",
	"server.shutdown_timeout":        "10s",
	"database.max_open_conns":        25,
	"database.max_idle_conns":        5,
	"database.conn_max_lifetime":     "5m",
	"auth.clock_skew":                "30s",
	"recurrence.max_occurrences":     1000,
	"maintenance.enabled":            true,
	"maintenance.purge_schedule":     "@daily",
	"maintenance.retention_days":     90,
	"rate_limit.requests_per_second": 10.0,
	"rate_limit.burst":               20,
}

// keys without defaults that must still be bound to the environment.
var requiredKeys = []string{
	"database.url",
	"auth.jwt_secret",
}

// Load reads configuration from environment variables and, if present, a
// config.yaml in the working directory. Environment variables take precedence.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit config file path. An empty path looks for
// config.yaml in the working directory and tolerates its absence.
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range requiredKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
