package main

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateMigrationCommand(t *testing.T) {
	for _, c := range []string{"up", "down", "status", "version", "reset"} {
		assert.NoError(t, validateMigrationCommand(c), c)
	}

	err := validateMigrationCommand("create")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown migration command")
}

func TestRunMigrate_RejectsUnknownCommandBeforeConnecting(t *testing.T) {
	// No config is loaded for an unknown command, so no environment is needed.
	err := runMigrate(context.Background(), &RootOptions{ConfigPath: "does-not-exist.yaml"}, "sideways")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown migration command")
}

func TestMigrateCommand_TooManyArgs(t *testing.T) {
	cmd := NewMigrateCommand(&RootOptions{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"up", "down"})

	assert.Error(t, cmd.Execute())
}

func TestSlogGooseLogger(t *testing.T) {
	var buf bytes.Buffer
	l := &slogGooseLogger{logger: slog.New(slog.NewTextHandler(&buf, nil))}

	l.Printf("OK   %s\n", "00001_create_tasks.sql")
	l.Fatalf("failed to apply %d migrations", 2)

	out := buf.String()
	assert.Contains(t, out, "level=INFO")
	assert.Contains(t, out, "00001_create_tasks.sql")
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "failed to apply 2 migrations")
}
