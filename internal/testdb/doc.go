//go:build integration

// Package testdb provides helpers for integration tests that need a real
// PostgreSQL database: connection setup from the environment, goose
// migrations from the embedded schema, and per-test transactions that are
// always rolled back.
//
// Tests using this package carry the integration build tag and are skipped
// when no database URL is configured:
//
//	DATABASE_URL=postgres://... go test -tags=integration ./...
package testdb
