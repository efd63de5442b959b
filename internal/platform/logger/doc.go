// Package logger provides structured logging functionality for the application.
//
// It uses Go's standard library log/slog package with a JSON handler and
// configurable log levels, and carries request-scoped loggers in a
// context.Context.
package logger
