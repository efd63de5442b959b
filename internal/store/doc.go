// Package store defines the persistence interfaces for tasks and the
// transaction helpers shared by their implementations. Services depend on
// these interfaces; internal/platform/postgres implements them.
package store
