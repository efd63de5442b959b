// Package service contains the task use cases: creating, updating and
// completing tasks, expanding recurring tasks into stored occurrences inside
// one transaction, and exporting them. Handlers call these services; services
// talk to storage only through internal/store interfaces.
package service
