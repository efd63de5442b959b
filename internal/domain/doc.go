// Package domain contains the core business entities of the tasks service:
// tasks, recurrence rules and the occurrences generated from them. It is
// independent of any storage or delivery mechanism.
package domain
