// Package maintenance runs scheduled housekeeping against the task store.
// Currently that is a single job deleting completed occurrences whose due
// date is older than the configured retention period.
package maintenance
