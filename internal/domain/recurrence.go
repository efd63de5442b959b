package domain

import (
	"time"

	"github.com/google/uuid"
)

// Frequency is the unit a recurrence rule steps by.
type Frequency string

// Supported recurrence frequencies.
const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

// DefaultMaxOccurrences caps how many occurrences a single rule may produce.
const DefaultMaxOccurrences = 1000

// RecurrenceRule describes how a task repeats.
//
// DaysOfWeek uses ISO numbering (Monday=1 .. Sunday=7) and only applies to
// weekly rules. A nil slice means "not set"; an empty, non-nil slice is a set
// with no days and therefore matches nothing.
type RecurrenceRule struct {
	Frequency  Frequency  `json:"frequency"`
	Interval   int        `json:"interval"`
	DaysOfWeek []int      `json:"days_of_week"`
	EndDate    *time.Time `json:"end_date,omitempty"`
	Count      *int       `json:"count,omitempty"`
}

// Occurrence is one generated instance of a recurring task.
type Occurrence struct {
	DueDate       time.Time `json:"due_date"`
	ParentTaskID  uuid.UUID `json:"parent_task_id"`
	SequenceIndex int       `json:"sequence_index"`
}

// HasDaysOfWeek reports whether the rule carries a weekday filter.
func (r *RecurrenceRule) HasDaysOfWeek() bool {
	return r.Frequency == FrequencyWeekly && r.DaysOfWeek != nil
}

// Validate checks the rule before it is handed to the expander.
// maxOccurrences bounds Count; zero or negative means DefaultMaxOccurrences.
func (r *RecurrenceRule) Validate(maxOccurrences int) error {
	if maxOccurrences <= 0 {
		maxOccurrences = DefaultMaxOccurrences
	}

	if !isValidFrequency(r.Frequency) {
		return NewValidationError("recurrence.frequency", "must be one of daily, weekly, monthly, yearly", ErrInvalidRecurrence)
	}

	if r.Interval < 1 {
		return NewValidationError("recurrence.interval", "must be at least 1", ErrInvalidRecurrence)
	}

	seen := make(map[int]bool, len(r.DaysOfWeek))
	for _, d := range r.DaysOfWeek {
		if d < 1 || d > 7 {
			return NewValidationError("recurrence.days_of_week", "must contain values between 1 and 7", ErrInvalidRecurrence)
		}
		if seen[d] {
			return NewValidationError("recurrence.days_of_week", "must not contain duplicates", ErrInvalidRecurrence)
		}
		seen[d] = true
	}

	if r.Count != nil {
		if *r.Count < 1 {
			return NewValidationError("recurrence.count", "must be at least 1", ErrInvalidRecurrence)
		}
		if *r.Count > maxOccurrences {
			return NewValidationError("recurrence.count", "exceeds the maximum number of occurrences", ErrRecurrenceUnbounded)
		}
	}

	if r.Count == nil && r.EndDate == nil {
		return NewValidationError("recurrence", "requires a count or an end date", ErrRecurrenceUnbounded)
	}

	return nil
}

// ISOWeekday returns the ISO weekday of t, Monday=1 through Sunday=7.
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

func isValidFrequency(f Frequency) bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	default:
		return false
	}
}
