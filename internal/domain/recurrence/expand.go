package recurrence

import (
	"time"

	"github.com/google/uuid"
	"github.com/leventyarali/vocanizer-sub000/internal/domain"
)

// Option customizes a single expansion.
type Option func(*options)

type options struct {
	parentTaskID   uuid.UUID
	maxOccurrences int
}

// WithParentTaskID stamps every generated occurrence with the parent task ID.
func WithParentTaskID(id uuid.UUID) Option {
	return func(o *options) {
		o.parentTaskID = id
	}
}

// WithMaxOccurrences overrides domain.DefaultMaxOccurrences for this expansion.
// Values below 1 are ignored.
func WithMaxOccurrences(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxOccurrences = n
		}
	}
}

// Expand produces the occurrences of rule starting at anchor, in due date
// order with contiguous sequence indexes starting at zero.
//
// The anchor itself is the first candidate. Weekly rules with a weekday set
// walk day by day and only emit days in the set, so Interval has no effect on
// them; an empty set yields no occurrences. Monthly and yearly steps are taken from the anchor and clamped
// to the last day of the target month, so Jan 31 is followed by Feb 29, Mar 31
// and Apr 30. Time of day and location of the anchor are kept.
//
// Returns a domain validation error for malformed rules, and
// domain.ErrRecurrenceUnbounded when the rule has no count and no end date or
// would produce more than the maximum number of occurrences.
func Expand(anchor time.Time, rule domain.RecurrenceRule, opts ...Option) ([]domain.Occurrence, error) {
	o := options{maxOccurrences: domain.DefaultMaxOccurrences}
	for _, opt := range opts {
		opt(&o)
	}

	if err := rule.Validate(o.maxOccurrences); err != nil {
		return nil, err
	}

	occurrences := make([]domain.Occurrence, 0, initialCapacity(rule))

	if rule.HasDaysOfWeek() && len(rule.DaysOfWeek) == 0 {
		return occurrences, nil
	}

	var days [8]bool
	for _, d := range rule.DaysOfWeek {
		days[d] = true
	}

	current := anchor
	steps := 0
	// Each emitted occurrence needs at most seven single-day advances, so
	// this only trips if the loop stops making progress.
	maxIterations := (o.maxOccurrences + 1) * 8

	for i := 0; ; i++ {
		if rule.Count != nil && len(occurrences) >= *rule.Count {
			break
		}
		if rule.EndDate != nil && current.After(*rule.EndDate) {
			break
		}
		if i > maxIterations {
			return nil, domain.NewValidationError("recurrence", "did not terminate", domain.ErrRecurrenceUnbounded)
		}

		if rule.HasDaysOfWeek() && !days[domain.ISOWeekday(current)] {
			current = current.AddDate(0, 0, 1)
			continue
		}

		if len(occurrences) >= o.maxOccurrences {
			return nil, domain.NewValidationError("recurrence", "exceeds the maximum number of occurrences", domain.ErrRecurrenceUnbounded)
		}

		occurrences = append(occurrences, domain.Occurrence{
			DueDate:       current,
			ParentTaskID:  o.parentTaskID,
			SequenceIndex: len(occurrences),
		})

		steps++
		current = advance(anchor, current, rule, steps)
	}

	return occurrences, nil
}

// advance returns the next candidate after current. steps is the number of
// occurrences emitted so far.
func advance(anchor, current time.Time, rule domain.RecurrenceRule, steps int) time.Time {
	switch rule.Frequency {
	case domain.FrequencyDaily:
		return current.AddDate(0, 0, rule.Interval)
	case domain.FrequencyWeekly:
		if rule.HasDaysOfWeek() {
			return current.AddDate(0, 0, 1)
		}
		return current.AddDate(0, 0, 7*rule.Interval)
	case domain.FrequencyMonthly:
		return addMonthsClamped(anchor, steps*rule.Interval)
	case domain.FrequencyYearly:
		return addMonthsClamped(anchor, steps*rule.Interval*12)
	default:
		// Unreachable after Validate.
		return current.AddDate(0, 0, 1)
	}
}

// addMonthsClamped adds months to t, clamping the day to the end of the
// target month instead of overflowing into the next one.
func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	if last := daysIn(first.Year(), first.Month()); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func initialCapacity(rule domain.RecurrenceRule) int {
	if rule.Count != nil && *rule.Count < 64 {
		return *rule.Count
	}
	return 16
}
