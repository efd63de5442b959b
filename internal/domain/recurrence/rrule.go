package recurrence

import (
	"fmt"
	"strings"
	"time"

	"github.com/leventyarali/vocanizer-sub000/internal/domain"
	"github.com/teambition/rrule-go"
)

// isoWeekdays maps ISO weekday numbers (index+1) to rrule weekdays.
var isoWeekdays = []rrule.Weekday{rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA, rrule.SU}

var toRRuleFrequency = map[domain.Frequency]rrule.Frequency{
	domain.FrequencyDaily:   rrule.DAILY,
	domain.FrequencyWeekly:  rrule.WEEKLY,
	domain.FrequencyMonthly: rrule.MONTHLY,
	domain.FrequencyYearly:  rrule.YEARLY,
}

// FormatRRule renders rule as the value of an RFC 5545 RRULE property,
// e.g. "FREQ=WEEKLY;INTERVAL=1;COUNT=3;BYDAY=MO,WE,FR".
//
// A weekly rule with a weekday set is expanded day by day, so its interval
// is written as 1. Month-end clamping has no RRULE equivalent; for monthly and yearly rules
// anchored after the 28th the text describes the same series except on the
// clamped dates.
func FormatRRule(rule domain.RecurrenceRule) (string, error) {
	if err := rule.Validate(0); err != nil {
		return "", err
	}

	if rule.HasDaysOfWeek() && len(rule.DaysOfWeek) == 0 {
		return "", domain.NewValidationError("recurrence.days_of_week", "an empty weekday set cannot be expressed as RRULE", domain.ErrInvalidRecurrence)
	}

	opt := rrule.ROption{
		Freq:     toRRuleFrequency[rule.Frequency],
		Interval: rule.Interval,
	}
	if rule.HasDaysOfWeek() {
		opt.Interval = 1
	}
	if rule.Count != nil {
		opt.Count = *rule.Count
	}
	if rule.EndDate != nil {
		opt.Until = rule.EndDate.UTC()
	}
	if rule.HasDaysOfWeek() {
		for _, d := range rule.DaysOfWeek {
			opt.Byweekday = append(opt.Byweekday, isoWeekdays[d-1])
		}
	}

	return opt.RRuleString(), nil
}

// ParseRRule reads an RRULE value (with or without the "RRULE:" prefix) into
// a RecurrenceRule. Only the subset the expander understands is accepted:
// DAILY/WEEKLY/MONTHLY/YEARLY with INTERVAL, COUNT, UNTIL and, for weekly
// rules, plain BYDAY weekdays with an interval of 1. DTSTART is rejected: the
// anchor always comes from the task.
func ParseRRule(text string) (domain.RecurrenceRule, error) {
	value := strings.TrimSpace(text)
	if len(value) >= len("RRULE:") && strings.EqualFold(value[:len("RRULE:")], "RRULE:") {
		value = value[len("RRULE:"):]
	}
	if value == "" {
		return domain.RecurrenceRule{}, domain.NewValidationError("rrule", "cannot be empty", domain.ErrInvalidRecurrence)
	}

	opt, err := rrule.StrToROption(value)
	if err != nil {
		return domain.RecurrenceRule{}, domain.NewValidationError("rrule", fmt.Sprintf("is malformed (%v)", err), domain.ErrInvalidRecurrence)
	}

	var rule domain.RecurrenceRule
	switch opt.Freq {
	case rrule.DAILY:
		rule.Frequency = domain.FrequencyDaily
	case rrule.WEEKLY:
		rule.Frequency = domain.FrequencyWeekly
	case rrule.MONTHLY:
		rule.Frequency = domain.FrequencyMonthly
	case rrule.YEARLY:
		rule.Frequency = domain.FrequencyYearly
	default:
		return domain.RecurrenceRule{}, domain.NewValidationError("rrule", "frequency is not supported", domain.ErrInvalidRecurrence)
	}

	if len(opt.Bysetpos) > 0 || len(opt.Bymonth) > 0 || len(opt.Bymonthday) > 0 ||
		len(opt.Byyearday) > 0 || len(opt.Byweekno) > 0 || len(opt.Byhour) > 0 ||
		len(opt.Byminute) > 0 || len(opt.Bysecond) > 0 || len(opt.Byeaster) > 0 {
		return domain.RecurrenceRule{}, domain.NewValidationError("rrule", "contains unsupported BY* parts", domain.ErrInvalidRecurrence)
	}
	if !opt.Dtstart.IsZero() {
		return domain.RecurrenceRule{}, domain.NewValidationError("rrule", "must not contain DTSTART", domain.ErrInvalidRecurrence)
	}
	if opt.Wkst != rrule.MO {
		return domain.RecurrenceRule{}, domain.NewValidationError("rrule", "WKST must be MO", domain.ErrInvalidRecurrence)
	}

	rule.Interval = opt.Interval
	if rule.Interval == 0 {
		rule.Interval = 1
	}

	if opt.Count > 0 {
		count := opt.Count
		rule.Count = &count
	}

	if !opt.Until.IsZero() {
		until := opt.Until.UTC()
		rule.EndDate = &until
	}

	if len(opt.Byweekday) > 0 {
		if rule.Frequency != domain.FrequencyWeekly {
			return domain.RecurrenceRule{}, domain.NewValidationError("rrule", "BYDAY is only supported for weekly rules", domain.ErrInvalidRecurrence)
		}
		if rule.Interval > 1 {
			return domain.RecurrenceRule{}, domain.NewValidationError("rrule", "BYDAY requires INTERVAL=1", domain.ErrInvalidRecurrence)
		}
		rule.DaysOfWeek = make([]int, 0, len(opt.Byweekday))
		for _, wd := range opt.Byweekday {
			if wd.N() != 0 {
				return domain.RecurrenceRule{}, domain.NewValidationError("rrule", "BYDAY ordinals are not supported", domain.ErrInvalidRecurrence)
			}
			rule.DaysOfWeek = append(rule.DaysOfWeek, wd.Day()+1)
		}
	}

	if err := rule.Validate(0); err != nil {
		return domain.RecurrenceRule{}, err
	}

	return rule, nil
}

// Describe renders a rule together with its anchor as a full RFC 5545
// fragment ("DTSTART:...\nRRULE:..."), as used in iCalendar exports.
func Describe(anchor time.Time, rule domain.RecurrenceRule) (string, error) {
	text, err := FormatRRule(rule)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("DTSTART:%s\nRRULE:%s", anchor.UTC().Format("20060102T150405Z"), text), nil
}
