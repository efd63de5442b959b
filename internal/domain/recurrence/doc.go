// Package recurrence expands a task's recurrence rule into the ordered list
// of occurrence dates, and converts rules to and from RFC 5545 RRULE text.
//
// Expansion is a pure function of the anchor date and the rule. Rules are
// validated before expanding and every expansion is bounded by a maximum
// number of occurrences, so a rule without a count or end date is rejected
// with domain.ErrRecurrenceUnbounded rather than looping forever.
package recurrence
