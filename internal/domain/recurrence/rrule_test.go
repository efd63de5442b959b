package recurrence_test

import (
	"errors"
	"testing"
	"time"

	"github.com/leventyarali/vocanizer-sub000/internal/domain"
	"github.com/leventyarali/vocanizer-sub000/internal/domain/recurrence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teambition/rrule-go"
)

func TestFormatRRule(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rule domain.RecurrenceRule
		want string
	}{
		{
			name: "daily with count",
			rule: domain.RecurrenceRule{Frequency: domain.FrequencyDaily, Interval: 2, Count: intPtr(3)},
			want: "FREQ=DAILY;INTERVAL=2;COUNT=3",
		},
		{
			name: "weekly with days",
			rule: domain.RecurrenceRule{
				Frequency:  domain.FrequencyWeekly,
				Interval:   1,
				DaysOfWeek: []int{1, 3, 5},
				Count:      intPtr(3),
			},
			want: "FREQ=WEEKLY;INTERVAL=1;COUNT=3;BYDAY=MO,WE,FR",
		},
		{
			name: "monthly until",
			rule: domain.RecurrenceRule{
				Frequency: domain.FrequencyMonthly,
				Interval:  1,
				EndDate:   timePtr(time.Date(2024, time.April, 15, 0, 0, 0, 0, time.UTC)),
			},
			want: "FREQ=MONTHLY;INTERVAL=1;UNTIL=20240415T000000Z",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := recurrence.FormatRRule(tt.rule)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatRRule_RejectsEmptyDaySet(t *testing.T) {
	t.Parallel()

	_, err := recurrence.FormatRRule(domain.RecurrenceRule{
		Frequency:  domain.FrequencyWeekly,
		Interval:   1,
		DaysOfWeek: []int{},
		Count:      intPtr(1),
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidRecurrence))
}

func TestFormatRRule_WeekdaySetWritesIntervalOne(t *testing.T) {
	t.Parallel()

	rule := domain.RecurrenceRule{
		Frequency:  domain.FrequencyWeekly,
		Interval:   2,
		DaysOfWeek: []int{1},
		Count:      intPtr(3),
	}
	text, err := recurrence.FormatRRule(rule)
	require.NoError(t, err)
	assert.Equal(t, "FREQ=WEEKLY;INTERVAL=1;COUNT=3;BYDAY=MO", text)

	anchor := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	described, err := recurrence.Describe(anchor, rule)
	require.NoError(t, err)
	r, err := rrule.StrToRRule(described)
	require.NoError(t, err)

	got, err := recurrence.Expand(anchor, rule)
	require.NoError(t, err)
	want := r.All()
	require.Len(t, got, len(want))
	for i := range want {
		assert.True(t, want[i].Equal(got[i].DueDate), "index %d", i)
	}
}

func TestParseRRule(t *testing.T) {
	t.Parallel()

	got, err := recurrence.ParseRRule("RRULE:FREQ=WEEKLY;BYDAY=MO,WE,FR;COUNT=3")
	require.NoError(t, err)
	assert.Equal(t, domain.FrequencyWeekly, got.Frequency)
	assert.Equal(t, 1, got.Interval)
	assert.Equal(t, []int{1, 3, 5}, got.DaysOfWeek)
	require.NotNil(t, got.Count)
	assert.Equal(t, 3, *got.Count)
	assert.Nil(t, got.EndDate)

	got, err = recurrence.ParseRRule("FREQ=YEARLY;INTERVAL=2;UNTIL=20300101T000000Z")
	require.NoError(t, err)
	assert.Equal(t, domain.FrequencyYearly, got.Frequency)
	assert.Equal(t, 2, got.Interval)
	assert.Nil(t, got.Count)
	require.NotNil(t, got.EndDate)
	assert.True(t, got.EndDate.Equal(time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC)))
}

func TestParseRRule_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		text    string
		wantErr error
	}{
		{name: "empty", text: "  ", wantErr: domain.ErrInvalidRecurrence},
		{name: "garbage", text: "not a rule", wantErr: domain.ErrInvalidRecurrence},
		{name: "hourly", text: "FREQ=HOURLY;COUNT=3", wantErr: domain.ErrInvalidRecurrence},
		{name: "ordinal weekday", text: "FREQ=MONTHLY;BYDAY=2TU;COUNT=3", wantErr: domain.ErrInvalidRecurrence},
		{name: "byday on daily", text: "FREQ=DAILY;BYDAY=MO;COUNT=3", wantErr: domain.ErrInvalidRecurrence},
		{name: "bymonthday", text: "FREQ=MONTHLY;BYMONTHDAY=15;COUNT=3", wantErr: domain.ErrInvalidRecurrence},
		{name: "bysetpos", text: "FREQ=MONTHLY;BYDAY=MO;BYSETPOS=1;COUNT=3", wantErr: domain.ErrInvalidRecurrence},
		{name: "sunday week start", text: "FREQ=WEEKLY;WKST=SU;COUNT=3", wantErr: domain.ErrInvalidRecurrence},
		{name: "unbounded", text: "FREQ=DAILY", wantErr: domain.ErrRecurrenceUnbounded},
		{name: "dtstart part", text: "FREQ=DAILY;COUNT=3;DTSTART=20240101T090000Z", wantErr: domain.ErrInvalidRecurrence},
		{name: "byday with interval", text: "FREQ=WEEKLY;INTERVAL=2;BYDAY=MO;COUNT=3", wantErr: domain.ErrInvalidRecurrence},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := recurrence.ParseRRule(tt.text)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestRRule_RoundTrip(t *testing.T) {
	t.Parallel()

	rules := []domain.RecurrenceRule{
		{Frequency: domain.FrequencyDaily, Interval: 1, Count: intPtr(10)},
		{Frequency: domain.FrequencyWeekly, Interval: 1, DaysOfWeek: []int{2, 4, 7}, Count: intPtr(6)},
		{Frequency: domain.FrequencyMonthly, Interval: 3, EndDate: timePtr(time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC))},
		{Frequency: domain.FrequencyYearly, Interval: 1, Count: intPtr(4), EndDate: timePtr(time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC))},
	}

	for _, rule := range rules {
		text, err := recurrence.FormatRRule(rule)
		require.NoError(t, err)

		parsed, err := recurrence.ParseRRule(text)
		require.NoError(t, err, text)
		assert.Equal(t, rule, parsed, text)
	}
}

// The expander follows RFC 5545 for daily and weekly rules, so rrule-go must
// produce the same dates. Weekday rules with a larger interval are written
// with INTERVAL=1 and still agree.
func TestExpand_AgreesWithRRuleGo(t *testing.T) {
	t.Parallel()

	anchor := time.Date(2024, time.January, 2, 8, 0, 0, 0, time.UTC)
	until := time.Date(2024, time.September, 1, 0, 0, 0, 0, time.UTC)
	rules := []domain.RecurrenceRule{
		{Frequency: domain.FrequencyDaily, Interval: 1, Count: intPtr(30)},
		{Frequency: domain.FrequencyDaily, Interval: 5, EndDate: &until},
		{Frequency: domain.FrequencyWeekly, Interval: 1, Count: intPtr(12)},
		{Frequency: domain.FrequencyWeekly, Interval: 1, DaysOfWeek: []int{1, 3, 5}, Count: intPtr(25)},
		{Frequency: domain.FrequencyWeekly, Interval: 2, DaysOfWeek: []int{1, 6}, Count: intPtr(25)},
		{Frequency: domain.FrequencyWeekly, Interval: 3, DaysOfWeek: []int{2, 7}, EndDate: &until},
		{Frequency: domain.FrequencyMonthly, Interval: 2, Count: intPtr(8)},
	}

	for _, rule := range rules {
		text, err := recurrence.Describe(anchor, rule)
		require.NoError(t, err)

		r, err := rrule.StrToRRule(text)
		require.NoError(t, err, text)

		got, err := recurrence.Expand(anchor, rule)
		require.NoError(t, err)

		want := r.All()
		require.Len(t, got, len(want), text)
		for i := range want {
			assert.True(t, want[i].Equal(got[i].DueDate), "%s: index %d want %s got %s", text, i, want[i], got[i].DueDate)
		}
	}
}
