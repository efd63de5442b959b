package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/leventyarali/vocanizer-sub000/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeExpand(t *testing.T, args ...string) (*bytes.Buffer, error) {
	t.Helper()

	buf := &bytes.Buffer{}
	cmd := NewExpandCommand(&RootOptions{})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	return buf, cmd.Execute()
}

func decodeExpand(t *testing.T, buf *bytes.Buffer) ExpandResult {
	t.Helper()

	var res ExpandResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &res))
	return res
}

func dueDates(res ExpandResult) []time.Time {
	out := make([]time.Time, 0, len(res.Occurrences))
	for _, o := range res.Occurrences {
		out = append(out, o.DueDate.UTC())
	}
	return out
}

func TestExpandWeeklyDays(t *testing.T) {
	buf, err := executeExpand(t,
		"--anchor", "2024-01-01T09:00:00Z",
		"--frequency", "weekly",
		"--days", "1,3,5",
		"--count", "3",
	)
	require.NoError(t, err)

	res := decodeExpand(t, buf)
	assert.Equal(t, "FREQ=WEEKLY;INTERVAL=1;COUNT=3;BYDAY=MO,WE,FR", res.RRule)
	assert.Equal(t, []time.Time{
		time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC),
		time.Date(2024, time.January, 3, 9, 0, 0, 0, time.UTC),
		time.Date(2024, time.January, 5, 9, 0, 0, 0, time.UTC),
	}, dueDates(res))
	for i, o := range res.Occurrences {
		assert.Equal(t, i, o.SequenceIndex)
	}
}

func TestExpandMonthlyClampsFromRRule(t *testing.T) {
	buf, err := executeExpand(t,
		"--anchor", "2024-01-31",
		"--rrule", "FREQ=MONTHLY;COUNT=4",
	)
	require.NoError(t, err)

	res := decodeExpand(t, buf)
	assert.Equal(t, []time.Time{
		time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.April, 30, 0, 0, 0, 0, time.UTC),
	}, dueDates(res))
}

func TestExpandDailyUntilEndDate(t *testing.T) {
	buf, err := executeExpand(t,
		"--anchor", "2024-03-01T08:30:00Z",
		"--frequency", "DAILY",
		"--interval", "2",
		"--end", "2024-03-07T08:30:00Z",
	)
	require.NoError(t, err)

	res := decodeExpand(t, buf)
	assert.Equal(t, []time.Time{
		time.Date(2024, time.March, 1, 8, 30, 0, 0, time.UTC),
		time.Date(2024, time.March, 3, 8, 30, 0, 0, time.UTC),
		time.Date(2024, time.March, 5, 8, 30, 0, 0, time.UTC),
		time.Date(2024, time.March, 7, 8, 30, 0, 0, time.UTC),
	}, dueDates(res))
}

func TestExpandEmptyDaySet(t *testing.T) {
	buf, err := executeExpand(t,
		"--anchor", "2024-01-01",
		"--frequency", "weekly",
		"--days", "",
		"--count", "5",
	)
	require.NoError(t, err)

	res := decodeExpand(t, buf)
	assert.Empty(t, res.Occurrences)
	assert.Empty(t, res.RRule)
}

func TestExpandTextFormat(t *testing.T) {
	buf, err := executeExpand(t,
		"--anchor", "2024-01-01T09:00:00Z",
		"--frequency", "yearly",
		"--count", "2",
		"--format", "text",
	)
	require.NoError(t, err)

	assert.Equal(t,
		"RRULE:FREQ=YEARLY;INTERVAL=1;COUNT=2\n"+
			"0\t2024-01-01T09:00:00Z\n"+
			"1\t2025-01-01T09:00:00Z\n",
		buf.String())
}

func TestExpandErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr error
		wantMsg string
	}{
		{
			name:    "unbounded rule",
			args:    []string{"--anchor", "2024-01-01", "--frequency", "daily"},
			wantErr: domain.ErrRecurrenceUnbounded,
		},
		{
			name:    "count above max",
			args:    []string{"--anchor", "2024-01-01", "--frequency", "daily", "--count", "11", "--max", "10"},
			wantErr: domain.ErrRecurrenceUnbounded,
		},
		{
			name:    "zero interval",
			args:    []string{"--anchor", "2024-01-01", "--frequency", "daily", "--interval", "0", "--count", "1"},
			wantErr: domain.ErrInvalidRecurrence,
		},
		{
			name:    "day out of range",
			args:    []string{"--anchor", "2024-01-01", "--frequency", "weekly", "--days", "8", "--count", "1"},
			wantErr: domain.ErrInvalidRecurrence,
		},
		{
			name:    "unsupported rrule",
			args:    []string{"--anchor", "2024-01-01", "--rrule", "FREQ=HOURLY;COUNT=2"},
			wantErr: domain.ErrInvalidRecurrence,
		},
		{
			name:    "bad anchor",
			args:    []string{"--anchor", "yesterday", "--frequency", "daily", "--count", "1"},
			wantMsg: "invalid --anchor",
		},
		{
			name:    "bad day entry",
			args:    []string{"--anchor", "2024-01-01", "--frequency", "weekly", "--days", "MO", "--count", "1"},
			wantMsg: "invalid --days entry",
		},
		{
			name:    "bad format",
			args:    []string{"--anchor", "2024-01-01", "--frequency", "daily", "--count", "1", "--format", "xml"},
			wantMsg: "invalid format",
		},
		{
			name:    "missing anchor",
			args:    []string{"--frequency", "daily", "--count", "1"},
			wantMsg: "anchor",
		},
		{
			name:    "rrule with structured flags",
			args:    []string{"--anchor", "2024-01-01", "--rrule", "FREQ=DAILY;COUNT=2", "--frequency", "daily"},
			wantMsg: "rrule",
		},
		{
			name:    "no rule at all",
			args:    []string{"--anchor", "2024-01-01"},
			wantMsg: "frequency",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := executeExpand(t, tt.args...)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestParseDays(t *testing.T) {
	days, err := parseDays(" 1, 3 ,5 ")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3, 5}, days)

	days, err = parseDays("")
	require.NoError(t, err)
	assert.NotNil(t, days)
	assert.Empty(t, days)
}

func TestParseTime(t *testing.T) {
	got, err := parseTime("2024-02-29")
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC)))

	got, err = parseTime("2024-02-29T10:15:00+02:00")
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2024, time.February, 29, 8, 15, 0, 0, time.UTC)))

	_, err = parseTime("29/02/2024")
	assert.Error(t, err)
}
