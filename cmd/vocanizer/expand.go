package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/leventyarali/vocanizer-sub000/internal/domain"
	"github.com/leventyarali/vocanizer-sub000/internal/domain/recurrence"
	"github.com/spf13/cobra"
)

// ValidFormats defines the allowed output formats of expand.
var ValidFormats = []string{"json", "text"}

// timeLayouts are tried in order when parsing --anchor and --end.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

type expandOptions struct {
	Anchor    string
	Frequency string
	Interval  int
	Days      string
	Count     int
	End       string
	RRule     string
	Max       int
	Format    string
}

// ExpandResult is the JSON document written by expand.
type ExpandResult struct {
	Anchor      time.Time         `json:"anchor"`
	RRule       string            `json:"rrule,omitempty"`
	Occurrences []ExpandedDueDate `json:"occurrences"`
}

// ExpandedDueDate is one expanded occurrence.
type ExpandedDueDate struct {
	SequenceIndex int       `json:"sequence_index"`
	DueDate       time.Time `json:"due_date"`
}

// NewExpandCommand creates the expand command.
func NewExpandCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &expandOptions{}

	cmd := &cobra.Command{
		Use:   "expand",
		Short: "Print the due dates a recurrence rule produces",
		Long: `Expand a recurrence rule from an anchor date without touching the database.

The rule is given either with --frequency and its companion flags or as
RFC 5545 text with --rrule.`,
		Example: `  vocanizer expand --anchor 2024-01-01T09:00:00Z --frequency weekly --days 1,3,5 --count 6
  vocanizer expand --anchor 2024-01-31 --rrule "FREQ=MONTHLY;COUNT=4" --format text`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExpand(opts, cmd)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.Anchor, "anchor", "", "first due date (RFC 3339 or YYYY-MM-DD)")
	flags.StringVar(&opts.Frequency, "frequency", "", "daily, weekly, monthly or yearly")
	flags.IntVar(&opts.Interval, "interval", 1, "step between occurrences in units of frequency")
	flags.StringVar(&opts.Days, "days", "", "comma-separated ISO weekdays for weekly rules, Monday=1 .. Sunday=7")
	flags.IntVar(&opts.Count, "count", 0, "number of occurrences to produce")
	flags.StringVar(&opts.End, "end", "", "last possible due date, inclusive (RFC 3339 or YYYY-MM-DD)")
	flags.StringVar(&opts.RRule, "rrule", "", "RFC 5545 RRULE text instead of the structured flags")
	flags.IntVar(&opts.Max, "max", domain.DefaultMaxOccurrences, "maximum number of occurrences a rule may produce")
	flags.StringVar(&opts.Format, "format", "json", "output format (json|text)")

	_ = cmd.MarkFlagRequired("anchor")
	cmd.MarkFlagsMutuallyExclusive("rrule", "frequency")
	cmd.MarkFlagsMutuallyExclusive("rrule", "interval")
	cmd.MarkFlagsMutuallyExclusive("rrule", "days")
	cmd.MarkFlagsMutuallyExclusive("rrule", "count")
	cmd.MarkFlagsMutuallyExclusive("rrule", "end")
	cmd.MarkFlagsOneRequired("rrule", "frequency")

	return cmd
}

func runExpand(opts *expandOptions, cmd *cobra.Command) error {
	if !isValidFormat(opts.Format) {
		return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
	}

	anchor, err := parseTime(opts.Anchor)
	if err != nil {
		return fmt.Errorf("invalid --anchor: %w", err)
	}

	rule, err := buildRule(opts, cmd)
	if err != nil {
		return err
	}

	occurrences, err := recurrence.Expand(anchor, rule, recurrence.WithMaxOccurrences(opts.Max))
	if err != nil {
		return err
	}

	result := ExpandResult{
		Anchor:      anchor,
		Occurrences: make([]ExpandedDueDate, 0, len(occurrences)),
	}
	// An empty weekday set has no RRULE form; the result then carries none.
	if text, err := recurrence.FormatRRule(rule); err == nil {
		result.RRule = text
	}
	for _, o := range occurrences {
		result.Occurrences = append(result.Occurrences, ExpandedDueDate{
			SequenceIndex: o.SequenceIndex,
			DueDate:       o.DueDate,
		})
	}

	return writeExpandResult(cmd.OutOrStdout(), opts.Format, result)
}

// buildRule assembles the rule from either --rrule or the structured flags.
// Flags that were not given stay unset on the rule, so an explicit empty
// --days is an empty weekday set while an absent one is no filter at all.
func buildRule(opts *expandOptions, cmd *cobra.Command) (domain.RecurrenceRule, error) {
	if opts.RRule != "" {
		return recurrence.ParseRRule(opts.RRule)
	}

	rule := domain.RecurrenceRule{
		Frequency: domain.Frequency(strings.ToLower(strings.TrimSpace(opts.Frequency))),
		Interval:  opts.Interval,
	}

	flags := cmd.Flags()
	if flags.Changed("days") {
		days, err := parseDays(opts.Days)
		if err != nil {
			return domain.RecurrenceRule{}, err
		}
		rule.DaysOfWeek = days
	}
	if flags.Changed("count") {
		count := opts.Count
		rule.Count = &count
	}
	if opts.End != "" {
		end, err := parseTime(opts.End)
		if err != nil {
			return domain.RecurrenceRule{}, fmt.Errorf("invalid --end: %w", err)
		}
		rule.EndDate = &end
	}

	return rule, nil
}

func parseDays(value string) ([]int, error) {
	days := []int{}
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid --days entry %q: must be a number from 1 to 7", part)
		}
		days = append(days, d)
	}
	return days, nil
}

func parseTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as a date or date-time", value)
}

func writeExpandResult(w io.Writer, format string, result ExpandResult) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	if result.RRule != "" {
		if _, err := fmt.Fprintf(w, "RRULE:%s\n", result.RRule); err != nil {
			return err
		}
	}
	for _, o := range result.Occurrences {
		if _, err := fmt.Fprintf(w, "%d\t%s\n", o.SequenceIndex, o.DueDate.Format(time.RFC3339)); err != nil {
			return err
		}
	}
	return nil
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
