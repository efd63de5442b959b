// Package calendar renders tasks and their occurrences as iCalendar
// (RFC 5545) documents.
package calendar

import (
	"bytes"
	"fmt"
	"io"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/leventyarali/vocanizer-sub000/internal/domain"
)

// ProductID is the PRODID of every exported calendar.
const ProductID = "-//Vocanizer//Tasks//EN"

// EventDuration is the length given to each exported event.
const EventDuration = time.Hour

// ContentType is the media type of an exported calendar.
const ContentType = "text/calendar; charset=utf-8"

// UID returns the globally unique event identifier for a task.
func UID(id uuid.UUID) string {
	return id.String() + "@vocanizer"
}

// Build returns a PUBLISH calendar with one VEVENT per task that has a due
// date. For a recurring parent, pass its stored occurrences as tasks; the
// parent itself only names the calendar.
func Build(name string, tasks []*domain.Task) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.SetProductId(ProductID)
	cal.SetMethod(ical.MethodPublish)
	if name != "" {
		cal.SetXWRCalName(name)
	}

	for _, task := range tasks {
		if task.DueDate == nil {
			continue
		}

		event := cal.AddEvent(UID(task.ID))
		event.SetSummary(task.Title)
		if task.Description != "" {
			event.SetDescription(task.Description)
		}
		event.SetStartAt(*task.DueDate)
		event.SetEndAt(task.DueDate.Add(EventDuration))
		event.SetDtStampTime(task.UpdatedAt)
		if task.SequenceIndex != nil {
			event.SetProperty(ical.ComponentProperty("X-VOCANIZER-SEQUENCE-INDEX"), fmt.Sprint(*task.SequenceIndex))
		}
	}

	return cal
}

// Encode writes the calendar built from tasks to w.
func Encode(w io.Writer, name string, tasks []*domain.Task) error {
	if err := Build(name, tasks).SerializeTo(w); err != nil {
		return fmt.Errorf("failed to serialize calendar: %w", err)
	}
	return nil
}

// Marshal returns the calendar built from tasks as bytes.
func Marshal(name string, tasks []*domain.Task) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, name, tasks); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
