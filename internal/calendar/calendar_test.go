package calendar_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/leventyarali/vocanizer-sub000/internal/calendar"
	"github.com/leventyarali/vocanizer-sub000/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func occurrences(t *testing.T, n int) (*domain.Task, []*domain.Task) {
	t.Helper()

	due := time.Date(2024, time.January, 3, 18, 30, 0, 0, time.UTC)
	parent, err := domain.NewTask(uuid.New(), "Practice verbs", "ten minutes", &due, &domain.RecurrenceRule{
		Frequency: domain.FrequencyWeekly,
		Interval:  1,
		Count:     &n,
	})
	require.NoError(t, err)

	tasks := make([]*domain.Task, 0, n)
	for i := 0; i < n; i++ {
		tasks = append(tasks, domain.NewOccurrenceTask(parent, domain.Occurrence{
			DueDate:       due.AddDate(0, 0, 7*i),
			ParentTaskID:  parent.ID,
			SequenceIndex: i,
		}))
	}
	return parent, tasks
}

func TestMarshal_ParsesBack(t *testing.T) {
	t.Parallel()

	parent, tasks := occurrences(t, 3)

	data, err := calendar.Marshal(parent.Title, tasks)
	require.NoError(t, err)

	text := string(data)
	assert.Contains(t, text, "PRODID:"+calendar.ProductID)
	assert.Contains(t, text, "METHOD:PUBLISH")
	assert.Contains(t, text, "X-WR-CALNAME:Practice verbs")

	cal, err := ical.ParseCalendar(bytes.NewReader(data))
	require.NoError(t, err)

	events := cal.Events()
	require.Len(t, events, 3)
	for i, event := range events {
		assert.Equal(t, calendar.UID(tasks[i].ID), event.Id())
		assert.Equal(t, "Practice verbs", event.GetProperty(ical.ComponentPropertySummary).Value)
		assert.Equal(t, "ten minutes", event.GetProperty(ical.ComponentPropertyDescription).Value)

		start, err := event.GetStartAt()
		require.NoError(t, err)
		assert.True(t, tasks[i].DueDate.Equal(start), "event %d start %s", i, start)

		end, err := event.GetEndAt()
		require.NoError(t, err)
		assert.Equal(t, calendar.EventDuration, end.Sub(start))
	}
}

func TestBuild_SkipsTasksWithoutDueDate(t *testing.T) {
	t.Parallel()

	task, err := domain.NewTask(uuid.New(), "Someday", "", nil, nil)
	require.NoError(t, err)

	cal := calendar.Build("", []*domain.Task{task})
	assert.Empty(t, cal.Events())
	assert.NotContains(t, cal.Serialize(), "X-WR-CALNAME")
}

func TestUID(t *testing.T) {
	t.Parallel()

	id := uuid.MustParse("3f2a1b4c-5d6e-4f70-8a9b-0c1d2e3f4a5b")
	assert.Equal(t, "3f2a1b4c-5d6e-4f70-8a9b-0c1d2e3f4a5b@vocanizer", calendar.UID(id))
	assert.True(t, strings.HasSuffix(calendar.UID(uuid.New()), "@vocanizer"))
}
