package api

import (
	"time"

	"github.com/leventyarali/vocanizer-sub000/internal/domain"
	"github.com/leventyarali/vocanizer-sub000/internal/service"
)

// RecurrenceRequest is the JSON form of a recurrence rule. An omitted
// interval means 1; an explicit 0 is rejected.
type RecurrenceRequest struct {
	Frequency  string     `json:"frequency" validate:"required,oneof=daily weekly monthly yearly"`
	Interval   *int       `json:"interval,omitempty" validate:"omitempty,gte=1"`
	DaysOfWeek []int      `json:"days_of_week,omitempty" validate:"omitempty,max=7,dive,min=1,max=7"`
	EndDate    *time.Time `json:"end_date,omitempty"`
	Count      *int       `json:"count,omitempty" validate:"omitempty,gte=1"`
}

// ToDomain converts the request into a domain rule.
func (r *RecurrenceRequest) ToDomain() *domain.RecurrenceRule {
	if r == nil {
		return nil
	}
	interval := 1
	if r.Interval != nil {
		interval = *r.Interval
	}
	return &domain.RecurrenceRule{
		Frequency:  domain.Frequency(r.Frequency),
		Interval:   interval,
		DaysOfWeek: r.DaysOfWeek,
		EndDate:    r.EndDate,
		Count:      r.Count,
	}
}

// TaskRequest is the body of POST /api/tasks and PUT /api/tasks/{id}.
type TaskRequest struct {
	Title       string             `json:"title" validate:"required,max=200"`
	Description string             `json:"description" validate:"max=5000"`
	DueDate     *time.Time         `json:"due_date,omitempty"`
	Recurrence  *RecurrenceRequest `json:"recurrence,omitempty"`
	RRule       string             `json:"rrule,omitempty" validate:"max=500"`
}

// ToInput converts the request into service input.
func (r *TaskRequest) ToInput() service.TaskInput {
	return service.TaskInput{
		Title:       r.Title,
		Description: r.Description,
		DueDate:     r.DueDate,
		Recurrence: service.RecurrenceInput{
			Rule:  r.Recurrence.ToDomain(),
			RRule: r.RRule,
		},
	}
}

// PreviewRequest is the body of POST /api/recurrence/preview.
type PreviewRequest struct {
	Anchor     time.Time          `json:"anchor" validate:"required"`
	Recurrence *RecurrenceRequest `json:"recurrence,omitempty"`
	RRule      string             `json:"rrule,omitempty" validate:"max=500"`
}

// RecurrenceResponse is the JSON form of a stored rule together with its
// RFC 5545 rendering.
type RecurrenceResponse struct {
	Frequency  string     `json:"frequency"`
	Interval   int        `json:"interval"`
	DaysOfWeek []int      `json:"days_of_week"`
	EndDate    *time.Time `json:"end_date,omitempty"`
	Count      *int       `json:"count,omitempty"`
	RRule      string     `json:"rrule,omitempty"`
}

// TaskResponse represents a task in API responses.
type TaskResponse struct {
	ID            string              `json:"id"`
	UserID        string              `json:"user_id"`
	Title         string              `json:"title"`
	Description   string              `json:"description"`
	Status        string              `json:"status"`
	DueDate       *time.Time          `json:"due_date,omitempty"`
	Recurrence    *RecurrenceResponse `json:"recurrence,omitempty"`
	ParentTaskID  *string             `json:"parent_task_id,omitempty"`
	SequenceIndex *int                `json:"sequence_index,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// TaskWithOccurrencesResponse is returned by create and update.
type TaskWithOccurrencesResponse struct {
	Task        TaskResponse   `json:"task"`
	Occurrences []TaskResponse `json:"occurrences"`
}

// TaskListResponse is returned by the list endpoints.
type TaskListResponse struct {
	Tasks  []TaskResponse `json:"tasks"`
	Limit  int            `json:"limit,omitempty"`
	Offset int            `json:"offset,omitempty"`
}

// OccurrenceResponse is one previewed occurrence.
type OccurrenceResponse struct {
	DueDate       time.Time `json:"due_date"`
	SequenceIndex int       `json:"sequence_index"`
}

// PreviewResponse is returned by POST /api/recurrence/preview.
type PreviewResponse struct {
	Occurrences []OccurrenceResponse `json:"occurrences"`
	RRule       string               `json:"rrule,omitempty"`
}
