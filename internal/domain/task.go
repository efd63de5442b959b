package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// TaskStatus represents the completion state of a task.
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
)

// MaxTaskTitleLength is the longest title a task may carry, in runes.
const MaxTaskTitleLength = 200

// Task-specific validation errors
var (
	ErrTaskIDEmpty              = fmt.Errorf("%w: task ID cannot be empty", ErrValidation)
	ErrTaskUserIDEmpty          = fmt.Errorf("%w: task user ID cannot be empty", ErrValidation)
	ErrTaskTitleEmpty           = fmt.Errorf("%w: task title cannot be empty", ErrValidation)
	ErrTaskTitleTooLong         = fmt.Errorf("%w: task title is too long", ErrValidation)
	ErrInvalidTaskStatus        = fmt.Errorf("%w: invalid task status", ErrValidation)
	ErrOccurrenceRecurrence     = fmt.Errorf("%w: an occurrence cannot carry a recurrence rule", ErrValidation)
	ErrOccurrenceLinkIncomplete = fmt.Errorf("%w: occurrence requires both parent task ID and sequence index", ErrValidation)
)

// Task is a to-do item owned by a user. A task carrying a Recurrence is a
// parent; the occurrences generated from it are stored as tasks of their own
// with ParentTaskID and SequenceIndex set.
type Task struct {
	ID            uuid.UUID       `json:"id"`
	UserID        uuid.UUID       `json:"user_id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Status        TaskStatus      `json:"status"`
	DueDate       *time.Time      `json:"due_date,omitempty"`
	Recurrence    *RecurrenceRule `json:"recurrence,omitempty"`
	ParentTaskID  *uuid.UUID      `json:"parent_task_id,omitempty"`
	SequenceIndex *int            `json:"sequence_index,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// NewTask creates a pending Task with a fresh ID and timestamps.
// Returns an error if validation fails. The recurrence rule itself is
// validated separately, against the configured occurrence cap.
func NewTask(userID uuid.UUID, title, description string, dueDate *time.Time, rule *RecurrenceRule) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       strings.TrimSpace(title),
		Description: description,
		Status:      TaskStatusPending,
		DueDate:     dueDate,
		Recurrence:  rule,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// NewOccurrenceTask materializes an occurrence of parent as its own task.
func NewOccurrenceTask(parent *Task, occ Occurrence) *Task {
	due := occ.DueDate
	parentID := parent.ID
	index := occ.SequenceIndex
	now := time.Now().UTC()

	return &Task{
		ID:            uuid.New(),
		UserID:        parent.UserID,
		Title:         parent.Title,
		Description:   parent.Description,
		Status:        TaskStatusPending,
		DueDate:       &due,
		ParentTaskID:  &parentID,
		SequenceIndex: &index,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrTaskIDEmpty
	}

	if t.UserID == uuid.Nil {
		return ErrTaskUserIDEmpty
	}

	if strings.TrimSpace(t.Title) == "" {
		return ErrTaskTitleEmpty
	}

	if utf8.RuneCountInString(t.Title) > MaxTaskTitleLength {
		return ErrTaskTitleTooLong
	}

	if !isValidTaskStatus(t.Status) {
		return ErrInvalidTaskStatus
	}

	if (t.ParentTaskID == nil) != (t.SequenceIndex == nil) {
		return ErrOccurrenceLinkIncomplete
	}

	if t.IsOccurrence() && t.Recurrence != nil {
		return ErrOccurrenceRecurrence
	}

	if t.SequenceIndex != nil && *t.SequenceIndex < 0 {
		return NewValidationError("sequence_index", "must not be negative", ErrValidation)
	}

	return nil
}

// IsRecurring reports whether the task is a recurring parent.
func (t *Task) IsRecurring() bool {
	return t.Recurrence != nil
}

// IsOccurrence reports whether the task was generated from a parent.
func (t *Task) IsOccurrence() bool {
	return t.ParentTaskID != nil
}

// Anchor returns the date recurrence is computed from: the due date, or now
// when the task has none.
func (t *Task) Anchor(now time.Time) time.Time {
	if t.DueDate != nil {
		return *t.DueDate
	}
	return now
}

// UpdateStatus sets the status and bumps UpdatedAt.
func (t *Task) UpdateStatus(status TaskStatus) error {
	if !isValidTaskStatus(status) {
		return ErrInvalidTaskStatus
	}

	t.Status = status
	t.UpdatedAt = time.Now().UTC()
	return nil
}

func isValidTaskStatus(status TaskStatus) bool {
	switch status {
	case TaskStatusPending, TaskStatusCompleted:
		return true
	default:
		return false
	}
}
