package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/leventyarali/vocanizer-sub000/internal/domain"
)

// TaskFilter narrows ListByUser results.
type TaskFilter struct {
	// Status restricts results to a single status when set.
	Status *domain.TaskStatus

	// IncludeOccurrences also returns generated occurrence rows. By default only
	// one-off tasks and recurring parents are listed.
	IncludeOccurrences bool

	Limit  int
	Offset int
}

// TaskStore defines the interface for task data persistence.
type TaskStore interface {
	// Create saves a new task to the store.
	// Returns validation errors from the domain Task if data is invalid.
	Create(ctx context.Context, task *domain.Task) error

	// CreateMany saves a batch of tasks, typically the occurrences of a
	// recurring parent. Every task is validated before anything is written.
	CreateMany(ctx context.Context, tasks []*domain.Task) error

	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// Update saves changes to an existing task.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// UpdateStatus updates only the status of a task.
	// Returns ErrTaskNotFound if the task does not exist.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TaskStatus) error

	// Delete removes a task. Occurrences of a recurring parent are removed
	// with it by the database cascade.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteByParentID removes every occurrence generated for parentID and
	// returns how many rows were deleted. Deleting zero rows is not an error.
	DeleteByParentID(ctx context.Context, parentID uuid.UUID) (int64, error)

	// ListByUser returns the tasks owned by userID ordered by due date,
	// then creation time.
	ListByUser(ctx context.Context, userID uuid.UUID, filter TaskFilter) ([]*domain.Task, error)

	// ListByParent returns the occurrences of parentID in sequence order.
	ListByParent(ctx context.Context, parentID uuid.UUID) ([]*domain.Task, error)

	// PurgeCompletedOccurrences deletes completed occurrence rows due before
	// the given time and returns how many were removed.
	PurgeCompletedOccurrences(ctx context.Context, before time.Time) (int64, error)

	// WithTx returns a new TaskStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) TaskStore
}
