package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/leventyarali/vocanizer-sub000/internal/domain"
	"github.com/leventyarali/vocanizer-sub000/internal/store"
)

// MemoryTaskStore is an in-memory store.TaskStore. WithTx returns the same
// instance, so writes made inside a transaction are visible immediately and
// are not undone on rollback.
type MemoryTaskStore struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*domain.Task

	// Per-method error injection. A non-nil value is returned instead of
	// performing the operation.
	CreateErr           error
	CreateManyErr       error
	UpdateErr           error
	DeleteByParentIDErr error
	ListErr             error

	// Call counters for verification
	DeleteByParentIDCalls int
	WithTxCalls           int
}

// NewMemoryTaskStore creates an empty MemoryTaskStore.
func NewMemoryTaskStore() *MemoryTaskStore {
	return &MemoryTaskStore{tasks: make(map[uuid.UUID]*domain.Task)}
}

var _ store.TaskStore = (*MemoryTaskStore)(nil)

// Put stores a copy of task without validation.
func (m *MemoryTaskStore) Put(task *domain.Task) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks[task.ID] = copyTask(task)
}

// Len returns the number of stored rows.
func (m *MemoryTaskStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

// Create implements store.TaskStore.
func (m *MemoryTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	if err := task.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[task.ID]; ok {
		return store.ErrDuplicate
	}
	m.tasks[task.ID] = copyTask(task)
	return nil
}

// CreateMany implements store.TaskStore.
func (m *MemoryTaskStore) CreateMany(ctx context.Context, tasks []*domain.Task) error {
	if m.CreateManyErr != nil {
		return m.CreateManyErr
	}
	for _, task := range tasks {
		if err := task.Validate(); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, task := range tasks {
		m.tasks[task.ID] = copyTask(task)
	}
	return nil
}

// GetByID implements store.TaskStore.
func (m *MemoryTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	return copyTask(task), nil
}

// Update implements store.TaskStore.
func (m *MemoryTaskStore) Update(ctx context.Context, task *domain.Task) error {
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	if err := task.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[task.ID]; !ok {
		return store.ErrTaskNotFound
	}
	m.tasks[task.ID] = copyTask(task)
	return nil
}

// UpdateStatus implements store.TaskStore.
func (m *MemoryTaskStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TaskStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.tasks[id]
	if !ok {
		return store.ErrTaskNotFound
	}
	task.Status = status
	task.UpdatedAt = time.Now().UTC()
	return nil
}

// Delete implements store.TaskStore, cascading to occurrences.
func (m *MemoryTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[id]; !ok {
		return store.ErrTaskNotFound
	}
	delete(m.tasks, id)
	m.deleteChildren(id)
	return nil
}

// DeleteByParentID implements store.TaskStore.
func (m *MemoryTaskStore) DeleteByParentID(ctx context.Context, parentID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteByParentIDCalls++
	if m.DeleteByParentIDErr != nil {
		return 0, m.DeleteByParentIDErr
	}
	return m.deleteChildren(parentID), nil
}

func (m *MemoryTaskStore) deleteChildren(parentID uuid.UUID) int64 {
	var n int64
	for id, task := range m.tasks {
		if task.ParentTaskID != nil && *task.ParentTaskID == parentID {
			delete(m.tasks, id)
			n++
		}
	}
	return n
}

// ListByUser implements store.TaskStore with the same ordering and paging
// as the Postgres store.
func (m *MemoryTaskStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	filter store.TaskFilter,
) ([]*domain.Task, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}

	m.mu.Lock()
	var result []*domain.Task
	for _, task := range m.tasks {
		if task.UserID != userID {
			continue
		}
		if filter.Status != nil && task.Status != *filter.Status {
			continue
		}
		if !filter.IncludeOccurrences && task.IsOccurrence() {
			continue
		}
		result = append(result, copyTask(task))
	}
	m.mu.Unlock()

	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		switch {
		case a.DueDate != nil && b.DueDate == nil:
			return true
		case a.DueDate == nil && b.DueDate != nil:
			return false
		case a.DueDate != nil && !a.DueDate.Equal(*b.DueDate):
			return a.DueDate.Before(*b.DueDate)
		case !a.CreatedAt.Equal(b.CreatedAt):
			return a.CreatedAt.Before(b.CreatedAt)
		default:
			return a.ID.String() < b.ID.String()
		}
	})

	if filter.Offset >= len(result) {
		return []*domain.Task{}, nil
	}
	result = result[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}
	return result, nil
}

// ListByParent implements store.TaskStore.
func (m *MemoryTaskStore) ListByParent(ctx context.Context, parentID uuid.UUID) ([]*domain.Task, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}

	m.mu.Lock()
	result := []*domain.Task{}
	for _, task := range m.tasks {
		if task.ParentTaskID != nil && *task.ParentTaskID == parentID {
			result = append(result, copyTask(task))
		}
	}
	m.mu.Unlock()

	sort.Slice(result, func(i, j int) bool {
		return *result[i].SequenceIndex < *result[j].SequenceIndex
	})
	return result, nil
}

// PurgeCompletedOccurrences implements store.TaskStore.
func (m *MemoryTaskStore) PurgeCompletedOccurrences(ctx context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, task := range m.tasks {
		if task.IsOccurrence() &&
			task.Status == domain.TaskStatusCompleted &&
			task.DueDate != nil &&
			task.DueDate.Before(before) {
			delete(m.tasks, id)
			n++
		}
	}
	return n, nil
}

// WithTx implements store.TaskStore. The transaction is ignored.
func (m *MemoryTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	m.mu.Lock()
	m.WithTxCalls++
	m.mu.Unlock()
	return m
}

func copyTask(t *domain.Task) *domain.Task {
	c := *t
	if t.DueDate != nil {
		due := *t.DueDate
		c.DueDate = &due
	}
	if t.Recurrence != nil {
		rule := *t.Recurrence
		if t.Recurrence.DaysOfWeek != nil {
			rule.DaysOfWeek = append([]int{}, t.Recurrence.DaysOfWeek...)
		}
		c.Recurrence = &rule
	}
	if t.ParentTaskID != nil {
		id := *t.ParentTaskID
		c.ParentTaskID = &id
	}
	if t.SequenceIndex != nil {
		idx := *t.SequenceIndex
		c.SequenceIndex = &idx
	}
	return &c
}
