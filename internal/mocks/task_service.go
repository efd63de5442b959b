package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/leventyarali/vocanizer-sub000/internal/domain"
	"github.com/leventyarali/vocanizer-sub000/internal/service"
)

// MockTaskService implements service.TaskService for testing. Each method
// calls its Fn field when set and otherwise returns the zero value and Err.
type MockTaskService struct {
	CreateTaskFn        func(ctx context.Context, userID uuid.UUID, input service.TaskInput) (*service.TaskWithOccurrences, error)
	UpdateTaskFn        func(ctx context.Context, userID, taskID uuid.UUID, input service.TaskInput) (*service.TaskWithOccurrences, error)
	GetTaskFn           func(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error)
	DeleteTaskFn        func(ctx context.Context, userID, taskID uuid.UUID) error
	CompleteTaskFn      func(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error)
	ListTasksFn         func(ctx context.Context, userID uuid.UUID, opts service.ListTasksOptions) ([]*domain.Task, error)
	ListOccurrencesFn   func(ctx context.Context, userID, parentID uuid.UUID) ([]*domain.Task, error)
	PreviewRecurrenceFn func(ctx context.Context, anchor time.Time, input service.RecurrenceInput) ([]domain.Occurrence, error)
	ExportCalendarFn    func(ctx context.Context, userID, taskID uuid.UUID) ([]byte, error)

	Err error

	mu    sync.Mutex
	calls map[string]int
}

var _ service.TaskService = (*MockTaskService)(nil)

// Calls returns how many times the named method was invoked.
func (m *MockTaskService) Calls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

func (m *MockTaskService) record(method string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[method]++
}

// CreateTask implements service.TaskService.
func (m *MockTaskService) CreateTask(
	ctx context.Context,
	userID uuid.UUID,
	input service.TaskInput,
) (*service.TaskWithOccurrences, error) {
	m.record("CreateTask")
	if m.CreateTaskFn != nil {
		return m.CreateTaskFn(ctx, userID, input)
	}
	return nil, m.Err
}

// UpdateTask implements service.TaskService.
func (m *MockTaskService) UpdateTask(
	ctx context.Context,
	userID, taskID uuid.UUID,
	input service.TaskInput,
) (*service.TaskWithOccurrences, error) {
	m.record("UpdateTask")
	if m.UpdateTaskFn != nil {
		return m.UpdateTaskFn(ctx, userID, taskID, input)
	}
	return nil, m.Err
}

// GetTask implements service.TaskService.
func (m *MockTaskService) GetTask(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error) {
	m.record("GetTask")
	if m.GetTaskFn != nil {
		return m.GetTaskFn(ctx, userID, taskID)
	}
	return nil, m.Err
}

// DeleteTask implements service.TaskService.
func (m *MockTaskService) DeleteTask(ctx context.Context, userID, taskID uuid.UUID) error {
	m.record("DeleteTask")
	if m.DeleteTaskFn != nil {
		return m.DeleteTaskFn(ctx, userID, taskID)
	}
	return m.Err
}

// CompleteTask implements service.TaskService.
func (m *MockTaskService) CompleteTask(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error) {
	m.record("CompleteTask")
	if m.CompleteTaskFn != nil {
		return m.CompleteTaskFn(ctx, userID, taskID)
	}
	return nil, m.Err
}

// ListTasks implements service.TaskService.
func (m *MockTaskService) ListTasks(
	ctx context.Context,
	userID uuid.UUID,
	opts service.ListTasksOptions,
) ([]*domain.Task, error) {
	m.record("ListTasks")
	if m.ListTasksFn != nil {
		return m.ListTasksFn(ctx, userID, opts)
	}
	return nil, m.Err
}

// ListOccurrences implements service.TaskService.
func (m *MockTaskService) ListOccurrences(ctx context.Context, userID, parentID uuid.UUID) ([]*domain.Task, error) {
	m.record("ListOccurrences")
	if m.ListOccurrencesFn != nil {
		return m.ListOccurrencesFn(ctx, userID, parentID)
	}
	return nil, m.Err
}

// PreviewRecurrence implements service.TaskService.
func (m *MockTaskService) PreviewRecurrence(
	ctx context.Context,
	anchor time.Time,
	input service.RecurrenceInput,
) ([]domain.Occurrence, error) {
	m.record("PreviewRecurrence")
	if m.PreviewRecurrenceFn != nil {
		return m.PreviewRecurrenceFn(ctx, anchor, input)
	}
	return nil, m.Err
}

// ExportCalendar implements service.TaskService.
func (m *MockTaskService) ExportCalendar(ctx context.Context, userID, taskID uuid.UUID) ([]byte, error) {
	m.record("ExportCalendar")
	if m.ExportCalendarFn != nil {
		return m.ExportCalendarFn(ctx, userID, taskID)
	}
	return nil, m.Err
}
