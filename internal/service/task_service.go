package service

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/leventyarali/vocanizer-sub000/internal/calendar"
	"github.com/leventyarali/vocanizer-sub000/internal/domain"
	"github.com/leventyarali/vocanizer-sub000/internal/domain/recurrence"
	"github.com/leventyarali/vocanizer-sub000/internal/platform/logger"
	"github.com/leventyarali/vocanizer-sub000/internal/store"
)

// Paging limits for ListTasks.
const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// RecurrenceInput carries a recurrence either as a structured rule or as
// RRULE text. At most one of the two may be set.
type RecurrenceInput struct {
	Rule  *domain.RecurrenceRule
	RRule string
}

// TaskInput is the client-controlled part of a task. UpdateTask replaces all
// of these fields.
type TaskInput struct {
	Title       string
	Description string
	DueDate     *time.Time
	Recurrence  RecurrenceInput
}

// ListTasksOptions filters and pages ListTasks.
type ListTasksOptions struct {
	Status             *domain.TaskStatus
	IncludeOccurrences bool
	Limit              int
	Offset             int
}

// TaskWithOccurrences is a saved task together with the occurrences that
// were generated for it. Occurrences is empty for one-off tasks.
type TaskWithOccurrences struct {
	Task        *domain.Task
	Occurrences []*domain.Task
}

// TaskService provides task-related operations.
type TaskService interface {
	// CreateTask validates and stores a task. A recurring task is expanded
	// from its due date (or the current time) and its occurrences are stored
	// in the same transaction.
	CreateTask(ctx context.Context, userID uuid.UUID, input TaskInput) (*TaskWithOccurrences, error)

	// UpdateTask replaces the task's fields, drops every occurrence generated
	// for it and regenerates them when the task is still recurring.
	UpdateTask(ctx context.Context, userID, taskID uuid.UUID, input TaskInput) (*TaskWithOccurrences, error)

	// GetTask returns a task owned by userID.
	GetTask(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error)

	// DeleteTask removes a task and, for a parent, its occurrences.
	DeleteTask(ctx context.Context, userID, taskID uuid.UUID) error

	// CompleteTask marks a task completed.
	CompleteTask(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error)

	// ListTasks pages through the user's tasks.
	ListTasks(ctx context.Context, userID uuid.UUID, opts ListTasksOptions) ([]*domain.Task, error)

	// ListOccurrences returns the stored occurrences of a parent task.
	ListOccurrences(ctx context.Context, userID, parentID uuid.UUID) ([]*domain.Task, error)

	// PreviewRecurrence expands a rule from anchor without storing anything.
	PreviewRecurrence(ctx context.Context, anchor time.Time, input RecurrenceInput) ([]domain.Occurrence, error)

	// ExportCalendar renders a task, or the occurrences of a parent, as iCalendar.
	ExportCalendar(ctx context.Context, userID, taskID uuid.UUID) ([]byte, error)
}

// TaskServiceOption configures a task service.
type TaskServiceOption func(*taskServiceImpl)

// WithMaxOccurrences caps how many occurrences one rule may generate.
func WithMaxOccurrences(n int) TaskServiceOption {
	return func(s *taskServiceImpl) {
		if n > 0 {
			s.maxOccurrences = n
		}
	}
}

// WithClock replaces time.Now, used as the anchor of rules on tasks without
// a due date.
func WithClock(now func() time.Time) TaskServiceOption {
	return func(s *taskServiceImpl) {
		if now != nil {
			s.now = now
		}
	}
}

type taskServiceImpl struct {
	tasks          store.TaskStore
	db             store.TxBeginner
	logger         *slog.Logger
	maxOccurrences int
	now            func() time.Time
}

// NewTaskService creates a TaskService.
// It returns an error if any of the required dependencies are nil.
func NewTaskService(
	tasks store.TaskStore,
	db store.TxBeginner,
	logger *slog.Logger,
	opts ...TaskServiceOption,
) (TaskService, error) {
	if tasks == nil {
		return nil, &TaskServiceError{Operation: "create_service", Message: "task store cannot be nil"}
	}
	if db == nil {
		return nil, &TaskServiceError{Operation: "create_service", Message: "db cannot be nil"}
	}

	if logger == nil {
		logger = slog.Default()
	}

	s := &taskServiceImpl{
		tasks:          tasks,
		db:             db,
		logger:         logger.With(slog.String("component", "task_service")),
		maxOccurrences: domain.DefaultMaxOccurrences,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

var _ TaskService = (*taskServiceImpl)(nil)

// CreateTask implements TaskService.CreateTask.
func (s *taskServiceImpl) CreateTask(
	ctx context.Context,
	userID uuid.UUID,
	input TaskInput,
) (*TaskWithOccurrences, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rule, err := s.resolveRule(input.Recurrence)
	if err != nil {
		return nil, err
	}

	task, err := domain.NewTask(userID, input.Title, input.Description, input.DueDate, rule)
	if err != nil {
		log.Debug("task validation failed", slog.String("error", err.Error()))
		return nil, err
	}

	occurrences, err := s.expand(task)
	if err != nil {
		return nil, err
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.tasks.WithTx(tx)
		if err := txStore.Create(ctx, task); err != nil {
			return err
		}
		return txStore.CreateMany(ctx, occurrences)
	})
	if err != nil {
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, NewTaskServiceError("create_task", "failed to save task", err)
	}

	log.Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("user_id", userID.String()),
		slog.Int("occurrences", len(occurrences)))

	return &TaskWithOccurrences{Task: task, Occurrences: occurrences}, nil
}

// UpdateTask implements TaskService.UpdateTask.
func (s *taskServiceImpl) UpdateTask(
	ctx context.Context,
	userID, taskID uuid.UUID,
	input TaskInput,
) (*TaskWithOccurrences, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rule, err := s.resolveRule(input.Recurrence)
	if err != nil {
		return nil, err
	}

	var (
		task        *domain.Task
		occurrences []*domain.Task
	)

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.tasks.WithTx(tx)

		existing, err := s.getOwned(ctx, txStore, userID, taskID)
		if err != nil {
			return err
		}

		if existing.IsOccurrence() && rule != nil {
			return ErrOccurrenceRecurrence
		}

		existing.Title = strings.TrimSpace(input.Title)
		existing.Description = input.Description
		existing.DueDate = input.DueDate
		existing.Recurrence = rule
		existing.UpdatedAt = s.now().UTC()
		if err := existing.Validate(); err != nil {
			return err
		}

		occurrences, err = s.expand(existing)
		if err != nil {
			return err
		}

		if err := txStore.Update(ctx, existing); err != nil {
			return err
		}

		deleted, err := txStore.DeleteByParentID(ctx, existing.ID)
		if err != nil {
			return err
		}
		log.Debug("dropped previous occurrences",
			slog.String("task_id", existing.ID.String()),
			slog.Int64("count", deleted))

		if err := txStore.CreateMany(ctx, occurrences); err != nil {
			return err
		}

		task = existing
		return nil
	})
	if err != nil {
		log.Debug("task update failed",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, NewTaskServiceError("update_task", "failed to update task", err)
	}

	log.Info("task updated",
		slog.String("task_id", task.ID.String()),
		slog.Int("occurrences", len(occurrences)))

	return &TaskWithOccurrences{Task: task, Occurrences: occurrences}, nil
}

// GetTask implements TaskService.GetTask.
func (s *taskServiceImpl) GetTask(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error) {
	task, err := s.getOwned(ctx, s.tasks, userID, taskID)
	if err != nil {
		return nil, NewTaskServiceError("get_task", "failed to retrieve task", err)
	}
	return task, nil
}

// DeleteTask implements TaskService.DeleteTask.
func (s *taskServiceImpl) DeleteTask(ctx context.Context, userID, taskID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.tasks.WithTx(tx)
		if _, err := s.getOwned(ctx, txStore, userID, taskID); err != nil {
			return err
		}
		return txStore.Delete(ctx, taskID)
	})
	if err != nil {
		return NewTaskServiceError("delete_task", "failed to delete task", err)
	}

	log.Info("task deleted", slog.String("task_id", taskID.String()))
	return nil
}

// CompleteTask implements TaskService.CompleteTask.
func (s *taskServiceImpl) CompleteTask(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error) {
	task, err := s.getOwned(ctx, s.tasks, userID, taskID)
	if err != nil {
		return nil, NewTaskServiceError("complete_task", "failed to retrieve task", err)
	}

	if task.Status == domain.TaskStatusCompleted {
		return task, nil
	}

	if err := s.tasks.UpdateStatus(ctx, taskID, domain.TaskStatusCompleted); err != nil {
		return nil, NewTaskServiceError("complete_task", "failed to update status", err)
	}

	if err := task.UpdateStatus(domain.TaskStatusCompleted); err != nil {
		return nil, err
	}
	return task, nil
}

// ListTasks implements TaskService.ListTasks.
func (s *taskServiceImpl) ListTasks(
	ctx context.Context,
	userID uuid.UUID,
	opts ListTasksOptions,
) ([]*domain.Task, error) {
	if opts.Offset < 0 {
		return nil, domain.NewValidationError("offset", "must not be negative", domain.ErrValidation)
	}
	if opts.Limit < 0 || opts.Limit > MaxListLimit {
		return nil, domain.NewValidationError("limit", "must be between 1 and 200", domain.ErrValidation)
	}
	if opts.Limit == 0 {
		opts.Limit = DefaultListLimit
	}
	if opts.Status != nil && *opts.Status != domain.TaskStatusPending && *opts.Status != domain.TaskStatusCompleted {
		return nil, domain.ErrInvalidTaskStatus
	}

	tasks, err := s.tasks.ListByUser(ctx, userID, store.TaskFilter{
		Status:             opts.Status,
		IncludeOccurrences: opts.IncludeOccurrences,
		Limit:              opts.Limit,
		Offset:             opts.Offset,
	})
	if err != nil {
		return nil, NewTaskServiceError("list_tasks", "failed to list tasks", err)
	}
	return tasks, nil
}

// ListOccurrences implements TaskService.ListOccurrences.
func (s *taskServiceImpl) ListOccurrences(ctx context.Context, userID, parentID uuid.UUID) ([]*domain.Task, error) {
	if _, err := s.getOwned(ctx, s.tasks, userID, parentID); err != nil {
		return nil, NewTaskServiceError("list_occurrences", "failed to retrieve parent task", err)
	}

	occurrences, err := s.tasks.ListByParent(ctx, parentID)
	if err != nil {
		return nil, NewTaskServiceError("list_occurrences", "failed to list occurrences", err)
	}
	return occurrences, nil
}

// PreviewRecurrence implements TaskService.PreviewRecurrence.
func (s *taskServiceImpl) PreviewRecurrence(
	ctx context.Context,
	anchor time.Time,
	input RecurrenceInput,
) ([]domain.Occurrence, error) {
	rule, err := s.resolveRule(input)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, domain.NewValidationError("recurrence", "is required", domain.ErrInvalidRecurrence)
	}

	occurrences, err := recurrence.Expand(anchor, *rule, recurrence.WithMaxOccurrences(s.maxOccurrences))
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Debug("preview rejected", slog.String("error", err.Error()))
		return nil, err
	}
	return occurrences, nil
}

// ExportCalendar implements TaskService.ExportCalendar.
func (s *taskServiceImpl) ExportCalendar(ctx context.Context, userID, taskID uuid.UUID) ([]byte, error) {
	task, err := s.getOwned(ctx, s.tasks, userID, taskID)
	if err != nil {
		return nil, NewTaskServiceError("export_calendar", "failed to retrieve task", err)
	}

	events := []*domain.Task{task}
	if task.IsRecurring() {
		events, err = s.tasks.ListByParent(ctx, task.ID)
		if err != nil {
			return nil, NewTaskServiceError("export_calendar", "failed to list occurrences", err)
		}
	}

	data, err := calendar.Marshal(task.Title, events)
	if err != nil {
		return nil, NewTaskServiceError("export_calendar", "failed to render calendar", err)
	}
	return data, nil
}

// resolveRule turns the request's recurrence into a rule, or nil when the
// task does not repeat.
func (s *taskServiceImpl) resolveRule(input RecurrenceInput) (*domain.RecurrenceRule, error) {
	text := strings.TrimSpace(input.RRule)
	switch {
	case input.Rule != nil && text != "":
		return nil, ErrAmbiguousRecurrence
	case text != "":
		rule, err := recurrence.ParseRRule(text)
		if err != nil {
			return nil, err
		}
		return &rule, nil
	case input.Rule != nil:
		if err := input.Rule.Validate(s.maxOccurrences); err != nil {
			return nil, err
		}
		return input.Rule, nil
	default:
		return nil, nil
	}
}

// expand materializes the occurrences of a recurring task. It returns nil
// for tasks without a rule.
func (s *taskServiceImpl) expand(task *domain.Task) ([]*domain.Task, error) {
	if !task.IsRecurring() {
		return nil, nil
	}

	occs, err := recurrence.Expand(
		task.Anchor(s.now().UTC()),
		*task.Recurrence,
		recurrence.WithParentTaskID(task.ID),
		recurrence.WithMaxOccurrences(s.maxOccurrences),
	)
	if err != nil {
		return nil, err
	}

	tasks := make([]*domain.Task, 0, len(occs))
	for _, occ := range occs {
		tasks = append(tasks, domain.NewOccurrenceTask(task, occ))
	}
	return tasks, nil
}

func (s *taskServiceImpl) getOwned(
	ctx context.Context,
	tasks store.TaskStore,
	userID, taskID uuid.UUID,
) (*domain.Task, error) {
	task, err := tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.UserID != userID {
		logger.FromContextOrDefault(ctx, s.logger).Warn("task access denied",
			slog.String("task_id", taskID.String()),
			slog.String("user_id", userID.String()))
		return nil, ErrNotOwned
	}
	return task, nil
}
