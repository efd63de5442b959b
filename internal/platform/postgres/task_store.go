package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/leventyarali/vocanizer-sub000/internal/domain"
	"github.com/leventyarali/vocanizer-sub000/internal/platform/logger"
	"github.com/leventyarali/vocanizer-sub000/internal/store"
)

const taskColumns = `id, user_id, title, description, status, due_date, recurrence,
	parent_task_id, sequence_index, created_at, updated_at`

const insertTaskQuery = `
	INSERT INTO tasks (` + taskColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

var _ store.TaskStore = (*PostgresTaskStore)(nil)

// WithTx implements store.TaskStore.WithTx.
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.TaskStore.Create.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	args, err := taskArgs(task)
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, insertTaskQuery, args...); err != nil {
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return MapError(err)
	}

	log.Debug("task created",
		slog.String("task_id", task.ID.String()),
		slog.Bool("recurring", task.IsRecurring()))
	return nil
}

// CreateMany implements store.TaskStore.CreateMany.
// It validates the whole batch first, then inserts through one prepared statement.
func (s *PostgresTaskStore) CreateMany(ctx context.Context, tasks []*domain.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	log := logger.FromContextOrDefault(ctx, s.logger)

	for _, task := range tasks {
		if err := task.Validate(); err != nil {
			log.Warn("task validation failed during batch create",
				slog.String("error", err.Error()),
				slog.String("task_id", task.ID.String()))
			return err
		}
	}

	stmt, err := s.db.PrepareContext(ctx, insertTaskQuery)
	if err != nil {
		log.Error("failed to prepare task insert", slog.String("error", err.Error()))
		return MapError(err)
	}
	defer func() { _ = stmt.Close() }()

	for _, task := range tasks {
		args, err := taskArgs(task)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			log.Error("failed to insert task in batch",
				slog.String("error", err.Error()),
				slog.String("task_id", task.ID.String()))
			return MapError(err)
		}
	}

	log.Debug("tasks created", slog.Int("count", len(tasks)))
	return nil
}

// GetByID implements store.TaskStore.GetByID.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.String("task_id", id.String()))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, MapError(err)
	}

	return task, nil
}

// Update implements store.TaskStore.Update.
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during update",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	recurrence, err := encodeRecurrence(task.Recurrence)
	if err != nil {
		return err
	}

	query := `
		UPDATE tasks
		SET title = $1, description = $2, status = $3, due_date = $4,
			recurrence = $5, updated_at = $6
		WHERE id = $7
	`

	result, err := s.db.ExecContext(ctx, query,
		task.Title,
		task.Description,
		string(task.Status),
		nullTime(task.DueDate),
		recurrence,
		task.UpdatedAt,
		task.ID,
	)
	if err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		log.Debug("task to update not found", slog.String("task_id", task.ID.String()))
		return err
	}

	return nil
}

// UpdateStatus implements store.TaskStore.UpdateStatus.
func (s *PostgresTaskStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TaskStatus) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if status != domain.TaskStatusPending && status != domain.TaskStatusCompleted {
		return domain.ErrInvalidTaskStatus
	}

	query := `UPDATE tasks SET status = $1, updated_at = $2 WHERE id = $3`

	result, err := s.db.ExecContext(ctx, query, string(status), time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to update task status",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrTaskNotFound)
}

// Delete implements store.TaskStore.Delete.
func (s *PostgresTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		return err
	}

	log.Debug("task deleted", slog.String("task_id", id.String()))
	return nil
}

// DeleteByParentID implements store.TaskStore.DeleteByParentID.
func (s *PostgresTaskStore) DeleteByParentID(ctx context.Context, parentID uuid.UUID) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE parent_task_id = $1`, parentID)
	if err != nil {
		log.Error("failed to delete occurrences",
			slog.String("error", err.Error()),
			slog.String("parent_task_id", parentID.String()))
		return 0, MapError(err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	log.Debug("occurrences deleted",
		slog.String("parent_task_id", parentID.String()),
		slog.Int64("count", deleted))
	return deleted, nil
}

// ListByUser implements store.TaskStore.ListByUser.
func (s *PostgresTaskStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	filter store.TaskFilter,
) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var b strings.Builder
	b.WriteString(`SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1`)
	args := []any{userID}

	if !filter.IncludeOccurrences {
		b.WriteString(` AND parent_task_id IS NULL`)
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		fmt.Fprintf(&b, ` AND status = $%d`, len(args))
	}
	b.WriteString(` ORDER BY due_date ASC NULLS LAST, created_at ASC, id ASC`)
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		fmt.Fprintf(&b, ` LIMIT $%d`, len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		fmt.Fprintf(&b, ` OFFSET $%d`, len(args))
	}

	tasks, err := s.queryTasks(ctx, b.String(), args...)
	if err != nil {
		log.Error("failed to list tasks",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, err
	}

	return tasks, nil
}

// ListByParent implements store.TaskStore.ListByParent.
func (s *PostgresTaskStore) ListByParent(ctx context.Context, parentID uuid.UUID) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE parent_task_id = $1 ORDER BY sequence_index ASC`

	tasks, err := s.queryTasks(ctx, query, parentID)
	if err != nil {
		log.Error("failed to list occurrences",
			slog.String("error", err.Error()),
			slog.String("parent_task_id", parentID.String()))
		return nil, err
	}

	return tasks, nil
}

// PurgeCompletedOccurrences implements store.TaskStore.PurgeCompletedOccurrences.
func (s *PostgresTaskStore) PurgeCompletedOccurrences(ctx context.Context, before time.Time) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		DELETE FROM tasks
		WHERE parent_task_id IS NOT NULL
			AND status = $1
			AND due_date < $2
	`

	result, err := s.db.ExecContext(ctx, query, string(domain.TaskStatusCompleted), before)
	if err != nil {
		log.Error("failed to purge completed occurrences", slog.String("error", err.Error()))
		return 0, MapError(err)
	}

	purged, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return purged, nil
}

func (s *PostgresTaskStore) queryTasks(ctx context.Context, query string, args ...any) ([]*domain.Task, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return tasks, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task       domain.Task
		status     string
		dueDate    sql.NullTime
		recurrence []byte
		parentID   uuid.NullUUID
		sequence   sql.NullInt32
	)

	if err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&task.Description,
		&status,
		&dueDate,
		&recurrence,
		&parentID,
		&sequence,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		return nil, err
	}

	task.Status = domain.TaskStatus(status)
	if dueDate.Valid {
		due := dueDate.Time
		task.DueDate = &due
	}
	if len(recurrence) > 0 {
		var rule domain.RecurrenceRule
		if err := json.Unmarshal(recurrence, &rule); err != nil {
			return nil, fmt.Errorf("failed to decode recurrence of task %s: %w", task.ID, err)
		}
		task.Recurrence = &rule
	}
	if parentID.Valid {
		id := parentID.UUID
		task.ParentTaskID = &id
	}
	if sequence.Valid {
		index := int(sequence.Int32)
		task.SequenceIndex = &index
	}

	return &task, nil
}

func taskArgs(task *domain.Task) ([]any, error) {
	recurrence, err := encodeRecurrence(task.Recurrence)
	if err != nil {
		return nil, err
	}

	var parentID any
	if task.ParentTaskID != nil {
		parentID = *task.ParentTaskID
	}
	var sequence any
	if task.SequenceIndex != nil {
		sequence = int64(*task.SequenceIndex)
	}

	return []any{
		task.ID,
		task.UserID,
		task.Title,
		task.Description,
		string(task.Status),
		nullTime(task.DueDate),
		recurrence,
		parentID,
		sequence,
		task.CreatedAt,
		task.UpdatedAt,
	}, nil
}

// encodeRecurrence returns the JSONB value for rule, or nil for SQL NULL.
func encodeRecurrence(rule *domain.RecurrenceRule) (any, error) {
	if rule == nil {
		return nil, nil
	}
	data, err := json.Marshal(rule)
	if err != nil {
		return nil, fmt.Errorf("failed to encode recurrence: %w", err)
	}
	return string(data), nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
