//go:build integration

package postgres_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/leventyarali/vocanizer-sub000/internal/domain"
	"github.com/leventyarali/vocanizer-sub000/internal/domain/recurrence"
	"github.com/leventyarali/vocanizer-sub000/internal/platform/postgres"
	"github.com/leventyarali/vocanizer-sub000/internal/store"
	"github.com/leventyarali/vocanizer-sub000/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createRecurringTask(t *testing.T, ctx context.Context, s store.TaskStore, count int) (*domain.Task, []*domain.Task) {
	t.Helper()

	due := time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC)
	parent, err := domain.NewTask(uuid.New(), "Daily review", "", &due, &domain.RecurrenceRule{
		Frequency: domain.FrequencyDaily,
		Interval:  1,
		Count:     &count,
	})
	require.NoError(t, err)
	require.NoError(t, s.Create(ctx, parent))

	occs, err := recurrence.Expand(due, *parent.Recurrence, recurrence.WithParentTaskID(parent.ID))
	require.NoError(t, err)

	children := make([]*domain.Task, 0, len(occs))
	for _, occ := range occs {
		children = append(children, domain.NewOccurrenceTask(parent, occ))
	}
	require.NoError(t, s.CreateMany(ctx, children))

	return parent, children
}

func TestPostgresTaskStore_Integration_RoundTrip(t *testing.T) {
	db := testdb.GetTestDBWithT(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		s := postgres.NewPostgresTaskStore(db, nil).WithTx(tx)

		parent, children := createRecurringTask(t, ctx, s, 3)

		got, err := s.GetByID(ctx, parent.ID)
		require.NoError(t, err)
		require.NotNil(t, got.Recurrence)
		assert.Equal(t, *parent.Recurrence.Count, *got.Recurrence.Count)

		listed, err := s.ListByParent(ctx, parent.ID)
		require.NoError(t, err)
		require.Len(t, listed, len(children))
		for i, occ := range listed {
			require.NotNil(t, occ.SequenceIndex)
			assert.Equal(t, i, *occ.SequenceIndex)
			assert.Nil(t, occ.Recurrence)
		}

		tasks, err := s.ListByUser(ctx, parent.UserID, store.TaskFilter{})
		require.NoError(t, err)
		assert.Len(t, tasks, 1, "occurrences are hidden by default")

		tasks, err = s.ListByUser(ctx, parent.UserID, store.TaskFilter{IncludeOccurrences: true})
		require.NoError(t, err)
		assert.Len(t, tasks, 4)
	})
}

func TestPostgresTaskStore_Integration_DeleteCascades(t *testing.T) {
	db := testdb.GetTestDBWithT(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		s := postgres.NewPostgresTaskStore(tx, nil)

		parent, children := createRecurringTask(t, ctx, s, 2)

		require.NoError(t, s.Delete(ctx, parent.ID))

		_, err := s.GetByID(ctx, children[0].ID)
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})
}

func TestPostgresTaskStore_Integration_PurgeCompletedOccurrences(t *testing.T) {
	db := testdb.GetTestDBWithT(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		s := postgres.NewPostgresTaskStore(tx, nil)

		parent, children := createRecurringTask(t, ctx, s, 3)
		require.NoError(t, s.UpdateStatus(ctx, children[0].ID, domain.TaskStatusCompleted))
		require.NoError(t, s.UpdateStatus(ctx, children[2].ID, domain.TaskStatusCompleted))

		purged, err := s.PurgeCompletedOccurrences(ctx, children[1].DueDate.Add(time.Minute))
		require.NoError(t, err)
		assert.Equal(t, int64(1), purged)

		remaining, err := s.ListByParent(ctx, parent.ID)
		require.NoError(t, err)
		assert.Len(t, remaining, 2)

		deleted, err := s.DeleteByParentID(ctx, parent.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), deleted)
	})
}

func TestPostgresTaskStore_Integration_DuplicateID(t *testing.T) {
	db := testdb.GetTestDBWithT(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		s := postgres.NewPostgresTaskStore(tx, nil)

		task, err := domain.NewTask(uuid.New(), "Once", "", nil, nil)
		require.NoError(t, err)
		require.NoError(t, s.Create(ctx, task))

		err = s.Create(ctx, task)
		assert.ErrorIs(t, err, store.ErrDuplicate)
	})
}
