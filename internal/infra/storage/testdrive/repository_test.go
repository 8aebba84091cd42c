package testdrive

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-TestDriveService/internal/domain"
	"github.com/m04kA/SMC-TestDriveService/pkg/dbmetrics"
)

var slotAt = time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

func newMockRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRepository(db), mock
}

func testDriveRow(id int64, status domain.TestDriveStatus) *sqlmock.Rows {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(columns).AddRow(
		id, "Ivan Petrov", "+79990000000", "ivan@example.com",
		int64(7), int64(1), slotAt, nil, string(status),
		nil, nil, nil, now, now,
	)
}

func q(s string) string { return regexp.QuoteMeta(s) }

func TestRepository_Create(t *testing.T) {
	t.Run("returns generated id", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		now := time.Now().UTC()

		mock.ExpectQuery(q("INSERT INTO test_drives")).
			WithArgs("Ivan Petrov", "+79990000000", "ivan@example.com", int64(7), int64(1),
				sqlmock.AnyArg(), sqlmock.AnyArg(), "pending").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(15), now, now))

		td, err := repo.Create(context.Background(), &domain.TestDrive{
			CustomerName:  "Ivan Petrov",
			CustomerPhone: "+79990000000",
			CustomerEmail: "ivan@example.com",
			ProductID:     7,
			DealerID:      1,
			ScheduledDate: slotAt,
			Status:        domain.TestDriveStatusPending,
		})

		require.NoError(t, err)
		assert.Equal(t, int64(15), td.ID)
		assert.Equal(t, now, td.CreatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unique violation maps to slot taken", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectQuery(q("INSERT INTO test_drives")).
			WillReturnError(&pq.Error{Code: "23505"})

		_, err := repo.Create(context.Background(), &domain.TestDrive{ScheduledDate: slotAt, Status: domain.TestDriveStatusPending})

		assert.ErrorIs(t, err, ErrSlotTaken)
	})

	t.Run("serialization failure maps to slot taken", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectQuery(q("INSERT INTO test_drives")).
			WillReturnError(&pq.Error{Code: "40001"})

		_, err := repo.Create(context.Background(), &domain.TestDrive{ScheduledDate: slotAt, Status: domain.TestDriveStatusPending})

		assert.ErrorIs(t, err, ErrSlotTaken)
		assert.NotErrorIs(t, err, ErrExecQuery)
	})

	t.Run("other errors wrapped", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectQuery(q("INSERT INTO test_drives")).WillReturnError(errors.New("connection reset"))

		_, err := repo.Create(context.Background(), &domain.TestDrive{ScheduledDate: slotAt})

		assert.ErrorIs(t, err, ErrExecQuery)
	})
}

func TestRepository_GetByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectQuery(q("FROM test_drives WHERE id = $1")).
			WithArgs(int64(3)).
			WillReturnRows(testDriveRow(3, domain.TestDriveStatusConfirmed))

		td, err := repo.GetByID(context.Background(), 3)

		require.NoError(t, err)
		assert.Equal(t, int64(3), td.ID)
		assert.Equal(t, domain.TestDriveStatusConfirmed, td.Status)
		assert.True(t, td.ScheduledDate.Equal(slotAt))
		assert.Nil(t, td.Notes)
		assert.Nil(t, td.CompletedAt)
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectQuery(q("FROM test_drives WHERE id = $1")).
			WithArgs(int64(404)).
			WillReturnRows(sqlmock.NewRows(columns))

		_, err := repo.GetByID(context.Background(), 404)

		assert.ErrorIs(t, err, ErrTestDriveNotFound)
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectQuery(q("FROM test_drives WHERE id = $1")).
			WithArgs(int64(3)).
			WillReturnRows(testDriveRow(3, domain.TestDriveStatus("archived")))

		_, err := repo.GetByID(context.Background(), 3)

		assert.ErrorIs(t, err, ErrScanRow)
	})
}

func TestRepository_GetScheduledInRange(t *testing.T) {
	repo, mock := newMockRepo(t)
	msk := time.FixedZone("MSK", 3*60*60)

	mock.ExpectQuery(q("SELECT scheduled_date FROM test_drives")).
		WithArgs(int64(1), int64(7), "pending", "confirmed", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"scheduled_date"}).
			AddRow(time.Date(2025, 3, 14, 13, 0, 0, 0, msk)).
			AddRow(time.Date(2025, 3, 14, 15, 0, 0, 0, msk)))

	from := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	got, err := repo.GetScheduledInRange(context.Background(), 1, 7, from, from.Add(24*time.Hour))

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, slotAt, got[0])
	assert.Equal(t, time.UTC, got[1].Location())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_HasActiveAt(t *testing.T) {
	slot := domain.NewSlotKey(1, 7, slotAt)

	t.Run("free slot", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectQuery(q("SELECT id FROM test_drives")).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		taken, err := repo.HasActiveAt(context.Background(), slot)

		require.NoError(t, err)
		assert.False(t, taken)
	})

	t.Run("locks row inside transaction", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(q("LIMIT 1 FOR UPDATE")).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(9)))
		mock.ExpectRollback()

		tx, err := db.Begin()
		require.NoError(t, err)
		ctx := dbmetrics.WithTx(context.Background(), tx)

		taken, err := repo.HasActiveAt(ctx, slot)

		require.NoError(t, err)
		assert.True(t, taken)
		require.NoError(t, tx.Rollback())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("serialization failure maps to slot taken", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectQuery(q("SELECT id FROM test_drives")).
			WillReturnError(&pq.Error{Code: "40001"})

		_, err := repo.HasActiveAt(context.Background(), slot)

		assert.ErrorIs(t, err, ErrSlotTaken)
	})
}

func TestIsSlotConflict(t *testing.T) {
	assert.True(t, IsSlotConflict(&pq.Error{Code: "23505"}))
	assert.True(t, IsSlotConflict(&pq.Error{Code: "40001"}))
	assert.True(t, IsSlotConflict(fmt.Errorf("commit: %w", &pq.Error{Code: "40001"})))
	assert.False(t, IsSlotConflict(&pq.Error{Code: "23503"}))
	assert.False(t, IsSlotConflict(errors.New("connection reset")))
	assert.False(t, IsSlotConflict(nil))
}

func TestRepository_Transition(t *testing.T) {
	at := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

	t.Run("applied", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectQuery(q("UPDATE test_drives SET status = $1, updated_at = $2 WHERE id = $3 AND status IN ($4)")).
			WithArgs("confirmed", at, int64(3), "pending").
			WillReturnRows(testDriveRow(3, domain.TestDriveStatusConfirmed))

		td, err := repo.Transition(context.Background(), TransitionParams{
			ID:   3,
			Next: domain.TestDriveStatusConfirmed,
			From: domain.SourceStatuses(domain.TestDriveStatusConfirmed),
			At:   at,
		})

		require.NoError(t, err)
		assert.Equal(t, domain.TestDriveStatusConfirmed, td.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("completion sets completed_at and staff note", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		note := "liked the car"

		mock.ExpectQuery(q("SET status = $1, updated_at = $2, completed_at = $3, staff_note = $4")).
			WithArgs("successfully", at, at, note, int64(3), "confirmed").
			WillReturnRows(testDriveRow(3, domain.TestDriveStatusSuccessfully))

		_, err := repo.Transition(context.Background(), TransitionParams{
			ID:        3,
			Next:      domain.TestDriveStatusSuccessfully,
			From:      domain.SourceStatuses(domain.TestDriveStatusSuccessfully),
			StaffNote: &note,
			At:        at,
		})

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("status already changed", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectQuery(q("UPDATE test_drives")).WillReturnRows(sqlmock.NewRows(columns))
		mock.ExpectQuery(q("FROM test_drives WHERE id = $1")).
			WillReturnRows(testDriveRow(3, domain.TestDriveStatusCanceled))

		_, err := repo.Transition(context.Background(), TransitionParams{
			ID:   3,
			Next: domain.TestDriveStatusConfirmed,
			From: domain.SourceStatuses(domain.TestDriveStatusConfirmed),
			At:   at,
		})

		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("unknown id", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectQuery(q("UPDATE test_drives")).WillReturnRows(sqlmock.NewRows(columns))
		mock.ExpectQuery(q("FROM test_drives WHERE id = $1")).WillReturnRows(sqlmock.NewRows(columns))

		_, err := repo.Transition(context.Background(), TransitionParams{
			ID:   404,
			Next: domain.TestDriveStatusCanceled,
			From: domain.SourceStatuses(domain.TestDriveStatusCanceled),
			At:   at,
		})

		assert.ErrorIs(t, err, ErrTestDriveNotFound)
	})
}
