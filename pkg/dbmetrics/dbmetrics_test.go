package dbmetrics

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-TestDriveService/pkg/metrics"
)

func TestOperation(t *testing.T) {
	assert.Equal(t, "select", operation("SELECT id FROM test_drives"))
	assert.Equal(t, "update", operation("\n  UPDATE test_drives SET status = $1"))
	assert.Equal(t, "begin", operation("BEGIN"))
	assert.Equal(t, "unknown", operation("   "))
}

func TestGetExecutor(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	wrapped := Wrap(db, nil)
	ctx := context.Background()

	assert.Same(t, wrapped, GetExecutor(ctx, wrapped))
	assert.False(t, IsInTransaction(ctx))

	mock.ExpectBegin()
	tx, err := wrapped.BeginTx(ctx, nil)
	require.NoError(t, err)

	txCtx := WithTx(ctx, tx)
	assert.True(t, IsInTransaction(txCtx))
	assert.Equal(t, tx, GetExecutor(txCtx, wrapped))

	mock.ExpectRollback()
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_ObservesQueries(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	m := metrics.NewWithRegisterer("test", prometheus.NewRegistry())
	wrapped := Wrap(db, m)
	ctx := context.Background()

	mock.ExpectExec("UPDATE test_drives").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM test_drives").WillReturnError(errors.New("permission denied"))

	_, err = wrapped.ExecContext(ctx, "UPDATE test_drives SET status = 'canceled'")
	require.NoError(t, err)
	_, err = wrapped.ExecContext(ctx, "DELETE FROM test_drives")
	require.Error(t, err)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.DBQueryErrors.WithLabelValues("delete")))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.DBQueryErrors.WithLabelValues("update")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.DBQueryDuration))
}
