package db_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/alexanderramin/pilotage/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestUoW(t *testing.T) *db.SQLiteUnitOfWork {
	t.Helper()
	database, err := db.OpenDB(db.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return db.NewSQLiteUnitOfWork(database)
}

func insertRisk(ctx context.Context, tx db.DBTX, id string) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO risks (id, title, probability, impact, score, created_at, updated_at)
		VALUES (?, 'r', 2, 2, 4, '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`, id)
	return err
}

func riskExists(t *testing.T, uow *db.SQLiteUnitOfWork, id string) bool {
	t.Helper()
	var found bool
	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		var n int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM risks WHERE id = ?`, id).Scan(&n); err != nil {
			return err
		}
		found = n > 0
		return nil
	})
	require.NoError(t, err)
	return found
}

func TestWithinTx_CommitOnSuccess(t *testing.T) {
	uow := openTestUoW(t)

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		return insertRisk(ctx, tx, "r1")
	})
	require.NoError(t, err)
	assert.True(t, riskExists(t, uow, "r1"), "row should exist after commit")
}

func TestWithinTx_RollbackOnError(t *testing.T) {
	uow := openTestUoW(t)

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		if err := insertRisk(ctx, tx, "r2"); err != nil {
			return err
		}
		return fmt.Errorf("deliberate failure")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deliberate failure")
	assert.False(t, riskExists(t, uow, "r2"), "row should not exist after rollback")
}

func TestWithinTx_RollbackOnPanic(t *testing.T) {
	uow := openTestUoW(t)

	assert.Panics(t, func() {
		_ = uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
			_ = insertRisk(ctx, tx, "r3")
			panic("boom")
		})
	})
	assert.False(t, riskExists(t, uow, "r3"), "row should not exist after panic rollback")
}

func TestWithinTx_RollbackKeepsOriginalError(t *testing.T) {
	uow := openTestUoW(t)
	sentinel := errors.New("sentinel")

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		return fmt.Errorf("applying shift: %w", sentinel)
	})
	assert.ErrorIs(t, err, sentinel)
}

func TestWithinTx_BeginFailsOnClosedDB(t *testing.T) {
	database, err := db.OpenDB(db.MemoryPath)
	require.NoError(t, err)
	require.NoError(t, database.Close())

	called := false
	err = db.NewSQLiteUnitOfWork(database).WithinTx(context.Background(), func(context.Context, db.DBTX) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "beginning transaction")
	assert.False(t, called)
}
