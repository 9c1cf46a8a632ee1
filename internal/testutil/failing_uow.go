package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"

	"github.com/alexanderramin/pilotage/internal/db"
)

// ExecMatcher selects the ExecContext call that should fail. n counts exec
// calls across every transaction opened through the UoW, starting at 1.
type ExecMatcher func(n int32, query string, args []any) bool

// FaultyUoW is a test UoW that injects Err into the ExecContext calls picked
// by Match. Reads pass through untouched. It drives rollback tests for
// multi-write operations.
type FaultyUoW struct {
	DB    *sql.DB
	Match ExecMatcher
	Err   error

	calls atomic.Int32
}

// FailOnNthExec fails the nth write.
func FailOnNthExec(database *sql.DB, n int32, err error) *FaultyUoW {
	return &FaultyUoW{
		DB:    database,
		Err:   err,
		Match: func(call int32, _ string, _ []any) bool { return call == n },
	}
}

// FailOnExecWithArg fails every write whose arguments include arg, such as
// the id of a record the test wants to be unwritable.
func FailOnExecWithArg(database *sql.DB, arg any, err error) *FaultyUoW {
	return &FaultyUoW{
		DB:  database,
		Err: err,
		Match: func(_ int32, _ string, args []any) bool {
			for _, a := range args {
				if a == arg {
					return true
				}
			}
			return false
		},
	}
}

// Calls returns the number of exec calls observed so far.
func (u *FaultyUoW) Calls() int32 {
	return u.calls.Load()
}

func (u *FaultyUoW) WithinTx(ctx context.Context, fn db.TxFunc) error {
	tx, err := u.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	wrapped := &faultyExec{DBTX: tx, uow: u}
	if fnErr := fn(ctx, wrapped); fnErr != nil {
		_ = tx.Rollback()
		return fnErr
	}
	return tx.Commit()
}

var _ db.UnitOfWork = (*FaultyUoW)(nil)

type faultyExec struct {
	db.DBTX
	uow *FaultyUoW
}

func (f *faultyExec) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	n := f.uow.calls.Add(1)
	if f.uow.Match != nil && f.uow.Match(n, query, args) {
		return nil, f.uow.Err
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}
