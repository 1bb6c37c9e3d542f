package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/event-booking-api/internal/model"
)

type txKey struct{}

// querier is the subset of *sql.DB / *sql.Tx the repositories use. Methods
// taking a context pick the active transaction from it when one is present,
// so the same query code serves both transactional and plain reads.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// withTx runs fn inside a transaction carried on the context. A nested call
// joins the outer transaction instead of opening a second one. The
// transaction commits when fn returns nil and rolls back on any error or
// panic; lock contention surfaces as model.ErrBusy so callers see a typed,
// retryable failure instead of a driver error.
func withTx(ctx context.Context, db *sql.DB, fn func(ctx context.Context) error) error {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	txCtx := context.WithValue(ctx, txKey{}, tx)
	if err := fn(txCtx); err != nil {
		_ = tx.Rollback()
		if isLockContention(err) {
			return model.ErrBusy
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		if isLockContention(err) {
			return model.ErrBusy
		}
		return err
	}
	return nil
}

func txFromContext(ctx context.Context) *sql.Tx {
	tx, _ := ctx.Value(txKey{}).(*sql.Tx)
	return tx
}

// conn returns the context's transaction when inside withTx, else the pool.
func conn(ctx context.Context, db *sql.DB) querier {
	if tx := txFromContext(ctx); tx != nil {
		return tx
	}
	return db
}
