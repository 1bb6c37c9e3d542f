package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-booking-api/internal/model"
)

// txLog counts transaction outcomes observed by the stub driver below. The
// stub implements just enough of database/sql/driver to let withTx begin,
// commit and roll back without a MySQL server; any actual statement fails.
type txLog struct {
	begins    int
	commits   int
	rollbacks int
}

type stubConnector struct{ log *txLog }

func (s stubConnector) Connect(context.Context) (driver.Conn, error) {
	return stubConn{log: s.log}, nil
}
func (s stubConnector) Driver() driver.Driver { return stubDriver{} }

type stubDriver struct{}

func (stubDriver) Open(string) (driver.Conn, error) { return nil, errors.New("unused") }

type stubConn struct{ log *txLog }

func (stubConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("no statements") }
func (stubConn) Close() error                        { return nil }
func (c stubConn) Begin() (driver.Tx, error) {
	c.log.begins++
	return stubTx{log: c.log}, nil
}

type stubTx struct{ log *txLog }

func (t stubTx) Commit() error   { t.log.commits++; return nil }
func (t stubTx) Rollback() error { t.log.rollbacks++; return nil }

func newStubDB(t *testing.T) (*sql.DB, *txLog) {
	t.Helper()
	log := &txLog{}
	db := sql.OpenDB(stubConnector{log: log})
	t.Cleanup(func() { _ = db.Close() })
	return db, log
}

func TestWithTx(t *testing.T) {
	ctx := context.Background()

	t.Run("commits when fn succeeds", func(t *testing.T) {
		db, log := newStubDB(t)

		err := withTx(ctx, db, func(txCtx context.Context) error {
			assert.NotNil(t, txFromContext(txCtx), "fn must see the transaction on its context")
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, log.commits)
		assert.Zero(t, log.rollbacks)
	})

	t.Run("rolls back and passes through plain errors", func(t *testing.T) {
		db, log := newStubDB(t)
		boom := errors.New("boom")

		err := withTx(ctx, db, func(context.Context) error { return boom })
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, log.rollbacks)
		assert.Zero(t, log.commits)
	})

	t.Run("lock wait timeout surfaces as ErrBusy", func(t *testing.T) {
		db, log := newStubDB(t)

		err := withTx(ctx, db, func(context.Context) error {
			return fmt.Errorf("lock event: %w", &mysql.MySQLError{Number: 1205, Message: "Lock wait timeout exceeded"})
		})
		assert.ErrorIs(t, err, model.ErrBusy)
		assert.Equal(t, 1, log.rollbacks)
	})

	t.Run("deadlock victim surfaces as ErrBusy", func(t *testing.T) {
		db, log := newStubDB(t)

		err := withTx(ctx, db, func(context.Context) error {
			return fmt.Errorf("insert booking: %w", &mysql.MySQLError{Number: 1213, Message: "Deadlock found"})
		})
		assert.ErrorIs(t, err, model.ErrBusy)
		assert.Equal(t, 1, log.rollbacks)
	})

	t.Run("nested call joins the outer transaction", func(t *testing.T) {
		db, log := newStubDB(t)

		err := withTx(ctx, db, func(txCtx context.Context) error {
			return withTx(txCtx, db, func(innerCtx context.Context) error {
				assert.Equal(t, txFromContext(txCtx), txFromContext(innerCtx))
				return nil
			})
		})
		require.NoError(t, err)
		assert.Equal(t, 1, log.begins, "inner call must not open a second transaction")
		assert.Equal(t, 1, log.commits)
	})

	t.Run("rolls back when fn panics", func(t *testing.T) {
		db, log := newStubDB(t)

		assert.Panics(t, func() {
			_ = withTx(ctx, db, func(context.Context) error { panic("handler bug") })
		})
		assert.Equal(t, 1, log.rollbacks)
		assert.Zero(t, log.commits)
	})
}
