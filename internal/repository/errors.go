// Package repository implements data access over MySQL for users, tokens,
// events and bookings. Domain-level failures (not found, duplicate booking,
// lock contention) are reported using the sentinel errors from the model
// package so that handlers and the booking service can branch on them with
// errors.Is. This file keeps the MySQL error-code mapping in one place.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// MySQL server error numbers the repositories care about.
const (
	mysqlErrDuplicateEntry  = 1062
	mysqlErrLockDeadlock    = 1213
	mysqlErrLockWaitTimeout = 1205
)

// isDuplicateEntry reports whether err is a unique-key violation.
func isDuplicateEntry(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlErrDuplicateEntry
}

// isLockContention reports whether err is a deadlock rollback or a lock wait
// timeout. Both leave the transaction rolled back and are safe to retry.
func isLockContention(err error) bool {
	var me *mysql.MySQLError
	if !errors.As(err, &me) {
		return false
	}
	return me.Number == mysqlErrLockDeadlock || me.Number == mysqlErrLockWaitTimeout
}
