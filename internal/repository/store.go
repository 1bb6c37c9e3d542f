package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/iliyamo/event-booking-api/internal/model"
)

// Store is the write path for seat inventory and the booking ledger. The
// booking service calls these methods inside WithTx; the ...ForUpdate reads
// take InnoDB row locks so concurrent reservations and cancellations against
// the same event serialize on the event row. No other code may change
// available_seats or booking status.
type Store struct {
	db *sql.DB
}

// NewStore returns a Store bound to the given database.
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// WithTx runs fn inside a single transaction; see withTx for semantics.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, s.db, fn)
}

// EventForUpdate loads an event under an exclusive row lock. Must be called
// inside WithTx; the lock is held until the transaction ends.
func (s *Store) EventForUpdate(ctx context.Context, eventID uint64) (model.Event, error) {
	q := `SELECT ` + eventColumns + ` FROM events WHERE id = ? FOR UPDATE`
	var e model.Event
	if err := scanEvent(conn(ctx, s.db).QueryRowContext(ctx, q, eventID), &e); err != nil {
		if err == sql.ErrNoRows {
			return model.Event{}, model.ErrEventNotFound
		}
		return model.Event{}, fmt.Errorf("lock event: %w", err)
	}
	return e, nil
}

// BookingForUpdate loads a booking under an exclusive row lock.
func (s *Store) BookingForUpdate(ctx context.Context, bookingID uint64) (model.Booking, error) {
	q := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ? FOR UPDATE`
	var b model.Booking
	if err := scanBooking(conn(ctx, s.db).QueryRowContext(ctx, q, bookingID), &b); err != nil {
		if err == sql.ErrNoRows {
			return model.Booking{}, model.ErrBookingNotFound
		}
		return model.Booking{}, fmt.Errorf("lock booking: %w", err)
	}
	return b, nil
}

// ActiveBookingCount counts PENDING/CONFIRMED bookings for a (user, event)
// pair. Called with the event row locked, so the count cannot change before
// the transaction commits.
func (s *Store) ActiveBookingCount(ctx context.Context, userID, eventID uint64) (int, error) {
	const q = `SELECT COUNT(*) FROM bookings
	           WHERE user_id = ? AND event_id = ? AND status IN ('PENDING','CONFIRMED')`
	var n int
	if err := conn(ctx, s.db).QueryRowContext(ctx, q, userID, eventID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count active bookings: %w", err)
	}
	return n, nil
}

// InsertBooking writes a new booking row and populates the generated ID and
// timestamp defaults. A unique-key violation on the active-booking index is
// translated to model.ErrDuplicateBooking: that is the storage-level backstop
// firing when two transactions raced past the application check.
func (s *Store) InsertBooking(ctx context.Context, b *model.Booking) error {
	const q = `INSERT INTO bookings (reference, user_id, event_id, number_of_seats, total_amount_cents, status, booking_date)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := conn(ctx, s.db).ExecContext(ctx, q,
		b.Reference, b.UserID, b.EventID, b.NumberOfSeats,
		b.TotalAmountCents, b.Status, b.BookingDate.UTC())
	if err != nil {
		if isDuplicateEntry(err) {
			return model.ErrDuplicateBooking
		}
		return fmt.Errorf("insert booking: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	sel := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	return scanBooking(conn(ctx, s.db).QueryRowContext(ctx, sel, b.ID), b)
}

// SetAvailableSeats writes the new available_seats value for an event. The
// caller computed it from the locked row, so this is a plain assignment, not
// a relative adjustment.
func (s *Store) SetAvailableSeats(ctx context.Context, eventID uint64, available uint32) error {
	res, err := conn(ctx, s.db).ExecContext(ctx,
		`UPDATE events SET available_seats = ? WHERE id = ?`, available, eventID)
	if err != nil {
		return fmt.Errorf("update available seats: %w", err)
	}
	if _, err := res.RowsAffected(); err != nil {
		return err
	}
	return nil
}

// MarkBookingCancelled flips a booking to CANCELLED and records when.
func (s *Store) MarkBookingCancelled(ctx context.Context, bookingID uint64, at time.Time) error {
	res, err := conn(ctx, s.db).ExecContext(ctx,
		`UPDATE bookings SET status = 'CANCELLED', cancelled_at = ? WHERE id = ?`,
		at.UTC(), bookingID)
	if err != nil {
		return fmt.Errorf("cancel booking: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrBookingNotFound
	}
	return nil
}
