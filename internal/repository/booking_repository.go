package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/event-booking-api/internal/model"
)

// BookingRepo provides read access to the booking ledger: listings for
// customers and admins and per-event statistics. Writes to bookings happen
// exclusively through the Store used by the booking service.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `id, reference, user_id, event_id, number_of_seats, total_amount_cents, status, booking_date, cancelled_at, created_at, updated_at`

func scanBooking(row interface{ Scan(dest ...any) error }, b *model.Booking) error {
	var cancelledAt sql.NullTime
	if err := row.Scan(
		&b.ID, &b.Reference, &b.UserID, &b.EventID, &b.NumberOfSeats,
		&b.TotalAmountCents, &b.Status, &b.BookingDate, &cancelledAt,
		&b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		return err
	}
	if cancelledAt.Valid {
		t := cancelledAt.Time
		b.CancelledAt = &t
	}
	return nil
}

// GetByID loads one booking. Returns model.ErrBookingNotFound when absent.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (model.Booking, error) {
	q := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	var b model.Booking
	if err := scanBooking(conn(ctx, r.db).QueryRowContext(ctx, q, id), &b); err != nil {
		if err == sql.ErrNoRows {
			return model.Booking{}, model.ErrBookingNotFound
		}
		return model.Booking{}, fmt.Errorf("get booking: %w", err)
	}
	return b, nil
}

// ListByUser returns all bookings of one user, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	q := `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = ? ORDER BY booking_date DESC`
	return r.list(ctx, q, userID)
}

// ListByEvent returns all bookings against one event, newest first. Used by
// admin reporting.
func (r *BookingRepo) ListByEvent(ctx context.Context, eventID uint64) ([]model.Booking, error) {
	q := `SELECT ` + bookingColumns + ` FROM bookings WHERE event_id = ? ORDER BY booking_date DESC`
	return r.list(ctx, q, eventID)
}

func (r *BookingRepo) list(ctx context.Context, q string, arg any) ([]model.Booking, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, q, arg)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	bookings := make([]model.Booking, 0)
	for rows.Next() {
		var b model.Booking
		if err := scanBooking(rows, &b); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bookings, nil
}

// Stats aggregates the ledger for one event: booking counts by status,
// seats sold and revenue over active bookings.
func (r *BookingRepo) Stats(ctx context.Context, eventID uint64) (model.EventStats, error) {
	const q = `SELECT
	        COALESCE(SUM(status = 'CONFIRMED'), 0),
	        COALESCE(SUM(status = 'CANCELLED'), 0),
	        COALESCE(SUM(IF(status IN ('PENDING','CONFIRMED'), number_of_seats, 0)), 0),
	        COALESCE(SUM(IF(status IN ('PENDING','CONFIRMED'), total_amount_cents, 0)), 0)
	    FROM bookings WHERE event_id = ?`
	stats := model.EventStats{EventID: eventID}
	err := conn(ctx, r.db).QueryRowContext(ctx, q, eventID).Scan(
		&stats.ConfirmedBookings, &stats.CancelledBookings,
		&stats.SeatsSold, &stats.RevenueCents,
	)
	if err != nil {
		return model.EventStats{}, fmt.Errorf("booking stats: %w", err)
	}
	return stats, nil
}
