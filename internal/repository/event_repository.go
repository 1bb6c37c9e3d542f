package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/event-booking-api/internal/model"
)

// EventRepo manages persistence for the event catalog. Seat counts are read
// here but never mutated: all available_seats changes go through the Store
// used by the booking service.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo returns a new EventRepo bound to the given database.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

const eventColumns = `id, title, description, date_time, location, total_seats, available_seats, price_cents, is_active, created_at, updated_at`

func scanEvent(row interface{ Scan(dest ...any) error }, e *model.Event) error {
	return row.Scan(
		&e.ID, &e.Title, &e.Description, &e.DateTime, &e.Location,
		&e.TotalSeats, &e.AvailableSeats, &e.PriceCents, &e.IsActive,
		&e.CreatedAt, &e.UpdatedAt,
	)
}

// Create inserts a new event and populates the generated ID and DB-default
// fields on the given struct. AvailableSeats starts equal to TotalSeats.
func (r *EventRepo) Create(ctx context.Context, e *model.Event) error {
	const q = `INSERT INTO events (title, description, date_time, location, total_seats, available_seats, price_cents, is_active)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := conn(ctx, r.db).ExecContext(ctx, q,
		e.Title, e.Description, e.DateTime.UTC(), e.Location,
		e.TotalSeats, e.TotalSeats, e.PriceCents, e.IsActive)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	return r.reload(ctx, e)
}

func (r *EventRepo) reload(ctx context.Context, e *model.Event) error {
	q := `SELECT ` + eventColumns + ` FROM events WHERE id = ?`
	return scanEvent(conn(ctx, r.db).QueryRowContext(ctx, q, e.ID), e)
}

// GetByID loads one event. Returns model.ErrEventNotFound when absent.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (model.Event, error) {
	q := `SELECT ` + eventColumns + ` FROM events WHERE id = ?`
	var e model.Event
	if err := scanEvent(conn(ctx, r.db).QueryRowContext(ctx, q, id), &e); err != nil {
		if err == sql.ErrNoRows {
			return model.Event{}, model.ErrEventNotFound
		}
		return model.Event{}, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

// Update rewrites the editable catalog fields of an event. Seat counts are
// deliberately not part of the statement. Returns model.ErrEventNotFound
// when no row matched.
func (r *EventRepo) Update(ctx context.Context, e *model.Event) error {
	const q = `UPDATE events
	           SET title = ?, description = ?, date_time = ?, location = ?, price_cents = ?, is_active = ?
	           WHERE id = ?`
	res, err := conn(ctx, r.db).ExecContext(ctx, q,
		e.Title, e.Description, e.DateTime.UTC(), e.Location, e.PriceCents, e.IsActive, e.ID)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// MySQL reports zero affected rows both for missing ids and for
		// no-op updates, so confirm existence before deciding.
		if _, err := r.GetByID(ctx, e.ID); err != nil {
			return err
		}
	}
	return r.reload(ctx, e)
}

// Deactivate soft-deletes an event so it stops accepting bookings while the
// booking history stays intact.
func (r *EventRepo) Deactivate(ctx context.Context, id uint64) error {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE events SET is_active = 0 WHERE id = ? AND is_active = 1`, id)
	if err != nil {
		return fmt.Errorf("deactivate event: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// EventFilter narrows and pages the public event listing.
type EventFilter struct {
	Query      string     // substring match on title
	Location   string     // exact location match
	From       *time.Time // only events starting at or after this time
	ActiveOnly bool
	Limit      int
	Offset     int
}

// List returns events matching the filter ordered by start time, plus the
// total match count for pagination headers.
func (r *EventRepo) List(ctx context.Context, f EventFilter) ([]model.Event, int, error) {
	where := make([]string, 0, 4)
	args := make([]any, 0, 4)
	if f.ActiveOnly {
		where = append(where, "is_active = 1")
	}
	if f.Query != "" {
		where = append(where, "title LIKE ?")
		args = append(args, "%"+f.Query+"%")
	}
	if f.Location != "" {
		where = append(where, "location = ?")
		args = append(args, f.Location)
	}
	if f.From != nil {
		where = append(where, "date_time >= ?")
		args = append(args, f.From.UTC())
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM events`+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}
	q := `SELECT ` + eventColumns + ` FROM events` + clause + ` ORDER BY date_time ASC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := conn(ctx, r.db).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := make([]model.Event, 0, limit)
	for rows.Next() {
		var e model.Event
		if err := scanEvent(rows, &e); err != nil {
			return nil, 0, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// SeatInventory returns the stored seat counters next to the derived sum of
// active booking seats. The derived figure exists for verification and
// reporting; the stored available_seats column stays authoritative.
func (r *EventRepo) SeatInventory(ctx context.Context, eventID uint64) (model.SeatInventory, error) {
	const q = `SELECT e.total_seats, e.available_seats,
	                  COALESCE(SUM(b.number_of_seats), 0)
	           FROM events e
	           LEFT JOIN bookings b ON b.event_id = e.id AND b.status IN ('PENDING','CONFIRMED')
	           WHERE e.id = ?
	           GROUP BY e.id`
	inv := model.SeatInventory{EventID: eventID}
	err := conn(ctx, r.db).QueryRowContext(ctx, q, eventID).
		Scan(&inv.TotalSeats, &inv.AvailableSeats, &inv.BookedSeats)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.SeatInventory{}, model.ErrEventNotFound
		}
		return model.SeatInventory{}, fmt.Errorf("seat inventory: %w", err)
	}
	return inv, nil
}
