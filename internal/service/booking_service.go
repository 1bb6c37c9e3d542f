// Package service implements the seat-inventory protocols: reservation and
// cancellation. Both run as a single transaction that takes an exclusive
// lock on the target event row before reading available_seats, so two
// concurrent requests against the same event serialize on the database and
// the classic read-check-write oversell race cannot occur. All failures come
// back as the typed sentinel errors from the model package.
package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/event-booking-api/internal/model"
)

// Seat count bounds for a single booking.
const (
	MinSeatsPerBooking = 1
	MaxSeatsPerBooking = 10
)

// Store is the transactional persistence surface the protocols run against.
// The ...ForUpdate reads must hold an exclusive row lock until the
// surrounding WithTx commits or rolls back. repository.Store implements this
// over MySQL; tests substitute an in-memory fake.
type Store interface {
	// WithTx runs fn atomically: every write inside fn becomes visible at
	// once on commit, or not at all. Lock contention surfaces as
	// model.ErrBusy.
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	EventForUpdate(ctx context.Context, eventID uint64) (model.Event, error)
	BookingForUpdate(ctx context.Context, bookingID uint64) (model.Booking, error)
	ActiveBookingCount(ctx context.Context, userID, eventID uint64) (int, error)
	InsertBooking(ctx context.Context, b *model.Booking) error
	SetAvailableSeats(ctx context.Context, eventID uint64, available uint32) error
	MarkBookingCancelled(ctx context.Context, bookingID uint64, at time.Time) error
}

// BookingService owns all mutation of event seat inventory and booking
// status. No other code path may touch available_seats.
type BookingService struct {
	store Store
	clock Clock
}

// NewBookingService constructs a BookingService.
func NewBookingService(store Store, clock Clock) *BookingService {
	if store == nil {
		panic("nil store passed to NewBookingService")
	}
	if clock == nil {
		clock = NewSystemClock()
	}
	return &BookingService{store: store, clock: clock}
}

// Reserve books seats on an event for a user. On success exactly one booking
// row is created and the event's available_seats is decremented by seats; on
// any failure nothing is persisted.
func (s *BookingService) Reserve(ctx context.Context, userID, eventID uint64, seats uint32) (model.Booking, error) {
	if seats < MinSeatsPerBooking || seats > MaxSeatsPerBooking {
		return model.Booking{}, model.ErrInvalidSeatCount
	}

	now := s.clock.Now()
	var booking model.Booking

	err := s.store.WithTx(ctx, func(txCtx context.Context) error {
		event, err := s.store.EventForUpdate(txCtx, eventID)
		if err != nil {
			return err
		}
		if !event.IsActive || !event.DateTime.After(now) {
			return model.ErrNotBookable
		}
		if seats > event.AvailableSeats {
			return model.ErrInsufficientSeats
		}

		// The event row is locked, so this count cannot be raced by a
		// concurrent reservation for the same event. The unique index on
		// active bookings backs it up regardless.
		active, err := s.store.ActiveBookingCount(txCtx, userID, eventID)
		if err != nil {
			return err
		}
		if active > 0 {
			return model.ErrDuplicateBooking
		}

		booking = model.Booking{
			Reference:        uuid.NewString(),
			UserID:           userID,
			EventID:          eventID,
			NumberOfSeats:    seats,
			TotalAmountCents: event.PriceCents * uint64(seats),
			Status:           model.BookingStatusConfirmed,
			BookingDate:      now,
		}
		if err := s.store.InsertBooking(txCtx, &booking); err != nil {
			return err
		}
		return s.store.SetAvailableSeats(txCtx, eventID, event.AvailableSeats-seats)
	})
	if err != nil {
		return model.Booking{}, err
	}
	return booking, nil
}

// Cancel voids a confirmed booking and returns its seats to the event's
// inventory. The actor must be the booking's owner or an admin. Restoring
// seats is bounded by total_seats: crossing that bound means the stored
// counters were already corrupted, so the protocol fails loudly with
// ErrInvariantViolation instead of clamping.
func (s *BookingService) Cancel(ctx context.Context, actorID uint64, actorRole string, bookingID uint64) (model.Booking, error) {
	now := s.clock.Now()
	var booking model.Booking

	err := s.store.WithTx(ctx, func(txCtx context.Context) error {
		b, err := s.store.BookingForUpdate(txCtx, bookingID)
		if err != nil {
			return err
		}
		if b.UserID != actorID && actorRole != model.RoleAdmin {
			return model.ErrForbidden
		}
		if b.Status != model.BookingStatusConfirmed {
			return model.ErrNotCancellable
		}

		event, err := s.store.EventForUpdate(txCtx, b.EventID)
		if err != nil {
			return err
		}
		if !event.DateTime.After(now) {
			return model.ErrEventAlreadyStarted
		}

		restored := event.AvailableSeats + b.NumberOfSeats
		if restored > event.TotalSeats {
			log.Printf("FATAL-INVARIANT event=%d total=%d available=%d restoring=%d: available_seats would exceed total_seats",
				event.ID, event.TotalSeats, event.AvailableSeats, b.NumberOfSeats)
			return model.ErrInvariantViolation
		}

		if err := s.store.MarkBookingCancelled(txCtx, b.ID, now); err != nil {
			return err
		}
		if err := s.store.SetAvailableSeats(txCtx, b.EventID, restored); err != nil {
			return err
		}

		booking = b
		booking.Status = model.BookingStatusCancelled
		booking.CancelledAt = &now
		return nil
	})
	if err != nil {
		return model.Booking{}, err
	}
	return booking, nil
}
