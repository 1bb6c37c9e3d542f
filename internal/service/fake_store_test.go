package service

import (
	"context"
	"sync"
	"time"

	"github.com/iliyamo/event-booking-api/internal/model"
)

// fakeStore is an in-memory Store for protocol tests. WithTx holds a mutex
// for the whole callback, which models the row-serialized execution the
// MySQL store provides, and restores a snapshot on error, which models
// rollback.
type fakeStore struct {
	mu       sync.Mutex
	events   map[uint64]model.Event
	bookings map[uint64]model.Booking
	nextID   uint64

	// failSetSeats forces SetAvailableSeats to fail, for atomicity tests.
	failSetSeats error
}

func newFakeStore(events ...model.Event) *fakeStore {
	f := &fakeStore{
		events:   make(map[uint64]model.Event),
		bookings: make(map[uint64]model.Booking),
	}
	for _, e := range events {
		f.events[e.ID] = e
	}
	return f
}

func (f *fakeStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	evSnap := make(map[uint64]model.Event, len(f.events))
	for k, v := range f.events {
		evSnap[k] = v
	}
	bkSnap := make(map[uint64]model.Booking, len(f.bookings))
	for k, v := range f.bookings {
		bkSnap[k] = v
	}
	idSnap := f.nextID

	if err := fn(ctx); err != nil {
		f.events = evSnap
		f.bookings = bkSnap
		f.nextID = idSnap
		return err
	}
	return nil
}

func (f *fakeStore) EventForUpdate(ctx context.Context, eventID uint64) (model.Event, error) {
	e, ok := f.events[eventID]
	if !ok {
		return model.Event{}, model.ErrEventNotFound
	}
	return e, nil
}

func (f *fakeStore) BookingForUpdate(ctx context.Context, bookingID uint64) (model.Booking, error) {
	b, ok := f.bookings[bookingID]
	if !ok {
		return model.Booking{}, model.ErrBookingNotFound
	}
	return b, nil
}

func (f *fakeStore) ActiveBookingCount(ctx context.Context, userID, eventID uint64) (int, error) {
	n := 0
	for _, b := range f.bookings {
		if b.UserID == userID && b.EventID == eventID && b.Active() {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) InsertBooking(ctx context.Context, b *model.Booking) error {
	// Unique index backstop over active (user, event) rows.
	for _, existing := range f.bookings {
		if existing.UserID == b.UserID && existing.EventID == b.EventID && existing.Active() {
			return model.ErrDuplicateBooking
		}
	}
	f.nextID++
	b.ID = f.nextID
	b.CreatedAt = b.BookingDate
	b.UpdatedAt = b.BookingDate
	f.bookings[b.ID] = *b
	return nil
}

func (f *fakeStore) SetAvailableSeats(ctx context.Context, eventID uint64, available uint32) error {
	if f.failSetSeats != nil {
		return f.failSetSeats
	}
	e, ok := f.events[eventID]
	if !ok {
		return model.ErrEventNotFound
	}
	e.AvailableSeats = available
	f.events[eventID] = e
	return nil
}

func (f *fakeStore) MarkBookingCancelled(ctx context.Context, bookingID uint64, at time.Time) error {
	b, ok := f.bookings[bookingID]
	if !ok {
		return model.ErrBookingNotFound
	}
	b.Status = model.BookingStatusCancelled
	t := at
	b.CancelledAt = &t
	f.bookings[bookingID] = b
	return nil
}

// activeSeatSum adds up seats across active bookings for one event.
func (f *fakeStore) activeSeatSum(eventID uint64) uint32 {
	var sum uint32
	for _, b := range f.bookings {
		if b.EventID == eventID && b.Active() {
			sum += b.NumberOfSeats
		}
	}
	return sum
}
