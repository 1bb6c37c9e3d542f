package model

import "time"

// Booking statuses. A booking counts against event inventory while it is
// PENDING or CONFIRMED; cancelled bookings are kept for history and never
// physically deleted.
const (
	BookingStatusPending   = "PENDING"
	BookingStatusConfirmed = "CONFIRMED"
	BookingStatusCancelled = "CANCELLED"
)

// Booking represents a row in the `bookings` table. One active booking is
// allowed per (user, event) pair; this is enforced by the booking service
// inside its transaction and, as a backstop, by a unique index over
// active-status rows in the database.
//
// Fields:
//  ID               – primary key identifier.
//  Reference        – opaque UUID handed to clients.
//  UserID           – user who booked.
//  EventID          – event booked.
//  NumberOfSeats    – seats reserved (1–10).
//  TotalAmountCents – seats × event price at booking time.
//  Status           – PENDING, CONFIRMED or CANCELLED.
//  BookingDate      – when the reservation was made.
//  CancelledAt      – when the booking was cancelled (nil while active).
//  CreatedAt        – timestamp of creation.
//  UpdatedAt        – timestamp of last update.
type Booking struct {
	ID               uint64     `json:"id"`                     // bookings.id
	Reference        string     `json:"reference"`              // bookings.reference
	UserID           uint64     `json:"user_id"`                // bookings.user_id
	EventID          uint64     `json:"event_id"`               // bookings.event_id
	NumberOfSeats    uint32     `json:"number_of_seats"`        // bookings.number_of_seats
	TotalAmountCents uint64     `json:"total_amount_cents"`     // bookings.total_amount_cents
	Status           string     `json:"status"`                 // bookings.status
	BookingDate      time.Time  `json:"booking_date"`           // bookings.booking_date
	CancelledAt      *time.Time `json:"cancelled_at,omitempty"` // bookings.cancelled_at (nullable)
	CreatedAt        time.Time  `json:"created_at"`             // bookings.created_at
	UpdatedAt        time.Time  `json:"updated_at"`             // bookings.updated_at
}

// Active reports whether the booking currently counts against inventory.
func (b Booking) Active() bool {
	return b.Status == BookingStatusPending || b.Status == BookingStatusConfirmed
}

// EventStats aggregates the booking ledger for one event. Produced by the
// reporting queries, consumed by the admin stats endpoint.
type EventStats struct {
	EventID           uint64 `json:"event_id"`
	ConfirmedBookings uint32 `json:"confirmed_bookings"`
	CancelledBookings uint32 `json:"cancelled_bookings"`
	SeatsSold         uint32 `json:"seats_sold"`
	RevenueCents      uint64 `json:"revenue_cents"`
}
