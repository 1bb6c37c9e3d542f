package model

import "time"

// Event represents a bookable event as stored in the `events` table.
// TotalSeats is fixed at creation; AvailableSeats is maintained by the
// booking service and must always satisfy 0 <= AvailableSeats <= TotalSeats.
// Events with bookings are deactivated rather than deleted.
//
// Fields:
//  ID             – primary key identifier.
//  Title          – event name shown in listings.
//  Description    – free-form description.
//  DateTime       – scheduled start time (UTC).
//  Location       – venue / city string.
//  TotalSeats     – fixed seat capacity.
//  AvailableSeats – seats still bookable; mutated only by the booking service.
//  PriceCents     – price per seat in cents.
//  IsActive       – whether the event accepts bookings.
//  CreatedAt      – timestamp of creation.
//  UpdatedAt      – timestamp of last update.
type Event struct {
	ID             uint64    `json:"id"`              // events.id
	Title          string    `json:"title"`           // events.title
	Description    string    `json:"description"`     // events.description
	DateTime       time.Time `json:"date_time"`       // events.date_time
	Location       string    `json:"location"`        // events.location
	TotalSeats     uint32    `json:"total_seats"`     // events.total_seats
	AvailableSeats uint32    `json:"available_seats"` // events.available_seats
	PriceCents     uint64    `json:"price_cents"`     // events.price_cents
	IsActive       bool      `json:"is_active"`       // events.is_active
	CreatedAt      time.Time `json:"created_at"`      // events.created_at
	UpdatedAt      time.Time `json:"updated_at"`      // events.updated_at
}

// SeatInventory is the read-only consistency view over one event's seats.
// BookedSeats is derived by summing the seat counts of active bookings and
// is used for verification and reporting only; the authoritative value is
// always the stored AvailableSeats column.
type SeatInventory struct {
	EventID        uint64 `json:"event_id"`
	TotalSeats     uint32 `json:"total_seats"`
	AvailableSeats uint32 `json:"available_seats"`
	BookedSeats    uint32 `json:"booked_seats"`
}
