// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingConfirmedEvent is published when a reservation is successfully
// committed. It carries enough information for downstream consumers to log,
// notify, or trigger analytics without querying the primary database.
type BookingConfirmedEvent struct {
	BookingID        uint64 `json:"booking_id"`
	Reference        string `json:"reference"`
	UserID           uint64 `json:"user_id"`
	EventID          uint64 `json:"event_id"`
	EventTitle       string `json:"event_title"`
	EventStartsAt    string `json:"event_starts_at"`
	Location         string `json:"location"`
	NumberOfSeats    uint32 `json:"number_of_seats"`
	TotalAmountCents uint64 `json:"total_amount_cents"`
	ConfirmedAt      string `json:"confirmed_at"`
}

// BookingCancelledEvent is published when a booking is cancelled and its
// seats return to the event's inventory.
type BookingCancelledEvent struct {
	BookingID     uint64 `json:"booking_id"`
	Reference     string `json:"reference"`
	UserID        uint64 `json:"user_id"`
	EventID       uint64 `json:"event_id"`
	EventTitle    string `json:"event_title"`
	NumberOfSeats uint32 `json:"number_of_seats"`
	CancelledAt   string `json:"cancelled_at"`
}
