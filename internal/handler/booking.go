package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-booking-api/internal/model"
	"github.com/iliyamo/event-booking-api/internal/queue"
	"github.com/iliyamo/event-booking-api/internal/repository"
	"github.com/iliyamo/event-booking-api/internal/service"
)

// BookingHandler bundles dependencies for reservation endpoints. Reserve and
// Cancel delegate all inventory work to the booking service; this layer only
// translates HTTP and fires notification events after a successful commit.
type BookingHandler struct {
	Service  *service.BookingService
	Bookings *repository.BookingRepo
	Events   *repository.EventRepo
}

func NewBookingHandler(s *service.BookingService, b *repository.BookingRepo, e *repository.EventRepo) *BookingHandler {
	return &BookingHandler{Service: s, Bookings: b, Events: e}
}

type reserveReq struct {
	EventID       uint64 `json:"event_id"`
	NumberOfSeats uint32 `json:"number_of_seats"`
}

// Reserve books seats for the authenticated user.
func (h *BookingHandler) Reserve(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req reserveReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.EventID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "event_id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	booking, err := h.Service.Reserve(ctx, uid, req.EventID, req.NumberOfSeats)
	if err != nil {
		return bookingError(c, err)
	}

	// Commit is done; the notification is best effort and never fails the
	// request.
	if event, eErr := h.Events.GetByID(ctx, booking.EventID); eErr == nil {
		_ = queue.PublishBookingConfirmed(ctx, queue.BookingConfirmedEvent{
			BookingID:        booking.ID,
			Reference:        booking.Reference,
			UserID:           booking.UserID,
			EventID:          booking.EventID,
			EventTitle:       event.Title,
			EventStartsAt:    event.DateTime.UTC().Format(time.RFC3339),
			Location:         event.Location,
			NumberOfSeats:    booking.NumberOfSeats,
			TotalAmountCents: booking.TotalAmountCents,
			ConfirmedAt:      booking.BookingDate.UTC().Format(time.RFC3339),
		})
	}

	return c.JSON(http.StatusCreated, booking)
}

// Cancel releases a booking's seats back to the event. Owners cancel their
// own bookings; admins may cancel any.
func (h *BookingHandler) Cancel(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	booking, err := h.Service.Cancel(ctx, uid, getRole(c), id)
	if err != nil {
		return bookingError(c, err)
	}

	cancelledAt := time.Now().UTC()
	if booking.CancelledAt != nil {
		cancelledAt = booking.CancelledAt.UTC()
	}
	title := ""
	if event, eErr := h.Events.GetByID(ctx, booking.EventID); eErr == nil {
		title = event.Title
	}
	_ = queue.PublishBookingCancelled(ctx, queue.BookingCancelledEvent{
		BookingID:     booking.ID,
		Reference:     booking.Reference,
		UserID:        booking.UserID,
		EventID:       booking.EventID,
		EventTitle:    title,
		NumberOfSeats: booking.NumberOfSeats,
		CancelledAt:   cancelledAt.Format(time.RFC3339),
	})

	return c.JSON(http.StatusOK, booking)
}

// ListMine returns the authenticated user's bookings, newest first.
func (h *BookingHandler) ListMine(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	bookings, err := h.Bookings.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list bookings failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": bookings})
}

// Get returns one booking. Only the owner or an admin may read it.
func (h *BookingHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	booking, err := h.Bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if booking.UserID != uid && getRole(c) != model.RoleAdmin {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusOK, booking)
}

// bookingError maps service errors onto HTTP statuses.
func bookingError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, model.ErrEventNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
	case errors.Is(err, model.ErrBookingNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	case errors.Is(err, model.ErrInvalidSeatCount):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "number_of_seats must be between 1 and 10"})
	case errors.Is(err, model.ErrNotBookable):
		return c.JSON(http.StatusConflict, echo.Map{"error": "event is not open for booking"})
	case errors.Is(err, model.ErrInsufficientSeats):
		return c.JSON(http.StatusConflict, echo.Map{"error": "not enough seats available"})
	case errors.Is(err, model.ErrDuplicateBooking):
		return c.JSON(http.StatusConflict, echo.Map{"error": "active booking already exists for this event"})
	case errors.Is(err, model.ErrNotCancellable):
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking is not cancellable"})
	case errors.Is(err, model.ErrEventAlreadyStarted):
		return c.JSON(http.StatusConflict, echo.Map{"error": "event has already started"})
	case errors.Is(err, model.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, model.ErrBusy):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "inventory busy, retry shortly"})
	case errors.Is(err, model.ErrInvariantViolation):
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "inventory inconsistency detected"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "booking operation failed"})
	}
}
