package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-booking-api/internal/model"
	"github.com/iliyamo/event-booking-api/internal/repository"
)

// EventHandler bundles dependencies for catalog endpoints.
type EventHandler struct {
	Events   *repository.EventRepo
	Bookings *repository.BookingRepo
}

func NewEventHandler(e *repository.EventRepo, b *repository.BookingRepo) *EventHandler {
	return &EventHandler{Events: e, Bookings: b}
}

// ----- DTOs -----

type createEventReq struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DateTime    time.Time `json:"date_time"`
	Location    string    `json:"location"`
	TotalSeats  uint32    `json:"total_seats"`
	PriceCents  uint64    `json:"price_cents"`
}

type updateEventReq struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	DateTime    *time.Time `json:"date_time"`
	Location    *string    `json:"location"`
	PriceCents  *uint64    `json:"price_cents"`
	IsActive    *bool      `json:"is_active"`
}

type eventListResp struct {
	Events []model.Event `json:"events"`
	Total  int           `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

// Create registers a new event. Admin only (enforced by route middleware).
func (h *EventHandler) Create(c echo.Context) error {
	var req createEventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Location = strings.TrimSpace(req.Location)
	switch {
	case req.Title == "":
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title required"})
	case req.Location == "":
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "location required"})
	case req.TotalSeats == 0:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "total_seats must be positive"})
	case req.DateTime.IsZero() || !req.DateTime.After(time.Now().UTC()):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date_time must be in the future"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	e := model.Event{
		Title:       req.Title,
		Description: req.Description,
		DateTime:    req.DateTime.UTC(),
		Location:    req.Location,
		TotalSeats:  req.TotalSeats,
		PriceCents:  req.PriceCents,
		IsActive:    true,
	}
	if err := h.Events.Create(ctx, &e); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create event failed"})
	}
	return c.JSON(http.StatusCreated, e)
}

// Update edits catalog fields of an event. Seat capacity is immutable; the
// booking service owns available_seats.
func (h *EventHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	var req updateEventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	e, err := h.Events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	if req.Title != nil {
		e.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		e.Description = *req.Description
	}
	if req.DateTime != nil {
		e.DateTime = req.DateTime.UTC()
	}
	if req.Location != nil {
		e.Location = strings.TrimSpace(*req.Location)
	}
	if req.PriceCents != nil {
		e.PriceCents = *req.PriceCents
	}
	if req.IsActive != nil {
		e.IsActive = *req.IsActive
	}
	if e.Title == "" || e.Location == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title/location must not be empty"})
	}

	if err := h.Events.Update(ctx, &e); err != nil {
		if errors.Is(err, model.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update event failed"})
	}
	return c.JSON(http.StatusOK, e)
}

// Deactivate soft-deletes an event so listings hide it and new bookings are
// rejected. Existing bookings stay untouched.
func (h *EventHandler) Deactivate(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Events.Deactivate(ctx, id); err != nil {
		if errors.Is(err, model.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "deactivate failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// List returns the public event catalog, paginated. Query params: q,
// location, from (RFC3339), limit, offset. Only active events are shown.
func (h *EventHandler) List(c echo.Context) error {
	f := repository.EventFilter{
		Query:      strings.TrimSpace(c.QueryParam("q")),
		Location:   strings.TrimSpace(c.QueryParam("location")),
		ActiveOnly: true,
	}
	if raw := c.QueryParam("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid from timestamp"})
		}
		f.From = &t
	}
	f.Limit, _ = strconv.Atoi(c.QueryParam("limit"))
	f.Offset, _ = strconv.Atoi(c.QueryParam("offset"))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	events, total, err := h.Events.List(ctx, f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list events failed"})
	}
	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}
	return c.JSON(http.StatusOK, eventListResp{Events: events, Total: total, Limit: limit, Offset: offset})
}

// Get returns one event by id, active or not.
func (h *EventHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	e, err := h.Events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, e)
}

// Availability returns the seat counters for one event together with the
// derived active-booking sum.
func (h *EventHandler) Availability(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	inv, err := h.Events.SeatInventory(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, inv)
}

// EventBookings lists all bookings of one event. Admin only.
func (h *EventHandler) EventBookings(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Events.GetByID(ctx, id); err != nil {
		if errors.Is(err, model.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	bookings, err := h.Bookings.ListByEvent(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list bookings failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"event_id": id, "bookings": bookings})
}

// EventStats returns the booking ledger aggregates of one event. Admin only.
func (h *EventHandler) EventStats(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Events.GetByID(ctx, id); err != nil {
		if errors.Is(err, model.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	stats, err := h.Bookings.Stats(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "stats failed"})
	}
	return c.JSON(http.StatusOK, stats)
}
