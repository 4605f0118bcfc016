package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cinemacore/booking/internal/apperr"
	"github.com/cinemacore/booking/internal/event"
	"github.com/cinemacore/booking/internal/service"
)

// ReservationHandler exposes the reservation lifecycle over HTTP.
type ReservationHandler struct {
	reservations *service.Reservations
	bus          service.Publisher
}

// NewReservationHandler builds the reservation handler.  The bus is
// used by the admin force-cancel endpoint, which goes through the event
// path instead of calling the service directly.
func NewReservationHandler(reservations *service.Reservations, bus service.Publisher) *ReservationHandler {
	return &ReservationHandler{reservations: reservations, bus: bus}
}

type createReservationRequest struct {
	ShowtimeID uint64 `json:"showtime_id"`
	SeatCode   string `json:"seat_code"`
}

// Create opens a reservation for the authenticated user.
func (h *ReservationHandler) Create(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	var req createReservationRequest
	if err := c.Bind(&req); err != nil {
		return respondErr(c, apperr.Validation("invalid request body", nil))
	}
	if req.ShowtimeID == 0 || req.SeatCode == "" {
		return respondErr(c, apperr.Validation("showtime_id and seat_code are required", nil))
	}
	res, err := h.reservations.Create(c.Request().Context(), userID, req.ShowtimeID, req.SeatCode)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"reservation": res})
}

// Get returns one reservation.  Customers only see their own; admins
// see everything.
func (h *ReservationHandler) Get(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	res, err := h.reservations.Get(c.Request().Context(), id)
	if err != nil {
		return respondErr(c, err)
	}
	if res.UserID != userID && !isAdmin(c) {
		return respondErr(c, apperr.NotFound("reservation not found", map[string]any{"reservation_id": id}))
	}
	return c.JSON(http.StatusOK, echo.Map{"reservation": res})
}

// ListMine returns the caller's reservations, newest first.
func (h *ReservationHandler) ListMine(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	list, err := h.reservations.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": list})
}

// Cancel ends a reservation.  Admins may cancel any reservation;
// customers only their own.  Cancelling an already terminal reservation
// returns its current state unchanged.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	res, err := h.reservations.Cancel(c.Request().Context(), id, userID, isAdmin(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reservation": res})
}

// AdminForceCancel publishes the force-cancel event and returns 202.
// The cancellation itself, with its seat unlock and order teardown,
// happens asynchronously through the saga.
func (h *ReservationHandler) AdminForceCancel(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	h.bus.Publish(c.Request().Context(), event.AdminForceCancelReservation, event.ReservationPayload{ReservationID: id})
	return c.JSON(http.StatusAccepted, echo.Map{"status": "accepted", "reservation_id": id})
}
