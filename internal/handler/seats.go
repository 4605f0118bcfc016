package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cinemacore/booking/internal/service"
)

// SeatHandler exposes the seat inventory over HTTP: the public grid
// view, the customer lock endpoint and the admin reconciliation
// endpoints.
type SeatHandler struct {
	inventory *service.SeatInventory
}

// NewSeatHandler builds the seat handler.
func NewSeatHandler(inventory *service.SeatInventory) *SeatHandler {
	return &SeatHandler{inventory: inventory}
}

// Grid returns the full seat map for a showtime.  Seats without a
// ledger row report AVAILABLE.
func (h *SeatHandler) Grid(c echo.Context) error {
	showtimeID, err := pathID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	grid, err := h.inventory.Grid(c.Request().Context(), showtimeID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"showtime_id": showtimeID, "seats": grid})
}

// Lock places a hold on a seat for the authenticated user.
func (h *SeatHandler) Lock(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	showtimeID, err := pathID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	lock, err := h.inventory.Lock(c.Request().Context(), showtimeID, c.Param("code"), userID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"seat": lock})
}

// AdminUnlock force-releases a seat regardless of its current holder or
// status.
func (h *SeatHandler) AdminUnlock(c echo.Context) error {
	adminID, err := currentUserID(c)
	if err != nil {
		return err
	}
	showtimeID, err := pathID(c, "showtime")
	if err != nil {
		return respondErr(c, err)
	}
	lock, err := h.inventory.Unlock(c.Request().Context(), showtimeID, c.Param("code"), adminID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"seat": lock})
}

// AdminSweep reclaims every expired seat lock immediately.  Normal
// expiry flows through the reservation sweeper; this endpoint exists to
// reconcile orphaned locks.
func (h *SeatHandler) AdminSweep(c echo.Context) error {
	swept, err := h.inventory.SweepExpired(c.Request().Context())
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"swept": len(swept)})
}
