package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cinemacore/booking/internal/apperr"
	"github.com/cinemacore/booking/internal/service"
)

// RefundHandler exposes refund requests over HTTP.  Customers open and
// read requests; approve and reject are admin transitions, and
// completion follows approval through the saga.
type RefundHandler struct {
	refunds      *service.Refunds
	reservations *service.Reservations
}

// NewRefundHandler builds the refund handler.
func NewRefundHandler(refunds *service.Refunds, reservations *service.Reservations) *RefundHandler {
	return &RefundHandler{refunds: refunds, reservations: reservations}
}

type createRefundRequest struct {
	ReservationID    uint64 `json:"reservation_id"`
	PaymentAttemptID uint64 `json:"payment_attempt_id"`
	AmountCents      int64  `json:"amount_cents"`
	Reason           string `json:"reason"`
}

// Create opens a PENDING refund request against a succeeded payment.
func (h *RefundHandler) Create(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	var req createRefundRequest
	if err := c.Bind(&req); err != nil {
		return respondErr(c, apperr.Validation("invalid request body", nil))
	}
	if req.ReservationID == 0 || req.PaymentAttemptID == 0 {
		return respondErr(c, apperr.Validation("reservation_id and payment_attempt_id are required", nil))
	}
	rr, err := h.refunds.Create(c.Request().Context(), userID, req.ReservationID, req.PaymentAttemptID, req.AmountCents, req.Reason)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"refund_request": rr})
}

// Get returns one refund request.  Customers only see requests against
// their own reservations.
func (h *RefundHandler) Get(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	rr, err := h.refunds.Get(c.Request().Context(), id)
	if err != nil {
		return respondErr(c, err)
	}
	if !isAdmin(c) {
		res, err := h.reservations.Get(c.Request().Context(), rr.ReservationID)
		if err != nil || res.UserID != userID {
			return respondErr(c, apperr.NotFound("refund request not found", map[string]any{"refund_request_id": id}))
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"refund_request": rr})
}

// Approve moves a request to APPROVED; completion through the mock
// provider follows from the emitted event.
func (h *RefundHandler) Approve(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	rr, err := h.refunds.Approve(c.Request().Context(), id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"refund_request": rr})
}

type rejectRefundRequest struct {
	Reason string `json:"reason"`
}

// Reject moves a request to REJECTED with the given reason.
func (h *RefundHandler) Reject(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	var req rejectRefundRequest
	if err := c.Bind(&req); err != nil {
		return respondErr(c, apperr.Validation("invalid request body", nil))
	}
	if req.Reason == "" {
		req.Reason = "rejected by admin"
	}
	rr, err := h.refunds.Reject(c.Request().Context(), id, req.Reason)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"refund_request": rr})
}
