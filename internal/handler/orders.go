package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cinemacore/booking/internal/apperr"
	"github.com/cinemacore/booking/internal/event"
	"github.com/cinemacore/booking/internal/service"
)

// OrderHandler exposes orders and their payment attempts over HTTP.
type OrderHandler struct {
	orders   *service.Orders
	payments *service.Payments
	bus      service.Publisher
}

// NewOrderHandler builds the order handler.
func NewOrderHandler(orders *service.Orders, payments *service.Payments, bus service.Publisher) *OrderHandler {
	return &OrderHandler{orders: orders, payments: payments, bus: bus}
}

// Get returns one order.  Customers only see their own.
func (h *OrderHandler) Get(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	ord, err := h.orders.Get(c.Request().Context(), id)
	if err != nil {
		return respondErr(c, err)
	}
	if ord.UserID != userID && !isAdmin(c) {
		return respondErr(c, apperr.NotFound("order not found", map[string]any{"order_id": id}))
	}
	return c.JSON(http.StatusOK, echo.Map{"order": ord})
}

type createPaymentRequest struct {
	AmountCents int64 `json:"amount_cents"`
}

// CreatePayment opens a PENDING payment attempt for an order.
func (h *OrderHandler) CreatePayment(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	orderID, err := pathID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	var req createPaymentRequest
	if err := c.Bind(&req); err != nil {
		return respondErr(c, apperr.Validation("invalid request body", nil))
	}
	attempt, err := h.payments.Create(c.Request().Context(), orderID, userID, req.AmountCents)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"payment_attempt": attempt})
}

// ConfirmPayment is the provider success callback.  The attempt settles
// SUCCEEDED only when its amount equals the order's final amount right
// now; otherwise the caller gets a 400 and the attempt stays PENDING.
func (h *OrderHandler) ConfirmPayment(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	attempt, err := h.payments.Confirm(c.Request().Context(), id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"payment_attempt": attempt})
}

type failPaymentRequest struct {
	Reason string `json:"reason"`
}

// FailPayment is the provider failure callback.
func (h *OrderHandler) FailPayment(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	var req failPaymentRequest
	if err := c.Bind(&req); err != nil {
		return respondErr(c, apperr.Validation("invalid request body", nil))
	}
	if req.Reason == "" {
		req.Reason = "provider declined"
	}
	attempt, err := h.payments.Fail(c.Request().Context(), id, req.Reason)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"payment_attempt": attempt})
}

// AdminForceFail publishes the force-fail event and returns 202.  The
// attempt fails asynchronously with its seat unlock compensation.
func (h *OrderHandler) AdminForceFail(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	var req failPaymentRequest
	if err := c.Bind(&req); err != nil {
		return respondErr(c, apperr.Validation("invalid request body", nil))
	}
	h.bus.Publish(c.Request().Context(), event.AdminForceFailPayment, event.PaymentPayload{
		PaymentAttemptID: id,
		FailureReason:    req.Reason,
	})
	return c.JSON(http.StatusAccepted, echo.Map{"status": "accepted", "payment_attempt_id": id})
}
