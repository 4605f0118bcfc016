package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/cinemacore/booking/internal/apperr"
	"github.com/cinemacore/booking/internal/event"
	"github.com/cinemacore/booking/internal/model"
	"github.com/cinemacore/booking/internal/repository"
)

// Payments manages payment attempts against orders.  The provider is
// modeled as a trusted external confirm or fail signal; this service
// enforces the transition contract, most importantly that an attempt
// can only succeed when its amount matches the order's final amount at
// confirmation time.
type Payments struct {
	payments PaymentStore
	orders   OrderStore
	bus      Publisher
	log      *logrus.Logger
}

// NewPayments builds the payment service.
func NewPayments(payments PaymentStore, orders OrderStore, bus Publisher, log *logrus.Logger) *Payments {
	return &Payments{payments: payments, orders: orders, bus: bus, log: log}
}

// Create opens a PENDING attempt for an order.  The order must itself
// still be pending; paying a settled order is refused.  The order's
// final amount is copied onto the attempt for the audit trail, but the
// authoritative equality check happens again at confirmation.
func (p *Payments) Create(ctx context.Context, orderID, userID uint64, amountAttemptedCents int64) (*model.PaymentAttempt, error) {
	ord, err := p.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("order not found", map[string]any{"order_id": orderID})
		}
		return nil, apperr.Internal("could not load order", map[string]any{"order_id": orderID})
	}
	if ord.UserID != userID {
		return nil, apperr.NotFound("order not found", map[string]any{"order_id": orderID})
	}
	if ord.Status != model.OrderPending {
		return nil, apperr.Conflict("order already settled", map[string]any{"order_id": orderID, "status": ord.Status})
	}
	if amountAttemptedCents <= 0 {
		return nil, apperr.Validation("amount must be positive", map[string]any{"amount_cents": amountAttemptedCents})
	}

	attempt := &model.PaymentAttempt{
		OrderID:              orderID,
		AmountAttemptedCents: amountAttemptedCents,
		FinalAmountCents:     ord.FinalAmountCents,
		Status:               model.PaymentPending,
	}
	if err := p.payments.Create(ctx, attempt); err != nil {
		return nil, apperr.Internal("could not create payment attempt", map[string]any{"order_id": orderID})
	}

	p.bus.Publish(ctx, event.PaymentPending, event.PaymentPayload{
		PaymentAttemptID: attempt.ID,
		OrderID:          orderID,
		UserID:           ord.UserID,
		FinalAmountCents: ord.FinalAmountCents,
	})
	return attempt, nil
}

// Get returns a payment attempt by id.
func (p *Payments) Get(ctx context.Context, id uint64) (*model.PaymentAttempt, error) {
	attempt, err := p.payments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("payment attempt not found", map[string]any{"payment_attempt_id": id})
		}
		return nil, apperr.Internal("could not load payment attempt", map[string]any{"payment_attempt_id": id})
	}
	return attempt, nil
}

// Confirm settles an attempt as SUCCEEDED.  The attempted amount must
// equal the order's final amount as it stands right now; a mismatch is
// a validation failure and the attempt stays PENDING so the user can
// retry with the corrected amount.  Confirming an already succeeded
// attempt is a no-op.
func (p *Payments) Confirm(ctx context.Context, id uint64) (*model.PaymentAttempt, error) {
	attempt, err := p.payments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("payment attempt not found", map[string]any{"payment_attempt_id": id})
		}
		return nil, apperr.Internal("could not load payment attempt", map[string]any{"payment_attempt_id": id})
	}
	switch attempt.Status {
	case model.PaymentSucceeded:
		return attempt, nil
	case model.PaymentFailed:
		return nil, apperr.Conflict("payment attempt already failed", map[string]any{"payment_attempt_id": id})
	}

	ord, err := p.orders.GetByID(ctx, attempt.OrderID)
	if err != nil {
		return nil, apperr.Internal("could not load order", map[string]any{"order_id": attempt.OrderID})
	}
	if attempt.AmountAttemptedCents != ord.FinalAmountCents {
		return nil, apperr.Validation("final amount not equal to order amount", map[string]any{
			"payment_attempt_id": id,
			"amount_cents":       attempt.AmountAttemptedCents,
			"final_amount_cents": ord.FinalAmountCents,
		})
	}

	attempt.Status = model.PaymentSucceeded
	attempt.FinalAmountCents = ord.FinalAmountCents
	if err := p.payments.Update(ctx, attempt); err != nil {
		return nil, apperr.Internal("could not update payment attempt", map[string]any{"payment_attempt_id": id})
	}

	p.bus.Publish(ctx, event.PaymentSucceeded, event.PaymentPayload{
		PaymentAttemptID: attempt.ID,
		OrderID:          attempt.OrderID,
		UserID:           ord.UserID,
		FinalAmountCents: ord.FinalAmountCents,
	})
	return attempt, nil
}

// Fail settles an attempt as FAILED with the given reason.  Failing an
// already failed attempt is a no-op; failing a succeeded one is
// refused.
func (p *Payments) Fail(ctx context.Context, id uint64, reason string) (*model.PaymentAttempt, error) {
	attempt, err := p.payments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("payment attempt not found", map[string]any{"payment_attempt_id": id})
		}
		return nil, apperr.Internal("could not load payment attempt", map[string]any{"payment_attempt_id": id})
	}
	switch attempt.Status {
	case model.PaymentFailed:
		return attempt, nil
	case model.PaymentSucceeded:
		return nil, apperr.Conflict("payment attempt already succeeded", map[string]any{"payment_attempt_id": id})
	}

	var userID uint64
	if ord, err := p.orders.GetByID(ctx, attempt.OrderID); err == nil {
		userID = ord.UserID
	}

	attempt.Status = model.PaymentFailed
	attempt.FailureReason = &reason
	if err := p.payments.Update(ctx, attempt); err != nil {
		return nil, apperr.Internal("could not update payment attempt", map[string]any{"payment_attempt_id": id})
	}

	p.bus.Publish(ctx, event.PaymentFailed, event.PaymentPayload{
		PaymentAttemptID: attempt.ID,
		OrderID:          attempt.OrderID,
		UserID:           userID,
		FinalAmountCents: attempt.FinalAmountCents,
		FailureReason:    reason,
	})
	return attempt, nil
}
