package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/cinemacore/booking/internal/apperr"
	"github.com/cinemacore/booking/internal/event"
	"github.com/cinemacore/booking/internal/model"
	"github.com/cinemacore/booking/internal/repository"
)

// Refunds manages refund requests.  Customers open a request against a
// succeeded payment, an admin approves or rejects it, and approval
// triggers completion through the mock refund provider, which assigns
// the provider refund id and emits refund.issued.
type Refunds struct {
	refunds      RefundStore
	payments     PaymentStore
	reservations ReservationStore
	bus          Publisher
	log          *logrus.Logger
}

// NewRefunds builds the refund service.
func NewRefunds(refunds RefundStore, payments PaymentStore, reservations ReservationStore, bus Publisher, log *logrus.Logger) *Refunds {
	return &Refunds{refunds: refunds, payments: payments, reservations: reservations, bus: bus, log: log}
}

// Create opens a PENDING refund request.  The payment attempt must have
// succeeded and the requested amount may not exceed what was paid.
func (r *Refunds) Create(ctx context.Context, userID, reservationID, paymentAttemptID uint64, amountCents int64, reason string) (*model.RefundRequest, error) {
	res, err := r.reservations.GetByID(ctx, reservationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("reservation not found", map[string]any{"reservation_id": reservationID})
		}
		return nil, apperr.Internal("could not load reservation", map[string]any{"reservation_id": reservationID})
	}
	if res.UserID != userID {
		return nil, apperr.NotFound("reservation not found", map[string]any{"reservation_id": reservationID})
	}

	attempt, err := r.payments.GetByID(ctx, paymentAttemptID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("payment attempt not found", map[string]any{"payment_attempt_id": paymentAttemptID})
		}
		return nil, apperr.Internal("could not load payment attempt", map[string]any{"payment_attempt_id": paymentAttemptID})
	}
	if attempt.Status != model.PaymentSucceeded {
		return nil, apperr.Conflict("only succeeded payments can be refunded", map[string]any{"payment_attempt_id": paymentAttemptID})
	}
	if amountCents <= 0 || amountCents > attempt.FinalAmountCents {
		return nil, apperr.Validation("refund amount must be positive and at most the paid amount", map[string]any{
			"amount_cents": amountCents,
			"paid_cents":   attempt.FinalAmountCents,
		})
	}

	rr := &model.RefundRequest{
		ReservationID:    reservationID,
		PaymentAttemptID: paymentAttemptID,
		AmountCents:      amountCents,
		Reason:           reason,
		Status:           model.RefundPending,
	}
	if err := r.refunds.Create(ctx, rr); err != nil {
		return nil, apperr.Internal("could not create refund request", map[string]any{"reservation_id": reservationID})
	}

	r.bus.Publish(ctx, event.RefundRequestCreated, event.RefundPayload{
		RefundRequestID:  rr.ID,
		ReservationID:    reservationID,
		PaymentAttemptID: paymentAttemptID,
		AmountCents:      amountCents,
	})
	return rr, nil
}

// Get returns a refund request by id.
func (r *Refunds) Get(ctx context.Context, id uint64) (*model.RefundRequest, error) {
	rr, err := r.refunds.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("refund request not found", map[string]any{"refund_request_id": id})
		}
		return nil, apperr.Internal("could not load refund request", map[string]any{"refund_request_id": id})
	}
	return rr, nil
}

// ListByReservation returns every refund request against a reservation.
func (r *Refunds) ListByReservation(ctx context.Context, reservationID uint64) ([]model.RefundRequest, error) {
	list, err := r.refunds.ListByReservation(ctx, reservationID)
	if err != nil {
		return nil, apperr.Internal("could not list refund requests", map[string]any{"reservation_id": reservationID})
	}
	return list, nil
}

// Approve moves a PENDING request to APPROVED.  Completion follows
// asynchronously from the emitted approval event.  Re-approving an
// APPROVED or COMPLETED request is a no-op.
func (r *Refunds) Approve(ctx context.Context, id uint64) (*model.RefundRequest, error) {
	rr, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	switch rr.Status {
	case model.RefundApproved, model.RefundCompleted:
		return rr, nil
	case model.RefundRejected:
		return nil, apperr.Conflict("refund request already rejected", map[string]any{"refund_request_id": id})
	}

	rr.Status = model.RefundApproved
	if err := r.refunds.Update(ctx, rr); err != nil {
		return nil, apperr.Internal("could not approve refund request", map[string]any{"refund_request_id": id})
	}

	r.bus.Publish(ctx, event.RefundRequestApproved, event.RefundPayload{
		RefundRequestID:  rr.ID,
		ReservationID:    rr.ReservationID,
		PaymentAttemptID: rr.PaymentAttemptID,
		AmountCents:      rr.AmountCents,
	})
	return rr, nil
}

// Reject moves a PENDING request to REJECTED with the given reason.
// Re-rejecting is a no-op.
func (r *Refunds) Reject(ctx context.Context, id uint64, reason string) (*model.RefundRequest, error) {
	rr, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	switch rr.Status {
	case model.RefundRejected:
		return rr, nil
	case model.RefundApproved, model.RefundCompleted:
		return nil, apperr.Conflict("refund request already approved", map[string]any{"refund_request_id": id})
	}

	rr.Status = model.RefundRejected
	rr.RejectionReason = &reason
	if err := r.refunds.Update(ctx, rr); err != nil {
		return nil, apperr.Internal("could not reject refund request", map[string]any{"refund_request_id": id})
	}

	r.bus.Publish(ctx, event.RefundRequestRejected, event.RefundPayload{
		RefundRequestID:  rr.ID,
		ReservationID:    rr.ReservationID,
		PaymentAttemptID: rr.PaymentAttemptID,
		AmountCents:      rr.AmountCents,
	})
	return rr, nil
}

// Complete executes an APPROVED refund through the mock provider.  The
// provider call is modeled as an immediately successful issue that
// returns a generated refund id.  Only APPROVED requests may complete.
func (r *Refunds) Complete(ctx context.Context, id uint64) (*model.RefundRequest, error) {
	rr, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	switch rr.Status {
	case model.RefundCompleted:
		return rr, nil
	case model.RefundPending, model.RefundRejected:
		return nil, apperr.Conflict("refund request is not approved", map[string]any{"refund_request_id": id, "status": rr.Status})
	}

	providerID := "mock-refund-" + uuid.NewString()
	rr.Status = model.RefundCompleted
	rr.ProviderRefundID = &providerID
	if err := r.refunds.Update(ctx, rr); err != nil {
		return nil, apperr.Internal("could not complete refund request", map[string]any{"refund_request_id": id})
	}

	r.bus.Publish(ctx, event.RefundIssued, event.RefundPayload{
		RefundRequestID:  rr.ID,
		ReservationID:    rr.ReservationID,
		PaymentAttemptID: rr.PaymentAttemptID,
		AmountCents:      rr.AmountCents,
		ProviderRefundID: providerID,
	})
	return rr, nil
}
