package service

import (
	"context"
	"fmt"

	"github.com/cinemacore/booking/internal/apperr"
	"github.com/cinemacore/booking/internal/event"
)

// RegisterSubscriptions wires the saga: every cross-machine reaction in
// the booking core is a bus subscription registered here, so this file
// is the single map of who reacts to what.
//
//	reservation.created    -> seat lock, order creation
//	reservation.cancelled  -> seat unlock, order cancel
//	reservation.expired    -> seat unlock, order expiry
//	order.created          -> pricing snapshot
//	pricing.snapshot_created -> snapshot frozen onto order
//	payment.succeeded      -> order completion
//	order.completed        -> seat marked RESERVED
//	payment.failed         -> seat unlock (reservation stays open for retry)
//	refund.request_approved -> refund completion via mock provider
//	admin.force_*          -> forced cancel / forced payment failure
//
// Seat, payment and refund events additionally feed the audit trail.
func RegisterSubscriptions(bus *event.Bus, seats *SeatInventory, reservations *Reservations, orders *Orders, pricing *Pricing, payments *Payments, refunds *Refunds, audit *Audit) {
	bus.Subscribe(event.ReservationCreated, "seat-lock", func(ctx context.Context, payload any) error {
		p, ok := payload.(event.ReservationPayload)
		if !ok {
			return fmt.Errorf("unexpected payload %T", payload)
		}
		_, err := seats.Lock(ctx, p.ShowtimeID, p.SeatCode, p.UserID)
		return err
	})

	bus.Subscribe(event.ReservationCreated, "order-create", func(ctx context.Context, payload any) error {
		p, ok := payload.(event.ReservationPayload)
		if !ok {
			return fmt.Errorf("unexpected payload %T", payload)
		}
		_, err := orders.CreateFromReservation(ctx, p)
		return err
	})

	bus.Subscribe(event.ReservationCancelled, "seat-unlock", func(ctx context.Context, payload any) error {
		p, ok := payload.(event.ReservationPayload)
		if !ok {
			return fmt.Errorf("unexpected payload %T", payload)
		}
		_, err := seats.Unlock(ctx, p.ShowtimeID, p.SeatCode, p.UserID)
		return ignoreNotFound(err)
	})

	bus.Subscribe(event.ReservationCancelled, "order-cancel", func(ctx context.Context, payload any) error {
		p, ok := payload.(event.ReservationPayload)
		if !ok {
			return fmt.Errorf("unexpected payload %T", payload)
		}
		ord, err := orders.GetByReservation(ctx, p.ReservationID)
		if err != nil {
			return ignoreNotFound(err)
		}
		_, err = orders.Cancel(ctx, ord.ID)
		return ignoreConflict(err)
	})

	bus.Subscribe(event.ReservationExpired, "seat-unlock", func(ctx context.Context, payload any) error {
		p, ok := payload.(event.ReservationPayload)
		if !ok {
			return fmt.Errorf("unexpected payload %T", payload)
		}
		_, err := seats.Unlock(ctx, p.ShowtimeID, p.SeatCode, p.UserID)
		return ignoreNotFound(err)
	})

	bus.Subscribe(event.ReservationExpired, "order-expire", func(ctx context.Context, payload any) error {
		p, ok := payload.(event.ReservationPayload)
		if !ok {
			return fmt.Errorf("unexpected payload %T", payload)
		}
		ord, err := orders.GetByReservation(ctx, p.ReservationID)
		if err != nil {
			return ignoreNotFound(err)
		}
		_, err = orders.Expire(ctx, ord.ID)
		return ignoreConflict(err)
	})

	bus.Subscribe(event.OrderCreated, "pricing-snapshot", func(ctx context.Context, payload any) error {
		p, ok := payload.(event.OrderPayload)
		if !ok {
			return fmt.Errorf("unexpected payload %T", payload)
		}
		snap, err := pricing.Snapshot(ctx)
		if err != nil {
			return err
		}
		bus.Publish(ctx, event.PricingSnapshotCreated, event.PricingSnapshotPayload{
			OrderID:  p.OrderID,
			Snapshot: snap,
		})
		return nil
	})

	bus.Subscribe(event.PricingSnapshotCreated, "order-apply-snapshot", func(ctx context.Context, payload any) error {
		p, ok := payload.(event.PricingSnapshotPayload)
		if !ok {
			return fmt.Errorf("unexpected payload %T", payload)
		}
		return orders.ApplySnapshot(ctx, p.OrderID, p.Snapshot)
	})

	bus.Subscribe(event.PaymentSucceeded, "order-complete", func(ctx context.Context, payload any) error {
		p, ok := payload.(event.PaymentPayload)
		if !ok {
			return fmt.Errorf("unexpected payload %T", payload)
		}
		_, err := orders.Complete(ctx, p.OrderID)
		return err
	})

	bus.Subscribe(event.OrderCompleted, "seat-reserve", func(ctx context.Context, payload any) error {
		p, ok := payload.(event.OrderPayload)
		if !ok {
			return fmt.Errorf("unexpected payload %T", payload)
		}
		_, err := seats.MarkReserved(ctx, p.ShowtimeID, p.SeatCode, p.UserID)
		return err
	})

	// A failed payment releases the seat but leaves the order PENDING so
	// the user can retry with a fresh attempt while the reservation lives.
	bus.Subscribe(event.PaymentFailed, "seat-unlock", func(ctx context.Context, payload any) error {
		p, ok := payload.(event.PaymentPayload)
		if !ok {
			return fmt.Errorf("unexpected payload %T", payload)
		}
		ord, err := orders.Get(ctx, p.OrderID)
		if err != nil {
			return ignoreNotFound(err)
		}
		_, err = seats.Unlock(ctx, ord.ShowtimeID, ord.SeatCode, ord.UserID)
		return ignoreNotFound(err)
	})

	bus.Subscribe(event.RefundRequestApproved, "refund-complete", func(ctx context.Context, payload any) error {
		p, ok := payload.(event.RefundPayload)
		if !ok {
			return fmt.Errorf("unexpected payload %T", payload)
		}
		_, err := refunds.Complete(ctx, p.RefundRequestID)
		return err
	})

	bus.Subscribe(event.AdminForceCancelReservation, "force-cancel", func(ctx context.Context, payload any) error {
		p, ok := payload.(event.ReservationPayload)
		if !ok {
			return fmt.Errorf("unexpected payload %T", payload)
		}
		_, err := reservations.Cancel(ctx, p.ReservationID, 0, true)
		return err
	})

	bus.Subscribe(event.AdminForceFailPayment, "force-fail", func(ctx context.Context, payload any) error {
		p, ok := payload.(event.PaymentPayload)
		if !ok {
			return fmt.Errorf("unexpected payload %T", payload)
		}
		reason := p.FailureReason
		if reason == "" {
			reason = "forced failure"
		}
		_, err := payments.Fail(ctx, p.PaymentAttemptID, reason)
		return ignoreConflict(err)
	})

	registerAuditSinks(bus, audit)
}

// registerAuditSinks attaches the audit trail to every seat, payment and
// refund event.  The sink never errors back into the bus.
func registerAuditSinks(bus *event.Bus, audit *Audit) {
	seatEvents := []string{event.SeatLocked, event.SeatUnlocked, event.SeatReserved, event.SeatExpired}
	for _, name := range seatEvents {
		action := name
		bus.Subscribe(action, "audit", func(ctx context.Context, payload any) error {
			p, ok := payload.(event.SeatPayload)
			if !ok {
				return fmt.Errorf("unexpected payload %T", payload)
			}
			audit.Record(ctx, p.UserID, "system", action, "seat", p.ShowtimeID, p)
			return nil
		})
	}

	paymentEvents := []string{event.PaymentPending, event.PaymentSucceeded, event.PaymentFailed}
	for _, name := range paymentEvents {
		action := name
		bus.Subscribe(action, "audit", func(ctx context.Context, payload any) error {
			p, ok := payload.(event.PaymentPayload)
			if !ok {
				return fmt.Errorf("unexpected payload %T", payload)
			}
			audit.Record(ctx, p.UserID, "system", action, "payment_attempt", p.PaymentAttemptID, p)
			return nil
		})
	}

	refundEvents := []string{event.RefundRequestCreated, event.RefundRequestApproved, event.RefundRequestRejected, event.RefundIssued}
	for _, name := range refundEvents {
		action := name
		bus.Subscribe(action, "audit", func(ctx context.Context, payload any) error {
			p, ok := payload.(event.RefundPayload)
			if !ok {
				return fmt.Errorf("unexpected payload %T", payload)
			}
			audit.Record(ctx, 0, "system", action, "refund_request", p.RefundRequestID, p)
			return nil
		})
	}
}

// ignoreNotFound drops missing-aggregate errors inside event handlers;
// fan-out may race the writes it reacts to.
func ignoreNotFound(err error) error {
	if err == nil || apperr.IsKind(err, apperr.KindNotFound) {
		return nil
	}
	return err
}

// ignoreConflict drops already-settled conflicts inside event handlers;
// two compensation paths may race for the same transition.
func ignoreConflict(err error) error {
	if err == nil || apperr.IsKind(err, apperr.KindConflict) {
		return nil
	}
	return err
}
