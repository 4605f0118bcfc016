// Package event defines the domain event catalog and the in-process bus
// that connects the booking core's state machines.  Event names and
// payload field names are part of the wire contract with the surrounding
// CRUD layer and must stay stable.
package event

import "github.com/cinemacore/booking/internal/model"

// Event type names.  The convention is "<domain>.<action>".
const (
	ReservationCreated   = "reservation.created"
	ReservationCancelled = "reservation.cancelled"
	ReservationExpired   = "reservation.expired"

	OrderCreated   = "order.created"
	OrderCompleted = "order.completed"
	OrderCancelled = "order.cancelled"
	OrderExpired   = "order.expired"

	PricingSnapshotCreated = "pricing.snapshot_created"

	PaymentPending   = "payment.pending"
	PaymentSucceeded = "payment.succeeded"
	PaymentFailed    = "payment.failed"

	RefundRequestCreated  = "refund.request_created"
	RefundRequestApproved = "refund.request_approved"
	RefundRequestRejected = "refund.request_rejected"
	RefundIssued          = "refund.issued"

	SeatLocked   = "seat.locked"
	SeatUnlocked = "seat.unlocked"
	SeatReserved = "seat.reserved"
	SeatExpired  = "seat.expired"

	AdminForceCancelReservation = "admin.force_cancel_reservation"
	AdminForceFailPayment       = "admin.force_fail_payment"
)

// ReservationPayload accompanies reservation.* events.  Showtime and seat
// are carried on creation so subscribers can act without a lookup; the
// terminal events carry only the reservation id, matching the original
// contract.
type ReservationPayload struct {
	ReservationID uint64 `json:"reservation_id"`
	UserID        uint64 `json:"user_id,omitempty"`
	ShowtimeID    uint64 `json:"showtime_id,omitempty"`
	SeatCode      string `json:"seat_code,omitempty"`
}

// OrderPayload accompanies order.* events.
type OrderPayload struct {
	OrderID       uint64 `json:"order_id"`
	ReservationID uint64 `json:"reservation_id,omitempty"`
	UserID        uint64 `json:"user_id,omitempty"`
	ShowtimeID    uint64 `json:"showtime_id,omitempty"`
	SeatCode      string `json:"seat_code,omitempty"`
}

// PricingSnapshotPayload accompanies pricing.snapshot_created.
type PricingSnapshotPayload struct {
	OrderID  uint64                 `json:"order_id"`
	Snapshot *model.PricingSnapshot `json:"snapshot"`
}

// PaymentPayload accompanies payment.* events.
type PaymentPayload struct {
	PaymentAttemptID uint64 `json:"payment_attempt_id"`
	OrderID          uint64 `json:"order_id"`
	UserID           uint64 `json:"user_id,omitempty"`
	FinalAmountCents int64  `json:"final_amount_cents,omitempty"`
	FailureReason    string `json:"failure_reason,omitempty"`
}

// RefundPayload accompanies refund.* events.
type RefundPayload struct {
	RefundRequestID  uint64 `json:"refund_request_id"`
	ReservationID    uint64 `json:"reservation_id,omitempty"`
	PaymentAttemptID uint64 `json:"payment_attempt_id,omitempty"`
	AmountCents      int64  `json:"amount_cents,omitempty"`
	Reason           string `json:"reason,omitempty"`
	RejectionReason  string `json:"rejection_reason,omitempty"`
	ProviderRefundID string `json:"provider_refund_id,omitempty"`
}

// SeatPayload accompanies seat.* events, consumed by audit and
// observability sinks.
type SeatPayload struct {
	ShowtimeID uint64 `json:"showtime_id"`
	SeatCode   string `json:"seat_code"`
	UserID     uint64 `json:"user_id,omitempty"`
	ExpiresAt  string `json:"expires_at,omitempty"`
}
