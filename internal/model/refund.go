package model

import "time"

// RefundStatus enumerates refund request states.  COMPLETED is only
// reachable from APPROVED; REJECTED is terminal.
type RefundStatus string

const (
	RefundPending   RefundStatus = "PENDING"
	RefundApproved  RefundStatus = "APPROVED"
	RefundRejected  RefundStatus = "REJECTED"
	RefundCompleted RefundStatus = "COMPLETED"
)

// RefundRequest tracks one refund attempt against a payment attempt and
// its reservation.  Approval and rejection are admin decisions; the
// provider confirmation that completes an approved refund arrives
// asynchronously through the event channel.
type RefundRequest struct {
	ID               uint64       `json:"id"`
	ReservationID    uint64       `json:"reservation_id"`
	PaymentAttemptID uint64       `json:"payment_attempt_id"`
	AmountCents      int64        `json:"amount_cents"`
	Reason           string       `json:"reason"`
	Status           RefundStatus `json:"status"`
	RejectionReason  *string      `json:"rejection_reason,omitempty"`
	ProviderRefundID *string      `json:"provider_refund_id,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
}
