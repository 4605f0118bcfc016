package model

import "time"

// PaymentStatus enumerates the states of a payment attempt.  SUCCEEDED
// and FAILED are terminal.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentSucceeded PaymentStatus = "SUCCEEDED"
	PaymentFailed    PaymentStatus = "FAILED"
)

// PaymentAttempt is one attempt to pay an order.  Attempts are retryable:
// a failed attempt leaves the order pending and a new attempt may be
// created.  A successful attempt requires AmountAttemptedCents to equal
// the order's final amount at confirmation time.
//
// Fields:
//  ID                   – primary key identifier.
//  OrderID              – order being paid.
//  AmountAttemptedCents – amount in cents the attempt was created for.
//  FinalAmountCents     – order final amount recorded at creation.
//  Status               – PENDING, SUCCEEDED or FAILED.
//  FailureReason        – provider failure reason (nil unless FAILED).
//  ProviderPaymentID    – external provider reference (nil unless SUCCEEDED).
//  CreatedAt            – creation timestamp.
type PaymentAttempt struct {
	ID                   uint64        `json:"id"`
	OrderID              uint64        `json:"order_id"`
	AmountAttemptedCents int64         `json:"amount_attempted_cents"`
	FinalAmountCents     int64         `json:"final_amount_cents"`
	Status               PaymentStatus `json:"status"`
	FailureReason        *string       `json:"failure_reason,omitempty"`
	ProviderPaymentID    *string       `json:"provider_payment_id,omitempty"`
	CreatedAt            time.Time     `json:"created_at"`
}
