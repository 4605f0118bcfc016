package model

import "time"

// OrderStatus enumerates the lifecycle states of an order.  The state is
// explicit rather than inferred from event history, so cancelled and
// expired orders can be queried directly.
type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderCompleted OrderStatus = "COMPLETED"
	OrderCancelled OrderStatus = "CANCELLED"
	OrderExpired   OrderStatus = "EXPIRED"
)

// AppliedModifier documents one price modifier applied to an order's
// pricing snapshot.
type AppliedModifier struct {
	Name         string       `json:"name"`
	ModifierType ModifierType `json:"modifier_type"`
	Amount       float64      `json:"amount"`
}

// PricingSnapshot is the immutable pricing result captured for an order
// at snapshot time.  Amounts are in cents.
type PricingSnapshot struct {
	BasePriceCents   int64             `json:"base_price_cents"`
	ModifiersApplied []AppliedModifier `json:"modifiers_applied"`
	FinalPriceCents  int64             `json:"final_price_cents"`
}

// Order is the financial wrapper around a reservation.  Exactly one
// order exists per reservation; FinalAmountCents stays zero until the
// pricing snapshot arrives.
//
// Fields:
//  ID               – primary key identifier.
//  UserID           – customer owning the order.
//  ReservationID    – 1:1 reference to the reservation.
//  ShowtimeID       – showtime copied from the reservation for seat effects.
//  SeatCode         – seat code copied from the reservation.
//  Snapshot         – pricing snapshot (nil until computed).
//  FinalAmountCents – final amount in cents, from the snapshot.
//  Status           – PENDING, COMPLETED, CANCELLED or EXPIRED.
//  CreatedAt        – creation timestamp.
type Order struct {
	ID               uint64           `json:"id"`
	UserID           uint64           `json:"user_id"`
	ReservationID    uint64           `json:"reservation_id"`
	ShowtimeID       uint64           `json:"showtime_id"`
	SeatCode         string           `json:"seat_code"`
	Snapshot         *PricingSnapshot `json:"pricing_snapshot,omitempty"`
	FinalAmountCents int64            `json:"final_amount_cents"`
	Status           OrderStatus      `json:"status"`
	CreatedAt        time.Time        `json:"created_at"`
}
