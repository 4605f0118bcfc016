package model

import "time"

// ReservationStatus enumerates the lifecycle states of a reservation.
// ACTIVE is the only non-terminal state; CANCELLED and EXPIRED are final
// and further transitions are idempotent no-ops.
type ReservationStatus string

const (
	ReservationActive    ReservationStatus = "ACTIVE"
	ReservationCancelled ReservationStatus = "CANCELLED"
	ReservationExpired   ReservationStatus = "EXPIRED"
)

// Terminal reports whether the status permits no further transitions.
func (s ReservationStatus) Terminal() bool {
	return s == ReservationCancelled || s == ReservationExpired
}

// Reservation records a customer's booking intent for one seat at one
// showtime.  At most one reservation may be ACTIVE for a given
// (showtime, seat) pair at any time; the invariant is enforced through
// the SeatLock the reservation controls.
//
// Fields:
//  ID         – primary key identifier.
//  UserID     – customer who created the reservation.
//  ShowtimeID – showtime being booked.
//  SeatCode   – seat code such as "A-5".
//  Status     – ACTIVE, CANCELLED or EXPIRED.
//  CreatedAt  – creation timestamp.
//  ExpiresAt  – booking deadline; cleared on cancel, kept on expiry.
type Reservation struct {
	ID         uint64            `json:"id"`
	UserID     uint64            `json:"user_id"`
	ShowtimeID uint64            `json:"showtime_id"`
	SeatCode   string            `json:"seat_code"`
	Status     ReservationStatus `json:"status"`
	CreatedAt  time.Time         `json:"created_at"`
	ExpiresAt  *time.Time        `json:"expires_at,omitempty"`
}
