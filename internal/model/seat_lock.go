package model

import "time"

// SeatStatus enumerates the states a seat can be in for a showtime.
type SeatStatus string

const (
	SeatAvailable SeatStatus = "AVAILABLE"
	SeatLocked    SeatStatus = "LOCKED"
	SeatReserved  SeatStatus = "RESERVED"
)

// SeatLock is the current-state record for one seat at one showtime.
// Rows are materialized lazily on the first lock attempt, so most seats
// of a showtime have no row at all; absence means AVAILABLE.
//
// Invariant: LockedBy and LockExpiresAt are set if and only if Status is
// LOCKED.  Both are cleared on every transition out of LOCKED.
//
// Fields:
//  ID            – primary key identifier.
//  ShowtimeID    – showtime this seat belongs to.
//  SeatCode      – seat code such as "A-5"; unique per showtime.
//  Status        – AVAILABLE, LOCKED or RESERVED.
//  LockedBy      – user holding the lock (nil unless LOCKED).
//  LockExpiresAt – lock deadline (nil unless LOCKED).
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last modification timestamp.
type SeatLock struct {
	ID            uint64     `json:"id"`
	ShowtimeID    uint64     `json:"showtime_id"`
	SeatCode      string     `json:"seat_code"`
	Status        SeatStatus `json:"status"`
	LockedBy      *uint64    `json:"locked_by,omitempty"`
	LockExpiresAt *time.Time `json:"lock_expires_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// SeatGridEntry is one element of the availability grid returned for a
// showtime.  Seats without a ledger row are reported as AVAILABLE.
type SeatGridEntry struct {
	SeatCode string     `json:"seat_code"`
	Status   SeatStatus `json:"status"`
}
