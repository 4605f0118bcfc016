// Package repository implements MySQL persistence for the booking core.
// This file defines sentinel errors reused across repositories.  Higher
// layers translate them into the application error taxonomy; repositories
// themselves stay free of HTTP concerns.
package repository

import "errors"

// ErrNotFound is returned when the requested row does not exist.  It is
// used instead of sql.ErrNoRows so in-memory store implementations do
// not need to import database/sql.
var ErrNotFound = errors.New("not found")

// ErrSeatReserved is returned when a lock attempt targets a seat whose
// status is RESERVED.
var ErrSeatReserved = errors.New("seat is already reserved")

// ErrSeatLockedByOther is returned when a lock attempt targets a seat
// currently locked by a different user.
var ErrSeatLockedByOther = errors.New("seat locked by another user")

// ErrSeatNotLocked is returned when mark-reserved is attempted on a seat
// whose status is not LOCKED.  A seat must pass through LOCKED before it
// can be finalized.
var ErrSeatNotLocked = errors.New("seat must be locked before reservation")
