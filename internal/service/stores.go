// Package service implements the booking core's state machines: the seat
// inventory ledger, the reservation manager and the order / payment /
// refund sagas, all coordinated through the in-process event bus.
// Services depend on narrow store interfaces so the MySQL repositories
// and the in-memory test fakes are interchangeable.
package service

import (
	"context"
	"time"

	"github.com/cinemacore/booking/internal/model"
)

// Publisher is the slice of the event bus the services need.
type Publisher interface {
	Publish(ctx context.Context, eventType string, payload any)
}

// SeatLockStore persists seat lock rows.  Implementations must make each
// transition atomic with respect to concurrent callers: Lock, Unlock and
// MarkReserved perform their read-check-then-write under row-level
// mutual exclusion.  The sentinel errors from the repository package
// classify refused transitions.
type SeatLockStore interface {
	Get(ctx context.Context, showtimeID uint64, seatCode string) (*model.SeatLock, error)
	Lock(ctx context.Context, showtimeID uint64, seatCode string, userID uint64, expiresAt time.Time) (*model.SeatLock, error)
	Unlock(ctx context.Context, showtimeID uint64, seatCode string) (*model.SeatLock, error)
	MarkReserved(ctx context.Context, showtimeID uint64, seatCode string) (*model.SeatLock, error)
	SweepExpired(ctx context.Context, now time.Time) ([]model.SeatLock, error)
	ListForShowtime(ctx context.Context, showtimeID uint64) ([]model.SeatLock, error)
}

// ReservationStore persists reservations.
type ReservationStore interface {
	Create(ctx context.Context, res *model.Reservation) error
	GetByID(ctx context.Context, id uint64) (*model.Reservation, error)
	Update(ctx context.Context, res *model.Reservation) error
	ActiveByShowtimeAndSeat(ctx context.Context, showtimeID uint64, seatCode string) (*model.Reservation, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error)
	ListExpired(ctx context.Context, now time.Time) ([]model.Reservation, error)
}

// OrderStore persists orders.
type OrderStore interface {
	Create(ctx context.Context, o *model.Order) error
	GetByID(ctx context.Context, id uint64) (*model.Order, error)
	GetByReservationID(ctx context.Context, reservationID uint64) (*model.Order, error)
	Update(ctx context.Context, o *model.Order) error
}

// PaymentStore persists payment attempts.
type PaymentStore interface {
	Create(ctx context.Context, p *model.PaymentAttempt) error
	GetByID(ctx context.Context, id uint64) (*model.PaymentAttempt, error)
	Update(ctx context.Context, p *model.PaymentAttempt) error
}

// RefundStore persists refund requests.
type RefundStore interface {
	Create(ctx context.Context, rr *model.RefundRequest) error
	GetByID(ctx context.Context, id uint64) (*model.RefundRequest, error)
	Update(ctx context.Context, rr *model.RefundRequest) error
	ListByReservation(ctx context.Context, reservationID uint64) ([]model.RefundRequest, error)
}

// ModifierStore lists active price modifiers for the pricing calculation.
type ModifierStore interface {
	ListActiveModifiers(ctx context.Context) ([]model.PriceModifier, error)
}

// LayoutProvider resolves a showtime to its screen's seat layout.  Used
// for seat-code validation and for grid reconciliation.
type LayoutProvider interface {
	LayoutForShowtime(ctx context.Context, showtimeID uint64) (*model.SeatLayout, error)
}

// AuditStore appends audit trail entries.
type AuditStore interface {
	Append(ctx context.Context, e *model.AuditEntry) error
}
