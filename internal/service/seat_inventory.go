package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cinemacore/booking/internal/apperr"
	"github.com/cinemacore/booking/internal/event"
	"github.com/cinemacore/booking/internal/model"
	"github.com/cinemacore/booking/internal/repository"
)

// SeatInventory owns the per-showtime seat ledger.  Rows are created
// lazily on first lock, so a seat with no row is simply AVAILABLE.
// All transitions go through the store's row-locked transactions; this
// service adds seat-code validation against the screen layout, event
// emission and the grid view.
type SeatInventory struct {
	seats   SeatLockStore
	layouts LayoutProvider
	bus     Publisher
	log     *logrus.Logger

	lockTTL time.Duration
	now     func() time.Time
}

// NewSeatInventory builds the seat inventory service.  lockTTL is how
// long a hold on a seat lasts before the sweeper may reclaim it.
func NewSeatInventory(seats SeatLockStore, layouts LayoutProvider, bus Publisher, log *logrus.Logger, lockTTL time.Duration) *SeatInventory {
	return &SeatInventory{
		seats:   seats,
		layouts: layouts,
		bus:     bus,
		log:     log,
		lockTTL: lockTTL,
		now:     time.Now,
	}
}

// Lock places a hold on a seat for the given user.  The seat code is
// validated against the showtime's screen layout first, then the store
// performs the atomic AVAILABLE -> LOCKED transition.  A seat already
// locked by the same user refreshes its expiry.
func (s *SeatInventory) Lock(ctx context.Context, showtimeID uint64, seatCode string, userID uint64) (*model.SeatLock, error) {
	layout, err := s.layouts.LayoutForShowtime(ctx, showtimeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("showtime not found", map[string]any{"showtime_id": showtimeID})
		}
		return nil, apperr.Internal("could not load seat layout", map[string]any{"showtime_id": showtimeID})
	}
	if err := validateSeatCode(layout, seatCode); err != nil {
		return nil, err
	}

	expiresAt := s.now().Add(s.lockTTL)
	lock, err := s.seats.Lock(ctx, showtimeID, seatCode, userID, expiresAt)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSeatReserved):
			return nil, apperr.Conflict("seat is already reserved", map[string]any{"seat_code": seatCode})
		case errors.Is(err, repository.ErrSeatLockedByOther):
			return nil, apperr.Conflict("seat is held by another user", map[string]any{"seat_code": seatCode})
		default:
			return nil, apperr.Internal("could not lock seat", map[string]any{"seat_code": seatCode})
		}
	}

	s.bus.Publish(ctx, event.SeatLocked, event.SeatPayload{
		ShowtimeID: showtimeID,
		SeatCode:   seatCode,
		UserID:     userID,
		ExpiresAt:  expiresAt.UTC().Format(time.RFC3339),
	})
	return lock, nil
}

// Unlock releases a seat back to AVAILABLE regardless of who holds it.
// Callers enforce ownership; the admin force-release path deliberately
// does not.
func (s *SeatInventory) Unlock(ctx context.Context, showtimeID uint64, seatCode string, userID uint64) (*model.SeatLock, error) {
	lock, err := s.seats.Unlock(ctx, showtimeID, seatCode)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("seat has no lock to release", map[string]any{"seat_code": seatCode})
		}
		return nil, apperr.Internal("could not unlock seat", map[string]any{"seat_code": seatCode})
	}

	s.bus.Publish(ctx, event.SeatUnlocked, event.SeatPayload{
		ShowtimeID: showtimeID,
		SeatCode:   seatCode,
		UserID:     userID,
	})
	return lock, nil
}

// MarkReserved finalizes a held seat.  Only LOCKED seats may become
// RESERVED; a seat must pass through a hold before it can be finalized,
// so a cold call on an AVAILABLE or RESERVED seat is invalid.
func (s *SeatInventory) MarkReserved(ctx context.Context, showtimeID uint64, seatCode string, userID uint64) (*model.SeatLock, error) {
	lock, err := s.seats.MarkReserved(ctx, showtimeID, seatCode)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperr.NotFound("seat not found", map[string]any{"seat_code": seatCode})
		case errors.Is(err, repository.ErrSeatNotLocked):
			return nil, apperr.Validation("seat is not in a held state", map[string]any{"seat_code": seatCode})
		default:
			return nil, apperr.Internal("could not reserve seat", map[string]any{"seat_code": seatCode})
		}
	}

	s.bus.Publish(ctx, event.SeatReserved, event.SeatPayload{
		ShowtimeID: showtimeID,
		SeatCode:   seatCode,
		UserID:     userID,
	})
	return lock, nil
}

// SweepExpired reclaims every LOCKED seat whose expiry has passed and
// emits seat.expired for each one.  This is the admin reconciliation
// path; in normal operation the reservation sweeper drives unlocks
// through reservation.expired events instead.
func (s *SeatInventory) SweepExpired(ctx context.Context) ([]model.SeatLock, error) {
	swept, err := s.seats.SweepExpired(ctx, s.now())
	if err != nil {
		return nil, apperr.Internal("seat sweep failed", nil)
	}
	for _, lock := range swept {
		payload := event.SeatPayload{ShowtimeID: lock.ShowtimeID, SeatCode: lock.SeatCode}
		if lock.LockedBy != nil {
			payload.UserID = *lock.LockedBy
		}
		s.bus.Publish(ctx, event.SeatExpired, payload)
	}
	if len(swept) > 0 {
		s.log.WithField("count", len(swept)).Info("reclaimed expired seat locks")
	}
	return swept, nil
}

// Grid returns the full seat map for a showtime.  The screen layout is
// authoritative for which seats exist: ledger rows give LOCKED and
// RESERVED seats their status, every other layout seat reports
// AVAILABLE, and stale ledger rows for seats no longer in the layout
// are dropped.
func (s *SeatInventory) Grid(ctx context.Context, showtimeID uint64) ([]model.SeatGridEntry, error) {
	layout, err := s.layouts.LayoutForShowtime(ctx, showtimeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("showtime not found", map[string]any{"showtime_id": showtimeID})
		}
		return nil, apperr.Internal("could not load seat layout", map[string]any{"showtime_id": showtimeID})
	}
	locks, err := s.seats.ListForShowtime(ctx, showtimeID)
	if err != nil {
		return nil, apperr.Internal("could not list seat locks", map[string]any{"showtime_id": showtimeID})
	}

	byCode := make(map[string]model.SeatStatus, len(locks))
	for _, lock := range locks {
		byCode[lock.SeatCode] = lock.Status
	}

	codes := layoutSeatCodes(layout)
	grid := make([]model.SeatGridEntry, 0, len(codes))
	for _, code := range codes {
		status, ok := byCode[code]
		if !ok {
			status = model.SeatAvailable
		}
		grid = append(grid, model.SeatGridEntry{SeatCode: code, Status: status})
	}
	return grid, nil
}
