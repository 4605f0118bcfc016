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

// Reservations manages the reservation lifecycle.  A reservation is the
// saga root: creating one triggers the seat lock and the order through
// events, and ending one (cancel or expire) triggers the compensating
// unlock and order teardown the same way.
type Reservations struct {
	reservations ReservationStore
	seats        SeatLockStore
	layouts      LayoutProvider
	bus          Publisher
	log          *logrus.Logger

	ttl time.Duration
	now func() time.Time
}

// NewReservations builds the reservation service.  ttl is how long an
// ACTIVE reservation lives before the sweeper expires it.
func NewReservations(reservations ReservationStore, seats SeatLockStore, layouts LayoutProvider, bus Publisher, log *logrus.Logger, ttl time.Duration) *Reservations {
	return &Reservations{
		reservations: reservations,
		seats:        seats,
		layouts:      layouts,
		bus:          bus,
		log:          log,
		ttl:          ttl,
		now:          time.Now,
	}
}

// Create opens a reservation for a seat.  The seat code is validated
// against the screen layout and the seat's current ledger state is
// checked up front so the caller gets a conflict immediately instead of
// a reservation that can never lock its seat.  The authoritative
// exclusion still happens in the seat lock transaction fired by the
// reservation.created event.
func (r *Reservations) Create(ctx context.Context, userID, showtimeID uint64, seatCode string) (*model.Reservation, error) {
	layout, err := r.layouts.LayoutForShowtime(ctx, showtimeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("showtime not found", map[string]any{"showtime_id": showtimeID})
		}
		return nil, apperr.Internal("could not load seat layout", map[string]any{"showtime_id": showtimeID})
	}
	if err := validateSeatCode(layout, seatCode); err != nil {
		return nil, err
	}

	if existing, err := r.reservations.ActiveByShowtimeAndSeat(ctx, showtimeID, seatCode); err == nil && existing != nil {
		return nil, apperr.Conflict("seat already has an active reservation", map[string]any{"seat_code": seatCode})
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Internal("could not check existing reservations", map[string]any{"seat_code": seatCode})
	}

	if lock, err := r.seats.Get(ctx, showtimeID, seatCode); err == nil {
		switch {
		case lock.Status == model.SeatReserved:
			return nil, apperr.Conflict("seat is already reserved", map[string]any{"seat_code": seatCode})
		case lock.Status == model.SeatLocked && (lock.LockedBy == nil || *lock.LockedBy != userID):
			return nil, apperr.Conflict("seat is held by another user", map[string]any{"seat_code": seatCode})
		}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Internal("could not check seat state", map[string]any{"seat_code": seatCode})
	}

	expiresAt := r.now().Add(r.ttl)
	res := &model.Reservation{
		UserID:     userID,
		ShowtimeID: showtimeID,
		SeatCode:   seatCode,
		Status:     model.ReservationActive,
		ExpiresAt:  &expiresAt,
	}
	if err := r.reservations.Create(ctx, res); err != nil {
		return nil, apperr.Internal("could not create reservation", map[string]any{"seat_code": seatCode})
	}

	r.bus.Publish(ctx, event.ReservationCreated, event.ReservationPayload{
		ReservationID: res.ID,
		UserID:        userID,
		ShowtimeID:    showtimeID,
		SeatCode:      seatCode,
	})
	return res, nil
}

// Get returns a reservation by id.
func (r *Reservations) Get(ctx context.Context, id uint64) (*model.Reservation, error) {
	res, err := r.reservations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("reservation not found", map[string]any{"reservation_id": id})
		}
		return nil, apperr.Internal("could not load reservation", map[string]any{"reservation_id": id})
	}
	return res, nil
}

// ListByUser returns the caller's reservations, newest first.
func (r *Reservations) ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error) {
	list, err := r.reservations.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("could not list reservations", map[string]any{"user_id": userID})
	}
	return list, nil
}

// Cancel moves a reservation to CANCELLED.  Non-owners are refused
// unless the call is an admin override.  Cancelling a reservation that
// is already terminal is a no-op returning the current state, so
// retries and racing sweeps stay safe.
func (r *Reservations) Cancel(ctx context.Context, id, actorID uint64, admin bool) (*model.Reservation, error) {
	res, err := r.reservations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("reservation not found", map[string]any{"reservation_id": id})
		}
		return nil, apperr.Internal("could not load reservation", map[string]any{"reservation_id": id})
	}
	if !admin && res.UserID != actorID {
		return nil, apperr.Conflict("only the owner may cancel this reservation", map[string]any{"reservation_id": id})
	}
	if res.Status.Terminal() {
		return res, nil
	}

	res.Status = model.ReservationCancelled
	res.ExpiresAt = nil
	if err := r.reservations.Update(ctx, res); err != nil {
		return nil, apperr.Internal("could not cancel reservation", map[string]any{"reservation_id": id})
	}

	r.bus.Publish(ctx, event.ReservationCancelled, event.ReservationPayload{
		ReservationID: res.ID,
		UserID:        res.UserID,
		ShowtimeID:    res.ShowtimeID,
		SeatCode:      res.SeatCode,
	})
	return res, nil
}

// Expire moves an ACTIVE reservation to EXPIRED.  Terminal reservations
// are left untouched; the sweeper may race a user cancel and the first
// transition wins.
func (r *Reservations) Expire(ctx context.Context, id uint64) (*model.Reservation, error) {
	res, err := r.reservations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("reservation not found", map[string]any{"reservation_id": id})
		}
		return nil, apperr.Internal("could not load reservation", map[string]any{"reservation_id": id})
	}
	if res.Status.Terminal() {
		return res, nil
	}

	res.Status = model.ReservationExpired
	if err := r.reservations.Update(ctx, res); err != nil {
		return nil, apperr.Internal("could not expire reservation", map[string]any{"reservation_id": id})
	}

	r.bus.Publish(ctx, event.ReservationExpired, event.ReservationPayload{
		ReservationID: res.ID,
		UserID:        res.UserID,
		ShowtimeID:    res.ShowtimeID,
		SeatCode:      res.SeatCode,
	})
	return res, nil
}

// SweepExpired expires every ACTIVE reservation past its deadline.
// Seat unlocks and order expiry then follow from the emitted
// reservation.expired events, keeping the sweeper itself out of the
// seat ledger.
func (r *Reservations) SweepExpired(ctx context.Context) (int, error) {
	due, err := r.reservations.ListExpired(ctx, r.now())
	if err != nil {
		return 0, apperr.Internal("could not list expired reservations", nil)
	}
	swept := 0
	for i := range due {
		if _, err := r.Expire(ctx, due[i].ID); err != nil {
			r.log.WithError(err).WithField("reservation_id", due[i].ID).Warn("sweep could not expire reservation")
			continue
		}
		swept++
	}
	if swept > 0 {
		r.log.WithField("count", swept).Info("expired overdue reservations")
	}
	return swept, nil
}
