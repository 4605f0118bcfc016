package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/cinemacore/booking/internal/model"
)

// ReservationRepo provides CRUD operations for reservations.  All
// timestamp fields are stored in UTC.  Terminal-state idempotence is
// handled in the service layer; the repository only persists state.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationColumns = `id, user_id, showtime_id, seat_code, status, created_at, expires_at`

func scanReservation(row interface{ Scan(...any) error }) (*model.Reservation, error) {
	var res model.Reservation
	var expiresAt sql.NullTime
	if err := row.Scan(&res.ID, &res.UserID, &res.ShowtimeID, &res.SeatCode, &res.Status, &res.CreatedAt, &expiresAt); err != nil {
		return nil, err
	}
	if expiresAt.Valid {
		t := expiresAt.Time.UTC()
		res.ExpiresAt = &t
	}
	return &res, nil
}

// Create inserts a new reservation and populates the generated ID and
// database-assigned timestamps on the provided record.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	const q = `INSERT INTO reservations (user_id, showtime_id, seat_code, status, expires_at) VALUES (?, ?, ?, ?, ?)`
	var expires any
	if res.ExpiresAt != nil {
		expires = res.ExpiresAt.UTC()
	}
	result, err := r.db.ExecContext(ctx, q, res.UserID, res.ShowtimeID, res.SeatCode, res.Status, expires)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	// Query back the full row to populate timestamps and defaults.
	const sel = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	stored, err := scanReservation(r.db.QueryRowContext(ctx, sel, res.ID))
	if err != nil {
		return err
	}
	*res = *stored
	return nil
}

// GetByID returns a reservation or ErrNotFound.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	res, err := scanReservation(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return res, err
}

// Update persists the status and expiry of an existing reservation.
func (r *ReservationRepo) Update(ctx context.Context, res *model.Reservation) error {
	const q = `UPDATE reservations SET status = ?, expires_at = ? WHERE id = ?`
	var expires any
	if res.ExpiresAt != nil {
		expires = res.ExpiresAt.UTC()
	}
	_, err := r.db.ExecContext(ctx, q, res.Status, expires, res.ID)
	return err
}

// ActiveByShowtimeAndSeat returns the ACTIVE reservation for a specific
// seat at a showtime, or ErrNotFound when none exists.
func (r *ReservationRepo) ActiveByShowtimeAndSeat(ctx context.Context, showtimeID uint64, seatCode string) (*model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations
	           WHERE showtime_id = ? AND seat_code = ? AND status = 'ACTIVE'`
	res, err := scanReservation(r.db.QueryRowContext(ctx, q, showtimeID, seatCode))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return res, err
}

// ListByUser returns all reservations for the given user ordered newest
// first.  When no reservations exist, an empty slice is returned.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE user_id = ? ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListExpired returns all ACTIVE reservations whose expiry is at or
// before now.  The sweeper expires each through the service so that the
// reservation.expired event fires per reservation.
func (r *ReservationRepo) ListExpired(ctx context.Context, now time.Time) ([]model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations
	           WHERE status = 'ACTIVE' AND expires_at IS NOT NULL AND expires_at <= ?`
	rows, err := r.db.QueryContext(ctx, q, now.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
