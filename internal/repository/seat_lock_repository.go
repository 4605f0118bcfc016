package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/cinemacore/booking/internal/model"
)

// SeatLockRepo provides data access to the seat_locks table, the single
// source of truth for whether a seat at a showtime can be claimed.  Every
// mutating method executes its read-check-then-write sequence inside a
// transaction holding a row lock (SELECT ... FOR UPDATE), so two
// concurrent transitions on the same (showtime, seat) pair serialize at
// the database.  Rows are materialized lazily: the first lock attempt
// creates the row, and the unique key on (showtime_id, seat_code)
// guarantees concurrent first attempts cannot create duplicates.
type SeatLockRepo struct {
	db *sql.DB
}

// NewSeatLockRepo returns a new SeatLockRepo bound to the provided database.
func NewSeatLockRepo(db *sql.DB) *SeatLockRepo { return &SeatLockRepo{db: db} }

const seatLockColumns = `id, showtime_id, seat_code, status, locked_by, lock_expires_at, created_at, updated_at`

func scanSeatLock(row interface{ Scan(...any) error }) (*model.SeatLock, error) {
	var sl model.SeatLock
	var lockedBy sql.NullInt64
	var expiresAt sql.NullTime
	if err := row.Scan(&sl.ID, &sl.ShowtimeID, &sl.SeatCode, &sl.Status, &lockedBy, &expiresAt, &sl.CreatedAt, &sl.UpdatedAt); err != nil {
		return nil, err
	}
	if lockedBy.Valid {
		uid := uint64(lockedBy.Int64)
		sl.LockedBy = &uid
	}
	if expiresAt.Valid {
		t := expiresAt.Time.UTC()
		sl.LockExpiresAt = &t
	}
	return &sl, nil
}

// Get returns the seat lock row for a seat at a showtime, or ErrNotFound
// when the seat has never been touched.
func (r *SeatLockRepo) Get(ctx context.Context, showtimeID uint64, seatCode string) (*model.SeatLock, error) {
	const q = `SELECT ` + seatLockColumns + ` FROM seat_locks WHERE showtime_id = ? AND seat_code = ?`
	sl, err := scanSeatLock(r.db.QueryRowContext(ctx, q, showtimeID, seatCode))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return sl, err
}

// selectForUpdate loads a row under a row lock within tx.
func (r *SeatLockRepo) selectForUpdate(ctx context.Context, tx *sql.Tx, showtimeID uint64, seatCode string) (*model.SeatLock, error) {
	const q = `SELECT ` + seatLockColumns + ` FROM seat_locks WHERE showtime_id = ? AND seat_code = ? FOR UPDATE`
	return scanSeatLock(tx.QueryRowContext(ctx, q, showtimeID, seatCode))
}

// Lock transitions a seat to LOCKED for the given user with the given
// expiry.  The row is created AVAILABLE first when absent (INSERT IGNORE
// against the unique key, so concurrent first attempts race safely).
// Returns ErrSeatReserved when the seat is RESERVED and
// ErrSeatLockedByOther when a different user holds an active lock.
// Re-locking by the same user refreshes the expiry.
func (r *SeatLockRepo) Lock(ctx context.Context, showtimeID uint64, seatCode string, userID uint64, expiresAt time.Time) (*model.SeatLock, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Lazy materialization; a no-op when the row already exists.
	const ins = `INSERT IGNORE INTO seat_locks (showtime_id, seat_code, status) VALUES (?, ?, 'AVAILABLE')`
	if _, err := tx.ExecContext(ctx, ins, showtimeID, seatCode); err != nil {
		return nil, err
	}

	sl, err := r.selectForUpdate(ctx, tx, showtimeID, seatCode)
	if err != nil {
		return nil, err
	}
	switch {
	case sl.Status == model.SeatReserved:
		return nil, ErrSeatReserved
	case sl.Status == model.SeatLocked && (sl.LockedBy == nil || *sl.LockedBy != userID):
		return nil, ErrSeatLockedByOther
	}

	const upd = `UPDATE seat_locks SET status = 'LOCKED', locked_by = ?, lock_expires_at = ? WHERE id = ?`
	if _, err := tx.ExecContext(ctx, upd, userID, expiresAt.UTC(), sl.ID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	exp := expiresAt.UTC()
	sl.Status = model.SeatLocked
	sl.LockedBy = &userID
	sl.LockExpiresAt = &exp
	return sl, nil
}

// Unlock unconditionally transitions a seat back to AVAILABLE, clearing
// owner and expiry.  Unlocking an already-available seat is a no-op
// transition and not an error.  Returns ErrNotFound when the seat has no
// ledger row.
func (r *SeatLockRepo) Unlock(ctx context.Context, showtimeID uint64, seatCode string) (*model.SeatLock, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	sl, err := r.selectForUpdate(ctx, tx, showtimeID, seatCode)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	const upd = `UPDATE seat_locks SET status = 'AVAILABLE', locked_by = NULL, lock_expires_at = NULL WHERE id = ?`
	if _, err := tx.ExecContext(ctx, upd, sl.ID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	sl.Status = model.SeatAvailable
	sl.LockedBy = nil
	sl.LockExpiresAt = nil
	return sl, nil
}

// MarkReserved finalizes a seat, transitioning LOCKED to RESERVED and
// clearing owner and expiry.  Returns ErrNotFound when the seat has no
// ledger row and ErrSeatNotLocked when the current status is not LOCKED;
// only an in-flight booking, never a cold call, may finalize a seat.
func (r *SeatLockRepo) MarkReserved(ctx context.Context, showtimeID uint64, seatCode string) (*model.SeatLock, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	sl, err := r.selectForUpdate(ctx, tx, showtimeID, seatCode)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if sl.Status != model.SeatLocked {
		return nil, ErrSeatNotLocked
	}

	const upd = `UPDATE seat_locks SET status = 'RESERVED', locked_by = NULL, lock_expires_at = NULL WHERE id = ?`
	if _, err := tx.ExecContext(ctx, upd, sl.ID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	sl.Status = model.SeatReserved
	sl.LockedBy = nil
	sl.LockExpiresAt = nil
	return sl, nil
}

// SweepExpired transitions every LOCKED row whose expiry is at or before
// now back to AVAILABLE and returns the swept rows so the caller can emit
// one seat.expired event per seat.  Rows are locked for the duration of
// the sweep so a concurrent Lock cannot interleave.
func (r *SeatLockRepo) SweepExpired(ctx context.Context, now time.Time) ([]model.SeatLock, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const q = `SELECT ` + seatLockColumns + ` FROM seat_locks
	           WHERE status = 'LOCKED' AND lock_expires_at IS NOT NULL AND lock_expires_at <= ?
	           FOR UPDATE`
	rows, err := tx.QueryContext(ctx, q, now.UTC())
	if err != nil {
		return nil, err
	}
	var swept []model.SeatLock
	for rows.Next() {
		sl, scanErr := scanSeatLock(rows)
		if scanErr != nil {
			rows.Close()
			return nil, scanErr
		}
		swept = append(swept, *sl)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if len(swept) == 0 {
		committed = true
		return nil, tx.Commit()
	}

	const upd = `UPDATE seat_locks SET status = 'AVAILABLE', locked_by = NULL, lock_expires_at = NULL
	             WHERE status = 'LOCKED' AND lock_expires_at IS NOT NULL AND lock_expires_at <= ?`
	if _, err := tx.ExecContext(ctx, upd, now.UTC()); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	for i := range swept {
		swept[i].Status = model.SeatAvailable
		swept[i].LockedBy = nil
		swept[i].LockExpiresAt = nil
	}
	return swept, nil
}

// ListForShowtime returns all materialized seat lock rows for a showtime.
// Seats missing from the result have never been touched and are
// AVAILABLE by definition; the service layer merges this sparse set with
// the screen layout to build the full grid.
func (r *SeatLockRepo) ListForShowtime(ctx context.Context, showtimeID uint64) ([]model.SeatLock, error) {
	const q = `SELECT ` + seatLockColumns + ` FROM seat_locks WHERE showtime_id = ?`
	rows, err := r.db.QueryContext(ctx, q, showtimeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var locks []model.SeatLock
	for rows.Next() {
		sl, err := scanSeatLock(rows)
		if err != nil {
			return nil, err
		}
		locks = append(locks, *sl)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return locks, nil
}
