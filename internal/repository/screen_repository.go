package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/cinemacore/booking/internal/model"
)

// ScreenRepo resolves showtimes to their screen and seat layout.  The
// booking core only reads these tables; full CRUD lives outside the
// core.
type ScreenRepo struct {
	db *sql.DB
}

// NewScreenRepo returns a new ScreenRepo bound to the given database.
func NewScreenRepo(db *sql.DB) *ScreenRepo { return &ScreenRepo{db: db} }

// GetShowtime returns a showtime or ErrNotFound.
func (r *ScreenRepo) GetShowtime(ctx context.Context, id uint64) (*model.Showtime, error) {
	const q = `SELECT id, screen_id, starts_at, is_active FROM showtimes WHERE id = ?`
	var st model.Showtime
	err := r.db.QueryRowContext(ctx, q, id).Scan(&st.ID, &st.ScreenID, &st.StartsAt, &st.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	st.StartsAt = st.StartsAt.UTC()
	return &st, nil
}

// LayoutForShowtime joins a showtime through its screen to the seat
// layout, parsing the optional grid JSON.  Returns ErrNotFound when the
// showtime does not exist.
func (r *ScreenRepo) LayoutForShowtime(ctx context.Context, showtimeID uint64) (*model.SeatLayout, error) {
	const q = `SELECT l.id, l.name, l.rows, l.seats_per_row, l.grid
	           FROM showtimes st
	           JOIN screens s ON s.id = st.screen_id
	           JOIN seat_layouts l ON l.id = s.seat_layout_id
	           WHERE st.id = ?`
	var layout model.SeatLayout
	var grid sql.NullString
	err := r.db.QueryRowContext(ctx, q, showtimeID).Scan(&layout.ID, &layout.Name, &layout.Rows, &layout.SeatsPerRow, &grid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if grid.Valid && grid.String != "" {
		if err := json.Unmarshal([]byte(grid.String), &layout.Grid); err != nil {
			return nil, err
		}
	}
	return &layout, nil
}
