package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/cinemacore/booking/internal/model"
)

// OrderRepo provides data access to the orders table.  The pricing
// snapshot is stored as a JSON column and marshalled on the way in and
// out; a NULL snapshot means pricing has not run yet.
type OrderRepo struct {
	db *sql.DB
}

// NewOrderRepo returns a new OrderRepo bound to the given database.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

const orderColumns = `id, user_id, reservation_id, showtime_id, seat_code, pricing_snapshot, final_amount_cents, status, created_at`

func scanOrder(row interface{ Scan(...any) error }) (*model.Order, error) {
	var o model.Order
	var snapshot sql.NullString
	if err := row.Scan(&o.ID, &o.UserID, &o.ReservationID, &o.ShowtimeID, &o.SeatCode, &snapshot, &o.FinalAmountCents, &o.Status, &o.CreatedAt); err != nil {
		return nil, err
	}
	if snapshot.Valid && snapshot.String != "" {
		var snap model.PricingSnapshot
		if err := json.Unmarshal([]byte(snapshot.String), &snap); err != nil {
			return nil, err
		}
		o.Snapshot = &snap
	}
	return &o, nil
}

// Create inserts a new pending order and populates its generated ID and
// timestamps.
func (r *OrderRepo) Create(ctx context.Context, o *model.Order) error {
	const q = `INSERT INTO orders (user_id, reservation_id, showtime_id, seat_code, final_amount_cents, status) VALUES (?, ?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, q, o.UserID, o.ReservationID, o.ShowtimeID, o.SeatCode, o.FinalAmountCents, o.Status)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = uint64(id)
	const sel = `SELECT ` + orderColumns + ` FROM orders WHERE id = ?`
	stored, err := scanOrder(r.db.QueryRowContext(ctx, sel, o.ID))
	if err != nil {
		return err
	}
	*o = *stored
	return nil
}

// GetByID returns an order or ErrNotFound.
func (r *OrderRepo) GetByID(ctx context.Context, id uint64) (*model.Order, error) {
	const q = `SELECT ` + orderColumns + ` FROM orders WHERE id = ?`
	o, err := scanOrder(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return o, err
}

// GetByReservationID returns the order created for a reservation, or
// ErrNotFound.  An order may legitimately not exist yet while the
// reservation.created fan-out is still in flight.
func (r *OrderRepo) GetByReservationID(ctx context.Context, reservationID uint64) (*model.Order, error) {
	const q = `SELECT ` + orderColumns + ` FROM orders WHERE reservation_id = ?`
	o, err := scanOrder(r.db.QueryRowContext(ctx, q, reservationID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return o, err
}

// Update persists the snapshot, final amount and status of an order.
func (r *OrderRepo) Update(ctx context.Context, o *model.Order) error {
	var snapshot any
	if o.Snapshot != nil {
		raw, err := json.Marshal(o.Snapshot)
		if err != nil {
			return err
		}
		snapshot = string(raw)
	}
	const q = `UPDATE orders SET pricing_snapshot = ?, final_amount_cents = ?, status = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, snapshot, o.FinalAmountCents, o.Status, o.ID)
	return err
}
