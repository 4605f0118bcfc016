package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/cinemacore/booking/internal/model"
)

// RefundRepo provides data access to the refund_requests table.
type RefundRepo struct {
	db *sql.DB
}

// NewRefundRepo returns a new RefundRepo bound to the given database.
func NewRefundRepo(db *sql.DB) *RefundRepo { return &RefundRepo{db: db} }

const refundColumns = `id, reservation_id, payment_attempt_id, amount_cents, reason, status, rejection_reason, provider_refund_id, created_at`

func scanRefund(row interface{ Scan(...any) error }) (*model.RefundRequest, error) {
	var rr model.RefundRequest
	var rejection, providerID sql.NullString
	if err := row.Scan(&rr.ID, &rr.ReservationID, &rr.PaymentAttemptID, &rr.AmountCents, &rr.Reason, &rr.Status, &rejection, &providerID, &rr.CreatedAt); err != nil {
		return nil, err
	}
	if rejection.Valid {
		s := rejection.String
		rr.RejectionReason = &s
	}
	if providerID.Valid {
		s := providerID.String
		rr.ProviderRefundID = &s
	}
	return &rr, nil
}

// Create inserts a new pending refund request and populates its
// generated ID and timestamps.
func (r *RefundRepo) Create(ctx context.Context, rr *model.RefundRequest) error {
	const q = `INSERT INTO refund_requests (reservation_id, payment_attempt_id, amount_cents, reason, status) VALUES (?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, q, rr.ReservationID, rr.PaymentAttemptID, rr.AmountCents, rr.Reason, rr.Status)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	rr.ID = uint64(id)
	const sel = `SELECT ` + refundColumns + ` FROM refund_requests WHERE id = ?`
	stored, err := scanRefund(r.db.QueryRowContext(ctx, sel, rr.ID))
	if err != nil {
		return err
	}
	*rr = *stored
	return nil
}

// GetByID returns a refund request or ErrNotFound.
func (r *RefundRepo) GetByID(ctx context.Context, id uint64) (*model.RefundRequest, error) {
	const q = `SELECT ` + refundColumns + ` FROM refund_requests WHERE id = ?`
	rr, err := scanRefund(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rr, err
}

// Update persists the status, rejection reason and provider reference of
// a refund request.
func (r *RefundRepo) Update(ctx context.Context, rr *model.RefundRequest) error {
	const q = `UPDATE refund_requests SET status = ?, rejection_reason = ?, provider_refund_id = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, rr.Status, rr.RejectionReason, rr.ProviderRefundID, rr.ID)
	return err
}

// ListByReservation returns all refund requests raised against a
// reservation, newest first.
func (r *RefundRepo) ListByReservation(ctx context.Context, reservationID uint64) ([]model.RefundRequest, error) {
	const q = `SELECT ` + refundColumns + ` FROM refund_requests WHERE reservation_id = ? ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.RefundRequest, 0)
	for rows.Next() {
		rr, err := scanRefund(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
