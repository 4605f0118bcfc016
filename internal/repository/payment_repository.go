package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/cinemacore/booking/internal/model"
)

// PaymentRepo provides data access to the payment_attempts table.
type PaymentRepo struct {
	db *sql.DB
}

// NewPaymentRepo returns a new PaymentRepo bound to the given database.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

const paymentColumns = `id, order_id, amount_attempted_cents, final_amount_cents, status, failure_reason, provider_payment_id, created_at`

func scanPayment(row interface{ Scan(...any) error }) (*model.PaymentAttempt, error) {
	var p model.PaymentAttempt
	var reason, providerID sql.NullString
	if err := row.Scan(&p.ID, &p.OrderID, &p.AmountAttemptedCents, &p.FinalAmountCents, &p.Status, &reason, &providerID, &p.CreatedAt); err != nil {
		return nil, err
	}
	if reason.Valid {
		s := reason.String
		p.FailureReason = &s
	}
	if providerID.Valid {
		s := providerID.String
		p.ProviderPaymentID = &s
	}
	return &p, nil
}

// Create inserts a new pending payment attempt and populates its
// generated ID and timestamps.
func (r *PaymentRepo) Create(ctx context.Context, p *model.PaymentAttempt) error {
	const q = `INSERT INTO payment_attempts (order_id, amount_attempted_cents, final_amount_cents, status) VALUES (?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, q, p.OrderID, p.AmountAttemptedCents, p.FinalAmountCents, p.Status)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	const sel = `SELECT ` + paymentColumns + ` FROM payment_attempts WHERE id = ?`
	stored, err := scanPayment(r.db.QueryRowContext(ctx, sel, p.ID))
	if err != nil {
		return err
	}
	*p = *stored
	return nil
}

// GetByID returns a payment attempt or ErrNotFound.
func (r *PaymentRepo) GetByID(ctx context.Context, id uint64) (*model.PaymentAttempt, error) {
	const q = `SELECT ` + paymentColumns + ` FROM payment_attempts WHERE id = ?`
	p, err := scanPayment(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

// Update persists the status, failure reason and provider reference of a
// payment attempt.
func (r *PaymentRepo) Update(ctx context.Context, p *model.PaymentAttempt) error {
	const q = `UPDATE payment_attempts SET status = ?, failure_reason = ?, provider_payment_id = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, p.Status, p.FailureReason, p.ProviderPaymentID, p.ID)
	return err
}
