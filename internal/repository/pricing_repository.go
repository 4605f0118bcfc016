package repository

import (
	"context"
	"database/sql"

	"github.com/cinemacore/booking/internal/model"
)

// PricingRepo provides read access to the price_modifiers configuration
// table consumed by the pricing calculation.
type PricingRepo struct {
	db *sql.DB
}

// NewPricingRepo returns a new PricingRepo bound to the given database.
func NewPricingRepo(db *sql.DB) *PricingRepo { return &PricingRepo{db: db} }

// ListActiveModifiers returns all active price modifiers in insertion
// order.  Order matters: additive and multiplicative modifiers are
// applied in sequence.
func (r *PricingRepo) ListActiveModifiers(ctx context.Context) ([]model.PriceModifier, error) {
	const q = `SELECT id, name, modifier_type, amount, is_active FROM price_modifiers WHERE is_active = 1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var mods []model.PriceModifier
	for rows.Next() {
		var m model.PriceModifier
		if err := rows.Scan(&m.ID, &m.Name, &m.ModifierType, &m.Amount, &m.IsActive); err != nil {
			return nil, err
		}
		mods = append(mods, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return mods, nil
}
