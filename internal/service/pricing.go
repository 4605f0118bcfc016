package service

import (
	"context"
	"math"

	"github.com/cinemacore/booking/internal/apperr"
	"github.com/cinemacore/booking/internal/model"
)

// Pricing computes the price snapshot frozen onto each order.  The base
// price plus every active modifier, applied in storage order, yields
// the final amount; additive modifiers add cents, multiplicative ones
// scale the running total.
type Pricing struct {
	modifiers      ModifierStore
	basePriceCents int64
}

// NewPricing builds the pricing service with the configured base ticket
// price in cents.
func NewPricing(modifiers ModifierStore, basePriceCents int64) *Pricing {
	return &Pricing{modifiers: modifiers, basePriceCents: basePriceCents}
}

// Snapshot computes the current price and records which modifiers
// produced it.  The snapshot is immutable once attached to an order:
// later modifier changes never reprice existing orders.
func (p *Pricing) Snapshot(ctx context.Context) (*model.PricingSnapshot, error) {
	active, err := p.modifiers.ListActiveModifiers(ctx)
	if err != nil {
		return nil, apperr.Internal("could not load price modifiers", nil)
	}

	total := float64(p.basePriceCents)
	applied := make([]model.AppliedModifier, 0, len(active))
	for _, m := range active {
		switch m.ModifierType {
		case model.ModifierAdditive:
			total += m.Amount
		case model.ModifierMultiplicative:
			total *= m.Amount
		default:
			return nil, apperr.Internal("unknown modifier type", map[string]any{"modifier_id": m.ID, "modifier_type": m.ModifierType})
		}
		applied = append(applied, model.AppliedModifier{
			Name:         m.Name,
			ModifierType: m.ModifierType,
			Amount:       m.Amount,
		})
	}

	return &model.PricingSnapshot{
		BasePriceCents:   p.basePriceCents,
		ModifiersApplied: applied,
		FinalPriceCents:  int64(math.Round(total)),
	}, nil
}
