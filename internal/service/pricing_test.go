package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinemacore/booking/internal/model"
)

func TestSnapshotWithNoModifiersIsBasePrice(t *testing.T) {
	mods := &fakeModifierStore{}
	pricing := NewPricing(mods, 1000)

	snap, err := pricing.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1000), snap.BasePriceCents)
	assert.Equal(t, int64(1000), snap.FinalPriceCents)
	assert.Empty(t, snap.ModifiersApplied)
}

func TestSnapshotAppliesModifiersInOrder(t *testing.T) {
	mods := &fakeModifierStore{}
	mods.set(
		model.PriceModifier{ID: 1, Name: "weekend surcharge", ModifierType: model.ModifierAdditive, Amount: 200, IsActive: true},
		model.PriceModifier{ID: 2, Name: "member discount", ModifierType: model.ModifierMultiplicative, Amount: 0.9, IsActive: true},
		model.PriceModifier{ID: 3, Name: "inactive", ModifierType: model.ModifierAdditive, Amount: 9999, IsActive: false},
	)
	pricing := NewPricing(mods, 1000)

	snap, err := pricing.Snapshot(context.Background())
	require.NoError(t, err)
	// (1000 + 200) * 0.9 = 1080; order matters, 1000*0.9+200 would be 1100.
	assert.Equal(t, int64(1080), snap.FinalPriceCents)
	require.Len(t, snap.ModifiersApplied, 2)
	assert.Equal(t, "weekend surcharge", snap.ModifiersApplied[0].Name)
	assert.Equal(t, "member discount", snap.ModifiersApplied[1].Name)
}

func TestSnapshotRoundsFractionalCents(t *testing.T) {
	mods := &fakeModifierStore{}
	mods.set(
		model.PriceModifier{ID: 1, Name: "odd multiplier", ModifierType: model.ModifierMultiplicative, Amount: 1.111, IsActive: true},
	)
	pricing := NewPricing(mods, 999)

	snap, err := pricing.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1110), snap.FinalPriceCents) // 999 * 1.111 = 1109.889
}
