package model

// ModifierType selects how a price modifier is applied.
type ModifierType string

const (
	ModifierAdditive       ModifierType = "additive"
	ModifierMultiplicative ModifierType = "multiplicative"
)

// PriceModifier is a configuration row consumed by the pricing
// calculation.  Additive modifiers add Amount cents to the running
// price; multiplicative modifiers scale it by Amount.
type PriceModifier struct {
	ID           uint64       `json:"id"`
	Name         string       `json:"name"`
	ModifierType ModifierType `json:"modifier_type"`
	Amount       float64      `json:"amount"`
	IsActive     bool         `json:"is_active"`
}
