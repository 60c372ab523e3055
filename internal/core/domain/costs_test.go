package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCostRules(t *testing.T) {
	assert.Equal(t, []CostKind{CostRent, CostCondominium, CostIPTU}, AvailableCostKinds(ModeRent))
	assert.Equal(t, []CostKind{CostCondominium, CostIPTU, CostSellPrice}, AvailableCostKinds(ModeSell))
	assert.Equal(t, []CostKind{CostRent, CostCondominium, CostIPTU, CostSellPrice}, AvailableCostKinds(ModeBoth))

	assert.Equal(t, []CostKind{CostRent}, RequiredCostKinds(ModeRent))
	assert.Equal(t, []CostKind{CostSellPrice}, RequiredCostKinds(ModeSell))
	assert.Equal(t, []CostKind{CostRent, CostSellPrice}, RequiredCostKinds(ModeBoth))
	assert.Empty(t, RequiredCostKinds(""))

	for _, m := range []Mode{ModeRent, ModeSell, ModeBoth} {
		assert.False(t, CostCondominium.IsRequired(m))
		assert.False(t, CostIPTU.IsRequired(m))
		assert.True(t, CostIPTU.IsAvailable(m))
	}
	assert.False(t, CostSellPrice.IsAvailable(ModeRent))
}

func TestModeFlagsRoundTrip(t *testing.T) {
	cases := []struct {
		rent, sell bool
		mode       Mode
	}{
		{true, true, ModeBoth},
		{true, false, ModeRent},
		{false, true, ModeSell},
		{false, false, ""},
	}
	for _, c := range cases {
		m := ModeFromFlags(c.rent, c.sell)
		assert.Equal(t, c.mode, m)
		rent, sell := m.Flags()
		assert.Equal(t, c.rent, rent)
		assert.Equal(t, c.sell, sell)
	}

	_, ok := ParseMode("aluguel")
	assert.True(t, ok)
	_, ok = ParseMode("rent")
	assert.False(t, ok)
}

func TestCostsForMode(t *testing.T) {
	c := Costs{CostRent: 1, CostSellPrice: 2, CostCondominium: 3}
	assert.Equal(t, Costs{CostSellPrice: 2, CostCondominium: 3}, c.ForMode(ModeSell))
	assert.Equal(t, Costs{}, Costs(nil).ForMode(ModeRent))
}
