package discount

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tillpoint/internal/core/types"
	"tillpoint/internal/domain/catalog"
)

func TestEffective_NoRuleUsesFixedPercentage(t *testing.T) {
	r, err := NewResolver()
	require.NoError(t, err)

	pct := r.Effective(context.Background(), catalog.Settings{
		DiscountPercentage: types.MustMoney("10"),
	}, types.MustMoney("100"), 2)

	assert.True(t, pct.Equal(types.MustMoney("10")))
}

func TestEffective_RuleOverridesPercentage(t *testing.T) {
	r, err := NewResolver()
	require.NoError(t, err)

	settings := catalog.Settings{
		DiscountPercentage: types.MustMoney("5"),
		DiscountRule:       `subtotal >= 100.0 ? 15.0 : base`,
	}

	big := r.Effective(context.Background(), settings, types.MustMoney("250"), 3)
	assert.True(t, big.Equal(types.MustMoney("15")), "got %s", big)

	small := r.Effective(context.Background(), settings, types.MustMoney("40"), 1)
	assert.True(t, small.Equal(types.MustMoney("5")), "got %s", small)
}

func TestEffective_RuleSeesLineCount(t *testing.T) {
	r, err := NewResolver()
	require.NoError(t, err)

	settings := catalog.Settings{
		DiscountPercentage: types.MustMoney("0"),
		DiscountRule:       `lines > 5 ? 20.0 : 0.0`,
	}

	pct := r.Effective(context.Background(), settings, types.MustMoney("10"), 6)
	assert.True(t, pct.Equal(types.MustMoney("20")))
}

func TestEffective_BadRuleFallsBack(t *testing.T) {
	r, err := NewResolver()
	require.NoError(t, err)

	for _, rule := range []string{
		`subtotal >>> nonsense`,
		`"not a number"`,
	} {
		pct := r.Effective(context.Background(), catalog.Settings{
			DiscountPercentage: types.MustMoney("7"),
			DiscountRule:       rule,
		}, types.MustMoney("100"), 1)

		assert.True(t, pct.Equal(types.MustMoney("7")), "rule %q should fall back", rule)
	}
}
