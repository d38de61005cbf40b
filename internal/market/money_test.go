package market_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-market-ledger.git/internal/market"
)

func TestLineCostIsExact(t *testing.T) {
	// 0.1 * 3 drifts under binary floats; it must not here
	require.True(t, market.LineCost(dec("0.10"), 3).Equal(dec("0.30")))
	require.True(t, market.LineCost(dec("19.99"), 7).Equal(dec("139.93")))
	require.True(t, market.LineCost(dec("10.00"), 0).Equal(decimal.Zero))
}

func TestCartCost(t *testing.T) {
	prices := map[string]decimal.Decimal{
		"a": dec("0.10"),
		"b": dec("2.95"),
	}
	lines := []market.CartLine{
		{ProductID: "a", Quantity: 3},
		{ProductID: "b", Quantity: 2},
	}
	total := market.CartCost(lines, func(id string) decimal.Decimal { return prices[id] })
	require.True(t, total.Equal(dec("6.20")), "total %s", total)

	require.True(t, market.CartCost(nil, func(string) decimal.Decimal { return decimal.Zero }).Equal(decimal.Zero))
}
