package market_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-market-ledger.git/internal/market"
)

func TestAddToCartMergesLines(t *testing.T) {
	ctx := context.Background()
	eng, st := newTestEngine(t)
	seedBuyer(st, "100.00")
	seedProduct(st, "p1", "10.00", 5)

	first, err := eng.AddToCart(ctx, buyerID, "p1", 2)
	require.NoError(t, err)
	require.Equal(t, 2, first.Quantity)

	second, err := eng.AddToCart(ctx, buyerID, "p1", 3)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID, "same line incremented, not duplicated")
	require.Equal(t, 5, second.Quantity)

	cart, err := eng.Cart(ctx, buyerID)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	require.Equal(t, 5, cart.Lines[0].Quantity)
}

func TestAddToCartValidation(t *testing.T) {
	ctx := context.Background()
	eng, st := newTestEngine(t)
	seedBuyer(st, "100.00")
	seedProduct(st, "p1", "10.00", 5)

	_, err := eng.AddToCart(ctx, buyerID, "p1", 0)
	require.ErrorIs(t, err, market.ErrInvalidQuantity)

	_, err = eng.AddToCart(ctx, buyerID, "p1", -2)
	require.ErrorIs(t, err, market.ErrInvalidQuantity)

	_, err = eng.AddToCart(ctx, buyerID, "missing", 1)
	var nf *market.NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestCartIsNotBoundedByStock(t *testing.T) {
	// stock is validated at checkout, not on add
	ctx := context.Background()
	eng, st := newTestEngine(t)
	seedBuyer(st, "100.00")
	seedProduct(st, "p1", "10.00", 2)

	_, err := eng.AddToCart(ctx, buyerID, "p1", 50)
	require.NoError(t, err)

	_, err = eng.Checkout(ctx, buyerID)
	var stock *market.InsufficientStockError
	require.ErrorAs(t, err, &stock)
}

func TestRemoveFromCart(t *testing.T) {
	ctx := context.Background()
	eng, st := newTestEngine(t)
	seedBuyer(st, "100.00")
	seedProduct(st, "p1", "10.00", 5)

	_, err := eng.AddToCart(ctx, buyerID, "p1", 2)
	require.NoError(t, err)

	require.NoError(t, eng.RemoveFromCart(ctx, buyerID, "p1"))

	cart, err := eng.Cart(ctx, buyerID)
	require.NoError(t, err)
	require.Empty(t, cart.Lines)

	err = eng.RemoveFromCart(ctx, buyerID, "p1")
	var nf *market.NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestCartTotalsAreExact(t *testing.T) {
	ctx := context.Background()
	eng, st := newTestEngine(t)
	seedBuyer(st, "100.00")
	seedProduct(st, "p1", "0.10", 100)
	seedProduct(st, "p2", "19.99", 100)

	_, err := eng.AddToCart(ctx, buyerID, "p1", 3)
	require.NoError(t, err)
	_, err = eng.AddToCart(ctx, buyerID, "p2", 2)
	require.NoError(t, err)

	cart, err := eng.Cart(ctx, buyerID)
	require.NoError(t, err)
	require.True(t, cart.Total.Equal(dec("40.28")), "total %s", cart.Total)
}
