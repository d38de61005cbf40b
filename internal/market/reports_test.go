package market_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-market-ledger.git/internal/market"
)

func TestRollupsFollowCompletedOrders(t *testing.T) {
	ctx := context.Background()
	eng, st := newTestEngine(t)
	seedBuyer(st, "1000.00")
	seedProduct(st, "p1", "10.00", 50)
	seedProduct(st, "p2", "5.00", 50)

	buy := func(productID string, qty int) string {
		res, err := eng.BuyNow(ctx, buyerID, productID, qty)
		require.NoError(t, err)
		return res.OrderIDs[0]
	}
	complete := func(orderID string) {
		_, err := eng.Transition(ctx, sellerID, orderID, market.StatusCompleted)
		require.NoError(t, err)
	}

	complete(buy("p1", 3))
	complete(buy("p1", 1))
	complete(buy("p2", 7))
	buy("p2", 2) // left pending, must not show up

	trending, err := eng.RollupTrending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, trending, 2)
	require.Equal(t, "p2", trending[0].ProductID, "trending sorts by quantity")
	require.Equal(t, 7, trending[0].TotalQuantity)
	require.True(t, trending[0].TotalSales.Equal(dec("35.00")))
	require.Equal(t, "p1", trending[1].ProductID)
	require.Equal(t, 4, trending[1].TotalQuantity)
	require.True(t, trending[1].TotalSales.Equal(dec("40.00")))

	t.Run("limit", func(t *testing.T) {
		top, err := eng.RollupTrending(ctx, 1)
		require.NoError(t, err)
		require.Len(t, top, 1)
		require.Equal(t, "p2", top[0].ProductID)
	})

	t.Run("daily includes today only", func(t *testing.T) {
		today, err := eng.RollupDaily(ctx, time.Now().UTC())
		require.NoError(t, err)
		require.Len(t, today, 2)

		yesterday, err := eng.RollupDaily(ctx, time.Now().UTC().AddDate(0, 0, -1))
		require.NoError(t, err)
		require.Empty(t, yesterday)
	})

	t.Run("monthly includes current month only", func(t *testing.T) {
		now := time.Now().UTC()
		thisMonth, err := eng.RollupMonthly(ctx, now.Month(), now.Year())
		require.NoError(t, err)
		require.Len(t, thisMonth, 2)

		lastYear, err := eng.RollupMonthly(ctx, now.Month(), now.Year()-1)
		require.NoError(t, err)
		require.Empty(t, lastYear)
	})
}

func TestSellerReport(t *testing.T) {
	ctx := context.Background()
	eng, st := newTestEngine(t)
	seedBuyer(st, "1000.00")
	seedProduct(st, "p1", "10.00", 50)
	seedProduct(st, "p2", "5.00", 50)
	st.SeedProduct(market.Product{
		ID: "other", SellerID: "seller-2", Name: "Other", Price: dec("3.00"), QuantityAvailable: 50,
	})

	orders := make(map[string]string)
	for pid, qty := range map[string]int{"p1": 4, "p2": 6, "other": 2} {
		res, err := eng.BuyNow(ctx, buyerID, pid, qty)
		require.NoError(t, err)
		orders[pid] = res.OrderIDs[0]
	}
	for pid, id := range orders {
		owner := sellerID
		if pid == "other" {
			owner = "seller-2"
		}
		_, err := eng.Transition(ctx, owner, id, market.StatusCompleted)
		require.NoError(t, err)
	}

	report, err := eng.SellerReport(ctx, sellerID)
	require.NoError(t, err)
	require.True(t, report.TotalSales.Equal(dec("70.00")), "total %s", report.TotalSales)
	require.Len(t, report.Products, 2)
	require.Equal(t, "p2", report.Products[0].ProductID, "best seller first")
	require.Equal(t, 6, report.Products[0].TotalQuantity)
	require.Equal(t, "p1", report.Products[1].ProductID)
	require.Equal(t, 4, report.Products[1].TotalQuantity)
}
