package memstore_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-market-ledger.git/internal/market"
	"github.com/ariefcatur/go-market-ledger.git/internal/memstore"
)

func TestRunTxDiscardsOnError(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	st.SeedProduct(market.Product{ID: "p1", SellerID: "s1", Name: "Widget", Price: decimal.New(10, 0), QuantityAvailable: 5})

	boom := errors.New("boom")
	err := st.RunTx(ctx, func(tx market.Tx) error {
		p, err := tx.ProductForUpdate(ctx, "p1")
		require.NoError(t, err)
		p.QuantityAvailable = 0
		require.NoError(t, tx.SaveProduct(ctx, p))
		return boom
	})
	require.ErrorIs(t, err, boom)

	p, err := st.Product(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, 5, p.QuantityAvailable, "failed tx must leave no trace")
}

func TestRunTxCommitsOnSuccess(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	st.SeedAccount(market.Account{ID: "a1", Balance: decimal.New(100, 0)})

	err := st.RunTx(ctx, func(tx market.Tx) error {
		a, err := tx.AccountForUpdate(ctx, "a1")
		if err != nil {
			return err
		}
		a.Balance = a.Balance.Sub(decimal.New(40, 0))
		return tx.SaveAccount(ctx, a)
	})
	require.NoError(t, err)

	a, err := st.Account(ctx, "a1")
	require.NoError(t, err)
	require.True(t, a.Balance.Equal(decimal.New(60, 0)))
}

func TestSearchProducts(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	st.SeedProduct(market.Product{ID: "p1", Name: "Blue Mug", Description: "ceramic"})
	st.SeedProduct(market.Product{ID: "p2", Name: "Red Mug", Description: "steel"})
	st.SeedProduct(market.Product{ID: "p3", Name: "Lamp", Description: "desk light"})

	all, err := st.SearchProducts(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)

	mugs, err := st.SearchProducts(ctx, "mug")
	require.NoError(t, err)
	require.Len(t, mugs, 2)

	byDesc, err := st.SearchProducts(ctx, "desk")
	require.NoError(t, err)
	require.Len(t, byDesc, 1)
	require.Equal(t, "p3", byDesc[0].ID)

	none, err := st.SearchProducts(ctx, "bicycle")
	require.NoError(t, err)
	require.Empty(t, none)
}
