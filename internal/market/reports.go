package market

import (
	"context"
	"time"
)

// Reporting queries are read-only aggregation over the sales rollup and
// completed orders; they never mutate ledger state.

func (e *Engine) RollupDaily(ctx context.Context, day time.Time) ([]SalesRollup, error) {
	return e.store.RollupDaily(ctx, day)
}

func (e *Engine) RollupMonthly(ctx context.Context, month time.Month, year int) ([]SalesRollup, error) {
	return e.store.RollupMonthly(ctx, month, year)
}

func (e *Engine) RollupTrending(ctx context.Context, limit int) ([]SalesRollup, error) {
	if limit <= 0 {
		limit = 10
	}
	return e.store.RollupTrending(ctx, limit)
}

func (e *Engine) SellerReport(ctx context.Context, sellerID string) (*SellerReport, error) {
	return e.store.SellerReport(ctx, sellerID)
}
