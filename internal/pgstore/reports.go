package pgstore

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/ariefcatur/go-market-ledger.git/internal/market"
)

const rollupCols = `
	s.seller_id, s.product_id, COALESCE(p.name, ''), s.total_quantity, s.total_sales::text
	FROM sales s LEFT JOIN products p ON p.id = s.product_id`

func scanRollups(rows pgx.Rows) ([]market.SalesRollup, error) {
	defer rows.Close()
	var out []market.SalesRollup
	for rows.Next() {
		var r market.SalesRollup
		var total string
		if err := rows.Scan(&r.SellerID, &r.ProductID, &r.ProductName, &r.TotalQuantity, &total); err != nil {
			return nil, err
		}
		var err error
		if r.TotalSales, err = decimal.NewFromString(total); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) RollupDaily(ctx context.Context, day time.Time) ([]market.SalesRollup, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT `+rollupCols+`
		WHERE s.sale_date::date = $1::date
		ORDER BY s.total_quantity DESC, s.product_id`, day.UTC())
	if err != nil {
		return nil, err
	}
	return scanRollups(rows)
}

func (s *Store) RollupMonthly(ctx context.Context, month time.Month, year int) ([]market.SalesRollup, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT `+rollupCols+`
		WHERE EXTRACT(MONTH FROM s.sale_date) = $1 AND EXTRACT(YEAR FROM s.sale_date) = $2
		ORDER BY s.total_quantity DESC, s.product_id`, int(month), year)
	if err != nil {
		return nil, err
	}
	return scanRollups(rows)
}

func (s *Store) RollupTrending(ctx context.Context, limit int) ([]market.SalesRollup, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT `+rollupCols+`
		ORDER BY s.total_quantity DESC, s.product_id
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	return scanRollups(rows)
}

func (s *Store) SellerReport(ctx context.Context, sellerID string) (*market.SellerReport, error) {
	// revenue dihitung dari order completed x harga produk sekarang, tetap decimal
	rows, err := s.DB.Query(ctx, `
		SELECT o.product_id, p.name, SUM(o.quantity)::int, SUM(o.quantity * p.price)::text
		FROM orders o JOIN products p ON p.id = o.product_id
		WHERE p.seller_id = $1 AND o.status = 'completed'
		GROUP BY o.product_id, p.name
		ORDER BY SUM(o.quantity) DESC, o.product_id`, sellerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	report := &market.SellerReport{SellerID: sellerID, TotalSales: decimal.Zero}
	for rows.Next() {
		var ps market.ProductSales
		var revenue string
		if err := rows.Scan(&ps.ProductID, &ps.ProductName, &ps.TotalQuantity, &revenue); err != nil {
			return nil, err
		}
		d, err := decimal.NewFromString(revenue)
		if err != nil {
			return nil, err
		}
		report.TotalSales = report.TotalSales.Add(d)
		report.Products = append(report.Products, ps)
	}
	return report, rows.Err()
}
