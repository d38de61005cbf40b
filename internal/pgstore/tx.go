package pgstore

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/ariefcatur/go-market-ledger.git/internal/market"
)

type pgTx struct{ tx pgx.Tx }

func (t *pgTx) ProductForUpdate(ctx context.Context, productID string) (*market.Product, error) {
	p, err := scanProduct(t.tx.QueryRow(ctx,
		`SELECT `+productCols+` FROM products WHERE id=$1 FOR UPDATE`, productID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &market.NotFoundError{Entity: "product", ID: productID}
	}
	return p, err
}

func (t *pgTx) SaveProduct(ctx context.Context, p *market.Product) error {
	_, err := t.tx.Exec(ctx, `
		UPDATE products
		SET name=$2, description=$3, price=$4::numeric, quantity_available=$5, updated_at=$6
		WHERE id=$1`,
		p.ID, p.Name, p.Description, p.Price.String(), p.QuantityAvailable, p.UpdatedAt)
	return err
}

func (t *pgTx) InsertProduct(ctx context.Context, p *market.Product) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO products(id, seller_id, name, description, price, quantity_available, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5::numeric,$6,$7,$8)`,
		p.ID, p.SellerID, p.Name, p.Description, p.Price.String(), p.QuantityAvailable, p.CreatedAt, p.UpdatedAt)
	return err
}

func (t *pgTx) DeleteProduct(ctx context.Context, productID string) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM products WHERE id=$1`, productID)
	return err
}

func (t *pgTx) AccountForUpdate(ctx context.Context, accountID string) (*market.Account, error) {
	var a market.Account
	var balance string
	err := t.tx.QueryRow(ctx,
		`SELECT id, balance::text, address FROM accounts WHERE id=$1 FOR UPDATE`, accountID).
		Scan(&a.ID, &balance, &a.Address)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &market.NotFoundError{Entity: "account", ID: accountID}
	}
	if err != nil {
		return nil, err
	}
	if a.Balance, err = decimal.NewFromString(balance); err != nil {
		return nil, err
	}
	return &a, nil
}

func (t *pgTx) SaveAccount(ctx context.Context, a *market.Account) error {
	_, err := t.tx.Exec(ctx,
		`UPDATE accounts SET balance=$2::numeric, address=$3 WHERE id=$1`,
		a.ID, a.Balance.String(), a.Address)
	return err
}

func (t *pgTx) CartLinesForBuyer(ctx context.Context, buyerID string) ([]market.CartLine, error) {
	// lock lines supaya checkout paralel utk buyer yang sama serial
	rows, err := t.tx.Query(ctx, `
		SELECT id, buyer_id, product_id, quantity FROM cart_lines
		WHERE buyer_id=$1 ORDER BY created_at FOR UPDATE`, buyerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []market.CartLine
	for rows.Next() {
		var l market.CartLine
		if err := rows.Scan(&l.ID, &l.BuyerID, &l.ProductID, &l.Quantity); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (t *pgTx) CartLineForUpdate(ctx context.Context, buyerID, productID string) (*market.CartLine, error) {
	var l market.CartLine
	err := t.tx.QueryRow(ctx, `
		SELECT id, buyer_id, product_id, quantity FROM cart_lines
		WHERE buyer_id=$1 AND product_id=$2 FOR UPDATE`, buyerID, productID).
		Scan(&l.ID, &l.BuyerID, &l.ProductID, &l.Quantity)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (t *pgTx) InsertCartLine(ctx context.Context, l *market.CartLine) error {
	// unique(buyer_id, product_id) menjaga satu line per pasangan
	_, err := t.tx.Exec(ctx, `
		INSERT INTO cart_lines(id, buyer_id, product_id, quantity, created_at)
		VALUES ($1,$2,$3,$4,now())`,
		l.ID, l.BuyerID, l.ProductID, l.Quantity)
	return err
}

func (t *pgTx) SaveCartLine(ctx context.Context, l *market.CartLine) error {
	_, err := t.tx.Exec(ctx, `UPDATE cart_lines SET quantity=$2 WHERE id=$1`, l.ID, l.Quantity)
	return err
}

func (t *pgTx) DeleteCartLine(ctx context.Context, lineID string) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM cart_lines WHERE id=$1`, lineID)
	return err
}

func (t *pgTx) OrderForUpdate(ctx context.Context, orderID string) (*market.Order, error) {
	o, err := scanOrder(t.tx.QueryRow(ctx,
		`SELECT `+orderCols+` FROM orders WHERE id=$1 FOR UPDATE`, orderID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &market.NotFoundError{Entity: "order", ID: orderID}
	}
	return o, err
}

func (t *pgTx) InsertOrder(ctx context.Context, o *market.Order) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO orders(id, buyer_id, product_id, quantity, shipping_address, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		o.ID, o.BuyerID, o.ProductID, o.Quantity, o.ShippingAddress, o.Status, o.CreatedAt, o.UpdatedAt)
	return err
}

func (t *pgTx) SaveOrderStatus(ctx context.Context, orderID string, status market.Status, updatedAt time.Time) error {
	ct, err := t.tx.Exec(ctx,
		`UPDATE orders SET status=$2, updated_at=$3 WHERE id=$1`, orderID, status, updatedAt)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return &market.NotFoundError{Entity: "order", ID: orderID}
	}
	return nil
}

func (t *pgTx) DeleteOrder(ctx context.Context, orderID string) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM orders WHERE id=$1`, orderID)
	return err
}

func (t *pgTx) SalesForUpdate(ctx context.Context, sellerID, productID string) (*market.SalesAggregate, error) {
	var agg market.SalesAggregate
	var total string
	err := t.tx.QueryRow(ctx, `
		SELECT seller_id, product_id, total_quantity, total_sales::text, sale_date
		FROM sales WHERE seller_id=$1 AND product_id=$2 FOR UPDATE`, sellerID, productID).
		Scan(&agg.SellerID, &agg.ProductID, &agg.TotalQuantity, &total, &agg.SaleDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if agg.TotalSales, err = decimal.NewFromString(total); err != nil {
		return nil, err
	}
	return &agg, nil
}

func (t *pgTx) UpsertSales(ctx context.Context, s *market.SalesAggregate) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO sales(seller_id, product_id, total_quantity, total_sales, sale_date)
		VALUES ($1,$2,$3,$4::numeric,$5)
		ON CONFLICT (seller_id, product_id)
		DO UPDATE SET total_quantity=EXCLUDED.total_quantity,
		              total_sales=EXCLUDED.total_sales,
		              sale_date=EXCLUDED.sale_date`,
		s.SellerID, s.ProductID, s.TotalQuantity, s.TotalSales.String(), s.SaleDate)
	return err
}

func (t *pgTx) DeleteSales(ctx context.Context, sellerID, productID string) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM sales WHERE seller_id=$1 AND product_id=$2`, sellerID, productID)
	return err
}
