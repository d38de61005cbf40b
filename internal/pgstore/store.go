// Package pgstore backs market.Store with Postgres via pgx. Row locks
// (SELECT ... FOR UPDATE) serialize concurrent reservations and debits;
// every unit of work commits or rolls back as a whole.
package pgstore

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/ariefcatur/go-market-ledger.git/internal/market"
)

type Store struct{ DB *pgxpool.Pool }

func New(db *pgxpool.Pool) *Store { return &Store{DB: db} }

func (s *Store) RunTx(ctx context.Context, fn func(tx market.Tx) error) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&pgTx{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

const productCols = `id, seller_id, name, description, price::text, quantity_available, created_at, updated_at`

func scanProduct(row pgx.Row) (*market.Product, error) {
	var p market.Product
	var price string
	if err := row.Scan(&p.ID, &p.SellerID, &p.Name, &p.Description, &price, &p.QuantityAvailable, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	var err error
	if p.Price, err = decimal.NewFromString(price); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) Product(ctx context.Context, productID string) (*market.Product, error) {
	p, err := scanProduct(s.DB.QueryRow(ctx, `SELECT `+productCols+` FROM products WHERE id=$1`, productID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &market.NotFoundError{Entity: "product", ID: productID}
	}
	return p, err
}

func (s *Store) SearchProducts(ctx context.Context, query string) ([]market.Product, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT `+productCols+` FROM products
		WHERE $1 = '' OR name ILIKE '%'||$1||'%' OR description ILIKE '%'||$1||'%'
		ORDER BY name`, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []market.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

const orderCols = `id, buyer_id, product_id, quantity, shipping_address, status, created_at, updated_at`

func scanOrder(row pgx.Row) (*market.Order, error) {
	var o market.Order
	if err := row.Scan(&o.ID, &o.BuyerID, &o.ProductID, &o.Quantity, &o.ShippingAddress, &o.Status, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *Store) Order(ctx context.Context, orderID string) (*market.Order, error) {
	o, err := scanOrder(s.DB.QueryRow(ctx, `SELECT `+orderCols+` FROM orders WHERE id=$1`, orderID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &market.NotFoundError{Entity: "order", ID: orderID}
	}
	return o, err
}

func (s *Store) OrdersForSeller(ctx context.Context, sellerID string) ([]market.Order, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT o.id, o.buyer_id, o.product_id, o.quantity, o.shipping_address, o.status, o.created_at, o.updated_at
		FROM orders o JOIN products p ON p.id = o.product_id
		WHERE p.seller_id = $1
		ORDER BY o.created_at`, sellerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []market.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func (s *Store) CartLines(ctx context.Context, buyerID string) ([]market.CartLine, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT id, buyer_id, product_id, quantity FROM cart_lines
		WHERE buyer_id = $1 ORDER BY created_at`, buyerID)
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
