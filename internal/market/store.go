package market

import (
	"context"
	"time"
)

// Store is the persistence boundary for the engine. RunTx must be atomic:
// either every write issued through the Tx is applied, or none is. The
// read-side methods run outside any transaction.
type Store interface {
	RunTx(ctx context.Context, fn func(tx Tx) error) error

	Product(ctx context.Context, productID string) (*Product, error)
	SearchProducts(ctx context.Context, query string) ([]Product, error)
	Order(ctx context.Context, orderID string) (*Order, error)
	OrdersForSeller(ctx context.Context, sellerID string) ([]Order, error)
	CartLines(ctx context.Context, buyerID string) ([]CartLine, error)

	RollupDaily(ctx context.Context, day time.Time) ([]SalesRollup, error)
	RollupMonthly(ctx context.Context, month time.Month, year int) ([]SalesRollup, error)
	RollupTrending(ctx context.Context, limit int) ([]SalesRollup, error)
	SellerReport(ctx context.Context, sellerID string) (*SellerReport, error)
}

// Tx exposes the row-level operations the engine composes into atomic units
// of work. ForUpdate reads take (or emulate) a row lock so concurrent
// reservations and debits serialize; they return *NotFoundError when the row
// does not exist. CartLineForUpdate and SalesForUpdate return (nil, nil)
// when no row exists, since absence is a normal case for both.
type Tx interface {
	ProductForUpdate(ctx context.Context, productID string) (*Product, error)
	SaveProduct(ctx context.Context, p *Product) error
	InsertProduct(ctx context.Context, p *Product) error
	DeleteProduct(ctx context.Context, productID string) error

	AccountForUpdate(ctx context.Context, accountID string) (*Account, error)
	SaveAccount(ctx context.Context, a *Account) error

	CartLinesForBuyer(ctx context.Context, buyerID string) ([]CartLine, error)
	CartLineForUpdate(ctx context.Context, buyerID, productID string) (*CartLine, error)
	InsertCartLine(ctx context.Context, l *CartLine) error
	SaveCartLine(ctx context.Context, l *CartLine) error
	DeleteCartLine(ctx context.Context, lineID string) error

	OrderForUpdate(ctx context.Context, orderID string) (*Order, error)
	InsertOrder(ctx context.Context, o *Order) error
	SaveOrderStatus(ctx context.Context, orderID string, status Status, updatedAt time.Time) error
	DeleteOrder(ctx context.Context, orderID string) error

	SalesForUpdate(ctx context.Context, sellerID, productID string) (*SalesAggregate, error)
	UpsertSales(ctx context.Context, s *SalesAggregate) error
	DeleteSales(ctx context.Context, sellerID, productID string) error
}
