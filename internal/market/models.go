package market

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID                string
	SellerID          string
	Name              string
	Description       string
	Price             decimal.Decimal // exact decimal, >= 0
	QuantityAvailable int             // >= 0, enforced by the engine
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type Account struct {
	ID      string
	Balance decimal.Decimal // >= 0, enforced by the engine
	Address string
}

// CartLine: at most one row per (buyer, product); adding the same product
// again increments Quantity instead of duplicating the line.
type CartLine struct {
	ID        string
	BuyerID   string
	ProductID string
	Quantity  int // > 0
}

// Order snapshots quantity and shipping address at creation time; only
// Status changes afterwards.
type Order struct {
	ID              string
	BuyerID         string
	ProductID       string
	Quantity        int
	ShippingAddress string
	Status          Status
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// SalesAggregate is a derived rollup keyed by (seller, product). The row
// exists only while TotalQuantity > 0; SaleDate tracks the last completed
// sale that touched it.
type SalesAggregate struct {
	SellerID      string
	ProductID     string
	TotalQuantity int
	TotalSales    decimal.Decimal
	SaleDate      time.Time
}

// SalesRollup is a read-side row for the reporting queries.
type SalesRollup struct {
	SellerID      string          `json:"seller_id"`
	ProductID     string          `json:"product_id"`
	ProductName   string          `json:"product_name"`
	TotalQuantity int             `json:"total_quantity"`
	TotalSales    decimal.Decimal `json:"total_sales"`
}

// SellerReport sums revenue over a seller's completed orders plus a
// per-product quantity breakdown, best sellers first.
type SellerReport struct {
	SellerID   string          `json:"seller_id"`
	TotalSales decimal.Decimal `json:"total_sales"`
	Products   []ProductSales  `json:"products"`
}

type ProductSales struct {
	ProductID     string `json:"product_id"`
	ProductName   string `json:"product_name"`
	TotalQuantity int    `json:"total_quantity"`
}
