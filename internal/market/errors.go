package market

import (
	"errors"
	"fmt"
)

var (
	ErrInsufficientFunds = errors.New("market: insufficient balance")
	ErrInvalidQuantity   = errors.New("market: quantity must be greater than zero")
	ErrEmptyCart         = errors.New("market: nothing to purchase")
	ErrInvalidProduct    = errors.New("market: product needs a name, a non-negative price and quantity")
	ErrNotOwner          = errors.New("market: product does not belong to seller")

	// ErrAggregateMissing is surfaced as a warning, never as a transaction
	// abort: the stock/balance ledger is already consistent without the
	// aggregate row.
	ErrAggregateMissing = errors.New("market: no sales aggregate for order")
)

type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("market: insufficient stock for %s: requested %d, available %d",
		e.ProductName, e.Requested, e.Available)
}

type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("market: %s not found: %s", e.Entity, e.ID)
}

type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("market: invalid status transition %s -> %s", e.From, e.To)
}
