package market

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Quantity    int
}

// CreateProduct lists a new product under the seller.
func (e *Engine) CreateProduct(ctx context.Context, sellerID string, in ProductInput) (*Product, error) {
	if strings.TrimSpace(in.Name) == "" || in.Price.IsNegative() || in.Quantity < 0 {
		return nil, ErrInvalidProduct
	}

	now := time.Now().UTC()
	p := &Product{
		ID:                uuid.NewString(),
		SellerID:          sellerID,
		Name:              strings.TrimSpace(in.Name),
		Description:       in.Description,
		Price:             in.Price,
		QuantityAvailable: in.Quantity,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	err := e.store.RunTx(ctx, func(tx Tx) error {
		return tx.InsertProduct(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateProduct rewrites the listing; only the owning seller may do so.
func (e *Engine) UpdateProduct(ctx context.Context, sellerID, productID string, in ProductInput) (*Product, error) {
	if strings.TrimSpace(in.Name) == "" || in.Price.IsNegative() || in.Quantity < 0 {
		return nil, ErrInvalidProduct
	}

	var updated *Product
	err := e.store.RunTx(ctx, func(tx Tx) error {
		p, err := tx.ProductForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		if p.SellerID != sellerID {
			return ErrNotOwner
		}
		p.Name = strings.TrimSpace(in.Name)
		p.Description = in.Description
		p.Price = in.Price
		p.QuantityAvailable = in.Quantity
		p.UpdatedAt = time.Now().UTC()
		updated = p
		return tx.SaveProduct(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteProduct removes the listing unconditionally (ownership checked).
func (e *Engine) DeleteProduct(ctx context.Context, sellerID, productID string) error {
	return e.store.RunTx(ctx, func(tx Tx) error {
		p, err := tx.ProductForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		if p.SellerID != sellerID {
			return ErrNotOwner
		}
		return tx.DeleteProduct(ctx, productID)
	})
}

func (e *Engine) Product(ctx context.Context, productID string) (*Product, error) {
	return e.store.Product(ctx, productID)
}

// SearchProducts is the public listing; empty query returns everything.
func (e *Engine) SearchProducts(ctx context.Context, query string) ([]Product, error) {
	return e.store.SearchProducts(ctx, strings.TrimSpace(query))
}
