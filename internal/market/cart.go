package market

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type CartView struct {
	Lines []CartLineView  `json:"lines"`
	Total decimal.Decimal `json:"total"`
}

type CartLineView struct {
	LineID      string          `json:"line_id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// AddToCart merges on add: a second add of the same product increments the
// existing line instead of creating a duplicate. Stock is not checked here;
// checkout is where stock is validated.
func (e *Engine) AddToCart(ctx context.Context, buyerID, productID string, qty int) (*CartLine, error) {
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}

	var line *CartLine
	err := e.store.RunTx(ctx, func(tx Tx) error {
		if _, err := tx.ProductForUpdate(ctx, productID); err != nil {
			return err
		}
		existing, err := tx.CartLineForUpdate(ctx, buyerID, productID)
		if err != nil {
			return err
		}
		if existing == nil {
			line = &CartLine{
				ID:        uuid.NewString(),
				BuyerID:   buyerID,
				ProductID: productID,
				Quantity:  qty,
			}
			return tx.InsertCartLine(ctx, line)
		}
		existing.Quantity += qty
		line = existing
		return tx.SaveCartLine(ctx, existing)
	})
	if err != nil {
		return nil, err
	}

	e.log.Debug("cart line upserted",
		zap.String("buyer_id", buyerID),
		zap.String("product_id", productID),
		zap.Int("quantity", line.Quantity),
	)
	return line, nil
}

func (e *Engine) RemoveFromCart(ctx context.Context, buyerID, productID string) error {
	return e.store.RunTx(ctx, func(tx Tx) error {
		line, err := tx.CartLineForUpdate(ctx, buyerID, productID)
		if err != nil {
			return err
		}
		if line == nil {
			return &NotFoundError{Entity: "cart line", ID: productID}
		}
		return tx.DeleteCartLine(ctx, line.ID)
	})
}

// Cart returns the buyer's current lines priced against the catalog.
func (e *Engine) Cart(ctx context.Context, buyerID string) (*CartView, error) {
	lines, err := e.store.CartLines(ctx, buyerID)
	if err != nil {
		return nil, err
	}

	view := &CartView{Lines: make([]CartLineView, 0, len(lines)), Total: decimal.Zero}
	for _, l := range lines {
		p, err := e.store.Product(ctx, l.ProductID)
		if err != nil {
			return nil, err
		}
		lineTotal := LineCost(p.Price, l.Quantity)
		view.Lines = append(view.Lines, CartLineView{
			LineID:      l.ID,
			ProductID:   p.ID,
			ProductName: p.Name,
			UnitPrice:   p.Price,
			Quantity:    l.Quantity,
			LineTotal:   lineTotal,
		})
		view.Total = view.Total.Add(lineTotal)
	}
	return view, nil
}
