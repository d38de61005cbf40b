package market

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Engine owns every ledger mutation: stock reservation/release, balance
// debit/credit, order lifecycle, and the sales aggregate. Callers pass an
// explicit principal (buyer or seller id); authentication itself happens
// upstream, but ownership is re-checked here as a business invariant.
type Engine struct {
	store Store
	log   *zap.Logger
}

func NewEngine(store Store, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{store: store, log: log}
}

type PurchaseLine struct {
	ProductID string
	Quantity  int
}

type CheckoutResult struct {
	OrderIDs []string        `json:"order_ids"`
	Total    decimal.Decimal `json:"total"`
}

// Checkout purchases every line in the buyer's cart as one atomic unit:
// one order per line, stock reserved, cart emptied, balance debited by the
// grand total. Validation happens for all lines before any mutation, so a
// failing line leaves stock, balance, and cart untouched.
func (e *Engine) Checkout(ctx context.Context, buyerID string) (*CheckoutResult, error) {
	return e.purchase(ctx, buyerID, nil, true)
}

// BuyNow purchases a single product directly, bypassing the cart. Same
// validation and ledger path as Checkout.
func (e *Engine) BuyNow(ctx context.Context, buyerID, productID string, qty int) (*CheckoutResult, error) {
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}
	return e.purchase(ctx, buyerID, []PurchaseLine{{ProductID: productID, Quantity: qty}}, false)
}

func (e *Engine) purchase(ctx context.Context, buyerID string, lines []PurchaseLine, fromCart bool) (*CheckoutResult, error) {
	var result CheckoutResult

	err := e.store.RunTx(ctx, func(tx Tx) error {
		// lock buyer dulu: debit terhadap account yang sama harus serial
		account, err := tx.AccountForUpdate(ctx, buyerID)
		if err != nil {
			return err
		}

		var cartLines []CartLine
		if fromCart {
			cartLines, err = tx.CartLinesForBuyer(ctx, buyerID)
			if err != nil {
				return err
			}
			lines = lines[:0]
			for _, cl := range cartLines {
				lines = append(lines, PurchaseLine{ProductID: cl.ProductID, Quantity: cl.Quantity})
			}
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		// lock semua produk & hitung total dari harga katalog
		products := make([]*Product, len(lines))
		total := decimal.Zero
		for i, l := range lines {
			p, err := tx.ProductForUpdate(ctx, l.ProductID)
			if err != nil {
				return err
			}
			products[i] = p
			total = total.Add(LineCost(p.Price, l.Quantity))
		}

		if account.Balance.LessThan(total) {
			return ErrInsufficientFunds
		}

		// validasi stok untuk SEMUA line sebelum mutasi apa pun
		for i, l := range lines {
			if l.Quantity > products[i].QuantityAvailable {
				return &InsufficientStockError{
					ProductID:   products[i].ID,
					ProductName: products[i].Name,
					Requested:   l.Quantity,
					Available:   products[i].QuantityAvailable,
				}
			}
		}

		now := time.Now().UTC()
		orderIDs := make([]string, 0, len(lines))
		for i, l := range lines {
			p := products[i]
			p.QuantityAvailable -= l.Quantity
			p.UpdatedAt = now
			if err := tx.SaveProduct(ctx, p); err != nil {
				return err
			}

			o := &Order{
				ID:              uuid.NewString(),
				BuyerID:         buyerID,
				ProductID:       p.ID,
				Quantity:        l.Quantity,
				ShippingAddress: account.Address,
				Status:          StatusPending,
				CreatedAt:       now,
				UpdatedAt:       now,
			}
			if err := tx.InsertOrder(ctx, o); err != nil {
				return err
			}
			orderIDs = append(orderIDs, o.ID)

			if fromCart {
				if err := tx.DeleteCartLine(ctx, cartLines[i].ID); err != nil {
					return err
				}
			}
		}

		account.Balance = account.Balance.Sub(total)
		if err := tx.SaveAccount(ctx, account); err != nil {
			return err
		}

		result = CheckoutResult{OrderIDs: orderIDs, Total: total}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("purchase committed",
		zap.String("buyer_id", buyerID),
		zap.Int("orders", len(result.OrderIDs)),
		zap.String("total", result.Total.String()),
	)
	return &result, nil
}

type TransitionResult struct {
	Order *Order `json:"order"`
	// AggregateMissing flags the non-fatal case where a cancellation found
	// no sales aggregate row to decrement (the order was never completed).
	AggregateMissing bool `json:"aggregate_missing,omitempty"`
	// Refund is set on cancellation, LineTotal on completion; both use the
	// current product price.
	Refund    decimal.Decimal `json:"refund"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// Transition moves an order to a new status and applies the compensating
// ledger effects atomically. The seller must own the order's product.
//
// cancelled (from pending or completed): release stock, credit the buyer at
// the current product price, and decrement the sales aggregate, deleting the
// row when it reaches zero. A missing row is a warning, not an abort.
//
// completed (from pending): upsert the sales aggregate for (seller, product).
//
// A status outside the lifecycle set is persisted as-is with no ledger
// effects. Re-cancelling a cancelled order is rejected.
func (e *Engine) Transition(ctx context.Context, sellerID, orderID string, to Status) (*TransitionResult, error) {
	var result TransitionResult

	err := e.store.RunTx(ctx, func(tx Tx) error {
		order, err := tx.OrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		product, err := tx.ProductForUpdate(ctx, order.ProductID)
		if err != nil {
			return err
		}
		if product.SellerID != sellerID {
			return ErrNotOwner
		}

		now := time.Now().UTC()
		result = TransitionResult{Order: order, Refund: decimal.Zero, LineTotal: decimal.Zero}

		if !Known(to) {
			// status di luar lifecycle: simpan apa adanya, ledger tidak disentuh
			order.Status = to
			order.UpdatedAt = now
			return tx.SaveOrderStatus(ctx, order.ID, to, now)
		}
		if !CanTransition(order.Status, to) {
			return &InvalidTransitionError{From: order.Status, To: to}
		}

		switch to {
		case StatusCancelled:
			product.QuantityAvailable += order.Quantity
			product.UpdatedAt = now
			if err := tx.SaveProduct(ctx, product); err != nil {
				return err
			}

			// refund pakai harga produk SAAT INI, bukan snapshot order
			refund := LineCost(product.Price, order.Quantity)
			buyer, err := tx.AccountForUpdate(ctx, order.BuyerID)
			if err != nil {
				return err
			}
			buyer.Balance = buyer.Balance.Add(refund)
			if err := tx.SaveAccount(ctx, buyer); err != nil {
				return err
			}
			result.Refund = refund

			sales, err := tx.SalesForUpdate(ctx, product.SellerID, product.ID)
			if err != nil {
				return err
			}
			if sales == nil {
				result.AggregateMissing = true
			} else {
				sales.TotalQuantity -= order.Quantity
				sales.TotalSales = sales.TotalSales.Sub(refund)
				if sales.TotalQuantity <= 0 {
					if err := tx.DeleteSales(ctx, sales.SellerID, sales.ProductID); err != nil {
						return err
					}
				} else if err := tx.UpsertSales(ctx, sales); err != nil {
					return err
				}
			}

		case StatusCompleted:
			lineTotal := LineCost(product.Price, order.Quantity)
			result.LineTotal = lineTotal
			sales, err := tx.SalesForUpdate(ctx, product.SellerID, product.ID)
			if err != nil {
				return err
			}
			if sales == nil {
				sales = &SalesAggregate{
					SellerID:   product.SellerID,
					ProductID:  product.ID,
					TotalSales: decimal.Zero,
				}
			}
			sales.TotalQuantity += order.Quantity
			sales.TotalSales = sales.TotalSales.Add(lineTotal)
			sales.SaleDate = now
			if err := tx.UpsertSales(ctx, sales); err != nil {
				return err
			}
		}

		order.Status = to
		order.UpdatedAt = now
		return tx.SaveOrderStatus(ctx, order.ID, to, now)
	})
	if err != nil {
		return nil, err
	}

	if result.AggregateMissing {
		e.log.Warn("ledger already consistent, nothing to decrement",
			zap.Error(ErrAggregateMissing),
			zap.String("order_id", orderID),
			zap.String("seller_id", sellerID),
		)
	}
	return &result, nil
}

type DeletionResult struct {
	OrderID   string          `json:"order_id"`
	BuyerID   string          `json:"buyer_id"`
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Refund    decimal.Decimal `json:"refund"`
}

// DeleteOrder is the seller-initiated removal path: restock, refund the
// buyer at the current product price, drop the order row. It never touches
// the sales aggregate; deletion assumes the order was never completed.
func (e *Engine) DeleteOrder(ctx context.Context, sellerID, orderID string) (*DeletionResult, error) {
	var result DeletionResult

	err := e.store.RunTx(ctx, func(tx Tx) error {
		order, err := tx.OrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		product, err := tx.ProductForUpdate(ctx, order.ProductID)
		if err != nil {
			return err
		}
		if product.SellerID != sellerID {
			return ErrNotOwner
		}

		now := time.Now().UTC()
		product.QuantityAvailable += order.Quantity
		product.UpdatedAt = now
		if err := tx.SaveProduct(ctx, product); err != nil {
			return err
		}

		refund := LineCost(product.Price, order.Quantity)
		buyer, err := tx.AccountForUpdate(ctx, order.BuyerID)
		if err != nil {
			return err
		}
		buyer.Balance = buyer.Balance.Add(refund)
		if err := tx.SaveAccount(ctx, buyer); err != nil {
			return err
		}

		if err := tx.DeleteOrder(ctx, order.ID); err != nil {
			return err
		}

		result = DeletionResult{
			OrderID:   order.ID,
			BuyerID:   order.BuyerID,
			ProductID: product.ID,
			Quantity:  order.Quantity,
			Refund:    refund,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("order deleted by seller",
		zap.String("order_id", orderID),
		zap.String("seller_id", sellerID),
		zap.String("refund", result.Refund.String()),
	)
	return &result, nil
}

// Order is a read-only fetch for the presentation layer.
func (e *Engine) Order(ctx context.Context, orderID string) (*Order, error) {
	return e.store.Order(ctx, orderID)
}

// OrdersForSeller lists orders placed against the seller's products.
func (e *Engine) OrdersForSeller(ctx context.Context, sellerID string) ([]Order, error) {
	return e.store.OrdersForSeller(ctx, sellerID)
}
