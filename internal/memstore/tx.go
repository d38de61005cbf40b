package memstore

import (
	"context"
	"time"

	"github.com/ariefcatur/go-market-ledger.git/internal/market"
)

// memTx mutates the working copy created by RunTx; the store mutex already
// serializes transactions, so no further locking happens here.
type memTx struct {
	st *state
}

func (t *memTx) ProductForUpdate(ctx context.Context, productID string) (*market.Product, error) {
	_ = ctx
	p, ok := t.st.products[productID]
	if !ok {
		return nil, &market.NotFoundError{Entity: "product", ID: productID}
	}
	return &p, nil
}

func (t *memTx) SaveProduct(ctx context.Context, p *market.Product) error {
	_ = ctx
	t.st.products[p.ID] = *p
	return nil
}

func (t *memTx) InsertProduct(ctx context.Context, p *market.Product) error {
	_ = ctx
	t.st.products[p.ID] = *p
	return nil
}

func (t *memTx) DeleteProduct(ctx context.Context, productID string) error {
	_ = ctx
	delete(t.st.products, productID)
	return nil
}

func (t *memTx) AccountForUpdate(ctx context.Context, accountID string) (*market.Account, error) {
	_ = ctx
	a, ok := t.st.accounts[accountID]
	if !ok {
		return nil, &market.NotFoundError{Entity: "account", ID: accountID}
	}
	return &a, nil
}

func (t *memTx) SaveAccount(ctx context.Context, a *market.Account) error {
	_ = ctx
	t.st.accounts[a.ID] = *a
	return nil
}

func (t *memTx) CartLinesForBuyer(ctx context.Context, buyerID string) ([]market.CartLine, error) {
	_ = ctx
	return t.st.cartLinesForBuyer(buyerID), nil
}

func (t *memTx) CartLineForUpdate(ctx context.Context, buyerID, productID string) (*market.CartLine, error) {
	_ = ctx
	for _, r := range t.st.cart {
		if r.line.BuyerID == buyerID && r.line.ProductID == productID {
			line := r.line
			return &line, nil
		}
	}
	return nil, nil
}

func (t *memTx) InsertCartLine(ctx context.Context, l *market.CartLine) error {
	_ = ctx
	t.st.nextSeq++
	t.st.cart[l.ID] = cartRec{line: *l, seq: t.st.nextSeq}
	return nil
}

func (t *memTx) SaveCartLine(ctx context.Context, l *market.CartLine) error {
	_ = ctx
	r, ok := t.st.cart[l.ID]
	if !ok {
		return &market.NotFoundError{Entity: "cart line", ID: l.ID}
	}
	r.line = *l
	t.st.cart[l.ID] = r
	return nil
}

func (t *memTx) DeleteCartLine(ctx context.Context, lineID string) error {
	_ = ctx
	delete(t.st.cart, lineID)
	return nil
}

func (t *memTx) OrderForUpdate(ctx context.Context, orderID string) (*market.Order, error) {
	_ = ctx
	o, ok := t.st.orders[orderID]
	if !ok {
		return nil, &market.NotFoundError{Entity: "order", ID: orderID}
	}
	return &o, nil
}

func (t *memTx) InsertOrder(ctx context.Context, o *market.Order) error {
	_ = ctx
	t.st.orders[o.ID] = *o
	return nil
}

func (t *memTx) SaveOrderStatus(ctx context.Context, orderID string, status market.Status, updatedAt time.Time) error {
	_ = ctx
	o, ok := t.st.orders[orderID]
	if !ok {
		return &market.NotFoundError{Entity: "order", ID: orderID}
	}
	o.Status = status
	o.UpdatedAt = updatedAt
	t.st.orders[orderID] = o
	return nil
}

func (t *memTx) DeleteOrder(ctx context.Context, orderID string) error {
	_ = ctx
	delete(t.st.orders, orderID)
	return nil
}

func (t *memTx) SalesForUpdate(ctx context.Context, sellerID, productID string) (*market.SalesAggregate, error) {
	_ = ctx
	agg, ok := t.st.sales[salesKey(sellerID, productID)]
	if !ok {
		return nil, nil
	}
	return &agg, nil
}

func (t *memTx) UpsertSales(ctx context.Context, s *market.SalesAggregate) error {
	_ = ctx
	t.st.sales[salesKey(s.SellerID, s.ProductID)] = *s
	return nil
}

func (t *memTx) DeleteSales(ctx context.Context, sellerID, productID string) error {
	_ = ctx
	delete(t.st.sales, salesKey(sellerID, productID))
	return nil
}
