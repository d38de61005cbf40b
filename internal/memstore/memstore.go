// Package memstore is an in-memory market.Store used by tests and local
// runs. One mutex serializes transactions; RunTx works on a copy of the
// state and swaps it in only when the callback succeeds, so a failing
// checkout leaves nothing behind, same as a rolled-back database tx.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ariefcatur/go-market-ledger.git/internal/market"
)

type cartRec struct {
	line market.CartLine
	seq  int
}

type state struct {
	products map[string]market.Product
	accounts map[string]market.Account
	cart     map[string]cartRec // by line id
	orders   map[string]market.Order
	sales    map[string]market.SalesAggregate // by seller|product
	nextSeq  int
}

func salesKey(sellerID, productID string) string { return sellerID + "|" + productID }

func (st *state) clone() *state {
	cp := &state{
		products: make(map[string]market.Product, len(st.products)),
		accounts: make(map[string]market.Account, len(st.accounts)),
		cart:     make(map[string]cartRec, len(st.cart)),
		orders:   make(map[string]market.Order, len(st.orders)),
		sales:    make(map[string]market.SalesAggregate, len(st.sales)),
		nextSeq:  st.nextSeq,
	}
	for k, v := range st.products {
		cp.products[k] = v
	}
	for k, v := range st.accounts {
		cp.accounts[k] = v
	}
	for k, v := range st.cart {
		cp.cart[k] = v
	}
	for k, v := range st.orders {
		cp.orders[k] = v
	}
	for k, v := range st.sales {
		cp.sales[k] = v
	}
	return cp
}

type Store struct {
	mu sync.Mutex
	st *state
}

func New() *Store {
	return &Store{st: &state{
		products: make(map[string]market.Product),
		accounts: make(map[string]market.Account),
		cart:     make(map[string]cartRec),
		orders:   make(map[string]market.Order),
		sales:    make(map[string]market.SalesAggregate),
	}}
}

// SeedProduct and SeedAccount load fixtures outside any transaction.
func (s *Store) SeedProduct(p market.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.products[p.ID] = p
}

func (s *Store) SeedAccount(a market.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.accounts[a.ID] = a
}

// Account exposes balances for assertions and handlers.
func (s *Store) Account(ctx context.Context, accountID string) (*market.Account, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.st.accounts[accountID]
	if !ok {
		return nil, &market.NotFoundError{Entity: "account", ID: accountID}
	}
	return &a, nil
}

// Aggregate returns the sales row for (seller, product), nil when absent.
func (s *Store) Aggregate(sellerID, productID string) *market.SalesAggregate {
	s.mu.Lock()
	defer s.mu.Unlock()
	if agg, ok := s.st.sales[salesKey(sellerID, productID)]; ok {
		return &agg
	}
	return nil
}

func (s *Store) RunTx(ctx context.Context, fn func(tx market.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	if err := fn(&memTx{st: work}); err != nil {
		return err
	}
	s.st = work
	return nil
}

func (s *Store) Product(ctx context.Context, productID string) (*market.Product, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.st.products[productID]
	if !ok {
		return nil, &market.NotFoundError{Entity: "product", ID: productID}
	}
	return &p, nil
}

func (s *Store) SearchProducts(ctx context.Context, query string) ([]market.Product, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	q := strings.ToLower(query)
	var out []market.Product
	for _, p := range s.st.products {
		if q == "" ||
			strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Description), q) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) Order(ctx context.Context, orderID string) (*market.Order, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.st.orders[orderID]
	if !ok {
		return nil, &market.NotFoundError{Entity: "order", ID: orderID}
	}
	return &o, nil
}

func (s *Store) OrdersForSeller(ctx context.Context, sellerID string) ([]market.Order, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []market.Order
	for _, o := range s.st.orders {
		if p, ok := s.st.products[o.ProductID]; ok && p.SellerID == sellerID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) CartLines(ctx context.Context, buyerID string) ([]market.CartLine, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.cartLinesForBuyer(buyerID), nil
}

func (st *state) cartLinesForBuyer(buyerID string) []market.CartLine {
	var recs []cartRec
	for _, r := range st.cart {
		if r.line.BuyerID == buyerID {
			recs = append(recs, r)
		}
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].seq < recs[j].seq })
	out := make([]market.CartLine, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.line)
	}
	return out
}

func (s *Store) RollupDaily(ctx context.Context, day time.Time) ([]market.SalesRollup, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	y, m, d := day.UTC().Date()
	return s.st.rollup(func(agg market.SalesAggregate) bool {
		ay, am, ad := agg.SaleDate.UTC().Date()
		return ay == y && am == m && ad == d
	}, 0), nil
}

func (s *Store) RollupMonthly(ctx context.Context, month time.Month, year int) ([]market.SalesRollup, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.st.rollup(func(agg market.SalesAggregate) bool {
		t := agg.SaleDate.UTC()
		return t.Month() == month && t.Year() == year
	}, 0), nil
}

func (s *Store) RollupTrending(ctx context.Context, limit int) ([]market.SalesRollup, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.st.rollup(func(market.SalesAggregate) bool { return true }, limit), nil
}

func (st *state) rollup(keep func(market.SalesAggregate) bool, limit int) []market.SalesRollup {
	var out []market.SalesRollup
	for _, agg := range st.sales {
		if !keep(agg) {
			continue
		}
		name := ""
		if p, ok := st.products[agg.ProductID]; ok {
			name = p.Name
		}
		out = append(out, market.SalesRollup{
			SellerID:      agg.SellerID,
			ProductID:     agg.ProductID,
			ProductName:   name,
			TotalQuantity: agg.TotalQuantity,
			TotalSales:    agg.TotalSales,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalQuantity != out[j].TotalQuantity {
			return out[i].TotalQuantity > out[j].TotalQuantity
		}
		return out[i].ProductID < out[j].ProductID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (s *Store) SellerReport(ctx context.Context, sellerID string) (*market.SellerReport, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	report := &market.SellerReport{SellerID: sellerID, TotalSales: decimal.Zero}
	byProduct := map[string]int{}
	for _, o := range s.st.orders {
		if o.Status != market.StatusCompleted {
			continue
		}
		p, ok := s.st.products[o.ProductID]
		if !ok || p.SellerID != sellerID {
			continue
		}
		report.TotalSales = report.TotalSales.Add(market.LineCost(p.Price, o.Quantity))
		byProduct[p.ID] += o.Quantity
	}
	for pid, qty := range byProduct {
		report.Products = append(report.Products, market.ProductSales{
			ProductID:     pid,
			ProductName:   s.st.products[pid].Name,
			TotalQuantity: qty,
		})
	}
	sort.Slice(report.Products, func(i, j int) bool {
		if report.Products[i].TotalQuantity != report.Products[j].TotalQuantity {
			return report.Products[i].TotalQuantity > report.Products[j].TotalQuantity
		}
		return report.Products[i].ProductID < report.Products[j].ProductID
	})
	return report, nil
}
