package httpx_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-market-ledger.git/internal/httpx"
	"github.com/ariefcatur/go-market-ledger.git/internal/market"
	"github.com/ariefcatur/go-market-ledger.git/internal/memstore"
)

func newTestServer(t *testing.T) (*httptest.Server, *memstore.Store) {
	t.Helper()
	st := memstore.New()
	eng := market.NewEngine(st, zap.NewNop())
	router := httpx.NewRouter()
	h := &httpx.MarketHandler{Engine: eng, Service: "test-api", Log: zap.NewNop()}
	h.Register(router)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, st
}

func doReq(t *testing.T, method, url, userID string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func seed(st *memstore.Store) {
	st.SeedAccount(market.Account{ID: "buyer-1", Balance: decimal.RequireFromString("100.00"), Address: "Jl. Merdeka 1"})
	st.SeedProduct(market.Product{
		ID: "p1", SellerID: "seller-1", Name: "Widget",
		Price: decimal.RequireFromString("10.00"), QuantityAvailable: 5,
	})
}

func TestMissingIdentity(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := doReq(t, http.MethodGet, srv.URL+"/cart", "", nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCartAndCheckoutFlow(t *testing.T) {
	srv, st := newTestServer(t)
	seed(st)

	resp := doReq(t, http.MethodPost, srv.URL+"/cart/items", "buyer-1",
		map[string]any{"product_id": "p1", "quantity": 3})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	cart := decodeBody[market.CartView](t, doReq(t, http.MethodGet, srv.URL+"/cart", "buyer-1", nil))
	require.Len(t, cart.Lines, 1)
	require.True(t, cart.Total.Equal(decimal.RequireFromString("30.00")))

	resp = doReq(t, http.MethodPost, srv.URL+"/checkout", "buyer-1", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	result := decodeBody[market.CheckoutResult](t, resp)
	require.Len(t, result.OrderIDs, 1)

	order := decodeBody[market.Order](t,
		doReq(t, http.MethodGet, srv.URL+"/orders/"+result.OrderIDs[0], "buyer-1", nil))
	require.Equal(t, market.StatusPending, order.Status)
}

func TestCheckoutFailureMapping(t *testing.T) {
	srv, st := newTestServer(t)
	seed(st)

	// empty cart -> 400
	resp := doReq(t, http.MethodPost, srv.URL+"/checkout", "buyer-1", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// over stock -> 409
	resp = doReq(t, http.MethodPost, srv.URL+"/cart/items", "buyer-1",
		map[string]any{"product_id": "p1", "quantity": 50})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	resp = doReq(t, http.MethodPost, srv.URL+"/checkout", "buyer-1", nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// unknown product -> 404
	resp = doReq(t, http.MethodPost, srv.URL+"/cart/items", "buyer-1",
		map[string]any{"product_id": "ghost", "quantity": 1})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestStatusTransitionEndpoint(t *testing.T) {
	srv, st := newTestServer(t)
	seed(st)

	resp := doReq(t, http.MethodPost, srv.URL+"/buy", "buyer-1",
		map[string]any{"product_id": "p1", "quantity": 2})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	result := decodeBody[market.CheckoutResult](t, resp)
	orderID := result.OrderIDs[0]

	// seller lain tidak boleh
	resp = doReq(t, http.MethodPost, fmt.Sprintf("%s/orders/%s/status", srv.URL, orderID), "intruder",
		map[string]any{"status": "completed"})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = doReq(t, http.MethodPost, fmt.Sprintf("%s/orders/%s/status", srv.URL, orderID), "seller-1",
		map[string]any{"status": "completed"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	tr := decodeBody[market.TransitionResult](t, resp)
	require.Equal(t, market.StatusCompleted, tr.Order.Status)

	// completed -> completed ditolak
	resp = doReq(t, http.MethodPost, fmt.Sprintf("%s/orders/%s/status", srv.URL, orderID), "seller-1",
		map[string]any{"status": "completed"})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestSellerDeleteEndpoint(t *testing.T) {
	srv, st := newTestServer(t)
	seed(st)

	resp := doReq(t, http.MethodPost, srv.URL+"/buy", "buyer-1",
		map[string]any{"product_id": "p1", "quantity": 2})
	result := decodeBody[market.CheckoutResult](t, resp)
	orderID := result.OrderIDs[0]

	resp = doReq(t, http.MethodDelete, srv.URL+"/orders/"+orderID, "seller-1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	del := decodeBody[market.DeletionResult](t, resp)
	require.True(t, del.Refund.Equal(decimal.RequireFromString("20.00")))

	ctx := context.Background()
	acc, err := st.Account(ctx, "buyer-1")
	require.NoError(t, err)
	require.True(t, acc.Balance.Equal(decimal.RequireFromString("100.00")))

	resp = doReq(t, http.MethodGet, srv.URL+"/orders/"+orderID, "seller-1", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestProductEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doReq(t, http.MethodPost, srv.URL+"/products", "seller-1", map[string]any{
		"name": "Lamp", "description": "desk light", "price": "25.50", "quantity": 3,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody[market.Product](t, resp)
	require.Equal(t, "seller-1", created.SellerID)

	// invalid payload
	resp = doReq(t, http.MethodPost, srv.URL+"/products", "seller-1", map[string]any{
		"name": "  ", "price": "1.00", "quantity": 1,
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	products := decodeBody[[]market.Product](t, doReq(t, http.MethodGet, srv.URL+"/products?q=lamp", "", nil))
	require.Len(t, products, 1)

	resp = doReq(t, http.MethodDelete, srv.URL+"/products/"+created.ID, "someone-else", nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = doReq(t, http.MethodDelete, srv.URL+"/products/"+created.ID, "seller-1", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()
}

func TestTrendingReportEndpoint(t *testing.T) {
	srv, st := newTestServer(t)
	seed(st)

	resp := doReq(t, http.MethodPost, srv.URL+"/buy", "buyer-1",
		map[string]any{"product_id": "p1", "quantity": 2})
	result := decodeBody[market.CheckoutResult](t, resp)

	resp = doReq(t, http.MethodPost, fmt.Sprintf("%s/orders/%s/status", srv.URL, result.OrderIDs[0]), "seller-1",
		map[string]any{"status": "completed"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	trending := decodeBody[[]market.SalesRollup](t,
		doReq(t, http.MethodGet, srv.URL+"/reports/trending", "", nil))
	require.Len(t, trending, 1)
	require.Equal(t, "p1", trending[0].ProductID)
	require.Equal(t, 2, trending[0].TotalQuantity)
}
