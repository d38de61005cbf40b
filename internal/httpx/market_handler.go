package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	kafkax "github.com/ariefcatur/go-market-ledger.git/internal/kafka"
	"github.com/ariefcatur/go-market-ledger.git/internal/market"
	"github.com/ariefcatur/go-market-ledger.git/internal/redisx"
)

// Publishers groups the per-topic producers for the lifecycle events.
// A nil producer is skipped, which keeps tests free of Kafka.
type Publishers struct {
	Placed    *kafkax.Producer
	Completed *kafkax.Producer
	Cancelled *kafkax.Producer
	Deleted   *kafkax.Producer
}

type MarketHandler struct {
	Engine  *market.Engine
	Redis   *redis.Client
	Pub     Publishers
	Service string
	Log     *zap.Logger
}

func (h *MarketHandler) Register(r *chi.Mux) {
	r.Post("/cart/items", h.addToCart)
	r.Get("/cart", h.getCart)
	r.Delete("/cart/items/{productID}", h.removeFromCart)

	r.Post("/checkout", h.checkout)
	r.Post("/buy", h.buyNow)

	r.Get("/orders", h.listOrders)
	r.Get("/orders/{id}", h.getOrder)
	r.Post("/orders/{id}/status", h.updateStatus)
	r.Delete("/orders/{id}", h.deleteOrder)

	r.Get("/products", h.searchProducts)
	r.Post("/products", h.createProduct)
	r.Put("/products/{id}", h.updateProduct)
	r.Delete("/products/{id}", h.deleteProduct)

	r.Get("/reports/daily", h.reportDaily)
	r.Get("/reports/monthly", h.reportMonthly)
	r.Get("/reports/trending", h.reportTrending)
	r.Get("/reports/seller", h.reportSeller)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps typed core failures to status codes with human-readable
// messages; anything unexpected stays a generic 500.
func writeError(w http.ResponseWriter, err error) {
	var (
		notFound   *market.NotFoundError
		stock      *market.InsufficientStockError
		transition *market.InvalidTransitionError
	)
	switch {
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, market.ErrInsufficientFunds),
		errors.As(err, &stock),
		errors.As(err, &transition):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, market.ErrInvalidQuantity),
		errors.Is(err, market.ErrEmptyCart),
		errors.Is(err, market.ErrInvalidProduct):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, market.ErrNotOwner):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

// principal comes from the upstream auth layer; the core trusts it but
// re-validates ownership where it matters.
func principal(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.Header.Get("X-User-ID")
	if id == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing identity"})
		return "", false
	}
	return id, true
}

func (h *MarketHandler) publish(p *kafkax.Producer, eventType, correlationID, traceID string, payload any) {
	if p == nil {
		return
	}
	ev := market.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       traceID,
		CorrelationID: correlationID,
		Payload:       kafkax.MustMarshal(payload),
	}
	p.Publish(market.PartitionKey(correlationID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

type addToCartReq struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (h *MarketHandler) addToCart(w http.ResponseWriter, r *http.Request) {
	buyerID, ok := principal(w, r)
	if !ok {
		return
	}
	var req addToCartReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	line, err := h.Engine.AddToCart(ctx, buyerID, req.ProductID, req.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, line)
}

func (h *MarketHandler) getCart(w http.ResponseWriter, r *http.Request) {
	buyerID, ok := principal(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	view, err := h.Engine.Cart(ctx, buyerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *MarketHandler) removeFromCart(w http.ResponseWriter, r *http.Request) {
	buyerID, ok := principal(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Engine.RemoveFromCart(ctx, buyerID, chi.URLParam(r, "productID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *MarketHandler) checkout(w http.ResponseWriter, r *http.Request) {
	buyerID, ok := principal(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// fast-path idempotency via Redis; DB tetap jadi sumber kebenaran
	idemKey := ""
	if k := r.Header.Get("Idempotency-Key"); k != "" && h.Redis != nil {
		idemKey = fmt.Sprintf(redisx.KeyIdemCheckout, k)
		if body, err := h.Redis.Get(ctx, idemKey).Result(); err == nil && body != "" {
			writeJSON(w, http.StatusOK, json.RawMessage(body))
			return
		}
	}

	result, err := h.Engine.Checkout(ctx, buyerID)
	if err != nil {
		writeError(w, err)
		return
	}

	if idemKey != "" {
		_ = h.Redis.Set(ctx, idemKey, kafkax.MustMarshal(result), redisx.TTLIdempotency).Err()
	}
	h.cachePending(ctx, result.OrderIDs)

	h.publish(h.Pub.Placed, market.EventOrderPlaced, result.OrderIDs[0], r.Header.Get("X-Request-Id"),
		market.OrderPlacedPayload{OrderIDs: result.OrderIDs, BuyerID: buyerID, Total: result.Total})

	writeJSON(w, http.StatusCreated, result)
}

type buyNowReq struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (h *MarketHandler) buyNow(w http.ResponseWriter, r *http.Request) {
	buyerID, ok := principal(w, r)
	if !ok {
		return
	}
	var req buyNowReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	result, err := h.Engine.BuyNow(ctx, buyerID, req.ProductID, req.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}
	h.cachePending(ctx, result.OrderIDs)

	h.publish(h.Pub.Placed, market.EventOrderPlaced, result.OrderIDs[0], r.Header.Get("X-Request-Id"),
		market.OrderPlacedPayload{OrderIDs: result.OrderIDs, BuyerID: buyerID, Total: result.Total})

	writeJSON(w, http.StatusCreated, result)
}

func (h *MarketHandler) cachePending(ctx context.Context, orderIDs []string) {
	if h.Redis == nil {
		return
	}
	for _, id := range orderIDs {
		key := fmt.Sprintf(redisx.KeyOrderStatus, id)
		_ = h.Redis.Set(ctx, key, `{"status":"pending"}`, redisx.TTLStatusCache).Err()
	}
}

func (h *MarketHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	if _, ok := principal(w, r); !ok {
		return
	}
	orderID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// coba cache dulu
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	if h.Redis != nil {
		if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
			writeJSON(w, http.StatusOK, json.RawMessage(s))
			return
		}
	}

	order, err := h.Engine.Order(ctx, orderID)
	if err != nil {
		writeError(w, err)
		return
	}
	if h.Redis != nil {
		body, _ := json.Marshal(map[string]any{"status": order.Status})
		_ = h.Redis.Set(ctx, key, body, redisx.TTLStatusCache).Err()
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *MarketHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := principal(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	out, err := h.Engine.OrdersForSeller(ctx, sellerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type updateStatusReq struct {
	Status market.Status `json:"status"`
}

func (h *MarketHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := principal(w, r)
	if !ok {
		return
	}
	var req updateStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Status == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	orderID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	result, err := h.Engine.Transition(ctx, sellerID, orderID, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}

	if h.Redis != nil {
		body, _ := json.Marshal(map[string]any{"status": result.Order.Status})
		_ = h.Redis.Set(ctx, fmt.Sprintf(redisx.KeyOrderStatus, orderID), body, redisx.TTLStatusCache).Err()
	}

	trace := r.Header.Get("X-Request-Id")
	switch req.Status {
	case market.StatusCompleted:
		h.publish(h.Pub.Completed, market.EventOrderCompleted, orderID, trace,
			market.OrderCompletedPayload{
				OrderID:   orderID,
				SellerID:  sellerID,
				ProductID: result.Order.ProductID,
				Quantity:  result.Order.Quantity,
				LineTotal: result.LineTotal,
			})
	case market.StatusCancelled:
		h.publish(h.Pub.Cancelled, market.EventOrderCancelled, orderID, trace,
			market.OrderCancelledPayload{
				OrderID:   orderID,
				BuyerID:   result.Order.BuyerID,
				ProductID: result.Order.ProductID,
				Quantity:  result.Order.Quantity,
				Refund:    result.Refund,
			})
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *MarketHandler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := principal(w, r)
	if !ok {
		return
	}
	orderID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	result, err := h.Engine.DeleteOrder(ctx, sellerID, orderID)
	if err != nil {
		writeError(w, err)
		return
	}
	if h.Redis != nil {
		_ = h.Redis.Del(ctx, fmt.Sprintf(redisx.KeyOrderStatus, orderID)).Err()
	}

	h.publish(h.Pub.Deleted, market.EventOrderDeleted, orderID, r.Header.Get("X-Request-Id"),
		market.OrderDeletedPayload{
			OrderID:   result.OrderID,
			BuyerID:   result.BuyerID,
			ProductID: result.ProductID,
			Quantity:  result.Quantity,
			Refund:    result.Refund,
		})

	writeJSON(w, http.StatusOK, result)
}
