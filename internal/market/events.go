package market

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventOrderPlaced    = "OrderPlaced"
	EventOrderCompleted = "OrderCompleted"
	EventOrderCancelled = "OrderCancelled"
	EventOrderDeleted   = "OrderDeleted"
)

// Envelope is the wire shape shared by every lifecycle event. Events are
// notifications published after commit; the ledger never depends on them.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

type OrderPlacedPayload struct {
	OrderIDs []string        `json:"order_ids"`
	BuyerID  string          `json:"buyer_id"`
	Total    decimal.Decimal `json:"total"`
}

type OrderCompletedPayload struct {
	OrderID   string          `json:"order_id"`
	SellerID  string          `json:"seller_id"`
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type OrderCancelledPayload struct {
	OrderID   string          `json:"order_id"`
	BuyerID   string          `json:"buyer_id"`
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Refund    decimal.Decimal `json:"refund"`
}

type OrderDeletedPayload struct {
	OrderID   string          `json:"order_id"`
	BuyerID   string          `json:"buyer_id"`
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Refund    decimal.Decimal `json:"refund"`
}
