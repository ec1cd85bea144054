package orders

import (
	"encoding/json"
	"time"
)

const (
	EventOrderCreated   = "OrderCreated"
	EventOrderCancelled = "OrderCancelled"
	EventOrderPaid      = "OrderPaid"
	EventOrderDelivered = "OrderDelivered"
	EventStockChanged   = "StockChanged"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order_id
	Payload       json.RawMessage `json:"payload"`
}

type ItemQty struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
}

type OrderCreatedPayload struct {
	OrderID    string    `json:"order_id"`
	UserID     string    `json:"user_id"`
	Items      []ItemQty `json:"items"`
	TotalPrice float64   `json:"total_price"`
}

type OrderCancelledPayload struct {
	OrderID  string    `json:"order_id"`
	Restored []ItemQty `json:"restored"`
	Missing  []string  `json:"missing,omitempty"` // products gone at restore time
}

type OrderPaidPayload struct {
	OrderID       string  `json:"order_id"`
	PointsAwarded float64 `json:"points_awarded"`
}

type OrderDeliveredPayload struct {
	OrderID string `json:"order_id"`
}

type StockChangedPayload struct {
	ProductID    string `json:"product_id"`
	CountInStock int    `json:"count_in_stock"`
}
