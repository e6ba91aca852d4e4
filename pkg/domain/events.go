// Package domain holds the event contracts shared between the storefront
// and its consumers.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventOrderPlaced        = "OrderPlaced"
	EventOrderStatusChanged = "OrderStatusChanged"
	EventStockAdjusted      = "StockAdjusted"
)

// EventEnvelope is what travels on the wire: the event name next to its payload.
type EventEnvelope[T any] struct {
	Event   string `json:"event"`
	EventID int64  `json:"event_id,omitempty"`
	Payload T      `json:"payload"`
}

type OrderLine struct {
	ProductID string          `json:"product_id"`
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type OrderPlacedEvent struct {
	OrderID         string          `json:"order_id"`
	CustomerName    string          `json:"customer_name"`
	CustomerEmail   string          `json:"customer_email"`
	ShippingAddress string          `json:"shipping_address"`
	TotalPrice      decimal.Decimal `json:"total_price"`
	Items           []OrderLine     `json:"items"`
	PlacedAt        time.Time       `json:"placed_at"`
}

type OrderStatusChangedEvent struct {
	OrderID       string    `json:"order_id"`
	CustomerName  string    `json:"customer_name"`
	CustomerEmail string    `json:"customer_email"`
	From          string    `json:"from"`
	To            string    `json:"to"`
	ChangedAt     time.Time `json:"changed_at"`
}

type StockAdjustedEvent struct {
	ProductID  string    `json:"product_id"`
	Adjustment int       `json:"adjustment"`
	Stock      int       `json:"stock"`
	AdjustedAt time.Time `json:"adjusted_at"`
}
