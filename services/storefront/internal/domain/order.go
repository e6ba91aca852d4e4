package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// ActiveOrderStatuses are the statuses that still need the ordered products
// to exist.
var ActiveOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
}

var fulfilmentStage = map[OrderStatus]int{
	OrderStatusPending:    0,
	OrderStatusProcessing: 1,
	OrderStatusShipped:    2,
	OrderStatusDelivered:  3,
}

func (s OrderStatus) Valid() bool {
	_, ok := fulfilmentStage[s]
	return ok || s == OrderStatusCancelled
}

func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

func (s OrderStatus) Active() bool {
	return s.Valid() && !s.Terminal()
}

// CanTransitionTo allows moving forward through fulfilment or cancelling an
// order that has not finished. Terminal statuses never change.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if !next.Valid() {
		return false
	}
	if s == next {
		return true
	}
	if s.Terminal() {
		return false
	}
	if next == OrderStatusCancelled {
		return true
	}

	return fulfilmentStage[next] > fulfilmentStage[s]
}

type Order struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	CustomerName    string          `json:"customer_name" db:"customer_name"`
	CustomerEmail   string          `json:"customer_email" db:"customer_email"`
	CustomerPhone   string          `json:"customer_phone" db:"customer_phone"`
	ShippingAddress string          `json:"shipping_address" db:"shipping_address"`
	TotalPrice      decimal.Decimal `json:"total_price" db:"total_price"`
	Status          OrderStatus     `json:"status" db:"status"`
	AdminNotes      string          `json:"admin_notes" db:"admin_notes"`
	Items           []OrderItem     `json:"order_items" db:"-"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type OrderItem struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	OrderID         uuid.UUID       `json:"order_id" db:"order_id"`
	ProductID       *uuid.UUID      `json:"product_id" db:"product_id"`
	Quantity        int             `json:"quantity" db:"quantity"`
	PriceAtPurchase decimal.Decimal `json:"price_at_purchase" db:"price_at_purchase"`
	ProductTitle    string          `json:"product_title" db:"product_title"`
}

func (i OrderItem) Subtotal() decimal.Decimal {
	return i.PriceAtPurchase.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (o *Order) CalculateTotal() {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal())
	}

	o.TotalPrice = total
}

type PlaceOrderInput struct {
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	ShippingAddress string
	TotalPrice      decimal.Decimal
	Items           []PlaceOrderItem
}

// PlaceOrderItem carries what the client saw. Only ProductID and Quantity are
// trusted; price and title are re-read from the catalog.
type PlaceOrderItem struct {
	ProductID uuid.UUID
	Quantity  int
	Price     decimal.Decimal
	Title     string
}

// RequestedQuantities sums quantities per product so repeated lines for the
// same product are checked against stock together.
func (in PlaceOrderInput) RequestedQuantities() map[uuid.UUID]int {
	res := make(map[uuid.UUID]int, len(in.Items))
	for _, item := range in.Items {
		res[item.ProductID] += item.Quantity
	}

	return res
}

type UpdateOrderInput struct {
	Status     *OrderStatus
	AdminNotes *string
}
