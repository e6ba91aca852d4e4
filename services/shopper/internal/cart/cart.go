// Package cart holds the shopper's basket. Quantities are checked against the
// stock captured when an item was added; the server still has the final say
// at checkout.
package cart

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrExceedsStock    = errors.New("quantity exceeds available stock")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

// StockLimitError is returned by Add when the merged quantity would pass the
// captured stock. It matches ErrExceedsStock.
type StockLimitError struct {
	Available int
}

func (e *StockLimitError) Error() string {
	return fmt.Sprintf("Only %d items available in stock.", e.Available)
}

func (e *StockLimitError) Is(target error) bool {
	return target == ErrExceedsStock
}

type Item struct {
	ProductID uuid.UUID       `json:"product_id"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
	Quantity  int             `json:"quantity"`
	Stock     int             `json:"stock"`
}

func (i Item) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Cart struct {
	Items []Item
}

func New(items ...Item) *Cart {
	return &Cart{Items: items}
}

func (c *Cart) index(id uuid.UUID) int {
	return slices.IndexFunc(c.Items, func(i Item) bool { return i.ProductID == id })
}

// Add merges qty units of item into the cart. item.Stock is the stock seen
// now and replaces whatever was captured before.
func (c *Cart) Add(item Item, qty int) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}

	idx := c.index(item.ProductID)
	if idx < 0 {
		if qty > item.Stock {
			return &StockLimitError{Available: item.Stock}
		}

		item.Quantity = qty
		c.Items = append(c.Items, item)
		return nil
	}

	merged := c.Items[idx].Quantity + qty
	if merged > item.Stock {
		return &StockLimitError{Available: item.Stock}
	}

	c.Items[idx].Quantity = merged
	c.Items[idx].Stock = item.Stock
	c.Items[idx].Price = item.Price
	c.Items[idx].Title = item.Title

	return nil
}

func (c *Cart) Remove(id uuid.UUID) {
	c.Items = slices.DeleteFunc(c.Items, func(i Item) bool { return i.ProductID == id })
}

// SetQuantity caps q at the captured stock. Values below 1 and unknown ids
// are ignored.
func (c *Cart) SetQuantity(id uuid.UUID, q int) {
	if q < 1 {
		return
	}

	if idx := c.index(id); idx >= 0 {
		c.Items[idx].Quantity = min(q, c.Items[idx].Stock)
	}
}

func (c *Cart) Clear() {
	c.Items = nil
}

func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
	}

	return total
}

func (c *Cart) Count() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}

	return n
}

func (c *Cart) Empty() bool {
	return len(c.Items) == 0
}
