package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NewProductWindow is how long after creation a product carries the "new" badge.
const NewProductWindow = 30 * 24 * time.Hour

// MaxStock is the largest stock the products.stock column can hold.
const MaxStock = 2147483647

type Product struct {
	ID               uuid.UUID        `json:"id" db:"id"`
	Title            string           `json:"title" db:"title"`
	Description      string           `json:"description" db:"description"`
	Price            decimal.Decimal  `json:"price" db:"price"`
	DiscountPrice    *decimal.Decimal `json:"discount_price" db:"discount_price"`
	Stock            int              `json:"stock" db:"stock"`
	Images           []string         `json:"images" db:"images"`
	IsFeatured       bool             `json:"is_featured" db:"is_featured"`
	ForceNew         bool             `json:"force_new" db:"force_new"`
	Material         string           `json:"material" db:"material"`
	CareInstructions string           `json:"care_instructions" db:"care_instructions"`
	Origin           string           `json:"origin" db:"origin"`
	Manufacturer     string           `json:"manufacturer" db:"manufacturer"`
	Weight           string           `json:"weight" db:"weight"`
	CategoryIDs      []uuid.UUID      `json:"category_ids" db:"-"`
	IsNew            bool             `json:"is_new" db:"-"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsNewAt reports whether the product counts as new at now. A product created
// exactly NewProductWindow ago is no longer new.
func (p *Product) IsNewAt(now time.Time) bool {
	return p.ForceNew || p.CreatedAt.After(now.Add(-NewProductWindow))
}

// EffectivePrice is what a customer pays per unit.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.DiscountPrice != nil && p.DiscountPrice.IsPositive() {
		return *p.DiscountPrice
	}

	return p.Price
}

// ProductInput is the full set of admin-editable fields. PUT replaces every
// field, category links included.
type ProductInput struct {
	Title            string
	Description      string
	Price            decimal.Decimal
	DiscountPrice    *decimal.Decimal
	Stock            int
	Images           []string
	IsFeatured       bool
	ForceNew         bool
	Material         string
	CareInstructions string
	Origin           string
	Manufacturer     string
	Weight           string
	CategoryIDs      []uuid.UUID
}

// StockLine is the locked view of a product taken while placing an order.
type StockLine struct {
	ID            uuid.UUID
	Title         string
	Price         decimal.Decimal
	DiscountPrice *decimal.Decimal
	Stock         int
}

func (l StockLine) EffectivePrice() decimal.Decimal {
	p := Product{Price: l.Price, DiscountPrice: l.DiscountPrice}
	return p.EffectivePrice()
}
