package client

import (
	"cmp"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortNameAsc   = "name_asc"
)

// Filter narrows a product listing on the client, the way the storefront's
// collection page does. Zero values disable a criterion.
type Filter struct {
	Search   string
	MinPrice decimal.Decimal
	MaxPrice decimal.Decimal
	InStock  bool
	Sort     string
}

func (f Filter) Apply(products []Product) []Product {
	search := strings.ToLower(strings.TrimSpace(f.Search))

	res := make([]Product, 0, len(products))
	for _, p := range products {
		price := p.EffectivePrice()

		if search != "" && !strings.Contains(strings.ToLower(p.Title), search) {
			continue
		}
		if !f.MinPrice.IsZero() && price.LessThan(f.MinPrice) {
			continue
		}
		if !f.MaxPrice.IsZero() && price.GreaterThan(f.MaxPrice) {
			continue
		}
		if f.InStock && p.Stock <= 0 {
			continue
		}

		res = append(res, p)
	}

	switch f.Sort {
	case SortPriceAsc:
		slices.SortStableFunc(res, func(a, b Product) int {
			return a.EffectivePrice().Cmp(b.EffectivePrice())
		})
	case SortPriceDesc:
		slices.SortStableFunc(res, func(a, b Product) int {
			return b.EffectivePrice().Cmp(a.EffectivePrice())
		})
	case SortNameAsc:
		slices.SortStableFunc(res, func(a, b Product) int {
			return cmp.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		})
	default:
		slices.SortStableFunc(res, func(a, b Product) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		})
	}

	return res
}
