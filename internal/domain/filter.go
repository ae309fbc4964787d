package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Filter is the predicate set applied to the catalog. Nil fields are inactive;
// active fields are combined with AND.
type Filter struct {
	Type     *string
	Size     *string
	MaxPrice *decimal.Decimal
}

func (f Filter) IsEmpty() bool {
	return f.Type == nil && f.Size == nil && f.MaxPrice == nil
}

func (f Filter) Matches(p Product) bool {
	if f.Type != nil && p.Type != *f.Type {
		return false
	}
	if f.Size != nil && p.Size != *f.Size {
		return false
	}
	if f.MaxPrice != nil && p.Price.Amount.GreaterThan(*f.MaxPrice) {
		return false
	}

	return true
}

// Apply returns the matching products ordered newest first.
func (f Filter) Apply(products []Product) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if f.Matches(p) {
			out = append(out, p)
		}
	}
	SortNewestFirst(out)

	return out
}

func (f Filter) String() string {
	var parts []string
	if f.Type != nil {
		parts = append(parts, "type="+*f.Type)
	}
	if f.Size != nil {
		parts = append(parts, "size="+*f.Size)
	}
	if f.MaxPrice != nil {
		parts = append(parts, fmt.Sprintf("price<=%s", f.MaxPrice.String()))
	}
	if len(parts) == 0 {
		return "all"
	}

	return strings.Join(parts, ",")
}

// NewFilter builds a filter from raw form values. Empty strings leave a predicate inactive.
func NewFilter(productType, size, maxPrice string) (Filter, error) {
	var f Filter

	if v := strings.TrimSpace(productType); v != "" {
		f.Type = &v
	}
	if v := strings.TrimSpace(size); v != "" {
		f.Size = &v
	}
	if v := strings.TrimSpace(maxPrice); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return Filter{}, fmt.Errorf("maxPrice[%s] is not valid: %w", v, err)
		}
		f.MaxPrice = &d
	}

	return f, nil
}
