package domain

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

var (
	ErrInvalidProduct  = errors.New("invalid product")
	ErrProductNotFound = errors.New("product not found")
)

type Product struct {
	ID          string
	Name        string
	Description string
	Price       Money
	Type        string
	Size        string
	Image       string

	// CreatedAt is assigned by the store. The zero value means the store never set it.
	CreatedAt time.Time
}

// NewProduct is the input of the product-creation form.
type NewProduct struct {
	Name        string
	Description string
	Price       Money
	Type        string
	Size        string
	Image       string

	// ImageData, when set, is uploaded and replaces Image with the stored URL.
	ImageData []byte
}

func (p NewProduct) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidProduct)
	}
	if p.Price.Amount.IsNegative() {
		return fmt.Errorf("%w: price is negative", ErrInvalidProduct)
	}

	return nil
}

func (p NewProduct) Product() Product {
	return Product{
		Name:        strings.TrimSpace(p.Name),
		Description: p.Description,
		Price:       p.Price,
		Type:        p.Type,
		Size:        p.Size,
		Image:       p.Image,
	}
}

// SortNewestFirst orders products by descending CreatedAt. Products without a
// timestamp sort last; ties fall back to ID so the order is deterministic.
func SortNewestFirst(products []Product) {
	slices.SortStableFunc(products, func(a, b Product) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
