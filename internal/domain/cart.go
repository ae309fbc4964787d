package domain

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
	"time"
)

var (
	ErrLineNotFound    = errors.New("cart line not found")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidQuantity = errors.New("quantity must be between 1 and 2147483647")
)

// MaxQuantity is the largest quantity a cart line can hold in every store.
const MaxQuantity = math.MaxInt32

func ValidQuantity(quantity int) bool {
	return quantity >= 1 && quantity <= MaxQuantity
}

type Cart struct {
	OwnerID string
	Lines   []CartLine
}

// CartLine is keyed by ProductID; an owner has at most one line per product.
// Name, Price and Image are copies taken when the line was first added.
type CartLine struct {
	ProductID string
	Quantity  int
	Name      string
	Price     Money
	Image     string

	CreatedAt time.Time
	UpdatedAt time.Time
}

type LineSnapshot struct {
	ProductID string
	Name      string
	Price     Money
	Image     string
}

func SnapshotOf(p Product) LineSnapshot {
	return LineSnapshot{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Image:     p.Image,
	}
}

type Totals struct {
	ItemCount int
	Total     Money
}

// Formatted renders the total price with two decimals.
func (t Totals) Formatted() string {
	return t.Total.String()
}

func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

func (c Cart) Line(productID string) (CartLine, bool) {
	for _, l := range c.Lines {
		if l.ProductID == productID {
			return l, true
		}
	}
	return CartLine{}, false
}

func (c Cart) Totals() (Totals, error) {
	var t Totals

	for _, l := range c.Lines {
		t.ItemCount += l.Quantity

		total, err := t.Total.Add(l.Price.Mul(l.Quantity))
		if err != nil {
			return Totals{}, fmt.Errorf("line[%s]: %w", l.ProductID, err)
		}
		t.Total = total
	}

	return t, nil
}

// SortLinesByCreation orders lines by CreatedAt ascending, then by ProductID.
func SortLinesByCreation(lines []CartLine) {
	slices.SortStableFunc(lines, func(a, b CartLine) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ProductID, b.ProductID)
	})
}
