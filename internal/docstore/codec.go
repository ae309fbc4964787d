package docstore

import (
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// Prices are stored as numbers so the web storefront and range queries can use them.
type productDoc struct {
	Name        string    `firestore:"name"`
	Description string    `firestore:"description"`
	Price       float64   `firestore:"price"`
	Currency    string    `firestore:"currency,omitempty"`
	Type        string    `firestore:"type"`
	Size        string    `firestore:"size"`
	Image       string    `firestore:"image"`
	CreatedAt   time.Time `firestore:"createdAt,serverTimestamp"`
}

type cartLineDoc struct {
	Quantity  int64     `firestore:"quantity"`
	Name      string    `firestore:"name"`
	Price     float64   `firestore:"price"`
	Currency  string    `firestore:"currency,omitempty"`
	Image     string    `firestore:"image"`
	CreatedAt time.Time `firestore:"createdAt,serverTimestamp"`
	UpdatedAt time.Time `firestore:"updatedAt,serverTimestamp"`
}

func productToDoc(p domain.Product) productDoc {
	return productDoc{
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.Amount.InexactFloat64(),
		Currency:    p.Price.Currency.String(),
		Type:        p.Type,
		Size:        p.Size,
		Image:       p.Image,
	}
}

func docToProduct(snap *firestore.DocumentSnapshot, fallback currency.Unit) (domain.Product, error) {
	var d productDoc
	if err := snap.DataTo(&d); err != nil {
		return domain.Product{}, fmt.Errorf("snap.DataTo[%s]: %w", snap.Ref.ID, err)
	}

	unit, err := parseCurrency(d.Currency, fallback)
	if err != nil {
		return domain.Product{}, err
	}

	return domain.Product{
		ID:          snap.Ref.ID,
		Name:        d.Name,
		Description: d.Description,
		Price:       domain.Money{Amount: decimal.NewFromFloat(d.Price), Currency: unit},
		Type:        d.Type,
		Size:        d.Size,
		Image:       d.Image,
		CreatedAt:   d.CreatedAt,
	}, nil
}

func snapshotToDoc(s domain.LineSnapshot) cartLineDoc {
	return cartLineDoc{
		Quantity: 1,
		Name:     s.Name,
		Price:    s.Price.Amount.InexactFloat64(),
		Currency: s.Price.Currency.String(),
		Image:    s.Image,
	}
}

func docToCartLine(snap *firestore.DocumentSnapshot, fallback currency.Unit) (domain.CartLine, error) {
	var d cartLineDoc
	if err := snap.DataTo(&d); err != nil {
		return domain.CartLine{}, fmt.Errorf("snap.DataTo[%s]: %w", snap.Ref.ID, err)
	}

	unit, err := parseCurrency(d.Currency, fallback)
	if err != nil {
		return domain.CartLine{}, err
	}

	return domain.CartLine{
		ProductID: snap.Ref.ID,
		Quantity:  int(d.Quantity),
		Name:      d.Name,
		Price:     domain.Money{Amount: decimal.NewFromFloat(d.Price), Currency: unit},
		Image:     d.Image,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}, nil
}

func parseCurrency(code string, fallback currency.Unit) (currency.Unit, error) {
	if code == "" {
		return fallback, nil
	}

	unit, err := currency.ParseISO(code)
	if err != nil {
		return currency.Unit{}, fmt.Errorf("currency[%s] is not valid: %w", code, err)
	}
	return unit, nil
}
