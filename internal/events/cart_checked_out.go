package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
)

const cartCheckedOutType = "CartCheckedOut"

type CartCheckedOut struct {
	EventType   string          `json:"eventType"`
	EventID     string          `json:"eventId"`
	UserID      string          `json:"userId"`
	Items       []CartItemEvent `json:"items"`
	TotalAmount float64         `json:"totalAmount"`
	Currency    string          `json:"currency"`
	Timestamp   time.Time       `json:"timestamp"`
}

type CartItemEvent struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

func newCartCheckedOut(cart domain.Cart, totals domain.Totals, now time.Time) CartCheckedOut {
	ev := CartCheckedOut{
		EventType:   cartCheckedOutType,
		EventID:     uuid.NewString(),
		UserID:      cart.OwnerID,
		Items:       make([]CartItemEvent, 0, len(cart.Lines)),
		TotalAmount: totals.Total.Amount.InexactFloat64(),
		Currency:    totals.Total.Currency.String(),
		Timestamp:   now.UTC(),
	}

	for _, l := range cart.Lines {
		ev.Items = append(ev.Items, CartItemEvent{
			ProductID: l.ProductID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			Price:     l.Price.Amount.InexactFloat64(),
		})
	}

	return ev
}
