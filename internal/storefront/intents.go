package storefront

import (
	"github.com/nikolayk812/storefront/internal/domain"
)

// Intent is a user action dispatched into the storefront.
type Intent interface {
	intent()
}

type AddToCart struct {
	Product domain.Product
}

type ChangeQuantity struct {
	ProductID string
	Quantity  int
}

type RemoveFromCart struct {
	ProductID string
}

type Checkout struct{}

// ChangeFilter carries the raw catalog form values. Empty values disable a predicate.
type ChangeFilter struct {
	Type     string
	Size     string
	MaxPrice string
}

type CreateProduct struct {
	Product domain.NewProduct
}

type RequestSlogans struct {
	Products []domain.Product
}

type RequestSize struct {
	Height    string
	Weight    string
	BodyShape string
}

func (AddToCart) intent()      {}
func (ChangeQuantity) intent() {}
func (RemoveFromCart) intent() {}
func (Checkout) intent()       {}
func (ChangeFilter) intent()   {}
func (CreateProduct) intent()  {}
func (RequestSlogans) intent() {}
func (RequestSize) intent()    {}

// Notification is emitted by the storefront for the presentation layer.
type Notification interface {
	notification()
}

type CartChanged struct {
	Cart   domain.Cart
	Totals domain.Totals
}

type CatalogChanged struct {
	Filter   domain.Filter
	Products []domain.Product
}

// QuantityReset tells the view to show Display instead of the value the user typed.
type QuantityReset struct {
	ProductID string
	Display   int
}

type SloganReady struct {
	ProductID  string
	Generation domain.Generation
}

type SizeReady struct {
	Generation domain.Generation
}

type ProductCreated struct {
	Product domain.Product
}

type CheckedOut struct {
	Cart   domain.Cart
	Totals domain.Totals
}

// Message is user-facing text.
type Message struct {
	Text string
}

func (CartChanged) notification()    {}
func (CatalogChanged) notification() {}
func (QuantityReset) notification()  {}
func (SloganReady) notification()    {}
func (SizeReady) notification()      {}
func (ProductCreated) notification() {}
func (CheckedOut) notification()     {}
func (Message) notification()        {}
