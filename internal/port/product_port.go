package port

import (
	"context"

	"github.com/nikolayk812/storefront/internal/domain"
)

type ProductRepository interface {
	CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error)
	GetProduct(ctx context.Context, id string) (domain.Product, error)
	// ListProducts returns the products matching filter in no particular order.
	ListProducts(ctx context.Context, filter domain.Filter) ([]domain.Product, error)
	// WatchProducts calls onChange with the full matching set on subscription and after every change.
	WatchProducts(ctx context.Context, filter domain.Filter, onChange func([]domain.Product)) (Subscription, error)
}
