package port

import (
	"context"

	"github.com/nikolayk812/storefront/internal/domain"
)

type CheckoutPublisher interface {
	PublishCartCheckedOut(ctx context.Context, cart domain.Cart, totals domain.Totals) error
}
