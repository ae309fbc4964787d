package port

import (
	"context"

	"github.com/nikolayk812/storefront/internal/domain"
)

type CartRepository interface {
	GetCart(ctx context.Context, ownerID string) (domain.Cart, error)
	// IncrementLine creates the line with quantity 1 from the snapshot, or adds 1 to
	// an existing line leaving its other fields untouched. The read and the write are atomic.
	IncrementLine(ctx context.Context, ownerID string, snapshot domain.LineSnapshot) (domain.CartLine, error)
	// SetQuantity returns false when the line does not exist.
	SetQuantity(ctx context.Context, ownerID, productID string, quantity int) (bool, error)
	DeleteLine(ctx context.Context, ownerID, productID string) (bool, error)
	// Clear returns the number of deleted lines.
	Clear(ctx context.Context, ownerID string) (int, error)
	// TakeCart reads the cart and clears it as one operation.
	TakeCart(ctx context.Context, ownerID string) (domain.Cart, error)
	// WatchCart calls onChange with the full cart on subscription and after every change.
	WatchCart(ctx context.Context, ownerID string, onChange func(domain.Cart)) (Subscription, error)
}
