// Package cart keeps one session's cart in sync with the remote store.
package cart

import (
	"context"
	"fmt"
	"strings"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"go.uber.org/zap"
)

type Synchronizer struct {
	repo      port.CartRepository
	session   domain.Session
	publisher port.CheckoutPublisher
	logger    *zap.Logger
}

type Option func(*Synchronizer)

// WithPublisher makes Checkout announce the checked-out cart.
func WithPublisher(p port.CheckoutPublisher) Option {
	return func(s *Synchronizer) {
		s.publisher = p
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Synchronizer) {
		s.logger = logger
	}
}

// NewSynchronizer binds repo to session. It fails with domain.ErrNoSession
// when the session has no user.
func NewSynchronizer(repo port.CartRepository, session domain.Session, opts ...Option) (*Synchronizer, error) {
	if !session.Valid() {
		return nil, domain.ErrNoSession
	}
	if repo == nil {
		return nil, fmt.Errorf("repo is nil")
	}

	s := &Synchronizer{
		repo:    repo,
		session: session,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

func (s *Synchronizer) Session() domain.Session {
	return s.session
}

// AddOrIncrement creates the line with quantity 1 or adds one to an existing line.
func (s *Synchronizer) AddOrIncrement(ctx context.Context, snapshot domain.LineSnapshot) (domain.CartLine, error) {
	if strings.TrimSpace(snapshot.ProductID) == "" {
		return domain.CartLine{}, fmt.Errorf("productID is empty")
	}

	line, err := s.repo.IncrementLine(ctx, s.session.UserID, snapshot)
	if err != nil {
		return domain.CartLine{}, fmt.Errorf("repo.IncrementLine: %w", err)
	}

	s.logger.Debug("cart line incremented",
		zap.String("product_id", line.ProductID),
		zap.Int("quantity", line.Quantity))

	return line, nil
}

// SetQuantity overwrites the quantity of an existing line and returns the value to display.
// A quantity below 1 is not persisted and the display value is 1.
func (s *Synchronizer) SetQuantity(ctx context.Context, productID string, quantity int) (int, error) {
	if quantity < 1 {
		return 1, nil
	}

	found, err := s.repo.SetQuantity(ctx, s.session.UserID, productID, quantity)
	if err != nil {
		return quantity, fmt.Errorf("repo.SetQuantity: %w", err)
	}
	if !found {
		return quantity, domain.ErrLineNotFound
	}

	return quantity, nil
}

// Remove deletes the line. Removing an absent line is not an error.
func (s *Synchronizer) Remove(ctx context.Context, productID string) error {
	if _, err := s.repo.DeleteLine(ctx, s.session.UserID, productID); err != nil {
		return fmt.Errorf("repo.DeleteLine: %w", err)
	}

	return nil
}

func (s *Synchronizer) Clear(ctx context.Context) (int, error) {
	n, err := s.repo.Clear(ctx, s.session.UserID)
	if err != nil {
		return n, fmt.Errorf("repo.Clear: %w", err)
	}

	return n, nil
}

func (s *Synchronizer) Snapshot(ctx context.Context) (domain.Cart, error) {
	cart, err := s.repo.GetCart(ctx, s.session.UserID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("repo.GetCart: %w", err)
	}

	return cart, nil
}

// Subscribe delivers the current cart and then every change until the subscription is stopped.
func (s *Synchronizer) Subscribe(ctx context.Context, onChange func(domain.Cart)) (port.Subscription, error) {
	sub, err := s.repo.WatchCart(ctx, s.session.UserID, onChange)
	if err != nil {
		return nil, fmt.Errorf("repo.WatchCart: %w", err)
	}

	return sub, nil
}

// Checkout empties the cart and returns what it held. With a publisher the cart is
// announced before it is cleared, so a failed publish leaves the cart intact.
func (s *Synchronizer) Checkout(ctx context.Context) (domain.Cart, error) {
	if s.publisher == nil {
		cart, err := s.repo.TakeCart(ctx, s.session.UserID)
		if err != nil {
			return domain.Cart{}, fmt.Errorf("repo.TakeCart: %w", err)
		}
		if cart.IsEmpty() {
			return domain.Cart{}, domain.ErrEmptyCart
		}
		return cart, nil
	}

	cart, err := s.Snapshot(ctx)
	if err != nil {
		return domain.Cart{}, err
	}
	if cart.IsEmpty() {
		return domain.Cart{}, domain.ErrEmptyCart
	}

	totals, err := cart.Totals()
	if err != nil {
		return domain.Cart{}, fmt.Errorf("cart.Totals: %w", err)
	}

	if err := s.publisher.PublishCartCheckedOut(ctx, cart, totals); err != nil {
		return domain.Cart{}, fmt.Errorf("publisher.PublishCartCheckedOut: %w", err)
	}

	if _, err := s.Clear(ctx); err != nil {
		return domain.Cart{}, err
	}

	s.logger.Info("cart checked out",
		zap.String("user_id", s.session.UserID),
		zap.Int("items", totals.ItemCount),
		zap.String("total", totals.Formatted()))

	return cart, nil
}
