// Package storefront turns user intents into cart, catalog and generation calls
// and reports the outcome as notifications.
package storefront

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/nikolayk812/storefront/internal/auth"
	"github.com/nikolayk812/storefront/internal/cart"
	"github.com/nikolayk812/storefront/internal/catalog"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/nikolayk812/storefront/internal/textgen"
	"go.uber.org/zap"
)

const defaultBuffer = 64

// SessionProvider is satisfied by *auth.Sessions.
type SessionProvider interface {
	SignIn(ctx context.Context, token string) (domain.Session, error)
	SignOut()
	Current() domain.Session
	OnChange(fn func(auth.SessionEvent)) func()
}

// TextGenerator is satisfied by *textgen.Generator.
type TextGenerator interface {
	SizeRecommendation(ctx context.Context, params textgen.SizeParams) domain.Generation
}

type Deps struct {
	Sessions  SessionProvider
	Carts     port.CartRepository
	Catalog   *catalog.Service
	Generator TextGenerator
	Publisher port.CheckoutPublisher
	Logger    *zap.Logger
	// Buffer is the capacity of the notification channel.
	Buffer int
}

type Storefront struct {
	deps   Deps
	logger *zap.Logger
	notes  chan Notification

	mu            sync.Mutex
	ctx           context.Context
	synchronizer  *cart.Synchronizer
	cartSub       port.Subscription
	cartCancel    context.CancelFunc
	catalogCancel context.CancelFunc
}

func New(deps Deps) (*Storefront, error) {
	if deps.Sessions == nil {
		return nil, fmt.Errorf("sessions is nil")
	}
	if deps.Carts == nil {
		return nil, fmt.Errorf("carts is nil")
	}
	if deps.Catalog == nil {
		return nil, fmt.Errorf("catalog is nil")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Buffer <= 0 {
		deps.Buffer = defaultBuffer
	}

	s := &Storefront{
		deps:   deps,
		logger: deps.Logger,
		notes:  make(chan Notification, deps.Buffer),
		ctx:    context.Background(),
	}
	deps.Sessions.OnChange(s.onSessionChange)

	return s, nil
}

// onSessionChange drops the cart of a user who signed out, wherever SignOut was called.
func (s *Storefront) onSessionChange(ev auth.SessionEvent) {
	if ev.Kind != auth.SignedOut {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.synchronizer == nil || s.synchronizer.Session().UserID != ev.Session.UserID {
		return
	}

	if err := s.stopCartLocked(); err != nil {
		s.logger.Warn("cart subscription ended with error", zap.Error(err))
	}
	s.synchronizer = nil
}

// Notifications delivers everything the storefront reports. The channel is never
// closed; readers stop after Close.
func (s *Storefront) Notifications() <-chan Notification {
	return s.notes
}

// Start signs in with token (anonymously when empty) and installs the cart subscription.
// ctx bounds every subscription the storefront installs.
func (s *Storefront) Start(ctx context.Context, token string) (domain.Session, error) {
	session, err := s.deps.Sessions.SignIn(ctx, token)
	if err != nil {
		s.logger.Error("sign in failed", zap.Error(err))
		s.emit(ctx, Message{Text: MsgGenericError})
		return domain.Session{}, fmt.Errorf("sessions.SignIn: %w", err)
	}

	opts := []cart.Option{cart.WithLogger(s.logger)}
	if s.deps.Publisher != nil {
		opts = append(opts, cart.WithPublisher(s.deps.Publisher))
	}

	synchronizer, err := cart.NewSynchronizer(s.deps.Carts, session, opts...)
	if err != nil {
		return domain.Session{}, fmt.Errorf("cart.NewSynchronizer: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.ctx = ctx
	if err := s.stopCartLocked(); err != nil {
		s.logger.Warn("previous cart subscription ended with error", zap.Error(err))
	}

	subCtx, cancel := context.WithCancel(ctx)

	sub, err := synchronizer.Subscribe(subCtx, func(c domain.Cart) {
		totals, err := c.Totals()
		if err != nil {
			s.logger.Error("cart totals", zap.Error(err))
			return
		}
		s.emit(subCtx, CartChanged{Cart: c, Totals: totals})
	})
	if err != nil {
		cancel()
		s.logger.Error("cart subscription failed", zap.Error(err))
		s.emit(ctx, Message{Text: MsgGenericError})
		return domain.Session{}, fmt.Errorf("synchronizer.Subscribe: %w", err)
	}

	s.synchronizer = synchronizer
	s.cartSub = sub
	s.cartCancel = cancel

	return session, nil
}

// Close stops every subscription and signs out.
func (s *Storefront) Close() error {
	errs := s.stopAll()

	s.deps.Sessions.SignOut()

	return errors.Join(errs...)
}

func (s *Storefront) stopAll() []error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error

	if s.catalogCancel != nil {
		s.catalogCancel()
		s.catalogCancel = nil
	}
	if err := s.deps.Catalog.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("catalog.Stop: %w", err))
	}
	if err := s.stopCartLocked(); err != nil {
		errs = append(errs, err)
	}

	s.synchronizer = nil

	return errs
}

func (s *Storefront) stopCartLocked() error {
	if s.cartSub == nil {
		return nil
	}

	s.cartCancel()
	err := s.cartSub.Stop()

	s.cartSub = nil
	s.cartCancel = nil

	if err != nil {
		return fmt.Errorf("cartSub.Stop: %w", err)
	}
	return nil
}

// Dispatch handles one intent. User-facing outcomes are reported as notifications;
// the returned error is for the caller's own bookkeeping.
func (s *Storefront) Dispatch(ctx context.Context, in Intent) error {
	switch in := in.(type) {
	case AddToCart:
		return s.withCart(ctx, func(c *cart.Synchronizer) error {
			_, err := c.AddOrIncrement(ctx, domain.SnapshotOf(in.Product))
			return err
		})

	case ChangeQuantity:
		return s.withCart(ctx, func(c *cart.Synchronizer) error {
			display, err := c.SetQuantity(ctx, in.ProductID, in.Quantity)
			if display != in.Quantity {
				s.emit(ctx, QuantityReset{ProductID: in.ProductID, Display: display})
			}
			return err
		})

	case RemoveFromCart:
		return s.withCart(ctx, func(c *cart.Synchronizer) error {
			return c.Remove(ctx, in.ProductID)
		})

	case Checkout:
		return s.withCart(ctx, func(c *cart.Synchronizer) error {
			return s.checkout(ctx, c)
		})

	case ChangeFilter:
		return s.changeFilter(ctx, in)

	case CreateProduct:
		return s.createProduct(ctx, in)

	case RequestSlogans:
		return s.slogans(ctx, in)

	case RequestSize:
		return s.size(ctx, in)

	default:
		return fmt.Errorf("intent[%T] is not supported", in)
	}
}

func (s *Storefront) withCart(ctx context.Context, fn func(*cart.Synchronizer) error) error {
	s.mu.Lock()
	synchronizer := s.synchronizer
	s.mu.Unlock()

	if synchronizer == nil || !s.deps.Sessions.Current().Valid() {
		s.emit(ctx, Message{Text: MsgSignInRequired})
		return domain.ErrNoSession
	}

	if err := fn(synchronizer); err != nil {
		if errors.Is(err, domain.ErrEmptyCart) {
			s.emit(ctx, Message{Text: MsgEmptyCart})
			return err
		}

		s.logger.Error("cart operation failed",
			zap.String("user_id", synchronizer.Session().UserID),
			zap.Error(err))
		s.emit(ctx, Message{Text: MsgGenericError})
		return err
	}

	return nil
}

func (s *Storefront) checkout(ctx context.Context, c *cart.Synchronizer) error {
	checkedOut, err := c.Checkout(ctx)
	if err != nil {
		return err
	}

	totals, err := checkedOut.Totals()
	if err != nil {
		return fmt.Errorf("checkedOut.Totals: %w", err)
	}

	s.emit(ctx, CheckedOut{Cart: checkedOut, Totals: totals})
	s.emit(ctx, Message{Text: MsgCheckoutDone})

	return nil
}

// changeFilter replaces the live catalog view. The previous view is cancelled before
// the new one starts, so no stale CatalogChanged follows this call.
func (s *Storefront) changeFilter(ctx context.Context, in ChangeFilter) error {
	filter, err := domain.NewFilter(in.Type, in.Size, in.MaxPrice)
	if err != nil {
		s.emit(ctx, Message{Text: MsgInvalidFilter})
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.catalogCancel != nil {
		s.catalogCancel()
		s.catalogCancel = nil
	}

	subCtx, cancel := context.WithCancel(s.ctx)

	err = s.deps.Catalog.Watch(subCtx, filter, func(products []domain.Product) {
		s.emit(subCtx, CatalogChanged{Filter: filter, Products: products})
	})
	if err != nil {
		cancel()
		s.logger.Error("catalog subscription failed", zap.Stringer("filter", filter), zap.Error(err))
		s.emit(ctx, Message{Text: MsgGenericError})
		return err
	}

	s.catalogCancel = cancel
	return nil
}

func (s *Storefront) createProduct(ctx context.Context, in CreateProduct) error {
	created, err := s.deps.Catalog.Create(ctx, in.Product)
	if errors.Is(err, domain.ErrInvalidProduct) {
		s.emit(ctx, Message{Text: MsgInvalidProduct})
		return err
	}
	if err != nil {
		s.logger.Error("create product failed", zap.Error(err))
		s.emit(ctx, Message{Text: MsgGenericError})
		return err
	}

	s.emit(ctx, ProductCreated{Product: created})
	s.emit(ctx, Message{Text: MsgProductCreated})

	return nil
}

func (s *Storefront) slogans(ctx context.Context, in RequestSlogans) error {
	result, err := s.deps.Catalog.Slogans(ctx, in.Products)
	if err != nil {
		s.logger.Error("slogans failed", zap.Error(err))
		return err
	}

	for _, p := range in.Products {
		if gen, ok := result[p.ID]; ok {
			s.emit(ctx, SloganReady{ProductID: p.ID, Generation: gen})
		}
	}

	return nil
}

func (s *Storefront) size(ctx context.Context, in RequestSize) error {
	params := textgen.SizeParams{
		Height:    strings.TrimSpace(in.Height),
		Weight:    strings.TrimSpace(in.Weight),
		BodyShape: strings.TrimSpace(in.BodyShape),
	}

	if params.Height == "" || params.Weight == "" || params.BodyShape == "" {
		s.emit(ctx, Message{Text: MsgIncompleteSize})
		return nil
	}

	if s.deps.Generator == nil {
		return fmt.Errorf("generator is not configured")
	}

	s.emit(ctx, SizeReady{Generation: s.deps.Generator.SizeRecommendation(ctx, params)})
	return nil
}

// emit delivers n unless ctx ends first.
func (s *Storefront) emit(ctx context.Context, n Notification) {
	select {
	case s.notes <- n:
	case <-ctx.Done():
		s.logger.Debug("notification dropped", zap.String("type", fmt.Sprintf("%T", n)))
	}
}
