// Package catalog serves the filtered product view and product creation.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/nikolayk812/storefront/internal/subscription"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultSloganConcurrency = 4

// SloganWriter is satisfied by *textgen.Generator.
type SloganWriter interface {
	Slogan(ctx context.Context, productName string) domain.Generation
}

type Service struct {
	repo    port.ProductRepository
	images  port.ImageStore
	slogans SloganWriter
	limit   int
	logger  *zap.Logger

	mu     sync.Mutex
	live   port.Subscription
	filter domain.Filter
}

type Option func(*Service)

func WithImageStore(images port.ImageStore) Option {
	return func(s *Service) {
		s.images = images
	}
}

func WithSloganWriter(w SloganWriter) Option {
	return func(s *Service) {
		s.slogans = w
	}
}

// WithSloganConcurrency bounds the number of slogans generated at once.
func WithSloganConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.limit = n
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func NewService(repo port.ProductRepository, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		limit:  defaultSloganConcurrency,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Watch replaces the live view. The previous subscription is stopped and has exited
// before the new one starts, so onChange never sees results of an older filter.
// Every delivery is re-checked against filter and sorted newest first.
func (s *Service) Watch(ctx context.Context, filter domain.Filter, onChange func([]domain.Product)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.stopLocked(); err != nil {
		s.logger.Warn("previous catalog subscription ended with error", zap.Error(err))
	}

	sub, err := s.repo.WatchProducts(ctx, filter, func(products []domain.Product) {
		onChange(filter.Apply(products))
	})
	if err != nil {
		return fmt.Errorf("repo.WatchProducts: %w", err)
	}

	s.live = sub
	s.filter = filter

	s.logger.Debug("catalog subscription installed", zap.Stringer("filter", filter))

	return nil
}

// Filter returns the filter of the live view.
func (s *Service) Filter() domain.Filter {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.filter
}

// Stop ends the live view. Stopping without one is a no-op.
func (s *Service) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.stopLocked()
}

func (s *Service) stopLocked() error {
	if s.live == nil {
		return nil
	}

	sub := s.live
	s.live = nil

	if err := sub.Stop(); err != nil && !errors.Is(err, subscription.ErrStopped) {
		return fmt.Errorf("sub.Stop: %w", err)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.Product, error) {
	p, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return domain.Product{}, fmt.Errorf("repo.GetProduct: %w", err)
	}

	return p, nil
}

func (s *Service) List(ctx context.Context, filter domain.Filter) ([]domain.Product, error) {
	products, err := s.repo.ListProducts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("repo.ListProducts: %w", err)
	}

	return filter.Apply(products), nil
}

// Create validates np, uploads its image bytes when present and stores the product.
func (s *Service) Create(ctx context.Context, np domain.NewProduct) (domain.Product, error) {
	if err := np.Validate(); err != nil {
		return domain.Product{}, err
	}

	p := np.Product()

	if len(np.ImageData) > 0 {
		if s.images == nil {
			return domain.Product{}, fmt.Errorf("image store is not configured")
		}

		url, err := s.images.Put(ctx, p.Name, np.ImageData)
		if err != nil {
			return domain.Product{}, fmt.Errorf("images.Put: %w", err)
		}
		p.Image = url
	}

	created, err := s.repo.CreateProduct(ctx, p)
	if err != nil {
		return domain.Product{}, fmt.Errorf("repo.CreateProduct: %w", err)
	}

	s.logger.Info("product created",
		zap.String("product_id", created.ID),
		zap.String("name", created.Name))

	return created, nil
}

// Slogans generates one slogan per product. Generation never fails, so every
// product gets an entry, possibly a fallback.
func (s *Service) Slogans(ctx context.Context, products []domain.Product) (map[string]domain.Generation, error) {
	if s.slogans == nil {
		return nil, fmt.Errorf("slogan writer is not configured")
	}

	var (
		mu     sync.Mutex
		result = make(map[string]domain.Generation, len(products))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.limit)

	for _, p := range products {
		g.Go(func() error {
			gen := s.slogans.Slogan(gctx, p.Name)

			mu.Lock()
			result[p.ID] = gen
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("g.Wait: %w", err)
	}

	return result, nil
}
