// Package memstore implements the storefront ports in process memory. Data is lost on exit.
package memstore

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/nikolayk812/storefront/internal/subscription"
)

type Store struct {
	mu       sync.Mutex
	now      func() time.Time
	last     time.Time
	products map[string]domain.Product
	carts    map[string]map[string]domain.CartLine
	watchers map[int]chan struct{}
	nextID   int
}

func New() *Store {
	return &Store{
		now:      time.Now,
		products: make(map[string]domain.Product),
		carts:    make(map[string]map[string]domain.CartLine),
		watchers: make(map[int]chan struct{}),
	}
}

func (s *Store) Carts() port.CartRepository {
	return &cartRepository{store: s}
}

func (s *Store) Products() port.ProductRepository {
	return &productRepository{store: s}
}

// tick returns a strictly increasing timestamp. Callers hold mu.
func (s *Store) tick() time.Time {
	t := s.now().UTC()
	if !t.After(s.last) {
		t = s.last.Add(time.Microsecond)
	}
	s.last = t
	return t
}

// changed wakes every watcher. Callers hold mu.
func (s *Store) changed() {
	for _, ch := range s.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// watch calls emit once and again after every change to the store.
func (s *Store) watch(ctx context.Context, emit func()) port.Subscription {
	ch := make(chan struct{}, 1)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.watchers[id] = ch
	s.mu.Unlock()

	return subscription.Start(ctx, func(ctx context.Context) error {
		defer func() {
			s.mu.Lock()
			delete(s.watchers, id)
			s.mu.Unlock()
		}()

		for {
			emit()

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ch:
			}
		}
	})
}

type cartRepository struct {
	store *Store
}

func (r *cartRepository) GetCart(_ context.Context, ownerID string) (domain.Cart, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return domain.Cart{}, fmt.Errorf("ownerID is empty")
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	return r.cartLocked(ownerID), nil
}

func (r *cartRepository) cartLocked(ownerID string) domain.Cart {
	lines := slices.Collect(maps.Values(r.store.carts[ownerID]))
	domain.SortLinesByCreation(lines)

	return domain.Cart{OwnerID: ownerID, Lines: lines}
}

func (r *cartRepository) IncrementLine(_ context.Context, ownerID string, snapshot domain.LineSnapshot) (domain.CartLine, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return domain.CartLine{}, fmt.Errorf("ownerID is empty")
	}
	if snapshot.ProductID == "" {
		return domain.CartLine{}, fmt.Errorf("productID is empty")
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	lines, ok := r.store.carts[ownerID]
	if !ok {
		lines = make(map[string]domain.CartLine)
		r.store.carts[ownerID] = lines
	}

	now := r.store.tick()

	line, ok := lines[snapshot.ProductID]
	if ok {
		line.Quantity++
		line.UpdatedAt = now
	} else {
		line = domain.CartLine{
			ProductID: snapshot.ProductID,
			Quantity:  1,
			Name:      snapshot.Name,
			Price:     snapshot.Price,
			Image:     snapshot.Image,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}
	lines[snapshot.ProductID] = line

	r.store.changed()
	return line, nil
}

func (r *cartRepository) SetQuantity(_ context.Context, ownerID, productID string, quantity int) (bool, error) {
	if !domain.ValidQuantity(quantity) {
		return false, domain.ErrInvalidQuantity
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	line, ok := r.store.carts[ownerID][productID]
	if !ok {
		return false, nil
	}

	line.Quantity = quantity
	line.UpdatedAt = r.store.tick()
	r.store.carts[ownerID][productID] = line

	r.store.changed()
	return true, nil
}

func (r *cartRepository) DeleteLine(_ context.Context, ownerID, productID string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.carts[ownerID][productID]; !ok {
		return false, nil
	}
	delete(r.store.carts[ownerID], productID)

	r.store.changed()
	return true, nil
}

func (r *cartRepository) Clear(_ context.Context, ownerID string) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	n := len(r.store.carts[ownerID])
	delete(r.store.carts, ownerID)

	if n > 0 {
		r.store.changed()
	}
	return n, nil
}

func (r *cartRepository) TakeCart(_ context.Context, ownerID string) (domain.Cart, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return domain.Cart{}, fmt.Errorf("ownerID is empty")
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	cart := r.cartLocked(ownerID)
	delete(r.store.carts, ownerID)

	if !cart.IsEmpty() {
		r.store.changed()
	}
	return cart, nil
}

func (r *cartRepository) WatchCart(ctx context.Context, ownerID string, onChange func(domain.Cart)) (port.Subscription, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, fmt.Errorf("ownerID is empty")
	}

	return r.store.watch(ctx, func() {
		r.store.mu.Lock()
		cart := r.cartLocked(ownerID)
		r.store.mu.Unlock()

		onChange(cart)
	}), nil
}

type productRepository struct {
	store *Store
}

func (r *productRepository) CreateProduct(_ context.Context, p domain.Product) (domain.Product, error) {
	if strings.TrimSpace(p.Name) == "" {
		return domain.Product{}, fmt.Errorf("name is empty")
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	p.ID = uuid.NewString()
	p.CreatedAt = r.store.tick()
	r.store.products[p.ID] = p

	r.store.changed()
	return p, nil
}

func (r *productRepository) GetProduct(_ context.Context, id string) (domain.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	p, ok := r.store.products[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return p, nil
}

func (r *productRepository) ListProducts(_ context.Context, filter domain.Filter) ([]domain.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	return r.matchingLocked(filter), nil
}

func (r *productRepository) matchingLocked(filter domain.Filter) []domain.Product {
	var result []domain.Product
	for _, p := range r.store.products {
		if filter.Matches(p) {
			result = append(result, p)
		}
	}
	return result
}

func (r *productRepository) WatchProducts(ctx context.Context, filter domain.Filter, onChange func([]domain.Product)) (port.Subscription, error) {
	return r.store.watch(ctx, func() {
		r.store.mu.Lock()
		products := r.matchingLocked(filter)
		r.store.mu.Unlock()

		onChange(products)
	}), nil
}
