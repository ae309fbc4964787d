package docstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/nikolayk812/storefront/internal/subscription"
	"golang.org/x/text/currency"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type ProductRepositoryFS struct {
	ns       namespace
	currency currency.Unit
}

func NewProductRepositoryFS(client *firestore.Client, appID string, storeCurrency currency.Unit) port.ProductRepository {
	return &ProductRepositoryFS{
		ns:       namespace{client: client, appID: appID},
		currency: storeCurrency,
	}
}

func (r *ProductRepositoryFS) CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	if strings.TrimSpace(p.Name) == "" {
		return domain.Product{}, fmt.Errorf("name is empty")
	}

	ref := r.ns.products().NewDoc()
	if _, err := ref.Create(ctx, productToDoc(p)); err != nil {
		return domain.Product{}, fmt.Errorf("ref.Create: %w", err)
	}

	snap, err := ref.Get(ctx)
	if err != nil {
		return domain.Product{}, fmt.Errorf("ref.Get: %w", err)
	}

	return docToProduct(snap, r.currency)
}

func (r *ProductRepositoryFS) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Product{}, fmt.Errorf("id is empty")
	}

	snap, err := r.ns.products().Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return domain.Product{}, domain.ErrProductNotFound
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("ref.Get: %w", err)
	}

	return docToProduct(snap, r.currency)
}

func (r *ProductRepositoryFS) ListProducts(ctx context.Context, filter domain.Filter) ([]domain.Product, error) {
	it := r.query(filter).Documents(ctx)
	defer it.Stop()

	var products []domain.Product
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("it.Next: %w", err)
		}

		p, err := docToProduct(snap, r.currency)
		if err != nil {
			return nil, err
		}
		if filter.Matches(p) {
			products = append(products, p)
		}
	}

	return products, nil
}

func (r *ProductRepositoryFS) WatchProducts(ctx context.Context, filter domain.Filter, onChange func([]domain.Product)) (port.Subscription, error) {
	q := r.query(filter)

	return subscription.Start(ctx, func(ctx context.Context) error {
		return watch(ctx, q, func(snaps []*firestore.DocumentSnapshot) error {
			products := make([]domain.Product, 0, len(snaps))
			for _, snap := range snaps {
				p, err := docToProduct(snap, r.currency)
				if err != nil {
					return err
				}
				if filter.Matches(p) {
					products = append(products, p)
				}
			}
			onChange(products)
			return nil
		})
	}), nil
}

// query pushes equality predicates to Firestore. The price ceiling is pushed only when it is
// the sole predicate, so no composite index is needed; callers re-check with Filter.Matches.
func (r *ProductRepositoryFS) query(filter domain.Filter) firestore.Query {
	q := r.ns.products().Query

	if filter.Type != nil {
		q = q.Where("type", "==", *filter.Type)
	}
	if filter.Size != nil {
		q = q.Where("size", "==", *filter.Size)
	}
	if filter.MaxPrice != nil && filter.Type == nil && filter.Size == nil {
		q = q.Where("price", "<=", filter.MaxPrice.InexactFloat64())
	}

	return q
}
