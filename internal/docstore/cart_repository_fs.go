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

// CartRepositoryFS keeps one document per cart line, keyed by product id, under the owner's namespace.
type CartRepositoryFS struct {
	ns       namespace
	currency currency.Unit
}

// NewCartRepositoryFS stores carts under appID. storeCurrency is assumed for lines written without one.
func NewCartRepositoryFS(client *firestore.Client, appID string, storeCurrency currency.Unit) port.CartRepository {
	return &CartRepositoryFS{
		ns:       namespace{client: client, appID: appID},
		currency: storeCurrency,
	}
}

func (r *CartRepositoryFS) GetCart(ctx context.Context, ownerID string) (domain.Cart, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return domain.Cart{}, fmt.Errorf("ownerID is empty")
	}

	snaps, err := r.ns.cart(ownerID).OrderBy("createdAt", firestore.Asc).Documents(ctx).GetAll()
	if err != nil {
		return domain.Cart{}, fmt.Errorf("cart.Documents: %w", err)
	}

	return r.toCart(ownerID, snaps)
}

func (r *CartRepositoryFS) IncrementLine(ctx context.Context, ownerID string, snapshot domain.LineSnapshot) (domain.CartLine, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return domain.CartLine{}, fmt.Errorf("ownerID is empty")
	}
	if snapshot.ProductID == "" {
		return domain.CartLine{}, fmt.Errorf("productID is empty")
	}

	ref := r.ns.cart(ownerID).Doc(snapshot.ProductID)

	err := r.ns.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil && status.Code(err) != codes.NotFound {
			return fmt.Errorf("tx.Get: %w", err)
		}

		if snap != nil && snap.Exists() {
			return tx.Update(ref, []firestore.Update{
				{Path: "quantity", Value: firestore.Increment(1)},
				{Path: "updatedAt", Value: firestore.ServerTimestamp},
			})
		}

		return tx.Create(ref, snapshotToDoc(snapshot))
	})
	if err != nil {
		return domain.CartLine{}, fmt.Errorf("client.RunTransaction: %w", err)
	}

	snap, err := ref.Get(ctx)
	if err != nil {
		return domain.CartLine{}, fmt.Errorf("ref.Get: %w", err)
	}

	return docToCartLine(snap, r.currency)
}

func (r *CartRepositoryFS) SetQuantity(ctx context.Context, ownerID, productID string, quantity int) (bool, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return false, fmt.Errorf("ownerID is empty")
	}
	if !domain.ValidQuantity(quantity) {
		return false, domain.ErrInvalidQuantity
	}

	_, err := r.ns.cart(ownerID).Doc(productID).Update(ctx, []firestore.Update{
		{Path: "quantity", Value: quantity},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	})
	if status.Code(err) == codes.NotFound {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("ref.Update: %w", err)
	}

	return true, nil
}

func (r *CartRepositoryFS) DeleteLine(ctx context.Context, ownerID, productID string) (bool, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return false, fmt.Errorf("ownerID is empty")
	}

	_, err := r.ns.cart(ownerID).Doc(productID).Delete(ctx, firestore.Exists)
	if status.Code(err) == codes.NotFound {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("ref.Delete: %w", err)
	}

	return true, nil
}

// Clear deletes every line with a bulk writer. Lines added while Clear runs may survive.
func (r *CartRepositoryFS) Clear(ctx context.Context, ownerID string) (int, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return 0, fmt.Errorf("ownerID is empty")
	}

	refs, err := r.ns.cart(ownerID).DocumentRefs(ctx).GetAll()
	if err != nil {
		return 0, fmt.Errorf("cart.DocumentRefs: %w", err)
	}
	if len(refs) == 0 {
		return 0, nil
	}

	bw := r.ns.client.BulkWriter(ctx)

	jobs := make([]*firestore.BulkWriterJob, 0, len(refs))
	for _, ref := range refs {
		job, err := bw.Delete(ref)
		if err != nil {
			bw.End()
			return 0, fmt.Errorf("bw.Delete: %w", err)
		}
		jobs = append(jobs, job)
	}
	bw.End()

	var errs []error
	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return len(refs) - len(errs), fmt.Errorf("bulk delete: %w", errors.Join(errs...))
	}

	return len(refs), nil
}

func (r *CartRepositoryFS) TakeCart(ctx context.Context, ownerID string) (domain.Cart, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return domain.Cart{}, fmt.Errorf("ownerID is empty")
	}

	var cart domain.Cart

	err := r.ns.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snaps, err := tx.Documents(r.ns.cart(ownerID)).GetAll()
		if err != nil {
			return fmt.Errorf("tx.Documents: %w", err)
		}

		cart, err = r.toCart(ownerID, snaps)
		if err != nil {
			return err
		}

		for _, snap := range snaps {
			if err := tx.Delete(snap.Ref); err != nil {
				return fmt.Errorf("tx.Delete: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return domain.Cart{}, fmt.Errorf("client.RunTransaction: %w", err)
	}

	domain.SortLinesByCreation(cart.Lines)
	return cart, nil
}

func (r *CartRepositoryFS) WatchCart(ctx context.Context, ownerID string, onChange func(domain.Cart)) (port.Subscription, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, fmt.Errorf("ownerID is empty")
	}

	q := r.ns.cart(ownerID).Query

	return subscription.Start(ctx, func(ctx context.Context) error {
		return watch(ctx, q, func(snaps []*firestore.DocumentSnapshot) error {
			cart, err := r.toCart(ownerID, snaps)
			if err != nil {
				return err
			}
			domain.SortLinesByCreation(cart.Lines)
			onChange(cart)
			return nil
		})
	}), nil
}

func (r *CartRepositoryFS) toCart(ownerID string, snaps []*firestore.DocumentSnapshot) (domain.Cart, error) {
	cart := domain.Cart{OwnerID: ownerID}

	for _, snap := range snaps {
		line, err := docToCartLine(snap, r.currency)
		if err != nil {
			return domain.Cart{}, fmt.Errorf("docToCartLine: %w", err)
		}
		cart.Lines = append(cart.Lines, line)
	}

	return cart, nil
}

// watch delivers the full result set of q on every snapshot until ctx is done.
func watch(ctx context.Context, q firestore.Query, emit func([]*firestore.DocumentSnapshot) error) error {
	it := q.Snapshots(ctx)
	defer it.Stop()

	for {
		qs, err := it.Next()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, iterator.Done) {
				return nil
			}
			return fmt.Errorf("snapshots.Next: %w", err)
		}

		snaps, err := qs.Documents.GetAll()
		if err != nil {
			return fmt.Errorf("snapshot.Documents: %w", err)
		}

		if err := emit(snaps); err != nil {
			return err
		}
	}
}
