package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/db"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/nikolayk812/storefront/internal/subscription"
	"golang.org/x/text/currency"
)

const cartLinesChannel = "cart_lines_changed"

type cartRepository struct {
	q    *db.Queries
	pool *pgxpool.Pool
}

func NewCart(pool *pgxpool.Pool) port.CartRepository {
	return &cartRepository{
		q:    db.New(pool),
		pool: pool,
	}
}

func NewCartWithTx(tx pgx.Tx) port.CartRepository {
	return &cartRepository{
		q:    db.New(tx),
		pool: nil, // use provided transaction instead
	}
}

func (r *cartRepository) GetCart(ctx context.Context, ownerID string) (domain.Cart, error) {
	if ownerID == "" {
		return domain.Cart{}, fmt.Errorf("ownerID is empty")
	}

	rows, err := r.q.GetCart(ctx, ownerID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("q.GetCart: %w", err)
	}

	lines, err := mapCartLinesToDomain(rows)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("mapCartLinesToDomain: %w", err)
	}

	return domain.Cart{
		OwnerID: ownerID,
		Lines:   lines,
	}, nil
}

func (r *cartRepository) IncrementLine(ctx context.Context, ownerID string, snapshot domain.LineSnapshot) (domain.CartLine, error) {
	if ownerID == "" {
		return domain.CartLine{}, fmt.Errorf("ownerID is empty")
	}
	if snapshot.ProductID == "" {
		return domain.CartLine{}, fmt.Errorf("productID is empty")
	}

	row, err := r.q.IncrementCartLine(ctx, db.IncrementCartLineParams{
		OwnerID:       ownerID,
		ProductID:     snapshot.ProductID,
		Name:          snapshot.Name,
		PriceAmount:   snapshot.Price.Amount,
		PriceCurrency: snapshot.Price.Currency.String(),
		Image:         snapshot.Image,
	})
	if err != nil {
		return domain.CartLine{}, fmt.Errorf("q.IncrementCartLine: %w", err)
	}

	line, err := mapCartLineToDomain(row)
	if err != nil {
		return domain.CartLine{}, fmt.Errorf("mapCartLineToDomain: %w", err)
	}

	return line, nil
}

func (r *cartRepository) SetQuantity(ctx context.Context, ownerID, productID string, quantity int) (bool, error) {
	if ownerID == "" {
		return false, fmt.Errorf("ownerID is empty")
	}
	if !domain.ValidQuantity(quantity) {
		return false, domain.ErrInvalidQuantity
	}

	rowsAffected, err := r.q.SetCartLineQuantity(ctx, db.SetCartLineQuantityParams{
		OwnerID:   ownerID,
		ProductID: productID,
		Quantity:  int32(quantity),
	})
	if err != nil {
		return false, fmt.Errorf("q.SetCartLineQuantity: %w", err)
	}

	return rowsAffected > 0, nil
}

func (r *cartRepository) DeleteLine(ctx context.Context, ownerID, productID string) (bool, error) {
	if ownerID == "" {
		return false, fmt.Errorf("ownerID is empty")
	}

	rowsAffected, err := r.q.DeleteCartLine(ctx, db.DeleteCartLineParams{
		OwnerID:   ownerID,
		ProductID: productID,
	})
	if err != nil {
		return false, fmt.Errorf("q.DeleteCartLine: %w", err)
	}

	return rowsAffected > 0, nil
}

func (r *cartRepository) Clear(ctx context.Context, ownerID string) (int, error) {
	if ownerID == "" {
		return 0, fmt.Errorf("ownerID is empty")
	}

	rowsAffected, err := r.q.ClearCart(ctx, ownerID)
	if err != nil {
		return 0, fmt.Errorf("q.ClearCart: %w", err)
	}

	return int(rowsAffected), nil
}

// TakeCart reads and clears the cart in one transaction.
func (r *cartRepository) TakeCart(ctx context.Context, ownerID string) (domain.Cart, error) {
	if ownerID == "" {
		return domain.Cart{}, fmt.Errorf("ownerID is empty")
	}

	return withTx(ctx, r.pool, r.q, func(q *db.Queries) (domain.Cart, error) {
		rows, err := q.GetCart(ctx, ownerID)
		if err != nil {
			return domain.Cart{}, fmt.Errorf("q.GetCart: %w", err)
		}

		lines, err := mapCartLinesToDomain(rows)
		if err != nil {
			return domain.Cart{}, fmt.Errorf("mapCartLinesToDomain: %w", err)
		}

		if _, err := q.ClearCart(ctx, ownerID); err != nil {
			return domain.Cart{}, fmt.Errorf("q.ClearCart: %w", err)
		}

		return domain.Cart{OwnerID: ownerID, Lines: lines}, nil
	})
}

func (r *cartRepository) WatchCart(ctx context.Context, ownerID string, onChange func(domain.Cart)) (port.Subscription, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("ownerID is empty")
	}
	if r.pool == nil {
		return nil, fmt.Errorf("watch is not supported inside a transaction")
	}

	emit := func(ctx context.Context) error {
		cart, err := r.GetCart(ctx, ownerID)
		if err != nil {
			return fmt.Errorf("r.GetCart: %w", err)
		}
		onChange(cart)
		return nil
	}

	matchOwner := func(payload string) bool {
		return payload == ownerID
	}

	return subscription.Start(ctx, func(ctx context.Context) error {
		return listen(ctx, r.pool, cartLinesChannel, matchOwner, emit)
	}), nil
}

func mapCartLineToDomain(row db.CartLine) (domain.CartLine, error) {
	parsedCurrency, err := currency.ParseISO(row.PriceCurrency)
	if err != nil {
		return domain.CartLine{}, fmt.Errorf("currency[%s] is not valid: %w", row.PriceCurrency, err)
	}

	return domain.CartLine{
		ProductID: row.ProductID,
		Quantity:  int(row.Quantity),
		Name:      row.Name,
		Price:     domain.Money{Amount: row.PriceAmount, Currency: parsedCurrency},
		Image:     row.Image,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

func mapCartLinesToDomain(rows []db.CartLine) ([]domain.CartLine, error) {
	var lines []domain.CartLine

	for _, row := range rows {
		line, err := mapCartLineToDomain(row)
		if err != nil {
			return nil, fmt.Errorf("mapCartLineToDomain: %w", err)
		}

		lines = append(lines, line)
	}

	return lines, nil
}
