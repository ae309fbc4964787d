package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/db"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/nikolayk812/storefront/internal/subscription"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

const productsChannel = "products_changed"

type productRepository struct {
	q    *db.Queries
	pool *pgxpool.Pool
}

func NewProduct(pool *pgxpool.Pool) port.ProductRepository {
	return &productRepository{
		q:    db.New(pool),
		pool: pool,
	}
}

func (r *productRepository) CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	if p.Name == "" {
		return domain.Product{}, fmt.Errorf("name is empty")
	}

	row, err := r.q.CreateProduct(ctx, db.CreateProductParams{
		Name:          p.Name,
		Description:   p.Description,
		PriceAmount:   p.Price.Amount,
		PriceCurrency: p.Price.Currency.String(),
		Type:          p.Type,
		Size:          p.Size,
		Image:         p.Image,
	})
	if err != nil {
		return domain.Product{}, fmt.Errorf("q.CreateProduct: %w", err)
	}

	created, err := mapProductToDomain(row)
	if err != nil {
		return domain.Product{}, fmt.Errorf("mapProductToDomain: %w", err)
	}

	return created, nil
}

func (r *productRepository) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	if id == "" {
		return domain.Product{}, fmt.Errorf("id is empty")
	}

	row, err := r.q.GetProduct(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Product{}, domain.ErrProductNotFound
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("q.GetProduct: %w", err)
	}

	p, err := mapProductToDomain(row)
	if err != nil {
		return domain.Product{}, fmt.Errorf("mapProductToDomain: %w", err)
	}

	return p, nil
}

func (r *productRepository) ListProducts(ctx context.Context, filter domain.Filter) ([]domain.Product, error) {
	rows, err := r.q.ListProducts(ctx, mapFilterToParams(filter))
	if err != nil {
		return nil, fmt.Errorf("q.ListProducts: %w", err)
	}

	products, err := mapProductsToDomain(rows)
	if err != nil {
		return nil, fmt.Errorf("mapProductsToDomain: %w", err)
	}

	return products, nil
}

func (r *productRepository) WatchProducts(ctx context.Context, filter domain.Filter, onChange func([]domain.Product)) (port.Subscription, error) {
	emit := func(ctx context.Context) error {
		products, err := r.ListProducts(ctx, filter)
		if err != nil {
			return fmt.Errorf("r.ListProducts: %w", err)
		}
		onChange(products)
		return nil
	}

	matchAll := func(string) bool { return true }

	return subscription.Start(ctx, func(ctx context.Context) error {
		return listen(ctx, r.pool, productsChannel, matchAll, emit)
	}), nil
}

func mapFilterToParams(f domain.Filter) db.ListProductsParams {
	var params db.ListProductsParams

	if f.Type != nil {
		params.Type = pgtype.Text{String: *f.Type, Valid: true}
	}
	if f.Size != nil {
		params.Size = pgtype.Text{String: *f.Size, Valid: true}
	}
	if f.MaxPrice != nil {
		params.MaxPrice = decimal.NewNullDecimal(*f.MaxPrice)
	}

	return params
}

func mapProductToDomain(row db.Product) (domain.Product, error) {
	parsedCurrency, err := currency.ParseISO(row.PriceCurrency)
	if err != nil {
		return domain.Product{}, fmt.Errorf("currency[%s] is not valid: %w", row.PriceCurrency, err)
	}

	p := domain.Product{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		Price:       domain.Money{Amount: row.PriceAmount, Currency: parsedCurrency},
		Type:        row.Type,
		Size:        row.Size,
		Image:       row.Image,
	}
	if row.CreatedAt.Valid {
		p.CreatedAt = row.CreatedAt.Time
	}

	return p, nil
}

func mapProductsToDomain(rows []db.Product) ([]domain.Product, error) {
	var products []domain.Product

	for _, row := range rows {
		p, err := mapProductToDomain(row)
		if err != nil {
			return nil, fmt.Errorf("mapProductToDomain: %w", err)
		}

		products = append(products, p)
	}

	return products, nil
}
