package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

const productColumns = `id, name, description, price_amount, price_currency, type, size, image, created_at`

const createProduct = `
INSERT INTO products (name, description, price_amount, price_currency, type, size, image)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + productColumns

type CreateProductParams struct {
	Name          string
	Description   string
	PriceAmount   decimal.Decimal
	PriceCurrency string
	Type          string
	Size          string
	Image         string
}

func (q *Queries) CreateProduct(ctx context.Context, arg CreateProductParams) (Product, error) {
	row := q.db.QueryRow(ctx, createProduct,
		arg.Name,
		arg.Description,
		arg.PriceAmount,
		arg.PriceCurrency,
		arg.Type,
		arg.Size,
		arg.Image,
	)
	return scanProduct(row)
}

const getProduct = `SELECT ` + productColumns + ` FROM products WHERE id = $1`

func (q *Queries) GetProduct(ctx context.Context, id string) (Product, error) {
	row := q.db.QueryRow(ctx, getProduct, id)
	return scanProduct(row)
}

const listProducts = `
SELECT ` + productColumns + `
FROM products
WHERE ($1::TEXT IS NULL OR type = $1)
  AND ($2::TEXT IS NULL OR size = $2)
  AND ($3::NUMERIC IS NULL OR price_amount <= $3)`

type ListProductsParams struct {
	Type     pgtype.Text
	Size     pgtype.Text
	MaxPrice decimal.NullDecimal
}

func (q *Queries) ListProducts(ctx context.Context, arg ListProductsParams) ([]Product, error) {
	rows, err := q.db.Query(ctx, listProducts, arg.Type, arg.Size, arg.MaxPrice)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Product
	for rows.Next() {
		i, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row scanner) (Product, error) {
	var i Product
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Description,
		&i.PriceAmount,
		&i.PriceCurrency,
		&i.Type,
		&i.Size,
		&i.Image,
		&i.CreatedAt,
	)
	return i, err
}
