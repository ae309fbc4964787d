package db

import (
	"context"

	"github.com/shopspring/decimal"
)

const cartLineColumns = `owner_id, product_id, quantity, name, price_amount, price_currency, image, created_at, updated_at`

const getCart = `
SELECT ` + cartLineColumns + `
FROM cart_lines
WHERE owner_id = $1
ORDER BY created_at, product_id`

func (q *Queries) GetCart(ctx context.Context, ownerID string) ([]CartLine, error) {
	rows, err := q.db.Query(ctx, getCart, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []CartLine
	for rows.Next() {
		i, err := scanCartLine(rows)
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

const incrementCartLine = `
INSERT INTO cart_lines (owner_id, product_id, quantity, name, price_amount, price_currency, image)
VALUES ($1, $2, 1, $3, $4, $5, $6)
ON CONFLICT (owner_id, product_id) DO UPDATE
    SET quantity   = cart_lines.quantity + 1,
        updated_at = NOW()
RETURNING ` + cartLineColumns

type IncrementCartLineParams struct {
	OwnerID       string
	ProductID     string
	Name          string
	PriceAmount   decimal.Decimal
	PriceCurrency string
	Image         string
}

func (q *Queries) IncrementCartLine(ctx context.Context, arg IncrementCartLineParams) (CartLine, error) {
	row := q.db.QueryRow(ctx, incrementCartLine,
		arg.OwnerID,
		arg.ProductID,
		arg.Name,
		arg.PriceAmount,
		arg.PriceCurrency,
		arg.Image,
	)
	return scanCartLine(row)
}

const setCartLineQuantity = `
UPDATE cart_lines
SET quantity   = $3,
    updated_at = NOW()
WHERE owner_id = $1
  AND product_id = $2`

type SetCartLineQuantityParams struct {
	OwnerID   string
	ProductID string
	Quantity  int32
}

func (q *Queries) SetCartLineQuantity(ctx context.Context, arg SetCartLineQuantityParams) (int64, error) {
	result, err := q.db.Exec(ctx, setCartLineQuantity, arg.OwnerID, arg.ProductID, arg.Quantity)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const deleteCartLine = `DELETE FROM cart_lines WHERE owner_id = $1 AND product_id = $2`

type DeleteCartLineParams struct {
	OwnerID   string
	ProductID string
}

func (q *Queries) DeleteCartLine(ctx context.Context, arg DeleteCartLineParams) (int64, error) {
	result, err := q.db.Exec(ctx, deleteCartLine, arg.OwnerID, arg.ProductID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const clearCart = `DELETE FROM cart_lines WHERE owner_id = $1`

func (q *Queries) ClearCart(ctx context.Context, ownerID string) (int64, error) {
	result, err := q.db.Exec(ctx, clearCart, ownerID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

func scanCartLine(row scanner) (CartLine, error) {
	var i CartLine
	err := row.Scan(
		&i.OwnerID,
		&i.ProductID,
		&i.Quantity,
		&i.Name,
		&i.PriceAmount,
		&i.PriceCurrency,
		&i.Image,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}
