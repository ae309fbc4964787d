package db

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID            string
	Name          string
	Description   string
	PriceAmount   decimal.Decimal
	PriceCurrency string
	Type          string
	Size          string
	Image         string
	CreatedAt     pgtype.Timestamptz
}

type CartLine struct {
	OwnerID       string
	ProductID     string
	Quantity      int32
	Name          string
	PriceAmount   decimal.Decimal
	PriceCurrency string
	Image         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
