package repository_test

import (
	"context"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"golang.org/x/text/currency"
)

func startPostgres(ctx context.Context) (*postgres.PostgresContainer, string, error) {
	postgresContainer, err := postgres.Run(ctx, "postgres:17.6-alpine3.22",
		postgres.BasicWaitStrategies(),
		postgres.WithInitScripts(
			"../migrations/01_storefront.up.sql"),
	)
	if err != nil {
		return nil, "", fmt.Errorf("postgres.Run: %w", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", fmt.Errorf("pc.ConnectionString: %w", err)
	}

	return postgresContainer, connStr, nil
}

func randomSnapshot() domain.LineSnapshot {
	return domain.LineSnapshot{
		ProductID: gofakeit.UUID(),
		Name:      gofakeit.ProductName(),
		Price:     randomMoney(),
		Image:     gofakeit.URL(),
	}
}

func randomProduct() domain.Product {
	return domain.Product{
		Name:        gofakeit.ProductName(),
		Description: gofakeit.ProductDescription(),
		Price:       randomMoney(),
		Type:        gofakeit.RandomString([]string{"shirt", "pants", "dress"}),
		Size:        gofakeit.RandomString([]string{"S", "M", "L", "XL"}),
		Image:       gofakeit.URL(),
	}
}

func randomMoney() domain.Money {
	return domain.Money{
		Amount:   decimal.NewFromFloat(gofakeit.Price(1, 100)).Round(2),
		Currency: randomCurrency(),
	}
}

func randomCurrency() currency.Unit {
	var (
		result currency.Unit
		err    error
	)

	for {
		// tag is not a recognized currency
		result, err = currency.ParseISO(gofakeit.CurrencyShort())
		if err == nil {
			break
		}
	}

	return result
}

// waitFor returns the first value received on ch that satisfies cond.
func waitFor[T any](ch <-chan T, cond func(T) bool) (T, bool) {
	timeout := time.After(10 * time.Second)
	for {
		select {
		case v := <-ch:
			if cond(v) {
				return v, true
			}
		case <-timeout:
			var zero T
			return zero, false
		}
	}
}
