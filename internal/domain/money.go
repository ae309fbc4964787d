package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

type Money struct {
	Amount   decimal.Decimal
	Currency currency.Unit
}

func NewMoney(amount decimal.Decimal, unit currency.Unit) Money {
	return Money{Amount: amount, Currency: unit}
}

// Add sums two amounts of the same currency. A zero Money adopts the other currency.
func (m Money) Add(other Money) (Money, error) {
	if m.Currency == (currency.Unit{}) {
		return other, nil
	}
	if other.Currency != (currency.Unit{}) && m.Currency != other.Currency {
		return Money{}, fmt.Errorf("currency mismatch: %s != %s", m.Currency, other.Currency)
	}

	return Money{Amount: m.Amount.Add(other.Amount), Currency: m.Currency}, nil
}

func (m Money) Mul(quantity int) Money {
	return Money{Amount: m.Amount.Mul(decimal.NewFromInt(int64(quantity))), Currency: m.Currency}
}

// String renders the amount with exactly two decimals.
func (m Money) String() string {
	return m.Amount.StringFixed(2)
}
