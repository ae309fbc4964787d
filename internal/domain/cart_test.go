package domain_test

import (
	"testing"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/currency"
)

func TestCartTotals(t *testing.T) {
	tests := []struct {
		name          string
		lines         []domain.CartLine
		wantCount     int
		wantFormatted string
		wantError     bool
	}{
		{
			name: "two lines: ok",
			lines: []domain.CartLine{
				{ProductID: "a", Quantity: 2, Price: ars(10)},
				{ProductID: "b", Quantity: 3, Price: ars(5)},
			},
			wantCount:     5,
			wantFormatted: "35.00",
		},
		{
			name: "fractional prices: ok",
			lines: []domain.CartLine{
				{ProductID: "a", Quantity: 3, Price: domain.NewMoney(decimal.RequireFromString("0.10"), currency.MustParseISO("ARS"))},
			},
			wantCount:     3,
			wantFormatted: "0.30",
		},
		{
			name:          "empty cart: ok",
			wantFormatted: "0.00",
		},
		{
			name: "mixed currencies: error",
			lines: []domain.CartLine{
				{ProductID: "a", Quantity: 1, Price: ars(10)},
				{ProductID: "b", Quantity: 1, Price: domain.NewMoney(decimal.NewFromInt(1), currency.USD)},
			},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			totals, err := domain.Cart{OwnerID: "u1", Lines: tt.lines}.Totals()
			if tt.wantError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			assert.Equal(t, tt.wantCount, totals.ItemCount)
			assert.Equal(t, tt.wantFormatted, totals.Formatted())
		})
	}
}

func TestCartLine(t *testing.T) {
	c := domain.Cart{Lines: []domain.CartLine{{ProductID: "a", Quantity: 1}}}

	line, ok := c.Line("a")
	assert.True(t, ok)
	assert.Equal(t, 1, line.Quantity)

	_, ok = c.Line("b")
	assert.False(t, ok)
}

func TestNewProductValidate(t *testing.T) {
	assert.NoError(t, domain.NewProduct{Name: "Remera", Price: ars(0)}.Validate())
	assert.ErrorIs(t, domain.NewProduct{Name: "  ", Price: ars(1)}.Validate(), domain.ErrInvalidProduct)
	assert.ErrorIs(t, domain.NewProduct{Name: "Remera", Price: ars(-1)}.Validate(), domain.ErrInvalidProduct)
}

func TestGeneration(t *testing.T) {
	assert.False(t, domain.Generated("hola").IsFallback())
	assert.True(t, domain.Fallback("Calidad y estilo en cada prenda.").IsFallback())
	assert.Equal(t, "fallback", domain.SourceFallback.String())
}

func TestValidQuantity(t *testing.T) {
	tests := []struct {
		quantity int
		want     bool
	}{
		{quantity: -1, want: false},
		{quantity: 0, want: false},
		{quantity: 1, want: true},
		{quantity: domain.MaxQuantity, want: true},
		{quantity: domain.MaxQuantity + 1, want: false},
		{quantity: 1<<32 + 1, want: false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, domain.ValidQuantity(tt.quantity), "quantity %d", tt.quantity)
	}
}
