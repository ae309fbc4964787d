package cart_test

import (
	"context"
	"errors"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/nikolayk812/storefront/internal/cart"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/memstore"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/text/currency"
)

type synchronizerSuite struct {
	suite.Suite

	repo    port.CartRepository
	session domain.Session
	sync    *cart.Synchronizer
}

func TestSynchronizerSuite(t *testing.T) {
	suite.Run(t, new(synchronizerSuite))
}

func (suite *synchronizerSuite) SetupTest() {
	suite.repo = memstore.New().Carts()
	suite.session = domain.Session{UserID: gofakeit.UUID()}

	var err error
	suite.sync, err = cart.NewSynchronizer(suite.repo, suite.session)
	suite.Require().NoError(err)
}

func (suite *synchronizerSuite) TestAddTwiceIncrements() {
	ctx := suite.T().Context()
	snapshot := snapshotOf("p1", "Remera", 10)

	_, err := suite.sync.AddOrIncrement(ctx, snapshot)
	suite.Require().NoError(err)

	changed := snapshot
	changed.Name = "Remera nueva"

	line, err := suite.sync.AddOrIncrement(ctx, changed)
	suite.Require().NoError(err)

	suite.Equal(2, line.Quantity)
	suite.Equal("Remera", line.Name)
}

func (suite *synchronizerSuite) TestSetQuantity() {
	ctx := suite.T().Context()

	_, err := suite.sync.AddOrIncrement(ctx, snapshotOf("p1", "Remera", 10))
	suite.Require().NoError(err)

	tests := []struct {
		name        string
		productID   string
		quantity    int
		wantDisplay int
		wantStored  int
		wantError   error
	}{
		{name: "positive quantity overwrites: ok", productID: "p1", quantity: 4, wantDisplay: 4, wantStored: 4},
		{name: "zero resets display and persists nothing: ok", productID: "p1", quantity: 0, wantDisplay: 1, wantStored: 4},
		{name: "negative resets display and persists nothing: ok", productID: "p1", quantity: -3, wantDisplay: 1, wantStored: 4},
		{name: "absent line: error", productID: "p2", quantity: 2, wantDisplay: 2, wantStored: 4, wantError: domain.ErrLineNotFound},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			display, err := suite.sync.SetQuantity(ctx, tt.productID, tt.quantity)
			if tt.wantError != nil {
				suite.ErrorIs(err, tt.wantError)
			} else {
				suite.NoError(err)
			}
			suite.Equal(tt.wantDisplay, display)

			c, err := suite.sync.Snapshot(ctx)
			suite.Require().NoError(err)

			line, ok := c.Line("p1")
			suite.Require().True(ok)
			suite.Equal(tt.wantStored, line.Quantity)
		})
	}
}

func (suite *synchronizerSuite) TestRemoveThenAdd() {
	ctx := suite.T().Context()
	snapshot := snapshotOf("p1", "Remera", 10)

	for range 3 {
		_, err := suite.sync.AddOrIncrement(ctx, snapshot)
		suite.Require().NoError(err)
	}

	suite.Require().NoError(suite.sync.Remove(ctx, "p1"))
	suite.Require().NoError(suite.sync.Remove(ctx, "p1"))

	line, err := suite.sync.AddOrIncrement(ctx, snapshot)
	suite.Require().NoError(err)
	suite.Equal(1, line.Quantity)
}

func (suite *synchronizerSuite) TestTotals() {
	ctx := suite.T().Context()

	a := snapshotOf("a", "Remera", 10)
	b := snapshotOf("b", "Pantalón", 15)

	for _, s := range []domain.LineSnapshot{a, a, b} {
		_, err := suite.sync.AddOrIncrement(ctx, s)
		suite.Require().NoError(err)
	}

	c, err := suite.sync.Snapshot(ctx)
	suite.Require().NoError(err)

	totals, err := c.Totals()
	suite.Require().NoError(err)

	suite.Equal(3, totals.ItemCount)
	suite.Equal("35.00", totals.Formatted())
}

func (suite *synchronizerSuite) TestClear() {
	ctx := suite.T().Context()

	for _, id := range []string{"a", "b"} {
		_, err := suite.sync.AddOrIncrement(ctx, snapshotOf(id, id, 1))
		suite.Require().NoError(err)
	}

	n, err := suite.sync.Clear(ctx)
	suite.Require().NoError(err)
	suite.Equal(2, n)

	c, err := suite.sync.Snapshot(ctx)
	suite.Require().NoError(err)
	suite.True(c.IsEmpty())
}

func (suite *synchronizerSuite) TestCheckoutWithoutPublisher() {
	ctx := suite.T().Context()

	_, err := suite.sync.Checkout(ctx)
	suite.ErrorIs(err, domain.ErrEmptyCart)

	_, err = suite.sync.AddOrIncrement(ctx, snapshotOf("a", "Remera", 10))
	suite.Require().NoError(err)

	checkedOut, err := suite.sync.Checkout(ctx)
	suite.Require().NoError(err)
	suite.Len(checkedOut.Lines, 1)

	c, err := suite.sync.Snapshot(ctx)
	suite.Require().NoError(err)
	suite.True(c.IsEmpty())
}

func (suite *synchronizerSuite) TestCheckoutPublishes() {
	ctx := suite.T().Context()
	publisher := &recordingPublisher{}

	sync, err := cart.NewSynchronizer(suite.repo, suite.session, cart.WithPublisher(publisher))
	suite.Require().NoError(err)

	_, err = sync.Checkout(ctx)
	suite.ErrorIs(err, domain.ErrEmptyCart)
	suite.Empty(publisher.carts)

	_, err = sync.AddOrIncrement(ctx, snapshotOf("a", "Remera", 10))
	suite.Require().NoError(err)

	publisher.err = errors.New("broker down")
	_, err = sync.Checkout(ctx)
	suite.ErrorContains(err, "broker down")

	c, err := sync.Snapshot(ctx)
	suite.Require().NoError(err)
	suite.False(c.IsEmpty(), "cart survives a failed publish")

	publisher.err = nil
	_, err = sync.Checkout(ctx)
	suite.Require().NoError(err)

	suite.Require().Len(publisher.carts, 1)
	suite.Equal("10.00", publisher.totals[0].Formatted())

	c, err = sync.Snapshot(ctx)
	suite.Require().NoError(err)
	suite.True(c.IsEmpty())
}

func (suite *synchronizerSuite) TestSubscribe() {
	ctx := suite.T().Context()

	carts := make(chan domain.Cart, 8)
	sub, err := suite.sync.Subscribe(ctx, func(c domain.Cart) { carts <- c })
	suite.Require().NoError(err)

	first := <-carts
	suite.True(first.IsEmpty())

	_, err = suite.sync.AddOrIncrement(ctx, snapshotOf("a", "Remera", 10))
	suite.Require().NoError(err)

	second := <-carts
	suite.Len(second.Lines, 1)

	suite.NoError(sub.Stop())
}

func TestNewSynchronizerWithoutSession(t *testing.T) {
	_, err := cart.NewSynchronizer(memstore.New().Carts(), domain.Session{})
	require.ErrorIs(t, err, domain.ErrNoSession)
}

type recordingPublisher struct {
	err    error
	carts  []domain.Cart
	totals []domain.Totals
}

func (p *recordingPublisher) PublishCartCheckedOut(_ context.Context, c domain.Cart, t domain.Totals) error {
	if p.err != nil {
		return p.err
	}
	p.carts = append(p.carts, c)
	p.totals = append(p.totals, t)
	return nil
}

func snapshotOf(id, name string, price int64) domain.LineSnapshot {
	return domain.LineSnapshot{
		ProductID: id,
		Name:      name,
		Price:     domain.NewMoney(decimal.NewFromInt(price), currency.MustParseISO("ARS")),
	}
}

