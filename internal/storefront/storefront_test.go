package storefront_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nikolayk812/storefront/internal/auth"
	"github.com/nikolayk812/storefront/internal/catalog"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/memstore"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/nikolayk812/storefront/internal/storefront"
	"github.com/nikolayk812/storefront/internal/textgen"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/goleak"
	"golang.org/x/text/currency"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type storefrontSuite struct {
	suite.Suite

	store     *memstore.Store
	sessions  *auth.Sessions
	carts     *failingCarts
	generator *fakeGenerator
	sf        *storefront.Storefront
}

func TestStorefrontSuite(t *testing.T) {
	suite.Run(t, new(storefrontSuite))
}

func (suite *storefrontSuite) SetupTest() {
	suite.store = memstore.New()
	suite.carts = &failingCarts{CartRepository: suite.store.Carts()}
	suite.generator = &fakeGenerator{}

	suite.sessions = auth.NewSessions(fakeAuthenticator{}, nil)
	svc := catalog.NewService(suite.store.Products(), catalog.WithSloganWriter(fakeSlogans{}))

	var err error
	suite.sf, err = storefront.New(storefront.Deps{
		Sessions:  suite.sessions,
		Carts:     suite.carts,
		Catalog:   svc,
		Generator: suite.generator,
	})
	suite.Require().NoError(err)
}

func (suite *storefrontSuite) TearDownTest() {
	suite.NoError(suite.sf.Close())
}

func (suite *storefrontSuite) start() {
	_, err := suite.sf.Start(suite.T().Context(), "")
	suite.Require().NoError(err)

	c := next[storefront.CartChanged](suite.T(), suite.sf.Notifications(), nil)
	suite.True(c.Cart.IsEmpty())
}

func (suite *storefrontSuite) TestCartIntentsWithoutSession() {
	ctx := suite.T().Context()

	intents := []storefront.Intent{
		storefront.AddToCart{Product: product("a", "Remera", 10)},
		storefront.ChangeQuantity{ProductID: "a", Quantity: 2},
		storefront.RemoveFromCart{ProductID: "a"},
		storefront.Checkout{},
	}

	for _, in := range intents {
		err := suite.sf.Dispatch(ctx, in)
		suite.ErrorIs(err, domain.ErrNoSession)

		msg := next[storefront.Message](suite.T(), suite.sf.Notifications(), nil)
		suite.Equal(storefront.MsgSignInRequired, msg.Text)
	}
}

func (suite *storefrontSuite) TestAddTwiceAndTotals() {
	suite.start()
	ctx := suite.T().Context()

	remera := product("a", "Remera", 10)
	pantalon := product("b", "Pantalón", 15)

	for _, p := range []domain.Product{remera, remera, pantalon} {
		suite.Require().NoError(suite.sf.Dispatch(ctx, storefront.AddToCart{Product: p}))
	}

	c := next(suite.T(), suite.sf.Notifications(), func(c storefront.CartChanged) bool {
		return c.Totals.ItemCount == 3
	})

	line, ok := c.Cart.Line("a")
	suite.Require().True(ok)
	suite.Equal(2, line.Quantity)
	suite.Equal("35.00", c.Totals.Formatted())
}

func (suite *storefrontSuite) TestChangeQuantityBelowOne() {
	suite.start()
	ctx := suite.T().Context()

	suite.Require().NoError(suite.sf.Dispatch(ctx, storefront.AddToCart{Product: product("a", "Remera", 10)}))
	suite.Require().NoError(suite.sf.Dispatch(ctx, storefront.ChangeQuantity{ProductID: "a", Quantity: 3}))
	suite.Require().NoError(suite.sf.Dispatch(ctx, storefront.ChangeQuantity{ProductID: "a", Quantity: 0}))

	reset := next[storefront.QuantityReset](suite.T(), suite.sf.Notifications(), nil)
	suite.Equal(storefront.QuantityReset{ProductID: "a", Display: 1}, reset)

	c, err := suite.store.Carts().GetCart(ctx, anonymousUserID)
	suite.Require().NoError(err)
	line, ok := c.Line("a")
	suite.Require().True(ok)
	suite.Equal(3, line.Quantity)
}

func (suite *storefrontSuite) TestSignOutStopsCart() {
	suite.start()
	ctx := suite.T().Context()

	suite.sessions.SignOut()

	_, err := suite.store.Carts().IncrementLine(ctx, anonymousUserID, domain.SnapshotOf(product("a", "Remera", 10)))
	suite.Require().NoError(err)

	err = suite.sf.Dispatch(ctx, storefront.AddToCart{Product: product("b", "Pantalón", 15)})
	suite.ErrorIs(err, domain.ErrNoSession)

	for {
		select {
		case n := <-suite.sf.Notifications():
			_, isCart := n.(storefront.CartChanged)
			suite.False(isCart, "cart notification after sign out")
			if msg, ok := n.(storefront.Message); ok {
				suite.Equal(storefront.MsgSignInRequired, msg.Text)
				return
			}
		case <-time.After(5 * time.Second):
			suite.Fail("no sign in message")
			return
		}
	}
}

func (suite *storefrontSuite) TestStorageFailure() {
	suite.start()
	ctx := suite.T().Context()

	suite.carts.fail.Store(true)

	err := suite.sf.Dispatch(ctx, storefront.AddToCart{Product: product("a", "Remera", 10)})
	suite.Error(err)

	msg := next[storefront.Message](suite.T(), suite.sf.Notifications(), nil)
	suite.Equal(storefront.MsgGenericError, msg.Text)
}

func (suite *storefrontSuite) TestCheckout() {
	suite.start()
	ctx := suite.T().Context()

	err := suite.sf.Dispatch(ctx, storefront.Checkout{})
	suite.ErrorIs(err, domain.ErrEmptyCart)

	msg := next[storefront.Message](suite.T(), suite.sf.Notifications(), nil)
	suite.Equal(storefront.MsgEmptyCart, msg.Text)

	suite.Require().NoError(suite.sf.Dispatch(ctx, storefront.AddToCart{Product: product("a", "Remera", 10)}))
	suite.Require().NoError(suite.sf.Dispatch(ctx, storefront.Checkout{}))

	done := next[storefront.CheckedOut](suite.T(), suite.sf.Notifications(), nil)
	suite.Equal("10.00", done.Totals.Formatted())

	c, err := suite.store.Carts().GetCart(ctx, anonymousUserID)
	suite.Require().NoError(err)
	suite.True(c.IsEmpty())
}

func (suite *storefrontSuite) TestRequestSize() {
	ctx := suite.T().Context()

	tests := []struct {
		name      string
		intent    storefront.RequestSize
		wantCalls int32
	}{
		{name: "missing weight shows message: ok", intent: storefront.RequestSize{Height: "170", BodyShape: "atlético"}, wantCalls: 0},
		{name: "blank shape shows message: ok", intent: storefront.RequestSize{Height: "170", Weight: "70", BodyShape: "  "}, wantCalls: 0},
		{name: "complete form generates: ok", intent: storefront.RequestSize{Height: "170", Weight: "70", BodyShape: "atlético"}, wantCalls: 1},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			suite.generator.calls.Store(0)

			suite.Require().NoError(suite.sf.Dispatch(ctx, tt.intent))

			if tt.wantCalls == 0 {
				msg := next[storefront.Message](suite.T(), suite.sf.Notifications(), nil)
				suite.Equal(storefront.MsgIncompleteSize, msg.Text)
			} else {
				ready := next[storefront.SizeReady](suite.T(), suite.sf.Notifications(), nil)
				suite.Equal("Talle M", ready.Generation.Text)
			}
			suite.Equal(tt.wantCalls, suite.generator.calls.Load())
		})
	}
}

func (suite *storefrontSuite) TestChangeFilter() {
	ctx := suite.T().Context()

	for _, np := range []domain.NewProduct{
		{Name: "Remera", Type: "shirt", Size: "M", Price: ars(20)},
		{Name: "Pantalón", Type: "pants", Size: "L", Price: ars(40)},
	} {
		suite.Require().NoError(suite.sf.Dispatch(ctx, storefront.CreateProduct{Product: np}))
		next[storefront.ProductCreated](suite.T(), suite.sf.Notifications(), nil)
	}

	suite.Require().NoError(suite.sf.Dispatch(ctx, storefront.ChangeFilter{}))
	all := next[storefront.CatalogChanged](suite.T(), suite.sf.Notifications(), nil)
	suite.Len(all.Products, 2)
	suite.Equal("Pantalón", all.Products[0].Name)

	suite.Require().NoError(suite.sf.Dispatch(ctx, storefront.ChangeFilter{Type: "shirt", MaxPrice: "30"}))
	shirts := next[storefront.CatalogChanged](suite.T(), suite.sf.Notifications(), nil)
	suite.Require().Len(shirts.Products, 1)
	suite.Equal("Remera", shirts.Products[0].Name)

	err := suite.sf.Dispatch(ctx, storefront.ChangeFilter{MaxPrice: "barato"})
	suite.Error(err)
	msg := next[storefront.Message](suite.T(), suite.sf.Notifications(), nil)
	suite.Equal(storefront.MsgInvalidFilter, msg.Text)
}

func (suite *storefrontSuite) TestCreateInvalidProduct() {
	err := suite.sf.Dispatch(suite.T().Context(), storefront.CreateProduct{Product: domain.NewProduct{Price: ars(1)}})
	suite.ErrorIs(err, domain.ErrInvalidProduct)

	msg := next[storefront.Message](suite.T(), suite.sf.Notifications(), nil)
	suite.Equal(storefront.MsgInvalidProduct, msg.Text)
}

func (suite *storefrontSuite) TestRequestSlogans() {
	products := []domain.Product{product("a", "Remera", 10), product("b", "Pantalón", 15)}

	suite.Require().NoError(suite.sf.Dispatch(suite.T().Context(), storefront.RequestSlogans{Products: products}))

	got := map[string]string{}
	for range products {
		s := next[storefront.SloganReady](suite.T(), suite.sf.Notifications(), nil)
		got[s.ProductID] = s.Generation.Text
	}

	suite.Equal(map[string]string{"a": "Remera con estilo", "b": "Pantalón con estilo"}, got)
}

func TestNewValidatesDeps(t *testing.T) {
	_, err := storefront.New(storefront.Deps{})
	require.Error(t, err)
}

const anonymousUserID = "anon-1"

type fakeAuthenticator struct{}

func (fakeAuthenticator) VerifyToken(_ context.Context, _ string) (domain.Session, error) {
	return domain.Session{}, errors.New("tokens are not supported")
}

func (fakeAuthenticator) CreateAnonymous(_ context.Context) (domain.Session, error) {
	return domain.Session{UserID: anonymousUserID, Anonymous: true}, nil
}

type failingCarts struct {
	port.CartRepository
	fail atomic.Bool
}

func (f *failingCarts) IncrementLine(ctx context.Context, ownerID string, s domain.LineSnapshot) (domain.CartLine, error) {
	if f.fail.Load() {
		return domain.CartLine{}, errors.New("store unavailable")
	}
	return f.CartRepository.IncrementLine(ctx, ownerID, s)
}

type fakeGenerator struct {
	calls atomic.Int32
}

func (f *fakeGenerator) SizeRecommendation(_ context.Context, _ textgen.SizeParams) domain.Generation {
	f.calls.Add(1)
	return domain.Generated("Talle M")
}

type fakeSlogans struct{}

func (fakeSlogans) Slogan(_ context.Context, name string) domain.Generation {
	return domain.Generated(name + " con estilo")
}

func product(id, name string, price int64) domain.Product {
	return domain.Product{ID: id, Name: name, Price: ars(price)}
}

func ars(amount int64) domain.Money {
	return domain.NewMoney(decimal.NewFromInt(amount), currency.MustParseISO("ARS"))
}

// next returns the first notification of type T accepted by cond, skipping everything else.
func next[T storefront.Notification](t *testing.T, ch <-chan storefront.Notification, cond func(T) bool) T {
	t.Helper()

	timeout := time.After(5 * time.Second)
	for {
		select {
		case n := <-ch:
			if v, ok := n.(T); ok && (cond == nil || cond(v)) {
				return v
			}
		case <-timeout:
			var zero T
			t.Fatalf("no %T notification", zero)
			return zero
		}
	}
}

