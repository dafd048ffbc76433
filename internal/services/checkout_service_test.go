package services

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/ramyradad1/lessence-monorepo-sub002/internal/checkout"
	"github.com/ramyradad1/lessence-monorepo-sub002/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type checkoutFixture struct {
	svc       *CheckoutService
	catalog   *fakeCatalog
	coupons   *fakeCoupons
	stock     *fakeStock
	sessions  *fakeSessions
	addresses *fakeAddresses
	orders    *fakeOrderCreator
	snap      *fakeSnap
}

func newCheckoutFixture() *checkoutFixture {
	f := &checkoutFixture{
		catalog:   newFakeCatalog(),
		coupons:   &fakeCoupons{byCode: map[string]*model.Coupon{}},
		stock:     &fakeStock{variant: map[uuid.UUID]int{}, legacy: map[string]int{}},
		sessions:  newFakeSessions(),
		addresses: newFakeAddresses(),
		orders:    &fakeOrderCreator{},
		snap:      &fakeSnap{},
	}
	pricing := NewPricingService(f.catalog, f.coupons)
	pricing.now = fixedNow
	f.svc = NewCheckoutService(
		pricing, f.stock, f.sessions, f.addresses, f.orders, f.snap,
		nil, zap.NewNop(),
	)
	return f
}

func (f *checkoutFixture) seedVariant(price string, stock int) (uuid.UUID, uuid.UUID) {
	productID, variantID := addVariantProduct(f.catalog, price, stock)
	f.stock.variant[variantID] = stock
	return productID, variantID
}

func TestCreateSessionRejectsEmptyCart(t *testing.T) {
	f := newCheckoutFixture()
	_, err := f.svc.CreateSession(context.Background(), SessionInput{
		Address: &model.Address{Line1: "1 Rue de la Paix"},
	})
	assert.ErrorIs(t, err, checkout.ErrEmptyCart)
}

func TestCreateSessionRejectsMissingAddress(t *testing.T) {
	f := newCheckoutFixture()
	productID, variantID := f.seedVariant("90.00", 3)
	_, err := f.svc.CreateSession(context.Background(), SessionInput{
		Lines: []checkout.Line{{ProductID: productID, VariantID: &variantID, Quantity: 1}},
	})
	assert.ErrorIs(t, err, checkout.ErrMissingAddress)
}

func TestCreateSessionInsufficientStockNamesShortfall(t *testing.T) {
	f := newCheckoutFixture()
	productID, variantID := f.seedVariant("90.00", 1)

	_, err := f.svc.CreateSession(context.Background(), SessionInput{
		Lines:   []checkout.Line{{ProductID: productID, VariantID: &variantID, Quantity: 2}},
		Address: &model.Address{Line1: "1 Rue de la Paix"},
	})

	var stockErr *checkout.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, variantID, *stockErr.VariantID)
	assert.Equal(t, 1, stockErr.Shortfall())

	// Advisory check only: no session and no provider call happened.
	assert.Nil(t, f.snap.req)
	assert.Empty(t, f.sessions.byRef)
}

func TestCreateSessionPersistsSnapshot(t *testing.T) {
	f := newCheckoutFixture()
	productID, variantID := f.seedVariant("90.00", 5)

	userID := uuid.New()
	result, err := f.svc.CreateSession(context.Background(), SessionInput{
		Lines:      []checkout.Line{{ProductID: productID, VariantID: &variantID, Quantity: 2}},
		Address:    &model.Address{FullName: "A. Customer", Line1: "1 Rue de la Paix", City: "Paris", Country: "FR"},
		UserID:     &userID,
		Email:      "a@example.com",
		SuccessURL: "https://shop.test/done",
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, strings.HasPrefix(result.SessionID, "LSX-"))
	assert.Contains(t, result.URL, "midtrans.com")

	sess := f.sessions.byRef[result.SessionID]
	require.NotNil(t, sess)
	assert.Equal(t, model.SessionPending, sess.Status)
	require.NotNil(t, sess.UserID)
	assert.Equal(t, userID, *sess.UserID)

	var snapshot model.SessionSnapshot
	require.NoError(t, json.Unmarshal(sess.Snapshot, &snapshot))
	require.Len(t, snapshot.Lines, 1)
	assert.True(t, snapshot.Lines[0].UnitPrice.Equal(decimal.RequireFromString("90.00")))
	assert.Equal(t, 2, snapshot.Lines[0].Quantity)
	assert.True(t, snapshot.Total.Equal(decimal.RequireFromString("180.00")))
	assert.Equal(t, "a@example.com", snapshot.Email)
	assert.Equal(t, "https://shop.test/done", snapshot.SuccessURL)

	// The provider is asked to charge the server-computed total in
	// minor units.
	require.NotNil(t, f.snap.req)
	assert.Equal(t, result.SessionID, f.snap.req.TransactionDetails.OrderID)
	assert.Equal(t, int64(18000), f.snap.req.TransactionDetails.GrossAmt)

	// Session creation never creates the order.
	assert.Empty(t, f.orders.calls)
}

func TestCreateSessionChargesFractionalTotalExactly(t *testing.T) {
	f := newCheckoutFixture()
	productID, variantID := f.seedVariant("45.50", 3)

	result, err := f.svc.CreateSession(context.Background(), SessionInput{
		Lines:   []checkout.Line{{ProductID: productID, VariantID: &variantID, Quantity: 1}},
		Address: &model.Address{Line1: "1 Rue de la Paix"},
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	// 45.50 must reach the provider as 4550 cents, never truncated to 45.
	require.NotNil(t, f.snap.req)
	assert.Equal(t, int64(4550), f.snap.req.TransactionDetails.GrossAmt)
	require.NotNil(t, f.snap.req.Items)
	require.Len(t, *f.snap.req.Items, 1)
	assert.Equal(t, int64(4550), (*f.snap.req.Items)[0].Price)
}

func TestCreateSessionSnapshotsCouponCode(t *testing.T) {
	f := newCheckoutFixture()
	productID, variantID := f.seedVariant("100.00", 5)
	couponID := uuid.New()
	f.coupons.byCode["WELCOME10"] = &model.Coupon{
		ID: couponID, Code: "WELCOME10",
		DiscountType:   model.DiscountPercentage,
		DiscountAmount: decimal.RequireFromString("10"),
		IsActive:       true,
	}

	result, err := f.svc.CreateSession(context.Background(), SessionInput{
		Lines:      []checkout.Line{{ProductID: productID, VariantID: &variantID, Quantity: 1}},
		Address:    &model.Address{Line1: "1 Rue de la Paix"},
		CouponCode: "WELCOME10",
	})
	require.NoError(t, err)

	var snapshot model.SessionSnapshot
	require.NoError(t, json.Unmarshal(f.sessions.byRef[result.SessionID].Snapshot, &snapshot))
	require.NotNil(t, snapshot.CouponID)
	assert.Equal(t, couponID, *snapshot.CouponID)
	assert.Equal(t, "WELCOME10", snapshot.CouponCode)
	assert.True(t, snapshot.Total.Equal(decimal.RequireFromString("90.00")))
}

func TestDirectOrderRequiresIdempotencyKey(t *testing.T) {
	f := newCheckoutFixture()
	productID, variantID := f.seedVariant("90.00", 5)

	_, err := f.svc.DirectOrder(context.Background(), uuid.New(), DirectOrderInput{
		Lines:             []checkout.Line{{ProductID: productID, VariantID: &variantID, Quantity: 1}},
		ShippingAddressID: uuid.New(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "idempotency_key")
}

func TestDirectOrderChecksAddressOwnership(t *testing.T) {
	f := newCheckoutFixture()
	productID, variantID := f.seedVariant("90.00", 5)

	owner := uuid.New()
	addrID := uuid.New()
	f.addresses.byID[addrID] = &model.Address{ID: addrID, UserID: &owner}

	_, err := f.svc.DirectOrder(context.Background(), uuid.New(), DirectOrderInput{
		Lines:             []checkout.Line{{ProductID: productID, VariantID: &variantID, Quantity: 1}},
		ShippingAddressID: addrID,
		IdempotencyKey:    "idem-1",
	})
	assert.ErrorIs(t, err, checkout.ErrUnauthorized)
}

func TestDirectOrderDelegatesToLedger(t *testing.T) {
	f := newCheckoutFixture()
	productID, variantID := f.seedVariant("60.00", 5)

	userID := uuid.New()
	addrID := uuid.New()
	f.addresses.byID[addrID] = &model.Address{ID: addrID, UserID: &userID}

	_, err := f.svc.DirectOrder(context.Background(), userID, DirectOrderInput{
		Lines:             []checkout.Line{{ProductID: productID, VariantID: &variantID, Quantity: 2}},
		ShippingAddressID: addrID,
		IdempotencyKey:    "idem-2",
		Email:             "a@example.com",
	})
	require.NoError(t, err)

	require.Len(t, f.orders.calls, 1)
	call := f.orders.calls[0]
	assert.Equal(t, "idem-2", call.ProviderRef)
	assert.Equal(t, "direct", call.Provider)
	assert.Equal(t, TriggerDirect, call.Trigger)
	assert.False(t, call.MarkPaid)
	require.NotNil(t, call.UserID)
	assert.Equal(t, userID, *call.UserID)
	assert.True(t, call.Quote.Total.Equal(decimal.RequireFromString("120.00")))
}
