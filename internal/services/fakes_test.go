package services

import (
	"context"
	"errors"

	"github.com/ramyradad1/lessence-monorepo-sub002/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

type fakeCatalog struct {
	products map[uuid.UUID]*model.Product
	variants map[uuid.UUID]*model.Variant
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		products: map[uuid.UUID]*model.Product{},
		variants: map[uuid.UUID]*model.Variant{},
	}
}

func (f *fakeCatalog) GetProduct(_ context.Context, id uuid.UUID) (*model.Product, error) {
	return f.products[id], nil
}

func (f *fakeCatalog) GetVariant(_ context.Context, id uuid.UUID) (*model.Variant, error) {
	return f.variants[id], nil
}

type fakeCoupons struct {
	byCode map[string]*model.Coupon
}

func (f *fakeCoupons) GetByCode(_ context.Context, code string) (*model.Coupon, error) {
	return f.byCode[code], nil
}

type fakeStock struct {
	variant map[uuid.UUID]int
	legacy  map[string]int
}

func (f *fakeStock) VariantStock(_ context.Context, id uuid.UUID) (int, error) {
	return f.variant[id], nil
}

func (f *fakeStock) LegacyStock(_ context.Context, productID uuid.UUID, size string) (int, error) {
	return f.legacy[productID.String()+"/"+size], nil
}

type fakeSessions struct {
	byRef    map[string]*model.CheckoutSession
	statuses map[uuid.UUID]string
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{
		byRef:    map[string]*model.CheckoutSession{},
		statuses: map[uuid.UUID]string{},
	}
}

func (f *fakeSessions) Insert(_ context.Context, s *model.CheckoutSession) error {
	f.byRef[s.ProviderRef] = s
	f.statuses[s.ID] = s.Status
	return nil
}

func (f *fakeSessions) GetByProviderRef(_ context.Context, ref string) (*model.CheckoutSession, error) {
	return f.byRef[ref], nil
}

func (f *fakeSessions) MarkStatus(_ context.Context, id uuid.UUID, status string) error {
	f.statuses[id] = status
	return nil
}

type fakePayments struct {
	byRef    map[string]*model.Payment
	inserted []*model.Payment

	// getQueue, when non-empty, overrides byRef one lookup at a time.
	// Used to simulate a concurrent delivery winning between the
	// idempotency check and the insert.
	getQueue  []*model.Payment
	insertErr error
}

func (f *fakePayments) GetByProviderRef(_ context.Context, ref string) (*model.Payment, error) {
	if len(f.getQueue) > 0 {
		p := f.getQueue[0]
		f.getQueue = f.getQueue[1:]
		return p, nil
	}
	if f.byRef == nil {
		return nil, nil
	}
	return f.byRef[ref], nil
}

func (f *fakePayments) InsertTx(_ context.Context, _ pgx.Tx, p *model.Payment) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	if f.byRef == nil {
		f.byRef = map[string]*model.Payment{}
	}
	if _, dup := f.byRef[p.ProviderRef]; dup {
		return &pgconn.PgError{Code: "23505", ConstraintName: "payments_provider_ref_key"}
	}
	f.byRef[p.ProviderRef] = p
	f.inserted = append(f.inserted, p)
	return nil
}

type fakeAddresses struct {
	byID     map[uuid.UUID]*model.Address
	inserted []*model.Address
}

func newFakeAddresses() *fakeAddresses {
	return &fakeAddresses{byID: map[uuid.UUID]*model.Address{}}
}

// Insert mirrors the repository's ON CONFLICT (id) DO NOTHING.
func (f *fakeAddresses) Insert(_ context.Context, a *model.Address) error {
	if _, ok := f.byID[a.ID]; ok {
		return nil
	}
	f.byID[a.ID] = a
	f.inserted = append(f.inserted, a)
	return nil
}

func (f *fakeAddresses) GetByID(_ context.Context, id uuid.UUID) (*model.Address, error) {
	return f.byID[id], nil
}

type fakeOrderCreator struct {
	calls []CreateOrderInput
	order *model.Order
	err   error
}

func (f *fakeOrderCreator) CreateOrder(_ context.Context, in CreateOrderInput) (*model.Order, error) {
	f.calls = append(f.calls, in)
	if f.err != nil {
		return nil, f.err
	}
	if f.order != nil {
		return f.order, nil
	}
	return &model.Order{
		ID:          uuid.New(),
		OrderNumber: "LE-20260831-TEST0001",
		Status:      model.OrderPaid,
		Subtotal:    in.Quote.Subtotal,
		TotalAmount: in.Quote.Total,
	}, nil
}

type fakeSnap struct {
	req  *snap.Request
	resp *snap.Response
	err  *midtrans.Error
}

func (f *fakeSnap) CreateTransaction(req *snap.Request) (*snap.Response, *midtrans.Error) {
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	if f.resp != nil {
		return f.resp, nil
	}
	return &snap.Response{
		Token:       "snap-token",
		RedirectURL: "https://app.sandbox.midtrans.com/snap/v2/vtweb/snap-token",
	}, nil
}

// fakeTx satisfies pgx.Tx; only Commit/Rollback carry behavior. The
// ledger fakes track their own state, so the statement methods are
// inert.
type fakeTx struct {
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Begin(context.Context) (pgx.Tx, error) { return t, nil }

func (t *fakeTx) Commit(context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

func (t *fakeTx) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *fakeTx) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults { return nil }
func (t *fakeTx) LargeObjects() pgx.LargeObjects                         { return pgx.LargeObjects{} }
func (t *fakeTx) Prepare(context.Context, string, string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *fakeTx) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (t *fakeTx) Query(context.Context, string, ...any) (pgx.Rows, error) { return nil, nil }
func (t *fakeTx) QueryRow(context.Context, string, ...any) pgx.Row        { return nil }
func (t *fakeTx) Conn() *pgx.Conn                                         { return nil }

type fakeDB struct {
	txs []*fakeTx
}

func (f *fakeDB) Begin(context.Context) (pgx.Tx, error) {
	tx := &fakeTx{}
	f.txs = append(f.txs, tx)
	return tx, nil
}

type fakeOrderStore struct {
	byID     map[uuid.UUID]*model.Order
	statuses map[uuid.UUID]model.OrderStatus
	items    []*model.OrderItem
	changes  []*model.StatusChange

	// insertErrs is popped once per InsertOrderTx call.
	insertErrs []error
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{
		byID:     map[uuid.UUID]*model.Order{},
		statuses: map[uuid.UUID]model.OrderStatus{},
	}
}

func (f *fakeOrderStore) InsertOrderTx(_ context.Context, _ pgx.Tx, o *model.Order) error {
	if len(f.insertErrs) > 0 {
		err := f.insertErrs[0]
		f.insertErrs = f.insertErrs[1:]
		if err != nil {
			return err
		}
	}
	f.byID[o.ID] = o
	f.statuses[o.ID] = o.Status
	return nil
}

func (f *fakeOrderStore) InsertItemTx(_ context.Context, _ pgx.Tx, it *model.OrderItem) error {
	f.items = append(f.items, it)
	return nil
}

func (f *fakeOrderStore) InsertStatusChangeTx(_ context.Context, _ pgx.Tx, ch *model.StatusChange) error {
	f.changes = append(f.changes, ch)
	return nil
}

func (f *fakeOrderStore) StatusForUpdateTx(_ context.Context, _ pgx.Tx, orderID uuid.UUID) (model.OrderStatus, error) {
	return f.statuses[orderID], nil
}

func (f *fakeOrderStore) SetStatusTx(_ context.Context, _ pgx.Tx, orderID uuid.UUID, status model.OrderStatus) error {
	f.statuses[orderID] = status
	return nil
}

func (f *fakeOrderStore) GetByID(_ context.Context, orderID uuid.UUID) (*model.Order, error) {
	return f.byID[orderID], nil
}

func (f *fakeOrderStore) ListByUser(_ context.Context, userID uuid.UUID) ([]model.Order, error) {
	var out []model.Order
	for _, o := range f.byID {
		if o.UserID != nil && *o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

type fakeInventoryTx struct {
	variant map[uuid.UUID]int
	legacy  map[string]int
}

func newFakeInventoryTx() *fakeInventoryTx {
	return &fakeInventoryTx{variant: map[uuid.UUID]int{}, legacy: map[string]int{}}
}

func (f *fakeInventoryTx) DecrementVariantTx(_ context.Context, _ pgx.Tx, id uuid.UUID, qty int) (bool, error) {
	if f.variant[id] < qty {
		return false, nil
	}
	f.variant[id] -= qty
	return true, nil
}

func (f *fakeInventoryTx) DecrementLegacyTx(_ context.Context, _ pgx.Tx, productID uuid.UUID, size string, qty int) (bool, error) {
	key := productID.String() + "/" + size
	if f.legacy[key] < qty {
		return false, nil
	}
	f.legacy[key] -= qty
	return true, nil
}

func (f *fakeInventoryTx) VariantStockTx(_ context.Context, _ pgx.Tx, id uuid.UUID) (int, error) {
	return f.variant[id], nil
}

func (f *fakeInventoryTx) LegacyStockTx(_ context.Context, _ pgx.Tx, productID uuid.UUID, size string) (int, error) {
	return f.legacy[productID.String()+"/"+size], nil
}

type fakeCouponCounter struct {
	remaining map[uuid.UUID]int
}

func (f *fakeCouponCounter) IncrementUsageTx(_ context.Context, _ pgx.Tx, id uuid.UUID) (bool, error) {
	if f.remaining[id] <= 0 {
		return false, nil
	}
	f.remaining[id]--
	return true, nil
}

type fakeCart struct {
	lines   map[uuid.UUID][]model.CartLine
	cleared []uuid.UUID
}

func newFakeCart() *fakeCart {
	return &fakeCart{lines: map[uuid.UUID][]model.CartLine{}}
}

func (f *fakeCart) List(_ context.Context, userID uuid.UUID) ([]model.CartLine, error) {
	return f.lines[userID], nil
}

func (f *fakeCart) AddOrIncrement(_ context.Context, item *model.CartItem) error {
	f.lines[item.UserID] = append(f.lines[item.UserID], model.CartLine{
		CartItem: *item,
	})
	return nil
}

func (f *fakeCart) SetQuantity(_ context.Context, userID, itemID uuid.UUID, qty int) error {
	for i, l := range f.lines[userID] {
		if l.ID == itemID {
			f.lines[userID][i].Quantity = qty
		}
	}
	return nil
}

func (f *fakeCart) Remove(_ context.Context, userID, itemID uuid.UUID) error {
	kept := f.lines[userID][:0]
	for _, l := range f.lines[userID] {
		if l.ID != itemID {
			kept = append(kept, l)
		}
	}
	f.lines[userID] = kept
	return nil
}

func (f *fakeCart) Clear(_ context.Context, userID uuid.UUID) error {
	f.cleared = append(f.cleared, userID)
	delete(f.lines, userID)
	return nil
}

var errBoom = errors.New("boom")
