package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ramyradad1/lessence-monorepo-sub002/internal/checkout"
	"github.com/ramyradad1/lessence-monorepo-sub002/internal/metrics"
	"github.com/ramyradad1/lessence-monorepo-sub002/internal/model"

	"github.com/google/uuid"
	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SnapClient is the slice of the Midtrans Snap API this service uses.
type SnapClient interface {
	CreateTransaction(req *snap.Request) (*snap.Response, *midtrans.Error)
}

type StockReader interface {
	VariantStock(ctx context.Context, variantID uuid.UUID) (int, error)
	LegacyStock(ctx context.Context, productID uuid.UUID, size string) (int, error)
}

type SessionStore interface {
	Insert(ctx context.Context, s *model.CheckoutSession) error
	GetByProviderRef(ctx context.Context, providerRef string) (*model.CheckoutSession, error)
	MarkStatus(ctx context.Context, sessionID uuid.UUID, status string) error
}

type AddressStore interface {
	Insert(ctx context.Context, a *model.Address) error
	GetByID(ctx context.Context, addressID uuid.UUID) (*model.Address, error)
}

// OrderCreator is implemented by OrderService; both checkout triggers
// go through it.
type OrderCreator interface {
	CreateOrder(ctx context.Context, in CreateOrderInput) (*model.Order, error)
}

// CheckoutService assembles a validated cart into either a hosted
// payment session (completion confirmed later via webhook) or a direct
// order.
type CheckoutService struct {
	Pricing   *PricingService
	Stock     StockReader
	Sessions  SessionStore
	Addresses AddressStore
	Orders    OrderCreator
	Snap      SnapClient
	Metrics   *metrics.CheckoutMetrics
	Logger    *zap.Logger
}

func NewCheckoutService(
	pricing *PricingService,
	stock StockReader,
	sessions SessionStore,
	addresses AddressStore,
	orders OrderCreator,
	snapClient SnapClient,
	m *metrics.CheckoutMetrics,
	logger *zap.Logger,
) *CheckoutService {
	return &CheckoutService{
		Pricing:   pricing,
		Stock:     stock,
		Sessions:  sessions,
		Addresses: addresses,
		Orders:    orders,
		Snap:      snapClient,
		Metrics:   m,
		Logger:    logger,
	}
}

// SessionInput is the strictly parsed checkout request. Either a saved
// address id or a full address payload must be present.
type SessionInput struct {
	Lines      []checkout.Line
	AddressID  *uuid.UUID
	Address    *model.Address
	CouponCode string
	SuccessURL string
	CancelURL  string
	UserID     *uuid.UUID
	Email      string
}

type SessionResult struct {
	URL       string `json:"url"`
	SessionID string `json:"sessionId"`
}

// CreateSession validates the cart server-side, checks stock
// (advisory only; nothing is held until fulfillment), creates the
// hosted Snap session, and persists the reconstruction snapshot the
// webhook reconciler will fulfill from.
func (s *CheckoutService) CreateSession(ctx context.Context, in SessionInput) (*SessionResult, error) {
	if len(in.Lines) == 0 {
		s.reject("empty_cart")
		return nil, checkout.ErrEmptyCart
	}
	if in.AddressID == nil && in.Address == nil {
		s.reject("missing_address")
		return nil, checkout.ErrMissingAddress
	}

	quote, err := s.Pricing.PriceCart(ctx, in.Lines, in.CouponCode)
	if err != nil {
		s.reject("pricing")
		return nil, err
	}

	for _, line := range quote.Lines {
		var available int
		if line.VariantID != nil {
			available, err = s.Stock.VariantStock(ctx, *line.VariantID)
		} else {
			available, err = s.Stock.LegacyStock(ctx, line.ProductID, line.Size)
		}
		if err != nil {
			return nil, fmt.Errorf("stock check: %w", err)
		}
		if available < line.Quantity {
			s.reject("insufficient_stock")
			return nil, &checkout.InsufficientStockError{
				ProductID: line.ProductID,
				VariantID: line.VariantID,
				Size:      line.Size,
				Requested: line.Quantity,
				Available: available,
			}
		}
	}

	providerRef := "LSX-" + uuid.NewString()

	items := make([]midtrans.ItemDetails, 0, len(quote.Lines))
	for _, line := range quote.Lines {
		price, err := minorUnits(line.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("item %s: %w", line.ProductID, err)
		}
		items = append(items, midtrans.ItemDetails{
			ID:    line.ProductID.String(),
			Name:  itemName(line),
			Price: price,
			Qty:   int32(line.Quantity),
		})
	}

	gross, err := minorUnits(quote.Total)
	if err != nil {
		return nil, err
	}
	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  providerRef,
			GrossAmt: gross,
		},
		Items: &items,
	}

	resp, snapErr := s.Snap.CreateTransaction(req)
	if snapErr != nil {
		s.reject("provider")
		return nil, fmt.Errorf("create snap transaction: %w", snapErr)
	}

	snapshot := model.SessionSnapshot{
		Subtotal:   quote.Subtotal,
		Discount:   quote.Discount,
		Total:      quote.Total,
		CouponID:   quote.CouponID,
		CouponCode: quote.CouponCode,
		AddressID:  in.AddressID,
		Address:    in.Address,
		Email:      in.Email,
		SuccessURL: in.SuccessURL,
		CancelURL:  in.CancelURL,
	}
	for _, line := range quote.Lines {
		snapshot.Lines = append(snapshot.Lines, model.SnapshotLine{
			ProductID: line.ProductID,
			VariantID: line.VariantID,
			Size:      line.Size,
			Name:      line.Name,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
		})
	}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return nil, err
	}

	session := &model.CheckoutSession{
		ID:          uuid.New(),
		ProviderRef: providerRef,
		UserID:      in.UserID,
		Snapshot:    raw,
		Status:      model.SessionPending,
		CreatedAt:   time.Now(),
	}
	if err := s.Sessions.Insert(ctx, session); err != nil {
		return nil, fmt.Errorf("persist checkout session: %w", err)
	}

	if s.Metrics != nil {
		s.Metrics.SessionsCreated.Inc()
	}
	s.Logger.Info("checkout session created",
		zap.String("provider_ref", providerRef),
		zap.String("total", quote.Total.StringFixed(2)))

	return &SessionResult{URL: resp.RedirectURL, SessionID: providerRef}, nil
}

// DirectOrderInput is the synchronous RPC payload. IdempotencyKey is
// caller-supplied and keys the payment row.
type DirectOrderInput struct {
	Lines             []checkout.Line
	ShippingAddressID uuid.UUID
	CouponCode        string
	IdempotencyKey    string
	Email             string
}

// DirectOrder folds pricing, inventory, and the order ledger into one
// server-side transaction, bypassing the hosted payment flow.
func (s *CheckoutService) DirectOrder(ctx context.Context, userID uuid.UUID, in DirectOrderInput) (*model.Order, error) {
	if len(in.Lines) == 0 {
		return nil, checkout.ErrEmptyCart
	}
	if in.IdempotencyKey == "" {
		return nil, errors.New("idempotency_key is required")
	}
	if in.ShippingAddressID == uuid.Nil {
		return nil, checkout.ErrMissingAddress
	}

	addr, err := s.Addresses.GetByID(ctx, in.ShippingAddressID)
	if err != nil {
		return nil, err
	}
	if addr == nil {
		return nil, checkout.ErrMissingAddress
	}
	if addr.UserID != nil && *addr.UserID != userID {
		return nil, checkout.ErrUnauthorized
	}

	quote, err := s.Pricing.PriceCart(ctx, in.Lines, in.CouponCode)
	if err != nil {
		return nil, err
	}

	addressID := in.ShippingAddressID
	return s.Orders.CreateOrder(ctx, CreateOrderInput{
		UserID:            &userID,
		Email:             in.Email,
		Quote:             quote,
		ShippingAddressID: &addressID,
		Provider:          "direct",
		ProviderRef:       in.IdempotencyKey,
		MarkPaid:          false,
		Trigger:           TriggerDirect,
	})
}

func (s *CheckoutService) reject(reason string) {
	if s.Metrics != nil {
		s.Metrics.SessionsRejected.WithLabelValues(reason).Inc()
	}
}

// minorUnits converts a monetary amount to the integer minor unit
// (cents) the provider API carries. Catalog prices are NUMERIC(12,2),
// so a remainder here is a data fault, not a client input.
func minorUnits(d decimal.Decimal) (int64, error) {
	shifted := d.Shift(2)
	if !shifted.Equal(shifted.Truncate(0)) {
		return 0, fmt.Errorf("amount %s is not representable in minor units", d)
	}
	return shifted.IntPart(), nil
}

func itemName(line checkout.QuoteLine) string {
	if line.Size != "" {
		return fmt.Sprintf("%s (%s)", line.Name, line.Size)
	}
	return line.Name
}
