package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mt "github.com/ramyradad1/lessence-monorepo-sub002/external/midtrans"
	"github.com/ramyradad1/lessence-monorepo-sub002/internal/checkout"
	"github.com/ramyradad1/lessence-monorepo-sub002/internal/metrics"
	"github.com/ramyradad1/lessence-monorepo-sub002/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrMalformedPayload marks a notification body missing required
// provider fields. Redelivery cannot fix it, so the handler answers
// 400 instead of asking for a retry.
var ErrMalformedPayload = errors.New("malformed notification payload")

// ErrAmountMismatch marks a signed notification whose gross_amount
// does not equal what the session asked the provider to charge.
var ErrAmountMismatch = errors.New("gross amount does not match session total")

type PaymentStore interface {
	GetByProviderRef(ctx context.Context, providerRef string) (*model.Payment, error)
}

// PaymentService reconciles asynchronous Midtrans notifications onto
// internal order state exactly once.
type PaymentService struct {
	Sessions  SessionStore
	Payments  PaymentStore
	Addresses AddressStore
	Orders    OrderCreator
	ServerKey string
	Metrics   *metrics.CheckoutMetrics
	Logger    *zap.Logger
}

func NewPaymentService(
	sessions SessionStore,
	payments PaymentStore,
	addresses AddressStore,
	orders OrderCreator,
	serverKey string,
	m *metrics.CheckoutMetrics,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		Sessions:  sessions,
		Payments:  payments,
		Addresses: addresses,
		Orders:    orders,
		ServerKey: serverKey,
		Metrics:   m,
		Logger:    logger,
	}
}

// HandleNotification verifies and applies one webhook delivery.
// Signature is checked before anything else; the idempotency gate runs
// before any side effect so provider redelivery is always safe.
func (s *PaymentService) HandleNotification(ctx context.Context, payload map[string]interface{}) error {
	providerRef, ok := payload["order_id"].(string)
	if !ok || providerRef == "" {
		return fmt.Errorf("%w: missing order_id", ErrMalformedPayload)
	}
	statusCode, _ := payload["status_code"].(string)
	grossAmount, _ := payload["gross_amount"].(string)
	signature, _ := payload["signature_key"].(string)

	if !mt.VerifySignature(providerRef, statusCode, grossAmount, signature, s.ServerKey) {
		s.outcome("signature_rejected")
		return checkout.ErrSignatureInvalid
	}

	transactionStatus, _ := payload["transaction_status"].(string)
	fraudStatus, _ := payload["fraud_status"].(string)

	switch transactionStatus {
	case "settlement":
		return s.fulfill(ctx, providerRef, payload)
	case "capture":
		if fraudStatus == "accept" {
			return s.fulfill(ctx, providerRef, payload)
		}
		s.Logger.Warn("capture held by fraud review", zap.String("provider_ref", providerRef))
		return nil
	case "expire", "cancel", "deny":
		return s.abandon(ctx, providerRef, transactionStatus)
	default:
		// pending and friends: nothing to do yet
		return nil
	}
}

func (s *PaymentService) fulfill(ctx context.Context, providerRef string, payload map[string]interface{}) error {
	existing, err := s.Payments.GetByProviderRef(ctx, providerRef)
	if err != nil {
		return fmt.Errorf("idempotency lookup: %w", err)
	}
	if existing != nil {
		// Redelivery of an already applied event.
		s.outcome("duplicate")
		s.Logger.Info("webhook redelivery ignored", zap.String("provider_ref", providerRef))
		return nil
	}

	sess, err := s.Sessions.GetByProviderRef(ctx, providerRef)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if sess == nil {
		return fmt.Errorf("no checkout session for ref %s", providerRef)
	}

	var snapshot model.SessionSnapshot
	if err := json.Unmarshal(sess.Snapshot, &snapshot); err != nil {
		return fmt.Errorf("decode session snapshot: %w", err)
	}

	// The signature only proves the payload came from the provider.
	// The amount still has to be the one this session charged.
	grossStr, _ := payload["gross_amount"].(string)
	gross, err := decimal.NewFromString(grossStr)
	if err != nil {
		return fmt.Errorf("%w: bad gross_amount %q", ErrMalformedPayload, grossStr)
	}
	if !gross.Equal(snapshot.Total.Shift(2)) {
		s.outcome("amount_mismatch")
		return fmt.Errorf("%w: got %s, session charged %s", ErrAmountMismatch, gross, snapshot.Total.Shift(2))
	}

	quote := &checkout.Quote{
		Subtotal:   snapshot.Subtotal,
		Discount:   snapshot.Discount,
		Total:      snapshot.Total,
		CouponID:   snapshot.CouponID,
		CouponCode: snapshot.CouponCode,
	}
	for _, line := range snapshot.Lines {
		quote.Lines = append(quote.Lines, checkout.QuoteLine{
			Line: checkout.Line{
				ProductID: line.ProductID,
				VariantID: line.VariantID,
				Size:      line.Size,
				Quantity:  line.Quantity,
			},
			Name:      line.Name,
			UnitPrice: line.UnitPrice,
		})
	}

	addressID := snapshot.AddressID
	if addressID == nil && snapshot.Address != nil && sess.UserID != nil {
		addr := *snapshot.Address
		// Derive the id from the session so a redelivery after a
		// failed ledger write reuses the row instead of inserting a twin.
		addr.ID = uuid.NewSHA1(uuid.NameSpaceOID, []byte("address:"+sess.ID.String()))
		addr.UserID = sess.UserID
		addr.CreatedAt = time.Now()
		if err := s.Addresses.Insert(ctx, &addr); err != nil {
			return fmt.Errorf("persist shipping address: %w", err)
		}
		addressID = &addr.ID
	}

	raw, _ := json.Marshal(payload)

	order, err := s.Orders.CreateOrder(ctx, CreateOrderInput{
		UserID:            sess.UserID,
		Email:             snapshot.Email,
		Quote:             quote,
		ShippingAddressID: addressID,
		Provider:          "midtrans",
		ProviderRef:       providerRef,
		Payload:           raw,
		MarkPaid:          true,
		Trigger:           TriggerWebhook,
	})
	if err != nil {
		s.outcome("failed")
		return fmt.Errorf("fulfill order: %w", err)
	}

	if err := s.Sessions.MarkStatus(ctx, sess.ID, model.SessionCompleted); err != nil {
		s.Logger.Warn("mark session completed",
			zap.String("provider_ref", providerRef),
			zap.Error(err))
	}

	s.outcome("fulfilled")
	s.Logger.Info("payment fulfilled",
		zap.String("provider_ref", providerRef),
		zap.String("order_number", order.OrderNumber))
	return nil
}

// abandon marks the session so it never fulfills. No order exists yet
// and no stock was held, so there is nothing to release.
func (s *PaymentService) abandon(ctx context.Context, providerRef, reason string) error {
	sess, err := s.Sessions.GetByProviderRef(ctx, providerRef)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if sess == nil || sess.Status != model.SessionPending {
		return nil
	}
	if err := s.Sessions.MarkStatus(ctx, sess.ID, model.SessionAbandoned); err != nil {
		return err
	}
	s.outcome("abandoned")
	s.Logger.Info("checkout session abandoned",
		zap.String("provider_ref", providerRef),
		zap.String("reason", reason))
	return nil
}

func (s *PaymentService) outcome(v string) {
	if s.Metrics != nil {
		s.Metrics.WebhookDeliveries.WithLabelValues(v).Inc()
	}
}
