package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ramyradad1/lessence-monorepo-sub002/internal/checkout"
	"github.com/ramyradad1/lessence-monorepo-sub002/internal/events"
	"github.com/ramyradad1/lessence-monorepo-sub002/internal/metrics"
	"github.com/ramyradad1/lessence-monorepo-sub002/internal/model"
	"github.com/ramyradad1/lessence-monorepo-sub002/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// Mailer sends the order receipt. Implemented by external/resend.
type Mailer interface {
	SendOrderReceipt(ctx context.Context, toEmail, orderNumber, total string) error
}

// TxStarter begins the ledger transaction. Satisfied by pgxpool.Pool.
type TxStarter interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type OrderStore interface {
	InsertOrderTx(ctx context.Context, tx pgx.Tx, o *model.Order) error
	InsertItemTx(ctx context.Context, tx pgx.Tx, it *model.OrderItem) error
	InsertStatusChangeTx(ctx context.Context, tx pgx.Tx, ch *model.StatusChange) error
	StatusForUpdateTx(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) (model.OrderStatus, error)
	SetStatusTx(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, status model.OrderStatus) error
	GetByID(ctx context.Context, orderID uuid.UUID) (*model.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error)
}

type PaymentLedger interface {
	GetByProviderRef(ctx context.Context, providerRef string) (*model.Payment, error)
	InsertTx(ctx context.Context, tx pgx.Tx, p *model.Payment) error
}

type StockDecrementer interface {
	DecrementVariantTx(ctx context.Context, tx pgx.Tx, variantID uuid.UUID, qty int) (bool, error)
	DecrementLegacyTx(ctx context.Context, tx pgx.Tx, productID uuid.UUID, size string, qty int) (bool, error)
	VariantStockTx(ctx context.Context, tx pgx.Tx, variantID uuid.UUID) (int, error)
	LegacyStockTx(ctx context.Context, tx pgx.Tx, productID uuid.UUID, size string) (int, error)
}

type CouponCounter interface {
	IncrementUsageTx(ctx context.Context, tx pgx.Tx, couponID uuid.UUID) (bool, error)
}

type CartClearer interface {
	Clear(ctx context.Context, userID uuid.UUID) error
}

// OrderService is the transactional writer of orders. Both checkout
// triggers, the webhook reconciler and the direct RPC, create orders
// through CreateOrder so pricing, stock, and ledger semantics cannot
// diverge between paths.
type OrderService struct {
	DB        TxStarter
	Orders    OrderStore
	Payments  PaymentLedger
	Inventory StockDecrementer
	Coupons   CouponCounter
	Cart      CartClearer
	Producer  *events.Producer
	Mailer    Mailer
	Metrics   *metrics.CheckoutMetrics
	Logger    *zap.Logger
}

func NewOrderService(
	db TxStarter,
	orders OrderStore,
	payments PaymentLedger,
	inventory StockDecrementer,
	coupons CouponCounter,
	cart CartClearer,
	producer *events.Producer,
	mailer Mailer,
	m *metrics.CheckoutMetrics,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		DB:        db,
		Orders:    orders,
		Payments:  payments,
		Inventory: inventory,
		Coupons:   coupons,
		Cart:      cart,
		Producer:  producer,
		Mailer:    mailer,
		Metrics:   m,
		Logger:    logger,
	}
}

const (
	TriggerWebhook = "webhook"
	TriggerDirect  = "direct"
)

// CreateOrderInput carries a fully validated quote plus the provider
// idempotency token. Quote prices are frozen; nothing here re-reads
// the catalog.
type CreateOrderInput struct {
	UserID            *uuid.UUID
	Email             string
	Quote             *checkout.Quote
	ShippingAddressID *uuid.UUID
	Provider          string
	ProviderRef       string
	Payload           []byte
	MarkPaid          bool
	Trigger           string
}

// CreateOrder writes the order header, every line item, the stock
// decrements, the coupon increment, and the payment row as one
// transaction, keyed by ProviderRef. A retry with the same ref returns
// the previously created order.
func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*model.Order, error) {
	existing, err := s.Payments.GetByProviderRef(ctx, in.ProviderRef)
	if err != nil {
		return nil, fmt.Errorf("idempotency lookup: %w", err)
	}
	if existing != nil {
		return s.Orders.GetByID(ctx, existing.OrderID)
	}

	order, err := s.createOnce(ctx, in)
	if err != nil {
		switch {
		case repository.IsUniqueViolation(err, "orders_order_number_key"):
			// Order number collided with a concurrent creation;
			// regenerate and retry once.
			order, err = s.createOnce(ctx, in)
			if err != nil {
				return nil, err
			}
		case repository.IsUniqueViolation(err, "payments_provider_ref_key"):
			// A concurrent delivery of the same event won the race.
			dup, lookupErr := s.Payments.GetByProviderRef(ctx, in.ProviderRef)
			if lookupErr != nil {
				return nil, lookupErr
			}
			if dup == nil {
				return nil, err
			}
			return s.Orders.GetByID(ctx, dup.OrderID)
		default:
			return nil, err
		}
	}

	s.afterCommit(ctx, in, order)
	return order, nil
}

func (s *OrderService) createOnce(ctx context.Context, in CreateOrderInput) (*model.Order, error) {
	now := time.Now()
	status := model.OrderPending
	if in.MarkPaid {
		status = model.OrderPaid
	}

	order := &model.Order{
		ID:                uuid.New(),
		OrderNumber:       newOrderNumber(now),
		UserID:            in.UserID,
		Status:            status,
		Subtotal:          in.Quote.Subtotal,
		DiscountAmount:    in.Quote.Discount,
		TotalAmount:       in.Quote.Total,
		ShippingAddressID: in.ShippingAddressID,
		CouponID:          in.Quote.CouponID,
		CreatedAt:         now,
	}

	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.Orders.InsertOrderTx(ctx, tx, order); err != nil {
		return nil, err
	}

	for _, line := range in.Quote.Lines {
		item := &model.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: line.ProductID,
			VariantID: line.VariantID,
			Size:      line.Size,
			Price:     line.UnitPrice,
			Quantity:  line.Quantity,
		}
		if err := s.Orders.InsertItemTx(ctx, tx, item); err != nil {
			return nil, err
		}
		order.Items = append(order.Items, *item)

		var ok bool
		if line.VariantID != nil {
			ok, err = s.Inventory.DecrementVariantTx(ctx, tx, *line.VariantID, line.Quantity)
		} else {
			ok, err = s.Inventory.DecrementLegacyTx(ctx, tx, line.ProductID, line.Size, line.Quantity)
		}
		if err != nil {
			return nil, fmt.Errorf("reserve stock: %w", err)
		}
		if !ok {
			available, readErr := s.availableTx(ctx, tx, line)
			if readErr != nil {
				available = 0
			}
			if s.Metrics != nil {
				s.Metrics.StockRejections.Inc()
			}
			return nil, &checkout.InsufficientStockError{
				ProductID: line.ProductID,
				VariantID: line.VariantID,
				Size:      line.Size,
				Requested: line.Quantity,
				Available: available,
			}
		}
	}

	if in.Quote.CouponID != nil {
		ok, err := s.Coupons.IncrementUsageTx(ctx, tx, *in.Quote.CouponID)
		if err != nil {
			return nil, fmt.Errorf("coupon usage: %w", err)
		}
		if !ok {
			return nil, &checkout.InvalidCouponError{
				Code:   in.Quote.CouponCode,
				Reason: checkout.CouponExhausted,
			}
		}
	}

	payment := &model.Payment{
		ID:          uuid.New(),
		OrderID:     order.ID,
		Provider:    in.Provider,
		ProviderRef: in.ProviderRef,
		Amount:      order.TotalAmount,
		Status:      model.PaymentPending,
		Payload:     in.Payload,
		CreatedAt:   now,
	}
	if in.MarkPaid {
		payment.Status = model.PaymentPaid
		paidAt := now
		payment.PaidAt = &paidAt
	}
	if err := s.Payments.InsertTx(ctx, tx, payment); err != nil {
		return nil, err
	}

	if in.MarkPaid {
		change := &model.StatusChange{
			ID:         uuid.New(),
			OrderID:    order.ID,
			FromStatus: model.OrderPending,
			ToStatus:   model.OrderPaid,
			Actor:      "payment:" + in.Provider,
			CreatedAt:  now,
		}
		if err := s.Orders.InsertStatusChangeTx(ctx, tx, change); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return order, nil
}

// availableTx reads what is actually left after a failed conditional
// decrement so the error can name the exact shortfall.
func (s *OrderService) availableTx(ctx context.Context, tx pgx.Tx, line checkout.QuoteLine) (int, error) {
	if line.VariantID != nil {
		return s.Inventory.VariantStockTx(ctx, tx, *line.VariantID)
	}
	return s.Inventory.LegacyStockTx(ctx, tx, line.ProductID, line.Size)
}

// afterCommit runs the best-effort side effects: cart clear, event
// publish, receipt mail, metrics. Failures are logged, never returned;
// the order is already durable.
func (s *OrderService) afterCommit(ctx context.Context, in CreateOrderInput, order *model.Order) {
	if s.Metrics != nil {
		s.Metrics.OrdersCreated.WithLabelValues(in.Trigger).Inc()
	}

	if in.UserID != nil {
		if err := s.Cart.Clear(ctx, *in.UserID); err != nil {
			s.Logger.Warn("clear cart after order",
				zap.String("order_number", order.OrderNumber),
				zap.Error(err))
		}
	}

	if order.Status == model.OrderPaid {
		s.Producer.PublishOrderPaid(ctx, events.OrderPaidEvent{
			EventID:     uuid.NewString(),
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			UserID:      order.UserID,
			TotalAmount: order.TotalAmount,
			Trigger:     in.Trigger,
			Timestamp:   time.Now(),
		})

		if s.Mailer != nil && in.Email != "" {
			if err := s.Mailer.SendOrderReceipt(ctx, in.Email, order.OrderNumber, order.TotalAmount.StringFixed(2)); err != nil {
				s.Logger.Warn("send receipt",
					zap.String("order_number", order.OrderNumber),
					zap.Error(err))
			}
		}
	}

	s.Logger.Info("order created",
		zap.String("order_number", order.OrderNumber),
		zap.String("trigger", in.Trigger),
		zap.String("status", string(order.Status)),
		zap.String("total", order.TotalAmount.StringFixed(2)))
}

// UpdateStatus applies an audited status transition. Disallowed moves
// are rejected; every applied move appends to order_status_history.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, next model.OrderStatus, actor string) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	current, err := s.Orders.StatusForUpdateTx(ctx, tx, orderID)
	if err != nil {
		return err
	}
	if !current.CanTransition(next) {
		return fmt.Errorf("cannot transition order from %s to %s", current, next)
	}
	if err := s.Orders.SetStatusTx(ctx, tx, orderID, next); err != nil {
		return err
	}
	change := &model.StatusChange{
		ID:         uuid.New(),
		OrderID:    orderID,
		FromStatus: current,
		ToStatus:   next,
		Actor:      actor,
		CreatedAt:  time.Now(),
	}
	if err := s.Orders.InsertStatusChangeTx(ctx, tx, change); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// GetByID returns the order with items, checking ownership when
// requesterID is given.
func (s *OrderService) GetByID(ctx context.Context, orderID uuid.UUID, requesterID *uuid.UUID) (*model.Order, error) {
	order, err := s.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, nil
	}
	if requesterID != nil && (order.UserID == nil || *order.UserID != *requesterID) {
		return nil, checkout.ErrUnauthorized
	}
	return order, nil
}

func (s *OrderService) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	return s.Orders.ListByUser(ctx, userID)
}

// newOrderNumber builds the human-facing identifier. Uniqueness is
// DB-enforced; a collision retries with a fresh suffix.
func newOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("LE-%s-%s", now.Format("20060102"), suffix)
}
