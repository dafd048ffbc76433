package services

import (
	"context"
	"time"

	"github.com/ramyradad1/lessence-monorepo-sub002/internal/checkout"
	"github.com/ramyradad1/lessence-monorepo-sub002/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CatalogStore interface {
	GetVariant(ctx context.Context, variantID uuid.UUID) (*model.Variant, error)
	GetProduct(ctx context.Context, productID uuid.UUID) (*model.Product, error)
}

type CouponStore interface {
	GetByCode(ctx context.Context, code string) (*model.Coupon, error)
}

// PricingService recomputes authoritative prices from catalog state.
// Client-submitted prices never reach it.
type PricingService struct {
	Catalog CatalogStore
	Coupons CouponStore

	// now is swappable for coupon-window tests.
	now func() time.Time
}

func NewPricingService(catalog CatalogStore, coupons CouponStore) *PricingService {
	return &PricingService{
		Catalog: catalog,
		Coupons: coupons,
		now:     time.Now,
	}
}

// PriceCart resolves every line against the catalog, applies the
// coupon if given, and returns the authoritative quote. The server
// value always wins: a client-expected price is never consulted.
func (s *PricingService) PriceCart(ctx context.Context, lines []checkout.Line, couponCode string) (*checkout.Quote, error) {
	if len(lines) == 0 {
		return nil, checkout.ErrEmptyCart
	}

	quote := &checkout.Quote{Subtotal: decimal.Zero, Discount: decimal.Zero}

	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, &checkout.InvalidSkuError{
				ProductID: line.ProductID,
				VariantID: line.VariantID,
				Size:      line.Size,
				Reason:    "quantity must be positive",
			}
		}

		ql, err := s.priceLine(ctx, line)
		if err != nil {
			return nil, err
		}
		quote.Lines = append(quote.Lines, *ql)
		quote.Subtotal = quote.Subtotal.Add(
			ql.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))),
		)
	}
	quote.Subtotal = quote.Subtotal.Round(2)

	if couponCode != "" {
		coupon, discount, err := s.ValidateCoupon(ctx, couponCode, quote.Subtotal)
		if err != nil {
			return nil, err
		}
		quote.Discount = discount
		quote.CouponID = &coupon.ID
		quote.CouponCode = coupon.Code
	}

	quote.Total = quote.Subtotal.Sub(quote.Discount)
	return quote, nil
}

func (s *PricingService) priceLine(ctx context.Context, line checkout.Line) (*checkout.QuoteLine, error) {
	product, err := s.Catalog.GetProduct(ctx, line.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil || !product.IsActive {
		return nil, &checkout.InvalidSkuError{
			ProductID: line.ProductID,
			VariantID: line.VariantID,
			Size:      line.Size,
			Reason:    "unknown product",
		}
	}

	ql := &checkout.QuoteLine{Line: line, Name: product.Name}

	if line.VariantID != nil {
		variant, err := s.Catalog.GetVariant(ctx, *line.VariantID)
		if err != nil {
			return nil, err
		}
		if variant == nil || !variant.IsActive {
			return nil, &checkout.InvalidSkuError{
				ProductID: line.ProductID,
				VariantID: line.VariantID,
				Size:      line.Size,
				Reason:    "unknown variant",
			}
		}
		if variant.ProductID != line.ProductID {
			return nil, &checkout.InvalidSkuError{
				ProductID: line.ProductID,
				VariantID: line.VariantID,
				Size:      line.Size,
				Reason:    "variant does not belong to product",
			}
		}
		ql.UnitPrice = variant.Price
		if ql.Size == "" {
			ql.Size = variant.Size
		}
		return ql, nil
	}

	// Legacy path: price comes from the product's size_options.
	for _, opt := range product.SizeOptions {
		if opt.Size == line.Size {
			ql.UnitPrice = opt.Price
			return ql, nil
		}
	}
	return nil, &checkout.InvalidSkuError{
		ProductID: line.ProductID,
		Size:      line.Size,
		Reason:    "unknown size",
	}
}

// ValidateCoupon runs the checks in a fixed order: existence and
// active flag, time window, usage limit, minimum order amount. It
// then computes the discount. Percentage discounts are capped by
// max_discount_amount; no discount ever exceeds the subtotal.
func (s *PricingService) ValidateCoupon(ctx context.Context, code string, subtotal decimal.Decimal) (*model.Coupon, decimal.Decimal, error) {
	coupon, err := s.Coupons.GetByCode(ctx, code)
	if err != nil {
		return nil, decimal.Zero, err
	}
	if coupon == nil {
		return nil, decimal.Zero, &checkout.InvalidCouponError{Code: code, Reason: checkout.CouponNotFound}
	}
	if !coupon.IsActive {
		return nil, decimal.Zero, &checkout.InvalidCouponError{Code: code, Reason: checkout.CouponInactive}
	}

	now := s.now()
	if coupon.ValidFrom != nil && now.Before(*coupon.ValidFrom) {
		return nil, decimal.Zero, &checkout.InvalidCouponError{Code: code, Reason: checkout.CouponNotYetValid}
	}
	if coupon.ValidUntil != nil && now.After(*coupon.ValidUntil) {
		return nil, decimal.Zero, &checkout.InvalidCouponError{Code: code, Reason: checkout.CouponExpired}
	}
	if coupon.UsageLimit != nil && coupon.TimesUsed >= *coupon.UsageLimit {
		return nil, decimal.Zero, &checkout.InvalidCouponError{Code: code, Reason: checkout.CouponExhausted}
	}
	if coupon.MinOrderAmount != nil && subtotal.LessThan(*coupon.MinOrderAmount) {
		return nil, decimal.Zero, &checkout.InvalidCouponError{Code: code, Reason: checkout.CouponBelowMinimum}
	}

	var discount decimal.Decimal
	switch coupon.DiscountType {
	case model.DiscountPercentage:
		discount = subtotal.Mul(coupon.DiscountAmount).Div(decimal.NewFromInt(100))
		if coupon.MaxDiscountAmount != nil && discount.GreaterThan(*coupon.MaxDiscountAmount) {
			discount = *coupon.MaxDiscountAmount
		}
	case model.DiscountFixed:
		discount = coupon.DiscountAmount
	case model.DiscountFreeShipping:
		// Shipping is priced outside the order core; the coupon is
		// honored there, the item discount here is zero.
		discount = decimal.Zero
	default:
		discount = decimal.Zero
	}

	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}
	return coupon, discount.Round(2), nil
}
