package checkout

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrEmptyCart        = errors.New("cart is empty")
	ErrMissingAddress   = errors.New("shipping address is required")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrSignatureInvalid = errors.New("invalid webhook signature")
)

// InvalidSkuError is returned when a line item references a product or
// variant that does not exist, is inactive, or whose variant belongs to
// a different product.
type InvalidSkuError struct {
	ProductID uuid.UUID
	VariantID *uuid.UUID
	Size      string
	Reason    string
}

func (e *InvalidSkuError) Error() string {
	if e.VariantID != nil {
		return fmt.Sprintf("invalid sku: variant %s of product %s: %s", e.VariantID, e.ProductID, e.Reason)
	}
	return fmt.Sprintf("invalid sku: product %s size %q: %s", e.ProductID, e.Size, e.Reason)
}

// CouponReason is the user-facing sub-reason of a coupon rejection.
type CouponReason string

const (
	CouponNotFound     CouponReason = "not found"
	CouponInactive     CouponReason = "inactive"
	CouponExpired      CouponReason = "expired"
	CouponNotYetValid  CouponReason = "not yet valid"
	CouponExhausted    CouponReason = "usage limit reached"
	CouponBelowMinimum CouponReason = "below minimum order amount"
)

type InvalidCouponError struct {
	Code   string
	Reason CouponReason
}

func (e *InvalidCouponError) Error() string {
	return fmt.Sprintf("invalid coupon %q: %s", e.Code, e.Reason)
}

// InsufficientStockError names the offending item and the shortfall.
// It aborts the entire order: no line item is fulfilled partially.
type InsufficientStockError struct {
	ProductID uuid.UUID
	VariantID *uuid.UUID
	Size      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Shortfall() int {
	return e.Requested - e.Available
}

func (e *InsufficientStockError) Error() string {
	if e.VariantID != nil {
		return fmt.Sprintf("insufficient stock for variant %s: requested %d, available %d", e.VariantID, e.Requested, e.Available)
	}
	return fmt.Sprintf("insufficient stock for product %s size %q: requested %d, available %d", e.ProductID, e.Size, e.Requested, e.Available)
}

// IsValidation reports whether err is terminal for the current request
// (a caller mistake) as opposed to a transient storage failure. The
// webhook handler uses this to decide between 200-with-rejection and a
// retryable 5xx.
func IsValidation(err error) bool {
	var sku *InvalidSkuError
	var coupon *InvalidCouponError
	var stock *InsufficientStockError
	return errors.Is(err, ErrEmptyCart) ||
		errors.Is(err, ErrMissingAddress) ||
		errors.As(err, &sku) ||
		errors.As(err, &coupon) ||
		errors.As(err, &stock)
}
