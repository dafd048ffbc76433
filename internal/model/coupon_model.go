package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	DiscountPercentage   = "percentage"
	DiscountFixed        = "fixed"
	DiscountFreeShipping = "free_shipping"
)

// Coupon represents a row in the coupons table. times_used is a
// monotonic counter; when usage_limit is set it never exceeds it.
type Coupon struct {
	ID                uuid.UUID        `json:"id"`
	Code              string           `json:"code"`
	DiscountType      string           `json:"discount_type"`
	DiscountAmount    decimal.Decimal  `json:"discount_amount"`
	ValidFrom         *time.Time       `json:"valid_from,omitempty"`
	ValidUntil        *time.Time       `json:"valid_until,omitempty"`
	UsageLimit        *int             `json:"usage_limit,omitempty"`
	TimesUsed         int              `json:"times_used"`
	MinOrderAmount    *decimal.Decimal `json:"min_order_amount,omitempty"`
	MaxDiscountAmount *decimal.Decimal `json:"max_discount_amount,omitempty"`
	IsActive          bool             `json:"is_active"`
}
