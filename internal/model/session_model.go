package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	SessionPending   = "pending"
	SessionCompleted = "completed"
	SessionAbandoned = "abandoned"
)

// CheckoutSession is the durable snapshot written when a hosted
// payment session is created. The webhook reconciler rebuilds the
// order from Snapshot alone; it never re-reads mutable cart state.
type CheckoutSession struct {
	ID          uuid.UUID  `json:"id"`
	ProviderRef string     `json:"provider_ref"`
	UserID      *uuid.UUID `json:"user_id,omitempty"`
	Snapshot    []byte     `json:"-"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
}

// SessionSnapshot is the JSON stored in checkout_sessions.snapshot.
// Prices here were validated server-side at session creation and are
// the prices the provider charged; fulfillment honors them as quoted.
type SessionSnapshot struct {
	Lines      []SnapshotLine  `json:"lines"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Discount   decimal.Decimal `json:"discount"`
	Total      decimal.Decimal `json:"total"`
	CouponID   *uuid.UUID      `json:"coupon_id,omitempty"`
	CouponCode string          `json:"coupon_code,omitempty"`
	AddressID  *uuid.UUID      `json:"address_id,omitempty"`
	Address    *Address        `json:"address,omitempty"`
	Email      string          `json:"email,omitempty"`

	// Redirect targets the client asked for; echoed back to the
	// storefront after fulfillment.
	SuccessURL string `json:"success_url,omitempty"`
	CancelURL  string `json:"cancel_url,omitempty"`
}

// SnapshotLine is one validated line item inside a session snapshot.
type SnapshotLine struct {
	ProductID uuid.UUID       `json:"product_id"`
	VariantID *uuid.UUID      `json:"variant_id,omitempty"`
	Size      string          `json:"size"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}
