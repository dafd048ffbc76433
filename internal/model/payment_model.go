package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
)

// Payment is one payment attempt outcome. ProviderRef is the
// provider-issued idempotency token (session ref on the hosted path,
// the caller's idempotency_key on the direct path) and is unique:
// reprocessing the same webhook event must be a no-op.
type Payment struct {
	ID          uuid.UUID       `json:"id"`
	OrderID     uuid.UUID       `json:"order_id"`
	Provider    string          `json:"provider"`
	ProviderRef string          `json:"provider_ref"`
	Amount      decimal.Decimal `json:"amount"`
	Status      string          `json:"status"`
	Payload     []byte          `json:"-"`
	CreatedAt   time.Time       `json:"created_at"`
	PaidAt      *time.Time      `json:"paid_at,omitempty"`
}
