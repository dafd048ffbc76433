package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem is a row of the signed-in user's persisted cart. It is not
// authoritative for price; pricing always re-reads the catalog.
type CartItem struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	ProductID uuid.UUID  `json:"product_id"`
	VariantID *uuid.UUID `json:"variant_id,omitempty"`
	Size      string     `json:"size"`
	Quantity  int        `json:"quantity"`
}

// CartLine is a cart item joined with display fields for GET /cart.
type CartLine struct {
	CartItem
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// CartResponse is returned when calling GET /cart.
type CartResponse struct {
	Items []CartLine      `json:"items"`
	Total decimal.Decimal `json:"total"`
}
