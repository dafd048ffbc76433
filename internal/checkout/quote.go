package checkout

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Line is one requested cart line as submitted by the client. Client
// prices are never carried here: pricing re-reads the catalog.
type Line struct {
	ProductID uuid.UUID
	VariantID *uuid.UUID
	Size      string
	Quantity  int
}

// QuoteLine is a Line with the server-computed unit price frozen.
type QuoteLine struct {
	Line
	Name      string
	UnitPrice decimal.Decimal
}

// Quote is the authoritative pricing result for a cart. Invariant:
// Total = Subtotal - Discount, Discount <= Subtotal.
type Quote struct {
	Lines      []QuoteLine
	Subtotal   decimal.Decimal
	Discount   decimal.Decimal
	Total      decimal.Decimal
	CouponID   *uuid.UUID
	CouponCode string
}
