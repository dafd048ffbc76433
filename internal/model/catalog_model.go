package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a row in the products table. Legacy products
// (created before variants existed) carry their purchasable sizes in
// the size_options JSONB column and their stock in the inventory
// table keyed by (product_id, size).
type Product struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Brand       string          `json:"brand"`
	BasePrice   decimal.Decimal `json:"base_price"`
	SizeOptions []SizeOption    `json:"size_options"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
}

// SizeOption is one entry of products.size_options.
type SizeOption struct {
	Size  string          `json:"size"`
	Price decimal.Decimal `json:"price"`
}

// Variant is the finer-grained stock unit: a specific size and
// concentration of a product with its own price and stock_qty.
type Variant struct {
	ID            uuid.UUID       `json:"id"`
	ProductID     uuid.UUID       `json:"product_id"`
	Size          string          `json:"size"`
	Concentration string          `json:"concentration"`
	Price         decimal.Decimal `json:"price"`
	StockQty      int             `json:"stock_qty"`
	IsActive      bool            `json:"is_active"`
}
