package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/ramyradad1/lessence-monorepo-sub002/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CatalogRepository struct {
	DB *pgxpool.Pool
}

func NewCatalogRepository(db *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{DB: db}
}

// GetVariant returns the variant row, or nil when it does not exist.
func (r *CatalogRepository) GetVariant(ctx context.Context, variantID uuid.UUID) (*model.Variant, error) {
	var v model.Variant
	q := `
		SELECT id, product_id, size, concentration, price, stock_qty, is_active
		FROM product_variants
		WHERE id=$1
	`
	err := r.DB.QueryRow(ctx, q, variantID).Scan(
		&v.ID, &v.ProductID, &v.Size, &v.Concentration, &v.Price, &v.StockQty, &v.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

// GetProduct returns the product row with its size_options decoded, or
// nil when it does not exist.
func (r *CatalogRepository) GetProduct(ctx context.Context, productID uuid.UUID) (*model.Product, error) {
	var p model.Product
	var sizeOptions []byte
	q := `
		SELECT id, name, brand, base_price, size_options, is_active, created_at
		FROM products
		WHERE id=$1
	`
	err := r.DB.QueryRow(ctx, q, productID).Scan(
		&p.ID, &p.Name, &p.Brand, &p.BasePrice, &sizeOptions, &p.IsActive, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if len(sizeOptions) > 0 {
		if err := json.Unmarshal(sizeOptions, &p.SizeOptions); err != nil {
			return nil, err
		}
	}
	return &p, nil
}
