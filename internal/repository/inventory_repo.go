package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// InventoryRepository is the only writer of stock quantities. Every
// decrement is a single conditional UPDATE so concurrent checkouts
// racing for the same unit cannot drive stock negative.
type InventoryRepository struct {
	DB *pgxpool.Pool
}

func NewInventoryRepository(db *pgxpool.Pool) *InventoryRepository {
	return &InventoryRepository{DB: db}
}

// DecrementVariantTx atomically reserves qty units of a variant inside
// the order transaction. Returns false when stock is short; the caller
// rolls back the whole order.
func (r *InventoryRepository) DecrementVariantTx(ctx context.Context, tx pgx.Tx, variantID uuid.UUID, qty int) (bool, error) {
	tag, err := tx.Exec(ctx, `
		UPDATE product_variants
		SET stock_qty = stock_qty - $2
		WHERE id=$1 AND stock_qty >= $2
	`, variantID, qty)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// DecrementLegacyTx is the (product_id, size) bucket counterpart for
// products that predate variants.
func (r *InventoryRepository) DecrementLegacyTx(ctx context.Context, tx pgx.Tx, productID uuid.UUID, size string, qty int) (bool, error) {
	tag, err := tx.Exec(ctx, `
		UPDATE inventory
		SET quantity_available = quantity_available - $3
		WHERE product_id=$1 AND size=$2 AND quantity_available >= $3
	`, productID, size, qty)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// VariantStock returns current stock for a variant. Advisory only:
// session creation checks it but never holds stock.
func (r *InventoryRepository) VariantStock(ctx context.Context, variantID uuid.UUID) (int, error) {
	var qty int
	err := r.DB.QueryRow(ctx, `SELECT stock_qty FROM product_variants WHERE id=$1`, variantID).Scan(&qty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return qty, nil
}

// LegacyStock returns current stock for a (product, size) bucket.
func (r *InventoryRepository) LegacyStock(ctx context.Context, productID uuid.UUID, size string) (int, error) {
	var qty int
	err := r.DB.QueryRow(ctx, `
		SELECT quantity_available FROM inventory WHERE product_id=$1 AND size=$2
	`, productID, size).Scan(&qty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return qty, nil
}

// VariantStockTx reads stock inside the order transaction, used to
// report the exact shortfall after a failed conditional decrement.
func (r *InventoryRepository) VariantStockTx(ctx context.Context, tx pgx.Tx, variantID uuid.UUID) (int, error) {
	var qty int
	err := tx.QueryRow(ctx, `SELECT stock_qty FROM product_variants WHERE id=$1`, variantID).Scan(&qty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return qty, nil
}

func (r *InventoryRepository) LegacyStockTx(ctx context.Context, tx pgx.Tx, productID uuid.UUID, size string) (int, error) {
	var qty int
	err := tx.QueryRow(ctx, `
		SELECT quantity_available FROM inventory WHERE product_id=$1 AND size=$2
	`, productID, size).Scan(&qty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return qty, nil
}
