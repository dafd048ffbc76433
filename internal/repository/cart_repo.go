package repository

import (
	"context"
	"errors"

	"github.com/ramyradad1/lessence-monorepo-sub002/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type CartRepository struct {
	DB *pgxpool.Pool
}

func NewCartRepository(db *pgxpool.Pool) *CartRepository {
	return &CartRepository{DB: db}
}

// AddOrIncrement inserts the cart row or bumps its quantity when the
// same (product, variant, size) is already in the cart.
func (r *CartRepository) AddOrIncrement(ctx context.Context, item *model.CartItem) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO cart_items (id, user_id, product_id, variant_id, size, quantity)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, product_id, COALESCE(variant_id, '00000000-0000-0000-0000-000000000000'::uuid), size)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
	`, item.ID, item.UserID, item.ProductID, item.VariantID, item.Size, item.Quantity)
	return err
}

func (r *CartRepository) SetQuantity(ctx context.Context, userID, itemID uuid.UUID, qty int) error {
	tag, err := r.DB.Exec(ctx, `
		UPDATE cart_items SET quantity=$3 WHERE id=$2 AND user_id=$1
	`, userID, itemID, qty)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errors.New("cart item not found")
	}
	return nil
}

func (r *CartRepository) Remove(ctx context.Context, userID, itemID uuid.UUID) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM cart_items WHERE id=$2 AND user_id=$1`, userID, itemID)
	return err
}

// Clear empties the user's persisted cart. Called after fulfillment;
// best-effort there, so no transaction needed.
func (r *CartRepository) Clear(ctx context.Context, userID uuid.UUID) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM cart_items WHERE user_id=$1`, userID)
	return err
}

// List returns the user's cart rows joined with catalog display
// fields. Prices here are for display; pricing recomputes them.
func (r *CartRepository) List(ctx context.Context, userID uuid.UUID) ([]model.CartLine, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT ci.id, ci.user_id, ci.product_id, ci.variant_id, ci.size, ci.quantity,
		       p.name, COALESCE(pv.price, p.base_price)
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		LEFT JOIN product_variants pv ON pv.id = ci.variant_id
		WHERE ci.user_id=$1
		ORDER BY ci.id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.CartLine
	for rows.Next() {
		var l model.CartLine
		if err := rows.Scan(
			&l.ID, &l.UserID, &l.ProductID, &l.VariantID, &l.Size, &l.Quantity,
			&l.Name, &l.UnitPrice,
		); err != nil {
			return nil, err
		}
		l.Subtotal = l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
		out = append(out, l)
	}
	return out, rows.Err()
}
