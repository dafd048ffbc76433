package repository

import (
	"context"
	"errors"

	"github.com/ramyradad1/lessence-monorepo-sub002/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CouponRepository struct {
	DB *pgxpool.Pool
}

func NewCouponRepository(db *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{DB: db}
}

// GetByCode returns the coupon row, or nil when no such code exists.
func (r *CouponRepository) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	var c model.Coupon
	q := `
		SELECT id, code, discount_type, discount_amount,
		       valid_from, valid_until, usage_limit, times_used,
		       min_order_amount, max_discount_amount, is_active
		FROM coupons
		WHERE code=$1
	`
	err := r.DB.QueryRow(ctx, q, code).Scan(
		&c.ID, &c.Code, &c.DiscountType, &c.DiscountAmount,
		&c.ValidFrom, &c.ValidUntil, &c.UsageLimit, &c.TimesUsed,
		&c.MinOrderAmount, &c.MaxDiscountAmount, &c.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// IncrementUsageTx bumps times_used inside the order transaction,
// guarded so the counter never passes usage_limit even under
// concurrent redemptions. Returns false when the limit is already hit.
func (r *CouponRepository) IncrementUsageTx(ctx context.Context, tx pgx.Tx, couponID uuid.UUID) (bool, error) {
	tag, err := tx.Exec(ctx, `
		UPDATE coupons
		SET times_used = times_used + 1
		WHERE id=$1
		  AND (usage_limit IS NULL OR times_used < usage_limit)
	`, couponID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
