package repository

import (
	"context"
	"errors"

	"github.com/ramyradad1/lessence-monorepo-sub002/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OrderRepository struct {
	DB *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{DB: db}
}

// IsUniqueViolation reports whether err is a Postgres 23505 on the
// given constraint. Empty constraint matches any unique violation.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

func (r *OrderRepository) InsertOrderTx(ctx context.Context, tx pgx.Tx, o *model.Order) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO orders
			(id, order_number, user_id, status, subtotal, discount_amount,
			 total_amount, shipping_address_id, coupon_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, o.ID, o.OrderNumber, o.UserID, o.Status, o.Subtotal, o.DiscountAmount,
		o.TotalAmount, o.ShippingAddressID, o.CouponID, o.CreatedAt)
	return err
}

func (r *OrderRepository) InsertItemTx(ctx context.Context, tx pgx.Tx, it *model.OrderItem) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO order_items (id, order_id, product_id, variant_id, size, price, quantity)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, it.ID, it.OrderID, it.ProductID, it.VariantID, it.Size, it.Price, it.Quantity)
	return err
}

func (r *OrderRepository) InsertStatusChangeTx(ctx context.Context, tx pgx.Tx, ch *model.StatusChange) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO order_status_history (id, order_id, from_status, to_status, actor, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, ch.ID, ch.OrderID, ch.FromStatus, ch.ToStatus, ch.Actor, ch.CreatedAt)
	return err
}

// StatusForUpdateTx locks the order row and returns its status.
func (r *OrderRepository) StatusForUpdateTx(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) (model.OrderStatus, error) {
	var status model.OrderStatus
	err := tx.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1 FOR UPDATE`, orderID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", errors.New("order not found")
		}
		return "", err
	}
	return status, nil
}

func (r *OrderRepository) SetStatusTx(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, status model.OrderStatus) error {
	_, err := tx.Exec(ctx, `UPDATE orders SET status=$2 WHERE id=$1`, orderID, status)
	return err
}

// GetByID returns the order with its items, or nil when not found.
func (r *OrderRepository) GetByID(ctx context.Context, orderID uuid.UUID) (*model.Order, error) {
	var o model.Order
	q := `
		SELECT id, order_number, user_id, status, subtotal, discount_amount,
		       total_amount, shipping_address_id, coupon_id, created_at
		FROM orders
		WHERE id=$1
	`
	err := r.DB.QueryRow(ctx, q, orderID).Scan(
		&o.ID, &o.OrderNumber, &o.UserID, &o.Status, &o.Subtotal, &o.DiscountAmount,
		&o.TotalAmount, &o.ShippingAddressID, &o.CouponID, &o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	rows, err := r.DB.Query(ctx, `
		SELECT id, order_id, product_id, variant_id, size, price, quantity
		FROM order_items
		WHERE order_id=$1
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.VariantID, &it.Size, &it.Price, &it.Quantity); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, it)
	}
	return &o, rows.Err()
}

// ListByUser returns the user's orders, newest first, without items.
func (r *OrderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, order_number, user_id, status, subtotal, discount_amount,
		       total_amount, shipping_address_id, coupon_id, created_at
		FROM orders
		WHERE user_id=$1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Order
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(
			&o.ID, &o.OrderNumber, &o.UserID, &o.Status, &o.Subtotal, &o.DiscountAmount,
			&o.TotalAmount, &o.ShippingAddressID, &o.CouponID, &o.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
