package repository

import (
	"context"
	"errors"

	"github.com/ramyradad1/lessence-monorepo-sub002/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PaymentRepository struct {
	DB *pgxpool.Pool
}

func NewPaymentRepository(db *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{DB: db}
}

// GetByProviderRef is the idempotency gate: it returns the payment row
// previously written for this provider token, or nil on first delivery.
func (r *PaymentRepository) GetByProviderRef(ctx context.Context, providerRef string) (*model.Payment, error) {
	var p model.Payment
	q := `
		SELECT id, order_id, provider, provider_ref, amount, status,
		       payload, created_at, paid_at
		FROM payments
		WHERE provider_ref=$1
	`
	err := r.DB.QueryRow(ctx, q, providerRef).Scan(
		&p.ID, &p.OrderID, &p.Provider, &p.ProviderRef, &p.Amount, &p.Status,
		&p.Payload, &p.CreatedAt, &p.PaidAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// InsertTx appends the payment row inside the order transaction. The
// unique constraint on provider_ref backstops the idempotency gate
// when two deliveries race past the pre-check.
func (r *PaymentRepository) InsertTx(ctx context.Context, tx pgx.Tx, p *model.Payment) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO payments
			(id, order_id, provider, provider_ref, amount, status, payload, created_at, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, p.ID, p.OrderID, p.Provider, p.ProviderRef, p.Amount, p.Status, p.Payload, p.CreatedAt, p.PaidAt)
	return err
}
