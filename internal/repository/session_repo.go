package repository

import (
	"context"
	"errors"
	"time"

	"github.com/ramyradad1/lessence-monorepo-sub002/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SessionRepository struct {
	DB *pgxpool.Pool
}

func NewSessionRepository(db *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{DB: db}
}

// Insert persists the order-reconstruction snapshot at session
// creation so the webhook reconciler never re-reads mutable cart state.
func (r *SessionRepository) Insert(ctx context.Context, s *model.CheckoutSession) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO checkout_sessions (id, provider_ref, user_id, snapshot, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, s.ID, s.ProviderRef, s.UserID, s.Snapshot, s.Status, s.CreatedAt)
	return err
}

func (r *SessionRepository) GetByProviderRef(ctx context.Context, providerRef string) (*model.CheckoutSession, error) {
	var s model.CheckoutSession
	q := `
		SELECT id, provider_ref, user_id, snapshot, status, created_at
		FROM checkout_sessions
		WHERE provider_ref=$1
	`
	err := r.DB.QueryRow(ctx, q, providerRef).Scan(
		&s.ID, &s.ProviderRef, &s.UserID, &s.Snapshot, &s.Status, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepository) MarkStatus(ctx context.Context, sessionID uuid.UUID, status string) error {
	_, err := r.DB.Exec(ctx, `UPDATE checkout_sessions SET status=$2 WHERE id=$1`, sessionID, status)
	return err
}

// PurgeAbandoned deletes abandoned sessions older than the cutoff.
func (r *SessionRepository) PurgeAbandoned(ctx context.Context, olderThan time.Time) (int64, error) {
	tag, err := r.DB.Exec(ctx, `
		DELETE FROM checkout_sessions WHERE status=$1 AND created_at < $2
	`, model.SessionAbandoned, olderThan)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
