package repository

import (
	"context"
	"errors"

	"github.com/ramyradad1/lessence-monorepo-sub002/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AddressRepository struct {
	DB *pgxpool.Pool
}

func NewAddressRepository(db *pgxpool.Pool) *AddressRepository {
	return &AddressRepository{DB: db}
}

// Insert is a no-op when the id already exists. The webhook reconciler
// inserts addresses under session-derived ids, so a redelivered event
// lands on the same row.
func (r *AddressRepository) Insert(ctx context.Context, a *model.Address) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO addresses
			(id, user_id, full_name, phone, line1, line2, city, state, postal_code, country, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO NOTHING
	`, a.ID, a.UserID, a.FullName, a.Phone, a.Line1, a.Line2, a.City, a.State, a.PostalCode, a.Country, a.CreatedAt)
	return err
}

// GetByID returns the address row, or nil when not found.
func (r *AddressRepository) GetByID(ctx context.Context, addressID uuid.UUID) (*model.Address, error) {
	var a model.Address
	q := `
		SELECT id, user_id, full_name, phone, line1, line2, city, state, postal_code, country, created_at
		FROM addresses
		WHERE id=$1
	`
	err := r.DB.QueryRow(ctx, q, addressID).Scan(
		&a.ID, &a.UserID, &a.FullName, &a.Phone, &a.Line1, &a.Line2,
		&a.City, &a.State, &a.PostalCode, &a.Country, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *AddressRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Address, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, user_id, full_name, phone, line1, line2, city, state, postal_code, country, created_at
		FROM addresses
		WHERE user_id=$1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Address
	for rows.Next() {
		var a model.Address
		if err := rows.Scan(
			&a.ID, &a.UserID, &a.FullName, &a.Phone, &a.Line1, &a.Line2,
			&a.City, &a.State, &a.PostalCode, &a.Country, &a.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
