package model

import (
	"time"

	"github.com/google/uuid"
)

// Address represents a row in the addresses table.
type Address struct {
	ID         uuid.UUID  `json:"id"`
	UserID     *uuid.UUID `json:"user_id,omitempty"`
	FullName   string     `json:"full_name"`
	Phone      string     `json:"phone"`
	Line1      string     `json:"line1"`
	Line2      string     `json:"line2,omitempty"`
	City       string     `json:"city"`
	State      string     `json:"state,omitempty"`
	PostalCode string     `json:"postal_code"`
	Country    string     `json:"country"`
	CreatedAt  time.Time  `json:"created_at,omitempty"`
}
