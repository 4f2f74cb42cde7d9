package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer owns its User credential. Saved listings (favourites) and
// purchased/rented listings (holdings) are kept as two separate
// membership sets; the deal engine only ever writes holdings.
type Customer struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	UserID    uuid.UUID `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Versioned
}

func (c *Customer) GetID() string { return c.ID.String() }
