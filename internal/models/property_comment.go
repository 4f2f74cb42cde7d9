package models

import (
	"time"

	"github.com/google/uuid"
)

// PropertyComment is a rated comment on a property, append-only.
// One comment per user per property.
type PropertyComment struct {
	ID         uuid.UUID `json:"id"`
	PropertyID uuid.UUID `json:"property_id"`
	UserID     uuid.UUID `json:"user_id"`
	Rating     int       `json:"rating"`
	Body       string    `json:"body,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
