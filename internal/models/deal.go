package models

import (
	"time"

	"github.com/google/uuid"
)

// Deal is the immutable record of a completed sale or rental. A
// property can be the subject of at most one deal ever; the
// deals.property_id unique index backs that up under races.
type Deal struct {
	ID         uuid.UUID `json:"id"`
	DealDate   time.Time `json:"deal_date"`
	DealCost   float64   `json:"deal_cost"`
	PropertyID uuid.UUID `json:"property_id"`
	CustomerID uuid.UUID `json:"customer_id"`
	CreatedAt  time.Time `json:"created_at"`
}
