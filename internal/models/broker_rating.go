package models

import (
	"time"

	"github.com/google/uuid"
)

// BrokerRating is an append-only fact feeding the broker's running
// aggregate. One rating per customer per broker.
type BrokerRating struct {
	ID         uuid.UUID `json:"id"`
	BrokerID   uuid.UUID `json:"broker_id"`
	CustomerID uuid.UUID `json:"customer_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
