package models

import (
	"time"

	"github.com/google/uuid"
)

// Broker owns its User credential, its Properties and its ratings;
// deleting a broker cascades over all of them.
type Broker struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	UserID      uuid.UUID `json:"user_id"`
	AvgRating   float64   `json:"avg_rating"`
	RatingCount int       `json:"rating_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Versioned
}

func (b *Broker) GetID() string { return b.ID.String() }
