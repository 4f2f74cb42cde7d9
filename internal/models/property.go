package models

import (
	"time"

	"github.com/google/uuid"
)

// Property is a single listing. Available=true until a deal closes it;
// there is no way back to available afterwards.
//
// Rating invariant: ReviewCount == 0 implies AvgRating == 0, and
// AvgRating stays within [1,5] whenever ReviewCount > 0.
type Property struct {
	ID            uuid.UUID      `json:"id"`
	BrokerID      uuid.UUID      `json:"broker_id"`
	Configuration PropertyConfig `json:"configuration"`
	OfferType     OfferType      `json:"offer_type"`
	OfferCost     float64        `json:"offer_cost"`
	AreaSqft      float64        `json:"area_sqft"`
	Address       string         `json:"address"`
	Street        string         `json:"street"`
	City          string         `json:"city"`
	Available     bool           `json:"available"`
	ImageURLs     []string       `json:"image_urls"` // insertion order preserved
	AvgRating     float64        `json:"avg_rating"`
	ReviewCount   int            `json:"review_count"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	Versioned
}

func (p *Property) GetID() string { return p.ID.String() }
