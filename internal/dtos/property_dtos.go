package dtos

// PropertyRequest is used for both create and edit.
type PropertyRequest struct {
	Configuration string   `json:"configuration" validate:"required"`
	OfferType     string   `json:"offer_type" validate:"required"`
	OfferCost     float64  `json:"offer_cost" validate:"required,gt=0"`
	AreaSqft      float64  `json:"area_sqft" validate:"required,gt=0"`
	Address       string   `json:"address" validate:"max=200"`
	Street        string   `json:"street" validate:"max=100"`
	City          string   `json:"city" validate:"max=100"`
	ImageURLs     []string `json:"image_urls" validate:"dive,url"`
}

// SearchRequest mirrors the optional criteria; absent fields stay nil
// and emit no filter clause.
type SearchRequest struct {
	Configuration *string  `json:"configuration,omitempty"`
	OfferType     *string  `json:"offer_type,omitempty"`
	City          *string  `json:"city,omitempty"`
	Street        *string  `json:"street,omitempty"`
	MinCost       *float64 `json:"min_cost,omitempty" validate:"omitempty,gte=0"`
	MaxCost       *float64 `json:"max_cost,omitempty" validate:"omitempty,gte=0"`
	MinArea       *float64 `json:"min_area,omitempty" validate:"omitempty,gte=0"`
	MaxArea       *float64 `json:"max_area,omitempty" validate:"omitempty,gte=0"`
	MinRating     *float64 `json:"min_rating,omitempty" validate:"omitempty,gte=0,lte=5"`
	MinReviews    *int     `json:"min_reviews,omitempty" validate:"omitempty,gte=0"`

	IncludeUnavailable bool `json:"include_unavailable,omitempty"`
}
