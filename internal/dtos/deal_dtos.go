package dtos

// CreateDealRequest closes a property for the calling customer. The
// price is the negotiated one; it is deliberately not checked against
// the listed offer cost.
type CreateDealRequest struct {
	PropertyID string  `json:"property_id" validate:"required,uuid4"`
	Price      float64 `json:"price" validate:"required,gt=0"`
}
