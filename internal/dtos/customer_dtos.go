package dtos

type UpdateProfileRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type FavoriteRequest struct {
	PropertyID string `json:"property_id" validate:"required,uuid4"`
}
