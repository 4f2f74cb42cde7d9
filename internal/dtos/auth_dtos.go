package dtos

// RegisterBrokerRequest creates the broker and its owned credential
// in one step.
type RegisterBrokerRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Phone    string `json:"phone" validate:"max=20"`
}

type RegisterCustomerRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Phone    string `json:"phone" validate:"max=20"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	PrincipalID string `json:"principal_id"`
}

type RegisterResponse struct {
	PrincipalID string `json:"principal_id"`
	UserID      string `json:"user_id"`
	Role        string `json:"role"`
}
