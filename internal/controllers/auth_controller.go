package controllers

import (
	"net/http"

	"github.com/openestate/realty-service/internal/dtos"
	"github.com/openestate/realty-service/internal/services"
	"github.com/openestate/realty-service/internal/utils"
)

type AuthController struct {
	authService *services.AuthService
}

func NewAuthController(authService *services.AuthService) *AuthController {
	return &AuthController{authService: authService}
}

// POST /api/v1/auth/register/broker
func (c *AuthController) RegisterBrokerHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.RegisterBrokerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	broker, err := c.authService.RegisterBroker(r.Context(), req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, dtos.RegisterResponse{
		PrincipalID: broker.ID.String(),
		UserID:      broker.UserID.String(),
		Role:        "BROKER",
	})
}

// POST /api/v1/auth/register/customer
func (c *AuthController) RegisterCustomerHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.RegisterCustomerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	cust, err := c.authService.RegisterCustomer(r.Context(), req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, dtos.RegisterResponse{
		PrincipalID: cust.ID.String(),
		UserID:      cust.UserID.String(),
		Role:        "CUSTOMER",
	})
}

// POST /api/v1/auth/login
func (c *AuthController) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	resp, err := c.authService.Login(r.Context(), req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, resp)
}
