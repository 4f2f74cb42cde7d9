package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/openestate/realty-service/internal/dtos"
	"github.com/openestate/realty-service/internal/models"
	"github.com/openestate/realty-service/internal/services"
	"github.com/openestate/realty-service/internal/utils"
)

type CustomerController struct {
	customerService *services.CustomerService
	authService     *services.AuthService
}

func NewCustomerController(
	customerService *services.CustomerService,
	authService *services.AuthService,
) *CustomerController {
	return &CustomerController{
		customerService: customerService,
		authService:     authService,
	}
}

func (c *CustomerController) callerCustomer(w http.ResponseWriter, r *http.Request) (*models.Customer, bool) {
	userID, ok := authUserID(w, r)
	if !ok {
		return nil, false
	}
	customer, err := c.authService.CustomerForUser(r.Context(), userID)
	if err != nil {
		utils.HandleAppError(w, err)
		return nil, false
	}
	return customer, true
}

// GET /api/v1/customers/me
func (c *CustomerController) GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	customer, ok := c.callerCustomer(w, r)
	if !ok {
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, customer)
}

// PUT /api/v1/customers/me
func (c *CustomerController) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	customer, ok := c.callerCustomer(w, r)
	if !ok {
		return
	}

	var req dtos.UpdateProfileRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	updated, err := c.customerService.UpdateName(r.Context(), customer.ID, req.Name)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, updated)
}

// DELETE /api/v1/customers/me
func (c *CustomerController) DeleteAccountHandler(w http.ResponseWriter, r *http.Request) {
	customer, ok := c.callerCustomer(w, r)
	if !ok {
		return
	}
	if err := c.customerService.DeleteCustomer(r.Context(), customer.ID); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/v1/customers/me/favorites
func (c *CustomerController) ListFavoritesHandler(w http.ResponseWriter, r *http.Request) {
	customer, ok := c.callerCustomer(w, r)
	if !ok {
		return
	}
	props, err := c.customerService.ListFavorites(r.Context(), customer.ID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, props)
}

// POST /api/v1/customers/me/favorites
func (c *CustomerController) AddFavoriteHandler(w http.ResponseWriter, r *http.Request) {
	customer, ok := c.callerCustomer(w, r)
	if !ok {
		return
	}

	var req dtos.FavoriteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	propertyID, err := uuid.Parse(req.PropertyID)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Invalid property_id", nil, err)
		return
	}

	if err := c.customerService.AddFavorite(r.Context(), customer.ID, propertyID); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DELETE /api/v1/customers/me/favorites/{propertyID}
func (c *CustomerController) RemoveFavoriteHandler(w http.ResponseWriter, r *http.Request) {
	propertyID, ok := pathUUID(w, r, "propertyID")
	if !ok {
		return
	}
	customer, ok := c.callerCustomer(w, r)
	if !ok {
		return
	}

	if err := c.customerService.RemoveFavorite(r.Context(), customer.ID, propertyID); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/v1/customers/me/holdings
func (c *CustomerController) ListHoldingsHandler(w http.ResponseWriter, r *http.Request) {
	customer, ok := c.callerCustomer(w, r)
	if !ok {
		return
	}
	props, err := c.customerService.ListHoldings(r.Context(), customer.ID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, props)
}
