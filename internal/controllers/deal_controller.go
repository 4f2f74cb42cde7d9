package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/openestate/realty-service/internal/dtos"
	"github.com/openestate/realty-service/internal/services"
	"github.com/openestate/realty-service/internal/utils"
)

type DealController struct {
	dealService *services.DealService
	authService *services.AuthService
}

func NewDealController(dealService *services.DealService, authService *services.AuthService) *DealController {
	return &DealController{dealService: dealService, authService: authService}
}

// POST /api/v1/deals  (customer only)
func (c *DealController) CreateDealHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := authUserID(w, r)
	if !ok {
		return
	}
	customer, err := c.authService.CustomerForUser(r.Context(), userID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	var req dtos.CreateDealRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	propertyID, err := uuid.Parse(req.PropertyID)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Invalid property_id", nil, err)
		return
	}

	deal, err := c.dealService.CreateDeal(r.Context(), propertyID, customer.ID, req.Price)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, deal)
}

// GET /api/v1/deals/{dealID}
func (c *DealController) GetDealHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "dealID")
	if !ok {
		return
	}
	deal, err := c.dealService.GetDeal(r.Context(), id)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, deal)
}

// GET /api/v1/deals
func (c *DealController) ListDealsHandler(w http.ResponseWriter, r *http.Request) {
	deals, err := c.dealService.ListDeals(r.Context())
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, deals)
}
