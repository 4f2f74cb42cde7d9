package controllers

import (
	"net/http"
	"strconv"

	"github.com/openestate/realty-service/internal/dtos"
	"github.com/openestate/realty-service/internal/services"
	"github.com/openestate/realty-service/internal/utils"
)

type BrokerController struct {
	brokerService   *services.BrokerService
	propertyService *services.PropertyService
	ratingService   *services.RatingService
	authService     *services.AuthService
}

func NewBrokerController(
	brokerService *services.BrokerService,
	propertyService *services.PropertyService,
	ratingService *services.RatingService,
	authService *services.AuthService,
) *BrokerController {
	return &BrokerController{
		brokerService:   brokerService,
		propertyService: propertyService,
		ratingService:   ratingService,
		authService:     authService,
	}
}

// GET /api/v1/brokers
func (c *BrokerController) ListBrokersHandler(w http.ResponseWriter, r *http.Request) {
	brokers, err := c.brokerService.ListBrokers(r.Context())
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, brokers)
}

// GET /api/v1/brokers/top-rated?limit=N
func (c *BrokerController) TopRatedBrokersHandler(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	brokers, err := c.brokerService.ListTopRated(r.Context(), limit)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, brokers)
}

// GET /api/v1/brokers/{brokerID}
func (c *BrokerController) GetBrokerHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "brokerID")
	if !ok {
		return
	}
	broker, err := c.brokerService.GetBroker(r.Context(), id)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, broker)
}

// GET /api/v1/brokers/{brokerID}/properties
func (c *BrokerController) ListBrokerPropertiesHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "brokerID")
	if !ok {
		return
	}
	props, err := c.propertyService.ListBrokerProperties(r.Context(), id)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, props)
}

// PUT /api/v1/brokers/me  (broker only)
func (c *BrokerController) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := authUserID(w, r)
	if !ok {
		return
	}
	broker, err := c.authService.BrokerForUser(r.Context(), userID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	var req dtos.UpdateProfileRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	updated, err := c.brokerService.UpdateName(r.Context(), broker.ID, req.Name)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, updated)
}

// DELETE /api/v1/brokers/me  (broker only)
func (c *BrokerController) DeleteAccountHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := authUserID(w, r)
	if !ok {
		return
	}
	broker, err := c.authService.BrokerForUser(r.Context(), userID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	if err := c.brokerService.DeleteBroker(r.Context(), broker.ID); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/v1/brokers/{brokerID}/ratings
func (c *BrokerController) ListRatingsHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "brokerID")
	if !ok {
		return
	}
	ratings, err := c.ratingService.ListBrokerRatings(r.Context(), id)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, ratings)
}

// POST /api/v1/brokers/{brokerID}/ratings  (customer only)
func (c *BrokerController) RateBrokerHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "brokerID")
	if !ok {
		return
	}
	userID, ok := authUserID(w, r)
	if !ok {
		return
	}
	customer, err := c.authService.CustomerForUser(r.Context(), userID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	var req dtos.RateBrokerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	broker, err := c.ratingService.RateBroker(r.Context(), id, customer.ID, req.Rating, req.Comment)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, dtos.AggregateResponse{
		TargetID:  broker.ID.String(),
		AvgRating: broker.AvgRating,
		Count:     broker.RatingCount,
	})
}
