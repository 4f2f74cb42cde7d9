package controllers

import (
	"net/http"

	"github.com/openestate/realty-service/internal/dtos"
	"github.com/openestate/realty-service/internal/services"
	"github.com/openestate/realty-service/internal/utils"
)

type PropertyController struct {
	propertyService *services.PropertyService
	ratingService   *services.RatingService
	authService     *services.AuthService
}

func NewPropertyController(
	propertyService *services.PropertyService,
	ratingService *services.RatingService,
	authService *services.AuthService,
) *PropertyController {
	return &PropertyController{
		propertyService: propertyService,
		ratingService:   ratingService,
		authService:     authService,
	}
}

// POST /api/v1/properties  (broker only)
func (c *PropertyController) CreatePropertyHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := authUserID(w, r)
	if !ok {
		return
	}
	broker, err := c.authService.BrokerForUser(r.Context(), userID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	var req dtos.PropertyRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	prop, err := c.propertyService.CreateProperty(r.Context(), broker.ID, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, prop)
}

// GET /api/v1/properties
func (c *PropertyController) ListPropertiesHandler(w http.ResponseWriter, r *http.Request) {
	props, err := c.propertyService.ListProperties(r.Context())
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, props)
}

// GET /api/v1/properties/{propertyID}
func (c *PropertyController) GetPropertyHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "propertyID")
	if !ok {
		return
	}
	prop, err := c.propertyService.GetProperty(r.Context(), id)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, prop)
}

// POST /api/v1/properties/search
func (c *PropertyController) SearchPropertiesHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.SearchRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	props, err := c.propertyService.Search(r.Context(), req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, props)
}

// PUT /api/v1/properties/{propertyID}  (owning broker only)
func (c *PropertyController) UpdatePropertyHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "propertyID")
	if !ok {
		return
	}
	userID, ok := authUserID(w, r)
	if !ok {
		return
	}
	broker, err := c.authService.BrokerForUser(r.Context(), userID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	var req dtos.PropertyRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	prop, err := c.propertyService.UpdateProperty(r.Context(), id, broker.ID, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, prop)
}

// DELETE /api/v1/properties/{propertyID}  (owning broker only)
func (c *PropertyController) DeletePropertyHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "propertyID")
	if !ok {
		return
	}
	userID, ok := authUserID(w, r)
	if !ok {
		return
	}
	broker, err := c.authService.BrokerForUser(r.Context(), userID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	if err := c.propertyService.DeleteProperty(r.Context(), id, broker.ID); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/v1/properties/{propertyID}/comments
func (c *PropertyController) ListCommentsHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "propertyID")
	if !ok {
		return
	}
	comments, err := c.ratingService.ListPropertyComments(r.Context(), id)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, comments)
}

// POST /api/v1/properties/{propertyID}/comments
func (c *PropertyController) CommentPropertyHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "propertyID")
	if !ok {
		return
	}
	userID, ok := authUserID(w, r)
	if !ok {
		return
	}

	var req dtos.CommentPropertyRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	prop, err := c.ratingService.CommentProperty(r.Context(), id, userID, req.Rating, req.Body)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, dtos.AggregateResponse{
		TargetID:  prop.ID.String(),
		AvgRating: prop.AvgRating,
		Count:     prop.ReviewCount,
	})
}
