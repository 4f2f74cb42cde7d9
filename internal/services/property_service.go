package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/openestate/realty-service/internal/dtos"
	"github.com/openestate/realty-service/internal/models"
	"github.com/openestate/realty-service/internal/repositories"
	"github.com/openestate/realty-service/internal/search"
	"github.com/openestate/realty-service/internal/utils"
)

// PropertyService owns listing CRUD and search. Search goes through
// the filter compiler so that the API criteria and the SQL the
// repository runs cannot drift apart.
type PropertyService struct {
	propRepo    repositories.PropertyRepository
	brokerRepo  repositories.BrokerRepository
	commentRepo repositories.PropertyCommentRepository
}

func NewPropertyService(
	propRepo repositories.PropertyRepository,
	brokerRepo repositories.BrokerRepository,
	commentRepo repositories.PropertyCommentRepository,
) *PropertyService {
	return &PropertyService{
		propRepo:    propRepo,
		brokerRepo:  brokerRepo,
		commentRepo: commentRepo,
	}
}

func (s *PropertyService) CreateProperty(ctx context.Context, brokerID uuid.UUID, req dtos.PropertyRequest) (*models.Property, error) {
	config, err := models.ParsePropertyConfig(strings.ToUpper(req.Configuration))
	if err != nil {
		return nil, utils.ValidationError(err.Error(), err)
	}
	offer, err := models.ParseOfferType(strings.ToUpper(req.OfferType))
	if err != nil {
		return nil, utils.ValidationError(err.Error(), err)
	}

	broker, err := s.brokerRepo.GetByID(ctx, brokerID)
	if err != nil {
		return nil, fmt.Errorf("could not load broker: %w", err)
	}
	if broker == nil {
		return nil, utils.NotFoundError("Broker not found: " + brokerID.String())
	}

	now := time.Now().UTC()
	prop := &models.Property{
		ID:            uuid.New(),
		BrokerID:      brokerID,
		Configuration: config,
		OfferType:     offer,
		OfferCost:     req.OfferCost,
		AreaSqft:      req.AreaSqft,
		Address:       req.Address,
		Street:        req.Street,
		City:          req.City,
		Available:     true,
		ImageURLs:     req.ImageURLs,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.propRepo.Create(ctx, prop); err != nil {
		return nil, fmt.Errorf("could not create property: %w", err)
	}
	return prop, nil
}

func (s *PropertyService) GetProperty(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	prop, err := s.propRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("could not load property: %w", err)
	}
	if prop == nil {
		return nil, utils.NotFoundError("Property not found: " + id.String())
	}
	return prop, nil
}

func (s *PropertyService) ListProperties(ctx context.Context) ([]*models.Property, error) {
	return s.propRepo.ListAll(ctx)
}

func (s *PropertyService) ListBrokerProperties(ctx context.Context, brokerID uuid.UUID) ([]*models.Property, error) {
	broker, err := s.brokerRepo.GetByID(ctx, brokerID)
	if err != nil {
		return nil, fmt.Errorf("could not load broker: %w", err)
	}
	if broker == nil {
		return nil, utils.NotFoundError("Broker not found: " + brokerID.String())
	}
	return s.propRepo.ListByBrokerID(ctx, brokerID)
}

// Search compiles the request into a filter and hands it to the
// repository. Invalid enum tokens or inverted ranges fail here,
// before any query runs.
func (s *PropertyService) Search(ctx context.Context, req dtos.SearchRequest) ([]*models.Property, error) {
	criteria, err := criteriaFromRequest(req)
	if err != nil {
		return nil, err
	}

	filter, err := search.Compile(criteria)
	if err != nil {
		return nil, utils.ValidationError(err.Error(), err)
	}

	return s.propRepo.Search(ctx, filter)
}

func criteriaFromRequest(req dtos.SearchRequest) (search.Criteria, error) {
	c := search.Criteria{
		City:               req.City,
		Street:             req.Street,
		MinCost:            req.MinCost,
		MaxCost:            req.MaxCost,
		MinArea:            req.MinArea,
		MaxArea:            req.MaxArea,
		MinRating:          req.MinRating,
		MinReviews:         req.MinReviews,
		IncludeUnavailable: req.IncludeUnavailable,
	}

	if req.Configuration != nil {
		config, err := models.ParsePropertyConfig(strings.ToUpper(*req.Configuration))
		if err != nil {
			return search.Criteria{}, utils.ValidationError(err.Error(), err)
		}
		c.Configuration = &config
	}
	if req.OfferType != nil {
		offer, err := models.ParseOfferType(strings.ToUpper(*req.OfferType))
		if err != nil {
			return search.Criteria{}, utils.ValidationError(err.Error(), err)
		}
		c.OfferType = &offer
	}
	return c, nil
}

// UpdateProperty edits the mutable listing fields. Availability and
// the rating aggregate are not editable here; those belong to the
// deal and rating flows.
func (s *PropertyService) UpdateProperty(ctx context.Context, id uuid.UUID, brokerID uuid.UUID, req dtos.PropertyRequest) (*models.Property, error) {
	config, err := models.ParsePropertyConfig(strings.ToUpper(req.Configuration))
	if err != nil {
		return nil, utils.ValidationError(err.Error(), err)
	}
	offer, err := models.ParseOfferType(strings.ToUpper(req.OfferType))
	if err != nil {
		return nil, utils.ValidationError(err.Error(), err)
	}

	if err := s.authorizeBroker(ctx, id, brokerID); err != nil {
		return nil, err
	}

	err = s.propRepo.UpdateWithRetry(ctx, id, func(p *models.Property) error {
		p.Configuration = config
		p.OfferType = offer
		p.OfferCost = req.OfferCost
		p.AreaSqft = req.AreaSqft
		p.Address = req.Address
		p.Street = req.Street
		p.City = req.City
		p.UpdatedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, utils.NotFoundError("Property not found: " + id.String())
		}
		return nil, fmt.Errorf("could not update property: %w", err)
	}

	if err := s.propRepo.ReplaceImages(ctx, id, req.ImageURLs); err != nil {
		return nil, fmt.Errorf("could not replace property images: %w", err)
	}

	return s.GetProperty(ctx, id)
}

// DeleteProperty removes the listing with its comments, images and
// favourite/holding memberships. A property with a closed deal keeps
// its history and cannot be deleted.
func (s *PropertyService) DeleteProperty(ctx context.Context, id uuid.UUID, brokerID uuid.UUID) error {
	if err := s.authorizeBroker(ctx, id, brokerID); err != nil {
		return err
	}

	if err := s.propRepo.Delete(ctx, id); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return utils.ConflictError("Property has a closed deal and cannot be deleted", err)
		}
		return fmt.Errorf("could not delete property: %w", err)
	}
	return nil
}

func (s *PropertyService) authorizeBroker(ctx context.Context, propertyID, brokerID uuid.UUID) error {
	prop, err := s.propRepo.GetByID(ctx, propertyID)
	if err != nil {
		return fmt.Errorf("could not load property: %w", err)
	}
	if prop == nil {
		return utils.NotFoundError("Property not found: " + propertyID.String())
	}
	if prop.BrokerID != brokerID {
		return &utils.AppError{
			StatusCode: 403,
			Code:       utils.ErrCodeForbidden,
			Message:    "Property belongs to another broker",
		}
	}
	return nil
}
