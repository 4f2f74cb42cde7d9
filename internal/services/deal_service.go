package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/openestate/realty-service/internal/events"
	"github.com/openestate/realty-service/internal/models"
	"github.com/openestate/realty-service/internal/repositories"
	"github.com/openestate/realty-service/internal/utils"
)

// DealService drives the one-way AVAILABLE → CLOSED transition of a
// property. The heavy lifting — row lock, availability check, deal
// insert, flip, holding — happens inside DealRepository so that all
// three records commit or none do.
type DealService struct {
	dealRepo  repositories.DealRepository
	propRepo  repositories.PropertyRepository
	custRepo  repositories.CustomerRepository
	publisher events.DealPublisher
}

func NewDealService(
	dealRepo repositories.DealRepository,
	propRepo repositories.PropertyRepository,
	custRepo repositories.CustomerRepository,
	publisher events.DealPublisher,
) *DealService {
	return &DealService{
		dealRepo:  dealRepo,
		propRepo:  propRepo,
		custRepo:  custRepo,
		publisher: publisher,
	}
}

func (s *DealService) CreateDeal(
	ctx context.Context,
	propertyID uuid.UUID,
	customerID uuid.UUID,
	price float64,
) (*models.Deal, error) {
	if price <= 0 {
		return nil, utils.ValidationError("Deal price must be positive", nil)
	}

	// Cheap pre-checks for friendly errors. The atomic create
	// re-validates under the row lock, so races caught here are a
	// convenience, not the guarantee.
	prop, err := s.propRepo.GetByID(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("could not load property: %w", err)
	}
	if prop == nil {
		return nil, utils.NotFoundError("Property not found: " + propertyID.String())
	}
	if !prop.Available {
		return nil, utils.ConflictError("Property already sold/rented", utils.ErrPropertyTaken)
	}

	cust, err := s.custRepo.GetByID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("could not load customer: %w", err)
	}
	if cust == nil {
		return nil, utils.NotFoundError("Customer not found: " + customerID.String())
	}

	deal, err := s.dealRepo.CreateDealAtomic(ctx, propertyID, customerID, price)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrPropertyTaken), errors.Is(err, utils.ErrDuplicateDeal):
			return nil, utils.ConflictError("Property already sold/rented", err)
		case errors.Is(err, utils.ErrNotFound):
			return nil, utils.NotFoundError("Property not found: " + propertyID.String())
		default:
			return nil, fmt.Errorf("could not create deal: %w", err)
		}
	}

	if pubErr := s.publisher.PublishDealClosed(ctx, deal); pubErr != nil {
		// The deal is committed; a lost event must not fail the request.
		utils.Logger.WithError(pubErr).Warnf("Failed to publish deal-closed event for deal %s", deal.ID)
	}

	return deal, nil
}

func (s *DealService) GetDeal(ctx context.Context, id uuid.UUID) (*models.Deal, error) {
	deal, err := s.dealRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("could not load deal: %w", err)
	}
	if deal == nil {
		return nil, utils.NotFoundError("Deal not found: " + id.String())
	}
	return deal, nil
}

func (s *DealService) ListDeals(ctx context.Context) ([]*models.Deal, error) {
	return s.dealRepo.ListAll(ctx)
}
