package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/openestate/realty-service/internal/models"
	"github.com/openestate/realty-service/internal/repositories"
	"github.com/openestate/realty-service/internal/utils"
)

// CustomerService owns customer profiles, the favourites set and the
// customer deletion cascade.
type CustomerService struct {
	custRepo repositories.CustomerRepository
	propRepo repositories.PropertyRepository
	dealRepo repositories.DealRepository
}

func NewCustomerService(
	custRepo repositories.CustomerRepository,
	propRepo repositories.PropertyRepository,
	dealRepo repositories.DealRepository,
) *CustomerService {
	return &CustomerService{
		custRepo: custRepo,
		propRepo: propRepo,
		dealRepo: dealRepo,
	}
}

func (s *CustomerService) GetCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	cust, err := s.custRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("could not load customer: %w", err)
	}
	if cust == nil {
		return nil, utils.NotFoundError("Customer not found: " + id.String())
	}
	return cust, nil
}

func (s *CustomerService) ListCustomers(ctx context.Context) ([]*models.Customer, error) {
	return s.custRepo.ListAll(ctx)
}

func (s *CustomerService) UpdateName(ctx context.Context, id uuid.UUID, name string) (*models.Customer, error) {
	err := s.custRepo.UpdateWithRetry(ctx, id, func(c *models.Customer) error {
		c.Name = name
		c.UpdatedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, utils.NotFoundError("Customer not found: " + id.String())
		}
		return nil, fmt.Errorf("could not update customer: %w", err)
	}
	return s.GetCustomer(ctx, id)
}

// AddFavorite saves a listing. Re-adding an already favourited
// listing is a no-op, not a conflict.
func (s *CustomerService) AddFavorite(ctx context.Context, customerID, propertyID uuid.UUID) error {
	if _, err := s.GetCustomer(ctx, customerID); err != nil {
		return err
	}
	prop, err := s.propRepo.GetByID(ctx, propertyID)
	if err != nil {
		return fmt.Errorf("could not load property: %w", err)
	}
	if prop == nil {
		return utils.NotFoundError("Property not found: " + propertyID.String())
	}
	return s.custRepo.AddFavorite(ctx, customerID, propertyID)
}

func (s *CustomerService) RemoveFavorite(ctx context.Context, customerID, propertyID uuid.UUID) error {
	if _, err := s.GetCustomer(ctx, customerID); err != nil {
		return err
	}
	return s.custRepo.RemoveFavorite(ctx, customerID, propertyID)
}

func (s *CustomerService) ListFavorites(ctx context.Context, customerID uuid.UUID) ([]*models.Property, error) {
	if _, err := s.GetCustomer(ctx, customerID); err != nil {
		return nil, err
	}
	ids, err := s.custRepo.ListFavoriteIDs(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("could not list favourites: %w", err)
	}
	return s.loadProperties(ctx, ids)
}

// ListHoldings returns the listings the customer has bought or
// rented. The set is written by the deal engine only.
func (s *CustomerService) ListHoldings(ctx context.Context, customerID uuid.UUID) ([]*models.Property, error) {
	if _, err := s.GetCustomer(ctx, customerID); err != nil {
		return nil, err
	}
	ids, err := s.custRepo.ListHoldingIDs(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("could not list holdings: %w", err)
	}
	return s.loadProperties(ctx, ids)
}

func (s *CustomerService) loadProperties(ctx context.Context, ids []uuid.UUID) ([]*models.Property, error) {
	props := make([]*models.Property, 0, len(ids))
	for _, id := range ids {
		p, err := s.propRepo.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("could not load property %s: %w", id, err)
		}
		if p != nil {
			props = append(props, p)
		}
	}
	return props, nil
}

// DeleteCustomer removes the customer, their membership sets, their
// authored ratings and their user credential in one transaction. A
// customer with closed deals keeps their transaction history and
// cannot be deleted.
func (s *CustomerService) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	cust, err := s.custRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("could not load customer: %w", err)
	}
	if cust == nil {
		return utils.NotFoundError("Customer not found: " + id.String())
	}

	hasDeals, err := s.dealRepo.ExistsByCustomerID(ctx, id)
	if err != nil {
		return fmt.Errorf("could not check customer deals: %w", err)
	}
	if hasDeals {
		return utils.ConflictError("Customer has closed deals and cannot be deleted", utils.ErrCustomerHasDeal)
	}

	if err := s.custRepo.DeleteCascade(ctx, id, cust.UserID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return utils.ConflictError("Customer has closed deals and cannot be deleted", err)
		}
		return fmt.Errorf("could not delete customer: %w", err)
	}
	return nil
}
