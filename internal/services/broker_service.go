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

// BrokerService owns broker profiles and the broker deletion cascade.
type BrokerService struct {
	brokerRepo repositories.BrokerRepository
	propRepo   repositories.PropertyRepository
}

func NewBrokerService(
	brokerRepo repositories.BrokerRepository,
	propRepo repositories.PropertyRepository,
) *BrokerService {
	return &BrokerService{
		brokerRepo: brokerRepo,
		propRepo:   propRepo,
	}
}

func (s *BrokerService) GetBroker(ctx context.Context, id uuid.UUID) (*models.Broker, error) {
	broker, err := s.brokerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("could not load broker: %w", err)
	}
	if broker == nil {
		return nil, utils.NotFoundError("Broker not found: " + id.String())
	}
	return broker, nil
}

func (s *BrokerService) ListBrokers(ctx context.Context) ([]*models.Broker, error) {
	return s.brokerRepo.ListAll(ctx)
}

func (s *BrokerService) ListTopRated(ctx context.Context, limit int) ([]*models.Broker, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.brokerRepo.ListTopRated(ctx, limit)
}

func (s *BrokerService) UpdateName(ctx context.Context, id uuid.UUID, name string) (*models.Broker, error) {
	err := s.brokerRepo.UpdateWithRetry(ctx, id, func(b *models.Broker) error {
		b.Name = name
		b.UpdatedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, utils.NotFoundError("Broker not found: " + id.String())
		}
		return nil, fmt.Errorf("could not update broker: %w", err)
	}
	return s.GetBroker(ctx, id)
}

// DeleteBroker removes the broker's ratings, every listing with its
// dependent rows, the broker itself and its user credential in one
// transaction. A broker with a closed deal on any listing cannot be
// deleted; the deal record outlives everything else.
func (s *BrokerService) DeleteBroker(ctx context.Context, id uuid.UUID) error {
	broker, err := s.brokerRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("could not load broker: %w", err)
	}
	if broker == nil {
		return utils.NotFoundError("Broker not found: " + id.String())
	}

	// Friendly pre-check; the deals FK inside the cascade is the
	// actual guarantee.
	props, err := s.propRepo.ListByBrokerID(ctx, id)
	if err != nil {
		return fmt.Errorf("could not list broker properties: %w", err)
	}
	for _, p := range props {
		if !p.Available {
			return utils.ConflictError("Broker has properties with closed deals and cannot be deleted", utils.ErrCustomerHasDeal)
		}
	}

	if err := s.brokerRepo.DeleteCascade(ctx, id, broker.UserID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return utils.ConflictError("Broker has properties with closed deals and cannot be deleted", err)
		}
		return fmt.Errorf("could not delete broker: %w", err)
	}
	return nil
}
