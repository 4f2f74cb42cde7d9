package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/openestate/realty-service/internal/models"
	"github.com/openestate/realty-service/internal/repositories"
	"github.com/openestate/realty-service/internal/utils"
)

const (
	// Valid score bounds, inclusive.
	minRating = 1
	maxRating = 5
)

// RatingService owns the two feedback streams: star ratings on
// brokers and rated comments on properties. Both feed a running
// (avg, count) aggregate that is updated in the same transaction as
// the inserted fact, so readers never see a half-applied rating.
type RatingService struct {
	brokerRatingRepo repositories.BrokerRatingRepository
	commentRepo      repositories.PropertyCommentRepository
	brokerRepo       repositories.BrokerRepository
	propRepo         repositories.PropertyRepository
}

func NewRatingService(
	brokerRatingRepo repositories.BrokerRatingRepository,
	commentRepo repositories.PropertyCommentRepository,
	brokerRepo repositories.BrokerRepository,
	propRepo repositories.PropertyRepository,
) *RatingService {
	return &RatingService{
		brokerRatingRepo: brokerRatingRepo,
		commentRepo:      commentRepo,
		brokerRepo:       brokerRepo,
		propRepo:         propRepo,
	}
}

func validateScore(score int) error {
	if score < minRating || score > maxRating {
		return utils.ValidationError(
			fmt.Sprintf("Rating must be between %d and %d", minRating, maxRating),
			utils.ErrInvalidRating,
		)
	}
	return nil
}

// RateBroker records a customer's rating and returns the broker with
// the refreshed aggregate. The score is validated before anything is
// written; an out-of-range score leaves the aggregate untouched.
func (s *RatingService) RateBroker(
	ctx context.Context,
	brokerID uuid.UUID,
	customerID uuid.UUID,
	score int,
	comment string,
) (*models.Broker, error) {
	if err := validateScore(score); err != nil {
		return nil, err
	}

	rating := &models.BrokerRating{
		ID:         uuid.New(),
		BrokerID:   brokerID,
		CustomerID: customerID,
		Rating:     score,
		Comment:    comment,
		CreatedAt:  time.Now().UTC(),
	}

	broker, err := s.brokerRatingRepo.AddRatingAtomic(ctx, rating)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrNotFound):
			return nil, utils.NotFoundError("Broker not found: " + brokerID.String())
		case errors.Is(err, utils.ErrAlreadyRated):
			return nil, utils.ConflictError("You have already rated this broker", err)
		default:
			return nil, fmt.Errorf("could not record broker rating: %w", err)
		}
	}
	return broker, nil
}

// CommentProperty records a rated comment and returns the property
// with the refreshed aggregate.
func (s *RatingService) CommentProperty(
	ctx context.Context,
	propertyID uuid.UUID,
	userID uuid.UUID,
	score int,
	body string,
) (*models.Property, error) {
	if err := validateScore(score); err != nil {
		return nil, err
	}

	comment := &models.PropertyComment{
		ID:         uuid.New(),
		PropertyID: propertyID,
		UserID:     userID,
		Rating:     score,
		Body:       body,
		CreatedAt:  time.Now().UTC(),
	}

	prop, err := s.commentRepo.AddCommentAtomic(ctx, comment)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrNotFound):
			return nil, utils.NotFoundError("Property not found: " + propertyID.String())
		case errors.Is(err, utils.ErrAlreadyRated):
			return nil, utils.ConflictError("You have already commented on this property", err)
		default:
			return nil, fmt.Errorf("could not record property comment: %w", err)
		}
	}
	return prop, nil
}

func (s *RatingService) ListBrokerRatings(ctx context.Context, brokerID uuid.UUID) ([]*models.BrokerRating, error) {
	broker, err := s.brokerRepo.GetByID(ctx, brokerID)
	if err != nil {
		return nil, fmt.Errorf("could not load broker: %w", err)
	}
	if broker == nil {
		return nil, utils.NotFoundError("Broker not found: " + brokerID.String())
	}
	return s.brokerRatingRepo.ListByBrokerID(ctx, brokerID)
}

func (s *RatingService) ListPropertyComments(ctx context.Context, propertyID uuid.UUID) ([]*models.PropertyComment, error) {
	prop, err := s.propRepo.GetByID(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("could not load property: %w", err)
	}
	if prop == nil {
		return nil, utils.NotFoundError("Property not found: " + propertyID.String())
	}
	return s.commentRepo.ListByPropertyID(ctx, propertyID)
}
