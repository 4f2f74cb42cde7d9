package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/openestate/realty-service/internal/models"
	"github.com/openestate/realty-service/internal/utils"
)

func newRatingFixture(t *testing.T) (*RatingService, *fakeBrokerRepo, *fakePropertyRepo, *models.Broker, *models.Property) {
	t.Helper()

	brokers := newFakeBrokerRepo()
	props := newFakePropertyRepo()
	ratings := newFakeBrokerRatingRepo(brokers)
	comments := newFakePropertyCommentRepo(props)
	svc := NewRatingService(ratings, comments, brokers, props)

	broker := &models.Broker{ID: uuid.New(), Name: "Meera", UserID: uuid.New()}
	require.NoError(t, brokers.Create(context.Background(), broker))

	prop := &models.Property{
		ID:            uuid.New(),
		BrokerID:      broker.ID,
		Configuration: models.ConfigFlat,
		OfferType:     models.OfferRent,
		OfferCost:     25000,
		AreaSqft:      700,
		City:          "Pune",
		Available:     true,
	}
	props.put(prop)

	return svc, brokers, props, broker, prop
}

func TestRateBrokerAggregatesSequence(t *testing.T) {
	svc, _, _, broker, _ := newRatingFixture(t)
	ctx := context.Background()

	var updated *models.Broker
	for _, score := range []int{4, 5, 3} {
		var err error
		updated, err = svc.RateBroker(ctx, broker.ID, uuid.New(), score, "")
		require.NoError(t, err)
	}

	require.InDelta(t, 4.0, updated.AvgRating, 1e-9)
	require.Equal(t, 3, updated.RatingCount)
}

func TestRateBrokerRejectsOutOfRangeScores(t *testing.T) {
	svc, brokers, _, broker, _ := newRatingFixture(t)
	ctx := context.Background()

	_, err := svc.RateBroker(ctx, broker.ID, uuid.New(), 5, "")
	require.NoError(t, err)

	for _, score := range []int{0, 6, -1} {
		_, err := svc.RateBroker(ctx, broker.ID, uuid.New(), score, "")
		var appErr *utils.AppError
		require.ErrorAs(t, err, &appErr)
		require.Equal(t, 400, appErr.StatusCode)
	}

	// the rejected scores must leave the aggregate untouched
	after, err := brokers.GetByID(ctx, broker.ID)
	require.NoError(t, err)
	require.InDelta(t, 5.0, after.AvgRating, 1e-9)
	require.Equal(t, 1, after.RatingCount)
}

func TestRateBrokerIncrementalAverage(t *testing.T) {
	svc, _, _, broker, _ := newRatingFixture(t)
	ctx := context.Background()

	first, err := svc.RateBroker(ctx, broker.ID, uuid.New(), 5, "")
	require.NoError(t, err)
	require.InDelta(t, 5.0, first.AvgRating, 1e-9)
	require.Equal(t, 1, first.RatingCount)

	second, err := svc.RateBroker(ctx, broker.ID, uuid.New(), 3, "")
	require.NoError(t, err)
	require.InDelta(t, 4.0, second.AvgRating, 1e-9)
	require.Equal(t, 2, second.RatingCount)
}

func TestRateBrokerTwiceBySameCustomerIsConflict(t *testing.T) {
	svc, _, _, broker, _ := newRatingFixture(t)
	ctx := context.Background()
	customerID := uuid.New()

	_, err := svc.RateBroker(ctx, broker.ID, customerID, 4, "helpful")
	require.NoError(t, err)

	_, err = svc.RateBroker(ctx, broker.ID, customerID, 5, "changed my mind")
	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, 409, appErr.StatusCode)
}

func TestRateUnknownBrokerIsNotFound(t *testing.T) {
	svc, _, _, _, _ := newRatingFixture(t)

	_, err := svc.RateBroker(context.Background(), uuid.New(), uuid.New(), 4, "")
	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, 404, appErr.StatusCode)
}

func TestCommentPropertyAggregates(t *testing.T) {
	svc, _, _, _, prop := newRatingFixture(t)
	ctx := context.Background()

	var updated *models.Property
	for _, score := range []int{4, 5, 3} {
		var err error
		updated, err = svc.CommentProperty(ctx, prop.ID, uuid.New(), score, "nice place")
		require.NoError(t, err)
	}

	require.InDelta(t, 4.0, updated.AvgRating, 1e-9)
	require.Equal(t, 3, updated.ReviewCount)
}

func TestCommentPropertyTwiceBySameUserIsConflict(t *testing.T) {
	svc, _, _, _, prop := newRatingFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	_, err := svc.CommentProperty(ctx, prop.ID, userID, 4, "good")
	require.NoError(t, err)

	_, err = svc.CommentProperty(ctx, prop.ID, userID, 2, "on second thought")
	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, 409, appErr.StatusCode)
}

func TestCommentPropertyRejectsOutOfRangeScore(t *testing.T) {
	svc, _, props, _, prop := newRatingFixture(t)
	ctx := context.Background()

	_, err := svc.CommentProperty(ctx, prop.ID, uuid.New(), 0, "")
	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, 400, appErr.StatusCode)

	after, err := props.GetByID(ctx, prop.ID)
	require.NoError(t, err)
	require.Equal(t, 0, after.ReviewCount)
	require.Zero(t, after.AvgRating)
}
