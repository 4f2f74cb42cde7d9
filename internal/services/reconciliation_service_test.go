package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/openestate/realty-service/internal/models"
)

func TestReconciliationRepairsDriftedAggregates(t *testing.T) {
	brokers := newFakeBrokerRepo()
	props := newFakePropertyRepo()
	ratings := newFakeBrokerRatingRepo(brokers)
	comments := newFakePropertyCommentRepo(props)
	ratingSvc := NewRatingService(ratings, comments, brokers, props)
	svc := NewReconciliationService(brokers, props, ratings, comments)
	ctx := context.Background()

	broker := &models.Broker{ID: uuid.New(), Name: "Meera", UserID: uuid.New()}
	require.NoError(t, brokers.Create(ctx, broker))

	for _, score := range []int{4, 5, 3} {
		_, err := ratingSvc.RateBroker(ctx, broker.ID, uuid.New(), score, "")
		require.NoError(t, err)
	}

	// corrupt the stored aggregate behind the service's back
	require.NoError(t, brokers.UpdateWithRetry(ctx, broker.ID, func(b *models.Broker) error {
		b.AvgRating = 1.5
		b.RatingCount = 99
		return nil
	}))

	fixed, err := svc.Run(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, fixed)

	after, err := brokers.GetByID(ctx, broker.ID)
	require.NoError(t, err)
	require.InDelta(t, 4.0, after.AvgRating, 1e-9)
	require.Equal(t, 3, after.RatingCount)
}

func TestReconciliationZeroesAggregateWithoutHistory(t *testing.T) {
	brokers := newFakeBrokerRepo()
	props := newFakePropertyRepo()
	ratings := newFakeBrokerRatingRepo(brokers)
	comments := newFakePropertyCommentRepo(props)
	svc := NewReconciliationService(brokers, props, ratings, comments)
	ctx := context.Background()

	// stored aggregate claims ratings that do not exist
	broker := &models.Broker{ID: uuid.New(), Name: "Meera", UserID: uuid.New(), AvgRating: 4.5, RatingCount: 7}
	require.NoError(t, brokers.Create(ctx, broker))

	prop := &models.Property{ID: uuid.New(), BrokerID: broker.ID, Available: true, AvgRating: 3.2, ReviewCount: 4}
	props.put(prop)

	fixed, err := svc.Run(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, fixed)

	afterBroker, err := brokers.GetByID(ctx, broker.ID)
	require.NoError(t, err)
	require.Zero(t, afterBroker.AvgRating)
	require.Zero(t, afterBroker.RatingCount)

	afterProp, err := props.GetByID(ctx, prop.ID)
	require.NoError(t, err)
	require.Zero(t, afterProp.AvgRating)
	require.Zero(t, afterProp.ReviewCount)
}

func TestReconciliationLeavesConsistentAggregatesAlone(t *testing.T) {
	brokers := newFakeBrokerRepo()
	props := newFakePropertyRepo()
	ratings := newFakeBrokerRatingRepo(brokers)
	comments := newFakePropertyCommentRepo(props)
	ratingSvc := NewRatingService(ratings, comments, brokers, props)
	svc := NewReconciliationService(brokers, props, ratings, comments)
	ctx := context.Background()

	broker := &models.Broker{ID: uuid.New(), Name: "Meera", UserID: uuid.New()}
	require.NoError(t, brokers.Create(ctx, broker))
	_, err := ratingSvc.RateBroker(ctx, broker.ID, uuid.New(), 5, "")
	require.NoError(t, err)

	fixed, err := svc.Run(ctx)
	require.NoError(t, err)
	require.Zero(t, fixed)
}
