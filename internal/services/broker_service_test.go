package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/openestate/realty-service/internal/events"
	"github.com/openestate/realty-service/internal/models"
	"github.com/openestate/realty-service/internal/utils"
)

func newBrokerFixture(t *testing.T) (*BrokerService, *fakeBrokerRepo, *fakePropertyRepo, *fakeBrokerRatingRepo, *fakeUserRepo, *models.Broker) {
	t.Helper()

	users := newFakeUserRepo()
	brokers := newFakeBrokerRepo()
	props := newFakePropertyRepo()
	ratings := newFakeBrokerRatingRepo(brokers)
	brokers.props = props
	brokers.ratings = ratings
	brokers.users = users
	svc := NewBrokerService(brokers, props)
	ctx := context.Background()

	user := &models.User{ID: uuid.New(), Email: "meera@example.com", Role: models.RoleBroker}
	require.NoError(t, users.Create(ctx, user))

	broker := &models.Broker{ID: uuid.New(), Name: "Meera", UserID: user.ID}
	require.NoError(t, brokers.Create(ctx, broker))

	return svc, brokers, props, ratings, users, broker
}

func TestDeleteBrokerCascades(t *testing.T) {
	svc, _, props, ratings, users, broker := newBrokerFixture(t)
	ctx := context.Background()

	prop := &models.Property{ID: uuid.New(), BrokerID: broker.ID, Available: true}
	props.put(prop)
	_, err := ratings.AddRatingAtomic(ctx, &models.BrokerRating{
		ID: uuid.New(), BrokerID: broker.ID, CustomerID: uuid.New(), Rating: 4,
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteBroker(ctx, broker.ID))

	_, err = svc.GetBroker(ctx, broker.ID)
	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, 404, appErr.StatusCode)

	left, err := props.ListByBrokerID(ctx, broker.ID)
	require.NoError(t, err)
	require.Empty(t, left, "broker listings must be removed")

	rs, err := ratings.ListByBrokerID(ctx, broker.ID)
	require.NoError(t, err)
	require.Empty(t, rs, "broker ratings must be removed")

	u, err := users.GetByID(ctx, broker.UserID)
	require.NoError(t, err)
	require.Nil(t, u, "owned credential must be removed with the broker")
}

func TestDeleteBrokerWithClosedDealIsConflict(t *testing.T) {
	svc, _, props, _, _, broker := newBrokerFixture(t)
	ctx := context.Background()

	prop := &models.Property{ID: uuid.New(), BrokerID: broker.ID, Available: true}
	props.put(prop)

	cust := newFakeCustomerRepo()
	customer := &models.Customer{ID: uuid.New(), Name: "Asha", UserID: uuid.New()}
	require.NoError(t, cust.Create(ctx, customer))
	deals := newFakeDealRepo(props, cust)
	dealSvc := NewDealService(deals, props, cust, events.NewNoopDealPublisher())

	_, err := dealSvc.CreateDeal(ctx, prop.ID, customer.ID, 100000)
	require.NoError(t, err)

	err = svc.DeleteBroker(ctx, broker.ID)
	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, 409, appErr.StatusCode)

	// the broker and the sold listing survive
	still, err := svc.GetBroker(ctx, broker.ID)
	require.NoError(t, err)
	require.NotNil(t, still)
}

func TestListTopRatedSkipsUnrated(t *testing.T) {
	svc, brokers, _, ratings, _, broker := newBrokerFixture(t)
	ctx := context.Background()

	unrated := &models.Broker{ID: uuid.New(), Name: "Noor", UserID: uuid.New()}
	require.NoError(t, brokers.Create(ctx, unrated))
	_, err := ratings.AddRatingAtomic(ctx, &models.BrokerRating{
		ID: uuid.New(), BrokerID: broker.ID, CustomerID: uuid.New(), Rating: 5,
	})
	require.NoError(t, err)

	top, err := svc.ListTopRated(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 1)
	require.Equal(t, broker.ID, top[0].ID)
}
