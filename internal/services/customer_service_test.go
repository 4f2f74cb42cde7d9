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

func newCustomerFixture(t *testing.T) (*CustomerService, *DealService, *fakeUserRepo, *models.Customer, *models.Property) {
	t.Helper()

	users := newFakeUserRepo()
	props := newFakePropertyRepo()
	cust := newFakeCustomerRepo()
	deals := newFakeDealRepo(props, cust)

	cust.users = users
	custSvc := NewCustomerService(cust, props, deals)
	dealSvc := NewDealService(deals, props, cust, events.NewNoopDealPublisher())
	ctx := context.Background()

	user := &models.User{ID: uuid.New(), Email: "asha@example.com", Role: models.RoleCustomer}
	require.NoError(t, users.Create(ctx, user))

	customer := &models.Customer{ID: uuid.New(), Name: "Asha", UserID: user.ID}
	require.NoError(t, cust.Create(ctx, customer))

	prop := &models.Property{
		ID:            uuid.New(),
		BrokerID:      uuid.New(),
		Configuration: models.ConfigFlat,
		OfferType:     models.OfferSell,
		OfferCost:     300000,
		AreaSqft:      850,
		City:          "Mumbai",
		Available:     true,
	}
	props.put(prop)

	return custSvc, dealSvc, users, customer, prop
}

func TestFavoritesAddListRemove(t *testing.T) {
	svc, _, _, customer, prop := newCustomerFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.AddFavorite(ctx, customer.ID, prop.ID))
	// re-adding is a no-op
	require.NoError(t, svc.AddFavorite(ctx, customer.ID, prop.ID))

	favs, err := svc.ListFavorites(ctx, customer.ID)
	require.NoError(t, err)
	require.Len(t, favs, 1)
	require.Equal(t, prop.ID, favs[0].ID)

	require.NoError(t, svc.RemoveFavorite(ctx, customer.ID, prop.ID))
	favs, err = svc.ListFavorites(ctx, customer.ID)
	require.NoError(t, err)
	require.Empty(t, favs)
}

func TestAddFavoriteUnknownPropertyIsNotFound(t *testing.T) {
	svc, _, _, customer, _ := newCustomerFixture(t)

	err := svc.AddFavorite(context.Background(), customer.ID, uuid.New())
	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, 404, appErr.StatusCode)
}

func TestHoldingsTrackClosedDeals(t *testing.T) {
	svc, dealSvc, _, customer, prop := newCustomerFixture(t)
	ctx := context.Background()

	holdings, err := svc.ListHoldings(ctx, customer.ID)
	require.NoError(t, err)
	require.Empty(t, holdings)

	_, err = dealSvc.CreateDeal(ctx, prop.ID, customer.ID, 290000)
	require.NoError(t, err)

	holdings, err = svc.ListHoldings(ctx, customer.ID)
	require.NoError(t, err)
	require.Len(t, holdings, 1)
	require.Equal(t, prop.ID, holdings[0].ID)

	// favourites stay independent of holdings
	favs, err := svc.ListFavorites(ctx, customer.ID)
	require.NoError(t, err)
	require.Empty(t, favs)
}

func TestDeleteCustomerWithDealsIsConflict(t *testing.T) {
	svc, dealSvc, users, customer, prop := newCustomerFixture(t)
	ctx := context.Background()

	_, err := dealSvc.CreateDeal(ctx, prop.ID, customer.ID, 290000)
	require.NoError(t, err)

	err = svc.DeleteCustomer(ctx, customer.ID)
	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, 409, appErr.StatusCode)

	// neither the profile nor the credential was touched
	still, err := svc.GetCustomer(ctx, customer.ID)
	require.NoError(t, err)
	require.NotNil(t, still)
	u, err := users.GetByID(ctx, customer.UserID)
	require.NoError(t, err)
	require.NotNil(t, u)
}

func TestDeleteCustomerCascades(t *testing.T) {
	svc, _, users, customer, prop := newCustomerFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.AddFavorite(ctx, customer.ID, prop.ID))
	require.NoError(t, svc.DeleteCustomer(ctx, customer.ID))

	_, err := svc.GetCustomer(ctx, customer.ID)
	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, 404, appErr.StatusCode)

	u, err := users.GetByID(ctx, customer.UserID)
	require.NoError(t, err)
	require.Nil(t, u, "owned credential must be removed with the customer")
}
