package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"

	"github.com/openestate/realty-service/internal/models"
	"github.com/openestate/realty-service/internal/repositories"
	"github.com/openestate/realty-service/internal/search"
	"github.com/openestate/realty-service/internal/utils"
)

// In-memory repository fakes. A single mutex per fake stands in for
// the row locks the real implementations take, which is enough to
// reproduce the serialization the services rely on.

/* ---------- properties ---------- */

type fakePropertyRepo struct {
	mu    sync.Mutex
	props map[uuid.UUID]*models.Property
}

func newFakePropertyRepo() *fakePropertyRepo {
	return &fakePropertyRepo{props: make(map[uuid.UUID]*models.Property)}
}

func (r *fakePropertyRepo) put(p *models.Property) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.props[p.ID] = &cp
}

func (r *fakePropertyRepo) Create(ctx context.Context, p *models.Property) error {
	r.put(p)
	return nil
}

func (r *fakePropertyRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.props[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakePropertyRepo) ListByBrokerID(ctx context.Context, brokerID uuid.UUID) ([]*models.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Property
	for _, p := range r.props {
		if p.BrokerID == brokerID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakePropertyRepo) ListAll(ctx context.Context) ([]*models.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Property, 0, len(r.props))
	for _, p := range r.props {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakePropertyRepo) Search(ctx context.Context, f search.Filter) ([]*models.Property, error) {
	all, _ := r.ListAll(ctx)
	var out []*models.Property
	for _, p := range all {
		if f.Matches(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePropertyRepo) Update(ctx context.Context, p *models.Property) error {
	r.put(p)
	return nil
}

func (r *fakePropertyRepo) UpdateIfVersion(ctx context.Context, p *models.Property, expected int64) (pgconn.CommandTag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.props[p.ID]
	if !ok || current.RowVersion != expected {
		return pgconn.CommandTag("UPDATE 0"), nil
	}
	cp := *p
	cp.RowVersion = expected + 1
	r.props[p.ID] = &cp
	return pgconn.CommandTag("UPDATE 1"), nil
}

func (r *fakePropertyRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Property) error) error {
	return repositories.WithRetry(ctx, 3, id.String(),
		func(ctx context.Context, _ string) (*models.Property, error) {
			return r.GetByID(ctx, id)
		},
		r.UpdateIfVersion,
		mutate,
	)
}

func (r *fakePropertyRepo) ReplaceImages(ctx context.Context, id uuid.UUID, urls []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.props[id]; ok {
		p.ImageURLs = urls
	}
	return nil
}

func (r *fakePropertyRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.props, id)
	return nil
}

/* ---------- customers ---------- */

type fakeCustomerRepo struct {
	mu        sync.Mutex
	customers map[uuid.UUID]*models.Customer
	favorites map[uuid.UUID][]uuid.UUID
	holdings  map[uuid.UUID][]uuid.UUID
	users     *fakeUserRepo
}

func newFakeCustomerRepo() *fakeCustomerRepo {
	return &fakeCustomerRepo{
		customers: make(map[uuid.UUID]*models.Customer),
		favorites: make(map[uuid.UUID][]uuid.UUID),
		holdings:  make(map[uuid.UUID][]uuid.UUID),
	}
}

func (r *fakeCustomerRepo) Create(ctx context.Context, c *models.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.customers[c.ID] = &cp
	return nil
}

func (r *fakeCustomerRepo) CreateWithUser(ctx context.Context, user *models.User, c *models.Customer) error {
	if r.users != nil {
		if err := r.users.Create(ctx, user); err != nil {
			return err
		}
	}
	return r.Create(ctx, c)
}

func (r *fakeCustomerRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.customers[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCustomerRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.customers {
		if c.UserID == userID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeCustomerRepo) ListAll(ctx context.Context) ([]*models.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Customer, 0, len(r.customers))
	for _, c := range r.customers {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeCustomerRepo) Update(ctx context.Context, c *models.Customer) error {
	return r.Create(ctx, c)
}

func (r *fakeCustomerRepo) UpdateIfVersion(ctx context.Context, c *models.Customer, expected int64) (pgconn.CommandTag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.customers[c.ID]
	if !ok || current.RowVersion != expected {
		return pgconn.CommandTag("UPDATE 0"), nil
	}
	cp := *c
	cp.RowVersion = expected + 1
	r.customers[c.ID] = &cp
	return pgconn.CommandTag("UPDATE 1"), nil
}

func (r *fakeCustomerRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Customer) error) error {
	return repositories.WithRetry(ctx, 3, id.String(),
		func(ctx context.Context, _ string) (*models.Customer, error) {
			return r.GetByID(ctx, id)
		},
		r.UpdateIfVersion,
		mutate,
	)
}

func (r *fakeCustomerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.customers, id)
	return nil
}

func (r *fakeCustomerRepo) AddFavorite(ctx context.Context, customerID, propertyID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.favorites[customerID] {
		if id == propertyID {
			return nil
		}
	}
	r.favorites[customerID] = append(r.favorites[customerID], propertyID)
	return nil
}

func (r *fakeCustomerRepo) RemoveFavorite(ctx context.Context, customerID, propertyID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := r.favorites[customerID]
	for i, id := range ids {
		if id == propertyID {
			r.favorites[customerID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	return nil
}

func (r *fakeCustomerRepo) ListFavoriteIDs(ctx context.Context, customerID uuid.UUID) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]uuid.UUID(nil), r.favorites[customerID]...), nil
}

func (r *fakeCustomerRepo) ListHoldingIDs(ctx context.Context, customerID uuid.UUID) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]uuid.UUID(nil), r.holdings[customerID]...), nil
}

func (r *fakeCustomerRepo) ClearMemberships(ctx context.Context, customerID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.favorites, customerID)
	delete(r.holdings, customerID)
	return nil
}

func (r *fakeCustomerRepo) DeleteCascade(ctx context.Context, customerID, userID uuid.UUID) error {
	if err := r.ClearMemberships(ctx, customerID); err != nil {
		return err
	}
	if err := r.Delete(ctx, customerID); err != nil {
		return err
	}
	if r.users != nil {
		return r.users.Delete(ctx, userID)
	}
	return nil
}

/* ---------- users ---------- */

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*models.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return utils.ErrEmailExists
		}
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) UpdateIfVersion(ctx context.Context, u *models.User, expected int64) (pgconn.CommandTag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.users[u.ID]
	if !ok || current.RowVersion != expected {
		return pgconn.CommandTag("UPDATE 0"), nil
	}
	cp := *u
	cp.RowVersion = expected + 1
	r.users[u.ID] = &cp
	return pgconn.CommandTag("UPDATE 1"), nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

/* ---------- deals ---------- */

type fakeDealRepo struct {
	mu     sync.Mutex
	props  *fakePropertyRepo
	cust   *fakeCustomerRepo
	deals  map[uuid.UUID]*models.Deal
	byProp map[uuid.UUID]uuid.UUID
}

func newFakeDealRepo(props *fakePropertyRepo, cust *fakeCustomerRepo) *fakeDealRepo {
	return &fakeDealRepo{
		props:  props,
		cust:   cust,
		deals:  make(map[uuid.UUID]*models.Deal),
		byProp: make(map[uuid.UUID]uuid.UUID),
	}
}

func (r *fakeDealRepo) CreateDealAtomic(ctx context.Context, propertyID, customerID uuid.UUID, price float64) (*models.Deal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.props.mu.Lock()
	defer r.props.mu.Unlock()

	prop, ok := r.props.props[propertyID]
	if !ok {
		return nil, utils.ErrNotFound
	}
	if !prop.Available {
		return nil, utils.ErrPropertyTaken
	}
	if _, taken := r.byProp[propertyID]; taken {
		return nil, utils.ErrDuplicateDeal
	}

	deal := &models.Deal{
		ID:         uuid.New(),
		DealDate:   time.Now().UTC().Truncate(24 * time.Hour),
		DealCost:   price,
		PropertyID: propertyID,
		CustomerID: customerID,
		CreatedAt:  time.Now().UTC(),
	}
	r.deals[deal.ID] = deal
	r.byProp[propertyID] = deal.ID

	prop.Available = false
	prop.RowVersion++

	r.cust.mu.Lock()
	r.cust.holdings[customerID] = append(r.cust.holdings[customerID], propertyID)
	r.cust.mu.Unlock()

	cp := *deal
	return &cp, nil
}

func (r *fakeDealRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Deal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.deals[id]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (r *fakeDealRepo) ListAll(ctx context.Context) ([]*models.Deal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Deal, 0, len(r.deals))
	for _, d := range r.deals {
		cp := *d
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeDealRepo) ExistsByCustomerID(ctx context.Context, customerID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.deals {
		if d.CustomerID == customerID {
			return true, nil
		}
	}
	return false, nil
}

/* ---------- brokers ---------- */

type fakeBrokerRepo struct {
	mu      sync.Mutex
	brokers map[uuid.UUID]*models.Broker
	props   *fakePropertyRepo
	ratings *fakeBrokerRatingRepo
	users   *fakeUserRepo
}

func newFakeBrokerRepo() *fakeBrokerRepo {
	return &fakeBrokerRepo{brokers: make(map[uuid.UUID]*models.Broker)}
}

func (r *fakeBrokerRepo) Create(ctx context.Context, b *models.Broker) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *b
	r.brokers[b.ID] = &cp
	return nil
}

func (r *fakeBrokerRepo) CreateWithUser(ctx context.Context, user *models.User, b *models.Broker) error {
	if r.users != nil {
		if err := r.users.Create(ctx, user); err != nil {
			return err
		}
	}
	return r.Create(ctx, b)
}

func (r *fakeBrokerRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Broker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.brokers[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (r *fakeBrokerRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Broker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.brokers {
		if b.UserID == userID {
			cp := *b
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeBrokerRepo) ListAll(ctx context.Context) ([]*models.Broker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Broker, 0, len(r.brokers))
	for _, b := range r.brokers {
		cp := *b
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeBrokerRepo) ListTopRated(ctx context.Context, limit int) ([]*models.Broker, error) {
	all, _ := r.ListAll(ctx)
	var rated []*models.Broker
	for _, b := range all {
		if b.RatingCount > 0 {
			rated = append(rated, b)
		}
	}
	if len(rated) > limit {
		rated = rated[:limit]
	}
	return rated, nil
}

func (r *fakeBrokerRepo) Update(ctx context.Context, b *models.Broker) error {
	return r.Create(ctx, b)
}

func (r *fakeBrokerRepo) UpdateIfVersion(ctx context.Context, b *models.Broker, expected int64) (pgconn.CommandTag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.brokers[b.ID]
	if !ok || current.RowVersion != expected {
		return pgconn.CommandTag("UPDATE 0"), nil
	}
	cp := *b
	cp.RowVersion = expected + 1
	r.brokers[b.ID] = &cp
	return pgconn.CommandTag("UPDATE 1"), nil
}

func (r *fakeBrokerRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Broker) error) error {
	return repositories.WithRetry(ctx, 3, id.String(),
		func(ctx context.Context, _ string) (*models.Broker, error) {
			return r.GetByID(ctx, id)
		},
		r.UpdateIfVersion,
		mutate,
	)
}

func (r *fakeBrokerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.brokers, id)
	return nil
}

func (r *fakeBrokerRepo) DeleteCascade(ctx context.Context, brokerID, userID uuid.UUID) error {
	if r.ratings != nil {
		if err := r.ratings.DeleteByBrokerID(ctx, brokerID); err != nil {
			return err
		}
	}
	if r.props != nil {
		props, _ := r.props.ListByBrokerID(ctx, brokerID)
		for _, p := range props {
			if err := r.props.Delete(ctx, p.ID); err != nil {
				return err
			}
		}
	}
	if err := r.Delete(ctx, brokerID); err != nil {
		return err
	}
	if r.users != nil {
		return r.users.Delete(ctx, userID)
	}
	return nil
}

/* ---------- broker ratings ---------- */

type fakeBrokerRatingRepo struct {
	mu      sync.Mutex
	brokers *fakeBrokerRepo
	ratings []*models.BrokerRating
}

func newFakeBrokerRatingRepo(brokers *fakeBrokerRepo) *fakeBrokerRatingRepo {
	return &fakeBrokerRatingRepo{brokers: brokers}
}

func (r *fakeBrokerRatingRepo) AddRatingAtomic(ctx context.Context, rating *models.BrokerRating) (*models.Broker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.brokers.mu.Lock()
	defer r.brokers.mu.Unlock()

	broker, ok := r.brokers.brokers[rating.BrokerID]
	if !ok {
		return nil, utils.ErrNotFound
	}
	for _, existing := range r.ratings {
		if existing.BrokerID == rating.BrokerID && existing.CustomerID == rating.CustomerID {
			return nil, utils.ErrAlreadyRated
		}
	}

	cp := *rating
	r.ratings = append(r.ratings, &cp)

	total := broker.AvgRating*float64(broker.RatingCount) + float64(rating.Rating)
	broker.RatingCount++
	broker.AvgRating = total / float64(broker.RatingCount)
	broker.RowVersion++

	out := *broker
	return &out, nil
}

func (r *fakeBrokerRatingRepo) ListByBrokerID(ctx context.Context, brokerID uuid.UUID) ([]*models.BrokerRating, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.BrokerRating
	for _, rt := range r.ratings {
		if rt.BrokerID == brokerID {
			cp := *rt
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeBrokerRatingRepo) AggregateAll(ctx context.Context) ([]repositories.RatingAggregate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sums := make(map[uuid.UUID]float64)
	counts := make(map[uuid.UUID]int)
	for _, rt := range r.ratings {
		sums[rt.BrokerID] += float64(rt.Rating)
		counts[rt.BrokerID]++
	}
	var out []repositories.RatingAggregate
	for id, count := range counts {
		out = append(out, repositories.RatingAggregate{
			TargetID: id,
			Avg:      sums[id] / float64(count),
			Count:    count,
		})
	}
	return out, nil
}

func (r *fakeBrokerRatingRepo) DeleteByBrokerID(ctx context.Context, brokerID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.ratings[:0]
	for _, rt := range r.ratings {
		if rt.BrokerID != brokerID {
			kept = append(kept, rt)
		}
	}
	r.ratings = kept
	return nil
}

/* ---------- property comments ---------- */

type fakePropertyCommentRepo struct {
	mu       sync.Mutex
	props    *fakePropertyRepo
	comments []*models.PropertyComment
}

func newFakePropertyCommentRepo(props *fakePropertyRepo) *fakePropertyCommentRepo {
	return &fakePropertyCommentRepo{props: props}
}

func (r *fakePropertyCommentRepo) AddCommentAtomic(ctx context.Context, comment *models.PropertyComment) (*models.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.props.mu.Lock()
	defer r.props.mu.Unlock()

	prop, ok := r.props.props[comment.PropertyID]
	if !ok {
		return nil, utils.ErrNotFound
	}
	for _, existing := range r.comments {
		if existing.PropertyID == comment.PropertyID && existing.UserID == comment.UserID {
			return nil, utils.ErrAlreadyRated
		}
	}

	cp := *comment
	r.comments = append(r.comments, &cp)

	total := prop.AvgRating*float64(prop.ReviewCount) + float64(comment.Rating)
	prop.ReviewCount++
	prop.AvgRating = total / float64(prop.ReviewCount)
	prop.RowVersion++

	out := *prop
	return &out, nil
}

func (r *fakePropertyCommentRepo) ListByPropertyID(ctx context.Context, propertyID uuid.UUID) ([]*models.PropertyComment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.PropertyComment
	for _, c := range r.comments {
		if c.PropertyID == propertyID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakePropertyCommentRepo) AggregateAll(ctx context.Context) ([]repositories.RatingAggregate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sums := make(map[uuid.UUID]float64)
	counts := make(map[uuid.UUID]int)
	for _, c := range r.comments {
		sums[c.PropertyID] += float64(c.Rating)
		counts[c.PropertyID]++
	}
	var out []repositories.RatingAggregate
	for id, count := range counts {
		out = append(out, repositories.RatingAggregate{
			TargetID: id,
			Avg:      sums[id] / float64(count),
			Count:    count,
		})
	}
	return out, nil
}

func (r *fakePropertyCommentRepo) DeleteByPropertyID(ctx context.Context, propertyID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.comments[:0]
	for _, c := range r.comments {
		if c.PropertyID != propertyID {
			kept = append(kept, c)
		}
	}
	r.comments = kept
	return nil
}
