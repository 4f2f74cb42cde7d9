package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/openestate/realty-service/internal/models"
)

/* ------------------------------------------------------------------
   Public interface
------------------------------------------------------------------ */

type CustomerRepository interface {
	Create(ctx context.Context, c *models.Customer) error

	// CreateWithUser inserts the user credential and the customer
	// profile in one transaction, so a failed profile insert leaves no
	// orphaned credential behind.
	CreateWithUser(ctx context.Context, user *models.User, c *models.Customer) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Customer, error)
	ListAll(ctx context.Context) ([]*models.Customer, error)

	Update(ctx context.Context, c *models.Customer) error
	UpdateIfVersion(ctx context.Context, c *models.Customer, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Customer) error) error
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteCascade removes the customer's membership sets, the
	// customer and its user credential in one transaction. The deals
	// FK on customers aborts the cascade if any deal exists.
	DeleteCascade(ctx context.Context, customerID, userID uuid.UUID) error

	// Favourites are the customer-managed membership set; holdings are
	// written by the deal engine only.
	AddFavorite(ctx context.Context, customerID, propertyID uuid.UUID) error
	RemoveFavorite(ctx context.Context, customerID, propertyID uuid.UUID) error
	ListFavoriteIDs(ctx context.Context, customerID uuid.UUID) ([]uuid.UUID, error)
	ListHoldingIDs(ctx context.Context, customerID uuid.UUID) ([]uuid.UUID, error)
	ClearMemberships(ctx context.Context, customerID uuid.UUID) error
}

/* ------------------------------------------------------------------
   Implementation
------------------------------------------------------------------ */

type customerRepo struct {
	*BaseVersionedRepo[*models.Customer]
	db DB
}

func NewCustomerRepository(db DB) CustomerRepository {
	r := &customerRepo{db: db}
	selectStmt := baseSelectCustomer() + " WHERE id=$1"
	r.BaseVersionedRepo = NewBaseRepo(db, selectStmt, scanCustomer)
	return r
}

func (r *customerRepo) Create(ctx context.Context, c *models.Customer) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO customers (
            id, name, user_id, created_at, updated_at, row_version
        ) VALUES ($1,$2,$3, NOW(), NOW(), 1)
    `, c.ID, c.Name, c.UserID)
	return err
}

func (r *customerRepo) CreateWithUser(ctx context.Context, user *models.User, c *models.Customer) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	if err = insertUser(ctx, tx, user); err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
        INSERT INTO customers (
            id, name, user_id, created_at, updated_at, row_version
        ) VALUES ($1,$2,$3, NOW(), NOW(), 1)
    `, c.ID, c.Name, c.UserID)
	return err
}

func (r *customerRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	return r.BaseVersionedRepo.GetByID(ctx, id.String())
}

func (r *customerRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Customer, error) {
	row := r.db.QueryRow(ctx, baseSelectCustomer()+" WHERE user_id=$1", userID)
	return scanCustomer(row)
}

func (r *customerRepo) ListAll(ctx context.Context) ([]*models.Customer, error) {
	rows, err := r.db.Query(ctx, baseSelectCustomer()+" ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *customerRepo) Update(ctx context.Context, c *models.Customer) error {
	_, err := r.update(ctx, c, false, 0)
	return err
}

func (r *customerRepo) UpdateIfVersion(ctx context.Context, c *models.Customer, expected int64) (pgconn.CommandTag, error) {
	return r.update(ctx, c, true, expected)
}

func (r *customerRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Customer) error) error {
	return r.BaseVersionedRepo.UpdateWithRetry(ctx, id.String(), mutate, r.UpdateIfVersion)
}

func (r *customerRepo) update(ctx context.Context, c *models.Customer, check bool, expected int64) (pgconn.CommandTag, error) {
	sql := `
        UPDATE customers SET
            name=$1, updated_at=NOW()
    `
	args := []any{c.Name}
	if check {
		sql += `, row_version=row_version+1 WHERE id=$2 AND row_version=$3`
		args = append(args, c.ID, expected)
	} else {
		sql += ` WHERE id=$2`
		args = append(args, c.ID)
	}
	return r.db.Exec(ctx, sql, args...)
}

func (r *customerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM customers WHERE id=$1`, id)
	return err
}

/* ---------- membership sets ---------- */

func (r *customerRepo) AddFavorite(ctx context.Context, customerID, propertyID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO customer_favorites (customer_id, property_id)
        VALUES ($1,$2)
        ON CONFLICT DO NOTHING
    `, customerID, propertyID)
	return err
}

func (r *customerRepo) RemoveFavorite(ctx context.Context, customerID, propertyID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
        DELETE FROM customer_favorites WHERE customer_id=$1 AND property_id=$2
    `, customerID, propertyID)
	return err
}

func (r *customerRepo) ListFavoriteIDs(ctx context.Context, customerID uuid.UUID) ([]uuid.UUID, error) {
	return r.listMembership(ctx, "customer_favorites", customerID)
}

func (r *customerRepo) ListHoldingIDs(ctx context.Context, customerID uuid.UUID) ([]uuid.UUID, error) {
	return r.listMembership(ctx, "customer_holdings", customerID)
}

func (r *customerRepo) listMembership(ctx context.Context, table string, customerID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx,
		`SELECT property_id FROM `+table+` WHERE customer_id=$1 ORDER BY created_at`,
		customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *customerRepo) ClearMemberships(ctx context.Context, customerID uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM customer_favorites WHERE customer_id=$1`, customerID); err != nil {
		return err
	}
	_, err := r.db.Exec(ctx, `DELETE FROM customer_holdings WHERE customer_id=$1`, customerID)
	return err
}

func (r *customerRepo) DeleteCascade(ctx context.Context, customerID, userID uuid.UUID) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	// Ratings and comments the customer authored are removed and the
	// affected aggregates rewritten in the same transaction, so no
	// reader sees an aggregate counting a deleted author.
	if _, err = tx.Exec(ctx, `DELETE FROM broker_ratings WHERE customer_id=$1`, customerID); err != nil {
		return err
	}
	if err = resyncBrokerAggregates(ctx, tx); err != nil {
		return err
	}
	if _, err = tx.Exec(ctx, `DELETE FROM property_comments WHERE user_id=$1`, userID); err != nil {
		return err
	}
	if err = resyncPropertyAggregates(ctx, tx); err != nil {
		return err
	}

	stmts := []string{
		`DELETE FROM customer_favorites WHERE customer_id=$1`,
		`DELETE FROM customer_holdings WHERE customer_id=$1`,
		`DELETE FROM customers WHERE id=$1`,
	}
	for _, stmt := range stmts {
		if _, err = tx.Exec(ctx, stmt, customerID); err != nil {
			return err
		}
	}

	_, err = tx.Exec(ctx, `DELETE FROM users WHERE id=$1`, userID)
	return err
}

func baseSelectCustomer() string {
	return `
        SELECT
            id, name, user_id, created_at, updated_at, row_version
        FROM customers
    `
}

func scanCustomer(row pgx.Row) (*models.Customer, error) {
	var c models.Customer
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.UserID,
		&c.CreatedAt,
		&c.UpdatedAt,
		&c.RowVersion,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}
