package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/openestate/realty-service/internal/models"
	"github.com/openestate/realty-service/internal/utils"
)

/* ------------------------------------------------------------------
   Public interface
------------------------------------------------------------------ */

type DealRepository interface {
	// CreateDealAtomic closes the property and records the deal in a
	// single transaction: either the deal row, the availability flip
	// and the customer holding all commit, or none of them do.
	CreateDealAtomic(ctx context.Context, propertyID, customerID uuid.UUID, price float64) (*models.Deal, error)

	GetByID(ctx context.Context, id uuid.UUID) (*models.Deal, error)
	ListAll(ctx context.Context) ([]*models.Deal, error)
	ExistsByCustomerID(ctx context.Context, customerID uuid.UUID) (bool, error)
}

/* ------------------------------------------------------------------
   Implementation
------------------------------------------------------------------ */

type dealRepo struct {
	db DB
}

func NewDealRepository(db DB) DealRepository {
	return &dealRepo{db: db}
}

func (r *dealRepo) CreateDealAtomic(
	ctx context.Context,
	propertyID uuid.UUID,
	customerID uuid.UUID,
	price float64,
) (deal *models.Deal, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	// Lock the property row so two concurrent requests serialize on
	// the availability check.
	row := tx.QueryRow(ctx, baseSelectProperty()+" WHERE id=$1 FOR UPDATE", propertyID)
	prop, err := scanProperty(row)
	if err != nil {
		return nil, err
	}
	if prop == nil {
		err = utils.ErrNotFound
		return nil, err
	}
	if !prop.Available {
		err = utils.ErrPropertyTaken
		return nil, err
	}

	deal = &models.Deal{
		ID:         uuid.New(),
		DealDate:   time.Now().UTC().Truncate(24 * time.Hour),
		DealCost:   price,
		PropertyID: propertyID,
		CustomerID: customerID,
	}

	// The unique index on deals.property_id is the last line of
	// defense if both requests passed the availability check before
	// either committed.
	_, err = tx.Exec(ctx, `
        INSERT INTO deals (id, deal_date, deal_cost, property_id, customer_id, created_at)
        VALUES ($1,$2,$3,$4,$5, NOW())
    `, deal.ID, deal.DealDate, deal.DealCost, deal.PropertyID, deal.CustomerID)
	if err != nil {
		if uniqueViolation(err, "deals_property_id_key") {
			err = utils.ErrDuplicateDeal
		}
		return nil, err
	}

	_, err = tx.Exec(ctx, `
        UPDATE properties
        SET available=FALSE, row_version=row_version+1, updated_at=NOW()
        WHERE id=$1
    `, propertyID)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
        INSERT INTO customer_holdings (customer_id, property_id)
        VALUES ($1,$2)
        ON CONFLICT DO NOTHING
    `, customerID, propertyID)
	if err != nil {
		return nil, err
	}

	newRow := tx.QueryRow(ctx, baseSelectDeal()+" WHERE id=$1", deal.ID)
	deal, err = scanDeal(newRow)
	return deal, err
}

func (r *dealRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Deal, error) {
	row := r.db.QueryRow(ctx, baseSelectDeal()+" WHERE id=$1", id)
	return scanDeal(row)
}

func (r *dealRepo) ListAll(ctx context.Context) ([]*models.Deal, error) {
	rows, err := r.db.Query(ctx, baseSelectDeal()+" ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Deal
	for rows.Next() {
		d, err := scanDeal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *dealRepo) ExistsByCustomerID(ctx context.Context, customerID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM deals WHERE customer_id=$1)`,
		customerID,
	).Scan(&exists)
	return exists, err
}

func baseSelectDeal() string {
	return `
        SELECT id, deal_date, deal_cost, property_id, customer_id, created_at
        FROM deals
    `
}

func scanDeal(row pgx.Row) (*models.Deal, error) {
	var d models.Deal
	err := row.Scan(
		&d.ID,
		&d.DealDate,
		&d.DealCost,
		&d.PropertyID,
		&d.CustomerID,
		&d.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}
