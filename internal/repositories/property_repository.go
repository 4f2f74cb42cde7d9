package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/openestate/realty-service/internal/models"
	"github.com/openestate/realty-service/internal/search"
)

/* ------------------------------------------------------------------
   Public interface
------------------------------------------------------------------ */

type PropertyRepository interface {
	Create(ctx context.Context, p *models.Property) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error)
	ListByBrokerID(ctx context.Context, brokerID uuid.UUID) ([]*models.Property, error)
	ListAll(ctx context.Context) ([]*models.Property, error)
	Search(ctx context.Context, f search.Filter) ([]*models.Property, error)

	Update(ctx context.Context, p *models.Property) error
	UpdateIfVersion(ctx context.Context, p *models.Property, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Property) error) error
	ReplaceImages(ctx context.Context, id uuid.UUID, urls []string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

/* ------------------------------------------------------------------
   Implementation
------------------------------------------------------------------ */

type propertyRepo struct {
	*BaseVersionedRepo[*models.Property]
	db DB
}

func NewPropertyRepository(db DB) PropertyRepository {
	r := &propertyRepo{db: db}
	selectStmt := baseSelectProperty() + " WHERE id=$1"
	r.BaseVersionedRepo = NewBaseRepo(db, selectStmt, scanProperty)
	return r
}

func (r *propertyRepo) Create(ctx context.Context, p *models.Property) (err error) {
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

	_, err = tx.Exec(ctx, `
        INSERT INTO properties (
            id, broker_id, configuration, offer_type, offer_cost, area_sqft,
            address, street, city, available, avg_rating, review_count,
            created_at, updated_at, row_version
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,0,0, NOW(), NOW(), 1)
    `,
		p.ID,
		p.BrokerID,
		string(p.Configuration),
		string(p.OfferType),
		p.OfferCost,
		p.AreaSqft,
		p.Address,
		p.Street,
		p.City,
		p.Available,
	)
	if err != nil {
		return err
	}
	err = insertImages(ctx, tx, p.ID, p.ImageURLs)
	return err
}

/* ---------- reads ---------- */

func (r *propertyRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	p, err := r.BaseVersionedRepo.GetByID(ctx, id.String())
	if err != nil || p == nil {
		return p, err
	}
	p.ImageURLs, err = r.loadImages(ctx, id)
	return p, err
}

func (r *propertyRepo) ListByBrokerID(ctx context.Context, brokerID uuid.UUID) ([]*models.Property, error) {
	rows, err := r.db.Query(ctx, baseSelectProperty()+" WHERE broker_id=$1 ORDER BY created_at", brokerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProperties(rows)
}

func (r *propertyRepo) ListAll(ctx context.Context) ([]*models.Property, error) {
	rows, err := r.db.Query(ctx, baseSelectProperty()+" ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProperties(rows)
}

// Search translates the compiled filter into a WHERE clause. Clause
// order follows the filter, so identical criteria produce identical
// SQL text and argument order.
func (r *propertyRepo) Search(ctx context.Context, f search.Filter) ([]*models.Property, error) {
	sql, args, err := buildSearchQuery(f)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProperties(rows)
}

func buildSearchQuery(f search.Filter) (string, []any, error) {
	sql := baseSelectProperty() + " WHERE 1=1"
	var args []any

	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	for _, cl := range f {
		switch c := cl.(type) {
		case search.EqualClause:
			col, err := searchColumn(c.Field)
			if err != nil {
				return "", nil, err
			}
			sql += fmt.Sprintf(" AND %s = %s", col, next(c.Value))
		case search.FoldEqualClause:
			col, err := searchColumn(c.Field)
			if err != nil {
				return "", nil, err
			}
			sql += fmt.Sprintf(" AND LOWER(%s) = LOWER(%s)", col, next(c.Value))
		case search.RangeClause:
			col, err := searchColumn(c.Field)
			if err != nil {
				return "", nil, err
			}
			if c.Min != nil {
				sql += fmt.Sprintf(" AND %s >= %s", col, next(*c.Min))
			}
			if c.Max != nil {
				sql += fmt.Sprintf(" AND %s <= %s", col, next(*c.Max))
			}
		case search.AvailableClause:
			sql += " AND available = TRUE"
		default:
			return "", nil, fmt.Errorf("unsupported clause %T", cl)
		}
	}

	sql += " ORDER BY created_at DESC, id"
	return sql, args, nil
}

func searchColumn(f search.Field) (string, error) {
	switch f {
	case search.FieldConfiguration:
		return "configuration", nil
	case search.FieldOfferType:
		return "offer_type", nil
	case search.FieldCity:
		return "city", nil
	case search.FieldStreet:
		return "street", nil
	case search.FieldOfferCost:
		return "offer_cost", nil
	case search.FieldAreaSqft:
		return "area_sqft", nil
	case search.FieldAvgRating:
		return "avg_rating", nil
	case search.FieldReviewCount:
		return "review_count", nil
	}
	return "", fmt.Errorf("unknown search field %q", f)
}

/* ---------- update / delete ---------- */

func (r *propertyRepo) Update(ctx context.Context, p *models.Property) error {
	_, err := r.update(ctx, p, false, 0)
	return err
}

func (r *propertyRepo) UpdateIfVersion(ctx context.Context, p *models.Property, expected int64) (pgconn.CommandTag, error) {
	return r.update(ctx, p, true, expected)
}

func (r *propertyRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Property) error) error {
	return r.BaseVersionedRepo.UpdateWithRetry(ctx, id.String(), mutate, r.UpdateIfVersion)
}

func (r *propertyRepo) update(ctx context.Context, p *models.Property, check bool, expected int64) (pgconn.CommandTag, error) {
	sql := `
        UPDATE properties SET
            configuration=$1, offer_type=$2, offer_cost=$3, area_sqft=$4,
            address=$5, street=$6, city=$7, available=$8, updated_at=NOW()
    `
	args := []any{
		string(p.Configuration), string(p.OfferType), p.OfferCost, p.AreaSqft,
		p.Address, p.Street, p.City, p.Available,
	}
	if check {
		sql += `, row_version=row_version+1 WHERE id=$9 AND row_version=$10`
		args = append(args, p.ID, expected)
	} else {
		sql += ` WHERE id=$9`
		args = append(args, p.ID)
	}
	return r.db.Exec(ctx, sql, args...)
}

func (r *propertyRepo) ReplaceImages(ctx context.Context, id uuid.UUID, urls []string) (err error) {
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

	if _, err = tx.Exec(ctx, `DELETE FROM property_images WHERE property_id=$1`, id); err != nil {
		return err
	}
	err = insertImages(ctx, tx, id, urls)
	return err
}

// Delete removes the property together with its comments and any
// favourite/holding memberships. Callers must not delete a property
// that is the subject of a deal; the FK on deals enforces that.
func (r *propertyRepo) Delete(ctx context.Context, id uuid.UUID) (err error) {
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

	for _, stmt := range []string{
		`DELETE FROM property_comments WHERE property_id=$1`,
		`DELETE FROM customer_favorites WHERE property_id=$1`,
		`DELETE FROM customer_holdings WHERE property_id=$1`,
		`DELETE FROM property_images WHERE property_id=$1`,
		`DELETE FROM properties WHERE id=$1`,
	} {
		if _, err = tx.Exec(ctx, stmt, id); err != nil {
			return err
		}
	}
	return nil
}

/* ---------- helpers ---------- */

func insertImages(ctx context.Context, tx pgx.Tx, id uuid.UUID, urls []string) error {
	for i, url := range urls {
		if _, err := tx.Exec(ctx, `
            INSERT INTO property_images (property_id, position, url)
            VALUES ($1,$2,$3)
        `, id, i, url); err != nil {
			return err
		}
	}
	return nil
}

func (r *propertyRepo) loadImages(ctx context.Context, id uuid.UUID) ([]string, error) {
	rows, err := r.db.Query(ctx, `
        SELECT url FROM property_images WHERE property_id=$1 ORDER BY position
    `, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		urls = append(urls, u)
	}
	return urls, rows.Err()
}

func baseSelectProperty() string {
	return `
        SELECT
            id, broker_id, configuration, offer_type, offer_cost, area_sqft,
            address, street, city, available, avg_rating, review_count,
            created_at, updated_at, row_version
        FROM properties
    `
}

func scanProperty(row pgx.Row) (*models.Property, error) {
	var (
		p      models.Property
		config string
		offer  string
	)
	err := row.Scan(
		&p.ID,
		&p.BrokerID,
		&config,
		&offer,
		&p.OfferCost,
		&p.AreaSqft,
		&p.Address,
		&p.Street,
		&p.City,
		&p.Available,
		&p.AvgRating,
		&p.ReviewCount,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.RowVersion,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	p.Configuration = models.PropertyConfig(config)
	p.OfferType = models.OfferType(offer)
	return &p, nil
}

func scanProperties(rows pgx.Rows) ([]*models.Property, error) {
	var out []*models.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
