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

type BrokerRepository interface {
	Create(ctx context.Context, b *models.Broker) error

	// CreateWithUser inserts the user credential and the broker
	// profile in one transaction, so a failed profile insert leaves no
	// orphaned credential behind.
	CreateWithUser(ctx context.Context, user *models.User, b *models.Broker) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.Broker, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Broker, error)
	ListAll(ctx context.Context) ([]*models.Broker, error)
	ListTopRated(ctx context.Context, limit int) ([]*models.Broker, error)

	Update(ctx context.Context, b *models.Broker) error
	UpdateIfVersion(ctx context.Context, b *models.Broker, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Broker) error) error
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteCascade removes the broker's ratings, its listings with
	// their dependent rows, the broker itself and its user credential
	// in one transaction. A listing with a closed deal aborts the
	// whole cascade with a foreign-key violation.
	DeleteCascade(ctx context.Context, brokerID, userID uuid.UUID) error
}

/* ------------------------------------------------------------------
   Implementation
------------------------------------------------------------------ */

type brokerRepo struct {
	*BaseVersionedRepo[*models.Broker]
	db DB
}

func NewBrokerRepository(db DB) BrokerRepository {
	r := &brokerRepo{db: db}
	selectStmt := baseSelectBroker() + " WHERE id=$1"
	r.BaseVersionedRepo = NewBaseRepo(db, selectStmt, scanBroker)
	return r
}

func (r *brokerRepo) Create(ctx context.Context, b *models.Broker) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO brokers (
            id, name, user_id, avg_rating, rating_count,
            created_at, updated_at, row_version
        ) VALUES ($1,$2,$3,0,0, NOW(), NOW(), 1)
    `, b.ID, b.Name, b.UserID)
	return err
}

func (r *brokerRepo) CreateWithUser(ctx context.Context, user *models.User, b *models.Broker) (err error) {
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
        INSERT INTO brokers (
            id, name, user_id, avg_rating, rating_count,
            created_at, updated_at, row_version
        ) VALUES ($1,$2,$3,0,0, NOW(), NOW(), 1)
    `, b.ID, b.Name, b.UserID)
	return err
}

func (r *brokerRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Broker, error) {
	return r.BaseVersionedRepo.GetByID(ctx, id.String())
}

func (r *brokerRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Broker, error) {
	row := r.db.QueryRow(ctx, baseSelectBroker()+" WHERE user_id=$1", userID)
	return scanBroker(row)
}

func (r *brokerRepo) ListAll(ctx context.Context) ([]*models.Broker, error) {
	rows, err := r.db.Query(ctx, baseSelectBroker()+" ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBrokers(rows)
}

func (r *brokerRepo) ListTopRated(ctx context.Context, limit int) ([]*models.Broker, error) {
	rows, err := r.db.Query(ctx, baseSelectBroker()+`
        WHERE rating_count > 0
        ORDER BY avg_rating DESC, rating_count DESC
        LIMIT $1
    `, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBrokers(rows)
}

func (r *brokerRepo) Update(ctx context.Context, b *models.Broker) error {
	_, err := r.update(ctx, b, false, 0)
	return err
}

func (r *brokerRepo) UpdateIfVersion(ctx context.Context, b *models.Broker, expected int64) (pgconn.CommandTag, error) {
	return r.update(ctx, b, true, expected)
}

func (r *brokerRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Broker) error) error {
	return r.BaseVersionedRepo.UpdateWithRetry(ctx, id.String(), mutate, r.UpdateIfVersion)
}

func (r *brokerRepo) update(ctx context.Context, b *models.Broker, check bool, expected int64) (pgconn.CommandTag, error) {
	sql := `
        UPDATE brokers SET
            name=$1, avg_rating=$2, rating_count=$3, updated_at=NOW()
    `
	args := []any{b.Name, b.AvgRating, b.RatingCount}
	if check {
		sql += `, row_version=row_version+1 WHERE id=$4 AND row_version=$5`
		args = append(args, b.ID, expected)
	} else {
		sql += ` WHERE id=$4`
		args = append(args, b.ID)
	}
	return r.db.Exec(ctx, sql, args...)
}

func (r *brokerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM brokers WHERE id=$1`, id)
	return err
}

func (r *brokerRepo) DeleteCascade(ctx context.Context, brokerID, userID uuid.UUID) (err error) {
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

	// Dependents of the broker's listings first, then the listings,
	// then the broker's own rows. The deals FK on properties vetoes
	// the cascade for sold listings.
	stmts := []string{
		`DELETE FROM broker_ratings WHERE broker_id=$1`,
		`DELETE FROM property_comments WHERE property_id IN (SELECT id FROM properties WHERE broker_id=$1)`,
		`DELETE FROM customer_favorites WHERE property_id IN (SELECT id FROM properties WHERE broker_id=$1)`,
		`DELETE FROM customer_holdings WHERE property_id IN (SELECT id FROM properties WHERE broker_id=$1)`,
		`DELETE FROM property_images WHERE property_id IN (SELECT id FROM properties WHERE broker_id=$1)`,
		`DELETE FROM properties WHERE broker_id=$1`,
		`DELETE FROM brokers WHERE id=$1`,
	}
	for _, stmt := range stmts {
		if _, err = tx.Exec(ctx, stmt, brokerID); err != nil {
			return err
		}
	}

	// Comments the broker's user left on other listings go too, and
	// the affected aggregates are rewritten before commit.
	if _, err = tx.Exec(ctx, `DELETE FROM property_comments WHERE user_id=$1`, userID); err != nil {
		return err
	}
	if err = resyncPropertyAggregates(ctx, tx); err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `DELETE FROM users WHERE id=$1`, userID)
	return err
}

func baseSelectBroker() string {
	return `
        SELECT
            id, name, user_id, avg_rating, rating_count,
            created_at, updated_at, row_version
        FROM brokers
    `
}

func scanBroker(row pgx.Row) (*models.Broker, error) {
	var b models.Broker
	err := row.Scan(
		&b.ID,
		&b.Name,
		&b.UserID,
		&b.AvgRating,
		&b.RatingCount,
		&b.CreatedAt,
		&b.UpdatedAt,
		&b.RowVersion,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func scanBrokers(rows pgx.Rows) ([]*models.Broker, error) {
	var out []*models.Broker
	for rows.Next() {
		b, err := scanBroker(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
