package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"

	"github.com/openestate/realty-service/internal/models"
	"github.com/openestate/realty-service/internal/utils"
)

// RatingAggregate is one target's (average, count) pair recomputed
// from the full rating history.
type RatingAggregate struct {
	TargetID uuid.UUID
	Avg      float64
	Count    int
}

/* ------------------------------------------------------------------
   Public interface
------------------------------------------------------------------ */

type BrokerRatingRepository interface {
	// AddRatingAtomic appends the rating and folds it into the
	// broker's running aggregate in one transaction, with the broker
	// row locked so concurrent submissions serialize.
	AddRatingAtomic(ctx context.Context, rating *models.BrokerRating) (*models.Broker, error)

	ListByBrokerID(ctx context.Context, brokerID uuid.UUID) ([]*models.BrokerRating, error)
	AggregateAll(ctx context.Context) ([]RatingAggregate, error)
	DeleteByBrokerID(ctx context.Context, brokerID uuid.UUID) error
}

/* ------------------------------------------------------------------
   Implementation
------------------------------------------------------------------ */

type brokerRatingRepo struct {
	db DB
}

func NewBrokerRatingRepository(db DB) BrokerRatingRepository {
	return &brokerRatingRepo{db: db}
}

func (r *brokerRatingRepo) AddRatingAtomic(
	ctx context.Context,
	rating *models.BrokerRating,
) (broker *models.Broker, err error) {
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

	row := tx.QueryRow(ctx, baseSelectBroker()+" WHERE id=$1 FOR UPDATE", rating.BrokerID)
	broker, err = scanBroker(row)
	if err != nil {
		return nil, err
	}
	if broker == nil {
		err = utils.ErrNotFound
		return nil, err
	}

	if rating.ID == uuid.Nil {
		rating.ID = uuid.New()
	}
	_, err = tx.Exec(ctx, `
        INSERT INTO broker_ratings (id, broker_id, customer_id, rating, comment, created_at)
        VALUES ($1,$2,$3,$4, NULLIF($5,''), NOW())
    `, rating.ID, rating.BrokerID, rating.CustomerID, rating.Rating, rating.Comment)
	if err != nil {
		if uniqueViolation(err, "broker_ratings_author_key") {
			err = utils.ErrAlreadyRated
		}
		return nil, err
	}

	total := broker.AvgRating*float64(broker.RatingCount) + float64(rating.Rating)
	broker.RatingCount++
	broker.AvgRating = total / float64(broker.RatingCount)

	_, err = tx.Exec(ctx, `
        UPDATE brokers
        SET avg_rating=$1, rating_count=$2, row_version=row_version+1, updated_at=NOW()
        WHERE id=$3
    `, broker.AvgRating, broker.RatingCount, broker.ID)
	if err != nil {
		return nil, err
	}
	broker.RowVersion++

	return broker, nil
}

func (r *brokerRatingRepo) ListByBrokerID(ctx context.Context, brokerID uuid.UUID) ([]*models.BrokerRating, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, broker_id, customer_id, rating, comment, created_at
        FROM broker_ratings
        WHERE broker_id=$1
        ORDER BY created_at DESC
    `, brokerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.BrokerRating
	for rows.Next() {
		br, err := scanBrokerRating(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, br)
	}
	return out, rows.Err()
}

func (r *brokerRatingRepo) AggregateAll(ctx context.Context) ([]RatingAggregate, error) {
	rows, err := r.db.Query(ctx, `
        SELECT broker_id, AVG(rating)::float8, COUNT(*)::int
        FROM broker_ratings
        GROUP BY broker_id
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAggregates(rows)
}

func (r *brokerRatingRepo) DeleteByBrokerID(ctx context.Context, brokerID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM broker_ratings WHERE broker_id=$1`, brokerID)
	return err
}

func scanBrokerRating(row pgx.Row) (*models.BrokerRating, error) {
	var (
		br      models.BrokerRating
		comment pgtype.Text
	)
	err := row.Scan(
		&br.ID,
		&br.BrokerID,
		&br.CustomerID,
		&br.Rating,
		&comment,
		&br.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if comment.Status == pgtype.Present {
		br.Comment = comment.String
	}
	return &br, nil
}

func scanAggregates(rows pgx.Rows) ([]RatingAggregate, error) {
	var out []RatingAggregate
	for rows.Next() {
		var agg RatingAggregate
		if err := rows.Scan(&agg.TargetID, &agg.Avg, &agg.Count); err != nil {
			return nil, err
		}
		out = append(out, agg)
	}
	return out, rows.Err()
}
