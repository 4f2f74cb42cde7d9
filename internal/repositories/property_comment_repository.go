package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"

	"github.com/openestate/realty-service/internal/models"
	"github.com/openestate/realty-service/internal/utils"
)

/* ------------------------------------------------------------------
   Public interface
------------------------------------------------------------------ */

type PropertyCommentRepository interface {
	// AddCommentAtomic appends the rated comment and folds it into
	// the property's running aggregate in one transaction, with the
	// property row locked.
	AddCommentAtomic(ctx context.Context, comment *models.PropertyComment) (*models.Property, error)

	ListByPropertyID(ctx context.Context, propertyID uuid.UUID) ([]*models.PropertyComment, error)
	AggregateAll(ctx context.Context) ([]RatingAggregate, error)
	DeleteByPropertyID(ctx context.Context, propertyID uuid.UUID) error
}

/* ------------------------------------------------------------------
   Implementation
------------------------------------------------------------------ */

type propertyCommentRepo struct {
	db DB
}

func NewPropertyCommentRepository(db DB) PropertyCommentRepository {
	return &propertyCommentRepo{db: db}
}

func (r *propertyCommentRepo) AddCommentAtomic(
	ctx context.Context,
	comment *models.PropertyComment,
) (prop *models.Property, err error) {
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

	row := tx.QueryRow(ctx, baseSelectProperty()+" WHERE id=$1 FOR UPDATE", comment.PropertyID)
	prop, err = scanProperty(row)
	if err != nil {
		return nil, err
	}
	if prop == nil {
		err = utils.ErrNotFound
		return nil, err
	}

	if comment.ID == uuid.Nil {
		comment.ID = uuid.New()
	}
	_, err = tx.Exec(ctx, `
        INSERT INTO property_comments (id, property_id, user_id, rating, body, created_at)
        VALUES ($1,$2,$3,$4, NULLIF($5,''), NOW())
    `, comment.ID, comment.PropertyID, comment.UserID, comment.Rating, comment.Body)
	if err != nil {
		if uniqueViolation(err, "property_comments_author_key") {
			err = utils.ErrAlreadyRated
		}
		return nil, err
	}

	total := prop.AvgRating*float64(prop.ReviewCount) + float64(comment.Rating)
	prop.ReviewCount++
	prop.AvgRating = total / float64(prop.ReviewCount)

	_, err = tx.Exec(ctx, `
        UPDATE properties
        SET avg_rating=$1, review_count=$2, row_version=row_version+1, updated_at=NOW()
        WHERE id=$3
    `, prop.AvgRating, prop.ReviewCount, prop.ID)
	if err != nil {
		return nil, err
	}
	prop.RowVersion++

	return prop, nil
}

func (r *propertyCommentRepo) ListByPropertyID(ctx context.Context, propertyID uuid.UUID) ([]*models.PropertyComment, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, property_id, user_id, rating, body, created_at
        FROM property_comments
        WHERE property_id=$1
        ORDER BY created_at DESC
    `, propertyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.PropertyComment
	for rows.Next() {
		pc, err := scanPropertyComment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, pc)
	}
	return out, rows.Err()
}

func (r *propertyCommentRepo) AggregateAll(ctx context.Context) ([]RatingAggregate, error) {
	rows, err := r.db.Query(ctx, `
        SELECT property_id, AVG(rating)::float8, COUNT(*)::int
        FROM property_comments
        GROUP BY property_id
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAggregates(rows)
}

func (r *propertyCommentRepo) DeleteByPropertyID(ctx context.Context, propertyID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM property_comments WHERE property_id=$1`, propertyID)
	return err
}

func scanPropertyComment(row pgx.Row) (*models.PropertyComment, error) {
	var (
		pc   models.PropertyComment
		body pgtype.Text
	)
	err := row.Scan(
		&pc.ID,
		&pc.PropertyID,
		&pc.UserID,
		&pc.Rating,
		&body,
		&pc.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if body.Status == pgtype.Present {
		pc.Body = body.String
	}
	return &pc, nil
}
