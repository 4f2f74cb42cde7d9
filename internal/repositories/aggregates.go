package repositories

import "context"

// resyncBrokerAggregates rewrites every broker whose stored
// (avg_rating, rating_count) no longer matches its rating history.
// Run inside a delete cascade after rating rows were removed, so the
// transaction never exposes a stale aggregate.
func resyncBrokerAggregates(ctx context.Context, db DB) error {
	_, err := db.Exec(ctx, `
        UPDATE brokers b
           SET avg_rating   = sub.avg,
               rating_count = sub.cnt,
               row_version  = b.row_version + 1,
               updated_at   = NOW()
          FROM (
                SELECT br.id,
                       COALESCE(AVG(r.rating)::float8, 0) AS avg,
                       COUNT(r.id)::int AS cnt
                  FROM brokers br
                  LEFT JOIN broker_ratings r ON r.broker_id = br.id
                 GROUP BY br.id
               ) sub
         WHERE b.id = sub.id
           AND (b.rating_count <> sub.cnt OR b.avg_rating <> sub.avg)
    `)
	return err
}

// resyncPropertyAggregates is the property-comment counterpart.
func resyncPropertyAggregates(ctx context.Context, db DB) error {
	_, err := db.Exec(ctx, `
        UPDATE properties p
           SET avg_rating   = sub.avg,
               review_count = sub.cnt,
               row_version  = p.row_version + 1,
               updated_at   = NOW()
          FROM (
                SELECT pr.id,
                       COALESCE(AVG(c.rating)::float8, 0) AS avg,
                       COUNT(c.id)::int AS cnt
                  FROM properties pr
                  LEFT JOIN property_comments c ON c.property_id = pr.id
                 GROUP BY pr.id
               ) sub
         WHERE p.id = sub.id
           AND (p.review_count <> sub.cnt OR p.avg_rating <> sub.avg)
    `)
	return err
}
