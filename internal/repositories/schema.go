package repositories

import "context"

// InitSchema creates all tables and indexes the service needs. Safe
// to run on every boot.
func InitSchema(ctx context.Context, db DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id            UUID PRIMARY KEY,
			email         TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			role          VARCHAR(16) NOT NULL,
			phone         TEXT NOT NULL DEFAULT '',
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			row_version   BIGINT NOT NULL DEFAULT 1,
			CONSTRAINT users_email_key UNIQUE (email)
		)`,

		`CREATE TABLE IF NOT EXISTS brokers (
			id           UUID PRIMARY KEY,
			name         TEXT NOT NULL,
			user_id      UUID NOT NULL UNIQUE REFERENCES users(id),
			avg_rating   DOUBLE PRECISION NOT NULL DEFAULT 0,
			rating_count INTEGER NOT NULL DEFAULT 0,
			created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			row_version  BIGINT NOT NULL DEFAULT 1
		)`,

		`CREATE TABLE IF NOT EXISTS customers (
			id          UUID PRIMARY KEY,
			name        TEXT NOT NULL,
			user_id     UUID NOT NULL UNIQUE REFERENCES users(id),
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			row_version BIGINT NOT NULL DEFAULT 1
		)`,

		`CREATE TABLE IF NOT EXISTS properties (
			id            UUID PRIMARY KEY,
			broker_id     UUID NOT NULL REFERENCES brokers(id),
			configuration VARCHAR(16) NOT NULL,
			offer_type    VARCHAR(16) NOT NULL,
			offer_cost    DOUBLE PRECISION NOT NULL,
			area_sqft     DOUBLE PRECISION NOT NULL,
			address       TEXT NOT NULL DEFAULT '',
			street        TEXT NOT NULL DEFAULT '',
			city          TEXT NOT NULL DEFAULT '',
			available     BOOLEAN NOT NULL DEFAULT TRUE,
			avg_rating    DOUBLE PRECISION NOT NULL DEFAULT 0,
			review_count  INTEGER NOT NULL DEFAULT 0,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			row_version   BIGINT NOT NULL DEFAULT 1
		)`,
		`CREATE INDEX IF NOT EXISTS properties_city_idx ON properties (LOWER(city))`,
		`CREATE INDEX IF NOT EXISTS properties_available_idx ON properties (available)`,
		`CREATE INDEX IF NOT EXISTS properties_broker_idx ON properties (broker_id)`,

		`CREATE TABLE IF NOT EXISTS property_images (
			property_id UUID NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
			position    INTEGER NOT NULL,
			url         TEXT NOT NULL,
			PRIMARY KEY (property_id, position)
		)`,

		`CREATE TABLE IF NOT EXISTS customer_favorites (
			customer_id UUID NOT NULL REFERENCES customers(id),
			property_id UUID NOT NULL REFERENCES properties(id),
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (customer_id, property_id)
		)`,

		`CREATE TABLE IF NOT EXISTS customer_holdings (
			customer_id UUID NOT NULL REFERENCES customers(id),
			property_id UUID NOT NULL REFERENCES properties(id),
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (customer_id, property_id)
		)`,

		`CREATE TABLE IF NOT EXISTS deals (
			id          UUID PRIMARY KEY,
			deal_date   DATE NOT NULL,
			deal_cost   DOUBLE PRECISION NOT NULL,
			property_id UUID NOT NULL REFERENCES properties(id),
			customer_id UUID NOT NULL REFERENCES customers(id),
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT deals_property_id_key UNIQUE (property_id)
		)`,

		`CREATE TABLE IF NOT EXISTS broker_ratings (
			id          UUID PRIMARY KEY,
			broker_id   UUID NOT NULL REFERENCES brokers(id),
			customer_id UUID NOT NULL REFERENCES customers(id),
			rating      INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
			comment     TEXT,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT broker_ratings_author_key UNIQUE (broker_id, customer_id)
		)`,

		`CREATE TABLE IF NOT EXISTS property_comments (
			id          UUID PRIMARY KEY,
			property_id UUID NOT NULL REFERENCES properties(id),
			user_id     UUID NOT NULL REFERENCES users(id),
			rating      INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
			body        TEXT,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT property_comments_author_key UNIQUE (property_id, user_id)
		)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
