package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// Constraint names the store maps back to JSON fields.
const (
	fkBusinessType = "businesses_business_type_fk"
	fkUser         = "businesses_user_fk"
	fkState        = "businesses_state_fk"
)

// schema creates the board tables if they do not exist. Businesses cascade
// away with their type or user, but a state cannot be dropped while a
// business still points at it.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS states (
        id BIGSERIAL PRIMARY KEY,
        name TEXT NOT NULL,
        created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
        CONSTRAINT states_name_key UNIQUE (name)
    )`,
	`CREATE TABLE IF NOT EXISTS business_types (
        id BIGSERIAL PRIMARY KEY,
        name TEXT NOT NULL,
        created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
        CONSTRAINT business_types_name_key UNIQUE (name)
    )`,
	`CREATE TABLE IF NOT EXISTS users (
        id BIGSERIAL PRIMARY KEY,
        name VARCHAR(255) NOT NULL,
        email VARCHAR(255) NOT NULL,
        password_hash TEXT NOT NULL,
        created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
        CONSTRAINT users_email_key UNIQUE (email)
    )`,
	`CREATE TABLE IF NOT EXISTS businesses (
        id BIGSERIAL PRIMARY KEY,
        name VARCHAR(255) NOT NULL,
        business_type_id BIGINT NOT NULL,
        user_id BIGINT NOT NULL,
        state_id BIGINT NOT NULL,
        value NUMERIC(10,2) NOT NULL CHECK (value >= 0),
        created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
        CONSTRAINT ` + fkBusinessType + ` FOREIGN KEY (business_type_id) REFERENCES business_types(id) ON DELETE CASCADE,
        CONSTRAINT ` + fkUser + ` FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
        CONSTRAINT ` + fkState + ` FOREIGN KEY (state_id) REFERENCES states(id) ON DELETE RESTRICT
    )`,
	`CREATE INDEX IF NOT EXISTS businesses_state_id_idx ON businesses(state_id)`,
	`CREATE INDEX IF NOT EXISTS businesses_business_type_id_idx ON businesses(business_type_id)`,
	`CREATE INDEX IF NOT EXISTS businesses_user_id_idx ON businesses(user_id)`,
}

// EnsureSchema applies the schema statements in order and stops at the first
// failure.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, s := range schema {
		if _, err := pool.Exec(ctx, s); err != nil {
			log.WithError(err).WithField("stmt", s).Error("schema ensure failed")
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
