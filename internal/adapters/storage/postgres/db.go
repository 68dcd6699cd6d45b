package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"herd-mating/internal/adapters/storage/sqlrepo"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Open abre una conexión pool a Postgres usando pgx (database/sql).
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// Dialect: índices y PPPV van como JSON en TEXT, igual que en SQLite.
var Dialect = sqlrepo.Dialect{
	Name:              "postgres",
	Schema:            schema,
	IsUniqueViolation: isUniqueViolation,
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS females (
		id          BIGSERIAL PRIMARY KEY,
		reg_id      TEXT NOT NULL UNIQUE,
		internal_id TEXT NOT NULL DEFAULT '',
		name        TEXT NOT NULL DEFAULT '',
		breed       TEXT NOT NULL DEFAULT '',
		birth_date  DATE NULL,
		indices     TEXT NOT NULL DEFAULT '{}',
		active      BOOLEAN NOT NULL DEFAULT TRUE,
		notes       TEXT NOT NULL DEFAULT '',
		created_at  TIMESTAMPTZ NOT NULL,
		updated_at  TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS bulls (
		id              BIGSERIAL PRIMARY KEY,
		code            TEXT NOT NULL UNIQUE,
		name            TEXT NOT NULL DEFAULT '',
		naab_code       TEXT NOT NULL DEFAULT '',
		source          TEXT NOT NULL DEFAULT '',
		available       BOOLEAN NOT NULL DEFAULT TRUE,
		price_per_dose  DOUBLE PRECISION NULL,
		doses_available INTEGER NOT NULL DEFAULT 0,
		beta_casein     TEXT NOT NULL DEFAULT '',
		kappa_casein    TEXT NOT NULL DEFAULT '',
		indices         TEXT NOT NULL DEFAULT '{}',
		created_at      TIMESTAMPTZ NOT NULL,
		updated_at      TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS matings (
		id                    BIGSERIAL PRIMARY KEY,
		female_id             BIGINT NOT NULL REFERENCES females(id),
		bull_id               BIGINT NOT NULL REFERENCES bulls(id),
		batch_id              TEXT NOT NULL DEFAULT '',
		mating_type           TEXT NOT NULL,
		mating_date           TIMESTAMPTZ NOT NULL,
		expected_calving_date TIMESTAMPTZ NOT NULL,
		actual_calving_date   TIMESTAMPTZ NULL,
		predicted_pppv        TEXT NOT NULL DEFAULT '{}',
		predicted_inbreeding  DOUBLE PRECISION NOT NULL,
		compatibility_score   DOUBLE PRECISION NOT NULL,
		status                TEXT NOT NULL,
		success               BOOLEAN NULL,
		calf_id               TEXT NOT NULL DEFAULT '',
		calf_sex              TEXT NOT NULL DEFAULT '',
		actual_genetic_data   TEXT NULL,
		notes                 TEXT NOT NULL DEFAULT '',
		created_by            TEXT NOT NULL DEFAULT '',
		created_at            TIMESTAMPTZ NOT NULL,
		updated_at            TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS matings_female_id_idx ON matings (female_id)`,
	`CREATE INDEX IF NOT EXISTS matings_bull_id_idx ON matings (bull_id)`,
	`CREATE INDEX IF NOT EXISTS matings_status_idx ON matings (status)`,
	`CREATE INDEX IF NOT EXISTS matings_created_at_idx ON matings (created_at DESC, id DESC)`,
}
