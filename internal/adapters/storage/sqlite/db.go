// Package sqlite es el storage embebido para desarrollo local y tests,
// sobre el driver pure-Go modernc.org/sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"herd-mating/internal/adapters/storage/sqlrepo"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Open abre (o crea) el archivo de base y configura la conexión.
// Una sola conexión: SQLite serializa escrituras y así no hay SQLITE_BUSY.
func Open(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_time_format=sqlite", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

var Dialect = sqlrepo.Dialect{
	Name:              "sqlite",
	Schema:            schema,
	IsUniqueViolation: isUniqueViolation,
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE || se.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS females (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		reg_id      TEXT NOT NULL UNIQUE,
		internal_id TEXT NOT NULL DEFAULT '',
		name        TEXT NOT NULL DEFAULT '',
		breed       TEXT NOT NULL DEFAULT '',
		birth_date  DATE NULL,
		indices     TEXT NOT NULL DEFAULT '{}',
		active      BOOLEAN NOT NULL DEFAULT 1,
		notes       TEXT NOT NULL DEFAULT '',
		created_at  TIMESTAMP NOT NULL,
		updated_at  TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS bulls (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		code            TEXT NOT NULL UNIQUE,
		name            TEXT NOT NULL DEFAULT '',
		naab_code       TEXT NOT NULL DEFAULT '',
		source          TEXT NOT NULL DEFAULT '',
		available       BOOLEAN NOT NULL DEFAULT 1,
		price_per_dose  REAL NULL,
		doses_available INTEGER NOT NULL DEFAULT 0,
		beta_casein     TEXT NOT NULL DEFAULT '',
		kappa_casein    TEXT NOT NULL DEFAULT '',
		indices         TEXT NOT NULL DEFAULT '{}',
		created_at      TIMESTAMP NOT NULL,
		updated_at      TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS matings (
		id                    INTEGER PRIMARY KEY AUTOINCREMENT,
		female_id             INTEGER NOT NULL REFERENCES females(id),
		bull_id               INTEGER NOT NULL REFERENCES bulls(id),
		batch_id              TEXT NOT NULL DEFAULT '',
		mating_type           TEXT NOT NULL,
		mating_date           TIMESTAMP NOT NULL,
		expected_calving_date TIMESTAMP NOT NULL,
		actual_calving_date   TIMESTAMP NULL,
		predicted_pppv        TEXT NOT NULL DEFAULT '{}',
		predicted_inbreeding  REAL NOT NULL,
		compatibility_score   REAL NOT NULL,
		status                TEXT NOT NULL,
		success               BOOLEAN NULL,
		calf_id               TEXT NOT NULL DEFAULT '',
		calf_sex              TEXT NOT NULL DEFAULT '',
		actual_genetic_data   TEXT NULL,
		notes                 TEXT NOT NULL DEFAULT '',
		created_by            TEXT NOT NULL DEFAULT '',
		created_at            TIMESTAMP NOT NULL,
		updated_at            TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS matings_female_id_idx ON matings (female_id)`,
	`CREATE INDEX IF NOT EXISTS matings_bull_id_idx ON matings (bull_id)`,
	`CREATE INDEX IF NOT EXISTS matings_status_idx ON matings (status)`,
	`CREATE INDEX IF NOT EXISTS matings_created_at_idx ON matings (created_at DESC, id DESC)`,
}
