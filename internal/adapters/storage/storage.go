// Package storage elige el backend según la config y arma los repositorios.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"herd-mating/internal/adapters/storage/memory"
	"herd-mating/internal/adapters/storage/postgres"
	"herd-mating/internal/adapters/storage/sqlite"
	"herd-mating/internal/adapters/storage/sqlrepo"
	"herd-mating/internal/config"
	"herd-mating/internal/domain/bulls"
	"herd-mating/internal/domain/females"
	"herd-mating/internal/domain/matings"
)

var ErrNoDatabase = errors.New("storage driver memory has no database")

// Repos agrupa los repositorios de un mismo backend.
type Repos struct {
	Females females.Repository
	Bulls   bulls.Repository
	Matings matings.Repository
}

// Memory arma repos in-memory (dev y tests).
func Memory() Repos {
	return Repos{
		Females: memory.NewFemaleRepo(),
		Bulls:   memory.NewBullRepo(),
		Matings: memory.NewMatingRepo(),
	}
}

// SQL arma repos sobre una base ya abierta y migrada.
func SQL(db *sql.DB, d sqlrepo.Dialect) Repos {
	return Repos{
		Females: sqlrepo.NewFemalesRepo(db, d),
		Bulls:   sqlrepo.NewBullsRepo(db, d),
		Matings: sqlrepo.NewMatingsRepo(db),
	}
}

// Open abre la base del driver configurado. Para memory devuelve ErrNoDatabase.
func Open(cfg config.Config) (*sql.DB, sqlrepo.Dialect, error) {
	switch cfg.Storage {
	case config.DriverPostgres:
		db, err := postgres.Open(cfg.DBDSN)
		if err != nil {
			return nil, sqlrepo.Dialect{}, fmt.Errorf("open postgres: %w", err)
		}
		return db, postgres.Dialect, nil
	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, sqlrepo.Dialect{}, fmt.Errorf("open sqlite %s: %w", cfg.SQLitePath, err)
		}
		return db, sqlite.Dialect, nil
	case config.DriverMemory:
		return nil, sqlrepo.Dialect{}, ErrNoDatabase
	default:
		return nil, sqlrepo.Dialect{}, fmt.Errorf("unknown storage driver %q", cfg.Storage)
	}
}

// Setup devuelve los repos del driver configurado, migrando el schema si es SQL.
// close libera la base (no-op para memory).
func Setup(ctx context.Context, cfg config.Config) (repos Repos, close func() error, err error) {
	db, d, err := Open(cfg)
	if errors.Is(err, ErrNoDatabase) {
		return Memory(), func() error { return nil }, nil
	}
	if err != nil {
		return Repos{}, nil, err
	}
	if err := sqlrepo.Migrate(ctx, db, d); err != nil {
		_ = db.Close()
		return Repos{}, nil, err
	}
	return SQL(db, d), db.Close, nil
}
