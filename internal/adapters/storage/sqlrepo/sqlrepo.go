// Package sqlrepo implementa los repositorios sobre database/sql.
// El mismo SQL ($n, RETURNING, LOWER() LIKE) corre en Postgres y en SQLite;
// lo que cambia entre motores vive en Dialect.
package sqlrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Dialect describe un motor concreto.
type Dialect struct {
	Name string
	// Schema son las sentencias DDL idempotentes (CREATE ... IF NOT EXISTS).
	Schema []string
	// IsUniqueViolation reconoce el error de constraint UNIQUE del driver.
	IsUniqueViolation func(error) bool
}

// Migrate aplica el schema en una transacción.
func Migrate(ctx context.Context, db *sql.DB, d Dialect) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range d.Schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s migration %d: %w", d.Name, i, err)
		}
	}
	return tx.Commit()
}

// Los mapas de índices se guardan como JSON en columnas TEXT.
func toJSON(m map[string]float64) (string, error) {
	if m == nil {
		m = map[string]float64{}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func fromJSON(s string) (map[string]float64, error) {
	out := map[string]float64{}
	if s == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func fromNullTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

func toNullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func fromNullFloat(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	v := nf.Float64
	return &v
}

func toNullBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}

func fromNullBool(nb sql.NullBool) *bool {
	if !nb.Valid {
		return nil
	}
	v := nb.Bool
	return &v
}

// where arma cláusulas con placeholders $n correlativos.
type where struct {
	conds []string
	args  []any
}

// add recibe cond con %[1]d en el lugar del placeholder (puede repetirse).
func (w *where) add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, fmt.Sprintf(cond, len(w.args)))
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	s := " WHERE " + w.conds[0]
	for _, c := range w.conds[1:] {
		s += " AND " + c
	}
	return s
}

// page agrega LIMIT/OFFSET cuando limit > 0.
func (w *where) page(offset, limit int) string {
	if limit <= 0 {
		return ""
	}
	w.args = append(w.args, limit, max(offset, 0))
	n := len(w.args)
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", n-1, n)
}
