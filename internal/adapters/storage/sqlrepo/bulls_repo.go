package sqlrepo

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"herd-mating/internal/domain/bulls"
	"herd-mating/internal/domain/genetics"
	"herd-mating/internal/platform/apperr"
)

const bullColumns = `
	id, code, name, naab_code, source,
	available, price_per_dose, doses_available,
	beta_casein, kappa_casein, indices,
	created_at, updated_at`

type BullsRepo struct {
	db      *sql.DB
	dialect Dialect
}

func NewBullsRepo(db *sql.DB, d Dialect) *BullsRepo {
	return &BullsRepo{db: db, dialect: d}
}

func (r *BullsRepo) Create(ctx context.Context, b bulls.Bull) (int64, error) {
	ix, err := toJSON(b.Indices)
	if err != nil {
		return 0, err
	}

	var id int64
	err = r.db.QueryRowContext(ctx, `
		INSERT INTO bulls (
			code, name, naab_code, source,
			available, price_per_dose, doses_available,
			beta_casein, kappa_casein, indices,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING id
	`,
		b.Code,
		b.Name,
		b.NAABCode,
		b.Source,
		b.Available,
		toNullFloat(b.PricePerDose),
		b.DosesAvailable,
		b.BetaCasein,
		b.KappaCasein,
		ix,
		b.CreatedAt,
		b.UpdatedAt,
	).Scan(&id)
	if err != nil {
		if r.dialect.IsUniqueViolation(err) {
			return 0, apperr.ErrConflict
		}
		return 0, err
	}
	return id, nil
}

func (r *BullsRepo) GetByID(ctx context.Context, id int64) (bulls.Bull, error) {
	return r.getOne(ctx, `SELECT `+bullColumns+` FROM bulls WHERE id = $1`, id)
}

func (r *BullsRepo) GetByCode(ctx context.Context, code string) (bulls.Bull, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return bulls.Bull{}, apperr.ErrNotFound
	}
	return r.getOne(ctx, `SELECT `+bullColumns+` FROM bulls WHERE code = $1`, code)
}

func (r *BullsRepo) getOne(ctx context.Context, q string, arg any) (bulls.Bull, error) {
	b, err := scanBull(r.db.QueryRowContext(ctx, q, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return bulls.Bull{}, apperr.ErrNotFound
		}
		return bulls.Bull{}, err
	}
	return b, nil
}

// List filtra en SQL lo que son columnas (disponibilidad, búsqueda);
// filtros por índice, orden y paginado los resuelve bulls.Apply.
func (r *BullsRepo) List(ctx context.Context, filter bulls.ListFilter) ([]bulls.Bull, int, error) {
	var w where
	if filter.AvailableOnly {
		w.add("available = $%[1]d", true)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		w.add("(LOWER(code) LIKE $%[1]d OR LOWER(name) LIKE $%[1]d)", "%"+strings.ToLower(s)+"%")
	}

	rows, err := r.db.QueryContext(ctx, `SELECT `+bullColumns+` FROM bulls`+w.String()+` ORDER BY id ASC`, w.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := make([]bulls.Bull, 0)
	for rows.Next() {
		b, err := scanBull(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	out, total := bulls.Apply(items, filter)
	return out, total, nil
}

func scanBull(s scanner) (bulls.Bull, error) {
	var (
		b     bulls.Bull
		price sql.NullFloat64
		ix    string
	)
	if err := s.Scan(
		&b.ID,
		&b.Code,
		&b.Name,
		&b.NAABCode,
		&b.Source,
		&b.Available,
		&price,
		&b.DosesAvailable,
		&b.BetaCasein,
		&b.KappaCasein,
		&ix,
		&b.CreatedAt,
		&b.UpdatedAt,
	); err != nil {
		return bulls.Bull{}, err
	}

	m, err := fromJSON(ix)
	if err != nil {
		return bulls.Bull{}, err
	}
	b.Indices = genetics.Indices(m)
	b.PricePerDose = fromNullFloat(price)
	return b, nil
}
