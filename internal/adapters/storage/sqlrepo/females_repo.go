package sqlrepo

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"herd-mating/internal/domain/females"
	"herd-mating/internal/domain/genetics"
	"herd-mating/internal/platform/apperr"
)

const femaleColumns = `
	id, reg_id, internal_id, name, breed,
	birth_date, indices, active, notes,
	created_at, updated_at`

type FemalesRepo struct {
	db      *sql.DB
	dialect Dialect
}

func NewFemalesRepo(db *sql.DB, d Dialect) *FemalesRepo {
	return &FemalesRepo{db: db, dialect: d}
}

func (r *FemalesRepo) Create(ctx context.Context, f females.Female) (int64, error) {
	ix, err := toJSON(f.Indices)
	if err != nil {
		return 0, err
	}

	var id int64
	err = r.db.QueryRowContext(ctx, `
		INSERT INTO females (
			reg_id, internal_id, name, breed,
			birth_date, indices, active, notes,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING id
	`,
		f.RegID,
		f.InternalID,
		f.Name,
		f.Breed,
		toNullTime(f.BirthDate),
		ix,
		f.Active,
		f.Notes,
		f.CreatedAt,
		f.UpdatedAt,
	).Scan(&id)
	if err != nil {
		if r.dialect.IsUniqueViolation(err) {
			return 0, apperr.ErrConflict
		}
		return 0, err
	}
	return id, nil
}

func (r *FemalesRepo) GetByID(ctx context.Context, id int64) (females.Female, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+femaleColumns+` FROM females WHERE id = $1`, id)
	f, err := scanFemale(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return females.Female{}, apperr.ErrNotFound
		}
		return females.Female{}, err
	}
	return f, nil
}

func (r *FemalesRepo) List(ctx context.Context, filter females.ListFilter) ([]females.Female, int, error) {
	var w where
	if filter.ActiveOnly {
		w.add("active = $%[1]d", true)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		w.add("(LOWER(reg_id) LIKE $%[1]d OR LOWER(internal_id) LIKE $%[1]d OR LOWER(name) LIKE $%[1]d)",
			"%"+strings.ToLower(s)+"%")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM females`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + femaleColumns + ` FROM females` + w.String() + ` ORDER BY id ASC`
	q += w.page(filter.Offset, filter.Limit)

	rows, err := r.db.QueryContext(ctx, q, w.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]females.Female, 0)
	for rows.Next() {
		f, err := scanFemale(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, f)
	}
	return out, total, rows.Err()
}

// scanner cubre *sql.Row y *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanFemale(s scanner) (females.Female, error) {
	var (
		f  females.Female
		bd sql.NullTime
		ix string
	)
	if err := s.Scan(
		&f.ID,
		&f.RegID,
		&f.InternalID,
		&f.Name,
		&f.Breed,
		&bd,
		&ix,
		&f.Active,
		&f.Notes,
		&f.CreatedAt,
		&f.UpdatedAt,
	); err != nil {
		return females.Female{}, err
	}

	m, err := fromJSON(ix)
	if err != nil {
		return females.Female{}, err
	}
	f.Indices = genetics.Indices(m)
	f.BirthDate = fromNullTime(bd)
	return f, nil
}
