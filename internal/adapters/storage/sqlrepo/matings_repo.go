package sqlrepo

import (
	"context"
	"database/sql"
	"errors"

	"herd-mating/internal/domain/matings"
	"herd-mating/internal/platform/apperr"
)

const matingColumns = `
	id, female_id, bull_id, batch_id, mating_type,
	mating_date, expected_calving_date, actual_calving_date,
	predicted_pppv, predicted_inbreeding, compatibility_score,
	status, success, calf_id, calf_sex, actual_genetic_data,
	notes, created_by, created_at, updated_at`

const insertMating = `
	INSERT INTO matings (
		female_id, bull_id, batch_id, mating_type,
		mating_date, expected_calving_date, actual_calving_date,
		predicted_pppv, predicted_inbreeding, compatibility_score,
		status, success, calf_id, calf_sex, actual_genetic_data,
		notes, created_by, created_at, updated_at
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
	RETURNING id`

type MatingsRepo struct {
	db *sql.DB
}

func NewMatingsRepo(db *sql.DB) *MatingsRepo {
	return &MatingsRepo{db: db}
}

func (r *MatingsRepo) Create(ctx context.Context, m matings.Mating) (int64, error) {
	args, err := matingArgs(m)
	if err != nil {
		return 0, err
	}
	var id int64
	if err := r.db.QueryRowContext(ctx, insertMating, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// CreateBatch inserta todo en una transacción; ante cualquier error hace rollback.
func (r *MatingsRepo) CreateBatch(ctx context.Context, ms []matings.Mating) ([]int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, insertMating)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	ids := make([]int64, 0, len(ms))
	for _, m := range ms {
		args, err := matingArgs(m)
		if err != nil {
			return nil, err
		}
		var id int64
		if err := stmt.QueryRowContext(ctx, args...).Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *MatingsRepo) GetByID(ctx context.Context, id int64) (matings.Mating, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+matingColumns+` FROM matings WHERE id = $1`, id)
	m, err := scanMating(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return matings.Mating{}, apperr.ErrNotFound
		}
		return matings.Mating{}, err
	}
	return m, nil
}

func (r *MatingsRepo) List(ctx context.Context, filter matings.ListFilter) ([]matings.Mating, int, error) {
	var w where
	if filter.Status != "" {
		w.add("status = $%[1]d", string(filter.Status))
	}
	if filter.FemaleID != 0 {
		w.add("female_id = $%[1]d", filter.FemaleID)
	}
	if filter.BullID != 0 {
		w.add("bull_id = $%[1]d", filter.BullID)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM matings`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + matingColumns + ` FROM matings` + w.String() + ` ORDER BY created_at DESC, id DESC`
	q += w.page(filter.Offset, filter.Limit)

	rows, err := r.db.QueryContext(ctx, q, w.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]matings.Mating, 0)
	for rows.Next() {
		m, err := scanMating(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, m)
	}
	return out, total, rows.Err()
}

func (r *MatingsRepo) Update(ctx context.Context, m matings.Mating) error {
	var actual sql.NullString
	if m.ActualGeneticData != nil {
		s, err := toJSON(m.ActualGeneticData)
		if err != nil {
			return err
		}
		actual = sql.NullString{String: s, Valid: true}
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE matings
		SET
			status = $2,
			success = $3,
			actual_calving_date = $4,
			actual_genetic_data = $5,
			calf_id = $6,
			calf_sex = $7,
			notes = $8,
			updated_at = $9
		WHERE id = $1
	`,
		m.ID,
		string(m.Status),
		toNullBool(m.Success),
		toNullTime(m.ActualCalvingDate),
		actual,
		m.CalfID,
		m.CalfSex,
		m.Notes,
		m.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func matingArgs(m matings.Mating) ([]any, error) {
	pppv, err := toJSON(m.PredictedPPPV)
	if err != nil {
		return nil, err
	}
	var actual sql.NullString
	if m.ActualGeneticData != nil {
		s, err := toJSON(m.ActualGeneticData)
		if err != nil {
			return nil, err
		}
		actual = sql.NullString{String: s, Valid: true}
	}
	return []any{
		m.FemaleID,
		m.BullID,
		m.BatchID,
		string(m.Type),
		m.MatingDate,
		m.ExpectedCalvingDate,
		toNullTime(m.ActualCalvingDate),
		pppv,
		m.PredictedInbreeding,
		m.CompatibilityScore,
		string(m.Status),
		toNullBool(m.Success),
		m.CalfID,
		m.CalfSex,
		actual,
		m.Notes,
		m.CreatedBy,
		m.CreatedAt,
		m.UpdatedAt,
	}, nil
}

func scanMating(s scanner) (matings.Mating, error) {
	var (
		m           matings.Mating
		typ, status string
		actualDate  sql.NullTime
		success     sql.NullBool
		pppv        string
		actualData  sql.NullString
	)
	if err := s.Scan(
		&m.ID,
		&m.FemaleID,
		&m.BullID,
		&m.BatchID,
		&typ,
		&m.MatingDate,
		&m.ExpectedCalvingDate,
		&actualDate,
		&pppv,
		&m.PredictedInbreeding,
		&m.CompatibilityScore,
		&status,
		&success,
		&m.CalfID,
		&m.CalfSex,
		&actualData,
		&m.Notes,
		&m.CreatedBy,
		&m.CreatedAt,
		&m.UpdatedAt,
	); err != nil {
		return matings.Mating{}, err
	}

	var err error
	if m.PredictedPPPV, err = fromJSON(pppv); err != nil {
		return matings.Mating{}, err
	}
	if actualData.Valid {
		if m.ActualGeneticData, err = fromJSON(actualData.String); err != nil {
			return matings.Mating{}, err
		}
	}

	m.Type = matings.Type(typ)
	m.Status = matings.Status(status)
	m.ActualCalvingDate = fromNullTime(actualDate)
	m.Success = fromNullBool(success)
	m.Saved = true
	return m, nil
}
