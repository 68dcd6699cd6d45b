package memory

import (
	"context"
	"maps"
	"sort"
	"sync"

	"herd-mating/internal/domain/matings"
	"herd-mating/internal/platform/apperr"
)

type matingRepo struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]matings.Mating
}

func NewMatingRepo() matings.Repository {
	return &matingRepo{
		byID: make(map[int64]matings.Mating),
	}
}

func (r *matingRepo) Create(ctx context.Context, m matings.Mating) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.insert(m), nil
}

// CreateBatch toma el lock una sola vez: o entran todas o ninguna.
func (r *matingRepo) CreateBatch(ctx context.Context, ms []matings.Mating) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]int64, 0, len(ms))
	for _, m := range ms {
		ids = append(ids, r.insert(m))
	}
	return ids, nil
}

// insert asume r.mu tomado.
func (r *matingRepo) insert(m matings.Mating) int64 {
	r.nextID++
	m.ID = r.nextID
	m.Saved = true
	r.byID[m.ID] = cloneMating(m)
	return m.ID
}

func (r *matingRepo) GetByID(ctx context.Context, id int64) (matings.Mating, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.byID[id]
	if !ok {
		return matings.Mating{}, apperr.ErrNotFound
	}
	return cloneMating(m), nil
}

func (r *matingRepo) List(ctx context.Context, filter matings.ListFilter) ([]matings.Mating, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]matings.Mating, 0)
	for _, m := range r.byID {
		if filter.Status != "" && m.Status != filter.Status {
			continue
		}
		if filter.FemaleID != 0 && m.FemaleID != filter.FemaleID {
			continue
		}
		if filter.BullID != 0 && m.BullID != filter.BullID {
			continue
		}
		out = append(out, cloneMating(m))
	}

	// created_at desc, id desc
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})

	total := len(out)
	return page(out, filter.Offset, filter.Limit), total, nil
}

func (r *matingRepo) Update(ctx context.Context, m matings.Mating) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[m.ID]; !exists {
		return apperr.ErrNotFound
	}
	m.Saved = true
	r.byID[m.ID] = cloneMating(m)
	return nil
}

// cloneMating evita compartir mapas/punteros con el caller.
func cloneMating(m matings.Mating) matings.Mating {
	m.PredictedPPPV = maps.Clone(m.PredictedPPPV)
	m.ActualGeneticData = maps.Clone(m.ActualGeneticData)
	if m.ActualCalvingDate != nil {
		t := *m.ActualCalvingDate
		m.ActualCalvingDate = &t
	}
	if m.Success != nil {
		v := *m.Success
		m.Success = &v
	}
	return m
}
