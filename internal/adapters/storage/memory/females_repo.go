package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"herd-mating/internal/domain/females"
	"herd-mating/internal/platform/apperr"
)

type femaleRepo struct {
	mu      sync.RWMutex
	nextID  int64
	byID    map[int64]females.Female
	byRegID map[string]int64
}

func NewFemaleRepo() females.Repository {
	return &femaleRepo{
		byID:    make(map[int64]females.Female),
		byRegID: make(map[string]int64),
	}
}

func (r *femaleRepo) Create(ctx context.Context, f females.Female) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byRegID[f.RegID]; exists {
		return 0, apperr.ErrConflict
	}
	r.nextID++
	f.ID = r.nextID
	f.Indices = f.Indices.Clone()
	r.byID[f.ID] = f
	r.byRegID[f.RegID] = f.ID
	return f.ID, nil
}

func (r *femaleRepo) GetByID(ctx context.Context, id int64) (females.Female, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.byID[id]
	if !ok {
		return females.Female{}, apperr.ErrNotFound
	}
	f.Indices = f.Indices.Clone()
	return f, nil
}

func (r *femaleRepo) List(ctx context.Context, filter females.ListFilter) ([]females.Female, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	out := make([]females.Female, 0)
	for _, f := range r.byID {
		if filter.ActiveOnly && !f.Active {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(f.RegID), search) &&
			!strings.Contains(strings.ToLower(f.InternalID), search) &&
			!strings.Contains(strings.ToLower(f.Name), search) {
			continue
		}
		f.Indices = f.Indices.Clone()
		out = append(out, f)
	}

	// Orden estable por id (orden de alta)
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})

	total := len(out)
	return page(out, filter.Offset, filter.Limit), total, nil
}

// page recorta un slice ya ordenado. limit <= 0 = sin límite.
func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	if offset > 0 {
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
