package memory

import (
	"context"
	"sync"

	"herd-mating/internal/domain/bulls"
	"herd-mating/internal/platform/apperr"
)

type bullRepo struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]bulls.Bull
	byCode map[string]int64
}

func NewBullRepo() bulls.Repository {
	return &bullRepo{
		byID:   make(map[int64]bulls.Bull),
		byCode: make(map[string]int64),
	}
}

func (r *bullRepo) Create(ctx context.Context, b bulls.Bull) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byCode[b.Code]; exists {
		return 0, apperr.ErrConflict
	}
	r.nextID++
	b.ID = r.nextID
	b.Indices = b.Indices.Clone()
	r.byID[b.ID] = b
	r.byCode[b.Code] = b.ID
	return b.ID, nil
}

func (r *bullRepo) GetByID(ctx context.Context, id int64) (bulls.Bull, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.byID[id]
	if !ok {
		return bulls.Bull{}, apperr.ErrNotFound
	}
	b.Indices = b.Indices.Clone()
	return b, nil
}

func (r *bullRepo) GetByCode(ctx context.Context, code string) (bulls.Bull, error) {
	r.mu.RLock()
	id, ok := r.byCode[code]
	r.mu.RUnlock()

	if !ok {
		return bulls.Bull{}, apperr.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *bullRepo) List(ctx context.Context, filter bulls.ListFilter) ([]bulls.Bull, int, error) {
	r.mu.RLock()
	items := make([]bulls.Bull, 0, len(r.byID))
	for _, b := range r.byID {
		b.Indices = b.Indices.Clone()
		items = append(items, b)
	}
	r.mu.RUnlock()

	out, total := bulls.Apply(items, filter)
	return out, total, nil
}
