package females

import "context"

type ListFilter struct {
	ActiveOnly bool
	Search     string // reg_id, internal_id o name
	Offset     int
	Limit      int // <= 0: todas
}

type Repository interface {
	Create(ctx context.Context, f Female) (int64, error)
	GetByID(ctx context.Context, id int64) (Female, error)
	List(ctx context.Context, filter ListFilter) ([]Female, int, error)
}
