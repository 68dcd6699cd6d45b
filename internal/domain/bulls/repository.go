package bulls

import "context"

type ListFilter struct {
	AvailableOnly bool
	Search        string // code o name
	Filters       Filters
	SortBy        string // índice, orden desc
	Offset        int
	Limit         int // <= 0: todos
}

type Repository interface {
	Create(ctx context.Context, b Bull) (int64, error)
	GetByID(ctx context.Context, id int64) (Bull, error)
	GetByCode(ctx context.Context, code string) (Bull, error)
	List(ctx context.Context, filter ListFilter) ([]Bull, int, error)
}
