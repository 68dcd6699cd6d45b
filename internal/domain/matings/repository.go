package matings

import (
	"context"
	"time"

	"herd-mating/internal/domain/bulls"
	"herd-mating/internal/domain/females"
)

type ListFilter struct {
	Status   Status
	FemaleID int64
	BullID   int64
	Offset   int
	Limit    int // <= 0: todos
}

// Repository persiste apareamientos. El storage asigna IDs monotónicos.
// List ordena por created_at desc, id desc.
type Repository interface {
	Create(ctx context.Context, m Mating) (int64, error)
	// CreateBatch guarda todo o nada; los ids vuelven en el orden de entrada.
	CreateBatch(ctx context.Context, ms []Mating) ([]int64, error)
	GetByID(ctx context.Context, id int64) (Mating, error)
	List(ctx context.Context, filter ListFilter) ([]Mating, int, error)
	Update(ctx context.Context, m Mating) error
}

// FemaleCatalog y BullCatalog son lo que el motor necesita de los catálogos.
// Los implementan females.Service y bulls.Service.
type FemaleCatalog interface {
	GetByID(ctx context.Context, id int64) (females.Female, error)
}

type BullCatalog interface {
	GetByID(ctx context.Context, id int64) (bulls.Bull, error)
	Pool(ctx context.Context, f bulls.Filters) ([]bulls.Bull, error)
}

// Recorder recibe métricas del motor. nil = no-op.
type Recorder interface {
	ObserveBatch(outcome string, d time.Duration, candidatesPerFemale []int)
	MatingsSaved(matingType string, n int)
}

type nopRecorder struct{}

func (nopRecorder) ObserveBatch(string, time.Duration, []int) {}
func (nopRecorder) MatingsSaved(string, int)                  {}
