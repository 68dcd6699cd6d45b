package bulls

import (
	"time"

	"herd-mating/internal/domain/genetics"
)

// Bull es un toro del catálogo de centrales (Select, ABS, Alta...).
type Bull struct {
	ID       int64
	Code     string // código interno, único
	Name     string
	NAABCode string
	Source   string // central

	Available      bool
	PricePerDose   *float64
	DosesAvailable int

	BetaCasein  string // A1A1, A1A2, A2A2
	KappaCasein string

	Indices genetics.Indices

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (b Bull) DisplayName() string {
	if b.Name != "" {
		return b.Name
	}
	return b.Code
}
