package females

import (
	"time"

	"herd-mating/internal/domain/genetics"
)

// Female es una hembra del rebaño con sus PTAs genómicas.
type Female struct {
	ID         int64
	RegID      string // registro oficial, único
	InternalID string // número de la fazenda
	Name       string
	Breed      string
	BirthDate  *time.Time

	Indices genetics.Indices

	Active bool
	Notes  string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DisplayName cae en reg_id cuando la hembra no tiene nombre.
func (f Female) DisplayName() string {
	if f.Name != "" {
		return f.Name
	}
	return f.RegID
}
