package matings

import "time"

// GestationDays es la duración usada para la fecha prevista de parto.
const GestationDays = 283

// Type define el origen del apareamiento.
// @Enum manual, batch
type Type string

const (
	TypeManual Type = "manual"
	TypeBatch  Type = "batch"
)

// Status es el ciclo de vida de un apareamiento.
// @Enum planned, confirmed, born, failed
type Status string

const (
	StatusPlanned   Status = "planned"
	StatusConfirmed Status = "confirmed"
	StatusBorn      Status = "born"
	StatusFailed    Status = "failed"
)

// transitions: born y failed son terminales.
var transitions = map[Status][]Status{
	StatusPlanned:   {StatusConfirmed, StatusFailed},
	StatusConfirmed: {StatusBorn, StatusFailed},
}

func (s Status) Valid() bool {
	switch s {
	case StatusPlanned, StatusConfirmed, StatusBorn, StatusFailed:
		return true
	}
	return false
}

// CanTransition indica si from -> to es válido. Mismo estado = no-op válido.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Mating es un apareamiento planificado o registrado.
type Mating struct {
	ID       int64
	FemaleID int64
	BullID   int64
	BatchID  string // solo apareamientos de lote
	Type     Type

	MatingDate          time.Time
	ExpectedCalvingDate time.Time
	ActualCalvingDate   *time.Time

	// Predicciones al momento de planificar
	PredictedPPPV       map[string]float64
	PredictedInbreeding float64
	CompatibilityScore  float64

	Status  Status
	Success *bool

	// Resultado real (se completa al nacer)
	CalfID            string
	CalfSex           string // M, F
	ActualGeneticData map[string]float64

	Notes     string
	CreatedBy string

	CreatedAt time.Time
	UpdatedAt time.Time

	// Saved=false para resultados efímeros que no se persistieron.
	Saved bool
}
