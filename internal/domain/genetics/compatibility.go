package genetics

import (
	"fmt"
	"math"
	"strings"
)

const (
	// PenaltyThreshold: por encima de este % cada punto de consanguinidad resta PenaltyPerPoint.
	PenaltyThreshold = 6.0
	PenaltyPerPoint  = 5.0

	// ComplementarityBonus se suma por índice donde la hembra es débil y el toro fuerte.
	ComplementarityBonus = 2.0

	neutralScore = 50.0
)

// DefaultWeights son las prioridades usadas cuando el request no trae priorities.
// Un peso negativo documenta "menor es mejor"; la dirección la resuelve Normalize.
func DefaultWeights() map[string]float64 {
	return map[string]float64{
		IndexMilk:           1.0,
		IndexProtein:        1.2,
		IndexFat:            1.0,
		IndexProductiveLife: 1.5,
		IndexFertility:      1.3,
		IndexSCS:            -1.2,
		IndexUDC:            1.1,
		IndexFLC:            0.8,
		IndexPTAT:           0.9,
	}
}

var complementarityIndices = []string{IndexMilk, IndexProductiveLife, IndexUDC, IndexFertility}

type Contribution struct {
	Value        float64 `json:"value"`
	Normalized   float64 `json:"normalized"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
}

type Compatibility struct {
	Score         float64                 `json:"score"`
	BaseScore     float64                 `json:"base_score"`
	Adjustments   map[string]float64      `json:"adjustments"`
	Contributions map[string]Contribution `json:"contributions"`
	Inbreeding    Inbreeding              `json:"inbreeding"`
	Grade         string                  `json:"grade"`
}

// CanonicalWeights devuelve una copia con los nombres de índice en minúsculas.
// Rechaza pesos NaN/Inf, nombres vacíos y nombres que colisionan al pasar a
// minúsculas ("milk" y "Milk").
func CanonicalWeights(w map[string]float64) (map[string]float64, error) {
	out := make(map[string]float64, len(w))
	from := make(map[string]string, len(w))
	for _, k := range sortedKeys(w) {
		v := w[k]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("priority %q must be a finite number", k)
		}
		name := strings.ToLower(strings.TrimSpace(k))
		if name == "" {
			return nil, fmt.Errorf("priority names must not be empty")
		}
		if prev, dup := from[name]; dup {
			return nil, fmt.Errorf("priorities %q and %q name the same index", prev, k)
		}
		from[name] = k
		out[name] = v
	}
	return out, nil
}

// Score calcula el score de compatibilidad 0..100 de un apareamiento.
//
// base = Σ(norm(bull[i]) * |w_i|) / Σ|w_i| * 100 sobre los índices que el toro tiene.
// Luego: penalidad por consanguinidad > PenaltyThreshold y bonus por complementariedad.
// El resultado se redondea a 0.1; los empates se resuelven en el ranking.
func Score(female, bull Indices, weights map[string]float64) Compatibility {
	if len(weights) == 0 {
		weights = DefaultWeights()
	}

	contributions := map[string]Contribution{}
	var total, maxPossible float64

	// Orden fijo de keys: la suma en float no depende del orden de iteración del map.
	seen := make(map[string]bool, len(weights))
	for _, key := range sortedKeys(weights) {
		index := strings.ToLower(key)
		if seen[index] {
			continue
		}
		seen[index] = true
		w := weights[key]
		v, ok := bull.Get(index)
		if !ok || w == 0 {
			continue
		}
		n := Normalize(index, v)
		c := n * math.Abs(w) * 100
		total += c
		maxPossible += math.Abs(w) * 100

		contributions[index] = Contribution{
			Value:        v,
			Normalized:   Round(n, 3),
			Weight:       w,
			Contribution: Round(c, 2),
		}
	}

	base := neutralScore
	if maxPossible > 0 {
		base = total / maxPossible * 100
	}

	adjustments := map[string]float64{}
	final := base

	inb := ExpectedInbreeding(female, bull)
	if inb.Expected > PenaltyThreshold {
		p := (inb.Expected - PenaltyThreshold) * PenaltyPerPoint
		adjustments["inbreeding_penalty"] = -Round(p, 1)
		final -= p
	}

	if bonus := complementarity(female, bull); bonus > 0 {
		adjustments["complementarity_bonus"] = Round(bonus, 1)
		final += bonus
	}

	final = clamp(final, 0, 100)

	return Compatibility{
		Score:         Round(final, 1),
		BaseScore:     Round(base, 1),
		Adjustments:   adjustments,
		Contributions: contributions,
		Inbreeding:    inb,
		Grade:         Grade(final),
	}
}

func complementarity(female, bull Indices) float64 {
	var bonus float64
	for _, index := range complementarityIndices {
		fv, fok := female.Get(index)
		bv, bok := bull.Get(index)
		if !fok || !bok {
			continue
		}
		if Normalize(index, fv) < 0.4 && Normalize(index, bv) > 0.6 {
			bonus += ComplementarityBonus
		}
	}
	return bonus
}

func Grade(score float64) string {
	switch {
	case score >= 85:
		return "A+"
	case score >= 75:
		return "A"
	case score >= 65:
		return "B"
	case score >= 50:
		return "C"
	case score >= 35:
		return "D"
	default:
		return "F"
	}
}
