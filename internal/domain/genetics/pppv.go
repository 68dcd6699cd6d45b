package genetics

import "math"

const (
	bullReliability   = 75.0
	femaleReliability = 60.0
)

// PPPVIndices son los índices sobre los que se calcula el valor predicho del ternero.
var PPPVIndices = []string{
	IndexMilk, IndexProtein, IndexFat, "fat_percent", "protein_percent",
	IndexProductiveLife, IndexSCS, IndexDPR, IndexFertility,
	IndexUDC, IndexFLC, IndexPTAT, IndexNetMerit, IndexTPI,
}

// summaryIndices es el resumen corto que acompaña a cada candidato del batch.
var summaryIndices = []string{
	IndexMilk, IndexProtein, IndexFat, IndexProductiveLife, IndexFertility, IndexUDC,
}

type PPPVEntry struct {
	Female         float64 `json:"female"`
	Bull           float64 `json:"bull"`
	PPPV           float64 `json:"pppv"`
	Reliability    float64 `json:"reliability"`
	Interpretation string  `json:"interpretation"`
}

// PPPV = (PTA toro + PTA vaca) / 2 para cada índice presente en ambos.
func PPPV(female, bull Indices) map[string]PPPVEntry {
	out := map[string]PPPVEntry{}
	for _, index := range PPPVIndices {
		fv, fok := female.Get(index)
		bv, bok := bull.Get(index)
		if !fok || !bok {
			continue
		}
		p := (fv + bv) / 2
		out[index] = PPPVEntry{
			Female:         Round(fv, 2),
			Bull:           Round(bv, 2),
			PPPV:           Round(p, 2),
			Reliability:    Round((femaleReliability+bullReliability)/2, 1),
			Interpretation: interpret(index, p),
		}
	}
	return out
}

// Summarize reduce el PPPV a {índice: valor} para la vista de ranking.
func Summarize(p map[string]PPPVEntry) map[string]float64 {
	out := map[string]float64{}
	for _, index := range summaryIndices {
		if e, ok := p[index]; ok {
			out[index] = e.PPPV
		}
	}
	return out
}

// PredictedValues aplana el PPPV para persistir en la Mating.
func PredictedValues(p map[string]PPPVEntry) map[string]float64 {
	out := make(map[string]float64, len(p))
	for k, e := range p {
		out[k] = e.PPPV
	}
	return out
}

type band struct {
	upper float64
	label string
}

var interpretations = map[string][]band{
	IndexMilk: {
		{-1000, "very low"}, {0, "low"}, {500, "average"},
		{1000, "high"}, {1500, "very high"}, {math.Inf(1), "exceptional"},
	},
	IndexProductiveLife: {
		{-2, "very low"}, {0, "low"}, {2, "average"},
		{4, "high"}, {6, "very high"}, {math.Inf(1), "exceptional"},
	},
	IndexSCS: {
		{2.5, "very good"}, {2.8, "good"}, {3.0, "average"},
		{3.2, "poor"}, {math.Inf(1), "very poor"},
	},
	IndexFertility: {
		{-2, "very low"}, {0, "low"}, {1, "average"},
		{2, "high"}, {3, "very high"}, {math.Inf(1), "exceptional"},
	},
}

func interpret(index string, v float64) string {
	for _, b := range interpretations[index] {
		if v < b.upper {
			return b.label
		}
	}
	return "n/a"
}

type Prediction struct {
	Value       float64 `json:"value"`
	Unit        string  `json:"unit"`
	Description string  `json:"description"`
}

// PredictOffspring estima performance de vida productiva del ternero a partir del PPPV.
func PredictOffspring(p map[string]PPPVEntry) map[string]Prediction {
	out := map[string]Prediction{}
	if e, ok := p[IndexMilk]; ok {
		out["first_lactation_milk"] = Prediction{
			Value:       Round(25000+e.PPPV, 0),
			Unit:        "lbs",
			Description: "estimated first lactation yield (305d)",
		}
	}
	if e, ok := p[IndexProductiveLife]; ok {
		out["productive_life_estimate"] = Prediction{
			Value:       Round(3.0+e.PPPV, 1),
			Unit:        "lactations",
			Description: "expected number of lactations",
		}
	}
	if e, ok := p[IndexNetMerit]; ok {
		out["lifetime_value"] = Prediction{
			Value:       Round(e.PPPV, 0),
			Unit:        "USD",
			Description: "estimated lifetime economic value",
		}
	}
	return out
}
