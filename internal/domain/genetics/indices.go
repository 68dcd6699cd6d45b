// Package genetics contiene los cálculos puros sobre índices genéticos:
// PPPV, consanguinidad esperada, score de compatibilidad y recomendación.
// No toca storage ni HTTP; todo es determinístico dado el mismo input.
package genetics

import (
	"math"
	"sort"
	"strings"
)

// Nombres de índices conocidos. Las PTAs vienen del import del rebaño / catálogo de toros.
const (
	IndexMilk              = "milk"
	IndexProtein           = "protein"
	IndexFat               = "fat"
	IndexProductiveLife    = "productive_life"
	IndexSCS               = "scs"
	IndexDPR               = "dpr"
	IndexFertility         = "fertility_index"
	IndexUDC               = "udc"
	IndexFLC               = "flc"
	IndexPTAT              = "ptat"
	IndexNetMerit          = "net_merit"
	IndexTPI               = "tpi"
	IndexGenomicInbreeding = "genomic_inbreeding"
	IndexGFI               = "gfi"
)

// Indices mapea nombre de índice -> PTA. Índice ausente = dato desconocido.
type Indices map[string]float64

// Get devuelve el valor y si existe. Busca case-insensitive para tolerar imports con mayúsculas.
func (ix Indices) Get(name string) (float64, bool) {
	if ix == nil {
		return 0, false
	}
	if v, ok := ix[name]; ok {
		return v, true
	}
	lower := strings.ToLower(name)
	for k, v := range ix {
		if strings.ToLower(k) == lower {
			return v, true
		}
	}
	return 0, false
}

// Clone copia el mapa (los modelos no comparten mapas entre requests).
func (ix Indices) Clone() Indices {
	if ix == nil {
		return nil
	}
	out := make(Indices, len(ix))
	for k, v := range ix {
		out[k] = v
	}
	return out
}

// Pick devuelve solo los índices pedidos que existan, redondeados a 2 decimales.
func (ix Indices) Pick(names ...string) Indices {
	out := Indices{}
	for _, n := range names {
		if v, ok := ix.Get(n); ok {
			out[n] = Round(v, 2)
		}
	}
	return out
}

// MainIndices son los que la UI muestra en tarjetas de hembra/toro.
var MainIndices = []string{
	IndexMilk, IndexProtein, IndexFat, IndexNetMerit, IndexProductiveLife,
	IndexFertility, IndexUDC, IndexSCS, IndexPTAT,
}

// indexRange es el rango típico (min, max) usado para normalizar a 0..1.
// min > max indica índice invertido (menor es mejor).
type indexRange struct{ min, max float64 }

var ranges = map[string]indexRange{
	IndexMilk:           {-1000, 2000},
	IndexProtein:        {-30, 80},
	IndexFat:            {-30, 150},
	IndexProductiveLife: {-3, 8},
	IndexSCS:            {3.5, 2.5},
	IndexDPR:            {-2, 3},
	IndexFertility:      {-2, 4},
	IndexUDC:            {-2, 3},
	IndexFLC:            {-2, 2},
	IndexPTAT:           {-2, 3},
	IndexNetMerit:       {-500, 1500},
}

// Normalize lleva un valor al rango 0..1 según el rango típico del índice.
// Índices sin rango conocido usan 0..100. El nombre no distingue mayúsculas.
func Normalize(index string, value float64) float64 {
	r, ok := ranges[strings.ToLower(index)]
	if !ok {
		r = indexRange{0, 100}
	}

	var n float64
	if r.min > r.max {
		n = 1 - (value-r.max)/(r.min-r.max)
	} else {
		n = (value - r.min) / (r.max - r.min)
	}
	return clamp(n, 0, 1)
}

// Round redondea a places decimales (half away from zero).
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
