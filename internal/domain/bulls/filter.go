package bulls

import (
	"cmp"
	"slices"
	"strings"

	"herd-mating/internal/domain/genetics"
)

// Filters restringe el pool de toros. Campos nil / vacíos no filtran.
type Filters struct {
	MinMilk           *float64 `json:"min_milk,omitempty"`
	MinNetMerit       *float64 `json:"min_net_merit,omitempty"`
	MinProductiveLife *float64 `json:"min_productive_life,omitempty"`
	BetaCasein        string   `json:"beta_casein,omitempty"`
	MaxGFI            *float64 `json:"max_gfi,omitempty"`
	Source            string   `json:"source,omitempty"`
}

// Match indica si el toro pasa los filtros. Un mínimo exigido sobre un índice
// ausente descarta al toro; lo mismo max_gfi sin GFI conocido.
func (f Filters) Match(b Bull) bool {
	if !atLeast(b.Indices, genetics.IndexMilk, f.MinMilk) ||
		!atLeast(b.Indices, genetics.IndexNetMerit, f.MinNetMerit) ||
		!atLeast(b.Indices, genetics.IndexProductiveLife, f.MinProductiveLife) {
		return false
	}
	if f.MaxGFI != nil {
		v, ok := b.Indices.Get(genetics.IndexGFI)
		if !ok || v > *f.MaxGFI {
			return false
		}
	}
	if f.BetaCasein != "" && !strings.EqualFold(b.BetaCasein, f.BetaCasein) {
		return false
	}
	if f.Source != "" && !strings.EqualFold(b.Source, f.Source) {
		return false
	}
	return true
}

func atLeast(ix genetics.Indices, index string, floor *float64) bool {
	if floor == nil {
		return true
	}
	v, ok := ix.Get(index)
	return ok && v >= *floor
}

// Apply filtra, ordena y pagina en memoria. Lo comparten los adapters de storage:
// los índices viven en un documento JSON y no se filtran en SQL.
func Apply(items []Bull, filter ListFilter) ([]Bull, int) {
	out := make([]Bull, 0, len(items))
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	for _, b := range items {
		if filter.AvailableOnly && !b.Available {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(b.Code), search) &&
			!strings.Contains(strings.ToLower(b.Name), search) {
			continue
		}
		if !filter.Filters.Match(b) {
			continue
		}
		out = append(out, b)
	}

	if filter.SortBy != "" {
		// desc por índice; sin el índice van al final; empate por código
		slices.SortStableFunc(out, func(a, b Bull) int {
			av, aok := a.Indices.Get(filter.SortBy)
			bv, bok := b.Indices.Get(filter.SortBy)
			switch {
			case aok && !bok:
				return -1
			case !aok && bok:
				return 1
			case aok && bok && av != bv:
				return cmp.Compare(bv, av)
			}
			return strings.Compare(a.Code, b.Code)
		})
	} else {
		slices.SortStableFunc(out, func(a, b Bull) int { return cmp.Compare(a.ID, b.ID) })
	}

	total := len(out)
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []Bull{}, total
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, total
}
