package matings

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"herd-mating/internal/domain/bulls"
	"herd-mating/internal/domain/females"
	"herd-mating/internal/domain/genetics"

	"golang.org/x/sync/errgroup"
)

// ctxCheckEvery: cada cuántos toros se revisa el deadline dentro de una hembra.
const ctxCheckEvery = 128

// Analysis es el resultado completo de cruzar una hembra con un toro.
type Analysis struct {
	Compatibility  genetics.Compatibility
	PPPV           map[string]genetics.PPPVEntry
	Predictions    map[string]genetics.Prediction
	Recommendation genetics.Recommendation
}

func Analyze(f females.Female, b bulls.Bull, weights map[string]float64) Analysis {
	c := genetics.Score(f.Indices, b.Indices, weights)
	p := genetics.PPPV(f.Indices, b.Indices)
	return Analysis{
		Compatibility:  c,
		PPPV:           p,
		Predictions:    genetics.PredictOffspring(p),
		Recommendation: genetics.Recommend(c),
	}
}

// Candidate es un toro rankeado para una hembra.
type Candidate struct {
	Rank     int
	Bull     bulls.Bull
	Analysis Analysis
	MatingID *int64
}

func (c Candidate) Score() float64      { return c.Analysis.Compatibility.Score }
func (c Candidate) Inbreeding() float64 { return c.Analysis.Compatibility.Inbreeding.Expected }

type FemaleResult struct {
	Female     females.Female
	Candidates []Candidate
}

// rankParams son los parámetros ya validados de un lote.
type rankParams struct {
	weights       map[string]float64
	maxInbreeding float64
	topN          int
}

// compareCandidates: score desc, consanguinidad asc, código asc.
func compareCandidates(a, b Candidate) int {
	if c := cmp.Compare(b.Score(), a.Score()); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Inbreeding(), b.Inbreeding()); c != 0 {
		return c
	}
	return strings.Compare(a.Bull.Code, b.Bull.Code)
}

// rankFemale evalúa todo el pool para una hembra y devuelve los top N
// con consanguinidad estrictamente menor al límite.
func rankFemale(ctx context.Context, f females.Female, pool []bulls.Bull, p rankParams) ([]Candidate, error) {
	out := make([]Candidate, 0, len(pool))
	for i, b := range pool {
		if i%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		a := Analyze(f, b, p.weights)
		if a.Compatibility.Inbreeding.Expected >= p.maxInbreeding {
			continue
		}
		out = append(out, Candidate{Bull: b, Analysis: a})
	}

	slices.SortFunc(out, compareCandidates)
	if len(out) > p.topN {
		out = out[:p.topN]
	}
	for i := range out {
		out[i].Rank = i + 1
	}
	return out, nil
}

// rankAll procesa las hembras en paralelo con un máximo de workers goroutines.
// El orden del resultado sigue al de fs.
func rankAll(ctx context.Context, fs []females.Female, pool []bulls.Bull, p rankParams, workers int) ([]FemaleResult, error) {
	results := make([]FemaleResult, len(fs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for i, f := range fs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			cands, err := rankFemale(gctx, f, pool, p)
			if err != nil {
				return err
			}
			results[i] = FemaleResult{Female: f, Candidates: cands}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
