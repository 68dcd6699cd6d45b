// Package dashboard calcula estadísticas agregadas del rebaño, el catálogo de
// toros y los apareamientos. Todo se computa en el request sobre los catálogos.
package dashboard

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"herd-mating/internal/domain/bulls"
	"herd-mating/internal/domain/females"
	"herd-mating/internal/domain/genetics"
	"herd-mating/internal/domain/matings"
	"herd-mating/internal/platform/apperr"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

const (
	recentWindow   = 30 * 24 * time.Hour
	topBullsLimit  = 5
	rankingLimit   = 20
	DefaultBins    = 10
	MaxBins        = 100
	EntityFemale   = "female"
	EntityBull     = "bull"
	histogramLabel = "%.1f - %.1f"
)

type FemaleSource interface {
	All(ctx context.Context, activeOnly bool) ([]females.Female, error)
}

type BullSource interface {
	All(ctx context.Context, availableOnly bool) ([]bulls.Bull, error)
}

type MatingSource interface {
	All(ctx context.Context) ([]matings.Mating, error)
}

type Service struct {
	females FemaleSource
	bulls   BullSource
	matings MatingSource
	now     func() time.Time
}

func NewService(fs FemaleSource, bs BullSource, ms MatingSource) *Service {
	return &Service{
		females: fs,
		bulls:   bs,
		matings: ms,
		now:     time.Now,
	}
}

// snapshot es la foto de los tres catálogos que usan los reportes.
type snapshot struct {
	females []females.Female
	bulls   []bulls.Bull
	matings []matings.Mating
}

func (s *Service) load(ctx context.Context) (snapshot, error) {
	var snap snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		snap.females, err = s.females.All(gctx, false)
		return err
	})
	g.Go(func() (err error) {
		snap.bulls, err = s.bulls.All(gctx, false)
		return err
	})
	g.Go(func() (err error) {
		snap.matings, err = s.matings.All(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return snapshot{}, err
	}
	return snap, nil
}

type Summary struct {
	TotalFemales   int     `json:"total_females"`
	ActiveFemales  int     `json:"active_females"`
	TotalBulls     int     `json:"total_bulls"`
	AvailableBulls int     `json:"available_bulls"`
	TotalMatings   int     `json:"total_matings"`
	RecentMatings  int     `json:"recent_matings"`
	SuccessRate    float64 `json:"success_rate"`
}

type HerdAverages struct {
	Milk              float64 `json:"milk"`
	ProductiveLife    float64 `json:"productive_life"`
	GenomicInbreeding float64 `json:"genomic_inbreeding"`
}

type BullUsage struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type Dashboard struct {
	Summary      Summary      `json:"summary"`
	HerdAverages HerdAverages `json:"herd_averages"`
	TopBulls     []BullUsage  `json:"top_bulls"`
	LastUpdated  time.Time    `json:"last_updated"`
}

func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	now := s.now().UTC()

	var d Dashboard
	d.Summary.TotalFemales = len(snap.females)
	d.Summary.TotalBulls = len(snap.bulls)
	d.Summary.TotalMatings = len(snap.matings)

	var active []females.Female
	for _, f := range snap.females {
		if f.Active {
			active = append(active, f)
		}
	}
	d.Summary.ActiveFemales = len(active)
	for _, b := range snap.bulls {
		if b.Available {
			d.Summary.AvailableBulls++
		}
	}

	since := now.Add(-recentWindow)
	for _, m := range snap.matings {
		if !m.CreatedAt.Before(since) {
			d.Summary.RecentMatings++
		}
	}
	d.Summary.SuccessRate = successRate(snap.matings)

	d.HerdAverages = HerdAverages{
		Milk:              genetics.Round(mean(femaleValues(active, genetics.IndexMilk)), 0),
		ProductiveLife:    genetics.Round(mean(femaleValues(active, genetics.IndexProductiveLife)), 2),
		GenomicInbreeding: genetics.Round(mean(femaleValues(active, genetics.IndexGenomicInbreeding)), 2),
	}

	perf := bullStats(snap)
	d.TopBulls = make([]BullUsage, 0, topBullsLimit)
	for _, p := range perf[:min(len(perf), topBullsLimit)] {
		d.TopBulls = append(d.TopBulls, BullUsage{Code: p.Code, Name: p.Name, Count: p.MatingsCount})
	}
	d.LastUpdated = now
	return d, nil
}

type Bands struct {
	Average      float64        `json:"average"`
	Distribution map[string]int `json:"distribution"`
}

type MatingAnalysis struct {
	TotalMatings  int            `json:"total_matings"`
	ByStatus      map[string]int `json:"by_status"`
	SuccessRate   float64        `json:"success_rate"`
	Compatibility Bands          `json:"compatibility"`
	Inbreeding    Bands          `json:"inbreeding"`
}

func (s *Service) MatingAnalysis(ctx context.Context) (MatingAnalysis, error) {
	ms, err := s.matings.All(ctx)
	if err != nil {
		return MatingAnalysis{}, err
	}

	out := MatingAnalysis{
		TotalMatings: len(ms),
		ByStatus:     map[string]int{},
		SuccessRate:  successRate(ms),
		Compatibility: Bands{Distribution: map[string]int{
			"excellent": 0, "good": 0, "average": 0, "poor": 0,
		}},
		Inbreeding: Bands{Distribution: map[string]int{
			"low": 0, "moderate": 0, "high": 0, "very_high": 0,
		}},
	}

	scores := make([]float64, 0, len(ms))
	inb := make([]float64, 0, len(ms))
	for _, m := range ms {
		out.ByStatus[string(m.Status)]++
		scores = append(scores, m.CompatibilityScore)
		inb = append(inb, m.PredictedInbreeding)
		out.Compatibility.Distribution[scoreBand(m.CompatibilityScore)]++
		out.Inbreeding.Distribution[inbreedingBand(m.PredictedInbreeding)]++
	}
	out.Compatibility.Average = genetics.Round(mean(scores), 1)
	out.Inbreeding.Average = genetics.Round(mean(inb), 2)
	return out, nil
}

func scoreBand(s float64) string {
	switch {
	case s >= 80:
		return "excellent"
	case s >= 60:
		return "good"
	case s >= 40:
		return "average"
	default:
		return "poor"
	}
}

func inbreedingBand(v float64) string {
	switch {
	case v < 4.5:
		return "low"
	case v < 6.0:
		return "moderate"
	case v < 8.0:
		return "high"
	default:
		return "very_high"
	}
}

type Statistics struct {
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Median float64 `json:"median"`
	Q1     float64 `json:"q1"`
	Q3     float64 `json:"q3"`
}

type Bin struct {
	Bin        string  `json:"bin"`
	From       float64 `json:"from"`
	To         float64 `json:"to"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type Distribution struct {
	Index      string     `json:"index"`
	Entity     string     `json:"entity"`
	Statistics Statistics `json:"statistics"`
	Histogram  []Bin      `json:"histogram"`
}

type DistributionInput struct {
	Index  string
	Entity string
	Bins   int
}

func (s *Service) Distribution(ctx context.Context, in DistributionInput) (Distribution, error) {
	index := strings.TrimSpace(in.Index)
	if index == "" {
		return Distribution{}, apperr.Validation("index is required")
	}
	entity := strings.ToLower(strings.TrimSpace(in.Entity))
	if entity == "" {
		entity = EntityFemale
	}
	bins := in.Bins
	if bins == 0 {
		bins = DefaultBins
	}
	if bins < 1 || bins > MaxBins {
		return Distribution{}, apperr.Validation("bins must be between 1 and %d", MaxBins)
	}

	var values []float64
	switch entity {
	case EntityFemale:
		fs, err := s.females.All(ctx, false)
		if err != nil {
			return Distribution{}, err
		}
		values = femaleValues(fs, index)
	case EntityBull:
		bs, err := s.bulls.All(ctx, false)
		if err != nil {
			return Distribution{}, err
		}
		for _, b := range bs {
			if v, ok := b.Indices.Get(index); ok {
				values = append(values, v)
			}
		}
	default:
		return Distribution{}, apperr.Validation("entity must be female or bull")
	}

	if len(values) == 0 {
		return Distribution{}, apperr.NotFound("no %s data for index %q", entity, index)
	}

	slices.Sort(values)
	return Distribution{
		Index:      index,
		Entity:     entity,
		Statistics: describe(values),
		Histogram:  histogram(values, bins),
	}, nil
}

// describe requiere values ordenado y no vacío.
func describe(values []float64) Statistics {
	st := Statistics{
		Count:  len(values),
		Min:    genetics.Round(values[0], 2),
		Max:    genetics.Round(values[len(values)-1], 2),
		Mean:   genetics.Round(stat.Mean(values, nil), 2),
		Median: genetics.Round(stat.Quantile(0.5, stat.Empirical, values, nil), 2),
		Q1:     genetics.Round(stat.Quantile(0.25, stat.Empirical, values, nil), 2),
		Q3:     genetics.Round(stat.Quantile(0.75, stat.Empirical, values, nil), 2),
	}
	if len(values) > 1 {
		st.StdDev = genetics.Round(stat.StdDev(values, nil), 2)
	}
	return st
}

// histogram reparte values (ordenado) en bins de igual ancho; el máximo cae en el último bin.
func histogram(values []float64, bins int) []Bin {
	lo, hi := values[0], values[len(values)-1]
	width := (hi - lo) / float64(bins)
	if width == 0 {
		width = 1
	}

	dividers := make([]float64, bins+1)
	for i := range dividers {
		dividers[i] = lo + float64(i)*width
	}
	last := dividers[bins]
	if last <= hi {
		last = hi
	}
	dividers[bins] = math.Nextafter(last, math.Inf(1))

	counts := stat.Histogram(nil, dividers, values, nil)

	out := make([]Bin, bins)
	n := float64(len(values))
	for i := range out {
		from, to := lo+float64(i)*width, lo+float64(i+1)*width
		out[i] = Bin{
			Bin:        fmt.Sprintf(histogramLabel, from, to),
			From:       genetics.Round(from, 2),
			To:         genetics.Round(to, 2),
			Count:      int(counts[i]),
			Percentage: genetics.Round(counts[i]/n*100, 1),
		}
	}
	return out
}

type BullPerformance struct {
	Code             string  `json:"code"`
	Name             string  `json:"name"`
	MatingsCount     int     `json:"matings_count"`
	Successful       int     `json:"successful_matings"`
	SuccessRate      float64 `json:"success_rate"`
	AvgCompatibility float64 `json:"avg_compatibility_score"`
}

type PerformanceRanking struct {
	TotalBullsUsed int               `json:"total_bulls_used"`
	Ranking        []BullPerformance `json:"ranking"`
}

func (s *Service) BullPerformance(ctx context.Context) (PerformanceRanking, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return PerformanceRanking{}, err
	}
	perf := bullStats(snap)
	return PerformanceRanking{
		TotalBullsUsed: len(perf),
		Ranking:        perf[:min(len(perf), rankingLimit)],
	}, nil
}

// bullStats agrupa apareamientos por toro; orden: uso desc, éxito desc, código asc.
func bullStats(snap snapshot) []BullPerformance {
	byID := make(map[int64]bulls.Bull, len(snap.bulls))
	for _, b := range snap.bulls {
		byID[b.ID] = b
	}

	type acc struct {
		total, ok int
		scores    []float64
	}
	stats := map[int64]*acc{}
	for _, m := range snap.matings {
		a := stats[m.BullID]
		if a == nil {
			a = &acc{}
			stats[m.BullID] = a
		}
		a.total++
		if m.Success != nil && *m.Success {
			a.ok++
		}
		a.scores = append(a.scores, m.CompatibilityScore)
	}

	out := make([]BullPerformance, 0, len(stats))
	for id, a := range stats {
		b, ok := byID[id]
		if !ok {
			continue
		}
		out = append(out, BullPerformance{
			Code:             b.Code,
			Name:             b.Name,
			MatingsCount:     a.total,
			Successful:       a.ok,
			SuccessRate:      genetics.Round(float64(a.ok)/float64(a.total)*100, 1),
			AvgCompatibility: genetics.Round(mean(a.scores), 1),
		})
	}
	slices.SortFunc(out, func(x, y BullPerformance) int {
		if c := cmp.Compare(y.MatingsCount, x.MatingsCount); c != 0 {
			return c
		}
		if c := cmp.Compare(y.SuccessRate, x.SuccessRate); c != 0 {
			return c
		}
		return strings.Compare(x.Code, y.Code)
	})
	return out
}

type IndexAccuracy struct {
	SampleSize   int      `json:"sample_size"`
	MAE          float64  `json:"mae"`
	RMSE         float64  `json:"rmse"`
	AvgPredicted float64  `json:"avg_predicted"`
	AvgActual    float64  `json:"avg_actual"`
	Correlation  *float64 `json:"correlation,omitempty"`
}

type Accuracy struct {
	MatingsWithResults int                      `json:"matings_with_results"`
	IndicesAnalyzed    []string                 `json:"indices_analyzed"`
	Accuracy           map[string]IndexAccuracy `json:"accuracy"`
}

// PredictionAccuracy compara el PPPV predicho con los datos genéticos reales del ternero.
func (s *Service) PredictionAccuracy(ctx context.Context) (Accuracy, error) {
	ms, err := s.matings.All(ctx)
	if err != nil {
		return Accuracy{}, err
	}

	type pairs struct{ pred, act []float64 }
	byIndex := map[string]*pairs{}
	out := Accuracy{IndicesAnalyzed: []string{}, Accuracy: map[string]IndexAccuracy{}}

	for _, m := range ms {
		if len(m.ActualGeneticData) == 0 || len(m.PredictedPPPV) == 0 {
			continue
		}
		out.MatingsWithResults++
		for index, pred := range m.PredictedPPPV {
			act, ok := m.ActualGeneticData[index]
			if !ok {
				continue
			}
			p := byIndex[index]
			if p == nil {
				p = &pairs{}
				byIndex[index] = p
			}
			p.pred = append(p.pred, pred)
			p.act = append(p.act, act)
		}
	}

	for index, p := range byIndex {
		n := float64(len(p.pred))
		var absSum, sqSum float64
		for i := range p.pred {
			e := p.act[i] - p.pred[i]
			absSum += math.Abs(e)
			sqSum += e * e
		}
		ia := IndexAccuracy{
			SampleSize:   len(p.pred),
			MAE:          genetics.Round(absSum/n, 2),
			RMSE:         genetics.Round(math.Sqrt(sqSum/n), 2),
			AvgPredicted: genetics.Round(stat.Mean(p.pred, nil), 2),
			AvgActual:    genetics.Round(stat.Mean(p.act, nil), 2),
		}
		if len(p.pred) > 2 {
			if c := stat.Correlation(p.pred, p.act, nil); !math.IsNaN(c) {
				c = genetics.Round(c, 3)
				ia.Correlation = &c
			}
		}
		out.Accuracy[index] = ia
		out.IndicesAnalyzed = append(out.IndicesAnalyzed, index)
	}
	slices.Sort(out.IndicesAnalyzed)
	return out, nil
}

func femaleValues(fs []females.Female, index string) []float64 {
	out := make([]float64, 0, len(fs))
	for _, f := range fs {
		if v, ok := f.Indices.Get(index); ok {
			out = append(out, v)
		}
	}
	return out
}

func successRate(ms []matings.Mating) float64 {
	if len(ms) == 0 {
		return 0
	}
	ok := 0
	for _, m := range ms {
		if m.Success != nil && *m.Success {
			ok++
		}
	}
	return genetics.Round(float64(ok)/float64(len(ms))*100, 1)
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}
