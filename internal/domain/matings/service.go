package matings

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"herd-mating/internal/domain/bulls"
	"herd-mating/internal/domain/females"
	"herd-mating/internal/domain/genetics"
	"herd-mating/internal/platform/apperr"

	"github.com/google/uuid"
)

// Options son los límites y defaults del motor de recomendación.
type Options struct {
	DefaultMaxInbreeding float64
	DefaultTopN          int
	MaxBatchFemales      int
	BatchTimeout         time.Duration
	Workers              int
}

func DefaultOptions() Options {
	return Options{
		DefaultMaxInbreeding: 6.0,
		DefaultTopN:          5,
		MaxBatchFemales:      100,
		BatchTimeout:         30 * time.Second,
		Workers:              4,
	}
}

const defaultUser = "system"

type Service struct {
	repo    Repository
	females FemaleCatalog
	bulls   BullCatalog
	opts    Options
	rec     Recorder

	now        func() time.Time
	newBatchID func() string
}

func NewService(repo Repository, fc FemaleCatalog, bc BullCatalog, opts Options, rec Recorder) *Service {
	if rec == nil {
		rec = nopRecorder{}
	}
	return &Service{
		repo:       repo,
		females:    fc,
		bulls:      bc,
		opts:       opts,
		rec:        rec,
		now:        time.Now,
		newBatchID: uuid.NewString,
	}
}

// -------------------------
// Batch
// -------------------------

type BatchInput struct {
	FemaleIDs     []int64
	MaxInbreeding *float64 // nil = default
	TopN          *int     // nil = default
	Filters       bulls.Filters
	Priorities    map[string]float64 // vacío = pesos por defecto
	Save          bool
	BatchName     string
	User          string
}

type BatchSummary struct {
	TotalFemales       int
	TotalBullsAnalyzed int
	TopN               int
	PrioritiesUsed     map[string]float64
	MaxInbreeding      float64
	BatchID            string
	BatchName          string
	Saved              bool
}

type BatchResult struct {
	Summary BatchSummary
	Results []FemaleResult
}

// Batch rankea los toros disponibles para cada hembra.
// Con Save=false es de solo lectura y determinístico.
// Con Save=true persiste todos los candidatos devueltos en una sola transacción.
func (s *Service) Batch(ctx context.Context, in BatchInput) (BatchResult, error) {
	start := time.Now()
	res, err := s.batch(ctx, in)

	counts := make([]int, 0, len(res.Results))
	for _, r := range res.Results {
		counts = append(counts, len(r.Candidates))
	}
	s.rec.ObserveBatch(outcome(err), time.Since(start), counts)

	if err != nil {
		return BatchResult{}, err
	}
	return res, nil
}

func (s *Service) batch(ctx context.Context, in BatchInput) (BatchResult, error) {
	ids, params, err := s.validateBatch(in)
	if err != nil {
		return BatchResult{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.BatchTimeout)
	defer cancel()

	fs := make([]females.Female, 0, len(ids))
	for _, id := range ids {
		f, err := s.females.GetByID(ctx, id)
		if err != nil {
			return BatchResult{}, s.deadline(err)
		}
		fs = append(fs, f)
	}

	pool, err := s.bulls.Pool(ctx, in.Filters)
	if err != nil {
		return BatchResult{}, s.deadline(err)
	}

	results, err := rankAll(ctx, fs, pool, params, s.opts.Workers)
	if err != nil {
		return BatchResult{}, s.deadline(err)
	}

	out := BatchResult{
		Summary: BatchSummary{
			TotalFemales:       len(fs),
			TotalBullsAnalyzed: len(pool),
			TopN:               params.topN,
			PrioritiesUsed:     params.weights,
			MaxInbreeding:      params.maxInbreeding,
		},
		Results: results,
	}

	if !in.Save {
		return out, nil
	}

	now := s.now()
	batchID := s.newBatchID()
	user := userOrDefault(in.User)
	name := strings.TrimSpace(in.BatchName)
	if name == "" {
		name = "Lote " + now.Format("2006-01-02 15:04")
	}

	var ms []Mating
	var refs []*Candidate
	for i := range out.Results {
		fr := &out.Results[i]
		for j := range fr.Candidates {
			c := &fr.Candidates[j]
			m := plannedMating(fr.Female.ID, c.Bull.ID, c.Analysis, TypeBatch, now, user)
			m.BatchID = batchID
			m.Notes = name
			ms = append(ms, m)
			refs = append(refs, c)
		}
	}

	if len(ms) > 0 {
		created, err := s.repo.CreateBatch(ctx, ms)
		if err != nil {
			return BatchResult{}, s.deadline(err)
		}
		for k, id := range created {
			refs[k].MatingID = &id
		}
	}
	s.rec.MatingsSaved(string(TypeBatch), len(ms))

	out.Summary.BatchID = batchID
	out.Summary.BatchName = name
	out.Summary.Saved = true
	return out, nil
}

// validateBatch aplica defaults y devuelve los ids sin duplicados (gana la primera aparición).
func (s *Service) validateBatch(in BatchInput) ([]int64, rankParams, error) {
	if len(in.FemaleIDs) == 0 {
		return nil, rankParams{}, apperr.Validation("female_ids is required")
	}

	p := rankParams{
		maxInbreeding: s.opts.DefaultMaxInbreeding,
		topN:          s.opts.DefaultTopN,
		weights:       genetics.DefaultWeights(),
	}
	if in.MaxInbreeding != nil {
		v := *in.MaxInbreeding
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return nil, rankParams{}, apperr.Validation("max_inbreeding must be a finite number >= 0")
		}
		p.maxInbreeding = v
	}
	if in.TopN != nil {
		if *in.TopN <= 0 {
			return nil, rankParams{}, apperr.Validation("top_n must be > 0")
		}
		p.topN = *in.TopN
	}
	if len(in.Priorities) > 0 {
		w, err := genetics.CanonicalWeights(in.Priorities)
		if err != nil {
			return nil, rankParams{}, apperr.Validation("%v", err)
		}
		p.weights = w
	}

	seen := make(map[int64]bool, len(in.FemaleIDs))
	ids := make([]int64, 0, len(in.FemaleIDs))
	for _, id := range in.FemaleIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	// el límite cuenta hembras distintas
	if len(ids) > s.opts.MaxBatchFemales {
		return nil, rankParams{}, apperr.Validation("at most %d females per batch", s.opts.MaxBatchFemales)
	}
	return ids, p, nil
}

// -------------------------
// Manual
// -------------------------

type ManualInput struct {
	FemaleID   int64
	BullID     int64
	Save       *bool // nil = true
	MatingDate *time.Time
	Notes      string
	User       string
}

type ManualResult struct {
	Female   females.Female
	Bull     bulls.Bull
	Analysis Analysis
	Mating   Mating
}

// Manual analiza un par hembra/toro sin ranking ni límite de consanguinidad.
func (s *Service) Manual(ctx context.Context, in ManualInput) (ManualResult, error) {
	if in.FemaleID <= 0 || in.BullID <= 0 {
		return ManualResult{}, apperr.Validation("female_id and bull_id are required")
	}

	f, err := s.females.GetByID(ctx, in.FemaleID)
	if err != nil {
		return ManualResult{}, err
	}
	b, err := s.bulls.GetByID(ctx, in.BullID)
	if err != nil {
		return ManualResult{}, err
	}

	a := Analyze(f, b, nil)

	now := s.now()
	date := now
	if in.MatingDate != nil {
		date = *in.MatingDate
	}
	m := plannedMating(f.ID, b.ID, a, TypeManual, now, userOrDefault(in.User))
	m.MatingDate = date
	m.ExpectedCalvingDate = date.AddDate(0, 0, GestationDays)
	m.Notes = strings.TrimSpace(in.Notes)

	save := in.Save == nil || *in.Save
	if save {
		id, err := s.repo.Create(ctx, m)
		if err != nil {
			return ManualResult{}, err
		}
		m.ID = id
		m.Saved = true
		s.rec.MatingsSaved(string(TypeManual), 1)
	}

	return ManualResult{Female: f, Bull: b, Analysis: a, Mating: m}, nil
}

// -------------------------
// Consultas y actualización
// -------------------------

type ListInput struct {
	Status   string
	FemaleID int64
	BullID   int64
	Page     int
	PerPage  int
}

func (s *Service) List(ctx context.Context, in ListInput) ([]Mating, int, error) {
	st := Status(strings.TrimSpace(in.Status))
	if st != "" && !st.Valid() {
		return nil, 0, apperr.Validation("invalid status %q", in.Status)
	}
	page := max(in.Page, 1)
	return s.repo.List(ctx, ListFilter{
		Status:   st,
		FemaleID: in.FemaleID,
		BullID:   in.BullID,
		Offset:   (page - 1) * in.PerPage,
		Limit:    in.PerPage,
	})
}

// All devuelve todos los apareamientos guardados (dashboard/analytics).
func (s *Service) All(ctx context.Context) ([]Mating, error) {
	items, _, err := s.repo.List(ctx, ListFilter{})
	return items, err
}

func (s *Service) GetByID(ctx context.Context, id int64) (Mating, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return Mating{}, apperr.NotFound("mating %d not found", id)
		}
		return Mating{}, err
	}
	return m, nil
}

// UpdateInput: nil = no tocar.
type UpdateInput struct {
	Status            *Status
	Success           *bool
	ActualCalvingDate *time.Time
	ActualGeneticData map[string]float64
	CalfID            *string
	CalfSex           *string
	Notes             *string
}

func (in UpdateInput) empty() bool {
	return in.Status == nil && in.Success == nil && in.ActualCalvingDate == nil &&
		in.ActualGeneticData == nil && in.CalfID == nil && in.CalfSex == nil && in.Notes == nil
}

// Update registra el resultado real de un apareamiento.
// Solo permite avanzar el estado: planned -> confirmed|failed, confirmed -> born|failed.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (Mating, error) {
	if in.empty() {
		return Mating{}, apperr.Validation("no fields to update")
	}

	m, err := s.GetByID(ctx, id)
	if err != nil {
		return Mating{}, err
	}

	if in.Status != nil {
		to := *in.Status
		if !to.Valid() {
			return Mating{}, apperr.Validation("invalid status %q", to)
		}
		if !CanTransition(m.Status, to) {
			return Mating{}, apperr.Validation("status cannot change from %s to %s", m.Status, to)
		}
		m.Status = to
	}
	if in.Success != nil {
		v := *in.Success
		m.Success = &v
	}
	if in.ActualCalvingDate != nil {
		t := *in.ActualCalvingDate
		m.ActualCalvingDate = &t
	}
	if in.ActualGeneticData != nil {
		for k, v := range in.ActualGeneticData {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return Mating{}, apperr.Validation("actual_genetic_data %q must be a finite number", k)
			}
		}
		m.ActualGeneticData = genetics.Indices(in.ActualGeneticData).Clone()
	}
	if in.CalfID != nil {
		m.CalfID = strings.TrimSpace(*in.CalfID)
	}
	if in.CalfSex != nil {
		sex := strings.ToUpper(strings.TrimSpace(*in.CalfSex))
		if sex != "" && sex != "M" && sex != "F" {
			return Mating{}, apperr.Validation("calf_sex must be M or F")
		}
		m.CalfSex = sex
	}
	if in.Notes != nil {
		m.Notes = strings.TrimSpace(*in.Notes)
	}

	m.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, m); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return Mating{}, apperr.NotFound("mating %d not found", id)
		}
		return Mating{}, err
	}
	return m, nil
}

// -------------------------
// helpers
// -------------------------

func plannedMating(femaleID, bullID int64, a Analysis, t Type, now time.Time, user string) Mating {
	return Mating{
		FemaleID:            femaleID,
		BullID:              bullID,
		Type:                t,
		MatingDate:          now,
		ExpectedCalvingDate: now.AddDate(0, 0, GestationDays),
		PredictedPPPV:       genetics.PredictedValues(a.PPPV),
		PredictedInbreeding: a.Compatibility.Inbreeding.Expected,
		CompatibilityScore:  a.Compatibility.Score,
		Status:              StatusPlanned,
		CreatedBy:           user,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

func userOrDefault(u string) string {
	if u = strings.TrimSpace(u); u != "" {
		return u
	}
	return defaultUser
}

// deadline traduce el vencimiento del contexto del lote a un error Timeout.
func (s *Service) deadline(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.Timeout("batch did not finish within %s", s.opts.BatchTimeout)
	}
	return err
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, apperr.ErrValidation):
		return "invalid"
	case errors.Is(err, apperr.ErrNotFound):
		return "not_found"
	case errors.Is(err, apperr.ErrTimeout):
		return "timeout"
	default:
		return "error"
	}
}
