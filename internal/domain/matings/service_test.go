package matings

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"
	"testing"
	"time"

	"herd-mating/internal/domain/bulls"
	"herd-mating/internal/domain/females"
	"herd-mating/internal/domain/genetics"
	"herd-mating/internal/platform/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// -------------------------
// Test doubles
// -------------------------

type stubFemales map[int64]females.Female

func (s stubFemales) GetByID(ctx context.Context, id int64) (females.Female, error) {
	f, ok := s[id]
	if !ok {
		return females.Female{}, apperr.NotFound("female %d not found", id)
	}
	return f, nil
}

type stubBulls []bulls.Bull

func (s stubBulls) GetByID(ctx context.Context, id int64) (bulls.Bull, error) {
	for _, b := range s {
		if b.ID == id {
			return b, nil
		}
	}
	return bulls.Bull{}, apperr.NotFound("bull %d not found", id)
}

func (s stubBulls) Pool(ctx context.Context, f bulls.Filters) ([]bulls.Bull, error) {
	out := make([]bulls.Bull, 0, len(s))
	for _, b := range s {
		if b.Available && f.Match(b) {
			out = append(out, b)
		}
	}
	return out, nil
}

type testRepo struct {
	mu        sync.Mutex
	next      int64
	byID      map[int64]Mating
	failBatch error
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[int64]Mating{}}
}

func (r *testRepo) Create(ctx context.Context, m Mating) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	m.ID = r.next
	m.Saved = true
	r.byID[m.ID] = m
	return m.ID, nil
}

func (r *testRepo) CreateBatch(ctx context.Context, ms []Mating) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failBatch != nil {
		return nil, r.failBatch
	}
	ids := make([]int64, 0, len(ms))
	for _, m := range ms {
		r.next++
		m.ID = r.next
		m.Saved = true
		r.byID[m.ID] = m
		ids = append(ids, m.ID)
	}
	return ids, nil
}

func (r *testRepo) GetByID(ctx context.Context, id int64) (Mating, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.byID[id]
	if !ok {
		return Mating{}, apperr.ErrNotFound
	}
	return m, nil
}

func (r *testRepo) List(ctx context.Context, filter ListFilter) ([]Mating, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Mating, 0, len(r.byID))
	for _, m := range r.byID {
		if filter.Status != "" && m.Status != filter.Status {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, len(out), nil
}

func (r *testRepo) Update(ctx context.Context, m Mating) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[m.ID]; !ok {
		return apperr.ErrNotFound
	}
	r.byID[m.ID] = m
	return nil
}

func (r *testRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

type recorder struct {
	mu       sync.Mutex
	outcomes []string
	saved    map[string]int
}

func (r *recorder) ObserveBatch(outcome string, d time.Duration, counts []int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
}

func (r *recorder) MatingsSaved(t string, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saved == nil {
		r.saved = map[string]int{}
	}
	r.saved[t] += n
}

var testNow = time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)

func newTestService(fs stubFemales, bs stubBulls) (*Service, *testRepo, *recorder) {
	repo := newTestRepo()
	rec := &recorder{}
	svc := NewService(repo, fs, bs, DefaultOptions(), rec)
	svc.now = func() time.Time { return testNow }
	svc.newBatchID = func() string { return "batch-1" }
	return svc, repo, rec
}

func f64(v float64) *float64 { return &v }
func intp(v int) *int        { return &v }

// F1 con gINB=4: B1 (gfi 8) => 4.0%, B2 (gfi 20) => 7.0%, B3 (gfi 0) => 2.0%.
func scenarioCatalog() (stubFemales, stubBulls) {
	fs := stubFemales{
		1: {ID: 1, RegID: "F1", Indices: genetics.Indices{"milk": 500, "genomic_inbreeding": 4}},
	}
	bs := stubBulls{
		{ID: 1, Code: "B1", Available: true, Indices: genetics.Indices{"gfi": 8, "milk": 1500}},
		{ID: 2, Code: "B2", Available: true, Indices: genetics.Indices{"gfi": 20, "milk": 2000}},
		{ID: 3, Code: "B3", Available: true, Indices: genetics.Indices{"gfi": 0, "milk": 800}},
	}
	return fs, bs
}

func bullCodes(cs []Candidate) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Bull.Code)
	}
	return out
}

// -------------------------
// Batch
// -------------------------

func TestBatch_ExcludesBullsAtOrAboveInbreedingCeiling(t *testing.T) {
	fs, bs := scenarioCatalog()
	svc, _, _ := newTestService(fs, bs)

	res, err := svc.Batch(context.Background(), BatchInput{
		FemaleIDs:     []int64{1},
		MaxInbreeding: f64(6.0),
		TopN:          intp(5),
	})
	require.NoError(t, err)
	require.Len(t, res.Results, 1)

	cands := res.Results[0].Candidates
	assert.ElementsMatch(t, []string{"B1", "B3"}, bullCodes(cands))
	for _, c := range cands {
		assert.Less(t, c.Inbreeding(), 6.0)
	}
	assert.Equal(t, 3, res.Summary.TotalBullsAnalyzed)
	assert.False(t, res.Summary.Saved)

	// el límite es estricto: 4.0 no pasa con max_inbreeding=4.0
	res, err = svc.Batch(context.Background(), BatchInput{FemaleIDs: []int64{1}, MaxInbreeding: f64(4.0)})
	require.NoError(t, err)
	assert.Equal(t, []string{"B3"}, bullCodes(res.Results[0].Candidates))
}

func TestBatch_TopNKeepsHighestScores(t *testing.T) {
	fs := stubFemales{1: {ID: 1, RegID: "F1"}}
	var bs stubBulls
	for i, milk := range []float64{0, 500, 1000, 1500, 2000} {
		bs = append(bs, bulls.Bull{
			ID: int64(i + 1), Code: string(rune('A' + i)), Available: true,
			Indices: genetics.Indices{"milk": milk},
		})
	}
	svc, _, _ := newTestService(fs, bs)

	res, err := svc.Batch(context.Background(), BatchInput{FemaleIDs: []int64{1}, TopN: intp(2)})
	require.NoError(t, err)

	cands := res.Results[0].Candidates
	require.Len(t, cands, 2)
	assert.Equal(t, []string{"E", "D"}, bullCodes(cands))
	assert.Equal(t, 1, cands[0].Rank)
	assert.Equal(t, 2, cands[1].Rank)
	assert.GreaterOrEqual(t, cands[0].Score(), cands[1].Score())
}

func TestBatch_ZeroCeilingReturnsEmptyLists(t *testing.T) {
	fs, bs := scenarioCatalog()
	svc, _, _ := newTestService(fs, bs)

	res, err := svc.Batch(context.Background(), BatchInput{FemaleIDs: []int64{1}, MaxInbreeding: f64(0)})
	require.NoError(t, err)
	require.Len(t, res.Results, 1)
	assert.Empty(t, res.Results[0].Candidates)
}

func TestBatch_TiesBreakOnInbreedingThenCode(t *testing.T) {
	fs := stubFemales{1: {ID: 1, RegID: "F1", Indices: genetics.Indices{"genomic_inbreeding": 4}}}
	bs := stubBulls{
		{ID: 1, Code: "Z", Available: true, Indices: genetics.Indices{"gfi": 4}},
		{ID: 2, Code: "Y", Available: true, Indices: genetics.Indices{"gfi": 0}},
		{ID: 3, Code: "X", Available: true, Indices: genetics.Indices{"gfi": 4}},
	}
	svc, _, _ := newTestService(fs, bs)

	res, err := svc.Batch(context.Background(), BatchInput{FemaleIDs: []int64{1}})
	require.NoError(t, err)
	// todos con score neutro 50: primero menor consanguinidad, luego código
	assert.Equal(t, []string{"Y", "X", "Z"}, bullCodes(res.Results[0].Candidates))
}

func TestBatch_EmptyPoolIsNotAnError(t *testing.T) {
	fs, _ := scenarioCatalog()
	svc, _, _ := newTestService(fs, stubBulls{})

	res, err := svc.Batch(context.Background(), BatchInput{FemaleIDs: []int64{1}})
	require.NoError(t, err)
	require.Len(t, res.Results, 1)
	assert.Empty(t, res.Results[0].Candidates)
	assert.Equal(t, 0, res.Summary.TotalBullsAnalyzed)
}

func TestBatch_FiltersNarrowPool(t *testing.T) {
	fs, bs := scenarioCatalog()
	svc, _, _ := newTestService(fs, bs)

	res, err := svc.Batch(context.Background(), BatchInput{
		FemaleIDs: []int64{1},
		Filters:   bulls.Filters{MinMilk: f64(1000)},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Summary.TotalBullsAnalyzed)
	assert.Equal(t, []string{"B1"}, bullCodes(res.Results[0].Candidates))
}

func TestBatch_WithoutSaveIsIdempotentAndReadOnly(t *testing.T) {
	fs, bs := scenarioCatalog()
	svc, repo, _ := newTestService(fs, bs)

	in := BatchInput{FemaleIDs: []int64{1}}
	a, err := svc.Batch(context.Background(), in)
	require.NoError(t, err)
	b, err := svc.Batch(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, 0, repo.count())
}

func TestBatch_UnknownFemaleFailsWithoutPersisting(t *testing.T) {
	fs, bs := scenarioCatalog()
	svc, repo, rec := newTestService(fs, bs)

	_, err := svc.Batch(context.Background(), BatchInput{FemaleIDs: []int64{1, 99}, Save: true})
	require.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, 0, repo.count())
	assert.Equal(t, []string{"not_found"}, rec.outcomes)
}

func TestBatch_DuplicateFemalesCollapsed(t *testing.T) {
	fs, bs := scenarioCatalog()
	svc, _, _ := newTestService(fs, bs)

	res, err := svc.Batch(context.Background(), BatchInput{FemaleIDs: []int64{1, 1, 1}})
	require.NoError(t, err)
	assert.Len(t, res.Results, 1)
	assert.Equal(t, 1, res.Summary.TotalFemales)
}

func TestBatch_DuplicateFemalesDoNotCountTowardsLimit(t *testing.T) {
	fs, bs := scenarioCatalog()
	svc, _, _ := newTestService(fs, bs)

	ids := make([]int64, 150)
	for i := range ids {
		ids[i] = 1
	}
	res, err := svc.Batch(context.Background(), BatchInput{FemaleIDs: ids})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Summary.TotalFemales)
}

// Sin datos genómicos ni índices en la hembra: sin penalidad ni bonus, manda el base score.
// Pesos por defecto (milk 1.0, productive_life 1.5): P => 40, L => 60.
func TestBatch_PrioritiesReplaceDefaultWeights(t *testing.T) {
	fs := stubFemales{1: {ID: 1, RegID: "F1"}}
	bs := stubBulls{
		{ID: 1, Code: "P", Available: true, Indices: genetics.Indices{"milk": 2000, "productive_life": -3}},
		{ID: 2, Code: "L", Available: true, Indices: genetics.Indices{"milk": -1000, "productive_life": 8}},
	}
	svc, _, _ := newTestService(fs, bs)

	res, err := svc.Batch(context.Background(), BatchInput{FemaleIDs: []int64{1}})
	require.NoError(t, err)
	cands := res.Results[0].Candidates
	assert.Equal(t, []string{"L", "P"}, bullCodes(cands))
	assert.Equal(t, 60.0, cands[0].Score())
	assert.Equal(t, 40.0, cands[1].Score())
	assert.Equal(t, genetics.DefaultWeights(), res.Summary.PrioritiesUsed)

	for _, key := range []string{"milk", "Milk", " MILK "} {
		t.Run(key, func(t *testing.T) {
			res, err := svc.Batch(context.Background(), BatchInput{
				FemaleIDs:  []int64{1},
				Priorities: map[string]float64{key: 2},
			})
			require.NoError(t, err)
			cands := res.Results[0].Candidates
			assert.Equal(t, []string{"P", "L"}, bullCodes(cands))
			assert.Equal(t, 100.0, cands[0].Score())
			assert.Equal(t, 0.0, cands[1].Score())
			assert.Equal(t, map[string]float64{"milk": 2}, res.Summary.PrioritiesUsed)
		})
	}
}

func TestBatch_Validation(t *testing.T) {
	fs, bs := scenarioCatalog()
	svc, _, _ := newTestService(fs, bs)

	tooMany := make([]int64, 101)
	for i := range tooMany {
		tooMany[i] = int64(i + 1)
	}

	cases := map[string]BatchInput{
		"no females":            {},
		"too many females":      {FemaleIDs: tooMany},
		"negative inbreeding":   {FemaleIDs: []int64{1}, MaxInbreeding: f64(-1)},
		"zero top_n":            {FemaleIDs: []int64{1}, TopN: intp(0)},
		"negative top_n":        {FemaleIDs: []int64{1}, TopN: intp(-3)},
		"non finite priorities": {FemaleIDs: []int64{1}, Priorities: map[string]float64{"milk": math.Inf(1)}},
		"NaN priority":          {FemaleIDs: []int64{1}, Priorities: map[string]float64{"milk": math.NaN()}},
		"same index twice":      {FemaleIDs: []int64{1}, Priorities: map[string]float64{"milk": 1, "MILK": 2}},
		"blank priority name":   {FemaleIDs: []int64{1}, Priorities: map[string]float64{" ": 1}},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Batch(context.Background(), in)
			assert.ErrorIs(t, err, apperr.ErrValidation)
		})
	}
}

func TestBatch_SavePersistsEveryCandidateUnderOneBatch(t *testing.T) {
	fs, bs := scenarioCatalog()
	fs[2] = females.Female{ID: 2, RegID: "F2"}
	svc, repo, rec := newTestService(fs, bs)

	res, err := svc.Batch(context.Background(), BatchInput{
		FemaleIDs: []int64{1, 2},
		Save:      true,
		User:      "Ana",
	})
	require.NoError(t, err)
	assert.True(t, res.Summary.Saved)
	assert.Equal(t, "batch-1", res.Summary.BatchID)

	total := 0
	for _, fr := range res.Results {
		for _, c := range fr.Candidates {
			total++
			require.NotNil(t, c.MatingID)
			m, err := repo.GetByID(context.Background(), *c.MatingID)
			require.NoError(t, err)
			assert.Equal(t, TypeBatch, m.Type)
			assert.Equal(t, StatusPlanned, m.Status)
			assert.Equal(t, "batch-1", m.BatchID)
			assert.Equal(t, "Ana", m.CreatedBy)
			assert.Equal(t, fr.Female.ID, m.FemaleID)
			assert.Equal(t, c.Bull.ID, m.BullID)
			assert.Equal(t, c.Inbreeding(), m.PredictedInbreeding)
			assert.Equal(t, testNow.AddDate(0, 0, GestationDays), m.ExpectedCalvingDate)
		}
	}
	assert.Equal(t, total, repo.count())
	assert.Equal(t, total, rec.saved[string(TypeBatch)])
}

func TestBatch_SaveFailureReturnsError(t *testing.T) {
	fs, bs := scenarioCatalog()
	svc, repo, _ := newTestService(fs, bs)
	repo.failBatch = errors.New("disk full")

	_, err := svc.Batch(context.Background(), BatchInput{FemaleIDs: []int64{1}, Save: true})
	require.Error(t, err)
	assert.Equal(t, 0, repo.count())
}

func TestBatch_DeadlineExceededIsTimeout(t *testing.T) {
	fs, bs := scenarioCatalog()
	svc, _, rec := newTestService(fs, bs)

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err := svc.Batch(ctx, BatchInput{FemaleIDs: []int64{1}})
	require.ErrorIs(t, err, apperr.ErrTimeout)
	assert.Equal(t, []string{"timeout"}, rec.outcomes)
}

func TestBatch_ManyFemalesKeepInputOrder(t *testing.T) {
	fs := stubFemales{}
	ids := make([]int64, 0, 40)
	for i := int64(1); i <= 40; i++ {
		fs[i] = females.Female{ID: i, RegID: "F"}
		ids = append(ids, i)
	}
	_, bs := scenarioCatalog()
	svc, _, _ := newTestService(fs, bs)

	res, err := svc.Batch(context.Background(), BatchInput{FemaleIDs: ids})
	require.NoError(t, err)
	require.Len(t, res.Results, 40)
	for i, fr := range res.Results {
		assert.Equal(t, ids[i], fr.Female.ID)
	}
}

// -------------------------
// Manual
// -------------------------

func TestManual_SavesByDefault(t *testing.T) {
	fs, bs := scenarioCatalog()
	svc, repo, _ := newTestService(fs, bs)

	// B2 supera el límite del lote pero el manual no lo aplica
	res, err := svc.Manual(context.Background(), ManualInput{FemaleID: 1, BullID: 2, User: "Ana"})
	require.NoError(t, err)
	assert.True(t, res.Mating.Saved)
	assert.Equal(t, int64(1), res.Mating.ID)
	assert.Equal(t, TypeManual, res.Mating.Type)
	assert.Equal(t, 7.0, res.Mating.PredictedInbreeding)
	assert.Equal(t, 1, repo.count())
	assert.Contains(t, res.Analysis.PPPV, "milk")
}

func TestManual_WithoutSaveIsEphemeral(t *testing.T) {
	fs, bs := scenarioCatalog()
	svc, repo, _ := newTestService(fs, bs)

	no := false
	res, err := svc.Manual(context.Background(), ManualInput{FemaleID: 1, BullID: 1, Save: &no})
	require.NoError(t, err)
	assert.False(t, res.Mating.Saved)
	assert.Zero(t, res.Mating.ID)
	assert.Equal(t, 0, repo.count())
}

func TestManual_UnknownBullCreatesNothing(t *testing.T) {
	fs, bs := scenarioCatalog()
	svc, repo, _ := newTestService(fs, bs)

	_, err := svc.Manual(context.Background(), ManualInput{FemaleID: 1, BullID: 99})
	require.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, 0, repo.count())

	_, err = svc.Manual(context.Background(), ManualInput{FemaleID: 1})
	require.ErrorIs(t, err, apperr.ErrValidation)
}

// -------------------------
// Update
// -------------------------

func statusp(s Status) *Status { return &s }
func strp(s string) *string    { return &s }

func TestUpdate_StatusLifecycle(t *testing.T) {
	fs, bs := scenarioCatalog()
	svc, _, _ := newTestService(fs, bs)

	res, err := svc.Manual(context.Background(), ManualInput{FemaleID: 1, BullID: 1})
	require.NoError(t, err)
	id := res.Mating.ID

	m, err := svc.Update(context.Background(), id, UpdateInput{Status: statusp(StatusConfirmed)})
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, m.Status)

	// mismo estado: no-op válido
	_, err = svc.Update(context.Background(), id, UpdateInput{Status: statusp(StatusConfirmed)})
	require.NoError(t, err)

	// no se vuelve atrás
	_, err = svc.Update(context.Background(), id, UpdateInput{Status: statusp(StatusPlanned)})
	require.ErrorIs(t, err, apperr.ErrValidation)

	calving := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	yes := true
	m, err = svc.Update(context.Background(), id, UpdateInput{
		Status:            statusp(StatusBorn),
		Success:           &yes,
		ActualCalvingDate: &calving,
		CalfID:            strp("C-001"),
		CalfSex:           strp("f"),
		ActualGeneticData: map[string]float64{"milk": 900},
	})
	require.NoError(t, err)
	assert.Equal(t, StatusBorn, m.Status)
	assert.Equal(t, "F", m.CalfSex)
	require.NotNil(t, m.Success)
	assert.True(t, *m.Success)
	assert.Equal(t, calving, *m.ActualCalvingDate)

	// born es terminal
	_, err = svc.Update(context.Background(), id, UpdateInput{Status: statusp(StatusFailed)})
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestUpdate_Errors(t *testing.T) {
	fs, bs := scenarioCatalog()
	svc, _, _ := newTestService(fs, bs)

	_, err := svc.Update(context.Background(), 42, UpdateInput{Notes: strp("x")})
	require.ErrorIs(t, err, apperr.ErrNotFound)

	res, err := svc.Manual(context.Background(), ManualInput{FemaleID: 1, BullID: 1})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), res.Mating.ID, UpdateInput{})
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.Update(context.Background(), res.Mating.ID, UpdateInput{CalfSex: strp("X")})
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.Update(context.Background(), res.Mating.ID, UpdateInput{Status: statusp("weaned")})
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestList_RejectsUnknownStatus(t *testing.T) {
	svc, _, _ := newTestService(stubFemales{}, stubBulls{})
	_, _, err := svc.List(context.Background(), ListInput{Status: "weaned"})
	require.ErrorIs(t, err, apperr.ErrValidation)
}
