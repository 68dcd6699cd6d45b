package genetics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_RangesAndInversion(t *testing.T) {
	assert.Equal(t, 0.0, Normalize(IndexMilk, -1000))
	assert.Equal(t, 1.0, Normalize(IndexMilk, 2000))
	assert.InDelta(t, 0.5, Normalize(IndexMilk, 500), 1e-9)

	// scs: menor es mejor
	assert.Equal(t, 1.0, Normalize(IndexSCS, 2.5))
	assert.Equal(t, 0.0, Normalize(IndexSCS, 3.5))
	assert.InDelta(t, 0.5, Normalize(IndexSCS, 3.0), 1e-9)

	// fuera de rango se recorta
	assert.Equal(t, 1.0, Normalize(IndexMilk, 9999))
	assert.Equal(t, 0.0, Normalize(IndexMilk, -9999))
}

func TestIndices_GetCaseInsensitive(t *testing.T) {
	ix := Indices{"Milk": 1200}
	v, ok := ix.Get(IndexMilk)
	require.True(t, ok)
	assert.Equal(t, 1200.0, v)

	_, ok = Indices(nil).Get(IndexMilk)
	assert.False(t, ok)
}

func TestExpectedInbreeding(t *testing.T) {
	t.Run("genomic", func(t *testing.T) {
		inb := ExpectedInbreeding(Indices{IndexGenomicInbreeding: 8}, Indices{IndexGFI: 12})
		assert.Equal(t, MethodGenomic, inb.Method)
		assert.Equal(t, 6.0, inb.Expected)
		assert.True(t, inb.Acceptable)
		assert.Equal(t, RiskModerate, inb.RiskLevel)
		require.NotNil(t, inb.FemaleGFI)
		require.NotNil(t, inb.BullGFI)
	})

	t.Run("estimated when a parent lacks genomic data", func(t *testing.T) {
		inb := ExpectedInbreeding(Indices{}, Indices{IndexGFI: 12})
		assert.Equal(t, MethodEstimated, inb.Method)
		assert.Equal(t, PopulationInbreeding, inb.Expected)
		assert.Equal(t, RiskLow, inb.RiskLevel)
		assert.Nil(t, inb.FemaleGFI)
	})
}

func TestScore_NoWeightedIndices_IsNeutral(t *testing.T) {
	c := Score(Indices{}, Indices{IndexTPI: 2700}, nil)
	assert.Equal(t, 50.0, c.BaseScore)
	assert.Equal(t, 50.0, c.Score)
	assert.Equal(t, "C", c.Grade)
	assert.Empty(t, c.Adjustments)
}

func TestScore_ComplementarityBonusAndClamp(t *testing.T) {
	female := Indices{IndexMilk: -1000}
	bull := Indices{IndexMilk: 2000}

	c := Score(female, bull, nil)
	assert.Equal(t, 100.0, c.BaseScore)
	assert.Equal(t, 2.0, c.Adjustments["complementarity_bonus"])
	assert.Equal(t, 100.0, c.Score, "final score must be clamped")
	assert.Equal(t, "A+", c.Grade)
}

func TestScore_InbreedingPenalty(t *testing.T) {
	female := Indices{IndexGenomicInbreeding: 10}
	bull := Indices{IndexGFI: 14, IndexMilk: 500}

	c := Score(female, bull, nil)
	assert.Equal(t, 7.0, c.Inbreeding.Expected)
	assert.Equal(t, 50.0, c.BaseScore)
	assert.Equal(t, -5.0, c.Adjustments["inbreeding_penalty"])
	assert.Equal(t, 45.0, c.Score)
	assert.Equal(t, "D", c.Grade)
}

func TestScore_CustomWeightsAndDeterminism(t *testing.T) {
	bull := Indices{IndexMilk: 2000, IndexSCS: 3.5, IndexProtein: 25}
	w := map[string]float64{IndexMilk: 1, IndexSCS: -1}

	a := Score(Indices{}, bull, w)
	b := Score(Indices{}, bull, w)
	assert.Equal(t, a, b)
	// milk=1 (peso 1) y scs=0 (peso |−1|) => 50
	assert.Equal(t, 50.0, a.BaseScore)
	assert.NotContains(t, a.Contributions, IndexProtein)
}

func TestScore_WeightNamesIgnoreCase(t *testing.T) {
	bull := Indices{IndexMilk: 500}

	want := Score(Indices{}, bull, map[string]float64{"milk": 1})
	assert.Equal(t, 50.0, want.BaseScore)

	for _, w := range []map[string]float64{
		{"Milk": 1},
		{"MILK": 1},
		{"milk": 1, "MILK": 1},
	} {
		got := Score(Indices{}, bull, w)
		assert.Equal(t, want.BaseScore, got.BaseScore, "%v", w)
		assert.Len(t, got.Contributions, 1, "%v", w)
		assert.Contains(t, got.Contributions, IndexMilk)
	}

	assert.Equal(t, Normalize(IndexSCS, 3.0), Normalize("SCS", 3.0))
}

func TestCanonicalWeights(t *testing.T) {
	w, err := CanonicalWeights(DefaultWeights())
	require.NoError(t, err)
	assert.Equal(t, DefaultWeights(), w)

	w, err = CanonicalWeights(map[string]float64{" Milk ": 2, "SCS": -1})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{IndexMilk: 2, IndexSCS: -1}, w)

	for _, bad := range []map[string]float64{
		{IndexMilk: math.NaN()},
		{IndexMilk: math.Inf(1)},
		{"milk": 1, "Milk": 1},
		{"": 1},
	} {
		_, err := CanonicalWeights(bad)
		assert.Error(t, err, "%v", bad)
	}
}

func TestGrade(t *testing.T) {
	cases := map[float64]string{90: "A+", 85: "A+", 80: "A", 70: "B", 55: "C", 40: "D", 10: "F"}
	for score, want := range cases {
		assert.Equal(t, want, Grade(score), "score %v", score)
	}
}

func TestPPPV_AndPredictions(t *testing.T) {
	female := Indices{IndexMilk: 800, IndexProductiveLife: 2, IndexNetMerit: 500}
	bull := Indices{IndexMilk: 1200, IndexProductiveLife: 4, IndexNetMerit: 900, IndexUDC: 1.5}

	p := PPPV(female, bull)
	require.Contains(t, p, IndexMilk)
	assert.NotContains(t, p, IndexUDC, "only indices present in both parents")

	milk := p[IndexMilk]
	assert.Equal(t, 1000.0, milk.PPPV)
	assert.Equal(t, 67.5, milk.Reliability)
	assert.Equal(t, "very high", milk.Interpretation)

	pred := PredictOffspring(p)
	assert.Equal(t, 26000.0, pred["first_lactation_milk"].Value)
	assert.Equal(t, 6.0, pred["productive_life_estimate"].Value)
	assert.Equal(t, 700.0, pred["lifetime_value"].Value)

	sum := Summarize(p)
	assert.Equal(t, map[string]float64{IndexMilk: 1000, IndexProductiveLife: 3}, sum)
}

func TestRecommend(t *testing.T) {
	t.Run("highly recommended", func(t *testing.T) {
		r := Recommend(Compatibility{Score: 80, Inbreeding: Inbreeding{Expected: 3, Method: MethodEstimated}})
		assert.Equal(t, StatusHighlyRecommended, r.Status)
		assert.Contains(t, r.Positives, "low inbreeding")
		assert.Empty(t, r.Negatives)
		assert.Equal(t, 75.0, r.Confidence)
	})

	t.Run("acceptable with elevated inbreeding", func(t *testing.T) {
		r := Recommend(Compatibility{Score: 55, Inbreeding: Inbreeding{Expected: 7, Method: MethodGenomic}})
		assert.Equal(t, StatusAcceptable, r.Status)
		assert.Len(t, r.Negatives, 1)
		assert.Equal(t, 85.0, r.Confidence)
	})

	t.Run("not recommended", func(t *testing.T) {
		r := Recommend(Compatibility{Score: 40, Inbreeding: Inbreeding{Expected: 9}})
		assert.Equal(t, StatusNotRecommended, r.Status)
		assert.Len(t, r.Negatives, 3)
	})
}
