package genetics

const (
	// PopulationInbreeding se usa cuando falta dato genómico de alguno de los padres.
	PopulationInbreeding = 3.0
	// MatingIncrement asume padres no emparentados (0-2% típico en rebaños comerciales).
	MatingIncrement = 1.0

	MethodGenomic   = "genomic"
	MethodEstimated = "estimated"
)

type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
	RiskVeryHigh RiskLevel = "very_high"
)

// Inbreeding es la consanguinidad esperada del ternero.
type Inbreeding struct {
	FemaleGFI      *float64  `json:"female_gfi"`
	BullGFI        *float64  `json:"bull_gfi"`
	Expected       float64   `json:"expected_inbreeding"`
	Method         string    `json:"method"`
	RiskLevel      RiskLevel `json:"risk_level"`
	Acceptable     bool      `json:"acceptable"`
	Recommendation string    `json:"recommendation"`
}

var gfiKeys = []string{IndexGFI, IndexGenomicInbreeding, "ginb"}

func genomicInbreeding(ix Indices) (float64, bool) {
	for _, k := range gfiKeys {
		if v, ok := ix.Get(k); ok {
			return v, true
		}
	}
	return 0, false
}

// ExpectedInbreeding estima la consanguinidad del ternero.
//
// Con gINB de la hembra y GFI del toro: (gINB + GFI)/4 + MatingIncrement.
// Sin alguno de los dos se usa la estimación poblacional.
func ExpectedInbreeding(female, bull Indices) Inbreeding {
	fg, fok := genomicInbreeding(female)
	bg, bok := genomicInbreeding(bull)

	out := Inbreeding{}
	if fok {
		v := Round(fg, 2)
		out.FemaleGFI = &v
	}
	if bok {
		v := Round(bg, 2)
		out.BullGFI = &v
	}

	if fok && bok {
		out.Expected = Round((fg+bg)/4+MatingIncrement, 2)
		out.Method = MethodGenomic
	} else {
		out.Expected = PopulationInbreeding
		out.Method = MethodEstimated
	}

	out.RiskLevel = ClassifyRisk(out.Expected)
	out.Acceptable = out.Expected <= PenaltyThreshold
	out.Recommendation = inbreedingAdvice(out.Expected)
	return out
}

func ClassifyRisk(inb float64) RiskLevel {
	switch {
	case inb < 6.0:
		return RiskLow
	case inb < 8.0:
		return RiskModerate
	case inb < 10.0:
		return RiskHigh
	default:
		return RiskVeryHigh
	}
}

func inbreedingAdvice(inb float64) string {
	switch {
	case inb < 6.0:
		return "recommended: ideal inbreeding"
	case inb < 8.0:
		return "acceptable: monitor progeny"
	case inb < 10.0:
		return "caution: consider other options if available"
	default:
		return "not recommended: high genetic risk"
	}
}
