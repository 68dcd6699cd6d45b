package genetics

import "fmt"

type Status string

const (
	StatusHighlyRecommended Status = "highly_recommended"
	StatusRecommended       Status = "recommended"
	StatusAcceptable        Status = "acceptable"
	StatusNotRecommended    Status = "not_recommended"
)

type Recommendation struct {
	Status     Status   `json:"status"`
	Message    string   `json:"message"`
	Positives  []string `json:"positives"`
	Negatives  []string `json:"negatives"`
	Confidence float64  `json:"confidence"`
}

// Recommend clasifica el apareamiento a partir del score y la consanguinidad.
func Recommend(c Compatibility) Recommendation {
	score := c.Score
	inb := c.Inbreeding.Expected

	r := Recommendation{
		Positives: []string{},
		Negatives: []string{},
	}

	switch {
	case score >= 75 && inb <= 6.0:
		r.Status, r.Message = StatusHighlyRecommended, "highly recommended mating"
	case score >= 60 && inb <= 6.0:
		r.Status, r.Message = StatusRecommended, "recommended mating"
	case score >= 50 || inb <= 8.0:
		r.Status, r.Message = StatusAcceptable, "acceptable mating, monitor results"
	default:
		r.Status, r.Message = StatusNotRecommended, "not recommended, consider other options"
	}

	if score >= 70 {
		r.Positives = append(r.Positives, "excellent genetic compatibility")
	}
	if inb <= 4.0 {
		r.Positives = append(r.Positives, "low inbreeding")
	}
	if c.Adjustments["complementarity_bonus"] > 0 {
		r.Positives = append(r.Positives, "bull complements female weaknesses")
	}

	if score < 50 {
		r.Negatives = append(r.Negatives, "below average compatibility")
	}
	if inb > 6.0 {
		r.Negatives = append(r.Negatives, fmt.Sprintf("elevated inbreeding (%.1f%%)", inb))
	}
	if inb > 8.0 {
		r.Negatives = append(r.Negatives, "high genetic risk")
	}

	r.Confidence = 75
	if c.Inbreeding.Method == MethodGenomic {
		r.Confidence += 10
	}
	return r
}
