package bulls

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"herd-mating/internal/domain/genetics"
	"herd-mating/internal/platform/apperr"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	Code           string
	Name           string
	NAABCode       string
	Source         string
	Available      *bool // nil = disponible
	PricePerDose   *float64
	DosesAvailable int
	BetaCasein     string
	KappaCasein    string
	Indices        map[string]float64
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Bull, error) {
	code := strings.TrimSpace(in.Code)
	if code == "" {
		return Bull{}, apperr.Validation("code is required")
	}
	if in.DosesAvailable < 0 {
		return Bull{}, apperr.Validation("doses_available must be >= 0")
	}
	if in.PricePerDose != nil && (*in.PricePerDose < 0 || math.IsNaN(*in.PricePerDose) || math.IsInf(*in.PricePerDose, 0)) {
		return Bull{}, apperr.Validation("price_per_dose must be a non-negative number")
	}
	for k, v := range in.Indices {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Bull{}, apperr.Validation("index %q must be a finite number", k)
		}
	}

	available := true
	if in.Available != nil {
		available = *in.Available
	}

	now := s.now()
	b := Bull{
		Code:           code,
		Name:           strings.TrimSpace(in.Name),
		NAABCode:       strings.TrimSpace(in.NAABCode),
		Source:         strings.TrimSpace(in.Source),
		Available:      available,
		PricePerDose:   in.PricePerDose,
		DosesAvailable: in.DosesAvailable,
		BetaCasein:     strings.ToUpper(strings.TrimSpace(in.BetaCasein)),
		KappaCasein:    strings.ToUpper(strings.TrimSpace(in.KappaCasein)),
		Indices:        genetics.Indices(in.Indices).Clone(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if b.Indices == nil {
		b.Indices = genetics.Indices{}
	}

	id, err := s.repo.Create(ctx, b)
	if err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return Bull{}, apperr.Conflict("bull with code %q already exists", code)
		}
		return Bull{}, err
	}
	b.ID = id
	return b, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (Bull, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return Bull{}, apperr.NotFound("bull %d not found", id)
		}
		return Bull{}, err
	}
	return b, nil
}

func (s *Service) GetByCode(ctx context.Context, code string) (Bull, error) {
	b, err := s.repo.GetByCode(ctx, strings.TrimSpace(code))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return Bull{}, apperr.NotFound("bull %q not found", code)
		}
		return Bull{}, err
	}
	return b, nil
}

type ListInput struct {
	AvailableOnly bool
	Search        string
	Filters       Filters
	SortBy        string
	Page          int
	PerPage       int
}

func (s *Service) List(ctx context.Context, in ListInput) ([]Bull, int, error) {
	page := max(in.Page, 1)
	return s.repo.List(ctx, ListFilter{
		AvailableOnly: in.AvailableOnly,
		Search:        strings.TrimSpace(in.Search),
		Filters:       in.Filters,
		SortBy:        strings.TrimSpace(in.SortBy),
		Offset:        (page - 1) * in.PerPage,
		Limit:         in.PerPage,
	})
}

// Pool devuelve los toros disponibles que pasan los filtros, sin paginar.
func (s *Service) Pool(ctx context.Context, f Filters) ([]Bull, error) {
	items, _, err := s.repo.List(ctx, ListFilter{AvailableOnly: true, Filters: f})
	return items, err
}

// All devuelve el catálogo completo (dashboard/analytics).
func (s *Service) All(ctx context.Context, availableOnly bool) ([]Bull, error) {
	items, _, err := s.repo.List(ctx, ListFilter{AvailableOnly: availableOnly})
	return items, err
}
