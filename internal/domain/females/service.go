package females

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
	RegID      string
	InternalID string
	Name       string
	Breed      string
	BirthDate  *time.Time
	Indices    map[string]float64
	Active     *bool // nil = activa
	Notes      string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Female, error) {
	regID := strings.TrimSpace(in.RegID)
	if regID == "" {
		return Female{}, apperr.Validation("reg_id is required")
	}
	for k, v := range in.Indices {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Female{}, apperr.Validation("index %q must be a finite number", k)
		}
	}

	active := true
	if in.Active != nil {
		active = *in.Active
	}

	now := s.now()
	f := Female{
		RegID:      regID,
		InternalID: strings.TrimSpace(in.InternalID),
		Name:       strings.TrimSpace(in.Name),
		Breed:      strings.TrimSpace(in.Breed),
		BirthDate:  in.BirthDate,
		Indices:    genetics.Indices(in.Indices).Clone(),
		Active:     active,
		Notes:      strings.TrimSpace(in.Notes),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if f.Indices == nil {
		f.Indices = genetics.Indices{}
	}

	id, err := s.repo.Create(ctx, f)
	if err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return Female{}, apperr.Conflict("female with reg_id %q already exists", regID)
		}
		return Female{}, err
	}
	f.ID = id
	return f, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (Female, error) {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return Female{}, apperr.NotFound("female %d not found", id)
		}
		return Female{}, err
	}
	return f, nil
}

type ListInput struct {
	ActiveOnly bool
	Search     string
	Page       int
	PerPage    int
}

func (s *Service) List(ctx context.Context, in ListInput) ([]Female, int, error) {
	page := max(in.Page, 1)
	return s.repo.List(ctx, ListFilter{
		ActiveOnly: in.ActiveOnly,
		Search:     strings.TrimSpace(in.Search),
		Offset:     (page - 1) * in.PerPage,
		Limit:      in.PerPage,
	})
}

// All devuelve el catálogo completo (dashboard/analytics).
func (s *Service) All(ctx context.Context, activeOnly bool) ([]Female, error) {
	items, _, err := s.repo.List(ctx, ListFilter{ActiveOnly: activeOnly})
	return items, err
}
