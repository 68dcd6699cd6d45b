package females

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"herd-mating/internal/platform/apperr"
)

type testRepo struct {
	next  int64
	byID  map[int64]Female
	regID map[string]int64
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[int64]Female{}, regID: map[string]int64{}}
}

func (r *testRepo) Create(ctx context.Context, f Female) (int64, error) {
	if _, ok := r.regID[f.RegID]; ok {
		return 0, apperr.ErrConflict
	}
	r.next++
	f.ID = r.next
	r.byID[f.ID] = f
	r.regID[f.RegID] = f.ID
	return f.ID, nil
}

func (r *testRepo) GetByID(ctx context.Context, id int64) (Female, error) {
	f, ok := r.byID[id]
	if !ok {
		return Female{}, apperr.ErrNotFound
	}
	return f, nil
}

func (r *testRepo) List(ctx context.Context, filter ListFilter) ([]Female, int, error) {
	out := make([]Female, 0)
	for id := int64(1); id <= r.next; id++ {
		f := r.byID[id]
		if filter.ActiveOnly && !f.Active {
			continue
		}
		out = append(out, f)
	}
	return out, len(out), nil
}

func TestService_Create_DefaultsAndTrim(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	f, err := svc.Create(context.Background(), CreateInput{
		RegID:   "  HOUSA000123  ",
		Name:    " Mimosa ",
		Indices: map[string]float64{"milk": 900},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if f.ID != 1 {
		t.Fatalf("expected id 1, got %d", f.ID)
	}
	if f.RegID != "HOUSA000123" || f.Name != "Mimosa" {
		t.Fatalf("expected trimmed fields, got %+v", f)
	}
	if !f.Active {
		t.Fatalf("expected active by default")
	}
	if !f.CreatedAt.Equal(now) {
		t.Fatalf("expected CreatedAt=%v, got %v", now, f.CreatedAt)
	}
}

func TestService_Create_Validation(t *testing.T) {
	svc := NewService(newTestRepo())

	_, err := svc.Create(context.Background(), CreateInput{RegID: "   "})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	_, err = svc.Create(context.Background(), CreateInput{
		RegID:   "X1",
		Indices: map[string]float64{"milk": math.NaN()},
	})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error for NaN index, got %v", err)
	}
}

func TestService_Create_DuplicateRegID_Conflict(t *testing.T) {
	svc := NewService(newTestRepo())

	if _, err := svc.Create(context.Background(), CreateInput{RegID: "X1"}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	_, err := svc.Create(context.Background(), CreateInput{RegID: "X1"})
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestService_GetByID_NotFound(t *testing.T) {
	svc := NewService(newTestRepo())

	_, err := svc.GetByID(context.Background(), 42)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err.Error() != "female 42 not found" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}
