package females

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"herd-mating/internal/domain/genetics"
	"herd-mating/internal/platform/apperr"
	"herd-mating/internal/platform/httpjson"

	"github.com/go-chi/chi/v5"
)

const (
	defaultPerPage = 50
	maxPerPage     = 200
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/females", func(fr chi.Router) {
		fr.Get("/", listFemalesHandler(svc))
		fr.Post("/", createFemaleHandler(svc))
		fr.Get("/{femaleID}", getFemaleHandler(svc))
	})
}

type createFemaleRequest struct {
	RegID      string             `json:"reg_id"`
	InternalID string             `json:"internal_id"`
	Name       string             `json:"name"`
	Breed      string             `json:"breed"`
	BirthDate  string             `json:"birth_date"` // YYYY-MM-DD opcional
	Indices    map[string]float64 `json:"indices"`
	Active     *bool              `json:"active"`
	Notes      string             `json:"notes"`
}

type FemaleResponse struct {
	ID          int64            `json:"id"`
	RegID       string           `json:"reg_id"`
	InternalID  string           `json:"internal_id"`
	Name        string           `json:"name"`
	Breed       string           `json:"breed"`
	BirthDate   *time.Time       `json:"birth_date,omitempty"`
	Indices     genetics.Indices `json:"indices"`
	MainIndices genetics.Indices `json:"main_indices"`
	Active      bool             `json:"active"`
	Notes       string           `json:"notes"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

type listFemalesResponse struct {
	Total   int              `json:"total"`
	Page    int              `json:"page"`
	PerPage int              `json:"per_page"`
	Females []FemaleResponse `json:"females"`
}

// createFemaleHandler godoc
// @Summary Registrar hembra
// @Description Alta de una hembra en el catálogo con sus índices genéticos. reg_id es único.
// @Tags females
// @Accept json
// @Produce json
// @Param payload body createFemaleRequest true "Datos de la hembra; birth_date en formato YYYY-MM-DD"
// @Success 201 {object} FemaleResponse
// @Failure 400 {object} httpjson.ErrorResponse
// @Failure 409 {object} httpjson.ErrorResponse "reg_id duplicado"
// @Router /females [post]
func createFemaleHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createFemaleRequest
		if err := httpjson.DecodeStrict(r, &req); err != nil {
			httpjson.WriteError(w, r, err)
			return
		}

		var bd *time.Time
		if strings.TrimSpace(req.BirthDate) != "" {
			t, err := time.Parse("2006-01-02", req.BirthDate)
			if err != nil {
				httpjson.WriteError(w, r, apperr.Validation("birth_date must be YYYY-MM-DD"))
				return
			}
			bd = &t
		}

		f, err := svc.Create(r.Context(), CreateInput{
			RegID:      req.RegID,
			InternalID: req.InternalID,
			Name:       req.Name,
			Breed:      req.Breed,
			BirthDate:  bd,
			Indices:    req.Indices,
			Active:     req.Active,
			Notes:      req.Notes,
		})
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}

		httpjson.WriteJSON(w, http.StatusCreated, ToResponse(f))
	}
}

// listFemalesHandler godoc
// @Summary Listar hembras
// @Description Lista paginada del rebaño. Por defecto solo hembras activas.
// @Tags females
// @Produce json
// @Param page query int false "Página (desde 1)"
// @Param per_page query int false "Tamaño de página (máx 200). Por defecto 50"
// @Param active_only query bool false "Solo activas. Por defecto true"
// @Param search query string false "Texto sobre reg_id, internal_id o nombre"
// @Success 200 {object} listFemalesResponse
// @Failure 400 {object} httpjson.ErrorResponse
// @Router /females [get]
func listFemalesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, perPage, err := httpjson.Page(r, defaultPerPage, maxPerPage)
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		activeOnly, err := httpjson.QueryBool(r, "active_only", true)
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}

		items, total, err := svc.List(r.Context(), ListInput{
			ActiveOnly: activeOnly,
			Search:     r.URL.Query().Get("search"),
			Page:       page,
			PerPage:    perPage,
		})
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}

		out := make([]FemaleResponse, 0, len(items))
		for _, f := range items {
			out = append(out, ToResponse(f))
		}

		httpjson.WriteJSON(w, http.StatusOK, listFemalesResponse{
			Total:   total,
			Page:    page,
			PerPage: perPage,
			Females: out,
		})
	}
}

// getFemaleHandler godoc
// @Summary Detalle de hembra
// @Tags females
// @Produce json
// @Param femaleID path int true "ID de la hembra"
// @Success 200 {object} FemaleResponse
// @Failure 400 {object} httpjson.ErrorResponse
// @Failure 404 {object} httpjson.ErrorResponse
// @Router /females/{femaleID} [get]
func getFemaleHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "femaleID"), 10, 64)
		if err != nil {
			httpjson.WriteError(w, r, apperr.Validation("female id must be an integer"))
			return
		}

		f, err := svc.GetByID(r.Context(), id)
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}

		httpjson.WriteJSON(w, http.StatusOK, ToResponse(f))
	}
}

func ToResponse(f Female) FemaleResponse {
	ix := f.Indices
	if ix == nil {
		ix = genetics.Indices{}
	}
	return FemaleResponse{
		ID:          f.ID,
		RegID:       f.RegID,
		InternalID:  f.InternalID,
		Name:        f.Name,
		Breed:       f.Breed,
		BirthDate:   f.BirthDate,
		Indices:     ix,
		MainIndices: ix.Pick(genetics.MainIndices...),
		Active:      f.Active,
		Notes:       f.Notes,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}
