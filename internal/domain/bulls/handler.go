package bulls

import (
	"net/http"
	"time"

	"herd-mating/internal/domain/genetics"
	"herd-mating/internal/platform/httpjson"

	"github.com/go-chi/chi/v5"
)

const (
	defaultPerPage = 50
	maxPerPage     = 200
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/bulls", func(br chi.Router) {
		br.Get("/", listBullsHandler(svc))
		br.Post("/", createBullHandler(svc))
		br.Get("/{code}", getBullHandler(svc))
	})
}

type createBullRequest struct {
	Code           string             `json:"code"`
	Name           string             `json:"name"`
	NAABCode       string             `json:"naab_code"`
	Source         string             `json:"source"`
	Available      *bool              `json:"available"`
	PricePerDose   *float64           `json:"price_per_dose"`
	DosesAvailable int                `json:"doses_available"`
	BetaCasein     string             `json:"beta_casein"`
	KappaCasein    string             `json:"kappa_casein"`
	Indices        map[string]float64 `json:"indices"`
}

type BullResponse struct {
	ID             int64            `json:"id"`
	Code           string           `json:"code"`
	Name           string           `json:"name"`
	NAABCode       string           `json:"naab_code"`
	Source         string           `json:"source"`
	Available      bool             `json:"available"`
	PricePerDose   *float64         `json:"price_per_dose,omitempty"`
	DosesAvailable int              `json:"doses_available"`
	BetaCasein     string           `json:"beta_casein"`
	KappaCasein    string           `json:"kappa_casein"`
	Indices        genetics.Indices `json:"indices"`
	MainIndices    genetics.Indices `json:"main_indices"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

type listBullsResponse struct {
	Total   int            `json:"total"`
	Page    int            `json:"page"`
	PerPage int            `json:"per_page"`
	Bulls   []BullResponse `json:"bulls"`
}

// createBullHandler godoc
// @Summary Registrar toro
// @Description Alta de un toro en el catálogo. code es único.
// @Tags bulls
// @Accept json
// @Produce json
// @Param payload body createBullRequest true "Datos del toro"
// @Success 201 {object} BullResponse
// @Failure 400 {object} httpjson.ErrorResponse
// @Failure 409 {object} httpjson.ErrorResponse "code duplicado"
// @Router /bulls [post]
func createBullHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createBullRequest
		if err := httpjson.DecodeStrict(r, &req); err != nil {
			httpjson.WriteError(w, r, err)
			return
		}

		b, err := svc.Create(r.Context(), CreateInput{
			Code:           req.Code,
			Name:           req.Name,
			NAABCode:       req.NAABCode,
			Source:         req.Source,
			Available:      req.Available,
			PricePerDose:   req.PricePerDose,
			DosesAvailable: req.DosesAvailable,
			BetaCasein:     req.BetaCasein,
			KappaCasein:    req.KappaCasein,
			Indices:        req.Indices,
		})
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}

		httpjson.WriteJSON(w, http.StatusCreated, ToResponse(b))
	}
}

// listBullsHandler godoc
// @Summary Listar toros
// @Description Catálogo paginado. Por defecto solo toros disponibles. Admite los mismos filtros que el batch de apareamientos.
// @Tags bulls
// @Produce json
// @Param page query int false "Página (desde 1)"
// @Param per_page query int false "Tamaño de página (máx 200). Por defecto 50"
// @Param available_only query bool false "Solo disponibles. Por defecto true"
// @Param search query string false "Texto sobre código o nombre"
// @Param min_milk query number false "Leche mínima"
// @Param min_net_merit query number false "Net Merit mínimo"
// @Param min_productive_life query number false "Vida productiva mínima"
// @Param max_gfi query number false "GFI máximo"
// @Param beta_casein query string false "Genotipo beta caseína (ej: A2A2)"
// @Param source query string false "Central"
// @Param sort_by query string false "Índice para ordenar desc (ej: net_merit)"
// @Success 200 {object} listBullsResponse
// @Failure 400 {object} httpjson.ErrorResponse
// @Router /bulls [get]
func listBullsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, perPage, err := httpjson.Page(r, defaultPerPage, maxPerPage)
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		availableOnly, err := httpjson.QueryBool(r, "available_only", true)
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		filters, err := filtersFromQuery(r)
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}

		q := r.URL.Query()
		items, total, err := svc.List(r.Context(), ListInput{
			AvailableOnly: availableOnly,
			Search:        q.Get("search"),
			Filters:       filters,
			SortBy:        q.Get("sort_by"),
			Page:          page,
			PerPage:       perPage,
		})
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}

		out := make([]BullResponse, 0, len(items))
		for _, b := range items {
			out = append(out, ToResponse(b))
		}

		httpjson.WriteJSON(w, http.StatusOK, listBullsResponse{
			Total:   total,
			Page:    page,
			PerPage: perPage,
			Bulls:   out,
		})
	}
}

// getBullHandler godoc
// @Summary Detalle de toro
// @Tags bulls
// @Produce json
// @Param code path string true "Código del toro"
// @Success 200 {object} BullResponse
// @Failure 404 {object} httpjson.ErrorResponse
// @Router /bulls/{code} [get]
func getBullHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := svc.GetByCode(r.Context(), chi.URLParam(r, "code"))
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, ToResponse(b))
	}
}

func filtersFromQuery(r *http.Request) (Filters, error) {
	var f Filters
	var err error
	if f.MinMilk, err = httpjson.QueryFloat(r, "min_milk"); err != nil {
		return Filters{}, err
	}
	if f.MinNetMerit, err = httpjson.QueryFloat(r, "min_net_merit"); err != nil {
		return Filters{}, err
	}
	if f.MinProductiveLife, err = httpjson.QueryFloat(r, "min_productive_life"); err != nil {
		return Filters{}, err
	}
	if f.MaxGFI, err = httpjson.QueryFloat(r, "max_gfi"); err != nil {
		return Filters{}, err
	}
	q := r.URL.Query()
	f.BetaCasein = q.Get("beta_casein")
	f.Source = q.Get("source")
	return f, nil
}

func ToResponse(b Bull) BullResponse {
	ix := b.Indices
	if ix == nil {
		ix = genetics.Indices{}
	}
	return BullResponse{
		ID:             b.ID,
		Code:           b.Code,
		Name:           b.Name,
		NAABCode:       b.NAABCode,
		Source:         b.Source,
		Available:      b.Available,
		PricePerDose:   b.PricePerDose,
		DosesAvailable: b.DosesAvailable,
		BetaCasein:     b.BetaCasein,
		KappaCasein:    b.KappaCasein,
		Indices:        ix,
		MainIndices:    ix.Pick(genetics.MainIndices...),
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
}
