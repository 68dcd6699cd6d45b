package matings

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"herd-mating/internal/domain/bulls"
	"herd-mating/internal/domain/females"
	"herd-mating/internal/domain/genetics"
	"herd-mating/internal/middleware"
	"herd-mating/internal/platform/apperr"
	"herd-mating/internal/platform/httpjson"

	"github.com/go-chi/chi/v5"
)

const (
	defaultPerPage = 20
	maxPerPage     = 200
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/matings", func(mr chi.Router) {
		mr.Post("/batch", batchHandler(svc))
		mr.Post("/manual", manualHandler(svc))
		mr.Get("/", listMatingsHandler(svc))
		mr.Get("/{matingID}", getMatingHandler(svc))
		mr.Put("/{matingID}", updateMatingHandler(svc))
	})
}

// -------------------------
// Requests / responses
// -------------------------

type batchRequest struct {
	FemaleIDs     []int64            `json:"female_ids"`
	MaxInbreeding *float64           `json:"max_inbreeding"`
	TopN          *int               `json:"top_n"`
	Filters       bulls.Filters      `json:"filters"`
	Priorities    map[string]float64 `json:"priorities"`
	Save          bool               `json:"save"`
	BatchName     string             `json:"batch_name"`
	User          string             `json:"user"`
}

type manualRequest struct {
	FemaleID   int64  `json:"female_id"`
	BullID     int64  `json:"bull_id"`
	Save       *bool  `json:"save"`        // default true
	MatingDate string `json:"mating_date"` // YYYY-MM-DD o RFC3339, opcional
	Notes      string `json:"notes"`
	User       string `json:"user"`
}

type FemaleSummary struct {
	ID          int64            `json:"id"`
	RegID       string           `json:"reg_id"`
	InternalID  string           `json:"internal_id"`
	Name        string           `json:"name"`
	MainIndices genetics.Indices `json:"main_indices"`
}

type BullSummary struct {
	ID          int64            `json:"id"`
	Code        string           `json:"code"`
	Name        string           `json:"name"`
	Source      string           `json:"source"`
	MainIndices genetics.Indices `json:"main_indices"`
}

type CandidateResponse struct {
	Rank           int                     `json:"rank"`
	Bull           BullSummary             `json:"bull"`
	Score          float64                 `json:"score"`
	BaseScore      float64                 `json:"base_score"`
	Grade          string                  `json:"grade"`
	Inbreeding     genetics.Inbreeding     `json:"inbreeding"`
	PPPVSummary    map[string]float64      `json:"pppv_summary"`
	Recommendation genetics.Recommendation `json:"recommendation"`
	MatingID       *int64                  `json:"mating_id,omitempty"`
}

type FemaleResultResponse struct {
	Female   FemaleSummary       `json:"female"`
	TopBulls []CandidateResponse `json:"top_bulls"`
}

type BatchSummaryResponse struct {
	TotalFemales       int                `json:"total_females"`
	TotalBullsAnalyzed int                `json:"total_bulls_analyzed"`
	TopN               int                `json:"top_n"`
	PrioritiesUsed     map[string]float64 `json:"priorities_used"`
	MaxInbreeding      float64            `json:"max_inbreeding"`
	BatchID            string             `json:"batch_id,omitempty"`
	BatchName          string             `json:"batch_name,omitempty"`
	Saved              bool               `json:"saved"`
}

type BatchResponse struct {
	Summary BatchSummaryResponse   `json:"summary"`
	Results []FemaleResultResponse `json:"results"`
}

type AnalysisResponse struct {
	PPPV           map[string]genetics.PPPVEntry  `json:"pppv"`
	Inbreeding     genetics.Inbreeding            `json:"inbreeding"`
	Compatibility  genetics.Compatibility         `json:"compatibility"`
	Predictions    map[string]genetics.Prediction `json:"predictions"`
	Recommendation genetics.Recommendation        `json:"recommendation"`
}

type ManualResponse struct {
	Female   FemaleSummary    `json:"female"`
	Bull     BullSummary      `json:"bull"`
	Analysis AnalysisResponse `json:"analysis"`
	Mating   MatingResponse   `json:"mating"`
	MatingID *int64           `json:"mating_id,omitempty"`
	Saved    bool             `json:"saved"`
}

type MatingResponse struct {
	ID                  int64              `json:"id,omitempty"`
	FemaleID            int64              `json:"female_id"`
	BullID              int64              `json:"bull_id"`
	BatchID             string             `json:"batch_id,omitempty"`
	Type                Type               `json:"mating_type"`
	MatingDate          time.Time          `json:"mating_date"`
	ExpectedCalvingDate time.Time          `json:"expected_calving_date"`
	ActualCalvingDate   *time.Time         `json:"actual_calving_date,omitempty"`
	PredictedPPPV       map[string]float64 `json:"predicted_pppv"`
	PredictedInbreeding float64            `json:"predicted_inbreeding"`
	CompatibilityScore  float64            `json:"compatibility_score"`
	Status              Status             `json:"status"`
	Success             *bool              `json:"success"`
	CalfID              string             `json:"calf_id,omitempty"`
	CalfSex             string             `json:"calf_sex,omitempty"`
	ActualGeneticData   map[string]float64 `json:"actual_genetic_data,omitempty"`
	Notes               string             `json:"notes"`
	CreatedBy           string             `json:"created_by"`
	CreatedAt           time.Time          `json:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at"`
	Saved               bool               `json:"saved"`
}

type listMatingsResponse struct {
	Total   int              `json:"total"`
	Page    int              `json:"page"`
	PerPage int              `json:"per_page"`
	Matings []MatingResponse `json:"matings"`
}

// -------------------------
// Handlers
// -------------------------

// batchHandler godoc
// @Summary Recomendación de apareamientos en lote
// @Description Para cada hembra devuelve hasta top_n toros disponibles ordenados por score desc y consanguinidad asc. Excluye pares con consanguinidad >= max_inbreeding. Con save=true persiste todos los pares devueltos como apareamientos planificados de un mismo lote.
// @Tags matings
// @Accept json
// @Produce json
// @Param X-User header string false "Operador que planifica (created_by)"
// @Param payload body batchRequest true "female_ids (1-100), max_inbreeding (default 6.0), top_n (default 5), filters, priorities, save"
// @Success 200 {object} BatchResponse
// @Failure 400 {object} httpjson.ErrorResponse
// @Failure 404 {object} httpjson.ErrorResponse "hembra inexistente"
// @Failure 504 {object} httpjson.ErrorResponse "el lote excedió el tiempo máximo"
// @Router /matings/batch [post]
func batchHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req batchRequest
		if err := httpjson.DecodeStrict(r, &req); err != nil {
			httpjson.WriteError(w, r, err)
			return
		}

		res, err := svc.Batch(r.Context(), BatchInput{
			FemaleIDs:     req.FemaleIDs,
			MaxInbreeding: req.MaxInbreeding,
			TopN:          req.TopN,
			Filters:       req.Filters,
			Priorities:    req.Priorities,
			Save:          req.Save,
			BatchName:     req.BatchName,
			User:          requestUser(r, req.User),
		})
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}

		httpjson.WriteJSON(w, http.StatusOK, ToBatchResponse(res))
	}
}

// manualHandler godoc
// @Summary Apareamiento manual
// @Description Análisis completo de un par hembra/toro (PPPV, consanguinidad, compatibilidad, predicciones, recomendación) sin ranking ni límite de consanguinidad. Con save=true (default) queda registrado como planificado.
// @Tags matings
// @Accept json
// @Produce json
// @Param X-User header string false "Operador que planifica (created_by)"
// @Param payload body manualRequest true "female_id, bull_id, save"
// @Success 201 {object} ManualResponse "guardado"
// @Success 200 {object} ManualResponse "save=false"
// @Failure 400 {object} httpjson.ErrorResponse
// @Failure 404 {object} httpjson.ErrorResponse "hembra o toro inexistente"
// @Router /matings/manual [post]
func manualHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req manualRequest
		if err := httpjson.DecodeStrict(r, &req); err != nil {
			httpjson.WriteError(w, r, err)
			return
		}

		var date *time.Time
		if strings.TrimSpace(req.MatingDate) != "" {
			t, err := parseDate(req.MatingDate)
			if err != nil {
				httpjson.WriteError(w, r, apperr.Validation("mating_date must be YYYY-MM-DD or RFC3339"))
				return
			}
			date = &t
		}

		res, err := svc.Manual(r.Context(), ManualInput{
			FemaleID:   req.FemaleID,
			BullID:     req.BullID,
			Save:       req.Save,
			MatingDate: date,
			Notes:      req.Notes,
			User:       requestUser(r, req.User),
		})
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}

		status := http.StatusOK
		if res.Mating.Saved {
			status = http.StatusCreated
		}
		httpjson.WriteJSON(w, status, ToManualResponse(res))
	}
}

// listMatingsHandler godoc
// @Summary Listar apareamientos
// @Description Historial paginado, más recientes primero.
// @Tags matings
// @Produce json
// @Param status query string false "planned, confirmed, born, failed"
// @Param female_id query int false "Filtrar por hembra"
// @Param bull_id query int false "Filtrar por toro"
// @Param page query int false "Página (desde 1)"
// @Param per_page query int false "Tamaño de página (máx 200). Por defecto 20"
// @Success 200 {object} listMatingsResponse
// @Failure 400 {object} httpjson.ErrorResponse
// @Router /matings [get]
func listMatingsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, perPage, err := httpjson.Page(r, defaultPerPage, maxPerPage)
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}

		q := r.URL.Query()
		femaleID, err := queryID(q.Get("female_id"), "female_id")
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		bullID, err := queryID(q.Get("bull_id"), "bull_id")
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}

		items, total, err := svc.List(r.Context(), ListInput{
			Status:   q.Get("status"),
			FemaleID: femaleID,
			BullID:   bullID,
			Page:     page,
			PerPage:  perPage,
		})
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}

		out := make([]MatingResponse, 0, len(items))
		for _, m := range items {
			out = append(out, ToMatingResponse(m))
		}

		httpjson.WriteJSON(w, http.StatusOK, listMatingsResponse{
			Total:   total,
			Page:    page,
			PerPage: perPage,
			Matings: out,
		})
	}
}

// getMatingHandler godoc
// @Summary Detalle de apareamiento
// @Tags matings
// @Produce json
// @Param matingID path int true "ID del apareamiento"
// @Success 200 {object} MatingResponse
// @Failure 400 {object} httpjson.ErrorResponse
// @Failure 404 {object} httpjson.ErrorResponse
// @Router /matings/{matingID} [get]
func getMatingHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}

		m, err := svc.GetByID(r.Context(), id)
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}

		httpjson.WriteJSON(w, http.StatusOK, ToMatingResponse(m))
	}
}

// updatableFields son las únicas claves que acepta PUT /matings/{id}.
var updatableFields = map[string]bool{
	"status":              true,
	"success":             true,
	"actual_calving_date": true,
	"actual_genetic_data": true,
	"calf_id":             true,
	"calf_sex":            true,
	"notes":               true,
}

// updateMatingHandler godoc
// @Summary Registrar resultado de un apareamiento
// @Description Actualización parcial. Solo acepta status, success, actual_calving_date, actual_genetic_data, calf_id, calf_sex y notes; cualquier otro campo es 400. El estado solo avanza: planned -> confirmed|failed, confirmed -> born|failed.
// @Tags matings
// @Accept json
// @Produce json
// @Param matingID path int true "ID del apareamiento"
// @Param payload body object true "Campos a actualizar"
// @Success 200 {object} MatingResponse
// @Failure 400 {object} httpjson.ErrorResponse
// @Failure 404 {object} httpjson.ErrorResponse
// @Router /matings/{matingID} [put]
func updateMatingHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}

		// Mapa crudo para detectar presencia de cada campo.
		var raw map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			httpjson.WriteError(w, r, apperr.Validation("invalid json"))
			return
		}

		in, err := parseUpdate(raw)
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}

		m, err := svc.Update(r.Context(), id, in)
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}

		httpjson.WriteJSON(w, http.StatusOK, ToMatingResponse(m))
	}
}

func parseUpdate(raw map[string]json.RawMessage) (UpdateInput, error) {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !updatableFields[k] {
			return UpdateInput{}, apperr.Validation("field %q cannot be updated", k)
		}
	}

	var in UpdateInput
	for _, k := range keys {
		v := raw[k]
		if string(v) == "null" {
			continue
		}

		var err error
		switch k {
		case "status":
			var s Status
			err = json.Unmarshal(v, &s)
			in.Status = &s
		case "success":
			var b bool
			err = json.Unmarshal(v, &b)
			in.Success = &b
		case "actual_calving_date":
			var s string
			if err = json.Unmarshal(v, &s); err == nil {
				var t time.Time
				if t, err = parseDate(s); err == nil {
					in.ActualCalvingDate = &t
				}
			}
		case "actual_genetic_data":
			err = json.Unmarshal(v, &in.ActualGeneticData)
		case "calf_id":
			var s string
			err = json.Unmarshal(v, &s)
			in.CalfID = &s
		case "calf_sex":
			var s string
			err = json.Unmarshal(v, &s)
			in.CalfSex = &s
		case "notes":
			var s string
			err = json.Unmarshal(v, &s)
			in.Notes = &s
		}
		if err != nil {
			return UpdateInput{}, apperr.Validation("invalid value for %q", k)
		}
	}
	return in, nil
}

// -------------------------
// helpers
// -------------------------

func requestUser(r *http.Request, bodyUser string) string {
	if u := strings.TrimSpace(bodyUser); u != "" {
		return u
	}
	u, _ := middleware.GetUser(r.Context())
	return u
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "matingID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("mating id must be a positive integer")
	}
	return id, nil
}

func queryID(v, name string) (int64, error) {
	if v == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("%s must be a positive integer", name)
	}
	return id, nil
}

func femaleSummary(f females.Female) FemaleSummary {
	return FemaleSummary{
		ID:          f.ID,
		RegID:       f.RegID,
		InternalID:  f.InternalID,
		Name:        f.DisplayName(),
		MainIndices: f.Indices.Pick(genetics.MainIndices...),
	}
}

func bullSummary(b bulls.Bull) BullSummary {
	return BullSummary{
		ID:          b.ID,
		Code:        b.Code,
		Name:        b.DisplayName(),
		Source:      b.Source,
		MainIndices: b.Indices.Pick(genetics.MainIndices...),
	}
}

func ToBatchResponse(res BatchResult) BatchResponse {
	out := BatchResponse{
		Summary: BatchSummaryResponse{
			TotalFemales:       res.Summary.TotalFemales,
			TotalBullsAnalyzed: res.Summary.TotalBullsAnalyzed,
			TopN:               res.Summary.TopN,
			PrioritiesUsed:     res.Summary.PrioritiesUsed,
			MaxInbreeding:      res.Summary.MaxInbreeding,
			BatchID:            res.Summary.BatchID,
			BatchName:          res.Summary.BatchName,
			Saved:              res.Summary.Saved,
		},
		Results: make([]FemaleResultResponse, 0, len(res.Results)),
	}

	for _, fr := range res.Results {
		top := make([]CandidateResponse, 0, len(fr.Candidates))
		for _, c := range fr.Candidates {
			comp := c.Analysis.Compatibility
			top = append(top, CandidateResponse{
				Rank:           c.Rank,
				Bull:           bullSummary(c.Bull),
				Score:          comp.Score,
				BaseScore:      comp.BaseScore,
				Grade:          comp.Grade,
				Inbreeding:     comp.Inbreeding,
				PPPVSummary:    genetics.Summarize(c.Analysis.PPPV),
				Recommendation: c.Analysis.Recommendation,
				MatingID:       c.MatingID,
			})
		}
		out.Results = append(out.Results, FemaleResultResponse{
			Female:   femaleSummary(fr.Female),
			TopBulls: top,
		})
	}
	return out
}

func ToManualResponse(res ManualResult) ManualResponse {
	out := ManualResponse{
		Female: femaleSummary(res.Female),
		Bull:   bullSummary(res.Bull),
		Analysis: AnalysisResponse{
			PPPV:           res.Analysis.PPPV,
			Inbreeding:     res.Analysis.Compatibility.Inbreeding,
			Compatibility:  res.Analysis.Compatibility,
			Predictions:    res.Analysis.Predictions,
			Recommendation: res.Analysis.Recommendation,
		},
		Mating: ToMatingResponse(res.Mating),
		Saved:  res.Mating.Saved,
	}
	if res.Mating.Saved {
		id := res.Mating.ID
		out.MatingID = &id
	}
	return out
}

func ToMatingResponse(m Mating) MatingResponse {
	pppv := m.PredictedPPPV
	if pppv == nil {
		pppv = map[string]float64{}
	}
	return MatingResponse{
		ID:                  m.ID,
		FemaleID:            m.FemaleID,
		BullID:              m.BullID,
		BatchID:             m.BatchID,
		Type:                m.Type,
		MatingDate:          m.MatingDate,
		ExpectedCalvingDate: m.ExpectedCalvingDate,
		ActualCalvingDate:   m.ActualCalvingDate,
		PredictedPPPV:       pppv,
		PredictedInbreeding: m.PredictedInbreeding,
		CompatibilityScore:  m.CompatibilityScore,
		Status:              m.Status,
		Success:             m.Success,
		CalfID:              m.CalfID,
		CalfSex:             m.CalfSex,
		ActualGeneticData:   m.ActualGeneticData,
		Notes:               m.Notes,
		CreatedBy:           m.CreatedBy,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
		Saved:               m.Saved,
	}
}
