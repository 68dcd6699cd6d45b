package dashboard

import (
	"net/http"
	"strconv"

	"herd-mating/internal/platform/apperr"
	"herd-mating/internal/platform/httpjson"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/dashboard-full", dashboardHandler(svc))
	r.Route("/analytics", func(ar chi.Router) {
		ar.Get("/matings", matingAnalysisHandler(svc))
		ar.Get("/distributions/{index}", distributionHandler(svc))
		ar.Get("/bulls/performance", bullPerformanceHandler(svc))
		ar.Get("/accuracy", accuracyHandler(svc))
	})
}

// dashboardHandler godoc
// @Summary Dashboard del rebaño
// @Description Totales de hembras, toros y apareamientos, tasa de éxito, medias genéticas de las hembras activas y los 5 toros más usados.
// @Tags analytics
// @Produce json
// @Success 200 {object} Dashboard
// @Failure 500 {object} httpjson.ErrorResponse
// @Router /dashboard-full [get]
func dashboardHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := svc.Dashboard(r.Context())
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, d)
	}
}

// matingAnalysisHandler godoc
// @Summary Análisis de apareamientos
// @Description Conteo por status, tasa de éxito y bandas de compatibilidad y consanguinidad.
// @Tags analytics
// @Produce json
// @Success 200 {object} MatingAnalysis
// @Router /analytics/matings [get]
func matingAnalysisHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := svc.MatingAnalysis(r.Context())
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, a)
	}
}

// distributionHandler godoc
// @Summary Distribución de un índice
// @Description Estadísticas (count, min, max, media, cuartiles) e histograma de un índice genético de hembras o toros.
// @Tags analytics
// @Produce json
// @Param index path string true "Índice (milk, productive_life, ...)"
// @Param entity query string false "female (default) o bull"
// @Param bins query int false "Cantidad de bins (1-100, default 10)"
// @Success 200 {object} Distribution
// @Failure 400 {object} httpjson.ErrorResponse
// @Failure 404 {object} httpjson.ErrorResponse "sin datos para el índice"
// @Router /analytics/distributions/{index} [get]
func distributionHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in := DistributionInput{
			Index:  chi.URLParam(r, "index"),
			Entity: r.URL.Query().Get("entity"),
		}
		if v := r.URL.Query().Get("bins"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				httpjson.WriteError(w, r, apperr.Validation("bins must be a positive integer"))
				return
			}
			in.Bins = n
		}

		d, err := svc.Distribution(r.Context(), in)
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, d)
	}
}

// bullPerformanceHandler godoc
// @Summary Ranking de toros por uso
// @Description Top 20 toros por cantidad de apareamientos, con tasa de éxito y score medio.
// @Tags analytics
// @Produce json
// @Success 200 {object} PerformanceRanking
// @Router /analytics/bulls/performance [get]
func bullPerformanceHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.BullPerformance(r.Context())
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, p)
	}
}

// accuracyHandler godoc
// @Summary Predicho vs real
// @Description Para apareamientos con datos genéticos del ternero: MAE, RMSE, medias y correlación por índice.
// @Tags analytics
// @Produce json
// @Success 200 {object} Accuracy
// @Router /analytics/accuracy [get]
func accuracyHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := svc.PredictionAccuracy(r.Context())
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, a)
	}
}
