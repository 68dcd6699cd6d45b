// Package metrics expone los contadores Prometheus del servicio.
//
// Cada router arma su propio Registry: así los tests pueden levantar varios
// servidores en el mismo proceso sin choques de registro duplicado.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "herd_mating"

type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	batchRuns       *prometheus.CounterVec
	batchDuration   prometheus.Histogram
	batchCandidates prometheus.Histogram
	matingsSaved    *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern, method and status.",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		batchRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_runs_total",
			Help:      "Batch recommendation runs by outcome.",
		}, []string{"outcome"}),
		batchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "Time spent ranking a batch.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		batchCandidates: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_candidates_per_female",
			Help:      "Candidates returned per female after the inbreeding ceiling.",
			Buckets:   prometheus.LinearBuckets(0, 1, 11),
		}),
		matingsSaved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matings_saved_total",
			Help:      "Persisted matings by type.",
		}, []string{"type"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.batchRuns,
		m.batchDuration,
		m.batchCandidates,
		m.matingsSaved,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware registra requests usando el route pattern de chi (no el path crudo,
// para no explotar la cardinalidad con ids).
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.httpRequests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

// ObserveBatch implementa matings.Recorder.
func (m *Metrics) ObserveBatch(outcome string, d time.Duration, candidatesPerFemale []int) {
	m.batchRuns.WithLabelValues(outcome).Inc()
	m.batchDuration.Observe(d.Seconds())
	for _, n := range candidatesPerFemale {
		m.batchCandidates.Observe(float64(n))
	}
}

// MatingsSaved implementa matings.Recorder.
func (m *Metrics) MatingsSaved(matingType string, n int) {
	m.matingsSaved.WithLabelValues(matingType).Add(float64(n))
}
