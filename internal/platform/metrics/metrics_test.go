package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/matings/{matingID}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"1", "2", "3"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/matings/"+id, nil))
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("/matings/{matingID}", "GET", "404")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.httpRequests))
}

func TestRecorder(t *testing.T) {
	m := New()

	m.ObserveBatch("ok", 20*time.Millisecond, []int{5, 0, 3})
	m.ObserveBatch("timeout", time.Second, nil)
	m.MatingsSaved("batch", 8)
	m.MatingsSaved("manual", 1)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.batchRuns.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.batchRuns.WithLabelValues("timeout")))
	assert.Equal(t, 8.0, testutil.ToFloat64(m.matingsSaved.WithLabelValues("batch")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.matingsSaved.WithLabelValues("manual")))
}

func TestHandler_Exposition(t *testing.T) {
	m := New()
	m.MatingsSaved("batch", 2)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `herd_mating_matings_saved_total{type="batch"} 2`))
	assert.Contains(t, string(body), "go_goroutines")
}
