package middleware_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"herd-mating/internal/middleware"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestUserContext(t *testing.T) {
	var got string
	var ok bool
	h := middleware.UserContext("Pedro")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = middleware.GetUser(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	h.ServeHTTP(httptest.NewRecorder(), r)
	assert.True(t, ok)
	assert.Equal(t, "Pedro", got)

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(middleware.UserHeader, "  Ana ")
	h.ServeHTTP(httptest.NewRecorder(), r)
	assert.Equal(t, "Ana", got)
}

func TestUserContext_NoDefault(t *testing.T) {
	ok := true
	h := middleware.UserContext("")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok = middleware.GetUser(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, ok)
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	var ctxLogged bool
	h := chimw.RequestID(middleware.RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		zerolog.Ctx(r.Context()).Debug().Msg("inside")
		ctxLogged = true
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("hi"))
	})))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/matings/batch", nil))

	assert.True(t, ctxLogged)
	out := buf.String()
	assert.Contains(t, out, `"method":"POST"`)
	assert.Contains(t, out, `"path":"/matings/batch"`)
	assert.Contains(t, out, `"status":418`)
	assert.Contains(t, out, `"bytes":2`)
	assert.Contains(t, out, `"request_id":`)
	assert.Contains(t, out, `"message":"http request"`)
}
