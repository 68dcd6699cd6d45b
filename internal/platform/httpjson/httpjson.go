// Package httpjson agrupa los helpers de request/response JSON de los handlers.
package httpjson

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"

	"herd-mating/internal/platform/apperr"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

const maxOffset = math.MaxInt32

// ErrorResponse es el cuerpo de toda respuesta no-2xx.
type ErrorResponse struct {
	Error string `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteMessage(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, ErrorResponse{Error: msg})
}

// StatusFor traduce el kind del error a un status HTTP.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperr.ErrTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// WriteError escribe {"error": ...}. Los 5xx se loguean con la causa real
// y al cliente solo le llega "internal error".
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError && status != http.StatusGatewayTimeout {
		zerolog.Ctx(r.Context()).Error().
			Err(err).
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("path", r.URL.Path).
			Msg("request failed")
		WriteMessage(w, status, "internal error")
		return
	}
	WriteMessage(w, status, apperr.Message(err))
}

// DecodeStrict decodifica el body rechazando campos desconocidos.
func DecodeStrict(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperr.Validation("invalid json: %v", err)
	}
	return nil
}

// Page lee page/per_page de la query. page arranca en 1; per_page se limita a maxPerPage.
func Page(r *http.Request, defPerPage, maxPerPage int) (page, perPage int, err error) {
	page, perPage = 1, defPerPage
	q := r.URL.Query()
	if v := q.Get("page"); v != "" {
		page, err = strconv.Atoi(v)
		if err != nil || page < 1 {
			return 0, 0, apperr.Validation("page must be a positive integer")
		}
	}
	if v := q.Get("per_page"); v != "" {
		perPage, err = strconv.Atoi(v)
		if err != nil || perPage < 1 {
			return 0, 0, apperr.Validation("per_page must be a positive integer")
		}
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	// el offset (page-1)*perPage tiene que entrar en un int32 para el LIMIT/OFFSET de SQL
	if page-1 > maxOffset/perPage {
		return 0, 0, apperr.Validation("page is out of range")
	}
	return page, perPage, nil
}

func QueryBool(r *http.Request, name string, def bool) (bool, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, apperr.Validation("%s must be a boolean", name)
	}
	return b, nil
}

// QueryFloat devuelve nil si el parámetro no vino.
func QueryFloat(r *http.Request, name string) (*float64, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, apperr.Validation("%s must be a number", name)
	}
	return &f, nil
}
