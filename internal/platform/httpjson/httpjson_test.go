package httpjson_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"herd-mating/internal/platform/apperr"
	"herd-mating/internal/platform/httpjson"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError_StatusAndMessage(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{apperr.Validation("top_n must be > 0"), http.StatusBadRequest, "top_n must be > 0"},
		{fmt.Errorf("load: %w", apperr.NotFound("female %d not found", 7)), http.StatusNotFound, "female 7 not found"},
		{apperr.ErrConflict, http.StatusConflict, "conflict"},
		{apperr.Timeout("batch exceeded 30s"), http.StatusGatewayTimeout, "batch exceeded 30s"},
		{errors.New("pq: connection refused"), http.StatusInternalServerError, "internal error"},
	}

	for _, tc := range cases {
		var logs bytes.Buffer
		log := zerolog.New(&logs)
		r := httptest.NewRequest(http.MethodGet, "/matings", nil)
		r = r.WithContext(log.WithContext(r.Context()))
		w := httptest.NewRecorder()

		httpjson.WriteError(w, r, tc.err)

		assert.Equal(t, tc.status, w.Code, tc.err.Error())
		var body httpjson.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, tc.msg, body.Error)

		if tc.status == http.StatusInternalServerError {
			assert.Contains(t, logs.String(), "connection refused")
		} else {
			assert.Empty(t, logs.String())
		}
	}
}

func TestDecodeStrict_RejectsUnknownFields(t *testing.T) {
	var v struct {
		FemaleIDs []int64 `json:"female_ids"`
	}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"female_ids":[1],"foo":1}`))
	err := httpjson.DecodeStrict(r, &v)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"female_ids":[1,2]}`))
	require.NoError(t, httpjson.DecodeStrict(r, &v))
	assert.Equal(t, []int64{1, 2}, v.FemaleIDs)
}

func TestPage(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/females", nil)
	page, per, err := httpjson.Page(r, 50, 200)
	require.NoError(t, err)
	assert.Equal(t, 1, page)
	assert.Equal(t, 50, per)

	r = httptest.NewRequest(http.MethodGet, "/females?page=3&per_page=999", nil)
	page, per, err = httpjson.Page(r, 50, 200)
	require.NoError(t, err)
	assert.Equal(t, 3, page)
	assert.Equal(t, 200, per)

	r = httptest.NewRequest(http.MethodGet, "/females?page=10737419&per_page=200", nil)
	page, _, err = httpjson.Page(r, 50, 200)
	require.NoError(t, err)
	assert.Equal(t, 10737419, page)

	for _, q := range []string{
		"page=0", "page=x", "per_page=-1",
		"page=9223372036854775807",
		"page=10737420&per_page=200",
	} {
		r = httptest.NewRequest(http.MethodGet, "/females?"+q, nil)
		_, _, err = httpjson.Page(r, 50, 200)
		assert.ErrorIs(t, err, apperr.ErrValidation, q)
	}
}

func TestQueryParams(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/bulls?available_only=false&min_milk=800.5&max_gfi=NaN&x=maybe", nil)

	b, err := httpjson.QueryBool(r, "available_only", true)
	require.NoError(t, err)
	assert.False(t, b)

	b, err = httpjson.QueryBool(r, "missing", true)
	require.NoError(t, err)
	assert.True(t, b)

	_, err = httpjson.QueryBool(r, "x", true)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	f, err := httpjson.QueryFloat(r, "min_milk")
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, 800.5, *f)

	f, err = httpjson.QueryFloat(r, "min_net_merit")
	require.NoError(t, err)
	assert.Nil(t, f)

	_, err = httpjson.QueryFloat(r, "max_gfi")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}
