package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"herd-mating/internal/adapters/storage"
	"herd-mating/internal/client"
	"herd-mating/internal/config"
	"herd-mating/internal/domain/bulls"
	"herd-mating/internal/domain/females"
	"herd-mating/internal/domain/genetics"
	"herd-mating/internal/platform/httpclient"
	"herd-mating/internal/router"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAPI(t *testing.T) (*client.Client, int64) {
	t.Helper()
	ctx := context.Background()
	repos := storage.Memory()
	now := time.Now().UTC()

	fid, err := repos.Females.Create(ctx, females.Female{
		RegID: "HOL-F1", Active: true, CreatedAt: now, UpdatedAt: now,
		Indices: genetics.Indices{"genomic_inbreeding": 4, "milk": 500},
	})
	require.NoError(t, err)
	for _, b := range []bulls.Bull{
		{Code: "B1", Available: true, Indices: genetics.Indices{"gfi": 8, "milk": 1200}},
		{Code: "B2", Available: true, Indices: genetics.Indices{"gfi": 20, "milk": 2000}},
	} {
		b.CreatedAt, b.UpdatedAt = now, now
		_, err := repos.Bulls.Create(ctx, b)
		require.NoError(t, err)
	}

	ts := httptest.NewServer(router.NewRouter(router.Options{Config: config.Defaults(), Repos: &repos}))
	t.Cleanup(ts.Close)

	c, err := client.New(ts.URL, "Ana", 5*time.Second)
	require.NoError(t, err)
	return c, fid
}

func TestClient_BatchAndList(t *testing.T) {
	c, fid := newAPI(t)
	ctx := context.Background()

	res, err := c.Batch(ctx, client.BatchRequest{FemaleIDs: []int64{fid}, Save: true})
	require.NoError(t, err)
	require.Len(t, res.Results, 1)
	require.Len(t, res.Results[0].TopBulls, 1)
	assert.Equal(t, "B1", res.Results[0].TopBulls[0].Bull.Code)
	assert.Equal(t, 4.0, res.Results[0].TopBulls[0].Inbreeding.Expected)
	assert.True(t, res.Summary.Saved)

	list, err := c.ListMatings(ctx, client.ListMatingsParams{Status: "planned", FemaleID: fid})
	require.NoError(t, err)
	require.Equal(t, 1, list.Total)
	assert.Equal(t, "Ana", list.Matings[0].CreatedBy)

	m, err := c.UpdateMating(ctx, list.Matings[0].ID, map[string]any{"status": "confirmed"})
	require.NoError(t, err)
	assert.Equal(t, "confirmed", string(m.Status))

	got, err := c.GetMating(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.Status, got.Status)

	d, err := c.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, d.Summary.TotalMatings)
}

func TestClient_ManualEphemeral(t *testing.T) {
	c, fid := newAPI(t)
	save := false

	res, err := c.Manual(context.Background(), client.ManualRequest{FemaleID: fid, BullID: 2, Save: &save})
	require.NoError(t, err)
	assert.False(t, res.Saved)
	assert.Nil(t, res.MatingID)
	assert.Equal(t, 7.0, res.Analysis.Inbreeding.Expected)
}

func TestClient_TypedErrors(t *testing.T) {
	c, _ := newAPI(t)
	ctx := context.Background()

	_, err := c.Batch(ctx, client.BatchRequest{FemaleIDs: []int64{42}})
	var he *httpclient.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusNotFound, he.StatusCode)
	assert.Contains(t, he.Message, "42")

	_, err = c.Batch(ctx, client.BatchRequest{})
	assert.Equal(t, http.StatusBadRequest, httpclient.StatusCode(err))
}

func TestNew_RequiresBaseURL(t *testing.T) {
	_, err := client.New("", "", time.Second)
	assert.Error(t, err)
}
