package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"herd-mating/internal/adapters/storage"
	"herd-mating/internal/config"
	"herd-mating/internal/domain/bulls"
	"herd-mating/internal/domain/females"
	"herd-mating/internal/domain/genetics"
	"herd-mating/internal/router"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func apiServer(t *testing.T) *httptest.Server {
	t.Helper()
	ctx := context.Background()
	repos := storage.Memory()
	now := time.Now().UTC()

	_, err := repos.Females.Create(ctx, females.Female{
		RegID: "HOL-F1", Name: "Mimosa", Active: true, CreatedAt: now, UpdatedAt: now,
		Indices: genetics.Indices{"genomic_inbreeding": 4},
	})
	require.NoError(t, err)
	_, err = repos.Bulls.Create(ctx, bulls.Bull{
		Code: "B1", Available: true, CreatedAt: now, UpdatedAt: now,
		Indices: genetics.Indices{"gfi": 8, "milk": 1000},
	})
	require.NoError(t, err)

	ts := httptest.NewServer(router.NewRouter(router.Options{Config: config.Defaults(), Repos: &repos}))
	t.Cleanup(ts.Close)
	return ts
}

func TestRecommend_PrintsRanking(t *testing.T) {
	ts := apiServer(t)

	out, err := execute(t, "recommend", "--api", ts.URL, "--females", "1", "--top-n", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Mimosa [HOL-F1]")
	assert.Contains(t, out, "B1")
	assert.Contains(t, out, "4.00%")
}

func TestRecommend_ZeroCeiling(t *testing.T) {
	ts := apiServer(t)

	out, err := execute(t, "recommend", "--api", ts.URL, "--females", "1", "--max-inbreeding", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "sin toros bajo el límite")
}

func TestRecommend_ServerError(t *testing.T) {
	ts := apiServer(t)

	_, err := execute(t, "recommend", "--api", ts.URL, "--females", "77")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "(404)"), err.Error())
	assert.Contains(t, err.Error(), "female 77 not found")
}

func TestRecommend_RequiresFemales(t *testing.T) {
	_, err := execute(t, "recommend", "--api", "http://localhost:1")
	assert.Error(t, err)
}

func TestMigrate_SQLite(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "herd.db"))

	out, err := execute(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "sqlite schema up to date")

	// idempotente
	_, err = execute(t, "migrate")
	require.NoError(t, err)
}

func TestMigrate_MemoryFails(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")

	_, err := execute(t, "migrate")
	assert.Error(t, err)
}
