package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "", cfg.APIPrefix)
	assert.Equal(t, 1000, cfg.GzipMinSize)
	assert.Equal(t, CatalogSourceFile, cfg.Catalog.Source)
	assert.Equal(t, 5000, cfg.Planner.SearchCap)
	assert.Equal(t, 100, cfg.Planner.ResponseCap)
	assert.Equal(t, 150, cfg.Planner.DirectCap)
	assert.Equal(t, 10*time.Minute, cfg.Planner.CacheTTL)
	assert.False(t, cfg.Admin.Enabled)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("API_PREFIX", "/api/v1/")
	t.Setenv("CORS_ORIGINS", "http://localhost:5173, http://127.0.0.1:5173")
	t.Setenv("PLANNER_SEARCH_CAP", "250")
	t.Setenv("PLANNER_CACHE_TTL", "not-a-duration")
	t.Setenv("CATALOG_SOURCE", "Postgres")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, []string{"http://localhost:5173", "http://127.0.0.1:5173"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 250, cfg.Planner.SearchCap)
	assert.Equal(t, 10*time.Minute, cfg.Planner.CacheTTL)
	assert.Equal(t, CatalogSourcePostgres, cfg.Catalog.Source)
}

func TestAllowedOriginsTakePrecedence(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "https://planner.example.com")
	t.Setenv("CORS_ORIGINS", "http://localhost:5173")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://planner.example.com"}, cfg.CORS.AllowedOrigins)
}
