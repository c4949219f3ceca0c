package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads so the host environment cannot leak in
func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"DATABASE_URL", "POSTGRESQL_URI", "PG_DSN", "PG_HOST", "PG_PORT", "PG_USER",
		"PG_PASSWORD", "PG_DATABASE", "PG_SSLMODE", "SERVER_PORT", "MAX_BATCH_SIZE",
		"MODELS_DIR", "MODEL_DEFAULT", "GEOCODER_BASE_URL", "GEOCODER_USER_AGENT", "GEOCODER_TIMEOUT",
		"GEOCODER_REQUESTS_PER_MINUTE",
		"HISTORY_DEFAULT_LIMIT", "HISTORY_MAX_LIMIT", "HISTORY_GEOHASH_PRECISION",
		"LOG_LEVEL", "LOG_FORMAT", "LOG_COLOR", "FLUENT_ENABLED",
	}
	for _, slug := range modelSlugs {
		suffix := strings.ToUpper(slug)
		keys = append(keys, "MODEL_PATH_"+suffix, "MODEL_COLUMNS_PATH_"+suffix)
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 50, cfg.Server.MaxBatchSize)
	assert.Equal(t, "./models", cfg.Models.Dir)
	assert.Equal(t, "elasticnet", cfg.Models.DefaultKindSlug)
	assert.Empty(t, cfg.Models.ModelPaths)
	assert.Equal(t, "https://nominatim.openstreetmap.org", cfg.Geocoder.BaseURL)
	assert.Equal(t, "geoapi_kolkata_project", cfg.Geocoder.UserAgent)
	assert.Equal(t, 10*time.Second, cfg.Geocoder.Timeout)
	assert.Equal(t, 60, cfg.Geocoder.RequestsPerMinute)
	assert.Equal(t, 20, cfg.History.DefaultLimit)
	assert.Equal(t, 100, cfg.History.MaxLimit)
	assert.Equal(t, uint(7), cfg.History.GeohashPrecision)
	assert.False(t, cfg.Fluent.Enabled)
	assert.False(t, cfg.HistoryEnabled())
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("GEOCODER_TIMEOUT", "3")
	t.Setenv("MODELS_DIR", "/srv/models")
	t.Setenv("MODEL_PATH_XGBOOST", "/tmp/xgb.json")
	t.Setenv("MODEL_COLUMNS_PATH_RANDOM_FOREST", "/tmp/rf_columns.json")
	t.Setenv("LOG_COLOR", "false")
	t.Setenv("MODEL_DEFAULT", "xgboost")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Geocoder.Timeout)
	assert.Equal(t, "/srv/models", cfg.Models.Dir)
	assert.Equal(t, map[string]string{"xgboost": "/tmp/xgb.json"}, cfg.Models.ModelPaths)
	assert.Equal(t, map[string]string{"random_forest": "/tmp/rf_columns.json"}, cfg.Models.ColumnPaths)
	assert.False(t, cfg.Logging.Color)
	assert.Equal(t, "xgboost", cfg.Models.DefaultKindSlug)
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_PORT", "eighty")
	t.Setenv("LOG_COLOR", "maybe")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.True(t, cfg.Logging.Color)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"zero default", map[string]string{"HISTORY_DEFAULT_LIMIT": "0"}},
		{"max below default", map[string]string{"HISTORY_DEFAULT_LIMIT": "50", "HISTORY_MAX_LIMIT": "10"}},
		{"geohash too long", map[string]string{"HISTORY_GEOHASH_PRECISION": "13"}},
		{"geohash zero", map[string]string{"HISTORY_GEOHASH_PRECISION": "0"}},
		{"unknown default model", map[string]string{"MODEL_DEFAULT": "svm"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestPostgreSQLDSN(t *testing.T) {
	cfg := &Config{PostgreSQL: PostgreSQLConfig{
		Host:     "db",
		Port:     5432,
		User:     "postgres",
		Password: "secret",
		Database: "urbannest",
		SSLMode:  "disable",
	}}
	assert.True(t, cfg.HistoryEnabled())
	assert.Equal(t, "host=db port=5432 user=postgres password=secret dbname=urbannest sslmode=disable", cfg.GetPostgreSQLDSN())

	cfg.PostgreSQL.DSN = "postgres://u:p@h/db"
	assert.Equal(t, "postgres://u:p@h/db", cfg.GetPostgreSQLDSN())
}
