package config_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/timeclock/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.LoadFrom(context.Background(), map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.ListenAddr)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:8080"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "timeclock.db", cfg.DBPath)
	assert.Equal(t, "America/Sao_Paulo", cfg.Timezone)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)

	w, err := cfg.Workload()
	require.NoError(t, err)
	assert.Equal(t, "8", w.String())
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := config.LoadFrom(context.Background(), map[string]string{
		"TIMECLOCK_LISTEN_ADDR":     ":9090",
		"TIMECLOCK_DB_PATH":         ":memory:",
		"TIMECLOCK_TIMEZONE":        "UTC",
		"TIMECLOCK_WORKLOAD_HOURS":  "6.5",
		"TIMECLOCK_LOG_LEVEL":       "debug",
		"TIMECLOCK_ALLOWED_ORIGINS": "https://ponto.example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.ListenAddr)
	assert.Equal(t, ":memory:", cfg.DBPath)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, []string{"https://ponto.example.com"}, cfg.Server.AllowedOrigins)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())

	w, err := cfg.Workload()
	require.NoError(t, err)
	assert.Equal(t, "6.5", w.String())
}

func TestLoad_Invalid(t *testing.T) {
	_, err := config.LoadFrom(context.Background(), map[string]string{"TIMECLOCK_TIMEZONE": "Mars/Olympus"})
	assert.ErrorContains(t, err, "TIMECLOCK_TIMEZONE")

	_, err = config.LoadFrom(context.Background(), map[string]string{"TIMECLOCK_WORKLOAD_HOURS": "eight"})
	assert.ErrorContains(t, err, "TIMECLOCK_WORKLOAD_HOURS")

	_, err = config.LoadFrom(context.Background(), map[string]string{"TIMECLOCK_WORKLOAD_HOURS": "-1"})
	assert.Error(t, err)
}
