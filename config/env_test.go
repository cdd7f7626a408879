package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorePostgres, cfg.StoreBackend)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "first_match", cfg.FencePolicy)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.Equal(t, 16, cfg.HistoryCacheMB)
	assert.Equal(t, time.Hour, cfg.HistoryCacheTTL)
	assert.True(t, cfg.MetricsEnabled)
	require.Len(t, cfg.Geofences, 1)
	assert.Equal(t, DefaultGeofence(), cfg.Geofences[0])
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORE_BACKEND", "supabase")
	t.Setenv("SUPABASE_URL", "https://example.supabase.co")
	t.Setenv("SUPABASE_KEY", "anon")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("ATTENDANCE_TIMEZONE", "Asia/Kolkata")
	t.Setenv("FENCE_POLICY", "nearest")
	t.Setenv("HISTORY_CACHE_MB", "0")
	t.Setenv("HISTORY_CACHE_TTL", "5m")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("GEOFENCE_RADIUS", "75")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreSupabase, cfg.StoreBackend)
	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, "Asia/Kolkata", cfg.Location.String())
	assert.Equal(t, "nearest", cfg.FencePolicy)
	assert.Equal(t, 0, cfg.HistoryCacheMB)
	assert.Equal(t, 5*time.Minute, cfg.HistoryCacheTTL)
	assert.False(t, cfg.MetricsEnabled)
	assert.Equal(t, 75.0, cfg.Geofences[0].RadiusMeters)
}

func TestLoad_GeofencesJSON(t *testing.T) {
	t.Setenv("GEOFENCES_JSON", `[
		{"id":"office","name":"Office","center":{"latitude":12.83,"longitude":80.13},"radius":150},
		{"id":"lab","name":"Lab","center":{"latitude":12.84,"longitude":80.14},"radius":50}
	]`)

	cfg, err := Load()
	require.NoError(t, err)
	require.Len(t, cfg.Geofences, 2)
	assert.Equal(t, "lab", cfg.Geofences[1].ID)
	assert.Equal(t, 50.0, cfg.Geofences[1].RadiusMeters)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown store", map[string]string{"STORE_BACKEND": "mongo"}},
		{"supabase without key", map[string]string{"STORE_BACKEND": "supabase", "SUPABASE_URL": "https://x.supabase.co"}},
		{"bad port", map[string]string{"HTTP_PORT": "http"}},
		{"bad policy", map[string]string{"FENCE_POLICY": "random"}},
		{"bad log level", map[string]string{"LOG_LEVEL": "loud"}},
		{"bad timezone", map[string]string{"ATTENDANCE_TIMEZONE": "Mars/Olympus"}},
		{"bad geofences json", map[string]string{"GEOFENCES_JSON": `{"id":"x"}`}},
		{"empty geofences", map[string]string{"GEOFENCES_JSON": `[]`}},
		{"duplicate fence", map[string]string{"GEOFENCES_JSON": `[{"id":"a","center":{"latitude":0,"longitude":0},"radius":1},{"id":"a","center":{"latitude":0,"longitude":0},"radius":1}]`}},
		{"zero radius", map[string]string{"GEOFENCE_RADIUS": "0"}},
		{"latitude out of range", map[string]string{"GEOFENCE_LAT": "100"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
