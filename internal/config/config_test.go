package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadForTests(map[string]string{
		"PORT":                   "",
		"REDIS_URL":              "",
		"TAX_80D_VALIDATION_CAP": "",
		"TAX_DEFAULT_EPF":        "",
		"RATE_LIMIT_MAX":         "",
		"RATE_LIMIT_WINDOW":      "",
		"OBS_ENABLE_TRACING":     "",
	})
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTPAddr())
	require.Empty(t, cfg.RedisURL)
	require.Equal(t, 75_000.0, cfg.Max80D)
	require.Equal(t, 21_600.0, cfg.DefaultEPF)
	require.Equal(t, 60, cfg.RateLimitMax)
	require.Equal(t, time.Minute, cfg.RateLimitWindow)
	require.False(t, cfg.TracingEnabled)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := LoadForTests(map[string]string{
		"PORT":                   ":9000",
		"TAX_80D_VALIDATION_CAP": "100000",
		"RATE_LIMIT_WINDOW":      "30s",
		"CORS_ALLOWED_ORIGINS":   "https://a.example, https://b.example ,",
		"OBS_ENABLE_PROMETHEUS":  "off",
	})
	require.NoError(t, err)
	require.Equal(t, ":9000", cfg.HTTPAddr())
	require.Equal(t, 100_000.0, cfg.Max80D)
	require.Equal(t, 30*time.Second, cfg.RateLimitWindow)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins())
	require.False(t, cfg.MetricsEnabled)
}

func TestLoadRejectsNonPositive80DCap(t *testing.T) {
	_, err := LoadForTests(map[string]string{"TAX_80D_VALIDATION_CAP": "-1"})
	require.Error(t, err)
}

func TestAllowedOriginsWildcard(t *testing.T) {
	cfg := &Config{}
	require.Equal(t, []string{"*"}, cfg.AllowedOrigins())
}
