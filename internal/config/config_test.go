package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("YOUTUBE_API_KEY", "test-key")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "local", cfg.AppEnv)
	require.Equal(t, 8080, cfg.HTTPPort)
	require.Equal(t, "test-key", cfg.YouTubeAPIKey)
	require.Equal(t, 50, cfg.SearchPageSize)
	require.Equal(t, 50, cfg.DetailsBatchSize)
	require.Equal(t, 500, cfg.MaxTargetCount)
	require.Equal(t, 20, cfg.HistoryCap)
	require.Equal(t, "api", cfg.ActivitySource)
	require.Equal(t, 0, cfg.ActivityConcurrency)
	require.Equal(t, 12, cfg.ActivityMonths)
	require.Equal(t, 30*time.Second, cfg.YouTubeTimeout)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("YOUTUBE_API_KEY", "test-key")
	t.Setenv("ACTIVITY_SOURCE", "feed")
	t.Setenv("ACTIVITY_CONCURRENCY", "8")
	t.Setenv("MAX_TARGET_COUNT", "200")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "feed", cfg.ActivitySource)
	require.Equal(t, 8, cfg.ActivityConcurrency)
	require.Equal(t, 200, cfg.MaxTargetCount)
}
