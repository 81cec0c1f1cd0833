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
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 25, cfg.FeedLimit)
	assert.Equal(t, 10, cfg.Simulation.Users)
	assert.Empty(t, cfg.Simulation.Profile)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("REDDIT_ENGINE_LISTEN_ADDR", "127.0.0.1:9000")
	t.Setenv("REDDIT_ENGINE_REQUEST_TIMEOUT", "250ms")
	t.Setenv("REDDIT_ENGINE_SIM_USERS", "500")
	t.Setenv("REDDIT_ENGINE_SIM_SEED", "42")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.ListenAddr)
	assert.Equal(t, 250*time.Millisecond, cfg.RequestTimeout)
	assert.Equal(t, 500, cfg.Simulation.Users)
	assert.Equal(t, uint64(42), cfg.Simulation.Seed)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("REDDIT_ENGINE_REQUEST_TIMEOUT", "soon")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("REDDIT_ENGINE_REQUEST_TIMEOUT", "0s")
	_, err = Load()
	assert.Error(t, err)
}
