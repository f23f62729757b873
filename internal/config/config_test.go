package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	req := require.New(t)

	cfg, err := Load()
	req.NoError(err)

	req.Equal("0.0.0.0", cfg.Server.Host)
	req.Equal(5000, cfg.Server.Port)
	req.Equal("memory", cfg.Store.Driver)
	req.Equal("chat:", cfg.Redis.KeyPrefix)
	req.Equal(15*time.Second, cfg.Presence.SweepInterval)
	req.Equal(10*time.Second, cfg.Presence.StalenessThreshold)
	req.Equal("info", cfg.Log.Level)
}

func TestLoadEnvOverrides(t *testing.T) {
	req := require.New(t)

	t.Setenv("PORT", "8080")
	t.Setenv("STORE_DRIVER", "redis")
	t.Setenv("SWEEP_INTERVAL", "30s")
	t.Setenv("STALENESS_THRESHOLD", "20s")

	cfg, err := Load()
	req.NoError(err)

	req.Equal(8080, cfg.Server.Port)
	req.Equal("redis", cfg.Store.Driver)
	req.Equal(30*time.Second, cfg.Presence.SweepInterval)
	req.Equal(20*time.Second, cfg.Presence.StalenessThreshold)
}
