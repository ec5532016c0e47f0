package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "toyblock.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
rounds: 3
mode: ctr
iv: 12345
keep_prefix: 50
compress: true
workers: 2
api_listen_address: "127.0.0.1:9000"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Rounds)
	assert.Equal(t, "ctr", cfg.Mode)
	assert.Equal(t, uint64(12345), cfg.IV)
	assert.Equal(t, 50, cfg.KeepPrefix)
	assert.True(t, cfg.Compress)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, "127.0.0.1:9000", cfg.APIListenAddr)
	assert.Equal(t, "default", cfg.CompressLevel)
	assert.Equal(t, path, cfg.ConfigFile)
	assert.NoError(t, cfg.Validate())
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "mode: ofb\nrounds: 2\n")
	t.Setenv("TOYBLOCK_MODE", "cfb")
	t.Setenv("TOYBLOCK_WORKERS", "7")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "cfb", cfg.Mode)
	assert.Equal(t, 7, cfg.Workers)
	assert.Equal(t, 2, cfg.Rounds)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDefaults(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "ecb", cfg.Mode)
	assert.Equal(t, ":7780", cfg.APIListenAddr)
	assert.GreaterOrEqual(t, cfg.Workers, 1)
	assert.Equal(t, 4, cfg.RoundsFor(4))
	assert.NoError(t, cfg.Validate())

	cfg.Rounds = 1
	assert.Equal(t, 1, cfg.RoundsFor(2))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative rounds", func(c *Config) { c.Rounds = -1 }},
		{"unknown mode", func(c *Config) { c.Mode = "xts" }},
		{"negative prefix", func(c *Config) { c.KeepPrefix = -4 }},
		{"no workers", func(c *Config) { c.Workers = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}
