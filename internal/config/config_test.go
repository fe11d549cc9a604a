package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tiller.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Listen)
	assert.Equal(t, StoreMemory, cfg.Store.Backend)
}

func TestLoad_MissingFileFallsBack(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_FullFile(t *testing.T) {
	path := writeConfig(t, `
listen: ":9090"
metrics_listen: ""
store:
  backend: redis
  addr: localhost:6379
  db: 2
  ttl: 24h
  distributed_lock: true
models:
  research: gemini-2.5-pro
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Listen)
	assert.Empty(t, cfg.MetricsListen)
	assert.Equal(t, StoreRedis, cfg.Store.Backend)
	assert.Equal(t, "localhost:6379", cfg.Store.Addr)
	assert.Equal(t, 2, cfg.Store.DB)
	assert.Equal(t, 24*time.Hour, cfg.Store.TTL.Std())
	assert.True(t, cfg.Store.DistributedLock)
	assert.Equal(t, "gemini-2.5-pro", cfg.Models.Research)
}

func TestLoad_UnknownBackendRejected(t *testing.T) {
	path := writeConfig(t, "store:\n  backend: dynamo\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown store backend")
}

func TestLoad_RedisRequiresAddr(t *testing.T) {
	path := writeConfig(t, "store:\n  backend: redis\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires addr")
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "listen: [unclosed")
	_, err := Load(path)
	assert.Error(t, err)
}
