package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "tiktok", cfg.App.DefaultPlatform)
	assert.Equal(t, 50, cfg.Scraper.PageSize)
	assert.Equal(t, 100*time.Millisecond, cfg.PageDelay())
	assert.Equal(t, 3, cfg.Scraper.MaxRetries)
	assert.Equal(t, time.Second, cfg.BaseDelay())
	assert.Equal(t, 4*time.Second, cfg.MaxDelay())
	assert.Equal(t, "file", cfg.Session.Backend)
	assert.Equal(t, "jobs.comments", cfg.Worker.JobSubject)
	assert.Equal(t, "data.comments_extracted", cfg.Worker.ResultSubject)
	assert.Equal(t, 8, cfg.Worker.MaxDelaySec)
}

func TestLoadKeepsFileValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
app:
  default_platform: douyin
scraper:
  page_size: 20
  page_delay_ms: 250
session:
  backend: redis
  ttl_hours: 12
worker:
  min_delay_seconds: 1
  max_delay_seconds: 2
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "douyin", cfg.App.DefaultPlatform)
	assert.Equal(t, 20, cfg.Scraper.PageSize)
	assert.Equal(t, 250*time.Millisecond, cfg.PageDelay())
	assert.Equal(t, "redis", cfg.Session.Backend)
	assert.Equal(t, 12*time.Hour, cfg.SessionTTL())
	assert.Equal(t, 2, cfg.Worker.MaxDelaySec)
	// campos ausentes recebem o padrão
	assert.Equal(t, 3, cfg.Scraper.MaxRetries)
	assert.Equal(t, ":8080", cfg.API.Port)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nao-existe.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scraper: [1, 2"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestLoadConfigFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api:\n  port: \":9999\"\n"), 0o644))
	t.Setenv("CONFIG_PATH", path)

	cfg := LoadConfig()
	assert.Equal(t, ":9999", cfg.API.Port)
}
