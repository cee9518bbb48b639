package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/mathspan/internal/config"
	"github.com/aretw0/mathspan/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)

	p, err := cfg.ActiveProfile()
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultProfile(), p)
}

func TestLoad_YAML(t *testing.T) {
	path := write(t, "mathspan.yaml", `
profile: hugo
profiles:
  hugo:
    tex_math_dollars: true
    blogdown_math_in_code: "true"
typeset:
  renderer: mathjax
  mathjax_url: http://localhost:8003/
  retry_delay: 50ms
  max_attempts: "3"
  timeout: 2s
store:
  driver: redis
  redis_addr: localhost:6379
  ttl: 1h
log:
  level: debug
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	p, err := cfg.ActiveProfile()
	require.NoError(t, err)
	assert.Equal(t, domain.Profile{Name: "hugo", TexMathDollars: true, BlogdownMathInCode: true}, p)
	assert.Equal(t, []string{"blogdown", "default", "hugo", "plain"}, cfg.ProfileNames())

	assert.Equal(t, 50*time.Millisecond, cfg.Typeset.RetryDelay)
	assert.Equal(t, 3, cfg.Typeset.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.Typeset.Timeout)
	assert.Equal(t, 250*time.Millisecond, cfg.Typeset.Debounce, "unset keys keep defaults")
	assert.Equal(t, time.Hour, cfg.Store.TTL)
	assert.Equal(t, "mathspan:doc:", cfg.Store.Prefix)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_JSON(t *testing.T) {
	path := write(t, "mathspan.json", `{"profile":"blogdown","store":{"driver":"loam","dir":"notes"}}`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	p, err := cfg.ActiveProfile()
	require.NoError(t, err)
	assert.True(t, p.BlogdownMathInCode)
	assert.Equal(t, config.DriverLoam, cfg.Store.Driver)
	assert.Equal(t, "notes", cfg.Store.Dir)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"syntax":          "profile: [",
		"unknown profile": "profile: nope",
		"unknown driver":  "store: {driver: sqlite}",
		"redis addr":      "store: {driver: redis}",
		"mathjax url":     "typeset: {renderer: mathjax}",
		"command":         "typeset: {renderer: command}",
		"renderer":        "typeset: {renderer: latex}",
		"bad duration":    "typeset: {retry_delay: soon}",
		"negative":        "typeset: {max_attempts: -1}",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := config.Load(write(t, "mathspan.yaml", content))
			assert.Error(t, err)
		})
	}
}
