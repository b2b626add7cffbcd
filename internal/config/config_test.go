package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexKimmel/windowgate/internal/config"
	window "github.com/AlexKimmel/windowgate/pkg/ratelimit"
)

const sample = `
server:
  addr: ":9090"
  read_timeout_ms: 1500
observability:
  log_level: debug
identity:
  keys:
    - id: team-a
      secret: s3cret
limits:
  default:
    capacity: 10
    window_ms: 1000
routes:
  - id: search
    match:
      path_prefix: /api/search
      methods: [GET]
    limit:
      capacity: 4
      window_ms: 500
      policy: gradual
  - id: orders
    match:
      path_prefix: /api/orders
      methods: [GET, POST]
`

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 1500*time.Millisecond, cfg.Server.ReadTimeout())
	assert.Equal(t, 10*time.Second, cfg.Server.WriteTimeout())
	assert.Equal(t, 60*time.Second, cfg.Server.IdleTimeout())
	assert.Equal(t, "debug", cfg.Observability.LogLevel)
	assert.Equal(t, "/metrics", cfg.Observability.PrometheusPath)
	assert.Equal(t, "X-API-Key", cfg.Identity.Header)

	require.Len(t, cfg.Routes, 2)

	search := cfg.Routes[0].Effective(cfg.Limits.Default)
	assert.Equal(t, 4, search.Capacity)
	assert.Equal(t, 500*time.Millisecond, search.Window())
	assert.Equal(t, window.Gradual, search.Policy)

	orders := cfg.Routes[1].Effective(cfg.Limits.Default)
	assert.Equal(t, 10, orders.Capacity)
	assert.Equal(t, time.Second, orders.Window())
	assert.Equal(t, window.Full, orders.Policy)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParse_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.Parse([]byte("{}"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "info", cfg.Observability.LogLevel)
	assert.Equal(t, 60, cfg.Limits.Default.Capacity)
	assert.Equal(t, time.Minute, cfg.Limits.Default.Window())
	assert.Equal(t, window.Full, cfg.Limits.Default.Policy)
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"negative default capacity": "limits: {default: {capacity: -1}}",
		"negative default window":   "limits: {default: {window_ms: -5}}",
		"unknown policy":            "limits: {default: {policy: leaky}}",
		"route without id":          "routes: [{match: {path_prefix: /a}}]",
		"route without prefix":      "routes: [{id: a}]",
		"duplicate route id": `
routes:
  - {id: a, match: {path_prefix: /a}}
  - {id: a, match: {path_prefix: /b}}`,
		"zero route capacity": "routes: [{id: a, match: {path_prefix: /a}, limit: {capacity: 0, window_ms: 10}}]",
		"key without secret":  "identity: {keys: [{id: a}]}",
		"not yaml":            "routes: [",
	}

	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := config.Parse([]byte(in))
			assert.ErrorIs(t, err, config.ErrInvalidConfig)
		})
	}
}
