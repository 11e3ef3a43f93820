// ABOUTME: Tests for server command helpers: config paths, URLs, secrets, and log handlers
// ABOUTME: Uses t.Setenv to isolate XDG lookups and buffers to capture log output

package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/deep-thoughts/internal/config"
)

func TestGetConfigPath(t *testing.T) {
	t.Setenv("DEEP_THOUGHTS_CONFIG", "/etc/deep-thoughts.toml")
	assert.Equal(t, "/etc/deep-thoughts.toml", getConfigPath())

	t.Setenv("DEEP_THOUGHTS_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	assert.Equal(t, filepath.Join("/xdg", "deep-thoughts", "server.yaml"), getConfigPath())

	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "/home/tester")
	assert.Equal(t, filepath.Join("/home/tester", ".config", "deep-thoughts", "server.yaml"), getConfigPath())
}

func TestGetDataPath(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")
	assert.Equal(t, filepath.Join("/data", "deep-thoughts"), getDataPath())
}

func TestServerURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
		want string
	}{
		{"host and port", config.Config{Server: config.ServerConfig{HTTPAddr: "localhost:3001"}}, "http://localhost:3001"},
		{"port only", config.Config{Server: config.ServerConfig{HTTPAddr: ":8080"}}, "http://localhost:8080"},
		{"tailnet http", config.Config{Tailscale: config.TailscaleConfig{Enabled: true, Hostname: "thoughts"}}, "http://thoughts"},
		{"tailnet https", config.Config{Tailscale: config.TailscaleConfig{Enabled: true, Hostname: "thoughts", HTTPS: true}}, "https://thoughts"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, serverURL(&tt.cfg))
		})
	}
}

func TestGenerateSecret(t *testing.T) {
	a, err := generateSecret()
	require.NoError(t, err)
	b, err := generateSecret()
	require.NoError(t, err)

	assert.GreaterOrEqual(t, len(a), config.MinSecretLength)
	assert.NotEqual(t, a, b)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLevel("WARN"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
	assert.Equal(t, slog.LevelInfo, parseLevel("verbose"))
}

func TestColorHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(config.LoggingConfig{Level: "info"}, &buf)

	logger.With("component", "server").Info("listening", "addr", "localhost:3001")
	logger.Debug("hidden")
	logger.WithGroup("req").Warn("slow", "ms", 1500)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "INF listening")
	assert.Contains(t, lines[0], "component=server")
	assert.Contains(t, lines[0], "addr=localhost:3001")
	assert.Contains(t, lines[1], "WRN slow")
	assert.Contains(t, lines[1], "req.ms=1500")
}

func TestJSONHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(config.LoggingConfig{Level: "debug", Format: "json"}, &buf)
	logger.Debug("hello", "n", 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, "DEBUG", rec["level"])
}
