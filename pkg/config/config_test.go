package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	require.NoError(t, err)

	assert.Equal(t, defaultAPIURL, cfg.APIURL)
	assert.Equal(t, 3, cfg.Retries)
	assert.Equal(t, time.Duration(0), cfg.RetryDelay)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, "zpl", cfg.Profile)
	assert.Equal(t, "bolt", cfg.Store.Backend)
	assert.Equal(t, filepath.Join(home, ".local/share/zebraprint/zebraprint.db"), cfg.Store.Path)
	assert.Equal(t, "zebraprint", cfg.MQTT.TopicRoot)
	assert.Equal(t, 5*time.Second, cfg.MonitorInterval)
	assert.Empty(t, cfg.MetricsAddr)
}

func TestLoad_DefaultPathUnderHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".config", "zebraprint")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(`profile = "zpl-large"`), 0o600))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "zpl-large", cfg.Profile)
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := writeConfig(t, `
api_url = "  https://localhost:9101/  "
retries = 5
retry_delay = "250ms"
timeout = "3s"
profile = " zpl-large "
metrics_addr = ":9464"

[store]
backend = " Redis "
path = "~/printers.db"
redis_addr = "10.0.0.2:6379"
redis_db = 2

[mqtt]
broker = "tcp://broker:1883"
username = "kiosk"
password = " secret "
topic_root = "/site/labels/"

[monitor]
interval = "1m"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://localhost:9101/", cfg.APIURL)
	assert.Equal(t, 5, cfg.Retries)
	assert.Equal(t, 250*time.Millisecond, cfg.RetryDelay)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, "zpl-large", cfg.Profile)
	assert.Equal(t, ":9464", cfg.MetricsAddr)
	assert.Equal(t, "redis", cfg.Store.Backend)
	assert.True(t, strings.HasPrefix(cfg.Store.Path, home), "path %q should be under HOME", cfg.Store.Path)
	assert.Equal(t, "10.0.0.2:6379", cfg.Store.RedisAddr)
	assert.Equal(t, 2, cfg.Store.RedisDB)
	assert.Equal(t, "tcp://broker:1883", cfg.MQTT.Broker)
	assert.Equal(t, "kiosk", cfg.MQTT.Username)
	assert.Equal(t, " secret ", cfg.MQTT.Password)
	assert.Equal(t, "site/labels", cfg.MQTT.TopicRoot)
	assert.Equal(t, time.Minute, cfg.MonitorInterval)
}

func TestLoad_EmptyValuesUseDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := writeConfig(t, `
api_url = "   "
profile = ""
[store]
backend = ""
[mqtt]
topic_root = " / "
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, defaultAPIURL, cfg.APIURL)
	assert.Equal(t, "zpl", cfg.Profile)
	assert.Equal(t, "bolt", cfg.Store.Backend)
	assert.Equal(t, "zebraprint", cfg.MQTT.TopicRoot)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "invalid toml", body: `api_url = [`, wantErr: "parse config"},
		{name: "zero retries", body: `retries = 0`, wantErr: "retries must be at least 1"},
		{name: "bad duration", body: `timeout = "soon"`, wantErr: "timeout"},
		{name: "negative delay", body: `retry_delay = "-1s"`, wantErr: "retry_delay must not be negative"},
		{name: "bad interval", body: "[monitor]\ninterval = \"5\"", wantErr: "monitor.interval"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/a/b")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "a/b"), got)

	_, err = expandPath("   ")
	assert.Error(t, err)
}
