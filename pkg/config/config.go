// Package config loads the zebraprint TOML configuration file.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config is the resolved configuration with defaults applied.
type Config struct {
	APIURL          string
	Retries         int
	RetryDelay      time.Duration
	Timeout         time.Duration
	Profile         string
	Store           StoreConfig
	MQTT            MQTTConfig
	MonitorInterval time.Duration
	MetricsAddr     string
}

type StoreConfig struct {
	Backend   string
	Path      string
	RedisAddr string
	RedisDB   int
}

type MQTTConfig struct {
	Broker    string
	Username  string
	Password  string
	TopicRoot string
}

const (
	defaultConfigPath      = "~/.config/zebraprint/config.toml"
	defaultAPIURL          = "http://127.0.0.1:9100/"
	defaultRetries         = 3
	defaultTimeout         = 10 * time.Second
	defaultProfile         = "zpl"
	defaultStoreBackend    = "bolt"
	defaultStorePath       = "~/.local/share/zebraprint/zebraprint.db"
	defaultTopicRoot       = "zebraprint"
	defaultMonitorInterval = 5 * time.Second
)

type rawConfig struct {
	APIURL      string `toml:"api_url"`
	Retries     *int   `toml:"retries"`
	RetryDelay  string `toml:"retry_delay"`
	Timeout     string `toml:"timeout"`
	Profile     string `toml:"profile"`
	MetricsAddr string `toml:"metrics_addr"`
	Store       struct {
		Backend   string `toml:"backend"`
		Path      string `toml:"path"`
		RedisAddr string `toml:"redis_addr"`
		RedisDB   int    `toml:"redis_db"`
	} `toml:"store"`
	MQTT struct {
		Broker    string `toml:"broker"`
		Username  string `toml:"username"`
		Password  string `toml:"password"`
		TopicRoot string `toml:"topic_root"`
	} `toml:"mqtt"`
	Monitor struct {
		Interval string `toml:"interval"`
	} `toml:"monitor"`
}

// Defaults returns the configuration used when no file exists.
func Defaults() Config {
	return Config{
		APIURL:  defaultAPIURL,
		Retries: defaultRetries,
		Timeout: defaultTimeout,
		Profile: defaultProfile,
		Store: StoreConfig{
			Backend: defaultStoreBackend,
			Path:    mustExpand(defaultStorePath),
		},
		MQTT:            MQTTConfig{TopicRoot: defaultTopicRoot},
		MonitorInterval: defaultMonitorInterval,
	}
}

// Load reads the config at path (or the default location), falling back to
// defaults when the file does not exist.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Defaults()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIURL); v != "" {
		cfg.APIURL = v
	}
	if raw.Retries != nil {
		if *raw.Retries < 1 {
			return Config{}, fmt.Errorf("parse config: retries must be at least 1, got %d", *raw.Retries)
		}
		cfg.Retries = *raw.Retries
	}
	if cfg.RetryDelay, err = parseDuration("retry_delay", raw.RetryDelay, 0); err != nil {
		return Config{}, err
	}
	if cfg.Timeout, err = parseDuration("timeout", raw.Timeout, defaultTimeout); err != nil {
		return Config{}, err
	}
	if cfg.MonitorInterval, err = parseDuration("monitor.interval", raw.Monitor.Interval, defaultMonitorInterval); err != nil {
		return Config{}, err
	}
	if v := strings.TrimSpace(raw.Profile); v != "" {
		cfg.Profile = v
	}
	cfg.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)

	if v := strings.TrimSpace(raw.Store.Backend); v != "" {
		cfg.Store.Backend = strings.ToLower(v)
	}
	if v := strings.TrimSpace(raw.Store.Path); v != "" {
		cfg.Store.Path = mustExpand(v)
	}
	cfg.Store.RedisAddr = strings.TrimSpace(raw.Store.RedisAddr)
	cfg.Store.RedisDB = raw.Store.RedisDB

	cfg.MQTT.Broker = strings.TrimSpace(raw.MQTT.Broker)
	cfg.MQTT.Username = strings.TrimSpace(raw.MQTT.Username)
	cfg.MQTT.Password = raw.MQTT.Password
	if v := strings.Trim(strings.TrimSpace(raw.MQTT.TopicRoot), "/"); v != "" {
		cfg.MQTT.TopicRoot = v
	}

	return cfg, nil
}

func parseDuration(key, value string, fallback time.Duration) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse config: %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("parse config: %s must not be negative", key)
	}
	return d, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
