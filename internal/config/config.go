// Package config loads resolver node configuration, generalizing the
// teacher's getenv/default pattern (cmd/coordinator/main.go's getenv)
// with an optional YAML overlay and .env loading for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the resolver node's startup configuration.
type Config struct {
	ListenAddr           string        `yaml:"listen_addr"`
	StoreBackend         string        `yaml:"store_backend"` // "memory" or "remote"
	RemoteStoreURL       string        `yaml:"remote_store_url"`
	CacheFrontSize       int           `yaml:"cache_front_size"`
	LoadRemoteDevices    bool          `yaml:"load_remote_devices"`
	TrustedDeviceSigners []string      `yaml:"trusted_device_signers"`
	WorkerTimeout        time.Duration `yaml:"worker_timeout"`
	LogLevel             string        `yaml:"log_level"`
	MetricsAddr          string        `yaml:"metrics_addr"`
}

// Default returns the configuration a fresh node starts from absent
// any environment or file overrides.
func Default() Config {
	return Config{
		ListenAddr:     ":8090",
		StoreBackend:   "memory",
		CacheFrontSize: 4096,
		WorkerTimeout:  30 * time.Second,
		LogLevel:       "info",
		MetricsAddr:    ":9090",
	}
}

// Load builds a Config by layering, in increasing precedence: built-in
// defaults, a YAML file at yamlPath (if non-empty and present), then
// environment variables. A .env file, if present, is loaded into the
// environment first (via godotenv, ignored if absent) without replacing
// variables already set, so its entries also override the YAML file.
// This widens the usual getenv(key, default) fallthrough
// with a file layer since a resolver node carries more configuration
// surface than a single listen address.
func Load(yamlPath string) (Config, error) {
	_ = godotenv.Load() // best-effort; absence of .env is not an error

	cfg := Default()

	if yamlPath != "" {
		if data, err := os.ReadFile(yamlPath); err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("config: parsing %s: %w", yamlPath, err)
			}
		} else if !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("config: reading %s: %w", yamlPath, err)
		}
	}

	cfg.ListenAddr = getenv("RESOLVER_LISTEN_ADDR", cfg.ListenAddr)
	cfg.StoreBackend = getenv("RESOLVER_STORE_BACKEND", cfg.StoreBackend)
	cfg.RemoteStoreURL = getenv("RESOLVER_REMOTE_STORE_URL", cfg.RemoteStoreURL)
	cfg.LogLevel = getenv("RESOLVER_LOG_LEVEL", cfg.LogLevel)
	cfg.MetricsAddr = getenv("RESOLVER_METRICS_ADDR", cfg.MetricsAddr)

	if v := os.Getenv("RESOLVER_CACHE_FRONT_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: RESOLVER_CACHE_FRONT_SIZE: %w", err)
		}
		cfg.CacheFrontSize = n
	}
	if v := os.Getenv("RESOLVER_LOAD_REMOTE_DEVICES"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: RESOLVER_LOAD_REMOTE_DEVICES: %w", err)
		}
		cfg.LoadRemoteDevices = b
	}
	if v := os.Getenv("RESOLVER_WORKER_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: RESOLVER_WORKER_TIMEOUT: %w", err)
		}
		cfg.WorkerTimeout = d
	}

	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
