// Package config loads the tiller configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so values like "24h" parse from YAML.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// StoreBackend selects where session checkpoints are persisted.
type StoreBackend string

const (
	StoreMemory StoreBackend = "memory"
	StoreFile   StoreBackend = "file"
	StoreRedis  StoreBackend = "redis"
)

// StoreConfig configures the session checkpoint backend.
type StoreConfig struct {
	Backend StoreBackend `yaml:"backend"`

	// Path is the session directory for the file backend.
	Path string `yaml:"path"`

	// Redis settings, used when Backend is "redis".
	Addr     string   `yaml:"addr"`
	Password string   `yaml:"password"`
	DB       int      `yaml:"db"`
	TTL      Duration `yaml:"ttl"`

	// DistributedLock enables the redis locker so multiple replicas can
	// safely share one session store.
	DistributedLock bool `yaml:"distributed_lock"`
}

// ModelsConfig overrides the Gemini model used by each step.
type ModelsConfig struct {
	Clarity   string `yaml:"clarity"`
	Research  string `yaml:"research"`
	Assessor  string `yaml:"assessor"`
	Validator string `yaml:"validator"`
	Synthesis string `yaml:"synthesis"`
}

// Config is the root configuration structure.
type Config struct {
	// Listen is the HTTP API bind address.
	Listen string `yaml:"listen"`

	// MetricsListen is the Prometheus scrape endpoint bind address.
	// Empty disables the metrics server.
	MetricsListen string `yaml:"metrics_listen"`

	Store  StoreConfig  `yaml:"store"`
	Models ModelsConfig `yaml:"models"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Listen:        ":8080",
		MetricsListen: ":2112",
		Store: StoreConfig{
			Backend: StoreMemory,
		},
	}
}

// Load reads a YAML configuration file, falling back to defaults when the
// path is empty or the file does not exist.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.Store.Backend {
	case StoreMemory, StoreFile, StoreRedis:
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Store.Backend == StoreRedis && c.Store.Addr == "" {
		return fmt.Errorf("redis store requires addr")
	}
	return nil
}
