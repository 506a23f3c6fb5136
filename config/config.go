package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/fleetledger/core/factory"
	"github.com/kilianp07/fleetledger/core/metrics"
	"github.com/kilianp07/fleetledger/core/schedule"
	"github.com/kilianp07/fleetledger/infra/fmcsa"
)

type Config struct {
	Logging      LoggingConfig     `json:"logging"`
	Billing      BillingConfig     `json:"billing"`
	Scheduling   schedule.Config   `json:"scheduling"`
	Bookability  BookabilityConfig `json:"bookability"`
	Verification fmcsa.Config      `json:"verification"`
	Notify       NotifyConfig      `json:"notify"`
	Metrics      metrics.Config    `json:"metrics"`
	API          APIConfig         `json:"api"`
}

// NotifyConfig selects the notifier module. An empty type disables
// notifications.
type NotifyConfig struct {
	Type           string         `json:"type"`
	Conf           map[string]any `json:"conf"`
	TimeoutSeconds int            `json:"timeout_seconds"`
}

// Module returns the factory configuration of the notifier.
func (c NotifyConfig) Module() factory.ModuleConfig {
	return factory.ModuleConfig{Type: c.Type, Conf: c.Conf}
}

// Timeout bounds a single delivery. Zero selects the dispatcher default.
func (c NotifyConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// APIConfig configures the HTTP surface.
type APIConfig struct {
	Enabled bool   `json:"enabled"`
	Addr    string `json:"addr"`
}

func (c *APIConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var cfg Config
	cfg.SetDefaults()
	return &cfg
}

func (c *Config) SetDefaults() {
	c.Logging.SetDefaults()
	c.Billing.SetDefaults()
	c.Bookability.SetDefaults()
	c.API.SetDefaults()
	if c.Scheduling.MaxSoloHours <= 0 {
		c.Scheduling.MaxSoloHours = schedule.DefaultMaxSoloHours
	}
}

func (c Config) Validate() error {
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Billing.Validate(); err != nil {
		return fmt.Errorf("billing: %w", err)
	}
	return nil
}
