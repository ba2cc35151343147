// Package config loads the client configuration from viper.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/equipeadalove/aduana/internal/common"
	"github.com/spf13/viper"
)

// Defaults applied when a key is not configured.
const (
	DefaultBaseURL     = "http://localhost:8000/api"
	DefaultTimeout     = 60 * time.Second
	DefaultStoragePath = "$HOME/.local/share/aduana/aduana.db"
	DefaultDownloadDir = "."
	DefaultTheme       = "dark"
)

// Config holds everything the client needs to talk to the backend and
// persist its session.
type Config struct {
	BaseURL     string
	StoragePath string
	DownloadDir string
	Theme       string
	LogFile     string
	Breaker     BreakerConfig
	Timeout     time.Duration
}

// BreakerConfig controls the API circuit breaker.
type BreakerConfig struct {
	MinRequests  uint32
	FailureRatio float64
	OpenTimeout  time.Duration
	Enabled      bool
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", DefaultBaseURL)
	v.SetDefault("api.timeout", DefaultTimeout)
	v.SetDefault("api.breaker.enabled", true)
	v.SetDefault("api.breaker.min_requests", 5)
	v.SetDefault("api.breaker.failure_ratio", 0.6)
	v.SetDefault("api.breaker.open_timeout", 30*time.Second)
	v.SetDefault("storage.path", DefaultStoragePath)
	v.SetDefault("downloads.dir", DefaultDownloadDir)
	v.SetDefault("ui.theme", DefaultTheme)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Load reads the configuration from v and validates it.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	cfg := &Config{
		BaseURL:     strings.TrimRight(v.GetString("api.base_url"), "/"),
		Timeout:     v.GetDuration("api.timeout"),
		StoragePath: ExpandPath(v.GetString("storage.path")),
		DownloadDir: ExpandPath(v.GetString("downloads.dir")),
		Theme:       strings.ToLower(v.GetString("ui.theme")),
		LogFile:     ExpandPath(v.GetString("logging.file")),
		Breaker: BreakerConfig{
			Enabled:      v.GetBool("api.breaker.enabled"),
			MinRequests:  v.GetUint32("api.breaker.min_requests"),
			FailureRatio: v.GetFloat64("api.breaker.failure_ratio"),
			OpenTimeout:  v.GetDuration("api.breaker.open_timeout"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the client cannot work with.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: api.base_url", common.ErrMissingConfig)
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: api.base_url %q must be an http(s) URL", common.ErrInvalidConfig, c.BaseURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: api.timeout must be positive", common.ErrInvalidConfig)
	}
	if c.StoragePath == "" {
		return fmt.Errorf("%w: storage.path", common.ErrMissingConfig)
	}
	if c.Theme != "dark" && c.Theme != "light" {
		return fmt.Errorf("%w: ui.theme %q (want dark or light)", common.ErrInvalidConfig, c.Theme)
	}
	if c.Breaker.Enabled && (c.Breaker.FailureRatio <= 0 || c.Breaker.FailureRatio > 1) {
		return fmt.Errorf("%w: api.breaker.failure_ratio must be in (0, 1]", common.ErrInvalidConfig)
	}
	return nil
}
