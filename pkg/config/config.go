// Package config loads the optima configuration file.
//
// The file is TOML, read from $XDG_CONFIG_HOME/optima/config.toml (or
// ~/.config/optima/config.toml). A missing file is not an error: every
// setting has a default. Environment variables override the file:
//
//	OPTIMA_BASE_URL   server.base_url
//	OPTIMA_CACHE      cache.backend
//
// Example:
//
//	[server]
//	base_url = "https://optima.example.org"
//
//	[poll]
//	interval = "1s"
//	slow_interval = "5s"
//
//	[layout]
//	spacing = 18
//	step = 3
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
package config

import (
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/optima/pkg/cache"
	"github.com/matzehuels/optima/pkg/errors"
	"github.com/matzehuels/optima/pkg/render/pie/layout"
)

const appName = "optima"

// Environment overrides.
const (
	EnvBaseURL = "OPTIMA_BASE_URL"
	EnvCache   = "OPTIMA_CACHE"
)

// Config is the full configuration.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Poll    PollConfig    `toml:"poll"`
	Layout  LayoutConfig  `toml:"layout"`
	Cache   CacheConfig   `toml:"cache"`
	Metrics MetricsConfig `toml:"metrics"`
	Serve   ServeConfig   `toml:"serve"`
}

// ServerConfig locates the optimization server.
type ServerConfig struct {
	BaseURL string        `toml:"base_url"`
	Timeout time.Duration `toml:"timeout"`
}

// PollConfig holds poll delays. SlowInterval is used for long jobs such as
// optimizations.
type PollConfig struct {
	Interval     time.Duration `toml:"interval"`
	SlowInterval time.Duration `toml:"slow_interval"`
}

// LayoutConfig tunes pie label placement and the default chart size.
type LayoutConfig struct {
	Spacing       float64 `toml:"spacing"`
	Step          float64 `toml:"step"`
	MaxIterations int     `toml:"max_iterations"`
	Width         float64 `toml:"width"`
	Height        float64 `toml:"height"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir"`
	RedisAddr     string `toml:"redis_addr"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

// MetricsConfig controls the Prometheus listener. An empty address
// disables it.
type MetricsConfig struct {
	Addr string `toml:"addr"`
}

// ServeConfig configures the local task server.
type ServeConfig struct {
	Addr       string        `toml:"addr"`
	StartDelay time.Duration `toml:"start_delay"`
	Duration   time.Duration `toml:"duration"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{BaseURL: "http://localhost:8080", Timeout: 10 * time.Second},
		Poll:   PollConfig{Interval: time.Second, SlowInterval: 5 * time.Second},
		Layout: LayoutConfig{
			Spacing:       layout.DefaultSpacing,
			Step:          layout.DefaultStep,
			MaxIterations: layout.DefaultMaxIterations,
			Width:         400,
			Height:        300,
		},
		Cache: CacheConfig{Backend: cache.BackendFile, MongoDatabase: appName},
		Serve: ServeConfig{Addr: "localhost:8080", StartDelay: 2 * time.Second, Duration: 10 * time.Second},
	}
}

// Dir returns the configuration directory.
func Dir() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// CacheDir returns the default file cache directory.
func CacheDir() (string, error) {
	if home := os.Getenv("XDG_CACHE_HOME"); home != "" {
		return filepath.Join(home, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// Load reads path, or the default path when path is empty, on top of the
// defaults and applies environment overrides. A missing default file yields
// the defaults; a missing explicit path is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}

	if path != "" {
		md, err := toml.DecodeFile(path, cfg)
		switch {
		case os.IsNotExist(err) && !explicit:
		case os.IsNotExist(err):
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		case err != nil:
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		default:
			if undecoded := md.Undecoded(); len(undecoded) > 0 {
				keys := make([]string, len(undecoded))
				for i, k := range undecoded {
					keys[i] = k.String()
				}
				slices.Sort(keys)
				return nil, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
			}
		}
	}

	cfg.applyEnv()
	if cfg.Cache.Dir == "" {
		if dir, err := CacheDir(); err == nil {
			cfg.Cache.Dir = dir
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvBaseURL); v != "" {
		c.Server.BaseURL = v
	}
	if v := os.Getenv(EnvCache); v != "" {
		c.Cache.Backend = v
	}
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if err := errors.ValidateURL(c.Server.BaseURL); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "server.base_url")
	}
	if c.Poll.Interval <= 0 || c.Poll.SlowInterval <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "poll intervals must be positive")
	}
	if c.Layout.Spacing <= 0 || c.Layout.Step <= 0 || c.Layout.MaxIterations <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "layout spacing, step and max_iterations must be positive")
	}
	if err := errors.ValidateDimensions(c.Layout.Width, c.Layout.Height); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "layout size")
	}
	switch c.Cache.Backend {
	case cache.BackendFile, cache.BackendNull, cache.BackendMongo:
	case cache.BackendRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_addr is required for the redis backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.Backend == cache.BackendMongo && c.Cache.MongoURI == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.mongo_uri is required for the mongo backend")
	}
	return nil
}

// LayoutOptions converts the layout section.
func (c *Config) LayoutOptions() layout.Options {
	return layout.Options{
		Spacing:       c.Layout.Spacing,
		Step:          c.Layout.Step,
		MaxIterations: c.Layout.MaxIterations,
	}
}

// CacheOptions converts the cache section.
func (c *Config) CacheOptions() cache.Options {
	return cache.Options{
		Backend:       c.Cache.Backend,
		Dir:           c.Cache.Dir,
		RedisAddr:     c.Cache.RedisAddr,
		MongoURI:      c.Cache.MongoURI,
		MongoDatabase: c.Cache.MongoDatabase,
	}
}

// Encode writes c as TOML.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
