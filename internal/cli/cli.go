package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/optima/pkg/cache"
	"github.com/matzehuels/optima/pkg/config"
	"github.com/matzehuels/optima/pkg/httputil"
	"github.com/matzehuels/optima/pkg/jobapi"
	"github.com/matzehuels/optima/pkg/poller"
	"github.com/matzehuels/optima/pkg/render/pie"
)

// appName is the application name used for display.
const appName = "optima"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
	LogError = log.ErrorLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// ConfigPath overrides the default config file location.
	ConfigPath string

	cfg *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// config loads the configuration once per process.
func (c *CLI) config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.ConfigPath)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("loaded config", "path", c.ConfigPath, "server", cfg.Server.BaseURL, "cache", cfg.Cache.Backend)
	c.cfg = cfg
	return cfg, nil
}

// =============================================================================
// Factories
// =============================================================================

// newCache opens the configured cache backend.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	return cache.Open(ctx, cfg.CacheOptions())
}

// newRunner creates a pie runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pie.Runner, error) {
	cc, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pie.NewRunner(cc, nil, c.Logger), nil
}

// newJobClient creates an API client for the configured server. An empty
// baseURL selects the configured one.
func (c *CLI) newJobClient(baseURL string) (*jobapi.Client, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	if baseURL == "" {
		baseURL = cfg.Server.BaseURL
	}
	return jobapi.New(baseURL,
		jobapi.WithHTTPClient(httputil.NewClient(cfg.Server.Timeout)),
		jobapi.WithLogger(c.Logger),
	)
}

// newRegistry creates a poll registry on top of client.
func (c *CLI) newRegistry(client *jobapi.Client, interval time.Duration) *poller.Registry {
	return poller.NewRegistry(client, poller.WithLogger(c.Logger), poller.WithInterval(interval))
}
