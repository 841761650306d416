package cli

import (
	"context"
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/optima/pkg/taskapi"
)

// serveOpts holds the flags of the serve command.
type serveOpts struct {
	addr        string
	metricsAddr string
	startDelay  time.Duration
	duration    time.Duration
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a local task server for development",
		Long: `Run a task server that simulates optimization jobs.

Jobs report "started" for the start delay, then "running" until the
duration has passed, then "completed". The server exposes the same task,
optimization and calibration endpoints as the real server, plus /healthz and
/metrics.`,
		Example: `  optima serve --addr localhost:8080 --duration 30s
  optima poll --start --server http://localhost:8080 42:optimize`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config)")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "separate metrics listen address (default from config)")
	cmd.Flags().DurationVar(&opts.startDelay, "start-delay", 0, "how long jobs stay started (default from config)")
	cmd.Flags().DurationVar(&opts.duration, "duration", 0, "total job run time (default from config)")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}
	if opts.addr == "" {
		opts.addr = cfg.Serve.Addr
	}
	if opts.metricsAddr == "" {
		opts.metricsAddr = cfg.Metrics.Addr
	}
	if opts.startDelay == 0 {
		opts.startDelay = cfg.Serve.StartDelay
	}
	if opts.duration == 0 {
		opts.duration = cfg.Serve.Duration
	}

	reg := prom.NewRegistry()
	if err := installMetrics(reg); err != nil {
		return err
	}
	srv := taskapi.New(
		taskapi.WithTiming(opts.startDelay, opts.duration),
		taskapi.WithLogger(c.Logger),
		taskapi.WithRegistry(reg),
	)

	g, gctx := errgroup.WithContext(ctx)
	serveHTTP(gctx, g, &http.Server{Addr: opts.addr, Handler: srv, ReadHeaderTimeout: shutdownTimeout}, c.Logger.With("server", "tasks"))
	serveMetrics(gctx, g, opts.metricsAddr, reg, c.Logger)

	printSuccess("Task server on %s", StyleLink.Render("http://"+opts.addr))
	printDetail("jobs start after %s and finish after %s", opts.startDelay, opts.duration)

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
