package cli

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/optima/pkg/observability/prometheus"
)

const shutdownTimeout = 5 * time.Second

// installMetrics registers the optima collectors on reg and routes the
// observability hooks to them.
func installMetrics(reg prom.Registerer) error {
	m, err := prometheus.New("", reg)
	if err != nil {
		return err
	}
	m.Install()
	return nil
}

// serveHTTP runs srv in g until ctx is done, then shuts it down.
func serveHTTP(ctx context.Context, g *errgroup.Group, srv *http.Server, logger *log.Logger) {
	g.Go(func() error {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
}

// serveMetrics exposes reg on addr. An empty addr does nothing.
func serveMetrics(ctx context.Context, g *errgroup.Group, addr string, reg *prom.Registry, logger *log.Logger) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	serveHTTP(ctx, g, &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: shutdownTimeout}, logger.With("server", "metrics"))
}

// withMetrics runs fn while metrics are served on addr. The metrics
// listener stops when fn returns.
func withMetrics(ctx context.Context, addr string, logger *log.Logger, fn func(ctx context.Context) error) error {
	if addr == "" {
		return fn(ctx)
	}
	reg := prom.NewRegistry()
	if err := installMetrics(reg); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	serveMetrics(gctx, g, addr, reg, logger)
	g.Go(func() error {
		defer cancel()
		return fn(gctx)
	})
	return g.Wait()
}
