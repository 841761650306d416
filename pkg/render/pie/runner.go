package pie

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/optima/pkg/cache"
	"github.com/matzehuels/optima/pkg/observability"
	"github.com/matzehuels/optima/pkg/render/pie/layout"
	"github.com/matzehuels/optima/pkg/render/pie/sink"
)

// Cache key types reported to the cache hooks.
const (
	keyTypeChart    = "chart"
	keyTypeArtifact = "artifact"
)

// Runner executes the pipeline with caching. It holds no per-run state and
// is safe for concurrent use.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching; a nil keyer
// selects [cache.DefaultKeyer].
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute lays out opts.Slices and renders every requested format.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	res := &Result{ChartHash: dataHash(opts.Slices)}
	res.Stats.Slices = len(opts.Slices)

	layoutStart := time.Now()
	chart, hit, err := r.ComputeWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	res.Chart = chart
	res.Stats.LayoutTime = time.Since(layoutStart)
	res.CacheInfo.ChartHit = hit

	opts.Logger.Info("computed layout",
		"slices", len(opts.Slices),
		"iterations", chart.Relaxation.Iterations,
		"cached", hit,
		"duration", res.Stats.LayoutTime)

	renderStart := time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, chart, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	res.Artifacts = artifacts
	res.Stats.RenderTime = time.Since(renderStart)
	res.CacheInfo.RenderHit = hit

	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", hit,
		"duration", res.Stats.RenderTime)

	return res, nil
}

// ComputeWithCacheInfo computes the layout, reading and filling the cache.
// The bool reports a cache hit.
func (r *Runner) ComputeWithCacheInfo(ctx context.Context, opts Options) (*layout.Chart, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	key := r.Keyer.ChartKey(dataHash(opts.Slices), opts.ChartKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var chart layout.Chart
			if err := json.Unmarshal(data, &chart); err == nil {
				observability.Cache().OnCacheHit(ctx, keyTypeChart)
				return &chart, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, keyTypeChart)
	}

	start := time.Now()
	chart, err := layout.Compute(opts.Slices, opts.Geometry(), opts.Layout)
	if err != nil {
		return nil, false, err
	}
	observability.Layout().OnRelax(ctx, len(chart.Labels), chart.Relaxation.Iterations, chart.Relaxation.Converged, time.Since(start))
	if !chart.Relaxation.Converged {
		opts.Logger.Warn("label relaxation did not converge",
			"iterations", chart.Relaxation.Iterations,
			"collisions", layout.Collisions(chart.Labels, opts.Layout.Spacing))
	}

	if data, err := json.Marshal(chart); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.TTLChart); err == nil {
			observability.Cache().OnCacheSet(ctx, keyTypeChart, len(data))
		} else {
			opts.Logger.Debug("cache write failed", "key", key, "error", err)
		}
	}
	return chart, false, nil
}

// Compute discards the cache hit info of [Runner.ComputeWithCacheInfo].
func (r *Runner) Compute(ctx context.Context, opts Options) (*layout.Chart, error) {
	chart, _, err := r.ComputeWithCacheInfo(ctx, opts)
	return chart, err
}

// RenderWithCacheInfo renders every format in opts.Formats. The bool is
// true only when all formats came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, chart *layout.Chart, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	chartData, err := json.Marshal(chart)
	if err != nil {
		return nil, false, fmt.Errorf("serialize chart for cache key: %w", err)
	}
	chartHash := cache.Hash(chartData)

	artifacts := make(map[string][]byte, len(opts.Formats))
	allCached := true
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(chartHash, opts.ArtifactKeyOpts(format))
		if !opts.Refresh {
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				observability.Cache().OnCacheHit(ctx, keyTypeArtifact)
				artifacts[format] = data
				continue
			}
			observability.Cache().OnCacheMiss(ctx, keyTypeArtifact)
		}
		allCached = false

		start := time.Now()
		data, err := renderFormat(ctx, chart, format, opts)
		observability.Layout().OnRender(ctx, format, len(data), time.Since(start), err)
		if err != nil {
			return nil, false, err
		}
		artifacts[format] = data

		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err == nil {
			observability.Cache().OnCacheSet(ctx, keyTypeArtifact, len(data))
		}
	}
	return artifacts, allCached, nil
}

// Render discards the cache hit info of [Runner.RenderWithCacheInfo].
func (r *Runner) Render(ctx context.Context, chart *layout.Chart, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, chart, opts)
	return artifacts, err
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func renderFormat(ctx context.Context, chart *layout.Chart, format string, opts Options) ([]byte, error) {
	svgOpts := []sink.SVGOption{sink.WithTitle(opts.Title), sink.WithPalette(opts.Palette...)}
	switch format {
	case FormatSVG:
		return sink.RenderSVG(chart, svgOpts...), nil
	case FormatJSON:
		return sink.RenderJSON(chart)
	case FormatPNG:
		return sink.RenderPNG(ctx, chart, sink.WithPNGSVGOptions(svgOpts...), sink.WithScale(opts.Scale))
	case FormatPDF:
		return sink.RenderPDF(ctx, chart, sink.WithPDFSVGOptions(svgOpts...))
	}
	return nil, ValidateFormat(format)
}

func dataHash(slices []layout.Slice) string {
	data, _ := json.Marshal(slices)
	return cache.Hash(data)
}
