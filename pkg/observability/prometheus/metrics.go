// Package prometheus implements the observability hooks with Prometheus
// collectors.
package prometheus

import (
	"context"
	"errors"
	"fmt"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/optima/pkg/observability"
)

const defaultNamespace = "optima"

// Metrics records poller, layout, cache and HTTP events. Register it with
// the observability package to start collecting.
type Metrics struct {
	pollActive     prom.Gauge
	pollTicks      *prom.CounterVec
	pollDuration   *prom.HistogramVec
	killTotal      *prom.CounterVec
	relaxRuns      *prom.CounterVec
	relaxPasses    prom.Histogram
	renderDuration *prom.HistogramVec
	cacheOps       *prom.CounterVec
	httpRequests   *prom.CounterVec
	httpDuration   *prom.HistogramVec
}

var (
	_ observability.PollHooks   = (*Metrics)(nil)
	_ observability.LayoutHooks = (*Metrics)(nil)
	_ observability.CacheHooks  = (*Metrics)(nil)
	_ observability.HTTPHooks   = (*Metrics)(nil)
)

// New creates and registers the collectors. An empty namespace means
// "optima"; a nil registerer means the default one. Registering twice on the
// same registerer reuses the existing collectors.
func New(namespace string, reg prom.Registerer) (*Metrics, error) {
	if namespace == "" {
		namespace = defaultNamespace
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}

	m := &Metrics{
		pollActive: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace, Name: "poll_active",
			Help: "Number of job ids currently being polled.",
		}),
		pollTicks: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace, Name: "poll_ticks_total",
			Help: "Status checks by classified outcome.",
		}, []string{"status"}),
		pollDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace, Name: "poll_check_duration_seconds",
			Help: "Status check round-trip time.", Buckets: prom.DefBuckets,
		}, []string{"status"}),
		killTotal: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace, Name: "kill_requests_total",
			Help: "Kill requests by job type and result.",
		}, []string{"job_type", "result"}),
		relaxRuns: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace, Name: "layout_relax_total",
			Help: "Label relaxation runs by convergence.",
		}, []string{"converged"}),
		relaxPasses: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace, Name: "layout_relax_passes",
			Help:    "Relaxation passes per run.",
			Buckets: prom.ExponentialBuckets(1, 2, 10),
		}),
		renderDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace, Name: "render_duration_seconds",
			Help: "Artifact render time by format.", Buckets: prom.DefBuckets,
		}, []string{"format", "result"}),
		cacheOps: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace, Name: "cache_operations_total",
			Help: "Cache operations by key type and outcome.",
		}, []string{"key_type", "op"}),
		httpRequests: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace, Name: "http_requests_total",
			Help: "Outgoing HTTP requests by method and status code.",
		}, []string{"method", "code"}),
		httpDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds",
			Help: "Outgoing HTTP request latency.", Buckets: prom.DefBuckets,
		}, []string{"method"}),
	}

	var err error
	if m.pollActive, err = registerCollector(reg, m.pollActive); err != nil {
		return nil, err
	}
	if m.pollTicks, err = registerCollector(reg, m.pollTicks); err != nil {
		return nil, err
	}
	if m.pollDuration, err = registerCollector(reg, m.pollDuration); err != nil {
		return nil, err
	}
	if m.killTotal, err = registerCollector(reg, m.killTotal); err != nil {
		return nil, err
	}
	if m.relaxRuns, err = registerCollector(reg, m.relaxRuns); err != nil {
		return nil, err
	}
	if m.relaxPasses, err = registerCollector(reg, m.relaxPasses); err != nil {
		return nil, err
	}
	if m.renderDuration, err = registerCollector(reg, m.renderDuration); err != nil {
		return nil, err
	}
	if m.cacheOps, err = registerCollector(reg, m.cacheOps); err != nil {
		return nil, err
	}
	if m.httpRequests, err = registerCollector(reg, m.httpRequests); err != nil {
		return nil, err
	}
	if m.httpDuration, err = registerCollector(reg, m.httpDuration); err != nil {
		return nil, err
	}
	return m, nil
}

// Install registers m for every hook category.
func (m *Metrics) Install() {
	observability.SetPollHooks(m)
	observability.SetLayoutHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

func (m *Metrics) OnPollStart(context.Context, string) { m.pollActive.Inc() }
func (m *Metrics) OnPollStop(context.Context, string)  { m.pollActive.Dec() }

func (m *Metrics) OnPollTick(_ context.Context, _ string, status string, d time.Duration, _ error) {
	status = normalizeLabel(status, "unknown")
	m.pollTicks.WithLabelValues(status).Inc()
	m.pollDuration.WithLabelValues(status).Observe(d.Seconds())
}

func (m *Metrics) OnKill(_ context.Context, _ string, jobType string, err error) {
	m.killTotal.WithLabelValues(normalizeLabel(jobType, "unknown"), resultLabel(err)).Inc()
}

func (m *Metrics) OnRelax(_ context.Context, _ int, iterations int, converged bool, _ time.Duration) {
	m.relaxRuns.WithLabelValues(fmt.Sprint(converged)).Inc()
	m.relaxPasses.Observe(float64(iterations))
}

func (m *Metrics) OnRender(_ context.Context, format string, _ int, d time.Duration, err error) {
	m.renderDuration.WithLabelValues(normalizeLabel(format, "unknown"), resultLabel(err)).Observe(d.Seconds())
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(normalizeLabel(keyType, "unknown"), "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(normalizeLabel(keyType, "unknown"), "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, _ int) {
	m.cacheOps.WithLabelValues(normalizeLabel(keyType, "unknown"), "set").Inc()
}

func (m *Metrics) OnRequest(context.Context, string, string, string) {}

func (m *Metrics) OnResponse(_ context.Context, method, _, _ string, code int, d time.Duration) {
	m.httpRequests.WithLabelValues(method, fmt.Sprint(code)).Inc()
	m.httpDuration.WithLabelValues(method).Observe(d.Seconds())
}

func (m *Metrics) OnError(_ context.Context, method, _, _ string, _ error) {
	m.httpRequests.WithLabelValues(method, "error").Inc()
}

func normalizeLabel(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func registerCollector[T prom.Collector](reg prom.Registerer, c T) (T, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var are prom.AlreadyRegisteredError
	if errors.As(err, &are) {
		existing, ok := are.ExistingCollector.(T)
		if !ok {
			return c, fmt.Errorf("collector type mismatch for %T", c)
		}
		return existing, nil
	}
	return c, err
}
