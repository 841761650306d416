// Package observability provides hooks for metrics and tracing.
//
// Libraries emit events through the registered hooks; the defaults are
// no-ops, so nothing is recorded unless main registers an implementation.
// The [prometheus] subpackage provides one backed by client_golang.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    m := prometheus.New(registry)
//	    observability.SetPollHooks(m)
//	    observability.SetLayoutHooks(m)
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Poll().OnPollStart(ctx, id)
//	observability.Poll().OnPollTick(ctx, id, "running", duration, nil)
//
// [prometheus]: github.com/matzehuels/optima/pkg/observability/prometheus
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Poll Hooks
// =============================================================================

// PollHooks receives events from the job poller.
type PollHooks interface {
	// OnPollStart records a poll session becoming active.
	OnPollStart(ctx context.Context, id string)

	// OnPollTick records one status check. status is the classified update
	// kind ("started", "running", "completed", "failed").
	OnPollTick(ctx context.Context, id, status string, duration time.Duration, err error)

	// OnPollStop records a poll session going idle, either because the job
	// reached a terminal state or because it was stopped.
	OnPollStop(ctx context.Context, id string)

	// OnKill records a kill request and its outcome.
	OnKill(ctx context.Context, resourceID, jobType string, err error)
}

// =============================================================================
// Layout Hooks
// =============================================================================

// LayoutHooks receives events from pie label layout.
type LayoutHooks interface {
	// OnRelax records one relaxation run.
	OnRelax(ctx context.Context, labels, iterations int, converged bool, duration time.Duration)

	// OnRender records one artifact render.
	OnRender(ctx context.Context, format string, size int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPollHooks is a no-op implementation of PollHooks.
type NoopPollHooks struct{}

func (NoopPollHooks) OnPollStart(context.Context, string)                              {}
func (NoopPollHooks) OnPollTick(context.Context, string, string, time.Duration, error) {}
func (NoopPollHooks) OnPollStop(context.Context, string)                               {}
func (NoopPollHooks) OnKill(context.Context, string, string, error)                    {}

// NoopLayoutHooks is a no-op implementation of LayoutHooks.
type NoopLayoutHooks struct{}

func (NoopLayoutHooks) OnRelax(context.Context, int, int, bool, time.Duration)      {}
func (NoopLayoutHooks) OnRender(context.Context, string, int, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	pollHooks   PollHooks   = NoopPollHooks{}
	layoutHooks LayoutHooks = NoopLayoutHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	httpHooks   HTTPHooks   = NoopHTTPHooks{}
	hooksMu     sync.RWMutex
)

// SetPollHooks registers custom poll hooks. Nil is ignored.
func SetPollHooks(h PollHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pollHooks = h
	}
}

// SetLayoutHooks registers custom layout hooks. Nil is ignored.
func SetLayoutHooks(h LayoutHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		layoutHooks = h
	}
}

// SetCacheHooks registers custom cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks. Nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Poll returns the registered poll hooks.
func Poll() PollHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pollHooks
}

// Layout returns the registered layout hooks.
func Layout() LayoutHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return layoutHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pollHooks = NoopPollHooks{}
	layoutHooks = NoopLayoutHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
