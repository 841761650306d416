package poller

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/optima/pkg/errors"
	"github.com/matzehuels/optima/pkg/observability"
)

// DefaultInterval is the delay between checks when StartPoll is not given
// [Every].
const DefaultInterval = time.Second

// ErrClosed is returned by StartPoll after Close.
var ErrClosed = errors.New(errors.ErrCodeInternal, "poll registry closed")

// Transport talks to the job server.
type Transport interface {
	// Check fetches and decodes the status document at url.
	Check(ctx context.Context, url string) (*Payload, error)
	// Kill asks the server to cancel the job of jobType on resourceID.
	Kill(ctx context.Context, resourceID, jobType string) error
}

// Callback receives every update for a polled id.
type Callback func(Update)

// Option configures a [Registry].
type Option func(*Registry)

// WithLogger sets the logger. The default discards debug output.
func WithLogger(l *log.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithInterval changes the default delay between checks.
func WithInterval(d time.Duration) Option {
	return func(r *Registry) {
		if d > 0 {
			r.interval = d
		}
	}
}

// PollOption configures a single StartPoll call.
type PollOption func(*entry)

// Every sets the delay between checks for this id.
func Every(d time.Duration) PollOption {
	return func(e *entry) {
		if d > 0 {
			e.delay = d
		}
	}
}

type entry struct {
	id    string
	url   string
	cb    Callback
	delay time.Duration

	running  bool
	inFlight bool
	restart  bool
	timer    *time.Timer
	token    uint64

	last   Update
	lastAt time.Time
	checks int
}

// Registry owns the poll entries. Entries are created on first use and
// never removed, only deactivated. The zero value is not usable; call
// [NewRegistry].
type Registry struct {
	transport Transport
	logger    *log.Logger
	interval  time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	entries map[string]*entry
	seq     uint64
	closed  bool
}

// NewRegistry creates an empty registry that checks status through t.
func NewRegistry(t Transport, opts ...Option) *Registry {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Registry{
		transport: t,
		logger:    log.Default(),
		interval:  DefaultInterval,
		ctx:       ctx,
		cancel:    cancel,
		entries:   make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// StartPoll begins polling url for id and checks immediately. If id is
// already being polled only its url, callback and delay are replaced; they
// apply from the next check on.
func (r *Registry) StartPoll(id, url string, cb Callback, opts ...PollOption) error {
	if id == "" {
		return errors.New(errors.ErrCodeInvalidJobID, "poll id cannot be empty")
	}
	if strings.TrimSpace(url) == "" {
		return errors.New(errors.ErrCodeInvalidInput, "poll %s: url cannot be empty", id)
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrClosed
	}
	e := r.entry(id)
	e.url = url
	e.cb = cb
	e.delay = r.interval
	for _, opt := range opts {
		opt(e)
	}

	if e.running {
		r.mu.Unlock()
		r.logger.Debug("already polling", "id", id, "url", url)
		return nil
	}

	e.running = true
	if e.inFlight {
		// The previous session's worker is still waiting for a response.
		// It picks up the restart instead of a second concurrent check.
		e.restart = true
	} else {
		e.inFlight = true
		r.wg.Add(1)
		go r.run(e)
	}
	r.mu.Unlock()

	r.logger.Info("launch polling", "id", id, "url", url)
	observability.Poll().OnPollStart(r.ctx, id)
	return nil
}

// StopPoll cancels any pending check for id. It is a no-op when id is not
// being polled. A check already in flight still reaches the callback.
func (r *Registry) StopPoll(id string) {
	r.mu.Lock()
	e, ok := r.entries[id]
	if !ok || !e.running {
		r.mu.Unlock()
		return
	}
	r.deactivate(e)
	r.mu.Unlock()

	r.logger.Info("stop polling", "id", id)
	observability.Poll().OnPollStop(r.ctx, id)
}

// StopPolls stops every running poll.
func (r *Registry) StopPolls() {
	for _, id := range r.runningIDs() {
		r.StopPoll(id)
	}
}

// IsRunning reports whether a check for id is scheduled or in flight in the
// current session.
func (r *Registry) IsRunning(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	return ok && e.running
}

// KillJob asks the server to cancel a job and returns without waiting.
// The outcome is logged; the registry is not changed, so a poll on the same
// job sees the cancellation on its next check.
func (r *Registry) KillJob(resourceID, jobType string) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		r.logger.Warn("kill ignored, registry closed", "resource", resourceID, "type", jobType)
		return
	}
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()
		err := r.transport.Kill(r.ctx, resourceID, jobType)
		observability.Poll().OnKill(r.ctx, resourceID, jobType, err)
		if err != nil {
			r.logger.Error("kill job failed", "resource", resourceID, "type", jobType, "error", err)
			return
		}
		r.logger.Info("kill requested", "resource", resourceID, "type", jobType)
	}()
}

// EntryInfo is a point-in-time view of one entry.
type EntryInfo struct {
	ID        string
	URL       string
	Running   bool
	InFlight  bool
	Interval  time.Duration
	Last      Update
	LastCheck time.Time
	Checks    int
}

// Snapshot returns every entry ever referenced, sorted by id.
func (r *Registry) Snapshot() []EntryInfo {
	r.mu.Lock()
	out := make([]EntryInfo, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, EntryInfo{
			ID:        e.id,
			URL:       e.url,
			Running:   e.running,
			InFlight:  e.inFlight,
			Interval:  e.delay,
			Last:      e.last,
			LastCheck: e.lastAt,
			Checks:    e.checks,
		})
	}
	r.mu.Unlock()

	slices.SortFunc(out, func(a, b EntryInfo) int { return strings.Compare(a.ID, b.ID) })
	return out
}

// Close stops every poll, cancels checks in flight and waits for all
// goroutines to exit. Callbacks of cancelled checks are not invoked.
func (r *Registry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	var stopped []string
	for id, e := range r.entries {
		if e.running {
			r.deactivate(e)
			stopped = append(stopped, id)
		}
	}
	r.mu.Unlock()

	for _, id := range stopped {
		observability.Poll().OnPollStop(r.ctx, id)
	}
	r.cancel()
	r.wg.Wait()
	r.logger.Debug("poll registry closed", "stopped", len(stopped))
}

// entry returns the entry for id, creating it. r.mu must be held.
func (r *Registry) entry(id string) *entry {
	e, ok := r.entries[id]
	if !ok {
		e = &entry{id: id}
		r.entries[id] = e
	}
	return e
}

// deactivate ends the current session of e. r.mu must be held.
func (r *Registry) deactivate(e *entry) {
	e.running = false
	e.restart = false
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.token = 0
}

func (r *Registry) runningIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for id, e := range r.entries {
		if e.running {
			ids = append(ids, id)
		}
	}
	return ids
}

// run performs checks for e until it goes idle or schedules the next tick.
// The caller has set e.inFlight and added to r.wg.
func (r *Registry) run(e *entry) {
	defer r.wg.Done()

	for {
		r.mu.Lock()
		if !e.running {
			e.inFlight = false
			r.mu.Unlock()
			return
		}
		e.restart = false
		url := e.url
		r.mu.Unlock()

		start := time.Now()
		p, err := r.transport.Check(r.ctx, url)
		var u Update
		if err != nil {
			u = Failed{Err: err}
		} else {
			u = Classify(p)
		}
		elapsed := time.Since(start)

		r.mu.Lock()
		ended := false
		if u.Terminal() && e.running && !e.restart {
			r.deactivate(e)
			ended = true
		}
		e.last, e.lastAt = u, time.Now()
		e.checks++
		cb := e.cb
		closed := r.closed
		r.mu.Unlock()

		r.logger.Debug("poll tick", "id", e.id, "status", u.Status(), "duration", elapsed)
		observability.Poll().OnPollTick(r.ctx, e.id, u.Status(), elapsed, err)
		if ended {
			if f, ok := u.(Failed); ok {
				r.logger.Warn("stop polling", "id", e.id, "reason", f.Reason())
			} else {
				r.logger.Info("stop polling", "id", e.id, "status", u.Status())
			}
			observability.Poll().OnPollStop(r.ctx, e.id)
		}
		if cb != nil && !closed {
			cb(u)
		}

		r.mu.Lock()
		if !e.running {
			e.inFlight = false
			r.mu.Unlock()
			return
		}
		if e.restart {
			r.mu.Unlock()
			continue
		}
		e.inFlight = false
		r.schedule(e)
		r.mu.Unlock()
		return
	}
}

// schedule arms the timer for the next check. r.mu must be held.
func (r *Registry) schedule(e *entry) {
	r.seq++
	tok := r.seq
	e.token = tok
	e.timer = time.AfterFunc(e.delay, func() { r.fire(e, tok) })
}

func (r *Registry) fire(e *entry, tok uint64) {
	r.mu.Lock()
	if r.closed || e.token != tok || !e.running || e.inFlight {
		r.mu.Unlock()
		return
	}
	e.timer = nil
	e.token = 0
	e.inFlight = true
	r.wg.Add(1)
	r.mu.Unlock()

	r.run(e)
}
