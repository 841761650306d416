package taskapi

import (
	"encoding/json"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/optima/pkg/errors"
	"github.com/matzehuels/optima/pkg/poller"
)

// Defaults for simulated jobs.
const (
	DefaultStartDelay = 2 * time.Second
	DefaultDuration   = 10 * time.Second
)

// Server simulates task execution. It is safe for concurrent use.
type Server struct {
	startDelay time.Duration
	duration   time.Duration
	now        func() time.Time
	logger     *log.Logger
	registry   *prometheus.Registry
	requests   *prometheus.CounterVec

	mu   sync.Mutex
	jobs map[jobKey]*job

	router chi.Router
}

// Option configures a [Server].
type Option func(*Server)

// WithTiming sets how long jobs stay started and how long they run in total.
func WithTiming(startDelay, duration time.Duration) Option {
	return func(s *Server) {
		s.startDelay = max(startDelay, 0)
		s.duration = max(duration, s.startDelay)
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRegistry sets the Prometheus registry served on /metrics.
func WithRegistry(r *prometheus.Registry) Option {
	return func(s *Server) {
		if r != nil {
			s.registry = r
		}
	}
}

// New builds a server with its routes.
func New(opts ...Option) *Server {
	s := &Server{
		startDelay: DefaultStartDelay,
		duration:   DefaultDuration,
		now:        time.Now,
		logger:     log.Default(),
		registry:   prometheus.NewRegistry(),
		jobs:       make(map[jobKey]*job),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.requests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "optima", Subsystem: "taskapi", Name: "requests_total",
		Help: "Task API requests by method and status code.",
	}, []string{"method", "code"})
	active := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "optima", Subsystem: "taskapi", Name: "active_jobs",
		Help: "Jobs currently started or running.",
	}, func() float64 { return float64(s.activeCount()) })
	s.registry.MustRegister(s.requests, active)

	s.router = s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Fail ends an active job with status "error".
func (s *Server) Fail(resourceID, jobType, text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[jobKey{resourceID, jobType}]
	if !ok || !j.active(s.now(), s.startDelay, s.duration) {
		return false
	}
	j.final = poller.StatusError
	j.errorText = text
	j.stoppedAt = s.now()
	return true
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/tasks", s.handleList)
		r.Post("/task/{resourceID}/type/{jobType}", s.handleStart)
		r.Get("/task/{resourceID}/type/{jobType}", s.handleStatus)
		r.Delete("/task/{resourceID}/type/{jobType}", s.handleCancel)
		r.Get("/project/{projectID}/optimizations/{optimizationID}/results", func(w http.ResponseWriter, r *http.Request) {
			s.writeStatus(w, chi.URLParam(r, "optimizationID"), TypeOptimize)
		})
		r.Get("/project/{projectID}/parsets/{parsetID}/automatic_calibration", func(w http.ResponseWriter, r *http.Request) {
			s.writeStatus(w, chi.URLParam(r, "parsetID"), TypeAutofit)
		})
	})
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		code := ww.Status()
		if code == 0 {
			code = http.StatusOK
		}
		s.requests.WithLabelValues(r.Method, strconv.Itoa(code)).Inc()
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "status", code,
			"duration", time.Since(start), "request_id", middleware.GetReqID(r.Context()))
	})
}

func taskParams(r *http.Request) (jobKey, error) {
	k := jobKey{chi.URLParam(r, "resourceID"), chi.URLParam(r, "jobType")}
	if err := errors.ValidatePathSegment("resource id", k.resourceID); err != nil {
		return k, err
	}
	if err := errors.ValidatePathSegment("job type", k.jobType); err != nil {
		return k, err
	}
	return k, nil
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	k, err := taskParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	s.mu.Lock()
	now := s.now()
	if j, ok := s.jobs[k]; ok && j.active(now, s.startDelay, s.duration) {
		doc := j.doc(now, s.startDelay, s.duration)
		s.mu.Unlock()
		doc.Status = poller.StatusRunning
		writeJSON(w, http.StatusAlreadyReported, doc)
		return
	}
	j := &job{id: uuid.New(), resourceID: k.resourceID, jobType: k.jobType, startedAt: now}
	s.jobs[k] = j
	doc := j.doc(now, s.startDelay, s.duration)
	s.mu.Unlock()

	s.logger.Info("task started", "resource", k.resourceID, "type", k.jobType, "job", doc.JobID)
	writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	k, err := taskParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.writeStatus(w, k.resourceID, k.jobType)
}

func (s *Server) writeStatus(w http.ResponseWriter, resourceID, jobType string) {
	s.mu.Lock()
	j, ok := s.jobs[jobKey{resourceID, jobType}]
	var doc StatusDoc
	if ok {
		doc = j.doc(s.now(), s.startDelay, s.duration)
	}
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound,
			errors.New(errors.ErrCodeJobNotFound, "no %s task for %s", jobType, resourceID))
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	k, err := taskParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	s.mu.Lock()
	now := s.now()
	j, ok := s.jobs[k]
	var doc StatusDoc
	if ok {
		if j.active(now, s.startDelay, s.duration) {
			j.final = poller.StatusCancelled
			j.stoppedAt = now
		}
		doc = j.doc(now, s.startDelay, s.duration)
	}
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound,
			errors.New(errors.ErrCodeJobNotFound, "no %s task for %s", k.jobType, k.resourceID))
		return
	}
	s.logger.Info("task cancelled", "resource", k.resourceID, "type", k.jobType, "status", doc.Status)
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	now := s.now()
	docs := make([]StatusDoc, 0, len(s.jobs))
	for _, j := range s.jobs {
		docs = append(docs, j.doc(now, s.startDelay, s.duration))
	}
	s.mu.Unlock()

	slices.SortFunc(docs, func(a, b StatusDoc) int {
		if c := strings.Compare(a.ResourceID, b.ResourceID); c != 0 {
			return c
		}
		return strings.Compare(a.JobType, b.JobType)
	})
	writeJSON(w, http.StatusOK, docs)
}

func (s *Server) activeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for _, j := range s.jobs {
		if j.active(now, s.startDelay, s.duration) {
			n++
		}
	}
	return n
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{
		"error": errors.UserMessage(err),
		"code":  string(errors.GetCode(err)),
	})
}
