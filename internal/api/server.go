package api

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/mux"

	"github.com/Aman-CERP/ftmodel/internal/errors"
	"github.com/Aman-CERP/ftmodel/internal/lock"
	"github.com/Aman-CERP/ftmodel/internal/telemetry"
	"github.com/Aman-CERP/ftmodel/pkg/backend"
	"github.com/Aman-CERP/ftmodel/pkg/record"
)

// Page size defaults for the records listing.
const (
	DefaultPerPage = 15
	MaxPerPage     = 100
)

// Server exposes a model registry over HTTP.
type Server struct {
	registry  *record.Registry
	exec      backend.Executor
	metrics   *telemetry.QueryMetrics
	collector *telemetry.Collector
	logger    *slog.Logger
	limiter   *rateLimiter
	lockDir   string
	perPage   int
	maxPage   int

	mu    sync.Mutex
	repos map[string]*record.Repository

	router *mux.Router
}

// Option configures a Server.
type Option func(*Server)

// WithQueryMetrics serves m on /metrics/queries.
func WithQueryMetrics(m *telemetry.QueryMetrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithCollector serves c on /metrics.
func WithCollector(c *telemetry.Collector) Option {
	return func(s *Server) { s.collector = c }
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRateLimit limits each client to rps requests per second. Zero disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Server) {
		if rps > 0 {
			s.limiter = newRateLimiter(rps, burst)
		}
	}
}

// WithLockDir sets where index rebuild locks live.
func WithLockDir(dir string) Option {
	return func(s *Server) { s.lockDir = dir }
}

// WithPerPage sets the default and maximum page sizes.
func WithPerPage(def, limit int) Option {
	return func(s *Server) {
		if def > 0 {
			s.perPage = def
		}
		if limit >= s.perPage {
			s.maxPage = limit
		}
	}
}

// NewServer builds the router for reg, reaching the backend through exec.
func NewServer(reg *record.Registry, exec backend.Executor, opts ...Option) *Server {
	s := &Server{
		registry: reg,
		exec:     exec,
		logger:   slog.Default(),
		lockDir:  lock.DefaultDir(),
		perPage:  DefaultPerPage,
		maxPage:  MaxPerPage,
		repos:    make(map[string]*record.Repository),
		router:   mux.NewRouter(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.routes()
	s.router.Use(requestID, requestLogger(s.logger))
	if s.limiter != nil {
		s.router.Use(s.limiter.middleware)
	}
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Warn("no route", "method", r.Method, "path", r.URL.Path)
		WriteJSONError(w, errors.Newf(errors.ErrCodeNotFound, "no route for %s %s", r.Method, r.URL.Path))
	})
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/models", s.handleModels).Methods(http.MethodGet)
	s.router.HandleFunc("/models/{model}/records", s.handleList).Methods(http.MethodGet)
	s.router.HandleFunc("/models/{model}/records", s.handleCreate).Methods(http.MethodPost)
	s.router.HandleFunc("/models/{model}/records/{id}", s.handleGet).Methods(http.MethodGet)
	s.router.HandleFunc("/models/{model}/records/{id}", s.handleUpdate).Methods(http.MethodPatch)
	s.router.HandleFunc("/models/{model}/records/{id}", s.handleDelete).Methods(http.MethodDelete)
	s.router.HandleFunc("/models/{model}/index", s.handleRecreateIndex).Methods(http.MethodPost)
	s.router.HandleFunc("/metrics/queries", s.handleQueryMetrics).Methods(http.MethodGet)
	if s.collector != nil {
		s.router.Handle("/metrics", s.collector.Handler()).Methods(http.MethodGet)
	}
}

// repository returns the cached repository for the named model.
func (s *Server) repository(name string) (*record.Repository, error) {
	m, err := s.registry.Lookup(name)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	repo, ok := s.repos[m.Name()]
	if !ok {
		repo = record.NewRepository(m, s.exec)
		s.repos[m.Name()] = repo
	}
	return repo, nil
}
