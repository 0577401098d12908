package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/roach88/cubefour/internal/arbiter"
	"github.com/roach88/cubefour/internal/match"
	"github.com/roach88/cubefour/internal/registry"
	"github.com/roach88/cubefour/internal/roster"
)

// MaxTimeLimit is the largest time_limit a request may ask for.
const MaxTimeLimit = 600 * time.Second

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	games   *registry.Registry
	arbiter *arbiter.Arbiter
	stepper *match.Stepper
	roster  *roster.Roster
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithRoster enables the participant routes and name resolution for module
// references.
func WithRoster(r *roster.Roster) Option {
	return func(s *Server) {
		s.roster = r
	}
}

// WithTimeout sets the move time limit used when a request omits one.
func WithTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithLogger sets the logger for request and move logging.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Server. arb serves algo-move requests; stepper serves
// auto-step requests.
func New(games *registry.Registry, arb *arbiter.Arbiter, stepper *match.Stepper, opts ...Option) *Server {
	s := &Server{
		games:   games,
		arbiter: arb,
		stepper: stepper,
		timeout: arbiter.DefaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Route("/games", func(r chi.Router) {
		r.Post("/", s.createGame)
		r.Get("/", s.listGames)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getGame)
			r.Delete("/", s.deleteGame)
			r.Post("/move", s.move)
			r.Post("/algo-move", s.algoMove)
			r.Post("/auto-step", s.autoStep)
		})
	})

	if s.roster != nil {
		r.Route("/participants", func(r chi.Router) {
			r.Get("/", s.listParticipants)
			r.Post("/", s.upsertParticipant)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.getParticipant)
				r.Patch("/", s.patchParticipant)
				r.Delete("/", s.deleteParticipant)
			})
		})
	}

	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
