// Package devserver is a local stand-in for the homework API. It serves the
// submission lookup and submit endpoints backed by SQLite.
package devserver

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/abhisek/homeplay/internal/store"
)

// Options configures a Server.
type Options struct {
	Logger      *zap.Logger
	CORSOrigins []string
	// Token, when set, must be presented as a bearer credential.
	Token string
	// Registry receives the server's metrics. Defaults to a fresh registry.
	Registry *prometheus.Registry
}

// Server serves the homework submission API.
type Server struct {
	repo    store.SubmissionRepo
	logger  *zap.Logger
	token   string
	metrics *metrics
	router  chi.Router
}

// New creates a Server storing submissions in repo.
func New(repo store.SubmissionRepo, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}

	s := &Server{
		repo:    repo,
		logger:  opts.Logger,
		token:   opts.Token,
		metrics: newMetrics(opts.Registry),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Handle("/metrics", promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{}))

	r.Group(func(hr chi.Router) {
		hr.Use(s.requireToken)
		hr.Route("/homework/{homeworkID}", func(hr chi.Router) {
			hr.Get("/submissions", s.handleListSubmissions)
			hr.Post("/submit", s.handleSubmit)
		})
	})

	s.router = r
	return s
}

// Handler returns the HTTP handler for the API.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token != "" {
			got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || got != s.token {
				writeFailure(w, http.StatusUnauthorized, "unauthorized")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		s.metrics.observeRequest(r.Method, route, ww.Status(), time.Since(start))
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("route", route),
			zap.Int("status", ww.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

type envelope struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message,omitempty"`
	Submission *wireSubmission `json:"submission,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeFailure(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{Success: false, Message: msg})
}
