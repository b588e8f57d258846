// internal/api/server.go
package api

import (
	"context"
	"io/fs"
	"net/http"
	"os"

	apperrors "mergington-activities/internal/common/errors"
	"mergington-activities/internal/common/logger"
	"mergington-activities/internal/common/observability"
	"mergington-activities/internal/models"
	"mergington-activities/web"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// ActivityService is the part of the activity registry the HTTP layer needs.
type ActivityService interface {
	List(ctx context.Context) (models.Catalog, error)
	Signup(ctx context.Context, activityName, email string) (*models.SignupResponse, error)
	Ping(ctx context.Context) error
}

type Options struct {
	// StaticDir overrides the embedded front end when set.
	StaticDir     string
	Observability *observability.Observability
	Tracer        trace.Tracer
	// MetricsHandler defaults to promhttp.Handler().
	MetricsHandler http.Handler
}

// Server routes HTTP requests to the activity registry.
type Server struct {
	activities ActivityService
	errors     *apperrors.ErrorHandler
	logger     logger.Logger
	obs        *observability.Observability
	tracer     trace.Tracer
	static     fs.FS
	metrics    http.Handler
	mux        *http.ServeMux
}

func NewServer(activities ActivityService, log logger.Logger, opts Options) *Server {
	log = log.WithFields(map[string]interface{}{"component": "http"})

	s := &Server{
		activities: activities,
		errors:     apperrors.NewErrorHandler(log),
		logger:     log,
		obs:        opts.Observability,
		tracer:     opts.Tracer,
		static:     web.Static(),
		metrics:    opts.MetricsHandler,
		mux:        http.NewServeMux(),
	}
	if opts.StaticDir != "" {
		s.static = os.DirFS(opts.StaticDir)
	}
	if s.tracer == nil {
		s.tracer = noop.NewTracerProvider().Tracer("activity-server")
	}
	if s.metrics == nil {
		s.metrics = promhttp.Handler()
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	s.handle("GET /{$}", "root", http.HandlerFunc(s.handleRoot))
	s.handle("GET /activities", "list_activities", http.HandlerFunc(s.handleListActivities))
	s.handle("POST /activities/{activity_name}/signup", "signup", http.HandlerFunc(s.handleSignup))
	s.handle("GET /static/", "static", http.HandlerFunc(s.handleStatic))

	s.handle("GET /health", "health", http.HandlerFunc(s.handleHealth))
	s.handle("GET /ready", "ready", http.HandlerFunc(s.handleReady))
	s.mux.Handle("GET /metrics", s.metrics)
}

// Handler returns the root handler with request IDs applied to every route.
func (s *Server) Handler() http.Handler {
	return requestID(s.mux)
}
