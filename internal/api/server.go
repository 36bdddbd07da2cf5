package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/pravnik-mk/compliance-engine/internal/assessment"
	"github.com/pravnik-mk/compliance-engine/internal/config"
	"github.com/pravnik-mk/compliance-engine/internal/health"
	"github.com/pravnik-mk/compliance-engine/internal/models"
	"github.com/pravnik-mk/compliance-engine/internal/storage"
)

// API permissions
const (
	PermissionRead  = "assessments:read"
	PermissionWrite = "assessments:write"
)

// CatalogLister lists the served catalog versions
type CatalogLister interface {
	List() []models.CatalogSummary
}

// Server represents the HTTP API server
type Server struct {
	config         config.ServerConfig
	router         *chi.Mux
	assessments    assessment.Service
	catalogs       CatalogLister
	health         *health.Registry
	authMiddleware *AuthMiddleware
	evaluateSchema *jsonschema.Schema
}

// NewServer creates a new API server
func NewServer(
	cfg config.ServerConfig,
	service assessment.Service,
	catalogs CatalogLister,
	registry *health.Registry,
	repo storage.Repository,
) (*Server, error) {
	schema, err := compileEvaluateSchema()
	if err != nil {
		return nil, err
	}

	s := &Server{
		config:         cfg,
		assessments:    service,
		catalogs:       catalogs,
		health:         registry,
		authMiddleware: NewAuthMiddleware(repo),
		evaluateSchema: schema,
	}
	s.setupRouter()
	return s, nil
}

// Router returns the configured router
func (s *Server) Router() http.Handler {
	return s.router
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}

// setupRouter configures all routes and middleware
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Location"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Public probes and metrics
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.authMiddleware.Authenticate)

		r.Route("/catalogs", func(r chi.Router) {
			r.With(s.authMiddleware.RequirePermission(PermissionRead)).Get("/", s.handleListCatalogs)
			r.With(s.authMiddleware.RequirePermission(PermissionRead)).Get("/{type}/questions", s.handleGetQuestions)
			r.With(s.authMiddleware.RequirePermission(PermissionWrite)).Post("/{type}/assessments", s.handleEvaluate)
		})

		r.Route("/assessments/{id}", func(r chi.Router) {
			r.With(s.authMiddleware.RequirePermission(PermissionRead)).Get("/", s.handleGetAssessment)
			r.With(s.authMiddleware.RequirePermission(PermissionRead)).Get("/report", s.handleGetReport)
		})

		r.With(s.authMiddleware.RequirePermission(PermissionRead)).
			Get("/companies/{companyId}/assessments", s.handleListCompanyAssessments)
	})

	s.router = r
}

// loggingMiddleware logs HTTP requests using slog
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			slog.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
				"remote_addr", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
