// Package server provides the HTTP server and routing for the flip analysis API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/widia-io/widia-flip-sub001/internal/config"
	"github.com/widia-io/widia-flip-sub001/internal/di"
	analysishandlers "github.com/widia-io/widia-flip-sub001/internal/modules/analysis/handlers"
	propertyhandlers "github.com/widia-io/widia-flip-sub001/internal/modules/properties/handlers"
	rateshandlers "github.com/widia-io/widia-flip-sub001/internal/modules/rates/handlers"
	settingshandlers "github.com/widia-io/widia-flip-sub001/internal/modules/settings/handlers"
	snapshothandlers "github.com/widia-io/widia-flip-sub001/internal/modules/snapshots/handlers"
	"github.com/widia-io/widia-flip-sub001/internal/utils"
)

// Config holds server configuration
type Config struct {
	Log       zerolog.Logger
	Config    *config.Config
	Container *di.Container
}

// Server represents the HTTP server
type Server struct {
	router    *chi.Mux
	server    *http.Server
	log       zerolog.Logger
	cfg       *config.Config
	container *di.Container
	system    *SystemHandlers
	stream    *EventsStreamHandler
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		log:       cfg.Log.With().Str("component", "server").Logger(),
		cfg:       cfg.Config,
		container: cfg.Container,
		system:    NewSystemHandlers(cfg.Container, cfg.Config, cfg.Log),
		stream:    NewEventsStreamHandler(cfg.Container.EventBus, cfg.Log),
	}

	s.setupMiddleware(cfg.Config.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Config.Port),
		Handler:     s.router,
		ReadTimeout: 15 * time.Second,
		// Event streams hold the response open, so no write timeout here;
		// regular requests are bounded by the Timeout middleware.
		IdleTimeout: 60 * time.Second,
	}

	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5, "application/json"))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		// Long-lived streams sit outside the request timeout
		r.Get("/events/stream", s.stream.ServeHTTP)
		r.Get("/events/ws", s.stream.ServeWebSocket)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))

			c := s.container
			settingshandlers.NewHandler(c.SettingsService, s.log).RegisterRoutes(r)
			propertyhandlers.NewHandler(c.PropertyService, s.log).RegisterRoutes(r)
			rateshandlers.NewHandler(c.RatesService, s.log).RegisterRoutes(r)
			analysishandlers.NewHandler(c.AnalysisService, s.log).RegisterRoutes(r)
			snapshothandlers.NewHandler(c.SnapshotService, s.log).RegisterRoutes(r)

			s.system.RegisterRoutes(r)
		})
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	response := map[string]interface{}{
		"status":  "healthy",
		"service": "flip-analysis",
	}

	for name, db := range s.container.Databases() {
		if err := db.QuickCheck(r.Context()); err != nil {
			s.log.Warn().Err(err).Str("database", name).Msg("Health check failed")
			response["status"] = "unhealthy"
			response["error"] = fmt.Sprintf("%s: %v", name, err)
			status = http.StatusServiceUnavailable
			break
		}
	}

	utils.WriteJSON(w, status, response, s.log)
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
