// Package server provides the HTTP server and routing for EcoPath.
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

	"github.com/ecopath/ecopath/internal/di"
	dashboardhandlers "github.com/ecopath/ecopath/internal/modules/dashboard/handlers"
	inventoryhandlers "github.com/ecopath/ecopath/internal/modules/inventory/handlers"
	redistributionhandlers "github.com/ecopath/ecopath/internal/modules/redistribution/handlers"
)

// Config holds server configuration
type Config struct {
	Log       zerolog.Logger
	Port      int
	DevMode   bool
	Container *di.Container // DI container with all services
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	port           int
	container      *di.Container
	systemHandlers *SystemHandlers
	eventsStream   *EventsStreamHandler
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		log:       cfg.Log.With().Str("component", "server").Logger(),
		port:      cfg.Port,
		container: cfg.Container,
	}

	s.systemHandlers = NewSystemHandlers(cfg.Log, cfg.Container.InventoryDB, cfg.Container.BackupService)
	if cfg.Container.EventBus != nil {
		s.eventsStream = NewEventsStreamHandler(cfg.Container.EventBus, cfg.Log)
	}

	s.setupMiddleware()
	s.setupRoutes(cfg.DevMode)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 75 * time.Second, // above the 60s request timeout
		IdleTimeout:  60 * time.Second,
	}
	if s.eventsStream != nil {
		s.server.RegisterOnShutdown(s.eventsStream.Close)
	}

	return s
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
}

// setupRoutes mounts every endpoint. Request/response endpoints get a timeout and
// compression; the event stream is long-lived and gets neither.
func (s *Server) setupRoutes(devMode bool) {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		if s.eventsStream != nil {
			r.Get("/events/stream", s.eventsStream.ServeHTTP)
		}

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))
			if !devMode {
				r.Use(middleware.Compress(5))
			}

			s.systemHandlers.RegisterRoutes(r)

			inventoryhandlers.NewHandler(s.container.InventoryService, s.log).RegisterRoutes(r)
			redistributionhandlers.NewHandler(s.container.RedistributionService, s.log).RegisterRoutes(r)
			dashboardhandlers.NewHandler(s.container.DashboardService, s.log).RegisterRoutes(r)
		})
	})
}

// Start starts the HTTP server. It blocks until the server stops.
func (s *Server) Start() error {
	s.log.Info().Int("port", s.port).Msg("Starting HTTP server")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		event := s.log.Info()
		if ww.Status() >= http.StatusInternalServerError {
			event = s.log.Warn()
		}
		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
