package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/slipstream/posterd/internal/activity"
	apimw "github.com/slipstream/posterd/internal/api/middleware"
	"github.com/slipstream/posterd/internal/health"
	"github.com/slipstream/posterd/internal/metrics"
	"github.com/slipstream/posterd/internal/poster"
	"github.com/slipstream/posterd/internal/posterqueue"
	"github.com/slipstream/posterd/internal/release"
	"github.com/slipstream/posterd/internal/scheduler"
)

// Deps are the services the HTTP API exposes. Logs and Scheduler may be nil.
type Deps struct {
	Releases  *release.Store
	Posters   *poster.Service
	Queue     *posterqueue.Queue
	Activity  *activity.Service
	Health    *health.Service
	Scheduler *scheduler.Scheduler
	Logs      LogsProvider
}

// Server handles HTTP requests for the posterd API.
type Server struct {
	echo   *echo.Echo
	deps   Deps
	logger zerolog.Logger
}

// NewServer creates a new API server instance.
func NewServer(deps Deps, logger *zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:   e,
		deps:   deps,
		logger: logger.With().Str("component", "api").Logger(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures Echo middleware.
func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestID())
	s.echo.Use(apimw.Metrics())
	s.echo.Use(apimw.SecurityHeaders())

	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogMethod:    true,
		LogError:     true,
		LogRequestID: true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				s.logger.Error().
					Str("method", v.Method).
					Str("uri", v.URI).
					Str("requestId", v.RequestID).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Err(v.Error).
					Msg("request error")
			} else {
				s.logger.Debug().
					Str("method", v.Method).
					Str("uri", v.URI).
					Str("requestId", v.RequestID).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Msg("request")
			}
			return nil
		},
	}))

	s.echo.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			// Poster images are already compressed.
			return c.Path() == "/api/v1/posters/file/:name"
		},
	}))
}

// setupRoutes configures API routes.
func (s *Server) setupRoutes() {
	s.echo.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	api := s.echo.Group("/api/v1")

	if s.deps.Health != nil {
		health.NewHandlers(s.deps.Health).RegisterRoutes(api)
	}

	release.NewHandlers(s.deps.Releases).RegisterRoutes(api.Group("/releases"))

	// Registered on the root group: the poster routes span /releases and /posters.
	poster.NewHandlers(s.deps.Posters).RegisterRoutes(api)
	posterqueue.NewHandlers(s.deps.Queue, s.deps.Releases).RegisterRoutes(api)

	activity.NewHandlers(s.deps.Activity).RegisterRoutes(api.Group("/activity"))

	system := api.Group("/system")
	if s.deps.Logs != nil {
		NewLogsHandlers(s.deps.Logs).RegisterRoutes(system.Group("/logs"))
	}
	if s.deps.Scheduler != nil {
		scheduler.NewHandlers(s.deps.Scheduler).RegisterRoutes(system)
	}
}

// Start starts the HTTP server. It blocks until the server stops.
func (s *Server) Start(address string) error {
	s.logger.Info().Str("address", address).Msg("Starting HTTP server")
	if err := s.echo.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Echo returns the underlying Echo instance for testing.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}
