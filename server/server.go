package server

import (
	"context"
	goerrors "errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/trace"

	"github.com/gaborage/introspec/config"
	"github.com/gaborage/introspec/logger"
)

// Server represents an HTTP server instance with Echo framework.
type Server struct {
	echo        *echo.Echo
	cfg         *config.Config
	logger      logger.Logger
	basePath    string
	healthRoute string
	readyRoute  string
	handlers    *HandlerRegistry
}

// Option configures a Server.
type Option func(*serverOptions)

type serverOptions struct {
	tracerProvider trace.TracerProvider
}

// WithTracerProvider sets the tracer provider for request tracing. The global
// provider is used otherwise.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *serverOptions) { o.tracerProvider = tp }
}

// normalizeBasePath ensures the base path starts with "/" and has no trailing "/".
// The root path and the empty string both mean no prefix.
func normalizeBasePath(basePath string) string {
	return normalizePrefix(basePath)
}

// normalizeRoutePath ensures a route path starts with "/" and handles empty paths
func normalizeRoutePath(route, defaultRoute string) string {
	if route == "" {
		route = defaultRoute
	}
	return ensureLeadingSlash(route)
}

// buildFullPath combines base path with route path
func (s *Server) buildFullPath(route string) string {
	if s.basePath == "" {
		return route
	}
	if route == "/" {
		return s.basePath
	}
	return s.basePath + route
}

// New creates a server with middleware, error handling and probe endpoints.
// Route metadata is collected when cfg.Server.Metadata.Enabled is set.
func New(cfg *config.Config, log logger.Logger, opts ...Option) *Server {
	var o serverOptions
	for _, opt := range opts {
		opt(&o)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		customErrorHandler(err, c, cfg, log)
	}

	var routes *RouteRegistry
	if cfg.Server.Metadata.Enabled {
		routes = NewRouteRegistry()
	}

	s := &Server{
		echo:        e,
		cfg:         cfg,
		logger:      log,
		basePath:    normalizeBasePath(cfg.Server.Path.Base),
		healthRoute: normalizeRoutePath(cfg.Server.Path.Health, "/health"),
		readyRoute:  normalizeRoutePath(cfg.Server.Path.Ready, "/ready"),
		handlers:    NewHandlerRegistry(cfg, routes),
	}

	s.setupMiddlewares(o.tracerProvider)

	healthPath := s.buildFullPath(s.healthRoute)
	readyPath := s.buildFullPath(s.readyRoute)
	e.GET(healthPath, s.healthCheck)
	e.GET(readyPath, s.readyCheck)

	log.Debug().
		Str("base_path", s.basePath).
		Str("health_path", healthPath).
		Str("ready_path", readyPath).
		Msg("Server paths configured")

	return s
}

// Echo returns the underlying Echo instance.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// ModuleGroup returns a registrar with the base path applied.
func (s *Server) ModuleGroup() RouteRegistrar {
	return newRouteGroup(s.echo.Group(s.basePath), s.basePath)
}

// HandlerRegistry returns the registry typed handlers are registered through.
func (s *Server) HandlerRegistry() *HandlerRegistry {
	return s.handlers
}

// RouteMetadata returns the route registry, or nil when metadata collection is disabled.
func (s *Server) RouteMetadata() *RouteRegistry {
	return s.handlers.Routes()
}

// Config returns the configuration the server was built from.
func (s *Server) Config() *config.Config {
	return s.cfg
}

// Logger returns the server logger.
func (s *Server) Logger() logger.Logger {
	return s.logger
}

// BaseURL is the origin clients reach the server at. Route paths already
// carry the base path, so it is not included. Wildcard hosts are reported as
// localhost.
func (s *Server) BaseURL() string {
	host := s.cfg.Server.Host
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(s.cfg.Server.Port))
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := net.JoinHostPort(s.cfg.Server.Host, strconv.Itoa(s.cfg.Server.Port))

	s.logger.Info().
		Str("service", s.cfg.App.Name).
		Str("version", s.cfg.App.Version).
		Str("env", s.cfg.App.Env).
		Str("address", addr).
		Msg("Starting server...")

	server := &http.Server{
		Addr:         addr,
		ReadTimeout:  s.cfg.Server.Timeout.Read,
		WriteTimeout: s.cfg.Server.Timeout.Write,
		IdleTimeout:  s.cfg.Server.Timeout.Idle,
	}

	if err := s.echo.StartServer(server); err != nil && !goerrors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server stopped: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for open requests within
// the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

func (s *Server) readyCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

func customErrorHandler(err error, c echo.Context, cfg *config.Config, log logger.Logger) {
	if c.Response().Committed {
		return
	}

	var apiErr IAPIError
	if goerrors.As(err, &apiErr) {
		_ = formatErrorResponse(c, apiErr, cfg)
		return
	}

	status := http.StatusInternalServerError
	msg := "Internal server error"
	var he *echo.HTTPError
	if goerrors.As(err, &he) {
		status = he.Code
		switch m := he.Message.(type) {
		case string:
			msg = m
		case error:
			msg = m.Error()
		}
	}

	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request().URL.Path).Msg("Unhandled error")
		if !cfg.App.Debug {
			msg = "An error occurred while processing your request"
		}
	}

	base := NewBaseAPIError(statusToErrorCode(status), msg, status)
	if strings.EqualFold(cfg.App.Env, config.EnvDevelopment) {
		_ = base.WithDetails("error", err.Error())
	}
	_ = formatErrorResponse(c, base, cfg)
}
