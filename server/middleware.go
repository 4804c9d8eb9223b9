package server

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel/trace"

	"github.com/gaborage/introspec/logger"
)

// SlowRequestThreshold marks requests that are logged at warn level.
const SlowRequestThreshold = time.Second

// setupMiddlewares registers the server-wide middleware chain.
func (s *Server) setupMiddlewares(tp trace.TracerProvider) {
	e := s.echo

	e.Use(middleware.RequestID())

	var otelOpts []otelecho.Option
	if tp != nil {
		otelOpts = append(otelOpts, otelecho.WithTracerProvider(tp))
	}
	e.Use(otelecho.Middleware(s.cfg.App.Name, otelOpts...))

	e.Use(RequestLogger(s.logger, s.buildFullPath(s.healthRoute), s.buildFullPath(s.readyRoute)))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			s.logger.Error().
				Err(err).
				Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
				Bytes("stack", stack).
				Msg("Panic recovered")
			return err
		},
	}))

	e.Use(middleware.BodyLimit("10M"))
}

// RequestLogger logs one line per request. Probe endpoints are skipped; 4xx and
// slow requests log at warn and 5xx at error.
func RequestLogger(log logger.Logger, healthPath, readyPath string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Path()
			if path == "" {
				path = c.Request().URL.Path
			}
			if path == healthPath || path == readyPath {
				return next(c)
			}

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			latency := time.Since(start)
			status := c.Response().Status

			var event logger.LogEvent
			switch {
			case status >= 500:
				event = log.Error().Err(err)
			case status >= 400 || latency > SlowRequestThreshold:
				event = log.Warn()
			default:
				event = log.Info()
			}
			event.
				Str("method", c.Request().Method).
				Str("route", path).
				Int("status", status).
				Dur("latency", latency).
				Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
				Msg("Request completed")

			return nil
		}
	}
}
