package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/gaborage/introspec/config"
	"github.com/gaborage/introspec/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "test-service", Version: "1.0.0", Env: config.EnvDevelopment},
		Server: config.ServerConfig{
			Host:     "0.0.0.0",
			Port:     8080,
			Path:     config.PathConfig{Base: "/api/"},
			Metadata: config.MetadataConfig{Enabled: true},
		},
	}
}

func serve(s *Server, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, httptest.NewRequest(method, target, http.NoBody))
	return rec
}

func TestNewRegistersProbesUnderBasePath(t *testing.T) {
	s := New(testConfig(), logger.Nop())

	assert.Equal(t, http.StatusOK, serve(s, http.MethodGet, "/api/health").Code)
	assert.Equal(t, http.StatusOK, serve(s, http.MethodGet, "/api/ready").Code)
	assert.Equal(t, http.StatusNotFound, serve(s, http.MethodGet, "/health").Code)
}

func TestNewCustomProbePaths(t *testing.T) {
	cfg := testConfig()
	cfg.Server.Path = config.PathConfig{Health: "live", Ready: "/startup"}
	s := New(cfg, logger.Nop())

	assert.Equal(t, http.StatusOK, serve(s, http.MethodGet, "/live").Code)
	assert.Equal(t, http.StatusOK, serve(s, http.MethodGet, "/startup").Code)
}

func TestRouteMetadataFollowsConfig(t *testing.T) {
	s := New(testConfig(), logger.Nop())
	assert.NotNil(t, s.RouteMetadata())

	cfg := testConfig()
	cfg.Server.Metadata.Enabled = false
	assert.Nil(t, New(cfg, logger.Nop()).RouteMetadata())
}

func TestModuleGroupRegistersTypedRoutes(t *testing.T) {
	s := New(testConfig(), logger.Nop())
	GET(s.HandlerRegistry(), s.ModuleGroup(), testRoute, helloHandler)

	rec := serve(s, http.MethodGet, "/api/hello?name=Ann")
	require.Equal(t, http.StatusOK, rec.Code)

	routes := s.RouteMetadata().Routes()
	require.Len(t, routes, 1)
	assert.Equal(t, "/api/hello", routes[0].Path)
}

func TestBaseURL(t *testing.T) {
	s := New(testConfig(), logger.Nop())
	assert.Equal(t, "http://localhost:8080", s.BaseURL())

	cfg := testConfig()
	cfg.Server.Host = "docs.internal"
	cfg.Server.Port = 9000
	cfg.Server.Path.Base = ""
	assert.Equal(t, "http://docs.internal:9000", New(cfg, logger.Nop()).BaseURL())
}

func TestErrorHandlerEnvelope(t *testing.T) {
	s := New(testConfig(), logger.Nop())

	rec := serve(s, http.MethodGet, "/api/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
}

func TestErrorHandlerHidesInternalErrors(t *testing.T) {
	cfg := testConfig()
	cfg.App.Env = config.EnvProduction
	var buf bytes.Buffer
	s := New(cfg, logger.NewWithWriter(&buf, "debug"))
	s.Echo().GET("/boom", func(echo.Context) error { return errors.New("db password leaked") })

	rec := serve(s, http.MethodGet, "/boom")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "leaked")
	assert.Contains(t, rec.Body.String(), "INTERNAL_ERROR")
	assert.Contains(t, buf.String(), "Unhandled error")
}

func TestErrorHandlerAPIError(t *testing.T) {
	s := New(testConfig(), logger.Nop())
	s.Echo().GET("/limited", func(echo.Context) error { return NewTooManyRequestsError("") })

	rec := serve(s, http.MethodGet, "/limited")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "Rate limit exceeded")
}

func TestTracingMiddleware(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	s := New(testConfig(), logger.Nop(), WithTracerProvider(tp))
	GET(s.HandlerRegistry(), s.ModuleGroup(), testRoute, helloHandler)

	rec := serve(s, http.MethodGet, "/api/hello?name=Ann")
	require.Equal(t, http.StatusOK, rec.Code)

	spans := exporter.GetSpans()
	require.NotEmpty(t, spans)

	var resp APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, spans[0].SpanContext.TraceID().String(), resp.Meta["traceId"])
}

func TestRequestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "debug")

	e := echo.New()
	e.Use(RequestLogger(log, "/health", "/ready"))
	e.GET("/health", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/bad", func(c echo.Context) error { return c.NoContent(http.StatusBadRequest) })

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", http.NoBody))
	assert.Empty(t, buf.String())

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/bad", http.NoBody))
	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "/bad", entry["route"])
	assert.EqualValues(t, http.StatusBadRequest, entry["status"])
}

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		err    IAPIError
		code   string
		status int
	}{
		{err: NewNotFoundError("Resource"), code: "NOT_FOUND", status: http.StatusNotFound},
		{err: NewBadRequestError("bad"), code: "BAD_REQUEST", status: http.StatusBadRequest},
		{err: NewInternalServerError(""), code: "INTERNAL_ERROR", status: http.StatusInternalServerError},
		{err: NewServiceUnavailableError(""), code: "SERVICE_UNAVAILABLE", status: http.StatusServiceUnavailable},
		{err: NewTooManyRequestsError(""), code: "TOO_MANY_REQUESTS", status: http.StatusTooManyRequests},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.code, tt.err.ErrorCode())
		assert.Equal(t, tt.status, tt.err.HTTPStatus())
		assert.NotEmpty(t, tt.err.Message())
		assert.Nil(t, tt.err.Details())
	}
}

func TestBaseAPIErrorDetailsAreCopied(t *testing.T) {
	err := NewBadRequestError("bad").WithDetails("field", "name")
	details := err.Details()
	details["field"] = "other"

	assert.Equal(t, "name", err.Details()["field"])
	assert.Equal(t, "BAD_REQUEST: bad", err.Error())
}
