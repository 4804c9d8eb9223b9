package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testIP = "192.168.1.100"

func TestRateLimit(t *testing.T) {
	tests := []struct {
		name           string
		requestsPerSec int
		burst          int
		requestCount   int
		expectAllowed  int
	}{
		{name: "disabled", requestsPerSec: 0, requestCount: 20, expectAllowed: 20},
		{name: "within_limit", requestsPerSec: 10, requestCount: 5, expectAllowed: 5},
		{name: "default_burst", requestsPerSec: 2, requestCount: 10, expectAllowed: 4},
		{name: "explicit_burst", requestsPerSec: 1, burst: 3, requestCount: 10, expectAllowed: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			e.Use(RateLimit(tt.requestsPerSec, tt.burst))
			e.GET("/test", func(c echo.Context) error {
				return c.String(http.StatusOK, "ok")
			})

			allowed := 0
			for i := 0; i < tt.requestCount; i++ {
				req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
				req.Header.Set(echo.HeaderXRealIP, testIP)
				rec := httptest.NewRecorder()
				e.ServeHTTP(rec, req)
				if rec.Code == http.StatusOK {
					allowed++
				}
			}
			assert.Equal(t, tt.expectAllowed, allowed)
		})
	}
}

func TestRateLimitDenyEnvelope(t *testing.T) {
	e := echo.New()
	e.Use(RateLimit(1, 1))
	e.GET("/test", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	var rec *httptest.ResponseRecorder
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
		req.Header.Set(echo.HeaderXRealIP, testIP)
		rec = httptest.NewRecorder()
		e.ServeHTTP(rec, req)
	}

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	var resp APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "TOO_MANY_REQUESTS", resp.Error.Code)
}

func TestRateLimitIsPerClient(t *testing.T) {
	e := echo.New()
	e.Use(RateLimit(1, 1))
	e.GET("/test", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	for _, ip := range []string{"10.0.0.1", "10.0.0.2"} {
		req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
		req.Header.Set(echo.HeaderXRealIP, ip)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, ip)
	}
}
