package server

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/yaml.v3"

	"github.com/gaborage/introspec/config"
	"github.com/gaborage/introspec/internal/reflection"
)

// MIMEApplicationYAML is served when a client asks for YAML.
const MIMEApplicationYAML = "application/yaml"

// APIResponse represents the standardized API response format.
type APIResponse struct {
	Data  any               `json:"data,omitempty" yaml:"data,omitempty"`
	Error *APIErrorResponse `json:"error,omitempty" yaml:"error,omitempty"`
	Meta  map[string]any    `json:"meta" yaml:"meta"`
}

// APIErrorResponse represents the error portion of an API response.
type APIErrorResponse struct {
	Code    string         `json:"code" yaml:"code"`
	Message string         `json:"message" yaml:"message"`
	Details map[string]any `json:"details,omitempty" yaml:"details,omitempty"`
}

// HandlerFunc is a handler that works on a bound, validated request.
type HandlerFunc[T any, R any] func(request T, ctx HandlerContext) (R, IAPIError)

// HandlerContext provides access to the echo context when a handler needs it.
type HandlerContext struct {
	Echo   echo.Context
	Config *config.Config
}

// RequestBinder binds JSON bodies and param/query/header tagged fields.
type RequestBinder struct{}

// NewRequestBinder creates a new request binder.
func NewRequestBinder() *RequestBinder { return &RequestBinder{} }

// responseOptions controls how a wrapped handler renders its result.
type responseOptions struct {
	raw bool
}

// WrapHandler wraps a typed handler into an echo handler: binding, validation,
// response envelope and error formatting.
func WrapHandler[T any, R any](handlerFunc HandlerFunc[T, R], binder *RequestBinder, cfg *config.Config) echo.HandlerFunc {
	return wrapHandler(handlerFunc, binder, cfg, responseOptions{})
}

func wrapHandler[T any, R any](
	handlerFunc HandlerFunc[T, R],
	binder *RequestBinder,
	cfg *config.Config,
	opts responseOptions,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		var request T

		if err := binder.bindRequest(c, &request); err != nil {
			return formatErrorResponse(c, NewBadRequestError("Invalid request data").WithDetails("error", err.Error()), cfg)
		}

		if err := c.Validate(&request); err != nil {
			vErr := NewBadRequestError("Request validation failed")
			var ve *ValidationError
			if errors.As(err, &ve) {
				_ = vErr.WithDetails("validationErrors", ve.Errors)
			} else {
				_ = vErr.WithDetails("error", err.Error())
			}
			return formatErrorResponse(c, vErr, cfg)
		}

		response, apiErr := handlerFunc(request, HandlerContext{Echo: c, Config: cfg})
		if apiErr != nil {
			return formatErrorResponse(c, apiErr, cfg)
		}

		status, headers, data := http.StatusOK, http.Header(nil), any(response)
		if rl, ok := data.(ResultLike); ok {
			status, headers, data = rl.ResultMeta()
		}
		return formatSuccessResponse(c, data, status, headers, opts)
	}
}

// bindRequest binds request data from the body, path, query and headers.
//
//nolint:gocyclo // Coordinating multiple binding sources; readability preferred.
func (rb *RequestBinder) bindRequest(c echo.Context, target any) error {
	targetValue := reflect.ValueOf(target).Elem()
	if targetValue.Kind() != reflect.Struct {
		return nil
	}
	targetType := targetValue.Type()

	if ct := c.Request().Header.Get(echo.HeaderContentType); ct != "" {
		if mt, _, _ := mime.ParseMediaType(ct); mt == echo.MIMEApplicationJSON || strings.HasSuffix(mt, "+json") {
			if err := (&echo.DefaultBinder{}).BindBody(c, target); err != nil {
				return fmt.Errorf("failed to bind JSON body: %w", err)
			}
		}
	}

	for i := 0; i < targetType.NumField(); i++ {
		field := targetType.Field(i)
		fieldValue := targetValue.Field(i)
		if !fieldValue.CanSet() {
			continue
		}

		if paramName := field.Tag.Get("param"); paramName != "" {
			if value := c.Param(paramName); value != "" {
				if err := setFieldValue(fieldValue, value); err != nil {
					return fmt.Errorf("failed to set path param %s: %w", paramName, err)
				}
			}
		}

		if queryName := field.Tag.Get("query"); queryName != "" {
			if values := c.QueryParams()[queryName]; len(values) > 0 {
				if err := setFieldValues(fieldValue, values); err != nil {
					return fmt.Errorf("failed to set query param %s: %w", queryName, err)
				}
			}
		}

		if headerName := field.Tag.Get("header"); headerName != "" {
			if values := c.Request().Header.Values(headerName); len(values) > 0 {
				if isStringSlice(fieldValue) {
					values = splitHeaderValues(values)
				}
				if err := setFieldValues(fieldValue, values); err != nil {
					return fmt.Errorf("failed to set header %s: %w", headerName, err)
				}
			}
		}
	}

	return nil
}

func isStringSlice(v reflect.Value) bool {
	return v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.String
}

func splitHeaderValues(values []string) []string {
	var out []string
	for _, raw := range values {
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// setFieldValues assigns repeated values to a []string field, or the first one otherwise.
func setFieldValues(fieldValue reflect.Value, values []string) error {
	if isStringSlice(fieldValue) {
		slice := reflect.MakeSlice(fieldValue.Type(), len(values), len(values))
		for i, v := range values {
			slice.Index(i).SetString(v)
		}
		fieldValue.Set(slice)
		return nil
	}
	return setFieldValue(fieldValue, values[0])
}

var timeType = reflect.TypeOf(time.Time{})

// setFieldValue sets a reflect.Value from a string value, handling type conversion.
func setFieldValue(fieldValue reflect.Value, value string) error {
	if fieldValue.Kind() == reflect.Pointer {
		if fieldValue.IsNil() {
			fieldValue.Set(reflect.New(fieldValue.Type().Elem()))
		}
		return setFieldValue(fieldValue.Elem(), value)
	}

	if fieldValue.Type() == timeType {
		t, err := parseTime(value)
		if err != nil {
			return err
		}
		fieldValue.Set(reflect.ValueOf(t))
		return nil
	}

	switch fieldValue.Kind() {
	case reflect.String:
		fieldValue.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, fieldValue.Type().Bits())
		if err != nil {
			return err
		}
		fieldValue.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(value, 10, fieldValue.Type().Bits())
		if err != nil {
			return err
		}
		fieldValue.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, fieldValue.Type().Bits())
		if err != nil {
			return err
		}
		fieldValue.SetFloat(f)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		fieldValue.SetBool(b)
	default:
		return fmt.Errorf("unsupported field type: %s", fieldValue.Type())
	}
	return nil
}

func parseTime(s string) (time.Time, error) {
	layouts := []string{time.RFC3339Nano, time.RFC3339, time.DateTime, time.DateOnly}
	var lastErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// WantsYAML reports whether the client prefers YAML, via ?format=yaml or the Accept header.
func WantsYAML(c echo.Context) bool {
	switch strings.ToLower(c.QueryParam("format")) {
	case "yaml", "yml":
		return true
	case "json":
		return false
	}
	for _, part := range strings.Split(c.Request().Header.Get(echo.HeaderAccept), ",") {
		mt, _, _ := mime.ParseMediaType(strings.TrimSpace(part))
		switch mt {
		case MIMEApplicationYAML, "application/x-yaml", "text/yaml", "text/x-yaml":
			return true
		case echo.MIMEApplicationJSON:
			return false
		}
	}
	return false
}

// render writes body as YAML or JSON depending on the request.
func render(c echo.Context, status int, body any) error {
	if !WantsYAML(c) {
		return c.JSON(status, body)
	}
	out, err := yaml.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode yaml response: %w", err)
	}
	return c.Blob(status, MIMEApplicationYAML+"; charset=utf-8", out)
}

func formatSuccessResponse(c echo.Context, data any, status int, headers http.Header, opts responseOptions) error {
	if status == 0 {
		status = http.StatusOK
	}
	for k, vals := range headers {
		for _, v := range vals {
			c.Response().Header().Add(k, v)
		}
	}
	if status == http.StatusNoContent {
		return c.NoContent(http.StatusNoContent)
	}
	if opts.raw {
		return render(c, status, data)
	}
	return render(c, status, APIResponse{Data: data, Meta: responseMeta(c)})
}

// formatErrorResponse formats an error response with standardized structure.
// Details are only exposed outside production.
func formatErrorResponse(c echo.Context, apiErr IAPIError, cfg *config.Config) error {
	errorResp := &APIErrorResponse{
		Code:    apiErr.ErrorCode(),
		Message: apiErr.Message(),
	}
	if exposeDetails(cfg) {
		errorResp.Details = apiErr.Details()
	}
	return render(c, apiErr.HTTPStatus(), APIResponse{Error: errorResp, Meta: responseMeta(c)})
}

func exposeDetails(cfg *config.Config) bool {
	return cfg == nil || cfg.App.Debug || cfg.App.Env != config.EnvProduction
}

func responseMeta(c echo.Context) map[string]any {
	return map[string]any{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"traceId":   getTraceID(c),
	}
}

// getTraceID prefers the active span, then the request id, and generates one otherwise.
func getTraceID(c echo.Context) string {
	if sc := trace.SpanContextFromContext(c.Request().Context()); sc.HasTraceID() {
		return sc.TraceID().String()
	}
	if requestID := c.Request().Header.Get(echo.HeaderXRequestID); requestID != "" {
		return requestID
	}
	if requestID := c.Response().Header().Get(echo.HeaderXRequestID); requestID != "" {
		return requestID
	}
	newID := uuid.NewString()
	c.Response().Header().Set(echo.HeaderXRequestID, newID)
	return newID
}

// HandlerRegistry binds typed handlers and records their descriptors.
type HandlerRegistry struct {
	binder *RequestBinder
	cfg    *config.Config
	routes *RouteRegistry
}

// NewHandlerRegistry creates a handler registry. A nil route registry disables
// route metadata collection.
func NewHandlerRegistry(cfg *config.Config, routes *RouteRegistry) *HandlerRegistry {
	return &HandlerRegistry{
		binder: NewRequestBinder(),
		cfg:    cfg,
		routes: routes,
	}
}

// Routes returns the route registry, or nil when metadata is disabled.
func (hr *HandlerRegistry) Routes() *RouteRegistry {
	return hr.routes
}

// RegisterHandler registers a typed handler and records its descriptor.
func RegisterHandler[T any, R any](
	hr *HandlerRegistry,
	r RouteRegistrar,
	method, path string,
	handler HandlerFunc[T, R],
	opts ...RouteOption,
) {
	registerHandler(hr, r, method, path, handler, opts)
}

// registerHandler is called through exactly one exported wrapper so the caller
// package sits at a fixed depth.
func registerHandler[T any, R any](
	hr *HandlerRegistry,
	r RouteRegistrar,
	method, path string,
	handler HandlerFunc[T, R],
	opts []RouteOption,
) {
	fullPath := r.FullPath(path)

	descriptor := RouteDescriptor{
		Method:       method,
		Path:         fullPath,
		HandlerID:    fmt.Sprintf("%s:%s", method, fullPath),
		RequestType:  reflect.TypeFor[T](),
		ResponseType: reflect.TypeFor[R](),
		Package:      reflection.GetCallerPackage(2),
		HandlerName:  reflection.ExtractHandlerName(handler),
	}
	for _, opt := range opts {
		opt(&descriptor)
	}

	if hr.routes != nil {
		hr.routes.Register(&descriptor)
	}

	r.Add(method, path, wrapHandler(handler, hr.binder, hr.cfg, responseOptions{raw: descriptor.RawResponse}))
}

// GET registers a GET handler with optional route configuration.
func GET[T any, R any](hr *HandlerRegistry, r RouteRegistrar, path string, handler HandlerFunc[T, R], opts ...RouteOption) {
	registerHandler(hr, r, http.MethodGet, path, handler, opts)
}

// POST registers a POST handler with optional route configuration.
func POST[T any, R any](hr *HandlerRegistry, r RouteRegistrar, path string, handler HandlerFunc[T, R], opts ...RouteOption) {
	registerHandler(hr, r, http.MethodPost, path, handler, opts)
}

// PUT registers a PUT handler with optional route configuration.
func PUT[T any, R any](hr *HandlerRegistry, r RouteRegistrar, path string, handler HandlerFunc[T, R], opts ...RouteOption) {
	registerHandler(hr, r, http.MethodPut, path, handler, opts)
}

// DELETE registers a DELETE handler with optional route configuration.
func DELETE[T any, R any](hr *HandlerRegistry, r RouteRegistrar, path string, handler HandlerFunc[T, R], opts ...RouteOption) {
	registerHandler(hr, r, http.MethodDelete, path, handler, opts)
}

// PATCH registers a PATCH handler with optional route configuration.
func PATCH[T any, R any](hr *HandlerRegistry, r RouteRegistrar, path string, handler HandlerFunc[T, R], opts ...RouteOption) {
	registerHandler(hr, r, http.MethodPatch, path, handler, opts)
}

// ResultLike exposes status, headers, and payload for successful responses.
type ResultLike interface {
	ResultMeta() (status int, headers http.Header, data any)
}

// Result lets handlers customize status and headers while keeping a typed payload.
type Result[R any] struct {
	Data    R
	Status  int
	Headers http.Header
}

// ResultMeta implements ResultLike for Result[R].
func (r Result[R]) ResultMeta() (status int, headers http.Header, data any) {
	return r.Status, r.Headers, r.Data
}

// NewResult is a convenience constructor for Result.
func NewResult[R any](status int, data R) Result[R] {
	return Result[R]{Data: data, Status: status}
}

// NoContentResult represents a 204 No Content response without a body
type NoContentResult struct{}

// ResultMeta implements ResultLike for NoContentResult
func (NoContentResult) ResultMeta() (status int, headers http.Header, data any) {
	return http.StatusNoContent, nil, nil
}

// Created returns a 201 Created Result for the given data
func Created[R any](data R) Result[R] { return NewResult(http.StatusCreated, data) }

// NoContent returns a 204 No Content result without a response body
func NoContent() NoContentResult { return NoContentResult{} }
