package introspec

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"gopkg.in/yaml.v3"

	"github.com/gaborage/introspec/apidoc"
	"github.com/gaborage/introspec/config"
	"github.com/gaborage/introspec/generator"
	"github.com/gaborage/introspec/logger"
	"github.com/gaborage/introspec/postman"
	"github.com/gaborage/introspec/server"
)

type CreateOrder struct {
	CustomerID string `json:"customerId" validate:"required"`
	Quantity   int    `json:"quantity" validate:"min=1"`
}

type GetOrder struct {
	ID string `param:"id"`
}

type Order struct {
	ID string `json:"id"`
}

func createOrder(req CreateOrder, _ server.HandlerContext) (Order, server.IAPIError) {
	return Order{ID: req.CustomerID}, nil
}

func getOrder(req GetOrder, _ server.HandlerContext) (Order, server.IAPIError) {
	return Order{ID: req.ID}, nil
}

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) GenerateDocumentation(ctx context.Context, ops []apidoc.Operation, host generator.HostContext, cfg *config.IntrospecConfig) (*apidoc.Documentation, error) {
	args := m.Called(ctx, ops, host, cfg)
	doc, _ := args.Get(0).(*apidoc.Documentation)
	return doc, args.Error(1)
}

func featureConfig() *config.IntrospecConfig {
	return &config.IntrospecConfig{
		Enabled:     true,
		Path:        config.DefaultIntrospecPath,
		Title:       "Orders API",
		Version:     "2.0.0",
		Description: "Order management",
		Contact:     config.ContactConfig{Name: "Platform Team", Email: "platform@example.com"},
		Cache:       config.CacheConfig{Size: 8},
	}
}

func newHost(metadata bool) *server.Server {
	cfg := &config.Config{
		App: config.AppConfig{Name: "orders", Version: "1.0.0", Env: config.EnvDevelopment},
		Server: config.ServerConfig{
			Port:     8080,
			Path:     config.PathConfig{Base: "/api"},
			Metadata: config.MetadataConfig{Enabled: metadata},
		},
	}
	s := server.New(cfg, logger.Nop())
	hr, g := s.HandlerRegistry(), s.ModuleGroup()
	server.POST(hr, g, "/orders", createOrder, server.WithTags("orders"))
	server.GET(hr, g, "/orders/:id", getOrder, server.WithTags("orders"), server.WithSummary("Fetch an order"))
	return s
}

func get(s *server.Server, target string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, http.NoBody)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	return rec
}

func decodeDoc(t *testing.T, rec *httptest.ResponseRecorder) apidoc.Documentation {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var doc apidoc.Documentation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	return doc
}

func titles(doc apidoc.Documentation) []string {
	out := make([]string, 0, len(doc.Resources))
	for _, r := range doc.Resources {
		out = append(out, r.Title)
	}
	return out
}

func TestNewRejectsMissingConfig(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, apidoc.ErrInvalidArgument)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.IntrospecConfig)
		field  string
	}{
		{name: "missing_description", mutate: func(c *config.IntrospecConfig) { c.Description = "" }, field: "introspec.description"},
		{name: "missing_contact_name", mutate: func(c *config.IntrospecConfig) { c.Contact.Name = "" }, field: "introspec.contact.name"},
		{name: "invalid_contact_email", mutate: func(c *config.IntrospecConfig) { c.Contact.Email = "nope" }, field: "introspec.contact.email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := featureConfig()
			tt.mutate(cfg)

			_, err := New(cfg)
			var cfgErr *config.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestRegisterRequiresRouteMetadata(t *testing.T) {
	f, err := New(featureConfig())
	require.NoError(t, err)

	err = f.Register(newHost(false))
	require.Error(t, err)
	assert.True(t, config.IsNotConfigured(err))

	var cfgErr *config.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "route metadata must be enabled to use the introspec feature", cfgErr.Message)
}

func TestRegisterNilHost(t *testing.T) {
	f, err := New(featureConfig())
	require.NoError(t, err)
	assert.ErrorIs(t, f.Register(nil), apidoc.ErrInvalidArgument)
}

func TestDocumentationBeforeRegister(t *testing.T) {
	f, err := New(featureConfig())
	require.NoError(t, err)
	_, err = f.Documentation(nil)
	assert.Error(t, err)
}

func TestSpecEndpointDocumentsHostRoutes(t *testing.T) {
	s := newHost(true)
	f, err := New(featureConfig())
	require.NoError(t, err)
	require.NoError(t, f.Register(s))

	doc := decodeDoc(t, get(s, "/api/_introspec/spec"))

	assert.Equal(t, "Orders API", doc.Title)
	assert.Equal(t, "2.0.0", doc.Version)
	assert.Equal(t, "http://localhost:8080", doc.BaseURL)
	require.NotNil(t, doc.Contact)
	assert.Equal(t, "Platform Team", doc.Contact.Name)
	assert.Equal(t, []string{"CreateOrder", "GetOrder"}, titles(doc))

	create, ok := doc.Resource("CreateOrder")
	require.True(t, ok)
	assert.Equal(t, "/api/orders", create.RelativePath)
	assert.Equal(t, []string{http.MethodPost}, create.Verbs)
	assert.Equal(t, []string{"orders"}, create.Tags)

	fetch, ok := doc.Resource("GetOrder")
	require.True(t, ok)
	assert.Equal(t, "/api/orders/{id}", fetch.RelativePath)
	assert.Equal(t, "Fetch an order", fetch.Description)
}

func TestSpecEndpointFiltersAndServesYAML(t *testing.T) {
	s := newHost(true)
	f, err := New(featureConfig())
	require.NoError(t, err)
	require.NoError(t, f.Register(s))

	doc := decodeDoc(t, get(s, "/api/_introspec/spec?dtoName=GetOrder"))
	assert.Equal(t, []string{"GetOrder"}, titles(doc))

	doc = decodeDoc(t, get(s, "/api/_introspec/spec?tag=unknown"))
	assert.Empty(t, doc.Resources)

	rec := get(s, "/api/_introspec/spec?category=orders", echo.HeaderAccept, server.MIMEApplicationYAML)
	require.Equal(t, http.StatusOK, rec.Code)
	var fromYAML apidoc.Documentation
	require.NoError(t, yaml.Unmarshal(rec.Body.Bytes(), &fromYAML))
	assert.Equal(t, "Orders API", fromYAML.Title)
}

func TestPostmanEndpoint(t *testing.T) {
	s := newHost(true)
	f, err := New(featureConfig())
	require.NoError(t, err)
	require.NoError(t, f.Register(s))

	rec := get(s, "/api/_introspec/postman?dtoName=GetOrder")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var collection postman.Collection
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &collection))
	assert.Equal(t, "Orders API", collection.Name)
	require.Len(t, collection.Requests, 1)

	req := collection.Requests[0]
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "http://localhost:8080/api/orders/:id/", req.URL)
	assert.Equal(t, map[string]string{"id": "val-1"}, req.PathVariables)
	assert.Equal(t, []string{req.ID}, collection.Order)
	assert.Equal(t, "attachment; filename=Orders_API.postman_collection.json",
		rec.Header().Get(echo.HeaderContentDisposition))

	rec = get(s, "/api/_introspec/postman?format=yaml")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "attachment; filename=Orders_API.postman_collection.yaml",
		rec.Header().Get(echo.HeaderContentDisposition))
	var fromYAML postman.Collection
	require.NoError(t, yaml.Unmarshal(rec.Body.Bytes(), &fromYAML))
	assert.Len(t, fromYAML.Requests, 2)
}

func TestCollectionFileName(t *testing.T) {
	assert.Equal(t, "Orders_API", collectionFileName("Orders API"))
	assert.Equal(t, "billing-v2", collectionFileName(" billing-v2 "))
	assert.Equal(t, "a_b_c", collectionFileName("a/b\\c"))
	assert.Equal(t, "collection", collectionFileName(""))
}

func TestGenerationIsLazyAndCached(t *testing.T) {
	doc := &apidoc.Documentation{
		Title: "Mocked",
		Resources: []*apidoc.Resource{
			{ResourceType: apidoc.ResourceType{Title: "A"}, Category: "one"},
			{ResourceType: apidoc.ResourceType{Title: "B"}, Category: "two"},
		},
	}
	gen := &mockGenerator{}
	gen.On("GenerateDocumentation", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(doc, nil).Once()

	s := newHost(true)
	f, err := New(featureConfig(), WithGenerator(gen))
	require.NoError(t, err)
	require.NoError(t, f.Register(s))
	gen.AssertNotCalled(t, "GenerateDocumentation", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	for i := 0; i < 3; i++ {
		got := decodeDoc(t, get(s, "/api/_introspec/spec?category=two"))
		assert.Equal(t, []string{"B"}, titles(got))
	}
	assert.Equal(t, []string{"A", "B"}, titles(decodeDoc(t, get(s, "/api/_introspec/spec"))))

	gen.AssertExpectations(t)
	assert.Equal(t, 1, f.cache.Len())

	ops := gen.Calls[0].Arguments.Get(1).([]apidoc.Operation)
	require.Len(t, ops, 2)
	assert.Equal(t, reflect.TypeOf(CreateOrder{}), ops[0].RequestType)

	host := gen.Calls[0].Arguments.Get(2).(generator.HostContext)
	assert.Equal(t, "orders", host.ServiceName)
	assert.Equal(t, "http://localhost:8080", host.BaseURL)
}

func TestFilteredDocumentsShareCacheEntries(t *testing.T) {
	s := newHost(true)
	f, err := New(featureConfig())
	require.NoError(t, err)
	require.NoError(t, f.Register(s))

	first, err := f.Documentation(nil)
	require.NoError(t, err)
	second, err := f.Documentation(nil)
	require.NoError(t, err)
	assert.Same(t, first, second)

	a := decodeDoc(t, get(s, "/api/_introspec/spec?dtoName=GetOrder&dtoName=CreateOrder"))
	b := decodeDoc(t, get(s, "/api/_introspec/spec?dtoName=CreateOrder&dtoName=GetOrder"))
	assert.Equal(t, titles(a), titles(b))
	assert.Equal(t, 1, f.cache.Len())
}

func TestGenerationFailure(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	gen := &mockGenerator{}
	gen.On("GenerateDocumentation", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("boom")).Once()

	s := newHost(true)
	f, err := New(featureConfig(), WithGenerator(gen), WithMeterProvider(mp))
	require.NoError(t, err)
	require.NoError(t, f.Register(s))

	for i := 0; i < 2; i++ {
		rec := get(s, "/api/_introspec/postman")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	}
	gen.AssertExpectations(t)

	assert.EqualValues(t, 1, counterTotal(t, reader, metricGenerateFail))
	assert.EqualValues(t, 2, counterTotal(t, reader, metricRequests))
}

func TestRequestsAreCounted(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	s := newHost(true)
	f, err := New(featureConfig(), WithMeterProvider(mp))
	require.NoError(t, err)
	require.NoError(t, f.Register(s))

	get(s, "/api/_introspec/spec")
	get(s, "/api/_introspec/spec?tag=orders")
	get(s, "/api/_introspec/postman")

	assert.EqualValues(t, 3, counterTotal(t, reader, metricRequests))
}

func TestRateLimitedEndpoints(t *testing.T) {
	cfg := featureConfig()
	cfg.Rate = config.RateConfig{Limit: 1, Burst: 1}

	s := newHost(true)
	f, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, f.Register(s))

	assert.Equal(t, http.StatusOK, get(s, "/api/_introspec/spec").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(s, "/api/_introspec/spec").Code)
	assert.Equal(t, http.StatusOK, get(s, "/api/orders/7").Code)
}

func TestFakePlaceholders(t *testing.T) {
	cfg := featureConfig()
	cfg.Placeholders = config.PlaceholdersFake

	s := newHost(true)
	f, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, f.Register(s))

	rec := get(s, "/api/_introspec/postman?dtoName=CreateOrder")
	require.Equal(t, http.StatusOK, rec.Code)

	var collection postman.Collection
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &collection))
	require.Len(t, collection.Requests, 1)
	for _, d := range collection.Requests[0].Data {
		assert.NotContains(t, d.Value, "val-")
	}
}

func counterTotal(t *testing.T, reader sdkmetric.Reader, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	return total
}

func TestRegisterLogsWithComponent(t *testing.T) {
	var buf bytes.Buffer
	s := newHost(true)
	f, err := New(featureConfig(), WithLogger(logger.NewWithWriter(&buf, "info")))
	require.NoError(t, err)
	require.NoError(t, f.Register(s))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "Documentation endpoints registered", entry["message"])
	assert.Equal(t, "introspec", entry["component"])
	assert.Equal(t, "/api/_introspec/spec", entry["spec"])
}
