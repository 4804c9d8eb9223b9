// Package introspec publishes a service's documentation and its request
// collection over HTTP.
package introspec

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"
	"sync"
	"unicode"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/gaborage/introspec/apidoc"
	"github.com/gaborage/introspec/config"
	"github.com/gaborage/introspec/filter"
	"github.com/gaborage/introspec/generator"
	"github.com/gaborage/introspec/internal/reflection"
	"github.com/gaborage/introspec/logger"
	"github.com/gaborage/introspec/postman"
	"github.com/gaborage/introspec/server"
	"github.com/gaborage/introspec/typespec"
)

const (
	meterName          = "github.com/gaborage/introspec"
	metricRequests     = "introspec.requests"
	metricGenerateFail = "introspec.generate.failures"

	specRoute    = "/spec"
	postmanRoute = "/postman"
)

// errMetadataDisabled is the message reported when the host collects no route metadata.
const errMetadataDisabled = "route metadata must be enabled to use the introspec feature"

// Host is what the feature needs from the hosting server. *server.Server implements it.
type Host interface {
	RouteMetadata() *server.RouteRegistry
	ModuleGroup() server.RouteRegistrar
	HandlerRegistry() *server.HandlerRegistry
	BaseURL() string
	Config() *config.Config
}

// OperationsFilter decides whether a registered route is documented.
type OperationsFilter func(server.RouteDescriptor) bool

// DefaultOperationsFilter drops excluded routes, routes without a request type
// and request types declared in one of ignorePackages (or below it).
func DefaultOperationsFilter(ignorePackages ...string) OperationsFilter {
	return func(d server.RouteDescriptor) bool {
		if d.ExcludeMetadata || d.ExcludeDiscovery || d.RequestType == nil {
			return false
		}
		pkg := reflection.Indirect(d.RequestType).PkgPath()
		for _, ignored := range ignorePackages {
			if pkg == ignored || strings.HasPrefix(pkg, strings.TrimSuffix(ignored, "/")+"/") {
				return false
			}
		}
		return true
	}
}

// Feature serves generated documentation.
type Feature struct {
	cfg       *config.IntrospecConfig
	generator generator.Generator
	postman   *postman.Generator
	filter    OperationsFilter
	specs     *typespec.Registry
	log       logger.Logger
	meter     metric.MeterProvider

	requests metric.Int64Counter
	failures metric.Int64Counter
	cache    *lru.Cache[string, *apidoc.Documentation]
	document func() (*apidoc.Documentation, error)
}

// Option configures a Feature.
type Option func(*Feature)

// WithGenerator replaces the documentation generator.
func WithGenerator(g generator.Generator) Option {
	return func(f *Feature) { f.generator = g }
}

// WithOperationsFilter replaces DefaultOperationsFilter.
func WithOperationsFilter(filter OperationsFilter) Option {
	return func(f *Feature) { f.filter = filter }
}

// WithSpecRegistry sets the declarative specs used by the default generator.
func WithSpecRegistry(specs *typespec.Registry) Option {
	return func(f *Feature) { f.specs = specs }
}

// WithPostmanGenerator replaces the collection generator.
func WithPostmanGenerator(g *postman.Generator) Option {
	return func(f *Feature) { f.postman = g }
}

// WithLogger sets the logger used for registration and generation failures.
func WithLogger(log logger.Logger) Option {
	return func(f *Feature) { f.log = log }
}

// WithMeterProvider overrides the global meter provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(f *Feature) { f.meter = mp }
}

// New validates cfg and builds the feature.
func New(cfg *config.IntrospecConfig, opts ...Option) (*Feature, error) {
	if cfg == nil {
		return nil, fmt.Errorf("introspec feature: nil config: %w", apidoc.ErrInvalidArgument)
	}
	if err := config.ValidateIntrospec(cfg); err != nil {
		return nil, err
	}

	f := &Feature{cfg: cfg}
	for _, opt := range opts {
		opt(f)
	}

	if f.log == nil {
		f.log = logger.Nop()
	}
	f.log = f.log.WithFields(map[string]any{"component": "introspec"})
	if f.filter == nil {
		f.filter = DefaultOperationsFilter(cfg.IgnorePackages...)
	}
	if f.generator == nil {
		f.generator = generator.New(
			generator.WithSpecRegistry(f.specs),
			generator.WithLogger(f.log),
		)
	}
	if f.postman == nil {
		f.postman = postman.NewGenerator(postman.WithValues(placeholders(cfg.Placeholders)))
	}
	if f.meter == nil {
		f.meter = otel.GetMeterProvider()
	}
	if err := f.initMetrics(); err != nil {
		return nil, err
	}

	if cfg.Cache.Size > 0 {
		cache, err := lru.New[string, *apidoc.Documentation](cfg.Cache.Size)
		if err != nil {
			return nil, fmt.Errorf("introspec feature: create cache: %w", err)
		}
		f.cache = cache
	}

	return f, nil
}

func placeholders(strategy string) postman.ValueStrategy {
	if strategy == config.PlaceholdersFake {
		return postman.FakeValues(0)
	}
	return postman.SequentialValues()
}

func (f *Feature) initMetrics() error {
	meter := f.meter.Meter(meterName)

	var err error
	f.requests, err = meter.Int64Counter(metricRequests,
		metric.WithDescription("Documentation requests served"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return fmt.Errorf("introspec feature: create %s counter: %w", metricRequests, err)
	}

	f.failures, err = meter.Int64Counter(metricGenerateFail,
		metric.WithDescription("Documentation generations that failed"),
		metric.WithUnit("{generation}"),
	)
	if err != nil {
		return fmt.Errorf("introspec feature: create %s counter: %w", metricGenerateFail, err)
	}
	return nil
}

// Register mounts the documentation endpoints on host. Documentation is
// generated on first use from the routes registered by then.
func (f *Feature) Register(host Host) error {
	if host == nil {
		return fmt.Errorf("introspec feature: nil host: %w", apidoc.ErrInvalidArgument)
	}

	routes := host.RouteMetadata()
	if routes == nil {
		return config.NewNotConfiguredError("server.metadata", errMetadataDisabled)
	}

	f.document = sync.OnceValues(func() (*apidoc.Documentation, error) {
		return f.generate(context.Background(), routes, host)
	})

	group := host.ModuleGroup().Group(f.cfg.Path, server.RateLimit(f.cfg.Rate.Limit, f.cfg.Rate.Burst))
	hidden := server.WithExclude(server.ExcludeMetadata | server.ExcludeDiscovery)

	server.GET(host.HandlerRegistry(), group, specRoute, f.getSpec,
		hidden, server.WithRawResponse(), server.WithModule("introspec"))
	server.GET(host.HandlerRegistry(), group, postmanRoute, f.getPostman,
		hidden, server.WithRawResponse(), server.WithModule("introspec"))

	f.log.Info().
		Str("spec", group.FullPath(specRoute)).
		Str("postman", group.FullPath(postmanRoute)).
		Msg("Documentation endpoints registered")
	return nil
}

// Operations returns the operations the filter keeps, grouped by request type.
func (f *Feature) Operations(routes []server.RouteDescriptor) []apidoc.Operation {
	kept := make([]server.RouteDescriptor, 0, len(routes))
	for i := range routes {
		if f.filter(routes[i]) {
			kept = append(kept, routes[i])
		}
	}
	return server.Operations(kept)
}

func (f *Feature) generate(ctx context.Context, routes *server.RouteRegistry, host Host) (*apidoc.Documentation, error) {
	hostCtx := generator.HostContext{BaseURL: host.BaseURL()}
	if cfg := host.Config(); cfg != nil {
		hostCtx.ServiceName = cfg.App.Name
		hostCtx.Version = cfg.App.Version
	}

	doc, err := f.generator.GenerateDocumentation(ctx, f.Operations(routes.Routes()), hostCtx, f.cfg)
	if err != nil {
		f.failures.Add(ctx, 1)
		f.log.Error().Err(err).Msg("Documentation generation failed")
		return nil, err
	}
	return doc, nil
}

// Documentation returns the full documentation, or the subset matching criteria.
func (f *Feature) Documentation(criteria *filter.Criteria) (*apidoc.Documentation, error) {
	if f.document == nil {
		return nil, errors.New("introspec feature: not registered")
	}
	doc, err := f.document()
	if err != nil {
		return nil, err
	}
	if criteria.IsEmpty() {
		return doc, nil
	}

	key := criteria.Key()
	if f.cache != nil {
		if cached, ok := f.cache.Get(key); ok {
			return cached, nil
		}
	}

	filtered, err := filter.Apply(criteria, doc)
	if err != nil {
		return nil, err
	}
	if f.cache != nil {
		f.cache.Add(key, filtered)
	}
	return filtered, nil
}

func (f *Feature) getSpec(criteria filter.Criteria, hc server.HandlerContext) (*apidoc.Documentation, server.IAPIError) {
	f.count(hc, "spec", &criteria)
	doc, err := f.Documentation(&criteria)
	if err != nil {
		return nil, generationError(err)
	}
	return doc, nil
}

func (f *Feature) getPostman(criteria filter.Criteria, hc server.HandlerContext) (server.Result[*postman.Collection], server.IAPIError) {
	f.count(hc, "postman", &criteria)
	doc, err := f.Documentation(&criteria)
	if err != nil {
		return server.Result[*postman.Collection]{}, generationError(err)
	}
	collection, err := f.postman.Generate(doc)
	if err != nil {
		return server.Result[*postman.Collection]{}, generationError(err)
	}

	ext := ".postman_collection.json"
	if hc.Echo != nil && server.WantsYAML(hc.Echo) {
		ext = ".postman_collection.yaml"
	}
	result := server.NewResult(http.StatusOK, collection)
	result.Headers = http.Header{
		echo.HeaderContentDisposition: {mime.FormatMediaType("attachment", map[string]string{
			"filename": collectionFileName(collection.Name) + ext,
		})},
	}
	return result, nil
}

// collectionFileName keeps letters, digits, '-' and '_' of name and replaces
// everything else with '_'.
func collectionFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "collection"
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			return r
		}
		return '_'
	}, name)
}

func (f *Feature) count(hc server.HandlerContext, endpoint string, criteria *filter.Criteria) {
	ctx := context.Background()
	if hc.Echo != nil {
		ctx = hc.Echo.Request().Context()
	}
	f.requests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("endpoint", endpoint),
		attribute.Bool("filtered", !criteria.IsEmpty()),
	))
}

func generationError(err error) server.IAPIError {
	return server.NewInternalServerError("Documentation is unavailable").WithDetails("error", err.Error())
}
