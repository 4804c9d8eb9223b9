// Package generator turns the operations of a service into a documentation set.
package generator

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/gaborage/introspec/apidoc"
	"github.com/gaborage/introspec/config"
	"github.com/gaborage/introspec/enrich"
	"github.com/gaborage/introspec/logger"
	"github.com/gaborage/introspec/members"
	"github.com/gaborage/introspec/typespec"
)

const (
	tracerName = "github.com/gaborage/introspec/generator"
	spanName   = "introspec.generate"
)

// HostContext carries what the hosting service knows about itself. Values act
// as fallbacks for fields the documentation config leaves empty.
type HostContext struct {
	ServiceName  string
	Version      string
	BaseURL      string
	ContentTypes []string
	StatusCodes  []apidoc.StatusCode
}

// Generator produces documentation for a set of operations.
type Generator interface {
	GenerateDocumentation(ctx context.Context, ops []apidoc.Operation, host HostContext, cfg *config.IntrospecConfig) (*apidoc.Documentation, error)
}

// DocumentationGenerator documents operations through the type spec, reflection and
// fallback enrichment layers.
type DocumentationGenerator struct {
	specs  *typespec.Registry
	cache  members.Cache
	log    logger.Logger
	tracer trace.Tracer
}

var _ Generator = (*DocumentationGenerator)(nil)

// Option configures a DocumentationGenerator.
type Option func(*DocumentationGenerator)

// WithSpecRegistry sets the declarative specs consulted before reflection.
func WithSpecRegistry(specs *typespec.Registry) Option {
	return func(g *DocumentationGenerator) { g.specs = specs }
}

// WithMemberCache shares a member cache across generators.
func WithMemberCache(cache members.Cache) Option {
	return func(g *DocumentationGenerator) { g.cache = cache }
}

// WithLogger sets the logger for generation summaries and title collisions.
func WithLogger(log logger.Logger) Option {
	return func(g *DocumentationGenerator) { g.log = log }
}

// WithTracerProvider overrides the global tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(g *DocumentationGenerator) { g.tracer = tp.Tracer(tracerName) }
}

// New creates a generator. Without options it uses an empty spec registry, a
// private member cache, a no-op logger and the global tracer provider.
func New(opts ...Option) *DocumentationGenerator {
	g := &DocumentationGenerator{}
	for _, opt := range opts {
		opt(g)
	}
	if g.specs == nil {
		g.specs = typespec.NewRegistry()
	}
	if g.cache == nil {
		g.cache = members.New()
	}
	if g.log == nil {
		g.log = logger.Nop()
	}
	if g.tracer == nil {
		g.tracer = otel.Tracer(tracerName)
	}
	return g
}

// GenerateDocumentation documents ops in order. A nil config is an invalid argument.
func (g *DocumentationGenerator) GenerateDocumentation(ctx context.Context, ops []apidoc.Operation, host HostContext, cfg *config.IntrospecConfig) (*apidoc.Documentation, error) {
	if cfg == nil {
		return nil, fmt.Errorf("generate documentation: nil config: %w", apidoc.ErrInvalidArgument)
	}

	_, span := g.tracer.Start(ctx, spanName)
	defer span.End()
	start := time.Now()

	coordinator := enrich.NewCoordinator(g.cache,
		enrich.SpecLayer(g.specs),
		enrich.ReflectionLayer(),
		enrich.FallbackLayer(enrich.Defaults{
			ContentTypes: enrich.FirstPresent(cfg.ContentTypes, host.ContentTypes),
			StatusCodes:  host.StatusCodes,
		}),
	)

	resources := make([]*apidoc.Resource, 0, len(ops))
	titles := make(map[string]struct{}, len(ops))
	for i := range ops {
		res := coordinator.EnrichResource(&ops[i])
		if res == nil {
			continue
		}
		if _, taken := titles[res.Title]; taken {
			g.log.Warn().
				Str("title", res.Title).
				Str("type", res.TypeName).
				Msg("Duplicate resource title, using qualified type name")
			res.Title = res.TypeName
		}
		titles[res.Title] = struct{}{}
		resources = append(resources, res)
	}

	doc := &apidoc.Documentation{
		Title:       enrich.FirstPresent(cfg.Title, host.ServiceName),
		Version:     enrich.FirstPresent(cfg.Version, host.Version),
		Description: cfg.Description,
		BaseURL:     enrich.FirstPresent(cfg.BaseURL, host.BaseURL),
		LicenseURL:  cfg.LicenseURL,
		Resources:   resources,
	}
	if cfg.Contact != (config.ContactConfig{}) {
		doc.Contact = &apidoc.Contact{
			Name:  cfg.Contact.Name,
			Email: cfg.Contact.Email,
			URL:   cfg.Contact.URL,
		}
	}

	span.SetAttributes(
		attribute.Int("introspec.operations", len(ops)),
		attribute.Int("introspec.resources", len(resources)),
	)
	g.log.Debug().
		Int("operations", len(ops)).
		Int("resources", len(resources)).
		Dur("duration", time.Since(start)).
		Msg("Documentation generated")

	return doc, nil
}
