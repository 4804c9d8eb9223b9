// Package server provides the HTTP host: an echo server, type-safe handlers and the
// route registry that documentation generation reads operations from.
package server

import (
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/gaborage/introspec/apidoc"
)

// RouteDescriptor captures metadata about a registered route
type RouteDescriptor struct {
	Method       string       // HTTP method (GET, POST, etc.)
	Path         string       // Route path pattern (/users/:id)
	HandlerID    string       // Unique identifier for handler function
	HandlerName  string       // Function name (e.g., "getUser")
	ModuleName   string       // Module that registered this route
	Package      string       // Go package path
	RequestType  reflect.Type // Request type T from HandlerFunc[T, R]
	ResponseType reflect.Type // Response type R from HandlerFunc[T, R]
	Middleware   []string     // Applied middleware names
	Tags         []string     // Optional grouping tags
	Summary      string       // Optional summary
	Description  string       // Optional description
	RawResponse  bool         // If true, bypass the APIResponse envelope

	// ExcludeMetadata hides the route from generated documentation.
	ExcludeMetadata bool
	// ExcludeDiscovery hides the route from service discovery listings.
	ExcludeDiscovery bool
}

// Exclusion flags for WithExclude.
type Exclusion uint8

const (
	ExcludeMetadata Exclusion = 1 << iota
	ExcludeDiscovery
)

// RouteRegistry maintains discovered routes for introspection
type RouteRegistry struct {
	mu     sync.RWMutex
	routes []RouteDescriptor
}

// NewRouteRegistry creates an empty registry.
func NewRouteRegistry() *RouteRegistry {
	return &RouteRegistry{}
}

// Register adds a route descriptor to the registry
func (r *RouteRegistry) Register(descriptor *RouteDescriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, cloneDescriptor(descriptor))
}

// Routes returns a copy of all registered routes in registration order
func (r *RouteRegistry) Routes() []RouteDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]RouteDescriptor, len(r.routes))
	for i := range r.routes {
		result[i] = cloneDescriptor(&r.routes[i])
	}
	return result
}

// ByModule returns routes for a specific module
func (r *RouteRegistry) ByModule(moduleName string) []RouteDescriptor {
	return r.filter(func(d *RouteDescriptor) bool { return d.ModuleName == moduleName })
}

// ByPath returns routes for a specific path pattern
func (r *RouteRegistry) ByPath(path string) []RouteDescriptor {
	return r.filter(func(d *RouteDescriptor) bool { return d.Path == path })
}

func (r *RouteRegistry) filter(keep func(*RouteDescriptor) bool) []RouteDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []RouteDescriptor
	for i := range r.routes {
		if keep(&r.routes[i]) {
			result = append(result, cloneDescriptor(&r.routes[i]))
		}
	}
	return result
}

// Clear removes all registered routes
func (r *RouteRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = nil
}

// Count returns the number of registered routes
func (r *RouteRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.routes)
}

// RouteOption for configuring route descriptors during registration
type RouteOption func(*RouteDescriptor)

// WithModule sets the module name for a route
func WithModule(name string) RouteOption {
	return func(d *RouteDescriptor) {
		d.ModuleName = name
	}
}

// WithTags adds tags to a route for grouping and organization
func WithTags(tags ...string) RouteOption {
	return func(d *RouteDescriptor) {
		d.Tags = append(d.Tags, tags...)
	}
}

// WithSummary sets a summary description for the route
func WithSummary(summary string) RouteOption {
	return func(d *RouteDescriptor) {
		d.Summary = summary
	}
}

// WithDescription sets a detailed description for the route
func WithDescription(description string) RouteOption {
	return func(d *RouteDescriptor) {
		d.Description = description
	}
}

// WithMiddleware records middleware applied to this route
func WithMiddleware(middlewareNames ...string) RouteOption {
	return func(d *RouteDescriptor) {
		d.Middleware = append(d.Middleware, middlewareNames...)
	}
}

// WithHandlerName explicitly sets the handler function name
func WithHandlerName(name string) RouteOption {
	return func(d *RouteDescriptor) {
		d.HandlerName = name
	}
}

// WithRawResponse returns the handler's response as the body, without the
// APIResponse envelope.
func WithRawResponse() RouteOption {
	return func(d *RouteDescriptor) {
		d.RawResponse = true
	}
}

// WithExclude hides the route from documentation and/or discovery.
func WithExclude(e Exclusion) RouteOption {
	return func(d *RouteDescriptor) {
		if e&ExcludeMetadata != 0 {
			d.ExcludeMetadata = true
		}
		if e&ExcludeDiscovery != 0 {
			d.ExcludeDiscovery = true
		}
	}
}

// cloneDescriptor deep-copies slice fields to prevent external mutation
func cloneDescriptor(d *RouteDescriptor) RouteDescriptor {
	if d == nil {
		return RouteDescriptor{}
	}

	out := *d
	if d.Tags != nil {
		out.Tags = slices.Clone(d.Tags)
	}
	if d.Middleware != nil {
		out.Middleware = slices.Clone(d.Middleware)
	}
	return out
}

// Operations groups routes by request type into documentation operations.
// Operations keep the order in which their request type was first registered;
// routes without a request type are skipped. Echo style ":name" segments become
// "{name}" placeholders.
func Operations(routes []RouteDescriptor) []apidoc.Operation {
	var ops []apidoc.Operation
	index := make(map[reflect.Type]int)

	for i := range routes {
		d := &routes[i]
		if d.RequestType == nil {
			continue
		}

		pos, ok := index[d.RequestType]
		if !ok {
			pos = len(ops)
			index[d.RequestType] = pos
			ops = append(ops, apidoc.Operation{RequestType: d.RequestType})
		}
		mergeDescriptor(&ops[pos], d)
	}
	return ops
}

func mergeDescriptor(op *apidoc.Operation, d *RouteDescriptor) {
	if op.ResponseType == nil {
		op.ResponseType = d.ResponseType
	}
	if op.Summary == "" {
		op.Summary = d.Summary
	}
	if op.Description == "" {
		op.Description = d.Description
	}
	if op.Module == "" {
		op.Module = d.ModuleName
	}
	for _, tag := range d.Tags {
		if !slices.Contains(op.Tags, tag) {
			op.Tags = append(op.Tags, tag)
		}
	}

	path := PathTemplate(d.Path)
	verb := strings.ToUpper(d.Method)
	for i := range op.Routes {
		if op.Routes[i].Path == path {
			if !slices.Contains(op.Routes[i].Verbs, verb) {
				op.Routes[i].Verbs = append(op.Routes[i].Verbs, verb)
			}
			return
		}
	}
	op.Routes = append(op.Routes, apidoc.Route{Path: path, Verbs: []string{verb}})
}

// PathTemplate converts an echo route ("/users/:id") to a documentation
// template ("/users/{id}").
func PathTemplate(path string) string {
	if !strings.Contains(path, ":") {
		return path
	}
	segments := strings.Split(path, "/")
	for i, s := range segments {
		if len(s) > 1 && s[0] == ':' {
			segments[i] = "{" + s[1:] + "}"
		}
	}
	return strings.Join(segments, "/")
}
