package server

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// RouteRegistrar is the subset of echo routing that modules use. Implementations
// apply the server base path so descriptors record the path clients call.
type RouteRegistrar interface {
	Add(method, path string, handler echo.HandlerFunc, middleware ...echo.MiddlewareFunc) *echo.Route
	Group(prefix string, middleware ...echo.MiddlewareFunc) RouteRegistrar
	Use(middleware ...echo.MiddlewareFunc)
	FullPath(path string) string
}

type routeGroup struct {
	group  *echo.Group
	prefix string
}

func newRouteGroup(group *echo.Group, prefix string) RouteRegistrar {
	return &routeGroup{group: group, prefix: normalizePrefix(prefix)}
}

func (rg *routeGroup) Add(method, path string, handler echo.HandlerFunc, middleware ...echo.MiddlewareFunc) *echo.Route {
	return rg.group.Add(method, rg.relativePath(path), handler, middleware...)
}

func (rg *routeGroup) Group(prefix string, middleware ...echo.MiddlewareFunc) RouteRegistrar {
	normalized := normalizePrefix(prefix)
	return &routeGroup{
		group:  rg.group.Group(normalized, middleware...),
		prefix: rg.prefix + normalized,
	}
}

func (rg *routeGroup) Use(middleware ...echo.MiddlewareFunc) {
	rg.group.Use(middleware...)
}

// FullPath returns path as registered on the echo instance, prefix included.
func (rg *routeGroup) FullPath(path string) string {
	full := rg.prefix + rg.relativePath(path)
	if full == "" {
		return "/"
	}
	return full
}

// relativePath strips the group prefix when the caller already included it.
func (rg *routeGroup) relativePath(path string) string {
	normalized := ensureLeadingSlash(path)
	if normalized == "/" {
		return ""
	}
	if rg.prefix != "" && strings.HasPrefix(normalized, rg.prefix) {
		rest := normalized[len(rg.prefix):]
		if rest == "" || rest[0] == '/' {
			return rest
		}
	}
	return normalized
}

func ensureLeadingSlash(path string) string {
	if !strings.HasPrefix(path, "/") {
		return "/" + path
	}
	return path
}

func normalizePrefix(prefix string) string {
	if prefix == "" || prefix == "/" {
		return ""
	}
	return strings.TrimRight(ensureLeadingSlash(prefix), "/")
}
