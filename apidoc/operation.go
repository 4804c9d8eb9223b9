package apidoc

import (
	"errors"
	"reflect"
	"strings"
)

// ErrInvalidArgument is returned when a mandatory argument is absent.
var ErrInvalidArgument = errors.New("invalid argument")

// Route is a route template together with the verbs it serves.
type Route struct {
	Path  string
	Verbs []string
}

// Operation describes one registered request type as discovered by the host.
type Operation struct {
	RequestType  reflect.Type
	ResponseType reflect.Type
	Routes       []Route
	Summary      string
	Description  string
	Tags         []string
	Module       string
}

// Verbs returns the distinct upper-cased verbs of all routes, in route order.
func (o *Operation) Verbs() []string {
	var verbs []string
	seen := make(map[string]struct{})
	for _, r := range o.Routes {
		for _, v := range r.Verbs {
			v = strings.ToUpper(v)
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			verbs = append(verbs, v)
		}
	}
	return verbs
}

// PathsFor returns the route templates that serve verb (case-insensitive).
func (o *Operation) PathsFor(verb string) []string {
	var paths []string
	for _, r := range o.Routes {
		for _, v := range r.Verbs {
			if strings.EqualFold(v, verb) {
				paths = append(paths, r.Path)
				break
			}
		}
	}
	return paths
}
