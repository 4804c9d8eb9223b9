// Package typespec holds declarative documentation for request and embedded types.
//
// Specs are plain values built with a fluent API and added to a Registry at
// startup:
//
//	reg := typespec.NewRegistry()
//	err := reg.Register(typespec.For[CreateUserRequest]().
//		WithTitle("Create user").
//		AddContentTypes("application/json").
//		AddVerbStatusCodes(http.MethodPost, apidoc.StatusCode{Code: 201, Name: "Created"}).
//		WithProperty("email", typespec.PropertySpec{Description: "login address"}))
package typespec

import (
	"reflect"
	"strings"

	"github.com/gaborage/introspec/apidoc"
)

// PropertySpec overrides the documentation of a single member. Zero values mean
// "not specified".
type PropertySpec struct {
	Title         string
	Description   string
	Notes         string
	ParamType     string
	Constraints   *apidoc.Constraint
	IsRequired    *bool
	AllowMultiple *bool
	ExternalLinks []string
}

// Verbed holds values that apply to every verb plus values for specific verbs.
// Verb keys are upper case.
type Verbed[T any] struct {
	Global []T
	ByVerb map[string][]T
}

func (v *Verbed[T]) add(verb string, values ...T) {
	if verb == "" {
		v.Global = append(v.Global, values...)
		return
	}
	if v.ByVerb == nil {
		v.ByVerb = make(map[string][]T)
	}
	key := strings.ToUpper(verb)
	v.ByVerb[key] = append(v.ByVerb[key], values...)
}

// Resolve returns the global values followed by the values registered for verb,
// de-duplicated by key and in registration order. It returns nil when nothing
// applies.
func (v Verbed[T]) Resolve(verb string, key func(T) string) []T {
	specific := v.ByVerb[strings.ToUpper(verb)]
	if len(v.Global) == 0 && len(specific) == 0 {
		return nil
	}

	out := make([]T, 0, len(v.Global)+len(specific))
	seen := make(map[string]struct{}, cap(out))
	for _, group := range [][]T{v.Global, specific} {
		for _, item := range group {
			k := key(item)
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, item)
		}
	}
	return out
}

// Spec is the declarative documentation of one type.
type Spec struct {
	Type        reflect.Type
	Title       string
	Description string
	Notes       string
	Category    string
	Tags        []string
	Properties  map[string]PropertySpec

	ContentTypes  Verbed[string]
	StatusCodes   Verbed[apidoc.StatusCode]
	RelativePaths Verbed[string]
	VerbNotes     map[string]string
}

// For starts a spec for T. Pointer types document their element type.
func For[T any]() *Spec {
	return New(reflect.TypeOf((*T)(nil)).Elem())
}

// New starts a spec for t.
func New(t reflect.Type) *Spec {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return &Spec{Type: t}
}

// WithTitle sets the display title.
func (s *Spec) WithTitle(title string) *Spec {
	s.Title = title
	return s
}

// WithDescription sets the description.
func (s *Spec) WithDescription(description string) *Spec {
	s.Description = description
	return s
}

// WithCategory sets the category used for grouping and filtering.
func (s *Spec) WithCategory(category string) *Spec {
	s.Category = category
	return s
}

// WithTags adds tags.
func (s *Spec) WithTags(tags ...string) *Spec {
	s.Tags = append(s.Tags, tags...)
	return s
}

// AddRouteNotes sets the notes that apply to every verb.
func (s *Spec) AddRouteNotes(notes string) *Spec {
	s.Notes = notes
	return s
}

// AddVerbRouteNotes sets notes for one verb; they replace the global notes for that verb.
func (s *Spec) AddVerbRouteNotes(verb, notes string) *Spec {
	if s.VerbNotes == nil {
		s.VerbNotes = make(map[string]string)
	}
	s.VerbNotes[strings.ToUpper(verb)] = notes
	return s
}

// AddContentTypes adds content types served by every verb.
func (s *Spec) AddContentTypes(contentTypes ...string) *Spec {
	s.ContentTypes.add("", contentTypes...)
	return s
}

// AddVerbContentTypes adds content types served by one verb.
func (s *Spec) AddVerbContentTypes(verb string, contentTypes ...string) *Spec {
	s.ContentTypes.add(verb, contentTypes...)
	return s
}

// AddStatusCodes adds status codes returned by every verb.
func (s *Spec) AddStatusCodes(codes ...apidoc.StatusCode) *Spec {
	s.StatusCodes.add("", codes...)
	return s
}

// AddVerbStatusCodes adds status codes returned by one verb.
func (s *Spec) AddVerbStatusCodes(verb string, codes ...apidoc.StatusCode) *Spec {
	s.StatusCodes.add(verb, codes...)
	return s
}

// AddRelativePaths adds route templates served by every verb.
func (s *Spec) AddRelativePaths(paths ...string) *Spec {
	s.RelativePaths.add("", paths...)
	return s
}

// AddVerbRelativePaths adds route templates served by one verb.
func (s *Spec) AddVerbRelativePaths(verb string, paths ...string) *Spec {
	s.RelativePaths.add(verb, paths...)
	return s
}

// WithProperty documents a member by its serialized name or Go field name.
func (s *Spec) WithProperty(name string, p PropertySpec) *Spec {
	if s.Properties == nil {
		s.Properties = make(map[string]PropertySpec)
	}
	s.Properties[name] = p
	return s
}

// Property returns the property spec for the first of names that has one.
func (s *Spec) Property(names ...string) (PropertySpec, bool) {
	for _, n := range names {
		if p, ok := s.Properties[n]; ok {
			return p, true
		}
	}
	return PropertySpec{}, false
}

// NotesFor returns the verb notes when set, else the global notes.
func (s *Spec) NotesFor(verb string) string {
	if n, ok := s.VerbNotes[strings.ToUpper(verb)]; ok && n != "" {
		return n
	}
	return s.Notes
}
