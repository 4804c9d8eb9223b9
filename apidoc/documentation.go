// Package apidoc defines the canonical documentation model produced by enrichment
// and consumed by filtering and collection export.
package apidoc

import (
	"reflect"
)

// Documentation is the root of a generated documentation set.
type Documentation struct {
	Title       string      `json:"title" yaml:"title"`
	Version     string      `json:"apiVersion,omitempty" yaml:"apiVersion,omitempty"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	BaseURL     string      `json:"apiBaseUrl,omitempty" yaml:"apiBaseUrl,omitempty"`
	LicenseURL  string      `json:"licenseUrl,omitempty" yaml:"licenseUrl,omitempty"`
	Contact     *Contact    `json:"contact,omitempty" yaml:"contact,omitempty"`
	Resources   []*Resource `json:"resources" yaml:"resources"`
}

// Contact holds the owner details published with the documentation.
type Contact struct {
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email,omitempty" yaml:"email,omitempty"`
	URL   string `json:"url,omitempty" yaml:"url,omitempty"`
}

// WithResources returns a shallow copy of d that shares its top-level metadata
// but carries the given resource sequence.
func (d *Documentation) WithResources(resources []*Resource) *Documentation {
	out := *d
	out.Resources = resources
	return &out
}

// Resource finds a resource by title.
func (d *Documentation) Resource(title string) (*Resource, bool) {
	for _, r := range d.Resources {
		if r.Title == title {
			return r, true
		}
	}
	return nil, false
}

// ResourceType documents a named type: either a request type or the type of an
// embedded (non-system) property.
type ResourceType struct {
	TypeName    string      `json:"typeName,omitempty" yaml:"typeName,omitempty"`
	Title       string      `json:"title" yaml:"title"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Notes       string      `json:"notes,omitempty" yaml:"notes,omitempty"`
	Properties  []*Property `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// Property returns the property with the given id.
func (r *ResourceType) Property(id string) (*Property, bool) {
	for _, p := range r.Properties {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// Resource documents one operation (request type) of the service.
type Resource struct {
	ResourceType `yaml:",inline"`

	RelativePath string        `json:"relativePath,omitempty" yaml:"relativePath,omitempty"`
	Verbs        []string      `json:"verbs,omitempty" yaml:"verbs,omitempty"`
	ContentTypes []string      `json:"contentTypes,omitempty" yaml:"contentTypes,omitempty"`
	StatusCodes  []StatusCode  `json:"statusCodes,omitempty" yaml:"statusCodes,omitempty"`
	Actions      []*Action     `json:"actions,omitempty" yaml:"actions,omitempty"`
	Tags         []string      `json:"tags,omitempty" yaml:"tags,omitempty"`
	Category     string        `json:"category,omitempty" yaml:"category,omitempty"`
	ReturnType   *ResourceType `json:"returnType,omitempty" yaml:"returnType,omitempty"`
}

// HasTag reports whether the resource is labelled with tag.
func (r *Resource) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Action documents a single verb of a resource.
type Action struct {
	Verb          string       `json:"verb" yaml:"verb"`
	Notes         string       `json:"notes,omitempty" yaml:"notes,omitempty"`
	ContentTypes  []string     `json:"contentTypes,omitempty" yaml:"contentTypes,omitempty"`
	StatusCodes   []StatusCode `json:"statusCodes,omitempty" yaml:"statusCodes,omitempty"`
	RelativePaths []string     `json:"relativePaths,omitempty" yaml:"relativePaths,omitempty"`
}

// Property documents one serializable member of a resource type.
type Property struct {
	ID               string        `json:"id" yaml:"id"`
	Title            string        `json:"title" yaml:"title"`
	Description      string        `json:"description,omitempty" yaml:"description,omitempty"`
	Notes            string        `json:"notes,omitempty" yaml:"notes,omitempty"`
	ParamType        string        `json:"paramType,omitempty" yaml:"paramType,omitempty"`
	Constraints      *Constraint   `json:"constraints,omitempty" yaml:"constraints,omitempty"`
	IsRequired       *bool         `json:"isRequired,omitempty" yaml:"isRequired,omitempty"`
	AllowMultiple    *bool         `json:"allowMultiple,omitempty" yaml:"allowMultiple,omitempty"`
	ExternalLinks    []string      `json:"externalLinks,omitempty" yaml:"externalLinks,omitempty"`
	TypeName         string        `json:"typeName,omitempty" yaml:"typeName,omitempty"`
	Type             reflect.Type  `json:"-" yaml:"-"`
	EmbeddedResource *ResourceType `json:"embeddedResource,omitempty" yaml:"embeddedResource,omitempty"`
}

// NewProperty creates a property keyed by id whose title defaults to the id.
func NewProperty(id string, t reflect.Type) *Property {
	p := &Property{ID: id, Title: id, Type: t}
	if t != nil {
		p.TypeName = t.Name()
		if p.TypeName == "" {
			p.TypeName = t.String()
		}
	}
	return p
}

// ConstraintType distinguishes enumerations from numeric ranges.
type ConstraintType string

const (
	ConstraintList  ConstraintType = "list"
	ConstraintRange ConstraintType = "range"
)

// Constraint restricts the values a property accepts.
type Constraint struct {
	Name   string         `json:"name,omitempty" yaml:"name,omitempty"`
	Type   ConstraintType `json:"type" yaml:"type"`
	Values []string       `json:"values,omitempty" yaml:"values,omitempty"`
	Min    *float64       `json:"min,omitempty" yaml:"min,omitempty"`
	Max    *float64       `json:"max,omitempty" yaml:"max,omitempty"`
}

// StatusCode documents a response status of an action.
type StatusCode struct {
	Code        int    `json:"code" yaml:"code"`
	Name        string `json:"name,omitempty" yaml:"name,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Bool returns a pointer to v, for the optional boolean fields of Property.
func Bool(v bool) *bool {
	return &v
}
