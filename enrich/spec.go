package enrich

import (
	"reflect"

	"github.com/gaborage/introspec/apidoc"
	"github.com/gaborage/introspec/members"
	"github.com/gaborage/introspec/typespec"
)

// SpecLayer reads declarative documentation from a spec registry.
func SpecLayer(specs *typespec.Registry) Layer {
	return Layer{
		Name:     "spec",
		Resource: specResources{specs: specs},
		Request:  specRequests{specs: specs},
		Action:   NewActionEngine(specs),
		Property: specProperties{specs: specs},
	}
}

type specResources struct {
	specs *typespec.Registry
}

func (s specResources) GetTitle(t reflect.Type) string {
	if spec, ok := s.specs.Lookup(t); ok {
		return spec.Title
	}
	return ""
}

func (s specResources) GetDescription(t reflect.Type) string {
	if spec, ok := s.specs.Lookup(t); ok {
		return spec.Description
	}
	return ""
}

func (s specResources) GetNotes(t reflect.Type) string {
	if spec, ok := s.specs.Lookup(t); ok {
		return spec.Notes
	}
	return ""
}

type specRequests struct {
	specs *typespec.Registry
}

func (s specRequests) GetCategory(op *apidoc.Operation) string {
	if spec, ok := s.specs.Lookup(op.RequestType); ok {
		return spec.Category
	}
	return ""
}

func (s specRequests) GetTags(op *apidoc.Operation) []string {
	if spec, ok := s.specs.Lookup(op.RequestType); ok {
		return spec.Tags
	}
	return nil
}

// GetSummary is not part of the type spec surface; descriptions come through GetDescription.
func (s specRequests) GetSummary(*apidoc.Operation) string {
	return ""
}

type specProperties struct {
	specs *typespec.Registry
}

func (s specProperties) property(m members.Member) typespec.PropertySpec {
	spec, ok := s.specs.Lookup(m.Owner)
	if !ok {
		return typespec.PropertySpec{}
	}
	p, _ := spec.Property(m.Name, m.Field.Name)
	return p
}

func (s specProperties) GetTitle(m members.Member) string       { return s.property(m).Title }
func (s specProperties) GetDescription(m members.Member) string { return s.property(m).Description }
func (s specProperties) GetNotes(m members.Member) string       { return s.property(m).Notes }
func (s specProperties) GetParamType(m members.Member) string   { return s.property(m).ParamType }

func (s specProperties) GetConstraints(m members.Member) *apidoc.Constraint {
	return s.property(m).Constraints
}

func (s specProperties) GetIsRequired(m members.Member) *bool    { return s.property(m).IsRequired }
func (s specProperties) GetAllowMultiple(m members.Member) *bool { return s.property(m).AllowMultiple }

func (s specProperties) GetExternalLinks(m members.Member) []string {
	return s.property(m).ExternalLinks
}
