package enrich

import (
	"reflect"
	"sync"

	"github.com/gaborage/introspec/apidoc"
	"github.com/gaborage/introspec/internal/reflection"
	"github.com/gaborage/introspec/members"
	"github.com/gaborage/introspec/validation"
)

// ReflectionLayer derives documentation from Go types, route metadata and the
// struct tags understood by the validator (validate, param, query, header,
// title, doc, notes, link).
func ReflectionLayer() Layer {
	return Layer{
		Name:     "reflection",
		Resource: reflectedResources{},
		Request:  reflectedRequests{},
		Action:   reflectedActions{},
		Property: &reflectedProperties{},
	}
}

type reflectedResources struct{}

func (reflectedResources) GetTitle(t reflect.Type) string     { return reflection.GetTypeNameShort(t) }
func (reflectedResources) GetDescription(reflect.Type) string { return "" }
func (reflectedResources) GetNotes(reflect.Type) string       { return "" }

type reflectedRequests struct{}

func (reflectedRequests) GetCategory(op *apidoc.Operation) string { return op.Module }
func (reflectedRequests) GetTags(op *apidoc.Operation) []string   { return op.Tags }

func (reflectedRequests) GetSummary(op *apidoc.Operation) string {
	if op.Summary != "" {
		return op.Summary
	}
	return op.Description
}

type reflectedActions struct{}

func (reflectedActions) GetContentTypes(*apidoc.Operation, string) []string { return nil }

func (reflectedActions) GetStatusCodes(*apidoc.Operation, string) []apidoc.StatusCode { return nil }

func (reflectedActions) GetNotes(*apidoc.Operation, string) string { return "" }

func (reflectedActions) GetRelativePaths(op *apidoc.Operation, verb string) []string {
	return op.PathsFor(verb)
}

type tagKey struct {
	owner reflect.Type
	name  string
}

// reflectedProperties memoizes parsed tags per member.
type reflectedProperties struct {
	tags sync.Map // tagKey -> validation.TagInfo
}

func (r *reflectedProperties) info(m members.Member) validation.TagInfo {
	key := tagKey{owner: m.Owner, name: m.Name}
	if v, ok := r.tags.Load(key); ok {
		return v.(validation.TagInfo)
	}
	v, _ := r.tags.LoadOrStore(key, validation.ParseField(m.Field))
	return v.(validation.TagInfo)
}

func (r *reflectedProperties) GetTitle(m members.Member) string       { return r.info(m).Title }
func (r *reflectedProperties) GetDescription(m members.Member) string { return r.info(m).Description }
func (r *reflectedProperties) GetNotes(m members.Member) string       { return r.info(m).Notes }

func (r *reflectedProperties) GetParamType(m members.Member) string {
	return r.info(m).ParamType
}

// GetConstraints maps oneof to a list constraint and min/max (or gte/lte) to a
// range. On strings and collections the range bounds the length.
func (r *reflectedProperties) GetConstraints(m members.Member) *apidoc.Constraint {
	info := r.info(m)

	if values, ok := info.Enum(); ok {
		return &apidoc.Constraint{Name: "oneof", Type: apidoc.ConstraintList, Values: values}
	}

	lo, hasMin := info.Min()
	hi, hasMax := info.Max()
	if !hasMin && !hasMax {
		return nil
	}

	c := &apidoc.Constraint{Name: "range", Type: apidoc.ConstraintRange}
	switch reflection.Indirect(m.Type).Kind() {
	case reflect.String, reflect.Slice, reflect.Array, reflect.Map:
		c.Name = "length"
	}
	if hasMin {
		c.Min = &lo
	}
	if hasMax {
		c.Max = &hi
	}
	return c
}

func (r *reflectedProperties) GetIsRequired(m members.Member) *bool {
	return apidoc.Bool(r.info(m).Required)
}

func (r *reflectedProperties) GetAllowMultiple(m members.Member) *bool {
	_, multiple := reflection.ElementType(m.Type)
	return apidoc.Bool(multiple)
}

func (r *reflectedProperties) GetExternalLinks(m members.Member) []string {
	return r.info(m).Links
}
