package enrich

import (
	"reflect"

	"github.com/gaborage/introspec/apidoc"
	"github.com/gaborage/introspec/internal/reflection"
	"github.com/gaborage/introspec/members"
)

// EmbedRequest asks the caller to document Type into Target. It is emitted for
// every property whose value type is not a system type.
type EmbedRequest struct {
	Property string
	Type     reflect.Type
	Target   *apidoc.ResourceType
}

// PropertyEngine merges existing property documentation with enricher values.
type PropertyEngine struct {
	cache    members.Cache
	enricher PropertyEnricher
}

// NewPropertyEngine creates an engine. A nil enricher disables enrichment.
func NewPropertyEngine(cache members.Cache, enricher PropertyEnricher) *PropertyEngine {
	if cache == nil {
		cache = members.New()
	}
	return &PropertyEngine{cache: cache, enricher: enricher}
}

// EnrichProperties documents the members of t. Existing properties are enriched
// in place and the same slice is returned; when there are none a new slice is
// built in member order. Fields that already hold a value are kept.
//
// Embedded resources are not enriched here: the returned requests name the
// nested types and the slots to fill, leaving recursion and cycle tracking to
// the caller.
func (e *PropertyEngine) EnrichProperties(existing []*apidoc.Property, t reflect.Type) ([]*apidoc.Property, []EmbedRequest) {
	if e.enricher == nil {
		return existing, nil
	}

	all := e.cache.Members(t)

	var built []*apidoc.Property
	index := make(map[string]*apidoc.Property, len(existing))
	if len(existing) == 0 {
		built = make([]*apidoc.Property, 0, len(all))
	} else {
		for _, p := range existing {
			index[p.ID] = p
		}
	}

	var requests []EmbedRequest
	for _, m := range all {
		p, ok := index[m.Name]
		if !ok {
			p = apidoc.NewProperty(m.Name, m.Type)
		}

		e.enrichProperty(p, m)

		elem, _ := reflection.ElementType(m.Type)
		if !reflection.IsSystemType(elem) {
			if p.EmbeddedResource == nil {
				p.EmbeddedResource = &apidoc.ResourceType{}
			}
			requests = append(requests, EmbedRequest{Property: p.ID, Type: elem, Target: p.EmbeddedResource})
		}

		if built != nil {
			built = append(built, p)
		}
	}

	if built != nil {
		return built, requests
	}
	return existing, requests
}

func (e *PropertyEngine) enrichProperty(p *apidoc.Property, m members.Member) {
	if p.Title == "" || p.Title == p.ID {
		p.Title = FirstPresent(e.enricher.GetTitle(m), p.ID)
	}
	if p.Type == nil {
		p.Type = m.Type
	}

	p.Description = FirstPresentFunc(p.Description, func() string { return e.enricher.GetDescription(m) })
	p.Notes = FirstPresentFunc(p.Notes, func() string { return e.enricher.GetNotes(m) })
	p.ParamType = FirstPresentFunc(p.ParamType, func() string { return e.enricher.GetParamType(m) })
	p.Constraints = FirstPresentFunc(p.Constraints, func() *apidoc.Constraint { return e.enricher.GetConstraints(m) })
	p.IsRequired = FirstPresentFunc(p.IsRequired, func() *bool { return e.enricher.GetIsRequired(m) })
	p.AllowMultiple = FirstPresentFunc(p.AllowMultiple, func() *bool { return e.enricher.GetAllowMultiple(m) })
	p.ExternalLinks = FirstPresentFunc(p.ExternalLinks, func() []string { return e.enricher.GetExternalLinks(m) })
}
