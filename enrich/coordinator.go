package enrich

import (
	"reflect"

	"github.com/gaborage/introspec/apidoc"
	"github.com/gaborage/introspec/internal/reflection"
	"github.com/gaborage/introspec/members"
)

// Coordinator assembles resources from an operation by running the enricher
// chain over the request type, its verbs, its members and every nested type.
type Coordinator struct {
	chain      *Chain
	properties *PropertyEngine
}

// NewCoordinator creates a coordinator over layers in precedence order.
func NewCoordinator(cache members.Cache, layers ...Layer) *Coordinator {
	chain := NewChain(layers...)
	return &Coordinator{
		chain:      chain,
		properties: NewPropertyEngine(cache, chain.Property()),
	}
}

// EnrichResource documents op as a resource.
func (c *Coordinator) EnrichResource(op *apidoc.Operation) *apidoc.Resource {
	if op == nil {
		return nil
	}

	res := &apidoc.Resource{}
	c.EnrichType(&res.ResourceType, op.RequestType)

	requests := c.chain.Request()
	res.Category = requests.GetCategory(op)
	res.Tags = requests.GetTags(op)
	res.Description = FirstPresentFunc(res.Description, func() string { return requests.GetSummary(op) })

	res.Verbs = op.Verbs()
	for _, verb := range res.Verbs {
		action := c.enrichAction(op, verb)
		res.Actions = append(res.Actions, action)
		res.ContentTypes = appendUnique(res.ContentTypes, action.ContentTypes, identity)
		res.StatusCodes = appendUnique(res.StatusCodes, action.StatusCodes, statusKey)
		if res.RelativePath == "" && len(action.RelativePaths) > 0 {
			res.RelativePath = action.RelativePaths[0]
		}
	}
	if res.RelativePath == "" && len(op.Routes) > 0 {
		res.RelativePath = op.Routes[0].Path
	}

	if op.ResponseType != nil && !reflection.IsSystemType(op.ResponseType) {
		elem, _ := reflection.ElementType(op.ResponseType)
		res.ReturnType = &apidoc.ResourceType{}
		c.EnrichType(res.ReturnType, elem)
	}

	return res
}

func (c *Coordinator) enrichAction(op *apidoc.Operation, verb string) *apidoc.Action {
	actions := c.chain.Action()
	action := &apidoc.Action{
		Verb:          verb,
		Notes:         actions.GetNotes(op, verb),
		ContentTypes:  actions.GetContentTypes(op, verb),
		StatusCodes:   actions.GetStatusCodes(op, verb),
		RelativePaths: actions.GetRelativePaths(op, verb),
	}
	if len(action.RelativePaths) == 0 {
		action.RelativePaths = op.PathsFor(verb)
	}
	return action
}

// EnrichType documents t into rt, following embedded resources. A type that is
// already being documented higher up the same path is written as a stub holding
// only its title and type name.
func (c *Coordinator) EnrichType(rt *apidoc.ResourceType, t reflect.Type) {
	c.enrichType(rt, reflection.Indirect(t), make(map[reflect.Type]bool))
}

func (c *Coordinator) enrichType(rt *apidoc.ResourceType, t reflect.Type, ancestors map[reflect.Type]bool) {
	if rt == nil || t == nil {
		return
	}

	resources := c.chain.Resource()
	rt.TypeName = FirstPresent(rt.TypeName, reflection.GetTypeName(t))
	rt.Title = FirstPresentFunc(rt.Title, func() string {
		return FirstPresent(resources.GetTitle(t), reflection.GetTypeNameShort(t))
	})
	if ancestors[t] {
		return
	}

	rt.Description = FirstPresentFunc(rt.Description, func() string { return resources.GetDescription(t) })
	rt.Notes = FirstPresentFunc(rt.Notes, func() string { return resources.GetNotes(t) })

	ancestors[t] = true
	defer delete(ancestors, t)

	props, embeds := c.properties.EnrichProperties(rt.Properties, t)
	rt.Properties = props
	for _, e := range embeds {
		c.enrichType(e.Target, e.Type, ancestors)
	}
}

func appendUnique[T any](dst, src []T, key func(T) string) []T {
	if len(src) == 0 {
		return dst
	}
	seen := make(map[string]struct{}, len(dst)+len(src))
	for _, v := range dst {
		seen[key(v)] = struct{}{}
	}
	for _, v := range src {
		k := key(v)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		dst = append(dst, v)
	}
	return dst
}
