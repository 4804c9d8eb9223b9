// Package filter narrows a documentation set down to matching resources.
package filter

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gaborage/introspec/apidoc"
)

// Criteria selects resources. A resource matches when it satisfies every
// specified constraint: its title is one of DtoName, its category equals
// Category and it carries at least one of Tags. Comparisons are case-sensitive.
type Criteria struct {
	DtoName  []string `query:"dtoName" json:"dtoName,omitempty"`
	Category string   `query:"category" json:"category,omitempty"`
	Tags     []string `query:"tag" json:"tags,omitempty"`
}

// IsEmpty reports whether no constraint is specified.
func (c *Criteria) IsEmpty() bool {
	return c == nil || (len(c.DtoName) == 0 && c.Category == "" && len(c.Tags) == 0)
}

// Key returns a canonical representation of c: value order and duplicates do
// not change it.
func (c *Criteria) Key() string {
	if c.IsEmpty() {
		return ""
	}
	return "dto=" + canonical(c.DtoName) + "&category=" + c.Category + "&tag=" + canonical(c.Tags)
}

func canonical(values []string) string {
	if len(values) == 0 {
		return ""
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	return strings.Join(slices.Compact(sorted), ",")
}

// Matches reports whether res satisfies c.
func (c *Criteria) Matches(res *apidoc.Resource) bool {
	if res == nil {
		return false
	}
	if c.IsEmpty() {
		return true
	}
	if len(c.DtoName) > 0 && !slices.Contains(c.DtoName, res.Title) {
		return false
	}
	if c.Category != "" && res.Category != c.Category {
		return false
	}
	if len(c.Tags) > 0 && !slices.ContainsFunc(c.Tags, res.HasTag) {
		return false
	}
	return true
}

// Apply returns the resources of doc matching criteria, in document order.
// With no constraint the same document is returned; otherwise a copy sharing
// doc's metadata is returned. An empty result is not an error.
func Apply(criteria *Criteria, doc *apidoc.Documentation) (*apidoc.Documentation, error) {
	if criteria == nil {
		return nil, fmt.Errorf("filter documentation: nil criteria: %w", apidoc.ErrInvalidArgument)
	}
	if doc == nil {
		return nil, fmt.Errorf("filter documentation: nil document: %w", apidoc.ErrInvalidArgument)
	}
	if criteria.IsEmpty() {
		return doc, nil
	}

	matched := make([]*apidoc.Resource, 0, len(doc.Resources))
	for _, res := range doc.Resources {
		if criteria.Matches(res) {
			matched = append(matched, res)
		}
	}
	return doc.WithResources(matched), nil
}
