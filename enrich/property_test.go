package enrich

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaborage/introspec/apidoc"
	"github.com/gaborage/introspec/members"
)

type Address struct {
	Street string `json:"street" doc:"street line"`
	Zip    string `json:"zip" validate:"required,min=5,max=10"`
}

type Person struct {
	Name    string    `json:"name" title:"Full name" validate:"required"`
	Age     int       `json:"age,omitempty" validate:"omitempty,gte=0,lte=150"`
	Role    string    `json:"role" validate:"oneof=admin user" link:"https://example.com/roles"`
	Home    Address   `json:"home"`
	Others  []Address `json:"others"`
	Friends []*Person `json:"friends"`
	Created time.Time `json:"created"`
}

// titleEnricher documents members from fixed maps and leaves everything else empty.
type titleEnricher struct {
	titles       map[string]string
	descriptions map[string]string
}

func (e titleEnricher) GetTitle(m members.Member) string       { return e.titles[m.Name] }
func (e titleEnricher) GetDescription(m members.Member) string { return e.descriptions[m.Name] }
func (titleEnricher) GetNotes(members.Member) string            { return "" }
func (titleEnricher) GetParamType(members.Member) string        { return "" }

func (titleEnricher) GetConstraints(members.Member) *apidoc.Constraint { return nil }
func (titleEnricher) GetIsRequired(members.Member) *bool               { return nil }
func (titleEnricher) GetAllowMultiple(members.Member) *bool            { return apidoc.Bool(false) }
func (titleEnricher) GetExternalLinks(members.Member) []string         { return nil }

func propertyIDs(props []*apidoc.Property) []string {
	ids := make([]string, 0, len(props))
	for _, p := range props {
		ids = append(ids, p.ID)
	}
	return ids
}

func TestEnrichPropertiesWithoutEnricher(t *testing.T) {
	engine := NewPropertyEngine(members.New(), nil)
	existing := []*apidoc.Property{{ID: "name", Title: "name"}}

	props, embeds := engine.EnrichProperties(existing, reflect.TypeOf(Person{}))

	assert.Equal(t, existing, props)
	assert.Nil(t, embeds)
	assert.Equal(t, "name", props[0].Title)
}

func TestEnrichPropertiesBuildsInMemberOrder(t *testing.T) {
	engine := NewPropertyEngine(nil, titleEnricher{
		titles:       map[string]string{"name": "Full name"},
		descriptions: map[string]string{"age": "years"},
	})

	props, embeds := engine.EnrichProperties(nil, reflect.TypeOf(&Person{}))

	assert.Equal(t, []string{"name", "age", "role", "home", "others", "friends", "created"}, propertyIDs(props))
	assert.Equal(t, "Full name", props[0].Title)
	assert.Equal(t, "age", props[1].Title)
	assert.Equal(t, "years", props[1].Description)
	require.NotNil(t, props[1].AllowMultiple)
	assert.False(t, *props[1].AllowMultiple)

	require.Len(t, embeds, 3)
	assert.Equal(t, "home", embeds[0].Property)
	assert.Equal(t, reflect.TypeOf(Address{}), embeds[0].Type)
	assert.Same(t, props[3].EmbeddedResource, embeds[0].Target)
	assert.Equal(t, reflect.TypeOf(Address{}), embeds[1].Type)
	assert.Equal(t, reflect.TypeOf(Person{}), embeds[2].Type)
	assert.Nil(t, props[6].EmbeddedResource)
}

func TestEnrichPropertiesKeepsExistingValues(t *testing.T) {
	engine := NewPropertyEngine(nil, titleEnricher{
		titles:       map[string]string{"name": "Full name", "role": "Role"},
		descriptions: map[string]string{"name": "given and family name", "role": "access level"},
	})
	existing := []*apidoc.Property{
		{ID: "name", Title: "name", Description: "kept"},
		{ID: "role", Title: "Custom role"},
		{ID: "legacy", Title: "legacy"},
	}

	props, _ := engine.EnrichProperties(existing, reflect.TypeOf(Person{}))

	require.Len(t, props, 3)
	assert.Same(t, existing[0], props[0])
	assert.Equal(t, "Full name", props[0].Title)
	assert.Equal(t, "kept", props[0].Description)
	assert.Equal(t, "Custom role", props[1].Title)
	assert.Equal(t, "access level", props[1].Description)
	assert.Equal(t, "legacy", props[2].Title)
}

func TestEnrichPropertiesTitleFallsBackToID(t *testing.T) {
	engine := NewPropertyEngine(nil, titleEnricher{})
	existing := []*apidoc.Property{{ID: "age"}}

	props, _ := engine.EnrichProperties(existing, reflect.TypeOf(Person{}))

	assert.Equal(t, "age", props[0].Title)
	assert.Equal(t, reflect.TypeOf(0), props[0].Type)
}

func TestReflectionLayerProperties(t *testing.T) {
	engine := NewPropertyEngine(nil, ReflectionLayer().Property)

	props, _ := engine.EnrichProperties(nil, reflect.TypeOf(Person{}))
	byID := make(map[string]*apidoc.Property, len(props))
	for _, p := range props {
		byID[p.ID] = p
	}

	name := byID["name"]
	assert.Equal(t, "Full name", name.Title)
	assert.Equal(t, "body", name.ParamType)
	require.NotNil(t, name.IsRequired)
	assert.True(t, *name.IsRequired)

	age := byID["age"]
	require.NotNil(t, age.Constraints)
	assert.Equal(t, apidoc.ConstraintRange, age.Constraints.Type)
	assert.Equal(t, "range", age.Constraints.Name)
	assert.InDelta(t, 0, *age.Constraints.Min, 0)
	assert.InDelta(t, 150, *age.Constraints.Max, 0)
	assert.False(t, *age.IsRequired)

	role := byID["role"]
	require.NotNil(t, role.Constraints)
	assert.Equal(t, apidoc.ConstraintList, role.Constraints.Type)
	assert.Equal(t, []string{"admin", "user"}, role.Constraints.Values)
	assert.Equal(t, []string{"https://example.com/roles"}, role.ExternalLinks)

	others := byID["others"]
	require.NotNil(t, others.AllowMultiple)
	assert.True(t, *others.AllowMultiple)
}
