// Package enrich populates the documentation model from layered sources.
//
// Each source is a Layer made of up to four enrichers (resource, request, action,
// property). Layers are consulted in precedence order and the first present value
// wins, so declarative specs override reflected defaults, which in turn override
// host fallbacks.
package enrich

import (
	"reflect"

	"github.com/gaborage/introspec/apidoc"
	"github.com/gaborage/introspec/members"
)

// ResourceEnricher supplies type-level documentation.
type ResourceEnricher interface {
	GetTitle(t reflect.Type) string
	GetDescription(t reflect.Type) string
	GetNotes(t reflect.Type) string
}

// RequestEnricher supplies documentation only known for top-level operations.
type RequestEnricher interface {
	GetCategory(op *apidoc.Operation) string
	GetTags(op *apidoc.Operation) []string
	GetSummary(op *apidoc.Operation) string
}

// ActionEnricher supplies per-verb documentation of an operation.
type ActionEnricher interface {
	GetContentTypes(op *apidoc.Operation, verb string) []string
	GetStatusCodes(op *apidoc.Operation, verb string) []apidoc.StatusCode
	GetNotes(op *apidoc.Operation, verb string) string
	GetRelativePaths(op *apidoc.Operation, verb string) []string
}

// PropertyEnricher supplies per-member documentation.
type PropertyEnricher interface {
	GetTitle(m members.Member) string
	GetDescription(m members.Member) string
	GetNotes(m members.Member) string
	GetParamType(m members.Member) string
	GetConstraints(m members.Member) *apidoc.Constraint
	GetIsRequired(m members.Member) *bool
	GetAllowMultiple(m members.Member) *bool
	GetExternalLinks(m members.Member) []string
}

// Layer groups the enrichers of one documentation source. Nil members are skipped.
type Layer struct {
	Name     string
	Resource ResourceEnricher
	Request  RequestEnricher
	Action   ActionEnricher
	Property PropertyEnricher
}

// Chain consults layers in order and returns the first present value per field.
type Chain struct {
	resources  resourceChain
	requests   requestChain
	actions    actionChain
	properties propertyChain
}

// NewChain builds a chain from layers in precedence order.
func NewChain(layers ...Layer) *Chain {
	c := &Chain{}
	for _, l := range layers {
		if l.Resource != nil {
			c.resources = append(c.resources, l.Resource)
		}
		if l.Request != nil {
			c.requests = append(c.requests, l.Request)
		}
		if l.Action != nil {
			c.actions = append(c.actions, l.Action)
		}
		if l.Property != nil {
			c.properties = append(c.properties, l.Property)
		}
	}
	return c
}

// Resource returns the combined resource enricher.
func (c *Chain) Resource() ResourceEnricher { return c.resources }

// Request returns the combined request enricher.
func (c *Chain) Request() RequestEnricher { return c.requests }

// Action returns the combined action enricher.
func (c *Chain) Action() ActionEnricher { return c.actions }

// Property returns the combined property enricher, or nil when no layer supplies one.
func (c *Chain) Property() PropertyEnricher {
	if len(c.properties) == 0 {
		return nil
	}
	return c.properties
}

// firstOf returns the first present value produced by the enrichers.
func firstOf[E any, T any](enrichers []E, get func(E) T) T {
	var zero T
	for _, e := range enrichers {
		if v := get(e); present(v) {
			return v
		}
	}
	return zero
}

type resourceChain []ResourceEnricher

func (c resourceChain) GetTitle(t reflect.Type) string {
	return firstOf(c, func(e ResourceEnricher) string { return e.GetTitle(t) })
}

func (c resourceChain) GetDescription(t reflect.Type) string {
	return firstOf(c, func(e ResourceEnricher) string { return e.GetDescription(t) })
}

func (c resourceChain) GetNotes(t reflect.Type) string {
	return firstOf(c, func(e ResourceEnricher) string { return e.GetNotes(t) })
}

type requestChain []RequestEnricher

func (c requestChain) GetCategory(op *apidoc.Operation) string {
	return firstOf(c, func(e RequestEnricher) string { return e.GetCategory(op) })
}

func (c requestChain) GetTags(op *apidoc.Operation) []string {
	return firstOf(c, func(e RequestEnricher) []string { return e.GetTags(op) })
}

func (c requestChain) GetSummary(op *apidoc.Operation) string {
	return firstOf(c, func(e RequestEnricher) string { return e.GetSummary(op) })
}

type actionChain []ActionEnricher

func (c actionChain) GetContentTypes(op *apidoc.Operation, verb string) []string {
	return firstOf(c, func(e ActionEnricher) []string { return e.GetContentTypes(op, verb) })
}

func (c actionChain) GetStatusCodes(op *apidoc.Operation, verb string) []apidoc.StatusCode {
	return firstOf(c, func(e ActionEnricher) []apidoc.StatusCode { return e.GetStatusCodes(op, verb) })
}

func (c actionChain) GetNotes(op *apidoc.Operation, verb string) string {
	return firstOf(c, func(e ActionEnricher) string { return e.GetNotes(op, verb) })
}

func (c actionChain) GetRelativePaths(op *apidoc.Operation, verb string) []string {
	return firstOf(c, func(e ActionEnricher) []string { return e.GetRelativePaths(op, verb) })
}

type propertyChain []PropertyEnricher

func (c propertyChain) GetTitle(m members.Member) string {
	return firstOf(c, func(e PropertyEnricher) string { return e.GetTitle(m) })
}

func (c propertyChain) GetDescription(m members.Member) string {
	return firstOf(c, func(e PropertyEnricher) string { return e.GetDescription(m) })
}

func (c propertyChain) GetNotes(m members.Member) string {
	return firstOf(c, func(e PropertyEnricher) string { return e.GetNotes(m) })
}

func (c propertyChain) GetParamType(m members.Member) string {
	return firstOf(c, func(e PropertyEnricher) string { return e.GetParamType(m) })
}

func (c propertyChain) GetConstraints(m members.Member) *apidoc.Constraint {
	return firstOf(c, func(e PropertyEnricher) *apidoc.Constraint { return e.GetConstraints(m) })
}

func (c propertyChain) GetIsRequired(m members.Member) *bool {
	return firstOf(c, func(e PropertyEnricher) *bool { return e.GetIsRequired(m) })
}

func (c propertyChain) GetAllowMultiple(m members.Member) *bool {
	return firstOf(c, func(e PropertyEnricher) *bool { return e.GetAllowMultiple(m) })
}

func (c propertyChain) GetExternalLinks(m members.Member) []string {
	return firstOf(c, func(e PropertyEnricher) []string { return e.GetExternalLinks(m) })
}
