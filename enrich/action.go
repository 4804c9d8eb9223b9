package enrich

import (
	"strconv"

	"github.com/gaborage/introspec/apidoc"
	"github.com/gaborage/introspec/typespec"
)

// ActionEngine resolves per-verb documentation from the type spec registered for an
// operation's request type. Without a spec every lookup returns nil. Collections
// return the global values first, then the verb-specific ones; notes for a verb
// replace the global notes.
type ActionEngine struct {
	specs *typespec.Registry
}

var _ ActionEnricher = (*ActionEngine)(nil)

// NewActionEngine creates an action enricher backed by specs.
func NewActionEngine(specs *typespec.Registry) *ActionEngine {
	return &ActionEngine{specs: specs}
}

func (a *ActionEngine) lookup(op *apidoc.Operation) (*typespec.Spec, bool) {
	if op == nil {
		return nil, false
	}
	return a.specs.Lookup(op.RequestType)
}

// GetContentTypes returns global and verb-specific content types.
func (a *ActionEngine) GetContentTypes(op *apidoc.Operation, verb string) []string {
	spec, ok := a.lookup(op)
	if !ok {
		return nil
	}
	return spec.ContentTypes.Resolve(verb, identity)
}

// GetStatusCodes returns global and verb-specific status codes, unique by code.
func (a *ActionEngine) GetStatusCodes(op *apidoc.Operation, verb string) []apidoc.StatusCode {
	spec, ok := a.lookup(op)
	if !ok {
		return nil
	}
	return spec.StatusCodes.Resolve(verb, statusKey)
}

// GetNotes returns the verb notes, or the global notes when the verb has none.
func (a *ActionEngine) GetNotes(op *apidoc.Operation, verb string) string {
	spec, ok := a.lookup(op)
	if !ok {
		return ""
	}
	return spec.NotesFor(verb)
}

// GetRelativePaths returns global and verb-specific route templates.
func (a *ActionEngine) GetRelativePaths(op *apidoc.Operation, verb string) []string {
	spec, ok := a.lookup(op)
	if !ok {
		return nil
	}
	return spec.RelativePaths.Resolve(verb, identity)
}

func identity(s string) string { return s }

func statusKey(c apidoc.StatusCode) string { return strconv.Itoa(c.Code) }
