package enrich

import (
	"github.com/gaborage/introspec/apidoc"
)

// Defaults holds host-wide values used when no other layer documents an action.
type Defaults struct {
	ContentTypes []string
	StatusCodes  []apidoc.StatusCode
}

// FallbackLayer supplies host defaults. It only documents actions.
func FallbackLayer(d Defaults) Layer {
	return Layer{Name: "fallback", Action: fallbackActions(d)}
}

type fallbackActions Defaults

func (f fallbackActions) GetContentTypes(*apidoc.Operation, string) []string {
	return f.ContentTypes
}

func (f fallbackActions) GetStatusCodes(*apidoc.Operation, string) []apidoc.StatusCode {
	return f.StatusCodes
}

func (f fallbackActions) GetNotes(*apidoc.Operation, string) string { return "" }

func (f fallbackActions) GetRelativePaths(*apidoc.Operation, string) []string { return nil }
