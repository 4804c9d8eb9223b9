package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gaborage/introspec/apidoc"
	"github.com/gaborage/introspec/filter"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"

	stdStream = "-"
)

// filterFlags are the criteria shared by export and filter.
type filterFlags struct {
	DtoNames []string
	Tags     []string
	Category string
}

func (f *filterFlags) criteria() *filter.Criteria {
	return &filter.Criteria{DtoName: f.DtoNames, Category: f.Category, Tags: f.Tags}
}

// readDocumentation loads a documentation file, or stdin for "-". JSON is
// detected by a leading '{'; anything else is parsed as YAML.
func readDocumentation(path string, stdin io.Reader) (*apidoc.Documentation, error) {
	var (
		data []byte
		err  error
	)
	if path == stdStream {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	doc := &apidoc.Documentation{}
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		err = json.Unmarshal(trimmed, doc)
	} else {
		err = yaml.Unmarshal(data, doc)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse documentation %s: %w", path, err)
	}
	return doc, nil
}

func encode(v any, format string) ([]byte, error) {
	switch format {
	case formatYAML, "yml":
		return yaml.Marshal(v)
	case formatJSON:
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(out, '\n'), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: json, yaml)", format)
	}
}

// formatFor picks the output format: an explicit flag wins, then the output
// file extension, then JSON.
func formatFor(flag, output string) string {
	if flag != "" {
		return strings.ToLower(flag)
	}
	switch strings.ToLower(filepath.Ext(output)) {
	case ".yaml", ".yml":
		return formatYAML
	default:
		return formatJSON
	}
}

// writeOutput writes data to path, creating parent directories, or to stdout for "" and "-".
func writeOutput(path string, data []byte, stdout io.Writer) error {
	if path == "" || path == stdStream {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
