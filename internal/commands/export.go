package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gaborage/introspec/config"
	"github.com/gaborage/introspec/filter"
	"github.com/gaborage/introspec/postman"
)

// ExportOptions holds options for the export command
type ExportOptions struct {
	Input        string
	Output       string
	BaseURL      string
	Placeholders string
	Seed         uint64
	Filter       filterFlags
}

// NewExportCommand creates the export command
func NewExportCommand() *cobra.Command {
	opts := &ExportOptions{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export documentation as a Postman collection",
		Long: `Reads a documentation file (JSON or YAML) and writes a Postman v1 collection
with one request per resource and verb.`,
		Example: `  # Export everything
  introspec export --input docs.json --output collection.json

  # Export only order resources with realistic placeholder values
  introspec export -i docs.yaml --tag orders --placeholders fake`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Documentation file (- for stdin)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Collection file (stdout when empty)")
	cmd.Flags().StringVar(&opts.BaseURL, "base-url", "", "Override the documented base URL")
	cmd.Flags().StringVar(&opts.Placeholders, "placeholders", config.PlaceholdersSequential, "Placeholder values (sequential|fake)")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "Seed for fake placeholders (0 for random)")
	addFilterFlags(cmd, &opts.Filter)
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func addFilterFlags(cmd *cobra.Command, f *filterFlags) {
	cmd.Flags().StringSliceVar(&f.DtoNames, "dto-name", nil, "Keep resources with these titles")
	cmd.Flags().StringSliceVar(&f.Tags, "tag", nil, "Keep resources carrying any of these tags")
	cmd.Flags().StringVar(&f.Category, "category", "", "Keep resources in this category")
}

func runExport(cmd *cobra.Command, opts *ExportOptions) error {
	values, err := valueStrategy(opts.Placeholders, opts.Seed)
	if err != nil {
		return err
	}

	doc, err := readDocumentation(opts.Input, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if opts.BaseURL != "" {
		doc.BaseURL = opts.BaseURL
	}

	doc, err = filter.Apply(opts.Filter.criteria(), doc)
	if err != nil {
		return err
	}

	collection, err := postman.NewGenerator(postman.WithValues(values)).Generate(doc)
	if err != nil {
		return err
	}

	out, err := encode(collection, formatJSON)
	if err != nil {
		return err
	}
	if err := writeOutput(opts.Output, out, cmd.OutOrStdout()); err != nil {
		return err
	}
	if opts.Output != "" && opts.Output != stdStream {
		cmd.PrintErrf("Exported %d requests to %s\n", len(collection.Requests), opts.Output)
	}
	return nil
}

func valueStrategy(name string, seed uint64) (postman.ValueStrategy, error) {
	switch name {
	case "", config.PlaceholdersSequential:
		return postman.SequentialValues(), nil
	case config.PlaceholdersFake:
		return postman.FakeValues(seed), nil
	default:
		return nil, fmt.Errorf("unsupported placeholders: %s (supported: %s, %s)",
			name, config.PlaceholdersSequential, config.PlaceholdersFake)
	}
}
