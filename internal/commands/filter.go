package commands

import (
	"github.com/spf13/cobra"

	"github.com/gaborage/introspec/filter"
)

// FilterOptions holds options for the filter command
type FilterOptions struct {
	Input  string
	Output string
	Format string
	Filter filterFlags
}

// NewFilterCommand creates the filter command
func NewFilterCommand() *cobra.Command {
	opts := &FilterOptions{}

	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Reduce documentation to matching resources",
		Long: `Keeps the resources whose title is one of --dto-name, whose category equals
--category and that carry one of --tag. Criteria that are not given match everything.`,
		Example: `  introspec filter -i docs.json --category billing --format yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFilter(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Documentation file (- for stdin)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Output file (stdout when empty)")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format (json|yaml), from the output extension when empty")
	addFilterFlags(cmd, &opts.Filter)
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func runFilter(cmd *cobra.Command, opts *FilterOptions) error {
	doc, err := readDocumentation(opts.Input, cmd.InOrStdin())
	if err != nil {
		return err
	}

	doc, err = filter.Apply(opts.Filter.criteria(), doc)
	if err != nil {
		return err
	}

	out, err := encode(doc, formatFor(opts.Format, opts.Output))
	if err != nil {
		return err
	}
	return writeOutput(opts.Output, out, cmd.OutOrStdout())
}
