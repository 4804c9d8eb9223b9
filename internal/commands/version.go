package commands

import (
	"io"
	"runtime"

	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command
func NewVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display version information for the introspec tool",
		Run: func(cmd *cobra.Command, _ []string) {
			printVersion(cmd.OutOrStdout(), version)
		},
	}
}

func printVersion(w io.Writer, version string) {
	_, _ = io.WriteString(w, "introspec version "+version+"\n")
	_, _ = io.WriteString(w, "Built with "+runtime.Version()+" "+runtime.GOOS+"/"+runtime.GOARCH+"\n")
	_, _ = io.WriteString(w, "Collection format: Postman v1\n")
}
