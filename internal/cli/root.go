// Package cli implements the lumimport command line interface.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var version = "dev"

// SetVersion sets the version string reported by the version command.
func SetVersion(v string) {
	version = v
}

var rootCmd = &cobra.Command{
	Use:   "lumimport",
	Short: "Import arxiv papers into structured LumiDoc JSON",
	Long: `lumimport converts academic papers into LumiDoc documents: a section
tree with sentence-level spans carrying positioned annotations for
citations, footnotes, concepts, figures, and math.

The import command fetches a paper from arxiv, asks a model to extract
it as tagged markdown, and converts the output. Already-generated model
output can be converted directly with --from-output.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the lumimport version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "lumimport %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
