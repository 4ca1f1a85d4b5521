package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lumitools/lumimport/internal/latex"
)

var (
	expandOutput       string
	expandKeepComments bool
	expandNoMacros     bool
	expandVerbose      bool
)

var expandCmd = &cobra.Command{
	Use:   "expand <file>",
	Short: "Flatten a latex project into a single file",
	Long: `Expand inlines \input and \include directives so the whole latex
project becomes one document.

The argument is either the main .tex file of an unpacked project or a
source tarball (.tar.gz) as downloaded from arxiv; tarballs are unpacked
to a temporary directory and the main file is located automatically.

Examples:
  lumimport expand paper/main.tex -o flat.tex
  lumimport expand 2301.00001.tar.gz`,
	Args: cobra.ExactArgs(1),
	RunE: runExpand,
}

func init() {
	expandCmd.Flags().StringVarP(&expandOutput, "output", "o", "", "output file path (default: stdout)")
	expandCmd.Flags().BoolVar(&expandKeepComments, "keep-comments", false, "keep latex comments")
	expandCmd.Flags().BoolVar(&expandNoMacros, "no-macros", false, "do not expand \\newcommand macros")
	expandCmd.Flags().BoolVarP(&expandVerbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(expandCmd)
}

func runExpand(cmd *cobra.Command, args []string) error {
	path := args[0]

	logger, err := buildLogger(expandVerbose)
	if err != nil {
		return err
	}
	defer logger.Sync()

	mainFile := path
	if isTarball(path) {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read tarball: %w", err)
		}
		tmpDir, err := os.MkdirTemp("", "lumimport-expand-*")
		if err != nil {
			return err
		}
		defer os.RemoveAll(tmpDir)

		if err := latex.ExtractTarGz(data, tmpDir); err != nil {
			return fmt.Errorf("extract tarball: %w", err)
		}
		mainFile, err = latex.FindMainTexFile(tmpDir)
		if err != nil {
			return err
		}
	}

	flat, err := latex.InlineTexFiles(mainFile, latex.InlineOptions{
		RemoveComments: !expandKeepComments,
		InlineCommands: !expandNoMacros,
		Logger:         logger,
	})
	if err != nil {
		return err
	}

	if expandOutput == "" {
		fmt.Fprint(cmd.OutOrStdout(), flat)
		return nil
	}
	if err := os.WriteFile(expandOutput, []byte(flat), 0644); err != nil {
		return fmt.Errorf("write output file: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", expandOutput)
	return nil
}

func isTarball(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".tar.gz") || strings.HasSuffix(lower, ".tgz") || strings.HasSuffix(lower, ".gz")
}
