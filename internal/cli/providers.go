package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

type providerInfo struct {
	Name         string
	DefaultModel string
	EnvKey       string
	Description  string
}

var providers = []providerInfo{
	{
		Name:         "gemini",
		DefaultModel: "gemini-2.5-flash",
		EnvKey:       "GOOGLE_API_KEY",
		Description:  "Google Gemini API",
	},
	{
		Name:         "openai",
		DefaultModel: "gpt-4o",
		EnvKey:       "OPENAI_API_KEY",
		Description:  "OpenAI GPT API",
	},
	{
		Name:         "anthropic",
		DefaultModel: "claude-sonnet-4-20250514",
		EnvKey:       "ANTHROPIC_API_KEY",
		Description:  "Anthropic Claude API",
	},
}

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List available model providers",
	Long: `List the model providers that can read a PDF and produce tagged markdown.

Each provider needs its API key set in the environment variable shown.

Examples:
  lumimport import 2301.00001 --provider gemini
  lumimport import 2301.00001 --provider openai --model gpt-4o`,
	Run: runProviders,
}

func init() {
	rootCmd.AddCommand(providersCmd)
}

func runProviders(cmd *cobra.Command, args []string) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "PROVIDER\tDEFAULT MODEL\tENV VAR\tSTATUS\tDESCRIPTION")
	fmt.Fprintln(w, "--------\t-------------\t-------\t------\t-----------")

	for _, p := range providers {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			p.Name, p.DefaultModel, p.EnvKey, checkProviderStatus(p), p.Description)
	}
}

func checkProviderStatus(p providerInfo) string {
	if os.Getenv(p.EnvKey) != "" {
		return "✓ configured"
	}
	return "✗ missing"
}
