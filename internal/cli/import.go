package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/lumitools/lumimport/internal/config"
	"github.com/lumitools/lumimport/internal/doc"
	"github.com/lumitools/lumimport/internal/fetch"
	"github.com/lumitools/lumimport/internal/latex"
	"github.com/lumitools/lumimport/internal/llm"
	"github.com/lumitools/lumimport/internal/pipeline"
)

var (
	importOutput       string
	importProvider     string
	importModel        string
	importPaperVersion string
	importFromOutput   string
	importSkipLicense  bool
	importNoConcepts   bool
	importPretty       bool
	importVerbose      bool
)

var importCmd = &cobra.Command{
	Use:   "import <arxiv-id>",
	Short: "Import an arxiv paper as a LumiDoc",
	Long: `Import fetches a paper from arxiv, extracts it into tagged markdown
with the configured model, and converts the output into LumiDoc JSON.

The paper must carry a redistributable license; papers under the arxiv
non-exclusive license are rejected.

With --from-output, an existing tagged model output file is converted
directly and no network or model calls are made.

Examples:
  lumimport import 2301.00001
  lumimport import 2301.00001 -o paper.json --provider gemini
  lumimport import 2301.00001 --from-output model_output.md`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVarP(&importOutput, "output", "o", "", "output file path (default: stdout)")
	importCmd.Flags().StringVar(&importProvider, "provider", "", "model provider (gemini, openai, anthropic)")
	importCmd.Flags().StringVar(&importModel, "model", "", "model name")
	importCmd.Flags().StringVar(&importPaperVersion, "paper-version", "", "paper version (default: latest from metadata)")
	importCmd.Flags().StringVar(&importFromOutput, "from-output", "", "convert an existing tagged model output file")
	importCmd.Flags().BoolVar(&importSkipLicense, "skip-license-check", false, "skip the license check")
	importCmd.Flags().BoolVar(&importNoConcepts, "no-concepts", false, "skip concept extraction")
	importCmd.Flags().BoolVar(&importPretty, "pretty", true, "indent the JSON output")
	importCmd.Flags().BoolVarP(&importVerbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	arxivID := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger, err := buildLogger(importVerbose)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if importFromOutput != "" {
		data, err := os.ReadFile(importFromOutput)
		if err != nil {
			return fmt.Errorf("read model output: %w", err)
		}
		p := pipeline.New(nil, logger, nil)
		d, err := p.ConvertModelOutput(string(data), nil, arxivID)
		if err != nil {
			return err
		}
		return writeDoc(cmd, d)
	}

	loader, err := config.NewLoader()
	if err != nil {
		return fmt.Errorf("init config loader: %w", err)
	}
	cfg, err := loader.Load()
	if err != nil {
		return err
	}

	provider, maxTokens, err := buildProvider(ctx, cfg, logger)
	if err != nil {
		return err
	}

	client := fetch.New(fetch.Config{Logger: logger})

	if !importSkipLicense {
		if err := client.CheckLicense(ctx, arxivID); err != nil {
			return err
		}
	}

	var meta *doc.Metadata
	metas, err := client.FetchMetadata(ctx, []string{arxivID})
	if err != nil {
		return err
	}
	if len(metas) > 0 {
		meta = &metas[0]
	}

	paperVersion := importPaperVersion
	if paperVersion == "" && meta != nil {
		paperVersion = meta.Version
	}
	if paperVersion == "" {
		paperVersion = "1"
	}

	pdf, err := client.FetchPDF(ctx, arxivID, paperVersion)
	if err != nil {
		return err
	}
	srcTar, err := client.FetchLatexSource(ctx, arxivID, paperVersion)
	if err != nil {
		return err
	}

	latexSource, err := flattenLatexSource(srcTar, cfg.Import.MaxLatexChars, logger)
	if err != nil {
		return err
	}

	p := pipeline.New(provider, logger, nil)
	p.SetTemperature(cfg.Import.Temperature)
	p.SetMaxTokens(maxTokens)

	var cs []doc.Concept
	if !importNoConcepts && meta != nil && meta.Summary != "" {
		cs, err = p.ExtractConcepts(ctx, meta.Summary)
		if err != nil {
			// Concepts enrich the document but do not gate the import.
			logger.Warn("concept extraction failed", zap.Error(err))
		}
	}

	d, err := p.Import(ctx, pdf, latexSource, arxivID, cs)
	if err != nil {
		return err
	}
	d.Metadata = meta

	return writeDoc(cmd, d)
}

// flattenLatexSource unpacks the source tarball and inlines the project
// into one string.
func flattenLatexSource(srcTar []byte, maxChars int, logger *zap.Logger) (string, error) {
	tmpDir, err := os.MkdirTemp("", "lumimport-src-*")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(tmpDir)

	if err := latex.ExtractTarGz(srcTar, tmpDir); err != nil {
		return "", fmt.Errorf("extract latex source: %w", err)
	}
	mainFile, err := latex.FindMainTexFile(tmpDir)
	if err != nil {
		return "", err
	}
	latexSource, err := latex.InlineTexFiles(mainFile, latex.InlineOptions{
		RemoveComments: true,
		InlineCommands: true,
		Logger:         logger,
	})
	if err != nil {
		return "", err
	}
	if maxChars > 0 && len(latexSource) > maxChars {
		return "", fmt.Errorf("latex source too long: %d chars (limit %d)", len(latexSource), maxChars)
	}
	return latexSource, nil
}

func buildProvider(ctx context.Context, cfg *config.Config, logger *zap.Logger) (llm.Provider, int, error) {
	name := importProvider
	if name == "" && importModel != "" {
		name = detectProviderFromModel(importModel)
	}
	if name == "" {
		name = cfg.DefaultProvider
	}

	pc, ok := cfg.GetProvider(name)
	if !ok {
		return nil, 0, fmt.Errorf("provider %q is not configured", name)
	}
	model := importModel
	if model == "" {
		model = pc.Model
	}

	var inner llm.Provider
	switch name {
	case "gemini":
		g, err := llm.NewGemini(ctx, pc.APIKey, model)
		if err != nil {
			return nil, 0, err
		}
		inner = g
	case "openai":
		inner = llm.NewOpenAI(pc.APIKey, model)
	case "anthropic":
		inner = llm.NewAnthropic(pc.APIKey, model)
	default:
		return nil, 0, fmt.Errorf("unsupported provider: %s", name)
	}

	if err := inner.Validate(); err != nil {
		return nil, 0, err
	}

	if n := cfg.Import.CallsPerMinute; n > 0 {
		return llm.WithRateLimitAt(inner, rate.Every(time.Minute/time.Duration(n)), n, logger), pc.MaxTokens, nil
	}
	return llm.WithRateLimit(inner, logger), pc.MaxTokens, nil
}

// detectProviderFromModel maps a model name to its provider, returning ""
// for unrecognized names.
func detectProviderFromModel(model string) string {
	m := strings.ToLower(model)
	switch {
	case strings.HasPrefix(m, "claude"):
		return "anthropic"
	case strings.HasPrefix(m, "gpt"), strings.HasPrefix(m, "o1"), strings.HasPrefix(m, "o3"):
		return "openai"
	case strings.HasPrefix(m, "gemini"):
		return "gemini"
	}
	return ""
}

func buildLogger(verbose bool) (*zap.Logger, error) {
	if !verbose {
		return zap.NewNop(), nil
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return logger, nil
}

func writeDoc(cmd *cobra.Command, d *doc.Doc) error {
	var data []byte
	var err error
	if importPretty {
		data, err = json.MarshalIndent(d, "", "  ")
	} else {
		data, err = json.Marshal(d)
	}
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	if importOutput == "" {
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}
	if err := os.WriteFile(importOutput, data, 0644); err != nil {
		return fmt.Errorf("write output file: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", importOutput)
	return nil
}
