package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lumitools/lumimport/internal/concepts"
	"github.com/lumitools/lumimport/internal/doc"
	"github.com/lumitools/lumimport/internal/llm"
	"github.com/lumitools/lumimport/internal/tags"
)

// ErrNoProvider is returned by the generating entry points of a Pipeline
// constructed without a provider.
var ErrNoProvider = errors.New("pipeline: no llm provider configured")

// GenerateTaggedMarkdown asks the provider to render the paper as tagged
// markdown. The latex source, when present, is sent between the document
// payload and the instructions. A response that opens a references section
// without closing it is repaired, since generation stops on the closing
// token.
func (p *Pipeline) GenerateTaggedMarkdown(ctx context.Context, pdf []byte, latexSource string) (string, error) {
	if p.provider == nil {
		return "", ErrNoProvider
	}

	prompt := ImportPrompt
	if latexSource != "" {
		prompt = latexSource + "\n\n" + ImportPrompt
	}

	start := time.Now()
	res, err := p.provider.Generate(ctx, llm.Request{
		Prompt:      prompt,
		Document:    pdf,
		MaxTokens:   p.maxTokens,
		Temperature: p.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("generate tagged markdown: %w", err)
	}
	p.log.Info("generated tagged markdown",
		zap.String("provider", p.provider.Name()),
		zap.Duration("took", time.Since(start)),
		zap.Int("output_tokens", res.Usage.OutputTokens))

	text := res.Text
	if text == "" {
		return "", errors.New("generate tagged markdown: empty response")
	}
	if strings.Contains(text, tags.ReferencesStart) && !strings.Contains(text, tags.ReferencesEnd) {
		text += tags.ReferencesEnd
	}
	return text, nil
}

// ExtractConcepts asks the provider for the key concepts of an abstract.
// The response is requested as strict JSON and decoded into concepts with
// stable positional ids.
func (p *Pipeline) ExtractConcepts(ctx context.Context, abstract string) ([]doc.Concept, error) {
	if p.provider == nil {
		return nil, ErrNoProvider
	}

	res, err := p.provider.Generate(ctx, llm.Request{
		Prompt:      ConceptExtractionPrompt + "\n\nHere is the abstract: " + abstract,
		JSON:        true,
		Temperature: p.temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("extract concepts: %w", err)
	}

	var resp concepts.Response
	if err := json.Unmarshal([]byte(res.Text), &resp); err != nil {
		return nil, fmt.Errorf("extract concepts: decode response: %w", err)
	}
	p.log.Info("extracted concepts", zap.Int("count", len(resp.Concepts)))
	return concepts.FromResponse(&resp), nil
}

// Import runs the full flow for one paper: tagged markdown generation from
// the pdf and latex source, then conversion into the document tree.
func (p *Pipeline) Import(ctx context.Context, pdf []byte, latexSource, fileID string, cs []doc.Concept) (*doc.Doc, error) {
	modelOutput, err := p.GenerateTaggedMarkdown(ctx, pdf, latexSource)
	if err != nil {
		return nil, err
	}
	return p.ConvertModelOutput(modelOutput, cs, fileID)
}
