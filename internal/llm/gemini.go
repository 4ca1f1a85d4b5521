package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Gemini is the Google Gemini provider. It is the only provider used for
// full-paper imports by default since it accepts PDF payloads natively.
type Gemini struct {
	client *genai.Client
	apiKey string
	model  string
}

// NewGemini creates a Gemini provider with the given API key and model.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &Gemini{client: client, apiKey: apiKey, model: model}, nil
}

// Name returns "gemini".
func (g *Gemini) Name() string { return "gemini" }

// Validate checks if the provider is properly configured.
func (g *Gemini) Validate() error {
	if g.apiKey == "" {
		return fmt.Errorf("gemini: API key not set")
	}
	if g.model == "" {
		return fmt.Errorf("gemini: model not set")
	}
	return nil
}

// Generate sends the prompt (and document payload, if any) to the model.
func (g *Gemini) Generate(ctx context.Context, req Request) (*Result, error) {
	req = req.withDefaults()

	var parts []*genai.Part
	if len(req.Document) > 0 {
		parts = append(parts, genai.NewPartFromBytes(req.Document, req.DocumentMIMEType))
	}
	parts = append(parts, genai.NewPartFromText(req.Prompt))
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(req.MaxTokens),
		Temperature:     genai.Ptr(float32(req.Temperature)),
	}
	if req.JSON {
		cfg.ResponseMIMEType = "application/json"
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}

	result := &Result{Text: resp.Text(), Model: g.model}
	if resp.UsageMetadata != nil {
		result.Usage = TokenUsage{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:  int(resp.UsageMetadata.TotalTokenCount),
		}
	}
	return result, nil
}
