package llm

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Anthropic is the Claude messages provider. PDF payloads are sent as
// base64 document blocks ahead of the prompt.
type Anthropic struct {
	client anthropic.Client
	apiKey string
	model  string
}

// NewAnthropic creates an Anthropic provider with the given API key and model.
func NewAnthropic(apiKey, model string) *Anthropic {
	return &Anthropic{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		apiKey: apiKey,
		model:  model,
	}
}

// Name returns "anthropic".
func (a *Anthropic) Name() string { return "anthropic" }

// Validate checks if the provider is properly configured.
func (a *Anthropic) Validate() error {
	if a.apiKey == "" {
		return fmt.Errorf("anthropic: API key not set")
	}
	if a.model == "" {
		return fmt.Errorf("anthropic: model not set")
	}
	return nil
}

// Generate sends the prompt (and document payload, if any) to the model.
// JSON mode is enforced by the prompt; the messages API has no response
// format switch.
func (a *Anthropic) Generate(ctx context.Context, req Request) (*Result, error) {
	req = req.withDefaults()

	var blocks []anthropic.ContentBlockParamUnion
	if len(req.Document) > 0 {
		blocks = append(blocks, anthropic.NewDocumentBlock(anthropic.Base64PDFSourceParam{
			Data: base64.StdEncoding.EncodeToString(req.Document),
		}))
	}
	blocks = append(blocks, anthropic.NewTextBlock(req.Prompt))

	msg, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(a.model),
		MaxTokens:   int64(req.MaxTokens),
		Temperature: anthropic.Float(req.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(blocks...),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic generate: %w", err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	return &Result{
		Text:  text.String(),
		Model: string(msg.Model),
		Usage: TokenUsage{
			InputTokens:  int(msg.Usage.InputTokens),
			OutputTokens: int(msg.Usage.OutputTokens),
			TotalTokens:  int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
		},
	}, nil
}
