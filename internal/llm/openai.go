package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAI is the OpenAI chat-completions provider. It handles text-only
// calls such as concept extraction; it does not accept document payloads.
type OpenAI struct {
	client *openai.Client
	apiKey string
	model  string
}

// NewOpenAI creates an OpenAI provider with the given API key and model.
func NewOpenAI(apiKey, model string) *OpenAI {
	return &OpenAI{
		client: openai.NewClient(apiKey),
		apiKey: apiKey,
		model:  model,
	}
}

// Name returns "openai".
func (o *OpenAI) Name() string { return "openai" }

// Validate checks if the provider is properly configured.
func (o *OpenAI) Validate() error {
	if o.apiKey == "" {
		return fmt.Errorf("openai: API key not set")
	}
	if o.model == "" {
		return fmt.Errorf("openai: model not set")
	}
	return nil
}

// Generate sends the prompt to the model.
func (o *OpenAI) Generate(ctx context.Context, req Request) (*Result, error) {
	if len(req.Document) > 0 {
		return nil, fmt.Errorf("openai: document payloads are not supported")
	}
	req = req.withDefaults()

	chatReq := openai.ChatCompletionRequest{
		Model:       o.model,
		MaxTokens:   req.MaxTokens,
		Temperature: float32(req.Temperature),
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
	}
	if req.JSON {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := o.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, fmt.Errorf("openai generate: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai generate: empty response")
	}

	return &Result{
		Text:  resp.Choices[0].Message.Content,
		Model: resp.Model,
		Usage: TokenUsage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
	}, nil
}
