// Package llm provides the model provider interface used by the import
// pipeline for paper extraction and concept annotation calls.
package llm

import (
	"context"
)

// Provider is the interface that all model providers implement.
type Provider interface {
	// Name returns the provider identifier (e.g., "gemini", "anthropic").
	Name() string

	// Generate sends one request to the model and returns its text output.
	Generate(ctx context.Context, req Request) (*Result, error)

	// Validate checks if the provider is properly configured.
	Validate() error
}

// Request describes a single model call.
type Request struct {
	// Prompt is the full instruction text.
	Prompt string `json:"prompt"`
	// Document is an optional raw document payload (PDF bytes) sent
	// alongside the prompt. Providers without document support reject
	// requests carrying one.
	Document []byte `json:"-"`
	// DocumentMIMEType identifies the payload, default application/pdf.
	DocumentMIMEType string `json:"document_mime_type,omitempty"`
	// JSON requests a strict-JSON response for schema-constrained calls.
	JSON bool `json:"json,omitempty"`

	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

// Result contains one model response.
type Result struct {
	Text  string     `json:"text"`
	Usage TokenUsage `json:"usage"`
	Model string     `json:"model"`
}

// TokenUsage contains token usage statistics.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

const (
	defaultMaxTokens = 64000
	defaultMIMEType  = "application/pdf"
)

// withDefaults fills unset request fields.
func (r Request) withDefaults() Request {
	if r.MaxTokens == 0 {
		r.MaxTokens = defaultMaxTokens
	}
	if r.DocumentMIMEType == "" {
		r.DocumentMIMEType = defaultMIMEType
	}
	return r
}
