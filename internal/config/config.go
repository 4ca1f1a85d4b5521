// Package config manages application configuration.
package config

// Config represents the application configuration.
type Config struct {
	DefaultProvider string              `yaml:"default_provider"`
	Providers       map[string]Provider `yaml:"providers"`
	Import          ImportConfig        `yaml:"import"`
}

// Provider represents an LLM provider configuration.
type Provider struct {
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"`
}

// ImportConfig contains paper import options.
type ImportConfig struct {
	// Temperature for the extraction calls. Imports want determinism.
	Temperature float64 `yaml:"temperature"`
	// CallsPerMinute caps model calls across one process.
	CallsPerMinute int `yaml:"calls_per_minute"`
	// MaxLatexChars rejects papers whose inlined latex source exceeds the
	// model context budget.
	MaxLatexChars int `yaml:"max_latex_chars"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		DefaultProvider: "gemini",
		Providers: map[string]Provider{
			"gemini": {
				APIKey:    "${GOOGLE_API_KEY}",
				Model:     "gemini-2.5-flash",
				MaxTokens: 64000,
			},
			"openai": {
				APIKey:    "${OPENAI_API_KEY}",
				Model:     "gpt-4o",
				MaxTokens: 16384,
			},
			"anthropic": {
				APIKey:    "${ANTHROPIC_API_KEY}",
				Model:     "claude-sonnet-4-20250514",
				MaxTokens: 64000,
			},
		},
		Import: ImportConfig{
			Temperature:    0,
			CallsPerMinute: 5,
			MaxLatexChars:  500000,
		},
	}
}

// GetProvider returns the provider configuration by name.
func (c *Config) GetProvider(name string) (*Provider, bool) {
	p, ok := c.Providers[name]
	if !ok {
		return nil, false
	}
	return &p, true
}

// GetDefaultProvider returns the default provider configuration.
func (c *Config) GetDefaultProvider() (*Provider, bool) {
	return c.GetProvider(c.DefaultProvider)
}
