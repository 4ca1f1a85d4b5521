package cli

import (
	"os"
	"testing"
)

func TestSetVersion(t *testing.T) {
	oldVersion := version
	defer func() { version = oldVersion }()

	SetVersion("1.2.3")
	if version != "1.2.3" {
		t.Errorf("expected version '1.2.3', got '%s'", version)
	}
}

func TestRootCommand(t *testing.T) {
	// Test that root command exists and has expected properties
	if rootCmd.Use != "lumimport" {
		t.Errorf("expected Use 'lumimport', got '%s'", rootCmd.Use)
	}

	if rootCmd.Short == "" {
		t.Error("expected Short description to be set")
	}
}

func TestVersionCommand(t *testing.T) {
	if versionCmd.Use != "version" {
		t.Errorf("expected Use 'version', got '%s'", versionCmd.Use)
	}

	if versionCmd.Short == "" {
		t.Error("expected Short description to be set")
	}
}

func TestProvidersCommand(t *testing.T) {
	if providersCmd.Use != "providers" {
		t.Errorf("expected Use 'providers', got '%s'", providersCmd.Use)
	}

	if providersCmd.Short == "" {
		t.Error("expected Short description to be set")
	}
}

func TestCheckProviderStatus(t *testing.T) {
	tests := []struct {
		name     string
		provider providerInfo
		envKey   string
		envValue string
		expected string
	}{
		{
			name: "anthropic with key",
			provider: providerInfo{
				Name:   "anthropic",
				EnvKey: "ANTHROPIC_API_KEY",
			},
			envKey:   "ANTHROPIC_API_KEY",
			envValue: "test-key",
			expected: "✓ configured",
		},
		{
			name: "openai without key",
			provider: providerInfo{
				Name:   "openai",
				EnvKey: "OPENAI_API_KEY",
			},
			envKey:   "OPENAI_API_KEY",
			envValue: "",
			expected: "✗ missing",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envKey != "" {
				oldVal := os.Getenv(tc.envKey)
				os.Setenv(tc.envKey, tc.envValue)
				defer os.Setenv(tc.envKey, oldVal)
			}

			result := checkProviderStatus(tc.provider)
			if result != tc.expected {
				t.Errorf("expected '%s', got '%s'", tc.expected, result)
			}
		})
	}
}

func TestImportCommandFlags(t *testing.T) {
	if importCmd.Use != "import <arxiv-id>" {
		t.Errorf("expected Use 'import <arxiv-id>', got '%s'", importCmd.Use)
	}

	// Check flags exist
	flags := []string{"output", "provider", "model", "paper-version", "from-output", "skip-license-check", "no-concepts", "pretty", "verbose"}
	for _, flag := range flags {
		if importCmd.Flags().Lookup(flag) == nil {
			t.Errorf("expected flag '%s' to exist", flag)
		}
	}
}

func TestExpandCommandFlags(t *testing.T) {
	if expandCmd.Use != "expand <file>" {
		t.Errorf("expected Use 'expand <file>', got '%s'", expandCmd.Use)
	}

	// Check flags exist
	flags := []string{"output", "keep-comments", "no-macros", "verbose"}
	for _, flag := range flags {
		if expandCmd.Flags().Lookup(flag) == nil {
			t.Errorf("expected flag '%s' to exist", flag)
		}
	}
}

func TestConfigCommand(t *testing.T) {
	if configCmd.Use != "config" {
		t.Errorf("expected Use 'config', got '%s'", configCmd.Use)
	}

	// Check subcommands exist
	subcommands := []string{"show", "init", "set", "path"}
	for _, name := range subcommands {
		found := false
		for _, cmd := range configCmd.Commands() {
			if cmd.Use == name || cmd.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected subcommand '%s' to exist", name)
		}
	}
}

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"short", "****"},
		{"12345678", "****"},
		{"sk-abcd1234efgh5678", "sk-a****5678"},
		{"AIzaSyD1234567890abcdefghijklmnop", "AIza****mnop"},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			result := maskAPIKey(tc.input)
			if result != tc.expected {
				t.Errorf("maskAPIKey(%q) = %q, want %q", tc.input, result, tc.expected)
			}
		})
	}
}

func TestContains(t *testing.T) {
	slice := []string{"a", "b", "c"}

	if !contains(slice, "a") {
		t.Error("expected contains(slice, 'a') to be true")
	}

	if !contains(slice, "c") {
		t.Error("expected contains(slice, 'c') to be true")
	}

	if contains(slice, "d") {
		t.Error("expected contains(slice, 'd') to be false")
	}

	if contains([]string{}, "a") {
		t.Error("expected contains(empty, 'a') to be false")
	}
}

func TestDetectProviderFromModel(t *testing.T) {
	tests := []struct {
		model    string
		expected string
	}{
		// Unknown models fall back to the configured default
		{"", ""},
		{"llama3.2", ""},
		{"custom-model", ""},

		// Anthropic models
		{"claude-3-opus", "anthropic"},
		{"claude-sonnet-4-20250514", "anthropic"},
		{"Claude-3-Haiku", "anthropic"},

		// OpenAI models
		{"gpt-4o", "openai"},
		{"gpt-4o-mini", "openai"},
		{"GPT-4-turbo", "openai"},
		{"o1-preview", "openai"},
		{"o3-mini", "openai"},

		// Google Gemini models
		{"gemini-2.5-flash", "gemini"},
		{"gemini-1.5-pro", "gemini"},
		{"Gemini-2.0-flash", "gemini"},
	}

	for _, tc := range tests {
		t.Run(tc.model, func(t *testing.T) {
			result := detectProviderFromModel(tc.model)
			if result != tc.expected {
				t.Errorf("detectProviderFromModel(%q) = %q, want %q", tc.model, result, tc.expected)
			}
		})
	}
}
