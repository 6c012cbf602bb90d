package advisor

import (
	"strings"
	"time"
)

// Provider names a text generation backend. It doubles as the Advice source.
type Provider string

const (
	ProviderOllama Provider = "ollama"
	ProviderGemini Provider = "gemini"
)

// Defaults for the local Ollama backend.
const (
	DefaultOllamaModel    = "llama3.1"
	DefaultOllamaEndpoint = "http://127.0.0.1:11434/api/generate"
	DefaultGeminiModel    = "gemini-1.5-flash"
	DefaultTimeout        = 60 * time.Second
)

// Config selects and configures the generator. It is passed in explicitly;
// nothing in this package reads the environment.
type Config struct {
	Provider Provider
	Model    string
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

// DefaultConfig returns the local Ollama configuration.
func DefaultConfig() Config {
	return Config{
		Provider: ProviderOllama,
		Model:    DefaultOllamaModel,
		Endpoint: DefaultOllamaEndpoint,
		Timeout:  DefaultTimeout,
	}
}

// WithDefaults fills empty fields for the configured provider.
func (c Config) WithDefaults() Config {
	c.Provider = Provider(strings.ToLower(strings.TrimSpace(string(c.Provider))))
	if c.Provider == "" {
		c.Provider = ProviderOllama
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	switch c.Provider {
	case ProviderGemini:
		if c.Model == "" {
			c.Model = DefaultGeminiModel
		}
	default:
		if c.Model == "" {
			c.Model = DefaultOllamaModel
		}
		if c.Endpoint == "" {
			c.Endpoint = DefaultOllamaEndpoint
		}
	}
	return c
}
