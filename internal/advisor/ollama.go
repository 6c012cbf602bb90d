package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Ollama calls a local Ollama /api/generate endpoint.
type Ollama struct {
	model      string
	endpoint   string
	httpClient *http.Client
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaResponse struct {
	Response string `json:"response"`
	Error    string `json:"error"`
}

// NewOllama returns an Ollama generator.
func NewOllama(cfg Config) *Ollama {
	cfg = cfg.WithDefaults()
	return &Ollama{
		model:    cfg.Model,
		endpoint: cfg.Endpoint,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Name implements Generator.
func (o *Ollama) Name() string { return string(ProviderOllama) }

// Generate implements Generator with a single non-streaming request.
func (o *Ollama) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(ollamaRequest{Model: o.model, Prompt: prompt, Stream: false})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama request: %w", err)
	}
	defer resp.Body.Close()

	var payload ollamaResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&payload)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if payload.Error != "" {
			return "", fmt.Errorf("ollama: %s", payload.Error)
		}
		return "", fmt.Errorf("ollama request failed: %d", resp.StatusCode)
	}
	if decodeErr != nil {
		return "", fmt.Errorf("ollama response: %w", decodeErr)
	}

	text := strings.TrimSpace(payload.Response)
	if text == "" {
		return "", errEmptyResponse
	}
	return text, nil
}
