package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ollamaClient implements the Client interface for a local Ollama server.
type ollamaClient struct {
	httpClient *http.Client
	baseURL    string
	model      string
}

// newOllamaClient creates a client for Ollama's generate endpoint.
func newOllamaClient(cfg Config) (Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("Ollama base URL is required")
	}

	model := cfg.Model
	if model == "" {
		model = "llama3:8b"
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 120 * time.Second
	}

	return &ollamaClient{
		baseURL: cfg.BaseURL,
		model:   model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// ollamaResponse is the envelope Ollama returns; with format=json the inner
// response field is itself a JSON document encoded as a string.
type ollamaResponse struct {
	Response string `json:"response"`
}

// ExtractStructured sends the extraction prompt to the Ollama server.
func (c *ollamaClient) ExtractStructured(ctx context.Context, prompt string) (json.RawMessage, error) {
	payload := map[string]any{
		"model":  c.model,
		"format": "json",
		"prompt": prompt,
		"stream": false,
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Ollama server at %s: %w", c.baseURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Ollama API error (status %d): %s", resp.StatusCode, string(body))
	}

	var envelope ollamaResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse Ollama response: %w", err)
	}

	if !json.Valid([]byte(envelope.Response)) {
		return nil, fmt.Errorf("Ollama response is not valid JSON")
	}

	return json.RawMessage(envelope.Response), nil
}
