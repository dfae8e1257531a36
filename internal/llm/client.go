package llm

import (
	"context"
	"encoding/json"
	"time"
)

// Client defines the interface for LLM providers. Providers return the raw
// structured JSON document; validation and conversion happen in the engine.
type Client interface {
	ExtractStructured(ctx context.Context, prompt string) (json.RawMessage, error)
}

// Config holds configuration for the LLM extraction engine.
// A nil Temperature means "use the provider default"; a pointer to 0 is an
// explicit request for greedy sampling.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	Timeout     time.Duration
	Temperature *float32
}
