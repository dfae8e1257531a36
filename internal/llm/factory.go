package llm

import (
	"fmt"
	"strings"

	"github.com/trippynix/inquiry-emails-ai-workflow/internal/common"
)

// newClient creates a raw LLM client based on the provided configuration.
func newClient(cfg Config) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return newOpenAIClient(cfg)
	case "ollama":
		return newOllamaClient(cfg)
	default:
		return nil, fmt.Errorf("%w: %s", common.ErrUnsupportedProvider, cfg.Provider)
	}
}
