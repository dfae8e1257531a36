// Package llm implements the alternative extraction engine that delegates
// item/quantity extraction to a remote text-generation model. Its output is
// validated against the same data model the fuzzy extractor produces, so the
// quote calculator is indifferent to which engine ran.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/trippynix/inquiry-emails-ai-workflow/internal/common"
	"github.com/trippynix/inquiry-emails-ai-workflow/internal/model"
)

// structuredOutput is the document the model is asked to produce.
type structuredOutput struct {
	SenderName                *string               `json:"sender_name"`
	SenderEmail               string                `json:"sender_email"`
	Subject                   string                `json:"subject"`
	ExtractedItems            []model.ExtractedItem `json:"extracted_items"`
	GapsIdentified            []model.Gap           `json:"gaps_identified"`
	DraftedAcknowledgmentBody string                `json:"drafted_acknowledgment_body"`
}

// requiredKeys must all be present in the model's response; their absence
// means the model ignored the schema.
var requiredKeys = []string{
	"sender_email",
	"extracted_items",
	"gaps_identified",
	"drafted_acknowledgment_body",
}

// Extractor runs LLM-backed extraction over inquiries.
type Extractor struct {
	client  Client
	catalog model.Catalog
}

// NewExtractor creates an LLM extraction engine for the configured provider.
// The catalog must be non-empty.
func NewExtractor(cfg Config, catalog model.Catalog) (*Extractor, error) {
	if len(catalog) == 0 {
		return nil, common.ErrEmptyCatalog
	}
	client, err := newClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return &Extractor{client: client, catalog: catalog}, nil
}

// Extract sends the inquiry to the model, validates the structured response,
// and converts it into a ParsedEvent. The drafted acknowledgment body the
// model produced in the same pass is returned alongside.
//
// Validation failure is a per-message error: the caller logs it and moves on
// to the next inquiry.
func (e *Extractor) Extract(ctx context.Context, emailID, content string) (model.ParsedEvent, string, error) {
	raw, err := e.client.ExtractStructured(ctx, BuildPrompt(content, e.catalog))
	if err != nil {
		return model.ParsedEvent{}, "", fmt.Errorf("LLM provider failed during API call: %w", err)
	}

	output, err := validateOutput(raw, e.catalog)
	if err != nil {
		return model.ParsedEvent{}, "", err
	}

	items := output.ExtractedItems
	if items == nil {
		items = []model.ExtractedItem{}
	}
	gaps := output.GapsIdentified
	if gaps == nil {
		gaps = []model.Gap{}
	}

	event := model.ParsedEvent{
		EmailID:        emailID,
		Sender:         model.Sender{Name: output.SenderName, Email: output.SenderEmail},
		Subject:        output.Subject,
		ReceivedAt:     time.Now().UTC(),
		ExtractedItems: items,
		GapsIdentified: gaps,
	}

	return event, output.DraftedAcknowledgmentBody, nil
}

// validateOutput checks the raw response for schema conformance: required
// keys present, product names restricted to catalog keys, gap types members
// of the closed set.
func validateOutput(raw json.RawMessage, catalog model.Catalog) (structuredOutput, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return structuredOutput{}, fmt.Errorf("%w: not a JSON object: %v", common.ErrInvalidLLMOutput, err)
	}
	for _, key := range requiredKeys {
		if _, ok := keys[key]; !ok {
			return structuredOutput{}, fmt.Errorf("%w: missing required key %q", common.ErrInvalidLLMOutput, key)
		}
	}

	var output structuredOutput
	if err := json.Unmarshal(raw, &output); err != nil {
		return structuredOutput{}, fmt.Errorf("%w: schema mismatch: %v", common.ErrInvalidLLMOutput, err)
	}

	for _, item := range output.ExtractedItems {
		if item.ProductName == nil {
			continue
		}
		if _, ok := catalog[*item.ProductName]; !ok {
			// The model invented a product that is not in the catalog.
			return structuredOutput{}, fmt.Errorf("%w: unknown product name %q", common.ErrInvalidLLMOutput, *item.ProductName)
		}
	}

	for _, gap := range output.GapsIdentified {
		if !gap.Type.Valid() {
			return structuredOutput{}, fmt.Errorf("%w: invalid gap type %q", common.ErrInvalidLLMOutput, gap.Type)
		}
	}

	return output, nil
}
