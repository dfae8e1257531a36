package ack

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trippynix/inquiry-emails-ai-workflow/internal/model"
)

func ptr[T any](v T) *T { return &v }

func TestGenerateResolvedInquiry(t *testing.T) {
	generator := NewGenerator()

	event := model.ParsedEvent{
		Subject: "Laptop order",
		Sender:  model.Sender{Name: ptr("John Doe"), Email: "john.doe@example.com"},
		ExtractedItems: []model.ExtractedItem{
			{ProductName: ptr("ThinkPad X1"), Quantity: ptr(5), MentionedAs: "ThinkPad X1"},
		},
	}

	draft := generator.Generate(event)

	assert.Equal(t, "john.doe@example.com", draft.RecipientEmail)
	assert.Equal(t, "Re: Laptop order", draft.Subject)
	assert.True(t, strings.HasPrefix(draft.Body, "Hi John Doe,"))
	assert.Contains(t, draft.Body, "- 5 x ThinkPad X1")
	assert.Contains(t, draft.Body, "We are preparing a detailed quote for you")
	assert.NotContains(t, draft.Body, "points to clarify")
	assert.True(t, strings.HasSuffix(draft.Body, "Best regards,\nKreeda Labs Team"))
}

func TestGenerateAnonymousSender(t *testing.T) {
	generator := NewGenerator()

	draft := generator.Generate(model.ParsedEvent{
		Sender: model.Sender{Email: model.DefaultSenderEmail},
	})

	assert.Equal(t, model.DefaultSenderEmail, draft.RecipientEmail)
	assert.Equal(t, "Re: Your Inquiry", draft.Subject)
	assert.True(t, strings.HasPrefix(draft.Body, "Hello,"))
	assert.Contains(t, draft.Body, "Could you please provide more details")
}

func TestGenerateAmbiguousProductQuestion(t *testing.T) {
	generator := NewGenerator()

	event := model.ParsedEvent{
		Subject: "Mixed order",
		Sender:  model.Sender{Email: "buyer@corp.io"},
		ExtractedItems: []model.ExtractedItem{
			{MentionedAs: "Thinkpud X2", Quantity: ptr(2)},
		},
		GapsIdentified: []model.Gap{
			{Type: model.GapAmbiguousProduct, Details: "Request 'Thinkpud X2' is ambiguous. Best guess: 'ThinkPad X1' (Score: 82)."},
		},
	}

	draft := generator.Generate(event)

	assert.Contains(t, draft.Body, "points to clarify")
	assert.Contains(t, draft.Body, "1. To ensure we quote the correct item")
	assert.Contains(t, draft.Body, "the request: 'Thinkpud X2'?")
	assert.Contains(t, draft.Body, "we think you might mean: 'ThinkPad X1' (Score: 82).")
	assert.Contains(t, draft.Body, "as soon as we have this information")
}

func TestGenerateMissingQuantityQuestion(t *testing.T) {
	generator := NewGenerator()

	event := model.ParsedEvent{
		Sender: model.Sender{Email: "buyer@corp.io"},
		ExtractedItems: []model.ExtractedItem{
			{ProductName: ptr("ThinkPad X1"), MentionedAs: "ThinkPad X1"},
		},
		GapsIdentified: []model.Gap{
			{Type: model.GapMissingQuantity, Details: "Product 'ThinkPad X1' was identified, but no quantity was found nearby."},
		},
	}

	draft := generator.Generate(event)

	assert.Contains(t, draft.Body, "What quantity of the 'ThinkPad X1' would you like a quote for?")
}

func TestGenerateUnknownProductQuestion(t *testing.T) {
	generator := NewGenerator()

	event := model.ParsedEvent{
		Sender: model.Sender{Email: "buyer@corp.io"},
		GapsIdentified: []model.Gap{
			{Type: model.GapUnknownProduct, Details: "No product was matched to any known product."},
		},
	}

	draft := generator.Generate(event)

	assert.Contains(t, draft.Body, "'the requested item' is not available in our catalog")
}

// At most two questions make it into a draft, in priority order: ambiguous,
// unknown, then missing quantity.
func TestGenerateQuestionCap(t *testing.T) {
	generator := NewGenerator()

	event := model.ParsedEvent{
		Sender: model.Sender{Email: "buyer@corp.io"},
		GapsIdentified: []model.Gap{
			{Type: model.GapMissingQuantity, Details: "Product 'ThinkPad X1' was identified, but no quantity was found nearby."},
			{Type: model.GapAmbiguousProduct, Details: "Request 'Dell monitor' is ambiguous. Best guess: 'Dell UltraSharp 27' (Score: 80)."},
			{Type: model.GapUnknownProduct, Details: "No match for 'garden furniture'."},
		},
	}

	draft := generator.Generate(event)

	assert.Contains(t, draft.Body, "1. To ensure we quote the correct item")
	assert.Contains(t, draft.Body, "2. Please note that the item 'garden furniture'")
	assert.NotContains(t, draft.Body, "What quantity")
	assert.NotContains(t, draft.Body, "3.")
}
