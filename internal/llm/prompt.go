package llm

import (
	"encoding/json"
	"fmt"

	"github.com/trippynix/inquiry-emails-ai-workflow/internal/model"
)

// responseSchema describes, in prose-JSON form, the document the model must
// return. It mirrors the ParsedEvent data model plus the drafted
// acknowledgment the LLM pipeline produces in the same pass.
const responseSchema = `{
  "sender_name": "string | null",
  "sender_email": "string",
  "subject": "string",
  "extracted_items": [
    {
      "product_name": "string | null (must be an exact key from the catalog)",
      "mentioned_as": "string (what the user actually wrote)",
      "quantity": "integer | null",
      "confidence": {
        "product": "float (0.0 to 1.0, where 1.0 is certain)",
        "quantity": "float (0.0 to 1.0, where 1.0 is certain)"
      }
    }
  ],
  "gaps_identified": [
    {
      "type": "string (MISSING_QUANTITY, AMBIGUOUS_PRODUCT, or UNKNOWN_PRODUCT)",
      "details": "string (a clear, user-facing explanation of the gap)"
    }
  ],
  "drafted_acknowledgment_body": "string (the full, polite, ready-to-use body of the acknowledgment email, asking questions if gaps exist)"
}`

// BuildPrompt creates the one-shot extraction prompt. The catalog is pruned
// to names and categories: prices never reach the model.
func BuildPrompt(emailContent string, catalog model.Catalog) string {
	pruned := make(map[string]map[string]string, len(catalog))
	for _, name := range catalog.Names() {
		pruned[name] = map[string]string{"category": catalog[name].Category}
	}
	catalogJSON, _ := json.MarshalIndent(pruned, "", "  ")

	return fmt.Sprintf(`You are an expert sales assistant for Kreeda Labs. Your task is to analyze a customer inquiry email and extract all relevant information into a structured JSON format.
READ VERY CAREFULLY THE GIVEN EMAIL CONTENT AND THE INSTRUCTIONS BELOW.

You MUST use the provided product catalog as your single source of truth. Do not invent products.
- STRICTLY adhere to the schema
- Be sure to fill in all fields, using null where appropriate and especially the gaps_identified field if any issues are found
- If a user mentions a product with a typo, match it to the closest item in the catalog.
- If a user asks for a product not in the catalog, you must identify it as an "UNKNOWN_PRODUCT".
- If a user does not specify quantity for a mentioned product, identify it as "MISSING_QUANTITY".
- If a user mentions a category like "a ThinkPad" and there are multiple options, identify it as "AMBIGUOUS_PRODUCT".
- Extract the sender's name from the signature if available.
- For each item, provide a confidence score (0.0 to 1.0) for both the product match and the quantity. A score of 1.0 means you are certain.
- Draft a professional and helpful acknowledgment email body. If you identify any gaps, your draft must include targeted questions to resolve them.

HERE IS THE OFFICIAL PRODUCT CATALOG:
%s

Analyze the following email and respond ONLY with a single, valid JSON object that conforms to the schema below. Do not add any text, explanation, or markdown formatting before or after the JSON.

EMAIL TO ANALYZE:
---
%s
---

JSON SCHEMA TO FOLLOW:
%s`, catalogJSON, emailContent, responseSchema)
}
