package model

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// DefaultSenderEmail is used when no address can be parsed from an inquiry.
const DefaultSenderEmail = "unknown@example.com"

// GapType categorizes why an inquiry cannot be quoted yet.
type GapType string

// Gap type constants. The set is closed so downstream consumers can branch
// exhaustively on it.
const (
	GapMissingQuantity  GapType = "MISSING_QUANTITY"
	GapAmbiguousProduct GapType = "AMBIGUOUS_PRODUCT"
	GapUnknownProduct   GapType = "UNKNOWN_PRODUCT"
)

// Valid reports whether t is a member of the closed gap type set.
func (t GapType) Valid() bool {
	switch t {
	case GapMissingQuantity, GapAmbiguousProduct, GapUnknownProduct:
		return true
	}
	return false
}

// Gap records a single piece of uncertainty discovered during extraction.
// Gaps are data, not errors: their presence is the only signal that a quote
// must stay pending.
type Gap struct {
	Type    GapType `json:"type"`
	Details string  `json:"details"`
}

// Sender identifies who sent an inquiry.
type Sender struct {
	Name  *string `json:"name"`
	Email string  `json:"email"`
}

// Confidence scores how certain the extractor is about a single item.
// Both values are in [0, 1].
type Confidence struct {
	Product  float64 `json:"product"`
	Quantity float64 `json:"quantity"`
}

// ExtractedItem is one product mention found in an inquiry body.
// ProductName is nil unless the mention resolved to a catalog key with high
// confidence; MentionedAs always carries the verbatim matched text.
type ExtractedItem struct {
	ProductName *string    `json:"product_name"`
	Quantity    *int       `json:"quantity"`
	MentionedAs string     `json:"mentioned_as"`
	Confidence  Confidence `json:"confidence"`
}

// ParsedEvent is the structured record produced once per inbound inquiry.
// It is immutable after creation and consumed by both the acknowledgment
// generator and the quote calculator.
type ParsedEvent struct {
	ReceivedAt     time.Time       `json:"received_at"`
	EmailID        string          `json:"email_id"`
	Subject        string          `json:"subject"`
	Sender         Sender          `json:"sender"`
	ExtractedItems []ExtractedItem `json:"extracted_items"`
	GapsIdentified []Gap           `json:"gaps_identified"`
}

// GenerateEmailID creates a stable content hash used as the inquiry's unique ID.
func GenerateEmailID(content string) string {
	sum := sha256.Sum256([]byte(content))
	return fmt.Sprintf("%x", sum)
}
