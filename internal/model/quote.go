package model

import "encoding/json"

// QuoteStatus indicates whether a quote could be finalized.
type QuoteStatus string

// Quote status constants.
const (
	StatusPending QuoteStatus = "pending"
	StatusSuccess QuoteStatus = "success"
)

// LineItem is one fully priced row of a quote. Monetary fields carry full
// precision; rounding happens only in the summary.
type LineItem struct {
	ProductName          string  `json:"product_name"`
	Quantity             int     `json:"quantity"`
	UnitPrice            float64 `json:"unit_price"`
	Subtotal             float64 `json:"subtotal"`
	TotalDiscountApplied float64 `json:"total_discount_applied"`
	FinalPrice           float64 `json:"final_price"`
}

// QuoteSummary aggregates all line items. Every field is rounded to two
// decimal places.
type QuoteSummary struct {
	GrandSubtotal     float64 `json:"grand_subtotal"`
	TotalDiscount     float64 `json:"total_discount"`
	NetTotalBeforeTax float64 `json:"net_total_before_tax"`
	TaxAmount         float64 `json:"tax_amount"`
	GrandTotal        float64 `json:"grand_total"`
}

// Quote is the deterministic output of pricing a ParsedEvent. The same event
// always yields the same quote. Gaps and PendingReason are set only on
// pending quotes.
type Quote struct {
	QuoteID       string       `json:"quote_id"`
	Status        QuoteStatus  `json:"status"`
	PendingReason string       `json:"pending_reason,omitempty"`
	Gaps          []Gap        `json:"gaps"`
	LineItems     []LineItem   `json:"line_items"`
	Summary       QuoteSummary `json:"summary"`
}

// MarshalJSON shapes the artifact by status: pending quotes always carry a
// gaps array, even when empty, and an empty summary object; successful quotes
// carry no gaps key at all.
func (q Quote) MarshalJSON() ([]byte, error) {
	type alias Quote
	out := struct {
		alias
		Gaps    any `json:"gaps,omitempty"`
		Summary any `json:"summary"`
	}{alias: alias(q), Summary: q.Summary}

	if q.Status == StatusPending {
		gaps := q.Gaps
		if gaps == nil {
			gaps = []Gap{}
		}
		out.Gaps = gaps
		out.Summary = struct{}{}
	}

	return json.Marshal(out)
}
