// Package model defines the core domain models used throughout the application.
package model

import (
	"sort"
	"strings"
)

// Product holds the static pricing reference data for a single catalog entry.
type Product struct {
	Category string  `json:"category"`
	Price    float64 `json:"price"`
}

// Catalog maps official product names to their pricing data. It is loaded once
// at startup, validated, and shared read-only across all extraction and
// quoting calls.
type Catalog map[string]Product

// Names returns the product names in deterministic (sorted) order.
func (c Catalog) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MaxNameWords returns the word count of the longest product name.
// The extractor uses this to bound n-gram window sizes.
func (c Catalog) MaxNameWords() int {
	maxWords := 0
	for name := range c {
		if n := len(strings.Fields(name)); n > maxWords {
			maxWords = n
		}
	}
	return maxWords
}

// BulkDiscountRule grants a percentage discount once an order reaches a
// minimum quantity. Rules need not arrive sorted; the calculator sorts them
// by MinQuantity descending before selection.
type BulkDiscountRule struct {
	MinQuantity     int     `json:"min_quantity"`
	DiscountPercent float64 `json:"discount_percent"`
}

// DiscountRules holds the static tax and discount reference data.
type DiscountRules struct {
	CategoryDiscount map[string]float64 `json:"category_discount"`
	BulkDiscount     []BulkDiscountRule `json:"bulk_discount"`
	TaxRatePercent   float64            `json:"tax_rate_percent"`
}
