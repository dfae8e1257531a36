// Package quote turns a fully-resolved extraction into priced, discounted,
// taxed line items. The calculation is a pure function of its inputs: the
// same parsed event always yields the same quote, regardless of which engine
// produced the event.
package quote

import (
	"math"
	"sort"

	"github.com/trippynix/inquiry-emails-ai-workflow/internal/common"
	"github.com/trippynix/inquiry-emails-ai-workflow/internal/model"
)

// PendingReason is the fixed human-readable explanation attached to every
// pending quote.
const PendingReason = "One or more items could not be identified or are missing quantities."

// Calculator prices parsed events against a catalog and discount rules.
// Safe for concurrent use: all state is read-only after construction.
type Calculator struct {
	catalog model.Catalog
	rules   model.DiscountRules
}

// NewCalculator validates the reference data and returns a calculator.
// An empty catalog or rules document, or rules missing the bulk_discount or
// category_discount keys, is a fatal configuration error.
func NewCalculator(catalog model.Catalog, rules model.DiscountRules) (*Calculator, error) {
	if len(catalog) == 0 {
		return nil, common.ErrEmptyCatalog
	}
	if rules.BulkDiscount == nil && rules.CategoryDiscount == nil && rules.TaxRatePercent == 0 {
		return nil, common.ErrEmptyDiscountRules
	}
	if rules.BulkDiscount == nil {
		return nil, common.ErrMissingBulkDiscount
	}
	if rules.CategoryDiscount == nil {
		return nil, common.ErrMissingCategoryDiscount
	}
	return &Calculator{catalog: catalog, rules: rules}, nil
}

// Generate produces a quote for a parsed event. Events carrying gaps, or
// items without a resolved product and positive quantity, yield a pending
// quote that echoes the gaps back to the caller.
func (c *Calculator) Generate(event model.ParsedEvent) model.Quote {
	if len(event.GapsIdentified) > 0 || !quotable(event.ExtractedItems) {
		gaps := event.GapsIdentified
		if gaps == nil {
			gaps = []model.Gap{}
		}
		return model.Quote{
			QuoteID:       event.EmailID,
			Status:        model.StatusPending,
			PendingReason: PendingReason,
			Gaps:          gaps,
			LineItems:     []model.LineItem{},
		}
	}

	lineItems := c.calculateLineItems(event.ExtractedItems)
	return model.Quote{
		QuoteID:   event.EmailID,
		Status:    model.StatusSuccess,
		LineItems: lineItems,
		Summary:   c.calculateSummary(lineItems),
	}
}

// quotable reports whether every item carries both a resolved product name
// and a positive quantity. An empty item list is not quotable.
func quotable(items []model.ExtractedItem) bool {
	if len(items) == 0 {
		return false
	}
	for _, item := range items {
		if item.ProductName == nil || *item.ProductName == "" {
			return false
		}
		if item.Quantity == nil || *item.Quantity <= 0 {
			return false
		}
	}
	return true
}

// calculateLineItems prices each item, applying the bulk discount first and
// the category discount on the post-bulk total. Discounts compound
// sequentially, not additively.
func (c *Calculator) calculateLineItems(items []model.ExtractedItem) []model.LineItem {
	lineItems := make([]model.LineItem, 0, len(items))
	for _, item := range items {
		product, ok := c.catalog[*item.ProductName]
		if !ok {
			// Unreachable once the quotability gate passed; skip defensively.
			continue
		}

		quantity := *item.Quantity
		subtotal := product.Price * float64(quantity)

		bulkAmount := subtotal * c.bulkDiscountPercent(quantity) / 100
		postBulk := subtotal - bulkAmount
		categoryAmount := postBulk * c.rules.CategoryDiscount[product.Category] / 100

		totalDiscount := bulkAmount + categoryAmount

		lineItems = append(lineItems, model.LineItem{
			ProductName:          *item.ProductName,
			Quantity:             quantity,
			UnitPrice:            product.Price,
			Subtotal:             subtotal,
			TotalDiscountApplied: totalDiscount,
			FinalPrice:           subtotal - totalDiscount,
		})
	}
	return lineItems
}

// bulkDiscountPercent selects the first rule, by min_quantity descending,
// whose threshold the quantity meets. No qualifying rule means no discount.
func (c *Calculator) bulkDiscountPercent(quantity int) float64 {
	rules := make([]model.BulkDiscountRule, len(c.rules.BulkDiscount))
	copy(rules, c.rules.BulkDiscount)
	sort.Slice(rules, func(i, j int) bool {
		return rules[i].MinQuantity > rules[j].MinQuantity
	})

	for _, rule := range rules {
		if quantity >= rule.MinQuantity {
			return rule.DiscountPercent
		}
	}
	return 0
}

// calculateSummary aggregates the line items and applies tax on the
// discounted net total. Summary fields are the only rounded values.
func (c *Calculator) calculateSummary(lineItems []model.LineItem) model.QuoteSummary {
	var grandSubtotal, totalDiscount float64
	for _, li := range lineItems {
		grandSubtotal += li.Subtotal
		totalDiscount += li.TotalDiscountApplied
	}

	netTotal := grandSubtotal - totalDiscount
	taxAmount := netTotal * c.rules.TaxRatePercent / 100

	return model.QuoteSummary{
		GrandSubtotal:     round2(grandSubtotal),
		TotalDiscount:     round2(totalDiscount),
		NetTotalBeforeTax: round2(netTotal),
		TaxAmount:         round2(taxAmount),
		GrandTotal:        round2(netTotal + taxAmount),
	}
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
