package quote

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trippynix/inquiry-emails-ai-workflow/internal/common"
	"github.com/trippynix/inquiry-emails-ai-workflow/internal/model"
)

func testCatalog() model.Catalog {
	return model.Catalog{
		"ThinkPad X1":        {Category: "laptop", Price: 1000},
		"Dell UltraSharp 27": {Category: "monitor", Price: 300},
	}
}

func testRules() model.DiscountRules {
	return model.DiscountRules{
		CategoryDiscount: map[string]float64{"laptop": 5},
		BulkDiscount: []model.BulkDiscountRule{
			{MinQuantity: 5, DiscountPercent: 10},
			{MinQuantity: 10, DiscountPercent: 15},
		},
		TaxRatePercent: 10,
	}
}

func newTestCalculator(t *testing.T) *Calculator {
	t.Helper()
	calculator, err := NewCalculator(testCatalog(), testRules())
	require.NoError(t, err)
	return calculator
}

func resolvedItem(name string, quantity int) model.ExtractedItem {
	return model.ExtractedItem{
		ProductName: &name,
		Quantity:    &quantity,
		MentionedAs: name,
		Confidence:  model.Confidence{Product: 1.0, Quantity: 1.0},
	}
}

func TestNewCalculatorValidation(t *testing.T) {
	tests := []struct {
		name     string
		catalog  model.Catalog
		rules    model.DiscountRules
		expected error
	}{
		{
			name:     "empty catalog",
			catalog:  model.Catalog{},
			rules:    testRules(),
			expected: common.ErrEmptyCatalog,
		},
		{
			name:     "empty rules",
			catalog:  testCatalog(),
			rules:    model.DiscountRules{},
			expected: common.ErrEmptyDiscountRules,
		},
		{
			name:    "missing bulk discount",
			catalog: testCatalog(),
			rules: model.DiscountRules{
				CategoryDiscount: map[string]float64{"laptop": 5},
				TaxRatePercent:   10,
			},
			expected: common.ErrMissingBulkDiscount,
		},
		{
			name:    "missing category discount",
			catalog: testCatalog(),
			rules: model.DiscountRules{
				BulkDiscount:   []model.BulkDiscountRule{{MinQuantity: 5, DiscountPercent: 10}},
				TaxRatePercent: 10,
			},
			expected: common.ErrMissingCategoryDiscount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCalculator(tt.catalog, tt.rules)
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}

func TestGenerateSuccess(t *testing.T) {
	calculator := newTestCalculator(t)

	event := model.ParsedEvent{
		EmailID:        "abc123",
		ExtractedItems: []model.ExtractedItem{resolvedItem("ThinkPad X1", 5)},
	}

	quote := calculator.Generate(event)

	assert.Equal(t, "abc123", quote.QuoteID)
	assert.Equal(t, model.StatusSuccess, quote.Status)
	assert.Empty(t, quote.PendingReason)
	assert.Empty(t, quote.Gaps)

	require.Len(t, quote.LineItems, 1)
	li := quote.LineItems[0]
	assert.Equal(t, "ThinkPad X1", li.ProductName)
	assert.Equal(t, 5, li.Quantity)
	assert.Equal(t, 1000.0, li.UnitPrice)
	assert.InDelta(t, 5000.0, li.Subtotal, 1e-9)
	// 10% bulk on 5000 = 500, then 5% laptop discount on 4500 = 225
	assert.InDelta(t, 725.0, li.TotalDiscountApplied, 1e-9)
	assert.InDelta(t, 4275.0, li.FinalPrice, 1e-9)

	assert.InDelta(t, 5000.0, quote.Summary.GrandSubtotal, 1e-9)
	assert.InDelta(t, 725.0, quote.Summary.TotalDiscount, 1e-9)
	assert.InDelta(t, 4275.0, quote.Summary.NetTotalBeforeTax, 1e-9)
	assert.InDelta(t, 427.50, quote.Summary.TaxAmount, 1e-9)
	assert.InDelta(t, 4702.50, quote.Summary.GrandTotal, 1e-9)
}

func TestGeneratePendingOnGaps(t *testing.T) {
	calculator := newTestCalculator(t)

	gaps := []model.Gap{{Type: model.GapUnknownProduct, Details: "No product was matched to any known product."}}
	event := model.ParsedEvent{
		EmailID:        "abc123",
		ExtractedItems: []model.ExtractedItem{resolvedItem("ThinkPad X1", 5)},
		GapsIdentified: gaps,
	}

	quote := calculator.Generate(event)

	assert.Equal(t, model.StatusPending, quote.Status)
	assert.Equal(t, PendingReason, quote.PendingReason)
	assert.Equal(t, gaps, quote.Gaps)
	assert.NotNil(t, quote.LineItems)
	assert.Empty(t, quote.LineItems)
	assert.Equal(t, model.QuoteSummary{}, quote.Summary)
}

func TestGeneratePendingOnUnresolvedItems(t *testing.T) {
	calculator := newTestCalculator(t)
	five := 5
	zero := 0
	name := "ThinkPad X1"

	tests := []struct {
		name  string
		items []model.ExtractedItem
	}{
		{"no items", []model.ExtractedItem{}},
		{"nil product name", []model.ExtractedItem{{ProductName: nil, Quantity: &five}}},
		{"nil quantity", []model.ExtractedItem{{ProductName: &name, Quantity: nil}}},
		{"zero quantity", []model.ExtractedItem{{ProductName: &name, Quantity: &zero}}},
		{
			"one bad item poisons the event",
			[]model.ExtractedItem{resolvedItem("ThinkPad X1", 5), {ProductName: &name, Quantity: nil}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote := calculator.Generate(model.ParsedEvent{EmailID: "id", ExtractedItems: tt.items})

			assert.Equal(t, model.StatusPending, quote.Status)
			assert.Equal(t, PendingReason, quote.PendingReason)
			assert.NotNil(t, quote.Gaps, "gaps must serialize as an array even when empty")
			assert.Empty(t, quote.LineItems)
		})
	}
}

// An event with no items at all pends with an empty gaps array; the
// serialized artifact must still carry the gaps key and an empty summary.
func TestGeneratePendingNoItemsArtifactShape(t *testing.T) {
	calculator := newTestCalculator(t)

	quote := calculator.Generate(model.ParsedEvent{EmailID: "id"})

	data, err := json.Marshal(quote)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"gaps":[]`)
	assert.Contains(t, string(data), `"summary":{}`)
	assert.Contains(t, string(data), `"line_items":[]`)
}

// Discounts compound sequentially: category applies to the post-bulk total,
// so final = subtotal * (1 - bulk/100) * (1 - category/100).
func TestGenerateDiscountsCompoundSequentially(t *testing.T) {
	calculator := newTestCalculator(t)

	quote := calculator.Generate(model.ParsedEvent{
		EmailID:        "id",
		ExtractedItems: []model.ExtractedItem{resolvedItem("ThinkPad X1", 10)},
	})

	require.Len(t, quote.LineItems, 1)
	subtotal := 10 * 1000.0
	expected := subtotal * (1 - 0.15) * (1 - 0.05)
	assert.InDelta(t, expected, quote.LineItems[0].FinalPrice, 1e-9)
	assert.InDelta(t, subtotal-expected, quote.LineItems[0].TotalDiscountApplied, 1e-9)
}

func TestBulkDiscountSelection(t *testing.T) {
	// Rules arrive unsorted; the highest qualifying threshold must win.
	rules := model.DiscountRules{
		CategoryDiscount: map[string]float64{},
		BulkDiscount: []model.BulkDiscountRule{
			{MinQuantity: 10, DiscountPercent: 20},
			{MinQuantity: 20, DiscountPercent: 30},
			{MinQuantity: 5, DiscountPercent: 10},
		},
		TaxRatePercent: 0,
	}
	calculator, err := NewCalculator(testCatalog(), rules)
	require.NoError(t, err)

	tests := []struct {
		name     string
		quantity int
		percent  float64
	}{
		{"below every threshold", 3, 0},
		{"exactly at a threshold", 5, 10},
		{"between thresholds", 12, 20},
		{"top threshold", 25, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote := calculator.Generate(model.ParsedEvent{
				EmailID:        "id",
				ExtractedItems: []model.ExtractedItem{resolvedItem("Dell UltraSharp 27", tt.quantity)},
			})

			require.Len(t, quote.LineItems, 1)
			li := quote.LineItems[0]
			assert.InDelta(t, li.Subtotal*tt.percent/100, li.TotalDiscountApplied, 1e-9)
		})
	}
}

func TestCategoryDiscountOnlyForMatchingCategory(t *testing.T) {
	calculator := newTestCalculator(t)

	// Monitors have no category discount and quantity 2 earns no bulk rule.
	quote := calculator.Generate(model.ParsedEvent{
		EmailID:        "id",
		ExtractedItems: []model.ExtractedItem{resolvedItem("Dell UltraSharp 27", 2)},
	})

	require.Len(t, quote.LineItems, 1)
	li := quote.LineItems[0]
	assert.InDelta(t, 600.0, li.Subtotal, 1e-9)
	assert.InDelta(t, 0.0, li.TotalDiscountApplied, 1e-9)
	assert.InDelta(t, 600.0, li.FinalPrice, 1e-9)
	assert.InDelta(t, 660.0, quote.Summary.GrandTotal, 1e-9)
}

func TestGenerateMultipleItems(t *testing.T) {
	calculator := newTestCalculator(t)

	quote := calculator.Generate(model.ParsedEvent{
		EmailID: "id",
		ExtractedItems: []model.ExtractedItem{
			resolvedItem("ThinkPad X1", 5),
			resolvedItem("Dell UltraSharp 27", 2),
		},
	})

	require.Len(t, quote.LineItems, 2)
	assert.InDelta(t, 5600.0, quote.Summary.GrandSubtotal, 1e-9)
	assert.InDelta(t, 725.0, quote.Summary.TotalDiscount, 1e-9)
	assert.InDelta(t, 4875.0, quote.Summary.NetTotalBeforeTax, 1e-9)
	assert.InDelta(t, 487.50, quote.Summary.TaxAmount, 1e-9)
	assert.InDelta(t, 5362.50, quote.Summary.GrandTotal, 1e-9)
}

// Pricing is a pure function of the event: repeated runs yield identical
// quotes and never mutate the shared rules.
func TestGenerateDeterministic(t *testing.T) {
	calculator := newTestCalculator(t)

	event := model.ParsedEvent{
		EmailID:        "id",
		ExtractedItems: []model.ExtractedItem{resolvedItem("ThinkPad X1", 7)},
	}

	first := calculator.Generate(event)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, calculator.Generate(event))
	}
}
