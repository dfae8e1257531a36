package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trippynix/inquiry-emails-ai-workflow/internal/common"
)

func writeTempJSON(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCatalog(t *testing.T) {
	path := writeTempJSON(t, "price_list.json", `{
		"ThinkPad X1": {"category": "laptop", "price": 1000},
		"Dell UltraSharp 27": {"category": "monitor", "price": 300.5}
	}`)

	catalog, err := LoadCatalog(path)
	require.NoError(t, err)

	require.Len(t, catalog, 2)
	assert.Equal(t, "laptop", catalog["ThinkPad X1"].Category)
	assert.Equal(t, 1000.0, catalog["ThinkPad X1"].Price)
	assert.Equal(t, 300.5, catalog["Dell UltraSharp 27"].Price)
}

func TestLoadCatalogErrors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected error
	}{
		{"empty document", `{}`, common.ErrEmptyCatalog},
		{"empty product name", `{"  ": {"category": "laptop", "price": 1}}`, common.ErrInvalidConfig},
		{"negative price", `{"ThinkPad X1": {"category": "laptop", "price": -5}}`, common.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCatalog(writeTempJSON(t, "price_list.json", tt.content))
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}

func TestLoadCatalogMalformed(t *testing.T) {
	_, err := LoadCatalog(writeTempJSON(t, "price_list.json", `not json`))
	assert.Error(t, err)

	_, err = LoadCatalog(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestLoadDiscountRules(t *testing.T) {
	path := writeTempJSON(t, "discount_rules.json", `{
		"category_discount": {"laptop": 5},
		"bulk_discount": [
			{"min_quantity": 10, "discount_percent": 15},
			{"min_quantity": 5, "discount_percent": 10}
		],
		"tax_rate_percent": 10
	}`)

	rules, err := LoadDiscountRules(path)
	require.NoError(t, err)

	assert.Equal(t, 10.0, rules.TaxRatePercent)
	assert.Equal(t, 5.0, rules.CategoryDiscount["laptop"])
	require.Len(t, rules.BulkDiscount, 2)
	assert.Equal(t, 10, rules.BulkDiscount[0].MinQuantity)
}

func TestLoadDiscountRulesErrors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected error
	}{
		{"empty document", `{}`, common.ErrEmptyDiscountRules},
		{
			"missing bulk_discount key",
			`{"category_discount": {"laptop": 5}, "tax_rate_percent": 10}`,
			common.ErrMissingBulkDiscount,
		},
		{
			"missing category_discount key",
			`{"bulk_discount": [{"min_quantity": 5, "discount_percent": 10}], "tax_rate_percent": 10}`,
			common.ErrMissingCategoryDiscount,
		},
		{
			"non-positive min_quantity",
			`{"category_discount": {}, "bulk_discount": [{"min_quantity": 0, "discount_percent": 10}], "tax_rate_percent": 10}`,
			common.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadDiscountRules(writeTempJSON(t, "discount_rules.json", tt.content))
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}

// Empty but present keys are valid: they mean "no discounts", not "broken
// config".
func TestLoadDiscountRulesEmptyButPresentKeys(t *testing.T) {
	path := writeTempJSON(t, "discount_rules.json", `{
		"category_discount": {},
		"bulk_discount": [],
		"tax_rate_percent": 10
	}`)

	rules, err := LoadDiscountRules(path)
	require.NoError(t, err)
	assert.NotNil(t, rules.BulkDiscount)
	assert.NotNil(t, rules.CategoryDiscount)
	assert.Empty(t, rules.BulkDiscount)
}
