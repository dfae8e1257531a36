// Package config loads and validates the static reference data the engines
// depend on. Validation happens here, before construction, so the core can
// assume well-formed inputs.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/trippynix/inquiry-emails-ai-workflow/internal/common"
	"github.com/trippynix/inquiry-emails-ai-workflow/internal/model"
)

// LoadCatalog reads and validates a price list JSON document mapping product
// names to price and category.
func LoadCatalog(path string) (model.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read price list: %w", err)
	}

	var catalog model.Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse price list %s: %w", path, err)
	}

	if len(catalog) == 0 {
		return nil, common.ErrEmptyCatalog
	}
	for name, product := range catalog {
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("%w: product with empty name", common.ErrInvalidConfig)
		}
		if product.Price < 0 {
			return nil, fmt.Errorf("%w: product %q has negative price", common.ErrInvalidConfig, name)
		}
	}

	return catalog, nil
}

// LoadDiscountRules reads and validates a discount rules JSON document.
// A document missing the bulk_discount or category_discount key is a fatal
// configuration error; only a missing category entry inside category_discount
// defaults to zero, and that happens at calculation time.
func LoadDiscountRules(path string) (model.DiscountRules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.DiscountRules{}, fmt.Errorf("failed to read discount rules: %w", err)
	}

	var rules model.DiscountRules
	if err := json.Unmarshal(data, &rules); err != nil {
		return model.DiscountRules{}, fmt.Errorf("failed to parse discount rules %s: %w", path, err)
	}

	if rules.BulkDiscount == nil && rules.CategoryDiscount == nil && rules.TaxRatePercent == 0 {
		return model.DiscountRules{}, common.ErrEmptyDiscountRules
	}
	if rules.BulkDiscount == nil {
		return model.DiscountRules{}, common.ErrMissingBulkDiscount
	}
	if rules.CategoryDiscount == nil {
		return model.DiscountRules{}, common.ErrMissingCategoryDiscount
	}
	for _, rule := range rules.BulkDiscount {
		if rule.MinQuantity <= 0 {
			return model.DiscountRules{}, fmt.Errorf("%w: bulk discount rule with non-positive min_quantity %d",
				common.ErrInvalidConfig, rule.MinQuantity)
		}
	}

	return rules, nil
}
