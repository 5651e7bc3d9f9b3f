package validation

import (
	"testing"

	"github.com/artpar/solarshop/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

// =============================================================================
// ValidateCategoryFields Tests
// =============================================================================

func TestValidateCategoryFields_AllValid(t *testing.T) {
	field, msg := ValidateCategoryFields("Inverters", 2)
	assert.Empty(t, field)
	assert.Empty(t, msg)
}

func TestValidateCategoryFields_MissingName(t *testing.T) {
	field, msg := ValidateCategoryFields("", 0)
	assert.Equal(t, "name", field)
	assert.Equal(t, "name is required", msg)
}

func TestValidateCategoryFields_NegativeSort(t *testing.T) {
	field, _ := ValidateCategoryFields("Inverters", -1)
	assert.Equal(t, "sort_order", field)
}

// =============================================================================
// ValidateProductFields Tests
// =============================================================================

func TestValidateProductFields_TableDriven(t *testing.T) {
	tests := []struct {
		name       string
		pName      string
		categoryID string
		price      int64
		compareAt  int64
		stock      int
		field      string
	}{
		{"valid", "Panel", "cat_1", 100, 0, 5, ""},
		{"valid with compare-at", "Panel", "cat_1", 100, 120, 5, ""},
		{"missing name", "", "cat_1", 100, 0, 5, "name"},
		{"missing category", "Panel", "", 100, 0, 5, "category_id"},
		{"negative price", "Panel", "cat_1", -1, 0, 5, "price"},
		{"compare-at not above price", "Panel", "cat_1", 100, 100, 5, "compare_at_price"},
		{"negative stock", "Panel", "cat_1", 100, 0, -2, "stock"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			field, _ := ValidateProductFields(tt.pName, tt.categoryID, tt.price, tt.compareAt, tt.stock)
			assert.Equal(t, tt.field, field)
		})
	}
}

// =============================================================================
// Business Rule Tests
// =============================================================================

func TestCanDeleteCategory(t *testing.T) {
	allowed, reason := CanDeleteCategory(0)
	assert.True(t, allowed)
	assert.Empty(t, reason)

	allowed, reason = CanDeleteCategory(3)
	assert.False(t, allowed)
	assert.Equal(t, "category has 3 products", reason)
}

func TestCanDeleteOrder(t *testing.T) {
	allowed, _ := CanDeleteOrder(domain.OrderPending)
	assert.False(t, allowed)

	allowed, _ = CanDeleteOrder(domain.OrderCancelled)
	assert.True(t, allowed)
}

func TestValidateFAQFields(t *testing.T) {
	field, _ := ValidateFAQFields("Q?", "")
	assert.Equal(t, "answer", field)
}

func TestValidateTestimonialFields(t *testing.T) {
	field, _ := ValidateTestimonialFields("Ali", "Good", 0)
	assert.Equal(t, "rating", field)

	field, _ = ValidateTestimonialFields("Ali", "Good", 4)
	assert.Empty(t, field)
}
