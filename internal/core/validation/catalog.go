package validation

import "fmt"

// =============================================================================
// Catalog Validation Functions
// =============================================================================

// ValidateCategoryFields validates required fields for a category.
// Returns the field name and error message if validation fails.
// Returns empty strings if all fields are valid.
func ValidateCategoryFields(name string, sortOrder int) (field, message string) {
	if name == "" {
		return "name", "name is required"
	}
	if len([]rune(name)) > 120 {
		return "name", "name must be at most 120 characters"
	}
	if sortOrder < 0 {
		return "sort_order", "sort_order cannot be negative"
	}
	return "", ""
}

// ValidateProductFields validates required fields for a product.
func ValidateProductFields(name, categoryID string, price, compareAtPrice int64, stock int) (field, message string) {
	if name == "" {
		return "name", "name is required"
	}
	if len([]rune(name)) > 120 {
		return "name", "name must be at most 120 characters"
	}
	if categoryID == "" {
		return "category_id", "category_id is required"
	}
	if price < 0 {
		return "price", "price cannot be negative"
	}
	if compareAtPrice != 0 && compareAtPrice <= price {
		return "compare_at_price", "compare_at_price must be greater than price"
	}
	if stock < 0 {
		return "stock", "stock cannot be negative"
	}
	return "", ""
}

// CanDeleteCategory checks if a category can be deleted.
// Categories that still hold products cannot be removed.
func CanDeleteCategory(productCount int) (allowed bool, reason string) {
	if productCount > 0 {
		return false, fmt.Sprintf("category has %d products", productCount)
	}
	return true, ""
}
