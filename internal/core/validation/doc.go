// Package validation provides pure validation functions for API handlers.
//
// This package contains the functional core logic for validating API requests
// and checking business rules. All functions are pure (no I/O, no side effects).
//
// # Functions
//
//   - ValidateCategoryFields: Validate required fields for a category
//   - ValidateProductFields: Validate required fields for a product
//   - ValidateFAQFields / ValidateTestimonialFields: storefront content
//   - CanDeleteCategory: Check a category has no products before deletion
//   - CanDeleteOrder: Only cancelled or delivered orders may be removed
//
// # Usage
//
//	if field, msg := validation.ValidateProductFields(name, categoryID, price, stock); field != "" {
//	    // Return 400 Bad Request with msg
//	}
package validation
