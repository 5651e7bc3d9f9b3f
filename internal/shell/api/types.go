package api

import (
	"time"

	"github.com/artpar/solarshop/internal/core/checkout"
	"github.com/artpar/solarshop/internal/core/domain"
)

// =============================================================================
// Request Types
// =============================================================================

// CategoryRequest is the request body for creating or updating a category.
type CategoryRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug,omitempty"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	SortOrder   *int   `json:"sort_order,omitempty"`
}

// ProductRequest is the request body for creating or updating a product.
// Pointer fields distinguish "not sent" from zero on update.
type ProductRequest struct {
	CategoryID     string            `json:"category_id"`
	Name           string            `json:"name"`
	Slug           string            `json:"slug,omitempty"`
	SKU            string            `json:"sku,omitempty"`
	Brand          string            `json:"brand,omitempty"`
	Description    string            `json:"description,omitempty"`
	Price          *int64            `json:"price,omitempty"`
	CompareAtPrice *int64            `json:"compare_at_price,omitempty"`
	Stock          *int              `json:"stock,omitempty"`
	Images         []string          `json:"images,omitempty"`
	Specs          map[string]string `json:"specs,omitempty"`
	Featured       *bool             `json:"featured,omitempty"`
	Active         *bool             `json:"active,omitempty"`
}

// FAQRequest is the request body for creating or updating an FAQ entry.
type FAQRequest struct {
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	SortOrder *int   `json:"sort_order,omitempty"`
	Published *bool  `json:"published,omitempty"`
}

// TestimonialRequest is the request body for creating or updating a testimonial.
type TestimonialRequest struct {
	Author    string `json:"author"`
	Location  string `json:"location,omitempty"`
	Quote     string `json:"quote"`
	Rating    int    `json:"rating"`
	Published *bool  `json:"published,omitempty"`
}

// CheckoutRequest is the storefront checkout payload: the customer form
// plus the cart lines. Client-sent prices are ignored.
type CheckoutRequest struct {
	checkout.Form
	Items           []checkout.Line `json:"items"`
	PaymentProofURL string          `json:"payment_proof_url,omitempty"`
}

// QuoteRequest is the request body for pricing a cart.
type QuoteRequest struct {
	Items []checkout.Line `json:"items"`
}

// StatusRequest is the request body for moving an order to a new status.
type StatusRequest struct {
	Status string `json:"status"`
}

// =============================================================================
// Response Types
// =============================================================================

// ListResponse wraps one page of a collection. Count is the number of
// entries in Data, not the size of the whole collection.
type ListResponse struct {
	Data   interface{} `json:"data"`
	Count  int         `json:"count"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}

// ProductResponse is a storefront product with display helpers.
type ProductResponse struct {
	domain.Product
	PriceLabel string `json:"price_label"`
	OnSale     bool   `json:"on_sale"`
	InStock    bool   `json:"in_stock"`
}

// QuoteLineIssue reports a cart line that cannot be ordered.
type QuoteLineIssue struct {
	ProductID string `json:"product_id"`
	Reason    string `json:"reason"`
}

// QuoteResponse is a priced cart.
type QuoteResponse struct {
	Items      []domain.LineItem `json:"items"`
	Total      int64             `json:"total"`
	TotalLabel string            `json:"total_label"`
	Issues     []QuoteLineIssue  `json:"issues,omitempty"`
}

// SearchResponse holds ranked search results.
type SearchResponse struct {
	Query      string            `json:"query"`
	Products   []SearchHit       `json:"products"`
	Categories []domain.Category `json:"categories"`
}

// SearchHit is one ranked product.
type SearchHit struct {
	ProductResponse
	Score int `json:"score"`
}

// HealthResponse is the response for health checks.
type HealthResponse struct {
	Status string `json:"status"`
}

// ReadyResponse is the response for readiness checks.
type ReadyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// ErrorResponse is the response for errors.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}

// OrderStatusResponse is returned after a status change.
type OrderStatusResponse struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}
