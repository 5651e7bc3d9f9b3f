// Package domain contains the core domain types and validation logic.
// This is part of the Functional Core - all functions are pure with no I/O.
package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Errors
// =============================================================================

var (
	// Name validation errors
	ErrNameRequired = errors.New("name is required")
	ErrNameTooShort = errors.New("name must be at least 2 characters")
	ErrNameTooLong  = errors.New("name must be at most 120 characters")

	// Price validation errors
	ErrPriceNegative       = errors.New("price cannot be negative")
	ErrCompareAtBelowPrice = errors.New("compare-at price must be greater than price")

	// Stock validation errors
	ErrStockNegative = errors.New("stock cannot be negative")

	// Category errors
	ErrCategoryRequired = errors.New("category is required")
)

// Reference ID prefixes.
const (
	PrefixCategory    = "cat_"
	PrefixProduct     = "prod_"
	PrefixOrder       = "ord_"
	PrefixMedia       = "med_"
	PrefixFAQ         = "faq_"
	PrefixTestimonial = "tst_"
)

// NewReferenceID returns a short random identifier with the given prefix.
func NewReferenceID(prefix string) string {
	return prefix + uuid.New().String()[:8]
}

// =============================================================================
// Category
// =============================================================================

// Category groups products on the storefront (panels, inverters, batteries...).
type Category struct {
	ID          int       `json:"-"`
	ReferenceID string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewCategory creates a category with a generated reference ID and slug.
func NewCategory(name string) (*Category, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &Category{
		ReferenceID: NewReferenceID(PrefixCategory),
		Name:        name,
		Slug:        Slugify(name),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Rename changes the category name and regenerates its slug.
func (c *Category) Rename(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	c.Name = name
	c.Slug = Slugify(name)
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// =============================================================================
// Product
// =============================================================================

// Product is a sellable catalog item.
type Product struct {
	ID             int               `json:"-"`
	ReferenceID    string            `json:"id"`
	CategoryID     string            `json:"category_id"`
	Name           string            `json:"name"`
	Slug           string            `json:"slug"`
	SKU            string            `json:"sku,omitempty"`
	Brand          string            `json:"brand,omitempty"`
	Description    string            `json:"description,omitempty"`
	Price          int64             `json:"price"`
	CompareAtPrice int64             `json:"compare_at_price,omitempty"`
	Stock          int               `json:"stock"`
	Images         []string          `json:"images,omitempty"`
	Specs          map[string]string `json:"specs,omitempty"`
	Featured       bool              `json:"featured"`
	Active         bool              `json:"active"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// NewProduct creates an active product in the given category.
func NewProduct(categoryID, name string, price int64) (*Product, error) {
	if categoryID == "" {
		return nil, ErrCategoryRequired
	}
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if err := ValidatePrice(price); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &Product{
		ReferenceID: NewReferenceID(PrefixProduct),
		CategoryID:  categoryID,
		Name:        name,
		Slug:        Slugify(name),
		Price:       price,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Rename changes the product name and regenerates its slug.
func (p *Product) Rename(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	p.Name = name
	p.Slug = Slugify(name)
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// Purchasable reports whether quantity units can be ordered.
func (p *Product) Purchasable(quantity int) bool {
	return p.Active && quantity > 0 && p.Stock >= quantity
}

// OnSale reports whether the product is discounted against its compare-at price.
func (p *Product) OnSale() bool {
	return p.CompareAtPrice > p.Price
}

// PrimaryImage returns the first image URL, or "" when there is none.
func (p *Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// Validate checks the invariants of a product.
func (p *Product) Validate() error {
	if p.CategoryID == "" {
		return ErrCategoryRequired
	}
	if err := ValidateName(p.Name); err != nil {
		return err
	}
	if err := ValidatePrice(p.Price); err != nil {
		return err
	}
	if p.CompareAtPrice != 0 && p.CompareAtPrice <= p.Price {
		return ErrCompareAtBelowPrice
	}
	if p.Stock < 0 {
		return ErrStockNegative
	}
	return nil
}

// =============================================================================
// Validation Functions (Pure)
// =============================================================================

// ValidateName validates a category or product name.
func ValidateName(name string) error {
	if name == "" {
		return ErrNameRequired
	}
	n := len([]rune(name))
	if n < 2 {
		return ErrNameTooShort
	}
	if n > 120 {
		return ErrNameTooLong
	}
	return nil
}

// ValidatePrice validates a price (must be non-negative).
func ValidatePrice(price int64) error {
	if price < 0 {
		return ErrPriceNegative
	}
	return nil
}
