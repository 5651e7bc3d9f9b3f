package store

import (
	"context"
	"time"

	"github.com/artpar/solarshop/internal/core/domain"
)

// =============================================================================
// Store Interface
// =============================================================================

// Store defines the persistence interface for solarshop entities.
// Entities are addressed by their reference ID ("prod_1a2b3c4d").
type Store interface {
	// Category operations
	CreateCategory(ctx context.Context, category *domain.Category) error
	GetCategory(ctx context.Context, id string) (*domain.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error)
	UpdateCategory(ctx context.Context, category *domain.Category) error
	DeleteCategory(ctx context.Context, id string) error
	ListCategories(ctx context.Context, opts ListOptions) ([]domain.Category, error)
	CountProductsByCategory(ctx context.Context, categoryID string) (int, error)

	// Product operations
	CreateProduct(ctx context.Context, product *domain.Product) error
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error)
	GetProductsByIDs(ctx context.Context, ids []string) ([]domain.Product, error)
	UpdateProduct(ctx context.Context, product *domain.Product) error
	DeleteProduct(ctx context.Context, id string) error
	ListProducts(ctx context.Context, filter ProductFilter, opts ListOptions) ([]domain.Product, error)
	SearchProducts(ctx context.Context, terms []string, limit int) ([]domain.Product, error)
	DecrementStock(ctx context.Context, id string, quantity int) error

	// Order operations
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, from, to domain.OrderStatus, at time.Time) error
	DeleteOrder(ctx context.Context, id string) error
	ListOrders(ctx context.Context, filter OrderFilter, opts ListOptions) ([]domain.Order, error)
	ListUnnotifiedOrders(ctx context.Context, limit int) ([]domain.Order, error)
	MarkOrderNotified(ctx context.Context, id string, at time.Time) error

	// Media operations
	CreateMedia(ctx context.Context, asset *domain.MediaAsset) error
	GetMedia(ctx context.Context, id string) (*domain.MediaAsset, error)
	DeleteMedia(ctx context.Context, id string) error
	ListMedia(ctx context.Context, opts ListOptions) ([]domain.MediaAsset, error)

	// FAQ operations
	CreateFAQ(ctx context.Context, faq *domain.FAQ) error
	GetFAQ(ctx context.Context, id string) (*domain.FAQ, error)
	UpdateFAQ(ctx context.Context, faq *domain.FAQ) error
	DeleteFAQ(ctx context.Context, id string) error
	ListFAQs(ctx context.Context, publishedOnly bool, opts ListOptions) ([]domain.FAQ, error)

	// Testimonial operations
	CreateTestimonial(ctx context.Context, t *domain.Testimonial) error
	GetTestimonial(ctx context.Context, id string) (*domain.Testimonial, error)
	UpdateTestimonial(ctx context.Context, t *domain.Testimonial) error
	DeleteTestimonial(ctx context.Context, id string) error
	ListTestimonials(ctx context.Context, publishedOnly bool, opts ListOptions) ([]domain.Testimonial, error)

	// Transaction support
	WithTx(ctx context.Context, fn func(Store) error) error

	// Lifecycle
	Ping(ctx context.Context) error
	Close() error
}

// =============================================================================
// Options
// =============================================================================

// ListOptions defines pagination and filtering options.
type ListOptions struct {
	Limit  int
	Offset int
}

// DefaultListOptions returns default list options.
func DefaultListOptions() ListOptions {
	return ListOptions{
		Limit:  100,
		Offset: 0,
	}
}

// Normalize ensures list options have valid values.
func (o ListOptions) Normalize() ListOptions {
	if o.Limit <= 0 {
		o.Limit = 100
	}
	if o.Limit > 1000 {
		o.Limit = 1000
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	return o
}

// ProductFilter narrows a product listing. Zero values match everything.
type ProductFilter struct {
	CategoryID string
	Featured   *bool
	ActiveOnly bool
}

// OrderFilter narrows an order listing.
type OrderFilter struct {
	Status domain.OrderStatus
}
