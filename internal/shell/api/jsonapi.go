package api

import (
	"net/http"

	"github.com/artpar/solarshop/internal/core/checkout"
	"github.com/artpar/solarshop/internal/core/domain"
	"github.com/artpar/solarshop/internal/shell/api/openapi"
	"github.com/artpar/solarshop/internal/shell/api/resources"
	"github.com/manyminds/api2go"
)

// =============================================================================
// JSON:API Back Office
// =============================================================================

// jsonAPIHandler serves the back-office JSON:API resources under /api/v1.
func (h *Handler) jsonAPIHandler() http.Handler {
	jsonAPI := api2go.NewAPIWithResolver("v1", api2go.NewStaticResolver("/api"))
	jsonAPI.ContentType = "application/vnd.api+json"

	jsonAPI.AddResource(resources.Category{}, resources.NewCategoryResource(h.store))
	jsonAPI.AddResource(resources.Product{}, resources.NewProductResource(h.store))
	jsonAPI.AddResource(resources.Order{}, resources.NewOrderResource(h.store))

	// api2go expects paths without the /api prefix (/v1/products).
	return http.StripPrefix("/api", jsonAPI.Handler())
}

// =============================================================================
// OpenAPI Document
// =============================================================================

func (h *Handler) openAPI() *openapi.Generator {
	gen := openapi.NewGenerator(
		openapi.WithTitle("solarshop API"),
		openapi.WithVersion("1.0.0"),
		openapi.WithDescription("Storefront and back-office API for the solar equipment shop"),
		openapi.WithServer("/"),
	)

	gen.RegisterResource(openapi.ResourceInfo{
		Name:           "categories",
		Model:          resources.Category{},
		SupportsFind:   true,
		SupportsCreate: true,
		SupportsUpdate: true,
		SupportsDelete: true,
	})
	gen.RegisterResource(openapi.ResourceInfo{
		Name:           "products",
		Model:          resources.Product{},
		SupportsFind:   true,
		SupportsCreate: true,
		SupportsUpdate: true,
		SupportsDelete: true,
	})
	gen.RegisterResource(openapi.ResourceInfo{
		Name:           "orders",
		Model:          resources.Order{},
		SupportsFind:   true,
		SupportsCreate: false, // orders come from checkout
		SupportsUpdate: true,
		SupportsDelete: true,
	})

	routes := []openapi.RouteInfo{
		{Method: http.MethodGet, Path: "/api/categories", Summary: "List categories", Tag: "storefront", Response: ListResponse{}},
		{Method: http.MethodGet, Path: "/api/categories/{id}", Summary: "Get a category by ID or slug", Tag: "storefront", Response: domain.Category{}},
		{Method: http.MethodGet, Path: "/api/products", Summary: "List active products", Tag: "storefront", Response: ListResponse{}},
		{Method: http.MethodGet, Path: "/api/products/{id}", Summary: "Get a product by ID or slug", Tag: "storefront", Response: ProductResponse{}},
		{Method: http.MethodGet, Path: "/api/search", Summary: "Search the catalog", Tag: "storefront", Response: SearchResponse{}},
		{Method: http.MethodGet, Path: "/api/faqs", Summary: "List published FAQs", Tag: "storefront", Response: ListResponse{}},
		{Method: http.MethodGet, Path: "/api/testimonials", Summary: "List published testimonials", Tag: "storefront", Response: ListResponse{}},
		{Method: http.MethodPost, Path: "/api/cart/quote", Summary: "Price a cart", Tag: "storefront", Request: QuoteRequest{}, Response: QuoteResponse{}},
		{Method: http.MethodPost, Path: "/api/checkout", Summary: "Place an order", Tag: "storefront", Request: CheckoutRequest{}, Response: checkout.Result{}, Status: http.StatusCreated},
		{Method: http.MethodPost, Path: "/api/upload", Summary: "Upload a file", Tag: "storefront", Response: domain.MediaAsset{}, Status: http.StatusCreated},

		{Method: http.MethodPost, Path: "/api/categories", Summary: "Create a category", Tag: "catalog", Request: CategoryRequest{}, Response: domain.Category{}, Status: http.StatusCreated, Auth: true},
		{Method: http.MethodPut, Path: "/api/categories/{id}", Summary: "Update a category", Tag: "catalog", Request: CategoryRequest{}, Response: domain.Category{}, Auth: true},
		{Method: http.MethodDelete, Path: "/api/categories/{id}", Summary: "Delete an empty category", Tag: "catalog", Status: http.StatusNoContent, Auth: true},
		{Method: http.MethodPost, Path: "/api/products", Summary: "Create a product", Tag: "catalog", Request: ProductRequest{}, Response: ProductResponse{}, Status: http.StatusCreated, Auth: true},
		{Method: http.MethodPut, Path: "/api/products/{id}", Summary: "Update a product", Tag: "catalog", Request: ProductRequest{}, Response: ProductResponse{}, Auth: true},
		{Method: http.MethodDelete, Path: "/api/products/{id}", Summary: "Delete a product", Tag: "catalog", Status: http.StatusNoContent, Auth: true},
		{Method: http.MethodPost, Path: "/api/faqs", Summary: "Create an FAQ", Tag: "content", Request: FAQRequest{}, Response: domain.FAQ{}, Status: http.StatusCreated, Auth: true},
		{Method: http.MethodPut, Path: "/api/faqs/{id}", Summary: "Update an FAQ", Tag: "content", Request: FAQRequest{}, Response: domain.FAQ{}, Auth: true},
		{Method: http.MethodDelete, Path: "/api/faqs/{id}", Summary: "Delete an FAQ", Tag: "content", Status: http.StatusNoContent, Auth: true},
		{Method: http.MethodPost, Path: "/api/testimonials", Summary: "Create a testimonial", Tag: "content", Request: TestimonialRequest{}, Response: domain.Testimonial{}, Status: http.StatusCreated, Auth: true},
		{Method: http.MethodPut, Path: "/api/testimonials/{id}", Summary: "Update a testimonial", Tag: "content", Request: TestimonialRequest{}, Response: domain.Testimonial{}, Auth: true},
		{Method: http.MethodDelete, Path: "/api/testimonials/{id}", Summary: "Delete a testimonial", Tag: "content", Status: http.StatusNoContent, Auth: true},

		{Method: http.MethodGet, Path: "/api/orders", Summary: "List orders", Tag: "orders", Response: ListResponse{}, Auth: true},
		{Method: http.MethodPost, Path: "/api/orders", Summary: "Record an order taken by staff", Tag: "orders", Request: CheckoutRequest{}, Response: checkout.Result{}, Status: http.StatusCreated, Auth: true},
		{Method: http.MethodGet, Path: "/api/orders/{id}", Summary: "Get an order", Tag: "orders", Response: domain.Order{}, Auth: true},
		{Method: http.MethodPatch, Path: "/api/orders/{id}/status", Summary: "Change order status", Tag: "orders", Request: StatusRequest{}, Response: OrderStatusResponse{}, Auth: true},
		{Method: http.MethodDelete, Path: "/api/orders/{id}", Summary: "Delete a finished order", Tag: "orders", Status: http.StatusNoContent, Auth: true},

		{Method: http.MethodGet, Path: "/api/media", Summary: "List uploaded media", Tag: "media", Response: ListResponse{}, Auth: true},
		{Method: http.MethodDelete, Path: "/api/media/{id}", Summary: "Delete uploaded media", Tag: "media", Status: http.StatusNoContent, Auth: true},

		{Method: http.MethodGet, Path: "/health", Summary: "Liveness check", Tag: "operations", Response: HealthResponse{}},
		{Method: http.MethodGet, Path: "/ready", Summary: "Readiness check", Tag: "operations", Response: ReadyResponse{}},
	}
	for _, route := range routes {
		gen.RegisterRoute(route)
	}

	return gen
}
