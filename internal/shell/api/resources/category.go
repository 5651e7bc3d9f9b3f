package resources

import (
	"net/http"
	"time"

	"github.com/artpar/solarshop/internal/core/auth"
	"github.com/artpar/solarshop/internal/core/domain"
	"github.com/artpar/solarshop/internal/core/validation"
	"github.com/artpar/solarshop/internal/shell/store"
	"github.com/manyminds/api2go"
	"github.com/manyminds/api2go/jsonapi"
)

// =============================================================================
// Category JSON:API Model
// =============================================================================

// Category wraps domain.Category to implement JSON:API interfaces.
type Category struct {
	ID          string    `json:"-"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// GetID returns the category ID for JSON:API.
func (c Category) GetID() string {
	return c.ID
}

// SetID sets the category ID for JSON:API.
func (c *Category) SetID(id string) error {
	c.ID = id
	return nil
}

// GetName returns the JSON:API resource type name.
func (c Category) GetName() string {
	return "categories"
}

// GetReferences returns the relationships this resource has.
func (c Category) GetReferences() []jsonapi.Reference {
	return []jsonapi.Reference{
		{
			Type:        "products",
			Name:        "products",
			IsNotLoaded: true,
		},
	}
}

// GetReferencedIDs returns IDs of referenced resources.
func (c Category) GetReferencedIDs() []jsonapi.ReferenceID {
	return nil
}

// CategoryFromDomain converts a domain.Category to a JSON:API Category.
func CategoryFromDomain(c *domain.Category) Category {
	return Category{
		ID:          c.ReferenceID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		ImageURL:    c.ImageURL,
		SortOrder:   c.SortOrder,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// =============================================================================
// CategoryResource - CRUD Operations
// =============================================================================

// CategoryResource implements the api2go resource interface for categories.
type CategoryResource struct {
	Store store.Store
}

// NewCategoryResource creates a new category resource handler.
func NewCategoryResource(s store.Store) *CategoryResource {
	return &CategoryResource{Store: s}
}

// FindAll returns categories in display order.
// GET /api/v1/categories
func (r CategoryResource) FindAll(req api2go.Request) (api2go.Responder, error) {
	opts := listOptions(req)

	categories, err := r.Store.ListCategories(req.PlainRequest.Context(), opts)
	if err != nil {
		return &Response{Code: http.StatusInternalServerError}, err
	}

	result := make([]Category, 0, len(categories))
	for i := range categories {
		result = append(result, CategoryFromDomain(&categories[i]))
	}

	return &Response{
		Code: http.StatusOK,
		Res:  result,
		Meta: listMeta(len(result), opts),
	}, nil
}

// FindOne returns a single category by ID.
// GET /api/v1/categories/{id}
func (r CategoryResource) FindOne(id string, req api2go.Request) (api2go.Responder, error) {
	category, err := r.Store.GetCategory(req.PlainRequest.Context(), id)
	if err != nil {
		return storeError(err, "category")
	}
	return &Response{Code: http.StatusOK, Res: CategoryFromDomain(category)}, nil
}

// Create creates a new category.
// POST /api/v1/categories
// Auth: admin only
func (r CategoryResource) Create(obj interface{}, req api2go.Request) (api2go.Responder, error) {
	ctx := req.PlainRequest.Context()
	if !auth.CanManageCatalog(auth.FromContext(ctx)) {
		return httpError(http.StatusForbidden, "Not authorized to manage the catalog")
	}

	in, ok := obj.(Category)
	if !ok {
		return httpError(http.StatusBadRequest, "Invalid request body")
	}

	if field, msg := validation.ValidateCategoryFields(in.Name, in.SortOrder); field != "" {
		return httpError(http.StatusBadRequest, msg)
	}

	category, err := domain.NewCategory(in.Name)
	if err != nil {
		return httpError(http.StatusBadRequest, err.Error())
	}
	if in.Slug != "" {
		category.Slug = domain.Slugify(in.Slug)
	}
	category.Description = in.Description
	category.ImageURL = in.ImageURL
	category.SortOrder = in.SortOrder

	if err := r.Store.CreateCategory(ctx, category); err != nil {
		return storeError(err, "category")
	}

	return &Response{Code: http.StatusCreated, Res: CategoryFromDomain(category)}, nil
}

// Update updates an existing category.
// PATCH /api/v1/categories/{id}
// Auth: admin only
func (r CategoryResource) Update(obj interface{}, req api2go.Request) (api2go.Responder, error) {
	ctx := req.PlainRequest.Context()
	if !auth.CanManageCatalog(auth.FromContext(ctx)) {
		return httpError(http.StatusForbidden, "Not authorized to manage the catalog")
	}

	in, ok := obj.(Category)
	if !ok {
		return httpError(http.StatusBadRequest, "Invalid request body")
	}

	existing, err := r.Store.GetCategory(ctx, in.ID)
	if err != nil {
		return storeError(err, "category")
	}

	if in.Name != "" && in.Name != existing.Name {
		if err := existing.Rename(in.Name); err != nil {
			return httpError(http.StatusBadRequest, err.Error())
		}
	}
	if in.Slug != "" {
		existing.Slug = domain.Slugify(in.Slug)
	}
	if in.Description != "" {
		existing.Description = in.Description
	}
	if in.ImageURL != "" {
		existing.ImageURL = in.ImageURL
	}
	if in.SortOrder != 0 {
		existing.SortOrder = in.SortOrder
	}
	if field, msg := validation.ValidateCategoryFields(existing.Name, existing.SortOrder); field != "" {
		return httpError(http.StatusBadRequest, msg)
	}
	existing.UpdatedAt = time.Now().UTC()

	if err := r.Store.UpdateCategory(ctx, existing); err != nil {
		return storeError(err, "category")
	}

	return &Response{Code: http.StatusOK, Res: CategoryFromDomain(existing)}, nil
}

// Delete removes a category that holds no products.
// DELETE /api/v1/categories/{id}
// Auth: admin only
func (r CategoryResource) Delete(id string, req api2go.Request) (api2go.Responder, error) {
	ctx := req.PlainRequest.Context()
	if !auth.CanManageCatalog(auth.FromContext(ctx)) {
		return httpError(http.StatusForbidden, "Not authorized to manage the catalog")
	}

	if _, err := r.Store.GetCategory(ctx, id); err != nil {
		return storeError(err, "category")
	}

	count, err := r.Store.CountProductsByCategory(ctx, id)
	if err != nil {
		return &Response{Code: http.StatusInternalServerError}, err
	}
	if allowed, reason := validation.CanDeleteCategory(count); !allowed {
		return httpError(http.StatusConflict, reason)
	}

	if err := r.Store.DeleteCategory(ctx, id); err != nil {
		return storeError(err, "category")
	}

	return &Response{Code: http.StatusNoContent}, nil
}
