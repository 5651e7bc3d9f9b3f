package resources

import (
	"net/http"
	"strconv"
	"time"

	"github.com/artpar/solarshop/internal/core/auth"
	"github.com/artpar/solarshop/internal/core/domain"
	"github.com/artpar/solarshop/internal/core/validation"
	"github.com/artpar/solarshop/internal/shell/store"
	"github.com/manyminds/api2go"
	"github.com/manyminds/api2go/jsonapi"
)

// =============================================================================
// Product JSON:API Model
// =============================================================================

// Product wraps domain.Product to implement JSON:API interfaces.
// Stock and Featured are pointers so PATCH can tell "unset" from zero.
type Product struct {
	ID             string            `json:"-"`
	CategoryID     string            `json:"-"`
	Name           string            `json:"name"`
	Slug           string            `json:"slug"`
	SKU            string            `json:"sku,omitempty"`
	Brand          string            `json:"brand,omitempty"`
	Description    string            `json:"description,omitempty"`
	Price          int64             `json:"price"`
	CompareAtPrice int64             `json:"compare_at_price,omitempty"`
	Stock          *int              `json:"stock,omitempty"`
	Images         []string          `json:"images,omitempty"`
	Specs          map[string]string `json:"specs,omitempty"`
	Featured       *bool             `json:"featured,omitempty"`
	Active         *bool             `json:"active,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// GetID returns the product ID for JSON:API.
func (p Product) GetID() string {
	return p.ID
}

// SetID sets the product ID for JSON:API.
func (p *Product) SetID(id string) error {
	p.ID = id
	return nil
}

// GetName returns the JSON:API resource type name.
func (p Product) GetName() string {
	return "products"
}

// GetReferences returns the relationships this resource has.
func (p Product) GetReferences() []jsonapi.Reference {
	return []jsonapi.Reference{
		{
			Type: "categories",
			Name: "category",
		},
	}
}

// GetReferencedIDs returns IDs of referenced resources.
func (p Product) GetReferencedIDs() []jsonapi.ReferenceID {
	if p.CategoryID == "" {
		return nil
	}
	return []jsonapi.ReferenceID{
		{
			ID:   p.CategoryID,
			Type: "categories",
			Name: "category",
		},
	}
}

// SetToOneReferenceID implements the UnmarshalToOneRelations interface.
func (p *Product) SetToOneReferenceID(name, ID string) error {
	if name == "category" {
		p.CategoryID = ID
	}
	return nil
}

// ProductFromDomain converts a domain.Product to a JSON:API Product.
func ProductFromDomain(p *domain.Product) Product {
	stock, featured, active := p.Stock, p.Featured, p.Active
	return Product{
		ID:             p.ReferenceID,
		CategoryID:     p.CategoryID,
		Name:           p.Name,
		Slug:           p.Slug,
		SKU:            p.SKU,
		Brand:          p.Brand,
		Description:    p.Description,
		Price:          p.Price,
		CompareAtPrice: p.CompareAtPrice,
		Stock:          &stock,
		Images:         p.Images,
		Specs:          p.Specs,
		Featured:       &featured,
		Active:         &active,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

// =============================================================================
// ProductResource - CRUD Operations
// =============================================================================

// ProductResource implements the api2go resource interface for products.
type ProductResource struct {
	Store store.Store
}

// NewProductResource creates a new product resource handler.
func NewProductResource(s store.Store) *ProductResource {
	return &ProductResource{Store: s}
}

// FindAll returns products, including inactive ones.
// GET /api/v1/products?filter[category_id]=&filter[featured]=
func (r ProductResource) FindAll(req api2go.Request) (api2go.Responder, error) {
	opts := listOptions(req)

	filter := store.ProductFilter{CategoryID: queryParam(req, "filter[category_id]")}
	if v := queryParam(req, "filter[featured]"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			filter.Featured = &b
		}
	}

	products, err := r.Store.ListProducts(req.PlainRequest.Context(), filter, opts)
	if err != nil {
		return &Response{Code: http.StatusInternalServerError}, err
	}

	result := make([]Product, 0, len(products))
	for i := range products {
		result = append(result, ProductFromDomain(&products[i]))
	}

	return &Response{
		Code: http.StatusOK,
		Res:  result,
		Meta: listMeta(len(result), opts),
	}, nil
}

// FindOne returns a single product by ID.
// GET /api/v1/products/{id}
func (r ProductResource) FindOne(id string, req api2go.Request) (api2go.Responder, error) {
	product, err := r.Store.GetProduct(req.PlainRequest.Context(), id)
	if err != nil {
		return storeError(err, "product")
	}
	return &Response{Code: http.StatusOK, Res: ProductFromDomain(product)}, nil
}

// Create creates a new product.
// POST /api/v1/products
// Auth: admin only
func (r ProductResource) Create(obj interface{}, req api2go.Request) (api2go.Responder, error) {
	ctx := req.PlainRequest.Context()
	if !auth.CanManageCatalog(auth.FromContext(ctx)) {
		return httpError(http.StatusForbidden, "Not authorized to manage the catalog")
	}

	in, ok := obj.(Product)
	if !ok {
		return httpError(http.StatusBadRequest, "Invalid request body")
	}

	stock := 0
	if in.Stock != nil {
		stock = *in.Stock
	}
	if field, msg := validation.ValidateProductFields(in.Name, in.CategoryID, in.Price, in.CompareAtPrice, stock); field != "" {
		return httpError(http.StatusBadRequest, msg)
	}

	product, err := domain.NewProduct(in.CategoryID, in.Name, in.Price)
	if err != nil {
		return httpError(http.StatusBadRequest, err.Error())
	}
	if in.Slug != "" {
		product.Slug = domain.Slugify(in.Slug)
	}
	product.SKU = in.SKU
	product.Brand = in.Brand
	product.Description = in.Description
	product.CompareAtPrice = in.CompareAtPrice
	product.Stock = stock
	product.Images = in.Images
	product.Specs = in.Specs
	if in.Featured != nil {
		product.Featured = *in.Featured
	}
	if in.Active != nil {
		product.Active = *in.Active
	}

	if err := r.Store.CreateProduct(ctx, product); err != nil {
		return storeError(err, "product")
	}

	return &Response{Code: http.StatusCreated, Res: ProductFromDomain(product)}, nil
}

// Update updates an existing product. Only fields present in the request
// are changed.
// PATCH /api/v1/products/{id}
// Auth: admin only
func (r ProductResource) Update(obj interface{}, req api2go.Request) (api2go.Responder, error) {
	ctx := req.PlainRequest.Context()
	if !auth.CanManageCatalog(auth.FromContext(ctx)) {
		return httpError(http.StatusForbidden, "Not authorized to manage the catalog")
	}

	in, ok := obj.(Product)
	if !ok {
		return httpError(http.StatusBadRequest, "Invalid request body")
	}

	existing, err := r.Store.GetProduct(ctx, in.ID)
	if err != nil {
		return storeError(err, "product")
	}

	if in.Name != "" && in.Name != existing.Name {
		existing.Name = in.Name
		existing.Slug = domain.Slugify(in.Name)
	}
	if in.Slug != "" {
		existing.Slug = domain.Slugify(in.Slug)
	}
	if in.CategoryID != "" {
		existing.CategoryID = in.CategoryID
	}
	if in.SKU != "" {
		existing.SKU = in.SKU
	}
	if in.Brand != "" {
		existing.Brand = in.Brand
	}
	if in.Description != "" {
		existing.Description = in.Description
	}
	if in.Price > 0 {
		existing.Price = in.Price
	}
	if in.CompareAtPrice > 0 {
		existing.CompareAtPrice = in.CompareAtPrice
	}
	if in.Stock != nil {
		existing.Stock = *in.Stock
	}
	if in.Images != nil {
		existing.Images = in.Images
	}
	if in.Specs != nil {
		existing.Specs = in.Specs
	}
	if in.Featured != nil {
		existing.Featured = *in.Featured
	}
	if in.Active != nil {
		existing.Active = *in.Active
	}

	if err := existing.Validate(); err != nil {
		return httpError(http.StatusBadRequest, err.Error())
	}
	existing.UpdatedAt = time.Now().UTC()

	if err := r.Store.UpdateProduct(ctx, existing); err != nil {
		return storeError(err, "product")
	}

	return &Response{Code: http.StatusOK, Res: ProductFromDomain(existing)}, nil
}

// Delete removes a product.
// DELETE /api/v1/products/{id}
// Auth: admin only
func (r ProductResource) Delete(id string, req api2go.Request) (api2go.Responder, error) {
	ctx := req.PlainRequest.Context()
	if !auth.CanManageCatalog(auth.FromContext(ctx)) {
		return httpError(http.StatusForbidden, "Not authorized to manage the catalog")
	}

	if err := r.Store.DeleteProduct(ctx, id); err != nil {
		return storeError(err, "product")
	}

	return &Response{Code: http.StatusNoContent}, nil
}
