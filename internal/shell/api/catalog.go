package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/artpar/solarshop/internal/core/auth"
	"github.com/artpar/solarshop/internal/core/domain"
	"github.com/artpar/solarshop/internal/core/validation"
	"github.com/artpar/solarshop/internal/shell/store"
	"github.com/go-chi/chi/v5"
)

// =============================================================================
// Category Handlers
// =============================================================================

func (h *Handler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	opts := listOptions(r)

	categories, err := h.store.ListCategories(r.Context(), opts)
	if err != nil {
		h.writeStoreError(w, err, "category", "list")
		return
	}
	if categories == nil {
		categories = []domain.Category{}
	}

	h.writeJSON(w, http.StatusOK, ListResponse{
		Data:   categories,
		Count:  len(categories),
		Limit:  opts.Limit,
		Offset: opts.Offset,
	})
}

func (h *Handler) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	category, err := h.findCategory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeStoreError(w, err, "category", "get")
		return
	}
	h.writeJSON(w, http.StatusOK, category)
}

func (h *Handler) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	if !h.requirePermission(w, auth.CanManageCatalog(authOf(r))) {
		return
	}

	var req CategoryRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	sortOrder := 0
	if req.SortOrder != nil {
		sortOrder = *req.SortOrder
	}
	if field, msg := validation.ValidateCategoryFields(req.Name, sortOrder); field != "" {
		h.writeError(w, http.StatusBadRequest, msg, "validation_error")
		return
	}

	category, err := domain.NewCategory(req.Name)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error(), "validation_error")
		return
	}
	if req.Slug != "" {
		category.Slug = domain.Slugify(req.Slug)
	}
	category.Description = req.Description
	category.ImageURL = req.ImageURL
	category.SortOrder = sortOrder

	if err := h.store.CreateCategory(r.Context(), category); err != nil {
		h.writeStoreError(w, err, "category", "create")
		return
	}

	h.logger.Info("category created", "category_id", category.ReferenceID, "by", authOf(r).Subject)
	h.writeJSON(w, http.StatusCreated, category)
}

func (h *Handler) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	if !h.requirePermission(w, auth.CanManageCatalog(authOf(r))) {
		return
	}

	category, err := h.store.GetCategory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeStoreError(w, err, "category", "get")
		return
	}

	var req CategoryRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	if req.Name != "" && req.Name != category.Name {
		if err := category.Rename(req.Name); err != nil {
			h.writeError(w, http.StatusBadRequest, err.Error(), "validation_error")
			return
		}
	}
	if req.Slug != "" {
		category.Slug = domain.Slugify(req.Slug)
	}
	if req.Description != "" {
		category.Description = req.Description
	}
	if req.ImageURL != "" {
		category.ImageURL = req.ImageURL
	}
	if req.SortOrder != nil {
		category.SortOrder = *req.SortOrder
	}
	if field, msg := validation.ValidateCategoryFields(category.Name, category.SortOrder); field != "" {
		h.writeError(w, http.StatusBadRequest, msg, "validation_error")
		return
	}
	category.UpdatedAt = h.now().UTC()

	if err := h.store.UpdateCategory(r.Context(), category); err != nil {
		h.writeStoreError(w, err, "category", "update")
		return
	}

	h.writeJSON(w, http.StatusOK, category)
}

func (h *Handler) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if !h.requirePermission(w, auth.CanManageCatalog(authOf(r))) {
		return
	}

	id := chi.URLParam(r, "id")
	if _, err := h.store.GetCategory(r.Context(), id); err != nil {
		h.writeStoreError(w, err, "category", "get")
		return
	}

	count, err := h.store.CountProductsByCategory(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, err, "category", "delete")
		return
	}
	if allowed, reason := validation.CanDeleteCategory(count); !allowed {
		h.writeError(w, http.StatusConflict, reason, "category_not_empty")
		return
	}

	if err := h.store.DeleteCategory(r.Context(), id); err != nil {
		h.writeStoreError(w, err, "category", "delete")
		return
	}

	h.logger.Info("category deleted", "category_id", id, "by", authOf(r).Subject)
	w.WriteHeader(http.StatusNoContent)
}

// findCategory resolves a reference ID or a slug.
func (h *Handler) findCategory(ctx context.Context, idOrSlug string) (*domain.Category, error) {
	if strings.HasPrefix(idOrSlug, domain.PrefixCategory) {
		return h.store.GetCategory(ctx, idOrSlug)
	}
	return h.store.GetCategoryBySlug(ctx, idOrSlug)
}

// =============================================================================
// Product Handlers
// =============================================================================

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	opts := listOptions(r)
	q := r.URL.Query()

	// Inactive products are only listed for the back office.
	filter := store.ProductFilter{ActiveOnly: true}
	if q.Get("all") == "true" && auth.CanManageCatalog(authOf(r)) {
		filter.ActiveOnly = false
	}

	if c := q.Get("category"); c != "" {
		category, err := h.findCategory(r.Context(), c)
		if err != nil {
			if isNotFound(err) {
				h.writeError(w, http.StatusNotFound, "category not found", "category_not_found")
				return
			}
			h.writeStoreError(w, err, "category", "get")
			return
		}
		filter.CategoryID = category.ReferenceID
	}
	if f := q.Get("featured"); f != "" {
		featured, err := strconv.ParseBool(f)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "featured must be true or false", "validation_error")
			return
		}
		filter.Featured = &featured
	}

	products, err := h.store.ListProducts(r.Context(), filter, opts)
	if err != nil {
		h.writeStoreError(w, err, "product", "list")
		return
	}

	data := make([]ProductResponse, 0, len(products))
	for i := range products {
		data = append(data, h.productToResponse(&products[i]))
	}

	h.writeJSON(w, http.StatusOK, ListResponse{
		Data:   data,
		Count:  len(data),
		Limit:  opts.Limit,
		Offset: opts.Offset,
	})
}

func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	idOrSlug := chi.URLParam(r, "id")

	var product *domain.Product
	var err error
	if strings.HasPrefix(idOrSlug, domain.PrefixProduct) {
		product, err = h.store.GetProduct(r.Context(), idOrSlug)
	} else {
		product, err = h.store.GetProductBySlug(r.Context(), idOrSlug)
	}
	if err != nil {
		h.writeStoreError(w, err, "product", "get")
		return
	}

	if !product.Active && !auth.CanManageCatalog(authOf(r)) {
		h.writeError(w, http.StatusNotFound, "product not found", "product_not_found")
		return
	}

	h.writeJSON(w, http.StatusOK, h.productToResponse(product))
}

func (h *Handler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	if !h.requirePermission(w, auth.CanManageCatalog(authOf(r))) {
		return
	}

	var req ProductRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	var price, compareAt int64
	if req.Price != nil {
		price = *req.Price
	}
	if req.CompareAtPrice != nil {
		compareAt = *req.CompareAtPrice
	}
	stock := 0
	if req.Stock != nil {
		stock = *req.Stock
	}

	if field, msg := validation.ValidateProductFields(req.Name, req.CategoryID, price, compareAt, stock); field != "" {
		h.writeError(w, http.StatusBadRequest, msg, "validation_error")
		return
	}

	product, err := domain.NewProduct(req.CategoryID, req.Name, price)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error(), "validation_error")
		return
	}
	if req.Slug != "" {
		product.Slug = domain.Slugify(req.Slug)
	}
	product.SKU = req.SKU
	product.Brand = req.Brand
	product.Description = req.Description
	product.CompareAtPrice = compareAt
	product.Stock = stock
	product.Images = req.Images
	product.Specs = req.Specs
	if req.Featured != nil {
		product.Featured = *req.Featured
	}
	if req.Active != nil {
		product.Active = *req.Active
	}

	if err := h.store.CreateProduct(r.Context(), product); err != nil {
		h.writeStoreError(w, err, "product", "create")
		return
	}

	h.logger.Info("product created", "product_id", product.ReferenceID, "by", authOf(r).Subject)
	h.writeJSON(w, http.StatusCreated, h.productToResponse(product))
}

func (h *Handler) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	if !h.requirePermission(w, auth.CanManageCatalog(authOf(r))) {
		return
	}

	product, err := h.store.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeStoreError(w, err, "product", "get")
		return
	}

	var req ProductRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	// Apply updates
	if req.Name != "" && req.Name != product.Name {
		if err := product.Rename(req.Name); err != nil {
			h.writeError(w, http.StatusBadRequest, err.Error(), "validation_error")
			return
		}
	}
	if req.Slug != "" {
		product.Slug = domain.Slugify(req.Slug)
	}
	if req.CategoryID != "" {
		product.CategoryID = req.CategoryID
	}
	if req.SKU != "" {
		product.SKU = req.SKU
	}
	if req.Brand != "" {
		product.Brand = req.Brand
	}
	if req.Description != "" {
		product.Description = req.Description
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.CompareAtPrice != nil {
		product.CompareAtPrice = *req.CompareAtPrice
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.Images != nil {
		product.Images = req.Images
	}
	if req.Specs != nil {
		product.Specs = req.Specs
	}
	if req.Featured != nil {
		product.Featured = *req.Featured
	}
	if req.Active != nil {
		product.Active = *req.Active
	}

	if field, msg := validation.ValidateProductFields(product.Name, product.CategoryID, product.Price, product.CompareAtPrice, product.Stock); field != "" {
		h.writeError(w, http.StatusBadRequest, msg, "validation_error")
		return
	}
	product.UpdatedAt = h.now().UTC()

	if err := h.store.UpdateProduct(r.Context(), product); err != nil {
		h.writeStoreError(w, err, "product", "update")
		return
	}

	h.writeJSON(w, http.StatusOK, h.productToResponse(product))
}

func (h *Handler) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if !h.requirePermission(w, auth.CanManageCatalog(authOf(r))) {
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.store.DeleteProduct(r.Context(), id); err != nil {
		h.writeStoreError(w, err, "product", "delete")
		return
	}

	h.logger.Info("product deleted", "product_id", id, "by", authOf(r).Subject)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) productToResponse(p *domain.Product) ProductResponse {
	return ProductResponse{
		Product:    *p,
		PriceLabel: domain.FormatPrice(h.shop.Currency, p.Price),
		OnSale:     p.OnSale(),
		InStock:    p.Active && p.Stock > 0,
	}
}
