package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/artpar/solarshop/internal/core/domain"
	"github.com/jmoiron/sqlx"
)

// =============================================================================
// Category Rows
// =============================================================================

// categoryRow represents a category row in the database.
type categoryRow struct {
	ID          int    `db:"id"`
	ReferenceID string `db:"reference_id"`
	Name        string `db:"name"`
	Slug        string `db:"slug"`
	Description string `db:"description"`
	ImageURL    string `db:"image_url"`
	SortOrder   int    `db:"sort_order"`
	CreatedAt   string `db:"created_at"`
	UpdatedAt   string `db:"updated_at"`
}

func categoryToRow(c *domain.Category) map[string]any {
	return map[string]any{
		"reference_id": c.ReferenceID,
		"name":         c.Name,
		"slug":         c.Slug,
		"description":  c.Description,
		"image_url":    c.ImageURL,
		"sort_order":   c.SortOrder,
		"created_at":   formatTime(c.CreatedAt),
		"updated_at":   formatTime(c.UpdatedAt),
	}
}

func rowToCategory(row *categoryRow) *domain.Category {
	return &domain.Category{
		ID:          row.ID,
		ReferenceID: row.ReferenceID,
		Name:        row.Name,
		Slug:        row.Slug,
		Description: row.Description,
		ImageURL:    row.ImageURL,
		SortOrder:   row.SortOrder,
		CreatedAt:   parseTime(row.CreatedAt),
		UpdatedAt:   parseTime(row.UpdatedAt),
	}
}

// =============================================================================
// Category Functions
// =============================================================================

func createCategory(ctx context.Context, exec executor, category *domain.Category) error {
	query := `
		INSERT INTO categories (
			reference_id, name, slug, description, image_url, sort_order, created_at, updated_at
		) VALUES (
			:reference_id, :name, :slug, :description, :image_url, :sort_order, :created_at, :updated_at
		)`

	result, err := exec.NamedExecContext(ctx, query, categoryToRow(category))
	if err != nil {
		if isUniqueViolation(err, "categories.reference_id") {
			return NewStoreError("CreateCategory", "category", category.ReferenceID, "category with this ID already exists", ErrDuplicateID)
		}
		if isUniqueViolation(err, "categories.slug") {
			return NewStoreError("CreateCategory", "category", category.ReferenceID, "category with this slug already exists", ErrDuplicateSlug)
		}
		return NewStoreError("CreateCategory", "category", category.ReferenceID, err.Error(), err)
	}

	id, _ := result.LastInsertId()
	category.ID = int(id)
	return nil
}

func getCategory(ctx context.Context, exec executor, id string) (*domain.Category, error) {
	var row categoryRow
	err := exec.GetContext(ctx, &row, `SELECT * FROM categories WHERE reference_id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("GetCategory", "category", id, "category not found", ErrNotFound)
		}
		return nil, NewStoreError("GetCategory", "category", id, err.Error(), err)
	}
	return rowToCategory(&row), nil
}

func getCategoryBySlug(ctx context.Context, exec executor, slug string) (*domain.Category, error) {
	var row categoryRow
	err := exec.GetContext(ctx, &row, `SELECT * FROM categories WHERE slug = ?`, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("GetCategoryBySlug", "category", slug, "category not found", ErrNotFound)
		}
		return nil, NewStoreError("GetCategoryBySlug", "category", slug, err.Error(), err)
	}
	return rowToCategory(&row), nil
}

func updateCategory(ctx context.Context, exec executor, category *domain.Category) error {
	query := `
		UPDATE categories SET
			name = :name,
			slug = :slug,
			description = :description,
			image_url = :image_url,
			sort_order = :sort_order,
			updated_at = :updated_at
		WHERE reference_id = :reference_id`

	result, err := exec.NamedExecContext(ctx, query, categoryToRow(category))
	if err != nil {
		if isUniqueViolation(err, "categories.slug") {
			return NewStoreError("UpdateCategory", "category", category.ReferenceID, "category with this slug already exists", ErrDuplicateSlug)
		}
		return NewStoreError("UpdateCategory", "category", category.ReferenceID, err.Error(), err)
	}
	return checkAffected(result, "UpdateCategory", "category", category.ReferenceID)
}

func deleteCategory(ctx context.Context, exec executor, id string) error {
	result, err := exec.ExecContext(ctx, `DELETE FROM categories WHERE reference_id = ?`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return NewStoreError("DeleteCategory", "category", id, "category still has products", ErrForeignKey)
		}
		return NewStoreError("DeleteCategory", "category", id, err.Error(), err)
	}
	return checkAffected(result, "DeleteCategory", "category", id)
}

func listCategories(ctx context.Context, exec executor, opts ListOptions) ([]domain.Category, error) {
	opts = opts.Normalize()
	query := `SELECT * FROM categories ORDER BY sort_order ASC, name ASC LIMIT ? OFFSET ?`

	var rows []categoryRow
	if err := exec.SelectContext(ctx, &rows, query, opts.Limit, opts.Offset); err != nil {
		return nil, NewStoreError("ListCategories", "category", "", err.Error(), err)
	}

	categories := make([]domain.Category, 0, len(rows))
	for i := range rows {
		categories = append(categories, *rowToCategory(&rows[i]))
	}
	return categories, nil
}

func countProductsByCategory(ctx context.Context, exec executor, categoryID string) (int, error) {
	var n int
	if err := exec.GetContext(ctx, &n, `SELECT COUNT(*) FROM products WHERE category_id = ?`, categoryID); err != nil {
		return 0, NewStoreError("CountProductsByCategory", "category", categoryID, err.Error(), err)
	}
	return n, nil
}

// =============================================================================
// Product Rows
// =============================================================================

// productRow represents a product row in the database.
type productRow struct {
	ID             int     `db:"id"`
	ReferenceID    string  `db:"reference_id"`
	CategoryID     string  `db:"category_id"`
	Name           string  `db:"name"`
	Slug           string  `db:"slug"`
	SKU            string  `db:"sku"`
	Brand          string  `db:"brand"`
	Description    string  `db:"description"`
	Price          int64   `db:"price"`
	CompareAtPrice int64   `db:"compare_at_price"`
	Stock          int     `db:"stock"`
	Images         *string `db:"images"`
	Specs          *string `db:"specs"`
	Featured       bool    `db:"featured"`
	Active         bool    `db:"active"`
	CreatedAt      string  `db:"created_at"`
	UpdatedAt      string  `db:"updated_at"`
}

func productToRow(op string, p *domain.Product) (map[string]any, error) {
	imagesJSON, err := json.Marshal(p.Images)
	if err != nil {
		return nil, NewStoreError(op, "product", p.ReferenceID, "failed to serialize images", ErrInvalidData)
	}
	specsJSON, err := json.Marshal(p.Specs)
	if err != nil {
		return nil, NewStoreError(op, "product", p.ReferenceID, "failed to serialize specs", ErrInvalidData)
	}
	return map[string]any{
		"reference_id":     p.ReferenceID,
		"category_id":      p.CategoryID,
		"name":             p.Name,
		"slug":             p.Slug,
		"sku":              p.SKU,
		"brand":            p.Brand,
		"description":      p.Description,
		"price":            p.Price,
		"compare_at_price": p.CompareAtPrice,
		"stock":            p.Stock,
		"images":           string(imagesJSON),
		"specs":            string(specsJSON),
		"featured":         p.Featured,
		"active":           p.Active,
		"created_at":       formatTime(p.CreatedAt),
		"updated_at":       formatTime(p.UpdatedAt),
	}, nil
}

// rowToProduct converts a database row to a domain.Product.
func rowToProduct(row *productRow) (*domain.Product, error) {
	var images []string
	if row.Images != nil && *row.Images != "" && *row.Images != "null" {
		if err := json.Unmarshal([]byte(*row.Images), &images); err != nil {
			return nil, NewStoreError("rowToProduct", "product", row.ReferenceID, "failed to parse images", ErrInvalidData)
		}
	}

	var specs map[string]string
	if row.Specs != nil && *row.Specs != "" && *row.Specs != "null" {
		if err := json.Unmarshal([]byte(*row.Specs), &specs); err != nil {
			return nil, NewStoreError("rowToProduct", "product", row.ReferenceID, "failed to parse specs", ErrInvalidData)
		}
	}

	return &domain.Product{
		ID:             row.ID,
		ReferenceID:    row.ReferenceID,
		CategoryID:     row.CategoryID,
		Name:           row.Name,
		Slug:           row.Slug,
		SKU:            row.SKU,
		Brand:          row.Brand,
		Description:    row.Description,
		Price:          row.Price,
		CompareAtPrice: row.CompareAtPrice,
		Stock:          row.Stock,
		Images:         images,
		Specs:          specs,
		Featured:       row.Featured,
		Active:         row.Active,
		CreatedAt:      parseTime(row.CreatedAt),
		UpdatedAt:      parseTime(row.UpdatedAt),
	}, nil
}

func rowsToProducts(rows []productRow) ([]domain.Product, error) {
	products := make([]domain.Product, 0, len(rows))
	for i := range rows {
		p, err := rowToProduct(&rows[i])
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, nil
}

// =============================================================================
// Product Functions
// =============================================================================

func productWriteError(op string, p *domain.Product, err error) error {
	switch {
	case isUniqueViolation(err, "products.reference_id"):
		return NewStoreError(op, "product", p.ReferenceID, "product with this ID already exists", ErrDuplicateID)
	case isUniqueViolation(err, "products.slug"):
		return NewStoreError(op, "product", p.ReferenceID, "product with this slug already exists", ErrDuplicateSlug)
	case isUniqueViolation(err, "products.sku"):
		return NewStoreError(op, "product", p.ReferenceID, "product with this SKU already exists", ErrDuplicateSKU)
	case isForeignKeyViolation(err):
		return NewStoreError(op, "product", p.ReferenceID, "category does not exist", ErrForeignKey)
	default:
		return NewStoreError(op, "product", p.ReferenceID, err.Error(), err)
	}
}

func createProduct(ctx context.Context, exec executor, product *domain.Product) error {
	row, err := productToRow("CreateProduct", product)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO products (
			reference_id, category_id, name, slug, sku, brand, description,
			price, compare_at_price, stock, images, specs, featured, active,
			created_at, updated_at
		) VALUES (
			:reference_id, :category_id, :name, :slug, :sku, :brand, :description,
			:price, :compare_at_price, :stock, :images, :specs, :featured, :active,
			:created_at, :updated_at
		)`

	result, err := exec.NamedExecContext(ctx, query, row)
	if err != nil {
		return productWriteError("CreateProduct", product, err)
	}

	id, _ := result.LastInsertId()
	product.ID = int(id)
	return nil
}

func getProduct(ctx context.Context, exec executor, id string) (*domain.Product, error) {
	var row productRow
	err := exec.GetContext(ctx, &row, `SELECT * FROM products WHERE reference_id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("GetProduct", "product", id, "product not found", ErrNotFound)
		}
		return nil, NewStoreError("GetProduct", "product", id, err.Error(), err)
	}
	return rowToProduct(&row)
}

func getProductBySlug(ctx context.Context, exec executor, slug string) (*domain.Product, error) {
	var row productRow
	err := exec.GetContext(ctx, &row, `SELECT * FROM products WHERE slug = ?`, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("GetProductBySlug", "product", slug, "product not found", ErrNotFound)
		}
		return nil, NewStoreError("GetProductBySlug", "product", slug, err.Error(), err)
	}
	return rowToProduct(&row)
}

// getProductsByIDs returns the products that exist among ids. Missing IDs
// are silently skipped.
func getProductsByIDs(ctx context.Context, exec executor, ids []string) ([]domain.Product, error) {
	if len(ids) == 0 {
		return []domain.Product{}, nil
	}

	query, args, err := sqlx.In(`SELECT * FROM products WHERE reference_id IN (?)`, ids)
	if err != nil {
		return nil, NewStoreError("GetProductsByIDs", "product", "", err.Error(), err)
	}

	var rows []productRow
	if err := exec.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, NewStoreError("GetProductsByIDs", "product", "", err.Error(), err)
	}
	return rowsToProducts(rows)
}

func updateProduct(ctx context.Context, exec executor, product *domain.Product) error {
	row, err := productToRow("UpdateProduct", product)
	if err != nil {
		return err
	}

	query := `
		UPDATE products SET
			category_id = :category_id,
			name = :name,
			slug = :slug,
			sku = :sku,
			brand = :brand,
			description = :description,
			price = :price,
			compare_at_price = :compare_at_price,
			stock = :stock,
			images = :images,
			specs = :specs,
			featured = :featured,
			active = :active,
			updated_at = :updated_at
		WHERE reference_id = :reference_id`

	result, err := exec.NamedExecContext(ctx, query, row)
	if err != nil {
		return productWriteError("UpdateProduct", product, err)
	}
	return checkAffected(result, "UpdateProduct", "product", product.ReferenceID)
}

func deleteProduct(ctx context.Context, exec executor, id string) error {
	result, err := exec.ExecContext(ctx, `DELETE FROM products WHERE reference_id = ?`, id)
	if err != nil {
		return NewStoreError("DeleteProduct", "product", id, err.Error(), err)
	}
	return checkAffected(result, "DeleteProduct", "product", id)
}

func listProducts(ctx context.Context, exec executor, filter ProductFilter, opts ListOptions) ([]domain.Product, error) {
	opts = opts.Normalize()

	var where []string
	var args []any
	if filter.CategoryID != "" {
		where = append(where, "category_id = ?")
		args = append(args, filter.CategoryID)
	}
	if filter.Featured != nil {
		where = append(where, "featured = ?")
		args = append(args, *filter.Featured)
	}
	if filter.ActiveOnly {
		where = append(where, "active = 1")
	}

	query := `SELECT * FROM products`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY featured DESC, created_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, opts.Limit, opts.Offset)

	var rows []productRow
	if err := exec.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, NewStoreError("ListProducts", "product", "", err.Error(), err)
	}
	return rowsToProducts(rows)
}

// searchProducts returns active products where any term appears in the name,
// SKU, brand or description. Ranking is left to the caller.
func searchProducts(ctx context.Context, exec executor, terms []string, limit int) ([]domain.Product, error) {
	if len(terms) == 0 {
		return []domain.Product{}, nil
	}
	if limit <= 0 || limit > 1000 {
		limit = 200
	}

	clauses := make([]string, 0, len(terms))
	args := make([]any, 0, len(terms)*4+1)
	for _, term := range terms {
		clauses = append(clauses, `(name LIKE ? ESCAPE '\' OR sku LIKE ? ESCAPE '\' OR brand LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\')`)
		pattern := "%" + escapeLike(term) + "%"
		args = append(args, pattern, pattern, pattern, pattern)
	}
	args = append(args, limit)

	query := `SELECT * FROM products WHERE active = 1 AND (` + strings.Join(clauses, " OR ") + `) ORDER BY id ASC LIMIT ?`

	var rows []productRow
	if err := exec.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, NewStoreError("SearchProducts", "product", "", err.Error(), err)
	}
	return rowsToProducts(rows)
}

// decrementStock removes quantity units from a product's stock. It fails with
// ErrConflict rather than letting stock go negative.
func decrementStock(ctx context.Context, exec executor, id string, quantity int) error {
	if quantity <= 0 {
		return NewStoreError("DecrementStock", "product", id, "quantity must be positive", ErrInvalidData)
	}

	result, err := exec.ExecContext(ctx,
		`UPDATE products SET stock = stock - ? WHERE reference_id = ? AND stock >= ?`,
		quantity, id, quantity)
	if err != nil {
		return NewStoreError("DecrementStock", "product", id, err.Error(), err)
	}

	if n, _ := result.RowsAffected(); n > 0 {
		return nil
	}
	if _, err := getProduct(ctx, exec, id); err != nil {
		return err
	}
	return NewStoreError("DecrementStock", "product", id, "insufficient stock", ErrConflict)
}
