package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/artpar/solarshop/internal/core/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// =============================================================================
// Executor Interface - Shared by DB and Transaction
// =============================================================================

// executor abstracts database operations that can be performed on both
// a database connection and a transaction.
type executor interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// =============================================================================
// SQLiteStore
// =============================================================================

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore creates a new SQLite store and runs migrations.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	// Open database connection
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	db, err := sqlx.Open("sqlite3", dsn+sep+"_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, NewStoreError("NewSQLiteStore", "", "", "failed to open database", ErrConnectionFailed)
	}

	// SQLite allows one writer; a single connection also keeps ":memory:"
	// databases from splitting across the pool.
	db.SetMaxOpenConns(1)

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, NewStoreError("NewSQLiteStore", "", "", "failed to ping database", ErrConnectionFailed)
	}

	// Run migrations
	if err := runMigrations(db.DB); err != nil {
		db.Close()
		return nil, NewStoreError("NewSQLiteStore", "", "", err.Error(), ErrMigrationFailed)
	}

	return &SQLiteStore{db: db}, nil
}

// runMigrations runs database migrations using embedded SQL files.
func runMigrations(db *sql.DB) error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return NewStoreError("Ping", "", "", err.Error(), ErrConnectionFailed)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// =============================================================================
// Category Operations
// =============================================================================

func (s *SQLiteStore) CreateCategory(ctx context.Context, category *domain.Category) error {
	return createCategory(ctx, s.db, category)
}

func (s *SQLiteStore) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	return getCategory(ctx, s.db, id)
}

func (s *SQLiteStore) GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	return getCategoryBySlug(ctx, s.db, slug)
}

func (s *SQLiteStore) UpdateCategory(ctx context.Context, category *domain.Category) error {
	return updateCategory(ctx, s.db, category)
}

func (s *SQLiteStore) DeleteCategory(ctx context.Context, id string) error {
	return deleteCategory(ctx, s.db, id)
}

func (s *SQLiteStore) ListCategories(ctx context.Context, opts ListOptions) ([]domain.Category, error) {
	return listCategories(ctx, s.db, opts)
}

func (s *SQLiteStore) CountProductsByCategory(ctx context.Context, categoryID string) (int, error) {
	return countProductsByCategory(ctx, s.db, categoryID)
}

// =============================================================================
// Product Operations
// =============================================================================

func (s *SQLiteStore) CreateProduct(ctx context.Context, product *domain.Product) error {
	return createProduct(ctx, s.db, product)
}

func (s *SQLiteStore) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return getProduct(ctx, s.db, id)
}

func (s *SQLiteStore) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return getProductBySlug(ctx, s.db, slug)
}

func (s *SQLiteStore) GetProductsByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	return getProductsByIDs(ctx, s.db, ids)
}

func (s *SQLiteStore) UpdateProduct(ctx context.Context, product *domain.Product) error {
	return updateProduct(ctx, s.db, product)
}

func (s *SQLiteStore) DeleteProduct(ctx context.Context, id string) error {
	return deleteProduct(ctx, s.db, id)
}

func (s *SQLiteStore) ListProducts(ctx context.Context, filter ProductFilter, opts ListOptions) ([]domain.Product, error) {
	return listProducts(ctx, s.db, filter, opts)
}

func (s *SQLiteStore) SearchProducts(ctx context.Context, terms []string, limit int) ([]domain.Product, error) {
	return searchProducts(ctx, s.db, terms, limit)
}

func (s *SQLiteStore) DecrementStock(ctx context.Context, id string, quantity int) error {
	return decrementStock(ctx, s.db, id, quantity)
}

// =============================================================================
// Order Operations
// =============================================================================

func (s *SQLiteStore) CreateOrder(ctx context.Context, order *domain.Order) error {
	return createOrder(ctx, s.db, order)
}

func (s *SQLiteStore) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return getOrder(ctx, s.db, id)
}

func (s *SQLiteStore) UpdateOrderStatus(ctx context.Context, id string, from, to domain.OrderStatus, at time.Time) error {
	return updateOrderStatus(ctx, s.db, id, from, to, at)
}

func (s *SQLiteStore) DeleteOrder(ctx context.Context, id string) error {
	return deleteOrder(ctx, s.db, id)
}

func (s *SQLiteStore) ListOrders(ctx context.Context, filter OrderFilter, opts ListOptions) ([]domain.Order, error) {
	return listOrders(ctx, s.db, filter, opts)
}

func (s *SQLiteStore) ListUnnotifiedOrders(ctx context.Context, limit int) ([]domain.Order, error) {
	return listUnnotifiedOrders(ctx, s.db, limit)
}

func (s *SQLiteStore) MarkOrderNotified(ctx context.Context, id string, at time.Time) error {
	return markOrderNotified(ctx, s.db, id, at)
}

// =============================================================================
// Media Operations
// =============================================================================

func (s *SQLiteStore) CreateMedia(ctx context.Context, asset *domain.MediaAsset) error {
	return createMedia(ctx, s.db, asset)
}

func (s *SQLiteStore) GetMedia(ctx context.Context, id string) (*domain.MediaAsset, error) {
	return getMedia(ctx, s.db, id)
}

func (s *SQLiteStore) DeleteMedia(ctx context.Context, id string) error {
	return deleteMedia(ctx, s.db, id)
}

func (s *SQLiteStore) ListMedia(ctx context.Context, opts ListOptions) ([]domain.MediaAsset, error) {
	return listMedia(ctx, s.db, opts)
}

// =============================================================================
// FAQ Operations
// =============================================================================

func (s *SQLiteStore) CreateFAQ(ctx context.Context, faq *domain.FAQ) error {
	return createFAQ(ctx, s.db, faq)
}

func (s *SQLiteStore) GetFAQ(ctx context.Context, id string) (*domain.FAQ, error) {
	return getFAQ(ctx, s.db, id)
}

func (s *SQLiteStore) UpdateFAQ(ctx context.Context, faq *domain.FAQ) error {
	return updateFAQ(ctx, s.db, faq)
}

func (s *SQLiteStore) DeleteFAQ(ctx context.Context, id string) error {
	return deleteFAQ(ctx, s.db, id)
}

func (s *SQLiteStore) ListFAQs(ctx context.Context, publishedOnly bool, opts ListOptions) ([]domain.FAQ, error) {
	return listFAQs(ctx, s.db, publishedOnly, opts)
}

// =============================================================================
// Testimonial Operations
// =============================================================================

func (s *SQLiteStore) CreateTestimonial(ctx context.Context, t *domain.Testimonial) error {
	return createTestimonial(ctx, s.db, t)
}

func (s *SQLiteStore) GetTestimonial(ctx context.Context, id string) (*domain.Testimonial, error) {
	return getTestimonial(ctx, s.db, id)
}

func (s *SQLiteStore) UpdateTestimonial(ctx context.Context, t *domain.Testimonial) error {
	return updateTestimonial(ctx, s.db, t)
}

func (s *SQLiteStore) DeleteTestimonial(ctx context.Context, id string) error {
	return deleteTestimonial(ctx, s.db, id)
}

func (s *SQLiteStore) ListTestimonials(ctx context.Context, publishedOnly bool, opts ListOptions) ([]domain.Testimonial, error) {
	return listTestimonials(ctx, s.db, publishedOnly, opts)
}

// =============================================================================
// Transaction Support
// =============================================================================

func (s *SQLiteStore) WithTx(ctx context.Context, fn func(Store) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return NewStoreError("WithTx", "", "", "failed to begin transaction", ErrTxFailed)
	}

	txS := &txSQLiteStore{tx: tx}

	if err := fn(txS); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return NewStoreError("WithTx", "", "", fmt.Sprintf("rollback failed after error: %v", err), ErrTxFailed)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return NewStoreError("WithTx", "", "", "failed to commit transaction", ErrTxFailed)
	}

	return nil
}

// =============================================================================
// Transaction Store
// =============================================================================

// txSQLiteStore implements Store within a transaction.
type txSQLiteStore struct {
	tx *sqlx.Tx
}

func (s *txSQLiteStore) CreateCategory(ctx context.Context, category *domain.Category) error {
	return createCategory(ctx, s.tx, category)
}

func (s *txSQLiteStore) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	return getCategory(ctx, s.tx, id)
}

func (s *txSQLiteStore) GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	return getCategoryBySlug(ctx, s.tx, slug)
}

func (s *txSQLiteStore) UpdateCategory(ctx context.Context, category *domain.Category) error {
	return updateCategory(ctx, s.tx, category)
}

func (s *txSQLiteStore) DeleteCategory(ctx context.Context, id string) error {
	return deleteCategory(ctx, s.tx, id)
}

func (s *txSQLiteStore) ListCategories(ctx context.Context, opts ListOptions) ([]domain.Category, error) {
	return listCategories(ctx, s.tx, opts)
}

func (s *txSQLiteStore) CountProductsByCategory(ctx context.Context, categoryID string) (int, error) {
	return countProductsByCategory(ctx, s.tx, categoryID)
}

func (s *txSQLiteStore) CreateProduct(ctx context.Context, product *domain.Product) error {
	return createProduct(ctx, s.tx, product)
}

func (s *txSQLiteStore) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return getProduct(ctx, s.tx, id)
}

func (s *txSQLiteStore) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return getProductBySlug(ctx, s.tx, slug)
}

func (s *txSQLiteStore) GetProductsByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	return getProductsByIDs(ctx, s.tx, ids)
}

func (s *txSQLiteStore) UpdateProduct(ctx context.Context, product *domain.Product) error {
	return updateProduct(ctx, s.tx, product)
}

func (s *txSQLiteStore) DeleteProduct(ctx context.Context, id string) error {
	return deleteProduct(ctx, s.tx, id)
}

func (s *txSQLiteStore) ListProducts(ctx context.Context, filter ProductFilter, opts ListOptions) ([]domain.Product, error) {
	return listProducts(ctx, s.tx, filter, opts)
}

func (s *txSQLiteStore) SearchProducts(ctx context.Context, terms []string, limit int) ([]domain.Product, error) {
	return searchProducts(ctx, s.tx, terms, limit)
}

func (s *txSQLiteStore) DecrementStock(ctx context.Context, id string, quantity int) error {
	return decrementStock(ctx, s.tx, id, quantity)
}

func (s *txSQLiteStore) CreateOrder(ctx context.Context, order *domain.Order) error {
	return createOrder(ctx, s.tx, order)
}

func (s *txSQLiteStore) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return getOrder(ctx, s.tx, id)
}

func (s *txSQLiteStore) UpdateOrderStatus(ctx context.Context, id string, from, to domain.OrderStatus, at time.Time) error {
	return updateOrderStatus(ctx, s.tx, id, from, to, at)
}

func (s *txSQLiteStore) DeleteOrder(ctx context.Context, id string) error {
	return deleteOrder(ctx, s.tx, id)
}

func (s *txSQLiteStore) ListOrders(ctx context.Context, filter OrderFilter, opts ListOptions) ([]domain.Order, error) {
	return listOrders(ctx, s.tx, filter, opts)
}

func (s *txSQLiteStore) ListUnnotifiedOrders(ctx context.Context, limit int) ([]domain.Order, error) {
	return listUnnotifiedOrders(ctx, s.tx, limit)
}

func (s *txSQLiteStore) MarkOrderNotified(ctx context.Context, id string, at time.Time) error {
	return markOrderNotified(ctx, s.tx, id, at)
}

func (s *txSQLiteStore) CreateMedia(ctx context.Context, asset *domain.MediaAsset) error {
	return createMedia(ctx, s.tx, asset)
}

func (s *txSQLiteStore) GetMedia(ctx context.Context, id string) (*domain.MediaAsset, error) {
	return getMedia(ctx, s.tx, id)
}

func (s *txSQLiteStore) DeleteMedia(ctx context.Context, id string) error {
	return deleteMedia(ctx, s.tx, id)
}

func (s *txSQLiteStore) ListMedia(ctx context.Context, opts ListOptions) ([]domain.MediaAsset, error) {
	return listMedia(ctx, s.tx, opts)
}

func (s *txSQLiteStore) CreateFAQ(ctx context.Context, faq *domain.FAQ) error {
	return createFAQ(ctx, s.tx, faq)
}

func (s *txSQLiteStore) GetFAQ(ctx context.Context, id string) (*domain.FAQ, error) {
	return getFAQ(ctx, s.tx, id)
}

func (s *txSQLiteStore) UpdateFAQ(ctx context.Context, faq *domain.FAQ) error {
	return updateFAQ(ctx, s.tx, faq)
}

func (s *txSQLiteStore) DeleteFAQ(ctx context.Context, id string) error {
	return deleteFAQ(ctx, s.tx, id)
}

func (s *txSQLiteStore) ListFAQs(ctx context.Context, publishedOnly bool, opts ListOptions) ([]domain.FAQ, error) {
	return listFAQs(ctx, s.tx, publishedOnly, opts)
}

func (s *txSQLiteStore) CreateTestimonial(ctx context.Context, t *domain.Testimonial) error {
	return createTestimonial(ctx, s.tx, t)
}

func (s *txSQLiteStore) GetTestimonial(ctx context.Context, id string) (*domain.Testimonial, error) {
	return getTestimonial(ctx, s.tx, id)
}

func (s *txSQLiteStore) UpdateTestimonial(ctx context.Context, t *domain.Testimonial) error {
	return updateTestimonial(ctx, s.tx, t)
}

func (s *txSQLiteStore) DeleteTestimonial(ctx context.Context, id string) error {
	return deleteTestimonial(ctx, s.tx, id)
}

func (s *txSQLiteStore) ListTestimonials(ctx context.Context, publishedOnly bool, opts ListOptions) ([]domain.Testimonial, error) {
	return listTestimonials(ctx, s.tx, publishedOnly, opts)
}

func (s *txSQLiteStore) WithTx(ctx context.Context, fn func(Store) error) error {
	// Already in a transaction, just run the function
	return fn(s)
}

func (s *txSQLiteStore) Ping(ctx context.Context) error {
	return nil
}

func (s *txSQLiteStore) Close() error {
	// No-op for tx store
	return nil
}

// =============================================================================
// Shared Helpers
// =============================================================================

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

func parseOptionalTime(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return nil
	}
	return &t
}

func isUniqueViolation(err error, column string) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed: "+column)
}

func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// checkAffected maps a zero-row result to ErrNotFound.
func checkAffected(result sql.Result, op, entity, id string) error {
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return NewStoreError(op, entity, id, entity+" not found", ErrNotFound)
	}
	return nil
}

// escapeLike escapes LIKE wildcards so terms match literally.
func escapeLike(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(term)
}
