// Package api provides HTTP handlers for the solarshop storefront and
// back office.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/artpar/solarshop/internal/core/auth"
	"github.com/artpar/solarshop/internal/shell/api/middleware"
	"github.com/artpar/solarshop/internal/shell/imagehost"
	"github.com/artpar/solarshop/internal/shell/media"
	"github.com/artpar/solarshop/internal/shell/metrics"
	"github.com/artpar/solarshop/internal/shell/store"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// maxJSONBody caps JSON request bodies.
const maxJSONBody = 1 << 20

// =============================================================================
// Handler
// =============================================================================

// ShopConfig holds storefront settings used when rendering responses.
type ShopConfig struct {
	Currency         string
	WhatsAppNumber   string
	ConfirmationPath string
}

// Config holds the dependencies of the API handler.
type Config struct {
	Store    store.Store
	Uploader *media.Uploader

	// MediaHandler serves local uploads under MediaPrefix. Nil when media
	// lives in a bucket.
	MediaHandler http.Handler
	MediaPrefix  string

	ImageHost imagehost.Client
	Metrics   *metrics.Recorder
	Auth      *middleware.AuthMiddleware
	Logger    *slog.Logger
	Shop      ShopConfig

	// FrontendDir is served as a single-page app when set.
	FrontendDir string
}

// Handler provides HTTP handlers for the API.
type Handler struct {
	store        store.Store
	uploader     *media.Uploader
	mediaHandler http.Handler
	mediaPrefix  string
	imageHost    imagehost.Client
	metrics      *metrics.Recorder
	auth         *middleware.AuthMiddleware
	logger       *slog.Logger
	shop         ShopConfig
	frontendDir  string
	now          func() time.Time
}

// NewHandler creates a new API handler.
func NewHandler(cfg Config) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.ImageHost == nil {
		cfg.ImageHost = imagehost.NewNoopClient()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewRecorder()
	}
	if cfg.Auth == nil {
		cfg.Auth = middleware.NewAuthMiddleware(middleware.AuthConfig{Logger: cfg.Logger})
	}
	if cfg.MediaPrefix == "" {
		cfg.MediaPrefix = "/media"
	}
	if cfg.Shop.ConfirmationPath == "" {
		cfg.Shop.ConfirmationPath = "/order-confirmation"
	}

	return &Handler{
		store:        cfg.Store,
		uploader:     cfg.Uploader,
		mediaHandler: cfg.MediaHandler,
		mediaPrefix:  cfg.MediaPrefix,
		imageHost:    cfg.ImageHost,
		metrics:      cfg.Metrics,
		auth:         cfg.Auth,
		logger:       cfg.Logger,
		shop:         cfg.Shop,
		frontendDir:  cfg.FrontendDir,
		now:          time.Now,
	}
}

// Routes returns the router with all routes configured.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(h.requestIDHeader)
	r.Use(h.metrics.Middleware)
	r.Use(h.auth.Handler)

	// Operational endpoints
	r.Get("/health", h.handleHealth)
	r.Get("/ready", h.handleReady)
	r.Handle("/metrics", h.metrics.Handler())
	r.Get("/openapi.json", h.openAPI().Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(h.jsonContentType)

		// Storefront
		r.Get("/categories", h.handleListCategories)
		r.Get("/categories/{id}", h.handleGetCategory)
		r.Get("/products", h.handleListProducts)
		r.Get("/products/{id}", h.handleGetProduct)
		r.Get("/search", h.handleSearch)
		r.Get("/faqs", h.handleListFAQs)
		r.Get("/testimonials", h.handleListTestimonials)
		r.Post("/cart/quote", h.handleQuote)
		r.Post("/checkout", h.handleCheckout)
		r.Post("/upload", h.handleUpload)

		// Back office
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(h.logger))

			r.Post("/categories", h.handleCreateCategory)
			r.Put("/categories/{id}", h.handleUpdateCategory)
			r.Delete("/categories/{id}", h.handleDeleteCategory)

			r.Post("/products", h.handleCreateProduct)
			r.Put("/products/{id}", h.handleUpdateProduct)
			r.Delete("/products/{id}", h.handleDeleteProduct)

			r.Post("/faqs", h.handleCreateFAQ)
			r.Put("/faqs/{id}", h.handleUpdateFAQ)
			r.Delete("/faqs/{id}", h.handleDeleteFAQ)

			r.Post("/testimonials", h.handleCreateTestimonial)
			r.Put("/testimonials/{id}", h.handleUpdateTestimonial)
			r.Delete("/testimonials/{id}", h.handleDeleteTestimonial)

			r.Get("/orders", h.handleListOrders)
			r.Post("/orders", h.handleCreateOrder)
			r.Get("/orders/{id}", h.handleGetOrder)
			r.Patch("/orders/{id}/status", h.handleUpdateOrderStatus)
			r.Delete("/orders/{id}", h.handleDeleteOrder)

			r.Get("/media", h.handleListMedia)
			r.Delete("/media/{id}", h.handleDeleteMedia)

			// JSON:API back-office resources
			r.Mount("/v1", h.jsonAPIHandler())
		})
	})

	if h.mediaHandler != nil {
		r.Handle(h.mediaPrefix+"/*", http.StripPrefix(h.mediaPrefix, h.mediaHandler))
	}

	if h.frontendDir != "" {
		r.Handle("/*", WebUIHandler(h.frontendDir))
	}

	return r
}

// =============================================================================
// Middleware
// =============================================================================

// jsonContentType sets Content-Type header to application/json.
func (h *Handler) jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// requestIDHeader copies the request ID to the response header.
func (h *Handler) requestIDHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reqID := chimw.GetReqID(r.Context()); reqID != "" {
			w.Header().Set("X-Request-ID", reqID)
		}
		next.ServeHTTP(w, r)
	})
}

// =============================================================================
// Health Handlers
// =============================================================================

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	h.writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy"})
}

func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	checks := make(map[string]string)

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.logger.Warn("readiness check failed", "check", "database", "error", err)
		checks["database"] = "failed"
		h.writeJSON(w, http.StatusServiceUnavailable, ReadyResponse{
			Status: "not_ready",
			Checks: checks,
		})
		return
	}
	checks["database"] = "ok"

	h.writeJSON(w, http.StatusOK, ReadyResponse{
		Status: "ready",
		Checks: checks,
	})
}

// =============================================================================
// Helpers
// =============================================================================

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode JSON", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message, code string) {
	h.writeJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// decodeJSON reads a JSON body, rejecting unknown fields and oversized bodies.
func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON", "validation_error")
		return false
	}
	return true
}

// writeStoreError maps a store error to a response.
func (h *Handler) writeStoreError(w http.ResponseWriter, err error, entity, op string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		h.writeError(w, http.StatusNotFound, entity+" not found", entity+"_not_found")
	case errors.Is(err, store.ErrDuplicateSlug):
		h.writeError(w, http.StatusConflict, entity+" with this slug already exists", "duplicate_slug")
	case errors.Is(err, store.ErrDuplicateSKU):
		h.writeError(w, http.StatusConflict, "product with this SKU already exists", "duplicate_sku")
	case errors.Is(err, store.ErrDuplicateID):
		h.writeError(w, http.StatusConflict, entity+" already exists", "duplicate_id")
	case errors.Is(err, store.ErrForeignKey):
		h.writeError(w, http.StatusUnprocessableEntity, "category does not exist", "category_not_found")
	case errors.Is(err, store.ErrConflict):
		h.writeError(w, http.StatusConflict, err.Error(), "conflict")
	default:
		h.logger.Error("failed to "+op+" "+entity, "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to "+op+" "+entity, "internal_error")
	}
}

// requirePermission writes 403 and returns false when allowed is false.
func (h *Handler) requirePermission(w http.ResponseWriter, allowed bool) bool {
	if !allowed {
		h.writeError(w, http.StatusForbidden, "not authorized", "forbidden")
	}
	return allowed
}

func authOf(r *http.Request) auth.Context {
	return auth.FromContext(r.Context())
}

// listOptions parses limit and offset query parameters.
func listOptions(r *http.Request) store.ListOptions {
	opts := store.DefaultListOptions()

	if limit := r.URL.Query().Get("limit"); limit != "" {
		if l, err := strconv.Atoi(limit); err == nil {
			opts.Limit = l
		}
	}
	if offset := r.URL.Query().Get("offset"); offset != "" {
		if o, err := strconv.Atoi(offset); err == nil {
			opts.Offset = o
		}
	}
	return opts.Normalize()
}

// isNotFound checks if an error is a not found error.
func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
