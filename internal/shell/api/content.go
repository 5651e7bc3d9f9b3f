package api

import (
	"net/http"

	"github.com/artpar/solarshop/internal/core/auth"
	"github.com/artpar/solarshop/internal/core/domain"
	"github.com/artpar/solarshop/internal/core/validation"
	"github.com/go-chi/chi/v5"
)

// publishedOnly hides drafts unless a catalog manager asks for all entries.
func publishedOnly(r *http.Request) bool {
	return !(r.URL.Query().Get("all") == "true" && auth.CanManageCatalog(authOf(r)))
}

// =============================================================================
// FAQ Handlers
// =============================================================================

func (h *Handler) handleListFAQs(w http.ResponseWriter, r *http.Request) {
	opts := listOptions(r)

	faqs, err := h.store.ListFAQs(r.Context(), publishedOnly(r), opts)
	if err != nil {
		h.writeStoreError(w, err, "faq", "list")
		return
	}
	if faqs == nil {
		faqs = []domain.FAQ{}
	}

	h.writeJSON(w, http.StatusOK, ListResponse{Data: faqs, Count: len(faqs), Limit: opts.Limit, Offset: opts.Offset})
}

func (h *Handler) handleCreateFAQ(w http.ResponseWriter, r *http.Request) {
	if !h.requirePermission(w, auth.CanManageCatalog(authOf(r))) {
		return
	}

	var req FAQRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if field, msg := validation.ValidateFAQFields(req.Question, req.Answer); field != "" {
		h.writeError(w, http.StatusBadRequest, msg, "validation_error")
		return
	}

	faq, err := domain.NewFAQ(req.Question, req.Answer)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error(), "validation_error")
		return
	}
	if req.SortOrder != nil {
		faq.SortOrder = *req.SortOrder
	}
	if req.Published != nil {
		faq.Published = *req.Published
	}

	if err := h.store.CreateFAQ(r.Context(), faq); err != nil {
		h.writeStoreError(w, err, "faq", "create")
		return
	}
	h.writeJSON(w, http.StatusCreated, faq)
}

func (h *Handler) handleUpdateFAQ(w http.ResponseWriter, r *http.Request) {
	if !h.requirePermission(w, auth.CanManageCatalog(authOf(r))) {
		return
	}

	faq, err := h.store.GetFAQ(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeStoreError(w, err, "faq", "get")
		return
	}

	var req FAQRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if req.Question != "" {
		faq.Question = req.Question
	}
	if req.Answer != "" {
		faq.Answer = req.Answer
	}
	if req.SortOrder != nil {
		faq.SortOrder = *req.SortOrder
	}
	if req.Published != nil {
		faq.Published = *req.Published
	}
	faq.UpdatedAt = h.now().UTC()

	if err := h.store.UpdateFAQ(r.Context(), faq); err != nil {
		h.writeStoreError(w, err, "faq", "update")
		return
	}
	h.writeJSON(w, http.StatusOK, faq)
}

func (h *Handler) handleDeleteFAQ(w http.ResponseWriter, r *http.Request) {
	if !h.requirePermission(w, auth.CanManageCatalog(authOf(r))) {
		return
	}
	if err := h.store.DeleteFAQ(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeStoreError(w, err, "faq", "delete")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Testimonial Handlers
// =============================================================================

func (h *Handler) handleListTestimonials(w http.ResponseWriter, r *http.Request) {
	opts := listOptions(r)

	testimonials, err := h.store.ListTestimonials(r.Context(), publishedOnly(r), opts)
	if err != nil {
		h.writeStoreError(w, err, "testimonial", "list")
		return
	}
	if testimonials == nil {
		testimonials = []domain.Testimonial{}
	}

	h.writeJSON(w, http.StatusOK, ListResponse{Data: testimonials, Count: len(testimonials), Limit: opts.Limit, Offset: opts.Offset})
}

func (h *Handler) handleCreateTestimonial(w http.ResponseWriter, r *http.Request) {
	if !h.requirePermission(w, auth.CanManageCatalog(authOf(r))) {
		return
	}

	var req TestimonialRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if field, msg := validation.ValidateTestimonialFields(req.Author, req.Quote, req.Rating); field != "" {
		h.writeError(w, http.StatusBadRequest, msg, "validation_error")
		return
	}

	t, err := domain.NewTestimonial(req.Author, req.Quote, req.Rating)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error(), "validation_error")
		return
	}
	t.Location = req.Location
	if req.Published != nil {
		t.Published = *req.Published
	}

	if err := h.store.CreateTestimonial(r.Context(), t); err != nil {
		h.writeStoreError(w, err, "testimonial", "create")
		return
	}
	h.writeJSON(w, http.StatusCreated, t)
}

func (h *Handler) handleUpdateTestimonial(w http.ResponseWriter, r *http.Request) {
	if !h.requirePermission(w, auth.CanManageCatalog(authOf(r))) {
		return
	}

	t, err := h.store.GetTestimonial(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeStoreError(w, err, "testimonial", "get")
		return
	}

	var req TestimonialRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if req.Author != "" {
		t.Author = req.Author
	}
	if req.Location != "" {
		t.Location = req.Location
	}
	if req.Quote != "" {
		t.Quote = req.Quote
	}
	if req.Rating != 0 {
		if err := domain.ValidateRating(req.Rating); err != nil {
			h.writeError(w, http.StatusBadRequest, err.Error(), "validation_error")
			return
		}
		t.Rating = req.Rating
	}
	if req.Published != nil {
		t.Published = *req.Published
	}
	t.UpdatedAt = h.now().UTC()

	if err := h.store.UpdateTestimonial(r.Context(), t); err != nil {
		h.writeStoreError(w, err, "testimonial", "update")
		return
	}
	h.writeJSON(w, http.StatusOK, t)
}

func (h *Handler) handleDeleteTestimonial(w http.ResponseWriter, r *http.Request) {
	if !h.requirePermission(w, auth.CanManageCatalog(authOf(r))) {
		return
	}
	if err := h.store.DeleteTestimonial(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeStoreError(w, err, "testimonial", "delete")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
