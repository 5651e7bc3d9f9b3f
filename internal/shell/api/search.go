package api

import (
	"net/http"
	"strconv"

	"github.com/artpar/solarshop/internal/core/domain"
	"github.com/artpar/solarshop/internal/core/search"
	"github.com/artpar/solarshop/internal/shell/store"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 50

	// searchCandidates caps how many store matches are ranked.
	searchCandidates = 200
)

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := search.ParseQuery(r.URL.Query().Get("q"))

	limit := defaultSearchLimit
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = min(l, maxSearchLimit)
	}

	resp := SearchResponse{
		Query:      q.Raw,
		Products:   []SearchHit{},
		Categories: []domain.Category{},
	}
	if q.Empty() {
		h.writeJSON(w, http.StatusOK, resp)
		return
	}

	candidates, err := h.store.SearchProducts(r.Context(), q.Terms, searchCandidates)
	if err != nil {
		h.writeStoreError(w, err, "product", "search")
		return
	}
	for _, res := range search.Limit(search.Rank(q, candidates), limit) {
		resp.Products = append(resp.Products, SearchHit{
			ProductResponse: h.productToResponse(res.Product),
			Score:           res.Score,
		})
	}

	categories, err := h.store.ListCategories(r.Context(), store.ListOptions{Limit: 1000})
	if err != nil {
		h.writeStoreError(w, err, "category", "list")
		return
	}
	if matched := search.MatchCategories(q, categories); matched != nil {
		resp.Categories = matched
	}

	h.writeJSON(w, http.StatusOK, resp)
}
