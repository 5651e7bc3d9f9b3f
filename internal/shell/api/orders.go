package api

import (
	"errors"
	"net/http"

	"github.com/artpar/solarshop/internal/core/auth"
	"github.com/artpar/solarshop/internal/core/domain"
	"github.com/artpar/solarshop/internal/core/validation"
	"github.com/artpar/solarshop/internal/shell/store"
	"github.com/go-chi/chi/v5"
)

// =============================================================================
// Order Handlers
// =============================================================================

func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	if !h.requirePermission(w, auth.CanViewOrders(authOf(r))) {
		return
	}

	opts := listOptions(r)
	var filter store.OrderFilter
	if s := r.URL.Query().Get("status"); s != "" {
		status := domain.OrderStatus(s)
		if !status.IsValid() {
			h.writeError(w, http.StatusBadRequest, "unknown order status: "+s, "validation_error")
			return
		}
		filter.Status = status
	}

	orders, err := h.store.ListOrders(r.Context(), filter, opts)
	if err != nil {
		h.writeStoreError(w, err, "order", "list")
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}

	h.writeJSON(w, http.StatusOK, ListResponse{Data: orders, Count: len(orders), Limit: opts.Limit, Offset: opts.Offset})
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	if !h.requirePermission(w, auth.CanViewOrders(authOf(r))) {
		return
	}

	order, err := h.store.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeStoreError(w, err, "order", "get")
		return
	}
	h.writeJSON(w, http.StatusOK, order)
}

func (h *Handler) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	to := domain.OrderStatus(req.Status)
	if !to.IsValid() {
		h.writeError(w, http.StatusBadRequest, "unknown order status: "+req.Status, "validation_error")
		return
	}
	if !h.requirePermission(w, auth.CanTransitionOrder(authOf(r), to)) {
		return
	}

	order, err := h.store.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeStoreError(w, err, "order", "get")
		return
	}

	from := order.Status
	if err := order.Transition(to); err != nil {
		h.writeError(w, http.StatusConflict, "cannot move order from "+string(from)+" to "+string(to), "invalid_transition")
		return
	}
	order.UpdatedAt = h.now().UTC()

	if err := h.store.UpdateOrderStatus(r.Context(), order.ReferenceID, from, to, order.UpdatedAt); err != nil {
		if errors.Is(err, store.ErrConflict) {
			h.writeError(w, http.StatusConflict, "order status changed, reload and retry", "conflict")
			return
		}
		h.writeStoreError(w, err, "order", "update")
		return
	}

	h.logger.Info("order status changed",
		"order_id", order.ReferenceID,
		"from", from,
		"to", to,
		"by", authOf(r).Subject,
	)

	h.writeJSON(w, http.StatusOK, OrderStatusResponse{
		ID:        order.ReferenceID,
		Status:    string(order.Status),
		UpdatedAt: order.UpdatedAt,
	})
}

func (h *Handler) handleDeleteOrder(w http.ResponseWriter, r *http.Request) {
	if !h.requirePermission(w, auth.CanDeleteOrder(authOf(r))) {
		return
	}

	order, err := h.store.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeStoreError(w, err, "order", "get")
		return
	}

	if allowed, reason := validation.CanDeleteOrder(order.Status); !allowed {
		h.writeError(w, http.StatusConflict, reason, "order_active")
		return
	}

	if err := h.store.DeleteOrder(r.Context(), order.ReferenceID); err != nil {
		h.writeStoreError(w, err, "order", "delete")
		return
	}

	h.logger.Info("order deleted", "order_id", order.ReferenceID, "by", authOf(r).Subject)
	w.WriteHeader(http.StatusNoContent)
}
