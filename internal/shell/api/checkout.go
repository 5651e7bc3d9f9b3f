package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/artpar/solarshop/internal/core/auth"
	"github.com/artpar/solarshop/internal/core/checkout"
	"github.com/artpar/solarshop/internal/core/domain"
	"github.com/artpar/solarshop/internal/shell/store"
)

// =============================================================================
// Cart & Checkout Handlers
// =============================================================================

func (h *Handler) handleQuote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	cart := checkout.Aggregate(checkout.Cart{Lines: req.Items})
	lookup, err := h.productLookup(r.Context(), cart)
	if err != nil {
		h.writeStoreError(w, err, "product", "list")
		return
	}

	quote := checkout.PriceCart(cart, lookup)
	resp := QuoteResponse{
		Items:      quote.Items,
		Total:      quote.Total,
		TotalLabel: domain.FormatPrice(h.shop.Currency, quote.Total),
	}
	for _, issue := range quote.Issues {
		resp.Issues = append(resp.Issues, QuoteLineIssue{
			ProductID: issue.ProductID,
			Reason:    lineReason(issue.Err),
		})
	}

	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	h.placeOrder(w, r, req, "checkout")
}

// handleCreateOrder records an order taken by staff (phone, walk-in). It
// goes through the same pricing and stock path as the storefront checkout.
func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	if !h.requirePermission(w, auth.CanCreateOrder(authOf(r))) {
		return
	}

	var req CheckoutRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	h.placeOrder(w, r, req, "back_office")
}

// placeOrder prices the cart from the catalog, persists the order and
// decrements stock in one transaction.
func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request, req CheckoutRequest, source string) {
	ctx := r.Context()

	cart := checkout.Aggregate(checkout.Cart{Lines: req.Items})
	lookup, err := h.productLookup(ctx, cart)
	if err != nil {
		h.writeStoreError(w, err, "product", "list")
		return
	}

	order, err := checkout.BuildOrder(req.Form, cart, lookup)
	if err != nil {
		h.writeCheckoutError(w, err)
		return
	}
	order.PaymentProofURL = req.PaymentProofURL

	err = h.store.WithTx(ctx, func(tx store.Store) error {
		if err := tx.CreateOrder(ctx, order); err != nil {
			return err
		}
		for _, item := range order.Items {
			if err := tx.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			h.writeError(w, http.StatusConflict, "a product in the cart ran out of stock", "insufficient_stock")
			return
		}
		h.writeStoreError(w, err, "order", "create")
		return
	}

	h.metrics.ObserveOrder(string(order.PaymentMethod), order.Total)
	h.logger.Info("order placed",
		"order_id", order.ReferenceID,
		"total", order.Total,
		"items", order.ItemCount(),
		"payment_method", order.PaymentMethod,
		"source", source,
	)

	h.writeJSON(w, http.StatusCreated, checkout.NewResult(order, h.shop.ConfirmationPath, h.shop.WhatsAppNumber, h.shop.Currency))
}

// productLookup loads every product in the cart with one query.
func (h *Handler) productLookup(ctx context.Context, cart checkout.Cart) (checkout.ProductLookup, error) {
	ids := cart.ProductIDs()
	byID := make(map[string]*domain.Product, len(ids))
	if len(ids) > 0 {
		products, err := h.store.GetProductsByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for i := range products {
			byID[products[i].ReferenceID] = &products[i]
		}
	}
	return func(id string) (*domain.Product, bool) {
		p, ok := byID[id]
		return p, ok
	}, nil
}

func (h *Handler) writeCheckoutError(w http.ResponseWriter, err error) {
	var fieldErrs checkout.FieldErrors
	var lineErr *checkout.LineError

	switch {
	case errors.As(err, &fieldErrs):
		h.writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:  "please correct the highlighted fields",
			Code:   "validation_error",
			Fields: fieldErrs,
		})
	case errors.Is(err, checkout.ErrCartEmpty):
		h.writeError(w, http.StatusBadRequest, err.Error(), "cart_empty")
	case errors.As(err, &lineErr):
		h.writeError(w, http.StatusConflict, lineErr.Error(), lineReason(lineErr.Err))
	case errors.Is(err, domain.ErrPaymentMethod), errors.Is(err, domain.ErrQuantityInvalid):
		h.writeError(w, http.StatusBadRequest, err.Error(), "validation_error")
	default:
		h.logger.Error("failed to build order", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to create order", "internal_error")
	}
}

// lineReason maps a cart line error to a stable code.
func lineReason(err error) string {
	switch {
	case errors.Is(err, checkout.ErrUnknownProduct):
		return "unknown_product"
	case errors.Is(err, checkout.ErrUnavailable):
		return "unavailable"
	case errors.Is(err, checkout.ErrInsufficientStock):
		return "insufficient_stock"
	default:
		return "invalid_line"
	}
}
