package resources

import (
	"errors"
	"net/http"
	"time"

	"github.com/artpar/solarshop/internal/core/auth"
	"github.com/artpar/solarshop/internal/core/domain"
	"github.com/artpar/solarshop/internal/core/validation"
	"github.com/artpar/solarshop/internal/shell/store"
	"github.com/manyminds/api2go"
)

// =============================================================================
// Order JSON:API Model
// =============================================================================

// Order wraps domain.Order to implement JSON:API interfaces.
type Order struct {
	ID              string            `json:"-"`
	Customer        domain.Customer   `json:"customer"`
	Items           []domain.LineItem `json:"items"`
	Total           int64             `json:"total"`
	Status          string            `json:"status"`
	PaymentMethod   string            `json:"payment_method"`
	PaymentProofURL string            `json:"payment_proof_url,omitempty"`
	Notes           string            `json:"notes,omitempty"`
	NotifiedAt      *time.Time        `json:"notified_at,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// GetID returns the order ID for JSON:API.
func (o Order) GetID() string {
	return o.ID
}

// SetID sets the order ID for JSON:API.
func (o *Order) SetID(id string) error {
	o.ID = id
	return nil
}

// GetName returns the JSON:API resource type name.
func (o Order) GetName() string {
	return "orders"
}

// OrderFromDomain converts a domain.Order to a JSON:API Order.
func OrderFromDomain(o *domain.Order) Order {
	return Order{
		ID:              o.ReferenceID,
		Customer:        o.Customer,
		Items:           o.Items,
		Total:           o.Total,
		Status:          string(o.Status),
		PaymentMethod:   string(o.PaymentMethod),
		PaymentProofURL: o.PaymentProofURL,
		Notes:           o.Notes,
		NotifiedAt:      o.NotifiedAt,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

// =============================================================================
// OrderResource - CRUD Operations
// =============================================================================

// OrderResource implements the api2go resource interface for orders.
// Orders are placed through checkout; this resource reads them and moves
// them through their status lifecycle.
type OrderResource struct {
	Store store.Store
	now   func() time.Time
}

// NewOrderResource creates a new order resource handler.
func NewOrderResource(s store.Store) *OrderResource {
	return &OrderResource{Store: s, now: time.Now}
}

// FindAll returns orders, newest first.
// GET /api/v1/orders?filter[status]=
// Auth: admin or staff
func (r OrderResource) FindAll(req api2go.Request) (api2go.Responder, error) {
	ctx := req.PlainRequest.Context()
	if !auth.CanViewOrders(auth.FromContext(ctx)) {
		return httpError(http.StatusForbidden, "Not authorized to view orders")
	}

	opts := listOptions(req)
	filter := store.OrderFilter{Status: domain.OrderStatus(queryParam(req, "filter[status]"))}
	if filter.Status != "" && !filter.Status.IsValid() {
		return httpError(http.StatusBadRequest, "unknown order status")
	}

	orders, err := r.Store.ListOrders(ctx, filter, opts)
	if err != nil {
		return &Response{Code: http.StatusInternalServerError}, err
	}

	result := make([]Order, 0, len(orders))
	for i := range orders {
		result = append(result, OrderFromDomain(&orders[i]))
	}

	return &Response{
		Code: http.StatusOK,
		Res:  result,
		Meta: listMeta(len(result), opts),
	}, nil
}

// FindOne returns a single order by ID.
// GET /api/v1/orders/{id}
// Auth: admin or staff
func (r OrderResource) FindOne(id string, req api2go.Request) (api2go.Responder, error) {
	ctx := req.PlainRequest.Context()
	if !auth.CanViewOrders(auth.FromContext(ctx)) {
		return httpError(http.StatusForbidden, "Not authorized to view orders")
	}

	order, err := r.Store.GetOrder(ctx, id)
	if err != nil {
		return storeError(err, "order")
	}
	return &Response{Code: http.StatusOK, Res: OrderFromDomain(order)}, nil
}

// Create is not supported; orders are placed through checkout.
// POST /api/v1/orders
func (r OrderResource) Create(obj interface{}, req api2go.Request) (api2go.Responder, error) {
	return httpError(http.StatusMethodNotAllowed, "orders are created through POST /api/orders")
}

// Update moves an order to the status given in the request.
// PATCH /api/v1/orders/{id}
// Auth: admin, or staff for non-cancelling transitions
func (r OrderResource) Update(obj interface{}, req api2go.Request) (api2go.Responder, error) {
	ctx := req.PlainRequest.Context()

	in, ok := obj.(Order)
	if !ok {
		return httpError(http.StatusBadRequest, "Invalid request body")
	}

	to := domain.OrderStatus(in.Status)
	if !to.IsValid() {
		return httpError(http.StatusBadRequest, "unknown order status")
	}
	if !auth.CanTransitionOrder(auth.FromContext(ctx), to) {
		return httpError(http.StatusForbidden, "Not authorized to move orders to "+in.Status)
	}

	existing, err := r.Store.GetOrder(ctx, in.ID)
	if err != nil {
		return storeError(err, "order")
	}

	from := existing.Status
	if err := existing.Transition(to); err != nil {
		return httpError(http.StatusConflict, "cannot move order from "+string(from)+" to "+string(to))
	}

	if err := r.Store.UpdateOrderStatus(ctx, existing.ReferenceID, from, to, r.now()); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return httpError(http.StatusConflict, "order status changed concurrently")
		}
		return storeError(err, "order")
	}

	return &Response{Code: http.StatusOK, Res: OrderFromDomain(existing)}, nil
}

// Delete removes a delivered or cancelled order.
// DELETE /api/v1/orders/{id}
// Auth: admin only
func (r OrderResource) Delete(id string, req api2go.Request) (api2go.Responder, error) {
	ctx := req.PlainRequest.Context()
	if !auth.CanDeleteOrder(auth.FromContext(ctx)) {
		return httpError(http.StatusForbidden, "Not authorized to delete orders")
	}

	order, err := r.Store.GetOrder(ctx, id)
	if err != nil {
		return storeError(err, "order")
	}
	if allowed, reason := validation.CanDeleteOrder(order.Status); !allowed {
		return httpError(http.StatusConflict, reason)
	}

	if err := r.Store.DeleteOrder(ctx, id); err != nil {
		return storeError(err, "order")
	}

	return &Response{Code: http.StatusNoContent}, nil
}
