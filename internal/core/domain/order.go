package domain

import (
	"errors"
	"time"
)

// =============================================================================
// Errors
// =============================================================================

var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrOrderEmpty        = errors.New("order must contain at least one item")
	ErrQuantityInvalid   = errors.New("quantity must be greater than zero")
	ErrTotalMismatch     = errors.New("order total does not equal the sum of its line items")
	ErrPaymentMethod     = errors.New("unsupported payment method")
)

// =============================================================================
// Order Status
// =============================================================================

// OrderStatus represents where an order is in fulfilment.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

// IsValid checks if the status is one of the known values.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transitions are possible.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

// validTransitions defines the allowed state transitions.
var validTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:   {OrderConfirmed, OrderCancelled},
	OrderConfirmed: {OrderShipped, OrderCancelled},
	OrderShipped:   {OrderDelivered},
}

// ValidateTransition checks if a status transition is valid.
func ValidateTransition(from, to OrderStatus) error {
	allowed, exists := validTransitions[from]
	if !exists {
		return ErrInvalidTransition
	}
	for _, s := range allowed {
		if s == to {
			return nil
		}
	}
	return ErrInvalidTransition
}

// =============================================================================
// Payment Method
// =============================================================================

// PaymentMethod is how the customer intends to pay.
type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "cod"
	PaymentBankTransfer   PaymentMethod = "bank_transfer"
)

// IsValid checks if the payment method is supported.
func (m PaymentMethod) IsValid() bool {
	return m == PaymentCashOnDelivery || m == PaymentBankTransfer
}

// =============================================================================
// Order
// =============================================================================

// Customer holds the delivery contact captured at checkout.
type Customer struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address"`
	City    string `json:"city"`
}

// LineItem is a priced product line. Name, SKU and UnitPrice are copied from
// the product at order time so later catalog edits don't change the order.
type LineItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	SKU       string `json:"sku,omitempty"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	Subtotal  int64  `json:"subtotal"`
}

// Order is a placed customer order.
type Order struct {
	ID              int           `json:"-"`
	ReferenceID     string        `json:"id"`
	Customer        Customer      `json:"customer"`
	Items           []LineItem    `json:"items"`
	Total           int64         `json:"total"`
	Status          OrderStatus   `json:"status"`
	PaymentMethod   PaymentMethod `json:"payment_method"`
	PaymentProofURL string        `json:"payment_proof_url,omitempty"`
	Notes           string        `json:"notes,omitempty"`
	NotifiedAt      *time.Time    `json:"notified_at,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// NewOrder creates a pending order and computes its total.
func NewOrder(customer Customer, items []LineItem, method PaymentMethod) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrOrderEmpty
	}
	if method == "" {
		method = PaymentCashOnDelivery
	}
	if !method.IsValid() {
		return nil, ErrPaymentMethod
	}
	now := time.Now().UTC()
	o := &Order{
		ReferenceID:   NewReferenceID(PrefixOrder),
		Customer:      customer,
		Items:         items,
		Status:        OrderPending,
		PaymentMethod: method,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := o.Recalculate(); err != nil {
		return nil, err
	}
	return o, nil
}

// Recalculate recomputes every line subtotal and the order total.
func (o *Order) Recalculate() error {
	var total int64
	for i := range o.Items {
		item := &o.Items[i]
		if item.Quantity <= 0 {
			return ErrQuantityInvalid
		}
		if item.UnitPrice < 0 {
			return ErrPriceNegative
		}
		item.Subtotal = item.UnitPrice * int64(item.Quantity)
		total += item.Subtotal
	}
	o.Total = total
	return nil
}

// Validate checks that the order has items and that its total equals the
// sum of its line items.
func (o *Order) Validate() error {
	if len(o.Items) == 0 {
		return ErrOrderEmpty
	}
	var sum int64
	for _, item := range o.Items {
		if item.Quantity <= 0 {
			return ErrQuantityInvalid
		}
		if item.Subtotal != item.UnitPrice*int64(item.Quantity) {
			return ErrTotalMismatch
		}
		sum += item.Subtotal
	}
	if sum != o.Total {
		return ErrTotalMismatch
	}
	return nil
}

// ItemCount returns the number of units across all lines.
func (o *Order) ItemCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

// Transition moves the order to a new status.
func (o *Order) Transition(to OrderStatus) error {
	if err := ValidateTransition(o.Status, to); err != nil {
		return err
	}
	o.Status = to
	o.UpdatedAt = time.Now().UTC()
	return nil
}

// MarkNotified records that the order was relayed to the shop's messaging channel.
func (o *Order) MarkNotified(at time.Time) {
	at = at.UTC()
	o.NotifiedAt = &at
}
