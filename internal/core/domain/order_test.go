package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCustomer() Customer {
	return Customer{
		Name:    "Ayesha Khan",
		Phone:   "+923001234567",
		Address: "House 12, Street 4",
		City:    "Lahore",
	}
}

// =============================================================================
// NewOrder Tests
// =============================================================================

func TestNewOrder_ComputesTotal(t *testing.T) {
	items := []LineItem{
		{ProductID: "prod_1", Name: "Panel", UnitPrice: 42000, Quantity: 4},
		{ProductID: "prod_2", Name: "Inverter", UnitPrice: 185000, Quantity: 1},
	}

	order, err := NewOrder(testCustomer(), items, PaymentCashOnDelivery)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(order.ReferenceID, PrefixOrder))
	assert.Equal(t, OrderPending, order.Status)
	assert.Equal(t, int64(168000), order.Items[0].Subtotal)
	assert.Equal(t, int64(185000), order.Items[1].Subtotal)
	assert.Equal(t, int64(353000), order.Total)
	assert.Equal(t, 5, order.ItemCount())
	assert.NoError(t, order.Validate())
}

func TestNewOrder_DefaultsToCashOnDelivery(t *testing.T) {
	order, err := NewOrder(testCustomer(), []LineItem{{ProductID: "p", UnitPrice: 1, Quantity: 1}}, "")
	require.NoError(t, err)
	assert.Equal(t, PaymentCashOnDelivery, order.PaymentMethod)
}

func TestNewOrder_Empty(t *testing.T) {
	_, err := NewOrder(testCustomer(), nil, PaymentCashOnDelivery)
	assert.ErrorIs(t, err, ErrOrderEmpty)
}

func TestNewOrder_InvalidQuantity(t *testing.T) {
	_, err := NewOrder(testCustomer(), []LineItem{{ProductID: "p", UnitPrice: 10, Quantity: 0}}, PaymentCashOnDelivery)
	assert.ErrorIs(t, err, ErrQuantityInvalid)
}

func TestNewOrder_InvalidPaymentMethod(t *testing.T) {
	_, err := NewOrder(testCustomer(), []LineItem{{ProductID: "p", UnitPrice: 10, Quantity: 1}}, "crypto")
	assert.ErrorIs(t, err, ErrPaymentMethod)
}

// =============================================================================
// Validate Tests
// =============================================================================

func TestOrderValidate_TotalMismatch(t *testing.T) {
	order, err := NewOrder(testCustomer(), []LineItem{{ProductID: "p", UnitPrice: 100, Quantity: 2}}, PaymentBankTransfer)
	require.NoError(t, err)

	order.Total = 150
	assert.ErrorIs(t, order.Validate(), ErrTotalMismatch)
}

func TestOrderValidate_SubtotalMismatch(t *testing.T) {
	order := &Order{
		Items: []LineItem{{ProductID: "p", UnitPrice: 100, Quantity: 2, Subtotal: 100}},
		Total: 100,
	}
	assert.ErrorIs(t, order.Validate(), ErrTotalMismatch)
}

// =============================================================================
// Transition Tests
// =============================================================================

func TestValidateTransition_TableDriven(t *testing.T) {
	tests := []struct {
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{OrderPending, OrderConfirmed, true},
		{OrderPending, OrderCancelled, true},
		{OrderPending, OrderShipped, false},
		{OrderConfirmed, OrderShipped, true},
		{OrderConfirmed, OrderCancelled, true},
		{OrderShipped, OrderDelivered, true},
		{OrderShipped, OrderCancelled, false},
		{OrderDelivered, OrderPending, false},
		{OrderCancelled, OrderConfirmed, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			err := ValidateTransition(tt.from, tt.to)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidTransition)
			}
		})
	}
}

func TestOrderTransition_UpdatesStatus(t *testing.T) {
	order, err := NewOrder(testCustomer(), []LineItem{{ProductID: "p", UnitPrice: 1, Quantity: 1}}, PaymentCashOnDelivery)
	require.NoError(t, err)

	require.NoError(t, order.Transition(OrderConfirmed))
	assert.Equal(t, OrderConfirmed, order.Status)

	assert.ErrorIs(t, order.Transition(OrderPending), ErrInvalidTransition)
	assert.Equal(t, OrderConfirmed, order.Status)
}

func TestOrderStatus_IsTerminal(t *testing.T) {
	assert.True(t, OrderDelivered.IsTerminal())
	assert.True(t, OrderCancelled.IsTerminal())
	assert.False(t, OrderPending.IsTerminal())
}

func TestOrderMarkNotified(t *testing.T) {
	order := &Order{}
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.FixedZone("PKT", 5*3600))
	order.MarkNotified(at)
	require.NotNil(t, order.NotifiedAt)
	assert.Equal(t, time.UTC, order.NotifiedAt.Location())
	assert.True(t, order.NotifiedAt.Equal(at))
}
