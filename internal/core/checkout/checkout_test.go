package checkout

import (
	"errors"
	"math"
	"net/url"
	"strings"
	"testing"

	"github.com/artpar/solarshop/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Test Helpers
// =============================================================================

func validForm() Form {
	return Form{
		Name:    "Ayesha Khan",
		Phone:   "+92 300 1234567",
		Address: "House 12, Street 4, DHA",
		City:    "Lahore",
	}
}

func testCatalog() ProductLookup {
	products := map[string]*domain.Product{
		"prod_panel":    {ReferenceID: "prod_panel", Name: "Jinko 550W", SKU: "JK-550", Price: 42000, Stock: 20, Active: true},
		"prod_inverter": {ReferenceID: "prod_inverter", Name: "Hybrid 6kW", Price: 185000, Stock: 2, Active: true},
		"prod_retired":  {ReferenceID: "prod_retired", Name: "Old Panel", Price: 10000, Stock: 5, Active: false},
	}
	return func(id string) (*domain.Product, bool) {
		p, ok := products[id]
		return p, ok
	}
}

// =============================================================================
// Form Tests
// =============================================================================

func TestValidateForm_Valid(t *testing.T) {
	assert.Nil(t, ValidateForm(validForm()))
}

func TestValidateForm_ReportsEveryMissingField(t *testing.T) {
	errs := ValidateForm(Form{Name: "  "})
	require.NotNil(t, errs)
	assert.Len(t, errs, 4)
	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "phone")
	assert.Contains(t, errs, "address")
	assert.Contains(t, errs, "city")
}

func TestValidateForm_Phone(t *testing.T) {
	tests := []struct {
		phone string
		valid bool
	}{
		{"03001234567", true},
		{"+92 300 1234567", true},
		{"(0300) 123-4567", true},
		{"12345", false},
		{"0300-CALL-ME", false},
		{"92+3001234567", false},
	}
	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			f := validForm()
			f.Phone = tt.phone
			errs := ValidateForm(f)
			if tt.valid {
				assert.Nil(t, errs)
			} else {
				assert.Contains(t, errs, "phone")
			}
		})
	}
}

func TestValidateForm_PaymentMethodAndEmail(t *testing.T) {
	f := validForm()
	f.PaymentMethod = "bitcoin"
	f.Email = "not-an-email"
	errs := ValidateForm(f)
	assert.Contains(t, errs, "payment_method")
	assert.Contains(t, errs, "email")
}

func TestFieldErrors_ErrorIsSorted(t *testing.T) {
	errs := FieldErrors{"city": "city is required", "address": "address is required"}
	assert.Equal(t, "invalid checkout form: address: address is required; city: city is required", errs.Error())
}

// =============================================================================
// Cart Tests
// =============================================================================

func TestAggregate_MergesAndDrops(t *testing.T) {
	c := Cart{Lines: []Line{
		{ProductID: "a", Quantity: 1},
		{ProductID: "b", Quantity: 2},
		{ProductID: "a", Quantity: 3},
		{ProductID: "c", Quantity: 0},
		{ProductID: "", Quantity: 1},
	}}

	agg := Aggregate(c)
	assert.Equal(t, []Line{{ProductID: "a", Quantity: 4}, {ProductID: "b", Quantity: 2}}, agg.Lines)
	assert.Equal(t, []string{"a", "b"}, c.ProductIDs())
}

func TestAggregate_SaturatesMergedQuantity(t *testing.T) {
	agg := Aggregate(Cart{Lines: []Line{
		{ProductID: "prod_panel", Quantity: math.MaxInt},
		{ProductID: "prod_panel", Quantity: 2},
	}})

	require.Len(t, agg.Lines, 1)
	assert.Equal(t, math.MaxInt, agg.Lines[0].Quantity)
}

func TestPriceCart_RejectsOversizedLine(t *testing.T) {
	q := PriceCart(Cart{Lines: []Line{
		{ProductID: "prod_panel", Quantity: math.MaxInt},
		{ProductID: "prod_panel", Quantity: 2},
		{ProductID: "prod_inverter", Quantity: 1},
	}}, testCatalog())

	require.Len(t, q.Issues, 1)
	assert.ErrorIs(t, q.Issues[0], ErrQuantityTooLarge)
	require.Len(t, q.Items, 1)
	assert.Equal(t, "prod_inverter", q.Items[0].ProductID)
	assert.Equal(t, q.Items[0].Subtotal, q.Total)
}

func TestBuildOrder_OversizedLine(t *testing.T) {
	_, err := BuildOrder(validForm(), Cart{Lines: []Line{
		{ProductID: "prod_panel", Quantity: MaxLineQuantity + 1},
	}}, testCatalog())

	var lineErr *LineError
	require.ErrorAs(t, err, &lineErr)
	assert.ErrorIs(t, err, ErrQuantityTooLarge)
}

func TestPriceCart_UsesCatalogPrices(t *testing.T) {
	q := PriceCart(Cart{Lines: []Line{
		{ProductID: "prod_panel", Quantity: 10},
		{ProductID: "prod_inverter", Quantity: 1},
	}}, testCatalog())

	assert.Empty(t, q.Issues)
	require.Len(t, q.Items, 2)
	assert.Equal(t, int64(420000), q.Items[0].Subtotal)
	assert.Equal(t, "JK-550", q.Items[0].SKU)
	assert.Equal(t, int64(605000), q.Total)
}

func TestPriceCart_ReportsIssues(t *testing.T) {
	q := PriceCart(Cart{Lines: []Line{
		{ProductID: "prod_missing", Quantity: 1},
		{ProductID: "prod_retired", Quantity: 1},
		{ProductID: "prod_inverter", Quantity: 3},
		{ProductID: "prod_panel", Quantity: 1},
	}}, testCatalog())

	require.Len(t, q.Issues, 3)
	assert.ErrorIs(t, q.Issues[0], ErrUnknownProduct)
	assert.ErrorIs(t, q.Issues[1], ErrUnavailable)
	assert.ErrorIs(t, q.Issues[2], ErrInsufficientStock)
	assert.Equal(t, int64(42000), q.Total)
}

// =============================================================================
// BuildOrder Tests
// =============================================================================

func TestBuildOrder_Success(t *testing.T) {
	f := validForm()
	f.Notes = "  call before delivery "
	order, err := BuildOrder(f, Cart{Lines: []Line{
		{ProductID: "prod_panel", Quantity: 2},
		{ProductID: "prod_panel", Quantity: 2},
	}}, testCatalog())
	require.NoError(t, err)

	assert.Equal(t, domain.OrderPending, order.Status)
	assert.Equal(t, domain.PaymentCashOnDelivery, order.PaymentMethod)
	assert.Equal(t, "call before delivery", order.Notes)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 4, order.Items[0].Quantity)
	assert.Equal(t, int64(168000), order.Total)
	assert.NoError(t, order.Validate())
}

func TestBuildOrder_InvalidForm(t *testing.T) {
	_, err := BuildOrder(Form{}, Cart{Lines: []Line{{ProductID: "prod_panel", Quantity: 1}}}, testCatalog())
	var fieldErrs FieldErrors
	require.True(t, errors.As(err, &fieldErrs))
	assert.Contains(t, fieldErrs, "name")
}

func TestBuildOrder_EmptyCart(t *testing.T) {
	_, err := BuildOrder(validForm(), Cart{}, testCatalog())
	assert.ErrorIs(t, err, ErrCartEmpty)
}

func TestBuildOrder_LineProblemFailsOrder(t *testing.T) {
	_, err := BuildOrder(validForm(), Cart{Lines: []Line{{ProductID: "prod_inverter", Quantity: 5}}}, testCatalog())
	var lineErr *LineError
	require.True(t, errors.As(err, &lineErr))
	assert.Equal(t, "prod_inverter", lineErr.ProductID)
	assert.ErrorIs(t, err, ErrInsufficientStock)
}

// =============================================================================
// Result / WhatsApp Tests
// =============================================================================

func TestNewResult(t *testing.T) {
	order, err := BuildOrder(validForm(), Cart{Lines: []Line{{ProductID: "prod_panel", Quantity: 1}}}, testCatalog())
	require.NoError(t, err)

	r := NewResult(order, "", "", "Rs")
	assert.Equal(t, order.ReferenceID, r.OrderID)
	assert.Equal(t, "/order-confirmation?order="+order.ReferenceID, r.Redirect)
	assert.Empty(t, r.WhatsAppURL)

	r = NewResult(order, "/thanks", "+92 300 0000000", "Rs")
	assert.True(t, strings.HasPrefix(r.Redirect, "/thanks?order="))
	assert.True(t, strings.HasPrefix(r.WhatsAppURL, "https://wa.me/923000000000?text="))
}

func TestWhatsAppMessage(t *testing.T) {
	order, err := BuildOrder(validForm(), Cart{Lines: []Line{
		{ProductID: "prod_panel", Quantity: 10},
		{ProductID: "prod_inverter", Quantity: 1},
	}}, testCatalog())
	require.NoError(t, err)

	msg := WhatsAppMessage(order, "Rs")
	assert.Contains(t, msg, "New order "+order.ReferenceID)
	assert.Contains(t, msg, "10 x Jinko 550W = Rs 420,000")
	assert.Contains(t, msg, "1 x Hybrid 6kW = Rs 185,000")
	assert.Contains(t, msg, "Total: Rs 605,000")
	assert.Contains(t, msg, "Payment: Cash on delivery")
}

func TestWhatsAppLink_EscapesText(t *testing.T) {
	link := WhatsAppLink("+92-300-1234567", "Hi there & welcome")
	assert.Equal(t, "https://wa.me/923001234567?text=Hi%20there%20%26%20welcome", link)

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "Hi there & welcome", u.Query().Get("text"))
}
