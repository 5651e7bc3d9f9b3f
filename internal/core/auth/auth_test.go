package auth

import (
	"context"
	"testing"

	"github.com/artpar/solarshop/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

// =============================================================================
// BearerToken Tests
// =============================================================================

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header   string
		expected string
	}{
		{"Bearer abc123", "abc123"},
		{"bearer abc123", "abc123"},
		{"  Bearer   abc123  ", "abc123"},
		{"Basic dXNlcjpwYXNz", ""},
		{"Bearer", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.expected, BearerToken(tt.header))
		})
	}
}

// =============================================================================
// Context Storage Tests
// =============================================================================

func TestContextRoundTrip(t *testing.T) {
	ctx := WithContext(context.Background(), Context{Subject: "owner", Role: RoleAdmin, Authenticated: true})
	got := FromContext(ctx)
	assert.True(t, got.Authenticated)
	assert.Equal(t, "owner", got.Subject)
	assert.Equal(t, RoleAdmin, got.Role)
}

func TestFromContext_Missing(t *testing.T) {
	got := FromContext(context.Background())
	assert.False(t, got.Authenticated)
	assert.Empty(t, got.Subject)
}

// =============================================================================
// Authorization Tests
// =============================================================================

func TestAuthorization_ByRole(t *testing.T) {
	admin := Context{Subject: "owner", Role: RoleAdmin, Authenticated: true}
	staff := Context{Subject: "desk", Role: RoleStaff, Authenticated: true}
	anon := Anonymous()

	tests := []struct {
		name  string
		check func(Context) bool
		admin bool
		staff bool
	}{
		{"manage catalog", CanManageCatalog, true, false},
		{"view orders", CanViewOrders, true, true},
		{"create order", CanCreateOrder, true, true},
		{"delete order", CanDeleteOrder, true, false},
		{"view media", CanViewMedia, true, true},
		{"delete media", CanDeleteMedia, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.admin, tt.check(admin))
			assert.Equal(t, tt.staff, tt.check(staff))
			assert.False(t, tt.check(anon))
		})
	}
}

func TestCanTransitionOrder(t *testing.T) {
	admin := Context{Role: RoleAdmin, Authenticated: true}
	staff := Context{Role: RoleStaff, Authenticated: true}

	assert.True(t, CanTransitionOrder(admin, domain.OrderCancelled))
	assert.True(t, CanTransitionOrder(staff, domain.OrderShipped))
	assert.False(t, CanTransitionOrder(staff, domain.OrderCancelled))
	assert.False(t, CanTransitionOrder(Anonymous(), domain.OrderConfirmed))
	assert.False(t, CanTransitionOrder(Context{Role: "guest", Authenticated: true}, domain.OrderConfirmed))
}
