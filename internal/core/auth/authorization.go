package auth

import "github.com/artpar/solarshop/internal/core/domain"

// =============================================================================
// Catalog Authorization
// =============================================================================

// CanManageCatalog checks if the user can create, update or delete
// categories, products, FAQs and testimonials.
func CanManageCatalog(ctx Context) bool {
	return ctx.Authenticated && ctx.Role == RoleAdmin
}

// =============================================================================
// Order Authorization
// =============================================================================

// CanViewOrders checks if the user can list and read orders.
func CanViewOrders(ctx Context) bool {
	return ctx.Authenticated && ctx.Role.IsValid()
}

// CanCreateOrder checks if the user can enter an order from the back office.
func CanCreateOrder(ctx Context) bool {
	return ctx.Authenticated && ctx.Role.IsValid()
}

// CanTransitionOrder checks if the user can move an order to the given status.
// Staff can progress orders but only admins can cancel them.
func CanTransitionOrder(ctx Context, to domain.OrderStatus) bool {
	if !ctx.Authenticated {
		return false
	}
	switch ctx.Role {
	case RoleAdmin:
		return true
	case RoleStaff:
		return to != domain.OrderCancelled
	default:
		return false
	}
}

// CanDeleteOrder checks if the user can delete an order.
func CanDeleteOrder(ctx Context) bool {
	return ctx.Authenticated && ctx.Role == RoleAdmin
}

// =============================================================================
// Media Authorization
// =============================================================================

// CanViewMedia checks if the user can browse the media library.
func CanViewMedia(ctx Context) bool {
	return ctx.Authenticated && ctx.Role.IsValid()
}

// CanDeleteMedia checks if the user can delete a media asset.
func CanDeleteMedia(ctx Context) bool {
	return ctx.Authenticated && ctx.Role == RoleAdmin
}
