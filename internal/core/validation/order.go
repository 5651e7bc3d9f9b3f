package validation

import "github.com/artpar/solarshop/internal/core/domain"

// CanDeleteOrder checks if an order can be deleted.
// Only orders that reached a terminal status may be removed.
func CanDeleteOrder(status domain.OrderStatus) (allowed bool, reason string) {
	if !status.IsTerminal() {
		return false, "only delivered or cancelled orders can be deleted"
	}
	return true, ""
}
