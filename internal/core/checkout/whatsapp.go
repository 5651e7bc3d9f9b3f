package checkout

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/artpar/solarshop/internal/core/domain"
)

// WhatsAppMessage renders a plain-text order summary suitable for a chat message.
func WhatsAppMessage(o *domain.Order, currency string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "New order %s\n", o.ReferenceID)
	fmt.Fprintf(&b, "Name: %s\n", o.Customer.Name)
	fmt.Fprintf(&b, "Phone: %s\n", o.Customer.Phone)
	fmt.Fprintf(&b, "Address: %s, %s\n", o.Customer.Address, o.Customer.City)
	b.WriteString("\n")
	for _, item := range o.Items {
		fmt.Fprintf(&b, "%d x %s = %s\n", item.Quantity, item.Name, domain.FormatPrice(currency, item.Subtotal))
	}
	fmt.Fprintf(&b, "\nTotal: %s\n", domain.FormatPrice(currency, o.Total))
	fmt.Fprintf(&b, "Payment: %s", paymentLabel(o.PaymentMethod))
	if o.Notes != "" {
		fmt.Fprintf(&b, "\nNotes: %s", o.Notes)
	}
	return b.String()
}

// WhatsAppLink returns a click-to-chat URL for the given number and text.
func WhatsAppLink(number, text string) string {
	// wa.me wants %20, not '+', for spaces
	escaped := strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
	return "https://wa.me/" + PhoneDigits(number) + "?text=" + escaped
}

func paymentLabel(m domain.PaymentMethod) string {
	switch m {
	case domain.PaymentBankTransfer:
		return "Bank transfer"
	default:
		return "Cash on delivery"
	}
}
