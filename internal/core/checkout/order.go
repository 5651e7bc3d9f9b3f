package checkout

import (
	"net/url"

	"github.com/artpar/solarshop/internal/core/domain"
)

// BuildOrder turns a validated form and a cart into a pending order priced
// from the catalog. Any line that cannot be ordered fails the whole order
// with a *LineError.
func BuildOrder(f Form, c Cart, lookup ProductLookup) (*domain.Order, error) {
	if errs := ValidateForm(f); errs != nil {
		return nil, errs
	}
	if len(Aggregate(c).Lines) == 0 {
		return nil, ErrCartEmpty
	}

	q := PriceCart(c, lookup)
	if len(q.Issues) > 0 {
		return nil, q.Issues[0]
	}

	f = f.Normalize()
	order, err := domain.NewOrder(f.Customer(), q.Items, domain.PaymentMethod(f.PaymentMethod))
	if err != nil {
		return nil, err
	}
	order.Notes = f.Notes
	return order, nil
}

// Result describes a successful checkout.
type Result struct {
	OrderID     string `json:"order_id"`
	Total       int64  `json:"total"`
	Redirect    string `json:"redirect"`
	WhatsAppURL string `json:"whatsapp_url,omitempty"`
}

// NewResult builds the success outcome for a persisted order. redirectBase
// is the confirmation page path; whatsappNumber may be empty to skip the
// messaging link.
func NewResult(order *domain.Order, redirectBase, whatsappNumber, currency string) Result {
	if redirectBase == "" {
		redirectBase = "/order-confirmation"
	}
	r := Result{
		OrderID:  order.ReferenceID,
		Total:    order.Total,
		Redirect: redirectBase + "?order=" + url.QueryEscape(order.ReferenceID),
	}
	if whatsappNumber != "" {
		r.WhatsAppURL = WhatsAppLink(whatsappNumber, WhatsAppMessage(order, currency))
	}
	return r
}
