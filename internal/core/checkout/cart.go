package checkout

import (
	"errors"
	"fmt"
	"math"

	"github.com/artpar/solarshop/internal/core/domain"
)

var (
	ErrCartEmpty         = errors.New("cart is empty")
	ErrUnknownProduct    = errors.New("product does not exist")
	ErrUnavailable       = errors.New("product is not available")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrQuantityTooLarge  = errors.New("quantity exceeds the per-line limit")
)

// MaxLineQuantity caps the units of one product in a single order.
const MaxLineQuantity = 10000

// Line is a cart entry as sent by the client. Only the product and the
// quantity are honoured; prices always come from the catalog.
type Line struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Cart is the client-side cart.
type Cart struct {
	Lines []Line `json:"items"`
}

// LineError reports why a single cart line could not be ordered.
type LineError struct {
	ProductID string
	Err       error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("%s: %v", e.ProductID, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// ProductLookup resolves a product by reference ID.
type ProductLookup func(id string) (*domain.Product, bool)

// Aggregate merges lines for the same product, keeping first-seen order,
// and drops lines with a non-positive quantity. Merged quantities saturate
// at math.MaxInt instead of wrapping.
func Aggregate(c Cart) Cart {
	index := make(map[string]int, len(c.Lines))
	out := make([]Line, 0, len(c.Lines))
	for _, l := range c.Lines {
		if l.ProductID == "" || l.Quantity <= 0 {
			continue
		}
		if i, ok := index[l.ProductID]; ok {
			if l.Quantity > math.MaxInt-out[i].Quantity {
				out[i].Quantity = math.MaxInt
			} else {
				out[i].Quantity += l.Quantity
			}
			continue
		}
		index[l.ProductID] = len(out)
		out = append(out, l)
	}
	return Cart{Lines: out}
}

// ProductIDs returns the distinct product IDs in the cart.
func (c Cart) ProductIDs() []string {
	agg := Aggregate(c)
	ids := make([]string, 0, len(agg.Lines))
	for _, l := range agg.Lines {
		ids = append(ids, l.ProductID)
	}
	return ids
}

// Quote is a priced cart.
type Quote struct {
	Items  []domain.LineItem `json:"items"`
	Total  int64             `json:"total"`
	Issues []*LineError      `json:"-"`
}

// PriceCart prices every aggregated line against the catalog. Lines that
// cannot be ordered are reported in Issues and excluded from the total.
func PriceCart(c Cart, lookup ProductLookup) Quote {
	agg := Aggregate(c)
	q := Quote{Items: make([]domain.LineItem, 0, len(agg.Lines))}
	for _, l := range agg.Lines {
		if l.Quantity > MaxLineQuantity {
			q.Issues = append(q.Issues, &LineError{ProductID: l.ProductID, Err: ErrQuantityTooLarge})
			continue
		}
		p, ok := lookup(l.ProductID)
		if !ok {
			q.Issues = append(q.Issues, &LineError{ProductID: l.ProductID, Err: ErrUnknownProduct})
			continue
		}
		if !p.Active {
			q.Issues = append(q.Issues, &LineError{ProductID: l.ProductID, Err: ErrUnavailable})
			continue
		}
		if p.Stock < l.Quantity {
			q.Issues = append(q.Issues, &LineError{ProductID: l.ProductID, Err: ErrInsufficientStock})
			continue
		}
		item := domain.LineItem{
			ProductID: p.ReferenceID,
			Name:      p.Name,
			SKU:       p.SKU,
			UnitPrice: p.Price,
			Quantity:  l.Quantity,
			Subtotal:  p.Price * int64(l.Quantity),
		}
		q.Items = append(q.Items, item)
		q.Total += item.Subtotal
	}
	return q
}
