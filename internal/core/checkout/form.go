package checkout

import (
	"sort"
	"strings"

	"github.com/artpar/solarshop/internal/core/domain"
)

// Form is the customer-entered checkout form.
type Form struct {
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	Email         string `json:"email,omitempty"`
	Address       string `json:"address"`
	City          string `json:"city"`
	PaymentMethod string `json:"payment_method,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

// FieldErrors maps a form field to the reason it was rejected.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e[f])
	}
	return "invalid checkout form: " + strings.Join(parts, "; ")
}

// Normalize trims whitespace from every field.
func (f Form) Normalize() Form {
	return Form{
		Name:          strings.TrimSpace(f.Name),
		Phone:         strings.TrimSpace(f.Phone),
		Email:         strings.TrimSpace(f.Email),
		Address:       strings.TrimSpace(f.Address),
		City:          strings.TrimSpace(f.City),
		PaymentMethod: strings.TrimSpace(f.PaymentMethod),
		Notes:         strings.TrimSpace(f.Notes),
	}
}

// ValidateForm checks the form and returns every problem found, or nil.
// Name, phone, address and city are required.
func ValidateForm(f Form) FieldErrors {
	f = f.Normalize()
	errs := FieldErrors{}

	if f.Name == "" {
		errs["name"] = "name is required"
	}
	if f.Phone == "" {
		errs["phone"] = "phone is required"
	} else if !validPhone(f.Phone) {
		errs["phone"] = "phone must contain 10 to 15 digits"
	}
	if f.Address == "" {
		errs["address"] = "address is required"
	}
	if f.City == "" {
		errs["city"] = "city is required"
	}
	if f.Email != "" && !strings.Contains(f.Email, "@") {
		errs["email"] = "email is not valid"
	}
	if f.PaymentMethod != "" && !domain.PaymentMethod(f.PaymentMethod).IsValid() {
		errs["payment_method"] = "payment method is not supported"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Customer converts the form into the order's delivery contact.
func (f Form) Customer() domain.Customer {
	f = f.Normalize()
	return domain.Customer{
		Name:    f.Name,
		Phone:   f.Phone,
		Email:   f.Email,
		Address: f.Address,
		City:    f.City,
	}
}

// PhoneDigits strips everything but digits from a phone number.
func PhoneDigits(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// validPhone accepts digits with optional leading '+', spaces, dashes and parentheses.
func validPhone(phone string) bool {
	for i, r := range phone {
		switch {
		case r >= '0' && r <= '9':
		case r == '+' && i == 0:
		case r == ' ' || r == '-' || r == '(' || r == ')':
		default:
			return false
		}
	}
	n := len(PhoneDigits(phone))
	return n >= 10 && n <= 15
}
