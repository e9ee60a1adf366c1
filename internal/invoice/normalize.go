package invoice

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DateLayout is the display format used when the request carries no date.
const DateLayout = "02 Jan 2006, 15:04"

// ValidationError reports every field that failed validation. Missing lists
// required fields that were absent or empty; Invalid lists fields that were
// present but malformed.
type ValidationError struct {
	Missing []string
	Invalid []string
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid "+strings.Join(e.Invalid, ", "))
	}
	return "invoice: " + strings.Join(parts, "; ")
}

// Fields returns missing fields followed by invalid ones.
func (e *ValidationError) Fields() []string {
	out := make([]string, 0, len(e.Missing)+len(e.Invalid))
	out = append(out, e.Missing...)
	return append(out, e.Invalid...)
}

// Normalizer validates incoming requests and maps them to an Invoice.
// It is safe for concurrent use.
type Normalizer struct {
	validate *validator.Validate
	currency string
	now      func() time.Time
}

// NewNormalizer returns a Normalizer that stamps invoices with currency.
// now may be nil, in which case time.Now is used.
func NewNormalizer(currency string, now func() time.Time) *Normalizer {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names so error payloads match the request.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if now == nil {
		now = time.Now
	}
	return &Normalizer{validate: v, currency: currency, now: now}
}

// Normalize validates in and returns the normalized Invoice with defaults
// applied and totals computed. On failure it returns a *ValidationError and
// does nothing else.
func (n *Normalizer) Normalize(in Input) (Invoice, error) {
	if in == nil {
		return Invoice{}, &ValidationError{Missing: []string{"body"}}
	}
	if err := n.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return Invoice{}, fmt.Errorf("invoice: validate: %w", err)
		}
		return Invoice{}, toValidationError(verrs)
	}

	inv := in.toInvoice()
	inv.IssuedAt = n.now()
	if inv.Date == "" {
		inv.Date = inv.IssuedAt.Format(DateLayout)
	}
	inv.Currency = n.currency
	inv.Totals = ComputeTotals(inv.Items)
	return inv, nil
}

func toValidationError(verrs validator.ValidationErrors) *ValidationError {
	ve := &ValidationError{}
	for _, fe := range verrs {
		field := fe.Namespace()
		// Drop the struct name prefix: "OrderRequest.products[0].price".
		if _, rest, ok := strings.Cut(field, "."); ok {
			field = rest
		}
		switch fe.Tag() {
		case "required", "min":
			ve.Missing = append(ve.Missing, field)
		default:
			ve.Invalid = append(ve.Invalid, field)
		}
	}
	return ve
}
