// Package invoice holds the request shapes accepted by the HTTP layer, the
// normalized Invoice every generation strategy consumes, and the line-item
// arithmetic (discount, tax, totals) shared by all of them.
package invoice

import (
	"time"

	"github.com/shopspring/decimal"
)

// Rates applied to every invoice. Discount is per unit of each line item;
// tax is applied to the subtotal.
var (
	DiscountRate = decimal.RequireFromString("0.05")
	TaxRate      = decimal.RequireFromString("0.05")
)

// Party is a company or person block printed on an invoice.
type Party struct {
	Company string `json:"company"`
	Address string `json:"address"`
	Zip     string `json:"zip"`
	City    string `json:"city"`
	Country string `json:"country"`
}

// Lines returns the non-empty address lines in print order.
func (p Party) Lines() []string {
	var lines []string
	for _, s := range []string{p.Company, p.Address, joinNonEmpty(p.Zip, p.City), p.Country} {
		if s != "" {
			lines = append(lines, s)
		}
	}
	return lines
}

// LineItem is one normalized product row. Defaults have already been applied.
type LineItem struct {
	Description string
	Quantity    decimal.Decimal
	Price       decimal.Decimal

	// TaxPercent is passed through to strategies that print per-line tax.
	// Nil means the caller did not specify one.
	TaxPercent *decimal.Decimal
}

// Discount is the per-unit discount: DiscountRate × price.
func (li LineItem) Discount() decimal.Decimal {
	return li.Price.Mul(DiscountRate)
}

// Total is quantity × (price − discount).
func (li LineItem) Total() decimal.Decimal {
	return li.Quantity.Mul(li.Price.Sub(li.Discount()))
}

// Totals is the footer block of an invoice.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// ComputeTotals sums line totals and applies TaxRate. No rounding happens
// here; rounding is a display concern (see Money).
func ComputeTotals(items []LineItem) Totals {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.Total())
	}
	tax := subtotal.Mul(TaxRate)
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}

// Invoice is the normalized form of any accepted request. It lives only for
// the duration of one request.
type Invoice struct {
	// Number is the order id or invoice number, depending on the route.
	Number string

	// Date is the display date. Styled requests carry their own; otherwise
	// it is formatted from IssuedAt.
	Date     string
	IssuedAt time.Time

	// Recipient is the email address the PDF is delivered to and the
	// "Bill To" line.
	Recipient string

	// Amount is the paid amount quoted in the confirmation email. Zero for
	// styled requests, which carry no amount.
	Amount decimal.Decimal

	// Client is the billed party for styled requests. Nil otherwise.
	Client *Party

	Currency string
	Items    []LineItem
	Totals   Totals
}

// Document is a generated PDF ready to be attached to an email.
type Document struct {
	Filename string

	// Content holds raw PDF bytes, or the base64 text of the PDF when Base64
	// is true.
	Content []byte
	Base64  bool
}

func joinNonEmpty(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " " + b
	}
}
