package invoice

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Input is implemented by every request shape the Normalizer accepts.
type Input interface {
	toInvoice() Invoice
}

// ID is an identifier that clients may send as either a JSON string or a
// JSON number. It is always stored as text.
type ID string

// UnmarshalJSON accepts "abc", 123 and 12.5. null and a numeric zero leave
// the ID empty, so they fail the required check like an absent field.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	if v, err := decimal.NewFromString(n.String()); err == nil && v.IsZero() {
		return nil
	}
	*id = ID(n.String())
	return nil
}

// Product is a line item as sent by clients. Zero values are replaced by
// defaults during normalization.
type Product struct {
	Description string   `json:"description"`
	Quantity    float64  `json:"quantity" validate:"gte=0"`
	Price       float64  `json:"price" validate:"gte=0"`
	Tax         *float64 `json:"tax,omitempty" validate:"omitempty,gte=0,lte=100"`
}

// OrderRequest is the body of the order-based routes.
type OrderRequest struct {
	OrderID  ID        `json:"orderId" validate:"required"`
	Amount   float64   `json:"amount" validate:"required,gt=0"`
	Email    string    `json:"email" validate:"required,email"`
	Products []Product `json:"products" validate:"required,min=1,dive"`
}

func (r OrderRequest) toInvoice() Invoice {
	return Invoice{
		Number:    string(r.OrderID),
		Recipient: strings.TrimSpace(r.Email),
		Amount:    decimalFromFloat(r.Amount),
		Items:     toLineItems(r.Products),
	}
}

// StyledRequest is the body of the styled-invoice route.
type StyledRequest struct {
	Email         string    `json:"email" validate:"required,email"`
	InvoiceNumber ID        `json:"invoiceNumber" validate:"required"`
	InvoiceDate   string    `json:"invoiceDate" validate:"required"`
	Products      []Product `json:"products" validate:"required,min=1,dive"`
	Client        *Party    `json:"client" validate:"required"`
}

func (r StyledRequest) toInvoice() Invoice {
	client := *r.Client
	return Invoice{
		Number:    string(r.InvoiceNumber),
		Date:      strings.TrimSpace(r.InvoiceDate),
		Recipient: strings.TrimSpace(r.Email),
		Client:    &client,
		Items:     toLineItems(r.Products),
	}
}

func toLineItems(products []Product) []LineItem {
	items := make([]LineItem, 0, len(products))
	for _, p := range products {
		li := LineItem{
			Description: strings.TrimSpace(p.Description),
			Quantity:    decimalFromFloat(p.Quantity),
			Price:       decimalFromFloat(p.Price),
		}
		if li.Description == "" {
			li.Description = "Item"
		}
		if li.Quantity.IsZero() {
			li.Quantity = decimalFromFloat(1)
		}
		if p.Tax != nil {
			t := decimalFromFloat(*p.Tax)
			li.TaxPercent = &t
		}
		items = append(items, li)
	}
	return items
}
