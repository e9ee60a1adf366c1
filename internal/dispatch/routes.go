package dispatch

import (
	"context"
	"fmt"

	"github.com/nyashahama/invoice-mailer-backend/internal/invoice"
)

// Strategy names how a route produces its PDF.
type Strategy string

const (
	StrategyManual Strategy = "manual" // in-process gofpdf layout
	StrategyStyled Strategy = "styled" // EasyInvoice template API
	StrategyRemote Strategy = "remote" // invoice-generator.com
)

// Generator produces the PDF for a normalized invoice.
type Generator interface {
	Generate(ctx context.Context, inv invoice.Invoice) (invoice.Document, error)
}

// Messages are the client-facing texts a route answers with.
type Messages struct {
	Validation string
	Generation string
	Delivery   string
	Success    string
}

// Route binds a strategy to its generator, email texts and response messages.
type Route struct {
	Strategy  Strategy
	Generator Generator
	Subject   func(invoice.Invoice) string
	Body      func(invoice.Invoice) string
	Messages  Messages
}

func paymentBody(inv invoice.Invoice) string {
	return fmt.Sprintf("Thanks for your payment of %s%s. Please find your invoice attached.",
		invoice.CurrencySymbol(inv.Currency), invoice.Money(inv.Amount))
}

// ManualRoute serves /send-invoice.
func ManualRoute(g Generator) Route {
	return Route{
		Strategy:  StrategyManual,
		Generator: g,
		Subject:   func(invoice.Invoice) string { return "Payment Confirmation - Order" },
		Body:      paymentBody,
		Messages: Messages{
			Validation: "Missing required fields",
			Generation: "Failed to generate invoice PDF.",
			Delivery:   "Failed to send email.",
			Success:    "Invoice sent successfully!",
		},
	}
}

// StyledRoute serves /generate-invoice.
func StyledRoute(g Generator) Route {
	return Route{
		Strategy:  StrategyStyled,
		Generator: g,
		Subject:   func(invoice.Invoice) string { return "Your EasyInvoice is Ready" },
		Body: func(inv invoice.Invoice) string {
			return fmt.Sprintf("Please find your invoice (%s) attached.", inv.Number)
		},
		Messages: Messages{
			Validation: "Missing required invoice fields",
			Generation: "Error generating EasyInvoice.",
			Delivery:   "Failed to send invoice.",
			Success:    "EasyInvoice sent successfully!",
		},
	}
}

// RemoteRoute serves /invoice-generator.
func RemoteRoute(g Generator) Route {
	return Route{
		Strategy:  StrategyRemote,
		Generator: g,
		Subject: func(inv invoice.Invoice) string {
			return "Your Invoice - Order " + inv.Number
		},
		Body: paymentBody,
		Messages: Messages{
			Validation: "Missing required fields",
			Generation: "Failed to generate invoice PDF",
			Delivery:   "Failed to send invoice email",
			Success:    "Invoice generated and sent successfully!",
		},
	}
}
