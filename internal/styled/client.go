// Package styled generates branded invoices through the EasyInvoice API.
// The API renders the PDF; this package only maps an invoice onto its
// request shape and unwraps the base64 PDF it returns.
package styled

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/nyashahama/invoice-mailer-backend/internal/invoice"
)

// DefaultEndpoint is the public EasyInvoice v2 endpoint.
const DefaultEndpoint = "https://api.easyinvoice.cloud/v2/free/invoices"

// Config holds the fixed parts of every styled invoice.
type Config struct {
	Endpoint     string // default DefaultEndpoint
	APIKey       string // optional; the free tier needs none
	Currency     string
	Sender       invoice.Party
	LogoPath     string
	BottomNotice string
	Timeout      time.Duration // default 30s
}

// Client is the styled-invoice generator.
type Client struct {
	http *resty.Client
	cfg  Config
}

// NewClient returns a Client for cfg.
func NewClient(cfg Config) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		http: resty.New().
			SetTimeout(cfg.Timeout).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json"),
		cfg: cfg,
	}
}

// ─── EASYINVOICE API SHAPES ───────────────────────────────────────────────────

type createRequest struct {
	Data invoiceData `json:"data"`
}

type invoiceData struct {
	APIKey        string         `json:"apiKey,omitempty"`
	Currency      string         `json:"currency"`
	TaxNotation   string         `json:"taxNotation"`
	MarginTop     int            `json:"marginTop"`
	MarginRight   int            `json:"marginRight"`
	MarginLeft    int            `json:"marginLeft"`
	MarginBottom  int            `json:"marginBottom"`
	Logo          string         `json:"logo"`
	Sender        invoice.Party  `json:"sender"`
	Client        invoice.Party  `json:"client"`
	InvoiceNumber string         `json:"invoiceNumber"`
	InvoiceDate   string         `json:"invoiceDate"`
	Products      []productEntry `json:"products"`
	BottomNotice  string         `json:"bottomNotice"`
}

type productEntry struct {
	Quantity    float64 `json:"quantity"`
	Description string  `json:"description"`
	Tax         float64 `json:"tax"`
	Price       float64 `json:"price"`
}

type createResponse struct {
	Data struct {
		PDF string `json:"pdf"`
	} `json:"data"`
	Message string `json:"message"`
}

// ─── GENERATOR IMPLEMENTATION ─────────────────────────────────────────────────

// Generate renders inv through the API and returns the PDF as base64 text.
func (c *Client) Generate(ctx context.Context, inv invoice.Invoice) (invoice.Document, error) {
	logo, err := LoadLogo(c.cfg.LogoPath)
	if err != nil {
		return invoice.Document{}, err
	}

	var parsed, apiErr createResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(createRequest{Data: c.buildData(inv, logo)}).
		SetResult(&parsed).
		SetError(&apiErr).
		Post(c.cfg.Endpoint)
	if err != nil {
		return invoice.Document{}, fmt.Errorf("styled: http request: %w", err)
	}
	if resp.IsError() {
		return invoice.Document{}, fmt.Errorf("styled: unexpected status %d: %.200s", resp.StatusCode(), apiErr.Message)
	}
	if parsed.Data.PDF == "" {
		return invoice.Document{}, fmt.Errorf("styled: response has no pdf: %.200s", parsed.Message)
	}
	if _, err := base64.StdEncoding.DecodeString(parsed.Data.PDF); err != nil {
		return invoice.Document{}, fmt.Errorf("styled: pdf is not valid base64: %w", err)
	}

	return invoice.Document{
		Filename: fmt.Sprintf("invoice-%s.pdf", inv.Number),
		Content:  []byte(parsed.Data.PDF),
		Base64:   true,
	}, nil
}

func (c *Client) buildData(inv invoice.Invoice, logo string) invoiceData {
	data := invoiceData{
		APIKey:        c.cfg.APIKey,
		Currency:      c.cfg.Currency,
		TaxNotation:   "gst",
		MarginTop:     25,
		MarginRight:   25,
		MarginLeft:    25,
		MarginBottom:  25,
		Logo:          logo,
		Sender:        c.cfg.Sender,
		InvoiceNumber: inv.Number,
		InvoiceDate:   inv.Date,
		BottomNotice:  c.cfg.BottomNotice,
	}
	if inv.Client != nil {
		data.Client = *inv.Client
	}

	defaultTax := invoice.TaxRate.Shift(2).InexactFloat64()
	for _, it := range inv.Items {
		tax := defaultTax
		if it.TaxPercent != nil {
			tax = it.TaxPercent.InexactFloat64()
		}
		data.Products = append(data.Products, productEntry{
			Quantity:    it.Quantity.InexactFloat64(),
			Description: it.Description,
			Tax:         tax,
			Price:       it.Price.InexactFloat64(),
		})
	}
	return data
}
