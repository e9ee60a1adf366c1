// Package compose lays out a plain text/table invoice with gofpdf and
// serializes it to an in-memory PDF.
package compose

import (
	"bytes"
	"context"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/nyashahama/invoice-mailer-backend/internal/invoice"
)

// Layout constants, in points.
const (
	marginLeft   = 50.0
	marginTop    = 50.0
	marginBottom = 60.0
	lineHeight   = 14.0
	rowGap       = 6.0

	// Reserved below the last row for the totals block and thank-you line.
	footerHeight = 90.0
)

type column struct {
	title string
	width float64
	align string
}

// Item | Qty | Rate | Discount | Amount, starting at marginLeft.
var columns = [5]column{
	{"Item", 140, "L"},
	{"Qty", 40, "C"},
	{"Rate", 80, "R"},
	{"Discount", 70, "C"},
	{"Amount", 80, "R"},
}

func tableWidth() float64 {
	var w float64
	for _, c := range columns {
		w += c.width
	}
	return w
}

// Composer renders invoices using a fixed sender identity.
type Composer struct {
	sender invoice.Party
}

// New returns a Composer that prints sender in the header block.
func New(sender invoice.Party) *Composer {
	return &Composer{sender: sender}
}

// Generate composes inv and returns it as an attachable document named
// invoice-<number>.pdf.
func (c *Composer) Generate(_ context.Context, inv invoice.Invoice) (invoice.Document, error) {
	pdf, err := c.Compose(inv)
	if err != nil {
		return invoice.Document{}, err
	}
	return invoice.Document{
		Filename: fmt.Sprintf("invoice-%s.pdf", inv.Number),
		Content:  pdf,
	}, nil
}

// Compose renders inv to a complete, closed PDF. On any layout or write
// failure it returns an error and no bytes.
func (c *Composer) Compose(inv invoice.Invoice) ([]byte, error) {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(marginLeft, marginTop, marginLeft)
	pdf.SetAutoPageBreak(false, marginBottom)
	pdf.SetTitle("Invoice "+inv.Number, true)
	pdf.SetCreator("invoice-mailer-backend", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	c.header(pdf, tr, inv)
	tableHeader(pdf, tr)

	_, pageHeight := pdf.GetPageSize()
	for _, it := range inv.Items {
		lines, height := measureRow(pdf, tr(it.Description))
		if pdf.GetY()+height > pageHeight-marginBottom {
			pdf.AddPage()
			tableHeader(pdf, tr)
		}
		row(pdf, tr, inv.Currency, it, lines, height)
	}

	if pdf.GetY()+footerHeight > pageHeight-marginBottom {
		pdf.AddPage()
	}
	footer(pdf, tr, inv)

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("compose: layout: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("compose: output: %w", err)
	}
	return buf.Bytes(), nil
}

func (c *Composer) header(pdf *gofpdf.Fpdf, tr func(string) string, inv invoice.Invoice) {
	width := tableWidth()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(width, 26, "INVOICE", "", 1, "C", false, 0, "")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "B", 11)
	for i, line := range c.sender.Lines() {
		if i == 1 {
			pdf.SetFont("Helvetica", "", 10)
		}
		pdf.CellFormat(width, lineHeight, tr(line), "", 1, "L", false, 0, "")
	}
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(width, lineHeight, "Bill To:", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	if inv.Client != nil {
		for _, line := range inv.Client.Lines() {
			pdf.CellFormat(width, lineHeight, tr(line), "", 1, "L", false, 0, "")
		}
	}
	pdf.CellFormat(width, lineHeight, tr(inv.Recipient), "", 1, "L", false, 0, "")
	pdf.Ln(6)
	pdf.CellFormat(width, lineHeight, tr("Invoice #: "+inv.Number), "", 1, "L", false, 0, "")
	pdf.CellFormat(width, lineHeight, tr("Date: "+inv.Date), "", 1, "L", false, 0, "")
	pdf.Ln(16)
}

func tableHeader(pdf *gofpdf.Fpdf, tr func(string) string) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetX(marginLeft)
	for _, col := range columns {
		pdf.CellFormat(col.width, lineHeight+4, tr(col.title), "B", 0, col.align, false, 0, "")
	}
	pdf.Ln(lineHeight + 8)
	pdf.SetFont("Helvetica", "", 10)
}

// measureRow wraps desc to the Item column and returns the wrapped lines
// and the vertical space the row occupies, gap included.
func measureRow(pdf *gofpdf.Fpdf, desc string) ([]string, float64) {
	lines := pdf.SplitText(desc, columns[0].width)
	if len(lines) == 0 {
		lines = []string{""}
	}
	return lines, float64(len(lines))*lineHeight + rowGap
}

// row prints one line item at the current y and advances the cursor by
// height so wrapped descriptions never overlap the next row.
func row(pdf *gofpdf.Fpdf, tr func(string) string, currency string, it invoice.LineItem, lines []string, height float64) {
	y := pdf.GetY()

	for i, line := range lines {
		pdf.SetXY(marginLeft, y+float64(i)*lineHeight)
		pdf.CellFormat(columns[0].width, lineHeight, line, "", 0, columns[0].align, false, 0, "")
	}

	cells := [4]string{
		invoice.Quantity(it.Quantity),
		money(currency, it.Price),
		money(currency, it.Discount()),
		money(currency, it.Total()),
	}
	x := marginLeft + columns[0].width
	for i, text := range cells {
		col := columns[i+1]
		pdf.SetXY(x, y)
		pdf.CellFormat(col.width, lineHeight, tr(text), "", 0, col.align, false, 0, "")
		x += col.width
	}

	pdf.SetXY(marginLeft, y+height)
}

func footer(pdf *gofpdf.Fpdf, tr func(string) string, inv invoice.Invoice) {
	width := tableWidth()
	labelWidth := width - columns[4].width

	pdf.Ln(4)
	pdf.Line(marginLeft, pdf.GetY(), marginLeft+width, pdf.GetY())
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "", 10)
	totalsRow(pdf, tr, labelWidth, "Subtotal:", money(inv.Currency, inv.Totals.Subtotal))
	totalsRow(pdf, tr, labelWidth, fmt.Sprintf("Tax (%s%%):", invoice.TaxRate.Shift(2).String()), money(inv.Currency, inv.Totals.Tax))
	pdf.SetFont("Helvetica", "B", 11)
	totalsRow(pdf, tr, labelWidth, "Total:", money(inv.Currency, inv.Totals.Total))

	pdf.Ln(24)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.SetX(marginLeft)
	pdf.CellFormat(width, lineHeight, "Thank you for your business!", "", 1, "C", false, 0, "")
}

func totalsRow(pdf *gofpdf.Fpdf, tr func(string) string, labelWidth float64, label, value string) {
	pdf.SetX(marginLeft)
	pdf.CellFormat(labelWidth, lineHeight+2, tr(label), "", 0, "R", false, 0, "")
	pdf.CellFormat(columns[4].width, lineHeight+2, tr(value), "", 1, "R", false, 0, "")
}

// money prefixes the ISO code rather than a symbol; the core PDF fonts
// cannot render ₹.
func money(currency string, d decimal.Decimal) string {
	if currency == "" {
		return invoice.Money(d)
	}
	return currency + " " + invoice.Money(d)
}
