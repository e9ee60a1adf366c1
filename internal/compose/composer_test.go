package compose_test

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/nyashahama/invoice-mailer-backend/internal/compose"
	"github.com/nyashahama/invoice-mailer-backend/internal/invoice"
)

func testInvoice(t *testing.T, products []invoice.Product) invoice.Invoice {
	t.Helper()
	n := invoice.NewNormalizer("INR", func() time.Time {
		return time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	})
	inv, err := n.Normalize(invoice.OrderRequest{
		OrderID:  "ord_42",
		Amount:   199.5,
		Email:    "buyer@example.com",
		Products: products,
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	return inv
}

func sender() invoice.Party {
	return invoice.Party{Company: "Buy Me A Gradient", Address: "Corso Italia 13", Zip: "1234 AB", City: "Milan", Country: "IT"}
}

// assertWellFormed checks the structural markers every complete PDF carries.
func assertWellFormed(t *testing.T, pdf []byte) {
	t.Helper()
	if len(pdf) == 0 {
		t.Fatal("pdf is empty")
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF-1.")) {
		t.Errorf("missing PDF header, got %q", pdf[:min(len(pdf), 16)])
	}
	for _, marker := range []string{"xref", "trailer", "startxref", "/Type /Catalog"} {
		if !bytes.Contains(pdf, []byte(marker)) {
			t.Errorf("missing %q", marker)
		}
	}
	tail := pdf[max(0, len(pdf)-32):]
	if !bytes.Contains(tail, []byte("%%EOF")) {
		t.Errorf("document not closed, tail: %q", tail)
	}
}

func pageCount(pdf []byte) int {
	return bytes.Count(pdf, []byte("/Type /Page\n"))
}

func TestCompose_SingleItemProducesCompleteDocument(t *testing.T) {
	inv := testInvoice(t, []invoice.Product{{Description: "Widget", Quantity: 2, Price: 100}})

	pdf, err := compose.New(sender()).Compose(inv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertWellFormed(t, pdf)
	if got := pageCount(pdf); got != 1 {
		t.Errorf("expected 1 page, got %d", got)
	}
}

func TestCompose_LongTableBreaksAcrossPages(t *testing.T) {
	products := make([]invoice.Product, 0, 80)
	for i := range 80 {
		products = append(products, invoice.Product{
			Description: fmt.Sprintf("Line %d %s", i, strings.Repeat("long description ", 4)),
			Quantity:    1,
			Price:       10,
		})
	}
	inv := testInvoice(t, products)

	pdf, err := compose.New(sender()).Compose(inv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertWellFormed(t, pdf)
	if got := pageCount(pdf); got < 2 {
		t.Errorf("expected multiple pages, got %d", got)
	}
}

func TestCompose_NonLatinTextDoesNotFail(t *testing.T) {
	inv := testInvoice(t, []invoice.Product{{Description: "Café crème — ₹ édition", Quantity: 1, Price: 5}})

	pdf, err := compose.New(invoice.Party{}).Compose(inv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertWellFormed(t, pdf)
}

func TestGenerate_NamesDocumentAfterInvoiceNumber(t *testing.T) {
	inv := testInvoice(t, []invoice.Product{{Description: "Widget", Quantity: 1, Price: 1}})

	doc, err := compose.New(sender()).Generate(context.Background(), inv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Filename != "invoice-ord_42.pdf" {
		t.Errorf("filename: got %q", doc.Filename)
	}
	if doc.Base64 {
		t.Error("composer output should be raw bytes")
	}
	assertWellFormed(t, doc.Content)
}
