package styled_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nyashahama/invoice-mailer-backend/internal/invoice"
	"github.com/nyashahama/invoice-mailer-backend/internal/styled"
)

// writePNG writes a solid w×h PNG into a temp dir and returns its path.
func writePNG(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := range w {
		for y := range h {
			img.Set(x, y, color.NRGBA{R: 200, G: 40, B: 90, A: 255})
		}
	}
	path := filepath.Join(t.TempDir(), "invoice.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create logo: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode logo: %v", err)
	}
	return path
}

func styledInvoice(t *testing.T) invoice.Invoice {
	t.Helper()
	n := invoice.NewNormalizer("INR", func() time.Time { return time.Unix(0, 0) })
	tax := 6.0
	inv, err := n.Normalize(invoice.StyledRequest{
		Email:         "client@example.com",
		InvoiceNumber: "2026.0001",
		InvoiceDate:   "1.1.2026",
		Products: []invoice.Product{
			{Description: "Design", Quantity: 2, Price: 100},
			{Description: "Hosting", Quantity: 1, Price: 20, Tax: &tax},
		},
		Client: &invoice.Party{Company: "Client Corp", City: "Milan"},
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	return inv
}

func fakeAPI(t *testing.T, status int, respBody string, got *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		if got != nil {
			_ = json.Unmarshal(raw, got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, respBody)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newClient(endpoint, logoPath string) *styled.Client {
	return styled.NewClient(styled.Config{
		Endpoint:     endpoint,
		Currency:     "INR",
		Sender:       invoice.Party{Company: "Buy Me A Gradient", City: "Milan"},
		LogoPath:     logoPath,
		BottomNotice: "Kindly pay your invoice within 15 days.",
	})
}

// ─── LoadLogo ─────────────────────────────────────────────────────────────────

func TestLoadLogo_FitsLargeImages(t *testing.T) {
	encoded, err := styled.LoadLogo(writePNG(t, 600, 200))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		t.Fatalf("logo is not base64: %v", err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("logo is not png: %v", err)
	}
	if cfg.Width != 300 || cfg.Height != 100 {
		t.Errorf("got %dx%d, want 300x100", cfg.Width, cfg.Height)
	}
}

func TestLoadLogo_KeepsSmallImages(t *testing.T) {
	encoded, err := styled.LoadLogo(writePNG(t, 40, 20))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	raw, _ := base64.StdEncoding.DecodeString(encoded)
	cfg, err := png.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("logo is not png: %v", err)
	}
	if cfg.Width != 40 || cfg.Height != 20 {
		t.Errorf("got %dx%d, want 40x20", cfg.Width, cfg.Height)
	}
}

func TestLoadLogo_DefaultAssetLoads(t *testing.T) {
	encoded, err := styled.LoadLogo(filepath.Join("..", "..", "img", "invoice.png"))
	if err != nil {
		t.Fatalf("default logo: %v", err)
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		t.Fatalf("decode base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if b := img.Bounds(); b.Dx() > 300 || b.Dy() > 300 {
		t.Errorf("logo not fitted: %v", b)
	}
}

func TestLoadLogo_MissingFile(t *testing.T) {
	if _, err := styled.LoadLogo(filepath.Join(t.TempDir(), "nope.png")); err == nil {
		t.Fatal("expected error for missing logo")
	}
}

// ─── Generate ─────────────────────────────────────────────────────────────────

func TestGenerate_ReturnsBase64Document(t *testing.T) {
	pdf := base64.StdEncoding.EncodeToString([]byte("%PDF-1.4 styled"))
	var got map[string]any
	srv := fakeAPI(t, http.StatusOK, `{"data":{"pdf":"`+pdf+`"}}`, &got)

	doc, err := newClient(srv.URL, writePNG(t, 10, 10)).Generate(context.Background(), styledInvoice(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !doc.Base64 {
		t.Error("styled documents should be flagged base64")
	}
	if string(doc.Content) != pdf {
		t.Errorf("content: got %q", doc.Content)
	}
	if doc.Filename != "invoice-2026.0001.pdf" {
		t.Errorf("filename: got %q", doc.Filename)
	}

	data, ok := got["data"].(map[string]any)
	if !ok {
		t.Fatalf("request not wrapped in data: %v", got)
	}
	if data["logo"] == "" || data["logo"] == nil {
		t.Error("logo missing from payload")
	}
	if data["currency"] != "INR" || data["taxNotation"] != "gst" {
		t.Errorf("unexpected currency/taxNotation: %v %v", data["currency"], data["taxNotation"])
	}
	if data["invoiceNumber"] != "2026.0001" || data["invoiceDate"] != "1.1.2026" {
		t.Errorf("unexpected number/date: %v %v", data["invoiceNumber"], data["invoiceDate"])
	}
	client := data["client"].(map[string]any)
	if client["company"] != "Client Corp" {
		t.Errorf("client: got %v", client)
	}
	products := data["products"].([]any)
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}
	if tax := products[0].(map[string]any)["tax"]; tax != 5.0 {
		t.Errorf("default tax: got %v", tax)
	}
	if tax := products[1].(map[string]any)["tax"]; tax != 6.0 {
		t.Errorf("explicit tax: got %v", tax)
	}
}

func TestGenerate_ServerErrorFails(t *testing.T) {
	srv := fakeAPI(t, http.StatusInternalServerError, `{"message":"boom"}`, nil)

	if _, err := newClient(srv.URL, writePNG(t, 10, 10)).Generate(context.Background(), styledInvoice(t)); err == nil {
		t.Fatal("expected error for 500 response")
	}
}

func TestGenerate_ErrorBodyMessageIsReported(t *testing.T) {
	srv := fakeAPI(t, http.StatusTooManyRequests, `{"message":"quota exceeded"}`, nil)

	_, err := newClient(srv.URL, writePNG(t, 10, 10)).Generate(context.Background(), styledInvoice(t))
	if err == nil {
		t.Fatal("expected error for 429 response")
	}
	if !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("expected API message in error, got %v", err)
	}
}

func TestGenerate_MalformedSuccessBodyFails(t *testing.T) {
	srv := fakeAPI(t, http.StatusOK, `{"data":`, nil)

	if _, err := newClient(srv.URL, writePNG(t, 10, 10)).Generate(context.Background(), styledInvoice(t)); err == nil {
		t.Fatal("expected error for truncated JSON")
	}
}

func TestGenerate_EmptyPDFFails(t *testing.T) {
	srv := fakeAPI(t, http.StatusOK, `{"data":{}}`, nil)

	if _, err := newClient(srv.URL, writePNG(t, 10, 10)).Generate(context.Background(), styledInvoice(t)); err == nil {
		t.Fatal("expected error for empty pdf")
	}
}

func TestGenerate_MissingLogoFailsBeforeCallingAPI(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	_, err := newClient(srv.URL, filepath.Join(t.TempDir(), "missing.png")).Generate(context.Background(), styledInvoice(t))
	if err == nil {
		t.Fatal("expected error for missing logo")
	}
	if called {
		t.Error("API should not be called when the logo cannot be read")
	}
}
