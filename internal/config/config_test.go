package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nyashahama/invoice-mailer-backend/internal/config"
)

// setEnv clears every variable Load reads, then applies overrides.
func setEnv(t *testing.T, overrides map[string]string) {
	t.Helper()
	for _, k := range []string{
		"PORT", "ENV", "CORS_ALLOWED_ORIGIN",
		"MAIL_PROVIDER", "RESEND_API_KEY", "RESEND_ENDPOINT", "SENDGRID_API_KEY", "SENDGRID_HOST",
		"EMAIL_FROM_ADDR", "EMAIL_USER", "EMAIL_FROM_NAME",
		"CURRENCY", "SENDER_COMPANY", "SENDER_ADDRESS", "SENDER_ZIP", "SENDER_CITY", "SENDER_COUNTRY",
		"LOGO_PATH", "LOGO_URL", "INVOICE_NOTES", "INVOICE_TERMS", "INVOICE_BOTTOM_NOTICE",
		"EASYINVOICE_URL", "EASYINVOICE_API_KEY",
		"INVOICE_GENERATOR_URL", "INVOICE_GENERATOR_API_KEY", "TEMP_DIR",
		"HTTP_CLIENT_TIMEOUT", "REQUEST_TIMEOUT",
	} {
		t.Setenv(k, "")
	}
	for k, v := range overrides {
		t.Setenv(k, v)
	}
	// Run from an empty directory so no stray .env is picked up.
	t.Chdir(t.TempDir())
}

func minimalEnv() map[string]string {
	return map[string]string{
		"RESEND_API_KEY":            "re_test",
		"EMAIL_FROM_ADDR":           "billing@example.com",
		"INVOICE_GENERATOR_API_KEY": "sk_test",
	}
}

func TestLoad_Defaults(t *testing.T) {
	setEnv(t, minimalEnv())

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" || cfg.Env != "development" {
		t.Errorf("server defaults: got %q %q", cfg.Port, cfg.Env)
	}
	if cfg.MailProvider != config.MailProviderResend {
		t.Errorf("mail provider: got %q", cfg.MailProvider)
	}
	if cfg.Currency != "INR" {
		t.Errorf("currency: got %q", cfg.Currency)
	}
	if cfg.LogoPath != "img/invoice.png" {
		t.Errorf("logo path: got %q", cfg.LogoPath)
	}
	if cfg.HTTPClientTimeout != 30*time.Second {
		t.Errorf("client timeout: got %v", cfg.HTTPClientTimeout)
	}
}

func TestLoad_MissingRequiredReportsAll(t *testing.T) {
	setEnv(t, nil)

	_, err := config.Load()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"RESEND_API_KEY", "EMAIL_FROM_ADDR", "INVOICE_GENERATOR_API_KEY"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %s in error, got %v", want, err)
		}
	}
}

func TestLoad_SendGridRequiresItsOwnKey(t *testing.T) {
	env := minimalEnv()
	env["MAIL_PROVIDER"] = "SendGrid"
	setEnv(t, env)

	_, err := config.Load()
	if err == nil || !strings.Contains(err.Error(), "SENDGRID_API_KEY") {
		t.Fatalf("expected SENDGRID_API_KEY error, got %v", err)
	}
}

func TestLoad_UnknownMailProvider(t *testing.T) {
	env := minimalEnv()
	env["MAIL_PROVIDER"] = "pigeon"
	setEnv(t, env)

	if _, err := config.Load(); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestLoad_EmailUserFallback(t *testing.T) {
	env := minimalEnv()
	delete(env, "EMAIL_FROM_ADDR")
	env["EMAIL_USER"] = "legacy@example.com"
	setEnv(t, env)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.EmailFromAddr != "legacy@example.com" {
		t.Errorf("from addr: got %q", cfg.EmailFromAddr)
	}
}

func TestLoad_DurationAcceptsSecondsAndSyntax(t *testing.T) {
	env := minimalEnv()
	env["HTTP_CLIENT_TIMEOUT"] = "45"
	env["REQUEST_TIMEOUT"] = "2m"
	setEnv(t, env)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTPClientTimeout != 45*time.Second {
		t.Errorf("client timeout: got %v", cfg.HTTPClientTimeout)
	}
	if cfg.RequestTimeout != 2*time.Minute {
		t.Errorf("request timeout: got %v", cfg.RequestTimeout)
	}
}

func TestLoad_DotEnvFillsUnsetVarsOnly(t *testing.T) {
	setEnv(t, map[string]string{"RESEND_API_KEY": "from_env"})

	dotenv := "RESEND_API_KEY=from_file\nEMAIL_FROM_ADDR=file@example.com\nINVOICE_GENERATOR_API_KEY=sk_file\n"
	if err := os.WriteFile(filepath.Join(".", ".env"), []byte(dotenv), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	// godotenv sets variables process-wide; restore them after the test.
	t.Setenv("EMAIL_FROM_ADDR", "")
	t.Setenv("INVOICE_GENERATOR_API_KEY", "")
	os.Unsetenv("EMAIL_FROM_ADDR")
	os.Unsetenv("INVOICE_GENERATOR_API_KEY")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ResendAPIKey != "from_env" {
		t.Errorf("real env should win, got %q", cfg.ResendAPIKey)
	}
	if cfg.EmailFromAddr != "file@example.com" || cfg.InvoiceGeneratorAPIKey != "sk_file" {
		t.Errorf(".env values not loaded: %q %q", cfg.EmailFromAddr, cfg.InvoiceGeneratorAPIKey)
	}
}

func TestConfig_SenderParty(t *testing.T) {
	env := minimalEnv()
	env["SENDER_COMPANY"] = "Acme Ltd"
	env["SENDER_CITY"] = "Pune"
	setEnv(t, env)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := cfg.Sender()
	if p.Company != "Acme Ltd" || p.City != "Pune" {
		t.Errorf("sender: got %+v", p)
	}
}
