// Package config loads and validates all environment variables at startup.
// Every other package receives typed values; nothing reads os.Getenv directly.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/nyashahama/invoice-mailer-backend/internal/invoice"
)

// Mail providers accepted in MAIL_PROVIDER.
const (
	MailProviderResend   = "resend"
	MailProviderSendGrid = "sendgrid"
)

// Config is the fully-parsed application configuration.
type Config struct {
	// ── Server ────────────────────────────────────────────────────────────────
	Port          string // default "8080"
	Env           string // "development" | "staging" | "production"
	AllowedOrigin string // CORS origin in production, default "*"

	// ── Mail ──────────────────────────────────────────────────────────────────
	MailProvider   string // "resend" (default) | "sendgrid"
	ResendAPIKey   string
	ResendEndpoint string // default https://api.resend.com/emails
	SendGridAPIKey string
	SendGridHost   string // default https://api.sendgrid.com
	EmailFromAddr  string // falls back to EMAIL_USER
	EmailFromName  string

	// ── Invoice content ───────────────────────────────────────────────────────
	Currency      string // ISO code, default "INR"
	SenderCompany string
	SenderAddress string
	SenderZip     string
	SenderCity    string
	SenderCountry string
	LogoPath      string // local image for the styled template
	LogoURL       string // public URL for the remote generator
	InvoiceNotes  string
	InvoiceTerms  string
	BottomNotice  string

	// ── Styled invoices (EasyInvoice) ─────────────────────────────────────────
	EasyInvoiceURL    string
	EasyInvoiceAPIKey string

	// ── Remote invoices (invoice-generator.com) ───────────────────────────────
	InvoiceGeneratorURL    string
	InvoiceGeneratorAPIKey string
	TempDir                string

	// ── Timeouts ──────────────────────────────────────────────────────────────
	HTTPClientTimeout time.Duration // outbound calls, default 30s
	RequestTimeout    time.Duration // whole request, default 90s
}

// Load reads all environment variables and returns a validated Config.
// A .env file in the working directory is loaded first when present; real
// environment variables always take precedence over its values.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	c := &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		AllowedOrigin: getEnv("CORS_ALLOWED_ORIGIN", "*"),

		MailProvider:   strings.ToLower(getEnv("MAIL_PROVIDER", MailProviderResend)),
		ResendAPIKey:   os.Getenv("RESEND_API_KEY"),
		ResendEndpoint: os.Getenv("RESEND_ENDPOINT"),
		SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		SendGridHost:   getEnv("SENDGRID_HOST", "https://api.sendgrid.com"),
		EmailFromAddr:  getEnv("EMAIL_FROM_ADDR", os.Getenv("EMAIL_USER")),
		EmailFromName:  getEnv("EMAIL_FROM_NAME", "Invoices"),

		Currency:      strings.ToUpper(getEnv("CURRENCY", "INR")),
		SenderCompany: getEnv("SENDER_COMPANY", "Your Company"),
		SenderAddress: os.Getenv("SENDER_ADDRESS"),
		SenderZip:     os.Getenv("SENDER_ZIP"),
		SenderCity:    os.Getenv("SENDER_CITY"),
		SenderCountry: os.Getenv("SENDER_COUNTRY"),
		LogoPath:      getEnv("LOGO_PATH", "img/invoice.png"),
		LogoURL:       os.Getenv("LOGO_URL"),
		InvoiceNotes:  getEnv("INVOICE_NOTES", "Thanks for your business!"),
		InvoiceTerms:  os.Getenv("INVOICE_TERMS"),
		BottomNotice:  getEnv("INVOICE_BOTTOM_NOTICE", "Kindly pay your invoice within 15 days."),

		EasyInvoiceURL:    os.Getenv("EASYINVOICE_URL"),
		EasyInvoiceAPIKey: os.Getenv("EASYINVOICE_API_KEY"),

		InvoiceGeneratorURL:    os.Getenv("INVOICE_GENERATOR_URL"),
		InvoiceGeneratorAPIKey: os.Getenv("INVOICE_GENERATOR_API_KEY"),
		TempDir:                getEnv("TEMP_DIR", os.TempDir()),

		HTTPClientTimeout: getEnvAsDuration("HTTP_CLIENT_TIMEOUT", 30*time.Second),
		RequestTimeout:    getEnvAsDuration("REQUEST_TIMEOUT", 90*time.Second),
	}

	return c, c.validate()
}

func (c *Config) validate() error {
	var errs []error

	switch c.MailProvider {
	case MailProviderResend:
		if c.ResendAPIKey == "" {
			errs = append(errs, errors.New("missing required env var: RESEND_API_KEY"))
		}
	case MailProviderSendGrid:
		if c.SendGridAPIKey == "" {
			errs = append(errs, errors.New("missing required env var: SENDGRID_API_KEY"))
		}
	default:
		errs = append(errs, fmt.Errorf("MAIL_PROVIDER must be %q or %q, got %q",
			MailProviderResend, MailProviderSendGrid, c.MailProvider))
	}

	if c.EmailFromAddr == "" {
		errs = append(errs, errors.New("missing required env var: EMAIL_FROM_ADDR (or EMAIL_USER)"))
	}
	if c.InvoiceGeneratorAPIKey == "" {
		errs = append(errs, errors.New("missing required env var: INVOICE_GENERATOR_API_KEY"))
	}
	if len(c.Currency) != 3 {
		errs = append(errs, fmt.Errorf("CURRENCY must be a 3-letter ISO code, got %q", c.Currency))
	}

	return errors.Join(errs...)
}

// Sender returns the invoicing company printed on every invoice.
func (c *Config) Sender() invoice.Party {
	return invoice.Party{
		Company: c.SenderCompany,
		Address: c.SenderAddress,
		Zip:     c.SenderZip,
		City:    c.SenderCity,
		Country: c.SenderCountry,
	}
}

// ─── HELPERS ─────────────────────────────────────────────────────────────────

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	// A plain integer is seconds.
	if value, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(value) * time.Second
	}
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	return defaultValue
}
