// Package api implements the HTTP layer for the invoice mailer.
// Handlers are methods on *Server; each route decodes its body and hands it
// to the dispatcher, which owns validation, generation and delivery.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nyashahama/invoice-mailer-backend/internal/dispatch"
	"github.com/nyashahama/invoice-mailer-backend/internal/invoice"
	"github.com/nyashahama/invoice-mailer-backend/internal/metrics"
)

// Config holds values read from environment variables at startup.
type Config struct {
	// Env is "production", "staging", or "development".
	Env string

	// AllowedOrigin is returned in Access-Control-Allow-Origin in
	// production. Other environments echo the request origin.
	AllowedOrigin string

	// RequestTimeout bounds one request end to end, including the outbound
	// generator and mail calls. Zero means 90s.
	RequestTimeout time.Duration
}

// Dispatcher runs one invoice request through its lifecycle.
type Dispatcher interface {
	Dispatch(ctx context.Context, s dispatch.Strategy, in invoice.Input) (string, error)
}

// Server holds all shared dependencies.
type Server struct {
	dispatcher Dispatcher
	metrics    *metrics.Metrics

	cfg    Config
	logger *slog.Logger
}

// NewServer constructs the Server and wires the chi router. The returned
// http.Handler is ready to pass to http.ListenAndServe.
func NewServer(d Dispatcher, m *metrics.Metrics, cfg Config, logger *slog.Logger) http.Handler {
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 90 * time.Second
	}
	s := &Server{
		dispatcher: d,
		metrics:    m,
		cfg:        cfg,
		logger:     logger,
	}
	return s.routes()
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	// ── Global middleware ─────────────────────────────────────────────────────
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggerMiddleware)
	r.Use(s.metricsMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(s.corsMiddleware)
	r.Use(middleware.Timeout(s.cfg.RequestTimeout))

	// ── Health ────────────────────────────────────────────────────────────────
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("Invoice Generator and Sender API is running"))
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	// ── Invoices ──────────────────────────────────────────────────────────────
	r.Post("/send-invoice", s.handleSendInvoice)
	r.Post("/generate-invoice", s.handleGenerateInvoice)
	r.Post("/invoice-generator", s.handleInvoiceGenerator)

	return r
}
