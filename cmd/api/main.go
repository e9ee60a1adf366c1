package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/nyashahama/invoice-mailer-backend/internal/api"
	"github.com/nyashahama/invoice-mailer-backend/internal/compose"
	"github.com/nyashahama/invoice-mailer-backend/internal/config"
	"github.com/nyashahama/invoice-mailer-backend/internal/dispatch"
	"github.com/nyashahama/invoice-mailer-backend/internal/email"
	"github.com/nyashahama/invoice-mailer-backend/internal/invoice"
	"github.com/nyashahama/invoice-mailer-backend/internal/metrics"
	"github.com/nyashahama/invoice-mailer-backend/internal/remote"
	"github.com/nyashahama/invoice-mailer-backend/internal/styled"
)

func main() {
	// ── Logger ────────────────────────────────────────────────────────────────
	// JSON in production, pretty text in development.
	var logger *slog.Logger
	if os.Getenv("ENV") == "production" {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	// ── Config ────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger.Info("config loaded", "env", cfg.Env, "port", cfg.Port, "mail_provider", cfg.MailProvider)

	// ── Email ─────────────────────────────────────────────────────────────────
	var mailer email.Sender
	switch cfg.MailProvider {
	case config.MailProviderSendGrid:
		mailer = email.NewSendGridClient(cfg.SendGridAPIKey, cfg.EmailFromAddr, cfg.EmailFromName, cfg.SendGridHost)
	default:
		mailer = email.NewResendClient(cfg.ResendAPIKey, cfg.EmailFromAddr, cfg.EmailFromName, cfg.ResendEndpoint)
	}

	// ── Generators ────────────────────────────────────────────────────────────
	sender := cfg.Sender()

	composer := compose.New(sender)

	styledClient := styled.NewClient(styled.Config{
		Endpoint:     cfg.EasyInvoiceURL,
		APIKey:       cfg.EasyInvoiceAPIKey,
		Currency:     cfg.Currency,
		Sender:       sender,
		LogoPath:     cfg.LogoPath,
		BottomNotice: cfg.BottomNotice,
		Timeout:      cfg.HTTPClientTimeout,
	})
	if _, err := styled.LoadLogo(cfg.LogoPath); err != nil {
		// Not fatal: only /generate-invoice needs the logo.
		logger.Warn("styled invoices will fail until the logo is readable", "path", cfg.LogoPath, "error", err)
	}

	remoteClient, err := remote.NewClient(remote.Config{
		Endpoint: cfg.InvoiceGeneratorURL,
		APIKey:   cfg.InvoiceGeneratorAPIKey,
		From:     strings.Join(sender.Lines(), "\n"),
		LogoURL:  cfg.LogoURL,
		Notes:    cfg.InvoiceNotes,
		Terms:    cfg.InvoiceTerms,
		TempDir:  cfg.TempDir,
		Timeout:  cfg.HTTPClientTimeout,
	})
	if err != nil {
		return fmt.Errorf("remote generator: %w", err)
	}

	// ── Dispatcher ────────────────────────────────────────────────────────────
	m := metrics.New()
	dispatcher := dispatch.New(
		invoice.NewNormalizer(cfg.Currency, nil),
		mailer,
		m,
		logger,
		dispatch.ManualRoute(composer),
		dispatch.StyledRoute(styledClient),
		dispatch.RemoteRoute(remoteClient),
	)

	// ── HTTP server ───────────────────────────────────────────────────────────
	handler := api.NewServer(dispatcher, m, api.Config{
		Env:            cfg.Env,
		AllowedOrigin:  cfg.AllowedOrigin,
		RequestTimeout: cfg.RequestTimeout,
	}, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 10*time.Second, // outlive the per-request timeout
		IdleTimeout:  120 * time.Second,
	}

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until either a signal arrives or the server dies unexpectedly.
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	}

	// In-flight invoices may be waiting on a generator or the mail provider.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("shutdown complete")
	return nil
}
