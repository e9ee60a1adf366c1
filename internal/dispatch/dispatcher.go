// Package dispatch drives one invoice request through validation, PDF
// generation and email delivery, and classifies failures by the step that
// produced them.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/qmuntal/stateless"

	"github.com/nyashahama/invoice-mailer-backend/internal/email"
	"github.com/nyashahama/invoice-mailer-backend/internal/invoice"
	"github.com/nyashahama/invoice-mailer-backend/internal/metrics"
	"github.com/nyashahama/invoice-mailer-backend/internal/remote"
)

const pdfContentType = "application/pdf"

// Fallback when a request has no missing fields, only malformed ones.
const invalidFieldsMessage = "Invalid request fields"

// ErrUnknownStrategy is returned when no route is registered for a strategy.
var ErrUnknownStrategy = errors.New("dispatch: unknown strategy")

// Dispatcher is safe for concurrent use. It holds no per-request state.
type Dispatcher struct {
	normalizer *invoice.Normalizer
	sender     email.Sender
	routes     map[Strategy]Route
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// New returns a Dispatcher serving routes. metrics may be nil.
func New(normalizer *invoice.Normalizer, sender email.Sender, m *metrics.Metrics, logger *slog.Logger, routes ...Route) *Dispatcher {
	d := &Dispatcher{
		normalizer: normalizer,
		sender:     sender,
		routes:     make(map[Strategy]Route, len(routes)),
		metrics:    m,
		logger:     logger,
	}
	for _, r := range routes {
		d.routes[r.Strategy] = r
	}
	return d
}

// Route returns the route registered for s.
func (d *Dispatcher) Route(s Strategy) (Route, bool) {
	r, ok := d.routes[s]
	return r, ok
}

// Dispatch validates in, generates its PDF with the route's generator and
// emails it to the recipient exactly once. It returns the route's success
// message, or an *Error whose Kind reflects the step that failed. Nothing is
// generated for an invalid request and nothing is sent if generation fails.
func (d *Dispatcher) Dispatch(ctx context.Context, s Strategy, in invoice.Input) (string, error) {
	route, ok := d.routes[s]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
	}

	sm := newLifecycle(d.logger, s)

	inv, err := d.normalizer.Normalize(in)
	if err != nil {
		return "", d.fail(ctx, sm, route, err)
	}
	if err := sm.FireCtx(ctx, triggerValidated); err != nil {
		return "", err
	}

	doc, err := route.Generator.Generate(ctx, inv)
	if err != nil {
		return "", d.fail(ctx, sm, route, err)
	}
	if err := sm.FireCtx(ctx, triggerGenerated); err != nil {
		return "", err
	}

	msg := email.Message{
		To:      inv.Recipient,
		Subject: route.Subject(inv),
		Text:    route.Body(inv),
		Attachments: []email.Attachment{{
			Filename:    doc.Filename,
			ContentType: pdfContentType,
			Content:     doc.Content,
			Base64:      doc.Base64,
		}},
	}
	if err := d.sender.Send(ctx, msg); err != nil {
		return "", d.fail(ctx, sm, route, err)
	}
	if err := sm.FireCtx(ctx, triggerSent); err != nil {
		return "", err
	}

	d.observe(s, "done")
	d.logger.Info("dispatch: invoice sent",
		"strategy", s,
		"invoice", inv.Number,
		"to", inv.Recipient,
	)
	return route.Messages.Success, nil
}

// fail moves sm to FAILED and builds the client-facing error for the state
// the request was in.
func (d *Dispatcher) fail(ctx context.Context, sm *stateless.StateMachine, route Route, cause error) error {
	kind := kindFor(currentState(sm))
	// The remote PDF exists but could not be read back for attachment.
	if kind == KindGeneration && errors.Is(cause, remote.ErrReadBack) {
		kind = KindDelivery
	}
	if err := sm.FireCtx(ctx, triggerFail); err != nil {
		d.logger.Error("dispatch: fail transition", "strategy", route.Strategy, "error", err)
	}

	e := &Error{Kind: kind, Err: cause}
	switch kind {
	case KindValidation:
		e.Message = route.Messages.Validation
		var ve *invoice.ValidationError
		if errors.As(cause, &ve) {
			e.Fields = ve.Fields()
			if len(ve.Missing) == 0 {
				e.Message = invalidFieldsMessage
			}
		}
	case KindGeneration:
		e.Message = route.Messages.Generation
	case KindDelivery:
		e.Message = route.Messages.Delivery
	}

	d.observe(route.Strategy, kind.String()+"_failed")
	return e
}

func (d *Dispatcher) observe(s Strategy, outcome string) {
	if d.metrics != nil {
		d.metrics.ObserveDispatch(string(s), outcome)
	}
}
