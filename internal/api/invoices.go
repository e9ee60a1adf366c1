package api

import (
	"errors"
	"net/http"

	"github.com/nyashahama/invoice-mailer-backend/internal/dispatch"
	"github.com/nyashahama/invoice-mailer-backend/internal/invoice"
)

type messageResponse struct {
	Message string `json:"message"`
}

type validationResponse struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields,omitempty"`
}

// handleSendInvoice composes the PDF in-process and emails it.
//
// POST /send-invoice
// Body: {"orderId": "...", "amount": 199.5, "email": "...", "products": [...]}
func (s *Server) handleSendInvoice(w http.ResponseWriter, r *http.Request) {
	var req invoice.OrderRequest
	if !decode(w, r, &req) {
		return
	}
	s.dispatch(w, r, dispatch.StrategyManual, req)
}

// handleGenerateInvoice renders the invoice through the styled template API.
//
// POST /generate-invoice
// Body: {"email", "invoiceNumber", "invoiceDate", "products", "client"}
func (s *Server) handleGenerateInvoice(w http.ResponseWriter, r *http.Request) {
	var req invoice.StyledRequest
	if !decode(w, r, &req) {
		return
	}
	s.dispatch(w, r, dispatch.StrategyStyled, req)
}

// handleInvoiceGenerator renders the invoice with the remote generator
// service.
//
// POST /invoice-generator
// Body: same as /send-invoice.
func (s *Server) handleInvoiceGenerator(w http.ResponseWriter, r *http.Request) {
	var req invoice.OrderRequest
	if !decode(w, r, &req) {
		return
	}
	s.dispatch(w, r, dispatch.StrategyRemote, req)
}

// dispatch runs the request and maps the outcome onto the response.
func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, strategy dispatch.Strategy, in invoice.Input) {
	msg, err := s.dispatcher.Dispatch(r.Context(), strategy, in)
	if err == nil {
		respond(w, http.StatusOK, messageResponse{Message: msg})
		return
	}

	var de *dispatch.Error
	if !errors.As(err, &de) {
		s.respondInternalErr(w, r, err)
		return
	}

	if de.Kind == dispatch.KindValidation {
		s.logger.Info("invoice rejected",
			"strategy", strategy,
			"fields", de.Fields,
			logField(r),
		)
		respond(w, http.StatusBadRequest, validationResponse{Error: de.Message, Fields: de.Fields})
		return
	}

	s.logger.Error("invoice failed",
		"strategy", strategy,
		"kind", de.Kind.String(),
		"error", de.Err,
		logField(r),
	)
	respondErr(w, http.StatusInternalServerError, de.Message)
}
