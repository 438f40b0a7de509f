// Package httphandler is the HTTP driving adapter exposing the AIP clients as
// a JSON gateway.
package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ericfisherdev/aipclient/internal/application"
	"github.com/ericfisherdev/aipclient/internal/domain/model"
	"github.com/ericfisherdev/aipclient/internal/domain/port/driven"
)

// maxBodyBytes bounds request bodies; base64 images and PDFs dominate.
const maxBodyBytes = 16 << 20

var validate = validator.New()

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	lexer    driven.LexicalAnalyzer
	invoices *application.InvoiceService
	logger   *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	lexer driven.LexicalAnalyzer,
	invoices *application.InvoiceService,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		lexer:    lexer,
		invoices: invoices,
		logger:   logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/lexer", h.Lexer)
	mux.HandleFunc("POST /api/v1/invoices", h.RecognizeInvoice)
	mux.HandleFunc("GET /api/v1/invoices", h.ListInvoices)
	mux.HandleFunc("GET /api/v1/invoices/{code}/{num}", h.GetInvoice)
	mux.HandleFunc("GET /api/v1/health", h.Health)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// Lexer runs lexical analysis on the request text. A service-level failure is
// answered with the AIP error envelope and status 200.
func (h *Handler) Lexer(w http.ResponseWriter, r *http.Request) {
	var req LexerRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.lexer.Lexer(r.Context(), req.Text, req.Custom)
	if err != nil {
		h.writeUpstreamError(w, "lexer", err)
		return
	}

	if result.Failed() {
		writeJSON(w, http.StatusOK, result.Error)
		return
	}

	writeJSON(w, http.StatusOK, result.Lexer)
}

// RecognizeInvoice recognizes a VAT invoice from an image, image URL or PDF.
func (h *Handler) RecognizeInvoice(w http.ResponseWriter, r *http.Request) {
	var req InvoiceRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.invoices.Recognize(r.Context(), req.params())
	if err != nil {
		h.writeUpstreamError(w, "vat_invoice", err)
		return
	}

	if result.Failed() {
		writeJSON(w, http.StatusOK, result.Error)
		return
	}

	writeJSON(w, http.StatusOK, InvoiceResponse{LogID: result.LogID, WordsResult: result.Invoice})
}

// ListInvoices returns the most recently recognized invoices.
func (h *Handler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	records, err := h.invoices.History(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list invoices", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]InvoiceRecordResponse, 0, len(records))
	for _, rec := range records {
		resp = append(resp, toInvoiceRecordResponse(rec, false))
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetInvoice returns a single recorded invoice by code and number.
func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	num := r.PathValue("num")

	rec, err := h.invoices.Lookup(r.Context(), code, num)
	if err != nil {
		h.logger.Error("failed to get invoice", "invoice_code", code, "invoice_num", num, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if rec == nil {
		writeError(w, http.StatusNotFound, "invoice not found")
		return
	}

	writeJSON(w, http.StatusOK, toInvoiceRecordResponse(*rec, true))
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// decode reads and validates a JSON request body, writing a 400 on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}

	if err := validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}

	return true
}

// writeUpstreamError maps client errors onto gateway status codes.
func (h *Handler) writeUpstreamError(w http.ResponseWriter, op string, err error) {
	var (
		authErr   *model.AuthenticationError
		fetchErr  *model.ResourceFetchError
		remoteErr *model.RemoteServiceError
	)

	switch {
	case errors.Is(err, model.ErrInvalidInvoiceSource), errors.Is(err, model.ErrInvalidInvoiceType):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &fetchErr):
		writeError(w, http.StatusUnprocessableEntity, fetchErr.Error())
	case errors.As(err, &authErr):
		h.logger.Error("aip authentication failed", "operation", op, "error", err)
		writeError(w, http.StatusBadGateway, "authentication with upstream failed")
	case errors.As(err, &remoteErr):
		h.logger.Error("aip call failed", "operation", op, "status", remoteErr.StatusCode, "error", err)
		writeError(w, http.StatusBadGateway, "upstream service error")
	default:
		h.logger.Error("request failed", "operation", op, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return "invalid field " + fe.Field() + ": " + fe.Tag()
	}
	return "invalid request"
}
