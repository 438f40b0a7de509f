package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/aipclient/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the gateway's own error body. Service-level failures use
// the AIP error envelope instead.
type errorResponse struct {
	Error string `json:"error"`
}

// LexerRequest is the JSON body for the lexer endpoint.
type LexerRequest struct {
	Text   string `json:"text" validate:"required"`
	Custom bool   `json:"custom"`
}

// InvoiceRequest is the JSON body for the invoice recognition endpoint.
// Image and PDF are base64 strings on the wire.
type InvoiceRequest struct {
	Image  []byte `json:"image"`
	URL    string `json:"url" validate:"omitempty,url"`
	PDF    []byte `json:"pdf"`
	PDFURL string `json:"pdf_url" validate:"omitempty,url"`
	Type   string `json:"type" validate:"omitempty,oneof=normal roll"`
}

// InvoiceResponse is the JSON representation of a successful recognition.
type InvoiceResponse struct {
	LogID       int64             `json:"logId"`
	WordsResult *model.VatInvoice `json:"wordsResult"`
}

// InvoiceRecordResponse is the JSON representation of a recorded invoice.
type InvoiceRecordResponse struct {
	ID                int64   `json:"id"`
	InvoiceCode       string  `json:"invoiceCode"`
	InvoiceNum        string  `json:"invoiceNum"`
	InvoiceType       string  `json:"invoiceType"`
	InvoiceDate       string  `json:"invoiceDate"`
	SellerName        string  `json:"sellerName"`
	PurchaserName     string  `json:"purchaserName"`
	TotalAmount       string  `json:"totalAmount"`
	TotalTax          float64 `json:"totalTax"`
	TotalAmountAndTax string  `json:"totalAmountAndTax"`
	LogID             int64   `json:"logId"`
	RecognizedAt      string  `json:"recognizedAt"`

	// Fields is populated only on the single-invoice endpoint.
	Fields map[string]any `json:"fields,omitempty"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

func (req InvoiceRequest) params() model.VatInvoiceParams {
	return model.VatInvoiceParams{
		Image:  req.Image,
		URL:    req.URL,
		PDF:    req.PDF,
		PDFURL: req.PDFURL,
		Type:   model.InvoiceType(req.Type),
	}
}

// toInvoiceRecordResponse converts a stored InvoiceRecord to its JSON representation.
func toInvoiceRecordResponse(rec model.InvoiceRecord, withFields bool) InvoiceRecordResponse {
	resp := InvoiceRecordResponse{
		ID:                rec.ID,
		InvoiceCode:       rec.InvoiceCode,
		InvoiceNum:        rec.InvoiceNum,
		InvoiceType:       rec.InvoiceType,
		InvoiceDate:       rec.InvoiceDate,
		SellerName:        rec.SellerName,
		PurchaserName:     rec.PurchaserName,
		TotalAmount:       rec.TotalAmount,
		TotalTax:          rec.TotalTax,
		TotalAmountAndTax: rec.TotalAmountAndTax,
		LogID:             rec.LogID,
		RecognizedAt:      rec.RecognizedAt.UTC().Format(time.RFC3339),
	}
	if withFields {
		resp.Fields = rec.Fields
	}
	return resp
}
