package aip

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/ericfisherdev/aipclient/internal/domain/model"
	"github.com/ericfisherdev/aipclient/internal/domain/port/driven"
)

const vatInvoicePath = "/rest/2.0/ocr/v1/vat_invoice"

// Compile-time interface satisfaction check.
var _ driven.InvoiceRecognizer = (*InvoiceClient)(nil)

// InvoiceClient implements the driven.InvoiceRecognizer port.
type InvoiceClient struct {
	svc       *service
	resources *resourceFetcher
}

// NewInvoiceClient creates a VAT invoice OCR client for the production API.
func NewInvoiceClient(cfg model.ClientConfig) (*InvoiceClient, error) {
	return NewInvoiceClientWithHTTPClient(nil, DefaultBaseURL, cfg)
}

// NewInvoiceClientWithHTTPClient creates an InvoiceClient with a custom
// http.Client and base URL. PDF downloads reuse the client's transport.
func NewInvoiceClientWithHTTPClient(httpClient *http.Client, baseURL string, cfg model.ClientConfig) (*InvoiceClient, error) {
	svc, err := newService(httpClient, baseURL, cfg)
	if err != nil {
		return nil, err
	}
	return &InvoiceClient{svc: svc, resources: newResourceFetcher(svc.httpClient)}, nil
}

// VatInvoice recognizes a VAT invoice. A PDF given by URL is downloaded first
// and submitted inline; the URL itself is never sent to the OCR endpoint.
func (c *InvoiceClient) VatInvoice(ctx context.Context, params model.VatInvoiceParams) (model.InvoiceResult, error) {
	if err := params.Validate(); err != nil {
		return model.InvoiceResult{}, err
	}

	form := url.Values{}
	switch {
	case len(params.Image) > 0:
		form.Set("image", base64.StdEncoding.EncodeToString(params.Image))
	case strings.TrimSpace(params.URL) != "":
		form.Set("url", strings.TrimSpace(params.URL))
	case len(params.PDF) > 0:
		form.Set("pdf_file", base64.StdEncoding.EncodeToString(params.PDF))
	default:
		data, err := c.resources.Fetch(ctx, strings.TrimSpace(params.PDFURL))
		if err != nil {
			return model.InvoiceResult{}, err
		}
		form.Set("pdf_file", base64.StdEncoding.EncodeToString(data))
	}
	form.Set("type", string(params.Type.OrDefault()))

	raw, err := c.svc.post(ctx, "vat_invoice", vatInvoicePath, nil, "application/x-www-form-urlencoded", []byte(form.Encode()))
	if err != nil {
		return model.InvoiceResult{}, err
	}

	top := Normalize(raw)
	if env := mapErrorEnvelope(top); env != nil {
		return model.InvoiceResult{Error: env, Fields: top}, nil
	}

	words, ok := top["wordsResult"].(map[string]any)
	if !ok {
		return model.InvoiceResult{}, &model.RemoteServiceError{
			Operation: "vat_invoice",
			Err:       errors.New("response has neither words_result nor error_code"),
		}
	}

	fields := normalizeInvoiceFields(words)
	return model.InvoiceResult{
		Invoice: mapVatInvoice(fields),
		LogID:   int64Value(top["logId"]),
		Fields:  fields,
	}, nil
}
