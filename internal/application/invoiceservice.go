package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/ericfisherdev/aipclient/internal/domain/model"
	"github.com/ericfisherdev/aipclient/internal/domain/port/driven"
)

const (
	// DefaultHistoryLimit is used when History is called with a non-positive limit.
	DefaultHistoryLimit = 20
	// MaxHistoryLimit caps the number of records History returns.
	MaxHistoryLimit = 100
)

// InvoiceService recognizes VAT invoices and keeps a local history of the
// successful extractions.
type InvoiceService struct {
	recognizer driven.InvoiceRecognizer
	store      driven.InvoiceStore
	now        func() time.Time
}

// NewInvoiceService creates a new InvoiceService with the required dependencies.
func NewInvoiceService(recognizer driven.InvoiceRecognizer, store driven.InvoiceStore) *InvoiceService {
	return &InvoiceService{
		recognizer: recognizer,
		store:      store,
		now:        time.Now,
	}
}

// Recognize submits the invoice for recognition. A successful extraction
// carrying an invoice code or number is recorded in the history; failing to
// record it is logged and does not fail the recognition.
func (s *InvoiceService) Recognize(ctx context.Context, params model.VatInvoiceParams) (model.InvoiceResult, error) {
	result, err := s.recognizer.VatInvoice(ctx, params)
	if err != nil {
		return model.InvoiceResult{}, err
	}

	if result.Failed() || result.Invoice == nil {
		return result, nil
	}

	rec := recordFromResult(result, s.now())
	if rec.InvoiceCode == "" && rec.InvoiceNum == "" {
		// Without a code or number the record has no identity, and every such
		// invoice would replace the same history row.
		slog.Warn("invoice not recorded: no invoice code or number", "log_id", rec.LogID)
		return result, nil
	}
	if _, err := s.store.Save(ctx, rec); err != nil {
		slog.Error("record invoice failed",
			"invoice_code", rec.InvoiceCode,
			"invoice_num", rec.InvoiceNum,
			"error", err,
		)
	}

	return result, nil
}

// History returns the most recently recognized invoices.
func (s *InvoiceService) History(ctx context.Context, limit int) ([]model.InvoiceRecord, error) {
	switch {
	case limit <= 0:
		limit = DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		limit = MaxHistoryLimit
	}

	return s.store.ListRecent(ctx, limit)
}

// Lookup returns the recorded invoice with the given code and number, or nil
// if it has not been recognized.
func (s *InvoiceService) Lookup(ctx context.Context, code, num string) (*model.InvoiceRecord, error) {
	return s.store.GetByNumber(ctx, code, num)
}

func recordFromResult(result model.InvoiceResult, at time.Time) model.InvoiceRecord {
	inv := result.Invoice
	return model.InvoiceRecord{
		InvoiceCode:       inv.InvoiceCode,
		InvoiceNum:        inv.InvoiceNum,
		InvoiceType:       inv.InvoiceType,
		InvoiceDate:       inv.InvoiceDate,
		SellerName:        inv.SellerName,
		PurchaserName:     inv.PurchaserName,
		TotalAmount:       inv.TotalAmount,
		TotalTax:          inv.TotalTax,
		TotalAmountAndTax: inv.TotalAmountAndTax,
		LogID:             result.LogID,
		Fields:            result.Fields,
		RecognizedAt:      at.UTC(),
	}
}
