package driven

import (
	"context"

	"github.com/ericfisherdev/aipclient/internal/domain/model"
)

// InvoiceStore defines the driven port for the recognized-invoice history.
type InvoiceStore interface {
	// Save inserts the record, or replaces the stored one with the same
	// invoice code and number. It returns the record's ID.
	Save(ctx context.Context, record model.InvoiceRecord) (int64, error)

	// GetByNumber returns the record for the given invoice code and number.
	// Returns (nil, nil) if no such record exists.
	GetByNumber(ctx context.Context, invoiceCode, invoiceNum string) (*model.InvoiceRecord, error)

	// ListRecent returns up to limit records, most recently recognized first.
	ListRecent(ctx context.Context, limit int) ([]model.InvoiceRecord, error)
}
