package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ericfisherdev/aipclient/internal/domain/model"
	"github.com/ericfisherdev/aipclient/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.InvoiceStore = (*InvoiceRepo)(nil)

// recognizedAtLayout is fixed-width so that text ordering matches time ordering.
const recognizedAtLayout = "2006-01-02T15:04:05.000000000Z"

const invoiceColumns = `id, invoice_code, invoice_num, invoice_type, invoice_date, seller_name,
	purchaser_name, total_amount, total_tax, total_amount_and_tax, log_id, fields, recognized_at`

// InvoiceRepo is the SQLite implementation of the InvoiceStore port interface.
type InvoiceRepo struct {
	db *DB
}

// NewInvoiceRepo creates a new InvoiceRepo backed by the given DB.
func NewInvoiceRepo(db *DB) *InvoiceRepo {
	return &InvoiceRepo{db: db}
}

// Save inserts the record, or replaces the stored one with the same invoice
// code and number, and returns the row ID.
func (r *InvoiceRepo) Save(ctx context.Context, rec model.InvoiceRecord) (int64, error) {
	const query = `
		INSERT INTO invoices (
			invoice_code, invoice_num, invoice_type, invoice_date, seller_name, purchaser_name,
			total_amount, total_tax, total_amount_and_tax, log_id, fields, recognized_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(invoice_code, invoice_num) DO UPDATE SET
			invoice_type = excluded.invoice_type,
			invoice_date = excluded.invoice_date,
			seller_name = excluded.seller_name,
			purchaser_name = excluded.purchaser_name,
			total_amount = excluded.total_amount,
			total_tax = excluded.total_tax,
			total_amount_and_tax = excluded.total_amount_and_tax,
			log_id = excluded.log_id,
			fields = excluded.fields,
			recognized_at = excluded.recognized_at
		RETURNING id
	`

	fields := rec.Fields
	if fields == nil {
		fields = map[string]any{}
	}
	fieldsJSON, err := json.Marshal(fields)
	if err != nil {
		return 0, fmt.Errorf("marshal fields: %w", err)
	}

	recognizedAt := rec.RecognizedAt
	if recognizedAt.IsZero() {
		recognizedAt = time.Now()
	}

	var id int64
	err = r.db.Writer.QueryRowContext(ctx, query,
		rec.InvoiceCode, rec.InvoiceNum, rec.InvoiceType, rec.InvoiceDate, rec.SellerName, rec.PurchaserName,
		rec.TotalAmount, rec.TotalTax, rec.TotalAmountAndTax, rec.LogID, string(fieldsJSON),
		recognizedAt.UTC().Format(recognizedAtLayout),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("save invoice %s/%s: %w", rec.InvoiceCode, rec.InvoiceNum, err)
	}

	return id, nil
}

// GetByNumber retrieves a single invoice by code and number.
// Returns nil, nil if the invoice has not been recorded.
func (r *InvoiceRepo) GetByNumber(ctx context.Context, code, num string) (*model.InvoiceRecord, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE invoice_code = ? AND invoice_num = ?`

	rec, err := scanInvoice(r.db.Reader.QueryRowContext(ctx, query, code, num))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get invoice %s/%s: %w", code, num, err)
	}

	return rec, nil
}

// ListRecent returns at most limit invoices, most recently recognized first.
func (r *InvoiceRepo) ListRecent(ctx context.Context, limit int) ([]model.InvoiceRecord, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices ORDER BY recognized_at DESC, id DESC LIMIT ?`

	rows, err := r.db.Reader.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query invoices: %w", err)
	}
	defer rows.Close()

	var records []model.InvoiceRecord
	for rows.Next() {
		rec, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		records = append(records, *rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invoices: %w", err)
	}

	return records, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanInvoice(s scanner) (*model.InvoiceRecord, error) {
	var rec model.InvoiceRecord
	var fieldsJSON, recognizedAt string

	err := s.Scan(
		&rec.ID, &rec.InvoiceCode, &rec.InvoiceNum, &rec.InvoiceType, &rec.InvoiceDate,
		&rec.SellerName, &rec.PurchaserName, &rec.TotalAmount, &rec.TotalTax,
		&rec.TotalAmountAndTax, &rec.LogID, &fieldsJSON, &recognizedAt,
	)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(strings.NewReader(fieldsJSON))
	dec.UseNumber()
	if err := dec.Decode(&rec.Fields); err != nil {
		return nil, fmt.Errorf("unmarshal fields: %w", err)
	}

	rec.RecognizedAt, err = parseTime(recognizedAt)
	if err != nil {
		return nil, fmt.Errorf("parse recognized_at: %w", err)
	}

	return &rec, nil
}

// parseTime tries multiple SQLite datetime formats.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05.000",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format: %s", s)
}
