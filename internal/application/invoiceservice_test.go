package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/aipclient/internal/domain/model"
)

type mockRecognizer struct {
	result model.InvoiceResult
	err    error
}

func (m *mockRecognizer) VatInvoice(_ context.Context, _ model.VatInvoiceParams) (model.InvoiceResult, error) {
	return m.result, m.err
}

type mockInvoiceStore struct {
	saved     []model.InvoiceRecord
	saveErr   error
	lastLimit int
	records   []model.InvoiceRecord
	byNumber  map[string]*model.InvoiceRecord
}

func (m *mockInvoiceStore) Save(_ context.Context, rec model.InvoiceRecord) (int64, error) {
	if m.saveErr != nil {
		return 0, m.saveErr
	}
	m.saved = append(m.saved, rec)
	return int64(len(m.saved)), nil
}

func (m *mockInvoiceStore) GetByNumber(_ context.Context, code, num string) (*model.InvoiceRecord, error) {
	return m.byNumber[code+"/"+num], nil
}

func (m *mockInvoiceStore) ListRecent(_ context.Context, limit int) ([]model.InvoiceRecord, error) {
	m.lastLimit = limit
	return m.records, nil
}

func recognizedInvoice() model.InvoiceResult {
	return model.InvoiceResult{
		LogID: 42,
		Invoice: &model.VatInvoice{
			InvoiceCode:       "044031900111",
			InvoiceNum:        "12345678",
			InvoiceDate:       "2023-05-01",
			SellerName:        "Acme Ltd",
			TotalAmount:       "100.00",
			TotalTax:          13,
			TotalAmountAndTax: "113.00",
		},
		Fields: map[string]any{"invoiceNum": "12345678"},
	}
}

func TestInvoiceService_RecognizeRecordsSuccess(t *testing.T) {
	store := &mockInvoiceStore{}
	svc := NewInvoiceService(&mockRecognizer{result: recognizedInvoice()}, store)
	fixed := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	result, err := svc.Recognize(context.Background(), model.VatInvoiceParams{Image: []byte("x")})

	require.NoError(t, err)
	assert.Equal(t, "12345678", result.Invoice.InvoiceNum)
	require.Len(t, store.saved, 1)

	rec := store.saved[0]
	assert.Equal(t, "044031900111", rec.InvoiceCode)
	assert.Equal(t, "12345678", rec.InvoiceNum)
	assert.Equal(t, "2023-05-01", rec.InvoiceDate)
	assert.Equal(t, 13.0, rec.TotalTax)
	assert.Equal(t, "113.00", rec.TotalAmountAndTax)
	assert.Equal(t, int64(42), rec.LogID)
	assert.Equal(t, fixed, rec.RecognizedAt)
	assert.Equal(t, "12345678", rec.Fields["invoiceNum"])
}

func TestInvoiceService_EnvelopeNotRecorded(t *testing.T) {
	store := &mockInvoiceStore{}
	envelope := model.InvoiceResult{Error: &model.ErrorEnvelope{ErrorCode: 216201, ErrorMsg: "image format error"}}
	svc := NewInvoiceService(&mockRecognizer{result: envelope}, store)

	result, err := svc.Recognize(context.Background(), model.VatInvoiceParams{Image: []byte("x")})

	require.NoError(t, err)
	assert.True(t, result.Failed())
	assert.Empty(t, store.saved)
}

func TestInvoiceService_RecognizeErrorPropagated(t *testing.T) {
	store := &mockInvoiceStore{}
	svc := NewInvoiceService(&mockRecognizer{err: model.ErrInvalidInvoiceSource}, store)

	_, err := svc.Recognize(context.Background(), model.VatInvoiceParams{})

	assert.ErrorIs(t, err, model.ErrInvalidInvoiceSource)
	assert.Empty(t, store.saved)
}

func TestInvoiceService_SaveFailureNotFatal(t *testing.T) {
	store := &mockInvoiceStore{saveErr: errors.New("database is locked")}
	svc := NewInvoiceService(&mockRecognizer{result: recognizedInvoice()}, store)

	result, err := svc.Recognize(context.Background(), model.VatInvoiceParams{Image: []byte("x")})

	require.NoError(t, err)
	assert.False(t, result.Failed())
}

func TestInvoiceService_HistoryLimit(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{name: "default", limit: 0, want: DefaultHistoryLimit},
		{name: "negative", limit: -5, want: DefaultHistoryLimit},
		{name: "within range", limit: 7, want: 7},
		{name: "capped", limit: 1000, want: MaxHistoryLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockInvoiceStore{}
			svc := NewInvoiceService(&mockRecognizer{}, store)

			_, err := svc.History(context.Background(), tt.limit)

			require.NoError(t, err)
			assert.Equal(t, tt.want, store.lastLimit)
		})
	}
}

func TestInvoiceService_Lookup(t *testing.T) {
	rec := &model.InvoiceRecord{ID: 3, InvoiceCode: "A", InvoiceNum: "1"}
	store := &mockInvoiceStore{byNumber: map[string]*model.InvoiceRecord{"A/1": rec}}
	svc := NewInvoiceService(&mockRecognizer{}, store)

	got, err := svc.Lookup(context.Background(), "A", "1")
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	missing, err := svc.Lookup(context.Background(), "A", "2")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestInvoiceService_InvoiceWithoutIdentityNotRecorded(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		num      string
		wantSave int
	}{
		{name: "no code and no number", wantSave: 0},
		{name: "number only", num: "12345678", wantSave: 1},
		{name: "code only", code: "044031900111", wantSave: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := recognizedInvoice()
			result.Invoice.InvoiceCode = tt.code
			result.Invoice.InvoiceNum = tt.num
			store := &mockInvoiceStore{}
			svc := NewInvoiceService(&mockRecognizer{result: result}, store)

			got, err := svc.Recognize(context.Background(), model.VatInvoiceParams{Image: []byte("x")})

			require.NoError(t, err)
			require.NotNil(t, got.Invoice)
			assert.Len(t, store.saved, tt.wantSave)
		})
	}
}
