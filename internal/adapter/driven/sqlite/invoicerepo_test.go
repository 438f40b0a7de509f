package sqlite

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/aipclient/internal/domain/model"
)

func makeInvoice(code, num string, at time.Time) model.InvoiceRecord {
	return model.InvoiceRecord{
		InvoiceCode:       code,
		InvoiceNum:        num,
		InvoiceType:       "电子普通发票",
		InvoiceDate:       "2023-05-01",
		SellerName:        "Acme Ltd",
		PurchaserName:     "Buyer Co",
		TotalAmount:       "100.00",
		TotalTax:          13,
		TotalAmountAndTax: "113.00",
		LogID:             5425496231209218858,
		Fields:            map[string]any{"invoiceNum": num, "totalTax": 13.0},
		RecognizedAt:      at,
	}
}

func TestInvoiceRepo_SaveAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInvoiceRepo(db)
	ctx := context.Background()
	at := time.Date(2026, 3, 2, 9, 30, 0, 123000000, time.UTC)

	id, err := repo.Save(ctx, makeInvoice("044031900111", "12345678", at))
	require.NoError(t, err)
	assert.Positive(t, id)

	got, err := repo.GetByNumber(ctx, "044031900111", "12345678")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, id, got.ID)
	assert.Equal(t, "电子普通发票", got.InvoiceType)
	assert.Equal(t, "2023-05-01", got.InvoiceDate)
	assert.Equal(t, "Acme Ltd", got.SellerName)
	assert.Equal(t, "Buyer Co", got.PurchaserName)
	assert.Equal(t, "100.00", got.TotalAmount)
	assert.Equal(t, 13.0, got.TotalTax)
	assert.Equal(t, "113.00", got.TotalAmountAndTax)
	assert.Equal(t, int64(5425496231209218858), got.LogID)
	assert.Equal(t, "12345678", got.Fields["invoiceNum"])
	assert.Equal(t, json.Number("13"), got.Fields["totalTax"])
	assert.True(t, at.Equal(got.RecognizedAt), "recognized_at %v", got.RecognizedAt)
}

func TestInvoiceRepo_GetByNumber_Missing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInvoiceRepo(db)

	got, err := repo.GetByNumber(context.Background(), "nope", "0")

	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestInvoiceRepo_SaveReplacesSameInvoice(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInvoiceRepo(db)
	ctx := context.Background()
	at := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

	first, err := repo.Save(ctx, makeInvoice("044031900111", "12345678", at))
	require.NoError(t, err)

	updated := makeInvoice("044031900111", "12345678", at.Add(time.Hour))
	updated.SellerName = "Acme Holdings"
	second, err := repo.Save(ctx, updated)
	require.NoError(t, err)

	assert.Equal(t, first, second)

	records, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Acme Holdings", records[0].SellerName)
}

func TestInvoiceRepo_ListRecent_OrderAndLimit(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInvoiceRepo(db)
	ctx := context.Background()
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	_, err := repo.Save(ctx, makeInvoice("A", "1", base))
	require.NoError(t, err)
	_, err = repo.Save(ctx, makeInvoice("A", "2", base.Add(500*time.Millisecond)))
	require.NoError(t, err)
	_, err = repo.Save(ctx, makeInvoice("A", "3", base.Add(2*time.Second)))
	require.NoError(t, err)

	records, err := repo.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "3", records[0].InvoiceNum)
	assert.Equal(t, "2", records[1].InvoiceNum)
}

func TestInvoiceRepo_ListRecent_Empty(t *testing.T) {
	db := setupTestDB(t)

	records, err := NewInvoiceRepo(db).ListRecent(context.Background(), 5)

	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestInvoiceRepo_SaveNilFieldsStoresEmptyObject(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInvoiceRepo(db)
	ctx := context.Background()

	rec := makeInvoice("B", "1", time.Time{})
	rec.Fields = nil
	_, err := repo.Save(ctx, rec)
	require.NoError(t, err)

	got, err := repo.GetByNumber(ctx, "B", "1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Empty(t, got.Fields)
	assert.False(t, got.RecognizedAt.IsZero())
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{in: "2026-03-02T09:30:00.123000000Z", want: time.Date(2026, 3, 2, 9, 30, 0, 123000000, time.UTC)},
		{in: "2026-03-02 09:30:00", want: time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := parseTime(tt.in)
		require.NoError(t, err)
		assert.True(t, tt.want.Equal(got), "%s parsed to %v", tt.in, got)
	}

	_, err := parseTime("yesterday")
	assert.Error(t, err)
}
