package export_test

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"pocketpilot/internal/domain"
	"pocketpilot/internal/export"
)

func sampleTransactions() []domain.Transaction {
	receiptID := uuid.MustParse("33333333-3333-3333-3333-333333333333")
	return []domain.Transaction{
		{
			Type:      domain.TransactionTypeExpense,
			Amount:    decimal.RequireFromString("450"),
			Category:  "Food",
			Date:      time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
			Notes:     "Receipt: Campus Cafe, Pune",
			Source:    domain.TransactionSourceReceipt,
			ReceiptID: &receiptID,
			CreatedAt: time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC),
		},
		{
			Type:      domain.TransactionTypeIncome,
			Amount:    decimal.RequireFromString("5000.5"),
			Category:  "General",
			Date:      time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
			Source:    domain.TransactionSourceManual,
			CreatedAt: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteCSV(&buf, sampleTransactions()))

	data := buf.Bytes()
	require.True(t, bytes.HasPrefix(data, export.BOM))

	rows, err := csv.NewReader(bytes.NewReader(data[len(export.BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"Date", "Type", "Category", "Amount", "Notes", "Source", "Receipt ID", "Created At"}, rows[0])
	assert.Equal(t, []string{
		"2025-03-14", "expense", "Food", "450.00", "Receipt: Campus Cafe, Pune", "receipt",
		"33333333-3333-3333-3333-333333333333", "2025-03-14T10:30:00Z",
	}, rows[1])
	assert.Equal(t, "5000.50", rows[2][3])
	assert.Equal(t, "", rows[2][6])
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteCSV(&buf, nil))

	rows, err := csv.NewReader(bytes.NewReader(buf.Bytes()[len(export.BOM):])).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.Write(&buf, domain.ExportFormatXLSX, sampleTransactions()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	header, err := f.GetCellValue("Transactions", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Date", header)

	category, err := f.GetCellValue("Transactions", "C2")
	require.NoError(t, err)
	assert.Equal(t, "Food", category)

	amount, err := f.GetCellValue("Transactions", "D3")
	require.NoError(t, err)
	assert.Equal(t, "5000.5", amount)
}

func TestWrite_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := export.Write(&buf, domain.ExportFormat("pdf"), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidExportFormat)
}

func TestBuildFilename(t *testing.T) {
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "transactions_2025-03-14.csv", export.BuildFilename("transactions", domain.ExportFormatCSV, now))
	assert.Equal(t, "my_expenses_2025-03-14.xlsx", export.BuildFilename("my expenses!!", domain.ExportFormatXLSX, now))
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "text/csv; charset=utf-8", export.ContentType(domain.ExportFormatCSV))
	assert.Contains(t, export.ContentType(domain.ExportFormatXLSX), "spreadsheetml")
}
