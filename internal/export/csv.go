// Package export renders transaction listings as CSV or XLSX downloads.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"pocketpilot/internal/domain"
)

// BOM is the UTF-8 byte order mark Excel on Windows needs to detect UTF-8 CSV.
var BOM = []byte{0xEF, 0xBB, 0xBF}

var columns = []string{
	"Date",
	"Type",
	"Category",
	"Amount",
	"Notes",
	"Source",
	"Receipt ID",
	"Created At",
}

// CSVWriter wraps csv.Writer for exporting transactions.
type CSVWriter struct {
	csv *csv.Writer
}

// NewCSVWriter creates a CSVWriter that writes to w.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{csv: csv.NewWriter(w)}
}

// WriteHeader writes the column header row.
func (w *CSVWriter) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteTransactions writes one row per transaction.
func (w *CSVWriter) WriteTransactions(txns []domain.Transaction) error {
	for i := range txns {
		if err := w.csv.Write(transactionToRow(&txns[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer and reports any buffered error.
func (w *CSVWriter) Flush() error {
	w.csv.Flush()
	return w.csv.Error()
}

// WriteCSV writes the BOM, header and rows, then flushes.
func WriteCSV(out io.Writer, txns []domain.Transaction) error {
	if _, err := out.Write(BOM); err != nil {
		return err
	}
	w := NewCSVWriter(out)
	if err := w.WriteHeader(); err != nil {
		return err
	}
	if err := w.WriteTransactions(txns); err != nil {
		return err
	}
	return w.Flush()
}

func transactionToRow(txn *domain.Transaction) []string {
	receiptID := ""
	if txn.ReceiptID != nil {
		receiptID = txn.ReceiptID.String()
	}
	return []string{
		txn.Date.Format("2006-01-02"),
		string(txn.Type),
		txn.Category,
		txn.Amount.StringFixed(2),
		txn.Notes,
		string(txn.Source),
		receiptID,
		txn.CreatedAt.UTC().Format(time.RFC3339),
	}
}

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename replaces anything but letters, digits, hyphen and
// underscore with "_", collapses runs of "_" and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns {prefix}_{YYYY-MM-DD}.{format} for Content-Disposition.
func BuildFilename(prefix string, format domain.ExportFormat, now time.Time) string {
	return fmt.Sprintf("%s_%s.%s", SanitizeFilename(prefix), now.Format("2006-01-02"), format)
}
