package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"pocketpilot/internal/domain"
)

const sheetName = "Transactions"

// WriteXLSX writes a single-sheet workbook with the same columns as the CSV
// export. Amounts are numeric cells so spreadsheet sums work.
func WriteXLSX(out io.Writer, txns []domain.Transaction) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("export.WriteXLSX: %w", err)
	}

	for i, h := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return fmt.Errorf("export.WriteXLSX header: %w", err)
		}
	}

	for r := range txns {
		row := transactionToRow(&txns[r])
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			var value interface{} = v
			if c == 3 {
				value = txns[r].Amount.InexactFloat64()
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return fmt.Errorf("export.WriteXLSX row %d: %w", r+2, err)
			}
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 12)
	_ = f.SetColWidth(sheetName, "C", "C", 18)
	_ = f.SetColWidth(sheetName, "E", "E", 40)
	_ = f.SetColWidth(sheetName, "G", "H", 38)

	if err := f.Write(out); err != nil {
		return fmt.Errorf("export.WriteXLSX: %w", err)
	}
	return nil
}

// Write renders txns in the requested format.
func Write(out io.Writer, format domain.ExportFormat, txns []domain.Transaction) error {
	switch format {
	case domain.ExportFormatCSV:
		return WriteCSV(out, txns)
	case domain.ExportFormatXLSX:
		return WriteXLSX(out, txns)
	default:
		return domain.ErrInvalidExportFormat
	}
}

// ContentType returns the MIME type for format.
func ContentType(format domain.ExportFormat) string {
	if format == domain.ExportFormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}
