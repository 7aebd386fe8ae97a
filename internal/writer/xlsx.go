package writer

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/insightdelivered/bill-statement-extractor/internal/models"
)

const sheetName = "Bills"

// XLSXWriter writes bill records to a single-sheet workbook. Cells hold the
// same strings as the CSV output so amounts keep exactly two decimals.
type XLSXWriter struct{}

// WriteToFile writes records to an .xlsx file at the given path.
func (w *XLSXWriter) WriteToFile(path string, records []models.BillRecord) error {
	return writeFile(path, func(out io.Writer) error {
		return w.Write(out, records)
	})
}

// Write renders the workbook to out.
func (w *XLSXWriter) Write(out io.Writer, records []models.BillRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("xlsx sheet: %w", err)
	}

	for i, h := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return fmt.Errorf("xlsx header: %w", err)
		}
	}

	for r, rec := range records {
		for c, v := range recordRow(rec) {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return fmt.Errorf("xlsx row %d: %w", r+2, err)
			}
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 40) // source
	_ = f.SetColWidth(sheetName, "B", "C", 22)
	_ = f.SetColWidth(sheetName, "D", "J", 16) // dates and amounts
	_ = f.SetColWidth(sheetName, "K", "L", 48)

	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}
