package writer

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/insightdelivered/bill-statement-extractor/internal/models"
)

// CSVWriter writes bill records to CSV format.
type CSVWriter struct {
	// IncludeHeader writes the column names as the first row.
	IncludeHeader bool
}

// WriteToFile writes records to a CSV file at the given path.
func (w *CSVWriter) WriteToFile(path string, records []models.BillRecord) error {
	return writeFile(path, func(out io.Writer) error {
		return w.Write(out, records)
	})
}

// Write writes records in CSV format to the given writer, one row each.
func (w *CSVWriter) Write(out io.Writer, records []models.BillRecord) error {
	cw := csv.NewWriter(out)

	if w.IncludeHeader {
		if err := cw.Write(columns); err != nil {
			return fmt.Errorf("failed to write CSV header: %w", err)
		}
	}

	for _, rec := range records {
		if err := cw.Write(recordRow(rec)); err != nil {
			return fmt.Errorf("failed to write CSV row for %q: %w", rec.Source, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
