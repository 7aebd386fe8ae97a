package writer

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestXLSXWriter_Write(t *testing.T) {
	var buf bytes.Buffer
	w := &XLSXWriter{}
	if err := w.Write(&buf, sampleRecords()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("output is not a workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}
	if rows[0][0] != "Source" {
		t.Errorf("header: got %q", rows[0][0])
	}
	if rows[1][6] != "5000.50" {
		t.Errorf("total amount due: got %q, want %q", rows[1][6], "5000.50")
	}
	if rows[1][4] != "2025-08-28" {
		t.Errorf("payment due date: got %q", rows[1][4])
	}
}
