package writer

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/insightdelivered/bill-statement-extractor/internal/models"
)

// FieldsJSON is the string-rendered form of the extracted fields.
type FieldsJSON struct {
	CustomerNumber   string `json:"customerNumber,omitempty"`
	StatementDate    string `json:"statementDate,omitempty"`
	PaymentDueDate   string `json:"paymentDueDate,omitempty"`
	CreditLimit      string `json:"creditLimit,omitempty"`
	TotalAmountDue   string `json:"totalAmountDue,omitempty"`
	MinimumAmountDue string `json:"minimumAmountDue,omitempty"`
}

// FallbackJSON is the string-rendered scoring heuristic result.
type FallbackJSON struct {
	DueDate       string `json:"dueDate,omitempty"`
	Amount        string `json:"amount,omitempty"`
	AmountContext string `json:"amountContext,omitempty"`
}

// RecordJSON is one bill record as emitted by the CLI and the API.
type RecordJSON struct {
	Source   string        `json:"source"`
	Layout   string        `json:"layout,omitempty"`
	Fields   *FieldsJSON   `json:"fields,omitempty"`
	Warnings []string      `json:"warnings,omitempty"`
	Fallback *FallbackJSON `json:"fallback,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// NewFieldsJSON renders f, or returns nil when f is nil.
func NewFieldsJSON(f *models.ExtractedBillFields) *FieldsJSON {
	if f == nil {
		return nil
	}
	out := &FieldsJSON{
		StatementDate:    formatDate(f.StatementDate),
		PaymentDueDate:   formatDate(f.PaymentDueDate),
		CreditLimit:      formatAmount(f.CreditLimit),
		TotalAmountDue:   formatAmount(f.TotalAmountDue),
		MinimumAmountDue: formatAmount(f.MinimumAmountDue),
	}
	if f.CustomerNumber != nil {
		out.CustomerNumber = *f.CustomerNumber
	}
	return out
}

// NewFallbackJSON renders d, or returns nil when d is nil.
func NewFallbackJSON(d *models.DueAmount) *FallbackJSON {
	if d == nil {
		return nil
	}
	return &FallbackJSON{
		DueDate:       formatDate(d.DueDate),
		Amount:        formatAmount(d.Amount),
		AmountContext: d.AmountContext,
	}
}

// NewRecordJSON renders rec.
func NewRecordJSON(rec models.BillRecord) RecordJSON {
	row := recordRow(rec)
	out := RecordJSON{
		Source:   rec.Source,
		Layout:   row[1],
		Fields:   NewFieldsJSON(rec.Fields),
		Fallback: NewFallbackJSON(rec.Fallback),
		Error:    rec.Error,
	}
	if rec.Fields != nil {
		out.Warnings = rec.Fields.Warnings
	}
	return out
}

// JSONWriter writes bill records as an indented JSON array.
type JSONWriter struct{}

// WriteToFile writes records to a JSON file at the given path.
func (w *JSONWriter) WriteToFile(path string, records []models.BillRecord) error {
	return writeFile(path, func(out io.Writer) error {
		return w.Write(out, records)
	})
}

func (w *JSONWriter) Write(out io.Writer, records []models.BillRecord) error {
	views := make([]RecordJSON, 0, len(records))
	for _, rec := range records {
		views = append(views, NewRecordJSON(rec))
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(views); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}
