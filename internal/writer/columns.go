package writer

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/bill-statement-extractor/internal/models"
)

// columns is the shared column layout of every output format.
var columns = []string{
	"Source",
	"Layout",
	"Customer Number",
	"Statement Date",
	"Payment Due Date",
	"Credit Limit",
	"Total Amount Due",
	"Minimum Amount Due",
	"Fallback Due Date",
	"Fallback Amount",
	"Warnings",
	"Error",
}

// recordRow renders rec with fixed two-decimal amounts and ISO dates. Absent
// values are empty strings.
func recordRow(rec models.BillRecord) []string {
	row := make([]string, len(columns))
	row[0] = rec.Source
	if f := rec.Fields; f != nil {
		row[1] = string(f.SourceLayout)
		if f.CustomerNumber != nil {
			row[2] = *f.CustomerNumber
		}
		row[3] = formatDate(f.StatementDate)
		row[4] = formatDate(f.PaymentDueDate)
		row[5] = formatAmount(f.CreditLimit)
		row[6] = formatAmount(f.TotalAmountDue)
		row[7] = formatAmount(f.MinimumAmountDue)
		row[10] = strings.Join(f.Warnings, "; ")
	}
	if fb := rec.Fallback; fb != nil {
		row[1] = "scoring"
		row[8] = formatDate(fb.DueDate)
		row[9] = formatAmount(fb.Amount)
	}
	row[11] = rec.Error
	return row
}

func formatAmount(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.StringFixed(2)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
