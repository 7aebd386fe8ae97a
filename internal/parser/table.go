package parser

import (
	"fmt"
	"regexp"

	"github.com/insightdelivered/bill-statement-extractor/internal/models"
)

// tableRowPattern matches one pipe-delimited data row:
//
//	| total_due | min_due | payment_due_date | amount_paid |
//
// The third cell must be date-shaped, which is what separates the data row
// from header and separator rows.
var tableRowPattern = regexp.MustCompile(
	`(?im)^\|[ \t]*([ \t₱P()\d,.]+?)[ \t]*\|` +
		`[ \t]*([ \t₱P()\d,.]+?)[ \t]*\|` +
		`[ \t]*(` + dateExpr + `)[ \t]*\|` +
		`[ \t]*([ \t₱P()\d,.]*)\|?[ \t]*$`,
)

func (e *Extractor) extractTableRow(text string) (*models.ExtractedBillFields, error) {
	rows := tableRowPattern.FindAllStringSubmatch(text, -1)
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no four-cell row with a date in column 3", ErrNoUsableFields)
	}

	for _, row := range rows {
		due, err := ParseDate(row[3], e.rules.DateFormats...)
		if err != nil {
			e.logger.Debug("table.row.skipped", "cell", row[3], "err", err)
			continue
		}
		return &models.ExtractedBillFields{
			PaymentDueDate:   &due,
			TotalAmountDue:   moneyPtr(row[1]),
			MinimumAmountDue: moneyPtr(row[2]),
			SourceLayout:     models.LayoutTableRow,
		}, nil
	}
	return nil, fmt.Errorf("%w: no table row carried a parseable due date", ErrNoUsableFields)
}
