package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SourceLayout identifies which extraction strategy produced a result.
type SourceLayout string

const (
	LayoutStrictSequence SourceLayout = "strict_sequence"
	LayoutTableRow       SourceLayout = "table_row"
	LayoutHeaderBlock    SourceLayout = "header_block"
)

// ExtractedBillFields is the structured record produced by one successful
// extraction call. Optional fields are nil when the winning layout does not
// expose them. Dates carry no time component (midnight UTC).
type ExtractedBillFields struct {
	CustomerNumber   *string
	StatementDate    *time.Time
	PaymentDueDate   *time.Time
	CreditLimit      *decimal.Decimal
	TotalAmountDue   *decimal.Decimal
	MinimumAmountDue *decimal.Decimal
	SourceLayout     SourceLayout
	// Warnings flags layout assumptions the result depends on, e.g. amounts
	// assigned purely by magnitude.
	Warnings []string
}

// Candidate is a scored monetary value seen while ranking lines.
type Candidate struct {
	Amount     decimal.Decimal
	Score      int
	SourceLine string
}

// DueAmount is the result of the line-oriented scoring heuristic.
type DueAmount struct {
	DueDate       *time.Time
	Amount        *decimal.Decimal
	AmountContext string
}

// BillRecord is one processed document as handed to writers.
type BillRecord struct {
	Source   string
	Fields   *ExtractedBillFields
	Fallback *DueAmount
	Error    string
}
