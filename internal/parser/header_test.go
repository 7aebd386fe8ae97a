package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/bill-statement-extractor/internal/models"
)

const headerLine = "CUSTOMER NUMBER   STATEMENT DATE   CREDIT LIMIT   TOTAL AMOUNT DUE   MINIMUM AMOUNT DUE   PAYMENT DUE DATE"

func TestExtractHeaderBlock(t *testing.T) {
	e := NewDefault()
	text := "Your Monthly Statement\n" +
		headerLine + "\n" +
		"1234-5678-9012-3456   August 1, 2025\n" +
		"\n" +
		"20,000.00   5,000.00   100.00   August 28, 2025\n" +
		"## Transactions\n" +
		"Aug 05 GROCERY 999,999.99\n"

	got, err := e.extractHeaderBlock(text)
	require.NoError(t, err)

	assert.Equal(t, models.LayoutHeaderBlock, got.SourceLayout)
	require.NotNil(t, got.CustomerNumber)
	assert.Equal(t, "1234-5678-9012-3456", *got.CustomerNumber)
	assert.Equal(t, "2025-08-01", FormatDate(*got.StatementDate))
	assert.Equal(t, "2025-08-28", FormatDate(*got.PaymentDueDate))
	assert.Equal(t, "100.00", FormatMoney(*got.MinimumAmountDue))
	assert.Equal(t, "5000.00", FormatMoney(*got.TotalAmountDue))
	assert.Equal(t, "20000.00", FormatMoney(*got.CreditLimit))
	assert.Equal(t, []string{warnMagnitudeOrder}, got.Warnings)
}

func TestExtractHeaderBlock_OrderIndependent(t *testing.T) {
	headers := []string{
		"PAYMENT DUE DATE  MINIMUM AMOUNT DUE  TOTAL AMOUNT DUE  CREDIT LIMIT  STATEMENT DATE  CUSTOMER NUMBER",
		"Credit Limit Customer Number Payment Due Date Statement Date Minimum Amount Due Total Amount Due",
		"TOTAL   AMOUNT\tDUE CUSTOMER NUMBER MINIMUM AMOUNT DUE STATEMENT DATE PAYMENT DUE DATE CREDIT LIMIT",
	}
	e := NewDefault()

	for _, h := range headers {
		t.Run(h, func(t *testing.T) {
			text := h + "\n1234-5678-9012-3456 August 1, 2025 August 28, 2025 100.00 5,000.00 20,000.00\n"
			got, err := e.extractHeaderBlock(text)
			require.NoError(t, err)
			assert.Equal(t, "5000.00", FormatMoney(*got.TotalAmountDue))
			assert.Equal(t, "2025-08-28", FormatDate(*got.PaymentDueDate))
		})
	}
}

func TestExtractHeaderBlock_DatesDeduplicatedAndSorted(t *testing.T) {
	e := NewDefault()
	text := headerLine + "\n" +
		"1234-5678-9012-3456 28 Aug 2025 AUGUST 28, 2025 Aug 1, 2025\n" +
		"100.00 5,000.00 20,000.00\n"

	got, err := e.extractHeaderBlock(text)
	require.NoError(t, err)
	assert.Equal(t, "2025-08-01", FormatDate(*got.StatementDate))
	assert.Equal(t, "2025-08-28", FormatDate(*got.PaymentDueDate))
}

func TestExtractHeaderBlock_SingleDate(t *testing.T) {
	e := NewDefault()
	text := headerLine + "\n1234-5678-9012-3456 August 1, 2025 100.00 5,000.00 20,000.00\n"

	got, err := e.extractHeaderBlock(text)
	require.NoError(t, err)
	assert.Equal(t, "2025-08-01", FormatDate(*got.StatementDate))
	assert.Nil(t, got.PaymentDueDate)
	assert.Equal(t, "5000.00", FormatMoney(*got.TotalAmountDue))
}

func TestExtractHeaderBlock_WidensPastCustomerNumber(t *testing.T) {
	e := NewDefault()
	text := headerLine + "\n100.00 5,000.00 1234-5678-9012-3456 20,000.00 Aug 1, 2025 Aug 28, 2025\n"

	got, err := e.extractHeaderBlock(text)
	require.NoError(t, err)
	assert.Equal(t, "100.00", FormatMoney(*got.MinimumAmountDue))
	assert.Equal(t, "5000.00", FormatMoney(*got.TotalAmountDue))
	assert.Equal(t, "20000.00", FormatMoney(*got.CreditLimit))
}

func TestExtractHeaderBlock_FewerThanThreeAmounts(t *testing.T) {
	e := NewDefault()
	text := headerLine + "\n1234-5678-9012-3456 Aug 1, 2025 Aug 28, 2025 5,000.00 100.00\n"

	got, err := e.extractHeaderBlock(text)
	require.NoError(t, err)
	assert.Equal(t, "100.00", FormatMoney(*got.MinimumAmountDue))
	assert.Equal(t, "100.00", FormatMoney(*got.TotalAmountDue))
	assert.Equal(t, "5000.00", FormatMoney(*got.CreditLimit))
	assert.Equal(t, []string{warnMagnitudeOrder, warnFewAmounts}, got.Warnings)
}

func TestExtractHeaderBlock_StopMarker(t *testing.T) {
	e := NewDefault()
	text := headerLine + "\n## Previous Statement\n1234-5678-9012-3456 Aug 1, 2025 Aug 28, 2025 5,000.00\n"

	got, err := e.extractHeaderBlock(text)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, ErrNoUsableFields)
}

func TestExtractHeaderBlock_MaxBlockLines(t *testing.T) {
	rules := DefaultRules()
	rules.MaxBlockLines = 2
	e := New(rules, nil)
	text := headerLine + "\nfiller\nfiller\nAug 1, 2025 Aug 28, 2025 5,000.00\n"

	_, err := e.extractHeaderBlock(text)
	assert.ErrorIs(t, err, ErrNoUsableFields)
}

func TestExtractHeaderBlock_HeaderNotFound(t *testing.T) {
	e := NewDefault()
	text := "CUSTOMER NUMBER STATEMENT DATE TOTAL AMOUNT DUE MINIMUM AMOUNT DUE PAYMENT DUE DATE\n" +
		"1234-5678-9012-3456 Aug 1, 2025 Aug 28, 2025 100.00 5,000.00 20,000.00\n"

	_, err := e.extractHeaderBlock(text)
	assert.ErrorIs(t, err, ErrHeaderNotFound)
}

func TestFindStrictMoney(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"grouped and decimal", "5,000.00 and 12.34", []string{"5,000.00", "12.34"}},
		{"grouped without cents", "limit 20,000", []string{"20,000"}},
		{"bare year ignored", "Aug 1, 2025 2025", nil},
		{"glued to letters", "REF A100.00 100.00CR 7.50", []string{"7.50"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, findStrictMoney(tt.input))
		})
	}
}
