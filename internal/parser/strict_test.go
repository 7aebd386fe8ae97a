package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/bill-statement-extractor/internal/models"
)

func TestExtractStrict(t *testing.T) {
	e := NewDefault()
	text := `Statement of Account
Total Account Balance 13,927.33
Payment Due Date 28 Aug 2025
Minimum Payment 850.00`

	got, err := e.extractStrict(text)
	require.NoError(t, err)

	assert.Equal(t, models.LayoutStrictSequence, got.SourceLayout)
	assert.Equal(t, "13927.33", FormatMoney(*got.TotalAmountDue))
	assert.Equal(t, "850.00", FormatMoney(*got.MinimumAmountDue))
	assert.Equal(t, "2025-08-28", FormatDate(*got.PaymentDueDate))
	assert.Nil(t, got.CustomerNumber)
	assert.Nil(t, got.StatementDate)
	assert.Nil(t, got.CreditLimit)
}

func TestExtractStrict_LabelVariants(t *testing.T) {
	e := NewDefault()
	text := "TOTAL ACCOUNT BALANCE: 1,000.00\nDue Date: 05 SEPT 2025\nMINIMUM PAYMENT: 50.00"

	got, err := e.extractStrict(text)
	require.NoError(t, err)
	assert.Equal(t, "2025-09-05", FormatDate(*got.PaymentDueDate))
	assert.Equal(t, "1000.00", FormatMoney(*got.TotalAmountDue))
}

func TestExtractStrict_Misses(t *testing.T) {
	e := NewDefault()
	tests := []struct {
		name string
		text string
	}{
		{"missing minimum", "Total Account Balance 1,000.00\nPayment Due Date 28 Aug 2025"},
		{"value on next line", "Total Account Balance\n1,000.00\nPayment Due Date 28 Aug 2025\nMinimum Payment 50.00"},
		{"bad month", "Total Account Balance 1,000.00\nDue Date 28 Foo 2025\nMinimum Payment 50.00"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.extractStrict(tt.text)
			assert.Nil(t, got)
			assert.ErrorIs(t, err, ErrNoUsableFields)
		})
	}
}
