package parser

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

// moneyTokenPattern is the strict money grammar:
// optional sign, optional currency marker, integer run (plain or comma
// grouped), optional 1-2 digit fraction, optional CR/DR suffix.
var moneyTokenPattern = regexp.MustCompile(
	`^\s*([-+])?\s*(₱|[Pp])?\s*(\d{1,3}(?:,\d{3})*|\d+)(?:\.(\d{1,2}))?\s*(CR|DR)?\s*$`,
)

// MoneyToken is a money string split into its grammar parts.
type MoneyToken struct {
	Sign          string
	Currency      string
	Integer       string
	Fraction      string
	Suffix        string
	Parenthetical bool
}

// SplitMoneyToken decomposes s according to the money grammar.
func SplitMoneyToken(s string) (MoneyToken, error) {
	s = strings.TrimSpace(norm.NFKC.String(s))
	if s == "" {
		return MoneyToken{}, ErrMoneyTokenRejected
	}

	var tok MoneyToken
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		tok.Parenthetical = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	m := moneyTokenPattern.FindStringSubmatch(s)
	if m == nil {
		return MoneyToken{}, ErrMoneyTokenRejected
	}
	tok.Sign = m[1]
	tok.Currency = m[2]
	tok.Integer = strings.ReplaceAll(m[3], ",", "")
	tok.Fraction = m[4]
	tok.Suffix = m[5]
	return tok, nil
}

// Value assembles the exact signed amount, rounded half-to-even to cents.
// A DR suffix always yields a positive value.
func (t MoneyToken) Value() (decimal.Decimal, error) {
	frac := t.Fraction
	if frac == "" {
		frac = "00"
	}
	d, err := decimal.NewFromString(t.Integer + "." + frac)
	if err != nil {
		return decimal.Zero, ErrMoneyTokenRejected
	}

	debit := t.Suffix == "DR"
	negative := t.Parenthetical || t.Sign == "-" || t.Suffix == "CR"
	if negative && !debit {
		d = d.Neg()
	}
	return d.RoundBank(2), nil
}

// ParseMoney normalizes a free-text monetary token, e.g. "(1,234.56)",
// "₱ 13,927.33", "850CR". Tokens outside the grammar return
// ErrMoneyTokenRejected.
func ParseMoney(s string) (decimal.Decimal, error) {
	tok, err := SplitMoneyToken(s)
	if err != nil {
		return decimal.Zero, err
	}
	return tok.Value()
}

// FormatMoney renders d with exactly two decimals.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func moneyPtr(s string) *decimal.Decimal {
	d, err := ParseMoney(s)
	if err != nil {
		return nil
	}
	return &d
}
