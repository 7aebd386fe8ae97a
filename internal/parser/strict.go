package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/insightdelivered/bill-statement-extractor/internal/models"
)

// Label-anchored single-shot patterns. Each value must sit on the same line
// as its label.
var (
	strictTotalBalance = regexp.MustCompile(`(?i)total\s+account\s+balance[ \t]*:?[ \t]*([\d,]+\.\d{2})`)
	strictDueDate      = regexp.MustCompile(`(?i)(?:payment\s+)?due\s+date[ \t]*:?[ \t]*(\d{1,2}[ \t]+[A-Za-z]+\.?[ \t]+\d{4})`)
	strictMinPayment   = regexp.MustCompile(`(?i)minimum\s+payment[ \t]*:?[ \t]*([\d,]+\.\d{2})`)
)

// extractStrict needs all three labels to match; a single miss hands the
// text to the next strategy.
func (e *Extractor) extractStrict(text string) (*models.ExtractedBillFields, error) {
	captures := map[string]string{}
	var missing []string
	for _, f := range []struct {
		name string
		re   *regexp.Regexp
	}{
		{"total account balance", strictTotalBalance},
		{"due date", strictDueDate},
		{"minimum payment", strictMinPayment},
	} {
		m := f.re.FindStringSubmatch(text)
		if m == nil {
			missing = append(missing, f.name)
			continue
		}
		captures[f.name] = m[1]
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrNoUsableFields, strings.Join(missing, ", "))
	}

	total, err := ParseMoney(captures["total account balance"])
	if err != nil {
		return nil, fmt.Errorf("%w: total account balance: %v", ErrNoUsableFields, err)
	}
	minimum, err := ParseMoney(captures["minimum payment"])
	if err != nil {
		return nil, fmt.Errorf("%w: minimum payment: %v", ErrNoUsableFields, err)
	}
	due, err := ParseDate(captures["due date"], e.rules.DateFormats...)
	if err != nil {
		return nil, fmt.Errorf("%w: due date: %v", ErrNoUsableFields, err)
	}

	return &models.ExtractedBillFields{
		PaymentDueDate:   &due,
		TotalAmountDue:   &total,
		MinimumAmountDue: &minimum,
		SourceLayout:     models.LayoutStrictSequence,
	}, nil
}
