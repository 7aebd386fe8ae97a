package parser

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/bill-statement-extractor/internal/models"
)

const (
	warnMagnitudeOrder = "amounts assigned by magnitude order"
	warnFewAmounts     = "fewer than three amounts found"
)

var (
	customerNumberPattern = regexp.MustCompile(`\b\d{2,}(?:-\d+){3,}\b`)
	// strictMoneyPattern only accepts grouped or two-decimal numbers so bare
	// years and day numbers are ignored. Alphanumeric neighbours are rejected
	// in findStrictMoney.
	strictMoneyPattern = regexp.MustCompile(`\d{1,3}(?:,\d{3})+(?:\.\d{2})?|\d+\.\d{2}`)
)

type datedToken struct {
	raw string
	day time.Time
}

type moneyValue struct {
	raw   string
	value decimal.Decimal
}

// extractHeaderBlock anchors on a line carrying every header label, then
// reads the values printed beneath it.
func (e *Extractor) extractHeaderBlock(text string) (*models.ExtractedBillFields, error) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	hdr := -1
	for i, ln := range lines {
		if e.isHeaderLine(collapseSpaces(ln)) {
			hdr = i
			break
		}
	}
	if hdr < 0 {
		return nil, ErrHeaderNotFound
	}

	blob := collapseSpaces(strings.Join(e.captureBlock(lines[hdr+1:]), " "))
	fields := &models.ExtractedBillFields{SourceLayout: models.LayoutHeaderBlock}

	moneyText := blob
	if loc := customerNumberPattern.FindStringIndex(blob); loc != nil {
		cn := blob[loc[0]:loc[1]]
		fields.CustomerNumber = &cn
		moneyText = blob[loc[1]:]
	}

	dates := e.blockDates(blob)
	if len(dates) > 0 {
		first := dates[0].day
		fields.StatementDate = &first
	}
	if len(dates) >= 2 {
		last := dates[len(dates)-1].day
		fields.PaymentDueDate = &last
	}

	e.assignAmounts(fields, moneyText, blob)

	if fields.PaymentDueDate == nil && fields.TotalAmountDue == nil {
		return nil, fmt.Errorf("%w: header block had no due date or total", ErrNoUsableFields)
	}
	return fields, nil
}

func (e *Extractor) isHeaderLine(line string) bool {
	if line == "" {
		return false
	}
	for _, re := range e.rules.HeaderLabels {
		if !re.MatchString(line) {
			return false
		}
	}
	return true
}

// captureBlock collects lines up to a stop marker or the line cap. Blank
// lines are kept; they vanish when the block is whitespace-collapsed.
func (e *Extractor) captureBlock(lines []string) []string {
	var block []string
	for _, ln := range lines {
		trimmed := strings.TrimSpace(ln)
		if e.isStopMarker(trimmed) {
			break
		}
		block = append(block, trimmed)
		if len(block) >= e.rules.MaxBlockLines {
			break
		}
	}
	return block
}

func (e *Extractor) isStopMarker(line string) bool {
	for _, m := range e.rules.StopMarkers {
		if strings.HasPrefix(line, m) {
			return true
		}
	}
	return false
}

// blockDates returns the distinct calendar days in blob, oldest first.
func (e *Extractor) blockDates(blob string) []datedToken {
	var out []datedToken
	for _, raw := range findDates(blob) {
		day, err := ParseDate(raw, e.rules.DateFormats...)
		if err != nil {
			e.logger.Debug("header.date.skipped", "token", raw, "err", err)
			continue
		}
		dup := false
		for _, seen := range out {
			if sameDay(seen.day, day) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, datedToken{raw: raw, day: day})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].day.Before(out[j].day) })
	return out
}

// assignAmounts takes the first three distinct money tokens after the
// customer number (the whole block when fewer turn up there) and assigns
// them smallest to largest as minimum due, total due, credit limit.
func (e *Extractor) assignAmounts(fields *models.ExtractedBillFields, afterCustomer, blob string) {
	tokens := findStrictMoney(afterCustomer)
	if len(distinct(tokens, -1)) < 3 {
		tokens = findStrictMoney(blob)
	}

	var values []moneyValue
	for _, raw := range distinct(tokens, 3) {
		d, err := ParseMoney(raw)
		if err != nil {
			continue
		}
		values = append(values, moneyValue{raw: raw, value: d})
	}
	if len(values) == 0 {
		return
	}
	sort.SliceStable(values, func(i, j int) bool { return values[i].value.LessThan(values[j].value) })

	fields.Warnings = append(fields.Warnings, warnMagnitudeOrder)
	if len(values) == 3 {
		fields.MinimumAmountDue = &values[0].value
		fields.TotalAmountDue = &values[1].value
		fields.CreditLimit = &values[2].value
		return
	}

	fields.Warnings = append(fields.Warnings, warnFewAmounts)
	fields.MinimumAmountDue = &values[0].value
	fields.CreditLimit = &values[len(values)-1].value
	if len(values) >= 2 {
		fields.TotalAmountDue = &values[len(values)-2].value
	}
}

// findStrictMoney returns strict money tokens in document order, skipping
// matches glued to letters or digits.
func findStrictMoney(text string) []string {
	var out []string
	for _, loc := range strictMoneyPattern.FindAllStringIndex(text, -1) {
		if loc[0] > 0 && isAlnum(text[loc[0]-1]) {
			continue
		}
		if loc[1] < len(text) && isAlnum(text[loc[1]]) {
			continue
		}
		out = append(out, text[loc[0]:loc[1]])
	}
	return out
}

// distinct keeps the first occurrence of each token, up to limit (-1 for all).
func distinct(tokens []string, limit int) []string {
	seen := make(map[string]bool, len(tokens))
	var out []string
	for _, t := range tokens {
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func isAlnum(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
