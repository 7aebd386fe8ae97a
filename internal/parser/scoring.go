package parser

import (
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/bill-statement-extractor/internal/models"
)

// Candidate scores. A number on the line after a primary keyword outranks
// everything; minimum-due lines rank lowest.
const (
	scoreMinimumDue   = 1
	scorePlainLine    = 2
	scorePrimaryLine  = 3
	scoreCurrencyMark = 1
	scoreLookAhead    = 4
)

var (
	currencyPattern    = regexp.MustCompile(`(?i)₱|\bPHP\b`)
	lineAmountPattern  = regexp.MustCompile(`(?i)(?:₱|\bPHP\b)?\s*((?:\d{1,3}(?:,\d{3})+|\d+)(?:\.\d{2})?)`)
	numericDatePattern = regexp.MustCompile(`\b(\d{1,2})[/.-](\d{1,2})[/.-](\d{4}|\d{2})\b`)
	isoDatePattern     = regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`)
)

// ScoreLines finds a due date and a total amount in line-oriented text using
// keyword proximity. It returns ErrNoCandidates when neither turns up.
func (e *Extractor) ScoreLines(lines []string) (*models.DueAmount, error) {
	out := &models.DueAmount{DueDate: e.scoreDueDate(lines)}

	if cands := e.scoreAmounts(lines); len(cands) > 0 {
		best := cands[0]
		out.Amount = &best.Amount
		out.AmountContext = best.SourceLine
	}

	if out.DueDate == nil && out.Amount == nil {
		return nil, ErrNoCandidates
	}
	e.logger.Debug("scoring.ok", "due_date", out.DueDate != nil, "amount", out.Amount != nil)
	return out, nil
}

// scoreDueDate parses the first keyword line carrying a date, looking at
// neighbouring lines when the keyword line itself has none.
func (e *Extractor) scoreDueDate(lines []string) *time.Time {
	for i, line := range lines {
		if !matchAny(line, e.rules.DueDateKeywords) {
			continue
		}
		if d, ok := e.parseDateAny(line); ok {
			return &d
		}
		lo := max(0, i-e.rules.DateWindow)
		hi := min(len(lines), i+e.rules.DateWindow+1)
		for j := lo; j < hi; j++ {
			if j == i {
				continue
			}
			if d, ok := e.parseDateAny(lines[j]); ok {
				return &d
			}
		}
	}
	return nil
}

// scoreAmounts returns amount candidates ranked by score, then by amount,
// both descending.
func (e *Extractor) scoreAmounts(lines []string) []models.Candidate {
	var cands []models.Candidate
	for i, line := range lines {
		if matchAny(line, e.rules.MinimumAmountKeywords) {
			if am, ok := lineAmount(line); ok {
				cands = append(cands, models.Candidate{Amount: am, Score: scoreMinimumDue, SourceLine: line})
			}
			continue
		}

		primary := matchAny(line, e.rules.PrimaryAmountKeywords)
		if am, ok := lineAmount(line); ok {
			score := scorePlainLine
			if primary {
				score = scorePrimaryLine
			}
			if currencyPattern.MatchString(line) {
				score += scoreCurrencyMark
			}
			cands = append(cands, models.Candidate{Amount: am, Score: score, SourceLine: line})
		}

		if primary && i+1 < len(lines) {
			if am, ok := lineAmount(lines[i+1]); ok {
				cands = append(cands, models.Candidate{
					Amount:     am,
					Score:      scoreLookAhead,
					SourceLine: line + " | " + lines[i+1],
				})
			}
		}
	}

	sort.SliceStable(cands, func(a, b int) bool {
		if cands[a].Score != cands[b].Score {
			return cands[a].Score > cands[b].Score
		}
		return cands[a].Amount.GreaterThan(cands[b].Amount)
	})
	return cands
}

// lineAmount returns the first number on line once dates are blanked out.
func lineAmount(line string) (decimal.Decimal, bool) {
	line = sanitizeOCRAmounts(line)
	line = isoDatePattern.ReplaceAllString(line, " ")
	line = numericDatePattern.ReplaceAllString(line, " ")
	line = datePattern.ReplaceAllString(line, " ")

	m := lineAmountPattern.FindStringSubmatch(line)
	if m == nil {
		return decimal.Zero, false
	}
	d, err := ParseMoney(m[1])
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// parseDateAny is a liberal date reader: named-month dates first, then ISO,
// then numeric dates tried month-first and day-first.
func (e *Extractor) parseDateAny(line string) (time.Time, bool) {
	for _, tok := range findDates(line) {
		if d, err := ParseDate(tok, e.rules.DateFormats...); err == nil {
			return d, true
		}
	}
	if m := isoDatePattern.FindStringSubmatch(line); m != nil {
		if d, ok := civilDate(m[1], m[2], m[3]); ok {
			return d, true
		}
	}
	for _, m := range numericDatePattern.FindAllStringSubmatch(line, -1) {
		year := m[3]
		if len(year) == 2 {
			year = "20" + year
		}
		if d, ok := civilDate(year, m[1], m[2]); ok {
			return d, true
		}
		if d, ok := civilDate(year, m[2], m[1]); ok {
			return d, true
		}
	}
	return time.Time{}, false
}

// civilDate builds a date, rejecting values time.Date would roll over.
func civilDate(year, month, day string) (time.Time, bool) {
	y, err1 := strconv.Atoi(year)
	mo, err2 := strconv.Atoi(month)
	d, err3 := strconv.Atoi(day)
	if err1 != nil || err2 != nil || err3 != nil || mo < 1 || mo > 12 {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC)
	if t.Month() != time.Month(mo) || t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}
