package parser

import (
	"fmt"
	"regexp"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const monthAlternation = `(?:January|February|March|April|May|June|July|August|September|October|November|December|` +
	`Jan|Feb|Mar|Apr|Jun|Jul|Aug|Sept|Sep|Oct|Nov|Dec)`

// datePattern is the date grammar shared by the strategies:
// "Month D, YYYY", "Mon D YYYY", "D Mon YYYY", "D-Mon-YYYY" and friends.
const dateExpr = `(?:` + monthAlternation + `\.?[\s-]+\d{1,2},?[\s-]+\d{4}` +
	`|\d{1,2}[\s-]+` + monthAlternation + `\.?[\s-]+\d{4})`

var datePattern = regexp.MustCompile(`(?i)\b` + dateExpr + `\b`)

var (
	septPattern       = regexp.MustCompile(`\bSept\b`)
	abbrevDotPattern  = regexp.MustCompile(`\b(Jan|Feb|Mar|Apr|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\.`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// ParseDate normalizes a date token into a calendar date (midnight UTC).
// The token is whitespace-collapsed and title-cased first so OCR output in
// full caps still parses. formats are tried in order; when none are given
// the DefaultRules formats apply.
func ParseDate(s string, formats ...string) (time.Time, error) {
	if len(formats) == 0 {
		formats = DefaultRules().DateFormats
	}

	clean := collapseSpaces(s)
	clean = cases.Title(language.Und).String(clean)
	clean = septPattern.ReplaceAllString(clean, "Sep")
	clean = abbrevDotPattern.ReplaceAllString(clean, "$1")

	for _, layout := range formats {
		if t, err := time.Parse(layout, clean); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnrecognizedDateFormat, s)
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

func findDates(text string) []string {
	return datePattern.FindAllString(text, -1)
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
