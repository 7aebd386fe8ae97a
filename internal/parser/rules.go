package parser

import "regexp"

// Rules holds the keyword tables and layout constants the strategies consult.
// DefaultRules returns a fresh copy on every call, so callers (and tests) may
// modify their copy without affecting anyone else.
type Rules struct {
	// DateFormats are Go reference layouts tried in order by ParseDate.
	DateFormats []string

	// HeaderLabels must all match a single whitespace-collapsed line, in any
	// order, for the header-block strategy to anchor.
	HeaderLabels []*regexp.Regexp
	// StopMarkers end block capture when a line starts with one of them.
	StopMarkers []string
	// MaxBlockLines caps the number of lines captured after the header.
	MaxBlockLines int

	// DueDateKeywords mark lines that introduce a payment due date.
	DueDateKeywords []*regexp.Regexp
	// PrimaryAmountKeywords mark lines that carry the total amount due.
	PrimaryAmountKeywords []*regexp.Regexp
	// MinimumAmountKeywords mark minimum-due lines, which are ranked low.
	MinimumAmountKeywords []*regexp.Regexp
	// DateWindow is how many lines either side of a keyword line are searched.
	DateWindow int
}

// DefaultRules returns the stock configuration.
func DefaultRules() Rules {
	return Rules{
		DateFormats: []string{
			"January 2, 2006",
			"Jan 2, 2006",
			"2 Jan 2006",
			"2 January 2006",
			// Looser shapes seen inside header blocks.
			"2-Jan-2006",
			"January 2 2006",
			"Jan 2 2006",
		},
		HeaderLabels: compileAll(
			`(?i)\bCUSTOMER\s+NUMBER\b`,
			`(?i)\bSTATEMENT\s+DATE\b`,
			`(?i)\bCREDIT\s+LIMIT\b`,
			`(?i)\bTOTAL\s+AMOUNT\s+DUE\b`,
			`(?i)\bMINIMUM\s+AMOUNT\s+DUE\b`,
			`(?i)\bPAYMENT\s+DUE\s+DATE\b`,
		),
		StopMarkers:   []string{"| Previous", "## "},
		MaxBlockLines: 12,
		DueDateKeywords: compileAll(
			`(?i)due\s*date`,
			`(?i)payment\s*due`,
			`(?i)pay\s*by`,
			`(?i)statement\s*due`,
			`(?i)bill\s*due`,
			`(?i)payment\s*deadline`,
			`(?i)date\s*due`,
		),
		PrimaryAmountKeywords: compileAll(
			`(?i)total\s+amount\s+due`,
			`(?i)amount\s+due`,
			`(?i)total\s+due`,
			`(?i)statement\s+balance`,
			`(?i)outstanding\s+balance`,
			`(?i)current\s+balance`,
		),
		MinimumAmountKeywords: compileAll(
			`(?i)minimum\s+amount\s+due`,
			`(?i)minimum\s+due`,
		),
		DateWindow: 2,
	}
}

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(p))
	}
	return out
}

func matchAny(line string, patterns []*regexp.Regexp) bool {
	for _, re := range patterns {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}
