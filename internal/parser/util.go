package parser

import (
	"regexp"
	"strings"
)

// pageBreak separates pages in pre-extracted text.
const pageBreak = "\n---PAGE_BREAK---\n"

// collapseSpaces trims s and folds every whitespace run into one space.
func collapseSpaces(s string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(s, " "))
}

// normalizeLine cleans up common PDF extraction artifacts.
func normalizeLine(line string) string {
	line = strings.ReplaceAll(line, "\u200B", "")
	line = strings.ReplaceAll(line, "\u00A0", " ")
	return strings.TrimSpace(line)
}

// SplitLines turns extracted text into non-blank, normalized lines, the shape
// the scoring heuristic expects.
func SplitLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = normalizeLine(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// SplitPages splits pre-extracted text on the page break marker, dropping
// empty pages.
func SplitPages(text string) []string {
	var pages []string
	for _, p := range strings.Split(text, pageBreak) {
		if p = strings.TrimSpace(p); p != "" {
			pages = append(pages, p)
		}
	}
	return pages
}

// sanitizeOCRAmounts fixes common OCR errors in amount strings.
// Tesseract often misreads periods as semicolons or colons in numbers.
// E.g., "19,720; 15:" → "19,720.15".
func sanitizeOCRAmounts(line string) string {
	line = ocrSemicolonPattern.ReplaceAllString(line, "$1.$3")
	line = ocrColonPattern.ReplaceAllString(line, "$1.$2")
	line = ocrTrailingColonPattern.ReplaceAllString(line, "$1 ")
	line = ocrEndColonPattern.ReplaceAllString(line, "$1")
	return line
}

var (
	ocrSemicolonPattern     = regexp.MustCompile(`(\d);(\s*)(\d)`)
	ocrColonPattern         = regexp.MustCompile(`(\d):(\d)`)
	ocrTrailingColonPattern = regexp.MustCompile(`(\d):\s`)
	ocrEndColonPattern      = regexp.MustCompile(`(\d):$`)
)
