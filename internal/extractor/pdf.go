package extractor

import (
	"fmt"
	"io"
	"errors"
	"math"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// ErrNoReadableText means no extraction method produced text that looks like
// a statement. Scanned documents need OCR.
var ErrNoReadableText = errors.New("no readable text could be extracted from PDF; the file may be image-based or use custom font encodings")

// ExtractText reads a PDF file and returns the text of each page. The
// ledongthuc reader is tried first for its layout handling, then pdfcpu's
// content streams, then pdftotext from poppler-utils. Text that does not look
// like a bill or statement is never returned.
func ExtractText(filePath string) ([]string, error) {
	pages, libErr := extractWithLibrary(filePath)
	if libErr == nil && isReadableText(pages) {
		return pages, nil
	}

	streamPages, streamErr := extractWithContentStreams(filePath)
	if streamErr == nil && isReadableText(streamPages) {
		return streamPages, nil
	}

	popplerPages, popplerErr := extractWithPdftotext(filePath)
	if popplerErr == nil && isReadableText(popplerPages) {
		return popplerPages, nil
	}

	if libErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoReadableText, libErr)
	}
	return nil, ErrNoReadableText
}

// readablePunct is the punctuation a statement normally contains.
const readablePunct = ".,-/:;()'\"₱£$€%&@#!?+=*|"

// textQuality returns the share of runes that are ASCII letters or digits,
// whitespace or readablePunct. Non-ASCII letters count as unreadable since
// identity-encoded fonts decode to accented garbage.
func textQuality(pages []string) float64 {
	total, readable := 0, 0
	for _, page := range pages {
		for _, r := range page {
			total++
			switch {
			case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)),
				unicode.IsSpace(r),
				strings.ContainsRune(readablePunct, r):
				readable++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(readable) / float64(total)
}

// commonWords appear on virtually every bill or card statement. Text with
// none of them is treated as garbage.
var commonWords = []string{
	"account", "balance", "bill", "customer", "date", "due", "payment",
	"statement", "total", "amount", "credit", "limit", "minimum", "paid",
	"number", "page", "period", "invoice",
}

// containsCommonWords checks whether the text contains at least one word
// that would be expected on a bill.
func containsCommonWords(pages []string) bool {
	combined := strings.ToLower(strings.Join(pages, " "))
	for _, word := range commonWords {
		if strings.Contains(combined, word) {
			return true
		}
	}
	return false
}

// isReadableText wants more than 50 characters, a readable ratio above 0.6
// and at least one bill word.
func isReadableText(pages []string) bool {
	return totalTextLen(pages) > 50 &&
		textQuality(pages) > 0.6 &&
		containsCommonWords(pages)
}

// IsReadableText reports whether pages look like real statement text.
func IsReadableText(pages []string) bool {
	return isReadableText(pages)
}

// extractWithPdftotext shells out to pdftotext, one call per page so page
// boundaries survive. pdfcpu supplies the page count.
func extractWithPdftotext(filePath string) ([]string, error) {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return nil, fmt.Errorf("pdftotext not available: %w", err)
	}

	numPages, err := api.PageCountFile(filePath)
	if err != nil || numPages < 1 {
		numPages = 1
	}

	var pages []string
	for i := 1; i <= numPages; i++ {
		pageStr := strconv.Itoa(i)
		out, err := exec.Command("pdftotext", "-layout", "-f", pageStr, "-l", pageStr, filePath, "-").Output()
		if err != nil {
			continue
		}
		text := strings.TrimSpace(string(out))
		if text != "" {
			pages = append(pages, text)
		}
	}

	if len(pages) == 0 {
		out, err := exec.Command("pdftotext", "-layout", filePath, "-").Output()
		if err != nil {
			return nil, fmt.Errorf("pdftotext failed: %w", err)
		}
		text := strings.TrimSpace(string(out))
		if text != "" {
			return []string{text}, nil
		}
		return nil, fmt.Errorf("pdftotext produced no output")
	}

	return pages, nil
}

// extractWithLibrary runs the ledongthuc/pdf methods in turn and keeps the
// first readable result. Library panics become errors.
func extractWithLibrary(filePath string) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDF library crashed: %v", r)
		}
	}()

	f, r, openErr := pdf.Open(filePath)
	if openErr != nil {
		return nil, openErr
	}
	defer f.Close()

	numPages := r.NumPage()
	if numPages == 0 {
		return nil, fmt.Errorf("PDF has no pages")
	}

	// Ordered by how well each method keeps table rows on one line.
	methods := []func() []string{
		func() []string { return extractByRow(r, numPages) },
		func() []string { return extractByContent(r, numPages) },
		func() []string { return extractByPagePlainText(r, numPages) },
		func() []string { return []string{extractByReaderPlainText(r)} },
	}
	for _, m := range methods {
		if pages = m(); isReadableText(pages) {
			return pages, nil
		}
	}
	return pages, nil
}

// extractByRow joins the words of each row the library reports.
func extractByRow(r *pdf.Reader, numPages int) []string {
	var pages []string
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		var lines []string
		for _, row := range rows {
			var parts []string
			for _, word := range row.Content {
				parts = append(parts, word.S)
			}
			line := strings.Join(parts, " ")
			line = strings.TrimSpace(line)
			if line != "" {
				lines = append(lines, line)
			}
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}
	return pages
}

// extractByContent rebuilds rows from raw text positions: pieces sharing a
// rounded Y form a row, ordered by X.
func extractByContent(r *pdf.Reader, numPages int) []string {
	var pages []string
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content := page.Content()
		if len(content.Text) == 0 {
			continue
		}

		// Group text by Y coordinate (row), allowing small tolerance
		type textItem struct {
			x float64
			s string
		}
		rowMap := make(map[int][]textItem)
		for _, t := range content.Text {
			if strings.TrimSpace(t.S) == "" {
				continue
			}
			// Round Y to nearest integer to group into rows
			yKey := int(math.Round(t.Y))
			rowMap[yKey] = append(rowMap[yKey], textItem{x: t.X, s: t.S})
		}

		// PDF Y grows upwards, so top rows have the largest keys.
		yKeys := make([]int, 0, len(rowMap))
		for y := range rowMap {
			yKeys = append(yKeys, y)
		}
		sort.Sort(sort.Reverse(sort.IntSlice(yKeys)))

		var lines []string
		for _, y := range yKeys {
			items := rowMap[y]
			// Sort items in row by X coordinate (left to right)
			sort.Slice(items, func(a, b int) bool {
				return items[a].x < items[b].x
			})

			var parts []string
			var prevX float64
			for j, item := range items {
				if j > 0 && item.x-prevX > 15 {
					// Wide gap: keep columns apart.
					parts = append(parts, "  ")
				}
				parts = append(parts, item.s)
				prevX = item.x
			}
			line := strings.TrimSpace(strings.Join(parts, ""))
			if line != "" {
				lines = append(lines, line)
			}
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}
	return pages
}

// extractByPagePlainText uses each page's own font map.
func extractByPagePlainText(r *pdf.Reader, numPages int) []string {
	var pages []string
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		// Build font map for the page
		fontNames := page.Fonts()
		fonts := make(map[string]*pdf.Font)
		for _, name := range fontNames {
			f := page.Font(name)
			fonts[name] = &f
		}

		text, err := page.GetPlainText(fonts)
		if err != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if text != "" {
			pages = append(pages, text)
		}
	}
	return pages
}

// extractByReaderPlainText extracts the whole document in one pass.
func extractByReaderPlainText(r *pdf.Reader) string {
	reader, err := r.GetPlainText()
	if err != nil {
		return ""
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func totalTextLen(pages []string) int {
	n := 0
	for _, p := range pages {
		n += len(strings.TrimSpace(p))
	}
	return n
}
