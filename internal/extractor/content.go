package extractor

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"unicode"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Text-showing operators inside a BT...ET block.
var (
	tdPattern      = regexp.MustCompile(`-?[\d.]+\s+-?[\d.]+\s+T[dD]$`)
	hexTjPattern   = regexp.MustCompile(`<([0-9A-Fa-f]+)>\s*Tj`)
	litTjPattern   = regexp.MustCompile(`\(((?:[^()\\]|\\.)*)\)\s*Tj`)
	tjArrayPattern = regexp.MustCompile(`\[(.*?)\]\s*TJ`)
	tickPattern    = regexp.MustCompile(`\(((?:[^()\\]|\\.)*)\)\s*'`)
	hexInArrayRe   = regexp.MustCompile(`<([0-9A-Fa-f]+)>`)
	litInArrayRe   = regexp.MustCompile(`\(((?:[^()\\]|\\.)*)\)`)
)

// extractWithContentStreams reads each page's content stream through pdfcpu
// and decodes the text operators directly. It recovers text from files the
// ledongthuc reader chokes on, at the cost of layout fidelity.
func extractWithContentStreams(filePath string) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdfcpu content extraction crashed: %v", r)
		}
	}()

	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ctx, err := api.ReadValidateAndOptimize(f, model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}

	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
		if err != nil || r == nil {
			continue
		}
		data, err := io.ReadAll(r)
		if err != nil || len(data) == 0 {
			continue
		}
		if text := textFromContentStream(string(data)); text != "" {
			pages = append(pages, text)
		}
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("no text operators found in %d pages", ctx.PageCount)
	}
	return pages, nil
}

// textFromContentStream walks BT...ET blocks, starting a new line on each
// Td/TD, T* or ' operator.
func textFromContentStream(content string) string {
	var lines []string
	for _, block := range splitBTBlocks(content) {
		lines = append(lines, textBlockLines(block)...)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func splitBTBlocks(content string) []string {
	var blocks []string
	rest := content
	for {
		bt := strings.Index(rest, "BT")
		if bt < 0 {
			break
		}
		et := strings.Index(rest[bt:], "ET")
		if et < 0 {
			break
		}
		blocks = append(blocks, rest[bt:bt+et+2])
		rest = rest[bt+et+2:]
	}
	return blocks
}

func textBlockLines(block string) []string {
	var lines []string
	var cur strings.Builder
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			lines = append(lines, s)
		}
		cur.Reset()
	}

	for _, op := range strings.Split(block, "\n") {
		op = strings.TrimSpace(op)
		if tdPattern.MatchString(op) || op == "T*" {
			flush()
		}
		for _, m := range hexTjPattern.FindAllStringSubmatch(op, -1) {
			cur.WriteString(decodeHexString(m[1]))
		}
		for _, m := range litTjPattern.FindAllStringSubmatch(op, -1) {
			cur.WriteString(cleanString(decodePDFEscapes(m[1])))
		}
		for _, m := range tjArrayPattern.FindAllStringSubmatch(op, -1) {
			cur.WriteString(decodeTJArray(m[1]))
		}
		for _, m := range tickPattern.FindAllStringSubmatch(op, -1) {
			flush()
			cur.WriteString(cleanString(decodePDFEscapes(m[1])))
		}
	}
	flush()
	return lines
}

// decodeTJArray joins the string elements of a TJ array in order, ignoring
// kerning offsets.
func decodeTJArray(array string) string {
	type piece struct {
		pos  int
		text string
	}
	var pieces []piece
	for _, idx := range hexInArrayRe.FindAllStringSubmatchIndex(array, -1) {
		pieces = append(pieces, piece{idx[0], decodeHexString(array[idx[2]:idx[3]])})
	}
	for _, idx := range litInArrayRe.FindAllStringSubmatchIndex(array, -1) {
		pieces = append(pieces, piece{idx[0], cleanString(decodePDFEscapes(array[idx[2]:idx[3]]))})
	}
	for i := 1; i < len(pieces); i++ {
		for j := i; j > 0 && pieces[j].pos < pieces[j-1].pos; j-- {
			pieces[j], pieces[j-1] = pieces[j-1], pieces[j]
		}
	}

	var sb strings.Builder
	for _, p := range pieces {
		sb.WriteString(p.text)
	}
	return sb.String()
}

// decodeHexString reads a hex string as UTF-16BE when it has an even byte
// count and as single bytes otherwise.
func decodeHexString(h string) string {
	raw, err := hex.DecodeString(h)
	if err != nil {
		return ""
	}
	if len(raw) >= 2 && len(raw)%2 == 0 {
		var sb strings.Builder
		for i := 0; i+1 < len(raw); i += 2 {
			if cp := rune(raw[i])<<8 | rune(raw[i+1]); unicode.IsPrint(cp) {
				sb.WriteRune(cp)
			}
		}
		if sb.Len() > 0 {
			return sb.String()
		}
	}
	return cleanString(string(raw))
}

// decodePDFEscapes resolves backslash escapes in a literal string,
// including up to three octal digits.
func decodePDFEscapes(s string) string {
	var buf strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			buf.WriteByte(s[i])
			continue
		}
		i++
		switch c := s[i]; c {
		case 'n':
			buf.WriteByte('\n')
		case 'r':
			buf.WriteByte('\r')
		case 't':
			buf.WriteByte('\t')
		case 'b':
			buf.WriteByte('\b')
		case 'f':
			buf.WriteByte('\f')
		default:
			if c < '0' || c > '7' {
				buf.WriteByte(c)
				continue
			}
			val := int(c - '0')
			for j := 0; j < 2 && i+1 < len(s) && s[i+1] >= '0' && s[i+1] <= '7'; j++ {
				i++
				val = val*8 + int(s[i]-'0')
			}
			buf.WriteByte(byte(val))
		}
	}
	return buf.String()
}

func cleanString(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || r == '\t' {
			return r
		}
		return -1
	}, s)
}
