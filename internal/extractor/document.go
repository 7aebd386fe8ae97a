package extractor

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Method records how a document's text was obtained.
type Method string

const (
	MethodPlain Method = "plain"
	MethodText  Method = "text"
	MethodOCR   Method = "ocr"
)

// Options controls ExtractDocument.
type Options struct {
	// Password decrypts protected PDFs. Empty means the file is read as-is.
	Password string
	// Lang is the tesseract language; DefaultOCRLang when empty.
	Lang string
	// ForceOCR skips the text layer entirely.
	ForceOCR bool
	Logger   *slog.Logger
}

// Document is the extracted text of one input file.
type Document struct {
	Path   string
	Pages  []string
	Method Method
}

// Text joins the pages with newlines.
func (d *Document) Text() string {
	return strings.Join(d.Pages, "\n")
}

// ExtractDocument returns the text of a bill. Plain .txt files are read
// directly. PDFs are decrypted when a password is given, read through the
// text layer and handed to OCR when that yields nothing readable.
func ExtractDocument(path string, opts Options) (*Document, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if strings.EqualFold(filepath.Ext(path), ".txt") {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return &Document{Path: path, Pages: []string{string(data)}, Method: MethodPlain}, nil
	}

	pdfPath, cleanup, err := Decrypt(path, opts.Password)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	if !opts.ForceOCR {
		pages, textErr := ExtractText(pdfPath)
		if textErr == nil {
			logger.Debug("extract.text.ok", "path", path, "pages", len(pages))
			return &Document{Path: path, Pages: pages, Method: MethodText}, nil
		}
		if !IsOCRAvailable() {
			return nil, textErr
		}
		logger.Info("extract.ocr.fallback", "path", path, "reason", textErr)
		pages, ocrErr := extractWithOCR(pdfPath, opts.Lang, logger)
		if ocrErr != nil {
			return nil, errors.Join(textErr, ocrErr)
		}
		return &Document{Path: path, Pages: pages, Method: MethodOCR}, nil
	}

	pages, err := extractWithOCR(pdfPath, opts.Lang, logger)
	if err != nil {
		return nil, fmt.Errorf("ocr: %w", err)
	}
	return &Document{Path: path, Pages: pages, Method: MethodOCR}, nil
}
