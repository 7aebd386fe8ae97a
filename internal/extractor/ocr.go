package extractor

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultOCRLang is the tesseract language used when none is given.
const DefaultOCRLang = "eng"

// IsOCRAvailable reports whether pdftoppm and tesseract are on PATH.
func IsOCRAvailable() bool {
	_, err1 := exec.LookPath("pdftoppm")
	_, err2 := exec.LookPath("tesseract")
	return err1 == nil && err2 == nil
}

// ExtractTextOCR rasterises each page at 300 DPI with pdftoppm and runs
// tesseract over the images. It is the path for scanned bills with no text
// layer. lang is a tesseract language code such as "eng" or "eng+fil".
func ExtractTextOCR(filePath, lang string) ([]string, error) {
	return extractWithOCR(filePath, lang, slog.Default())
}

func extractWithOCR(filePath, lang string, logger *slog.Logger) ([]string, error) {
	if _, err := exec.LookPath("pdftoppm"); err != nil {
		return nil, fmt.Errorf("pdftoppm not available (install poppler-utils): %w", err)
	}
	if _, err := exec.LookPath("tesseract"); err != nil {
		return nil, fmt.Errorf("tesseract not available (install tesseract-ocr): %w", err)
	}
	if lang == "" {
		lang = DefaultOCRLang
	}

	tmpDir, err := os.MkdirTemp("", "ocr-pages-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	imgPrefix := filepath.Join(tmpDir, "page")
	if out, err := exec.Command("pdftoppm", "-r", "300", "-png", filePath, imgPrefix).CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftoppm failed: %w (output: %s)", err, string(out))
	}

	imageFiles, err := filepath.Glob(filepath.Join(tmpDir, "*.png"))
	if err != nil {
		return nil, fmt.Errorf("failed to list page images: %w", err)
	}
	if len(imageFiles) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no page images")
	}
	// pdftoppm zero-pads page numbers, so name order is page order.
	sort.Strings(imageFiles)

	var pages []string
	for _, imgFile := range imageFiles {
		outBase := strings.TrimSuffix(imgFile, ".png") + "-ocr"
		// PSM 4: single column of variable-size text, which suits bills.
		cmd := exec.Command("tesseract", imgFile, outBase, "-l", lang, "--psm", "4")
		if out, err := cmd.CombinedOutput(); err != nil {
			logger.Warn("ocr.page.failed", "image", filepath.Base(imgFile), "err", err, "output", string(out))
			continue
		}

		data, err := os.ReadFile(outBase + ".txt")
		if err != nil {
			continue
		}
		if text := strings.TrimSpace(string(data)); text != "" {
			pages = append(pages, text)
		}
	}

	if len(pages) == 0 {
		return nil, fmt.Errorf("tesseract OCR produced no text from %d page images", len(imageFiles))
	}
	return pages, nil
}
