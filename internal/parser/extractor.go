package parser

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/insightdelivered/bill-statement-extractor/internal/models"
)

// Extractor turns statement text into structured bill fields. It holds no
// per-call state and is safe for concurrent use.
type Extractor struct {
	rules  Rules
	logger *slog.Logger
}

// New returns an Extractor using rules. A nil logger means slog.Default().
func New(rules Rules, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if rules.MaxBlockLines <= 0 {
		rules.MaxBlockLines = 12
	}
	if rules.DateWindow < 0 {
		rules.DateWindow = 0
	}
	return &Extractor{rules: rules, logger: logger}
}

// NewDefault returns an Extractor with DefaultRules.
func NewDefault() *Extractor {
	return New(DefaultRules(), nil)
}

// Strategies returns the fixed cascade order: strict sequence, table row,
// header block.
func (e *Extractor) Strategies() []Strategy {
	return []Strategy{
		{Layout: models.LayoutStrictSequence, Extract: e.extractStrict},
		{Layout: models.LayoutTableRow, Extract: e.extractTableRow},
		{Layout: models.LayoutHeaderBlock, Extract: e.extractHeaderBlock},
	}
}

// Extract runs the strategy cascade over text. On failure the error matches
// ErrAllStrategiesExhausted and is an *ExhaustedError.
func (e *Extractor) Extract(text string) (*models.ExtractedBillFields, error) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return NewCascade(e.logger, e.Strategies()...).Run(text)
}

// Result is the outcome of ExtractOrScore: either cascade fields or, when
// every layout failed, the scoring heuristic's due date and amount.
type Result struct {
	Fields   *models.ExtractedBillFields
	Fallback *models.DueAmount
	Failures []*StrategyError
}

// ExtractOrScore runs the cascade and falls back to line scoring when every
// strategy declines. The error is non-nil only when both paths came up empty.
func (e *Extractor) ExtractOrScore(text string) (*Result, error) {
	fields, err := e.Extract(text)
	if err == nil {
		return &Result{Fields: fields}, nil
	}

	res := &Result{}
	var ex *ExhaustedError
	if errors.As(err, &ex) {
		res.Failures = ex.Failures
	}

	due, serr := e.ScoreLines(SplitLines(text))
	if serr != nil {
		return res, fmt.Errorf("%w; %w", err, serr)
	}
	e.logger.Debug("cascade.fallback.scoring", "failures", len(res.Failures))
	res.Fallback = due
	return res, nil
}
