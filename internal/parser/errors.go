package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/insightdelivered/bill-statement-extractor/internal/models"
)

var (
	// ErrHeaderNotFound means no line carries every header-block label.
	ErrHeaderNotFound = errors.New("header not found")
	// ErrNoUsableFields means a layout matched but yielded nothing reportable.
	ErrNoUsableFields = errors.New("no usable fields")
	// ErrUnrecognizedDateFormat is returned for date tokens no known format accepts.
	ErrUnrecognizedDateFormat = errors.New("unrecognized date format")
	// ErrMoneyTokenRejected is returned for tokens outside the money grammar.
	ErrMoneyTokenRejected = errors.New("money token rejected")
	// ErrAllStrategiesExhausted is the terminal cascade failure.
	ErrAllStrategiesExhausted = errors.New("all extraction strategies exhausted")
	// ErrNoCandidates means the scoring heuristic found neither a due date nor an amount.
	ErrNoCandidates = errors.New("no candidates found for due date or amount")
)

// StrategyError records why a single strategy declined the input.
type StrategyError struct {
	Layout models.SourceLayout
	Err    error
}

func (e *StrategyError) Error() string {
	return fmt.Sprintf("%s: %v", e.Layout, e.Err)
}

func (e *StrategyError) Unwrap() error {
	return e.Err
}

// ExhaustedError is returned by the cascade when every strategy failed.
type ExhaustedError struct {
	Failures []*StrategyError
}

func (e *ExhaustedError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, f.Error())
	}
	if len(parts) == 0 {
		return ErrAllStrategiesExhausted.Error()
	}
	return fmt.Sprintf("%s (%s)", ErrAllStrategiesExhausted, strings.Join(parts, "; "))
}

func (e *ExhaustedError) Is(target error) bool {
	return target == ErrAllStrategiesExhausted
}

func (e *ExhaustedError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f)
	}
	return errs
}
