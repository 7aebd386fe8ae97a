package parser

import (
	"errors"
	"log/slog"

	"github.com/insightdelivered/bill-statement-extractor/internal/models"
)

// Strategy is one layout-specific extraction attempt. Extract must not
// retain text or mutate shared state.
type Strategy struct {
	Layout  models.SourceLayout
	Extract func(text string) (*models.ExtractedBillFields, error)
}

// Cascade runs strategies in order and returns the first success.
type Cascade struct {
	strategies []Strategy
	logger     *slog.Logger
}

func NewCascade(logger *slog.Logger, strategies ...Strategy) *Cascade {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cascade{strategies: strategies, logger: logger}
}

// Run returns the first strategy result, or an *ExhaustedError listing every
// failure. A strategy returning (nil, nil) counts as ErrNoUsableFields.
func (c *Cascade) Run(text string) (*models.ExtractedBillFields, error) {
	exhausted := &ExhaustedError{}
	for _, s := range c.strategies {
		fields, err := s.Extract(text)
		if err == nil && fields == nil {
			err = ErrNoUsableFields
		}
		if err != nil {
			var se *StrategyError
			if !errors.As(err, &se) {
				se = &StrategyError{Layout: s.Layout, Err: err}
			}
			exhausted.Failures = append(exhausted.Failures, se)
			c.logger.Debug("cascade.strategy.failed", "layout", s.Layout, "err", err)
			continue
		}
		if fields.SourceLayout == "" {
			fields.SourceLayout = s.Layout
		}
		c.logger.Debug("cascade.ok", "layout", fields.SourceLayout, "attempts", len(exhausted.Failures)+1)
		return fields, nil
	}
	return nil, exhausted
}
