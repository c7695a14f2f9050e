package parser

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"medparse/internal/domain"
	"medparse/internal/port"
)

// FallbackParser tries parsers in order until one succeeds. It implements
// port.MedicineParser.
type FallbackParser struct {
	parsers []port.MedicineParser
	names   []string
	logger  *zap.Logger
}

// NewFallbackParser creates a FallbackParser from an ordered list of parsers
// and their names.
func NewFallbackParser(parsers []port.MedicineParser, names []string, logger *zap.Logger) *FallbackParser {
	return &FallbackParser{parsers: parsers, names: names, logger: logger}
}

func (f *FallbackParser) Extract(ctx context.Context, medicineName string) (*domain.ParsedFields, error) {
	var lastErr error
	for i, p := range f.parsers {
		fields, err := p.Extract(ctx, medicineName)
		if err == nil {
			return fields, nil
		}
		if ctx.Err() != nil {
			// The request's budget is spent; trying the next parser would
			// fail the same way.
			return nil, err
		}
		f.logger.Warn("parser failed, trying next",
			zap.String("parser", f.names[i]),
			zap.Error(err),
		)
		lastErr = err
	}
	return nil, fmt.Errorf("all parsers failed: %w", lastErr)
}
