package parser

import (
	"context"

	"medparse/internal/domain"
)

// RegexParser extracts fields using only the compiled descriptor patterns. It
// never calls out to the network, so it is used as the local fallback behind
// the LLM client. It implements port.MedicineParser.
type RegexParser struct{}

// NewRegexParser creates a RegexParser.
func NewRegexParser() *RegexParser {
	return &RegexParser{}
}

func (p *RegexParser) Extract(_ context.Context, medicineName string) (*domain.ParsedFields, error) {
	strength := MatchStrength(medicineName)
	formulation := MatchFormulation(medicineName)

	fields := &domain.ParsedFields{
		Name:        NormalizeName(medicineName, strength, formulation),
		Strength:    strength,
		Formulation: formulation,
	}
	if IsPatch(medicineName) {
		fields.Duration = MatchPatchDuration(medicineName)
	}
	return fields, nil
}
