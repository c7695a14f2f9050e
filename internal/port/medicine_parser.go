package port

import (
	"context"

	"medparse/internal/domain"
)

// MedicineParser abstracts extraction of structured fields from a free-text
// medicine descriptor. Implementations must not retry internally; retry policy
// is owned by the caller.
type MedicineParser interface {
	Extract(ctx context.Context, medicineName string) (*domain.ParsedFields, error)
}
