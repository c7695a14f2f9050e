package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"medparse/internal/domain"
)

// MockMedicineParser is a mock implementation of port.MedicineParser.
type MockMedicineParser struct {
	mock.Mock
}

func (m *MockMedicineParser) Extract(ctx context.Context, medicineName string) (*domain.ParsedFields, error) {
	args := m.Called(ctx, medicineName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ParsedFields), args.Error(1)
}
