package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"medparse/internal/domain"
)

// MockParseService is a mock implementation of service.ParseService.
type MockParseService struct {
	mock.Mock
}

func (m *MockParseService) ParseOne(ctx context.Context, med domain.Medicine) domain.ParseOutcome {
	args := m.Called(ctx, med)
	return args.Get(0).(domain.ParseOutcome)
}

func (m *MockParseService) ParseBatch(ctx context.Context, meds []domain.Medicine) (domain.BatchResult, error) {
	args := m.Called(ctx, meds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.BatchResult), args.Error(1)
}
