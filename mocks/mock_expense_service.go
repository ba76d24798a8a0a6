package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"spendbot/internal/domain"
	"spendbot/internal/lexicon"
)

// MockExpenseService is a mock implementation of service.ExpenseService.
type MockExpenseService struct {
	mock.Mock
}

func (m *MockExpenseService) ApplyCorrections(ctx context.Context, userID int64, expenseID uuid.UUID, corrections []domain.Correction, categories []domain.Category) (*domain.Expense, error) {
	args := m.Called(ctx, userID, expenseID, corrections, categories)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Expense), args.Error(1)
}

// MockSummarizer is a mock implementation of service.Summarizer.
type MockSummarizer struct {
	mock.Mock
}

func (m *MockSummarizer) Format(ctx context.Context, expense *domain.Expense, loc lexicon.Locale) (string, error) {
	args := m.Called(ctx, expense, loc)
	return args.String(0), args.Error(1)
}
