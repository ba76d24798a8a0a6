package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"spendbot/internal/domain"
)

// MockExpenseRepo is a mock implementation of port.ExpenseRepository.
type MockExpenseRepo struct {
	mock.Mock
}

func (m *MockExpenseRepo) Create(ctx context.Context, expense *domain.Expense) error {
	args := m.Called(ctx, expense)
	return args.Error(0)
}

func (m *MockExpenseRepo) GetByID(ctx context.Context, userID int64, expenseID uuid.UUID) (*domain.Expense, error) {
	args := m.Called(ctx, userID, expenseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Expense), args.Error(1)
}

func (m *MockExpenseRepo) ListByUser(ctx context.Context, userID int64, from, to time.Time) ([]domain.Expense, error) {
	args := m.Called(ctx, userID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Expense), args.Error(1)
}

func (m *MockExpenseRepo) ApplyCorrections(ctx context.Context, userID int64, expenseID uuid.UUID, set domain.CorrectionSet, status domain.ExpenseStatus) (*domain.Expense, error) {
	args := m.Called(ctx, userID, expenseID, set, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Expense), args.Error(1)
}

// MockExpenseAuditRepo is a mock implementation of port.ExpenseAuditRepository.
type MockExpenseAuditRepo struct {
	mock.Mock
}

func (m *MockExpenseAuditRepo) Create(ctx context.Context, entry *domain.ExpenseAuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}
