package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"spendbot/internal/domain"
	"spendbot/internal/lexicon"
	"spendbot/internal/service"
	"spendbot/mocks"
)

func sampleExpense(categoryID *uuid.UUID) *domain.Expense {
	return &domain.Expense{
		ID:         uuid.New(),
		UserID:     7,
		Amount:     decimal.RequireFromString("12.5"),
		Currency:   "USD",
		Date:       time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		Merchant:   "Corner Shop",
		CategoryID: categoryID,
		Items: []domain.LineItem{
			{Name: "Bread", Quantity: decimal.NewFromInt(2), Total: decimal.RequireFromString("2.4")},
			{Name: "Milk", Quantity: decimal.NewFromInt(1), Total: decimal.RequireFromString("1.1")},
		},
	}
}

func TestSummarizer_English(t *testing.T) {
	cats := new(mocks.MockCategoryRepo)
	catID := uuid.New()
	cats.On("GetByID", mock.Anything, int64(7), catID).Return(&domain.Category{ID: catID, Name: "Groceries", Icon: "🛒"}, nil)

	out, err := service.NewSummarizer(cats).Format(context.Background(), sampleExpense(&catID), lexicon.LocaleEN)
	require.NoError(t, err)

	assert.Contains(t, out, "Amount: 12.50 USD")
	assert.Contains(t, out, "Date: Mar 15, 2024")
	assert.Contains(t, out, "Category: 🛒 Groceries")
	assert.Contains(t, out, "Merchant: Corner Shop")
	assert.Contains(t, out, "• Bread ×2: 2.40")
	assert.Contains(t, out, "• Milk: 1.10")
	assert.NotContains(t, out, "Note:")
}

func TestSummarizer_RussianUncategorized(t *testing.T) {
	cats := new(mocks.MockCategoryRepo)
	e := sampleExpense(nil)
	e.Items = nil
	e.Description = "обед"

	out, err := service.NewSummarizer(cats).Format(context.Background(), e, lexicon.LocaleRU)
	require.NoError(t, err)

	assert.Contains(t, out, "Сумма: 12,50 USD")
	assert.Contains(t, out, "Дата: 15.03.2024")
	assert.Contains(t, out, "Категория: Без категории")
	assert.Contains(t, out, "Заметка: обед")
	assert.False(t, strings.Contains(out, "Позиции"))
	cats.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything, mock.Anything)
}

func TestSummarizer_DeletedCategory(t *testing.T) {
	cats := new(mocks.MockCategoryRepo)
	catID := uuid.New()
	cats.On("GetByID", mock.Anything, int64(7), catID).Return(nil, domain.ErrCategoryNotFound)

	out, err := service.NewSummarizer(cats).Format(context.Background(), sampleExpense(&catID), lexicon.LocaleEN)
	require.NoError(t, err)
	assert.Contains(t, out, "Category: Uncategorized")
}

func TestSummarizer_Errors(t *testing.T) {
	cats := new(mocks.MockCategoryRepo)
	catID := uuid.New()
	cats.On("GetByID", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("db down"))
	s := service.NewSummarizer(cats)

	_, err := s.Format(context.Background(), sampleExpense(&catID), lexicon.LocaleEN)
	assert.Error(t, err)

	_, err = s.Format(context.Background(), nil, lexicon.LocaleEN)
	assert.Error(t, err)

	bad := sampleExpense(nil)
	bad.Currency = ""
	_, err = s.Format(context.Background(), bad, lexicon.LocaleEN)
	assert.Error(t, err)
}

func TestFormatAmount(t *testing.T) {
	out, err := service.FormatAmount(lexicon.LocaleEN, 1200, "JPY")
	require.NoError(t, err)
	assert.Equal(t, "1,200 JPY", out)
}
