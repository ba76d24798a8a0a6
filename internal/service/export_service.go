package service

import (
	"context"
	"fmt"
	"time"

	"spendbot/internal/export"
	"spendbot/internal/port"
)

// ExportService assembles a user's expenses for download.
type ExportService interface {
	Rows(ctx context.Context, userID int64, from, to time.Time) ([]export.Row, error)
}

type exportService struct {
	expenses   port.ExpenseRepository
	categories port.CategoryRepository
	users      port.UserRepository
}

// NewExportService creates a new ExportService.
func NewExportService(expenses port.ExpenseRepository, categories port.CategoryRepository, users port.UserRepository) ExportService {
	return &exportService{expenses: expenses, categories: categories, users: users}
}

func (s *exportService) Rows(ctx context.Context, userID int64, from, to time.Time) ([]export.Row, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	expenses, err := s.expenses.ListByUser(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("listing expenses: %w", err)
	}
	cats, err := s.categories.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return export.BuildRows(expenses, cats), nil
}
