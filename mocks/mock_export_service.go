package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"spendbot/internal/export"
)

// MockExportService is a mock implementation of service.ExportService.
type MockExportService struct {
	mock.Mock
}

func (m *MockExportService) Rows(ctx context.Context, userID int64, from, to time.Time) ([]export.Row, error) {
	args := m.Called(ctx, userID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]export.Row), args.Error(1)
}
