package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"spendbot/internal/wizard"
)

// MockSessionStarter is a mock implementation of handler.SessionStarter.
type MockSessionStarter struct {
	mock.Mock
}

func (m *MockSessionStarter) StartDocument(ctx context.Context, t wizard.Trigger) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}
