package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"spendbot/internal/domain"
	"spendbot/internal/port"
)

// MockMessenger is a mock implementation of port.Messenger.
type MockMessenger struct {
	mock.Mock
}

func (m *MockMessenger) Send(ctx context.Context, chatID int64, prompt domain.Prompt) error {
	args := m.Called(ctx, chatID, prompt)
	return args.Error(0)
}

// MockLinkResolver is a mock implementation of port.LinkResolver.
type MockLinkResolver struct {
	mock.Mock
}

func (m *MockLinkResolver) Resolve(ctx context.Context, ref port.FileRef) (string, error) {
	args := m.Called(ctx, ref)
	return args.String(0), args.Error(1)
}

// MockManualEntry is a mock implementation of port.ManualEntry.
type MockManualEntry struct {
	mock.Mock
}

func (m *MockManualEntry) Begin(ctx context.Context, userID, chatID int64) error {
	args := m.Called(ctx, userID, chatID)
	return args.Error(0)
}
