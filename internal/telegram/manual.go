package telegram

import (
	"context"

	"spendbot/internal/domain"
	"spendbot/internal/lexicon"
	"spendbot/internal/port"
)

// ManualEntry starts the manual expense flow by asking for a free-form expense line.
type ManualEntry struct {
	messenger port.Messenger
	users     port.UserRepository
}

// NewManualEntry creates a ManualEntry.
func NewManualEntry(messenger port.Messenger, users port.UserRepository) *ManualEntry {
	return &ManualEntry{messenger: messenger, users: users}
}

func (m *ManualEntry) Begin(ctx context.Context, userID, chatID int64) error {
	loc := lexicon.DefaultLocale
	if u, err := m.users.GetByID(ctx, userID); err == nil {
		loc = lexicon.Match(u.Language)
	}
	return m.messenger.Send(ctx, chatID, domain.Prompt{Text: loc.Sprintf(lexicon.MsgManualEntryPrompt)})
}
