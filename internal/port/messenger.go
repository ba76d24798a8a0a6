package port

import (
	"context"

	"spendbot/internal/domain"
)

// Messenger delivers prompts to a chat.
type Messenger interface {
	Send(ctx context.Context, chatID int64, prompt domain.Prompt) error
}

// FileRef identifies an uploaded document either by its chat-platform handle or by an
// identifier supplied from outside the chat flow.
type FileRef struct {
	PlatformFileID     string
	ExternalDocumentID string
}

// LinkResolver turns a file reference into a URL that can be fetched with a plain GET.
type LinkResolver interface {
	Resolve(ctx context.Context, ref FileRef) (string, error)
}

// ManualEntry hands a user over to the manual expense entry flow.
type ManualEntry interface {
	Begin(ctx context.Context, userID, chatID int64) error
}
