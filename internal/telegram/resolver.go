package telegram

import (
	"context"
	"errors"
	"fmt"

	"spendbot/internal/port"
)

// FileResolver turns Telegram file ids into download URLs.
type FileResolver struct {
	api BotAPI
}

// NewFileResolver creates a FileResolver.
func NewFileResolver(api BotAPI) *FileResolver {
	return &FileResolver{api: api}
}

// Resolve calls getFile and returns the direct link, which embeds the bot token and
// must not be logged.
func (r *FileResolver) Resolve(_ context.Context, ref port.FileRef) (string, error) {
	if ref.PlatformFileID == "" {
		return "", errors.New("telegram: file reference has no file id")
	}
	link, err := r.api.GetFileDirectURL(ref.PlatformFileID)
	if err != nil {
		return "", fmt.Errorf("telegram: resolving file: %w", err)
	}
	return link, nil
}
