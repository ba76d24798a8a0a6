package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"spendbot/internal/domain"
	"spendbot/internal/port"
)

type messenger struct {
	api BotAPI
}

// NewMessenger creates a Messenger that renders options as a one-column reply keyboard.
func NewMessenger(api BotAPI) port.Messenger {
	return &messenger{api: api}
}

func (m *messenger) Send(_ context.Context, chatID int64, prompt domain.Prompt) error {
	msg := tgbotapi.NewMessage(chatID, prompt.Text)
	msg.ReplyMarkup = keyboard(prompt.Options)
	if _, err := m.api.Send(msg); err != nil {
		return fmt.Errorf("telegram: send to chat %d: %w", chatID, err)
	}
	return nil
}

// keyboard lays options out one per row, in order. A prompt without options clears any
// keyboard left over from the previous question.
func keyboard(options []string) interface{} {
	if len(options) == 0 {
		return tgbotapi.NewRemoveKeyboard(true)
	}
	rows := make([][]tgbotapi.KeyboardButton, 0, len(options))
	for _, opt := range options {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(opt)))
	}
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}
