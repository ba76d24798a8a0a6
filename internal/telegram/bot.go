package telegram

import (
	"context"
	"errors"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"spendbot/internal/domain"
	"spendbot/internal/lexicon"
	"spendbot/internal/port"
	"spendbot/internal/wizard"
)

// SessionRouter is the workflow entry point the bot dispatches to.
type SessionRouter interface {
	StartDocument(ctx context.Context, t wizard.Trigger) error
	HandleText(ctx context.Context, userID int64, text string) (bool, error)
}

// queueSize bounds the messages buffered for one user.
const queueSize = 32

// Bot long-polls Telegram. Each user's messages go through a FIFO drained by a single
// worker, so replies reach the session in the order they were sent while other chats
// proceed in parallel.
type Bot struct {
	api         BotAPI
	router      SessionRouter
	users       port.UserRepository
	messenger   port.Messenger
	pollTimeout int
	log         *zap.Logger

	mu     sync.Mutex
	queues map[int64]chan *tgbotapi.Message
	wg     sync.WaitGroup
}

// NewBot creates a Bot.
func NewBot(api BotAPI, router SessionRouter, users port.UserRepository, messenger port.Messenger, pollTimeout int, log *zap.Logger) *Bot {
	return &Bot{
		api:         api,
		router:      router,
		users:       users,
		messenger:   messenger,
		pollTimeout: pollTimeout,
		log:         log,
		queues:      map[int64]chan *tgbotapi.Message{},
	}
}

// Run consumes updates until ctx is cancelled, then waits for in-flight handlers.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.pollTimeout
	updates := b.api.GetUpdatesChan(u)

	b.log.Info("telegram: polling for updates")
	defer b.wg.Wait()
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.log.Info("telegram: stopped polling")
			return
		case upd, ok := <-updates:
			if !ok {
				return
			}
			if upd.Message == nil || upd.Message.From == nil {
				continue
			}
			b.enqueue(ctx, upd.Message)
		}
	}
}

// enqueue appends msg to its sender's queue, starting a worker if none is running.
// The send happens under mu so a worker cannot retire between the lookup and the send.
func (b *Bot) enqueue(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID

	b.mu.Lock()
	defer b.mu.Unlock()
	q, ok := b.queues[userID]
	if !ok {
		q = make(chan *tgbotapi.Message, queueSize)
		b.queues[userID] = q
		b.wg.Add(1)
		go b.drain(ctx, userID, q)
	}
	q <- msg
}

// drain handles one user's messages in arrival order and exits once the queue is empty.
func (b *Bot) drain(ctx context.Context, userID int64, q chan *tgbotapi.Message) {
	defer b.wg.Done()
	for {
		select {
		case msg := <-q:
			b.HandleMessage(ctx, msg)
		default:
			b.mu.Lock()
			if len(q) > 0 {
				b.mu.Unlock()
				continue
			}
			delete(b.queues, userID)
			b.mu.Unlock()
			return
		}
	}
}

// HandleMessage routes a single message: documents start a session, everything else
// goes to the user's live session if there is one.
func (b *Bot) HandleMessage(ctx context.Context, msg *tgbotapi.Message) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("telegram: handler panic", zap.Any("panic", r), zap.Int64("chat_id", msg.Chat.ID))
		}
	}()

	user := b.remember(ctx, msg)

	if trig, ok := documentTrigger(msg); ok {
		if err := b.router.StartDocument(ctx, trig); err != nil {
			b.log.Error("telegram: starting receipt session failed", zap.Int64("user_id", trig.UserID), zap.Error(err))
		}
		return
	}

	handled, err := b.router.HandleText(ctx, msg.From.ID, msg.Text)
	if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		b.log.Error("telegram: handling reply failed", zap.Int64("user_id", msg.From.ID), zap.Error(err))
	}
	if handled {
		return
	}

	loc := lexicon.Match(user.Language)
	if err := b.messenger.Send(ctx, msg.Chat.ID, domain.Prompt{Text: loc.Sprintf(lexicon.MsgNoDocument)}); err != nil {
		b.log.Warn("telegram: sending hint failed", zap.Int64("chat_id", msg.Chat.ID), zap.Error(err))
	}
}

// remember upserts the sender so later lookups know their chat and language.
func (b *Bot) remember(ctx context.Context, msg *tgbotapi.Message) *domain.User {
	user := &domain.User{
		ID:       msg.From.ID,
		ChatID:   msg.Chat.ID,
		Username: msg.From.UserName,
		Language: msg.From.LanguageCode,
	}
	if err := b.users.Upsert(ctx, user); err != nil {
		b.log.Warn("telegram: user upsert failed", zap.Int64("user_id", user.ID), zap.Error(err))
	}
	return user
}

// documentTrigger extracts the attachment of a photo or document message. For photos
// Telegram sends several sizes, smallest first; the largest reads best.
func documentTrigger(msg *tgbotapi.Message) (wizard.Trigger, bool) {
	t := wizard.Trigger{UserID: msg.From.ID, ChatID: msg.Chat.ID}
	switch {
	case len(msg.Photo) > 0:
		t.Ref.PlatformFileID = msg.Photo[len(msg.Photo)-1].FileID
		t.SourceTag = domain.SourceReceiptPhoto
	case msg.Document != nil:
		t.Ref.PlatformFileID = msg.Document.FileID
		t.SourceTag = domain.SourceReceiptDocument
	default:
		return wizard.Trigger{}, false
	}
	return t, true
}
