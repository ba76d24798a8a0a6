package wizard

import (
	"time"

	"go.uber.org/zap"

	"spendbot/internal/acquire"
	"spendbot/internal/domain"
	"spendbot/internal/lexicon"
	"spendbot/internal/port"
)

// Trigger is a received document that starts a session.
type Trigger struct {
	UserID    int64
	ChatID    int64
	Ref       port.FileRef
	SourceTag string
}

// Session is the state of one receipt workflow for one user. It is not safe for
// concurrent use; Manager serializes access per user.
type Session struct {
	UserID    int64
	ChatID    int64
	Locale    lexicon.Locale
	Ref       port.FileRef
	SourceTag string

	File   *acquire.TempFile
	Result *domain.ExtractionResult
	Stage  Stage

	// Pending holds raw replacement values. It is validated again at commit.
	Pending map[domain.FieldKey]string
	Editing domain.FieldKey

	Categories       []domain.Category
	categoriesLoaded bool

	StartedAt    time.Time
	LastActivity time.Time

	closed bool
}

func newSession(t Trigger, loc lexicon.Locale, now time.Time) *Session {
	return &Session{
		UserID:       t.UserID,
		ChatID:       t.ChatID,
		Locale:       loc,
		Ref:          t.Ref,
		SourceTag:    t.SourceTag,
		Stage:        StageAcquiring,
		Pending:      map[domain.FieldKey]string{},
		StartedAt:    now,
		LastActivity: now,
	}
}

// Terminated reports whether the session has ended.
func (s *Session) Terminated() bool {
	return s.Stage == StageTerminated
}

// corrections returns Pending in registry field order.
func (s *Session) corrections(fields []domain.FieldKey) []domain.Correction {
	out := make([]domain.Correction, 0, len(s.Pending))
	for _, key := range fields {
		if raw, ok := s.Pending[key]; ok {
			out = append(out, domain.Correction{Field: key, Value: raw})
		}
	}
	return out
}

// teardown ends the session and releases the temp file. Only the first call has any
// effect.
func (s *Session) teardown(log *zap.Logger) {
	s.Stage = StageTerminated
	s.Editing = ""
	if s.closed {
		return
	}
	s.closed = true
	if err := s.File.Release(); err != nil {
		log.Warn("wizard: temp file cleanup failed", zap.Int64("user_id", s.UserID), zap.Error(err))
	}
}
