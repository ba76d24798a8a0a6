// Package wizard drives the receipt review dialogue: acquire the document, extract the
// expense, let the user confirm or correct it, then commit.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"spendbot/internal/acquire"
	"spendbot/internal/domain"
	"spendbot/internal/lexicon"
	"spendbot/internal/port"
	"spendbot/internal/service"
	"spendbot/internal/validator"
)

// ErrInternal is returned when a transition panicked. The session is terminated.
var ErrInternal = errors.New("internal error in session transition")

// DocumentAcquirer fetches the document a trigger points at.
type DocumentAcquirer interface {
	Acquire(ctx context.Context, src acquire.Source) (*acquire.TempFile, error)
}

// Config bounds the blocking calls made by the engine.
type Config struct {
	ExtractionTimeout time.Duration
	CommitTimeout     time.Duration
}

// Deps are the collaborators of an Engine.
type Deps struct {
	Acquirer   DocumentAcquirer
	Extractor  port.Extractor
	Expenses   service.ExpenseService
	Summarizer service.Summarizer
	Categories port.CategoryRepository
	Users      port.UserRepository
	Messenger  port.Messenger
	Manual     port.ManualEntry
	Registry   *validator.Registry
}

// Engine implements the session transitions. It holds no per-session state.
type Engine struct {
	Deps
	cfg Config
	log *zap.Logger
	now func() time.Time
}

// NewEngine creates an Engine.
func NewEngine(deps Deps, cfg Config, log *zap.Logger) *Engine {
	if cfg.ExtractionTimeout <= 0 {
		cfg.ExtractionTimeout = 2 * time.Minute
	}
	if cfg.CommitTimeout <= 0 {
		cfg.CommitTimeout = 15 * time.Second
	}
	return &Engine{Deps: deps, cfg: cfg, log: log, now: time.Now}
}

// Start runs acquisition and extraction for a new document. The returned session is
// either waiting for user input or already terminated.
func (e *Engine) Start(ctx context.Context, t Trigger) (s *Session, err error) {
	s = newSession(t, e.locale(ctx, t.UserID), e.now())
	defer e.guard(ctx, s, &err)

	e.log.Info("wizard: session started",
		zap.Int64("user_id", s.UserID),
		zap.String("source", s.SourceTag))

	e.say(ctx, s, s.Locale.Sprintf(lexicon.MsgProcessing))

	file, acqErr := e.Acquirer.Acquire(ctx, acquire.Source{UserID: s.UserID, Ref: s.Ref})
	if acqErr != nil {
		e.log.Warn("wizard: acquisition failed", zap.Int64("user_id", s.UserID), zap.Error(acqErr))
		e.say(ctx, s, acquisitionMessage(s.Locale, acqErr))
		e.terminate(s)
		return s, nil
	}
	s.File = file
	s.Stage = StageExtracting

	e.extract(ctx, s)
	return s, nil
}

// Handle feeds one user message into a waiting session.
func (e *Engine) Handle(ctx context.Context, s *Session, text string) (err error) {
	if !s.Stage.awaitsInput() {
		return domain.ErrSessionNotFound
	}
	defer e.guard(ctx, s, &err)

	s.LastActivity = e.now()
	tok := lexicon.Canonicalize(s.Locale, text)

	switch s.Stage {
	case StageOfferManualFallback:
		e.onFallbackAnswer(ctx, s, tok)
	case StageAwaitReviewDecision:
		e.onReviewDecision(ctx, s, tok)
	case StageAwaitFieldSelection:
		e.onFieldSelection(ctx, s, tok)
	case StageAwaitFieldValue:
		e.onFieldValue(ctx, s, text)
	}
	return nil
}

// Expire ends an abandoned session and tells the user.
func (e *Engine) Expire(ctx context.Context, s *Session) {
	e.end(ctx, s, lexicon.MsgSessionExpired)
}

// Supersede ends a session because a newer document arrived.
func (e *Engine) Supersede(ctx context.Context, s *Session) {
	e.end(ctx, s, lexicon.MsgSessionSuperseded)
}

// Abort ends a session without messaging the user.
func (e *Engine) Abort(s *Session) {
	e.terminate(s)
}

func (e *Engine) end(ctx context.Context, s *Session, msg string) {
	if s.Terminated() {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("wizard: panic while ending session", zap.Any("panic", r))
		}
		e.terminate(s)
	}()
	e.say(ctx, s, s.Locale.Sprintf(msg))
}

func (e *Engine) extract(ctx context.Context, s *Session) {
	data, err := s.File.ReadAll()
	if err != nil {
		e.log.Warn("wizard: reading acquired file failed", zap.Int64("user_id", s.UserID), zap.Error(err))
		e.say(ctx, s, s.Locale.Sprintf(lexicon.MsgDownloadFailed))
		e.terminate(s)
		return
	}

	ectx, cancel := context.WithTimeout(ctx, e.cfg.ExtractionTimeout)
	defer cancel()

	res, err := e.Extractor.Extract(ectx, port.ExtractInput{
		UserID:      s.UserID,
		Bytes:       data,
		ContentType: s.File.ContentType,
		SourceTag:   s.SourceTag,
	})
	if err != nil || res == nil {
		e.log.Warn("wizard: extraction error", zap.Int64("user_id", s.UserID), zap.Error(err))
		res = &domain.ExtractionResult{}
	}
	if res.Succeeded && res.Expense == nil {
		res = &domain.ExtractionResult{FailureReason: res.FailureReason}
	}
	s.Result = res

	switch {
	case !res.Succeeded:
		e.offerFallback(ctx, s)
	case !res.NeedsReview:
		e.commit(ctx, s)
	default:
		e.askReview(ctx, s)
	}
}

func (e *Engine) offerFallback(ctx context.Context, s *Session) {
	reason := s.Result.FailureReason
	if reason == "" {
		reason = s.Locale.Sprintf(lexicon.MsgExtractionGeneric)
	}
	s.Stage = StageOfferManualFallback
	e.ask(ctx, s, s.Locale.Sprintf(lexicon.MsgExtractionFailed, reason), lexicon.TokenYes, lexicon.TokenNo)
}

func (e *Engine) askReview(ctx context.Context, s *Session) {
	var b strings.Builder
	b.WriteString(s.Locale.Sprintf(lexicon.MsgReviewIntro, e.summary(ctx, s, s.Result.Expense)))
	if hint := e.reviewHint(s); hint != "" {
		b.WriteString("\n\n")
		b.WriteString(s.Locale.Sprintf(lexicon.MsgReviewHint, hint))
	}
	b.WriteString("\n\n")
	b.WriteString(s.Locale.Sprintf(lexicon.MsgReviewQuestion))

	s.Stage = StageAwaitReviewDecision
	e.ask(ctx, s, b.String(), lexicon.TokenCorrect, lexicon.TokenNeedsCorrection)
}

// reviewHint prefers the extractor's own text and otherwise names the uncertain fields.
func (e *Engine) reviewHint(s *Session) string {
	if s.Result.ReviewHint != "" {
		return s.Result.ReviewHint
	}
	if len(s.Result.UncertainFields) == 0 {
		return ""
	}
	names := make([]string, 0, len(s.Result.UncertainFields))
	for _, key := range s.Result.UncertainFields {
		names = append(names, lexicon.FieldLabel(s.Locale, key))
	}
	return s.Locale.Sprintf(lexicon.MsgHintUncertain, strings.Join(names, ", "))
}

func (e *Engine) onFallbackAnswer(ctx context.Context, s *Session, tok lexicon.Token) {
	switch tok {
	case lexicon.TokenYes:
		e.say(ctx, s, s.Locale.Sprintf(lexicon.MsgManualEntry))
		e.terminate(s)
		if err := e.Manual.Begin(ctx, s.UserID, s.ChatID); err != nil {
			e.log.Warn("wizard: manual entry handoff failed", zap.Int64("user_id", s.UserID), zap.Error(err))
		}
	case lexicon.TokenNo, lexicon.TokenCancel:
		e.say(ctx, s, s.Locale.Sprintf(lexicon.MsgCancelled))
		e.terminate(s)
	default:
		e.ask(ctx, s, s.Locale.Sprintf(lexicon.MsgChooseOption), lexicon.TokenYes, lexicon.TokenNo)
	}
}

func (e *Engine) onReviewDecision(ctx context.Context, s *Session, tok lexicon.Token) {
	switch tok {
	case lexicon.TokenCorrect:
		e.commit(ctx, s)
	case lexicon.TokenNeedsCorrection:
		e.showFieldMenu(ctx, s, s.Locale.Sprintf(lexicon.MsgChooseField))
	default:
		e.ask(ctx, s, s.Locale.Sprintf(lexicon.MsgChooseOption), lexicon.TokenCorrect, lexicon.TokenNeedsCorrection)
	}
}

func (e *Engine) onFieldSelection(ctx context.Context, s *Session, tok lexicon.Token) {
	if tok == lexicon.TokenDone {
		e.commit(ctx, s)
		return
	}
	key, ok := tok.Field()
	if !ok || e.Registry.Get(key) == nil {
		e.showFieldMenu(ctx, s, s.Locale.Sprintf(lexicon.MsgChooseField))
		return
	}
	e.beginFieldEdit(ctx, s, key)
}

func (e *Engine) beginFieldEdit(ctx context.Context, s *Session, key domain.FieldKey) {
	if key == domain.FieldCategory {
		cats := e.categories(ctx, s)
		if len(cats) == 0 {
			e.showFieldMenu(ctx, s, s.Locale.Sprintf(lexicon.MsgNoCategories))
			return
		}
		s.Editing = key
		s.Stage = StageAwaitFieldValue
		e.send(ctx, s, domain.Prompt{
			Text:    s.Locale.Sprintf(lexicon.MsgChooseCategory),
			Options: append(categoryKeys(cats), lexicon.Label(s.Locale, lexicon.TokenCancel)),
		})
		return
	}

	s.Editing = key
	s.Stage = StageAwaitFieldValue
	e.ask(ctx, s, s.Locale.Sprintf(valuePrompts[key]), lexicon.TokenCancel)
}

var valuePrompts = map[domain.FieldKey]string{
	domain.FieldTotal:    lexicon.MsgEnterTotal,
	domain.FieldDate:     lexicon.MsgEnterDate,
	domain.FieldMerchant: lexicon.MsgEnterMerchant,
}

// onFieldValue treats only the Back button as a command; any typed text is a candidate
// value for the field being edited.
func (e *Engine) onFieldValue(ctx context.Context, s *Session, raw string) {
	key := s.Editing
	if lexicon.IsCaption(raw, lexicon.TokenCancel) {
		s.Editing = ""
		e.showFieldMenu(ctx, s, s.Locale.Sprintf(lexicon.MsgChooseField))
		return
	}

	v, err := e.Registry.Validate(key, raw, s.Categories)
	if err != nil {
		msg := validationMessage(s.Locale, err)
		if key == domain.FieldCategory {
			e.send(ctx, s, domain.Prompt{
				Text:    msg,
				Options: append(categoryKeys(s.Categories), lexicon.Label(s.Locale, lexicon.TokenCancel)),
			})
			return
		}
		e.ask(ctx, s, msg, lexicon.TokenCancel)
		return
	}

	s.Pending[key] = raw
	s.Editing = ""
	confirm := s.Locale.Sprintf(lexicon.MsgFieldSaved, lexicon.FieldLabel(s.Locale, key), displayValue(s.Locale, v))
	e.showFieldMenu(ctx, s, confirm+"\n\n"+s.Locale.Sprintf(lexicon.MsgChooseField))
}

func (e *Engine) showFieldMenu(ctx context.Context, s *Session, text string) {
	s.Stage = StageAwaitFieldSelection
	fields := e.Registry.Fields()
	toks := make([]lexicon.Token, 0, len(fields)+1)
	for _, key := range fields {
		toks = append(toks, lexicon.FieldToken(key))
	}
	toks = append(toks, lexicon.TokenDone)
	e.ask(ctx, s, text, toks...)
}

// commit applies Pending to the extracted expense and ends the session either way.
func (e *Engine) commit(ctx context.Context, s *Session) {
	defer e.terminate(s)

	cctx, cancel := context.WithTimeout(ctx, e.cfg.CommitTimeout)
	defer cancel()

	original := s.Result.Expense
	saved, err := e.Expenses.ApplyCorrections(cctx, s.UserID, original.ID, s.corrections(e.Registry.Fields()), s.Categories)
	if err != nil {
		e.log.Error("wizard: commit failed",
			zap.Int64("user_id", s.UserID),
			zap.String("expense_id", original.ID.String()),
			zap.Error(err))
		e.say(ctx, s, s.Locale.Sprintf(lexicon.MsgCommitFailed, err.Error(), e.summary(ctx, s, original)))
		return
	}

	text, err := e.Summarizer.Format(ctx, saved, s.Locale)
	if err != nil {
		e.log.Warn("wizard: summary failed", zap.Int64("user_id", s.UserID), zap.Error(err))
		e.say(ctx, s, s.Locale.Sprintf(lexicon.MsgSavedFallback))
		return
	}
	e.say(ctx, s, s.Locale.Sprintf(lexicon.MsgSaved, text))
}

// summary renders an expense for display, degrading to a bare amount line.
func (e *Engine) summary(ctx context.Context, s *Session, expense *domain.Expense) string {
	text, err := e.Summarizer.Format(ctx, expense, s.Locale)
	if err == nil {
		return text
	}
	e.log.Warn("wizard: summary failed", zap.Int64("user_id", s.UserID), zap.Error(err))
	if expense == nil {
		return s.Locale.Sprintf(lexicon.MsgNotRecognized)
	}
	return s.Locale.Sprintf(lexicon.MsgSummaryAmount, strings.TrimSpace(expense.Amount.String()+" "+expense.Currency))
}

// categories loads the user's categories once per session.
func (e *Engine) categories(ctx context.Context, s *Session) []domain.Category {
	if s.categoriesLoaded {
		return s.Categories
	}
	cats, err := e.Categories.ListByUser(ctx, s.UserID)
	if err != nil {
		e.log.Warn("wizard: listing categories failed", zap.Int64("user_id", s.UserID), zap.Error(err))
		return nil
	}
	s.Categories = cats
	s.categoriesLoaded = true
	return cats
}

func (e *Engine) locale(ctx context.Context, userID int64) lexicon.Locale {
	if e.Users == nil {
		return lexicon.DefaultLocale
	}
	u, err := e.Users.GetByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			e.log.Warn("wizard: user lookup failed", zap.Int64("user_id", userID), zap.Error(err))
		}
		return lexicon.DefaultLocale
	}
	return lexicon.Match(u.Language)
}

// guard turns a panic inside a transition into an apology and a terminated session.
func (e *Engine) guard(ctx context.Context, s *Session, errp *error) {
	r := recover()
	if r == nil {
		return
	}
	e.log.Error("wizard: panic in transition",
		zap.Int64("user_id", s.UserID),
		zap.Stringer("stage", s.Stage),
		zap.Any("panic", r),
		zap.Stack("stack"))
	e.terminate(s)
	func() {
		defer func() { _ = recover() }()
		e.say(ctx, s, s.Locale.Sprintf(lexicon.MsgInternalError))
	}()
	*errp = fmt.Errorf("%w: %v", ErrInternal, r)
}

func (e *Engine) terminate(s *Session) {
	if !s.closed {
		e.log.Info("wizard: session terminated",
			zap.Int64("user_id", s.UserID),
			zap.Stringer("from_stage", s.Stage),
			zap.Duration("age", e.now().Sub(s.StartedAt)))
	}
	s.teardown(e.log)
}

func (e *Engine) say(ctx context.Context, s *Session, text string) {
	e.send(ctx, s, domain.Prompt{Text: text})
}

func (e *Engine) ask(ctx context.Context, s *Session, text string, options ...lexicon.Token) {
	e.send(ctx, s, domain.Prompt{Text: text, Options: lexicon.Labels(s.Locale, options...)})
}

func (e *Engine) send(ctx context.Context, s *Session, p domain.Prompt) {
	if err := e.Messenger.Send(ctx, s.ChatID, p); err != nil {
		e.log.Warn("wizard: sending prompt failed", zap.Int64("chat_id", s.ChatID), zap.Error(err))
	}
}

func categoryKeys(cats []domain.Category) []string {
	keys := make([]string, 0, len(cats)+1)
	for _, c := range cats {
		keys = append(keys, c.PresentationKey())
	}
	return keys
}

func acquisitionMessage(loc lexicon.Locale, err error) string {
	switch {
	case errors.Is(err, domain.ErrNoDocument):
		return loc.Sprintf(lexicon.MsgNoDocument)
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return loc.Sprintf(lexicon.MsgUnsupportedFile)
	case errors.Is(err, domain.ErrFileTooLarge):
		return loc.Sprintf(lexicon.MsgFileTooLarge)
	default:
		return loc.Sprintf(lexicon.MsgDownloadFailed)
	}
}

func validationMessage(loc lexicon.Locale, err error) string {
	switch {
	case errors.Is(err, validator.ErrInvalidAmount):
		return loc.Sprintf(lexicon.MsgInvalidAmount)
	case errors.Is(err, validator.ErrMalformedDateFormat):
		return loc.Sprintf(lexicon.MsgMalformedDate)
	case errors.Is(err, validator.ErrInvalidCalendarDate):
		return loc.Sprintf(lexicon.MsgInvalidDate)
	case errors.Is(err, validator.ErrEmptyMerchant):
		return loc.Sprintf(lexicon.MsgEmptyMerchant)
	case errors.Is(err, validator.ErrUnknownCategory):
		return loc.Sprintf(lexicon.MsgUnknownCategory)
	default:
		return loc.Sprintf(lexicon.MsgChooseField)
	}
}

func displayValue(loc lexicon.Locale, v validator.Value) string {
	switch v.Field {
	case domain.FieldTotal:
		return v.Amount.String()
	case domain.FieldDate:
		return v.Date.Format(loc.DateLayout())
	default:
		return v.Text
	}
}
