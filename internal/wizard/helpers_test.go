package wizard_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"spendbot/internal/acquire"
	"spendbot/internal/domain"
	"spendbot/internal/lexicon"
	"spendbot/internal/port"
	"spendbot/internal/service"
	"spendbot/internal/validator"
	"spendbot/internal/wizard"
	"spendbot/mocks"
)

type fakeAcquirer struct {
	mu    sync.Mutex
	dir   string
	err   error
	files []*acquire.TempFile
}

func (f *fakeAcquirer) Acquire(_ context.Context, src acquire.Source) (*acquire.TempFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	path := filepath.Join(f.dir, fmt.Sprintf("%d_%d.png", src.UserID, len(f.files)))
	if err := os.WriteFile(path, []byte("\x89PNG"), 0o600); err != nil {
		return nil, err
	}
	tf := &acquire.TempFile{Path: path, ContentType: "image/png", FileType: domain.FileTypePNG, Size: 4}
	f.files = append(f.files, tf)
	return tf, nil
}

type memExpenses struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]*domain.Expense
	failErr error
	applied int
}

func newMemExpenses() *memExpenses {
	return &memExpenses{byID: map[uuid.UUID]*domain.Expense{}}
}

func (r *memExpenses) Create(_ context.Context, e *domain.Expense) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[e.ID] = e.Clone()
	return nil
}

func (r *memExpenses) GetByID(_ context.Context, _ int64, id uuid.UUID) (*domain.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrExpenseNotFound
	}
	return e.Clone(), nil
}

func (r *memExpenses) ListByUser(_ context.Context, userID int64, from, to time.Time) ([]domain.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Expense
	for _, e := range r.byID {
		if e.UserID == userID && !e.Date.Before(from) && !e.Date.After(to) {
			out = append(out, *e.Clone())
		}
	}
	return out, nil
}

func (r *memExpenses) ApplyCorrections(_ context.Context, _ int64, id uuid.UUID, set domain.CorrectionSet, status domain.ExpenseStatus) (*domain.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return nil, r.failErr
	}
	e, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrExpenseNotFound
	}
	updated := e.Clone()
	set.ApplyTo(updated)
	updated.Status = status
	r.byID[id] = updated
	r.applied++
	return updated.Clone(), nil
}

type memCategories struct {
	mu        sync.Mutex
	cats      []domain.Category
	listCalls int
	getErr    error
}

func (r *memCategories) ListByUser(_ context.Context, _ int64) ([]domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	return append([]domain.Category(nil), r.cats...), nil
}

func (r *memCategories) GetByID(_ context.Context, _ int64, id uuid.UUID) (*domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	for _, c := range r.cats {
		if c.ID == id {
			c := c
			return &c, nil
		}
	}
	return nil, domain.ErrCategoryNotFound
}

type fakeUsers struct {
	language string
}

func (u fakeUsers) Upsert(context.Context, *domain.User) error { return nil }

func (u fakeUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	return &domain.User{ID: id, Language: u.language, Currency: "USD"}, nil
}

type recorder struct {
	mu      sync.Mutex
	prompts []domain.Prompt
}

func (r *recorder) Send(_ context.Context, _ int64, p domain.Prompt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prompts = append(r.prompts, p)
	return nil
}

func (r *recorder) last() domain.Prompt {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.prompts) == 0 {
		return domain.Prompt{}
	}
	return r.prompts[len(r.prompts)-1]
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.prompts)
}

type harness struct {
	engine    *wizard.Engine
	acq       *fakeAcquirer
	extractor *mocks.MockExtractor
	expenses  *memExpenses
	cats      *memCategories
	msgs      *recorder
	manual    *mocks.MockManualEntry
	registry  *validator.Registry
}

var (
	groceries = domain.Category{ID: uuid.New(), UserID: 1, Name: "Groceries", Icon: "🛒"}
	transport = domain.Category{ID: uuid.New(), UserID: 1, Name: "Transport"}
)

func newHarness(t *testing.T, language string) *harness {
	t.Helper()
	h := &harness{
		acq:       &fakeAcquirer{dir: t.TempDir()},
		extractor: new(mocks.MockExtractor),
		expenses:  newMemExpenses(),
		cats:      &memCategories{cats: []domain.Category{groceries, transport}},
		msgs:      &recorder{},
		manual:    new(mocks.MockManualEntry),
		registry:  validator.NewDefaultRegistry(),
	}
	h.engine = wizard.NewEngine(wizard.Deps{
		Acquirer:   h.acq,
		Extractor:  h.extractor,
		Expenses:   service.NewExpenseService(h.expenses, nil, h.registry, zap.NewNop()),
		Summarizer: service.NewSummarizer(h.cats),
		Categories: h.cats,
		Users:      fakeUsers{language: language},
		Messenger:  h.msgs,
		Manual:     h.manual,
		Registry:   h.registry,
	}, wizard.Config{ExtractionTimeout: time.Second, CommitTimeout: time.Second}, zap.NewNop())
	return h
}

// pendingExpense stores a fresh extracted expense the way the extractor would.
func (h *harness) pendingExpense() *domain.Expense {
	e := &domain.Expense{
		ID:       uuid.New(),
		UserID:   1,
		Amount:   decimal.RequireFromString("12.50"),
		Currency: "USD",
		Date:     time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		Merchant: "Corner Shop",
		Status:   domain.ExpenseStatusPendingReview,
		Source:   domain.SourceReceiptPhoto,
	}
	_ = h.expenses.Create(context.Background(), e)
	return e
}

func (h *harness) extractReturns(res *domain.ExtractionResult, err error) {
	h.extractor.On("Extract", mock.Anything, mock.Anything).Return(res, err)
}

func (h *harness) stored(id uuid.UUID) *domain.Expense {
	e, _ := h.expenses.GetByID(context.Background(), 1, id)
	return e
}

func trigger(userID int64) wizard.Trigger {
	return wizard.Trigger{
		UserID:    userID,
		ChatID:    userID * 100,
		Ref:       port.FileRef{PlatformFileID: "file"},
		SourceTag: domain.SourceReceiptPhoto,
	}
}

func label(tok lexicon.Token) string {
	return lexicon.Label(lexicon.LocaleEN, tok)
}

func en(key string, args ...interface{}) string {
	return lexicon.LocaleEN.Sprintf(key, args...)
}
