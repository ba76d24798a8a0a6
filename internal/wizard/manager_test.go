package wizard_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"spendbot/internal/domain"
	"spendbot/internal/lexicon"
	"spendbot/internal/wizard"
)

func newManager(h *harness, idle time.Duration) *wizard.Manager {
	return wizard.NewManager(h.engine, wizard.ManagerConfig{IdleTimeout: idle, SweepInterval: 10 * time.Millisecond}, zap.NewNop())
}

func TestManager_HandleTextWithoutSession(t *testing.T) {
	h := newHarness(t, "en")
	m := newManager(h, time.Hour)

	handled, err := m.HandleText(context.Background(), 1, "hello")
	require.NoError(t, err)
	assert.False(t, handled)
	assert.False(t, m.Active(1))
}

func TestManager_RoutesTextToSession(t *testing.T) {
	h := newHarness(t, "en")
	e := h.pendingExpense()
	h.extractReturns(reviewResult(e), nil)
	m := newManager(h, time.Hour)

	require.NoError(t, m.StartDocument(context.Background(), trigger(1)))
	assert.True(t, m.Active(1))

	handled, err := m.HandleText(context.Background(), 1, label(lexicon.TokenCorrect))
	require.NoError(t, err)
	assert.True(t, handled)
	assert.False(t, m.Active(1))
	assert.Equal(t, domain.ExpenseStatusConfirmed, h.stored(e.ID).Status)

	handled, _ = m.HandleText(context.Background(), 1, "again")
	assert.False(t, handled)
}

func TestManager_TerminatedStartIsNotKept(t *testing.T) {
	h := newHarness(t, "en")
	e := h.pendingExpense()
	h.extractReturns(&domain.ExtractionResult{Succeeded: true, Expense: e.Clone()}, nil)
	m := newManager(h, time.Hour)

	require.NoError(t, m.StartDocument(context.Background(), trigger(1)))
	assert.False(t, m.Active(1))
}

func TestManager_NewDocumentSupersedes(t *testing.T) {
	h := newHarness(t, "en")
	e := h.pendingExpense()
	h.extractReturns(reviewResult(e), nil)
	m := newManager(h, time.Hour)

	require.NoError(t, m.StartDocument(context.Background(), trigger(1)))
	first := h.acq.files[0]

	require.NoError(t, m.StartDocument(context.Background(), trigger(1)))
	assert.NoFileExists(t, first.Path)
	assert.FileExists(t, h.acq.files[1].Path)
	assert.True(t, m.Active(1))

	var superseded bool
	for _, p := range h.msgs.prompts {
		if p.Text == en(lexicon.MsgSessionSuperseded) {
			superseded = true
		}
	}
	assert.True(t, superseded)
}

func TestManager_SweepExpiresIdleSessions(t *testing.T) {
	h := newHarness(t, "en")
	e := h.pendingExpense()
	h.extractReturns(reviewResult(e), nil)

	fresh := newManager(h, time.Hour)
	require.NoError(t, fresh.StartDocument(context.Background(), trigger(1)))
	assert.Zero(t, fresh.Sweep(context.Background()))
	assert.True(t, fresh.Active(1))

	idle := newManager(h, 0)
	require.NoError(t, idle.StartDocument(context.Background(), trigger(2)))
	file := h.acq.files[len(h.acq.files)-1]

	assert.Equal(t, 1, idle.Sweep(context.Background()))
	assert.False(t, idle.Active(2))
	assert.NoFileExists(t, file.Path)
	assert.Equal(t, en(lexicon.MsgSessionExpired), h.msgs.last().Text)
	assert.Equal(t, domain.ExpenseStatusPendingReview, h.stored(e.ID).Status)
}

func TestManager_RunShutsDownOnCancel(t *testing.T) {
	h := newHarness(t, "en")
	e := h.pendingExpense()
	h.extractReturns(reviewResult(e), nil)
	m := newManager(h, time.Hour)
	require.NoError(t, m.StartDocument(context.Background(), trigger(1)))
	file := h.acq.files[0]

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("reaper did not stop")
	}
	assert.False(t, m.Active(1))
	assert.NoFileExists(t, file.Path)
}

func TestManager_ConcurrentUsers(t *testing.T) {
	h := newHarness(t, "en")
	h.extractor.On("Extract", mock.Anything, mock.Anything).Return(nil, errors.New("extractor down"))
	m := newManager(h, time.Hour)

	var wg sync.WaitGroup
	for uid := int64(1); uid <= 20; uid++ {
		wg.Add(1)
		go func(uid int64) {
			defer wg.Done()
			_ = m.StartDocument(context.Background(), trigger(uid))
			_, _ = m.HandleText(context.Background(), uid, "maybe")
			_, _ = m.HandleText(context.Background(), uid, "no")
		}(uid)
	}
	wg.Wait()

	for uid := int64(1); uid <= 20; uid++ {
		assert.False(t, m.Active(uid))
	}
	for _, f := range h.acq.files {
		assert.NoFileExists(t, f.Path)
	}
}
