package wizard

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ManagerConfig holds session lifetime settings.
type ManagerConfig struct {
	IdleTimeout   time.Duration
	SweepInterval time.Duration
}

type entry struct {
	mu      sync.Mutex
	session *Session
	// dead is set when the entry was dropped from the map; holders must look it up again.
	dead bool
}

// Manager keeps at most one live session per user. Messages for the same user are
// processed one at a time; different users proceed in parallel.
type Manager struct {
	engine *Engine
	cfg    ManagerConfig
	log    *zap.Logger
	now    func() time.Time

	mu      sync.Mutex
	entries map[int64]*entry
}

// NewManager creates a Manager.
func NewManager(engine *Engine, cfg ManagerConfig, log *zap.Logger) *Manager {
	return &Manager{
		engine:  engine,
		cfg:     cfg,
		log:     log,
		now:     time.Now,
		entries: map[int64]*entry{},
	}
}

// lock returns the user's entry with its mutex held.
func (m *Manager) lock(userID int64) *entry {
	for {
		m.mu.Lock()
		en, ok := m.entries[userID]
		if !ok {
			en = &entry{}
			m.entries[userID] = en
		}
		m.mu.Unlock()

		en.mu.Lock()
		if !en.dead {
			return en
		}
		en.mu.Unlock()
	}
}

// StartDocument begins a new session for the trigger, ending any session the user
// still has open.
func (m *Manager) StartDocument(ctx context.Context, t Trigger) error {
	en := m.lock(t.UserID)
	defer en.mu.Unlock()

	if en.session != nil && !en.session.Terminated() {
		m.log.Info("wizard: superseding active session",
			zap.Int64("user_id", t.UserID),
			zap.Stringer("stage", en.session.Stage))
		m.engine.Supersede(ctx, en.session)
	}
	en.session = nil

	s, err := m.engine.Start(ctx, t)
	if s != nil && !s.Terminated() {
		en.session = s
	}
	return err
}

// HandleText routes a message to the user's live session. It reports false when the
// user has none, so the caller can treat the message as something else.
func (m *Manager) HandleText(ctx context.Context, userID int64, text string) (bool, error) {
	m.mu.Lock()
	_, ok := m.entries[userID]
	m.mu.Unlock()
	if !ok {
		return false, nil
	}

	en := m.lock(userID)
	defer en.mu.Unlock()

	s := en.session
	if s == nil || s.Terminated() {
		en.session = nil
		return false, nil
	}

	err := m.engine.Handle(ctx, s, text)
	if s.Terminated() {
		en.session = nil
	}
	return true, err
}

// Active reports whether the user has a live session.
func (m *Manager) Active(userID int64) bool {
	m.mu.Lock()
	en, ok := m.entries[userID]
	m.mu.Unlock()
	if !ok {
		return false
	}
	en.mu.Lock()
	defer en.mu.Unlock()
	return en.session != nil && !en.session.Terminated()
}

// Sweep expires sessions idle for longer than the idle timeout and returns how many
// were expired. Entries busy with a transition are left for a later sweep.
func (m *Manager) Sweep(ctx context.Context) int {
	expired := 0
	now := m.now()
	for _, en := range m.snapshot() {
		if !en.mu.TryLock() {
			continue
		}
		if s := en.session; s != nil && now.Sub(s.LastActivity) >= m.cfg.IdleTimeout {
			m.log.Info("wizard: expiring idle session",
				zap.Int64("user_id", s.UserID),
				zap.Stringer("stage", s.Stage),
				zap.Duration("idle", now.Sub(s.LastActivity)))
			m.engine.Expire(ctx, s)
			en.session = nil
			expired++
		}
		en.mu.Unlock()
	}
	m.compact()
	return expired
}

// Shutdown terminates every live session without notifying users.
func (m *Manager) Shutdown() {
	for _, en := range m.snapshot() {
		en.mu.Lock()
		if en.session != nil {
			m.engine.Abort(en.session)
			en.session = nil
		}
		en.mu.Unlock()
	}
	m.compact()
}

// Run sweeps on every tick until ctx is canceled, then shuts down.
func (m *Manager) Run(ctx context.Context) {
	interval := m.cfg.SweepInterval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.log.Info("wizard: session reaper started",
		zap.Duration("idle_timeout", m.cfg.IdleTimeout),
		zap.Duration("sweep_interval", interval))

	for {
		select {
		case <-ctx.Done():
			m.Shutdown()
			m.log.Info("wizard: session reaper stopped")
			return
		case <-ticker.C:
			if n := m.Sweep(ctx); n > 0 {
				m.log.Info("wizard: idle sessions expired", zap.Int("count", n))
			}
		}
	}
}

func (m *Manager) snapshot() []*entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*entry, 0, len(m.entries))
	for _, en := range m.entries {
		out = append(out, en)
	}
	return out
}

// compact drops entries without a session. Busy entries are skipped.
func (m *Manager) compact() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, en := range m.entries {
		if !en.mu.TryLock() {
			continue
		}
		if en.session == nil {
			en.dead = true
			delete(m.entries, id)
		}
		en.mu.Unlock()
	}
}
