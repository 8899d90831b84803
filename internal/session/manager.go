package session

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/parlorchat/parlor/internal/log"
)

// Manager owns the current session: its identifier and the in-memory
// message sequence. All durable reads and writes are delegated to the
// Store.
//
// Lifecycle: Uninitialized → Restoring → Active. Activation either restores
// the last persisted session or creates a fresh one. StartNew may be called
// any time while Active and re-enters Active under a new identity.
//
// Invariant: the in-memory sequence for the current session is always a
// prefix-consistent superset of what is persisted for it: callers append
// in memory first (optimistically) and commit the finalized batch to the
// Store afterwards.
type Manager struct {
	store  *Store
	logger log.Logger
	now    func() time.Time

	mu       sync.Mutex
	state    State
	id       string
	messages []Message
	lastID   int64 // monotonic guard for same-millisecond session ids
}

// ManagerOption customizes a Manager.
type ManagerOption func(*Manager)

// WithClock overrides the time source used for session id generation.
// Test use.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a Manager in the Uninitialized state.
func NewManager(store *Store, logger log.Logger, opts ...ManagerOption) *Manager {
	if logger == nil {
		logger = log.NewNop()
	}
	m := &Manager{
		store:  store,
		logger: logger,
		now:    time.Now,
		state:  StateUninitialized,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Current returns the current session id. ok is false unless Active.
func (m *Manager) Current() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.id, m.state == StateActive
}

// Messages returns a copy of the in-memory message sequence for the
// current session.
func (m *Manager) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.messages))
	copy(out, m.messages)
	return out
}

// Activate transitions the manager to Active, restoring the last persisted
// session if one exists and creating a fresh session otherwise. Calling
// Activate while already Active is a no-op, so the restore path is
// idempotent.
func (m *Manager) Activate() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateActive {
		return nil
	}
	m.state = StateRestoring

	id, ok, err := m.store.LoadLastSessionID()
	if err != nil {
		m.state = StateUninitialized
		return fmt.Errorf("restoring session: %w", err)
	}

	if ok {
		msgs, err := m.store.Messages(id)
		if err != nil {
			m.state = StateUninitialized
			return fmt.Errorf("restoring session %s: %w", id, err)
		}
		m.id = id
		m.messages = msgs
		m.state = StateActive
		m.logger.Debug("restored session", "session_id", id, "messages", len(msgs))
		return nil
	}

	if err := m.createLocked(); err != nil {
		m.state = StateUninitialized
		return err
	}
	m.state = StateActive
	return nil
}

// StartNew creates a fresh session and makes it current: new identifier,
// cleared in-memory messages, an empty persisted log, and an updated
// last-session pointer. The previous session's persisted log is never
// deleted. Requires Active.
func (m *Manager) StartNew() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateActive {
		return "", ErrNotActive
	}
	if err := m.createLocked(); err != nil {
		return "", err
	}
	return m.id, nil
}

// Remember appends finalized messages to the in-memory sequence.
// It does not persist; pair it with Commit. Requires Active.
func (m *Manager) Remember(msgs ...Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateActive {
		return ErrNotActive
	}
	m.messages = append(m.messages, msgs...)
	return nil
}

// Commit persists msgs as one batch against the given session id, which
// may be a superseded session if the caller captured it before StartNew.
func (m *Manager) Commit(id string, msgs ...Message) error {
	return m.store.AppendMessages(id, msgs...)
}

// Reset discards all in-memory state and returns the manager to
// Uninitialized. Used after the store has been cleared; the next Activate
// behaves identically to a first-ever launch.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateUninitialized
	m.id = ""
	m.messages = nil
}

// createLocked generates a fresh identifier, persists it as the current
// session with an empty log, and clears the in-memory sequence.
// Caller holds m.mu.
func (m *Manager) createLocked() error {
	id := m.nextIDLocked()

	if err := m.store.SaveLastSessionID(id); err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	if err := m.store.InitLog(id); err != nil {
		return fmt.Errorf("creating session: %w", err)
	}

	m.id = id
	m.messages = nil
	m.logger.Info("created session", "session_id", id)
	return nil
}

// nextIDLocked returns a millisecond-timestamp identifier, bumped past the
// previously issued one so ids stay strictly increasing even when two
// sessions are created within the same millisecond. Caller holds m.mu.
func (m *Manager) nextIDLocked() string {
	ms := m.now().UnixMilli()
	if ms <= m.lastID {
		ms = m.lastID + 1
	}
	m.lastID = ms
	return strconv.FormatInt(ms, 10)
}
