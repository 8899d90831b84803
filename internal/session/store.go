package session

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/parlorchat/parlor/internal/log"
	"github.com/parlorchat/parlor/internal/store"
)

// Storage keys. These names are the on-disk contract; they match the keys
// the original browser client kept in localStorage, so exported state stays
// interoperable.
const (
	keyLastSession    = "lastSessionId"
	messagesKeyPrefix = "messages_"
)

// messagesKey returns the log key for a session id.
func messagesKey(id string) string { return messagesKeyPrefix + id }

// Store persists the current-session pointer and per-session message logs
// on a KV substrate.
//
// Store is safe for concurrent use. Reads and writes of one session's log
// are serialized per session identifier so a read-modify-write append can
// never lose messages to a concurrent append.
type Store struct {
	kv     store.KV
	logger log.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex // per-session append locks
}

// NewStore creates a Store on top of kv.
func NewStore(kv store.KV, logger log.Logger) *Store {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Store{
		kv:     kv,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}
}

// sessionLock returns the append lock for a session id, creating it on
// first use.
func (s *Store) sessionLock(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

// SaveLastSessionID records which session is current, overwriting any
// prior value.
func (s *Store) SaveLastSessionID(id string) error {
	if err := s.kv.Set(keyLastSession, id); err != nil {
		return fmt.Errorf("saving last session id: %w", err)
	}
	return nil
}

// LoadLastSessionID returns the current session pointer.
// ok is false when no session has ever been recorded.
func (s *Store) LoadLastSessionID() (string, bool, error) {
	id, ok, err := s.kv.Get(keyLastSession)
	if err != nil {
		return "", false, fmt.Errorf("loading last session id: %w", err)
	}
	if !ok || id == "" {
		return "", false, nil
	}
	return id, true, nil
}

// AppendMessages appends msgs to the persisted log for id as one batch:
// the existing log is read, the new messages are concatenated at the tail,
// and the full sequence is written back. The whole operation is a critical
// section per session id within this process; a second process appending
// to the same session can still interleave, and the last writer wins.
func (s *Store) AppendMessages(id string, msgs ...Message) error {
	if len(msgs) == 0 {
		return ErrNoMessages
	}

	l := s.sessionLock(id)
	l.Lock()
	defer l.Unlock()

	existing := s.loadLog(id)
	updated := append(existing, msgs...)

	data, err := json.Marshal(updated)
	if err != nil {
		return fmt.Errorf("encoding message log for session %s: %w", id, err)
	}
	if err := s.kv.Set(messagesKey(id), string(data)); err != nil {
		return fmt.Errorf("writing message log for session %s: %w", id, err)
	}

	s.logger.Debug("appended messages", "session_id", id, "count", len(msgs), "total", len(updated))
	return nil
}

// Messages returns the persisted log for id in append order.
// An unknown session yields an empty sequence.
func (s *Store) Messages(id string) ([]Message, error) {
	l := s.sessionLock(id)
	l.Lock()
	defer l.Unlock()
	return s.loadLog(id), nil
}

// InitLog persists an empty log for id, establishing the session in storage.
func (s *Store) InitLog(id string) error {
	l := s.sessionLock(id)
	l.Lock()
	defer l.Unlock()

	if err := s.kv.Set(messagesKey(id), "[]"); err != nil {
		return fmt.Errorf("initializing message log for session %s: %w", id, err)
	}
	return nil
}

// ClearAll irreversibly erases every session log and the current-session
// pointer.
func (s *Store) ClearAll() error {
	if err := s.kv.Clear(); err != nil {
		return fmt.Errorf("clearing session storage: %w", err)
	}
	s.logger.Info("cleared all session data")
	return nil
}

// loadLog reads and decodes the log for id. Malformed stored data is a
// recoverable parse failure: it is logged and treated as "no data". The
// store performs no schema validation beyond structural parse success.
func (s *Store) loadLog(id string) []Message {
	raw, ok, err := s.kv.Get(messagesKey(id))
	if err != nil {
		s.logger.Warn("reading message log failed, treating as empty", "session_id", id, "error", err)
		return nil
	}
	if !ok {
		return nil
	}

	var msgs []Message
	if err := json.Unmarshal([]byte(raw), &msgs); err != nil {
		s.logger.Warn("corrupt message log, treating as empty", "session_id", id, "error", err)
		return nil
	}
	return msgs
}
