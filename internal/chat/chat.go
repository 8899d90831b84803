package chat

import (
	"context"
	"fmt"
	"iter"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/parlorchat/parlor/internal/agent"
	"github.com/parlorchat/parlor/internal/log"
	"github.com/parlorchat/parlor/internal/session"
)

// UserSender is the sender label recorded on messages the user submits.
const UserSender = "You"

// agentClient is the slice of the agent client the orchestrator consumes.
type agentClient interface {
	Ready() bool
	Identity() (agent.Identity, bool)
	Invoke(ctx context.Context, sessionID, inputText string) (iter.Seq2[agent.Event, error], error)
}

var _ agentClient = (*agent.Client)(nil)

// Chat drives conversation turns against the active session and the
// configured agent backend.
type Chat struct {
	sessions *session.Manager
	store    *session.Store
	client   agentClient
	logger   log.Logger
	tracer   trace.Tracer

	inFlight sync.Mutex // held for the duration of one request
	busy     bool

	progressMu sync.Mutex
	progress   Progress
}

// New creates a Chat over the given session manager, session store, and
// agent client.
func New(sessions *session.Manager, store *session.Store, client agentClient, logger log.Logger) *Chat {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Chat{
		sessions: sessions,
		store:    store,
		client:   client,
		logger:   logger,
		tracer:   otel.Tracer("parlor/chat"),
	}
}

// Activate brings the session manager to the Active state, restoring the
// last session or creating a fresh one.
func (c *Chat) Activate() error {
	return c.sessions.Activate()
}

// Messages returns the in-memory transcript of the current session.
func (c *Chat) Messages() []session.Message {
	return c.sessions.Messages()
}

// InFlight reports whether a request is currently being processed.
func (c *Chat) InFlight() bool {
	c.inFlight.Lock()
	defer c.inFlight.Unlock()
	return c.busy
}

// Progress returns the progress state of the in-flight request, or the
// zero value when no request is in flight.
func (c *Chat) Progress() Progress {
	c.progressMu.Lock()
	defer c.progressMu.Unlock()
	return c.progress
}

// AgentName returns the display name of the configured agent, or the
// empty string before configuration.
func (c *Chat) AgentName() string {
	identity, ok := c.client.Identity()
	if !ok {
		return ""
	}
	return identity.DisplayName()
}

// Submit runs one conversation turn: the user's message is appended to the
// transcript immediately, the agent is invoked against the current session,
// the streamed response is folded into a single reply, and both messages
// are persisted as one batch against the session the turn started in.
//
// An invocation or stream failure does not fail the turn; it is converted
// into a reply describing the error, so the transcript always pairs the
// submission with a response. Submit returns an error only when the turn
// never starts (ErrEmptyInput, ErrNoSession, agent.ErrNotReady, ErrBusy)
// or when persisting the finished pair fails.
//
// onProgress, when non-nil, receives each progress update in stream order
// on the calling goroutine.
func (c *Chat) Submit(ctx context.Context, text string, onProgress func(Progress)) (session.Message, error) {
	if strings.TrimSpace(text) == "" {
		return session.Message{}, ErrEmptyInput
	}
	id, ok := c.sessions.Current()
	if !ok {
		return session.Message{}, ErrNoSession
	}
	identity, ok := c.client.Identity()
	if !ok {
		return session.Message{}, agent.ErrNotReady
	}

	if !c.acquire() {
		return session.Message{}, ErrBusy
	}
	defer c.release()

	requestID := uuid.NewString()
	ctx, span := c.tracer.Start(ctx, "chat.submit", trace.WithAttributes(
		attribute.String("request.id", requestID),
		attribute.String("session.id", id),
		attribute.String("agent.backend", string(identity.Backend)),
	))
	defer span.End()

	userMsg := session.Message{Sender: UserSender, Text: text}
	if err := c.sessions.Remember(userMsg); err != nil {
		return session.Message{}, err
	}

	reply := session.Message{Sender: identity.DisplayName()}
	replyText, err := c.converse(ctx, id, text, onProgress)
	if err != nil {
		c.logger.Error("agent invocation failed",
			"request_id", requestID, "session_id", id, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "invocation failed")
		reply.Text = fmt.Sprintf("An error occurred while processing your request. Error: %v", err)
	} else {
		reply.Text = replyText
	}

	// Surface the reply in memory only if the turn's session is still
	// current; a session started mid-flight keeps its transcript clean.
	if cur, ok := c.sessions.Current(); ok && cur == id {
		if err := c.sessions.Remember(reply); err != nil {
			c.logger.Warn("reply not surfaced in transcript", "session_id", id, "error", err)
		}
	}

	if err := c.sessions.Commit(id, userMsg, reply); err != nil {
		c.logger.Error("persisting turn failed", "request_id", requestID, "session_id", id, "error", err)
		return reply, fmt.Errorf("persisting turn: %w", err)
	}
	return reply, nil
}

// converse invokes the backend and folds the stream into the reply text,
// mirroring each progress update into the observable state.
func (c *Chat) converse(ctx context.Context, sessionID, text string, onProgress func(Progress)) (string, error) {
	events, err := c.client.Invoke(ctx, sessionID, text)
	if err != nil {
		return "", err
	}
	reply, _, err := Aggregate(ctx, events, func(p Progress) {
		c.setProgress(p)
		if onProgress != nil {
			onProgress(p)
		}
	})
	return reply, err
}

// StartNewConversation makes a fresh session current. An in-flight request
// is not aborted; its reply will still be persisted to the session it
// started in.
func (c *Chat) StartNewConversation() (string, error) {
	return c.sessions.StartNew()
}

// ClearAllData removes every persisted session and returns the manager to
// its pre-first-launch state. The next Activate creates a fresh session.
func (c *Chat) ClearAllData() error {
	if err := c.store.ClearAll(); err != nil {
		return fmt.Errorf("clearing chat data: %w", err)
	}
	c.sessions.Reset()
	return nil
}

func (c *Chat) acquire() bool {
	c.inFlight.Lock()
	defer c.inFlight.Unlock()
	if c.busy {
		return false
	}
	c.busy = true
	c.setProgress(Progress{})
	return true
}

func (c *Chat) release() {
	c.inFlight.Lock()
	c.busy = false
	c.inFlight.Unlock()
	c.setProgress(Progress{})
}

func (c *Chat) setProgress(p Progress) {
	c.progressMu.Lock()
	c.progress = p
	c.progressMu.Unlock()
}
