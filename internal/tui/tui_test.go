package tui

import (
	"context"
	"errors"
	"iter"
	"strings"
	"testing"
	"time"

	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"go.uber.org/goleak"

	"github.com/parlorchat/parlor/internal/agent"
	"github.com/parlorchat/parlor/internal/chat"
	"github.com/parlorchat/parlor/internal/session"
	"github.com/parlorchat/parlor/internal/store"
)

// goleakOptions returns standard goleak options for all TUI tests.
func goleakOptions() []goleak.Option {
	return []goleak.Option{
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	}
}

// scriptedClient satisfies the agent surface needed by chat.New.
type scriptedClient struct {
	identity agent.Identity
	events   []agent.Event
}

func (c *scriptedClient) Ready() bool { return true }

func (c *scriptedClient) Identity() (agent.Identity, bool) {
	return c.identity, true
}

func (c *scriptedClient) Invoke(_ context.Context, _, _ string) (iter.Seq2[agent.Event, error], error) {
	events := c.events
	return func(yield func(agent.Event, error) bool) {
		for _, ev := range events {
			if !yield(ev, nil) {
				return
			}
		}
	}, nil
}

// newTestChat builds an activated Chat over in-memory storage.
func newTestChat(t *testing.T) *chat.Chat {
	t.Helper()

	kv := store.NewMem()
	st := session.NewStore(kv, nil)
	mgr := session.NewManager(st, nil)
	client := &scriptedClient{
		identity: agent.Identity{
			Backend:      agent.BackendBedrock,
			Name:         "Agent",
			AgentID:      "AGENT12345",
			AgentAliasID: "TSTALIASID",
			Region:       "us-east-1",
		},
		events: []agent.Event{
			{Chunk: &agent.ChunkEvent{Bytes: []byte("hello")}},
		},
	}

	c := chat.New(mgr, st, client, nil)
	if err := c.Activate(); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}
	return c
}

// newTestTUI creates a TUI with a properly initialized textarea.
func newTestTUI(t *testing.T) *TUI {
	t.Helper()

	ta := textarea.New()
	ta.SetHeight(3)
	ta.ShowLineNumbers = false
	return &TUI{
		state:    StateInput,
		input:    ta,
		history:  make([]string, 0),
		styles:   DefaultStyles(),
		keys:     newKeyMap(),
		viewport: viewport.New(viewport.WithWidth(80), viewport.WithHeight(20)),
		markdown: newMarkdownRenderer(80),
		chat:     newTestChat(t),
		ctx:      context.Background(),
	}
}

func TestNewErrorOnNilChat(t *testing.T) {
	if _, err := New(context.Background(), nil); err == nil {
		t.Error("expected error for nil chat")
	}
}

func TestNewErrorOnNilContext(t *testing.T) {
	c := newTestChat(t)
	//lint:ignore SA1012 intentionally testing nil context handling
	if _, err := New(nil, c); err == nil { //nolint:staticcheck
		t.Error("expected error for nil context")
	}
}

func TestInit(t *testing.T) {
	defer goleak.VerifyNone(t, goleakOptions()...)

	tui := newTestTUI(t)
	if cmd := tui.Init(); cmd == nil {
		t.Error("Init should return a command (blink + spinner tick)")
	}
}

func TestHandleSlashCommands(t *testing.T) {
	defer goleak.VerifyNone(t, goleakOptions()...)

	tests := []struct {
		name        string
		cmd         string
		wantExit    bool
		wantNotices int
		wantError   bool
	}{
		{name: "help", cmd: "/help", wantNotices: 1},
		{name: "new", cmd: "/new", wantNotices: 1},
		{name: "exit", cmd: "/exit", wantExit: true},
		{name: "quit", cmd: "/quit", wantExit: true},
		{name: "unknown", cmd: "/unknown", wantNotices: 1, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tui := newTestTUI(t)

			model, cmd := tui.handleSlashCommand(tt.cmd)
			result := model.(*TUI)

			if tt.wantExit {
				if cmd == nil {
					t.Error("expected quit command")
				}
				return
			}
			if len(result.notices) != tt.wantNotices {
				t.Fatalf("got %d notices, want %d", len(result.notices), tt.wantNotices)
			}
			if tt.wantNotices > 0 && result.notices[0].isError != tt.wantError {
				t.Errorf("notice isError = %v, want %v", result.notices[0].isError, tt.wantError)
			}
		})
	}
}

func TestSlashNewStartsFreshSession(t *testing.T) {
	defer goleak.VerifyNone(t, goleakOptions()...)

	tui := newTestTUI(t)
	model, _ := tui.handleSlashCommand("/new")
	result := model.(*TUI)

	if len(result.chat.Messages()) != 0 {
		t.Error("new conversation should have an empty transcript")
	}
	if len(result.notices) != 1 || result.notices[0].isError {
		t.Errorf("notices = %+v, want a single confirmation", result.notices)
	}
}

func TestHistoryNavigation(t *testing.T) {
	defer goleak.VerifyNone(t, goleakOptions()...)

	tui := newTestTUI(t)
	tui.history = []string{"first", "second", "third"}
	tui.historyIdx = 3

	tests := []struct {
		delta    int
		expected string
	}{
		{-1, "third"},
		{-1, "second"},
		{-1, "first"},
		{-1, "first"}, // Should stay at first
		{1, "second"},
		{1, "third"},
		{1, ""}, // Past end = empty
		{1, ""}, // Should stay empty
	}

	for i, tt := range tests {
		model, _ := tui.navigateHistory(tt.delta)
		tui = model.(*TUI)
		if tui.input.Value() != tt.expected {
			t.Errorf("step %d: got %q, want %q", i, tui.input.Value(), tt.expected)
		}
	}
}

func TestCtrlCClearsInput(t *testing.T) {
	defer goleak.VerifyNone(t, goleakOptions()...)

	tui := newTestTUI(t)
	tui.input.SetValue("some input")

	model, _ := tui.handleCtrlC()
	result := model.(*TUI)

	if result.input.Value() != "" {
		t.Errorf("input = %q after Ctrl+C, want empty", result.input.Value())
	}
}

func TestDoubleCtrlCQuits(t *testing.T) {
	defer goleak.VerifyNone(t, goleakOptions()...)

	tui := newTestTUI(t)
	tui.lastCtrlC = time.Now()

	_, cmd := tui.handleCtrlC()
	if cmd == nil {
		t.Error("expected quit command on double Ctrl+C")
	}
}

func TestHandleSubmitIgnoresEmptyInput(t *testing.T) {
	defer goleak.VerifyNone(t, goleakOptions()...)

	tui := newTestTUI(t)
	tui.input.SetValue("   ")

	model, cmd := tui.handleSubmit()
	result := model.(*TUI)

	if cmd != nil {
		t.Error("expected no command for whitespace input")
	}
	if result.state != StateInput {
		t.Errorf("state = %v, want StateInput", result.state)
	}
}

func TestHandleSubmitStartsRequest(t *testing.T) {
	defer goleak.VerifyNone(t, goleakOptions()...)

	tui := newTestTUI(t)
	tui.input.SetValue("hello agent")

	model, cmd := tui.handleSubmit()
	result := model.(*TUI)

	if cmd == nil {
		t.Fatal("expected a command starting the request")
	}
	if result.state != StateWorking {
		t.Errorf("state = %v, want StateWorking", result.state)
	}
	if result.input.Value() != "" {
		t.Errorf("input = %q after submit, want empty", result.input.Value())
	}
	if len(result.history) != 1 || result.history[0] != "hello agent" {
		t.Errorf("history = %v, want the submitted text", result.history)
	}
}

func TestUpdateRequestError(t *testing.T) {
	defer goleak.VerifyNone(t, goleakOptions()...)

	tui := newTestTUI(t)
	tui.state = StateWorking

	model, _ := tui.Update(requestErrorMsg{err: chat.ErrBusy})
	result := model.(*TUI)

	if result.state != StateInput {
		t.Errorf("state = %v after error, want StateInput", result.state)
	}
	if len(result.notices) != 1 || !result.notices[0].isError {
		t.Fatalf("notices = %+v, want one error notice", result.notices)
	}
	if !strings.Contains(result.notices[0].text, "already running") {
		t.Errorf("notice = %q, want busy explanation", result.notices[0].text)
	}
}

func TestUpdateProgress(t *testing.T) {
	defer goleak.VerifyNone(t, goleakOptions()...)

	tui := newTestTUI(t)
	tui.state = StateWorking

	model, _ := tui.Update(progressMsg{progress: chat.Progress{Completed: 3, Rationale: "checking data"}})
	result := model.(*TUI)

	if result.progress.Completed != 3 || result.progress.Rationale != "checking data" {
		t.Errorf("progress = %+v", result.progress)
	}
}

func TestListenForStreamDispatch(t *testing.T) {
	defer goleak.VerifyNone(t, goleakOptions()...)

	eventCh := make(chan streamEvent, 3)
	eventCh <- streamEvent{} // empty event is skipped
	eventCh <- streamEvent{progress: &chat.Progress{Completed: 1}}

	msg := listenForStream(eventCh)()
	pm, ok := msg.(progressMsg)
	if !ok {
		t.Fatalf("msg = %T, want progressMsg", msg)
	}
	if pm.progress.Completed != 1 {
		t.Errorf("progress = %+v", pm.progress)
	}

	reply := session.Message{Sender: "Agent", Text: "done"}
	eventCh <- streamEvent{reply: &reply}
	msg = listenForStream(eventCh)()
	rm, ok := msg.(replyMsg)
	if !ok {
		t.Fatalf("msg = %T, want replyMsg", msg)
	}
	if rm.reply != reply {
		t.Errorf("reply = %+v", rm.reply)
	}

	close(eventCh)
	msg = listenForStream(eventCh)()
	if _, ok := msg.(requestErrorMsg); !ok {
		t.Fatalf("msg = %T, want requestErrorMsg on closed channel", msg)
	}
}

func TestListenForStreamError(t *testing.T) {
	defer goleak.VerifyNone(t, goleakOptions()...)

	wantErr := errors.New("boom")
	eventCh := make(chan streamEvent, 1)
	eventCh <- streamEvent{err: wantErr}

	msg := listenForStream(eventCh)()
	em, ok := msg.(requestErrorMsg)
	if !ok {
		t.Fatalf("msg = %T, want requestErrorMsg", msg)
	}
	if !errors.Is(em.err, wantErr) {
		t.Errorf("err = %v, want %v", em.err, wantErr)
	}
}

func TestRenderProgress(t *testing.T) {
	tests := []struct {
		name     string
		progress chat.Progress
		want     string
	}{
		{
			name:     "no traces yet",
			progress: chat.Progress{},
			want:     "Agent is thinking...",
		},
		{
			name:     "one task",
			progress: chat.Progress{Completed: 1},
			want:     "1 task completed",
		},
		{
			name:     "several tasks with rationale",
			progress: chat.Progress{Completed: 4, Rationale: "comparing options"},
			want:     "4 tasks completed · comparing options",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := renderProgress(tt.progress, "Agent"); got != tt.want {
				t.Errorf("renderProgress() = %q, want %q", got, tt.want)
			}
		})
	}
}

// cancelingClient cancels the given context as soon as its stream is
// consumed, simulating a request canceled while events are in flight.
type cancelingClient struct {
	identity agent.Identity
	cancel   context.CancelFunc
}

func (c *cancelingClient) Ready() bool { return true }

func (c *cancelingClient) Identity() (agent.Identity, bool) {
	return c.identity, true
}

func (c *cancelingClient) Invoke(context.Context, string, string) (iter.Seq2[agent.Event, error], error) {
	return func(yield func(agent.Event, error) bool) {
		c.cancel()
		yield(agent.Event{Chunk: &agent.ChunkEvent{Bytes: []byte("late")}}, nil)
	}, nil
}

func TestStartRequestDeliversReplyAfterCancellation(t *testing.T) {
	defer goleak.VerifyNone(t, goleakOptions()...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	kv := store.NewMem()
	st := session.NewStore(kv, nil)
	mgr := session.NewManager(st, nil)
	client := &cancelingClient{
		identity: agent.Identity{
			Backend:      agent.BackendBedrock,
			Name:         "Agent",
			AgentID:      "AGENT12345",
			AgentAliasID: "TSTALIASID",
			Region:       "us-east-1",
		},
		cancel: cancel,
	}
	c := chat.New(mgr, st, client, nil)
	if err := c.Activate(); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}

	tui := newTestTUI(t)
	tui.chat = c
	tui.ctx = ctx

	msg := tui.startRequest("hi")()
	started, ok := msg.(streamStartedMsg)
	if !ok {
		t.Fatalf("msg = %T, want streamStartedMsg", msg)
	}
	defer started.cancel()

	// The cancellation is converted into a persisted error reply, and
	// that reply must reach the UI even though the context is done.
	result := listenForStream(started.eventCh)()
	rm, ok := result.(replyMsg)
	if !ok {
		t.Fatalf("msg = %T, want replyMsg", result)
	}
	if !strings.Contains(rm.reply.Text, "An error occurred") {
		t.Errorf("reply text = %q, want the error reply", rm.reply.Text)
	}
}

func TestWindowSizeRecalculatesViewport(t *testing.T) {
	defer goleak.VerifyNone(t, goleakOptions()...)

	tui := newTestTUI(t)
	model, _ := tui.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	result := model.(*TUI)

	if result.width != 100 || result.height != 40 {
		t.Errorf("dimensions = %dx%d, want 100x40", result.width, result.height)
	}
}
