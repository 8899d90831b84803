// Package tui provides the Bubble Tea terminal interface for Parlor.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/parlorchat/parlor/internal/chat"
)

// State represents the TUI state machine.
type State int

// TUI state machine states.
const (
	StateInput   State = iota // Awaiting user input
	StateWorking              // A request is in flight
)

// Memory bounds to prevent unbounded growth.
const (
	maxDisplayMessages = 200 // Maximum transcript messages rendered
	maxHistory         = 100 // Maximum input history entries
)

// requestTimeout bounds a single conversation turn.
const requestTimeout = 5 * time.Minute

// Layout constants for viewport height calculation.
const (
	separatorLines = 2 // Two separator lines (above and below input)
	helpLines      = 1 // Help bar height
	promptLines    = 1 // Prompt prefix line
	minViewport    = 3 // Minimum viewport height
)

// notice is a transient display-only line (system hints, input errors).
// Notices are not part of the conversation and are never persisted.
type notice struct {
	text    string
	isError bool
}

// TUI is the Bubble Tea model for the Parlor terminal interface.
type TUI struct {
	// Input (textarea for multi-line support, Shift+Enter for newline)
	input      textarea.Model
	history    []string
	historyIdx int

	// State
	state     State
	lastCtrlC time.Time

	// Progress of the in-flight request
	spinner  spinner.Model
	progress chat.Progress

	// Transient display lines shown after the transcript
	notices []notice

	// Scrollable transcript viewport
	viewport viewport.Model

	// Help bar for keyboard shortcuts
	help help.Model
	keys keyMap

	// Request management
	// Note: No sync.WaitGroup - Bubble Tea's event loop provides
	// synchronization. Single union channel with discriminated events.
	streamCancel  context.CancelFunc
	streamEventCh <-chan streamEvent

	// Dependencies (direct, no interface)
	chat      *chat.Chat
	ctx       context.Context
	ctxCancel context.CancelFunc // For canceling all operations on exit

	// Dimensions
	width  int
	height int

	// Styles
	styles Styles

	// Markdown rendering (nil = graceful degradation to plain text)
	markdown *markdownRenderer

	// Reusable buffer for View() to reduce allocations
	viewBuf strings.Builder
}

// New creates a TUI model over an activated chat.
// Returns error if required dependencies are nil.
//
// IMPORTANT: ctx MUST be the same context passed to tea.WithContext()
// to ensure consistent cancellation behavior.
func New(ctx context.Context, c *chat.Chat) (*TUI, error) {
	if c == nil {
		return nil, errors.New("tui.New: chat is required")
	}
	if ctx == nil {
		return nil, errors.New("tui.New: ctx is required")
	}

	// Create cancellable context for cleanup on exit
	ctx, cancel := context.WithCancel(ctx)

	// Create textarea for multi-line input
	// Enter submits, Shift+Enter adds newline (default behavior)
	ta := textarea.New()
	ta.Placeholder = "Message the agent..."
	ta.SetHeight(1)  // Single line by default
	ta.SetWidth(120) // Updated on WindowSizeMsg
	ta.MaxWidth = 0
	ta.ShowLineNumbers = false

	// Clean, minimal styling: no background colors, just text
	cleanStyle := textarea.StyleState{
		Base:        lipgloss.NewStyle(),
		Text:        lipgloss.NewStyle(),
		Placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Prompt:      lipgloss.NewStyle(),
	}
	ta.SetStyles(textarea.Styles{
		Focused: cleanStyle,
		Blurred: cleanStyle,
	})
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	// Create viewport for the scrollable transcript.
	// Disable built-in keyboard handling; keys are routed explicitly in
	// handleKey to avoid conflicts with textarea/history navigation.
	vp := viewport.New(viewport.WithWidth(80), viewport.WithHeight(20))
	vp.MouseWheelEnabled = true
	vp.SoftWrap = true
	vp.KeyMap = viewport.KeyMap{}

	h := help.New()

	return &TUI{
		chat:      c,
		ctx:       ctx,
		ctxCancel: cancel,
		input:     ta,
		spinner:   sp,
		viewport:  vp,
		help:      h,
		keys:      newKeyMap(),
		styles:    DefaultStyles(),
		history:   make([]string, 0, maxHistory),
		markdown:  newMarkdownRenderer(80),
		width:     80, // Default width until WindowSizeMsg arrives
	}, nil
}

// Init implements tea.Model.
func (t *TUI) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		t.spinner.Tick,
		t.input.Focus(),
	)
}

// addNotice appends a transient display line.
func (t *TUI) addNotice(n notice) {
	t.notices = append(t.notices, n)
}

// Update implements tea.Model.
//
//nolint:gocognit,gocyclo // Bubble Tea Update requires type switch on all message types
func (t *TUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		return t.handleKey(msg)

	case tea.WindowSizeMsg:
		t.width = msg.Width
		t.height = msg.Height

		// Calculate viewport height: total - input - separators - help
		inputHeight := t.input.Height() + promptLines
		fixedHeight := separatorLines + inputHeight + helpLines
		vpHeight := max(msg.Height-fixedHeight, minViewport)

		t.viewport.SetWidth(msg.Width)
		t.viewport.SetHeight(vpHeight)
		t.input.SetWidth(msg.Width - 4) // Room for "> " prompt
		t.help.SetWidth(msg.Width)
		t.markdown.UpdateWidth(msg.Width)

		t.rebuildViewportContent()
		return t, nil

	case tea.MouseWheelMsg:
		var cmd tea.Cmd
		t.viewport, cmd = t.viewport.Update(msg)
		return t, cmd

	case spinner.TickMsg:
		var cmd tea.Cmd
		t.spinner, cmd = t.spinner.Update(msg)
		// Rebuild viewport to animate the progress indicator
		if t.state == StateWorking {
			t.rebuildViewportContent()
		}
		return t, cmd

	case streamStartedMsg:
		t.streamCancel = msg.cancel
		t.streamEventCh = msg.eventCh
		t.state = StateWorking
		t.progress = chat.Progress{}
		t.rebuildViewportContent()
		t.viewport.GotoBottom()
		return t, listenForStream(msg.eventCh)

	case progressMsg:
		t.progress = msg.progress
		t.rebuildViewportContent()
		t.viewport.GotoBottom()
		return t, listenForStream(t.streamEventCh)

	case replyMsg:
		t.finishRequest()
		// The orchestrator has already appended the reply to the
		// transcript; rebuilding picks it up.
		t.rebuildViewportContent()
		t.viewport.GotoBottom()
		return t, t.input.Focus()

	case requestErrorMsg:
		t.finishRequest()

		switch {
		case errors.Is(msg.err, context.Canceled):
			t.addNotice(notice{text: "(Canceled)"})
		case errors.Is(msg.err, context.DeadlineExceeded):
			t.addNotice(notice{text: "Request timeout (>5 min).", isError: true})
		case errors.Is(msg.err, chat.ErrBusy):
			t.addNotice(notice{text: "A request is already running.", isError: true})
		default:
			t.addNotice(notice{text: msg.err.Error(), isError: true})
		}
		t.rebuildViewportContent()
		t.viewport.GotoBottom()
		return t, t.input.Focus()
	}

	var cmd tea.Cmd
	t.input, cmd = t.input.Update(msg)
	return t, cmd
}

// finishRequest tears down stream state and returns to input mode.
func (t *TUI) finishRequest() {
	t.state = StateInput
	t.progress = chat.Progress{}
	if t.streamCancel != nil {
		t.streamCancel()
		t.streamCancel = nil
	}
	t.streamEventCh = nil
}

// View implements tea.Model.
// Uses AltScreen with a viewport for the scrollable transcript.
func (t *TUI) View() tea.View {
	t.viewBuf.Reset()

	_, _ = t.viewBuf.WriteString(t.viewport.View())
	_, _ = t.viewBuf.WriteString("\n")

	_, _ = t.viewBuf.WriteString(t.renderSeparator())
	_, _ = t.viewBuf.WriteString("\n")

	// Input prompt - always shown so users can prepare the next message
	// while the agent responds
	_, _ = t.viewBuf.WriteString(t.styles.Prompt.Render("> "))
	_, _ = t.viewBuf.WriteString(t.input.View())
	_, _ = t.viewBuf.WriteString("\n")

	_, _ = t.viewBuf.WriteString(t.renderSeparator())
	_, _ = t.viewBuf.WriteString("\n")

	_, _ = t.viewBuf.WriteString(t.renderStatusBar())

	v := tea.NewView(t.viewBuf.String())
	v.AltScreen = true
	return v
}

// rebuildViewportContent reconstructs the viewport content from the
// transcript and state. Called when the transcript, progress, or state
// changes.
func (t *TUI) rebuildViewportContent() {
	var b strings.Builder

	_, _ = b.WriteString(t.styles.RenderBanner())
	_, _ = b.WriteString("\n")
	_, _ = b.WriteString(t.styles.RenderWelcomeTips())
	_, _ = b.WriteString("\n")

	agentLabel := t.chat.AgentName()
	if agentLabel == "" {
		agentLabel = "Agent"
	}

	transcript := t.chat.Messages()
	if len(transcript) > maxDisplayMessages {
		transcript = transcript[len(transcript)-maxDisplayMessages:]
	}
	for _, msg := range transcript {
		if msg.Sender == chat.UserSender {
			_, _ = b.WriteString(t.styles.User.Render(chat.UserSender + "> "))
			_, _ = b.WriteString(msg.Text)
		} else {
			_, _ = b.WriteString(t.styles.Agent.Render(msg.Sender + "> "))
			_, _ = b.WriteString(t.markdown.Render(msg.Text))
		}
		_, _ = b.WriteString("\n\n")
	}

	for _, n := range t.notices {
		if n.isError {
			_, _ = b.WriteString(t.styles.Error.Render("Error: " + n.text))
		} else {
			_, _ = b.WriteString(t.styles.System.Render(n.text))
		}
		_, _ = b.WriteString("\n\n")
	}

	// Progress indicator while the request runs
	if t.state == StateWorking {
		_, _ = b.WriteString(t.spinner.View())
		_, _ = b.WriteString(" ")
		_, _ = b.WriteString(t.styles.Progress.Render(renderProgress(t.progress, agentLabel)))
		_, _ = b.WriteString("\n\n")
	}

	t.viewport.SetContent(b.String())
}

// renderProgress formats the in-flight progress line: a task counter once
// traces arrive, with the latest rationale when the backend shared one.
func renderProgress(p chat.Progress, agentLabel string) string {
	if p.Completed == 0 {
		return agentLabel + " is thinking..."
	}
	line := fmt.Sprintf("%d task completed", p.Completed)
	if p.Completed != 1 {
		line = fmt.Sprintf("%d tasks completed", p.Completed)
	}
	if p.Rationale != "" {
		line += " · " + p.Rationale
	}
	return line
}

// renderSeparator returns a horizontal line separator.
func (t *TUI) renderSeparator() string {
	width := t.width
	if width <= 0 {
		width = 80
	}
	return t.styles.Separator.Render(strings.Repeat("─", width))
}

// renderStatusBar returns state-appropriate keyboard shortcut help.
func (t *TUI) renderStatusBar() string {
	var bindings []key.Binding
	switch t.state {
	case StateInput:
		bindings = []key.Binding{
			t.keys.Submit, t.keys.NewLine, t.keys.History,
			t.keys.NewConversation, t.keys.Quit, t.keys.ScrollUp,
		}
	case StateWorking:
		bindings = []key.Binding{
			t.keys.EscCancel, t.keys.Cancel,
			t.keys.ScrollUp, t.keys.ScrollDown,
		}
	}
	return t.help.ShortHelpView(bindings)
}
