package tui

import (
	"context"
	"fmt"
	"log/slog"

	tea "charm.land/bubbletea/v2"

	"github.com/parlorchat/parlor/internal/chat"
	"github.com/parlorchat/parlor/internal/session"
)

// streamBufferSize bounds the event channel so progress bursts never block
// the request goroutine during UI render delays.
const streamBufferSize = 100

// streamEvent is a discriminated union for all request events. Using a
// single channel with a union type simplifies select logic and eliminates
// multi-channel closure handling.
type streamEvent struct {
	// Exactly one of these fields is set per event
	progress *chat.Progress   // Progress update from the in-flight request
	reply    *session.Message // Final reply (request finished)
	err      error            // Request never started or persistence failed
}

// Stream message types for Bubble Tea.
type streamStartedMsg struct {
	eventCh <-chan streamEvent
	cancel  context.CancelFunc
}

type progressMsg struct {
	progress chat.Progress
}

type replyMsg struct {
	reply session.Message
}

type requestErrorMsg struct {
	err error
}

// startRequest creates a command that runs one conversation turn on a
// background goroutine.
//
// Goroutine lifecycle: the spawned goroutine exits when Submit returns,
// which happens on normal completion, on a converted failure, or when the
// context is canceled. Channel closure signals completion.
func (t *TUI) startRequest(text string) tea.Cmd {
	return func() tea.Msg {
		eventCh := make(chan streamEvent, streamBufferSize)

		// Bound the request so a stalled backend cannot hang the TUI
		ctx, cancel := context.WithTimeout(t.ctx, requestTimeout)

		go func() {
			defer cancel()
			// Channel closure signals goroutine completion
			defer close(eventCh)

			// Panic recovery to prevent TUI lockup
			defer func() {
				if r := recover(); r != nil {
					slog.Error("request panic recovered", "panic", r)
					select {
					case eventCh <- streamEvent{err: fmt.Errorf("request panic: %v", r)}:
					default:
					}
				}
			}()

			reply, err := t.chat.Submit(ctx, text, func(p chat.Progress) {
				select {
				case eventCh <- streamEvent{progress: &p}:
				default: // best-effort: don't block if channel is full
				}
			})
			// The terminal event is sent without consulting the context.
			// Racing a cancellation against the send would
			// nondeterministically hide the persisted error reply behind
			// a generic completion failure.
			if err != nil {
				select {
				case eventCh <- streamEvent{err: err}:
				default:
				}
				return
			}
			select {
			case eventCh <- streamEvent{reply: &reply}:
			default:
			}
		}()

		return streamStartedMsg{
			eventCh: eventCh,
			cancel:  cancel,
		}
	}
}

// listenForStream creates a command to wait for the next request event.
// Empty events (all fields zero) are skipped via loop instead of recursion.
func listenForStream(eventCh <-chan streamEvent) tea.Cmd {
	return func() tea.Msg {
		if eventCh == nil {
			return nil
		}

		for {
			event, ok := <-eventCh
			if !ok {
				// Channel closed without a terminal event
				return requestErrorMsg{err: fmt.Errorf("request ended without completion signal")}
			}

			switch {
			case event.err != nil:
				return requestErrorMsg{err: event.err}
			case event.reply != nil:
				return replyMsg{reply: *event.reply}
			case event.progress != nil:
				return progressMsg{progress: *event.progress}
			default:
				continue
			}
		}
	}
}
