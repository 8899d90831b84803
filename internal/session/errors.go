package session

import "errors"

// Sentinel errors for session operations. Check with errors.Is().
var (
	// ErrNotActive indicates an operation that requires an active session
	// was attempted before Activate (or after ClearAll).
	ErrNotActive = errors.New("session manager not active")

	// ErrNoMessages indicates an append was attempted with no messages.
	ErrNoMessages = errors.New("no messages to append")
)
