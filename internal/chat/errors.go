package chat

import "errors"

var (
	// ErrEmptyInput reports a submission whose text is empty or whitespace.
	ErrEmptyInput = errors.New("chat: input text is empty")

	// ErrNoSession reports a submission before any session is active.
	ErrNoSession = errors.New("chat: no active session")

	// ErrBusy reports a submission while another request is in flight.
	ErrBusy = errors.New("chat: a request is already in flight")
)
