// Package chat orchestrates a full conversation turn: validate the
// submission, append the user's message optimistically, invoke the
// configured agent backend, fold the streamed response into one reply,
// and persist the user message and reply as a single batch against the
// session the request started in.
//
// # Failure model
//
// Invocation and stream failures never escape Submit as errors. They are
// converted into a visible reply from the agent so the transcript always
// pairs every submitted message with a response. Submit returns an error
// only for readiness violations (empty input, no session, unconfigured
// backend, request already in flight) and for persistence failures.
//
// # Concurrency
//
// At most one request is in flight per Chat; concurrent submissions are
// rejected with ErrBusy. Starting a new session does not abort an
// in-flight request: the late reply is still persisted to the session
// that originated it, but is not surfaced in the new session's view.
package chat
