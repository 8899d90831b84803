package agent

import (
	"errors"
	"fmt"
)

// Sentinel errors. Check with errors.Is().
var (
	// ErrNotReady indicates Invoke was called before the client handle was
	// configured. The call is not attempted.
	ErrNotReady = errors.New("agent client not ready")

	// ErrEmptyResponse indicates the backend returned no payload stream at
	// all. An empty stream is malformed, not an empty success.
	ErrEmptyResponse = errors.New("agent response has no stream")

	// ErrUnknownBackend indicates an identity with an unrecognized backend
	// tag.
	ErrUnknownBackend = errors.New("unknown agent backend")

	// Identity validation errors.
	ErrMissingAgentID        = errors.New("missing agent id")
	ErrMissingAgentAlias     = errors.New("missing agent alias id")
	ErrMissingFunctionTarget = errors.New("missing function target")
	ErrMissingRegion         = errors.New("missing region")
)

// InvocationError reports a rejected remote call: auth failure, invalid
// identifiers, throttling, or a network fault. It carries the raw cause;
// no retry is performed at this layer.
type InvocationError struct {
	Backend Backend
	Err     error
}

// Error implements error.
func (e *InvocationError) Error() string {
	return fmt.Sprintf("%s agent invocation failed: %v", e.Backend, e.Err)
}

// Unwrap exposes the raw cause for errors.Is/As.
func (e *InvocationError) Unwrap() error { return e.Err }
