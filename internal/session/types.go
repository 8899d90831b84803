package session

// Message is a single conversation message. The JSON field names are the
// persisted format and are kept compatible with the message logs written by
// earlier releases: {"text": ..., "sender": ...}.
//
// Messages are immutable once created and message logs are append-only;
// there are no in-place edits or deletions.
type Message struct {
	// Sender is the authenticated user's handle or the agent's display name.
	Sender string `json:"sender"`

	// Text is the message body. May contain multiple lines.
	Text string `json:"text"`
}

// State is the Manager lifecycle state.
type State int

// Manager states. Transitions only move forward within one activation:
// Uninitialized → Restoring → Active. ClearAll resets to Uninitialized.
const (
	StateUninitialized State = iota
	StateRestoring
	StateActive
)

// String implements fmt.Stringer for log output.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateRestoring:
		return "restoring"
	case StateActive:
		return "active"
	default:
		return "unknown"
	}
}
