package agent

// Event is one element of an agent's response stream. Exactly one of Trace
// or Chunk is set. The JSON field names are the wire contract with the
// Strands function agent and must be preserved exactly.
type Event struct {
	Trace *TraceEvent `json:"trace,omitempty"`
	Chunk *ChunkEvent `json:"chunk,omitempty"`
}

// TraceEvent signals completion of one backend sub-task. It is progress
// metadata, never part of the final answer text.
type TraceEvent struct {
	// Rationale is the backend's human-readable reasoning for the step,
	// empty when the trace carries none.
	Rationale string `json:"rationale,omitempty"`
}

// ChunkEvent carries a fragment of the final answer text, to be decoded
// as UTF-8 and appended in arrival order.
type ChunkEvent struct {
	Bytes []byte `json:"bytes"`
}

// valid reports whether the event carries exactly one payload kind.
func (e Event) valid() bool {
	return (e.Trace != nil) != (e.Chunk != nil)
}
