package chat

import "github.com/parlorchat/parlor/internal/agent"

// Progress is the live state of an in-flight request: how many backend
// sub-tasks have completed and the most recent rationale the backend gave.
//
// Progress is a value type; every update produces a new value through
// Apply, which keeps the aggregation a pure fold that tests can drive
// without a live stream. Progress is reset at the start of each request,
// only mutated while that request's stream is consumed, and discarded
// (never persisted) when the request ends.
type Progress struct {
	Completed int
	Rationale string
}

// Apply folds one trace event into the progress state: the completed count
// increments by one, and a non-empty rationale replaces the stored one.
func (p Progress) Apply(t agent.TraceEvent) Progress {
	next := Progress{
		Completed: p.Completed + 1,
		Rationale: p.Rationale,
	}
	if t.Rationale != "" {
		next.Rationale = t.Rationale
	}
	return next
}
