// Package session provides durable conversation history keyed by session.
//
// A session is one continuous conversation thread with a stable identifier,
// used to correlate turns with the backend agent. The [Store] persists the
// current-session pointer and one append-only message log per session on top
// of the injected [store.KV] substrate; the [Manager] owns the notion of
// "current session" and the in-memory message sequence for it.
//
// Key operations:
//
//   - Pointer: [Store.SaveLastSessionID], [Store.LoadLastSessionID]
//   - Message logs: [Store.AppendMessages], [Store.Messages]
//   - Lifecycle: [Manager.Activate], [Manager.StartNew], [Store.ClearAll]
//
// # Durability
//
// A message is only ever written after it is fully finalized in memory, and
// always as part of a single read-modify-write of the whole log. Malformed
// persisted data is a recoverable condition: it is logged and treated as an
// empty log, never a fatal error.
//
// # Concurrency
//
// Store serializes access per session identifier, so concurrent
// AppendMessages calls for the same session cannot lose updates. Manager is
// safe for concurrent use; at most one session is current at any time.
package session
