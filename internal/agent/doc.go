// Package agent normalizes the two supported agent backends behind one
// invocation contract.
//
// An [Identity] names the active agent and tags which backend variant it
// addresses: a hosted Bedrock agent (agent id + alias id) or a Strands
// function agent (a Lambda invocation target). Both variants expose the
// same operation through [Invoker]: given a session id and input text,
// produce a finite ordered stream of [Event] values interleaving trace
// signals with chunks of the answer text.
//
// The [Client] owns the backend handle. It is constructed lazily, once,
// from freshly fetched ephemeral credentials, and rebuilt only on an
// explicit Configure call. Invoking before the handle exists is a
// readiness violation ([ErrNotReady]), not an attempted call. The adapter
// never retries; a rejected call surfaces as [*InvocationError] with the
// raw cause attached.
package agent
