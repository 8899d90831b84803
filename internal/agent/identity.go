package agent

import "fmt"

// Backend tags which invocation variant an Identity addresses.
type Backend string

// Supported backend variants.
const (
	// BackendBedrock is a hosted Bedrock agent, addressed by agent id and
	// alias id within a session-scoped conversation.
	BackendBedrock Backend = "bedrock"

	// BackendStrands is a function-based agent behind a Lambda response
	// stream invocation; session continuity is delegated to the backend
	// via the session id in the request payload.
	BackendStrands Backend = "strands"
)

// Default display names when configuration leaves the name blank.
const (
	defaultBedrockName = "Agent"
	defaultStrandsName = "Strands Agent"
)

// Identity describes the active agent. It is read-only input sourced from
// configuration; exactly one Identity is active at a time.
type Identity struct {
	Backend Backend

	// Name is the agent's display name, used as the sender of its messages.
	Name string

	// Bedrock addressing.
	AgentID      string
	AgentAliasID string

	// Strands addressing: the Lambda function ARN to invoke.
	FunctionTarget string

	Region string
}

// DisplayName returns the configured name, falling back to the backend's
// default when blank.
func (id Identity) DisplayName() string {
	if id.Name != "" {
		return id.Name
	}
	switch id.Backend {
	case BackendStrands:
		return defaultStrandsName
	default:
		return defaultBedrockName
	}
}

// Validate checks that the identity carries the addressing fields its
// backend variant requires. The switch is exhaustive over Backend so the
// two variants cannot drift apart.
func (id Identity) Validate() error {
	switch id.Backend {
	case BackendBedrock:
		if id.AgentID == "" {
			return ErrMissingAgentID
		}
		if id.AgentAliasID == "" {
			return ErrMissingAgentAlias
		}
		if id.Region == "" {
			return ErrMissingRegion
		}
		return nil
	case BackendStrands:
		if id.FunctionTarget == "" {
			return ErrMissingFunctionTarget
		}
		if id.Region == "" {
			return ErrMissingRegion
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, id.Backend)
	}
}
