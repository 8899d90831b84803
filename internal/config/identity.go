package config

import (
	"fmt"
	"strings"

	"github.com/parlorchat/parlor/internal/agent"
)

// ActiveIdentity resolves the configured backend into an agent identity.
// The configuration must have passed Validate.
func (c *Config) ActiveIdentity() (agent.Identity, error) {
	switch c.Backend {
	case BackendBedrock:
		return agent.Identity{
			Backend:      agent.BackendBedrock,
			Name:         c.AgentName,
			AgentID:      c.BedrockAgentID,
			AgentAliasID: c.BedrockAgentAliasID,
			Region:       c.BedrockRegion,
		}, nil
	case BackendStrands:
		region, err := lambdaRegion(c.StrandsFunctionARN)
		if err != nil {
			return agent.Identity{}, err
		}
		return agent.Identity{
			Backend:        agent.BackendStrands,
			Name:           c.AgentName,
			FunctionTarget: c.StrandsFunctionARN,
			Region:         region,
		}, nil
	default:
		return agent.Identity{}, fmt.Errorf("%w: %q", ErrInvalidBackend, c.Backend)
	}
}

// lambdaRegion extracts the region segment from a Lambda function ARN,
// arn:<partition>:lambda:<region>:<account>:function:<name>.
func lambdaRegion(arn string) (string, error) {
	parts := strings.Split(arn, ":")
	if len(parts) < 7 || parts[0] != "arn" || parts[2] != "lambda" || parts[5] != "function" {
		return "", fmt.Errorf("%w: %q is not a Lambda function ARN", ErrInvalidFunctionARN, arn)
	}
	region := parts[3]
	if region == "" {
		return "", fmt.Errorf("%w: %q has no region segment", ErrInvalidFunctionARN, arn)
	}
	return region, nil
}
