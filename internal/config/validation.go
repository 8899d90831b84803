package config

import (
	"fmt"
	"log/slog"
	"slices"
)

// validLogLevels are the accepted log_level values.
var validLogLevels = []string{"debug", "info", "warn", "error"}

// Validate validates configuration values.
// Returns sentinel errors that can be checked with errors.Is().
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	switch c.Backend {
	case BackendBedrock:
		if c.BedrockAgentID == "" {
			return fmt.Errorf("%w: set bedrock_agent_id in config.yaml or PARLOR_BEDROCK_AGENT_ID", ErrMissingAgentID)
		}
		if c.BedrockAgentAliasID == "" {
			return fmt.Errorf("%w: bedrock_agent_alias_id cannot be empty", ErrMissingAgentAlias)
		}
		if c.BedrockRegion == "" {
			return fmt.Errorf("%w: bedrock_region cannot be empty", ErrMissingRegion)
		}
	case BackendStrands:
		if c.StrandsFunctionARN == "" {
			return fmt.Errorf("%w: set strands_function_arn in config.yaml or PARLOR_STRANDS_FUNCTION_ARN", ErrMissingFunctionARN)
		}
		if _, err := lambdaRegion(c.StrandsFunctionARN); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: %q is not valid, must be one of: %v",
			ErrInvalidBackend, c.Backend, []string{BackendBedrock, BackendStrands})
	}

	if c.CognitoIdentityPoolID == "" {
		return fmt.Errorf("%w: set cognito_identity_pool_id in config.yaml or PARLOR_COGNITO_IDENTITY_POOL_ID", ErrMissingIdentityPool)
	}
	if c.CognitoRegion == "" {
		return fmt.Errorf("%w: cognito_region cannot be empty", ErrMissingRegion)
	}

	if !slices.Contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("%w: %q is not valid, must be one of: %v",
			ErrInvalidLogLevel, c.LogLevel, validLogLevels)
	}

	if c.Telemetry.Enabled && c.Telemetry.Endpoint == "" {
		slog.Warn("telemetry enabled without an endpoint, traces will not be exported")
	}

	return nil
}
