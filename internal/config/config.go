// Package config provides application configuration management with
// multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Config file (~/.parlor/config.yaml)
//  3. Default values
//
// Main configuration categories:
//   - Agent: backend selection and per-backend targets (Bedrock agent,
//     Strands Lambda function)
//   - Cognito: identity pool used to obtain session credentials
//   - Storage: directory for persisted session data
//   - Telemetry: OTLP trace export (see telemetry.go)
//
// Error handling uses sentinel errors checked with errors.Is(); wrap with
// context using fmt.Errorf("%w: details", ErrXxx).
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrInvalidBackend indicates the agent backend is not supported.
	ErrInvalidBackend = errors.New("invalid agent backend")

	// ErrMissingAgentID indicates no Bedrock agent id is configured.
	ErrMissingAgentID = errors.New("missing Bedrock agent id")

	// ErrMissingAgentAlias indicates no Bedrock agent alias id is configured.
	ErrMissingAgentAlias = errors.New("missing Bedrock agent alias id")

	// ErrMissingFunctionARN indicates no Strands function ARN is configured.
	ErrMissingFunctionARN = errors.New("missing Strands function ARN")

	// ErrInvalidFunctionARN indicates the Strands function ARN is malformed.
	ErrInvalidFunctionARN = errors.New("invalid Strands function ARN")

	// ErrMissingRegion indicates no AWS region could be determined.
	ErrMissingRegion = errors.New("missing AWS region")

	// ErrMissingIdentityPool indicates no Cognito identity pool is configured.
	ErrMissingIdentityPool = errors.New("missing Cognito identity pool id")

	// ErrInvalidLogLevel indicates the log level is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
)

// Agent backend identifiers used in Config.Backend.
const (
	BackendBedrock = "bedrock"
	BackendStrands = "strands"
)

// Config stores application configuration.
type Config struct {
	// Agent backend selection: "bedrock" (default) or "strands".
	Backend string `mapstructure:"backend" json:"backend"`

	// AgentName overrides the display name shown for agent replies.
	// Empty selects the backend's default name.
	AgentName string `mapstructure:"agent_name" json:"agent_name"`

	// Bedrock hosted-agent configuration (used when backend is "bedrock").
	BedrockAgentID      string `mapstructure:"bedrock_agent_id" json:"bedrock_agent_id"`
	BedrockAgentAliasID string `mapstructure:"bedrock_agent_alias_id" json:"bedrock_agent_alias_id"`
	BedrockRegion       string `mapstructure:"bedrock_region" json:"bedrock_region"`

	// Strands function-agent configuration (used when backend is "strands").
	// The invocation region is derived from the ARN.
	StrandsFunctionARN string `mapstructure:"strands_function_arn" json:"strands_function_arn"`

	// Cognito identity pool supplying session credentials.
	CognitoIdentityPoolID string `mapstructure:"cognito_identity_pool_id" json:"cognito_identity_pool_id"`
	CognitoRegion         string `mapstructure:"cognito_region" json:"cognito_region"`

	// DataDir is where session state is persisted.
	DataDir string `mapstructure:"data_dir" json:"data_dir"`

	// Logging configuration.
	LogLevel string `mapstructure:"log_level" json:"log_level"`
	LogJSON  bool   `mapstructure:"log_json" json:"log_json"`

	// Telemetry configuration (see telemetry.go for type definition).
	Telemetry TelemetryConfig `mapstructure:"telemetry" json:"telemetry"`
}

// Load loads configuration.
// Priority: Environment variables > Configuration file > Default values
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".parlor")
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)
	viper.AddConfigPath(".")

	setDefaults(configDir)
	bindEnvVariables()

	if err := viper.ReadInConfig(); err != nil {
		// A missing config file is not an error, defaults apply.
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using default values",
			"search_paths", []string{configDir, "."},
			"config_name", "config.yaml")
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults(configDir string) {
	viper.SetDefault("backend", BackendBedrock)
	viper.SetDefault("bedrock_agent_alias_id", "TSTALIASID")
	viper.SetDefault("bedrock_region", "us-east-1")
	viper.SetDefault("cognito_region", "us-east-1")

	viper.SetDefault("data_dir", filepath.Join(configDir, "sessions"))

	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_json", false)

	// Telemetry defaults (disabled until an endpoint is configured)
	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.endpoint", "localhost:4318")
	viper.SetDefault("telemetry.service_name", "parlor")
	viper.SetDefault("telemetry.environment", "dev")
}

// bindEnvVariables binds environment variable overrides explicitly.
func bindEnvVariables() {
	// Helper to panic on unexpected bind errors (hardcoded strings can't fail).
	// If this panics, it's a BUG in our code, not a runtime error.
	mustBind := func(key, envVar string) {
		if err := viper.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("backend", "PARLOR_BACKEND")
	mustBind("agent_name", "PARLOR_AGENT_NAME")
	mustBind("bedrock_agent_id", "PARLOR_BEDROCK_AGENT_ID")
	mustBind("bedrock_agent_alias_id", "PARLOR_BEDROCK_AGENT_ALIAS_ID")
	mustBind("bedrock_region", "PARLOR_BEDROCK_REGION")
	mustBind("strands_function_arn", "PARLOR_STRANDS_FUNCTION_ARN")
	mustBind("cognito_identity_pool_id", "PARLOR_COGNITO_IDENTITY_POOL_ID")
	mustBind("cognito_region", "PARLOR_COGNITO_REGION")
	mustBind("data_dir", "PARLOR_DATA_DIR")
	mustBind("log_level", "PARLOR_LOG_LEVEL")
	mustBind("log_json", "PARLOR_LOG_JSON")
	mustBind("telemetry.enabled", "PARLOR_TELEMETRY_ENABLED")
	mustBind("telemetry.endpoint", "PARLOR_TELEMETRY_ENDPOINT")
}
