package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/parlorchat/parlor/internal/agent"
	"github.com/parlorchat/parlor/internal/auth"
	"github.com/parlorchat/parlor/internal/chat"
	"github.com/parlorchat/parlor/internal/config"
	"github.com/parlorchat/parlor/internal/log"
	"github.com/parlorchat/parlor/internal/observability"
	"github.com/parlorchat/parlor/internal/session"
	"github.com/parlorchat/parlor/internal/store"
)

// app bundles the wired application components shared by the commands.
type app struct {
	cfg    *config.Config
	logger log.Logger
	chat   *chat.Chat

	// shutdown flushes telemetry; safe to call once.
	shutdown func(context.Context) error
}

// newApp loads configuration and wires storage, credentials, the agent
// client, and the orchestrator. The returned chat is activated: the last
// session is restored or a fresh one created.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	logger := log.New(log.Config{
		Level: parseLogLevel(cfg.LogLevel),
		JSON:  cfg.LogJSON,
	})
	slog.SetDefault(logger)

	shutdown := func(context.Context) error { return nil }
	if cfg.Telemetry.Enabled {
		shutdown, err = observability.Setup(ctx, observability.Config{
			Endpoint:    cfg.Telemetry.Endpoint,
			ServiceName: cfg.Telemetry.ServiceName,
			Environment: cfg.Telemetry.Environment,
		})
		if err != nil {
			return nil, fmt.Errorf("setting up telemetry: %w", err)
		}
	}

	kv, err := store.NewFile(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening session storage: %w", err)
	}
	sessionStore := session.NewStore(kv, logger)
	sessions := session.NewManager(sessionStore, logger)

	identity, err := cfg.ActiveIdentity()
	if err != nil {
		return nil, err
	}

	provider := auth.NewCognito(cfg.CognitoRegion, cfg.CognitoIdentityPoolID, cognitoLogins(), logger)
	client := agent.NewClient(logger)
	if err := client.Configure(identity, auth.CredentialsProvider(provider)); err != nil {
		return nil, err
	}

	c := chat.New(sessions, sessionStore, client, logger)
	if err := c.Activate(); err != nil {
		return nil, err
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		chat:     c,
		shutdown: shutdown,
	}, nil
}

// cognitoLogins builds the identity pool login map from the environment.
// With no token the pool's unauthenticated role applies.
func cognitoLogins() map[string]string {
	provider := os.Getenv("PARLOR_COGNITO_PROVIDER")
	token := os.Getenv("PARLOR_COGNITO_ID_TOKEN")
	if provider == "" || token == "" {
		return nil
	}
	return map[string]string{provider: token}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
