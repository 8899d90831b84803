package agent

import (
	"context"
	"fmt"
	"iter"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/parlorchat/parlor/internal/log"
)

// Invoker is the normalized invocation contract both backend variants
// implement: issue one request for a session and return the incremental
// response sequence.
//
// The returned iterator is finite and must be consumed in order; it yields
// a non-nil error at most once, as its final element.
type Invoker interface {
	Invoke(ctx context.Context, sessionID, inputText string) (iter.Seq2[Event, error], error)
}

// Client owns the backend handle. The handle is built lazily by Configure
// from the active identity and a credentials source, and rebuilt only when
// Configure is called again; the client does not poll for config changes.
//
// Client is safe for concurrent use.
type Client struct {
	logger log.Logger

	mu       sync.Mutex
	invoker  Invoker
	identity Identity
}

// NewClient creates an unconfigured Client. Ready reports false and Invoke
// returns ErrNotReady until Configure succeeds.
func NewClient(logger log.Logger) *Client {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Client{logger: logger}
}

// Configure validates the identity and constructs the backend handle from
// the given credentials source. The source is wrapped in a credentials
// cache, so ephemeral credentials are fetched fresh on first use and
// refreshed on expiry rather than captured at configuration time.
func (c *Client) Configure(identity Identity, creds aws.CredentialsProvider) error {
	if err := identity.Validate(); err != nil {
		return fmt.Errorf("configuring agent client: %w", err)
	}

	cached := aws.NewCredentialsCache(creds)

	var invoker Invoker
	switch identity.Backend {
	case BackendBedrock:
		invoker = NewBedrockInvoker(identity, cached)
	case BackendStrands:
		invoker = NewStrandsInvoker(identity, cached)
	default:
		// Unreachable after Validate; kept for exhaustiveness.
		return fmt.Errorf("configuring agent client: %w: %q", ErrUnknownBackend, identity.Backend)
	}

	c.mu.Lock()
	c.invoker = invoker
	c.identity = identity
	c.mu.Unlock()

	c.logger.Info("agent client configured",
		"backend", identity.Backend, "agent", identity.DisplayName(), "region", identity.Region)
	return nil
}

// Ready reports whether the backend handle exists.
func (c *Client) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.invoker != nil
}

// Identity returns the active identity. ok is false until configured.
func (c *Client) Identity() (Identity, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.identity, c.invoker != nil
}

// Invoke delegates to the configured backend. Calling it before Configure
// is a precondition violation reported as ErrNotReady; the remote call is
// not attempted.
func (c *Client) Invoke(ctx context.Context, sessionID, inputText string) (iter.Seq2[Event, error], error) {
	c.mu.Lock()
	invoker := c.invoker
	c.mu.Unlock()

	if invoker == nil {
		return nil, ErrNotReady
	}
	return invoker.Invoke(ctx, sessionID, inputText)
}
