package auth

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentity"

	"github.com/parlorchat/parlor/internal/log"
)

// cognitoAPI is the slice of the Cognito Identity client this package uses.
type cognitoAPI interface {
	GetId(ctx context.Context, params *cognitoidentity.GetIdInput, optFns ...func(*cognitoidentity.Options)) (*cognitoidentity.GetIdOutput, error)
	GetCredentialsForIdentity(ctx context.Context, params *cognitoidentity.GetCredentialsForIdentityInput, optFns ...func(*cognitoidentity.Options)) (*cognitoidentity.GetCredentialsForIdentityOutput, error)
}

// Cognito exchanges an identity-pool identity for ephemeral AWS
// credentials. When the user pool sign-in produced an ID token, it is
// passed through Logins so the identity is authenticated; with no logins
// the pool's unauthenticated role applies.
//
// Safe for concurrent use.
type Cognito struct {
	api            cognitoAPI
	identityPoolID string
	logins         map[string]string
	logger         log.Logger

	mu         sync.Mutex
	identityID string
	signedOut  bool
}

// NewCognito creates a Cognito provider for the given identity pool.
// logins maps user-pool provider names to ID tokens and may be nil.
func NewCognito(region, identityPoolID string, logins map[string]string, logger log.Logger) *Cognito {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Cognito{
		api:            cognitoidentity.New(cognitoidentity.Options{Region: region}),
		identityPoolID: identityPoolID,
		logins:         logins,
		logger:         logger,
	}
}

// FetchSessionCredentials implements Provider. The resolved identity id is
// cached; credentials themselves are not. Callers wrap this provider in a
// credentials cache that honors the returned expiry.
func (c *Cognito) FetchSessionCredentials(ctx context.Context) (aws.Credentials, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.signedOut {
		return aws.Credentials{}, ErrNotSignedIn
	}

	if c.identityID == "" {
		out, err := c.api.GetId(ctx, &cognitoidentity.GetIdInput{
			IdentityPoolId: aws.String(c.identityPoolID),
			Logins:         c.logins,
		})
		if err != nil {
			return aws.Credentials{}, fmt.Errorf("resolving cognito identity: %w", err)
		}
		c.identityID = aws.ToString(out.IdentityId)
		c.logger.Debug("resolved cognito identity", "identity_id", c.identityID)
	}

	out, err := c.api.GetCredentialsForIdentity(ctx, &cognitoidentity.GetCredentialsForIdentityInput{
		IdentityId: aws.String(c.identityID),
		Logins:     c.logins,
	})
	if err != nil {
		return aws.Credentials{}, fmt.Errorf("fetching session credentials: %w", err)
	}
	if out.Credentials == nil {
		return aws.Credentials{}, fmt.Errorf("fetching session credentials: empty response")
	}

	creds := aws.Credentials{
		AccessKeyID:     aws.ToString(out.Credentials.AccessKeyId),
		SecretAccessKey: aws.ToString(out.Credentials.SecretKey),
		SessionToken:    aws.ToString(out.Credentials.SessionToken),
		Source:          "CognitoIdentity",
	}
	if out.Credentials.Expiration != nil {
		creds.CanExpire = true
		creds.Expires = *out.Credentials.Expiration
	}
	return creds, nil
}

// SignOut implements Provider. It drops the cached identity and refuses
// further credential fetches.
func (c *Cognito) SignOut(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.identityID = ""
	c.signedOut = true
	c.logger.Info("signed out")
	return nil
}

// Compile-time interface verification.
var (
	_ Provider = (*Cognito)(nil)
	_ Provider = (*Static)(nil)
)
