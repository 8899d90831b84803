// Package auth is the boundary to the externally-owned identity provider.
//
// The core only requires two operations: fetch short-lived session
// credentials and sign out. The [Provider] port expresses that contract;
// [Cognito] implements it against an Amazon Cognito identity pool, and
// [Static] serves tests and local development.
package auth

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
)

// ErrNotSignedIn indicates credentials were requested after SignOut without
// a new sign-in.
var ErrNotSignedIn = errors.New("not signed in")

// Provider supplies ephemeral session credentials for backend calls.
type Provider interface {
	// FetchSessionCredentials returns credentials with their expiry set.
	FetchSessionCredentials(ctx context.Context) (aws.Credentials, error)

	// SignOut invalidates the provider's session state.
	SignOut(ctx context.Context) error
}

// CredentialsProvider adapts a Provider to the SDK's credentials interface
// so service clients can consume it (typically wrapped in a credentials
// cache by the agent client).
func CredentialsProvider(p Provider) aws.CredentialsProvider {
	return aws.CredentialsProviderFunc(p.FetchSessionCredentials)
}

// Static is a Provider with fixed credentials. Test and development use.
type Static struct {
	Creds     aws.Credentials
	signedOut bool
}

// FetchSessionCredentials implements Provider.
func (s *Static) FetchSessionCredentials(context.Context) (aws.Credentials, error) {
	if s.signedOut {
		return aws.Credentials{}, ErrNotSignedIn
	}
	return s.Creds, nil
}

// SignOut implements Provider.
func (s *Static) SignOut(context.Context) error {
	s.signedOut = true
	return nil
}
