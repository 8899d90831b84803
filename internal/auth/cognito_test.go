package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentity"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentity/types"
	"go.uber.org/goleak"

	"github.com/parlorchat/parlor/internal/log"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// mockCognitoAPI implements cognitoAPI for testing.
type mockCognitoAPI struct {
	getIDErr    error
	getCredsErr error

	getIDCalls    int
	getCredsCalls int

	expiry time.Time
}

func (m *mockCognitoAPI) GetId(ctx context.Context, params *cognitoidentity.GetIdInput, optFns ...func(*cognitoidentity.Options)) (*cognitoidentity.GetIdOutput, error) {
	m.getIDCalls++
	if m.getIDErr != nil {
		return nil, m.getIDErr
	}
	return &cognitoidentity.GetIdOutput{IdentityId: aws.String("us-east-1:identity-1")}, nil
}

func (m *mockCognitoAPI) GetCredentialsForIdentity(ctx context.Context, params *cognitoidentity.GetCredentialsForIdentityInput, optFns ...func(*cognitoidentity.Options)) (*cognitoidentity.GetCredentialsForIdentityOutput, error) {
	m.getCredsCalls++
	if m.getCredsErr != nil {
		return nil, m.getCredsErr
	}
	return &cognitoidentity.GetCredentialsForIdentityOutput{
		Credentials: &types.Credentials{
			AccessKeyId:  aws.String("AKIATEST"),
			SecretKey:    aws.String("secret"),
			SessionToken: aws.String("token"),
			Expiration:   &m.expiry,
		},
	}, nil
}

func newTestCognito(api cognitoAPI) *Cognito {
	return &Cognito{
		api:            api,
		identityPoolID: "us-east-1:pool",
		logger:         log.NewNop(),
	}
}

func TestCognitoFetchSessionCredentials(t *testing.T) {
	api := &mockCognitoAPI{expiry: time.Now().Add(time.Hour)}
	p := newTestCognito(api)

	creds, err := p.FetchSessionCredentials(context.Background())
	if err != nil {
		t.Fatalf("FetchSessionCredentials: %v", err)
	}
	if creds.AccessKeyID != "AKIATEST" || creds.SecretAccessKey != "secret" || creds.SessionToken != "token" {
		t.Errorf("credentials = %+v", creds)
	}
	if !creds.CanExpire || !creds.Expires.Equal(api.expiry) {
		t.Errorf("expiry not propagated: %+v", creds)
	}
}

func TestCognitoCachesIdentityID(t *testing.T) {
	api := &mockCognitoAPI{expiry: time.Now().Add(time.Hour)}
	p := newTestCognito(api)

	for i := 0; i < 3; i++ {
		if _, err := p.FetchSessionCredentials(context.Background()); err != nil {
			t.Fatalf("FetchSessionCredentials: %v", err)
		}
	}
	if api.getIDCalls != 1 {
		t.Errorf("GetId called %d times, want 1", api.getIDCalls)
	}
	if api.getCredsCalls != 3 {
		t.Errorf("GetCredentialsForIdentity called %d times, want 3", api.getCredsCalls)
	}
}

func TestCognitoGetIDFailure(t *testing.T) {
	boom := errors.New("pool does not exist")
	p := newTestCognito(&mockCognitoAPI{getIDErr: boom})

	if _, err := p.FetchSessionCredentials(context.Background()); !errors.Is(err, boom) {
		t.Errorf("FetchSessionCredentials = %v, want wrapped %v", err, boom)
	}
}

func TestCognitoSignOut(t *testing.T) {
	api := &mockCognitoAPI{expiry: time.Now().Add(time.Hour)}
	p := newTestCognito(api)

	if _, err := p.FetchSessionCredentials(context.Background()); err != nil {
		t.Fatalf("FetchSessionCredentials: %v", err)
	}
	if err := p.SignOut(context.Background()); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if _, err := p.FetchSessionCredentials(context.Background()); !errors.Is(err, ErrNotSignedIn) {
		t.Errorf("FetchSessionCredentials after SignOut = %v, want ErrNotSignedIn", err)
	}
}

func TestStaticProvider(t *testing.T) {
	p := &Static{Creds: aws.Credentials{AccessKeyID: "AKIASTATIC"}}

	creds, err := p.FetchSessionCredentials(context.Background())
	if err != nil || creds.AccessKeyID != "AKIASTATIC" {
		t.Errorf("FetchSessionCredentials = %+v, %v", creds, err)
	}

	if err := p.SignOut(context.Background()); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if _, err := p.FetchSessionCredentials(context.Background()); !errors.Is(err, ErrNotSignedIn) {
		t.Errorf("after SignOut = %v, want ErrNotSignedIn", err)
	}
}

func TestCredentialsProviderAdapter(t *testing.T) {
	p := &Static{Creds: aws.Credentials{AccessKeyID: "AKIASTATIC"}}
	creds, err := CredentialsProvider(p).Retrieve(context.Background())
	if err != nil || creds.AccessKeyID != "AKIASTATIC" {
		t.Errorf("Retrieve = %+v, %v", creds, err)
	}
}
