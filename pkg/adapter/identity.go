package adapter

import (
	"context"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/oauth2/google"

	"github.com/newsverify/adkbridge/pkg/model"
)

// CloudPlatformScope is the only OAuth scope the bridge requests.
const CloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// TokenIssuer exchanges a long-lived service identity for a short-lived
// bearer credential.
type TokenIssuer interface {
	Issue(ctx context.Context) (*model.Credential, error)
}

// GoogleIdentity issues bearer tokens from a service account key file.
// The file is re-read on every exchange so a rotated key takes effect on
// the next refresh cycle.
type GoogleIdentity struct {
	keyFile string
	scopes  []string
}

type GoogleIdentityOption func(*GoogleIdentity)

// WithScopes overrides the default cloud-platform scope set.
func WithScopes(scopes ...string) GoogleIdentityOption {
	return func(x *GoogleIdentity) {
		x.scopes = scopes
	}
}

// NewGoogleIdentity creates a token issuer backed by the given service
// account key file.
func NewGoogleIdentity(keyFile string, opts ...GoogleIdentityOption) *GoogleIdentity {
	x := &GoogleIdentity{
		keyFile: keyFile,
		scopes:  []string{CloudPlatformScope},
	}

	for _, opt := range opts {
		opt(x)
	}

	return x
}

// KeyFile returns the path of the service account key file.
func (x *GoogleIdentity) KeyFile() string {
	return x.keyFile
}

// Issue performs one credential exchange against the Google identity
// service and returns the new token with its absolute expiry.
func (x *GoogleIdentity) Issue(ctx context.Context) (*model.Credential, error) {
	data, err := os.ReadFile(x.keyFile)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read service account key file", goerr.V("path", x.keyFile))
	}

	creds, err := google.CredentialsFromJSON(ctx, data, x.scopes...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse service account credentials", goerr.V("path", x.keyFile))
	}

	tok, err := creds.TokenSource.Token()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to exchange service account credentials for token")
	}

	return &model.Credential{
		Token:  tok.AccessToken,
		Expiry: tok.Expiry,
	}, nil
}
