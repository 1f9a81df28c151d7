package oauth2client

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks a grant configuration with missing required fields.
	// It is returned synchronously, before any network or store I/O.
	ErrConfiguration = errors.New("oauth2client: invalid configuration")

	// ErrUnsupportedGrant is returned for grant types other than client_credentials and password.
	ErrUnsupportedGrant = errors.New("oauth2client: unsupported grant type")

	// ErrNoAccessToken is wrapped in a TransportError when a successful token
	// response carries no access_token.
	ErrNoAccessToken = errors.New("oauth2client: token response has no access_token")

	// ErrTokenUnavailable is returned by TokenSource when no token could be acquired.
	ErrTokenUnavailable = errors.New("oauth2client: access token unavailable")
)

func configError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

func unsupportedGrant(grantType string) error {
	return fmt.Errorf("%w: %q", ErrUnsupportedGrant, grantType)
}

// TransportError reports a failure reaching the token endpoint. StatusCode and
// Body are set when the endpoint answered; Err is an *oauth2.RetrieveError for
// non-2xx responses, the network error otherwise.
type TransportError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("oauth2client: token endpoint returned status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("oauth2client: token request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
