package httpclient

import (
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// ErrNilAuthorizer is returned by AuthTransport when no Authorizer is configured.
var ErrNilAuthorizer = errors.New("httpclient: Authorizer is nil")

// Authorizer computes the Authorization header value for an outgoing request.
// An empty value leaves the request unauthenticated; an error aborts it.
type Authorizer interface {
	Authorize(req *http.Request) (string, error)
}

// AuthorizerFunc adapts a function to the Authorizer interface.
type AuthorizerFunc func(req *http.Request) (string, error)

// Authorize calls f(req).
func (f AuthorizerFunc) Authorize(req *http.Request) (string, error) {
	return f(req)
}

// AuthTransport is an http.RoundTripper that sets the Authorization header
// computed by an Authorizer on every outgoing request.
//
// The Authorizer sees a clone of the request, so it may read and replace the
// clone's body. Authorization failures abort the request; they are not retried.
type AuthTransport struct {
	// Base is the underlying HTTP transport. If nil, http.DefaultTransport is used.
	Base http.RoundTripper

	Authorizer Authorizer

	// Logger receives authorization failures. If nil, nothing is logged.
	Logger *zap.Logger
}

// NewAuthTransport creates a new AuthTransport.
// The base transport defaults to http.DefaultTransport if not specified.
func NewAuthTransport(a Authorizer, base http.RoundTripper) *AuthTransport {
	if base == nil {
		base = http.DefaultTransport
	}

	return &AuthTransport{
		Base:       base,
		Authorizer: a,
	}
}

// RoundTrip implements http.RoundTripper.
func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Authorizer == nil {
		closeBody(req)
		return nil, ErrNilAuthorizer
	}

	// Clone the request to avoid modifying the original
	reqClone := req.Clone(req.Context())

	value, err := t.Authorizer.Authorize(reqClone)
	if err != nil {
		if t.Logger != nil {
			t.Logger.Error("httpclient: request authorization failed",
				zap.String("method", req.Method),
				zap.String("host", req.URL.Host),
				zap.Error(err),
			)
		}
		closeBody(req)
		return nil, fmt.Errorf("httpclient: authorize request: %w", err)
	}

	if value != "" {
		reqClone.Header.Set("Authorization", value)
	}

	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	return base.RoundTrip(reqClone)
}

func closeBody(req *http.Request) {
	if req.Body != nil {
		_ = req.Body.Close()
	}
}
