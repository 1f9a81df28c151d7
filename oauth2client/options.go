package oauth2client

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

type options struct {
	logger      *zap.Logger
	httpClient  *http.Client
	clock       func() time.Time
	leeway      time.Duration
	jwtFallback bool
	registerer  prometheus.Registerer
}

func newOptions(opts []Option) options {
	o := options{
		logger: zap.NewNop(),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Option is a functional option for configuring a TokenCache or an Executor.
type Option func(*options)

// WithLogger sets a custom logger for token acquisition events.
// If not set, no logging will occur.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithLoggingEnabled enables logging using a zap production logger.
func WithLoggingEnabled() Option {
	return func(o *options) {
		if logger, err := zap.NewProduction(); err == nil {
			o.logger = logger
		}
	}
}

// WithHTTPClient pins the client used for token requests. Proxy and TLS
// settings passed per call are ignored when a client is pinned.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.clock = now
		}
	}
}

// WithExpiryLeeway treats tokens as expired d before their recorded expiry.
// The default is zero.
func WithExpiryLeeway(d time.Duration) Option {
	return func(o *options) {
		o.leeway = d
	}
}

// WithJWTExpiryFallback derives ExpiresAt from the access token's exp claim
// when the token response carries no expires_in. The claim is read without
// verifying the signature.
func WithJWTExpiryFallback() Option {
	return func(o *options) {
		o.jwtFallback = true
	}
}

// WithMetricsRegisterer registers the token request counter with reg.
func WithMetricsRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}
