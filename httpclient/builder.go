package httpclient

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Config is the network configuration for one token endpoint call.
type Config struct {
	Proxy ProxySpec   `json:"proxy"`
	TLS   *TLSOptions `json:"tls,omitempty"`
}

// NewClient builds an HTTP client that honors the proxy and TLS settings in cfg.
// Clients are safe to reuse across many requests.
func NewClient(cfg Config) (*http.Client, error) {
	return NewBuilder().
		WithProxy(cfg.Proxy).
		WithTLSOptions(cfg.TLS).
		Build()
}

// Builder provides a fluent interface for constructing proxy- and TLS-aware HTTP clients.
type Builder struct {
	proxy      ProxySpec
	tlsOptions *TLSOptions

	// HTTP client configuration
	timeout         time.Duration
	baseTransport   http.RoundTripper
	followRedirects bool
	authorizer      Authorizer

	logger *zap.Logger
}

// NewBuilder creates a new HTTP client builder. No client timeout is set by default;
// deadlines come from the request context.
func NewBuilder() *Builder {
	return &Builder{
		followRedirects: true,
		logger:          zap.NewNop(),
	}
}

// WithProxy sets the proxy specification. Only ProxyModeOn with a hostname proxies traffic.
func (b *Builder) WithProxy(p ProxySpec) *Builder {
	b.proxy = p
	return b
}

// WithTLSOptions sets the TLS options for HTTPS connections. nil keeps the secure defaults.
func (b *Builder) WithTLSOptions(opts *TLSOptions) *Builder {
	b.tlsOptions = opts
	return b
}

// WithTimeout sets the request timeout for the HTTP client.
func (b *Builder) WithTimeout(timeout time.Duration) *Builder {
	b.timeout = timeout
	return b
}

// WithBaseTransport sets a custom base transport. Proxy and TLS settings are not
// applied to a custom transport.
func (b *Builder) WithBaseTransport(transport http.RoundTripper) *Builder {
	b.baseTransport = transport
	return b
}

// WithoutRedirects disables automatic redirect following.
func (b *Builder) WithoutRedirects() *Builder {
	b.followRedirects = false
	return b
}

// WithAuthorizer wraps the transport in an AuthTransport driven by a.
func (b *Builder) WithAuthorizer(a Authorizer) *Builder {
	b.authorizer = a
	return b
}

// WithLogger sets the logger used for transport construction and authorization failures.
func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	if logger != nil {
		b.logger = logger
	}
	return b
}

// Build constructs the HTTP client with the configured options.
func (b *Builder) Build() (*http.Client, error) {
	transport := b.baseTransport
	if transport == nil {
		t, err := b.buildTransport()
		if err != nil {
			return nil, err
		}
		transport = t
	}

	if b.authorizer != nil {
		authTransport := NewAuthTransport(b.authorizer, transport)
		authTransport.Logger = b.logger
		transport = authTransport
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   b.timeout,
	}

	if !b.followRedirects {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	return client, nil
}

// buildTransport derives an *http.Transport from the default one. Environment
// proxies are never consulted: only an explicit ProxySpec routes through a proxy.
func (b *Builder) buildTransport() (*http.Transport, error) {
	if err := b.proxy.Validate(); err != nil {
		return nil, err
	}

	var transport *http.Transport
	if httpTransport, ok := http.DefaultTransport.(*http.Transport); ok {
		transport = httpTransport.Clone()
	} else {
		transport = &http.Transport{
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: time.Second,
		}
	}
	transport.Proxy = nil

	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}
	if b.tlsOptions != nil {
		cfg, err := b.tlsOptions.TLSConfig()
		if err != nil {
			return nil, fmt.Errorf("httpclient: TLS config failed: %w", err)
		}
		tlsConfig = cfg
	}
	transport.TLSClientConfig = tlsConfig

	if !b.proxy.Enabled() || b.proxy.bypassAll() {
		return transport, nil
	}

	if b.proxy.protocol().IsSOCKS() {
		forward := &net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}
		dialer, err := b.proxy.socksDialer(forward)
		if err != nil {
			return nil, err
		}
		transport.DialContext = contextDial(dialer)
	} else {
		transport.Proxy = b.proxy.proxyFunc()
	}

	b.logger.Debug("httpclient: proxy configured",
		zap.String("protocol", string(b.proxy.protocol())),
		zap.String("host", b.proxy.URL().Host),
		zap.Strings("bypass", b.proxy.Bypass),
	)

	return transport, nil
}
