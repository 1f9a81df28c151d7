package grpcclient

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"

	"github.com/AmmannChristian/go-reqauth/httpclient"
	"github.com/AmmannChristian/go-reqauth/oauth2client"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
)

// Builder provides a fluent interface for constructing gRPC client connections
// with optional OAuth2 bearer authentication and TLS/mTLS support.
type Builder struct {
	address string

	// OAuth2 configuration
	grant      oauth2client.GrantConfig
	cache      *oauth2client.TokenCache
	tokenNet   *httpclient.Config
	cacheStore oauth2client.TokenStore

	// TLS configuration
	tlsOptions *httpclient.TLSOptions
	plaintext  bool

	logger *zap.Logger

	// Additional dial options
	dialOpts []grpc.DialOption
}

// NewBuilder creates a new gRPC client builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// WithAddress sets the server address (e.g., "server.example.com:9090").
func (b *Builder) WithAddress(address string) *Builder {
	b.address = address
	return b
}

// WithOAuth2 attaches a bearer token obtained with grant to every call.
func (b *Builder) WithOAuth2(grant oauth2client.GrantConfig) *Builder {
	b.grant = grant
	return b
}

// WithTokenCache shares an existing cache instead of creating one per connection.
func (b *Builder) WithTokenCache(cache *oauth2client.TokenCache) *Builder {
	b.cache = cache
	return b
}

// WithTokenStore sets the store of the cache created by Build.
// Ignored when WithTokenCache is used.
func (b *Builder) WithTokenStore(store oauth2client.TokenStore) *Builder {
	b.cacheStore = store
	return b
}

// WithTokenNetwork sets the proxy and TLS settings used to reach the token endpoint.
func (b *Builder) WithTokenNetwork(cfg *httpclient.Config) *Builder {
	b.tokenNet = cfg
	return b
}

// WithTLS sets the TLS options of the gRPC connection itself.
func (b *Builder) WithTLS(opts *httpclient.TLSOptions) *Builder {
	b.tlsOptions = opts
	b.plaintext = false
	return b
}

// WithInsecure disables transport security. Bearer tokens are then sent in plaintext.
func (b *Builder) WithInsecure() *Builder {
	b.plaintext = true
	b.tlsOptions = nil
	return b
}

// WithLogger sets the logger passed to the token cache created by Build.
func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	b.logger = logger
	return b
}

// WithDialOptions adds custom gRPC dial options.
// These options are applied after OAuth2 and TLS options.
func (b *Builder) WithDialOptions(opts ...grpc.DialOption) *Builder {
	b.dialOpts = append(b.dialOpts, opts...)
	return b
}

// Build constructs the gRPC client connection with the configured options.
// The grant is validated here; tokens are fetched lazily on the first call.
func (b *Builder) Build(ctx context.Context) (*grpc.ClientConn, error) {
	if b.address == "" {
		return nil, errors.New("grpcclient: server address is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("grpcclient: %w", err)
	}

	var opts []grpc.DialOption

	if b.grant != nil {
		if err := b.grant.Validate(); err != nil {
			return nil, fmt.Errorf("grpcclient: %w", err)
		}

		cache, err := b.tokenCache()
		if err != nil {
			return nil, err
		}

		opts = append(opts,
			grpc.WithUnaryInterceptor(cache.UnaryClientInterceptor(b.grant, b.tokenNet)),
			grpc.WithStreamInterceptor(cache.StreamClientInterceptor(b.grant, b.tokenNet)),
		)
	}

	creds, err := b.transportCredentials()
	if err != nil {
		return nil, err
	}
	opts = append(opts, grpc.WithTransportCredentials(creds))

	opts = append(opts, b.dialOpts...)

	conn, err := grpc.NewClient(b.address, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpcclient: dial failed: %w", err)
	}

	return conn, nil
}

func (b *Builder) tokenCache() (*oauth2client.TokenCache, error) {
	if b.cache != nil {
		return b.cache, nil
	}

	var opts []oauth2client.Option
	if b.logger != nil {
		opts = append(opts, oauth2client.WithLogger(b.logger))
	}

	cache, err := oauth2client.NewTokenCache(b.cacheStore, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpcclient: token cache: %w", err)
	}
	return cache, nil
}

func (b *Builder) transportCredentials() (credentials.TransportCredentials, error) {
	if b.plaintext {
		return insecure.NewCredentials(), nil
	}

	if b.tlsOptions == nil {
		// Default to TLS with system roots to avoid accidental plaintext connections.
		return credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12}), nil
	}

	tlsConfig, err := b.tlsOptions.TLSConfig()
	if err != nil {
		return nil, fmt.Errorf("grpcclient: TLS config failed: %w", err)
	}
	return credentials.NewTLS(tlsConfig), nil
}
