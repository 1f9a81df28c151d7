package oauth2client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/AmmannChristian/go-reqauth/httpclient"
	"golang.org/x/oauth2"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// Authorizer returns an httpclient.Authorizer that yields "Bearer <token>" for
// grant. When no token can be acquired the request is sent without an
// Authorization header; configuration errors abort it.
//
// Usage:
//
//	client, err := httpclient.NewBuilder().
//	    WithAuthorizer(cache.Authorizer(grant, nil)).
//	    Build()
func (c *TokenCache) Authorizer(grant GrantConfig, netCfg *httpclient.Config) httpclient.Authorizer {
	return httpclient.AuthorizerFunc(func(req *http.Request) (string, error) {
		token, err := c.GetOAuth2Token(req.Context(), grant, netCfg)
		if err != nil || token == "" {
			return "", err
		}
		return "Bearer " + token, nil
	})
}

// TokenSource adapts the cache to oauth2.TokenSource. Each Token call goes
// through GetOAuth2Token, so the source needs no extra caching.
func (c *TokenCache) TokenSource(ctx context.Context, grant GrantConfig, netCfg *httpclient.Config) oauth2.TokenSource {
	if ctx == nil {
		ctx = context.Background()
	}
	return &cacheTokenSource{ctx: ctx, cache: c, grant: grant, netCfg: netCfg}
}

type cacheTokenSource struct {
	ctx    context.Context
	cache  *TokenCache
	grant  GrantConfig
	netCfg *httpclient.Config
}

func (s *cacheTokenSource) Token() (*oauth2.Token, error) {
	accessToken, err := s.cache.GetOAuth2Token(s.ctx, s.grant, s.netCfg)
	if err != nil {
		return nil, err
	}
	if accessToken == "" {
		return nil, fmt.Errorf("%w for %s", ErrTokenUnavailable, s.grant.Key())
	}

	tok := &oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}

	key := s.grant.Key()
	if stored, err := s.cache.store.GetToken(s.ctx, key.ServiceID, key.Account); err == nil && stored != nil && stored.AccessToken == accessToken {
		tok.Expiry = stored.Expiry()
		tok.RefreshToken = stored.RefreshToken
		if stored.TokenType != "" {
			tok.TokenType = stored.TokenType
		}
	}

	return tok, nil
}

// UnaryClientInterceptor returns a gRPC unary client interceptor that adds
// "authorization: Bearer <token>" to outgoing metadata.
//
// Token acquisition uses the RPC context. If no token can be acquired the
// call proceeds without the header; configuration errors abort it.
//
// Usage:
//
//	conn, err := grpc.NewClient(
//	    "server:9090",
//	    grpc.WithUnaryInterceptor(cache.UnaryClientInterceptor(grant, nil)),
//	)
func (c *TokenCache) UnaryClientInterceptor(grant GrantConfig, netCfg *httpclient.Config) grpc.UnaryClientInterceptor {
	return func(
		ctx context.Context,
		method string,
		req, reply interface{},
		cc *grpc.ClientConn,
		invoker grpc.UnaryInvoker,
		opts ...grpc.CallOption,
	) error {
		ctx, err := c.outgoingContext(ctx, grant, netCfg)
		if err != nil {
			return err
		}
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

// StreamClientInterceptor returns a gRPC stream client interceptor that adds
// "authorization: Bearer <token>" to outgoing metadata.
//
// Usage:
//
//	conn, err := grpc.NewClient(
//	    "server:9090",
//	    grpc.WithStreamInterceptor(cache.StreamClientInterceptor(grant, nil)),
//	)
func (c *TokenCache) StreamClientInterceptor(grant GrantConfig, netCfg *httpclient.Config) grpc.StreamClientInterceptor {
	return func(
		ctx context.Context,
		desc *grpc.StreamDesc,
		cc *grpc.ClientConn,
		method string,
		streamer grpc.Streamer,
		opts ...grpc.CallOption,
	) (grpc.ClientStream, error) {
		ctx, err := c.outgoingContext(ctx, grant, netCfg)
		if err != nil {
			return nil, err
		}
		return streamer(ctx, desc, cc, method, opts...)
	}
}

func (c *TokenCache) outgoingContext(ctx context.Context, grant GrantConfig, netCfg *httpclient.Config) (context.Context, error) {
	token, err := c.GetOAuth2Token(ctx, grant, netCfg)
	if err != nil {
		return nil, fmt.Errorf("oauth2client: failed to get token: %w", err)
	}
	if token == "" {
		return ctx, nil
	}
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token), nil
}
