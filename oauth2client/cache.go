package oauth2client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AmmannChristian/go-reqauth/httpclient"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// TokenCache returns access tokens from a TokenStore and fetches new ones
// through an Executor when the stored record is missing or expired.
//
// Refreshes are serialized per TokenKey: concurrent callers that miss on the
// same key share one token request. TokenCache is safe for concurrent use.
type TokenCache struct {
	store    TokenStore
	executor *Executor
	group    singleflight.Group
	metrics  *metrics

	logger      *zap.Logger
	now         func() time.Time
	leeway      time.Duration
	jwtFallback bool
}

// NewTokenCache creates a TokenCache over store. A nil store uses a fresh MemoryStore.
func NewTokenCache(store TokenStore, opts ...Option) (*TokenCache, error) {
	o := newOptions(opts)

	m, err := newMetrics(o.registerer)
	if err != nil {
		return nil, err
	}

	if store == nil {
		store = NewMemoryStore()
	}

	return &TokenCache{
		store:       store,
		executor:    newExecutor(o),
		metrics:     m,
		logger:      o.logger,
		now:         o.clock,
		leeway:      o.leeway,
		jwtFallback: o.jwtFallback,
	}, nil
}

// GetOAuth2Token returns an access token for grant, fetching one when the
// stored record is missing, has no expiry, or has expired.
//
// The error is non-nil only for configuration problems (ErrConfiguration),
// which are reported before any I/O. Transport failures, cancelled contexts
// and store failures are logged and yield an empty token with a nil error,
// so the caller's request proceeds unauthenticated.
func (c *TokenCache) GetOAuth2Token(ctx context.Context, grant GrantConfig, netCfg *httpclient.Config) (string, error) {
	if grant == nil {
		return "", configError("missing required OAuth2 parameters: grantType or accessTokenUrl")
	}
	if err := grant.Validate(); err != nil {
		return "", err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	key := grant.Key()
	if tok := c.lookup(ctx, key); tok != nil {
		c.metrics.observe(grant.GrantType(), resultHit)
		return tok.AccessToken, nil
	}

	v, err, _ := c.group.Do(key.String(), func() (any, error) {
		// Another flight may have stored a fresh token since the first lookup.
		if tok := c.lookup(ctx, key); tok != nil {
			c.metrics.observe(grant.GrantType(), resultHit)
			return tok.AccessToken, nil
		}
		return c.refresh(ctx, grant, netCfg)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// lookup returns the stored token when it is still valid.
func (c *TokenCache) lookup(ctx context.Context, key TokenKey) *Token {
	tok, err := c.store.GetToken(ctx, key.ServiceID, key.Account)
	if err != nil {
		c.logger.Warn("oauth2client: token store read failed",
			zap.String("token_url", key.ServiceID),
			zap.Error(err),
		)
		return nil
	}
	if !tok.ValidAt(c.now(), c.leeway) {
		return nil
	}
	return tok
}

func (c *TokenCache) refresh(ctx context.Context, grant GrantConfig, netCfg *httpclient.Config) (string, error) {
	key := grant.Key()

	tok, err := c.executor.Fetch(ctx, grant, netCfg)
	if err != nil {
		c.metrics.observe(grant.GrantType(), resultFailed)
		if errors.Is(err, ErrConfiguration) || errors.Is(err, ErrUnsupportedGrant) {
			return "", err
		}
		c.logger.Error("oauth2client: failed to get OAuth2 token",
			zap.String("grant_type", string(grant.GrantType())),
			zap.String("token_url", key.ServiceID),
			zap.Error(err),
		)
		return "", nil
	}

	now := c.now()
	switch {
	case tok.ExpiresIn > 0:
		tok.ExpiresAt = now.UnixMilli() + tok.ExpiresIn.Milliseconds()
	case c.jwtFallback:
		if exp, ok := jwtExpiry(tok.AccessToken); ok {
			tok.ExpiresAt = exp.UnixMilli()
		}
	}

	if err := c.store.SaveToken(ctx, key.ServiceID, key.Account, tok); err != nil {
		c.metrics.observe(grant.GrantType(), resultFailed)
		c.logger.Error("oauth2client: failed to save OAuth2 token",
			zap.String("grant_type", string(grant.GrantType())),
			zap.String("token_url", key.ServiceID),
			zap.Error(err),
		)
		return "", nil
	}

	c.metrics.observe(grant.GrantType(), resultFetched)
	c.logger.Info("oauth2client: obtained new access token",
		zap.String("grant_type", string(grant.GrantType())),
		zap.String("token_url", key.ServiceID),
		zap.Time("expires_at", tok.Expiry()),
	)

	return tok.AccessToken, nil
}

// Invalidate deletes the stored record for grant so the next lookup fetches a new token.
func (c *TokenCache) Invalidate(ctx context.Context, grant GrantConfig) error {
	if grant == nil {
		return configError("grant config is nil")
	}
	if err := grant.Validate(); err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	key := grant.Key()
	if err := c.store.DeleteToken(ctx, key.ServiceID, key.Account); err != nil {
		return fmt.Errorf("oauth2client: delete token: %w", err)
	}
	return nil
}

// Store returns the underlying TokenStore.
func (c *TokenCache) Store() TokenStore {
	return c.store
}

// GetOAuth2Token runs one lookup through a TokenCache over store.
// It behaves like TokenCache.GetOAuth2Token but does not de-duplicate
// concurrent refreshes across calls.
func GetOAuth2Token(ctx context.Context, grant GrantConfig, store TokenStore, netCfg *httpclient.Config, opts ...Option) (string, error) {
	cache, err := NewTokenCache(store, opts...)
	if err != nil {
		return "", err
	}
	return cache.GetOAuth2Token(ctx, grant, netCfg)
}

// jwtExpiry reads the exp claim of an access token without verifying it.
func jwtExpiry(accessToken string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
