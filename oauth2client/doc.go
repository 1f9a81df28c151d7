// Package oauth2client acquires and caches OAuth2 access tokens for the
// client_credentials and password grants.
//
// Tokens are kept in a pluggable TokenStore keyed by token URL and account
// (client ID, else username, else "default"). A stored token is reused while
// its recorded expiry lies in the future; otherwise a new one is requested
// through the proxy- and TLS-aware clients from the httpclient package.
//
// # Features
//
//   - Client credentials and password grants, credentials in a Basic header or in the form body
//   - Validated grant variants built once from loosely typed GrantSettings
//   - TokenCache with per-key single-flight refresh over any TokenStore (MemoryStore included)
//   - Unknown token response members preserved in Token.Extra across persistence
//   - Failures are logged and yield an empty token; configuration errors surface immediately
//   - Optional JWT exp fallback, expiry leeway, Prometheus counters, zap logging
//   - Adapters: httpclient.Authorizer, oauth2.TokenSource, gRPC unary and stream interceptors
//
// # Quick Start
//
//	grant, err := oauth2client.GrantSettings{
//	    GrantType:      "client_credentials",
//	    AccessTokenURL: "https://auth.example.com/oauth/v2/token",
//	    ClientID:       "client-id",
//	    ClientSecret:   "client-secret",
//	    Scope:          "openid profile",
//	}.GrantConfig()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	cache, err := oauth2client.NewTokenCache(oauth2client.NewMemoryStore(),
//	    oauth2client.WithLoggingEnabled(),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	token, err := cache.GetOAuth2Token(ctx, grant, &httpclient.Config{})
//	if err != nil {
//	    log.Fatal(err) // configuration error
//	}
//	if token == "" {
//	    // token endpoint unreachable or rejected the request; see logs
//	}
//
//	client, err := httpclient.NewBuilder().
//	    WithAuthorizer(cache.Authorizer(grant, nil)).
//	    Build()
//
// # Notes
//
//   - A stored record without expires_at is never reused.
//   - Concurrent GetOAuth2Token calls for one key share a single token request.
//     The package-level GetOAuth2Token creates a fresh cache per call and does not.
package oauth2client
