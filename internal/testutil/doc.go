// Package testutil provides test helpers for go-reqauth packages.
//
// It includes utilities to spin up IPv4-only local HTTP servers (avoiding IPv6 in sandboxes),
// mock OAuth2 token endpoints without real sockets, generate self-signed certificates for TLS/mTLS tests,
// and mint JWT access tokens with chosen expiry claims.
//
// # Utilities
//
//   - NewLocalHTTPServer: start httptest server bound to 127.0.0.1 (closed via tb.Cleanup)
//   - MockOAuth2Server, StaticJSONResponse, StatusResponse: stub token endpoints and capture requests
//   - RoundTripFunc: inline http.RoundTripper implementations
//   - WriteTestCACert / WriteTestCertAndKey: generate temporary CA and leaf certificates for tests
//   - CreateSignedToken / CreateTokenExpiringAt: JWT access tokens for expiry tests
//
// The mock endpoint never mutates http.DefaultClient or http.DefaultTransport;
// use MockOAuth2Server.Client or MockOAuth2Server.Ctx instead.
package testutil
