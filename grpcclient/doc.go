// Package grpcclient provides a fluent builder for secure gRPC client connections with optional
// OAuth2 bearer authentication.
//
// It defaults to TLS 1.2+ using system roots to avoid accidental plaintext connections. Optional
// methods add OAuth2 interceptors backed by an oauth2client.TokenCache, custom CA or mTLS
// credentials, and extra dial options.
//
// # Features
//
//   - Fluent builder for gRPC clients
//   - Client credentials and password grants via oauth2client, tokens fetched lazily and cached
//   - Proxy and TLS settings for the token endpoint via WithTokenNetwork
//   - Secure-by-default TLS; optional custom CA, PEM or PKCS#12 client certificates
//   - Additional dial options via WithDialOptions
//
// # Quick Start
//
//	conn, err := grpcclient.NewBuilder().
//	    WithAddress("server.example.com:9090").
//	    WithOAuth2(&oauth2client.ClientCredentialsConfig{CommonConfig: oauth2client.CommonConfig{
//	        AccessTokenURL: "https://auth.example.com/oauth/v2/token",
//	        ClientID:       "client-id",
//	        ClientSecret:   "client-secret",
//	        Scope:          "openid profile",
//	    }}).
//	    WithTLS(&httpclient.TLSOptions{CAFile: "/path/to/ca.crt", ServerName: "server.example.com"}).
//	    Build(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conn.Close()
//
//	client := pb.NewYourServiceClient(conn)
//
// # TLS Behavior
//
// TLS is enabled by default with system CAs and TLS 1.2 minimum. WithTLS accepts the same
// httpclient.TLSOptions used for token endpoints; a client certificate and key must be provided
// together. WithInsecure is meant for local testing only.
package grpcclient
