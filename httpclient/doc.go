// Package httpclient builds the proxy- and TLS-aware HTTP clients used to reach OAuth2 token endpoints,
// and the AuthTransport that attaches computed Authorization headers to outgoing requests.
//
// # Features
//
//   - Explicit proxy support: HTTP/HTTPS proxies for plain http:// targets, SOCKS4/SOCKS5 dialers for all traffic
//   - Bypass lists with NO_PROXY semantics ("example.com", "*.example.com", "host:8080", "*")
//   - TLS 1.2+ by default, custom CA bundles (optionally on top of system roots), PEM or PKCS#12 client certificates
//   - AuthTransport wrapping any RoundTripper with a pluggable Authorizer
//
// # Quick Start
//
//	client, err := httpclient.NewClient(httpclient.Config{
//	    Proxy: httpclient.ProxySpec{
//	        Mode:     httpclient.ProxyModeOn,
//	        Protocol: httpclient.ProxySOCKS5,
//	        Hostname: "proxy.internal",
//	        Port:     1080,
//	        Bypass:   []string{"localhost", "*.corp.example.com"},
//	    },
//	    TLS: &httpclient.TLSOptions{CAFile: "/path/to/ca.crt"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// A ProxySpec whose mode is not "on", or that has no hostname, yields a direct client.
// Environment proxy variables are never consulted. Loopback targets are proxied
// like any other host unless the bypass list names them.
package httpclient
