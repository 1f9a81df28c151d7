package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/http/httpproxy"
	"golang.org/x/net/proxy"
	"h12.io/socks"
)

var (
	// ErrUnsupportedProxyMode is returned for proxy modes other than off, on and system.
	ErrUnsupportedProxyMode = errors.New("httpclient: unsupported proxy mode")

	// ErrUnsupportedProxyProtocol is returned for proxy protocols outside the closed set
	// http, https, socks4 and socks5.
	ErrUnsupportedProxyProtocol = errors.New("httpclient: unsupported proxy protocol")
)

// defaultSOCKSPort is dialed when a SOCKS proxy is configured without a port.
const defaultSOCKSPort = "1080"

// ProxyMode selects whether token endpoint traffic goes through a proxy.
type ProxyMode string

const (
	ProxyModeOff    ProxyMode = "off"
	ProxyModeOn     ProxyMode = "on"
	ProxyModeSystem ProxyMode = "system"
)

// ParseProxyMode resolves a configured mode string. An empty string means off.
func ParseProxyMode(s string) (ProxyMode, error) {
	switch mode := ProxyMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case "":
		return ProxyModeOff, nil
	case ProxyModeOff, ProxyModeOn, ProxyModeSystem:
		return mode, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedProxyMode, s)
	}
}

// ProxyProtocol is the scheme used to talk to the proxy itself.
type ProxyProtocol string

const (
	ProxyHTTP   ProxyProtocol = "http"
	ProxyHTTPS  ProxyProtocol = "https"
	ProxySOCKS4 ProxyProtocol = "socks4"
	ProxySOCKS5 ProxyProtocol = "socks5"
)

// ParseProxyProtocol resolves a configured protocol string once, at config-parse time.
// An empty string defaults to http.
func ParseProxyProtocol(s string) (ProxyProtocol, error) {
	switch p := ProxyProtocol(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return ProxyHTTP, nil
	case ProxyHTTP, ProxyHTTPS, ProxySOCKS4, ProxySOCKS5:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedProxyProtocol, s)
	}
}

// IsSOCKS reports whether the protocol tunnels both HTTP and HTTPS through one SOCKS dialer.
func (p ProxyProtocol) IsSOCKS() bool {
	return p == ProxySOCKS4 || p == ProxySOCKS5
}

// ProxyAuth holds optional proxy credentials.
type ProxyAuth struct {
	Enabled  bool   `json:"enabled"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

// ProxySpec describes the proxy used to reach token endpoints.
type ProxySpec struct {
	Mode     ProxyMode     `json:"mode"`
	Protocol ProxyProtocol `json:"protocol,omitempty"`
	Hostname string        `json:"hostname,omitempty"`
	Port     int           `json:"port,omitempty"`
	Auth     ProxyAuth     `json:"auth"`

	// Bypass lists hosts that are reached directly. Entries follow NO_PROXY
	// conventions: "example.com", ".example.com", "*.example.com", "host:8080", "*".
	Bypass []string `json:"bypassProxy,omitempty"`
}

// ParseBypassList splits a bypass string on commas, semicolons and whitespace.
func ParseBypassList(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
}

// Validate checks that mode and protocol belong to their closed sets.
func (p ProxySpec) Validate() error {
	if _, err := ParseProxyMode(string(p.Mode)); err != nil {
		return err
	}
	if _, err := ParseProxyProtocol(string(p.Protocol)); err != nil {
		return err
	}
	return nil
}

// Enabled reports whether traffic should be proxied. A missing hostname silently disables the proxy.
func (p ProxySpec) Enabled() bool {
	return p.Mode == ProxyModeOn && strings.TrimSpace(p.Hostname) != ""
}

func (p ProxySpec) protocol() ProxyProtocol {
	if p.Protocol == "" {
		return ProxyHTTP
	}
	return p.Protocol
}

// URL returns the proxy address as scheme://[user:pass@]host[:port].
// Credentials are included only when auth is enabled and both fields are set.
func (p ProxySpec) URL() *url.URL {
	host := p.Hostname
	if p.Port > 0 {
		host = net.JoinHostPort(p.Hostname, strconv.Itoa(p.Port))
	}

	u := &url.URL{Scheme: string(p.protocol()), Host: host}
	if p.Auth.Enabled && p.Auth.Username != "" && p.Auth.Password != "" {
		u.User = url.UserPassword(p.Auth.Username, p.Auth.Password)
	}
	return u
}

// URI is the string form of URL.
func (p ProxySpec) URI() string {
	return p.URL().String()
}

func (p ProxySpec) noProxy() string {
	return strings.Join(p.Bypass, ",")
}

// bypassAll reports whether the bypass list contains the "*" wildcard.
func (p ProxySpec) bypassAll() bool {
	for _, entry := range p.Bypass {
		if strings.TrimSpace(entry) == "*" {
			return true
		}
	}
	return false
}

// proxyFunc routes plain http:// requests through the proxy. https:// requests
// return no proxy and are dialed directly with the TLS configuration.
func (p ProxySpec) proxyFunc() func(*http.Request) (*url.URL, error) {
	cfg := &httpproxy.Config{
		HTTPProxy: p.URI(),
		NoProxy:   p.noProxy(),
	}
	fn := cfg.ProxyFunc()

	return func(req *http.Request) (*url.URL, error) {
		// httpproxy never proxies loopback hosts; here they follow the bypass list.
		if req.URL.Scheme == "http" && isLoopback(req.URL.Hostname()) {
			if p.bypassAll() || p.bypassesLoopback(req.URL) {
				return nil, nil
			}
			return p.URL(), nil
		}
		return fn(req.URL)
	}
}

func isLoopback(host string) bool {
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// bypassesLoopback matches a loopback target against the bypass list using
// proxy.PerHost rules. Entries with a port only apply to that port.
func (p ProxySpec) bypassesLoopback(target *url.URL) bool {
	port := target.Port()
	if port == "" {
		port = "80"
	}

	perHost := proxy.NewPerHost(routeMarker(false), routeMarker(true))
	for _, entry := range p.Bypass {
		entry = strings.TrimSpace(entry)
		if host, entryPort, err := net.SplitHostPort(entry); err == nil {
			if entryPort != port {
				continue
			}
			entry = host
		}
		perHost.AddFromString(strings.ToLower(strings.Trim(entry, "[]")))
	}

	_, err := perHost.Dial("tcp", net.JoinHostPort(strings.ToLower(target.Hostname()), port))
	var route routeMarker
	return errors.As(err, &route) && bool(route)
}

// routeMarker is a proxy.Dialer that reports, as its error, which side of a
// PerHost was selected instead of dialing.
type routeMarker bool

func (r routeMarker) Dial(_, _ string) (net.Conn, error) { return nil, r }

func (r routeMarker) Error() string { return "httpclient: bypass route" }

// socksDialer builds a single dialer that serves both HTTP and HTTPS traffic.
func (p ProxySpec) socksDialer(forward proxy.Dialer) (proxy.Dialer, error) {
	u := p.URL()
	if u.Port() == "" {
		u.Host = net.JoinHostPort(p.Hostname, defaultSOCKSPort)
	}

	var dialer proxy.Dialer
	switch p.protocol() {
	case ProxySOCKS5:
		d, err := proxy.FromURL(u, forward)
		if err != nil {
			return nil, fmt.Errorf("httpclient: socks5 dialer: %w", err)
		}
		dialer = d
	case ProxySOCKS4:
		dialer = dialFunc(socks.Dial(u.String()))
	default:
		return nil, fmt.Errorf("%w: %q is not a SOCKS protocol", ErrUnsupportedProxyProtocol, p.protocol())
	}

	if p.bypassAll() {
		return forward, nil
	}
	if rules := p.noProxy(); rules != "" {
		perHost := proxy.NewPerHost(dialer, forward)
		perHost.AddFromString(rules)
		dialer = perHost
	}

	return dialer, nil
}

// dialFunc adapts a plain dial function to proxy.Dialer.
type dialFunc func(network, addr string) (net.Conn, error)

func (f dialFunc) Dial(network, addr string) (net.Conn, error) {
	return f(network, addr)
}

func contextDial(d proxy.Dialer) func(ctx context.Context, network, addr string) (net.Conn, error) {
	if cd, ok := d.(proxy.ContextDialer); ok {
		return cd.DialContext
	}
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return d.Dial(network, addr)
	}
}
