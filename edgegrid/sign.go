package edgegrid

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// Scheme is the authorization scheme prefix of every EdgeGrid header.
const Scheme = "EG1-HMAC-SHA256"

// Request is the part of an HTTP request covered by the signature.
type Request struct {
	Method string

	// URL is the absolute request URL. Its path and query are always signed.
	URL string

	// BaseURL, when set, replaces the scheme and host of URL.
	BaseURL string

	Body []byte
}

// Sign computes the EdgeGrid Authorization header value for req.
// The result depends only on its arguments; a blank Timestamp or Nonce in m
// is filled with a fresh value.
func Sign(id Identity, m Material, req Request) (string, error) {
	if err := id.Validate(); err != nil {
		return "", err
	}

	if blank(m.Timestamp) || blank(m.Nonce) {
		fresh := NewMaterial()
		if blank(m.Timestamp) {
			m.Timestamp = fresh.Timestamp
		}
		if blank(m.Nonce) {
			m.Nonce = fresh.Nonce
		}
	}

	data, err := dataToSign(m, req)
	if err != nil {
		return "", err
	}

	authData := "client_token=" + id.ClientToken +
		";access_token=" + id.AccessToken +
		";timestamp=" + m.Timestamp +
		";nonce=" + m.Nonce + ";"

	signingKey := hmacSHA256([]byte(id.ClientSecret), []byte(m.Timestamp))
	signature := base64.StdEncoding.EncodeToString(hmacSHA256(signingKey, []byte(authData+data)))

	return Scheme + " " + authData + "signature=" + signature, nil
}

func dataToSign(m Material, req Request) (string, error) {
	u, err := url.Parse(req.URL)
	if err != nil {
		return "", fmt.Errorf("edgegrid: parse request URL: %w", err)
	}

	scheme, host := u.Scheme, u.Host
	if strings.TrimSpace(req.BaseURL) != "" {
		base, err := url.Parse(req.BaseURL)
		if err != nil {
			return "", fmt.Errorf("edgegrid: parse base URL: %w", err)
		}
		scheme, host = base.Scheme, base.Host
	}
	if scheme == "" || host == "" {
		return "", fmt.Errorf("edgegrid: request URL %q is not absolute", req.URL)
	}
	scheme = strings.ToLower(scheme)

	var b strings.Builder
	b.WriteString(strings.ToUpper(req.Method))
	b.WriteByte('\t')
	b.WriteString(scheme)
	b.WriteByte('\t')
	b.WriteString(canonicalHost(scheme, host))
	b.WriteByte('\t')
	b.WriteString(relativePath(u))
	b.WriteByte('\t')
	if headers := strings.TrimSpace(m.HeadersToSign); headers != "" {
		b.WriteString(headers)
	}
	b.WriteByte('\t')

	if body := truncate(normalizeBody(req.Body), m.maxBodySize()); len(body) > 0 {
		sum := sha256.Sum256(body)
		b.WriteString(base64.StdEncoding.EncodeToString(sum[:]))
	}

	return b.String(), nil
}

// canonicalHost lowercases host and drops the port when it is the scheme default.
func canonicalHost(scheme, host string) string {
	host = strings.ToLower(host)

	hostname, port, err := net.SplitHostPort(host)
	if err != nil {
		return host
	}
	if (scheme == "http" && port == "80") || (scheme == "https" && port == "443") {
		if strings.Contains(hostname, ":") {
			return "[" + hostname + "]"
		}
		return hostname
	}
	return host
}

func relativePath(u *url.URL) string {
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return path
}

func hmacSHA256(key, data []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(data)
	return mac.Sum(nil)
}
