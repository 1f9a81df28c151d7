package edgegrid

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// Signer signs outgoing HTTP requests with a fixed identity.
type Signer struct {
	identity      Identity
	baseURL       string
	headersToSign string
	maxBodySize   int
	timestamp     string
	nonce         string
	logger        *zap.Logger
}

// SignerOption configures a Signer.
type SignerOption func(*Signer)

// WithBaseURL signs requests as if sent to the scheme and host of baseURL.
func WithBaseURL(baseURL string) SignerOption {
	return func(s *Signer) {
		s.baseURL = baseURL
	}
}

// WithHeadersToSign sets the canonical header string included in the signature.
func WithHeadersToSign(headers string) SignerOption {
	return func(s *Signer) {
		s.headersToSign = headers
	}
}

// WithMaxBodySize caps the number of body characters (UTF-16 code units) hashed.
// Values <= 0 select DefaultMaxBodySize.
func WithMaxBodySize(n int) SignerOption {
	return func(s *Signer) {
		s.maxBodySize = n
	}
}

// WithFixedTimestamp pins the timestamp of every signature. Intended for tests.
func WithFixedTimestamp(timestamp string) SignerOption {
	return func(s *Signer) {
		s.timestamp = timestamp
	}
}

// WithFixedNonce pins the nonce of every signature. Intended for tests.
func WithFixedNonce(nonce string) SignerOption {
	return func(s *Signer) {
		s.nonce = nonce
	}
}

// WithLogger sets a logger for signing failures.
// If not set, no logging will occur.
func WithLogger(logger *zap.Logger) SignerOption {
	return func(s *Signer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLoggingEnabled enables logging using a zap production logger.
func WithLoggingEnabled() SignerOption {
	return func(s *Signer) {
		if logger, err := zap.NewProduction(); err == nil {
			s.logger = logger
		}
	}
}

// NewSigner validates id and returns a Signer.
func NewSigner(id Identity, opts ...SignerOption) (*Signer, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	s := &Signer{
		identity: id,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Material returns fresh signing material with the signer's settings applied.
func (s *Signer) Material() Material {
	m := NewMaterial()
	if s.timestamp != "" {
		m.Timestamp = s.timestamp
	}
	if s.nonce != "" {
		m.Nonce = s.nonce
	}
	m.HeadersToSign = s.headersToSign
	m.MaxBodySize = s.maxBodySize
	return m
}

// SignRequest returns the Authorization header value for req. The body is
// read and restored so req can still be sent.
func (s *Signer) SignRequest(req *http.Request) (string, error) {
	if req == nil || req.URL == nil {
		return "", fmt.Errorf("edgegrid: request has no URL")
	}

	body, err := readBody(req)
	if err != nil {
		return "", err
	}

	return Sign(s.identity, s.Material(), Request{
		Method:  req.Method,
		URL:     req.URL.String(),
		BaseURL: s.baseURL,
		Body:    body,
	})
}

// Authorize implements httpclient.Authorizer.
func (s *Signer) Authorize(req *http.Request) (string, error) {
	value, err := s.SignRequest(req)
	if err != nil {
		s.logger.Error("edgegrid: failed to sign request",
			zap.String("method", req.Method),
			zap.Error(err),
		)
		return "", err
	}
	return value, nil
}

func readBody(req *http.Request) ([]byte, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}

	if req.GetBody != nil {
		rc, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("edgegrid: get request body: %w", err)
		}
		defer rc.Close()

		body, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("edgegrid: read request body: %w", err)
		}
		return body, nil
	}

	body, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("edgegrid: read request body: %w", err)
	}
	req.Body = io.NopCloser(bytes.NewReader(body))
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(body)), nil
	}
	return body, nil
}
