package edgegrid

import (
	"net/http"

	"github.com/AmmannChristian/go-reqauth/httpclient"
)

// NewTransport returns a RoundTripper that signs every request with s before
// passing it to base. A request that cannot be signed is not sent.
func NewTransport(s *Signer, base http.RoundTripper) *httpclient.AuthTransport {
	if s == nil {
		return httpclient.NewAuthTransport(nil, base)
	}

	t := httpclient.NewAuthTransport(s, base)
	t.Logger = s.logger
	return t
}
