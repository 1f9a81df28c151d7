package edgegrid

// Settings mirrors the EdgeGrid section of a request's auth configuration.
type Settings struct {
	AccessToken   string `json:"accessToken"`
	ClientToken   string `json:"clientToken"`
	ClientSecret  string `json:"clientSecret"`
	BaseURL       string `json:"baseURL,omitzero"`
	HeadersToSign string `json:"headersToSign,omitzero"`
	MaxBodySize   int    `json:"maxBodySize,omitzero"`
}

// Signer validates the credentials and returns a Signer carrying the
// remaining settings. opts are applied after the settings.
func (s Settings) Signer(opts ...SignerOption) (*Signer, error) {
	id := Identity{
		ClientToken:  s.ClientToken,
		AccessToken:  s.AccessToken,
		ClientSecret: s.ClientSecret,
	}

	all := []SignerOption{
		WithBaseURL(s.BaseURL),
		WithHeadersToSign(s.HeadersToSign),
		WithMaxBodySize(s.MaxBodySize),
	}
	return NewSigner(id, append(all, opts...)...)
}
