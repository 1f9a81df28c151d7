package edgegrid

import "strings"

// Identity holds the EdgeGrid API client credentials.
type Identity struct {
	ClientToken  string `json:"clientToken"`
	AccessToken  string `json:"accessToken"`
	ClientSecret string `json:"clientSecret"`
}

// NewIdentity returns a validated Identity.
func NewIdentity(clientToken, accessToken, clientSecret string) (Identity, error) {
	id := Identity{
		ClientToken:  clientToken,
		AccessToken:  accessToken,
		ClientSecret: clientSecret,
	}
	if err := id.Validate(); err != nil {
		return Identity{}, err
	}
	return id, nil
}

// Validate checks clientToken, then accessToken, then clientSecret and
// reports the first blank one as a *SigningError.
func (id Identity) Validate() error {
	switch {
	case blank(id.ClientToken):
		return &SigningError{Field: "clientToken"}
	case blank(id.AccessToken):
		return &SigningError{Field: "accessToken"}
	case blank(id.ClientSecret):
		return &SigningError{Field: "clientSecret"}
	}
	return nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
