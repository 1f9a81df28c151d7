package oauth2client

import (
	"strings"
)

// GrantType names an OAuth2 grant.
type GrantType string

const (
	GrantClientCredentials GrantType = "client_credentials"
	GrantPassword          GrantType = "password"
)

// CredentialsPlacement selects where client credentials travel in a token request.
type CredentialsPlacement string

const (
	// PlaceInHeader sends "Authorization: Basic base64(client_id:client_secret)".
	PlaceInHeader CredentialsPlacement = "header"
	// PlaceInBody sends client_id and client_secret as form fields.
	PlaceInBody CredentialsPlacement = "body"
)

// defaultAccount keys tokens for configurations without client ID or username.
const defaultAccount = "default"

// CommonConfig holds the fields shared by every grant.
type CommonConfig struct {
	AccessTokenURL       string
	ClientID             string
	ClientSecret         string
	Scope                string
	CredentialsPlacement CredentialsPlacement
}

func (c CommonConfig) placement() CredentialsPlacement {
	if c.CredentialsPlacement == "" {
		return PlaceInHeader
	}
	return c.CredentialsPlacement
}

// GrantConfig is a validated grant configuration. The only implementations are
// *ClientCredentialsConfig and *PasswordConfig.
type GrantConfig interface {
	GrantType() GrantType
	Common() CommonConfig
	Key() TokenKey
	Validate() error

	isGrantConfig()
}

// ClientCredentialsConfig configures the client_credentials grant.
type ClientCredentialsConfig struct {
	CommonConfig
}

func (*ClientCredentialsConfig) GrantType() GrantType { return GrantClientCredentials }
func (c *ClientCredentialsConfig) Common() CommonConfig {
	return c.CommonConfig
}
func (*ClientCredentialsConfig) isGrantConfig() {}

// Key returns the store key: the token URL and the client ID.
func (c *ClientCredentialsConfig) Key() TokenKey {
	return newTokenKey(c.AccessTokenURL, c.ClientID, "")
}

// Validate requires the token URL and the client ID.
func (c *ClientCredentialsConfig) Validate() error {
	if c == nil {
		return configError("client_credentials config is nil")
	}
	if err := c.validatePlacement(); err != nil {
		return err
	}
	if strings.TrimSpace(c.AccessTokenURL) == "" {
		return configError("client_credentials grant requires accessTokenUrl")
	}
	if c.ClientID == "" {
		return configError("client_credentials grant requires clientId")
	}
	return nil
}

// PasswordConfig configures the resource owner password grant.
// Client authentication is attached only when ClientID is set.
type PasswordConfig struct {
	CommonConfig
	Username string
	Password string
}

func (*PasswordConfig) GrantType() GrantType { return GrantPassword }
func (c *PasswordConfig) Common() CommonConfig {
	return c.CommonConfig
}
func (*PasswordConfig) isGrantConfig() {}

// Key returns the store key: the token URL and the client ID, or the username
// when no client ID is configured.
func (c *PasswordConfig) Key() TokenKey {
	return newTokenKey(c.AccessTokenURL, c.ClientID, c.Username)
}

// Validate requires the token URL, the username and the password.
func (c *PasswordConfig) Validate() error {
	if c == nil {
		return configError("password config is nil")
	}
	if err := c.validatePlacement(); err != nil {
		return err
	}
	if strings.TrimSpace(c.AccessTokenURL) == "" {
		return configError("password grant requires accessTokenUrl")
	}
	if c.Username == "" || c.Password == "" {
		return configError("password grant requires username and password")
	}
	return nil
}

func (c CommonConfig) validatePlacement() error {
	switch c.CredentialsPlacement {
	case "", PlaceInHeader, PlaceInBody:
		return nil
	default:
		return configError("unknown credentials placement %q", c.CredentialsPlacement)
	}
}

// GrantSettings is the loosely typed grant configuration as stored by callers.
// GrantConfig converts it once into a validated variant.
type GrantSettings struct {
	GrantType            string `json:"grantType"`
	AccessTokenURL       string `json:"accessTokenUrl"`
	ClientID             string `json:"clientId,omitempty"`
	ClientSecret         string `json:"clientSecret,omitempty"`
	Username             string `json:"username,omitempty"`
	Password             string `json:"password,omitempty"`
	Scope                string `json:"scope,omitempty"`
	CredentialsPlacement string `json:"credentialsPlacement,omitempty"`
}

// GrantConfig validates the settings and returns the matching grant variant.
// A missing grant type or token URL is an ErrConfiguration; an unknown grant
// type is an ErrUnsupportedGrant.
func (s GrantSettings) GrantConfig() (GrantConfig, error) {
	grantType := strings.TrimSpace(s.GrantType)
	if grantType == "" || strings.TrimSpace(s.AccessTokenURL) == "" {
		return nil, configError("missing required OAuth2 parameters: grantType or accessTokenUrl")
	}

	common := CommonConfig{
		AccessTokenURL:       s.AccessTokenURL,
		ClientID:             s.ClientID,
		ClientSecret:         s.ClientSecret,
		Scope:                s.Scope,
		CredentialsPlacement: CredentialsPlacement(strings.ToLower(strings.TrimSpace(s.CredentialsPlacement))),
	}

	var cfg GrantConfig
	switch GrantType(grantType) {
	case GrantClientCredentials:
		cfg = &ClientCredentialsConfig{CommonConfig: common}
	case GrantPassword:
		cfg = &PasswordConfig{CommonConfig: common, Username: s.Username, Password: s.Password}
	default:
		return nil, unsupportedGrant(grantType)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
