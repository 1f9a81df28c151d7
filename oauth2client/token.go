package oauth2client

import (
	"bytes"
	"fmt"
	"maps"
	"math"
	"net/url"
	"strconv"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// TokenKey identifies one live token record in a TokenStore.
type TokenKey struct {
	// ServiceID is the token endpoint URL.
	ServiceID string
	// Account is the client ID, else the username, else "default".
	Account string
}

func newTokenKey(serviceID, clientID, username string) TokenKey {
	account := clientID
	if account == "" {
		account = username
	}
	if account == "" {
		account = defaultAccount
	}
	return TokenKey{ServiceID: serviceID, Account: account}
}

func (k TokenKey) String() string {
	return k.Account + "@" + k.ServiceID
}

// Token is a token endpoint response plus its derived absolute expiry.
// Members the endpoint sent that Token does not model are kept in Extra and
// written back on marshal, so a stored record round-trips unchanged.
type Token struct {
	AccessToken  string  `json:"access_token"`
	TokenType    string  `json:"token_type,omitzero"`
	RefreshToken string  `json:"refresh_token,omitzero"`
	Scope        string  `json:"scope,omitzero"`
	ExpiresIn    Seconds `json:"expires_in,omitzero"`

	// ExpiresAt is the absolute expiry in Unix milliseconds; zero means unknown.
	ExpiresAt int64 `json:"expires_at,omitzero"`

	Extra map[string]jsontext.Value `json:",unknown"`
}

// Expiry returns ExpiresAt as a time, or the zero time when unknown.
func (t *Token) Expiry() time.Time {
	if t == nil || t.ExpiresAt == 0 {
		return time.Time{}
	}
	return time.UnixMilli(t.ExpiresAt)
}

// ValidAt reports whether the token has an access token and a known expiry after now+leeway.
// Tokens without ExpiresAt are never valid.
func (t *Token) ValidAt(now time.Time, leeway time.Duration) bool {
	if t == nil || t.AccessToken == "" || t.ExpiresAt == 0 {
		return false
	}
	return t.ExpiresAt > now.Add(leeway).UnixMilli()
}

// Clone returns a deep copy of t.
func (t *Token) Clone() *Token {
	if t == nil {
		return nil
	}
	out := *t
	if t.Extra != nil {
		out.Extra = make(map[string]jsontext.Value, len(t.Extra))
		for k, v := range t.Extra {
			out.Extra[k] = bytes.Clone(v)
		}
	}
	return &out
}

// Seconds is a duration in seconds, fractions kept. It decodes from a JSON
// number or a numeric JSON string, since some token endpoints quote expires_in.
type Seconds float64

// Duration converts s to a time.Duration.
func (s Seconds) Duration() time.Duration {
	return time.Duration(float64(s) * float64(time.Second))
}

// Milliseconds returns s in whole milliseconds, rounded to nearest.
func (s Seconds) Milliseconds() int64 {
	return int64(math.Round(float64(s) * 1000))
}

func (s Seconds) MarshalJSON() ([]byte, error) {
	return strconv.AppendFloat(nil, float64(s), 'f', -1, 64), nil
}

func (s *Seconds) UnmarshalJSON(data []byte) error {
	raw := string(bytes.TrimSpace(data))
	if raw == "null" {
		*s = 0
		return nil
	}
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = unquoted
	}
	return s.parse(raw)
}

func (s *Seconds) parse(raw string) error {
	if raw == "" {
		*s = 0
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("oauth2client: invalid expires_in %q", raw)
	}
	*s = Seconds(f)
	return nil
}

// parseTokenJSON decodes a JSON token response.
func parseTokenJSON(body []byte) (*Token, error) {
	var tok Token
	if err := json.Unmarshal(body, &tok); err != nil {
		return nil, fmt.Errorf("oauth2client: decode token response: %w", err)
	}
	return &tok, nil
}

// parseTokenForm decodes an application/x-www-form-urlencoded token response.
// Unmodeled fields are kept in Extra as JSON strings.
func parseTokenForm(body []byte) (*Token, error) {
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, fmt.Errorf("oauth2client: decode token response: %w", err)
	}

	tok := &Token{
		AccessToken:  values.Get("access_token"),
		TokenType:    values.Get("token_type"),
		RefreshToken: values.Get("refresh_token"),
		Scope:        values.Get("scope"),
	}
	if err := tok.ExpiresIn.parse(values.Get("expires_in")); err != nil {
		return nil, err
	}

	rest := maps.Clone(values)
	for _, known := range []string{"access_token", "token_type", "refresh_token", "scope", "expires_in", "expires_at"} {
		delete(rest, known)
	}
	for k := range rest {
		encoded, err := json.Marshal(rest.Get(k))
		if err != nil {
			return nil, fmt.Errorf("oauth2client: encode token field %q: %w", k, err)
		}
		if tok.Extra == nil {
			tok.Extra = make(map[string]jsontext.Value, len(rest))
		}
		tok.Extra[k] = encoded
	}

	return tok, nil
}
