package oauth2client

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/AmmannChristian/go-reqauth/httpclient"
	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// maxTokenResponseSize caps how much of a token response is read.
const maxTokenResponseSize = 1 << 20

// Executor performs single token requests against an OAuth2 token endpoint.
// It does not cache; see TokenCache.
type Executor struct {
	logger     *zap.Logger
	httpClient *http.Client
}

// NewExecutor creates an Executor. WithLogger and WithHTTPClient apply; other options are ignored.
func NewExecutor(opts ...Option) *Executor {
	o := newOptions(opts)
	return newExecutor(o)
}

func newExecutor(o options) *Executor {
	return &Executor{
		logger:     o.logger,
		httpClient: o.httpClient,
	}
}

// Fetch dispatches to the grant-specific request for cfg.
func (e *Executor) Fetch(ctx context.Context, cfg GrantConfig, netCfg *httpclient.Config) (*Token, error) {
	switch c := cfg.(type) {
	case *ClientCredentialsConfig:
		return e.ClientCredentials(ctx, c, netCfg)
	case *PasswordConfig:
		return e.Password(ctx, c, netCfg)
	case nil:
		return nil, configError("grant config is nil")
	default:
		return nil, unsupportedGrant(string(cfg.GrantType()))
	}
}

// ClientCredentials requests a token with the client_credentials grant.
//
// The form body always carries grant_type and scope (possibly empty). With
// header placement the client authenticates with
// "Authorization: Basic base64(client_id:client_secret)"; with body placement
// client_id is sent as a form field, and client_secret when non-empty.
func (e *Executor) ClientCredentials(ctx context.Context, cfg *ClientCredentialsConfig, netCfg *httpclient.Config) (*Token, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	form := url.Values{
		"grant_type": {string(GrantClientCredentials)},
		"scope":      {cfg.Scope},
	}

	return e.do(ctx, GrantClientCredentials, cfg.CommonConfig, form, netCfg)
}

// Password requests a token with the resource owner password grant.
// Client credentials are attached, per placement, only when ClientID is set.
func (e *Executor) Password(ctx context.Context, cfg *PasswordConfig, netCfg *httpclient.Config) (*Token, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	form := url.Values{
		"grant_type": {string(GrantPassword)},
		"username":   {cfg.Username},
		"password":   {cfg.Password},
		"scope":      {cfg.Scope},
	}

	return e.do(ctx, GrantPassword, cfg.CommonConfig, form, netCfg)
}

func (e *Executor) do(
	ctx context.Context,
	grantType GrantType,
	common CommonConfig,
	form url.Values,
	netCfg *httpclient.Config,
) (*Token, error) {
	header := make(http.Header)
	header.Set("Content-Type", "application/x-www-form-urlencoded")
	header.Set("Accept", "application/json")

	if common.ClientID != "" {
		if common.placement() == PlaceInHeader {
			header.Set("Authorization", "Basic "+basicCredentials(common.ClientID, common.ClientSecret))
		} else {
			form.Set("client_id", common.ClientID)
			if common.ClientSecret != "" {
				form.Set("client_secret", common.ClientSecret)
			}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, common.AccessTokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, configError("build token request: %v", err)
	}
	req.Header = header

	client, release, err := e.client(ctx, netCfg)
	if err != nil {
		return nil, err
	}
	defer release()

	resp, err := client.Do(req)
	if err != nil {
		e.logger.Error("oauth2client: error fetching OAuth2 token",
			zap.String("grant_type", string(grantType)),
			zap.String("token_url", common.AccessTokenURL),
			zap.Error(err),
		)
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTokenResponseSize))
	if err != nil {
		e.logger.Error("oauth2client: error reading token response",
			zap.String("grant_type", string(grantType)),
			zap.String("token_url", common.AccessTokenURL),
			zap.Int("status", resp.StatusCode),
			zap.Error(err),
		)
		return nil, &TransportError{StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		e.logger.Error("oauth2client: error fetching OAuth2 token",
			zap.String("grant_type", string(grantType)),
			zap.String("token_url", common.AccessTokenURL),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body),
		)
		return nil, &TransportError{
			StatusCode: resp.StatusCode,
			Body:       string(body),
			Err:        retrieveError(resp, body),
		}
	}

	tok, err := parseTokenResponse(resp.Header.Get("Content-Type"), body)
	if err != nil {
		return nil, &TransportError{StatusCode: resp.StatusCode, Body: string(body), Err: err}
	}
	if tok.AccessToken == "" {
		return nil, &TransportError{StatusCode: resp.StatusCode, Body: string(body), Err: ErrNoAccessToken}
	}

	e.logger.Debug("oauth2client: obtained access token",
		zap.String("grant_type", string(grantType)),
		zap.String("token_url", common.AccessTokenURL),
		zap.Float64("expires_in", float64(tok.ExpiresIn)),
	)

	return tok, nil
}

// client resolves the HTTP client: a pinned client, then one stored in ctx
// under oauth2.HTTPClient, then a fresh client built from netCfg. release
// closes idle connections of clients built here.
func (e *Executor) client(ctx context.Context, netCfg *httpclient.Config) (*http.Client, func(), error) {
	if e.httpClient != nil {
		return e.httpClient, func() {}, nil
	}
	if c, ok := ctx.Value(oauth2.HTTPClient).(*http.Client); ok && c != nil {
		return c, func() {}, nil
	}

	var cfg httpclient.Config
	if netCfg != nil {
		cfg = *netCfg
	}
	client, err := httpclient.NewBuilder().
		WithProxy(cfg.Proxy).
		WithTLSOptions(cfg.TLS).
		WithLogger(e.logger).
		Build()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: build token endpoint client: %w", ErrConfiguration, err)
	}
	return client, client.CloseIdleConnections, nil
}

// basicCredentials encodes id:secret without form-escaping either part.
func basicCredentials(clientID, clientSecret string) string {
	return base64.StdEncoding.EncodeToString([]byte(clientID + ":" + clientSecret))
}

// parseTokenResponse decodes JSON objects whatever the content type, since
// some endpoints label JSON as text/plain. Form and text bodies that are not a
// JSON object are decoded as form values.
func parseTokenResponse(contentType string, body []byte) (*Token, error) {
	mediaType, _, _ := mime.ParseMediaType(contentType)
	switch mediaType {
	case "application/x-www-form-urlencoded", "text/plain":
		if v := jsontext.Value(body); v.IsValid() && v.Kind() == '{' {
			return parseTokenJSON(body)
		}
		return parseTokenForm(body)
	default:
		return parseTokenJSON(body)
	}
}

// retrieveError builds an *oauth2.RetrieveError, filling the RFC 6749 error
// fields when the body is a JSON error object.
func retrieveError(resp *http.Response, body []byte) *oauth2.RetrieveError {
	rErr := &oauth2.RetrieveError{Response: resp, Body: body}

	var payload struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
		ErrorURI         string `json:"error_uri"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		rErr.ErrorCode = payload.Error
		rErr.ErrorDescription = payload.ErrorDescription
		rErr.ErrorURI = payload.ErrorURI
	}

	return rErr
}
