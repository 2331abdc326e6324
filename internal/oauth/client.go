package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/clarois/node-banana-kie/pkg/logging"
)

// Client performs the HTTP-facing parts of the OAuth flow against the
// provider's fixed authorization and token endpoints.
type Client struct {
	authorizationEndpoint string
	tokenEndpoint         string
	clientID              string
	scope                 string

	httpClient *http.Client
}

// NewClient creates a provider client. Endpoints and client identity
// come from configuration; the HTTP client applies a request timeout so
// a stalled exchange cannot hang a callback handler indefinitely.
func NewClient(authorizationEndpoint, tokenEndpoint, clientID, scope string) *Client {
	return &Client{
		authorizationEndpoint: authorizationEndpoint,
		tokenEndpoint:         tokenEndpoint,
		clientID:              clientID,
		scope:                 scope,
		httpClient:            &http.Client{Timeout: 30 * time.Second},
	}
}

// AuthorizationURL builds the provider authorize URL for one flow
// attempt. The extra flow markers select the provider's simplified
// non-interactive consent variant and request organization claims in
// the identity token.
func (c *Client) AuthorizationURL(state, codeChallenge, redirectURI string) (string, error) {
	authURL, err := url.Parse(c.authorizationEndpoint)
	if err != nil {
		return "", fmt.Errorf("invalid authorization endpoint: %w", err)
	}

	query := authURL.Query()
	query.Set("response_type", "code")
	query.Set("client_id", c.clientID)
	query.Set("redirect_uri", redirectURI)
	query.Set("scope", c.scope)
	query.Set("state", state)
	query.Set("code_challenge", codeChallenge)
	query.Set("code_challenge_method", "S256")
	query.Set("codex_cli_simplified_flow", "true")
	query.Set("originator", "codex_cli_rs")
	query.Set("id_token_add_organizations", "true")
	authURL.RawQuery = query.Encode()

	return authURL.String(), nil
}

// ExchangeCode exchanges an authorization code plus its PKCE verifier
// for a token response.
func (c *Client) ExchangeCode(ctx context.Context, code, codeVerifier, redirectURI string) (*tokenResponse, error) {
	data := url.Values{}
	data.Set("grant_type", "authorization_code")
	data.Set("code", code)
	data.Set("redirect_uri", redirectURI)
	data.Set("code_verifier", codeVerifier)
	data.Set("client_id", c.clientID)

	return c.postForm(ctx, "authorization_code", data)
}

// RefreshToken exchanges a refresh token for a new token response. The
// client performs exactly one attempt; retry policy belongs to the
// caller.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*tokenResponse, error) {
	data := url.Values{}
	data.Set("grant_type", "refresh_token")
	data.Set("refresh_token", refreshToken)
	data.Set("client_id", c.clientID)

	return c.postForm(ctx, "refresh_token", data)
}

// postForm sends a form-encoded POST to the token endpoint. Non-2xx
// responses surface as an ExchangeError carrying status and body.
func (c *Client) postForm(ctx context.Context, operation string, data url.Values) (*tokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenEndpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logging.Debug("OAuth", "%s exchange rejected: status=%d", operation, resp.StatusCode)
		return nil, &ExchangeError{Operation: operation, Status: resp.StatusCode, Body: string(body)}
	}

	var token tokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, fmt.Errorf("failed to parse token response: %w", err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("token response missing access_token")
	}

	logging.Debug("OAuth", "%s exchange succeeded (expires_in=%d)", operation, token.ExpiresIn)
	return &token, nil
}
