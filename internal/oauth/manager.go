package oauth

import (
	"context"

	"golang.org/x/sync/singleflight"

	"github.com/clarois/node-banana-kie/pkg/logging"
)

// Manager orchestrates the credential lifecycle: the authorization flow
// (start, callback, disconnect, status), the reconciliation between the
// store and externally discovered CLI credentials, and access-token
// refresh.
//
// It is safe for use from concurrent request handlers. Concurrent
// refreshes of the same refresh token are collapsed into a single
// exchange; without that, the loser of a provider-side refresh-token
// rotation would end up holding an invalidated credential.
type Manager struct {
	store   *Store
	locator *Locator
	client  *Client

	refreshGroup singleflight.Group
}

// NewManager wires the store, external locator and provider client into
// a manager.
func NewManager(store *Store, locator *Locator, client *Client) *Manager {
	return &Manager{
		store:   store,
		locator: locator,
		client:  client,
	}
}

// StartAuthorization begins a new authorization attempt: it generates
// the state and PKCE secrets, persists the handshake (overwriting any
// prior unconsumed one) and returns the authorization URL the user's
// browser should visit.
func (m *Manager) StartAuthorization(redirectURI string) (string, error) {
	state, err := GenerateRandomString(stateBytes)
	if err != nil {
		return "", err
	}
	codeVerifier, err := GenerateRandomString(verifierBytes)
	if err != nil {
		return "", err
	}

	handshake := &Handshake{
		State:        state,
		CodeVerifier: codeVerifier,
		CreatedAt:    nowMillis(),
	}
	if err := m.store.WriteHandshake(handshake); err != nil {
		return "", err
	}

	authURL, err := m.client.AuthorizationURL(state, DeriveChallenge(codeVerifier), redirectURI)
	if err != nil {
		return "", err
	}

	logging.Debug("OAuth", "Started authorization flow (redirect_uri=%s)", redirectURI)
	return authURL, nil
}

// HandleCallback consumes the authorization callback: it validates the
// state against the persisted handshake, exchanges the code for tokens
// and persists the resulting TokenSet. Returns the account identifier
// extracted from the identity token's claims, if any.
//
// A mismatched state fails without touching the handshake: a bogus
// callback probe must not be able to invalidate a legitimate in-flight
// attempt. Once the state has matched, the handshake is consumed no
// matter how the exchange ends, so a failed attempt can never be
// replayed.
func (m *Manager) HandleCallback(ctx context.Context, code, state, redirectURI string) (string, error) {
	if code == "" || state == "" {
		return "", &ValidationError{Message: "missing code or state parameter"}
	}

	handshake, err := m.store.ReadHandshake()
	if err != nil {
		return "", err
	}
	if handshake == nil || handshake.State != state {
		logging.Warn("OAuth", "Callback with unknown or mismatched state")
		return "", &ValidationError{Message: "state does not match any pending authorization"}
	}

	resp, err := m.client.ExchangeCode(ctx, code, handshake.CodeVerifier, redirectURI)
	if err != nil {
		if clearErr := m.store.ClearHandshake(); clearErr != nil {
			logging.Error("OAuth", clearErr, "Failed to clear handshake after exchange failure")
		}
		return "", err
	}

	tokens := newTokenSetFromResponse(resp, nil)
	if resp.IDToken != "" {
		tokens.AccountID = extractAccountID(DecodeClaims(resp.IDToken))
	}

	// Persisting the tokens also consumes the handshake.
	if err := m.store.WriteTokens(tokens); err != nil {
		return "", err
	}

	logging.Info("OAuth", "Authorization completed (account=%s, has_refresh_token=%t)",
		tokens.AccountID, tokens.RefreshToken != "")
	return tokens.AccountID, nil
}

// CurrentToken returns the credential a caller should use right now,
// reconciling the store against externally discovered CLI credentials
// and refreshing an expiring token when a refresh credential is
// available.
//
// Neither source is unconditionally authoritative: the external CLI may
// have logged in more recently than this application last observed, so
// recency by expiry is the tie-break and a non-expired candidate always
// beats an expired one. Returns (nil, nil) when not connected.
func (m *Manager) CurrentToken(ctx context.Context) (*TokenSet, error) {
	stored, err := m.store.ReadTokens()
	if err != nil {
		return nil, err
	}

	if stored == nil {
		// Nothing stored: delegate entirely to the external locator.
		external, err := m.locator.Locate()
		if err != nil {
			return nil, err
		}
		if external == nil {
			return nil, nil
		}
		logging.Info("OAuth", "Imported external CLI credentials")
		if err := m.store.WriteTokens(external); err != nil {
			return nil, err
		}
		return m.maybeRefresh(ctx, external), nil
	}

	external, err := m.locator.Locate()
	if err != nil {
		return nil, err
	}

	if external != nil && external.AccessToken != stored.AccessToken {
		externalIsNewer := external.ExpiresAt > stored.ExpiresAt
		if externalIsNewer || stored.IsExpired(DefaultExpiryBuffer) {
			logging.Info("OAuth", "Adopting newer external CLI credentials")
			if err := m.store.WriteTokens(external); err != nil {
				return nil, err
			}
			return m.maybeRefresh(ctx, external), nil
		}
	}

	if !stored.IsExpired(DefaultExpiryBuffer) {
		return stored, nil
	}

	// Stored set expired with no newer external record: force one
	// re-import, falling back to the stale stored set. A stale result
	// is still returned so the caller can refresh or reauthorize.
	if external != nil {
		logging.Info("OAuth", "Stored credentials expired, re-importing external CLI credentials")
		if err := m.store.WriteTokens(external); err != nil {
			return nil, err
		}
		return m.maybeRefresh(ctx, external), nil
	}

	return m.maybeRefresh(ctx, stored), nil
}

// maybeRefresh refreshes an expiring token set when a refresh
// credential is present. Refresh failure falls back to the stale set:
// retry and reauthorization policy belong to the caller.
func (m *Manager) maybeRefresh(ctx context.Context, ts *TokenSet) *TokenSet {
	if !ts.IsExpired(DefaultExpiryBuffer) || ts.RefreshToken == "" {
		return ts
	}

	refreshed, err := m.Refresh(ctx, ts)
	if err != nil {
		logging.Warn("OAuth", "Token refresh failed, returning stale credentials: %v", err)
		return ts
	}
	return refreshed
}

// Refresh exchanges the token set's refresh credential for a new access
// token and persists the successor TokenSet. Fails with
// ErrMissingRefreshToken when no refresh credential is present.
//
// Concurrent refreshes of the same refresh token share one exchange.
func (m *Manager) Refresh(ctx context.Context, ts *TokenSet) (*TokenSet, error) {
	if ts == nil || ts.RefreshToken == "" {
		return nil, ErrMissingRefreshToken
	}

	result, err, _ := m.refreshGroup.Do(ts.RefreshToken, func() (interface{}, error) {
		resp, err := m.client.RefreshToken(ctx, ts.RefreshToken)
		if err != nil {
			return nil, err
		}

		next := newTokenSetFromResponse(resp, ts)
		if err := m.store.WriteTokens(next); err != nil {
			return nil, err
		}

		logging.Debug("OAuth", "Refreshed access token (expires_at=%d)", next.ExpiresAt)
		return next, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*TokenSet), nil
}

// Status reports the connection state from the store without mutating
// anything. The expired flag uses a zero buffer: it answers "is the
// token past its expiry", not "should it be refreshed soon".
func (m *Manager) Status() (Status, error) {
	tokens, err := m.store.ReadTokens()
	if err != nil {
		return Status{}, err
	}
	if tokens == nil {
		return Status{}, nil
	}
	return Status{
		Connected: true,
		ExpiresAt: tokens.ExpiresAt,
		Expired:   tokens.IsExpired(0),
	}, nil
}

// Disconnect clears both the token set and any pending handshake. It is
// idempotent and succeeds even when nothing was connected.
func (m *Manager) Disconnect() error {
	if err := m.store.ClearTokens(); err != nil {
		return err
	}
	if err := m.store.ClearHandshake(); err != nil {
		return err
	}
	logging.Info("OAuth", "Disconnected")
	return nil
}

// newTokenSetFromResponse builds the TokenSet for a token endpoint
// response. Fields the response omits are inherited from the previous
// TokenSet; providers only rotate the refresh token occasionally, and a
// refresh response rarely carries a new identity token.
func newTokenSetFromResponse(resp *tokenResponse, previous *TokenSet) *TokenSet {
	now := nowMillis()

	next := &TokenSet{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		Scope:        resp.Scope,
		IDToken:      resp.IDToken,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if resp.ExpiresIn > 0 {
		next.ExpiresAt = now + resp.ExpiresIn*1000
	}

	if previous != nil {
		if next.RefreshToken == "" {
			next.RefreshToken = previous.RefreshToken
		}
		if next.ExpiresAt == 0 {
			next.ExpiresAt = previous.ExpiresAt
		}
		if next.Scope == "" {
			next.Scope = previous.Scope
		}
		if next.IDToken == "" {
			next.IDToken = previous.IDToken
		}
		next.AccountID = previous.AccountID
		if previous.CreatedAt != 0 {
			next.CreatedAt = previous.CreatedAt
		}
	}

	return next
}
