package oauth

import (
	"time"
)

// DefaultExpiryBuffer is subtracted from a token's expiry when deciding
// whether it is still usable. The buffer ensures a token is refreshed
// proactively instead of being rejected by the provider mid-request.
const DefaultExpiryBuffer = 60 * time.Second

// TokenSet is the durable credential bundle used to call the provider
// on the user's behalf. A TokenSet is immutable once constructed; a
// refresh produces a new TokenSet that inherits unset fields from its
// predecessor.
//
// All timestamps are milliseconds since the Unix epoch, matching the
// persisted store format. Zero means absent.
type TokenSet struct {
	// AccessToken is the bearer secret. Never persisted empty.
	AccessToken string `json:"accessToken"`

	// RefreshToken is used to mint new access tokens (optional).
	RefreshToken string `json:"refreshToken,omitempty"`

	// ExpiresAt is the absolute expiry instant. Zero means the token is
	// treated as non-expiring.
	ExpiresAt int64 `json:"expiresAt,omitempty"`

	// AccountID is the subject/account identifier extracted from the
	// identity token's claims (optional).
	AccountID string `json:"accountId,omitempty"`

	// Scope is the granted scope set, passed through opaquely.
	Scope string `json:"scope,omitempty"`

	// IDToken is the OIDC identity token, passed through opaquely.
	IDToken string `json:"idToken,omitempty"`

	// CreatedAt is set once and preserved across refreshes.
	CreatedAt int64 `json:"createdAt,omitempty"`

	// UpdatedAt is set on every write.
	UpdatedAt int64 `json:"updatedAt,omitempty"`
}

// IsExpired reports whether the token set is expired or will expire
// within the given buffer. A TokenSet without an expiry never expires.
func (t *TokenSet) IsExpired(buffer time.Duration) bool {
	if t == nil || t.ExpiresAt == 0 {
		return false
	}
	return nowMillis() >= t.ExpiresAt-buffer.Milliseconds()
}

// Handshake is the transient state correlating one in-flight
// authorization attempt with its eventual callback. At most one
// handshake is retained at a time; a new start overwrites any prior
// unconsumed handshake.
type Handshake struct {
	// State is the opaque CSRF correlation token, single-use.
	State string `json:"state"`

	// CodeVerifier is the PKCE secret, single-use.
	CodeVerifier string `json:"codeVerifier"`

	// CreatedAt is the creation timestamp in milliseconds since epoch.
	CreatedAt int64 `json:"createdAt"`
}

// Status reports the connection state without exposing token material.
type Status struct {
	Connected bool  `json:"connected"`
	ExpiresAt int64 `json:"expiresAt,omitempty"`
	Expired   bool  `json:"expired"`
}

// storeFile is the persisted store format: a single JSON object with
// optional tokens and auth keys. The field names match the store files
// written by earlier releases of the editor, so existing stores remain
// readable.
type storeFile struct {
	Tokens *TokenSet  `json:"tokens,omitempty"`
	Auth   *Handshake `json:"auth,omitempty"`
}

// tokenResponse is the provider's token endpoint response, shared by
// the authorization-code and refresh-token exchanges.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
	Scope        string `json:"scope,omitempty"`
	IDToken      string `json:"id_token,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
}

// nowMillis returns the current wall-clock time in milliseconds since
// the Unix epoch, the comparison clock used throughout this package.
func nowMillis() int64 {
	return time.Now().UnixMilli()
}
