// Package oauth implements the OAuth 2.0 credential lifecycle for the
// node-banana editor's OpenAI connection.
//
// This package owns everything with protocol correctness or security
// requirements around the provider connection: the PKCE authorization
// flow, the persisted token store, the reconciliation between this
// application's credentials and those written by the companion codex
// CLI tooling, and access-token refresh. The rest of the application
// consumes it through the HTTP endpoints in Handler or the
// oauth2.TokenSource returned by Manager.TokenSource.
//
// # Flow
//
// The authorization flow is a standard Authorization Code + PKCE
// exchange:
//
//  1. The frontend calls the start endpoint; a Handshake (state + PKCE
//     verifier) is persisted and the authorize URL returned.
//  2. The user authenticates in the browser; the provider redirects to
//     the callback endpoint with a code and the state.
//  3. The callback validates the state against the stored Handshake,
//     exchanges the code plus verifier for tokens, and persists the
//     resulting TokenSet. Persisting tokens consumes the Handshake.
//
// Independently, any caller needing a live token goes through
// Manager.CurrentToken, which reconciles the store against externally
// discovered CLI credentials and refreshes expiring tokens.
//
// # Components
//
//   - Store: durable single-file JSON persistence for the Handshake
//     and the current TokenSet, with atomic replace semantics
//   - Locator: read-only discovery of codex CLI credential files at
//     well-known paths, normalizing two foreign schemas
//   - Client: the authorization-code and refresh-token exchanges
//     against the provider's fixed endpoints
//   - Manager: reconciliation, refresh coordination, and flow
//     orchestration
//   - Handler: the HTTP boundary (start, callback, status, disconnect)
//   - CredentialWatcher: fsnotify-based change detection on the
//     external credential files
//
// # Security
//
// The store file carries bearer secrets and is written with 0600
// permissions; token values are never logged. The state parameter is
// validated with a plain comparison: it protects against CSRF, not
// against a timing oracle, because the state is not itself a secret
// capability. A callback probe with a mismatched state does not
// invalidate the pending Handshake, so an attacker cannot cancel a
// legitimate in-flight authorization by spraying bogus callbacks.
//
// Claims extracted from tokens (account id, expiry) are read without
// signature verification and are never used for trust decisions --
// only for display and for expiry bookkeeping where the provider is
// the authority anyway.
//
// # Known limitations
//
// The store assumes single-process ownership; multiple processes
// sharing one store file must serialize writes externally. Concurrent
// refreshes within this process are collapsed per refresh token via
// singleflight, but two separate processes can still race a
// provider-side refresh-token rotation.
package oauth
