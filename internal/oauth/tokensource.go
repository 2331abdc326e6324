package oauth

import (
	"context"
	"time"

	"golang.org/x/oauth2"
)

// tokenSource is a thin binder that exposes the Manager as an
// oauth2.TokenSource, so that generation-call glue can consume
// credentials through the standard library contract instead of this
// package's types.
//
// It has no storage of its own -- every Token() call goes through the
// manager's reconciliation and refresh logic.
type tokenSource struct {
	ctx     context.Context
	manager *Manager
}

// TokenSource returns an oauth2.TokenSource backed by this manager.
// The context bounds the network calls (refresh, exchange) performed
// while producing tokens.
func (m *Manager) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &tokenSource{ctx: ctx, manager: m}
}

// Token implements oauth2.TokenSource. Returns ErrNotConnected when no
// credential is available from either the store or the external
// locator.
func (s *tokenSource) Token() (*oauth2.Token, error) {
	set, err := s.manager.CurrentToken(s.ctx)
	if err != nil {
		return nil, err
	}
	if set == nil {
		return nil, ErrNotConnected
	}

	token := &oauth2.Token{
		AccessToken:  set.AccessToken,
		RefreshToken: set.RefreshToken,
		TokenType:    "Bearer",
	}
	if set.ExpiresAt > 0 {
		token.Expiry = time.UnixMilli(set.ExpiresAt)
	}
	if set.IDToken != "" {
		token = token.WithExtra(map[string]interface{}{
			"id_token": set.IDToken,
		})
	}
	return token, nil
}

// Ensure tokenSource implements oauth2.TokenSource at compile time.
var _ oauth2.TokenSource = (*tokenSource)(nil)
