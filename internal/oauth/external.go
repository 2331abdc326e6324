package oauth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/clarois/node-banana-kie/pkg/logging"
)

// Locator reads credential files written by the companion codex CLI
// tooling at a small ordered list of well-known filesystem locations,
// normalizing whichever schema is found into a TokenSet. It only ever
// reads the foreign files, never writes them.
type Locator struct {
	paths []string
}

// NewLocator creates a locator probing the given candidate paths in
// order.
func NewLocator(paths []string) *Locator {
	return &Locator{paths: paths}
}

// Paths returns the candidate paths probed by this locator.
func (l *Locator) Paths() []string {
	return l.paths
}

// foreignCredentialFile covers both known schemas of the CLI credential
// file: a flat shape under the "openai" key and a nested "tokens"
// shape. Which one is populated depends on the CLI version that wrote
// the file.
type foreignCredentialFile struct {
	OpenAI *struct {
		Access    string `json:"access"`
		Refresh   string `json:"refresh"`
		Expires   int64  `json:"expires"`
		AccountID string `json:"accountId"`
		IDToken   string `json:"idToken"`
	} `json:"openai"`

	Tokens *struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		IDToken      string `json:"id_token"`
		AccountID    string `json:"account_id"`
	} `json:"tokens"`

	LastRefresh string `json:"last_refresh"`
}

// schemaParsers is the ordered list of foreign schema normalizers tried
// at each candidate path. Each returns nil when the file does not carry
// a usable access token in that shape.
var schemaParsers = []struct {
	name  string
	parse func(raw *foreignCredentialFile, now int64) *TokenSet
}{
	{name: "flat", parse: parseFlatSchema},
	{name: "nested", parse: parseNestedSchema},
}

// Locate probes the candidate paths in order and returns the first
// record that parses to a non-empty access token. A path that does not
// exist is skipped silently; a path that exists but yields neither
// schema is skipped with a debug log. Only other I/O errors are fatal.
//
// Returns nil if no candidate path yields a usable record.
func (l *Locator) Locate() (*TokenSet, error) {
	for _, path := range l.paths {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to read external credential file %s: %w", path, err)
		}

		var raw foreignCredentialFile
		if err := json.Unmarshal(data, &raw); err != nil {
			logging.Debug("Locator", "Skipping %s: not a known credential format", path)
			continue
		}

		now := nowMillis()
		for _, parser := range schemaParsers {
			if ts := parser.parse(&raw, now); ts != nil {
				logging.Debug("Locator", "Found external credentials at %s (schema=%s)", path, parser.name)
				return ts, nil
			}
		}
	}
	return nil, nil
}

func parseFlatSchema(raw *foreignCredentialFile, now int64) *TokenSet {
	if raw.OpenAI == nil || raw.OpenAI.Access == "" {
		return nil
	}

	expiresAt := raw.OpenAI.Expires
	if expiresAt == 0 {
		expiresAt = extractExpiry(DecodeClaims(raw.OpenAI.Access))
	}

	return &TokenSet{
		AccessToken:  raw.OpenAI.Access,
		RefreshToken: raw.OpenAI.Refresh,
		ExpiresAt:    expiresAt,
		AccountID:    raw.OpenAI.AccountID,
		IDToken:      raw.OpenAI.IDToken,
		CreatedAt:    parseLastRefresh(raw.LastRefresh, now),
		UpdatedAt:    now,
	}
}

func parseNestedSchema(raw *foreignCredentialFile, now int64) *TokenSet {
	if raw.Tokens == nil || raw.Tokens.AccessToken == "" {
		return nil
	}

	return &TokenSet{
		AccessToken:  raw.Tokens.AccessToken,
		RefreshToken: raw.Tokens.RefreshToken,
		ExpiresAt:    extractExpiry(DecodeClaims(raw.Tokens.AccessToken)),
		AccountID:    raw.Tokens.AccountID,
		IDToken:      raw.Tokens.IDToken,
		CreatedAt:    parseLastRefresh(raw.LastRefresh, now),
		UpdatedAt:    now,
	}
}

// parseLastRefresh converts the CLI's last_refresh timestamp to epoch
// milliseconds, falling back to now when absent or unparseable.
func parseLastRefresh(value string, now int64) int64 {
	if value == "" {
		return now
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return now
	}
	return t.UnixMilli()
}
