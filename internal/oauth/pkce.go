package oauth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

const (
	// stateBytes is the number of random bytes for the OAuth state
	// parameter. 24 bytes encode to 32 base64url characters.
	stateBytes = 24

	// verifierBytes is the number of random bytes for the PKCE code
	// verifier. 48 bytes encode to 64 base64url characters, well within
	// RFC 7636's 43-128 character bounds.
	verifierBytes = 48
)

// GenerateRandomString returns a URL-safe, padding-free base64 encoding
// of byteLength cryptographically secure random bytes.
//
// Failure means the platform entropy source is unavailable, which is
// fatal for the authorization flow and not retried.
func GenerateRandomString(byteLength int) (string, error) {
	buf := make([]byte, byteLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// DeriveChallenge returns the S256 PKCE challenge for a code verifier:
// the URL-safe, padding-free base64 encoding of SHA-256(verifier).
func DeriveChallenge(verifier string) string {
	hash := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(hash[:])
}
