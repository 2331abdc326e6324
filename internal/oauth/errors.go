package oauth

import (
	"errors"
	"fmt"
)

// ErrMissingRefreshToken is returned when a refresh is attempted for a
// TokenSet without a refresh credential. The condition is terminal; the
// caller must restart the full authorization flow.
var ErrMissingRefreshToken = errors.New("no refresh token available")

// ErrNotConnected is returned by the TokenSource when no credential is
// available from either the store or the external locator.
var ErrNotConnected = errors.New("not connected")

// ValidationError indicates a user-caused callback failure such as a
// missing parameter or a state mismatch. It maps to a 4xx outcome.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// StoreError indicates an I/O failure reading or writing the persisted
// store. It is fatal for the operation and maps to a 5xx outcome; it is
// never retried automatically.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// ExchangeError indicates that the provider rejected an
// authorization-code or refresh-token exchange. It carries the HTTP
// status and response body so the caller can distinguish a transient
// server error (worth a caller-level retry) from a terminal rejection.
type ExchangeError struct {
	Operation string // "authorization_code" or "refresh_token"
	Status    int
	Body      string
}

func (e *ExchangeError) Error() string {
	return fmt.Sprintf("%s exchange failed with status %d: %s", e.Operation, e.Status, e.Body)
}

// Temporary reports whether the failure looks like a transient provider
// error, in which case a caller-level retry with backoff is reasonable.
func (e *ExchangeError) Temporary() bool {
	return e.Status >= 500
}
