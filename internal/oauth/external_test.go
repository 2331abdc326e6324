package oauth

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeCredentialFile(t *testing.T, dir, name string, payload interface{}) string {
	t.Helper()

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Failed to marshal credential file: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("Failed to write credential file: %v", err)
	}
	return path
}

func TestLocator_MissingPaths(t *testing.T) {
	dir := t.TempDir()
	locator := NewLocator([]string{
		filepath.Join(dir, "does-not-exist.json"),
		filepath.Join(dir, "also-missing", "auth.json"),
	})

	ts, err := locator.Locate()
	if err != nil {
		t.Fatalf("Locate failed: %v", err)
	}
	if ts != nil {
		t.Errorf("Expected nil for missing paths, got %+v", ts)
	}
}

func TestLocator_FlatSchema(t *testing.T) {
	dir := t.TempDir()
	path := writeCredentialFile(t, dir, "auth.json", map[string]interface{}{
		"openai": map[string]interface{}{
			"access":    "flat-access",
			"refresh":   "flat-refresh",
			"expires":   int64(1700000000000),
			"accountId": "acct-flat",
		},
		"last_refresh": "2026-01-02T15:04:05Z",
	})

	ts, err := NewLocator([]string{path}).Locate()
	if err != nil {
		t.Fatalf("Locate failed: %v", err)
	}
	if ts == nil {
		t.Fatal("Expected token set, got nil")
	}
	if ts.AccessToken != "flat-access" || ts.RefreshToken != "flat-refresh" {
		t.Errorf("Flat schema tokens mismatch: %+v", ts)
	}
	if ts.ExpiresAt != 1700000000000 {
		t.Errorf("Expected expiry 1700000000000, got %d", ts.ExpiresAt)
	}
	if ts.AccountID != "acct-flat" {
		t.Errorf("Expected account acct-flat, got %s", ts.AccountID)
	}

	wantCreated, _ := time.Parse(time.RFC3339, "2026-01-02T15:04:05Z")
	if ts.CreatedAt != wantCreated.UnixMilli() {
		t.Errorf("Expected createdAt from last_refresh, got %d", ts.CreatedAt)
	}
}

func TestLocator_NestedSchema(t *testing.T) {
	dir := t.TempDir()

	accessJWT := makeJWT(t, map[string]interface{}{"exp": float64(1800000000)})
	path := writeCredentialFile(t, dir, "openai.json", map[string]interface{}{
		"tokens": map[string]interface{}{
			"access_token":  accessJWT,
			"refresh_token": "nested-refresh",
			"account_id":    "acct-nested",
		},
	})

	ts, err := NewLocator([]string{path}).Locate()
	if err != nil {
		t.Fatalf("Locate failed: %v", err)
	}
	if ts == nil {
		t.Fatal("Expected token set, got nil")
	}
	if ts.RefreshToken != "nested-refresh" || ts.AccountID != "acct-nested" {
		t.Errorf("Nested schema mismatch: %+v", ts)
	}
	// Expiry is derived from the access token's exp claim.
	if ts.ExpiresAt != 1800000000000 {
		t.Errorf("Expected derived expiry 1800000000000, got %d", ts.ExpiresAt)
	}
}

func TestLocator_FlatExpiryDerivedFromClaims(t *testing.T) {
	dir := t.TempDir()

	accessJWT := makeJWT(t, map[string]interface{}{"exp": float64(1750000000)})
	path := writeCredentialFile(t, dir, "auth.json", map[string]interface{}{
		"openai": map[string]interface{}{
			"access": accessJWT,
		},
	})

	ts, err := NewLocator([]string{path}).Locate()
	if err != nil {
		t.Fatalf("Locate failed: %v", err)
	}
	if ts == nil {
		t.Fatal("Expected token set, got nil")
	}
	if ts.ExpiresAt != 1750000000000 {
		t.Errorf("Expected expiry derived from access token claims, got %d", ts.ExpiresAt)
	}
}

func TestLocator_PathOrder(t *testing.T) {
	dir := t.TempDir()
	first := writeCredentialFile(t, dir, "first.json", map[string]interface{}{
		"openai": map[string]interface{}{"access": "first-access"},
	})
	second := writeCredentialFile(t, dir, "second.json", map[string]interface{}{
		"openai": map[string]interface{}{"access": "second-access"},
	})

	ts, err := NewLocator([]string{first, second}).Locate()
	if err != nil {
		t.Fatalf("Locate failed: %v", err)
	}
	if ts == nil || ts.AccessToken != "first-access" {
		t.Errorf("Expected first path to win, got %+v", ts)
	}
}

func TestLocator_SkipsUnusableFiles(t *testing.T) {
	dir := t.TempDir()

	notJSON := filepath.Join(dir, "garbage.json")
	if err := os.WriteFile(notJSON, []byte("not json at all"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	emptyAccess := writeCredentialFile(t, dir, "empty.json", map[string]interface{}{
		"openai": map[string]interface{}{"access": ""},
	})
	usable := writeCredentialFile(t, dir, "usable.json", map[string]interface{}{
		"openai": map[string]interface{}{"access": "usable-access"},
	})

	ts, err := NewLocator([]string{notJSON, emptyAccess, usable}).Locate()
	if err != nil {
		t.Fatalf("Locate failed: %v", err)
	}
	if ts == nil || ts.AccessToken != "usable-access" {
		t.Errorf("Expected unusable files skipped, got %+v", ts)
	}
}

func TestParseLastRefresh(t *testing.T) {
	now := nowMillis()

	if got := parseLastRefresh("", now); got != now {
		t.Errorf("Expected fallback to now for empty value, got %d", got)
	}
	if got := parseLastRefresh("yesterday", now); got != now {
		t.Errorf("Expected fallback to now for unparseable value, got %d", got)
	}

	want, _ := time.Parse(time.RFC3339, "2026-03-01T00:00:00Z")
	if got := parseLastRefresh("2026-03-01T00:00:00Z", now); got != want.UnixMilli() {
		t.Errorf("Expected parsed timestamp, got %d", got)
	}
}
