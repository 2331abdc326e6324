package oauth

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCredentialWatcher_NotifiesOnWrite(t *testing.T) {
	dir := t.TempDir()
	credPath := filepath.Join(dir, "auth.json")

	changed := make(chan struct{}, 1)
	watcher := NewCredentialWatcher([]string{credPath}, func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	if err := watcher.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer watcher.Stop()

	if err := os.WriteFile(credPath, []byte(`{"openai":{"access":"a"}}`), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("Expected change notification after credential write")
	}
}

func TestCredentialWatcher_IgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	credPath := filepath.Join(dir, "auth.json")

	changed := make(chan struct{}, 1)
	watcher := NewCredentialWatcher([]string{credPath}, func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	if err := watcher.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer watcher.Stop()

	if err := os.WriteFile(filepath.Join(dir, "other.json"), []byte("{}"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	select {
	case <-changed:
		t.Fatal("Unrelated file must not trigger a notification")
	case <-time.After(debounceInterval * 3):
	}
}

func TestCredentialWatcher_MissingDirectory(t *testing.T) {
	// Directories that do not exist yet are skipped, not fatal.
	watcher := NewCredentialWatcher([]string{"/nonexistent-xyz/auth.json"}, func() {})
	if err := watcher.Start(); err != nil {
		t.Fatalf("Start with missing directory failed: %v", err)
	}
	watcher.Stop()
	watcher.Stop() // idempotent
}
