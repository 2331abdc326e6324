package oauth

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/clarois/node-banana-kie/pkg/logging"
)

// debounceInterval is the time to wait after the last file change
// before notifying. CLI logins rewrite the credential file more than
// once in quick succession.
const debounceInterval = 500 * time.Millisecond

// CredentialWatcher monitors the external CLI credential files for
// changes so the hosting application can reconcile promptly when the
// user logs in (or out) through the companion CLI instead of waiting
// for the next token request.
type CredentialWatcher struct {
	mu sync.Mutex

	paths    []string
	onChange func()

	fsWatcher *fsnotify.Watcher
	stopCh    chan struct{}
	running   bool

	debounceMu    sync.Mutex
	debounceTimer *time.Timer
}

// NewCredentialWatcher creates a watcher over the given credential file
// paths. onChange is invoked (debounced) after any of them is written,
// created, renamed or removed.
func NewCredentialWatcher(paths []string, onChange func()) *CredentialWatcher {
	return &CredentialWatcher{
		paths:    paths,
		onChange: onChange,
		stopCh:   make(chan struct{}),
	}
}

// Start begins watching. The parent directories are watched rather than
// the files themselves, because editors and CLIs typically replace
// credential files via rename. Directories that do not exist yet are
// skipped; the locator re-probes on demand regardless, so the watcher
// is an optimization, not a correctness requirement.
func (w *CredentialWatcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	watched := make(map[string]bool)
	for _, path := range w.paths {
		dir := filepath.Dir(path)
		if watched[dir] {
			continue
		}
		if err := fsWatcher.Add(dir); err != nil {
			logging.Debug("Watcher", "Not watching %s: %v", dir, err)
			continue
		}
		watched[dir] = true
	}

	w.fsWatcher = fsWatcher
	w.running = true
	go w.watchLoop()

	logging.Debug("Watcher", "Watching %d directories for external credential changes", len(watched))
	return nil
}

// Stop stops the watcher. It is safe to call multiple times.
func (w *CredentialWatcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	close(w.stopCh)
	w.fsWatcher.Close()
	w.running = false
}

func (w *CredentialWatcher) watchLoop() {
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if w.isCredentialPath(event.Name) {
				logging.Debug("Watcher", "External credential file changed: %s (%s)", event.Name, event.Op)
				w.scheduleNotify()
			}
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			logging.Warn("Watcher", "File watch error: %v", err)
		case <-w.stopCh:
			return
		}
	}
}

// isCredentialPath reports whether an event path matches one of the
// watched credential files, ignoring unrelated writes in the same
// directories.
func (w *CredentialWatcher) isCredentialPath(name string) bool {
	for _, path := range w.paths {
		if filepath.Clean(name) == filepath.Clean(path) {
			return true
		}
	}
	return false
}

// scheduleNotify debounces change notifications.
func (w *CredentialWatcher) scheduleNotify() {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(debounceInterval, w.onChange)
}
