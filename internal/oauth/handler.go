package oauth

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/http"

	"github.com/clarois/node-banana-kie/pkg/logging"
)

// HTTP paths served by the Handler. The callback path is also the
// suffix of the redirect URI registered with the provider.
const (
	StartPath      = "/api/auth/openai/start"
	CallbackPath   = "/api/auth/openai/callback"
	StatusPath     = "/api/auth/openai/status"
	DisconnectPath = "/api/auth/openai/disconnect"
)

// Handler provides the HTTP boundary of the credential subsystem: the
// start, callback, status and disconnect endpoints consumed by the
// editor frontend and by the provider's browser redirect.
type Handler struct {
	manager *Manager

	// redirectURI, when non-empty, is used verbatim instead of deriving
	// the redirect from the inbound request's origin.
	redirectURI string
}

// NewHandler creates the HTTP handler. redirectURI is the optional
// configured override; leave it empty to derive the redirect from each
// request's origin plus CallbackPath.
func NewHandler(manager *Manager, redirectURI string) *Handler {
	return &Handler{
		manager:     manager,
		redirectURI: redirectURI,
	}
}

// Register mounts the auth endpoints on the given mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc(StartPath, h.HandleStart)
	mux.HandleFunc(CallbackPath, h.HandleCallback)
	mux.HandleFunc(StatusPath, h.HandleStatus)
	mux.HandleFunc(DisconnectPath, h.HandleDisconnect)
}

// HandleStart begins an authorization flow and returns the provider
// authorize URL as JSON for the frontend to open.
func (h *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	authURL, err := h.manager.StartAuthorization(h.redirectURIFor(r))
	if err != nil {
		logging.Error("OAuth", err, "Failed to start authorization flow")
		writeJSONError(w, http.StatusInternalServerError, "failed to start authorization")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": authURL})
}

// HandleCallback handles the provider's browser redirect. It renders a
// small HTML page in both outcomes, since the response is shown in the
// popup window the user authenticated in.
func (h *Handler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if errParam := query.Get("error"); errParam != "" {
		errDesc := query.Get("error_description")
		if errDesc == "" {
			errDesc = errParam
		}
		logging.Warn("OAuth", "Callback received provider error: %s", errParam)
		h.renderPage(w, http.StatusBadRequest, fmt.Sprintf("Authorization failed: %s", errDesc))
		return
	}

	accountID, err := h.manager.HandleCallback(r.Context(), query.Get("code"), query.Get("state"), h.redirectURIFor(r))
	if err != nil {
		h.renderCallbackError(w, err)
		return
	}

	logging.Debug("OAuth", "Callback completed (account=%s)", accountID)
	h.renderPage(w, http.StatusOK, "OpenAI connected")
}

// HandleStatus reports the connection state without mutating anything.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.manager.Status()
	if err != nil {
		logging.Error("OAuth", err, "Failed to read auth status")
		writeJSONError(w, http.StatusInternalServerError, "failed to read auth status")
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// HandleDisconnect clears the stored credentials. Idempotent: it
// succeeds even when nothing was connected.
func (h *Handler) HandleDisconnect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if err := h.manager.Disconnect(); err != nil {
		logging.Error("OAuth", err, "Failed to disconnect")
		writeJSONError(w, http.StatusInternalServerError, "failed to disconnect")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// renderCallbackError maps the error taxonomy to the page shown in the
// user's popup: validation failures are the user's 4xx, everything else
// (store I/O, provider exchange) is a 5xx.
func (h *Handler) renderCallbackError(w http.ResponseWriter, err error) {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		logging.Warn("OAuth", "Callback validation failed: %s", validationErr.Message)
		h.renderPage(w, http.StatusBadRequest, "Authorization validation failed")
		return
	}

	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		logging.Error("OAuth", storeErr, "Callback failed on store I/O")
		h.renderPage(w, http.StatusInternalServerError, "Authorization failed")
		return
	}

	logging.Error("OAuth", err, "Callback token exchange failed")
	h.renderPage(w, http.StatusInternalServerError, err.Error())
}

// redirectURIFor returns the redirect URI for this flow: the configured
// override when set, otherwise the inbound request's origin plus the
// callback path. The derived form keeps the redirect consistent between
// start and callback as long as both arrive at the same host.
func (h *Handler) redirectURIFor(r *http.Request) string {
	if h.redirectURI != "" {
		return h.redirectURI
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return fmt.Sprintf("%s://%s%s", scheme, r.Host, CallbackPath)
}

// setSecurityHeaders sets recommended security headers for HTML
// responses. These help prevent XSS, clickjacking, and MIME sniffing.
func setSecurityHeaders(w http.ResponseWriter) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'")
	w.Header().Set("Referrer-Policy", "no-referrer")
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
}

// renderPage renders the small result card shown in the popup window
// after the browser redirect.
func (h *Handler) renderPage(w http.ResponseWriter, statusCode int, message string) {
	setSecurityHeaders(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)

	safeMessage := html.EscapeString(message)

	fmt.Fprintf(w, `<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>OpenAI Auth</title>
    <style>
      body { font-family: Arial, sans-serif; background: #0f0f0f; color: #e5e5e5; display: flex; align-items: center; justify-content: center; height: 100vh; margin: 0; }
      .card { background: #1a1a1a; padding: 24px 28px; border-radius: 12px; border: 1px solid #2b2b2b; text-align: center; max-width: 420px; }
      h1 { font-size: 18px; margin: 0 0 8px; }
      p { font-size: 14px; margin: 0; color: #a3a3a3; }
    </style>
  </head>
  <body>
    <div class="card">
      <h1>%s</h1>
      <p>You can close this window and return to the app.</p>
    </div>
  </body>
</html>`, safeMessage)
}

func writeJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Error("OAuth", err, "Failed to encode JSON response")
	}
}

func writeJSONError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}
