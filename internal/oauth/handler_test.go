package oauth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

// newTestHandler wires the full HTTP surface against a temp store and
// the given token endpoint.
func newTestHandler(t *testing.T, tokenEndpoint string) (*Handler, *http.ServeMux) {
	t.Helper()

	manager, _ := newTestManager(t, tokenEndpoint, nil)
	handler := NewHandler(manager, testRedirectURI)

	mux := http.NewServeMux()
	handler.Register(mux)
	return handler, mux
}

func TestHandler_FullFlow(t *testing.T) {
	endpoint := newTokenEndpoint(t, http.StatusOK, map[string]interface{}{
		"access_token": "access-e2e",
		"expires_in":   3600,
	}, nil)
	defer endpoint.Close()

	_, mux := newTestHandler(t, endpoint.URL)

	// Start: the frontend asks for the authorize URL.
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, StartPath, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 from start, got %d: %s", rec.Code, rec.Body.String())
	}

	var startResp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &startResp); err != nil {
		t.Fatalf("Start response is not JSON: %v", err)
	}
	authURL, err := url.Parse(startResp["url"])
	if err != nil {
		t.Fatalf("Start URL does not parse: %v", err)
	}
	state := authURL.Query().Get("state")
	if state == "" {
		t.Fatal("Start URL carries no state")
	}

	// Status before the callback: not connected.
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, StatusPath, nil))
	var status Status
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("Status response is not JSON: %v", err)
	}
	if status.Connected {
		t.Error("Expected not connected before callback")
	}

	// Callback: the provider redirects the browser back.
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, CallbackPath+"?code=code-1&state="+url.QueryEscape(state), nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 from callback, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "OpenAI connected") {
		t.Errorf("Expected success page, got: %s", rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Expected HTML callback response, got %q", ct)
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("Expected security headers on the callback page")
	}

	// Status after the callback: connected.
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, StatusPath, nil))
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("Status response is not JSON: %v", err)
	}
	if !status.Connected || status.Expired {
		t.Errorf("Expected connected and not expired, got %+v", status)
	}

	// Disconnect.
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, DisconnectPath, nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("Expected 204 from disconnect, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, StatusPath, nil))
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("Status response is not JSON: %v", err)
	}
	if status.Connected {
		t.Error("Expected disconnected after disconnect")
	}
}

func TestHandler_CallbackMissingParams(t *testing.T) {
	_, mux := newTestHandler(t, "https://auth.example.com/oauth/token")

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, CallbackPath, nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing params, got %d", rec.Code)
	}
}

func TestHandler_CallbackProviderError(t *testing.T) {
	_, mux := newTestHandler(t, "https://auth.example.com/oauth/token")

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, CallbackPath+"?error=access_denied&error_description=User+denied", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for provider error, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "User denied") {
		t.Errorf("Expected error description on the page, got: %s", rec.Body.String())
	}
}

func TestHandler_CallbackEscapesProviderError(t *testing.T) {
	_, mux := newTestHandler(t, "https://auth.example.com/oauth/token")

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, CallbackPath+"?error=x&error_description="+url.QueryEscape("<script>alert(1)</script>"), nil))
	if strings.Contains(rec.Body.String(), "<script>") {
		t.Error("Provider error description must be HTML-escaped")
	}
}

func TestHandler_DisconnectRequiresPost(t *testing.T) {
	_, mux := newTestHandler(t, "https://auth.example.com/oauth/token")

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, DisconnectPath, nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405 for GET disconnect, got %d", rec.Code)
	}
	if rec.Header().Get("Allow") != http.MethodPost {
		t.Errorf("Expected Allow: POST header, got %q", rec.Header().Get("Allow"))
	}
}

func TestHandler_DerivedRedirectURI(t *testing.T) {
	manager, _ := newTestManager(t, "https://auth.example.com/oauth/token", nil)
	handler := NewHandler(manager, "")

	req := httptest.NewRequest(http.MethodGet, StartPath, nil)
	req.Host = "editor.example.com"
	if got, want := handler.redirectURIFor(req), "http://editor.example.com"+CallbackPath; got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}

	req.Header.Set("X-Forwarded-Proto", "https")
	if got, want := handler.redirectURIFor(req), "https://editor.example.com"+CallbackPath; got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}
