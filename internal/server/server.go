package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/clarois/node-banana-kie/internal/config"
	"github.com/clarois/node-banana-kie/internal/oauth"
	"github.com/clarois/node-banana-kie/pkg/logging"
)

const (
	// DefaultReadHeaderTimeout is the timeout for reading request headers.
	DefaultReadHeaderTimeout = 10 * time.Second
	// DefaultWriteTimeout is the timeout for writing responses. The token
	// exchange happens inside the callback request, so this must cover a
	// slow provider round trip.
	DefaultWriteTimeout = 120 * time.Second
	// DefaultIdleTimeout is the idle timeout for keepalive connections.
	DefaultIdleTimeout = 120 * time.Second

	// shutdownTimeout bounds graceful shutdown on context cancellation.
	shutdownTimeout = 5 * time.Second
)

// Server hosts the auth HTTP endpoints for the editor frontend.
type Server struct {
	httpServer *http.Server
}

// New creates the HTTP server serving the given auth handler.
func New(cfg config.ServerConfig, authHandler *oauth.Handler) *Server {
	mux := http.NewServeMux()
	authHandler.Register(mux)
	mux.HandleFunc("/healthz", handleHealthz)

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:           withRequestID(mux),
			ReadHeaderTimeout: DefaultReadHeaderTimeout,
			WriteTimeout:      DefaultWriteTimeout,
			IdleTimeout:       DefaultIdleTimeout,
		},
	}
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Run serves until the context is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	logging.Info("Server", "Auth endpoints listening on http://%s", s.httpServer.Addr)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logging.Info("Server", "Shutting down")
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// statusRecorder captures the response status for access logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withRequestID tags every request with an id and emits an access log
// line. Query strings are not logged: the callback carries the
// authorization code and state in its query.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		w.Header().Set("X-Request-Id", requestID)

		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(recorder, r)

		logging.Debug("Server", "%s %s status=%d duration=%s request_id=%s",
			r.Method, r.URL.Path, recorder.status, time.Since(start), requestID)
	})
}
