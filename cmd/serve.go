package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/clarois/node-banana-kie/internal/oauth"
	"github.com/clarois/node-banana-kie/internal/server"
	"github.com/clarois/node-banana-kie/pkg/logging"
)

var (
	serveConfigFile string
	serveDebug      bool
)

// serveCmd starts the credential service HTTP endpoints.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the auth HTTP endpoints for the editor frontend",
	Long: `Starts the HTTP server hosting the OAuth endpoints the node-banana
editor frontend talks to:

  GET  /api/auth/openai/start       begin an authorization flow
  GET  /api/auth/openai/callback    provider browser redirect target
  GET  /api/auth/openai/status      connection status
  POST /api/auth/openai/disconnect  clear stored credentials

While running, the service also watches the codex CLI credential files
and reconciles the store when an external login is detected.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveConfigFile, "config", "", "Path to the configuration file (default: config.yaml)")
	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "Enable debug logging")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(serveConfigFile, serveDebug)
	if err != nil {
		return err
	}

	manager, locator := buildComponents(cfg)
	handler := oauth.NewHandler(manager, cfg.OAuth.RedirectURI)
	srv := server.New(cfg.Server, handler)

	watcher := oauth.NewCredentialWatcher(locator.Paths(), func() {
		logging.Info("OAuth", "External credential change detected, reconciling")
		if _, err := manager.CurrentToken(context.Background()); err != nil {
			logging.Warn("OAuth", "Reconciliation after external change failed: %v", err)
		}
	})
	if err := watcher.Start(); err != nil {
		logging.Warn("OAuth", "External credential watching unavailable: %v", err)
	}
	defer watcher.Stop()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx)
}
