package cmd

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/clarois/node-banana-kie/internal/oauth"
	"github.com/clarois/node-banana-kie/internal/server"
)

const (
	// loginTimeout bounds how long login waits for the user to finish
	// the browser flow.
	loginTimeout = 5 * time.Minute

	// loginPollInterval is how often login checks whether the callback
	// has completed.
	loginPollInterval = 2 * time.Second
)

// authLoginCmd runs the browser authorization flow from the terminal.
var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authorize via the browser",
	Long: `Runs the OAuth authorization flow without the editor frontend.

This starts the auth HTTP server temporarily so the provider redirect
has somewhere to land, opens the authorization URL in your browser, and
waits for the flow to complete.`,
	Args: cobra.NoArgs,
	RunE: runAuthLogin,
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(authConfigFile, authDebug)
	if err != nil {
		return err
	}

	manager, _ := buildComponents(cfg)
	handler := oauth.NewHandler(manager, cfg.OAuth.RedirectURI)
	srv := server.New(cfg.Server, handler)

	serverCtx, stopServer := context.WithCancel(cmd.Context())
	defer stopServer()
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.Run(serverCtx)
	}()

	redirectURI := cfg.OAuth.RedirectURI
	if redirectURI == "" {
		redirectURI = fmt.Sprintf("http://%s%s", srv.Addr(), oauth.CallbackPath)
	}

	authURL, err := manager.StartAuthorization(redirectURI)
	if err != nil {
		return fmt.Errorf("failed to start authorization: %w", err)
	}

	fmt.Println("Opening your browser to authorize. If it does not open, visit:")
	fmt.Printf("\n  %s\n\n", authURL)
	if err := openBrowser(authURL); err != nil {
		fmt.Printf("Could not open browser automatically: %v\n", err)
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " Waiting for authorization..."
	s.Start()
	defer s.Stop()

	deadline := time.After(loginTimeout)
	ticker := time.NewTicker(loginPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			status, err := manager.Status()
			if err != nil {
				return err
			}
			if status.Connected && !status.Expired {
				s.Stop()
				fmt.Println("Connected.")
				return nil
			}
		case err := <-serverErrCh:
			return fmt.Errorf("callback server stopped: %w", err)
		case <-deadline:
			return fmt.Errorf("timed out waiting for authorization after %s", loginTimeout)
		case <-cmd.Context().Done():
			return cmd.Context().Err()
		}
	}
}

// openBrowser opens the default browser to the given URL.
func openBrowser(url string) error {
	var c *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		c = exec.Command("open", url)
	case "linux":
		c = exec.Command("xdg-open", url)
	case "windows":
		c = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	return c.Start()
}
