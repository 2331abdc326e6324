package cmd

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

// authStatusCmd shows the current connection status.
var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show connection status",
	Long: `Show whether the editor is connected to OpenAI and when the stored
access token expires.

The status is read from the local store only; it does not probe the
codex CLI credential files or contact the provider.`,
	Args: cobra.NoArgs,
	RunE: runAuthStatus,
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(authConfigFile, authDebug)
	if err != nil {
		return err
	}

	manager, _ := buildComponents(cfg)
	status, err := manager.Status()
	if err != nil {
		return fmt.Errorf("failed to read status: %w", err)
	}

	fmt.Println("OpenAI connection")
	fmt.Printf("  Store:     %s\n", cfg.Store.Path)

	if !status.Connected {
		fmt.Printf("  Status:    %s\n", text.FgYellow.Sprint("Not connected"))
		fmt.Printf("             Run: banana-auth auth login\n")
		return nil
	}

	if status.Expired {
		fmt.Printf("  Status:    %s\n", text.FgYellow.Sprint("Connected (token expired)"))
	} else {
		fmt.Printf("  Status:    %s\n", text.FgGreen.Sprint("Connected"))
	}

	if status.ExpiresAt > 0 {
		expiry := time.UnixMilli(status.ExpiresAt)
		fmt.Printf("  Expires:   %s (%s)\n", expiry.Format(time.RFC3339), formatRelative(expiry))
	} else {
		fmt.Printf("  Expires:   never\n")
	}
	return nil
}

// formatRelative renders an expiry instant relative to now.
func formatRelative(t time.Time) string {
	d := time.Until(t)
	if d < 0 {
		return fmt.Sprintf("%s ago", (-d).Round(time.Second))
	}
	return fmt.Sprintf("in %s", d.Round(time.Second))
}
