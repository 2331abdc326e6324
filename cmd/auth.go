package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	authConfigFile string
	authDebug      bool
)

// authCmd represents the auth command group.
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the OpenAI connection",
	Long: `Manage the OAuth connection to OpenAI.

Examples:
  banana-auth auth login       # Run the browser authorization flow
  banana-auth auth status      # Show connection status
  banana-auth auth disconnect  # Clear stored credentials`,
}

// authDisconnectCmd clears the stored credentials.
var authDisconnectCmd = &cobra.Command{
	Use:   "disconnect",
	Short: "Clear stored credentials",
	Long: `Clears the stored token set and any pending authorization attempt.

Disconnecting always succeeds, even when nothing was connected. It does
not touch credential files owned by the codex CLI tooling; those may be
re-imported by the next token request unless the CLI is logged out too.`,
	Args: cobra.NoArgs,
	RunE: runAuthDisconnect,
}

func init() {
	authCmd.PersistentFlags().StringVar(&authConfigFile, "config", "", "Path to the configuration file (default: config.yaml)")
	authCmd.PersistentFlags().BoolVar(&authDebug, "debug", false, "Enable debug logging")

	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authDisconnectCmd)
}

func runAuthDisconnect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(authConfigFile, authDebug)
	if err != nil {
		return err
	}

	manager, _ := buildComponents(cfg)
	if err := manager.Disconnect(); err != nil {
		return fmt.Errorf("failed to disconnect: %w", err)
	}

	fmt.Println("Disconnected.")
	return nil
}
