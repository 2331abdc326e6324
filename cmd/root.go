package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error.
	ExitCodeError = 1
)

// rootCmd represents the base command for the credential service.
var rootCmd = &cobra.Command{
	Use:   "banana-auth",
	Short: "Credential service for the node-banana editor's OpenAI connection",
	Long: `banana-auth manages the OAuth credentials the node-banana editor uses
to call OpenAI on the user's behalf.

It serves the authorization endpoints the editor frontend talks to,
persists the resulting tokens, reconciles them with credentials written
by the codex CLI tooling, and refreshes access tokens before they
expire.`,
	// SilenceUsage prevents Cobra from printing the usage message on
	// errors that are handled by the application.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command. It is called from
// the main package to inject the build version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "banana-auth version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitCodeError)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(newVersionCmd())
}
