package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newVersionCmd creates the Cobra command for displaying the application version.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of banana-auth",
		Run: func(cmd *cobra.Command, args []string) {
			// rootCmd.Version is set from main during build.
			fmt.Fprintf(cmd.OutOrStdout(), "banana-auth version %s\n", rootCmd.Version)
		},
	}
}
