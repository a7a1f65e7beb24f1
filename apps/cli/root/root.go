package root

import (
	"github.com/spf13/cobra"
)

// rootCmd is the base command for the portal operator CLI. Subcommands (auth, subscription) are attached here.
var rootCmd = &cobra.Command{
	Use:           "portal",
	Short:         "Production portal operator CLI",
	Long:          "Operator utilities for the production portal (dev tokens, subscription inspection and repair).",
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

// Root returns the mutable root command for wiring from subpackages.
func Root() *cobra.Command {
	return rootCmd
}
