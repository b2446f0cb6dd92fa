// Nexup is a terminal front-end for the nexSoft update and QC script.
//
// It collects the environment variables and command line switches the
// updater script understands, lets an operator review and adjust them in a
// full-screen terminal UI, and then launches the script while streaming its
// output live into a scrolling log pane.
//
// Usage:
//
//	nexup [command] [flags]
//
// Running without arguments launches the interactive screen.
// See 'nexup --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nexsoft/nexup/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "nexup",
	Short: "nexSoft Update & QC front-end",
	Long: `A terminal front-end for the nexSoft update and QC script.

Presents every environment variable and switch the updater understands in
an interactive screen, detects sensible defaults from the machine, and
streams the updater's output live while it runs.

If no command is specified, the interactive screen launches automatically.`,
	Version: version.Version,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: run the interactive screen
		return runTUI(cmd, args)
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("nexup %s\n", version.Full())
	},
}
