// Package main is the entry point for the looper CLI, a bounded work
// loop controller for Claude Code. It is invoked three ways: by the
// /loop slash command (start), by the Stop hook (hook), and directly by
// the user (status, stop, watch, init).
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "looper",
		Short:   "looper: bounded, resumable work loops for Claude Code",
		Version: version,
		// Stdout is part of the hook protocol; errors go to stderr only
		// and never dump the usage text into the host's stream.
		SilenceUsage: true,
	}

	root.AddCommand(
		startCmd(),
		hookCmd(),
		stopCmd(),
		statusCmd(),
		watchCmd(),
		initCmd(),
	)

	return root
}
