// Package main provides the entry point for the spacemirror CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for spacemirror.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spacemirror",
		Short: "Offline mirroring tool for wiki document spaces",
		Long: `spacemirror creates a self-contained offline copy of a wiki document space.
It crawls the space's page hierarchy, downloads pages with their images and
attachments, and rewrites links so the copy can be browsed from disk without
a network connection.

Authenticated spaces are supported via a session cookie file exported from
a logged-in browser session (see --cookies).`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewMirrorCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
