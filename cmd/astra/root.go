// Package main provides the entry point for the Astra CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for Astra.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "astra",
		Short: "Attack surface assessment toolkit for web targets",
		Long: `Astra maps the attack surface of a web target.

It crawls the site within a configurable page budget and link depth,
inventories pages, assets, and links leaving the domain, and probes the
host's network services (DNS, open ports, TLS, SSH, HTTP headers) for
exposure and misconfiguration. Results are stored locally so a target
can be tracked across assessments.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewScanCmd())
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
