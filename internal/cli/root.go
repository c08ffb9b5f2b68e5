// Package cli wires the configuration, store, and sync engine into
// the mailme command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mailme/mailme/internal/config"
)

var (
	flagConfig   string
	flagLogLevel string
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "mailme",
		Short:        "mailme syncs IMAP mailboxes into a local database",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&flagConfig, "config", config.DefaultConfigPath(), "path to the configuration file")
	cmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level (trace, debug, info, warn, error)")

	cmd.AddCommand(newSyncCmd())
	cmd.AddCommand(newDaemonCmd())
	cmd.AddCommand(newFoldersCmd())
	cmd.AddCommand(newProviderCmd())
	cmd.AddCommand(newMailboxCmd())

	cmd.SetErr(os.Stderr)
	cmd.SetOut(os.Stdout)

	return cmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
