package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mailme/mailme/internal/provider"
)

func newProviderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "provider <email>",
		Short: "Detect the mail provider behind an email address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadAppConfig()
			if err != nil {
				return err
			}
			log := newLogger(cfg)

			name, err := provider.NewResolver(log).ResolveAddress(args[0])
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), name)
			if profile, ok := provider.Get(name); ok && profile.IMAP.Host != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "imap: %s:%d\n", profile.IMAP.Host, profile.IMAP.Port)
				fmt.Fprintf(cmd.OutOrStdout(), "smtp: %s:%d\n", profile.SMTP.Host, profile.SMTP.Port)
			}
			return nil
		},
	}
}
