package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mailme/mailme/internal/imapsync"
)

func newSyncCmd() *cobra.Command {
	var mailbox string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one sync pass over the configured mailboxes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadAppConfig()
			if err != nil {
				return err
			}
			log := newLogger(cfg)

			selected, err := selectMailboxes(cfg, mailbox)
			if err != nil {
				return err
			}

			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			engine := imapsync.NewEngine(st, nil, log)

			var failed int
			for _, mc := range selected {
				mb, err := buildMailbox(log, mc)
				if err != nil {
					failed++
					log.Error().Err(err).Msg("skipping mailbox")
					continue
				}

				report := engine.Sync(cmd.Context(), mb)
				if report.Err != nil {
					failed++
					log.Error().Str("mailbox", mb.Name).Err(report.Err).Msg("sync failed")
					continue
				}

				for _, fr := range report.Folders {
					switch {
					case fr.Err != nil:
						fmt.Fprintf(cmd.OutOrStdout(), "%s  %s: error: %v\n", mb.Name, fr.Name, fr.Err)
					case fr.Skipped:
						fmt.Fprintf(cmd.OutOrStdout(), "%s  %s: up to date\n", mb.Name, fr.Name)
					default:
						fmt.Fprintf(cmd.OutOrStdout(), "%s  %s: fetched %d\n", mb.Name, fr.Name, fr.Fetched)
					}
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d mailbox(es) failed to sync", failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&mailbox, "mailbox", "", "sync only this mailbox (id or name)")
	return cmd
}
