package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mailme/mailme/internal/imapsync"
)

func newFoldersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "folders <mailbox>",
		Short: "List a mailbox's folders with their detected roles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadAppConfig()
			if err != nil {
				return err
			}
			log := newLogger(cfg)

			mc := cfg.FindMailbox(args[0])
			if mc == nil {
				return fmt.Errorf("no mailbox named %q", args[0])
			}

			mb, err := buildMailbox(log, *mc)
			if err != nil {
				return err
			}

			session := imapsync.NewSession(mb.Name, mb.Spec, mb.FolderMap, nil)
			defer func() { _ = session.Close() }()

			folders, err := session.Folders(cmd.Context())
			if err != nil {
				return err
			}

			for _, f := range imapsync.OrderForSync(folders) {
				role := string(f.Role)
				if role == "" {
					role = "-"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s\n", role, f.Name)
			}
			return nil
		},
	}
}
