package cli

import (
	"bufio"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mailme/mailme/internal/config"
	"github.com/mailme/mailme/internal/credential"
	"github.com/mailme/mailme/internal/uri"
)

func newMailboxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mailbox",
		Short: "Manage configured mailboxes",
	}
	cmd.AddCommand(newMailboxAddCmd())
	cmd.AddCommand(newMailboxListCmd())
	cmd.AddCommand(newMailboxRemoveCmd())
	return cmd
}

func newMailboxAddCmd() *cobra.Command {
	var (
		email        string
		connURI      string
		providerName string
		password     string
		interval     int
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a mailbox to the configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadAppConfig()
			if err != nil {
				return err
			}

			name := args[0]
			if cfg.FindMailbox(name) != nil {
				return fmt.Errorf("mailbox %q already exists", name)
			}

			if _, err := uri.Parse(connURI); err != nil {
				return err
			}
			// The password lives in the keyring, never in the config
			// file.
			u, err := url.Parse(connURI)
			if err != nil {
				return err
			}
			if u.User != nil {
				u.User = url.User(u.User.Username())
			}

			if password == "" {
				fmt.Fprint(cmd.OutOrStdout(), "Password: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil {
					return fmt.Errorf("reading password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}

			id := uuid.NewString()
			if err := credential.Set(credential.PasswordKey(id), password); err != nil {
				return err
			}

			cfg.Mailboxes = append(cfg.Mailboxes, config.MailboxConfig{
				ID:              id,
				Name:            name,
				Email:           email,
				URI:             u.String(),
				Provider:        providerName,
				Enabled:         true,
				PollIntervalSec: interval,
			})

			if err := config.Save(flagConfig, cfg); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Mailbox %q added (%s).\n", name, id)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email address, used for provider detection")
	cmd.Flags().StringVar(&connURI, "uri", "", "connection URI, e.g. imap+ssl://user@imap.example.com")
	cmd.Flags().StringVar(&providerName, "provider", "", "pin a provider profile instead of detecting one")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when omitted)")
	cmd.Flags().IntVar(&interval, "poll-interval", 300, "poll interval in seconds")
	_ = cmd.MarkFlagRequired("uri")

	return cmd
}

func newMailboxListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured mailboxes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadAppConfig()
			if err != nil {
				return err
			}

			for _, mb := range cfg.Mailboxes {
				state := "enabled"
				if !mb.Enabled {
					state = "disabled"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s  %s  every %ds\n",
					mb.ID, mb.Name, mb.Email, state, mb.PollIntervalSec)
			}
			return nil
		},
	}
}

func newMailboxRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <mailbox>",
		Short: "Remove a mailbox and its stored credential",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadAppConfig()
			if err != nil {
				return err
			}

			mb := cfg.FindMailbox(args[0])
			if mb == nil {
				return fmt.Errorf("no mailbox named %q", args[0])
			}
			id := mb.ID

			kept := cfg.Mailboxes[:0]
			for _, m := range cfg.Mailboxes {
				if m.ID != id {
					kept = append(kept, m)
				}
			}
			cfg.Mailboxes = kept

			// A credential may never have been stored; failure to
			// remove one is not fatal.
			_ = credential.Delete(credential.PasswordKey(id))

			if err := config.Save(flagConfig, cfg); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Mailbox %q removed.\n", args[0])
			return nil
		},
	}
}
