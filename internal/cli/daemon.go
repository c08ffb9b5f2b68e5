package cli

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mailme/mailme/internal/imapsync"
	"github.com/mailme/mailme/internal/poller"
)

func newDaemonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Continuously sync all enabled mailboxes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadAppConfig()
			if err != nil {
				return err
			}
			log := newLogger(cfg)

			selected, err := selectMailboxes(cfg, "")
			if err != nil {
				return err
			}

			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			engine := imapsync.NewEngine(st, nil, log)
			p := poller.New(engine, log)

			for _, mc := range selected {
				mb, err := buildMailbox(log, mc)
				if err != nil {
					log.Error().Err(err).Msg("skipping mailbox")
					continue
				}
				p.Register(mb, time.Duration(mc.PollIntervalSec)*time.Second)
				log.Info().
					Str("mailbox", mb.Name).
					Int("interval_sec", mc.PollIntervalSec).
					Msg("mailbox registered")
			}

			p.Start()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			sig := <-sigCh

			log.Info().Str("signal", sig.String()).Msg("shutting down")
			p.Stop()
			return nil
		},
	}
}
