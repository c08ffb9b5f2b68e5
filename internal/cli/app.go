package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/mailme/mailme/internal/config"
	"github.com/mailme/mailme/internal/credential"
	"github.com/mailme/mailme/internal/imapsync"
	"github.com/mailme/mailme/internal/provider"
	"github.com/mailme/mailme/internal/store"
	"github.com/mailme/mailme/internal/uri"
)

// loadAppConfig reads the configuration selected by --config.
func loadAppConfig() (*config.AppConfig, error) {
	return config.Load(flagConfig)
}

// newLogger builds the process logger. --log-level overrides the
// configured level.
func newLogger(cfg *config.AppConfig) zerolog.Logger {
	level := cfg.LogLevel
	if flagLogLevel != "" {
		level = flagLogLevel
	}

	lv, err := zerolog.ParseLevel(level)
	if err != nil || lv == zerolog.NoLevel {
		lv = zerolog.InfoLevel
	}

	out := zerolog.ConsoleWriter{Out: os.Stderr}
	return zerolog.New(out).Level(lv).With().Timestamp().Logger()
}

// openStore opens the sqlite database named by the configuration.
func openStore(cfg *config.AppConfig) (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(cfg.Database)
}

// buildMailbox turns a configured mailbox into a syncable one: the
// URI is parsed, a missing password is pulled from the keyring, and
// the provider profile (pinned or detected from the email address)
// contributes its folder name hints.
func buildMailbox(log zerolog.Logger, mb config.MailboxConfig) (imapsync.Mailbox, error) {
	spec, err := uri.Parse(mb.URI)
	if err != nil {
		return imapsync.Mailbox{}, fmt.Errorf("mailbox %s: %w", mb.Name, err)
	}

	if spec.Password == "" {
		if pw, err := credential.Get(credential.PasswordKey(mb.ID)); err == nil {
			spec.Password = pw
		}
	}

	name := mb.Provider
	if name == "" && mb.Email != "" {
		resolved, err := provider.NewResolver(log).ResolveAddress(mb.Email)
		if err != nil {
			return imapsync.Mailbox{}, fmt.Errorf("mailbox %s: %w", mb.Name, err)
		}
		name = resolved
	}

	out := imapsync.Mailbox{
		ID:   mb.ID,
		Name: mb.Name,
		Spec: spec,
	}
	if profile, ok := provider.Get(name); ok {
		out.FolderMap = profile.FolderMap
	}
	return out, nil
}

// selectMailboxes returns the enabled mailboxes, or just the one
// named by idOrName when non-empty.
func selectMailboxes(cfg *config.AppConfig, idOrName string) ([]config.MailboxConfig, error) {
	if idOrName != "" {
		mb := cfg.FindMailbox(idOrName)
		if mb == nil {
			return nil, fmt.Errorf("no mailbox named %q", idOrName)
		}
		return []config.MailboxConfig{*mb}, nil
	}

	var out []config.MailboxConfig
	for _, mb := range cfg.Mailboxes {
		if mb.Enabled {
			out = append(out, mb)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no enabled mailboxes configured in %s", flagConfig)
	}
	return out, nil
}
