package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// MailboxConfig holds the configuration for a single synced mailbox.
type MailboxConfig struct {
	// ID is the unique identifier for this mailbox instance.
	ID string `mapstructure:"id" yaml:"id"`

	// Name is the user-defined label for this mailbox.
	Name string `mapstructure:"name" yaml:"name"`

	// Email is the account address, used for provider detection.
	Email string `mapstructure:"email" yaml:"email"`

	// URI is the transport location, e.g. "imap+ssl://user@imap.example.com".
	// The password component is kept in the credential store, not here.
	URI string `mapstructure:"uri" yaml:"uri"`

	// Provider pins a provider profile by name. Empty means detect from
	// the email address.
	Provider string `mapstructure:"provider" yaml:"provider"`

	// Enabled controls whether this mailbox is actively polled.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// PollIntervalSec is how often (in seconds) to sync the mailbox.
	PollIntervalSec int `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	// Database is the path to the sqlite database file.
	Database string `mapstructure:"database" yaml:"database"`

	// LogLevel selects the zerolog level (trace..error).
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`

	Mailboxes []MailboxConfig `mapstructure:"mailboxes" yaml:"mailboxes"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/mailme/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "mailme", "config.yaml")
}

// DefaultDatabasePath returns the default sqlite database location,
// alongside the configuration file.
func DefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "mailme.db")
	}
	return filepath.Join(home, ".config", "mailme", "mailme.db")
}

func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Database:  DefaultDatabasePath(),
		LogLevel:  "info",
		Mailboxes: []MailboxConfig{},
	}
}

// Load reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func Load(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("database", DefaultDatabasePath())
	v.SetDefault("log_level", "info")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	for i := range cfg.Mailboxes {
		if cfg.Mailboxes[i].PollIntervalSec == 0 {
			cfg.Mailboxes[i].PollIntervalSec = 300
		}
		if !cfg.Mailboxes[i].Enabled {
			// Viper unmarshals missing bools as false; treat unset as true.
			key := fmt.Sprintf("mailboxes.%d.enabled", i)
			if !v.IsSet(key) {
				cfg.Mailboxes[i].Enabled = true
			}
		}
	}

	return cfg, nil
}

// Save writes the given configuration to a YAML file at path, creating
// parent directories if needed.
func Save(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("database", cfg.Database)
	v.Set("log_level", cfg.LogLevel)
	v.Set("mailboxes", cfg.Mailboxes)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}

// FindMailbox returns the mailbox with the given id or name, or nil.
func (c *AppConfig) FindMailbox(idOrName string) *MailboxConfig {
	for i := range c.Mailboxes {
		if c.Mailboxes[i].ID == idOrName || c.Mailboxes[i].Name == idOrName {
			return &c.Mailboxes[i]
		}
	}
	return nil
}
