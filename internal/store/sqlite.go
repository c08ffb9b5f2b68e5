package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/mailme/mailme/internal/message"
)

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	var hasVersionTable int
	err := s.db.Get(&hasVersionTable,
		`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'`)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}
	if hasVersionTable > 0 {
		if err := s.db.Get(&currentVersion,
			`SELECT COALESCE(MAX(version), 0) FROM schema_version`); err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration %d: %w", m.version, err)
		}
		if _, err := s.db.Exec(`DELETE FROM schema_version`); err != nil {
			return fmt.Errorf("recording migration %d: %w", m.version, err)
		}
		if _, err := s.db.Exec(
			`INSERT INTO schema_version (version) VALUES (?)`, m.version); err != nil {
			return fmt.Errorf("recording migration %d: %w", m.version, err)
		}
	}

	return nil
}

// GetFolderState returns the persisted folder state, or nil when the
// folder has never been recorded.
func (s *SQLiteStore) GetFolderState(ctx context.Context, mailboxID, name string) (*FolderState, error) {
	var row struct {
		MailboxID     string        `db:"mailbox_id"`
		Name          string        `db:"name"`
		Role          string        `db:"role"`
		UIDValidity   int64         `db:"uidvalidity"`
		UIDNext       sql.NullInt64 `db:"uidnext"`
		HighestModSeq sql.NullInt64 `db:"highestmodseq"`
	}

	err := s.db.GetContext(ctx, &row, `
		SELECT mailbox_id, name, role, uidvalidity, uidnext, highestmodseq
		FROM folders WHERE mailbox_id = ? AND name = ?`,
		mailboxID, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting folder state %s/%s: %w", mailboxID, name, err)
	}

	state := &FolderState{
		MailboxID:   row.MailboxID,
		Name:        row.Name,
		Role:        row.Role,
		UIDValidity: row.UIDValidity,
	}
	if row.UIDNext.Valid {
		state.UIDNext = &row.UIDNext.Int64
	}
	if row.HighestModSeq.Valid {
		state.HighestModSeq = &row.HighestModSeq.Int64
	}
	return state, nil
}

// UpsertFolderState creates or updates a folder's cursor state.
func (s *SQLiteStore) UpsertFolderState(ctx context.Context, state FolderState) error {
	_, err := s.db.ExecContext(ctx, upsertFolderSQL,
		state.MailboxID, state.Name, state.Role,
		state.UIDValidity, nullable(state.UIDNext), nullable(state.HighestModSeq))
	if err != nil {
		return fmt.Errorf("upserting folder state %s/%s: %w", state.MailboxID, state.Name, err)
	}
	return nil
}

const upsertFolderSQL = `
	INSERT INTO folders (mailbox_id, name, role, uidvalidity, uidnext, highestmodseq, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT (mailbox_id, name) DO UPDATE SET
		role = excluded.role,
		uidvalidity = excluded.uidvalidity,
		uidnext = excluded.uidnext,
		highestmodseq = excluded.highestmodseq,
		updated_at = CURRENT_TIMESTAMP`

// MaxUID returns the highest persisted UID for a folder, or zero.
func (s *SQLiteStore) MaxUID(ctx context.Context, mailboxID, folder string) (int64, error) {
	var max int64
	err := s.db.GetContext(ctx, &max, `
		SELECT COALESCE(MAX(uid), 0) FROM messages
		WHERE mailbox_id = ? AND folder = ?`,
		mailboxID, folder)
	if err != nil {
		return 0, fmt.Errorf("getting max uid for %s/%s: %w", mailboxID, folder, err)
	}
	return max, nil
}

// SaveMessages stores a message batch plus the folder's updated cursor
// state in one transaction, so the cursor never advances without its
// messages.
func (s *SQLiteStore) SaveMessages(ctx context.Context, msgs []StoredMessage, state FolderState) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning save transaction: %w", err)
	}
	defer tx.Rollback()

	for _, m := range msgs {
		if m.ID == "" {
			m.ID = uuid.New().String()
		}
		if err := insertMessage(ctx, tx, m); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, upsertFolderSQL,
		state.MailboxID, state.Name, state.Role,
		state.UIDValidity, nullable(state.UIDNext), nullable(state.HighestModSeq)); err != nil {
		return fmt.Errorf("updating folder cursor %s/%s: %w", state.MailboxID, state.Name, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing message batch: %w", err)
	}
	return nil
}

func insertMessage(ctx context.Context, tx *sqlx.Tx, m StoredMessage) error {
	p := m.Parsed
	if p == nil {
		p = &message.Message{}
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO messages (
			id, mailbox_id, folder, uid,
			message_id, subject, date, parsed_date,
			from_addrs, to_addrs, cc_addrs, bcc_addrs,
			text_parts, html_parts, headers,
			raw, size, flags, internal_date
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (mailbox_id, folder, uid) DO UPDATE SET
			message_id = excluded.message_id,
			subject = excluded.subject,
			date = excluded.date,
			parsed_date = excluded.parsed_date,
			from_addrs = excluded.from_addrs,
			to_addrs = excluded.to_addrs,
			cc_addrs = excluded.cc_addrs,
			bcc_addrs = excluded.bcc_addrs,
			text_parts = excluded.text_parts,
			html_parts = excluded.html_parts,
			headers = excluded.headers,
			raw = excluded.raw,
			size = excluded.size,
			flags = excluded.flags,
			internal_date = excluded.internal_date`,
		m.ID, m.MailboxID, m.Folder, m.UID,
		p.MessageID, p.Subject, p.Date, nullableTime(p.ParsedDate),
		asJSON(p.From), asJSON(p.To), asJSON(p.Cc), asJSON(p.Bcc),
		asJSON(p.TextParts), asJSON(p.HTMLParts), asJSON(p.Headers),
		p.Original, m.Size, asJSON(m.Flags), nullableTime(m.InternalDate),
	)
	if err != nil {
		return fmt.Errorf("inserting message uid %d in %s/%s: %w", m.UID, m.MailboxID, m.Folder, err)
	}
	return nil
}

// DeleteFolderMessages removes every stored message of a folder.
func (s *SQLiteStore) DeleteFolderMessages(ctx context.Context, mailboxID, folder string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM messages WHERE mailbox_id = ? AND folder = ?`,
		mailboxID, folder)
	if err != nil {
		return fmt.Errorf("purging messages for %s/%s: %w", mailboxID, folder, err)
	}
	return nil
}

// MessageCount returns the number of stored messages in a folder.
func (s *SQLiteStore) MessageCount(ctx context.Context, mailboxID, folder string) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM messages WHERE mailbox_id = ? AND folder = ?`,
		mailboxID, folder)
	if err != nil {
		return 0, fmt.Errorf("counting messages for %s/%s: %w", mailboxID, folder, err)
	}
	return count, nil
}

func asJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

func nullable(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}
