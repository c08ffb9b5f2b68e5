package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS folders (
	mailbox_id    TEXT NOT NULL,
	name          TEXT NOT NULL,
	role          TEXT NOT NULL DEFAULT '',
	uidvalidity   INTEGER NOT NULL DEFAULT 0,
	uidnext       INTEGER,
	highestmodseq INTEGER,
	updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (mailbox_id, name)
);

CREATE TABLE IF NOT EXISTS messages (
	id            TEXT PRIMARY KEY,
	mailbox_id    TEXT NOT NULL,
	folder        TEXT NOT NULL,
	uid           INTEGER NOT NULL,
	message_id    TEXT NOT NULL DEFAULT '',
	subject       TEXT NOT NULL DEFAULT '',
	date          TEXT NOT NULL DEFAULT '',
	parsed_date   DATETIME,
	from_addrs    TEXT NOT NULL DEFAULT '[]',
	to_addrs      TEXT NOT NULL DEFAULT '[]',
	cc_addrs      TEXT NOT NULL DEFAULT '[]',
	bcc_addrs     TEXT NOT NULL DEFAULT '[]',
	text_parts    TEXT NOT NULL DEFAULT '[]',
	html_parts    TEXT NOT NULL DEFAULT '[]',
	headers       TEXT NOT NULL DEFAULT '{}',
	raw           TEXT NOT NULL DEFAULT '',
	size          INTEGER NOT NULL DEFAULT 0,
	flags         TEXT NOT NULL DEFAULT '[]',
	internal_date DATETIME,
	created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (mailbox_id, folder, uid)
);

CREATE INDEX IF NOT EXISTS idx_messages_folder_uid
	ON messages(mailbox_id, folder, uid);
`,
	},
}
