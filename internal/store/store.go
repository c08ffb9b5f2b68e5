// Package store persists per-mailbox sync state: folder cursors and
// parsed messages. The sync engine only depends on the Store
// interface; the SQLite implementation lives alongside it.
package store

import (
	"context"
	"time"

	"github.com/mailme/mailme/internal/message"
)

// FolderState is the persisted cursor for one mailbox×folder pair.
// A changed UIDValidity invalidates every previously recorded UID in
// the folder and forces a full resync.
type FolderState struct {
	MailboxID string
	Name      string
	Role      string

	UIDValidity int64
	// UIDNext is the server-reported next UID after the last
	// successful sync pass; nil before the first pass.
	UIDNext *int64
	// HighestModSeq is recorded when the server reports CONDSTORE
	// data; it is not yet used for flag reconciliation.
	HighestModSeq *int64
}

// StoredMessage is one fetched remote message bound to its folder and
// UID, ready for persistence.
type StoredMessage struct {
	ID        string
	MailboxID string
	Folder    string
	UID       int64

	Flags        []string
	Size         int64
	InternalDate time.Time

	Parsed *message.Message
}

// Store is the persistence boundary of the sync engine.
//
// SaveMessages must be transactional per folder: the cursor must
// never advance without the corresponding messages being durably
// stored.
type Store interface {
	// GetFolderState returns the persisted state for a folder, or nil
	// when the folder has never been seen.
	GetFolderState(ctx context.Context, mailboxID, name string) (*FolderState, error)

	// UpsertFolderState creates or updates a folder's cursor state.
	UpsertFolderState(ctx context.Context, state FolderState) error

	// MaxUID returns the highest UID already persisted for a folder,
	// or zero when the folder holds no messages.
	MaxUID(ctx context.Context, mailboxID, folder string) (int64, error)

	// SaveMessages stores a batch of messages and the folder's updated
	// cursor state in a single transaction.
	SaveMessages(ctx context.Context, msgs []StoredMessage, state FolderState) error

	// DeleteFolderMessages removes every stored message of a folder;
	// used when UIDVALIDITY changes and recorded UIDs become invalid.
	DeleteFolderMessages(ctx context.Context, mailboxID, folder string) error

	// MessageCount returns the number of stored messages in a folder.
	MessageCount(ctx context.Context, mailboxID, folder string) (int, error)

	Close() error
}
