// Package imapsync drives incremental synchronization of one mailbox:
// folder discovery and classification, cursor-based UID fetching, and
// transactional persistence of the fetched messages.
package imapsync

import (
	"context"
	"time"

	"github.com/emersion/go-imap/v2"

	"github.com/mailme/mailme/internal/folder"
	"github.com/mailme/mailme/internal/uri"
)

// RemoteFolder is one mailbox entry as reported by LIST, before
// sentinel filtering and role classification.
type RemoteFolder struct {
	Name  string
	Attrs []imap.MailboxAttr
}

// Folder is a selectable folder with its classified role.
type Folder struct {
	Name string
	Role folder.Role
}

// SelectInfo carries the server state returned by a read-only SELECT.
// HighestModSeq is zero when the server does not report CONDSTORE
// data.
type SelectInfo struct {
	UIDValidity   int64
	UIDNext       int64
	HighestModSeq int64
}

// MessageMeta is the per-message metadata fetched ahead of the body.
type MessageMeta struct {
	UID          int64
	Flags        []string
	Size         int64
	InternalDate time.Time
}

// Conn is the transport the sync engine runs against. The production
// implementation wraps go-imap; tests substitute a fake.
//
// SelectReadOnly scopes the connection to one folder; FetchMeta and
// FetchBody operate on the folder selected last.
type Conn interface {
	Login(ctx context.Context, username, password string) error
	ListFolders(ctx context.Context) ([]RemoteFolder, error)
	SelectReadOnly(ctx context.Context, name string) (*SelectInfo, error)

	// FetchMeta returns metadata for every message with UID greater
	// than sinceUID. Servers may include the last existing message
	// even when nothing is newer; callers filter by UID.
	FetchMeta(ctx context.Context, sinceUID int64) ([]MessageMeta, error)

	// FetchBody returns the full raw message for one UID, fetched
	// without setting the \Seen flag.
	FetchBody(ctx context.Context, uid int64) ([]byte, error)

	Logout() error
}

// Dialer opens a transport connection for a parsed connection spec.
// It does not authenticate; Login is a separate step so auth failures
// stay distinguishable from connect failures.
type Dialer func(ctx context.Context, spec *uri.ConnectionSpec) (Conn, error)
