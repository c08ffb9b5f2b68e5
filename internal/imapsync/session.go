package imapsync

import (
	"context"
	"fmt"
	"sort"

	"github.com/mailme/mailme/internal/folder"
	"github.com/mailme/mailme/internal/uri"
)

// Session is a lazily connected, authenticated link to one mailbox.
// The connection is opened on first use and reused until Close.
type Session struct {
	mailbox   string
	spec      *uri.ConnectionSpec
	folderMap map[string]folder.Role
	dial      Dialer

	conn Conn
}

// NewSession prepares a session for the given connection spec.
// folderMap carries provider-specific folder name hints and may be
// nil. dial defaults to the go-imap transport.
func NewSession(mailbox string, spec *uri.ConnectionSpec, folderMap map[string]folder.Role, dial Dialer) *Session {
	if dial == nil {
		dial = Dial
	}
	return &Session{
		mailbox:   mailbox,
		spec:      spec,
		folderMap: folderMap,
		dial:      dial,
	}
}

// Conn returns the session's connection, dialing and authenticating
// on first call.
func (s *Session) Conn(ctx context.Context) (Conn, error) {
	if s.conn != nil {
		return s.conn, nil
	}

	conn, err := s.dial(ctx, s.spec)
	if err != nil {
		return nil, err
	}

	if err := conn.Login(ctx, s.spec.Username, s.spec.Password); err != nil {
		_ = conn.Logout()
		return nil, &AuthError{
			Mailbox: s.mailbox,
			Message: err.Error(),
		}
	}

	s.conn = conn
	return s.conn, nil
}

// Folders lists the mailbox's folders, drops unselectable entries,
// and classifies each remaining one.
func (s *Session) Folders(ctx context.Context) ([]Folder, error) {
	conn, err := s.Conn(ctx)
	if err != nil {
		return nil, err
	}

	remote, err := conn.ListFolders(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing folders of %s: %w", s.mailbox, err)
	}

	var folders []Folder
	for _, rf := range remote {
		if folder.IsSentinelName(rf.Name) || !folder.IsSelectable(rf.Attrs) {
			continue
		}
		folders = append(folders, Folder{
			Name: rf.Name,
			Role: folder.Classify(rf.Name, rf.Attrs, s.folderMap),
		})
	}
	return folders, nil
}

// Close logs out the underlying connection, if any was opened.
func (s *Session) Close() error {
	if s.conn == nil {
		return nil
	}
	err := s.conn.Logout()
	s.conn = nil
	return err
}

// OrderForSync returns folders in sync order: inbox-role folders
// first, in discovery order, then the rest sorted by name.
func OrderForSync(folders []Folder) []Folder {
	ordered := make([]Folder, 0, len(folders))
	var rest []Folder
	for _, f := range folders {
		if f.Role == folder.RoleInbox {
			ordered = append(ordered, f)
		} else {
			rest = append(rest, f)
		}
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i].Name < rest[j].Name })
	return append(ordered, rest...)
}
