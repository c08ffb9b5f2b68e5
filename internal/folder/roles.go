// Package folder maps server-reported IMAP folders onto canonical,
// provider-independent roles. Folder name mappings are based on
// RFC 6154 special-use conventions.
package folder

import "github.com/emersion/go-imap/v2"

// Role is a canonical folder category.
type Role string

const (
	RoleInbox     Role = "inbox"
	RoleDrafts    Role = "drafts"
	RoleSpam      Role = "spam"
	RoleArchive   Role = "archive"
	RoleSent      Role = "sent"
	RoleTrash     Role = "trash"
	RoleAll       Role = "all"
	RoleImportant Role = "important"

	// RoleNone marks a folder with no recognized role. Such folders
	// are still synced, just without a canonical category.
	RoleNone Role = ""
)

// defaultNameRoles unifies common provider folder names, keyed by the
// case-folded folder name.
var defaultNameRoles = map[string]Role{
	"inbox":     RoleInbox,
	"drafts":    RoleDrafts,
	"draft":     RoleDrafts,
	"junk":      RoleSpam,
	"spam":      RoleSpam,
	"archive":   RoleArchive,
	"sent":      RoleSent,
	"trash":     RoleTrash,
	"all":       RoleAll,
	"important": RoleImportant,
}

// flagRoles maps special-use mailbox attributes to roles, used as the
// last classification fallback.
var flagRoles = map[imap.MailboxAttr]Role{
	imap.MailboxAttrDrafts:    RoleDrafts,
	imap.MailboxAttrSent:      RoleSent,
	imap.MailboxAttrJunk:      RoleSpam,
	imap.MailboxAttrTrash:     RoleTrash,
	imap.MailboxAttrArchive:   RoleArchive,
	imap.MailboxAttrAll:       RoleAll,
	imap.MailboxAttrFlagged:   RoleImportant,
	imap.MailboxAttrImportant: RoleImportant,
}
