package folder

import (
	"strings"

	"github.com/emersion/go-imap/v2"
)

// sentinelNames are markers some servers emit in place of selectable
// folders; they can never contain messages and are excluded from
// classification entirely.
var sentinelNames = map[string]struct{}{
	`\Noselect`:   {},
	`\NoSelect`:   {},
	`\NonExistent`: {},
}

// IsSentinelName reports whether name is one of the non-selectable
// sentinel markers.
func IsSentinelName(name string) bool {
	_, ok := sentinelNames[name]
	return ok
}

// IsSelectable reports whether a folder with the given attributes can
// be selected at all.
func IsSelectable(attrs []imap.MailboxAttr) bool {
	for _, attr := range attrs {
		if attr == imap.MailboxAttrNoSelect || attr == imap.MailboxAttrNonExistent {
			return false
		}
	}
	return true
}

// Classify maps a server-reported folder to a canonical role. The
// rules apply in precedence order: case-folded name against the
// default name table, exact name against the provider hint map, then
// the first mailbox attribute present in the flag table. RoleNone is
// returned when nothing matches.
func Classify(name string, attrs []imap.MailboxAttr, providerMap map[string]Role) Role {
	if role, ok := defaultNameRoles[strings.ToLower(name)]; ok {
		return role
	}
	if role, ok := providerMap[name]; ok {
		return role
	}
	for _, attr := range attrs {
		if role, ok := flagRoles[attr]; ok {
			return role
		}
	}
	return RoleNone
}
