package folder

import (
	"testing"

	"github.com/emersion/go-imap/v2"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		folder      string
		attrs       []imap.MailboxAttr
		providerMap map[string]Role
		want        Role
	}{
		{
			name:   "inbox by name regardless of hints",
			folder: "INBOX",
			providerMap: map[string]Role{
				"INBOX": RoleArchive,
			},
			want: RoleInbox,
		},
		{
			name:   "case-folded name match",
			folder: "Junk",
			want:   RoleSpam,
		},
		{
			name:   "provider hint map",
			folder: "INBOX.Junk Mail",
			providerMap: map[string]Role{
				"INBOX.Junk Mail": RoleSpam,
			},
			want: RoleSpam,
		},
		{
			name:   "flag fallback for unrecognized name",
			folder: "Deleted Stuff",
			attrs:  []imap.MailboxAttr{imap.MailboxAttrTrash},
			want:   RoleTrash,
		},
		{
			name:   "name beats flag",
			folder: "Sent",
			attrs:  []imap.MailboxAttr{imap.MailboxAttrTrash},
			want:   RoleSent,
		},
		{
			name:   "flagged maps to important",
			folder: "Starred",
			attrs:  []imap.MailboxAttr{imap.MailboxAttrFlagged},
			want:   RoleImportant,
		},
		{
			name:   "no match yields empty role",
			folder: "Receipts",
			attrs:  []imap.MailboxAttr{imap.MailboxAttrHasChildren},
			want:   RoleNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.folder, tt.attrs, tt.providerMap)
			if got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.folder, got, tt.want)
			}
		})
	}
}

func TestIsSentinelName(t *testing.T) {
	for _, name := range []string{`\Noselect`, `\NoSelect`, `\NonExistent`} {
		if !IsSentinelName(name) {
			t.Errorf("IsSentinelName(%q) = false, want true", name)
		}
	}
	if IsSentinelName("INBOX") {
		t.Error("IsSentinelName(INBOX) = true, want false")
	}
}

func TestIsSelectable(t *testing.T) {
	if IsSelectable([]imap.MailboxAttr{imap.MailboxAttrNoSelect}) {
		t.Error("folder with \\Noselect reported selectable")
	}
	if IsSelectable([]imap.MailboxAttr{imap.MailboxAttrNonExistent}) {
		t.Error("folder with \\NonExistent reported selectable")
	}
	if !IsSelectable([]imap.MailboxAttr{imap.MailboxAttrHasNoChildren}) {
		t.Error("ordinary folder reported unselectable")
	}
}
