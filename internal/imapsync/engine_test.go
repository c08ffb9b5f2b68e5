package imapsync_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/mailme/mailme/internal/folder"
	"github.com/mailme/mailme/internal/imapsync"
	"github.com/mailme/mailme/internal/uri"
	"github.com/mailme/mailme/tests/testutil"
)

type fakeFolder struct {
	uidValidity int64
	uidNext     int64
	msgs        map[int64][]byte
	selectErr   error
}

type fakeConn struct {
	folders  map[string]*fakeFolder
	list     []imapsync.RemoteFolder
	loginErr error

	selected       string
	fetchMetaCalls int
	fetchBodyCalls int
}

func (c *fakeConn) Login(_ context.Context, _, _ string) error { return c.loginErr }

func (c *fakeConn) ListFolders(_ context.Context) ([]imapsync.RemoteFolder, error) {
	return c.list, nil
}

func (c *fakeConn) SelectReadOnly(_ context.Context, name string) (*imapsync.SelectInfo, error) {
	f, ok := c.folders[name]
	if !ok {
		return nil, fmt.Errorf("no such folder %q", name)
	}
	if f.selectErr != nil {
		return nil, f.selectErr
	}
	c.selected = name
	return &imapsync.SelectInfo{
		UIDValidity: f.uidValidity,
		UIDNext:     f.uidNext,
	}, nil
}

func (c *fakeConn) FetchMeta(_ context.Context, sinceUID int64) ([]imapsync.MessageMeta, error) {
	c.fetchMetaCalls++
	f := c.folders[c.selected]

	var uids []int64
	var max int64
	for uid := range f.msgs {
		if uid > max {
			max = uid
		}
		if uid > sinceUID {
			uids = append(uids, uid)
		}
	}
	// Like a real server, the range (since+1):* yields the highest
	// existing message even when it is not past the cursor.
	if len(uids) == 0 && max > 0 {
		uids = append(uids, max)
	}
	sort.Slice(uids, func(i, j int) bool { return uids[i] < uids[j] })

	var metas []imapsync.MessageMeta
	for _, uid := range uids {
		metas = append(metas, imapsync.MessageMeta{
			UID:          uid,
			Flags:        []string{"\\Seen"},
			Size:         int64(len(f.msgs[uid])),
			InternalDate: time.Date(2016, time.April, 2, 12, 0, 0, 0, time.UTC),
		})
	}
	return metas, nil
}

func (c *fakeConn) FetchBody(_ context.Context, uid int64) ([]byte, error) {
	c.fetchBodyCalls++
	body, ok := c.folders[c.selected].msgs[uid]
	if !ok {
		return nil, fmt.Errorf("message UID %d not found", uid)
	}
	return body, nil
}

func (c *fakeConn) Logout() error { return nil }

func rawMessage(subject string) []byte {
	return []byte("Subject: " + subject + "\r\nMessage-Id: <" + subject + "@example.com>\r\n\r\nbody\r\n")
}

func dialerFor(conn *fakeConn) imapsync.Dialer {
	return func(context.Context, *uri.ConnectionSpec) (imapsync.Conn, error) {
		return conn, nil
	}
}

func testMailbox() imapsync.Mailbox {
	return imapsync.Mailbox{
		ID:   "mb1",
		Name: "work",
		Spec: &uri.ConnectionSpec{Scheme: "imap", Host: "example.com", Username: "u", Password: "p", UseSSL: true},
	}
}

func inboxConn() *fakeConn {
	return &fakeConn{
		list: []imapsync.RemoteFolder{{Name: "INBOX"}},
		folders: map[string]*fakeFolder{
			"INBOX": {
				uidValidity: 100,
				uidNext:     4,
				msgs: map[int64][]byte{
					1: rawMessage("one"),
					2: rawMessage("two"),
					3: rawMessage("three"),
				},
			},
		},
	}
}

func TestSyncFetchesNewMessagesAndAdvancesCursor(t *testing.T) {
	st := testutil.NewTestStore(t)
	conn := inboxConn()
	engine := imapsync.NewEngine(st, dialerFor(conn), zerolog.Nop())
	ctx := context.Background()

	report := engine.Sync(ctx, testMailbox())
	if report.Err != nil {
		t.Fatal(report.Err)
	}
	if len(report.Folders) != 1 {
		t.Fatalf("folders = %d, want 1", len(report.Folders))
	}
	if fr := report.Folders[0]; fr.Err != nil || fr.Fetched != 3 || fr.Skipped {
		t.Errorf("report = %+v", fr)
	}

	count, err := st.MessageCount(ctx, "mb1", "INBOX")
	if err != nil {
		t.Fatal(err)
	}
	if count != 3 {
		t.Errorf("stored %d messages, want 3", count)
	}

	state, err := st.GetFolderState(ctx, "mb1", "INBOX")
	if err != nil {
		t.Fatal(err)
	}
	if state == nil || state.UIDValidity != 100 || state.UIDNext == nil || *state.UIDNext != 4 {
		t.Errorf("state = %+v", state)
	}

	// A new message appears: only it is fetched.
	conn.folders["INBOX"].msgs[4] = rawMessage("four")
	conn.folders["INBOX"].uidNext = 5
	conn.fetchBodyCalls = 0

	report = engine.Sync(ctx, testMailbox())
	if report.Err != nil {
		t.Fatal(report.Err)
	}
	if fr := report.Folders[0]; fr.Fetched != 1 {
		t.Errorf("second pass fetched = %d, want 1", fr.Fetched)
	}
	if conn.fetchBodyCalls != 1 {
		t.Errorf("fetchBodyCalls = %d, want 1", conn.fetchBodyCalls)
	}
}

func TestSyncSkipsUnchangedFolderWithoutFetching(t *testing.T) {
	st := testutil.NewTestStore(t)
	conn := inboxConn()
	engine := imapsync.NewEngine(st, dialerFor(conn), zerolog.Nop())
	ctx := context.Background()

	if report := engine.Sync(ctx, testMailbox()); report.Err != nil {
		t.Fatal(report.Err)
	}

	conn.fetchMetaCalls = 0
	conn.fetchBodyCalls = 0

	report := engine.Sync(ctx, testMailbox())
	if report.Err != nil {
		t.Fatal(report.Err)
	}
	if fr := report.Folders[0]; !fr.Skipped || fr.Fetched != 0 {
		t.Errorf("report = %+v, want skipped", fr)
	}
	if conn.fetchMetaCalls != 0 || conn.fetchBodyCalls != 0 {
		t.Errorf("fetch calls meta=%d body=%d, want zero", conn.fetchMetaCalls, conn.fetchBodyCalls)
	}
}

func TestSyncUIDValidityChangeForcesFullResync(t *testing.T) {
	st := testutil.NewTestStore(t)
	conn := inboxConn()
	engine := imapsync.NewEngine(st, dialerFor(conn), zerolog.Nop())
	ctx := context.Background()

	if report := engine.Sync(ctx, testMailbox()); report.Err != nil {
		t.Fatal(report.Err)
	}

	// The server renumbers: same folder, new uidvalidity, two messages.
	conn.folders["INBOX"] = &fakeFolder{
		uidValidity: 200,
		uidNext:     3,
		msgs: map[int64][]byte{
			1: rawMessage("alpha"),
			2: rawMessage("beta"),
		},
	}

	report := engine.Sync(ctx, testMailbox())
	if report.Err != nil {
		t.Fatal(report.Err)
	}
	if fr := report.Folders[0]; fr.Err != nil || fr.Fetched != 2 {
		t.Errorf("report = %+v, want full resync of 2", fr)
	}

	count, err := st.MessageCount(ctx, "mb1", "INBOX")
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("stored %d messages after resync, want 2", count)
	}

	state, err := st.GetFolderState(ctx, "mb1", "INBOX")
	if err != nil {
		t.Fatal(err)
	}
	if state.UIDValidity != 200 {
		t.Errorf("UIDValidity = %d, want 200", state.UIDValidity)
	}
}

func TestSyncFolderErrorDoesNotStopOthers(t *testing.T) {
	st := testutil.NewTestStore(t)
	conn := inboxConn()
	conn.list = append(conn.list, imapsync.RemoteFolder{Name: "Broken"}, imapsync.RemoteFolder{Name: "Sent"})
	conn.folders["Broken"] = &fakeFolder{selectErr: errors.New("boom")}
	conn.folders["Sent"] = &fakeFolder{
		uidValidity: 1,
		uidNext:     2,
		msgs:        map[int64][]byte{1: rawMessage("sent")},
	}

	engine := imapsync.NewEngine(st, dialerFor(conn), zerolog.Nop())
	report := engine.Sync(context.Background(), testMailbox())
	if report.Err != nil {
		t.Fatalf("mailbox-level err = %v, folder failures must stay per-folder", report.Err)
	}
	if len(report.Folders) != 3 {
		t.Fatalf("folders = %d, want 3", len(report.Folders))
	}

	byName := map[string]imapsync.FolderReport{}
	for _, fr := range report.Folders {
		byName[fr.Name] = fr
	}
	if byName["Broken"].Err == nil {
		t.Error("Broken should report its error")
	}
	if fr := byName["Sent"]; fr.Err != nil || fr.Fetched != 1 {
		t.Errorf("Sent = %+v", fr)
	}
	if fr := byName["INBOX"]; fr.Err != nil || fr.Fetched != 3 {
		t.Errorf("INBOX = %+v", fr)
	}
}

func TestSyncAuthFailureIsMailboxFatal(t *testing.T) {
	st := testutil.NewTestStore(t)
	conn := inboxConn()
	conn.loginErr = errors.New("LOGIN failed")

	engine := imapsync.NewEngine(st, dialerFor(conn), zerolog.Nop())
	report := engine.Sync(context.Background(), testMailbox())
	if report.Err == nil {
		t.Fatal("expected mailbox-fatal error")
	}
	if !imapsync.IsAuthError(report.Err) {
		t.Errorf("err = %v, want AuthError", report.Err)
	}
	if len(report.Folders) != 0 {
		t.Errorf("folders = %v, want none", report.Folders)
	}
}

func TestSyncCancellationWritesNoCursor(t *testing.T) {
	st := testutil.NewTestStore(t)
	conn := inboxConn()
	engine := imapsync.NewEngine(st, dialerFor(conn), zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := engine.Sync(ctx, testMailbox())
	if report.Err == nil {
		t.Fatal("expected cancellation error")
	}

	state, err := st.GetFolderState(context.Background(), "mb1", "INBOX")
	if err != nil {
		t.Fatal(err)
	}
	if state != nil {
		t.Errorf("cursor written despite cancellation: %+v", state)
	}
}

func TestOrderForSyncInboxFirstThenAlphabetical(t *testing.T) {
	in := []imapsync.Folder{
		{Name: "Sent", Role: folder.RoleSent},
		{Name: "Work/INBOX", Role: folder.RoleInbox},
		{Name: "Archive", Role: folder.RoleArchive},
		{Name: "INBOX", Role: folder.RoleInbox},
		{Name: "Drafts", Role: folder.RoleDrafts},
	}

	got := imapsync.OrderForSync(in)
	want := []string{"Work/INBOX", "INBOX", "Archive", "Drafts", "Sent"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, name := range want {
		if got[i].Name != name {
			t.Errorf("order[%d] = %s, want %s", i, got[i].Name, name)
		}
	}
}
