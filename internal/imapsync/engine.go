package imapsync

import (
	"context"
	"fmt"

	"github.com/emersion/go-imap/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mailme/mailme/internal/folder"
	"github.com/mailme/mailme/internal/message"
	"github.com/mailme/mailme/internal/store"
	"github.com/mailme/mailme/internal/uidset"
	"github.com/mailme/mailme/internal/uri"
)

// Mailbox identifies one account to sync.
type Mailbox struct {
	ID   string
	Name string
	Spec *uri.ConnectionSpec

	// FolderMap carries the provider profile's folder name hints.
	FolderMap map[string]folder.Role
}

// FolderReport is the outcome of syncing one folder.
type FolderReport struct {
	Name    string
	Role    folder.Role
	Fetched int
	Skipped bool
	Err     error
}

// Report is the outcome of one sync pass over a mailbox. Err is set
// only for mailbox-fatal failures (connect, auth, folder listing);
// per-folder failures land in the matching FolderReport.
type Report struct {
	Mailbox string
	Folders []FolderReport
	Err     error
}

// Engine runs incremental sync passes and persists the results.
type Engine struct {
	store store.Store
	dial  Dialer
	log   zerolog.Logger
}

// NewEngine creates a sync engine. dial may be nil to use the default
// transport.
func NewEngine(st store.Store, dial Dialer, log zerolog.Logger) *Engine {
	return &Engine{store: st, dial: dial, log: log}
}

// Sync performs one full pass over the mailbox: connect, discover and
// order folders, then sync each in turn. A failing folder does not
// stop the pass; cancellation does.
func (e *Engine) Sync(ctx context.Context, mb Mailbox) *Report {
	report := &Report{Mailbox: mb.Name}

	session := NewSession(mb.Name, mb.Spec, mb.FolderMap, e.dial)
	defer func() { _ = session.Close() }()

	folders, err := session.Folders(ctx)
	if err != nil {
		report.Err = err
		return report
	}

	conn, err := session.Conn(ctx)
	if err != nil {
		report.Err = err
		return report
	}

	for _, f := range OrderForSync(folders) {
		if err := ctx.Err(); err != nil {
			report.Err = err
			return report
		}

		fr := e.syncFolder(ctx, conn, mb, f)
		if fr.Err != nil {
			e.log.Warn().
				Str("mailbox", mb.Name).
				Str("folder", f.Name).
				Err(fr.Err).
				Msg("folder sync failed")
			if ctx.Err() != nil {
				report.Folders = append(report.Folders, fr)
				report.Err = ctx.Err()
				return report
			}
		}
		report.Folders = append(report.Folders, fr)
	}

	return report
}

// syncFolder brings one folder up to date with the server. The
// stored cursor only moves inside the same store transaction that
// persists the fetched messages.
func (e *Engine) syncFolder(ctx context.Context, conn Conn, mb Mailbox, f Folder) FolderReport {
	fr := FolderReport{Name: f.Name, Role: f.Role}

	prev, err := e.store.GetFolderState(ctx, mb.ID, f.Name)
	if err != nil {
		fr.Err = fmt.Errorf("loading folder state: %w", err)
		return fr
	}

	sel, err := conn.SelectReadOnly(ctx, f.Name)
	if err != nil {
		fr.Err = err
		return fr
	}

	if prev != nil && prev.UIDValidity != sel.UIDValidity {
		// Recorded UIDs are meaningless under a new UIDVALIDITY; drop
		// everything and resync from scratch.
		e.log.Info().
			Str("mailbox", mb.Name).
			Str("folder", f.Name).
			Int64("old", prev.UIDValidity).
			Int64("new", sel.UIDValidity).
			Msg("uidvalidity changed, full resync")
		if err := e.store.DeleteFolderMessages(ctx, mb.ID, f.Name); err != nil {
			fr.Err = fmt.Errorf("purging folder: %w", err)
			return fr
		}
		prev = nil
	}

	if prev != nil && prev.UIDNext != nil && *prev.UIDNext == sel.UIDNext {
		fr.Skipped = true
		return fr
	}

	cursor, err := e.store.MaxUID(ctx, mb.ID, f.Name)
	if err != nil {
		fr.Err = fmt.Errorf("reading cursor: %w", err)
		return fr
	}

	metas, err := conn.FetchMeta(ctx, cursor)
	if err != nil {
		fr.Err = err
		return fr
	}

	var msgs []store.StoredMessage
	for _, meta := range metas {
		// The range (cursor+1):* returns the highest existing message
		// even when nothing is newer.
		if meta.UID <= cursor {
			continue
		}
		if err := ctx.Err(); err != nil {
			fr.Err = err
			return fr
		}

		body, err := conn.FetchBody(ctx, meta.UID)
		if err != nil {
			fr.Err = err
			return fr
		}

		parsed, err := message.Parse(body)
		if err != nil {
			e.log.Warn().
				Str("mailbox", mb.Name).
				Str("folder", f.Name).
				Int64("uid", meta.UID).
				Err(err).
				Msg("message parse failed, storing raw")
			parsed = &message.Message{Original: string(body)}
		}

		msgs = append(msgs, store.StoredMessage{
			ID:           uuid.NewString(),
			MailboxID:    mb.ID,
			Folder:       f.Name,
			UID:          meta.UID,
			Flags:        meta.Flags,
			Size:         meta.Size,
			InternalDate: meta.InternalDate,
			Parsed:       parsed,
		})
	}

	if err := ctx.Err(); err != nil {
		fr.Err = err
		return fr
	}

	if len(msgs) > 0 {
		uids := make([]imap.UID, 0, len(msgs))
		for _, m := range msgs {
			uids = append(uids, imap.UID(m.UID))
		}
		e.log.Debug().
			Str("mailbox", mb.Name).
			Str("folder", f.Name).
			Str("uids", uidset.Encode(uids)).
			Msg("fetched messages")
	}

	state := store.FolderState{
		MailboxID:   mb.ID,
		Name:        f.Name,
		Role:        string(f.Role),
		UIDValidity: sel.UIDValidity,
		UIDNext:     &sel.UIDNext,
	}
	if sel.HighestModSeq != 0 {
		state.HighestModSeq = &sel.HighestModSeq
	}

	if len(msgs) == 0 {
		if err := e.store.UpsertFolderState(ctx, state); err != nil {
			fr.Err = fmt.Errorf("updating cursor: %w", err)
		}
		return fr
	}

	if err := e.store.SaveMessages(ctx, msgs, state); err != nil {
		fr.Err = fmt.Errorf("saving messages: %w", err)
		return fr
	}

	fr.Fetched = len(msgs)
	return fr
}
