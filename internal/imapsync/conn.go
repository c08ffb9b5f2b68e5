package imapsync

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"

	"github.com/mailme/mailme/internal/uri"
)

const dialTimeout = 30 * time.Second

// imapConn adapts a go-imap v2 client to the Conn interface.
type imapConn struct {
	client *imapclient.Client
}

// Dial opens an IMAP connection for the given spec. A +ssl spec is
// wrapped in TLS from the first byte; a +tls spec connects in
// plaintext and upgrades via STARTTLS; anything else stays plaintext.
func Dial(ctx context.Context, spec *uri.ConnectionSpec) (Conn, error) {
	dialer := net.Dialer{Timeout: dialTimeout}
	netConn, err := dialer.DialContext(ctx, "tcp", spec.Addr())
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", spec.Addr(), err)
	}

	options := &imapclient.Options{
		TLSConfig: &tls.Config{ServerName: spec.Host},
	}

	var client *imapclient.Client
	switch {
	case spec.UseSSL:
		tlsConn := tls.Client(netConn, options.TLSConfig)
		client = imapclient.New(tlsConn, options)
	case spec.UseTLS:
		client, err = imapclient.NewStartTLS(netConn, options)
		if err != nil {
			_ = netConn.Close()
			return nil, fmt.Errorf("starttls with %s: %w", spec.Addr(), err)
		}
	default:
		client = imapclient.New(netConn, options)
	}

	return &imapConn{client: client}, nil
}

func (c *imapConn) Login(ctx context.Context, username, password string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.client.Login(username, password).Wait()
}

func (c *imapConn) ListFolders(ctx context.Context) ([]RemoteFolder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	list, err := c.client.List("", "*", nil).Collect()
	if err != nil {
		return nil, fmt.Errorf("listing folders: %w", err)
	}

	folders := make([]RemoteFolder, 0, len(list))
	for _, item := range list {
		folders = append(folders, RemoteFolder{
			Name:  item.Mailbox,
			Attrs: item.Attrs,
		})
	}
	return folders, nil
}

func (c *imapConn) SelectReadOnly(ctx context.Context, name string) (*SelectInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := c.client.Select(name, &imap.SelectOptions{ReadOnly: true}).Wait()
	if err != nil {
		return nil, fmt.Errorf("selecting %s: %w", name, err)
	}

	return &SelectInfo{
		UIDValidity:   int64(data.UIDValidity),
		UIDNext:       int64(data.UIDNext),
		HighestModSeq: int64(data.HighestModSeq),
	}, nil
}

func (c *imapConn) FetchMeta(ctx context.Context, sinceUID int64) ([]MessageMeta, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// UID range (sinceUID+1):* — the server substitutes the highest
	// existing UID for "*".
	var set imap.UIDSet
	set.AddRange(imap.UID(sinceUID+1), 0)

	opts := &imap.FetchOptions{
		UID:           true,
		Flags:         true,
		RFC822Size:    true,
		InternalDate:  true,
		BodyStructure: &imap.FetchItemBodyStructure{},
	}

	bufs, err := c.client.Fetch(set, opts).Collect()
	if err != nil {
		return nil, fmt.Errorf("fetching metadata since UID %d: %w", sinceUID, err)
	}

	metas := make([]MessageMeta, 0, len(bufs))
	for _, buf := range bufs {
		meta := MessageMeta{
			UID:          int64(buf.UID),
			Size:         buf.RFC822Size,
			InternalDate: buf.InternalDate,
		}
		for _, flag := range buf.Flags {
			meta.Flags = append(meta.Flags, string(flag))
		}
		metas = append(metas, meta)
	}
	return metas, nil
}

func (c *imapConn) FetchBody(ctx context.Context, uid int64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	section := &imap.FetchItemBodySection{Peek: true}
	opts := &imap.FetchOptions{
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{section},
	}

	bufs, err := c.client.Fetch(imap.UIDSetNum(imap.UID(uid)), opts).Collect()
	if err != nil {
		return nil, fmt.Errorf("fetching body of UID %d: %w", uid, err)
	}

	for _, buf := range bufs {
		if int64(buf.UID) != uid {
			continue
		}
		if body := buf.FindBodySection(section); body != nil {
			return body, nil
		}
	}
	return nil, fmt.Errorf("message UID %d not found", uid)
}

func (c *imapConn) Logout() error {
	return c.client.Logout().Wait()
}
