package message

import (
	"strings"
	"testing"
	"time"
)

const simpleMail = "From: John Doe <johndoe@example.com>\r\n" +
	"To: Jane Roe <janeroe@example.com>\r\n" +
	"Subject: Test email - no attachment\r\n" +
	"Date: Tue, 30 Jul 2013 15:56:29 +0300\r\n" +
	"Message-Id: <test0@example.com>\r\n" +
	"Content-Type: text/plain; charset=us-ascii\r\n" +
	"\r\n" +
	"Hello there.\r\n"

func TestParseSimple(t *testing.T) {
	msg, err := Parse([]byte(simpleMail))
	if err != nil {
		t.Fatal(err)
	}

	if msg.Original != simpleMail {
		t.Error("Original does not equal the raw input text")
	}
	if msg.Subject != "Test email - no attachment" {
		t.Errorf("Subject = %q", msg.Subject)
	}
	if msg.MessageID != "<test0@example.com>" {
		t.Errorf("MessageID = %q", msg.MessageID)
	}
	if msg.Date != "Tue, 30 Jul 2013 15:56:29 +0300" {
		t.Errorf("Date = %q", msg.Date)
	}
	if msg.ParsedDate.IsZero() {
		t.Error("ParsedDate not populated")
	}

	if len(msg.TextParts) != 1 || !strings.Contains(msg.TextParts[0], "Hello there.") {
		t.Errorf("TextParts = %q", msg.TextParts)
	}

	if len(msg.From) != 1 || msg.From[0].Name != "John Doe" || msg.From[0].Email != "johndoe@example.com" {
		t.Errorf("From = %+v", msg.From)
	}
	if len(msg.To) != 1 || msg.To[0].Email != "janeroe@example.com" {
		t.Errorf("To = %+v", msg.To)
	}

	if msg.Headers["content-type"] == "" {
		t.Error("content-type not preserved in the headers map")
	}
}

func TestParseMessageIDCaseInsensitive(t *testing.T) {
	for _, key := range []string{"Message-ID", "Message-Id", "message-id"} {
		raw := key + ": one\r\n\r\n"
		msg, err := Parse([]byte(raw))
		if err != nil {
			t.Fatalf("Parse with %s header: %v", key, err)
		}
		if msg.MessageID != "one" {
			t.Errorf("header %q: MessageID = %q, want one", key, msg.MessageID)
		}
	}
}

func TestParseMultipartKeepsAllInlineParts(t *testing.T) {
	raw := "From: a@example.com\r\n" +
		"Subject: multi\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: multipart/alternative; boundary=\"xyz\"\r\n" +
		"\r\n" +
		"--xyz\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"first plain\r\n" +
		"--xyz\r\n" +
		"Content-Type: text/html; charset=utf-8\r\n" +
		"\r\n" +
		"<p>html body</p>\r\n" +
		"--xyz\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"Content-Disposition: inline\r\n" +
		"\r\n" +
		"second plain\r\n" +
		"--xyz--\r\n"

	msg, err := Parse([]byte(raw))
	if err != nil {
		t.Fatal(err)
	}

	if len(msg.TextParts) != 2 {
		t.Fatalf("TextParts = %d parts %q, want 2", len(msg.TextParts), msg.TextParts)
	}
	if !strings.Contains(msg.TextParts[0], "first plain") || !strings.Contains(msg.TextParts[1], "second plain") {
		t.Errorf("plain parts out of order: %q", msg.TextParts)
	}
	if len(msg.HTMLParts) != 1 || !strings.Contains(msg.HTMLParts[0], "<p>html body</p>") {
		t.Errorf("HTMLParts = %q", msg.HTMLParts)
	}
	if msg.Headers["mime-version"] != "1.0" {
		t.Errorf("mime-version = %q", msg.Headers["mime-version"])
	}
}

func TestParseAttachment(t *testing.T) {
	raw := "From: a@example.com\r\n" +
		"Subject: with attachment\r\n" +
		"Content-Type: multipart/mixed; boundary=\"xyz\"\r\n" +
		"\r\n" +
		"--xyz\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"see attached\r\n" +
		"--xyz\r\n" +
		"Content-Type: application/octet-stream; name=\"data.bin\"\r\n" +
		"Content-Disposition: attachment; filename=\"data.bin\"; create-date=\"Tue, 30 Jul 2013 15:56:29 +0300\"\r\n" +
		"Content-Transfer-Encoding: base64\r\n" +
		"\r\n" +
		"aGVsbG8gd29ybGQ=\r\n" +
		"--xyz--\r\n"

	msg, err := Parse([]byte(raw))
	if err != nil {
		t.Fatal(err)
	}

	if len(msg.Attachments) != 1 {
		t.Fatalf("got %d attachments, want 1", len(msg.Attachments))
	}
	att := msg.Attachments[0]
	if att.Filename != "data.bin" {
		t.Errorf("Filename = %q", att.Filename)
	}
	if att.ContentType != "application/octet-stream" {
		t.Errorf("ContentType = %q", att.ContentType)
	}
	if string(att.Content) != "hello world" {
		t.Errorf("Content = %q", att.Content)
	}
	if att.Size != len("hello world") {
		t.Errorf("Size = %d", att.Size)
	}
	if att.CreateDate == "" {
		t.Error("create-date disposition parameter not preserved")
	}

	if len(msg.TextParts) != 1 {
		t.Errorf("inline text lost alongside attachment: %q", msg.TextParts)
	}
}

func TestParseAttachmentEncodedFilename(t *testing.T) {
	raw := "From: a@example.com\r\n" +
		"Content-Type: multipart/mixed; boundary=\"xyz\"\r\n" +
		"\r\n" +
		"--xyz\r\n" +
		"Content-Type: application/pdf\r\n" +
		"Content-Disposition: attachment; filename=\"=?utf-8?Q?r=C3=A9sum=C3=A9.pdf?=\"\r\n" +
		"Content-Transfer-Encoding: base64\r\n" +
		"\r\n" +
		"aGk=\r\n" +
		"--xyz--\r\n"

	msg, err := Parse([]byte(raw))
	if err != nil {
		t.Fatal(err)
	}
	if len(msg.Attachments) != 1 {
		t.Fatalf("got %d attachments, want 1", len(msg.Attachments))
	}
	if got := msg.Attachments[0].Filename; got != "résumé.pdf" {
		t.Errorf("Filename = %q, want résumé.pdf", got)
	}
}

func TestParseInlineImageIsAttachment(t *testing.T) {
	raw := "From: a@example.com\r\n" +
		"Content-Type: multipart/related; boundary=\"xyz\"\r\n" +
		"\r\n" +
		"--xyz\r\n" +
		"Content-Type: image/png; name=\"pixel.png\"\r\n" +
		"Content-Disposition: inline\r\n" +
		"Content-Transfer-Encoding: base64\r\n" +
		"\r\n" +
		"aQ==\r\n" +
		"--xyz--\r\n"

	msg, err := Parse([]byte(raw))
	if err != nil {
		t.Fatal(err)
	}
	if len(msg.Attachments) != 1 {
		t.Fatalf("inline image not captured as attachment")
	}
	if msg.Attachments[0].Filename != "pixel.png" {
		t.Errorf("Filename = %q, want pixel.png (from content-type name param)", msg.Attachments[0].Filename)
	}
}

func TestParseDateWithoutZoneIsUTC(t *testing.T) {
	raw := "Subject: naive date\r\n" +
		"Date: Mon, 20 Nov 1995 19:12:08\r\n" +
		"\r\n" +
		"body\r\n"

	msg, err := Parse([]byte(raw))
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(1995, time.November, 20, 19, 12, 8, 0, time.UTC)
	if !msg.ParsedDate.Equal(want) {
		t.Errorf("ParsedDate = %v, want %v", msg.ParsedDate, want)
	}
}

func TestParseEncodedSubject(t *testing.T) {
	raw := "Subject: =?utf-8?Q?caf=C3=A9_receipt?=\r\n\r\nbody\r\n"

	msg, err := Parse([]byte(raw))
	if err != nil {
		t.Fatal(err)
	}
	if msg.Subject != "café receipt" {
		t.Errorf("Subject = %q, want café receipt", msg.Subject)
	}
}

func TestParseInvalidUTF8NeverFails(t *testing.T) {
	// Latin-1 body bytes that are not valid UTF-8.
	raw := append([]byte("Subject: latin\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n"), 0xe9, 0xe8, 0x0d, 0x0a)

	msg, err := Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	if msg.Original == "" {
		t.Error("Original empty for undecodable input")
	}
}
