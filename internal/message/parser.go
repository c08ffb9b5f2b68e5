// Package message decodes raw RFC 5322/MIME byte streams into
// structured messages: headers, ordered body parts, attachments and
// address lists. Decoding is best-effort throughout; a malformed
// header or an undecodable part degrades to raw text instead of
// failing the whole message.
package message

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/emersion/go-message"
	"github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
	"github.com/saintfish/chardet"
)

// Address is a single decoded mailbox from an address header.
type Address struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Attachment is a non-inline message part with a decoded byte payload.
type Attachment struct {
	ContentType string
	Size        int
	Content     []byte
	Filename    string
	// CreateDate carries the creation-date disposition parameter when
	// the sender supplied one.
	CreateDate string
}

// Message is the structured form of one parsed email. It is not
// modified after Parse returns.
type Message struct {
	// Original is the raw input decoded to text; always populated,
	// falling back to a heuristically detected charset when the input
	// is not valid UTF-8.
	Original string

	Subject   string
	MessageID string

	// Date is the verbatim decoded Date header; ParsedDate is its
	// timestamp form, normalized to UTC when the header carried no
	// timezone offset. ParsedDate is zero when Date is absent or
	// unparseable.
	Date       string
	ParsedDate time.Time

	From []Address
	To   []Address
	Cc   []Address
	Bcc  []Address

	// TextParts and HTMLParts hold every inline text/plain and
	// text/html part in document order. A message may legitimately
	// contain several of each; they are preserved, not merged.
	TextParts []string
	HTMLParts []string

	Attachments []Attachment

	// Headers preserves a fixed set of informational headers
	// (received-spf, mime-version, x-spam-status, x-spam-score,
	// content-type) case-folded and undecoded.
	Headers map[string]string
}

// informationalHeaders are preserved raw in Message.Headers.
var informationalHeaders = []string{
	"received-spf", "mime-version", "x-spam-status", "x-spam-score",
	"content-type",
}

var wordDecoder = mime.WordDecoder{CharsetReader: charset.Reader}

// Parse decodes a raw message. The returned Message is always as
// complete as the input allows; only a structurally unreadable
// message yields an error.
func Parse(raw []byte) (*Message, error) {
	msg := &Message{
		Original: decodeToText(raw),
		Headers:  map[string]string{},
	}

	entity, err := message.Read(bytes.NewReader(raw))
	if err != nil && !message.IsUnknownCharset(err) {
		if entity == nil {
			return nil, fmt.Errorf("reading message structure: %w", err)
		}
	}

	maintype := entityMaintype(entity)

	switch {
	case maintype == "multipart" || maintype == "image":
		walkParts(entity, msg)
	case maintype == "text":
		if body, err := io.ReadAll(entity.Body); err == nil {
			msg.TextParts = append(msg.TextParts, decodeToText(body))
		}
	}

	header := mail.Header{Header: entity.Header}

	msg.From = addressList(header, "From")
	msg.To = addressList(header, "To")
	msg.Cc = addressList(header, "Cc")
	msg.Bcc = addressList(header, "Bcc")

	msg.Subject = decodedHeader(entity.Header, "Subject")
	msg.MessageID = decodedHeader(entity.Header, "Message-Id")
	msg.Date = decodedHeader(entity.Header, "Date")

	if msg.Date != "" {
		msg.ParsedDate = parseDate(header, msg.Date)
	}

	for _, key := range informationalHeaders {
		if v := entity.Header.Get(key); v != "" {
			msg.Headers[key] = v
		}
	}

	return msg, nil
}

// walkParts visits every leaf part of a (possibly nested) multipart
// entity. Errors on one part never abort the walk.
func walkParts(entity *message.Entity, msg *Message) {
	mr := entity.MultipartReader()
	if mr == nil {
		handleLeaf(entity, msg)
		return
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return
		}
		if err != nil && !message.IsUnknownCharset(err) {
			return
		}
		walkParts(part, msg)
	}
}

// handleLeaf classifies a single non-multipart part as inline body
// content or as an attachment, mirroring the disposition rules of
// RFC 2183: text/plain and text/html parts with inline or absent
// disposition are body content; anything else carrying a disposition
// is a candidate attachment.
func handleLeaf(part *message.Entity, msg *Message) {
	ctype, ctParams := contentType(part)
	disp, dispParams, hasDisp := contentDisposition(part)

	inline := !hasDisp || disp == "inline"

	switch {
	case ctype == "text/plain" && inline:
		if body, err := io.ReadAll(part.Body); err == nil {
			msg.TextParts = append(msg.TextParts, decodeToText(body))
		}
	case ctype == "text/html" && inline:
		if body, err := io.ReadAll(part.Body); err == nil {
			msg.HTMLParts = append(msg.HTMLParts, decodeToText(body))
		}
	case hasDisp:
		if att := parseAttachment(part, ctype, ctParams, disp, dispParams); att != nil {
			msg.Attachments = append(msg.Attachments, *att)
		}
	}
}

// parseAttachment extracts an attachment from a part whose disposition
// is attachment or inline. The filename comes from the content-type
// name parameter, overridden by any disposition parameter containing
// "file"; both RFC 2231 extended values and RFC 2047 encoded words
// are decoded.
func parseAttachment(part *message.Entity, ctype string, ctParams map[string]string, disp string, dispParams map[string]string) *Attachment {
	if disp != "attachment" && disp != "inline" {
		return nil
	}

	content, err := io.ReadAll(part.Body)
	if err != nil {
		return nil
	}

	att := &Attachment{
		ContentType: ctype,
		Size:        len(content),
		Content:     content,
	}

	if name := ctParams["name"]; name != "" {
		att.Filename = decodeWords(name)
	}
	for key, value := range dispParams {
		if strings.Contains(key, "file") {
			att.Filename = decodeWords(value)
		}
		if strings.Contains(key, "create-date") {
			att.CreateDate = value
		}
	}

	return att
}

// decodeToText turns arbitrary bytes into text: valid UTF-8 is taken
// as-is, everything else goes through heuristic charset detection.
// This never fails; the worst case is a lossy raw interpretation.
func decodeToText(raw []byte) string {
	if utf8.Valid(raw) {
		return string(raw)
	}

	if result, err := chardet.NewTextDetector().DetectBest(raw); err == nil {
		if r, err := charset.Reader(strings.ToLower(result.Charset), bytes.NewReader(raw)); err == nil {
			if decoded, err := io.ReadAll(r); err == nil {
				return string(decoded)
			}
		}
	}

	return string(raw)
}

// decodedHeader returns the RFC 2047-decoded value of a header,
// falling back to the raw text when decoding fails. Lookup is
// case-insensitive.
func decodedHeader(h message.Header, key string) string {
	raw := h.Get(key)
	if raw == "" {
		return ""
	}
	if decoded, err := h.Text(key); err == nil {
		return decoded
	}
	return raw
}

// decodeWords decodes RFC 2047 encoded words (=?charset?Q|B?data?=)
// in a parameter value, returning the input unchanged on failure.
func decodeWords(s string) string {
	if !strings.Contains(s, "=?") {
		return s
	}
	if decoded, err := wordDecoder.DecodeHeader(s); err == nil {
		return decoded
	}
	return s
}

// addressList extracts one address header as (display name, email)
// pairs with encoded-word display names decoded. An unparseable
// header yields an empty list.
func addressList(h mail.Header, key string) []Address {
	parsed, err := h.AddressList(key)
	if err != nil || len(parsed) == 0 {
		return nil
	}

	addrs := make([]Address, 0, len(parsed))
	for _, a := range parsed {
		addrs = append(addrs, Address{
			Name:  decodeWords(a.Name),
			Email: a.Address,
		})
	}
	return addrs
}

// dateLayoutsNoZone cover Date headers missing the (formally
// required) timezone offset; parsing them yields UTC.
var dateLayoutsNoZone = []string{
	"Mon, 2 Jan 2006 15:04:05",
	"2 Jan 2006 15:04:05",
	"Mon, 2 Jan 2006 15:04",
}

// parseDate turns the Date header into a timestamp. Headers without
// a timezone offset are interpreted as UTC.
func parseDate(h mail.Header, raw string) time.Time {
	if t, err := h.Date(); err == nil && !t.IsZero() {
		return t
	}
	trimmed := strings.TrimSpace(raw)
	for _, layout := range dateLayoutsNoZone {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func entityMaintype(e *message.Entity) string {
	ctype, _, err := e.Header.ContentType()
	if err != nil || ctype == "" {
		return "text"
	}
	maintype, _, _ := strings.Cut(ctype, "/")
	return strings.ToLower(maintype)
}

func contentType(e *message.Entity) (string, map[string]string) {
	ctype, params, err := e.Header.ContentType()
	if err != nil || ctype == "" {
		return "text/plain", nil
	}
	return strings.ToLower(ctype), params
}

func contentDisposition(e *message.Entity) (string, map[string]string, bool) {
	if e.Header.Get("Content-Disposition") == "" {
		return "", nil, false
	}
	disp, params, err := e.Header.ContentDisposition()
	if err != nil {
		// Unparseable dispositions are still dispositions; keep the
		// raw token so the part is treated as a candidate attachment.
		raw := strings.ToLower(e.Header.Get("Content-Disposition"))
		token, _, _ := strings.Cut(raw, ";")
		return strings.TrimSpace(token), nil, true
	}
	return strings.ToLower(disp), params, true
}
