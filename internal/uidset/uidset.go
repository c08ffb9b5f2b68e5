// Package uidset compresses sets of IMAP UIDs into the compact
// range-expression syntax used by UID FETCH commands ("1:5,10,12:13")
// and expands such expressions back into UID lists.
package uidset

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/emersion/go-imap/v2"
)

// Encode compacts a set of UIDs into a range expression. The input is
// sorted ascending and consecutive runs are merged into start:end
// tokens; a run of length one emits the bare number. Duplicates are
// collapsed. The empty set encodes to the empty string.
func Encode(uids []imap.UID) string {
	if len(uids) == 0 {
		return ""
	}

	sorted := append([]imap.UID(nil), uids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var b strings.Builder
	start, end := sorted[0], sorted[0]

	flush := func() {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		if start == end {
			b.WriteString(strconv.FormatUint(uint64(start), 10))
		} else {
			b.WriteString(strconv.FormatUint(uint64(start), 10))
			b.WriteByte(':')
			b.WriteString(strconv.FormatUint(uint64(end), 10))
		}
	}

	for _, uid := range sorted[1:] {
		switch {
		case uid == end || uid == end+1:
			end = uid
		default:
			flush()
			start, end = uid, uid
		}
	}
	flush()

	return b.String()
}

// Decode expands a range expression back into the full list of UIDs,
// sorted ascending. Decoding the output of Encode reproduces exactly
// the original set.
func Decode(s string) ([]imap.UID, error) {
	if s == "" {
		return nil, nil
	}

	var uids []imap.UID
	for _, token := range strings.Split(s, ",") {
		start, end, err := parseToken(token)
		if err != nil {
			return nil, err
		}
		for uid := start; uid <= end; uid++ {
			uids = append(uids, uid)
		}
	}
	return uids, nil
}

func parseToken(token string) (start, end imap.UID, err error) {
	first, rest, isRange := strings.Cut(token, ":")

	s, err := parseUID(first)
	if err != nil {
		return 0, 0, fmt.Errorf("uid range %q: %w", token, err)
	}
	if !isRange {
		return s, s, nil
	}

	e, err := parseUID(rest)
	if err != nil {
		return 0, 0, fmt.Errorf("uid range %q: %w", token, err)
	}
	if e < s {
		return 0, 0, fmt.Errorf("uid range %q: end before start", token)
	}
	return s, e, nil
}

func parseUID(s string) (imap.UID, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return imap.UID(n), nil
}
