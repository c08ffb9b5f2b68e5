package uidset

import (
	"math/rand"
	"reflect"
	"sort"
	"testing"

	"github.com/emersion/go-imap/v2"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name string
		in   []imap.UID
		want string
	}{
		{"empty", nil, ""},
		{"single", []imap.UID{7}, "7"},
		{"mixed runs", []imap.UID{1, 2, 3, 4, 5, 10, 12, 13}, "1:5,10,12:13"},
		{"unsorted input", []imap.UID{13, 1, 10, 3, 2, 12, 5, 4}, "1:5,10,12:13"},
		{"duplicates collapse", []imap.UID{4, 4, 5, 5, 6}, "4:6"},
		{"all singles", []imap.UID{2, 4, 6}, "2,4,6"},
		{"one long run", []imap.UID{100, 101, 102, 103}, "100:103"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Encode(tt.in); got != tt.want {
				t.Errorf("Encode(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	got, err := Decode("1:5,10,12:13")
	if err != nil {
		t.Fatal(err)
	}
	want := []imap.UID{1, 2, 3, 4, 5, 10, 12, 13}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Decode = %v, want %v", got, want)
	}

	if got, err := Decode(""); err != nil || got != nil {
		t.Errorf("Decode(\"\") = %v, %v; want nil, nil", got, err)
	}
}

func TestDecodeInvalid(t *testing.T) {
	for _, in := range []string{"a", "1:b", "5:1", "1,,2", "1:2:3"} {
		if _, err := Decode(in); err == nil {
			t.Errorf("Decode(%q) did not fail", in)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 50; i++ {
		seen := map[imap.UID]struct{}{}
		for n := rng.Intn(60); n > 0; n-- {
			seen[imap.UID(rng.Intn(200))] = struct{}{}
		}

		var in []imap.UID
		for uid := range seen {
			in = append(in, uid)
		}

		out, err := Decode(Encode(in))
		if err != nil {
			t.Fatalf("round trip failed: %v", err)
		}

		sort.Slice(in, func(a, b int) bool { return in[a] < in[b] })
		if !reflect.DeepEqual(out, in) {
			t.Fatalf("round trip mismatch: got %v, want %v", out, in)
		}
	}
}
