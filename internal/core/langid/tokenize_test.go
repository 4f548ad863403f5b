package langid

import (
	"reflect"
	"strings"
	"testing"
)

func tokenValues(text string) []string {
	toks := Tokenize(text)
	if len(toks) == 0 {
		return nil
	}
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = t.Value
	}
	return out
}

func TestTokenizeSplitsOnNonLetters(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"hello world", []string{"hello", "world"}},
		{"Hello, WORLD-42 foo", []string{"hello", "world", "foo"}},
		{"  spaced\tout\n", []string{"spaced", "out"}},
		{"123 456", nil},
		{"", nil},
		{"one", []string{"one"}},
	}
	for _, tc := range cases {
		got := tokenValues(tc.in)
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("Tokenize(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestTokenizeFoldsCase(t *testing.T) {
	got := tokenValues("HÉLLO Wörld")
	want := []string{"héllo", "wörld"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Tokenize = %v, want %v", got, want)
	}
}

func TestTokenizeDropsInvalidUTF8(t *testing.T) {
	got := tokenValues("ab\xffcd ef")
	want := []string{"abcd", "ef"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Tokenize = %v, want %v", got, want)
	}
}

func TestTokenizeCapsInput(t *testing.T) {
	text := strings.Repeat("word ", 5000) // 25000 bytes
	toks := Tokenize(text)
	if len(toks) == 0 {
		t.Fatal("expected tokens")
	}
	if max := maxInputBytes / len("word"); len(toks) > max {
		t.Fatalf("got %d tokens, input cap not applied", len(toks))
	}
}

func TestTruncateKeepsRuneBoundary(t *testing.T) {
	s := "aé" // 'é' is 2 bytes at offset 1
	if got := truncate(s, 2); got != "a" {
		t.Fatalf("truncate = %q, want %q", got, "a")
	}
	if got := truncate(s, 3); got != s {
		t.Fatalf("truncate = %q, want %q", got, s)
	}
}
