package textclean

import (
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"tags", "<p>Tesla, Inc.</p> <b>makes</b> cars", "Tesla Inc makes cars"},
		{"urls", "see https://tesla.com/about and http://x.io now", "see and now"},
		{"punctuation", "Founded: 2003 (Palo Alto)!", "Founded 2003 Palo Alto"},
		{"whitespace", "  a \n\n b\t\tc   ", "a bc"},
		{"unicode", "Zürich – AG", "Zrich AG"},
	}

	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Fatalf("%s: Normalize(%q) = %q, want %q", tc.name, tc.in, got, tc.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"<div class=\"infobox\">Headquarters: Austin, Texas</div>\n\nhttps://en.wikipedia.org/wiki/Tesla",
		"   multiple    spaces   and\ttabs\n",
		"Ünïcödé & <script>alert(1)</script> 42%",
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Fatalf("not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestSnippet(t *testing.T) {
	text := strings.Repeat("abcdefghij", 10)
	if got := Snippet(text); got != "abcdefghij" {
		t.Fatalf("unexpected snippet %q", got)
	}
	if got := Snippet("short"); got != "" {
		t.Fatalf("expected empty snippet for short text, got %q", got)
	}
}
