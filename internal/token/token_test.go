package token

import (
	"strings"
	"testing"
	"time"

	"github.com/chriscorrea/tally/internal/pattern"
)

func collect(p *pattern.Pattern, text string) []Token {
	var toks []Token
	for tok := range Find(p, text) {
		toks = append(toks, tok)
	}
	return toks
}

func TestFindDefaultPattern(t *testing.T) {
	p := pattern.MustCompile(pattern.DefaultExpr)

	tests := []struct {
		name string
		text string
		want []Token
	}{
		{"empty", "", nil},
		{"whitespace only", "   \n\t   \r\n", nil},
		{
			name: "words and punctuation",
			text: "Hello, World!",
			want: []Token{{0, 5, "Hello"}, {5, 6, ","}, {7, 12, "World"}, {12, 13, "!"}},
		},
		{
			name: "multi-byte offsets",
			text: "Hello 世界! こんにちは",
			want: []Token{{0, 5, "Hello"}, {6, 12, "世界"}, {12, 13, "!"}, {14, 29, "こんにちは"}},
		},
		{
			name: "numbers split on dots",
			text: "0.1",
			want: []Token{{0, 1, "0"}, {1, 2, "."}, {2, 3, "1"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := collect(p, tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("Find(%q) = %v, want %v", tt.text, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("token %d = %+v, want %+v", i, got[i], tt.want[i])
				}
				if tt.text[got[i].Start:got[i].End] != got[i].Text {
					t.Errorf("token %d offsets do not slice to its text", i)
				}
			}
		})
	}
}

func TestFindTrimsWhitespace(t *testing.T) {
	p := pattern.MustCompile(`\s*\w+\s*`)

	got := collect(p, " ab  cd ")
	want := []Token{{1, 3, "ab"}, {5, 7, "cd"}}
	if len(got) != len(want) {
		t.Fatalf("Find() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestFindDropsWhitespaceMatches(t *testing.T) {
	p := pattern.MustCompile(`\s+|\w+`)

	if got := Count(p, "a   b\n\tc"); got != 3 {
		t.Errorf("Count() = %d, want 3", got)
	}
}

func TestFindInvalidUTF8Offsets(t *testing.T) {
	p := pattern.MustCompile(pattern.DefaultExpr)
	text := "ab\xffcd"

	for tok := range Find(p, text) {
		if text[tok.Start:tok.End] != tok.Text {
			t.Errorf("token %+v does not match text slice %q", tok, text[tok.Start:tok.End])
		}
	}
}

func TestFindRestartable(t *testing.T) {
	p := pattern.MustCompile(pattern.DefaultExpr)
	seq := Find(p, "one two three")

	first, second := 0, 0
	for range seq {
		first++
	}
	for range seq {
		second++
	}
	if first != 3 || second != 3 {
		t.Errorf("iterations yielded %d and %d tokens, want 3 and 3", first, second)
	}
}

func TestFindEarlyStop(t *testing.T) {
	p := pattern.MustCompile(pattern.DefaultExpr)

	n := 0
	for range Find(p, "a b c d e") {
		n++
		if n == 2 {
			break
		}
	}
	if n != 2 {
		t.Errorf("stopped after %d tokens, want 2", n)
	}
}

func TestFindStopsOnMatchTimeout(t *testing.T) {
	p, err := pattern.CompileTimeout(`(a+)+$`, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("CompileTimeout() unexpected error: %v", err)
	}

	// exponential backtracking: no match exists, so only the timeout ends the search
	text := strings.Repeat("a", 40) + "b"

	done := make(chan int, 1)
	go func() { done <- Count(p, text) }()

	select {
	case n := <-done:
		if n != 0 {
			t.Errorf("Count() = %d, want 0", n)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Count() did not stop at the match timeout")
	}
}

func TestFindUnicodeWordClasses(t *testing.T) {
	p := pattern.MustCompile(pattern.DefaultExpr)

	tests := []struct {
		name string
		text string
		want []Token
	}{
		{
			name: "letter number",
			text: "Chapter Ⅻ",
			want: []Token{{0, 7, "Chapter"}, {8, 11, "Ⅻ"}},
		},
		{
			name: "letter number alone",
			text: "Ⅻ",
			want: []Token{{0, 3, "Ⅻ"}},
		},
		{
			name: "devanagari spacing marks",
			text: "\u0939\u093F\u0928\u094D\u0926\u0940",
			want: []Token{{3, 6, "\u093F"}, {9, 12, "\u094D"}, {15, 18, "\u0940"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := collect(p, tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("Find(%q) = %v, want %v", tt.text, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("token %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}
