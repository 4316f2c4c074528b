// Package token finds token spans in text using a compiled pattern.
//
// Matching is stateless: every call starts from the beginning of the span it is given and
// keeps nothing between calls. Tokens that straddle two spans are therefore seen as two
// separate tokens; handling chunk boundaries is the caller's concern.
package token

import (
	"iter"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/chriscorrea/tally/internal/pattern"
)

// Token is one whitespace-trimmed match. Start and End are byte offsets into the scanned text.
type Token struct {
	Start int
	End   int
	Text  string
}

// Find returns the tokens of text under p, lazily and in order.
// Matches that are empty after trimming are skipped. A match that exceeds the pattern's
// timeout ends the sequence early and is logged as an error.
func Find(p *pattern.Pattern, text string) iter.Seq[Token] {
	return func(yield func(Token) bool) {
		if text == "" {
			return
		}

		// regexp2 reports rune positions; []rune turns every invalid byte into one
		// RuneError, the same width utf8.DecodeRuneInString gives it, so the two stay aligned
		runes := []rune(text)
		re := p.Regexp()

		m, err := re.FindRunesMatch(runes)
		cursor := offsetCursor{text: text}
		for m != nil {
			start := cursor.advance(m.Index)
			end := cursor.advance(m.Index + m.Length)

			if tok, ok := trim(text, start, end); ok {
				if !yield(tok) {
					return
				}
			}

			m, err = re.FindNextMatch(m)
		}
		if err != nil {
			slog.Error("Token matching stopped", "pattern", p.String(), "error", err)
		}
	}
}

// Count returns the number of tokens Find would yield.
func Count(p *pattern.Pattern, text string) int {
	n := 0
	for range Find(p, text) {
		n++
	}
	return n
}

// trim strips surrounding whitespace from text[start:end].
func trim(text string, start, end int) (Token, bool) {
	span := text[start:end]
	left := strings.TrimLeftFunc(span, unicode.IsSpace)
	start += len(span) - len(left)
	trimmed := strings.TrimRightFunc(left, unicode.IsSpace)
	if trimmed == "" {
		return Token{}, false
	}
	return Token{Start: start, End: start + len(trimmed), Text: trimmed}, true
}

// offsetCursor converts increasing rune indexes into byte offsets in a single forward pass.
type offsetCursor struct {
	text string
	rune int
	byte int
}

func (c *offsetCursor) advance(runeIndex int) int {
	// matches never start before the end of the previous one, but a match end
	// may be revisited as the next start, so only walk forward
	for c.rune < runeIndex && c.byte < len(c.text) {
		_, size := utf8.DecodeRuneInString(c.text[c.byte:])
		c.byte += size
		c.rune++
	}
	return c.byte
}
