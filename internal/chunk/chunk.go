// Package chunk splits large inputs into bounded pieces for the tally CLI tool.
//
// Two splitters share one rule: a chunk is at most N bytes and never ends inside a
// multi-byte UTF-8 sequence.
//   - SplitText cuts an in-memory string at the nearest rune boundary at or before the limit.
//   - Reader pulls fixed-size byte ranges from an io.Reader, carries an incomplete trailing
//     sequence into the next range, and decodes each range leniently.
//
// Each chunk is tokenized on its own, so a token straddling a boundary is counted as two
// tokens. This is a bounded approximation (at most one extra token per boundary) that large
// chunk sizes make negligible; it is not corrected by buffering partial tokens.
//
// Usage Example:
//
//	for c := range chunk.SplitText(content, 100000) {
//		tally.Absorb(c)
//	}
package chunk

import (
	"iter"
	"log/slog"
	"unicode/utf8"
)

// SplitText yields consecutive chunks of text, each at most limit bytes, cut on rune
// boundaries. Concatenating the chunks reproduces text exactly.
//
// A character wider than limit is emitted whole, so such a chunk may exceed limit by up to
// utf8.UTFMax-1 bytes. A limit <= 0 yields text as a single chunk.
func SplitText(text string, limit int) iter.Seq[string] {
	return func(yield func(string) bool) {
		if text == "" {
			return
		}
		if limit <= 0 || len(text) <= limit {
			yield(text)
			return
		}

		slog.Debug("SplitText called", "textLength", len(text), "limit", limit)

		start := 0
		for start < len(text) {
			end := Boundary(text, start, start+limit)
			if !yield(text[start:end]) {
				return
			}
			start = end
		}
	}
}

// Boundary returns the rune boundary to cut text at for a chunk starting at start with a
// requested end of want. The result is always greater than start.
func Boundary(text string, start, want int) int {
	if want >= len(text) {
		return len(text)
	}
	if want <= start {
		want = start + 1
	}

	// walk back over at most UTFMax-1 continuation bytes; anything longer is invalid
	// input, so cutting there cannot split a real character
	end := want
	for i := 0; i < utf8.UTFMax-1 && end > start && !utf8.RuneStart(text[end]); i++ {
		end--
	}
	if end > start && utf8.RuneStart(text[end]) {
		return end
	}

	// the character at start is wider than the limit: extend forward past it
	_, size := utf8.DecodeRuneInString(text[start:])
	if start+size > want {
		return start + size
	}
	return want
}
