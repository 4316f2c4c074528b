// Package preview produces a short, strictly decoded excerpt of a source.
package preview

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// Marker is appended to a truncated preview.
const Marker = "..."

// DefaultLength is the preview length in bytes used when none is configured.
const DefaultLength = 500

// ErrNotUTF8 is returned when the previewed bytes are not valid UTF-8.
// Unlike counting, previews never replace malformed input.
var ErrNotUTF8 = errors.New("content is not valid UTF-8")

// Preview returns b as text, truncated to at most maxLen bytes on a character boundary with
// Marker appended when it is longer.
func Preview(b []byte, maxLen int) (string, error) {
	if !utf8.Valid(b) {
		return "", ErrNotUTF8
	}
	if maxLen < 0 {
		maxLen = 0
	}

	text := string(b)
	if len(text) <= maxLen {
		return text, nil
	}

	end := maxLen
	for end > 0 && !utf8.RuneStart(text[end]) {
		end--
	}
	return text[:end] + Marker, nil
}

// Peek previews the head of br without consuming it. Only the previewed head is validated:
// the first maxLen+utf8.UTFMax bytes are inspected, a sequence cut by that window is not
// treated as malformed, and invalid bytes further into the stream are left to the lenient
// decoding of the count.
func Peek(br *bufio.Reader, maxLen int) (string, error) {
	if maxLen < 0 {
		maxLen = 0
	}
	window := maxLen + utf8.UTFMax
	if window > br.Size() {
		window = br.Size()
	}

	head, err := br.Peek(window)
	more := err == nil
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return "", fmt.Errorf("failed to read preview: %w", err)
	}
	if errors.Is(err, bufio.ErrBufferFull) {
		more = true
	}

	if more {
		head = head[:completeLen(head)]
		if len(head) <= maxLen {
			// the window held nothing past maxLen once the cut sequence is dropped,
			// but the stream continues, so still mark the truncation
			text, err := Preview(head, len(head))
			if err != nil {
				return "", err
			}
			return text + Marker, nil
		}
	}
	return Preview(head, maxLen)
}

// completeLen returns the length of b without a trailing incomplete sequence.
func completeLen(b []byte) int {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if utf8.RuneStart(b[i]) {
			if utf8.FullRune(b[i:]) {
				return len(b)
			}
			return i
		}
	}
	return len(b)
}
