package chunk

import (
	"errors"
	"io"
	"log/slog"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

// DefaultChunkSize is the byte size of each chunk read from a stream (1 MiB).
const DefaultChunkSize = 1024 * 1024

// Chunk is a decoded range of a byte stream. Start and End are byte offsets in the source.
type Chunk struct {
	Text  string
	Start int64
	End   int64
}

// Len returns the number of source bytes the chunk covers.
func (c Chunk) Len() int64 {
	return c.End - c.Start
}

// Reader splits a byte stream into chunks of at most size bytes.
// It is not safe for concurrent use.
type Reader struct {
	r      io.Reader
	buf    []byte
	carry  int // bytes at the front of buf left over from the previous read
	offset int64
	done   bool
}

// NewReader returns a Reader over r. A size <= 0 selects DefaultChunkSize; sizes below
// utf8.UTFMax are raised to it so that every chunk can hold at least one character.
func NewReader(r io.Reader, size int) *Reader {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if size < utf8.UTFMax {
		size = utf8.UTFMax
	}
	return &Reader{r: r, buf: make([]byte, size)}
}

// Offset returns the number of source bytes covered by the chunks returned so far.
func (cr *Reader) Offset() int64 {
	return cr.offset
}

// Next returns the next chunk, or io.EOF once the stream is exhausted.
// Any other error comes from the underlying reader.
func (cr *Reader) Next() (Chunk, error) {
	if cr.done {
		return Chunk{}, io.EOF
	}

	n, err := io.ReadFull(cr.r, cr.buf[cr.carry:])
	n += cr.carry
	switch {
	case err == nil:
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		cr.done = true
	default:
		return Chunk{}, err
	}

	if n == 0 {
		return Chunk{}, io.EOF
	}

	cut := n
	if !cr.done {
		cut = completePrefix(cr.buf[:n])
	}

	c := Chunk{
		Text:  decodeLenient(cr.buf[:cut]),
		Start: cr.offset,
		End:   cr.offset + int64(cut),
	}
	cr.offset = c.End

	// move the incomplete tail to the front for the next read
	cr.carry = copy(cr.buf, cr.buf[cut:n])

	slog.Debug("Chunk read", "start", c.Start, "end", c.End, "carried", cr.carry)
	return c, nil
}

// completePrefix returns the length of b without a trailing incomplete UTF-8 sequence.
// Sequences that are invalid rather than incomplete are kept; the decoder replaces them.
func completePrefix(b []byte) int {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if !utf8.RuneStart(b[i]) {
			continue
		}
		if utf8.FullRune(b[i:]) || i == 0 {
			return len(b)
		}
		return i
	}
	return len(b)
}

// decodeLenient decodes b as UTF-8, replacing malformed sequences with U+FFFD.
func decodeLenient(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	out, err := unicode.UTF8.NewDecoder().Bytes(b)
	if err != nil {
		// unreachable in practice: the UTF-8 decoder replaces instead of failing
		slog.Debug("Lenient decode failed", "error", err)
		return string(b)
	}
	return string(out)
}
