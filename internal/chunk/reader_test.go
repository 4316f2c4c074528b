package chunk

import (
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"
	"unicode/utf8"
)

func readAll(t *testing.T, r *Reader) []Chunk {
	t.Helper()
	var chunks []Chunk
	for {
		c, err := r.Next()
		if errors.Is(err, io.EOF) {
			return chunks
		}
		if err != nil {
			t.Fatalf("Next() unexpected error: %v", err)
		}
		chunks = append(chunks, c)
	}
}

func TestReaderSplitsOnRuneBoundaries(t *testing.T) {
	input := "ab世界 héllo wörld 👋 done"

	for _, size := range []int{4, 5, 6, 7, 16, 1024} {
		chunks := readAll(t, NewReader(strings.NewReader(input), size))

		var sb strings.Builder
		var offset int64
		for i, c := range chunks {
			if !utf8.ValidString(c.Text) {
				t.Errorf("size %d: chunk %d %q is not valid UTF-8", size, i, c.Text)
			}
			if c.Start != offset {
				t.Errorf("size %d: chunk %d starts at %d, want %d", size, i, c.Start, offset)
			}
			if c.Len() > int64(size) {
				t.Errorf("size %d: chunk %d covers %d bytes", size, i, c.Len())
			}
			offset = c.End
			sb.WriteString(c.Text)
		}

		if sb.String() != input {
			t.Errorf("size %d: chunks reassemble to %q", size, sb.String())
		}
		if offset != int64(len(input)) {
			t.Errorf("size %d: final offset %d, want %d", size, offset, len(input))
		}
	}
}

func TestReaderCarriesIncompleteTail(t *testing.T) {
	r := NewReader(strings.NewReader("ab世"), 4)

	first, err := r.Next()
	if err != nil {
		t.Fatalf("Next() unexpected error: %v", err)
	}
	if first.Text != "ab" || first.End != 2 {
		t.Errorf("first chunk = %+v, want \"ab\" ending at 2", first)
	}

	second, err := r.Next()
	if err != nil {
		t.Fatalf("Next() unexpected error: %v", err)
	}
	if second.Text != "世" || second.Start != 2 || second.End != 5 {
		t.Errorf("second chunk = %+v, want \"世\" covering 2..5", second)
	}

	if _, err := r.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("third Next() error = %v, want io.EOF", err)
	}
}

func TestReaderReplacesMalformedBytes(t *testing.T) {
	chunks := readAll(t, NewReader(strings.NewReader("\xffabc\xe4\xb8"), 16))
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}

	text := chunks[0].Text
	if !utf8.ValidString(text) {
		t.Errorf("decoded text %q is not valid UTF-8", text)
	}
	if !strings.HasPrefix(text, "�abc") || !strings.Contains(text[len("�abc"):], "�") {
		t.Errorf("decoded text = %q, want replacement characters around \"abc\"", text)
	}
}

func TestReaderShortReads(t *testing.T) {
	input := strings.Repeat("世界 ", 20)
	chunks := readAll(t, NewReader(iotest.OneByteReader(strings.NewReader(input)), 8))

	var sb strings.Builder
	for _, c := range chunks {
		sb.WriteString(c.Text)
	}
	if sb.String() != input {
		t.Errorf("one-byte reads reassemble to %q", sb.String())
	}
}

func TestReaderError(t *testing.T) {
	boom := errors.New("boom")
	r := NewReader(iotest.ErrReader(boom), 8)

	if _, err := r.Next(); !errors.Is(err, boom) {
		t.Errorf("Next() error = %v, want %v", err, boom)
	}
}

func TestReaderEmpty(t *testing.T) {
	r := NewReader(strings.NewReader(""), 0)
	if _, err := r.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("Next() error = %v, want io.EOF", err)
	}
	if len(r.buf) != DefaultChunkSize {
		t.Errorf("buffer size = %d, want DefaultChunkSize", len(r.buf))
	}
}

func TestReaderMinimumSize(t *testing.T) {
	r := NewReader(strings.NewReader("👋👋"), 1)
	chunks := readAll(t, r)
	if len(chunks) != 2 || chunks[0].Text != "👋" || chunks[1].Text != "👋" {
		t.Errorf("chunks = %+v, want two emoji", chunks)
	}
}
