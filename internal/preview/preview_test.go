package preview

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestPreview(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"shorter than limit", "hello", 10, "hello"},
		{"exact limit", "hello", 5, "hello"},
		{"truncated", "hello world", 5, "hello..."},
		{"multi-byte cut", "世界世界", 4, "世..."},
		{"multi-byte exact", "世界世界", 6, "世界..."},
		{"zero limit", "abc", 0, "..."},
		{"negative limit", "abc", -3, "..."},
		{"empty", "", 10, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Preview([]byte(tt.input), tt.maxLen)
			if err != nil {
				t.Fatalf("Preview() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Preview(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestPreviewInvalidUTF8(t *testing.T) {
	inputs := [][]byte{
		{0xff, 'a', 'b'},
		[]byte("abc\xe4\xb8"),
		{'a', 0x80},
	}

	for _, in := range inputs {
		if _, err := Preview(in, DefaultLength); !errors.Is(err, ErrNotUTF8) {
			t.Errorf("Preview(%q) error = %v, want ErrNotUTF8", in, err)
		}
	}
}

func TestPeek(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"short stream", "hi", 10, "hi"},
		{"truncated", "hello world", 5, "hello..."},
		{"window cuts a character", "ab世界", 3, "ab..."},
		{"whole multi-byte", "世界", 6, "世界"},
		{"empty", "", 10, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			br := bufio.NewReader(strings.NewReader(tt.input))

			got, err := Peek(br, tt.maxLen)
			if err != nil {
				t.Fatalf("Peek() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Peek(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}

			rest, err := io.ReadAll(br)
			if err != nil {
				t.Fatalf("ReadAll() unexpected error: %v", err)
			}
			if string(rest) != tt.input {
				t.Errorf("Peek consumed input: remaining %q, want %q", rest, tt.input)
			}
		})
	}
}

func TestPeekBufferSmallerThanPreview(t *testing.T) {
	input := strings.Repeat("x", 40)
	br := bufio.NewReaderSize(strings.NewReader(input), 16)

	got, err := Peek(br, 100)
	if err != nil {
		t.Fatalf("Peek() unexpected error: %v", err)
	}
	if want := strings.Repeat("x", 16) + Marker; got != want {
		t.Errorf("Peek() = %q, want %q", got, want)
	}
}

func TestPeekInvalidUTF8(t *testing.T) {
	br := bufio.NewReader(strings.NewReader("\xff not text"))

	if _, err := Peek(br, DefaultLength); !errors.Is(err, ErrNotUTF8) {
		t.Errorf("Peek() error = %v, want ErrNotUTF8", err)
	}
}

func TestPeekValidatesOnlyHead(t *testing.T) {
	input := "clean head " + strings.Repeat("x", 40) + "\xff\xfe"
	br := bufio.NewReader(strings.NewReader(input))

	got, err := Peek(br, 10)
	if err != nil {
		t.Fatalf("Peek() unexpected error: %v", err)
	}
	if got != "clean head"+Marker {
		t.Errorf("Peek() = %q, want %q", got, "clean head"+Marker)
	}
}
