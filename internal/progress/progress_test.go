package progress

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/chriscorrea/tally/internal/counter"
	"github.com/chriscorrea/tally/internal/stream"
)

func progressAt(offset, size int64, total, unique uint64) stream.Progress {
	p := stream.Progress{
		Offset:   offset,
		Size:     size,
		Snapshot: counter.Snapshot{Total: total, Unique: unique},
	}
	if size > 0 {
		p.Percent = float64(offset) / float64(size) * 100
	}
	return p
}

func TestNewSelectsDisplay(t *testing.T) {
	ctx := context.Background()

	quiet := New(ctx, &bytes.Buffer{}, "a.txt", 100, true)
	if _, ok := quiet.(silent); !ok {
		t.Errorf("quiet display = %T, want silent", quiet)
	}

	// redirected output gets no animation, whatever the size
	for _, size := range []int64{100, -1} {
		var buf bytes.Buffer
		d := New(ctx, &buf, "a.txt", size, false)
		if _, ok := d.(silent); !ok {
			t.Errorf("non-terminal display for size %d = %T, want silent", size, d)
		}
		if err := d.Report(progressAt(50, size, 1, 1)); err != nil {
			t.Errorf("Report() = %v, want nil", err)
		}
		d.Finish()
		if buf.Len() != 0 {
			t.Errorf("non-terminal display wrote %q", buf.String())
		}
	}
}

func TestSummary(t *testing.T) {
	got := Summary("notes.txt", progressAt(10, 20, 42, 17))
	if want := "notes.txt: 42 tokens, 17 unique"; got != want {
		t.Errorf("Summary() = %q, want %q", got, want)
	}
}

func TestSpinnerReport(t *testing.T) {
	sp := NewSpinner(context.Background(), &bytes.Buffer{}, "stdin")
	defer sp.Finish()

	if err := sp.Report(progressAt(5, -1, 3, 2)); err != nil {
		t.Fatalf("Report() unexpected error: %v", err)
	}
	if msg := sp.s.Message(); msg != "stdin: 3 tokens, 2 unique" {
		t.Errorf("message = %q, want counts without percentage", msg)
	}

	if err := sp.Report(progressAt(50, 100, 9, 4)); err != nil {
		t.Fatalf("Report() unexpected error: %v", err)
	}
	if msg := sp.s.Message(); !strings.HasSuffix(msg, "(50%)") {
		t.Errorf("message = %q, want percentage suffix", msg)
	}
}

func TestBarReport(t *testing.T) {
	var buf bytes.Buffer
	bar := NewBar(&buf, "big.log", 1000)

	for _, off := range []int64{250, 500, 1000} {
		if err := bar.Report(progressAt(off, 1000, uint64(off/10), uint64(off/20))); err != nil {
			t.Fatalf("Report(%d) unexpected error: %v", off, err)
		}
	}
	bar.Finish()
}

func TestSilent(t *testing.T) {
	var d Display = silent{}
	if err := d.Report(progressAt(1, 2, 3, 4)); err != nil {
		t.Errorf("silent Report() = %v, want nil", err)
	}
	d.Finish()
}
