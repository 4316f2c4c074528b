// Package stream drives chunked counting over a byte source and reports progress.
//
// Count pulls chunks from a chunk.Reader, absorbs each into a fresh counter.Tally and hands a
// Progress snapshot to a Reporter after every chunk. Reading a chunk is the only blocking step;
// tokenizing it is synchronous. A failure anywhere discards the partial counts: callers get
// either the complete Snapshot or an error, never a truncated count.
package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/chriscorrea/tally/internal/chunk"
	"github.com/chriscorrea/tally/internal/counter"
)

var (
	// ErrSourceRead is returned when the byte source fails to yield a chunk.
	ErrSourceRead = errors.New("failed to read source")
	// ErrCallback is returned when the Reporter rejects a progress report.
	ErrCallback = errors.New("progress report rejected")
)

// Progress is the state of a stream after one chunk.
type Progress struct {
	Percent  float64          // 0-100; 0 throughout when Size is unknown
	Offset   int64            // source bytes consumed so far
	Size     int64            // total source size, <= 0 if unknown
	Snapshot counter.Snapshot // counts so far
}

// SizeKnown reports whether Percent is meaningful.
func (p Progress) SizeKnown() bool {
	return p.Size > 0
}

// Reporter receives progress after each chunk. Returning an error aborts the stream.
type Reporter interface {
	Report(Progress) error
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(Progress) error

// Report calls f(p).
func (f ReporterFunc) Report(p Progress) error {
	return f(p)
}

// Discard ignores every report.
var Discard Reporter = ReporterFunc(func(Progress) error { return nil })

// Options configures a streaming count.
type Options struct {
	ChunkSize int            // bytes per chunk; <= 0 means chunk.DefaultChunkSize
	Counter   counter.Config // pattern store, fold mode and measures for the session
}

// Count tokenizes r chunk by chunk. size is the expected source length in bytes and only
// feeds the progress percentage; pass -1 when it is unknown. A nil rep is treated as Discard.
//
// ctx is checked between chunks, so cancellation takes effect at chunk granularity.
func Count(ctx context.Context, r io.Reader, size int64, opts Options, rep Reporter) (counter.Snapshot, error) {
	if rep == nil {
		rep = Discard
	}

	tally := counter.New(opts.Counter)
	reader := chunk.NewReader(r, opts.ChunkSize)

	for {
		if err := ctx.Err(); err != nil {
			return counter.Snapshot{}, err
		}

		c, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			slog.Debug("Source read failed", "offset", reader.Offset(), "error", err)
			return counter.Snapshot{}, fmt.Errorf("%w at offset %d: %w", ErrSourceRead, reader.Offset(), err)
		}

		tally.Absorb(c.Text)

		p := Progress{
			Percent:  percent(c.End, size),
			Offset:   c.End,
			Size:     size,
			Snapshot: tally.Snapshot(),
		}
		if err := rep.Report(p); err != nil {
			return counter.Snapshot{}, fmt.Errorf("%w: %w", ErrCallback, err)
		}
	}

	snap := tally.Snapshot()
	slog.Debug("Stream counted", "bytes", reader.Offset(), "total", snap.Total, "unique", snap.Unique)
	return snap, nil
}

// CountText counts text in memory, absorbing it in chunks of at most limit bytes.
func CountText(text string, limit int, cfg counter.Config) counter.Snapshot {
	tally := counter.New(cfg)
	for c := range chunk.SplitText(text, limit) {
		tally.Absorb(c)
	}
	return tally.Snapshot()
}

// percent returns offset as a percentage of size, clamped to [0, 100].
func percent(offset, size int64) float64 {
	if size <= 0 {
		return 0
	}
	pct := float64(offset) / float64(size) * 100
	if pct > 100 {
		return 100
	}
	return pct
}
