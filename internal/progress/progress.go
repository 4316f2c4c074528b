// Package progress renders stream progress on a terminal.
package progress

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/chriscorrea/tally/internal/spinner"
	"github.com/chriscorrea/tally/internal/stream"
)

// Display is a stream.Reporter that draws on a terminal and must be finished when the
// stream ends.
type Display interface {
	stream.Reporter
	Finish()
}

// New picks a display for a source: a byte progress bar when the size is known, a spinner
// with live counts otherwise. Nothing is drawn when quiet is set or w is not a terminal.
func New(ctx context.Context, w io.Writer, name string, size int64, quiet bool) Display {
	switch {
	case quiet || !spinner.IsTerminal(w):
		return silent{}
	case size > 0:
		return NewBar(w, name, size)
	default:
		return NewSpinner(ctx, w, name)
	}
}

// Summary formats counts for a status line.
func Summary(name string, p stream.Progress) string {
	return fmt.Sprintf("%s: %d tokens, %d unique", name, p.Snapshot.Total, p.Snapshot.Unique)
}

// Bar shows bytes consumed against the source size.
type Bar struct {
	name string
	bar  *progressbar.ProgressBar
}

// NewBar creates a byte progress bar for a source of the given size.
func NewBar(w io.Writer, name string, size int64) *Bar {
	return &Bar{
		name: name,
		bar: progressbar.NewOptions64(size,
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetDescription(name),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSetWidth(30),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		),
	}
}

// Report moves the bar to the consumed offset and shows the running counts.
func (b *Bar) Report(p stream.Progress) error {
	b.bar.Describe(Summary(b.name, p))
	return b.bar.Set64(p.Offset)
}

// Finish clears the bar.
func (b *Bar) Finish() {
	_ = b.bar.Finish()
}

// Spinner shows running counts when no percentage can be computed.
type Spinner struct {
	name string
	s    *spinner.Spinner
}

// NewSpinner starts a spinner for name.
func NewSpinner(ctx context.Context, w io.Writer, name string) *Spinner {
	s := spinner.New(ctx, w, fmt.Sprintf("%s: counting...", name))
	s.Start()
	return &Spinner{name: name, s: s}
}

// Report updates the status line; percentages are shown when the size is known.
func (sp *Spinner) Report(p stream.Progress) error {
	msg := Summary(sp.name, p)
	if p.SizeKnown() {
		msg = fmt.Sprintf("%s (%.0f%%)", msg, p.Percent)
	}
	sp.s.SetMessage(msg)
	return nil
}

// Finish stops the spinner and clears its line.
func (sp *Spinner) Finish() {
	sp.s.Stop()
}

type silent struct{}

func (silent) Report(stream.Progress) error { return nil }
func (silent) Finish()                      {}
